package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"thermostat_gateway/internal/models"
	"thermostat_gateway/internal/units"
)

// DeviceView is a snapshot plus its display-rounded temperature strings.
// The strings are computed at read time; the snapshot itself stays in
// Celsius.
type DeviceView struct {
	models.Device
	CurrentTempDisplay string `json:"current_temp_display"`
	TargetTempDisplay  string `json:"target_temp_display"`
	TargetLowDisplay   string `json:"target_low_display"`
	TargetHighDisplay  string `json:"target_high_display"`
}

func newDeviceView(d models.Device) DeviceView {
	return DeviceView{
		Device:             d,
		CurrentTempDisplay: units.Format(d.CurrentTempC, d.TempScale),
		TargetTempDisplay:  units.Format(d.TargetTempC, d.TempScale),
		TargetLowDisplay:   units.Format(d.TargetLowC, d.TempScale),
		TargetHighDisplay:  units.Format(d.TargetHighC, d.TempScale),
	}
}

// deviceListResponse is the local surface's device collection payload.
type deviceListResponse struct {
	Connected bool         `json:"connected"`
	Error     string       `json:"error,omitempty"`
	Devices   []DeviceView `json:"devices"`
}

// @Summary      List device snapshots
// @Tags         devices
// @Produce      json
// @Success      200  {object}  deviceListResponse
// @Router       /api/v1/devices [get]
// @Security     BearerAuth
func (h *Handler) listDevices(c *gin.Context) {
	devices := h.services.Registry.Devices()
	views := make([]DeviceView, 0, len(devices))
	for _, d := range devices {
		views = append(views, newDeviceView(d))
	}
	c.JSON(http.StatusOK, deviceListResponse{
		Connected: h.services.Registry.Connected(),
		Error:     h.services.Registry.LastError(),
		Devices:   views,
	})
}

// @Summary      Get one device snapshot
// @Tags         devices
// @Produce      json
// @Param        id   path   string  true  "Device identifier"
// @Success      200  {object}  DeviceView
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/devices/{id} [get]
// @Security     BearerAuth
func (h *Handler) getDevice(c *gin.Context) {
	d, ok := h.services.Registry.Device(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown device"})
		return
	}
	c.JSON(http.StatusOK, newDeviceView(d))
}

// @Summary      Reload the device list and refresh all devices
// @Tags         devices
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/refresh [post]
// @Security     BearerAuth
func (h *Handler) refresh(c *gin.Context) {
	if err := h.services.Poller.Reload(c.Request.Context()); err != nil {
		h.logAndJSONError(c, http.StatusBadGateway, "device list reload failed", "reload_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reloaded"})
}
