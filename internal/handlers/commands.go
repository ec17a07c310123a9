package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"thermostat_gateway/internal/models"
	"thermostat_gateway/internal/service"
)

const errInvalidBodyPref = "invalid body: "

// Request DTOs. Pointer fields distinguish "absent" from legitimate zero
// values like 0°C or enabled=false.
type temperatureRequest struct {
	Celsius *float64 `json:"celsius" binding:"required"`
}

type rangeRequest struct {
	LowCelsius  *float64 `json:"low_celsius" binding:"required"`
	HighCelsius *float64 `json:"high_celsius" binding:"required"`
}

type modeRequest struct {
	Mode string `json:"mode" binding:"required"` // off | heat | cool | auto | emergency
}

type fanRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

type awayRequest struct {
	Away *bool `json:"away" binding:"required"`
}

// commandStatus ends a successful command with the freshest snapshot.
func (h *Handler) commandStatus(c *gin.Context, id, status string) {
	resp := gin.H{"status": status}
	if d, ok := h.services.Registry.Device(id); ok {
		resp["device"] = newDeviceView(d)
	}
	c.JSON(http.StatusOK, resp)
}

// commandError maps a command failure to a status code.
func (h *Handler) commandError(c *gin.Context, logKey string, err error) {
	if errors.Is(err, service.ErrUnknownDevice) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	h.logAndJSONError(c, http.StatusBadGateway, err.Error(), logKey, err)
}

// @Summary      Set the target temperature
// @Tags         commands
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "Device identifier"
// @Param        body  body  temperatureRequest  true  "Setpoint in Celsius"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/devices/{id}/temperature [post]
// @Security     BearerAuth
func (h *Handler) setTemperature(c *gin.Context) {
	var req temperatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if err := h.services.Commands.SetTemperature(c.Request.Context(), c.Param("id"), *req.Celsius); err != nil {
		h.commandError(c, "set_temperature_failed", err)
		return
	}
	h.commandStatus(c, c.Param("id"), "temperature_set")
}

// @Summary      Set the target temperature range
// @Tags         commands
// @Accept       json
// @Produce      json
// @Param        id    path  string        true  "Device identifier"
// @Param        body  body  rangeRequest  true  "Low/high bounds in Celsius"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/devices/{id}/temperature/range [post]
// @Security     BearerAuth
func (h *Handler) setTemperatureRange(c *gin.Context) {
	var req rangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if err := h.services.Commands.SetTemperatureRange(c.Request.Context(), c.Param("id"), *req.LowCelsius, *req.HighCelsius); err != nil {
		h.commandError(c, "set_range_failed", err)
		return
	}
	h.commandStatus(c, c.Param("id"), "range_set")
}

// @Summary      Set the operating mode
// @Tags         commands
// @Accept       json
// @Produce      json
// @Param        id    path  string       true  "Device identifier"
// @Param        body  body  modeRequest  true  "Mode payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /api/v1/devices/{id}/mode [post]
// @Security     BearerAuth
func (h *Handler) setMode(c *gin.Context) {
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	mode := models.Mode(req.Mode)
	if !mode.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mode: must be off, heat, cool, auto, or emergency"})
		return
	}
	if err := h.services.Commands.SetMode(c.Request.Context(), c.Param("id"), mode); err != nil {
		h.commandError(c, "set_mode_failed", err)
		return
	}
	h.commandStatus(c, c.Param("id"), "mode_set")
}

// @Summary      Toggle the fan timer
// @Tags         commands
// @Accept       json
// @Produce      json
// @Param        id    path  string      true  "Device identifier"
// @Param        body  body  fanRequest  true  "Fan payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /api/v1/devices/{id}/fan [post]
// @Security     BearerAuth
func (h *Handler) setFan(c *gin.Context) {
	var req fanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if err := h.services.Commands.SetFan(c.Request.Context(), c.Param("id"), *req.Enabled); err != nil {
		h.commandError(c, "set_fan_failed", err)
		return
	}
	h.commandStatus(c, c.Param("id"), "fan_set")
}

// @Summary      Toggle away mode
// @Tags         commands
// @Accept       json
// @Produce      json
// @Param        id    path  string       true  "Device identifier"
// @Param        body  body  awayRequest  true  "Away payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /api/v1/devices/{id}/away [post]
// @Security     BearerAuth
func (h *Handler) setAway(c *gin.Context) {
	var req awayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if err := h.services.Commands.SetAway(c.Request.Context(), c.Param("id"), *req.Away); err != nil {
		h.commandError(c, "set_away_failed", err)
		return
	}
	h.commandStatus(c, c.Param("id"), "away_set")
}
