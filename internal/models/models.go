package models

import "time"

// Device is the normalized snapshot of one thermostat. Temperatures are
// held in Celsius; the display scale is applied only when a value is read
// for presentation. OutsideTemp is the exception: it is fetched from the
// forecast service already in the device's display scale and shown as-is.
type Device struct {
	ID     string `json:"id"`
	Serial string `json:"serial"`
	Name   string `json:"name,omitempty"`

	CurrentTempC float64 `json:"current_temp_c"`
	TargetTempC  float64 `json:"target_temp_c"`
	TargetLowC   float64 `json:"target_low_c"`
	TargetHighC  float64 `json:"target_high_c"`

	Mode           Mode   `json:"mode"`
	FanTimerActive bool   `json:"fan_timer_active"`
	Away           bool   `json:"away"`
	TempScale      string `json:"temp_scale"` // "F" | "C"

	CanHeat          bool `json:"can_heat"`
	CanCool          bool `json:"can_cool"`
	HasFan           bool `json:"has_fan"`
	HasEmergencyHeat bool `json:"has_emergency_heat"`

	Available bool    `json:"available"`
	Humidity  float64 `json:"humidity"`

	OutsideTemp float64 `json:"outside_temp,omitempty"`
	PostalCode  string  `json:"postal_code,omitempty"`
	Latitude    string  `json:"latitude,omitempty"`
	Longitude   string  `json:"longitude,omitempty"`

	// Cache-freshness gates for the two enrichment lookups. Zero means
	// the lookup has never run for this device.
	OutsideTempUpdatedAt time.Time `json:"outside_temp_updated_at,omitempty"`
	GeocodeUpdatedAt     time.Time `json:"geocode_updated_at,omitempty"`
}

// HasLocation reports whether both coordinates are known.
func (d *Device) HasLocation() bool {
	return d.Latitude != "" && d.Longitude != ""
}

// DeviceListEntry is one element of the remote device-list response.
type DeviceListEntry struct {
	ID         string  `json:"id"`
	Serial     string  `json:"serial"`
	Name       *string `json:"name"`
	AccessType string  `json:"accessType,omitempty"`
}

// DeviceListResponse is the remote GET /devices payload.
type DeviceListResponse struct {
	Devices []DeviceListEntry `json:"devices"`
}

// StatusResponse is the remote GET /thermostat/{id}/status payload. State
// maps composite "<category>.<serial>" keys to arbitrarily shaped values;
// shaping is the normalizer's problem, not the decoder's.
type StatusResponse struct {
	Device string         `json:"device"`
	State  map[string]any `json:"state"`
}
