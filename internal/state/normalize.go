package state

import (
	"sort"
	"strings"

	"thermostat_gateway/internal/models"
)

// Document field categories. Each category supplies a disjoint subset of
// the snapshot; shared and device entries are keyed by serial, structure
// entries carry an unknown identifier and are found by prefix scan.
const (
	sharedPrefix    = "shared."
	devicePrefix    = "device."
	structurePrefix = "structure."
)

// Normalize applies a raw state document to one device snapshot. Later
// steps overwrite earlier ones in a fixed precedence order: shared, then
// device, then the first structure entry. A malformed document never
// aborts the update; each field degrades to its default independently.
func Normalize(serial string, doc map[string]any, d *models.Device) {
	applyShared(doc, sharedPrefix+serial, d)
	applyDevice(doc, devicePrefix+serial, d)
	applyStructure(doc, d)
}

// applyShared extracts temperatures, mode, heating/cooling capability,
// humidity and name from the shared.<serial> entry.
func applyShared(doc map[string]any, key string, d *models.Device) {
	entry, ok := asObject(doc[key])
	if !ok {
		return
	}
	value, ok := asObject(entry["value"])
	if !ok {
		return
	}

	if v, ok := lookupFloat(value, "current_temperature"); ok {
		d.CurrentTempC = v
	}
	if v, ok := lookupFloat(value, "target_temperature"); ok {
		d.TargetTempC = v
	}
	if v, ok := lookupFloat(value, "target_temperature_low"); ok {
		d.TargetLowC = v
	}
	if v, ok := lookupFloat(value, "target_temperature_high"); ok {
		d.TargetHighC = v
	}

	d.Mode = models.ModeFromWire(stringField(value, "target_temperature_type", "off"))
	d.CanHeat = boolField(value, "can_heat", true)
	d.CanCool = boolField(value, "can_cool", true)

	if v, ok := lookupFloat(value, "humidity"); ok {
		d.Humidity = v
	}
	if name := stringField(value, "name", ""); name != "" {
		d.Name = name
	}
}

// applyDevice extracts the display scale, fan and emergency-heat
// capability, humidity (device-level wins over shared), postal code,
// location and the fan-timer flag from the device.<serial> entry.
func applyDevice(doc map[string]any, key string, d *models.Device) {
	entry, ok := asObject(doc[key])
	if !ok {
		return
	}
	value, ok := asObject(entry["value"])
	if !ok {
		return
	}

	d.TempScale = stringField(value, "temperature_scale", "F")
	d.HasFan = boolField(value, "has_fan", false)
	d.HasEmergencyHeat = boolField(value, "has_emergency_heat", false)

	if v, ok := lookupFloat(value, "current_humidity"); ok {
		d.Humidity = v
	}
	if pc := stringField(value, "postal_code", ""); pc != "" {
		d.PostalCode = pc
	}
	applyLocation(value, d)

	// Active iff a fan timeout is set and still in the future.
	d.FanTimerActive = floatField(value, "fan_timer_timeout", 0) > 0
}

// applyStructure scans for structure.* entries and consumes exactly the
// first object-shaped one carrying a value sub-object. Keys are visited
// in sorted order so the choice is stable across refreshes.
func applyStructure(doc map[string]any, d *models.Device) {
	keys := make([]string, 0, len(doc))
	for k := range doc {
		if strings.HasPrefix(k, structurePrefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		entry, ok := asObject(doc[k])
		if !ok {
			continue
		}
		value, ok := asObject(entry["value"])
		if !ok {
			continue
		}

		d.Away = boolField(value, "away", false)
		if pc := stringField(value, "postal_code", ""); pc != "" {
			d.PostalCode = pc
		}
		applyLocation(value, d)
		if d.Name == "" {
			d.Name = stringField(value, "name", "")
		}
		return // first match wins, never merge across structures
	}
}

// applyLocation overwrites latitude/longitude independently; a partial
// update of one coordinate without the other is allowed.
func applyLocation(value map[string]any, d *models.Device) {
	loc, ok := asObject(value["location"])
	if !ok {
		return
	}
	if lat, ok := coordinateField(loc, "latitude"); ok {
		d.Latitude = lat
	}
	if lon, ok := coordinateField(loc, "longitude"); ok {
		d.Longitude = lon
	}
}
