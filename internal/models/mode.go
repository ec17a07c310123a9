package models

// Mode is the thermostat operating mode. The set is closed; anything the
// server sends outside it collapses to ModeOff.
type Mode string

const (
	ModeOff       Mode = "off"
	ModeHeat      Mode = "heat"
	ModeCool      Mode = "cool"
	ModeAuto      Mode = "auto"
	ModeEmergency Mode = "emergency"
)

// wire value the server uses for the auto (range) mode
const wireHeatCool = "heat-cool"

// ModeFromWire maps a server-side mode string to its logical mode.
// "heat-cool" and "range" are synonyms for auto.
func ModeFromWire(s string) Mode {
	switch s {
	case string(ModeHeat):
		return ModeHeat
	case string(ModeCool):
		return ModeCool
	case wireHeatCool, "range":
		return ModeAuto
	case string(ModeEmergency):
		return ModeEmergency
	default:
		return ModeOff
	}
}

// ToWire returns the string the server expects for this mode. Auto
// serializes as "heat-cool"; every other mode passes through unchanged.
func (m Mode) ToWire() string {
	if m == ModeAuto {
		return wireHeatCool
	}
	return string(m)
}

// Valid reports whether m is one of the five logical modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeOff, ModeHeat, ModeCool, ModeAuto, ModeEmergency:
		return true
	}
	return false
}
