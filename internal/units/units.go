// Package units holds temperature conversion and display-rounding rules.
// Snapshots keep Celsius internally; callers convert at read time.
package units

import (
	"math"
	"strconv"
)

// Display scales as they appear in the device state document.
const (
	ScaleFahrenheit = "F"
	ScaleCelsius    = "C"
)

func CelsiusToFahrenheit(c float64) float64 {
	return c*9.0/5.0 + 32.0
}

func FahrenheitToCelsius(f float64) float64 {
	return (f - 32.0) * 5.0 / 9.0
}

// Display converts a Celsius value to the given scale and applies the
// display rounding rules: Fahrenheit rounds to the nearest whole degree,
// Celsius to the nearest half degree.
func Display(celsius float64, scale string) float64 {
	if scale == ScaleFahrenheit {
		return math.Round(CelsiusToFahrenheit(celsius))
	}
	return math.Round(celsius*2) / 2
}

// Format renders a Celsius value for the given scale with a degree sign,
// e.g. "70°" or "21.5°".
func Format(celsius float64, scale string) string {
	return strconv.FormatFloat(Display(celsius, scale), 'f', -1, 64) + "°"
}
