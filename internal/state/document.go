// Package state turns the loosely-typed device state document into
// mutations on a normalized snapshot. The document is a mapping of
// "<category>.<serial>" keys to arbitrary nested JSON; nothing about its
// shape can be assumed at decode time, so every field is narrowed and
// defaulted individually at read time.
package state

import (
	"encoding/json"
	"strconv"
)

// asObject narrows v to a JSON object. Anything else is dropped silently.
func asObject(v any) (map[string]any, bool) {
	obj, ok := v.(map[string]any)
	return obj, ok
}

// stringField returns obj[key] when it is a string, else def.
func stringField(obj map[string]any, key, def string) string {
	if s, ok := obj[key].(string); ok {
		return s
	}
	return def
}

// floatField returns obj[key] as a float64, tolerating both integer and
// floating encodings, else def.
func floatField(obj map[string]any, key string, def float64) float64 {
	if v, ok := lookupFloat(obj, key); ok {
		return v
	}
	return def
}

// lookupFloat reports whether obj[key] holds a numeric value.
func lookupFloat(obj map[string]any, key string) (float64, bool) {
	switch v := obj[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f, true
		}
	}
	return 0, false
}

// boolField returns obj[key] when it is a bool, else def.
func boolField(obj map[string]any, key string, def bool) bool {
	if b, ok := obj[key].(bool); ok {
		return b
	}
	return def
}

// coordinateField renders a latitude/longitude field as a string,
// accepting both numeric and string encodings.
func coordinateField(obj map[string]any, key string) (string, bool) {
	if s, ok := obj[key].(string); ok && s != "" {
		return s, true
	}
	if v, ok := lookupFloat(obj, key); ok {
		return strconv.FormatFloat(v, 'f', -1, 64), true
	}
	return "", false
}
