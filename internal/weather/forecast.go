package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Units the forecast service understands.
const (
	UnitFahrenheit = "fahrenheit"
	UnitCelsius    = "celsius"
)

// UnitForScale maps a device display scale ("F"/"C") to a forecast unit.
func UnitForScale(scale string) string {
	if scale == "F" {
		return UnitFahrenheit
	}
	return UnitCelsius
}

// OpenMeteoClient fetches the current outside temperature from an
// open-meteo-style forecast endpoint. Unauthenticated.
type OpenMeteoClient struct {
	baseURL string
	http    *http.Client
}

func NewOpenMeteoClient(baseURL string) *OpenMeteoClient {
	return &OpenMeteoClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: clientTimeout},
	}
}

func (o *OpenMeteoClient) CurrentTemperature(ctx context.Context, lat, lon, unit string) (float64, error) {
	q := url.Values{}
	q.Set("latitude", lat)
	q.Set("longitude", lon)
	q.Set("current", "temperature_2m")
	q.Set("temperature_unit", unit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return 0, err
	}
	resp, err := o.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("forecast request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("forecast request failed with status code %d", resp.StatusCode)
	}

	var payload struct {
		Current struct {
			Temperature2m *float64 `json:"temperature_2m"`
		} `json:"current"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decoding forecast response: %w", err)
	}
	if payload.Current.Temperature2m == nil {
		return 0, fmt.Errorf("forecast response missing current temperature")
	}
	return *payload.Current.Temperature2m, nil
}
