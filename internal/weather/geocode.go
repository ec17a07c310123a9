// Package weather derives outdoor conditions for a device through two
// chained lookups: postal code to coordinates, then coordinates to the
// current outside temperature. Each lookup caches independently per
// device.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const clientTimeout = 15 * time.Second

// Coordinates as the geocoding service encodes them: decimal strings.
type Coordinates struct {
	Latitude  string
	Longitude string
}

// GeocodeClient resolves a postal code to coordinates.
type GeocodeClient interface {
	Lookup(ctx context.Context, postalCode string) (Coordinates, error)
}

// ForecastClient resolves coordinates to a current outside temperature in
// the requested unit ("fahrenheit" or "celsius").
type ForecastClient interface {
	CurrentTemperature(ctx context.Context, lat, lon, unit string) (float64, error)
}

var errNoPlaces = errors.New("postal code matched no places")

// ZippopotamClient looks up postal codes against a zippopotam-style
// service. Unauthenticated; the base URL already includes the country
// segment.
type ZippopotamClient struct {
	baseURL string
	http    *http.Client
}

func NewZippopotamClient(baseURL string) *ZippopotamClient {
	return &ZippopotamClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: clientTimeout},
	}
}

func (z *ZippopotamClient) Lookup(ctx context.Context, postalCode string) (Coordinates, error) {
	reqURL := z.baseURL + "/" + url.PathEscape(postalCode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Coordinates{}, err
	}
	resp, err := z.http.Do(req)
	if err != nil {
		return Coordinates{}, fmt.Errorf("geocode request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Coordinates{}, fmt.Errorf("geocode request failed with status code %d", resp.StatusCode)
	}

	var payload struct {
		Places []struct {
			Latitude  string `json:"latitude"`
			Longitude string `json:"longitude"`
		} `json:"places"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Coordinates{}, fmt.Errorf("decoding geocode response: %w", err)
	}
	if len(payload.Places) == 0 {
		return Coordinates{}, errNoPlaces
	}
	place := payload.Places[0]
	return Coordinates{Latitude: place.Latitude, Longitude: place.Longitude}, nil
}
