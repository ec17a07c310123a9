package weather

import (
	"context"
	"strings"
	"time"

	"thermostat_gateway/internal/logger"
	"thermostat_gateway/internal/models"
)

// Cache-freshness windows, gated per device by the snapshot timestamps.
const (
	geocodeMaxAge = 24 * time.Hour
	weatherMaxAge = 15 * time.Minute
)

// Enricher chains the two lookups after every successful device refresh.
type Enricher struct {
	geocoder GeocodeClient
	forecast ForecastClient
	log      *logger.Logger

	// now is swappable so tests can move the clock.
	now func() time.Time
}

func NewEnricher(geocoder GeocodeClient, forecast ForecastClient, log *logger.Logger) *Enricher {
	return &Enricher{
		geocoder: geocoder,
		forecast: forecast,
		log:      log,
		now:      time.Now,
	}
}

// Enrich resolves coordinates from the postal code when they are missing,
// then refreshes the outside temperature. Failures never propagate; the
// snapshot simply keeps what it had.
func (e *Enricher) Enrich(ctx context.Context, d *models.Device) {
	e.maybeGeocode(ctx, d)
	e.maybeFetchWeather(ctx, d)
}

// maybeGeocode runs only when both coordinates are missing and a postal
// code exists. The timestamp is stamped on success and failure alike, so
// a failing upstream is retried at most once per window.
func (e *Enricher) maybeGeocode(ctx context.Context, d *models.Device) {
	if d.Latitude != "" || d.Longitude != "" {
		return
	}
	if d.PostalCode == "" {
		return
	}
	now := e.now()
	if !d.GeocodeUpdatedAt.IsZero() && now.Sub(d.GeocodeUpdatedAt) < geocodeMaxAge {
		return
	}

	d.GeocodeUpdatedAt = now
	coords, err := e.geocoder.Lookup(ctx, NormalizePostalCode(d.PostalCode))
	if err != nil {
		e.log.Warnw("geocode_failed", "device", d.ID, "postal_code", d.PostalCode, "err", err)
		return
	}
	d.Latitude = coords.Latitude
	d.Longitude = coords.Longitude
}

// maybeFetchWeather runs only when both coordinates are known. Unlike the
// geocode step, a failure leaves both the value and the timestamp
// untouched: stale weather beats an error banner, and the next refresh
// retries.
func (e *Enricher) maybeFetchWeather(ctx context.Context, d *models.Device) {
	if !d.HasLocation() {
		return
	}
	now := e.now()
	if !d.OutsideTempUpdatedAt.IsZero() && now.Sub(d.OutsideTempUpdatedAt) < weatherMaxAge {
		return
	}

	temp, err := e.forecast.CurrentTemperature(ctx, d.Latitude, d.Longitude, UnitForScale(d.TempScale))
	if err != nil {
		e.log.Debugw("weather_lookup_failed", "device", d.ID, "err", err)
		return
	}
	d.OutsideTemp = temp
	d.OutsideTempUpdatedAt = now
}

// NormalizePostalCode trims whitespace and keeps only the leading segment
// of extended codes like "12345 6789".
func NormalizePostalCode(code string) string {
	code = strings.TrimSpace(code)
	if i := strings.IndexByte(code, ' '); i >= 0 {
		return code[:i]
	}
	return code
}
