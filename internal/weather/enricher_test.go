package weather

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thermostat_gateway/internal/logger"
	"thermostat_gateway/internal/models"
)

type fakeGeocoder struct {
	coords  Coordinates
	err     error
	calls   int
	lastArg string
}

func (f *fakeGeocoder) Lookup(ctx context.Context, postalCode string) (Coordinates, error) {
	f.calls++
	f.lastArg = postalCode
	return f.coords, f.err
}

type fakeForecaster struct {
	temp     float64
	err      error
	calls    int
	lastUnit string
}

func (f *fakeForecaster) CurrentTemperature(ctx context.Context, lat, lon, unit string) (float64, error) {
	f.calls++
	f.lastUnit = unit
	return f.temp, f.err
}

func newTestEnricher(geo *fakeGeocoder, fc *fakeForecaster, now *time.Time) *Enricher {
	e := NewEnricher(geo, fc, logger.Named("weather-test"))
	e.now = func() time.Time { return *now }
	return e
}

func TestEnrichGeocodesAndFetchesWeather(t *testing.T) {
	geo := &fakeGeocoder{coords: Coordinates{Latitude: "37.44", Longitude: "-122.14"}}
	fc := &fakeForecaster{temp: 71.2}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e := newTestEnricher(geo, fc, &now)

	d := models.Device{ID: "u1", PostalCode: "94301", TempScale: "F"}
	e.Enrich(context.Background(), &d)

	require.Equal(t, 1, geo.calls)
	require.Equal(t, 1, fc.calls)
	assert.Equal(t, "37.44", d.Latitude)
	assert.Equal(t, "-122.14", d.Longitude)
	assert.Equal(t, 71.2, d.OutsideTemp)
	assert.Equal(t, now, d.GeocodeUpdatedAt)
	assert.Equal(t, now, d.OutsideTempUpdatedAt)
	assert.Equal(t, UnitFahrenheit, fc.lastUnit)
}

func TestGeocodeSkippedInsideFreshnessWindow(t *testing.T) {
	geo := &fakeGeocoder{err: errors.New("upstream down")}
	fc := &fakeForecaster{}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e := newTestEnricher(geo, fc, &now)

	d := models.Device{ID: "u1", PostalCode: "94301"}
	e.Enrich(context.Background(), &d)
	require.Equal(t, 1, geo.calls)

	// One minute later: still inside the 24h window, no second call even
	// though coordinates are still missing.
	now = now.Add(time.Minute)
	e.Enrich(context.Background(), &d)
	assert.Equal(t, 1, geo.calls)

	// 25 hours after the first attempt the lookup is retried regardless
	// of the earlier failure.
	now = now.Add(25 * time.Hour)
	e.Enrich(context.Background(), &d)
	assert.Equal(t, 2, geo.calls)
}

func TestGeocodeFailureStillStampsTimestamp(t *testing.T) {
	geo := &fakeGeocoder{err: errors.New("boom")}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e := newTestEnricher(geo, &fakeForecaster{}, &now)

	d := models.Device{ID: "u1", PostalCode: "94301"}
	e.Enrich(context.Background(), &d)

	assert.Equal(t, now, d.GeocodeUpdatedAt, "failed geocode must still stamp to rate-limit retries")
	assert.Empty(t, d.Latitude)
	assert.Empty(t, d.Longitude)
}

func TestGeocodeSkippedWhenCoordinatesKnown(t *testing.T) {
	geo := &fakeGeocoder{}
	fc := &fakeForecaster{temp: 20}
	now := time.Now()
	e := newTestEnricher(geo, fc, &now)

	d := models.Device{ID: "u1", PostalCode: "94301", Latitude: "1", Longitude: "2"}
	e.Enrich(context.Background(), &d)

	assert.Zero(t, geo.calls)
	assert.Equal(t, 1, fc.calls)
}

func TestGeocodeSkippedWithoutPostalCode(t *testing.T) {
	geo := &fakeGeocoder{}
	now := time.Now()
	e := newTestEnricher(geo, &fakeForecaster{}, &now)

	d := models.Device{ID: "u1"}
	e.Enrich(context.Background(), &d)

	assert.Zero(t, geo.calls)
	assert.True(t, d.GeocodeUpdatedAt.IsZero())
}

func TestWeatherFailureLeavesValueAndTimestamp(t *testing.T) {
	fc := &fakeForecaster{err: errors.New("flaky upstream")}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e := newTestEnricher(&fakeGeocoder{}, fc, &now)

	stamped := now.Add(-time.Hour)
	d := models.Device{
		ID: "u1", Latitude: "1", Longitude: "2",
		OutsideTemp: 68, OutsideTempUpdatedAt: stamped,
	}
	e.Enrich(context.Background(), &d)

	require.Equal(t, 1, fc.calls)
	assert.Equal(t, 68.0, d.OutsideTemp, "stale value must survive a failed lookup")
	assert.Equal(t, stamped, d.OutsideTempUpdatedAt, "timestamp must not be stamped on failure")
}

func TestWeatherSkippedInsideFreshnessWindow(t *testing.T) {
	fc := &fakeForecaster{temp: 20}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e := newTestEnricher(&fakeGeocoder{}, fc, &now)

	d := models.Device{ID: "u1", Latitude: "1", Longitude: "2"}
	e.Enrich(context.Background(), &d)
	require.Equal(t, 1, fc.calls)

	now = now.Add(14 * time.Minute)
	e.Enrich(context.Background(), &d)
	assert.Equal(t, 1, fc.calls)

	now = now.Add(2 * time.Minute)
	e.Enrich(context.Background(), &d)
	assert.Equal(t, 2, fc.calls)
}

func TestWeatherUnitFollowsDisplayScale(t *testing.T) {
	fc := &fakeForecaster{temp: 20}
	now := time.Now()
	e := newTestEnricher(&fakeGeocoder{}, fc, &now)

	d := models.Device{ID: "u1", Latitude: "1", Longitude: "2", TempScale: "C"}
	e.Enrich(context.Background(), &d)

	assert.Equal(t, UnitCelsius, fc.lastUnit)
}

func TestNormalizePostalCode(t *testing.T) {
	assert.Equal(t, "12345", NormalizePostalCode("12345 6789"))
	assert.Equal(t, "12345", NormalizePostalCode("  12345  "))
	assert.Equal(t, "SW1A", NormalizePostalCode("SW1A 1AA"))
	assert.Equal(t, "94301", NormalizePostalCode("94301"))
}
