package service

import (
	"context"
	"errors"
	"time"

	"thermostat_gateway/internal/logger"
	"thermostat_gateway/internal/models"
)

// ErrUnknownDevice marks operations addressed at a device the registry
// does not hold.
var ErrUnknownDevice = errors.New("unknown device")

// APIClient is the transport the services issue remote requests through.
type APIClient interface {
	Get(ctx context.Context, path string) ([]byte, error)
	Post(ctx context.Context, path string, body any) ([]byte, error)
}

// DeviceEnricher derives outdoor weather for a snapshot after a refresh.
type DeviceEnricher interface {
	Enrich(ctx context.Context, d *models.Device)
}

// Registry exposes snapshot reads. Callers always receive value copies,
// never references into the live collection.
type Registry interface {
	Devices() []models.Device
	Device(id string) (models.Device, bool)
	Connected() bool
	LastError() string
}

// Poller drives periodic refresh of the device collection.
type Poller interface {
	Run(ctx context.Context, tick time.Duration)
	Reload(ctx context.Context) error
	RefreshDevice(ctx context.Context, id string) error
}

// Commands issues user-initiated mutations against the remote service.
// Setpoint and range commands apply optimistically and swallow failures;
// mode, fan and away report failures back to the caller.
type Commands interface {
	SetTemperature(ctx context.Context, id string, celsius float64) error
	SetTemperatureRange(ctx context.Context, id string, lowC, highC float64) error
	SetMode(ctx context.Context, id string, mode models.Mode) error
	SetFan(ctx context.Context, id string, enabled bool) error
	SetAway(ctx context.Context, id string, away bool) error
}

// EventLog exposes the in-memory gateway event history.
type EventLog interface {
	List(f LogFilter) ([]Event, error)
}

// Service aggregates all sub-services.
type Service struct {
	Registry
	Poller
	Commands
	EventLog
}

// NewService wires the API client and weather enricher into concrete
// services sharing one registry.
func NewService(client APIClient, enricher DeviceEnricher, log *logger.Logger) *Service {
	events := NewEventLogService()
	registry := NewRegistryService(client, enricher, events, log)
	return &Service{
		Registry: registry,
		Poller:   registry,
		Commands: NewCommandService(client, registry, events, log),
		EventLog: events,
	}
}
