package handlers

import (
	"context"
	"time"

	"thermostat_gateway/internal/models"
	"thermostat_gateway/internal/service"
)

// ---- Service mocks ----

type mockRegistry struct {
	devices   []models.Device
	connected bool
	lastErr   string
}

func (m *mockRegistry) Devices() []models.Device {
	return append([]models.Device(nil), m.devices...)
}

func (m *mockRegistry) Device(id string) (models.Device, bool) {
	for _, d := range m.devices {
		if d.ID == id {
			return d, true
		}
	}
	return models.Device{}, false
}

func (m *mockRegistry) Connected() bool   { return m.connected }
func (m *mockRegistry) LastError() string { return m.lastErr }

type mockPoller struct {
	reloadErr    error
	reloadCalls  int
	refreshErr   error
	refreshedIDs []string
}

func (m *mockPoller) Run(ctx context.Context, tick time.Duration) {}

func (m *mockPoller) Reload(ctx context.Context) error {
	m.reloadCalls++
	return m.reloadErr
}

func (m *mockPoller) RefreshDevice(ctx context.Context, id string) error {
	m.refreshedIDs = append(m.refreshedIDs, id)
	return m.refreshErr
}

type commandCall struct {
	name    string
	id      string
	mode    models.Mode
	celsius float64
	low     float64
	high    float64
	flag    bool
}

type mockCommands struct {
	err   error
	calls []commandCall
}

func (m *mockCommands) SetTemperature(ctx context.Context, id string, celsius float64) error {
	m.calls = append(m.calls, commandCall{name: "temperature", id: id, celsius: celsius})
	return m.err
}

func (m *mockCommands) SetTemperatureRange(ctx context.Context, id string, lowC, highC float64) error {
	m.calls = append(m.calls, commandCall{name: "range", id: id, low: lowC, high: highC})
	return m.err
}

func (m *mockCommands) SetMode(ctx context.Context, id string, mode models.Mode) error {
	m.calls = append(m.calls, commandCall{name: "mode", id: id, mode: mode})
	return m.err
}

func (m *mockCommands) SetFan(ctx context.Context, id string, enabled bool) error {
	m.calls = append(m.calls, commandCall{name: "fan", id: id, flag: enabled})
	return m.err
}

func (m *mockCommands) SetAway(ctx context.Context, id string, away bool) error {
	m.calls = append(m.calls, commandCall{name: "away", id: id, flag: away})
	return m.err
}

type mockEventLog struct {
	events []service.Event
	err    error
	last   service.LogFilter
}

func (m *mockEventLog) List(f service.LogFilter) ([]service.Event, error) {
	m.last = f
	return m.events, m.err
}

type mockServices struct {
	registry *mockRegistry
	poller   *mockPoller
	commands *mockCommands
	events   *mockEventLog
}

func newMockServices() (*service.Service, *mockServices) {
	m := &mockServices{
		registry: &mockRegistry{connected: true},
		poller:   &mockPoller{},
		commands: &mockCommands{},
		events:   &mockEventLog{},
	}
	return &service.Service{
		Registry: m.registry,
		Poller:   m.poller,
		Commands: m.commands,
		EventLog: m.events,
	}, m
}
