package service

import (
	"context"
	"fmt"

	"thermostat_gateway/internal/logger"
	"thermostat_gateway/internal/models"
	"thermostat_gateway/internal/units"
)

// CommandService issues user-initiated mutations. The remote temperature
// endpoints expect values pre-converted to the device's display scale
// plus a scale tag, so conversion happens here, not on the server.
//
// Setpoint and range commands update the snapshot optimistically and
// swallow POST failures; the next poll self-corrects. Mode, fan and away
// apply nothing locally and report failures to the caller.
type CommandService struct {
	client   APIClient
	registry *RegistryService
	events   *EventLogService
	log      *logger.Logger
}

func NewCommandService(client APIClient, registry *RegistryService, events *EventLogService, log *logger.Logger) *CommandService {
	return &CommandService{client: client, registry: registry, events: events, log: log}
}

// SetTemperature sets an absolute target setpoint, given in Celsius.
func (c *CommandService) SetTemperature(ctx context.Context, id string, celsius float64) error {
	d, ok := c.registry.Device(id)
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownDevice, id)
	}

	c.registry.applyOptimistic(id, func(d *models.Device) {
		d.TargetTempC = celsius
	})

	scale := wireScale(d.TempScale)
	body := map[string]any{
		"value": toScale(celsius, scale),
		"scale": scale,
	}
	c.postSelfCorrecting(ctx, id, "/thermostat/"+id+"/temperature", "set_temperature", body)
	return nil
}

// SetTemperatureRange sets the low/high band for auto mode, in Celsius.
func (c *CommandService) SetTemperatureRange(ctx context.Context, id string, lowC, highC float64) error {
	d, ok := c.registry.Device(id)
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownDevice, id)
	}
	if lowC > highC {
		return fmt.Errorf("invalid range: low %.1f above high %.1f", lowC, highC)
	}

	c.registry.applyOptimistic(id, func(d *models.Device) {
		d.TargetLowC = lowC
		d.TargetHighC = highC
	})

	scale := wireScale(d.TempScale)
	body := map[string]any{
		"low":   toScale(lowC, scale),
		"high":  toScale(highC, scale),
		"scale": scale,
	}
	c.postSelfCorrecting(ctx, id, "/thermostat/"+id+"/temperature/range", "set_temperature_range", body)
	return nil
}

// SetMode changes the operating mode. The caller-facing auto mode
// serializes as "heat-cool" on the wire.
func (c *CommandService) SetMode(ctx context.Context, id string, mode models.Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("invalid mode %q", mode)
	}
	if _, ok := c.registry.Device(id); !ok {
		return fmt.Errorf("%w %q", ErrUnknownDevice, id)
	}
	return c.postConfirmed(ctx, id, "/thermostat/"+id+"/mode", "set_mode",
		map[string]any{"mode": mode.ToWire()})
}

// SetFan starts or stops the fan timer.
func (c *CommandService) SetFan(ctx context.Context, id string, enabled bool) error {
	if _, ok := c.registry.Device(id); !ok {
		return fmt.Errorf("%w %q", ErrUnknownDevice, id)
	}
	return c.postConfirmed(ctx, id, "/thermostat/"+id+"/fan", "set_fan",
		map[string]any{"enabled": enabled})
}

// SetAway toggles the away/eco flag.
func (c *CommandService) SetAway(ctx context.Context, id string, away bool) error {
	if _, ok := c.registry.Device(id); !ok {
		return fmt.Errorf("%w %q", ErrUnknownDevice, id)
	}
	return c.postConfirmed(ctx, id, "/thermostat/"+id+"/away", "set_away",
		map[string]any{"away": away})
}

// postSelfCorrecting issues a POST whose failure is swallowed: the
// optimistic value stands until the next poll cycle corrects it. Success
// triggers an immediate refresh so server truth replaces the optimistic
// value without waiting for the next tick.
func (c *CommandService) postSelfCorrecting(ctx context.Context, id, path, command string, body map[string]any) {
	c.events.Record(EventCommand, command, map[string]any{"device": id})
	if _, err := c.client.Post(ctx, path, body); err != nil {
		c.log.Warnw("command_failed", "command", command, "device", id, "err", err)
		return
	}
	if err := c.registry.RefreshDevice(ctx, id); err != nil {
		c.log.Warnw("post_command_refresh_failed", "device", id, "err", err)
	}
}

// postConfirmed issues a POST whose failure is returned to the caller;
// no optimistic update was applied, so local state is last known-good.
func (c *CommandService) postConfirmed(ctx context.Context, id, path, command string, body map[string]any) error {
	c.events.Record(EventCommand, command, map[string]any{"device": id})
	if _, err := c.client.Post(ctx, path, body); err != nil {
		return fmt.Errorf("%s failed: %w", command, err)
	}
	if err := c.registry.RefreshDevice(ctx, id); err != nil {
		c.log.Warnw("post_command_refresh_failed", "device", id, "err", err)
	}
	return nil
}

// toScale converts a Celsius value to the device's wire scale.
func toScale(celsius float64, scale string) float64 {
	if scale == units.ScaleFahrenheit {
		return units.CelsiusToFahrenheit(celsius)
	}
	return celsius
}

// wireScale resolves the scale for an outgoing command. A device that
// has not completed its first refresh carries an empty scale; fall back
// to the same Fahrenheit default the normalizer applies.
func wireScale(scale string) string {
	if scale == "" {
		return units.ScaleFahrenheit
	}
	return scale
}
