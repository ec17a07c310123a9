package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"thermostat_gateway/internal/logger"
	"thermostat_gateway/internal/models"
)

func newTestCommands(t *testing.T, client *fakeAPI) (*CommandService, *RegistryService) {
	t.Helper()
	r, _, events := newTestRegistry(client)
	if client.getBodies["/devices"] == nil {
		client.getBodies["/devices"] = []byte(listOne)
	}
	if client.getBodies["/thermostat/u1/status"] == nil {
		client.getBodies["/thermostat/u1/status"] = []byte(statusS1)
	}
	if err := r.Reload(context.Background()); err != nil {
		t.Fatalf("seeding registry: %v", err)
	}
	return NewCommandService(client, r, events, logger.Named("commands-test")), r
}

func lastPost(t *testing.T, client *fakeAPI) postCall {
	t.Helper()
	if len(client.postCalls) == 0 {
		t.Fatal("expected at least one POST")
	}
	return client.postCalls[len(client.postCalls)-1]
}

func TestSetModeAutoSerializesAsHeatCool(t *testing.T) {
	client := newFakeAPI()
	cmds, _ := newTestCommands(t, client)

	if err := cmds.SetMode(context.Background(), "u1", models.ModeAuto); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	call := lastPost(t, client)
	if call.path != "/thermostat/u1/mode" {
		t.Fatalf("unexpected path %q", call.path)
	}
	if call.body["mode"] != "heat-cool" {
		t.Fatalf(`expected {"mode":"heat-cool"}, got %v`, call.body)
	}
}

func TestSetModePassesOtherModesThrough(t *testing.T) {
	client := newFakeAPI()
	cmds, _ := newTestCommands(t, client)

	for _, m := range []models.Mode{models.ModeOff, models.ModeHeat, models.ModeCool, models.ModeEmergency} {
		if err := cmds.SetMode(context.Background(), "u1", m); err != nil {
			t.Fatalf("unexpected error for %s: %v", m, err)
		}
		if got := lastPost(t, client).body["mode"]; got != string(m) {
			t.Fatalf("expected wire mode %q, got %v", m, got)
		}
	}
}

func TestSetModeRejectsInvalidMode(t *testing.T) {
	client := newFakeAPI()
	cmds, _ := newTestCommands(t, client)

	if err := cmds.SetMode(context.Background(), "u1", "toasty"); err == nil {
		t.Fatal("expected error for invalid mode")
	}
	if len(client.postCalls) != 0 {
		t.Fatal("invalid mode must not reach the wire")
	}
}

func TestSetModeFailureReturnsErrorWithoutLocalChange(t *testing.T) {
	client := newFakeAPI()
	client.postErrs["/thermostat/u1/mode"] = errors.New("503 from upstream")
	cmds, r := newTestCommands(t, client)

	before, _ := r.Device("u1")
	err := cmds.SetMode(context.Background(), "u1", models.ModeHeat)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	after, _ := r.Device("u1")
	if after.Mode != before.Mode {
		t.Fatalf("mode must stay last known-good, got %s", after.Mode)
	}
}

func TestSetModeSuccessTriggersImmediateRefresh(t *testing.T) {
	client := newFakeAPI()
	cmds, _ := newTestCommands(t, client)
	baseline := client.getCount("/thermostat/u1/status")

	if err := cmds.SetMode(context.Background(), "u1", models.ModeHeat); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := client.getCount("/thermostat/u1/status"); got != baseline+1 {
		t.Fatalf("expected one immediate refresh, got %d extra", got-baseline)
	}
}

func TestSetTemperatureConvertsToDisplayScale(t *testing.T) {
	client := newFakeAPI()
	cmds, _ := newTestCommands(t, client) // statusS1 sets scale to F

	if err := cmds.SetTemperature(context.Background(), "u1", 21.0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	call := lastPost(t, client)
	if call.path != "/thermostat/u1/temperature" {
		t.Fatalf("unexpected path %q", call.path)
	}
	v, ok := call.body["value"].(float64)
	if !ok || math.Abs(v-69.8) > 1e-9 {
		t.Fatalf("expected value 69.8°F, got %v", call.body["value"])
	}
	if call.body["scale"] != "F" {
		t.Fatalf("expected scale tag F, got %v", call.body["scale"])
	}
}

func TestSetTemperatureOptimisticSurvivesFailure(t *testing.T) {
	client := newFakeAPI()
	client.postErrs["/thermostat/u1/temperature"] = errors.New("timeout")
	cmds, r := newTestCommands(t, client)

	// Failure is swallowed; the next poll self-corrects.
	if err := cmds.SetTemperature(context.Background(), "u1", 25.0); err != nil {
		t.Fatalf("setpoint failure must be silent, got %v", err)
	}

	d, _ := r.Device("u1")
	if d.TargetTempC != 25.0 {
		t.Fatalf("optimistic value must stand after a failed POST, got %v", d.TargetTempC)
	}
}

func TestSetTemperatureSuccessReconcilesWithServer(t *testing.T) {
	client := newFakeAPI()
	cmds, r := newTestCommands(t, client)

	if err := cmds.SetTemperature(context.Background(), "u1", 25.0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The immediate refresh re-applies server truth (22.0 in statusS1),
	// replacing the optimistic 25.0.
	d, _ := r.Device("u1")
	if d.TargetTempC != 22.0 {
		t.Fatalf("expected server truth 22.0 after reconciliation, got %v", d.TargetTempC)
	}
}

func TestSetTemperatureRange(t *testing.T) {
	client := newFakeAPI()
	cmds, _ := newTestCommands(t, client)

	if err := cmds.SetTemperatureRange(context.Background(), "u1", 19.0, 24.0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	call := lastPost(t, client)
	if call.path != "/thermostat/u1/temperature/range" {
		t.Fatalf("unexpected path %q", call.path)
	}
	low, _ := call.body["low"].(float64)
	high, _ := call.body["high"].(float64)
	if math.Abs(low-66.2) > 1e-9 || math.Abs(high-75.2) > 1e-9 {
		t.Fatalf("expected F-converted bounds, got %v", call.body)
	}
	if call.body["scale"] != "F" {
		t.Fatalf("expected scale tag, got %v", call.body)
	}
}

func TestSetTemperatureRangeRejectsInvertedBounds(t *testing.T) {
	client := newFakeAPI()
	cmds, _ := newTestCommands(t, client)

	if err := cmds.SetTemperatureRange(context.Background(), "u1", 24.0, 19.0); err == nil {
		t.Fatal("expected error for inverted range")
	}
	if len(client.postCalls) != 0 {
		t.Fatal("inverted range must not reach the wire")
	}
}

func TestSetFanBody(t *testing.T) {
	client := newFakeAPI()
	cmds, _ := newTestCommands(t, client)

	if err := cmds.SetFan(context.Background(), "u1", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	call := lastPost(t, client)
	if call.path != "/thermostat/u1/fan" || call.body["enabled"] != true {
		t.Fatalf("unexpected fan call: %+v", call)
	}
}

func TestSetAwayFailureSurfacesError(t *testing.T) {
	client := newFakeAPI()
	client.postErrs["/thermostat/u1/away"] = errors.New("403 forbidden")
	cmds, _ := newTestCommands(t, client)

	if err := cmds.SetAway(context.Background(), "u1", true); err == nil {
		t.Fatal("expected away failure to surface")
	}
}

func TestSetTemperatureBeforeFirstRefreshDefaultsToFahrenheit(t *testing.T) {
	client := newFakeAPI()
	client.getBodies["/devices"] = []byte(listOne)
	client.getErrs["/thermostat/u1/status"] = errors.New("timeout")
	r, _, events := newTestRegistry(client)
	if err := r.Reload(context.Background()); err != nil {
		t.Fatalf("list reload itself must succeed: %v", err)
	}
	cmds := NewCommandService(client, r, events, logger.Named("commands-test"))

	// The device never completed a refresh, so its scale is still unset.
	if err := cmds.SetTemperature(context.Background(), "u1", 21.0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	call := lastPost(t, client)
	if call.body["scale"] != "F" {
		t.Fatalf(`expected scale "F" for an unrefreshed device, got %v`, call.body["scale"])
	}
	if v := call.body["value"].(float64); math.Abs(v-69.8) > 1e-9 {
		t.Fatalf("expected value converted to 69.8, got %v", v)
	}
}

func TestCommandsRejectUnknownDevice(t *testing.T) {
	client := newFakeAPI()
	cmds, _ := newTestCommands(t, client)

	ctx := context.Background()
	if err := cmds.SetTemperature(ctx, "ghost", 20); err == nil {
		t.Fatal("expected unknown-device error for setpoint")
	}
	if err := cmds.SetMode(ctx, "ghost", models.ModeHeat); err == nil {
		t.Fatal("expected unknown-device error for mode")
	}
	if err := cmds.SetFan(ctx, "ghost", true); err == nil {
		t.Fatal("expected unknown-device error for fan")
	}
}
