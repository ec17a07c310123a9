package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"thermostat_gateway/internal/api"
	"thermostat_gateway/internal/logger"
	"thermostat_gateway/internal/models"
	"thermostat_gateway/internal/state"
)

// RegistryService owns the device collection and drives refresh. All
// snapshot mutation serializes through its lock; network calls happen
// outside the lock on working copies.
type RegistryService struct {
	client   APIClient
	enricher DeviceEnricher
	events   *EventLogService
	log      *logger.Logger

	mu        sync.Mutex
	devices   map[string]*models.Device
	gens      map[string]uint64 // per-device write generation, see RefreshDevice
	order     []string          // list order from the server, drives refresh sequence
	connected bool
	lastErr   string

	// cycleMu serializes full refresh cycles. Ticks TryLock and skip
	// when the previous cycle still runs; manual reloads block on it
	// instead of overlapping a running cycle.
	cycleMu sync.Mutex
}

func NewRegistryService(client APIClient, enricher DeviceEnricher, events *EventLogService, log *logger.Logger) *RegistryService {
	return &RegistryService{
		client:   client,
		enricher: enricher,
		events:   events,
		log:      log,
		devices:  make(map[string]*models.Device),
		gens:     make(map[string]uint64),
	}
}

// Devices returns snapshot copies in server list order.
func (r *RegistryService) Devices() []models.Device {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Device, 0, len(r.order))
	for _, id := range r.order {
		if d, ok := r.devices[id]; ok {
			out = append(out, *d)
		}
	}
	return out
}

// Device returns a copy of one snapshot.
func (r *RegistryService) Device(id string) (models.Device, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.devices[id]
	if !ok {
		return models.Device{}, false
	}
	return *d, true
}

// Connected reports whether the last device-list fetch succeeded.
func (r *RegistryService) Connected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.connected
}

// LastError returns the list-level error message, empty when connected.
func (r *RegistryService) LastError() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

// Run refreshes the whole collection on a fixed interval until ctx is
// canceled. A tick whose predecessor is still running is skipped rather
// than overlapped.
func (r *RegistryService) Run(ctx context.Context, tick time.Duration) {
	r.runCycle(ctx)

	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.runCycle(ctx)
		}
	}
}

func (r *RegistryService) runCycle(ctx context.Context) {
	if !r.cycleMu.TryLock() {
		r.log.Debugw("poll_tick_skipped", "reason", "previous refresh still running")
		return
	}
	defer r.cycleMu.Unlock()

	if !r.Connected() {
		_ = r.reload(ctx)
		return
	}
	r.refreshAll(ctx)
}

// Reload re-fetches the device list from scratch, replacing the whole
// collection, then refreshes each device's detailed state sequentially.
// A list-level failure marks the client disconnected. A reload that
// arrives while a poll cycle runs waits for the cycle to finish.
func (r *RegistryService) Reload(ctx context.Context) error {
	r.cycleMu.Lock()
	defer r.cycleMu.Unlock()
	return r.reload(ctx)
}

func (r *RegistryService) reload(ctx context.Context) error {
	body, err := r.client.Get(ctx, "/devices")
	if err != nil {
		r.setDisconnected(err)
		return fmt.Errorf("fetching device list: %w", err)
	}

	var list models.DeviceListResponse
	if err := json.Unmarshal(body, &list); err != nil {
		decodeErr := api.NewDecodeError(err)
		r.setDisconnected(decodeErr)
		return fmt.Errorf("fetching device list: %w", decodeErr)
	}

	r.mu.Lock()
	devices := make(map[string]*models.Device, len(list.Devices))
	gens := make(map[string]uint64, len(list.Devices))
	order := make([]string, 0, len(list.Devices))
	for _, entry := range list.Devices {
		d := &models.Device{ID: entry.ID, Serial: entry.Serial}
		if entry.Name != nil {
			d.Name = *entry.Name
		}
		// Carry enrichment state across a reload so the cache windows
		// survive pull-to-refresh.
		if prev, ok := r.devices[entry.ID]; ok {
			cur := *prev
			cur.Serial = entry.Serial
			if d.Name != "" {
				cur.Name = d.Name
			}
			d = &cur
		}
		devices[entry.ID] = d
		gens[entry.ID] = r.gens[entry.ID] + 1
		order = append(order, entry.ID)
	}
	r.devices = devices
	r.gens = gens
	r.order = order
	r.connected = true
	r.lastErr = ""
	r.mu.Unlock()

	r.events.Record(EventReload, fmt.Sprintf("device list reloaded, %d devices", len(order)), nil)
	r.refreshAll(ctx)
	return nil
}

// refreshAll refreshes devices sequentially. One device's failure never
// aborts its siblings.
func (r *RegistryService) refreshAll(ctx context.Context) {
	for _, id := range r.deviceOrder() {
		if ctx.Err() != nil {
			return
		}
		if err := r.RefreshDevice(ctx, id); err != nil {
			r.log.Warnw("device_refresh_failed", "device", id, "err", err)
		}
	}
}

func (r *RegistryService) deviceOrder() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

// RefreshDevice fetches one device's status, normalizes it into the
// snapshot and runs weather enrichment. Failure marks only this device
// unavailable.
func (r *RegistryService) RefreshDevice(ctx context.Context, id string) error {
	r.mu.Lock()
	d, ok := r.devices[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w %q", ErrUnknownDevice, id)
	}
	cur := *d
	gen := r.gens[id]
	r.mu.Unlock()

	body, err := r.client.Get(ctx, "/thermostat/"+id+"/status")
	if err != nil {
		r.markUnavailable(id, err)
		return fmt.Errorf("fetching status for %s: %w", id, err)
	}

	var status models.StatusResponse
	if err := json.Unmarshal(body, &status); err != nil {
		decodeErr := api.NewDecodeError(err)
		r.markUnavailable(id, decodeErr)
		return fmt.Errorf("fetching status for %s: %w", id, decodeErr)
	}

	// Normalize and enrich a working copy; enrichment does network I/O
	// and must not run under the registry lock.
	doc := objectEntries(status.State)
	state.Normalize(cur.Serial, doc, &cur)
	cur.Available = true
	r.enricher.Enrich(ctx, &cur)

	// Publish only if nothing newer landed while this refresh was in
	// flight; a stale snapshot must not clobber an optimistic update or
	// a reload-carried one. The next poll re-fetches either way.
	r.mu.Lock()
	if _, ok := r.devices[id]; ok && r.gens[id] == gen {
		r.devices[id] = &cur
	}
	r.mu.Unlock()
	return nil
}

// objectEntries keeps only object-shaped values of the raw state
// document; everything else is dropped silently.
func objectEntries(raw map[string]any) map[string]any {
	doc := make(map[string]any, len(raw))
	for k, v := range raw {
		if _, ok := v.(map[string]any); ok {
			doc[k] = v
		}
	}
	return doc
}

// applyOptimistic mutates one snapshot in place under the registry lock,
// for command-side optimistic updates.
func (r *RegistryService) applyOptimistic(id string, mutate func(*models.Device)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.devices[id]; ok {
		mutate(d)
		r.gens[id]++
	}
}

func (r *RegistryService) markUnavailable(id string, cause error) {
	r.mu.Lock()
	if d, ok := r.devices[id]; ok {
		d.Available = false
		r.gens[id]++
	}
	r.mu.Unlock()
	r.events.Record(EventRefreshFailed, fmt.Sprintf("refresh failed for device %s", id), map[string]any{
		"device": id,
		"error":  cause.Error(),
	})
}

func (r *RegistryService) setDisconnected(cause error) {
	r.mu.Lock()
	r.connected = false
	r.lastErr = cause.Error()
	r.mu.Unlock()
	r.events.Record(EventListFailed, "device list fetch failed", map[string]any{
		"error": cause.Error(),
	})
	r.log.Errorw("device_list_fetch_failed", "err", cause)
}
