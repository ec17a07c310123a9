package service

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event types recorded by the gateway.
const (
	EventReload        = "RELOAD"
	EventListFailed    = "LIST_FAILED"
	EventRefreshFailed = "REFRESH_FAILED"
	EventCommand       = "COMMAND"
)

// maxEvents bounds the in-memory history; oldest entries are dropped.
const maxEvents = 1000

// Event is a single log entry.
type Event struct {
	EventID     string         `json:"event_id"`
	OccurredAt  time.Time      `json:"occurred_at"`
	Type        string         `json:"type"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// LogFilter narrows a List call by time range and event type.
type LogFilter struct {
	From time.Time
	To   time.Time
	Type string
}

// EventLogService keeps a bounded, in-memory history of gateway events.
// Device state never persists across restarts, and neither does this log.
type EventLogService struct {
	mu     sync.Mutex
	events []Event
	now    func() time.Time
}

func NewEventLogService() *EventLogService {
	return &EventLogService{now: time.Now}
}

var errInvalidTimeRange = errors.New("invalid time range: From must be <= To")

// Record appends an event, trimming the history when it grows past the cap.
func (s *EventLogService) Record(eventType, description string, metadata map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, Event{
		EventID:     uuid.NewString(),
		OccurredAt:  s.now().UTC(),
		Type:        eventType,
		Description: description,
		Metadata:    metadata,
	})
	if len(s.events) > maxEvents {
		s.events = s.events[len(s.events)-maxEvents:]
	}
}

// List returns events matching the filter, oldest first.
func (s *EventLogService) List(f LogFilter) ([]Event, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, errInvalidTimeRange
	}
	eventType := normalizeEventType(f.Type)

	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for _, e := range s.events {
		if !from.IsZero() && e.OccurredAt.Before(from) {
			continue
		}
		if !to.IsZero() && e.OccurredAt.After(to) {
			continue
		}
		if eventType != "" && e.Type != eventType {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeEventType trims spaces and uppercases the event type filter.
func normalizeEventType(s string) string {
	return strings.TrimSpace(strings.ToUpper(s))
}
