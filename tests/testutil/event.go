package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/t1tandr/uevent/internal/domain/shared"
)

// MockEventHandler is a bus subscriber that keeps every event it is handed
type MockEventHandler struct {
	types []string

	mu     sync.Mutex
	events []shared.DomainEvent
	err    error
}

// NewMockEventHandler subscribes to types; no types means every event
func NewMockEventHandler(types ...string) *MockEventHandler {
	return &MockEventHandler{types: types}
}

func (h *MockEventHandler) EventTypes() []string { return h.types }

// Handle keeps e and returns the error set with SetError
func (h *MockEventHandler) Handle(_ context.Context, e shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
	return h.err
}

// SetError makes later Handle calls fail with err
func (h *MockEventHandler) SetError(err error) {
	h.mu.Lock()
	h.err = err
	h.mu.Unlock()
}

// HandledTypes lists the type of each kept event in arrival order
func (h *MockEventHandler) HandledTypes() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, 0, len(h.events))
	for _, e := range h.events {
		out = append(out, e.EventType())
	}
	return out
}

// HandledCount is the number of kept events
func (h *MockEventHandler) HandledCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.events)
}

// Reset forgets kept events and clears the error
func (h *MockEventHandler) Reset() {
	h.mu.Lock()
	h.events, h.err = nil, nil
	h.mu.Unlock()
}

// TestEvent is a domain event with no payload beyond Data
type TestEvent struct {
	shared.BaseDomainEvent
	Data string `json:"data"`
}

// NewTestEvent creates an event of eventType with a fresh id
func NewTestEvent(eventType string) *TestEvent {
	return NewTestEventWithID(uuid.New(), eventType)
}

// NewTestEventWithID fixes the event id, the key idempotent handlers use
func NewTestEventWithID(id uuid.UUID, eventType string) *TestEvent {
	return &TestEvent{
		BaseDomainEvent: shared.BaseDomainEvent{
			ID:        id,
			Type:      eventType,
			Timestamp: time.Now(),
			AggID:     uuid.New(),
			AggType:   "Test",
		},
		Data: "payload",
	}
}
