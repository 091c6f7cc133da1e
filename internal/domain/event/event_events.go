package event

import (
	"time"

	"github.com/t1tandr/uevent/internal/domain/shared"
)

// Aggregate type constant for Event
const AggregateTypeEvent = "Event"

// Event domain event types
const (
	EventTypeEventPublished = "EventPublished"
	EventTypeEventUpdated   = "EventUpdated"
	EventTypeEventCancelled = "EventCancelled"
)

// Snapshot is the event data carried by domain events
type Snapshot struct {
	Title       string    `json:"title"`
	Location    string    `json:"location"`
	Date        time.Time `json:"date"`
	OrganizerID string    `json:"organizer_id"`
	CompanyID   *string   `json:"company_id,omitempty"`
	Status      Status    `json:"status"`
}

func snapshotOf(e *Event) Snapshot {
	s := Snapshot{
		Title:       e.Title,
		Location:    e.Location,
		Date:        e.Date,
		OrganizerID: e.OrganizerID.String(),
		Status:      e.Status,
	}
	if e.CompanyID != nil {
		id := e.CompanyID.String()
		s.CompanyID = &id
	}
	return s
}

// EventPublishedEvent is published when a draft goes live
type EventPublishedEvent struct {
	shared.BaseDomainEvent
	Snapshot
}

// NewEventPublishedEvent creates a new EventPublishedEvent
func NewEventPublishedEvent(e *Event) *EventPublishedEvent {
	return &EventPublishedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEventPublished, AggregateTypeEvent, e.ID),
		Snapshot:        snapshotOf(e),
	}
}

// EventUpdatedEvent is published when event details change
type EventUpdatedEvent struct {
	shared.BaseDomainEvent
	Snapshot
	Changes []string `json:"changes,omitempty"`
}

// NewEventUpdatedEvent creates a new EventUpdatedEvent
func NewEventUpdatedEvent(e *Event, changes []string) *EventUpdatedEvent {
	return &EventUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEventUpdated, AggregateTypeEvent, e.ID),
		Snapshot:        snapshotOf(e),
		Changes:         changes,
	}
}

// EventCancelledEvent is published when an event is cancelled
type EventCancelledEvent struct {
	shared.BaseDomainEvent
	Snapshot
}

// NewEventCancelledEvent creates a new EventCancelledEvent
func NewEventCancelledEvent(e *Event) *EventCancelledEvent {
	return &EventCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEventCancelled, AggregateTypeEvent, e.ID),
		Snapshot:        snapshotOf(e),
	}
}
