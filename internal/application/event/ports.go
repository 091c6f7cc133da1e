package event

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/t1tandr/uevent/internal/domain/event"
)

// Publisher queues the delayed switch of a draft event to PUBLISHED.
// There is at most one pending job per event.
type Publisher interface {
	// Schedule queues or replaces the job; a past publishAt runs on the next poll
	Schedule(ctx context.Context, eventID uuid.UUID, publishAt time.Time) error
	// Cancel drops a pending job; unknown ids are a no-op
	Cancel(ctx context.Context, eventID uuid.UUID) error
}

// TransactionalRepositories exposes the repositories bound to one transaction
type TransactionalRepositories interface {
	Events() event.EventRepository
	PromoCodes() event.PromoCodeRepository
}

// TransactionScope runs fn inside a single database transaction
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// AttendeeSheet is the content of an attendee export
type AttendeeSheet struct {
	EventTitle string
	EventDate  time.Time
	Attendees  []AttendeeResponse
}

// AttendeeExporter renders an attendee list as a spreadsheet
type AttendeeExporter interface {
	Export(ctx context.Context, sheet AttendeeSheet) ([]byte, error)
	ContentType() string
	Extension() string
}
