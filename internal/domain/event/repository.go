package event

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/t1tandr/uevent/internal/domain/shared"
)

// Sort keys for event search
const (
	SortByDate       = "date"
	SortByPrice      = "price"
	SortByPopularity = "popularity"
)

// ListFilter narrows the public event listing
type ListFilter struct {
	// Search matches title, description or location, case-insensitive
	Search     string
	Format     *Format
	Theme      *Theme
	Date       *time.Time // restricts to that calendar day
	PriceMin   *decimal.Decimal
	PriceMax   *decimal.Decimal
	CategoryID *uuid.UUID
	Location   string

	// Now is the reference time for "upcoming only" when Date is unset
	Now time.Time
}

// SearchOptions controls paging and ordering of Search
type SearchOptions struct {
	shared.PageRequest
	SortBy    string
	SortOrder string // "asc" or "desc"
}

// Normalize fills defaults for empty options
func (o SearchOptions) Normalize() SearchOptions {
	o.PageRequest = o.PageRequest.Normalize()
	switch o.SortBy {
	case SortByDate, SortByPrice, SortByPopularity:
	default:
		o.SortBy = SortByDate
	}
	if o.SortOrder != "desc" {
		o.SortOrder = "asc"
	}
	return o
}

// CompanyEventsFilter narrows the events of one company
type CompanyEventsFilter struct {
	Status *Status
	Search string
}

// EventRepository defines the interface for event persistence
type EventRepository interface {
	// Create creates a new event
	Create(ctx context.Context, e *Event) error

	// Update saves an existing event except its status
	Update(ctx context.Context, e *Event) error

	// SetStatus moves the event to status to if its current status is one of
	// from. It reports whether a row changed.
	SetStatus(ctx context.Context, id uuid.UUID, to Status, from ...Status) (bool, error)

	// FindByID finds an event by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Event, error)

	// FindByIDs loads several events at once
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Event, error)

	// FindPublished lists PUBLISHED events matching the filter, date ascending
	FindPublished(ctx context.Context, filter ListFilter) ([]*Event, error)

	// Search is FindPublished with paging and sorting
	Search(ctx context.Context, filter ListFilter, opts SearchOptions) ([]*Event, int64, error)

	// FindSimilarCandidates returns upcoming PUBLISHED events sharing the
	// category, theme or format of base, date ascending
	FindSimilarCandidates(ctx context.Context, base *Event, now time.Time, limit int) ([]*Event, error)

	// FindByCompany lists a company's events, newest first
	FindByCompany(ctx context.Context, companyID uuid.UUID, filter CompanyEventsFilter) ([]*Event, error)

	// FindByOrganizer lists events created by a user, newest first
	FindByOrganizer(ctx context.Context, organizerID uuid.UUID, status *Status) ([]*Event, error)

	// FindDueForReminder lists PUBLISHED events in (from, to] without a sent reminder
	FindDueForReminder(ctx context.Context, from, to time.Time) ([]*Event, error)
}

// PromoCodeRepository defines the interface for promo code persistence
type PromoCodeRepository interface {
	Create(ctx context.Context, p *PromoCode) error
	Update(ctx context.Context, p *PromoCode) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*PromoCode, error)
	FindByEvent(ctx context.Context, eventID uuid.UUID) ([]*PromoCode, error)

	// FindByCode looks a code up globally
	FindByCode(ctx context.Context, code string) (*PromoCode, error)

	ExistsByCode(ctx context.Context, code string) (bool, error)

	// MarkUsed flips is_used only when it is still false and reports
	// whether a row changed
	MarkUsed(ctx context.Context, id uuid.UUID) (bool, error)
}

// CommentRepository defines the interface for comment persistence
type CommentRepository interface {
	Create(ctx context.Context, c *Comment) error
	Update(ctx context.Context, c *Comment) error

	// Delete removes a comment together with its replies
	Delete(ctx context.Context, id uuid.UUID) error

	FindByID(ctx context.Context, id uuid.UUID) (*Comment, error)

	// FindByEvent returns every comment of an event, oldest first
	FindByEvent(ctx context.Context, eventID uuid.UUID) ([]*Comment, error)
}
