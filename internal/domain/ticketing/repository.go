package ticketing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AttendeeFilter narrows an event's attendee list
type AttendeeFilter struct {
	Status *TicketStatus
	// Search matches holder name or email, case-insensitive
	Search string
}

// TicketRepository defines the interface for ticket persistence
type TicketRepository interface {
	Create(ctx context.Context, t *Ticket) error
	Update(ctx context.Context, t *Ticket) error
	FindByID(ctx context.Context, id uuid.UUID) (*Ticket, error)

	// FindByUser lists a user's tickets, newest first
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*Ticket, error)

	// FindByEvent lists tickets for an event, newest first
	FindByEvent(ctx context.Context, eventID uuid.UUID, filter AttendeeFilter) ([]*Ticket, error)

	// FindActiveByEventAndUser returns shared.ErrNotFound when the user holds no ACTIVE ticket
	FindActiveByEventAndUser(ctx context.Context, eventID, userID uuid.UUID) (*Ticket, error)

	CountActiveByEvent(ctx context.Context, eventID uuid.UUID) (int64, error)

	// CountByStatus returns ticket counts per status for an event
	CountByStatus(ctx context.Context, eventID uuid.UUID) (map[TicketStatus]int64, error)

	// SumActivePrices totals the prices of ACTIVE tickets for an event
	SumActivePrices(ctx context.Context, eventID uuid.UUID) (decimal.Decimal, error)
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	Create(ctx context.Context, p *Payment) error

	// FindBySessionID returns shared.ErrNotFound when no payment carries the session id
	FindBySessionID(ctx context.Context, sessionID string) (*Payment, error)

	FindByTicketIDs(ctx context.Context, ticketIDs []uuid.UUID) ([]*Payment, error)

	// FindByUser lists a user's payments, newest first
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*Payment, error)
}
