package ticketing

import (
	"github.com/shopspring/decimal"
	"github.com/t1tandr/uevent/internal/domain/shared"
)

// Aggregate type constant for Ticket
const AggregateTypeTicket = "Ticket"

// Ticket domain event types
const (
	EventTypeTicketPurchased = "TicketPurchased"
)

// TicketPurchasedEvent is published after checkout commits
type TicketPurchasedEvent struct {
	shared.BaseDomainEvent
	// TicketEventID is the catalog event the ticket admits to. It is not
	// named EventID, which the embedded base reserves for the event's own id.
	TicketEventID string          `json:"event_id"`
	UserID        string          `json:"user_id"`
	PaymentID     string          `json:"payment_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Provider      string          `json:"provider"`
}

var _ shared.DomainEvent = (*TicketPurchasedEvent)(nil)

// NewTicketPurchasedEvent creates a new TicketPurchasedEvent
func NewTicketPurchasedEvent(t *Ticket, p *Payment) *TicketPurchasedEvent {
	return &TicketPurchasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTicketPurchased, AggregateTypeTicket, t.ID),
		TicketEventID:   t.EventID.String(),
		UserID:          t.UserID.String(),
		PaymentID:       p.ID.String(),
		Amount:          p.Amount,
		Currency:        p.Currency,
		Provider:        p.Provider,
	}
}
