package ticketing

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/t1tandr/uevent/internal/domain/shared"
)

// TicketStatus is the state of a ticket
type TicketStatus string

const (
	TicketStatusActive    TicketStatus = "ACTIVE"
	TicketStatusCancelled TicketStatus = "CANCELLED"
)

// IsValid reports whether s is a known status
func (s TicketStatus) IsValid() bool {
	return s == TicketStatusActive || s == TicketStatusCancelled
}

// Ticketing errors
var (
	ErrTicketNotFound      = shared.NewDomainError("TICKET_NOT_FOUND", "Ticket not found")
	ErrTicketAlreadyOwned  = shared.NewDomainError("TICKET_ALREADY_EXISTS", "You already have a ticket for this event")
	ErrTicketNotActive     = shared.NewDomainError("INVALID_STATE", "Ticket is not active")
	ErrPaymentNotCompleted = shared.NewDomainError("PAYMENT_NOT_COMPLETED", "Payment has not been completed")
	ErrInvalidSession      = shared.NewDomainError("INVALID_SESSION", "Checkout session does not belong to this user")
)

// Ticket is a user's admission to an event
type Ticket struct {
	shared.BaseAggregateRoot
	EventID   uuid.UUID
	UserID    uuid.UUID
	Price     decimal.Decimal
	Status    TicketStatus
	QRPayload string
}

// NewTicket mints an ACTIVE ticket
func NewTicket(eventID, userID uuid.UUID, price decimal.Decimal) (*Ticket, error) {
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	t := &Ticket{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		EventID:           eventID,
		UserID:            userID,
		Price:             price.Round(2),
		Status:            TicketStatusActive,
	}
	t.QRPayload = t.qrContent(t.CreatedAt).encode()
	return t, nil
}

// QRContent is the JSON encoded into a ticket's QR code
type QRContent struct {
	EventID   string `json:"eventId"`
	UserID    string `json:"userId"`
	TicketID  string `json:"ticketId"`
	Timestamp int64  `json:"timestamp"`
}

func (c QRContent) encode() string {
	b, _ := json.Marshal(c)
	return string(b)
}

func (t *Ticket) qrContent(at time.Time) QRContent {
	return QRContent{
		EventID:   t.EventID.String(),
		UserID:    t.UserID.String(),
		TicketID:  t.ID.String(),
		Timestamp: at.UnixMilli(),
	}
}

// QRData returns the stored QR payload, rebuilding it for legacy rows
func (t *Ticket) QRData() string {
	if t.QRPayload != "" {
		return t.QRPayload
	}
	return t.qrContent(t.CreatedAt).encode()
}

// Cancel deactivates an ACTIVE ticket
func (t *Ticket) Cancel() error {
	if t.Status != TicketStatusActive {
		return ErrTicketNotActive
	}
	t.Status = TicketStatusCancelled
	t.Touch()
	return nil
}

// IsActive reports whether the ticket grants admission
func (t *Ticket) IsActive() bool {
	return t.Status == TicketStatusActive
}

// BelongsTo reports whether userID holds the ticket
func (t *Ticket) BelongsTo(userID uuid.UUID) bool {
	return t.UserID == userID
}
