package ticketing

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/t1tandr/uevent/internal/domain/shared"
)

// PaymentStatus is the state of a payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// Payment providers
const (
	ProviderStripe = "stripe"
	ProviderFree   = "free"
)

// DefaultCurrency is used when none is configured
const DefaultCurrency = "usd"

// Payment records money received for a ticket
type Payment struct {
	shared.BaseEntity
	TicketID          uuid.UUID
	UserID            uuid.UUID
	EventID           uuid.UUID
	Amount            decimal.Decimal
	Currency          string
	Status            PaymentStatus
	Provider          string
	ProviderSessionID string
}

// NewCompletedPayment records a settled payment for ticket
func NewCompletedPayment(ticket *Ticket, amount decimal.Decimal, currency, provider, sessionID string) (*Payment, error) {
	if sessionID == "" {
		return nil, shared.NewDomainError("INVALID_SESSION", "Provider session id is required")
	}
	if provider != ProviderStripe && provider != ProviderFree {
		return nil, shared.NewDomainError("INVALID_PROVIDER", "Unknown payment provider")
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	return &Payment{
		BaseEntity:        shared.NewBaseEntity(),
		TicketID:          ticket.ID,
		UserID:            ticket.UserID,
		EventID:           ticket.EventID,
		Amount:            amount.Round(2),
		Currency:          strings.ToLower(currency),
		Status:            PaymentStatusCompleted,
		Provider:          provider,
		ProviderSessionID: sessionID,
	}, nil
}

// FreeSessionID builds the synthetic session id for zero-price tickets
func FreeSessionID() string {
	return "free_" + uuid.NewString()
}
