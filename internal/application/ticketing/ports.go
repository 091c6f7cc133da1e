package ticketing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/t1tandr/uevent/internal/domain/event"
	"github.com/t1tandr/uevent/internal/domain/shared"
	"github.com/t1tandr/uevent/internal/domain/ticketing"
)

// ErrPaymentsDisabled is returned when no payment provider is configured
var ErrPaymentsDisabled = shared.NewDomainError("PAYMENTS_DISABLED", "Payments are not configured")

// CheckoutRequest describes a single-ticket purchase
type CheckoutRequest struct {
	EventID       uuid.UUID
	UserID        uuid.UUID
	PromoCode     string
	Title         string
	Description   string
	ImageURL      string
	CustomerEmail string
	Amount        decimal.Decimal
	Currency      string
}

// CheckoutSession is the provider-side state of a checkout
type CheckoutSession struct {
	ID     string
	URL    string
	Paid   bool
	Amount decimal.Decimal
	// Currency is lowercase, e.g. "usd"
	Currency  string
	EventID   uuid.UUID
	UserID    uuid.UUID
	PromoCode string
}

// WebhookEvent is a verified provider notification
type WebhookEvent struct {
	ID        string
	Type      string
	SessionID string
}

// Webhook event types the service reacts to
const (
	WebhookCheckoutCompleted = "checkout.session.completed"
	WebhookCheckoutExpired   = "checkout.session.expired"
)

// Checkout session outcomes reported to CheckoutRecorder
const (
	CheckoutCreated   = "created"
	CheckoutCompleted = "completed"
	CheckoutExpired   = "expired"
	// CheckoutDuplicate is a paid session for a user who already holds a
	// ticket; the charge is recorded against that ticket and is due a refund
	CheckoutDuplicate = "duplicate"
)

// CheckoutRecorder counts checkout session outcomes
type CheckoutRecorder interface {
	CheckoutSession(outcome string)
}

// PaymentGateway creates and inspects hosted checkout sessions
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error)

	// ParseWebhook verifies the signature and decodes the payload
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}

// TicketDocument holds everything printed on a ticket
type TicketDocument struct {
	Ticket     *ticketing.Ticket
	Event      *event.Event
	HolderName string
}

// TicketRenderer produces the printable ticket PDF
type TicketRenderer interface {
	RenderTicket(ctx context.Context, doc TicketDocument) ([]byte, error)
}

// TransactionalRepositories exposes the repositories bound to one transaction
type TransactionalRepositories interface {
	Events() event.EventRepository
	PromoCodes() event.PromoCodeRepository
	Tickets() ticketing.TicketRepository
	Payments() ticketing.PaymentRepository
}

// TransactionScope runs checkout confirmation atomically
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}
