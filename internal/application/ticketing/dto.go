package ticketing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appevent "github.com/t1tandr/uevent/internal/application/event"
	"github.com/t1tandr/uevent/internal/domain/event"
	"github.com/t1tandr/uevent/internal/domain/ticketing"
)

// PurchaseRequest buys one ticket, optionally with a promo code
type PurchaseRequest struct {
	EventID   uuid.UUID `json:"eventId" binding:"required"`
	PromoCode string    `json:"promoCode" binding:"max=50"`
}

// ConfirmRequest completes a paid checkout from the success page
type ConfirmRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
}

// PurchaseResult is either an issued ticket or a checkout to complete
type PurchaseResult struct {
	Ticket    *TicketResponse `json:"ticket,omitempty"`
	SessionID string          `json:"sessionId,omitempty"`
	URL       string          `json:"url,omitempty"`
}

// CheckoutConfirmation identifies a settled checkout
type CheckoutConfirmation struct {
	SessionID string
	EventID   uuid.UUID
	UserID    uuid.UUID
	PromoCode string
	Amount    decimal.Decimal
	Currency  string
	Provider  string
}

// TicketResponse represents a ticket in API responses
type TicketResponse struct {
	ID        uuid.UUID               `json:"id"`
	EventID   uuid.UUID               `json:"eventId"`
	UserID    uuid.UUID               `json:"userId"`
	Price     decimal.Decimal         `json:"price"`
	Status    string                  `json:"status"`
	QRData    string                  `json:"qrData"`
	CreatedAt time.Time               `json:"createdAt"`
	Event     *appevent.EventResponse `json:"event,omitempty"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID        uuid.UUID               `json:"id"`
	TicketID  uuid.UUID               `json:"ticketId"`
	EventID   uuid.UUID               `json:"eventId"`
	Amount    decimal.Decimal         `json:"amount"`
	Currency  string                  `json:"currency"`
	Status    string                  `json:"status"`
	Provider  string                  `json:"provider"`
	CreatedAt time.Time               `json:"createdAt"`
	Event     *appevent.EventResponse `json:"event,omitempty"`
}

// TicketCheck answers whether the caller holds a ticket
type TicketCheck struct {
	HasTicket bool `json:"hasTicket"`
}

// TicketPDF is a rendered ticket file
type TicketPDF struct {
	Filename string
	Data     []byte
}

// ToTicketResponse converts a ticket, attaching its event when known
func ToTicketResponse(t *ticketing.Ticket, e *event.Event) TicketResponse {
	resp := TicketResponse{
		ID:        t.ID,
		EventID:   t.EventID,
		UserID:    t.UserID,
		Price:     t.Price,
		Status:    string(t.Status),
		QRData:    t.QRData(),
		CreatedAt: t.CreatedAt,
	}
	if e != nil {
		er := appevent.ToEventResponse(e)
		resp.Event = &er
	}
	return resp
}

func toPaymentResponse(p *ticketing.Payment, e *event.Event) PaymentResponse {
	resp := PaymentResponse{
		ID:        p.ID,
		TicketID:  p.TicketID,
		EventID:   p.EventID,
		Amount:    p.Amount,
		Currency:  p.Currency,
		Status:    string(p.Status),
		Provider:  p.Provider,
		CreatedAt: p.CreatedAt,
	}
	if e != nil {
		er := appevent.ToEventResponse(e)
		resp.Event = &er
	}
	return resp
}
