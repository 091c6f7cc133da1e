// Package payment adapts hosted payment providers to the ticketing checkout.
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
	"github.com/stripe/stripe-go/v81/webhook"
	appticketing "github.com/t1tandr/uevent/internal/application/ticketing"
	"go.uber.org/zap"
)

// Checkout session metadata keys
const (
	metaEventID   = "eventId"
	metaUserID    = "userId"
	metaPromoCode = "promoCode"
)

// StripeGateway implements PaymentGateway with Stripe Checkout
type StripeGateway struct {
	config *StripeConfig
	logger *zap.Logger
}

// NewStripeGateway creates a new Stripe gateway
func NewStripeGateway(config *StripeConfig, logger *zap.Logger) (*StripeGateway, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	stripe.Key = config.SecretKey

	return &StripeGateway{
		config: config,
		logger: logger,
	}, nil
}

// CreateCheckoutSession opens a one-item payment session
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req appticketing.CheckoutRequest) (*appticketing.CheckoutSession, error) {
	currency := req.Currency
	if currency == "" {
		currency = g.config.Currency
	}

	product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name: stripe.String(req.Title),
	}
	if req.Description != "" {
		product.Description = stripe.String(truncate(req.Description, 500))
	}
	if req.ImageURL != "" {
		product.Images = stripe.StringSlice([]string{req.ImageURL})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(g.config.SuccessURL),
		CancelURL:  stripe.String(g.config.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:    stripe.String(currency),
					ProductData: product,
					UnitAmount:  stripe.Int64(toMinorUnits(req.Amount)),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: map[string]string{
			metaEventID:   req.EventID.String(),
			metaUserID:    req.UserID.String(),
			metaPromoCode: req.PromoCode,
		},
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	params.Context = ctx

	s, err := session.New(params)
	if err != nil {
		g.logger.Error("Failed to create Stripe checkout session",
			zap.String("event_id", req.EventID.String()),
			zap.String("user_id", req.UserID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to create checkout session: %w", err)
	}

	g.logger.Info("Created Stripe checkout session",
		zap.String("session_id", s.ID),
		zap.String("event_id", req.EventID.String()))

	return toCheckoutSession(s)
}

// GetCheckoutSession re-reads a session from Stripe
func (g *StripeGateway) GetCheckoutSession(ctx context.Context, sessionID string) (*appticketing.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := session.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe: failed to get checkout session: %w", err)
	}
	return toCheckoutSession(s)
}

// ParseWebhook verifies the Stripe-Signature header and extracts the session id
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*appticketing.WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.config.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("webhook signature verification failed: %w", err)
	}

	out := &appticketing.WebhookEvent{
		ID:   event.ID,
		Type: string(event.Type),
	}
	if strings.HasPrefix(out.Type, "checkout.session.") && event.Data != nil {
		var s stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
			return nil, fmt.Errorf("failed to unmarshal checkout session: %w", err)
		}
		out.SessionID = s.ID
	}
	return out, nil
}

func toCheckoutSession(s *stripe.CheckoutSession) (*appticketing.CheckoutSession, error) {
	out := &appticketing.CheckoutSession{
		ID:        s.ID,
		URL:       s.URL,
		Paid:      s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		Amount:    fromMinorUnits(s.AmountTotal),
		Currency:  strings.ToLower(string(s.Currency)),
		PromoCode: s.Metadata[metaPromoCode],
	}
	if v := s.Metadata[metaEventID]; v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("stripe: invalid %s metadata: %w", metaEventID, err)
		}
		out.EventID = id
	}
	if v := s.Metadata[metaUserID]; v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("stripe: invalid %s metadata: %w", metaUserID, err)
		}
		out.UserID = id
	}
	return out, nil
}

// toMinorUnits converts 12.34 to 1234
func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func fromMinorUnits(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var _ appticketing.PaymentGateway = (*StripeGateway)(nil)
