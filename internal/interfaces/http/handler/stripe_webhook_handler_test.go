package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	appticketing "github.com/t1tandr/uevent/internal/application/ticketing"
)

// webhookGateway accepts the signature "valid" and decodes the body as the
// event type
type webhookGateway struct{}

func (webhookGateway) CreateCheckoutSession(context.Context, appticketing.CheckoutRequest) (*appticketing.CheckoutSession, error) {
	return nil, errors.New("not used")
}

func (webhookGateway) GetCheckoutSession(context.Context, string) (*appticketing.CheckoutSession, error) {
	return nil, errors.New("stripe unavailable")
}

func (webhookGateway) ParseWebhook(payload []byte, signature string) (*appticketing.WebhookEvent, error) {
	if signature != "valid" {
		return nil, errors.New("signature mismatch")
	}
	return &appticketing.WebhookEvent{ID: "evt_1", Type: string(payload), SessionID: "cs_1"}, nil
}

func TestStripeWebhookHandler(t *testing.T) {
	paid := appticketing.NewTicketService(appticketing.Repositories{}, nil, nil, nil, zap.NewNop(),
		appticketing.WithPaymentGateway(webhookGateway{}))
	unpaid := appticketing.NewTicketService(appticketing.Repositories{}, nil, nil, nil, zap.NewNop())

	tests := []struct {
		name       string
		service    *appticketing.TicketService
		body       string
		signature  string
		wantStatus int
		wantBody   string
	}{
		{"missing signature", paid, appticketing.WebhookCheckoutExpired, "", http.StatusBadRequest, "Missing Stripe-Signature"},
		{"bad signature", paid, appticketing.WebhookCheckoutExpired, "forged", http.StatusBadRequest, ""},
		{"oversized payload", paid, strings.Repeat("x", maxWebhookPayloadSize+1), "valid", http.StatusRequestEntityTooLarge, "Payload too large"},
		{"expired session acknowledged", paid, appticketing.WebhookCheckoutExpired, "valid", http.StatusOK, `"received":true`},
		{"unknown type ignored", paid, "invoice.paid", "valid", http.StatusOK, `"received":true`},
		{"provider failure asks for redelivery", paid, appticketing.WebhookCheckoutCompleted, "valid", http.StatusInternalServerError, "Webhook processing failed"},
		{"payments not configured", unpaid, appticketing.WebhookCheckoutExpired, "valid", http.StatusBadRequest, "Payments are not configured"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.POST("/api/webhooks/stripe", NewStripeWebhookHandler(tt.service).HandleStripeWebhook)

			req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", strings.NewReader(tt.body))
			if tt.signature != "" {
				req.Header.Set("Stripe-Signature", tt.signature)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantBody != "" {
				assert.Contains(t, w.Body.String(), tt.wantBody)
			}
		})
	}
}
