package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appticketing "github.com/t1tandr/uevent/internal/application/ticketing"
	"github.com/t1tandr/uevent/internal/domain/shared"
	"github.com/t1tandr/uevent/internal/infrastructure/logger"
)

// maxWebhookPayloadSize caps the raw body read for signature checks
const maxWebhookPayloadSize = 64 << 10

// StripeWebhookHandler receives checkout notifications from Stripe. The
// route is public; authenticity comes from the signature header.
type StripeWebhookHandler struct {
	tickets *appticketing.TicketService
}

func NewStripeWebhookHandler(tickets *appticketing.TicketService) *StripeWebhookHandler {
	return &StripeWebhookHandler{tickets: tickets}
}

// StripeWebhookResponse acknowledges a webhook delivery
//
//	@Description	Stripe webhook response
type StripeWebhookResponse struct {
	Received bool   `json:"received" example:"true"`
	Message  string `json:"message,omitempty"`
}

// HandleStripeWebhook godoc
//
//	@ID				handleStripeWebhook
//	@Summary		Handle Stripe webhook
//	@Description	Confirms paid checkout sessions. Deliveries are idempotent.
//	@Tags			webhooks
//	@Accept			json
//	@Produce		json
//	@Param			Stripe-Signature	header		string					true	"Stripe webhook signature"
//	@Success		200					{object}	StripeWebhookResponse
//	@Failure		400					{object}	StripeWebhookResponse	"Invalid payload or signature"
//	@Failure		413					{object}	StripeWebhookResponse	"Payload too large"
//	@Failure		500					{object}	StripeWebhookResponse	"Processing failed, Stripe retries"
//	@Router			/webhooks/stripe [post]
func (h *StripeWebhookHandler) HandleStripeWebhook(c *gin.Context) {
	reject := func(status int, msg string) { c.JSON(status, StripeWebhookResponse{Message: msg}) }

	// the signature covers the raw bytes, so no binding here
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookPayloadSize+1))
	switch {
	case err != nil:
		reject(http.StatusBadRequest, "Failed to read request body")
		return
	case len(payload) > maxWebhookPayloadSize:
		reject(http.StatusRequestEntityTooLarge, "Payload too large")
		return
	}
	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		reject(http.StatusBadRequest, "Missing Stripe-Signature header")
		return
	}

	err = h.tickets.HandleWebhook(c.Request.Context(), payload, signature)
	var domainErr *shared.DomainError
	switch {
	case err == nil:
		c.JSON(http.StatusOK, StripeWebhookResponse{Received: true})
	case errors.As(err, &domainErr):
		reject(http.StatusBadRequest, domainErr.Message)
	default:
		// Stripe redelivers on 5xx; confirmation is idempotent
		logger.GetGinLogger(c).Error("stripe webhook failed", zap.Error(err))
		reject(http.StatusInternalServerError, "Webhook processing failed")
	}
}
