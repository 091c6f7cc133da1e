package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	appticketing "github.com/t1tandr/uevent/internal/application/ticketing"
)

// TicketHandler sells tickets and serves them to their holders
type TicketHandler struct {
	BaseHandler
	tickets *appticketing.TicketService
}

// NewTicketHandler creates a new ticket handler
func NewTicketHandler(tickets *appticketing.TicketService) *TicketHandler {
	return &TicketHandler{tickets: tickets}
}

// Purchase godoc
// @Summary      Buy a ticket
// @Description  Free tickets are issued at once; paid ones return a checkout session to redirect to
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        request body appticketing.PurchaseRequest true "Event and optional promo code"
// @Success      201 {object} dto.Response{data=appticketing.PurchaseResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tickets [post]
func (h *TicketHandler) Purchase(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req appticketing.PurchaseRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.tickets.Purchase(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Confirm godoc
// @Summary      Confirm a checkout
// @Description  Called by the payment success page; safe to repeat
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        request body appticketing.ConfirmRequest true "Checkout session"
// @Success      200 {object} dto.Response{data=appticketing.TicketResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tickets/confirm [post]
func (h *TicketHandler) Confirm(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req appticketing.ConfirmRequest
	if !h.BindJSON(c, &req) {
		return
	}
	ticket, err := h.tickets.Confirm(c.Request.Context(), userID, req.SessionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ticket)
}

// List godoc
// @Summary      Caller's tickets
// @Tags         tickets
// @Produce      json
// @Success      200 {object} dto.Response{data=[]appticketing.TicketResponse}
// @Security     BearerAuth
// @Router       /tickets [get]
func (h *TicketHandler) List(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	tickets, err := h.tickets.List(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tickets)
}

// Get godoc
// @Summary      Ticket detail
// @Tags         tickets
// @Produce      json
// @Param        id path string true "Ticket ID"
// @Success      200 {object} dto.Response{data=appticketing.TicketResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tickets/{id} [get]
func (h *TicketHandler) Get(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	ticket, err := h.tickets.Get(c.Request.Context(), id, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ticket)
}

// PDF godoc
// @Summary      Download ticket
// @Tags         tickets
// @Produce      application/pdf
// @Param        id path string true "Ticket ID"
// @Success      200 {file} file
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tickets/{id}/pdf [get]
func (h *TicketHandler) PDF(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	pdf, err := h.tickets.PDF(c.Request.Context(), id, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", pdf.Filename))
	c.Data(http.StatusOK, "application/pdf", pdf.Data)
}

// Check godoc
// @Summary      Does the caller hold a ticket
// @Tags         tickets
// @Produce      json
// @Param        eventId path string true "Event ID"
// @Success      200 {object} dto.Response{data=appticketing.TicketCheck}
// @Security     BearerAuth
// @Router       /tickets/check/{eventId} [get]
func (h *TicketHandler) Check(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	eventID, ok := h.parseUUIDParam(c, "eventId")
	if !ok {
		return
	}
	check, err := h.tickets.Check(c.Request.Context(), eventID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, check)
}

// ListPayments godoc
// @Summary      Caller's payments
// @Tags         payments
// @Produce      json
// @Success      200 {object} dto.Response{data=[]appticketing.PaymentResponse}
// @Security     BearerAuth
// @Router       /payments [get]
func (h *TicketHandler) ListPayments(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	payments, err := h.tickets.ListPayments(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payments)
}
