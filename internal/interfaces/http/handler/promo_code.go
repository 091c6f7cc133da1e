package handler

import (
	"github.com/gin-gonic/gin"

	appevent "github.com/t1tandr/uevent/internal/application/event"
)

// PromoCodeHandler serves an event's promo codes
type PromoCodeHandler struct {
	BaseHandler
	promoCodes *appevent.PromoCodeService
}

// NewPromoCodeHandler creates a new promo code handler
func NewPromoCodeHandler(promoCodes *appevent.PromoCodeService) *PromoCodeHandler {
	return &PromoCodeHandler{promoCodes: promoCodes}
}

// List godoc
// @Summary      Event promo codes
// @Tags         promo-codes
// @Produce      json
// @Param        id path string true "Event ID"
// @Success      200 {object} dto.Response{data=[]appevent.PromoCodeResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /events/{id}/promo-codes [get]
func (h *PromoCodeHandler) List(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	eventID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	codes, err := h.promoCodes.List(c.Request.Context(), eventID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, codes)
}

// Create godoc
// @Summary      Add promo code
// @Tags         promo-codes
// @Accept       json
// @Produce      json
// @Param        id      path string                          true "Event ID"
// @Param        request body appevent.CreatePromoCodeRequest true "Code"
// @Success      201 {object} dto.Response{data=appevent.PromoCodeResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /events/{id}/promo-codes [post]
func (h *PromoCodeHandler) Create(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	eventID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req appevent.CreatePromoCodeRequest
	if !h.BindJSON(c, &req) {
		return
	}
	code, err := h.promoCodes.Create(c.Request.Context(), eventID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, code)
}

// Update godoc
// @Summary      Change promo code
// @Tags         promo-codes
// @Accept       json
// @Produce      json
// @Param        id      path string                          true "Event ID"
// @Param        promoId path string                          true "Promo code ID"
// @Param        request body appevent.UpdatePromoCodeRequest true "Changes"
// @Success      200 {object} dto.Response{data=appevent.PromoCodeResponse}
// @Security     BearerAuth
// @Router       /events/{id}/promo-codes/{promoId} [patch]
func (h *PromoCodeHandler) Update(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	eventID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	promoID, ok := h.parseUUIDParam(c, "promoId")
	if !ok {
		return
	}
	var req appevent.UpdatePromoCodeRequest
	if !h.BindJSON(c, &req) {
		return
	}
	code, err := h.promoCodes.Update(c.Request.Context(), eventID, promoID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, code)
}

// Delete godoc
// @Summary      Delete promo code
// @Tags         promo-codes
// @Produce      json
// @Param        id      path string true "Event ID"
// @Param        promoId path string true "Promo code ID"
// @Success      200 {object} dto.Response{data=dto.MessageResponse}
// @Security     BearerAuth
// @Router       /events/{id}/promo-codes/{promoId} [delete]
func (h *PromoCodeHandler) Delete(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	eventID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	promoID, ok := h.parseUUIDParam(c, "promoId")
	if !ok {
		return
	}
	if err := h.promoCodes.Delete(c.Request.Context(), eventID, promoID, userID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Promo code deleted successfully")
}

// Validate godoc
// @Summary      Price a promo code
// @Tags         promo-codes
// @Accept       json
// @Produce      json
// @Param        id      path string                            true "Event ID"
// @Param        request body appevent.ValidatePromoCodeRequest true "Code"
// @Success      200 {object} dto.Response{data=appevent.PromoCodeValidation}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /events/{id}/promo-codes/validate [post]
func (h *PromoCodeHandler) Validate(c *gin.Context) {
	if _, ok := h.requireUser(c); !ok {
		return
	}
	eventID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req appevent.ValidatePromoCodeRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.promoCodes.Validate(c.Request.Context(), eventID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
