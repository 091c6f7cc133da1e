package handler

import (
	"github.com/gin-gonic/gin"

	appcompany "github.com/t1tandr/uevent/internal/application/company"
)

// SubscriberHandler serves company subscriptions
type SubscriberHandler struct {
	BaseHandler
	subscriptions *appcompany.SubscriptionService
}

// NewSubscriberHandler creates a new subscriber handler
func NewSubscriberHandler(subscriptions *appcompany.SubscriptionService) *SubscriberHandler {
	return &SubscriberHandler{subscriptions: subscriptions}
}

// Subscribe godoc
// @Summary      Follow a company
// @Tags         subscribers
// @Produce      json
// @Param        companyId path string true "Company ID"
// @Success      201 {object} dto.Response{data=appcompany.SubscriberResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /subscribers/{companyId} [post]
func (h *SubscriberHandler) Subscribe(c *gin.Context) {
	h.subscribe(c, "companyId")
}

// Unsubscribe godoc
// @Summary      Unfollow a company
// @Tags         subscribers
// @Produce      json
// @Param        companyId path string true "Company ID"
// @Success      200 {object} dto.Response{data=dto.MessageResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /subscribers/{companyId} [delete]
func (h *SubscriberHandler) Unsubscribe(c *gin.Context) {
	h.unsubscribe(c, "companyId")
}

// SubscribeCompany godoc
// @Summary      Follow a company
// @Tags         companies
// @Produce      json
// @Param        id path string true "Company ID"
// @Success      201 {object} dto.Response{data=appcompany.SubscriberResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /companies/{id}/subscribe [post]
func (h *SubscriberHandler) SubscribeCompany(c *gin.Context) {
	h.subscribe(c, "id")
}

// UnsubscribeCompany godoc
// @Summary      Unfollow a company
// @Tags         companies
// @Produce      json
// @Param        id path string true "Company ID"
// @Success      200 {object} dto.Response{data=dto.MessageResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /companies/{id}/subscribe [delete]
func (h *SubscriberHandler) UnsubscribeCompany(c *gin.Context) {
	h.unsubscribe(c, "id")
}

func (h *SubscriberHandler) subscribe(c *gin.Context, param string) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	companyID, ok := h.parseUUIDParam(c, param)
	if !ok {
		return
	}
	sub, err := h.subscriptions.Subscribe(c.Request.Context(), companyID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sub)
}

func (h *SubscriberHandler) unsubscribe(c *gin.Context, param string) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	companyID, ok := h.parseUUIDParam(c, param)
	if !ok {
		return
	}
	if err := h.subscriptions.Unsubscribe(c.Request.Context(), companyID, userID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Unsubscribed successfully")
}

// Check godoc
// @Summary      Is the caller subscribed
// @Tags         subscribers
// @Produce      json
// @Param        companyId path string true "Company ID"
// @Success      200 {object} dto.Response{data=SubscriptionCheckData}
// @Security     BearerAuth
// @Router       /subscribers/{companyId}/check [get]
func (h *SubscriberHandler) Check(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	companyID, ok := h.parseUUIDParam(c, "companyId")
	if !ok {
		return
	}
	subscribed, err := h.subscriptions.IsSubscribed(c.Request.Context(), companyID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, SubscriptionCheckData{IsSubscribed: subscribed})
}

// ListByCompany godoc
// @Summary      Company subscribers
// @Tags         subscribers
// @Produce      json
// @Param        companyId path string true "Company ID"
// @Success      200 {object} dto.Response{data=[]appcompany.SubscriberResponse}
// @Router       /subscribers/company/{companyId} [get]
func (h *SubscriberHandler) ListByCompany(c *gin.Context) {
	companyID, ok := h.parseUUIDParam(c, "companyId")
	if !ok {
		return
	}
	subs, err := h.subscriptions.ListByCompany(c.Request.Context(), companyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, subs)
}

// Count godoc
// @Summary      Subscriber count
// @Tags         subscribers
// @Produce      json
// @Param        companyId path string true "Company ID"
// @Success      200 {object} dto.Response{data=CountData}
// @Router       /subscribers/company/{companyId}/count [get]
func (h *SubscriberHandler) Count(c *gin.Context) {
	companyID, ok := h.parseUUIDParam(c, "companyId")
	if !ok {
		return
	}
	count, err := h.subscriptions.Count(c.Request.Context(), companyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, CountData{Count: count})
}

// ListByUser godoc
// @Summary      Companies the caller follows
// @Tags         subscribers
// @Produce      json
// @Success      200 {object} dto.Response{data=[]appcompany.CompanyResponse}
// @Security     BearerAuth
// @Router       /subscribers/user [get]
func (h *SubscriberHandler) ListByUser(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	companies, err := h.subscriptions.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, companies)
}
