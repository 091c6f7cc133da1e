package handler

import (
	"github.com/gin-gonic/gin"

	appcompany "github.com/t1tandr/uevent/internal/application/company"
	"github.com/t1tandr/uevent/internal/domain/company"
)

// CreateCompanyForm is the multipart form of a new company
type CreateCompanyForm struct {
	Name        string   `form:"name" binding:"required,min=1,max=200"`
	Email       string   `form:"email" binding:"omitempty,email,max=200"`
	Location    string   `form:"location" binding:"required,max=300"`
	Description string   `form:"description" binding:"max=5000"`
	Website     string   `form:"website" binding:"max=500"`
	Phone       string   `form:"phone" binding:"max=50"`
	SocialMedia []string `form:"socialMedia" binding:"omitempty,max=20,dive,max=500"`
}

// MembersQuery filters the member list
type MembersQuery struct {
	Role string `form:"role" binding:"omitempty,company_role"`
}

// CompanyHandler serves companies and their members
type CompanyHandler struct {
	BaseHandler
	companies     *appcompany.CompanyService
	subscriptions *appcompany.SubscriptionService
	logos         uploadPolicy
}

// NewCompanyHandler creates a new company handler
func NewCompanyHandler(companies *appcompany.CompanyService, subscriptions *appcompany.SubscriptionService, maxUploadSize int64) *CompanyHandler {
	return &CompanyHandler{
		companies:     companies,
		subscriptions: subscriptions,
		logos:         newUploadPolicy(maxUploadSize, imageTypes),
	}
}

// List godoc
// @Summary      List companies
// @Tags         companies
// @Produce      json
// @Success      200 {object} dto.Response{data=[]appcompany.CompanyResponse}
// @Router       /companies [get]
func (h *CompanyHandler) List(c *gin.Context) {
	companies, err := h.companies.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, companies)
}

// ListMine godoc
// @Summary      Caller's companies
// @Tags         companies
// @Produce      json
// @Success      200 {object} dto.Response{data=[]appcompany.MyCompanyResponse}
// @Security     BearerAuth
// @Router       /companies/me [get]
func (h *CompanyHandler) ListMine(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	companies, err := h.companies.ListMine(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, companies)
}

// ListSubscribed godoc
// @Summary      Companies the caller follows
// @Tags         companies
// @Produce      json
// @Success      200 {object} dto.Response{data=[]appcompany.CompanyResponse}
// @Security     BearerAuth
// @Router       /companies/me/subscribed [get]
func (h *CompanyHandler) ListSubscribed(c *gin.Context) {
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

// Create godoc
// @Summary      Create company
// @Description  The caller becomes the company's OWNER
// @Tags         companies
// @Accept       multipart/form-data
// @Produce      json
// @Param        name        formData string true  "Name"
// @Param        location    formData string true  "Location"
// @Param        email       formData string false "Contact email"
// @Param        description formData string false "Description"
// @Param        website     formData string false "Website"
// @Param        phone       formData string false "Phone"
// @Param        socialMedia formData []string false "Social media links" collectionFormat(multi)
// @Param        logo        formData file   false "Logo, up to 5MB"
// @Success      201 {object} dto.Response{data=appcompany.CompanyResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /companies [post]
func (h *CompanyHandler) Create(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var form CreateCompanyForm
	if !h.BindForm(c, &form) {
		return
	}
	logo, err := h.logos.single(c, "logo")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	created, err := h.companies.Create(c.Request.Context(), appcompany.CreateCompanyInput{
		OwnerID: userID,
		Details: company.CompanyDetails{
			Name:        form.Name,
			Email:       form.Email,
			Location:    form.Location,
			Description: form.Description,
			Website:     form.Website,
			Phone:       form.Phone,
			SocialMedia: form.SocialMedia,
		},
		Logo: logo,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, created)
}

// Get godoc
// @Summary      Company detail
// @Tags         companies
// @Produce      json
// @Param        id path string true "Company ID"
// @Success      200 {object} dto.Response{data=appcompany.CompanyDetailResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /companies/{id} [get]
func (h *CompanyHandler) Get(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	detail, err := h.companies.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, detail)
}

// Update godoc
// @Summary      Update company
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        id      path string                           true "Company ID"
// @Param        request body appcompany.UpdateCompanyRequest true "Changes"
// @Success      200 {object} dto.Response{data=appcompany.CompanyResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /companies/{id} [patch]
func (h *CompanyHandler) Update(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req appcompany.UpdateCompanyRequest
	if !h.BindJSON(c, &req) {
		return
	}

	updated, err := h.companies.Update(c.Request.Context(), id, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, updated)
}

// UpdateLogo godoc
// @Summary      Replace company logo
// @Tags         companies
// @Accept       multipart/form-data
// @Produce      json
// @Param        id   path     string true "Company ID"
// @Param        logo formData file   true "Logo, up to 5MB"
// @Success      200 {object} dto.Response{data=appcompany.CompanyResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /companies/{id}/logo [post]
func (h *CompanyHandler) UpdateLogo(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	logo, err := h.logos.single(c, "logo")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if logo == nil {
		h.HandleError(c, ErrFileRequired)
		return
	}

	updated, err := h.companies.UpdateLogo(c.Request.Context(), id, userID, *logo)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, updated)
}

// ListEvents godoc
// @Summary      Company events
// @Description  Non-members only see published events
// @Tags         companies
// @Produce      json
// @Param        id     path  string true  "Company ID"
// @Param        status query string false "Event status"
// @Param        search query string false "Title or description"
// @Success      200 {object} dto.Response{data=[]appevent.EventResponse}
// @Router       /companies/{id}/events [get]
func (h *CompanyHandler) ListEvents(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var q appcompany.CompanyEventsQuery
	if !h.BindQuery(c, &q) {
		return
	}

	events, err := h.companies.ListEvents(c.Request.Context(), id, optionalUserID(c), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, events)
}

// ListMembers godoc
// @Summary      Company members
// @Tags         companies
// @Produce      json
// @Param        id   path  string true  "Company ID"
// @Param        role query string false "OWNER, EDITOR or MEMBER"
// @Success      200 {object} dto.Response{data=[]appcompany.MemberResponse}
// @Router       /companies/{id}/members [get]
func (h *CompanyHandler) ListMembers(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var q MembersQuery
	if !h.BindQuery(c, &q) {
		return
	}
	var role *company.Role
	if q.Role != "" {
		r := company.Role(q.Role)
		role = &r
	}

	members, err := h.companies.ListMembers(c.Request.Context(), id, role)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, members)
}

// AddMember godoc
// @Summary      Add member
// @Description  Owner only; invites an existing user by email
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        id      path string                       true "Company ID"
// @Param        request body appcompany.AddMemberRequest true "Member"
// @Success      201 {object} dto.Response{data=appcompany.MemberResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /companies/{id}/members [post]
func (h *CompanyHandler) AddMember(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req appcompany.AddMemberRequest
	if !h.BindJSON(c, &req) {
		return
	}

	member, err := h.companies.AddMember(c.Request.Context(), id, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, member)
}

// UpdateMemberRole godoc
// @Summary      Change member role
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        id       path string                              true "Company ID"
// @Param        memberId path string                              true "Member ID"
// @Param        request  body appcompany.UpdateMemberRoleRequest true "Role"
// @Success      200 {object} dto.Response{data=appcompany.MemberResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /companies/{id}/members/{memberId} [patch]
func (h *CompanyHandler) UpdateMemberRole(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	memberID, ok := h.parseUUIDParam(c, "memberId")
	if !ok {
		return
	}
	var req appcompany.UpdateMemberRoleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	member, err := h.companies.UpdateMemberRole(c.Request.Context(), id, userID, memberID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, member)
}

// RemoveMember godoc
// @Summary      Remove member
// @Tags         companies
// @Produce      json
// @Param        id       path string true "Company ID"
// @Param        memberId path string true "Member ID"
// @Success      200 {object} dto.Response{data=dto.MessageResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /companies/{id}/members/{memberId} [delete]
func (h *CompanyHandler) RemoveMember(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	memberID, ok := h.parseUUIDParam(c, "memberId")
	if !ok {
		return
	}

	if err := h.companies.RemoveMember(c.Request.Context(), id, userID, memberID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Member removed successfully")
}

// ListSubscribers godoc
// @Summary      Company subscribers
// @Description  Members only
// @Tags         companies
// @Produce      json
// @Param        id path string true "Company ID"
// @Success      200 {object} dto.Response{data=[]appcompany.SubscriberResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /companies/{id}/subscribers [get]
func (h *CompanyHandler) ListSubscribers(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	subs, err := h.subscriptions.ListForMember(c.Request.Context(), id, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, subs)
}
