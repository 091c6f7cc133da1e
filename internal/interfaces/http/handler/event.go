package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appevent "github.com/t1tandr/uevent/internal/application/event"
	"github.com/t1tandr/uevent/internal/domain/event"
	"github.com/t1tandr/uevent/internal/domain/shared"
	"github.com/t1tandr/uevent/internal/interfaces/http/dto"
)

// CreateEventForm is the multipart form of a new event. promoCodes is a JSON
// array of {code, discount}.
type CreateEventForm struct {
	Title             string    `form:"title" binding:"required,min=1,max=200"`
	Description       string    `form:"description" binding:"required,max=10000"`
	Location          string    `form:"location" binding:"required,max=300"`
	Coordinates       string    `form:"coordinates" binding:"max=100"`
	Date              time.Time `form:"date" binding:"required"`
	Price             string    `form:"price" binding:"required"`
	MaxAttendees      *int      `form:"maxAttendees" binding:"omitempty,min=1"`
	Format            string    `form:"format" binding:"required,event_format"`
	Theme             string    `form:"theme" binding:"required,event_theme"`
	IsAttendeesHidden bool      `form:"isAttendeesHidden"`
	RedirectURL       string    `form:"redirectUrl" binding:"omitempty,url,max=500"`
	PublishDate       time.Time `form:"publishDate"`
	NotifyOrganizer   bool      `form:"notifyOrganizer"`
	CategoryID        string    `form:"categoryId" binding:"omitempty,uuid"`
	CompanyID         string    `form:"companyId" binding:"omitempty,uuid"`
	PromoCodes        string    `form:"promoCodes"`
}

// UpdateEventRequest is a partial event update
type UpdateEventRequest struct {
	Title             *string          `json:"title" binding:"omitempty,min=1,max=200"`
	Description       *string          `json:"description" binding:"omitempty,max=10000"`
	Location          *string          `json:"location" binding:"omitempty,min=1,max=300"`
	Coordinates       *string          `json:"coordinates" binding:"omitempty,max=100"`
	Date              *time.Time       `json:"date"`
	Price             *decimal.Decimal `json:"price"`
	MaxAttendees      *int             `json:"maxAttendees" binding:"omitempty,min=1"`
	Format            *string          `json:"format" binding:"omitempty,event_format"`
	Theme             *string          `json:"theme" binding:"omitempty,event_theme"`
	IsAttendeesHidden *bool            `json:"isAttendeesHidden"`
	RedirectURL       *string          `json:"redirectUrl" binding:"omitempty,max=500"`
	PublishDate       *time.Time       `json:"publishDate"`
	NotifyOrganizer   *bool            `json:"notifyOrganizer"`
	CategoryID        *uuid.UUID       `json:"categoryId"`
}

// UpdateImagesForm adds and removes gallery images. imagesToDelete is a JSON
// array of urls.
type UpdateImagesForm struct {
	ImagesToDelete string `form:"imagesToDelete"`
}

var errInvalidPrice = shared.NewDomainError("INVALID_PRICE", "Price must be a non-negative number")

// EventHandler serves events
type EventHandler struct {
	BaseHandler
	events *appevent.EventService
	images uploadPolicy
}

// NewEventHandler creates a new event handler
func NewEventHandler(events *appevent.EventService, maxUploadSize int64) *EventHandler {
	return &EventHandler{
		events: events,
		images: newUploadPolicy(maxUploadSize, imageTypes),
	}
}

// Create godoc
// @Summary      Create event
// @Description  Creates a draft that is published at publishDate
// @Tags         events
// @Accept       multipart/form-data
// @Produce      json
// @Param        title             formData string true  "Title"
// @Param        description       formData string true  "Description"
// @Param        location          formData string true  "Location"
// @Param        date              formData string true  "RFC 3339 start time"
// @Param        price             formData string true  "Price"
// @Param        format            formData string true  "Format"
// @Param        theme             formData string true  "Theme"
// @Param        maxAttendees      formData int    false "Capacity"
// @Param        isAttendeesHidden formData bool   false "Hide attendee list"
// @Param        redirectUrl       formData string false "External page"
// @Param        publishDate       formData string false "RFC 3339 publish time"
// @Param        notifyOrganizer   formData bool   false "Email the organizer on purchases"
// @Param        categoryId        formData string false "Category ID"
// @Param        companyId         formData string false "Company ID"
// @Param        promoCodes        formData string false "JSON array of {code, discount}"
// @Param        images            formData file   false "Up to 10 images"
// @Success      201 {object} dto.Response{data=appevent.EventResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /events [post]
func (h *EventHandler) Create(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var form CreateEventForm
	if !h.BindForm(c, &form) {
		return
	}

	details, err := form.details()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var promoCodes []appevent.PromoCodeInput
	if form.PromoCodes != "" {
		if err := json.Unmarshal([]byte(form.PromoCodes), &promoCodes); err != nil {
			h.BadRequest(c, "promoCodes must be a JSON array of {code, discount}")
			return
		}
	}
	images, err := h.images.many(c, "images")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	created, err := h.events.Create(c.Request.Context(), appevent.CreateEventInput{
		OrganizerID: userID,
		Details:     details,
		Images:      images,
		PromoCodes:  promoCodes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, created)
}

func (f CreateEventForm) details() (event.Details, error) {
	price, err := decimal.NewFromString(f.Price)
	if err != nil || price.IsNegative() {
		return event.Details{}, errInvalidPrice
	}
	d := event.Details{
		Title:             f.Title,
		Description:       f.Description,
		Location:          f.Location,
		Coordinates:       f.Coordinates,
		Date:              f.Date,
		Price:             price,
		MaxAttendees:      f.MaxAttendees,
		Format:            event.Format(f.Format),
		Theme:             event.Theme(f.Theme),
		IsAttendeesHidden: f.IsAttendeesHidden,
		RedirectURL:       f.RedirectURL,
		PublishDate:       f.PublishDate,
		NotifyOrganizer:   f.NotifyOrganizer,
	}
	if f.CategoryID != "" {
		id := uuid.MustParse(f.CategoryID)
		d.CategoryID = &id
	}
	if f.CompanyID != "" {
		id := uuid.MustParse(f.CompanyID)
		d.CompanyID = &id
	}
	return d, nil
}

// List godoc
// @Summary      Upcoming published events
// @Description  Without date only events from now on; with date only that calendar day
// @Tags         events
// @Produce      json
// @Param        search   query string false "Title, description or location"
// @Param        format   query string false "Format"
// @Param        theme    query string false "Theme"
// @Param        date     query string false "YYYY-MM-DD"
// @Param        priceMin query number false "Minimum price"
// @Param        priceMax query number false "Maximum price"
// @Param        category query string false "Category ID"
// @Param        location query string false "Location"
// @Success      200 {object} dto.Response{data=[]appevent.EventResponse}
// @Router       /events [get]
func (h *EventHandler) List(c *gin.Context) {
	var q appevent.ListEventsQuery
	if !h.BindQuery(c, &q) {
		return
	}
	events, err := h.events.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, events)
}

// Search godoc
// @Summary      Search events
// @Description  Paginated listing sortable by date, price or popularity
// @Tags         events
// @Produce      json
// @Param        page      query int    false "Page"  default(1)
// @Param        limit     query int    false "Limit" default(10)
// @Param        sortBy    query string false "date, price or popularity"
// @Param        sortOrder query string false "asc or desc"
// @Success      200 {object} dto.Response{data=[]appevent.EventResponse,meta=shared.PageMeta}
// @Router       /events/search [get]
func (h *EventHandler) Search(c *gin.Context) {
	var q appevent.SearchEventsQuery
	if !h.BindQuery(c, &q) {
		return
	}
	page, err := h.events.Search(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page))
}

// Get godoc
// @Summary      Event detail
// @Description  Drafts and cancelled events are only visible to their managers
// @Tags         events
// @Produce      json
// @Param        id path string true "Event ID"
// @Success      200 {object} dto.Response{data=appevent.EventDetailResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /events/{id} [get]
func (h *EventHandler) Get(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	detail, err := h.events.Get(c.Request.Context(), id, optionalUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, detail)
}

// Update godoc
// @Summary      Update event
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        id      path string             true "Event ID"
// @Param        request body UpdateEventRequest true "Changes"
// @Success      200 {object} dto.Response{data=appevent.EventResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /events/{id} [patch]
func (h *EventHandler) Update(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateEventRequest
	if !h.BindJSON(c, &req) {
		return
	}

	updated, err := h.events.Update(c.Request.Context(), appevent.UpdateEventInput{
		EventID: id,
		UserID:  userID,
		Update:  req.toUpdate(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, updated)
}

func (r UpdateEventRequest) toUpdate() event.Update {
	u := event.Update{
		Title:             r.Title,
		Description:       r.Description,
		Location:          r.Location,
		Coordinates:       r.Coordinates,
		Date:              r.Date,
		Price:             r.Price,
		MaxAttendees:      r.MaxAttendees,
		IsAttendeesHidden: r.IsAttendeesHidden,
		RedirectURL:       r.RedirectURL,
		PublishDate:       r.PublishDate,
		NotifyOrganizer:   r.NotifyOrganizer,
		CategoryID:        r.CategoryID,
	}
	if r.Format != nil {
		f := event.Format(*r.Format)
		u.Format = &f
	}
	if r.Theme != nil {
		t := event.Theme(*r.Theme)
		u.Theme = &t
	}
	return u
}

// Cancel godoc
// @Summary      Cancel event
// @Tags         events
// @Produce      json
// @Param        id path string true "Event ID"
// @Success      200 {object} dto.Response{data=appevent.EventResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /events/{id}/cancel [post]
func (h *EventHandler) Cancel(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	cancelled, err := h.events.Cancel(c.Request.Context(), id, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cancelled)
}

// UpdateImages godoc
// @Summary      Update event images
// @Tags         events
// @Accept       multipart/form-data
// @Produce      json
// @Param        id             path     string true  "Event ID"
// @Param        images         formData file   false "New images"
// @Param        imagesToDelete formData string false "JSON array of image urls"
// @Success      200 {object} dto.Response{data=appevent.EventResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /events/{id}/images [put]
func (h *EventHandler) UpdateImages(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var form UpdateImagesForm
	if !h.BindForm(c, &form) {
		return
	}
	var toDelete []string
	if form.ImagesToDelete != "" {
		if err := json.Unmarshal([]byte(form.ImagesToDelete), &toDelete); err != nil {
			h.BadRequest(c, "imagesToDelete must be a JSON array of urls")
			return
		}
	}
	images, err := h.images.many(c, "images")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	updated, err := h.events.UpdateImages(c.Request.Context(), appevent.UpdateImagesInput{
		EventID:        id,
		UserID:         userID,
		Images:         images,
		ImagesToDelete: toDelete,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, updated)
}

// DeleteImages godoc
// @Summary      Delete event images
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        id      path string                       true "Event ID"
// @Param        request body appevent.DeleteImagesRequest true "Image urls"
// @Success      200 {object} dto.Response{data=appevent.EventResponse}
// @Security     BearerAuth
// @Router       /events/{id}/images [delete]
func (h *EventHandler) DeleteImages(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req appevent.DeleteImagesRequest
	if !h.BindJSON(c, &req) {
		return
	}
	updated, err := h.events.DeleteImages(c.Request.Context(), id, userID, req.ImageURLs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, updated)
}
