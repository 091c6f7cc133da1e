package event

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/t1tandr/uevent/internal/domain/catalog"
	"github.com/t1tandr/uevent/internal/domain/company"
	"github.com/t1tandr/uevent/internal/domain/event"
	"github.com/t1tandr/uevent/internal/domain/identity"
	"github.com/t1tandr/uevent/internal/domain/shared"
	"github.com/t1tandr/uevent/internal/domain/ticketing"
)

// PromoCodeInput is one code submitted together with a new event
type PromoCodeInput struct {
	Code     string          `json:"code" binding:"required,min=3,max=50"`
	Discount decimal.Decimal `json:"discount"`
}

// CreateEventInput contains everything needed to create an event
type CreateEventInput struct {
	OrganizerID uuid.UUID
	Details     event.Details
	Images      []shared.FileUpload
	PromoCodes  []PromoCodeInput
}

// UpdateEventInput is a partial update; nil fields are left unchanged
type UpdateEventInput struct {
	EventID uuid.UUID
	UserID  uuid.UUID
	Update  event.Update
}

// UpdateImagesInput replaces part of an event's gallery
type UpdateImagesInput struct {
	EventID        uuid.UUID
	UserID         uuid.UUID
	Images         []shared.FileUpload
	ImagesToDelete []string
}

// CreatePromoCodeRequest adds a promo code to an existing event
type CreatePromoCodeRequest struct {
	Code     string          `json:"code" binding:"required,min=3,max=50"`
	Discount decimal.Decimal `json:"discount"`
}

// UpdatePromoCodeRequest changes a promo code
type UpdatePromoCodeRequest struct {
	Code     *string          `json:"code" binding:"omitempty,min=3,max=50"`
	Discount *decimal.Decimal `json:"discount"`
}

// ValidatePromoCodeRequest checks a code against an event
type ValidatePromoCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// ListEventsQuery carries the public listing filters
type ListEventsQuery struct {
	Search   string `form:"search" binding:"max=200"`
	Format   string `form:"format" binding:"omitempty,event_format"`
	Theme    string `form:"theme" binding:"omitempty,event_theme"`
	Date     string `form:"date" binding:"omitempty,datetime=2006-01-02"`
	PriceMin string `form:"priceMin"`
	PriceMax string `form:"priceMax"`
	Category string `form:"category" binding:"omitempty,uuid"`
	Location string `form:"location" binding:"max=300"`
}

// SearchEventsQuery is ListEventsQuery with paging and sorting
type SearchEventsQuery struct {
	ListEventsQuery
	Page      int    `form:"page" binding:"omitempty,min=1"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=100"`
	SortBy    string `form:"sortBy" binding:"omitempty,oneof=date price popularity"`
	SortOrder string `form:"sortOrder" binding:"omitempty,oneof=asc desc"`
}

// DeleteImagesRequest lists gallery urls to drop
type DeleteImagesRequest struct {
	ImageURLs []string `json:"imageUrls" binding:"required,min=1,dive,required"`
}

// AttendeeQuery filters the attendee list
type AttendeeQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=ACTIVE CANCELLED"`
	Search string `form:"search" binding:"max=200"`
}

// UserSummary is the public part of a user shown next to events
type UserSummary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	AvatarURL string    `json:"avatarUrl"`
}

// CompanySummary identifies a company in nested responses
type CompanySummary struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	LogoURL string    `json:"logoUrl"`
}

// CategorySummary identifies a category in nested responses
type CategorySummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// EventResponse represents an event in API responses
type EventResponse struct {
	ID                uuid.UUID       `json:"id"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	Location          string          `json:"location"`
	Coordinates       string          `json:"coordinates,omitempty"`
	Date              time.Time       `json:"date"`
	Price             decimal.Decimal `json:"price"`
	MaxAttendees      *int            `json:"maxAttendees"`
	ImageURLs         []string        `json:"imageUrls"`
	Status            string          `json:"status"`
	Format            string          `json:"format"`
	Theme             string          `json:"theme"`
	IsAttendeesHidden bool            `json:"isAttendeesHidden"`
	RedirectURL       string          `json:"redirectUrl,omitempty"`
	PublishDate       time.Time       `json:"publishDate"`
	NotifyOrganizer   bool            `json:"notifyOrganizer"`
	OrganizerID       uuid.UUID       `json:"organizerId"`
	CompanyID         *uuid.UUID      `json:"companyId"`
	CategoryID        *uuid.UUID      `json:"categoryId"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`

	Category      *CategorySummary `json:"category,omitempty"`
	AttendeeCount *int64           `json:"attendeeCount,omitempty"`
}

// EventDetailResponse is the single-event view
type EventDetailResponse struct {
	EventResponse
	Organizer     *UserSummary      `json:"organizer"`
	Company       *CompanySummary   `json:"company"`
	Attendees     []UserSummary     `json:"attendees"`
	Comments      []CommentResponse `json:"comments"`
	SimilarEvents []EventResponse   `json:"similarEvents"`
}

// PromoCodeResponse represents a promo code in API responses
type PromoCodeResponse struct {
	ID        uuid.UUID       `json:"id"`
	Code      string          `json:"code"`
	Discount  decimal.Decimal `json:"discount"`
	EventID   uuid.UUID       `json:"eventId"`
	IsUsed    bool            `json:"isUsed"`
	CreatedAt time.Time       `json:"createdAt"`
}

// PromoCodeValidation is the priced outcome of a valid code
type PromoCodeValidation struct {
	Code          string          `json:"code"`
	Discount      decimal.Decimal `json:"discount"`
	OriginalPrice decimal.Decimal `json:"originalPrice"`
	FinalPrice    decimal.Decimal `json:"finalPrice"`
}

// AttendeeResponse is one ticket in the organizer's attendee list
type AttendeeResponse struct {
	TicketID      uuid.UUID        `json:"ticketId"`
	Status        string           `json:"status"`
	Price         decimal.Decimal  `json:"price"`
	PurchasedAt   time.Time        `json:"purchasedAt"`
	User          UserSummary      `json:"user"`
	PaymentStatus string           `json:"paymentStatus,omitempty"`
	PaymentAmount *decimal.Decimal `json:"paymentAmount,omitempty"`
}

// AttendeeStatistics counts tickets per status
type AttendeeStatistics struct {
	Statistics  map[string]int64 `json:"statistics"`
	TotalAmount decimal.Decimal  `json:"totalAmount"`
}

// CreateCommentRequest posts a comment or a reply
type CreateCommentRequest struct {
	Content  string     `json:"content" binding:"required,min=1,max=2000"`
	EventID  uuid.UUID  `json:"eventId" binding:"required"`
	ParentID *uuid.UUID `json:"parentId"`
}

// UpdateCommentRequest edits a comment
type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required,min=1,max=2000"`
}

// CommentResponse represents a comment with its replies
type CommentResponse struct {
	ID        uuid.UUID         `json:"id"`
	Content   string            `json:"content"`
	EventID   uuid.UUID         `json:"eventId"`
	ParentID  *uuid.UUID        `json:"parentId"`
	User      *UserSummary      `json:"user"`
	Replies   []CommentResponse `json:"replies,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// ToEventResponse converts a domain event to a response
func ToEventResponse(e *event.Event) EventResponse {
	images := e.ImageURLs
	if images == nil {
		images = []string{}
	}
	return EventResponse{
		ID:                e.ID,
		Title:             e.Title,
		Description:       e.Description,
		Location:          e.Location,
		Coordinates:       e.Coordinates,
		Date:              e.Date,
		Price:             e.Price,
		MaxAttendees:      e.MaxAttendees,
		ImageURLs:         images,
		Status:            string(e.Status),
		Format:            string(e.Format),
		Theme:             string(e.Theme),
		IsAttendeesHidden: e.IsAttendeesHidden,
		RedirectURL:       e.RedirectURL,
		PublishDate:       e.PublishDate,
		NotifyOrganizer:   e.NotifyOrganizer,
		OrganizerID:       e.OrganizerID,
		CompanyID:         e.CompanyID,
		CategoryID:        e.CategoryID,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}

// ToEventResponses converts a list of events
func ToEventResponses(events []*event.Event) []EventResponse {
	out := make([]EventResponse, len(events))
	for i, e := range events {
		out[i] = ToEventResponse(e)
	}
	return out
}

// ToUserSummary converts a user, leaving the email out
func ToUserSummary(u *identity.User) UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, AvatarURL: u.AvatarURL}
}

// ToCompanySummary converts a company
func ToCompanySummary(c *company.Company) CompanySummary {
	return CompanySummary{ID: c.ID, Name: c.Name, LogoURL: c.LogoURL}
}

// ToCategorySummary converts a category
func ToCategorySummary(c *catalog.Category) CategorySummary {
	return CategorySummary{ID: c.ID, Name: c.Name}
}

// ToPromoCodeResponse converts a promo code
func ToPromoCodeResponse(p *event.PromoCode) PromoCodeResponse {
	return PromoCodeResponse{
		ID:        p.ID,
		Code:      p.Code,
		Discount:  p.Discount,
		EventID:   p.EventID,
		IsUsed:    p.IsUsed,
		CreatedAt: p.CreatedAt,
	}
}

func toAttendeeResponse(t *ticketing.Ticket, u *identity.User, p *ticketing.Payment) AttendeeResponse {
	resp := AttendeeResponse{
		TicketID:    t.ID,
		Status:      string(t.Status),
		Price:       t.Price,
		PurchasedAt: t.CreatedAt,
	}
	if u != nil {
		resp.User = UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, AvatarURL: u.AvatarURL}
	} else {
		resp.User = UserSummary{ID: t.UserID}
	}
	if p != nil {
		resp.PaymentStatus = string(p.Status)
		amount := p.Amount
		resp.PaymentAmount = &amount
	}
	return resp
}
