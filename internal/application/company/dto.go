package company

import (
	"time"

	"github.com/google/uuid"

	appevent "github.com/t1tandr/uevent/internal/application/event"
	"github.com/t1tandr/uevent/internal/domain/company"
	"github.com/t1tandr/uevent/internal/domain/shared"
)

// CreateCompanyInput contains the fields of a new company
type CreateCompanyInput struct {
	OwnerID uuid.UUID
	Details company.CompanyDetails
	Logo    *shared.FileUpload
}

// UpdateCompanyRequest is a partial company update
type UpdateCompanyRequest struct {
	Name        *string  `json:"name" binding:"omitempty,min=1,max=200"`
	Email       *string  `json:"email" binding:"omitempty,email,max=200"`
	Location    *string  `json:"location" binding:"omitempty,min=1,max=300"`
	Description *string  `json:"description" binding:"omitempty,max=5000"`
	Website     *string  `json:"website" binding:"omitempty,max=500"`
	Phone       *string  `json:"phone" binding:"omitempty,max=50"`
	SocialMedia []string `json:"socialMedia" binding:"omitempty,max=20,dive,max=500"`
}

// AddMemberRequest invites an existing user by email
type AddMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required,company_role"`
}

// UpdateMemberRoleRequest changes a member's role
type UpdateMemberRoleRequest struct {
	Role string `json:"role" binding:"required,company_role"`
}

// CompanyEventsQuery filters a company's events
type CompanyEventsQuery struct {
	Status string `form:"status" binding:"omitempty,event_status"`
	Search string `form:"search" binding:"max=200"`
}

// CompanyResponse represents a company in API responses
type CompanyResponse struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Location         string    `json:"location"`
	Description      string    `json:"description"`
	Website          string    `json:"website"`
	Phone            string    `json:"phone"`
	SocialMedia      []string  `json:"socialMedia"`
	LogoURL          string    `json:"logoUrl"`
	OwnerID          uuid.UUID `json:"ownerId"`
	SubscribersCount int64     `json:"subscribersCount"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// MyCompanyResponse is a company listed with the caller's role
type MyCompanyResponse struct {
	CompanyResponse
	Role string `json:"role"`
}

// MemberResponse represents a membership with its user
type MemberResponse struct {
	ID        uuid.UUID             `json:"id"`
	CompanyID uuid.UUID             `json:"companyId"`
	UserID    uuid.UUID             `json:"userId"`
	Role      string                `json:"role"`
	User      *appevent.UserSummary `json:"user"`
	CreatedAt time.Time             `json:"createdAt"`
}

// SubscriberResponse represents a subscription with its user
type SubscriberResponse struct {
	ID        uuid.UUID             `json:"id"`
	CompanyID uuid.UUID             `json:"companyId"`
	UserID    uuid.UUID             `json:"userId"`
	User      *appevent.UserSummary `json:"user,omitempty"`
	CreatedAt time.Time             `json:"createdAt"`
}

// CompanyDetailResponse is the single-company view
type CompanyDetailResponse struct {
	CompanyResponse
	Members []MemberResponse         `json:"members"`
	Events  []appevent.EventResponse `json:"events"`
}

// ToCompanyResponse converts a domain company
func ToCompanyResponse(c *company.Company, subscribers int64) CompanyResponse {
	social := c.SocialMedia
	if social == nil {
		social = []string{}
	}
	return CompanyResponse{
		ID:               c.ID,
		Name:             c.Name,
		Email:            c.Email,
		Location:         c.Location,
		Description:      c.Description,
		Website:          c.Website,
		Phone:            c.Phone,
		SocialMedia:      social,
		LogoURL:          c.LogoURL,
		OwnerID:          c.OwnerID,
		SubscribersCount: subscribers,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}
