package company

import (
	"strings"

	"github.com/google/uuid"
	"github.com/t1tandr/uevent/internal/domain/shared"
)

// Company errors
var (
	ErrCompanyNotFound         = shared.NewDomainError("COMPANY_NOT_FOUND", "Company not found")
	ErrInsufficientPermissions = shared.NewDomainError("INSUFFICIENT_PERMISSIONS", "Insufficient permissions")
	ErrAlreadyMember           = shared.NewDomainError("MEMBER_ALREADY_EXISTS", "User is already a member")
	ErrMemberNotFound          = shared.NewDomainError("MEMBER_NOT_FOUND", "Member not found")
	ErrCannotChangeOwnerRole   = shared.NewDomainError("FORBIDDEN", "Cannot change owner role")
	ErrCannotRemoveOwner       = shared.NewDomainError("FORBIDDEN", "Cannot remove owner")
	ErrOwnerRoleNotAssignable  = shared.NewDomainError("INVALID_ROLE", "Owner role cannot be assigned")
	ErrAlreadySubscribed       = shared.NewDomainError("SUBSCRIPTION_ALREADY_EXISTS", "Already subscribed")
	ErrSubscriptionNotFound    = shared.NewDomainError("SUBSCRIPTION_NOT_FOUND", "Subscription not found")
)

// Company is an organization that publishes events
type Company struct {
	shared.BaseAggregateRoot
	Name        string
	Email       string
	Location    string
	Description string
	Website     string
	Phone       string
	SocialMedia []string
	LogoURL     string
	OwnerID     uuid.UUID
}

// CompanyDetails holds the editable company attributes
type CompanyDetails struct {
	Name        string
	Email       string
	Location    string
	Description string
	Website     string
	Phone       string
	SocialMedia []string
}

// NewCompany creates a company owned by ownerID
func NewCompany(ownerID uuid.UUID, details CompanyDetails) (*Company, error) {
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Owner is required")
	}
	c := &Company{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OwnerID:           ownerID,
	}
	if err := c.apply(details); err != nil {
		return nil, err
	}
	return c, nil
}

// CompanyUpdate carries a partial update; nil fields are left unchanged
type CompanyUpdate struct {
	Name        *string
	Email       *string
	Location    *string
	Description *string
	Website     *string
	Phone       *string
	SocialMedia []string
}

// Update applies a partial update and raises CompanyUpdated
func (c *Company) Update(upd CompanyUpdate) error {
	details := CompanyDetails{
		Name:        c.Name,
		Email:       c.Email,
		Location:    c.Location,
		Description: c.Description,
		Website:     c.Website,
		Phone:       c.Phone,
		SocialMedia: c.SocialMedia,
	}
	if upd.Name != nil {
		details.Name = *upd.Name
	}
	if upd.Email != nil {
		details.Email = *upd.Email
	}
	if upd.Location != nil {
		details.Location = *upd.Location
	}
	if upd.Description != nil {
		details.Description = *upd.Description
	}
	if upd.Website != nil {
		details.Website = *upd.Website
	}
	if upd.Phone != nil {
		details.Phone = *upd.Phone
	}
	if upd.SocialMedia != nil {
		details.SocialMedia = upd.SocialMedia
	}
	if err := c.apply(details); err != nil {
		return err
	}
	c.Touch()
	c.AddDomainEvent(NewCompanyUpdatedEvent(c))
	return nil
}

// SetLogo replaces the logo url and returns the previous one
func (c *Company) SetLogo(url string) string {
	prev := c.LogoURL
	c.LogoURL = url
	c.Touch()
	return prev
}

func (c *Company) apply(d CompanyDetails) error {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Company name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Company name cannot exceed 200 characters")
	}
	location := strings.TrimSpace(d.Location)
	if location == "" {
		return shared.NewDomainError("INVALID_LOCATION", "Company location cannot be empty")
	}
	social := make([]string, 0, len(d.SocialMedia))
	for _, s := range d.SocialMedia {
		if s = strings.TrimSpace(s); s != "" {
			social = append(social, s)
		}
	}

	c.Name = name
	c.Email = strings.ToLower(strings.TrimSpace(d.Email))
	c.Location = location
	c.Description = strings.TrimSpace(d.Description)
	c.Website = strings.TrimSpace(d.Website)
	c.Phone = strings.TrimSpace(d.Phone)
	c.SocialMedia = social
	return nil
}
