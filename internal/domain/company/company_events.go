package company

import (
	"github.com/t1tandr/uevent/internal/domain/shared"
)

// Aggregate type constant for Company
const AggregateTypeCompany = "Company"

// Company domain event types
const (
	EventTypeCompanyUpdated    = "CompanyUpdated"
	EventTypeMemberInvited     = "CompanyMemberInvited"
	EventTypeMemberRoleUpdated = "CompanyMemberRoleUpdated"
)

// CompanyUpdatedEvent is published when company details change
type CompanyUpdatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewCompanyUpdatedEvent creates a new CompanyUpdatedEvent
func NewCompanyUpdatedEvent(c *Company) *CompanyUpdatedEvent {
	return &CompanyUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCompanyUpdated, AggregateTypeCompany, c.ID),
		Name:            c.Name,
	}
}

// MemberInvitedEvent is published when a user is added to a company
type MemberInvitedEvent struct {
	shared.BaseDomainEvent
	CompanyName string `json:"company_name"`
	UserID      string `json:"user_id"`
	Role        Role   `json:"role"`
}

// NewMemberInvitedEvent creates a new MemberInvitedEvent
func NewMemberInvitedEvent(c *Company, m *Member) *MemberInvitedEvent {
	return &MemberInvitedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMemberInvited, AggregateTypeCompany, c.ID),
		CompanyName:     c.Name,
		UserID:          m.UserID.String(),
		Role:            m.Role,
	}
}

// MemberRoleUpdatedEvent is published when a member's role changes
type MemberRoleUpdatedEvent struct {
	shared.BaseDomainEvent
	CompanyName string `json:"company_name"`
	UserID      string `json:"user_id"`
	OldRole     Role   `json:"old_role"`
	NewRole     Role   `json:"new_role"`
}

// NewMemberRoleUpdatedEvent creates a new MemberRoleUpdatedEvent
func NewMemberRoleUpdatedEvent(c *Company, m *Member, oldRole Role) *MemberRoleUpdatedEvent {
	return &MemberRoleUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMemberRoleUpdated, AggregateTypeCompany, c.ID),
		CompanyName:     c.Name,
		UserID:          m.UserID.String(),
		OldRole:         oldRole,
		NewRole:         m.Role,
	}
}
