package company

import (
	"github.com/google/uuid"
	"github.com/t1tandr/uevent/internal/domain/shared"
)

// Role is a member's role inside a company
type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleEditor Role = "EDITOR"
	RoleMember Role = "MEMBER"
)

// AllRoles lists every role in display order
var AllRoles = []Role{RoleOwner, RoleEditor, RoleMember}

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleEditor, RoleMember:
		return true
	}
	return false
}

// CanManage reports whether the role may edit company data and events
func (r Role) CanManage() bool {
	return r == RoleOwner || r == RoleEditor
}

// Member links a user to a company
type Member struct {
	shared.BaseEntity
	CompanyID uuid.UUID
	UserID    uuid.UUID
	Role      Role
}

// NewOwner creates the owner membership for a new company
func NewOwner(companyID, userID uuid.UUID) *Member {
	return &Member{
		BaseEntity: shared.NewBaseEntity(),
		CompanyID:  companyID,
		UserID:     userID,
		Role:       RoleOwner,
	}
}

// NewMember creates a non-owner membership
func NewMember(companyID, userID uuid.UUID, role Role) (*Member, error) {
	if err := validateAssignableRole(role); err != nil {
		return nil, err
	}
	return &Member{
		BaseEntity: shared.NewBaseEntity(),
		CompanyID:  companyID,
		UserID:     userID,
		Role:       role,
	}, nil
}

// ChangeRole updates the member's role. The owner's role is fixed.
func (m *Member) ChangeRole(role Role) error {
	if m.Role == RoleOwner {
		return ErrCannotChangeOwnerRole
	}
	if err := validateAssignableRole(role); err != nil {
		return err
	}
	m.Role = role
	m.Touch()
	return nil
}

// CanBeRemoved reports whether the membership may be deleted
func (m *Member) CanBeRemoved() error {
	if m.Role == RoleOwner {
		return ErrCannotRemoveOwner
	}
	return nil
}

func validateAssignableRole(role Role) error {
	if !role.IsValid() {
		return shared.NewDomainError("INVALID_ROLE", "Invalid company role")
	}
	if role == RoleOwner {
		return ErrOwnerRoleNotAssignable
	}
	return nil
}

// Subscriber follows a company to hear about its events
type Subscriber struct {
	shared.BaseEntity
	CompanyID uuid.UUID
	UserID    uuid.UUID
}

// NewSubscriber creates a subscription
func NewSubscriber(companyID, userID uuid.UUID) *Subscriber {
	return &Subscriber{
		BaseEntity: shared.NewBaseEntity(),
		CompanyID:  companyID,
		UserID:     userID,
	}
}
