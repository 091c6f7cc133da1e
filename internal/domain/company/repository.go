package company

import (
	"context"

	"github.com/google/uuid"
)

// CompanyRepository defines the interface for company persistence
type CompanyRepository interface {
	// Create creates a new company
	Create(ctx context.Context, company *Company) error

	// Update saves changed company attributes
	Update(ctx context.Context, company *Company) error

	// FindByID finds a company by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Company, error)

	// FindAll returns all companies, newest first
	FindAll(ctx context.Context) ([]*Company, error)

	// FindByIDs loads several companies at once
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Company, error)
}

// MemberRepository defines the interface for membership persistence
type MemberRepository interface {
	Create(ctx context.Context, member *Member) error
	Update(ctx context.Context, member *Member) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Member, error)

	// FindByCompanyAndUser returns shared.ErrNotFound when the user is not a member
	FindByCompanyAndUser(ctx context.Context, companyID, userID uuid.UUID) (*Member, error)

	// FindByCompany lists members, optionally restricted to one role
	FindByCompany(ctx context.Context, companyID uuid.UUID, role *Role) ([]*Member, error)

	// FindByUser lists every membership of a user
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*Member, error)
}

// SubscriberRepository defines the interface for subscription persistence
type SubscriberRepository interface {
	Create(ctx context.Context, sub *Subscriber) error

	// Delete removes a subscription, returning shared.ErrNotFound when absent
	Delete(ctx context.Context, companyID, userID uuid.UUID) error

	Exists(ctx context.Context, companyID, userID uuid.UUID) (bool, error)
	FindByCompany(ctx context.Context, companyID uuid.UUID) ([]*Subscriber, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*Subscriber, error)
	CountByCompany(ctx context.Context, companyID uuid.UUID) (int64, error)

	// CountByCompanies returns subscriber counts keyed by company id
	CountByCompanies(ctx context.Context, companyIDs []uuid.UUID) (map[uuid.UUID]int64, error)
}
