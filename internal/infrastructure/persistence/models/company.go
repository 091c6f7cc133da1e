package models

import (
	"github.com/google/uuid"
	"github.com/t1tandr/uevent/internal/domain/company"
)

// CompanyModel is the persistence model for the Company aggregate.
type CompanyModel struct {
	BaseModel
	Name        string    `gorm:"type:varchar(200);not null"`
	Email       string    `gorm:"type:varchar(200)"`
	Location    string    `gorm:"type:varchar(500);not null"`
	Description string    `gorm:"type:text"`
	Website     string    `gorm:"type:varchar(500)"`
	Phone       string    `gorm:"type:varchar(50)"`
	SocialMedia []string  `gorm:"type:jsonb;serializer:json"`
	LogoURL     string    `gorm:"type:varchar(1000)"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;index"`
}

// TableName returns the table name for GORM
func (CompanyModel) TableName() string {
	return "companies"
}

// ToDomain converts the persistence model to a domain Company.
func (m *CompanyModel) ToDomain() *company.Company {
	social := m.SocialMedia
	if social == nil {
		social = []string{}
	}
	return &company.Company{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		Email:             m.Email,
		Location:          m.Location,
		Description:       m.Description,
		Website:           m.Website,
		Phone:             m.Phone,
		SocialMedia:       social,
		LogoURL:           m.LogoURL,
		OwnerID:           m.OwnerID,
	}
}

// CompanyModelFromDomain creates a new persistence model from a domain Company.
func CompanyModelFromDomain(c *company.Company) *CompanyModel {
	m := &CompanyModel{
		Name:        c.Name,
		Email:       c.Email,
		Location:    c.Location,
		Description: c.Description,
		Website:     c.Website,
		Phone:       c.Phone,
		SocialMedia: c.SocialMedia,
		LogoURL:     c.LogoURL,
		OwnerID:     c.OwnerID,
	}
	m.FromDomainBaseEntity(c.BaseEntity)
	return m
}

// CompanyMemberModel is the persistence model for a company membership.
type CompanyMemberModel struct {
	BaseModel
	CompanyID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_company_member,priority:1"`
	UserID    uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_company_member,priority:2;index"`
	Role      company.Role `gorm:"type:varchar(20);not null;default:'MEMBER'"`
}

// TableName returns the table name for GORM
func (CompanyMemberModel) TableName() string {
	return "company_members"
}

// ToDomain converts the persistence model to a domain Member.
func (m *CompanyMemberModel) ToDomain() *company.Member {
	return &company.Member{
		BaseEntity: m.BaseModel.ToDomain(),
		CompanyID:  m.CompanyID,
		UserID:     m.UserID,
		Role:       m.Role,
	}
}

// CompanyMemberModelFromDomain creates a new persistence model from a domain Member.
func CompanyMemberModelFromDomain(mem *company.Member) *CompanyMemberModel {
	m := &CompanyMemberModel{
		CompanyID: mem.CompanyID,
		UserID:    mem.UserID,
		Role:      mem.Role,
	}
	m.FromDomainBaseEntity(mem.BaseEntity)
	return m
}

// SubscriberModel is the persistence model for a company subscription.
type SubscriberModel struct {
	BaseModel
	CompanyID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_subscriber,priority:1"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_subscriber,priority:2;index"`
}

// TableName returns the table name for GORM
func (SubscriberModel) TableName() string {
	return "subscribers"
}

// ToDomain converts the persistence model to a domain Subscriber.
func (m *SubscriberModel) ToDomain() *company.Subscriber {
	return &company.Subscriber{
		BaseEntity: m.BaseModel.ToDomain(),
		CompanyID:  m.CompanyID,
		UserID:     m.UserID,
	}
}

// SubscriberModelFromDomain creates a new persistence model from a domain Subscriber.
func SubscriberModelFromDomain(s *company.Subscriber) *SubscriberModel {
	m := &SubscriberModel{CompanyID: s.CompanyID, UserID: s.UserID}
	m.FromDomainBaseEntity(s.BaseEntity)
	return m
}
