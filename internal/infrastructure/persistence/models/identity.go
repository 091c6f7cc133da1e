package models

import (
	"github.com/t1tandr/uevent/internal/domain/identity"
)

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	BaseModel
	Email           string  `gorm:"type:varchar(200);not null;uniqueIndex"`
	Name            string  `gorm:"type:varchar(200);not null"`
	PasswordHash    *string `gorm:"type:varchar(255)"`
	GoogleID        *string `gorm:"type:varchar(100);uniqueIndex"`
	AvatarURL       string  `gorm:"type:varchar(1000)"`
	ShowInAttendees bool    `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	u := &identity.User{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Email:             m.Email,
		Name:              m.Name,
		GoogleID:          m.GoogleID,
		AvatarURL:         m.AvatarURL,
		ShowInAttendees:   m.ShowInAttendees,
	}
	if m.PasswordHash != nil {
		u.PasswordHash = *m.PasswordHash
	}
	return u
}

// FromDomain populates the persistence model from a domain User entity.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainBaseEntity(u.BaseEntity)
	m.Email = u.Email
	m.Name = u.Name
	m.PasswordHash = nil
	if u.PasswordHash != "" {
		hash := u.PasswordHash
		m.PasswordHash = &hash
	}
	m.GoogleID = u.GoogleID
	m.AvatarURL = u.AvatarURL
	m.ShowInAttendees = u.ShowInAttendees
}

// UserModelFromDomain creates a new persistence model from a domain User entity.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}
