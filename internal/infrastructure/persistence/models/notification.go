package models

import (
	"github.com/google/uuid"
	"github.com/t1tandr/uevent/internal/domain/notification"
)

// NotificationModel is the persistence model for a Notification.
type NotificationModel struct {
	BaseModel
	UserID    uuid.UUID         `gorm:"type:uuid;not null;index"`
	Type      notification.Type `gorm:"type:varchar(30);not null"`
	Title     string            `gorm:"type:varchar(300);not null"`
	Message   string            `gorm:"type:text"`
	IsRead    bool              `gorm:"not null;default:false"`
	EventID   *uuid.UUID        `gorm:"type:uuid"`
	CompanyID *uuid.UUID        `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (NotificationModel) TableName() string {
	return "notifications"
}

// ToDomain converts the persistence model to a domain Notification.
func (m *NotificationModel) ToDomain() *notification.Notification {
	return &notification.Notification{
		BaseEntity: m.BaseModel.ToDomain(),
		UserID:     m.UserID,
		Type:       m.Type,
		Title:      m.Title,
		Message:    m.Message,
		IsRead:     m.IsRead,
		EventID:    m.EventID,
		CompanyID:  m.CompanyID,
	}
}

// NotificationModelFromDomain creates a new persistence model from a domain Notification.
func NotificationModelFromDomain(n *notification.Notification) *NotificationModel {
	m := &NotificationModel{
		UserID:    n.UserID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		IsRead:    n.IsRead,
		EventID:   n.EventID,
		CompanyID: n.CompanyID,
	}
	m.FromDomainBaseEntity(n.BaseEntity)
	return m
}
