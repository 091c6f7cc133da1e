package notification

import (
	"strings"

	"github.com/google/uuid"
	"github.com/t1tandr/uevent/internal/domain/shared"
)

// Type classifies a notification
type Type string

const (
	TypeEventReminder   Type = "EVENT_REMINDER"
	TypeNewAttendee     Type = "NEW_ATTENDEE"
	TypeCompanyUpdate   Type = "COMPANY_UPDATE"
	TypeNewEvent        Type = "NEW_EVENT"
	TypeEventUpdate     Type = "EVENT_UPDATE"
	TypeEventCancelled  Type = "EVENT_CANCELLED"
	TypeTicketPurchased Type = "TICKET_PURCHASED"
)

// IsValid reports whether t is a known type
func (t Type) IsValid() bool {
	switch t {
	case TypeEventReminder, TypeNewAttendee, TypeCompanyUpdate, TypeNewEvent,
		TypeEventUpdate, TypeEventCancelled, TypeTicketPurchased:
		return true
	}
	return false
}

// ErrNotificationNotFound is returned for unknown or foreign notifications
var ErrNotificationNotFound = shared.NewDomainError("NOTIFICATION_NOT_FOUND", "Notification not found")

// Notification is an in-app message for one user
type Notification struct {
	shared.BaseEntity
	UserID    uuid.UUID
	Type      Type
	Title     string
	Message   string
	IsRead    bool
	EventID   *uuid.UUID
	CompanyID *uuid.UUID
}

// New creates an unread notification
func New(userID uuid.UUID, typ Type, title, message string) (*Notification, error) {
	if !typ.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", "Invalid notification type")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Notification title cannot be empty")
	}
	return &Notification{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		Type:       typ,
		Title:      title,
		Message:    strings.TrimSpace(message),
	}, nil
}

// ForEvent links the notification to an event
func (n *Notification) ForEvent(eventID uuid.UUID) *Notification {
	n.EventID = &eventID
	return n
}

// ForCompany links the notification to a company
func (n *Notification) ForCompany(companyID uuid.UUID) *Notification {
	n.CompanyID = &companyID
	return n
}

// MarkRead flags the notification as read
func (n *Notification) MarkRead() {
	if n.IsRead {
		return
	}
	n.IsRead = true
	n.Touch()
}
