package notification

import (
	"time"

	"github.com/google/uuid"

	"github.com/t1tandr/uevent/internal/domain/company"
	"github.com/t1tandr/uevent/internal/domain/event"
	"github.com/t1tandr/uevent/internal/domain/notification"
)

// ListQuery filters the notification list
type ListQuery struct {
	Unread bool `form:"unread"`
}

// EventSummary is the event attached to a notification
type EventSummary struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
	Date  time.Time `json:"date"`
}

// CompanySummary is the company attached to a notification
type CompanySummary struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	LogoURL string    `json:"logoUrl,omitempty"`
}

// NotificationResponse represents a notification in API responses
type NotificationResponse struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	IsRead    bool            `json:"isRead"`
	CreatedAt time.Time       `json:"createdAt"`
	Event     *EventSummary   `json:"event,omitempty"`
	Company   *CompanySummary `json:"company,omitempty"`
}

// UnreadCountResponse is returned by the unread counter endpoint
type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

// MarkAllReadResponse reports how many notifications changed
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

// ToNotificationResponse converts a notification with its optional links
func ToNotificationResponse(n *notification.Notification, e *event.Event, c *company.Company) NotificationResponse {
	resp := NotificationResponse{
		ID:        n.ID,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
	if e != nil {
		resp.Event = &EventSummary{ID: e.ID, Title: e.Title, Date: e.Date}
	}
	if c != nil {
		resp.Company = &CompanySummary{ID: c.ID, Name: c.Name, LogoURL: c.LogoURL}
	}
	return resp
}
