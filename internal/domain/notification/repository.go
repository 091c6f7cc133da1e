package notification

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for notification persistence
type Repository interface {
	Create(ctx context.Context, n *Notification) error

	// CreateBatch inserts many notifications in one statement
	CreateBatch(ctx context.Context, ns []*Notification) error

	// FindByUser lists a user's notifications newest first
	FindByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*Notification, error)

	// FindByIDForUser returns shared.ErrNotFound unless userID owns the notification
	FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*Notification, error)

	Update(ctx context.Context, n *Notification) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}
