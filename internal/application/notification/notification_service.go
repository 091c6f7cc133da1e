package notification

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/t1tandr/uevent/internal/domain/company"
	"github.com/t1tandr/uevent/internal/domain/event"
	"github.com/t1tandr/uevent/internal/domain/notification"
	"github.com/t1tandr/uevent/internal/domain/shared"
)

// NotificationService manages in-app notifications
type NotificationService struct {
	notifications notification.Repository
	events        event.EventRepository
	companies     company.CompanyRepository
	pusher        Pusher
	logger        *zap.Logger
}

// NewNotificationService creates a new notification service. pusher may be
// nil, in which case notifications are only stored.
func NewNotificationService(
	notifications notification.Repository,
	events event.EventRepository,
	companies company.CompanyRepository,
	pusher Pusher,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		events:        events,
		companies:     companies,
		pusher:        pusher,
		logger:        logger,
	}
}

// List returns the user's notifications, newest first
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, q ListQuery) ([]NotificationResponse, error) {
	ns, err := s.notifications.FindByUser(ctx, userID, q.Unread)
	if err != nil {
		return nil, err
	}
	return s.toResponses(ctx, ns)
}

// UnreadCount returns how many notifications the user has not read
func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (*UnreadCountResponse, error) {
	n, err := s.notifications.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UnreadCountResponse{Count: n}, nil
}

// MarkRead flags one notification as read
func (s *NotificationService) MarkRead(ctx context.Context, id, userID uuid.UUID) (*NotificationResponse, error) {
	n, err := s.notifications.FindByIDForUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, notification.ErrNotificationNotFound
		}
		return nil, err
	}
	if !n.IsRead {
		n.MarkRead()
		if err := s.notifications.Update(ctx, n); err != nil {
			return nil, err
		}
	}
	out, err := s.toResponses(ctx, []*notification.Notification{n})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// MarkAllRead flags every notification of the user as read
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (*MarkAllReadResponse, error) {
	n, err := s.notifications.MarkAllRead(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &MarkAllReadResponse{Updated: n}, nil
}

// Delete removes one of the user's notifications
func (s *NotificationService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	err := s.notifications.Delete(ctx, id, userID)
	if errors.Is(err, shared.ErrNotFound) {
		return notification.ErrNotificationNotFound
	}
	return err
}

// Notify stores the notifications and pushes them to connected clients
func (s *NotificationService) Notify(ctx context.Context, ns ...*notification.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	if len(ns) == 1 {
		if err := s.notifications.Create(ctx, ns[0]); err != nil {
			return err
		}
	} else if err := s.notifications.CreateBatch(ctx, ns); err != nil {
		return err
	}
	if s.pusher != nil {
		for _, n := range ns {
			s.pusher.Push(n.UserID, n)
		}
	}
	s.logger.Debug("notifications created",
		zap.Int("count", len(ns)),
		zap.String("type", string(ns[0].Type)))
	return nil
}

func (s *NotificationService) toResponses(ctx context.Context, ns []*notification.Notification) ([]NotificationResponse, error) {
	var eventIDs, companyIDs []uuid.UUID
	for _, n := range ns {
		if n.EventID != nil {
			eventIDs = append(eventIDs, *n.EventID)
		}
		if n.CompanyID != nil {
			companyIDs = append(companyIDs, *n.CompanyID)
		}
	}

	events := make(map[uuid.UUID]*event.Event)
	if len(eventIDs) > 0 {
		found, err := s.events.FindByIDs(ctx, uniqueIDs(eventIDs))
		if err != nil {
			return nil, err
		}
		for _, e := range found {
			events[e.ID] = e
		}
	}
	companies := make(map[uuid.UUID]*company.Company)
	if len(companyIDs) > 0 {
		found, err := s.companies.FindByIDs(ctx, uniqueIDs(companyIDs))
		if err != nil {
			return nil, err
		}
		for _, c := range found {
			companies[c.ID] = c
		}
	}

	out := make([]NotificationResponse, len(ns))
	for i, n := range ns {
		var (
			e *event.Event
			c *company.Company
		)
		if n.EventID != nil {
			e = events[*n.EventID]
		}
		if n.CompanyID != nil {
			c = companies[*n.CompanyID]
		}
		out[i] = ToNotificationResponse(n, e, c)
	}
	return out, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
