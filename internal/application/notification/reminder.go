package notification

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/t1tandr/uevent/internal/domain/notification"
)

// DefaultReminderWindow is how far ahead the sweep looks for events
const DefaultReminderWindow = 24 * time.Hour

// ReminderSweeper notifies ticket holders about events starting soon.
// Each event is reminded once; reminder_sent_at marks it done.
type ReminderSweeper struct {
	repos    Repositories
	notifier *NotificationService
	mailer   Mailer
	window   time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewReminderSweeper creates a sweeper with the default 24h window
func NewReminderSweeper(repos Repositories, notifier *NotificationService, mailer Mailer, logger *zap.Logger) *ReminderSweeper {
	return &ReminderSweeper{
		repos:    repos,
		notifier: notifier,
		mailer:   mailer,
		window:   DefaultReminderWindow,
		logger:   logger,
		now:      time.Now,
	}
}

// SetWindow changes how far ahead the sweep looks; non-positive values are ignored
func (s *ReminderSweeper) SetWindow(d time.Duration) {
	if d > 0 {
		s.window = d
	}
}

// Sweep reminds holders of every PUBLISHED event in (now, now+window].
// A failing event is logged and retried on the next sweep.
func (s *ReminderSweeper) Sweep(ctx context.Context) error {
	now := s.now()
	due, err := s.repos.Events.FindDueForReminder(ctx, now, now.Add(s.window))
	if err != nil {
		return fmt.Errorf("find events due for reminder: %w", err)
	}

	reminded := 0
	for _, e := range due {
		if err := ctx.Err(); err != nil {
			return err
		}
		holders, err := ticketHolders(ctx, s.repos, e.ID)
		if err != nil {
			s.logger.Error("failed to load ticket holders", zap.String("event_id", e.ID.String()), zap.Error(err))
			continue
		}

		notices := make([]*notification.Notification, 0, len(holders))
		for _, u := range holders {
			n, err := notification.New(u.ID, notification.TypeEventReminder,
				fmt.Sprintf("Reminder: %s is tomorrow!", e.Title),
				fmt.Sprintf("%s starts at %s in %s", e.Title, e.Date.Format("Jan 2, 2006 15:04"), e.Location))
			if err != nil {
				return err
			}
			notices = append(notices, n.ForEvent(e.ID))
		}
		if err := s.notifier.Notify(ctx, notices...); err != nil {
			s.logger.Error("failed to store reminders", zap.String("event_id", e.ID.String()), zap.Error(err))
			continue
		}
		for _, u := range holders {
			deliver(ctx, s.mailer, s.logger, MailMessage{To: u.Email, Template: TemplateEventReminder, Data: eventData(e, u.Name)})
		}

		e.MarkReminderSent(now)
		if err := s.repos.Events.Update(ctx, e); err != nil {
			s.logger.Error("failed to mark reminder sent", zap.String("event_id", e.ID.String()), zap.Error(err))
			continue
		}
		reminded++
	}

	if len(due) > 0 {
		s.logger.Info("event reminders sent", zap.Int("due", len(due)), zap.Int("reminded", reminded))
	}
	return nil
}
