package notification

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appticketing "github.com/t1tandr/uevent/internal/application/ticketing"
	"github.com/t1tandr/uevent/internal/domain/event"
	"github.com/t1tandr/uevent/internal/domain/identity"
	"github.com/t1tandr/uevent/internal/domain/notification"
	"github.com/t1tandr/uevent/tests/testutil/mocks"
)

// recordingMailer keeps every message it is asked to send
type recordingMailer struct {
	mu   sync.Mutex
	sent []MailMessage
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg MailMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.err
}

func (m *recordingMailer) templates() []string {
	out := make([]string, len(m.sent))
	for i, msg := range m.sent {
		out[i] = msg.Template
	}
	return out
}

type recordingPusher struct {
	pushed map[uuid.UUID][]*notification.Notification
}

func (p *recordingPusher) Push(userID uuid.UUID, n *notification.Notification) {
	if p.pushed == nil {
		p.pushed = make(map[uuid.UUID][]*notification.Notification)
	}
	p.pushed[userID] = append(p.pushed[userID], n)
}

// MockRenderer is a mock implementation of appticketing.TicketRenderer
type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) RenderTicket(ctx context.Context, doc appticketing.TicketDocument) ([]byte, error) {
	args := m.Called(ctx, doc)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

type notifyFixture struct {
	notifications *mocks.NotificationRepository
	users         *mocks.UserRepository
	events        *mocks.EventRepository
	tickets       *mocks.TicketRepository
	companies     *mocks.CompanyRepository
	subscribers   *mocks.SubscriberRepository
	mailer        *recordingMailer
	pusher        *recordingPusher
	service       *NotificationService
}

func newNotifyFixture() *notifyFixture {
	f := &notifyFixture{
		notifications: new(mocks.NotificationRepository),
		users:         new(mocks.UserRepository),
		events:        new(mocks.EventRepository),
		tickets:       new(mocks.TicketRepository),
		companies:     new(mocks.CompanyRepository),
		subscribers:   new(mocks.SubscriberRepository),
		mailer:        &recordingMailer{},
		pusher:        &recordingPusher{},
	}
	f.service = NewNotificationService(f.notifications, f.events, f.companies, f.pusher, zap.NewNop())
	return f
}

func (f *notifyFixture) repos() Repositories {
	return Repositories{
		Users:       f.users,
		Events:      f.events,
		Tickets:     f.tickets,
		Companies:   f.companies,
		Subscribers: f.subscribers,
	}
}

// stored returns every notification passed to Create or CreateBatch
func (f *notifyFixture) stored() []*notification.Notification {
	var out []*notification.Notification
	for _, call := range f.notifications.Calls {
		switch call.Method {
		case "Create":
			out = append(out, call.Arguments.Get(1).(*notification.Notification))
		case "CreateBatch":
			out = append(out, call.Arguments.Get(1).([]*notification.Notification)...)
		}
	}
	return out
}

func (f *notifyFixture) acceptNotifications() {
	f.notifications.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.notifications.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)
}

func newTestUser(t *testing.T, email, name string) *identity.User {
	t.Helper()
	u, err := identity.NewUser(email, name, "secret123")
	require.NoError(t, err)
	return u
}

func newTestEvent(t *testing.T, organizerID uuid.UUID, date time.Time) *event.Event {
	t.Helper()
	e, err := event.NewEvent(organizerID, event.Details{
		Title:    "Go Meetup",
		Location: "Kyiv",
		Date:     date,
		Price:    decimal.NewFromInt(15),
		Format:   event.FormatMeetup,
		Theme:    event.ThemeTechnology,
	}, nil)
	require.NoError(t, err)
	e.Publish()
	e.ClearDomainEvents()
	return e
}
