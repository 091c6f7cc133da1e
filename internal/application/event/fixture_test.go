package event

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/t1tandr/uevent/internal/domain/event"
	"github.com/t1tandr/uevent/internal/domain/identity"
	"github.com/t1tandr/uevent/tests/testutil/mocks"
)

// MockPublisher is a mock implementation of Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Schedule(ctx context.Context, eventID uuid.UUID, publishAt time.Time) error {
	return m.Called(ctx, eventID, publishAt).Error(0)
}

func (m *MockPublisher) Cancel(ctx context.Context, eventID uuid.UUID) error {
	return m.Called(ctx, eventID).Error(0)
}

// MockExporter is a mock implementation of AttendeeExporter
type MockExporter struct {
	mock.Mock
}

func (m *MockExporter) Export(ctx context.Context, sheet AttendeeSheet) ([]byte, error) {
	args := m.Called(ctx, sheet)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockExporter) ContentType() string { return "application/test" }
func (m *MockExporter) Extension() string { return "xlsx" }

type fakeScope struct {
	events *mocks.EventRepository
	promos *mocks.PromoCodeRepository
	err    error
}

func (s *fakeScope) Events() event.EventRepository { return s.events }
func (s *fakeScope) PromoCodes() event.PromoCodeRepository { return s.promos }

func (s *fakeScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	if s.err != nil {
		return s.err
	}
	return fn(s)
}

type eventFixture struct {
	events     *mocks.EventRepository
	promos     *mocks.PromoCodeRepository
	comments   *mocks.CommentRepository
	tickets    *mocks.TicketRepository
	payments   *mocks.PaymentRepository
	users      *mocks.UserRepository
	companies  *mocks.CompanyRepository
	members    *mocks.MemberRepository
	categories *mocks.CategoryRepository
	storage    *mocks.ObjectStorage
	publisher  *MockPublisher
	exporter   *MockExporter
	published  *mocks.EventPublisher
	scope      *fakeScope

	service   *EventService
	promoSvc  *PromoCodeService
	attendees *AttendeeService
	comment   *CommentService
}

func newEventFixture(now time.Time) *eventFixture {
	f := &eventFixture{
		events:     new(mocks.EventRepository),
		promos:     new(mocks.PromoCodeRepository),
		comments:   new(mocks.CommentRepository),
		tickets:    new(mocks.TicketRepository),
		payments:   new(mocks.PaymentRepository),
		users:      new(mocks.UserRepository),
		companies:  new(mocks.CompanyRepository),
		members:    new(mocks.MemberRepository),
		categories: new(mocks.CategoryRepository),
		storage:    new(mocks.ObjectStorage),
		publisher:  new(MockPublisher),
		exporter:   new(MockExporter),
		published:  &mocks.EventPublisher{},
	}
	f.scope = &fakeScope{events: f.events, promos: f.promos}
	repos := Repositories{
		Events:     f.events,
		PromoCodes: f.promos,
		Comments:   f.comments,
		Tickets:    f.tickets,
		Payments:   f.payments,
		Users:      f.users,
		Companies:  f.companies,
		Members:    f.members,
		Categories: f.categories,
	}
	logger := zap.NewNop()
	f.service = NewEventService(repos, f.scope, f.publisher, f.storage, f.published, logger)
	f.service.now = func() time.Time { return now }
	f.promoSvc = NewPromoCodeService(repos, logger)
	f.attendees = NewAttendeeService(repos, f.exporter, logger)
	f.comment = NewCommentService(repos, logger)
	return f
}

func testDetails(date time.Time) event.Details {
	return event.Details{
		Title:       "Go Meetup",
		Description: "Talks about Go",
		Location:    "Kyiv",
		Date:        date,
		Price:       decimal.NewFromInt(10),
		Format:      event.FormatMeetup,
		Theme:       event.ThemeTechnology,
		PublishDate: date.Add(-72 * time.Hour),
	}
}

func newDraft(t *testing.T, organizerID uuid.UUID, date time.Time) *event.Event {
	t.Helper()
	e, err := event.NewEvent(organizerID, testDetails(date), nil)
	require.NoError(t, err)
	e.ClearDomainEvents()
	return e
}

func newPublished(t *testing.T, organizerID uuid.UUID, date time.Time) *event.Event {
	t.Helper()
	e := newDraft(t, organizerID, date)
	require.True(t, e.Publish())
	e.ClearDomainEvents()
	return e
}

func newUser(t *testing.T, email, name string) *identity.User {
	t.Helper()
	u, err := identity.NewUser(email, name, "secret123")
	require.NoError(t, err)
	u.ClearDomainEvents()
	return u
}
