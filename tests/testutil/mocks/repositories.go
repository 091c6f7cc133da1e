// Package mocks provides testify doubles for the domain repositories and
// shared ports, used by the application service tests.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/t1tandr/uevent/internal/domain/catalog"
	"github.com/t1tandr/uevent/internal/domain/company"
	"github.com/t1tandr/uevent/internal/domain/event"
	"github.com/t1tandr/uevent/internal/domain/identity"
	"github.com/t1tandr/uevent/internal/domain/notification"
	"github.com/t1tandr/uevent/internal/domain/ticketing"
)

// get returns argument i as T, or the zero value when it was set to nil
func get[T any](args mock.Arguments, i int) T {
	var zero T
	if v := args.Get(i); v != nil {
		return v.(T)
	}
	return zero
}

// UserRepository mocks identity.UserRepository
type UserRepository struct{ mock.Mock }

func (m *UserRepository) Create(ctx context.Context, u *identity.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *UserRepository) Update(ctx context.Context, u *identity.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	return get[*identity.User](args, 0), args.Error(1)
}

func (m *UserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	return get[*identity.User](args, 0), args.Error(1)
}

func (m *UserRepository) FindByGoogleID(ctx context.Context, googleID string) (*identity.User, error) {
	args := m.Called(ctx, googleID)
	return get[*identity.User](args, 0), args.Error(1)
}

func (m *UserRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*identity.User, error) {
	args := m.Called(ctx, ids)
	return get[[]*identity.User](args, 0), args.Error(1)
}

func (m *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

// EventRepository mocks event.EventRepository
type EventRepository struct{ mock.Mock }

func (m *EventRepository) Create(ctx context.Context, e *event.Event) error {
	return m.Called(ctx, e).Error(0)
}

func (m *EventRepository) Update(ctx context.Context, e *event.Event) error {
	return m.Called(ctx, e).Error(0)
}

func (m *EventRepository) SetStatus(ctx context.Context, id uuid.UUID, to event.Status, from ...event.Status) (bool, error) {
	args := m.Called(ctx, id, to, from)
	return args.Bool(0), args.Error(1)
}

func (m *EventRepository) FindByID(ctx context.Context, id uuid.UUID) (*event.Event, error) {
	args := m.Called(ctx, id)
	return get[*event.Event](args, 0), args.Error(1)
}

func (m *EventRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*event.Event, error) {
	args := m.Called(ctx, ids)
	return get[[]*event.Event](args, 0), args.Error(1)
}

func (m *EventRepository) FindPublished(ctx context.Context, filter event.ListFilter) ([]*event.Event, error) {
	args := m.Called(ctx, filter)
	return get[[]*event.Event](args, 0), args.Error(1)
}

func (m *EventRepository) Search(ctx context.Context, filter event.ListFilter, opts event.SearchOptions) ([]*event.Event, int64, error) {
	args := m.Called(ctx, filter, opts)
	return get[[]*event.Event](args, 0), get[int64](args, 1), args.Error(2)
}

func (m *EventRepository) FindSimilarCandidates(ctx context.Context, base *event.Event, now time.Time, limit int) ([]*event.Event, error) {
	args := m.Called(ctx, base, now, limit)
	return get[[]*event.Event](args, 0), args.Error(1)
}

func (m *EventRepository) FindByCompany(ctx context.Context, companyID uuid.UUID, filter event.CompanyEventsFilter) ([]*event.Event, error) {
	args := m.Called(ctx, companyID, filter)
	return get[[]*event.Event](args, 0), args.Error(1)
}

func (m *EventRepository) FindByOrganizer(ctx context.Context, organizerID uuid.UUID, status *event.Status) ([]*event.Event, error) {
	args := m.Called(ctx, organizerID, status)
	return get[[]*event.Event](args, 0), args.Error(1)
}

func (m *EventRepository) FindDueForReminder(ctx context.Context, from, to time.Time) ([]*event.Event, error) {
	args := m.Called(ctx, from, to)
	return get[[]*event.Event](args, 0), args.Error(1)
}

// PromoCodeRepository mocks event.PromoCodeRepository
type PromoCodeRepository struct{ mock.Mock }

func (m *PromoCodeRepository) Create(ctx context.Context, p *event.PromoCode) error {
	return m.Called(ctx, p).Error(0)
}

func (m *PromoCodeRepository) Update(ctx context.Context, p *event.PromoCode) error {
	return m.Called(ctx, p).Error(0)
}

func (m *PromoCodeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *PromoCodeRepository) FindByID(ctx context.Context, id uuid.UUID) (*event.PromoCode, error) {
	args := m.Called(ctx, id)
	return get[*event.PromoCode](args, 0), args.Error(1)
}

func (m *PromoCodeRepository) FindByEvent(ctx context.Context, eventID uuid.UUID) ([]*event.PromoCode, error) {
	args := m.Called(ctx, eventID)
	return get[[]*event.PromoCode](args, 0), args.Error(1)
}

func (m *PromoCodeRepository) FindByCode(ctx context.Context, code string) (*event.PromoCode, error) {
	args := m.Called(ctx, code)
	return get[*event.PromoCode](args, 0), args.Error(1)
}

func (m *PromoCodeRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *PromoCodeRepository) MarkUsed(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// CommentRepository mocks event.CommentRepository
type CommentRepository struct{ mock.Mock }

func (m *CommentRepository) Create(ctx context.Context, c *event.Comment) error {
	return m.Called(ctx, c).Error(0)
}

func (m *CommentRepository) Update(ctx context.Context, c *event.Comment) error {
	return m.Called(ctx, c).Error(0)
}

func (m *CommentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *CommentRepository) FindByID(ctx context.Context, id uuid.UUID) (*event.Comment, error) {
	args := m.Called(ctx, id)
	return get[*event.Comment](args, 0), args.Error(1)
}

func (m *CommentRepository) FindByEvent(ctx context.Context, eventID uuid.UUID) ([]*event.Comment, error) {
	args := m.Called(ctx, eventID)
	return get[[]*event.Comment](args, 0), args.Error(1)
}

// TicketRepository mocks ticketing.TicketRepository
type TicketRepository struct{ mock.Mock }

func (m *TicketRepository) Create(ctx context.Context, t *ticketing.Ticket) error {
	return m.Called(ctx, t).Error(0)
}

func (m *TicketRepository) Update(ctx context.Context, t *ticketing.Ticket) error {
	return m.Called(ctx, t).Error(0)
}

func (m *TicketRepository) FindByID(ctx context.Context, id uuid.UUID) (*ticketing.Ticket, error) {
	args := m.Called(ctx, id)
	return get[*ticketing.Ticket](args, 0), args.Error(1)
}

func (m *TicketRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*ticketing.Ticket, error) {
	args := m.Called(ctx, userID)
	return get[[]*ticketing.Ticket](args, 0), args.Error(1)
}

func (m *TicketRepository) FindByEvent(ctx context.Context, eventID uuid.UUID, filter ticketing.AttendeeFilter) ([]*ticketing.Ticket, error) {
	args := m.Called(ctx, eventID, filter)
	return get[[]*ticketing.Ticket](args, 0), args.Error(1)
}

func (m *TicketRepository) FindActiveByEventAndUser(ctx context.Context, eventID, userID uuid.UUID) (*ticketing.Ticket, error) {
	args := m.Called(ctx, eventID, userID)
	return get[*ticketing.Ticket](args, 0), args.Error(1)
}

func (m *TicketRepository) CountActiveByEvent(ctx context.Context, eventID uuid.UUID) (int64, error) {
	args := m.Called(ctx, eventID)
	return get[int64](args, 0), args.Error(1)
}

func (m *TicketRepository) CountByStatus(ctx context.Context, eventID uuid.UUID) (map[ticketing.TicketStatus]int64, error) {
	args := m.Called(ctx, eventID)
	return get[map[ticketing.TicketStatus]int64](args, 0), args.Error(1)
}

func (m *TicketRepository) SumActivePrices(ctx context.Context, eventID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, eventID)
	return get[decimal.Decimal](args, 0), args.Error(1)
}

// PaymentRepository mocks ticketing.PaymentRepository
type PaymentRepository struct{ mock.Mock }

func (m *PaymentRepository) Create(ctx context.Context, p *ticketing.Payment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *PaymentRepository) FindBySessionID(ctx context.Context, sessionID string) (*ticketing.Payment, error) {
	args := m.Called(ctx, sessionID)
	return get[*ticketing.Payment](args, 0), args.Error(1)
}

func (m *PaymentRepository) FindByTicketIDs(ctx context.Context, ids []uuid.UUID) ([]*ticketing.Payment, error) {
	args := m.Called(ctx, ids)
	return get[[]*ticketing.Payment](args, 0), args.Error(1)
}

func (m *PaymentRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*ticketing.Payment, error) {
	args := m.Called(ctx, userID)
	return get[[]*ticketing.Payment](args, 0), args.Error(1)
}

// CompanyRepository mocks company.CompanyRepository
type CompanyRepository struct{ mock.Mock }

func (m *CompanyRepository) Create(ctx context.Context, c *company.Company) error {
	return m.Called(ctx, c).Error(0)
}

func (m *CompanyRepository) Update(ctx context.Context, c *company.Company) error {
	return m.Called(ctx, c).Error(0)
}

func (m *CompanyRepository) FindByID(ctx context.Context, id uuid.UUID) (*company.Company, error) {
	args := m.Called(ctx, id)
	return get[*company.Company](args, 0), args.Error(1)
}

func (m *CompanyRepository) FindAll(ctx context.Context) ([]*company.Company, error) {
	args := m.Called(ctx)
	return get[[]*company.Company](args, 0), args.Error(1)
}

func (m *CompanyRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*company.Company, error) {
	args := m.Called(ctx, ids)
	return get[[]*company.Company](args, 0), args.Error(1)
}

// MemberRepository mocks company.MemberRepository
type MemberRepository struct{ mock.Mock }

func (m *MemberRepository) Create(ctx context.Context, mem *company.Member) error {
	return m.Called(ctx, mem).Error(0)
}

func (m *MemberRepository) Update(ctx context.Context, mem *company.Member) error {
	return m.Called(ctx, mem).Error(0)
}

func (m *MemberRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MemberRepository) FindByID(ctx context.Context, id uuid.UUID) (*company.Member, error) {
	args := m.Called(ctx, id)
	return get[*company.Member](args, 0), args.Error(1)
}

func (m *MemberRepository) FindByCompanyAndUser(ctx context.Context, companyID, userID uuid.UUID) (*company.Member, error) {
	args := m.Called(ctx, companyID, userID)
	return get[*company.Member](args, 0), args.Error(1)
}

func (m *MemberRepository) FindByCompany(ctx context.Context, companyID uuid.UUID, role *company.Role) ([]*company.Member, error) {
	args := m.Called(ctx, companyID, role)
	return get[[]*company.Member](args, 0), args.Error(1)
}

func (m *MemberRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*company.Member, error) {
	args := m.Called(ctx, userID)
	return get[[]*company.Member](args, 0), args.Error(1)
}

// SubscriberRepository mocks company.SubscriberRepository
type SubscriberRepository struct{ mock.Mock }

func (m *SubscriberRepository) Create(ctx context.Context, s *company.Subscriber) error {
	return m.Called(ctx, s).Error(0)
}

func (m *SubscriberRepository) Delete(ctx context.Context, companyID, userID uuid.UUID) error {
	return m.Called(ctx, companyID, userID).Error(0)
}

func (m *SubscriberRepository) Exists(ctx context.Context, companyID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, companyID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *SubscriberRepository) FindByCompany(ctx context.Context, companyID uuid.UUID) ([]*company.Subscriber, error) {
	args := m.Called(ctx, companyID)
	return get[[]*company.Subscriber](args, 0), args.Error(1)
}

func (m *SubscriberRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*company.Subscriber, error) {
	args := m.Called(ctx, userID)
	return get[[]*company.Subscriber](args, 0), args.Error(1)
}

func (m *SubscriberRepository) CountByCompany(ctx context.Context, companyID uuid.UUID) (int64, error) {
	args := m.Called(ctx, companyID)
	return get[int64](args, 0), args.Error(1)
}

func (m *SubscriberRepository) CountByCompanies(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	args := m.Called(ctx, ids)
	return get[map[uuid.UUID]int64](args, 0), args.Error(1)
}

// CategoryRepository mocks catalog.CategoryRepository
type CategoryRepository struct{ mock.Mock }

func (m *CategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	args := m.Called(ctx, id)
	return get[*catalog.Category](args, 0), args.Error(1)
}

func (m *CategoryRepository) FindAll(ctx context.Context) ([]catalog.Category, error) {
	args := m.Called(ctx)
	return get[[]catalog.Category](args, 0), args.Error(1)
}

func (m *CategoryRepository) Save(ctx context.Context, c *catalog.Category) error {
	return m.Called(ctx, c).Error(0)
}

func (m *CategoryRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

// NotificationRepository mocks notification.Repository
type NotificationRepository struct{ mock.Mock }

func (m *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *NotificationRepository) CreateBatch(ctx context.Context, ns []*notification.Notification) error {
	return m.Called(ctx, ns).Error(0)
}

func (m *NotificationRepository) FindByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*notification.Notification, error) {
	args := m.Called(ctx, userID, unreadOnly)
	return get[[]*notification.Notification](args, 0), args.Error(1)
}

func (m *NotificationRepository) FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*notification.Notification, error) {
	args := m.Called(ctx, id, userID)
	return get[*notification.Notification](args, 0), args.Error(1)
}

func (m *NotificationRepository) Update(ctx context.Context, n *notification.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *NotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return get[int64](args, 0), args.Error(1)
}

func (m *NotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return get[int64](args, 0), args.Error(1)
}

func (m *NotificationRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	return m.Called(ctx, id, userID).Error(0)
}

var (
	_ identity.UserRepository      = (*UserRepository)(nil)
	_ event.EventRepository        = (*EventRepository)(nil)
	_ event.PromoCodeRepository    = (*PromoCodeRepository)(nil)
	_ event.CommentRepository      = (*CommentRepository)(nil)
	_ ticketing.TicketRepository   = (*TicketRepository)(nil)
	_ ticketing.PaymentRepository  = (*PaymentRepository)(nil)
	_ company.CompanyRepository    = (*CompanyRepository)(nil)
	_ company.MemberRepository     = (*MemberRepository)(nil)
	_ company.SubscriberRepository = (*SubscriberRepository)(nil)
	_ catalog.CategoryRepository   = (*CategoryRepository)(nil)
	_ notification.Repository      = (*NotificationRepository)(nil)
)
