package ticketing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/t1tandr/uevent/internal/domain/event"
	"github.com/t1tandr/uevent/internal/domain/identity"
	"github.com/t1tandr/uevent/internal/domain/shared"
	"github.com/t1tandr/uevent/internal/domain/ticketing"
	"github.com/t1tandr/uevent/internal/infrastructure/cache"
	"github.com/t1tandr/uevent/tests/testutil/mocks"
)

// MockGateway is a mock implementation of PaymentGateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	args := m.Called(ctx, req)
	s, _ := args.Get(0).(*CheckoutSession)
	return s, args.Error(1)
}

func (m *MockGateway) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	args := m.Called(ctx, sessionID)
	s, _ := args.Get(0).(*CheckoutSession)
	return s, args.Error(1)
}

func (m *MockGateway) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	args := m.Called(payload, signature)
	e, _ := args.Get(0).(*WebhookEvent)
	return e, args.Error(1)
}

// MockRenderer is a mock implementation of TicketRenderer
type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) RenderTicket(ctx context.Context, doc TicketDocument) ([]byte, error) {
	args := m.Called(ctx, doc)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

type countingRecorder struct {
	outcomes []string
}

func (r *countingRecorder) CheckoutSession(outcome string) {
	r.outcomes = append(r.outcomes, outcome)
}

type fakeScope struct {
	events   *mocks.EventRepository
	promos   *mocks.PromoCodeRepository
	tickets  *mocks.TicketRepository
	payments *mocks.PaymentRepository
}

func (s *fakeScope) Events() event.EventRepository { return s.events }
func (s *fakeScope) PromoCodes() event.PromoCodeRepository { return s.promos }
func (s *fakeScope) Tickets() ticketing.TicketRepository { return s.tickets }
func (s *fakeScope) Payments() ticketing.PaymentRepository { return s.payments }

func (s *fakeScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

type ticketFixture struct {
	events    *mocks.EventRepository
	promos    *mocks.PromoCodeRepository
	tickets   *mocks.TicketRepository
	payments  *mocks.PaymentRepository
	users     *mocks.UserRepository
	gateway   *MockGateway
	renderer  *MockRenderer
	published *mocks.EventPublisher
	recorder  *countingRecorder
	store     *cache.InMemoryIdempotencyStore
	service   *TicketService
}

func newTicketFixture(t *testing.T, now time.Time, withGateway bool) *ticketFixture {
	f := &ticketFixture{
		events:    new(mocks.EventRepository),
		promos:    new(mocks.PromoCodeRepository),
		tickets:   new(mocks.TicketRepository),
		payments:  new(mocks.PaymentRepository),
		users:     new(mocks.UserRepository),
		gateway:   new(MockGateway),
		renderer:  new(MockRenderer),
		published: &mocks.EventPublisher{},
		recorder:  &countingRecorder{},
		store:     cache.NewInMemoryIdempotencyStore(),
	}
	t.Cleanup(func() { _ = f.store.Close() })

	opts := []TicketServiceOption{WithIdempotencyStore(f.store), WithCheckoutRecorder(f.recorder)}
	if withGateway {
		opts = append(opts, WithPaymentGateway(f.gateway))
	}
	f.service = NewTicketService(
		Repositories{Events: f.events, PromoCodes: f.promos, Tickets: f.tickets, Payments: f.payments, Users: f.users},
		&fakeScope{events: f.events, promos: f.promos, tickets: f.tickets, payments: f.payments},
		f.renderer,
		f.published,
		zap.NewNop(),
		opts...,
	)
	f.service.now = func() time.Time { return now }
	return f
}

func publishedEvent(t *testing.T, price decimal.Decimal, date time.Time) *event.Event {
	t.Helper()
	e, err := event.NewEvent(uuid.New(), event.Details{
		Title:       "Concert",
		Location:    "Kyiv",
		Date:        date,
		Price:       price,
		Format:      event.FormatFestival,
		Theme:       event.ThemeMusic,
		PublishDate: date.Add(-time.Hour),
	}, []string{"https://cdn/events/poster.png"})
	require.NoError(t, err)
	e.Publish()
	e.ClearDomainEvents()
	return e
}

// expectIssue prepares the transactional writes of a first confirmation
func (f *ticketFixture) expectIssue(e *event.Event, sessionID string) {
	f.payments.On("FindBySessionID", mock.Anything, sessionID).Return(nil, shared.ErrNotFound).Once()
	f.events.On("FindByID", mock.Anything, e.ID).Return(e, nil)
	f.tickets.On("FindActiveByEventAndUser", mock.Anything, e.ID, mock.Anything).Return(nil, shared.ErrNotFound)
	f.tickets.On("CountActiveByEvent", mock.Anything, e.ID).Return(int64(0), nil)
	f.tickets.On("Create", mock.Anything, mock.AnythingOfType("*ticketing.Ticket")).Return(nil)
	f.payments.On("Create", mock.Anything, mock.AnythingOfType("*ticketing.Payment")).Return(nil)
}

func TestTicketService_Purchase(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()

	t.Run("free event issues the ticket at once", func(t *testing.T) {
		f := newTicketFixture(t, now, false)
		e := publishedEvent(t, decimal.Zero, now.Add(24*time.Hour))
		f.tickets.On("FindActiveByEventAndUser", mock.Anything, e.ID, userID).Return(nil, shared.ErrNotFound)
		f.payments.On("FindBySessionID", mock.Anything, mock.MatchedBy(func(id string) bool { return len(id) > 5 && id[:5] == "free_" })).
			Return(nil, shared.ErrNotFound)
		f.events.On("FindByID", mock.Anything, e.ID).Return(e, nil)
		f.tickets.On("CountActiveByEvent", mock.Anything, e.ID).Return(int64(0), nil)
		f.tickets.On("Create", mock.Anything, mock.AnythingOfType("*ticketing.Ticket")).Return(nil)
		f.payments.On("Create", mock.Anything, mock.MatchedBy(func(p *ticketing.Payment) bool {
			return p.Provider == ticketing.ProviderFree && p.Amount.IsZero()
		})).Return(nil)

		res, err := f.service.Purchase(ctx, userID, PurchaseRequest{EventID: e.ID})
		require.NoError(t, err)
		require.NotNil(t, res.Ticket)
		assert.Equal(t, "ACTIVE", res.Ticket.Status)
		assert.Empty(t, res.URL)
		assert.Equal(t, []string{ticketing.EventTypeTicketPurchased}, f.published.Types())
		assert.Empty(t, f.recorder.outcomes)
	})

	t.Run("paid event opens a checkout with the discounted price", func(t *testing.T) {
		f := newTicketFixture(t, now, true)
		e := publishedEvent(t, decimal.RequireFromString("19.99"), now.Add(24*time.Hour))
		promo, err := event.NewPromoCode(e.ID, "HALF", decimal.RequireFromString("0.5"))
		require.NoError(t, err)
		user, err := identity.NewUser("bob@example.com", "Bob", "secret123")
		require.NoError(t, err)

		f.events.On("FindByID", mock.Anything, e.ID).Return(e, nil)
		f.tickets.On("CountActiveByEvent", mock.Anything, e.ID).Return(int64(3), nil)
		f.tickets.On("FindActiveByEventAndUser", mock.Anything, e.ID, userID).Return(nil, shared.ErrNotFound)
		f.promos.On("FindByCode", mock.Anything, "HALF").Return(promo, nil)
		f.users.On("FindByID", mock.Anything, userID).Return(user, nil)
		f.gateway.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(req CheckoutRequest) bool {
			return req.Amount.Equal(decimal.RequireFromString("10")) &&
				req.PromoCode == "HALF" &&
				req.CustomerEmail == "bob@example.com" &&
				req.ImageURL == "https://cdn/events/poster.png"
		})).Return(&CheckoutSession{ID: "cs_1", URL: "https://checkout/cs_1"}, nil)

		res, err := f.service.Purchase(ctx, userID, PurchaseRequest{EventID: e.ID, PromoCode: " HALF "})
		require.NoError(t, err)
		assert.Nil(t, res.Ticket)
		assert.Equal(t, "cs_1", res.SessionID)
		assert.Equal(t, "https://checkout/cs_1", res.URL)
		assert.Equal(t, []string{CheckoutCreated}, f.recorder.outcomes)
		f.tickets.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("paid event without gateway", func(t *testing.T) {
		f := newTicketFixture(t, now, false)
		e := publishedEvent(t, decimal.NewFromInt(5), now.Add(24*time.Hour))
		f.events.On("FindByID", mock.Anything, e.ID).Return(e, nil)
		f.tickets.On("CountActiveByEvent", mock.Anything, e.ID).Return(int64(0), nil)
		f.tickets.On("FindActiveByEventAndUser", mock.Anything, e.ID, userID).Return(nil, shared.ErrNotFound)

		_, err := f.service.Purchase(ctx, userID, PurchaseRequest{EventID: e.ID})
		assert.ErrorIs(t, err, ErrPaymentsDisabled)
	})

	t.Run("rejections", func(t *testing.T) {
		full := 2
		soldOut := publishedEvent(t, decimal.Zero, now.Add(time.Hour))
		soldOut.MaxAttendees = &full
		past := publishedEvent(t, decimal.Zero, now.Add(-time.Hour))
		draft, err := event.NewEvent(uuid.New(), event.Details{
			Title: "Draft", Location: "Kyiv", Date: now.Add(time.Hour),
			Format: event.FormatOther, Theme: event.ThemeOther,
		}, nil)
		require.NoError(t, err)
		owned := publishedEvent(t, decimal.Zero, now.Add(time.Hour))
		existing, err := ticketing.NewTicket(owned.ID, userID, decimal.Zero)
		require.NoError(t, err)

		f := newTicketFixture(t, now, true)
		f.events.On("FindByID", mock.Anything, soldOut.ID).Return(soldOut, nil)
		f.events.On("FindByID", mock.Anything, past.ID).Return(past, nil)
		f.events.On("FindByID", mock.Anything, draft.ID).Return(draft, nil)
		f.events.On("FindByID", mock.Anything, owned.ID).Return(owned, nil)
		f.tickets.On("CountActiveByEvent", mock.Anything, soldOut.ID).Return(int64(2), nil)
		f.tickets.On("CountActiveByEvent", mock.Anything, past.ID).Return(int64(0), nil)
		f.tickets.On("CountActiveByEvent", mock.Anything, draft.ID).Return(int64(0), nil)
		f.tickets.On("CountActiveByEvent", mock.Anything, owned.ID).Return(int64(1), nil)
		f.tickets.On("FindActiveByEventAndUser", mock.Anything, owned.ID, userID).Return(existing, nil)

		cases := map[uuid.UUID]error{
			soldOut.ID: event.ErrEventFull,
			past.ID:    event.ErrEventAlreadyPast,
			draft.ID:   event.ErrEventNotOnSale,
			owned.ID:   ticketing.ErrTicketAlreadyOwned,
		}
		for id, want := range cases {
			_, err := f.service.Purchase(ctx, userID, PurchaseRequest{EventID: id})
			assert.ErrorIs(t, err, want)
		}
	})

	t.Run("promo code of another event", func(t *testing.T) {
		f := newTicketFixture(t, now, true)
		e := publishedEvent(t, decimal.NewFromInt(10), now.Add(time.Hour))
		foreign, err := event.NewPromoCode(uuid.New(), "OTHER", decimal.RequireFromString("0.5"))
		require.NoError(t, err)
		f.events.On("FindByID", mock.Anything, e.ID).Return(e, nil)
		f.tickets.On("CountActiveByEvent", mock.Anything, e.ID).Return(int64(0), nil)
		f.tickets.On("FindActiveByEventAndUser", mock.Anything, e.ID, userID).Return(nil, shared.ErrNotFound)
		f.promos.On("FindByCode", mock.Anything, "OTHER").Return(foreign, nil)

		_, err = f.service.Purchase(ctx, userID, PurchaseRequest{EventID: e.ID, PromoCode: "OTHER"})
		assert.ErrorIs(t, err, event.ErrPromoCodeInvalid)
	})
}

func TestTicketService_ConfirmCheckout(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	userID := uuid.New()

	t.Run("issues ticket, marks promo and records payment", func(t *testing.T) {
		f := newTicketFixture(t, now, true)
		e := publishedEvent(t, decimal.NewFromInt(20), now.Add(time.Hour))
		promo, err := event.NewPromoCode(e.ID, "TEN", decimal.RequireFromString("0.1"))
		require.NoError(t, err)
		f.expectIssue(e, "cs_42")
		f.promos.On("FindByCode", mock.Anything, "TEN").Return(promo, nil)
		f.promos.On("MarkUsed", mock.Anything, promo.ID).Return(true, nil)

		ticket, err := f.service.ConfirmCheckout(ctx, CheckoutConfirmation{
			SessionID: "cs_42",
			EventID:   e.ID,
			UserID:    userID,
			PromoCode: "TEN",
			Amount:    decimal.NewFromInt(18),
			Currency:  "USD",
			Provider:  ticketing.ProviderStripe,
		})
		require.NoError(t, err)
		assert.True(t, ticket.Price.Equal(decimal.NewFromInt(18)))
		f.promos.AssertCalled(t, "MarkUsed", mock.Anything, promo.ID)
		f.payments.AssertCalled(t, "Create", mock.Anything, mock.MatchedBy(func(p *ticketing.Payment) bool {
			return p.ProviderSessionID == "cs_42" && p.Currency == "usd" && p.TicketID == ticket.ID
		}))
		assert.Equal(t, []string{CheckoutCompleted}, f.recorder.outcomes)
		assert.Len(t, f.published.Published(), 1)
	})

	t.Run("repeated session returns the existing ticket", func(t *testing.T) {
		f := newTicketFixture(t, now, true)
		e := publishedEvent(t, decimal.NewFromInt(20), now.Add(time.Hour))
		ticket, err := ticketing.NewTicket(e.ID, userID, decimal.NewFromInt(20))
		require.NoError(t, err)
		payment, err := ticketing.NewCompletedPayment(ticket, ticket.Price, "usd", ticketing.ProviderStripe, "cs_dup")
		require.NoError(t, err)
		f.payments.On("FindBySessionID", mock.Anything, "cs_dup").Return(payment, nil)
		f.tickets.On("FindByID", mock.Anything, ticket.ID).Return(ticket, nil)

		got, err := f.service.ConfirmCheckout(ctx, CheckoutConfirmation{SessionID: "cs_dup", EventID: e.ID, UserID: userID, Provider: ticketing.ProviderStripe})
		require.NoError(t, err)
		assert.Equal(t, ticket.ID, got.ID)
		f.tickets.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		assert.Empty(t, f.published.Published())
	})

	t.Run("capacity is re-checked", func(t *testing.T) {
		f := newTicketFixture(t, now, true)
		e := publishedEvent(t, decimal.NewFromInt(20), now.Add(time.Hour))
		limit := 1
		e.MaxAttendees = &limit
		f.payments.On("FindBySessionID", mock.Anything, "cs_full").Return(nil, shared.ErrNotFound)
		f.events.On("FindByID", mock.Anything, e.ID).Return(e, nil)
		f.tickets.On("FindActiveByEventAndUser", mock.Anything, e.ID, userID).Return(nil, shared.ErrNotFound)
		f.tickets.On("CountActiveByEvent", mock.Anything, e.ID).Return(int64(1), nil)

		_, err := f.service.ConfirmCheckout(ctx, CheckoutConfirmation{SessionID: "cs_full", EventID: e.ID, UserID: userID, Provider: ticketing.ProviderStripe})
		assert.ErrorIs(t, err, event.ErrEventFull)
	})

	t.Run("second paid session keeps the held ticket", func(t *testing.T) {
		f := newTicketFixture(t, now, true)
		e := publishedEvent(t, decimal.NewFromInt(20), now.Add(time.Hour))
		held, err := ticketing.NewTicket(e.ID, userID, decimal.NewFromInt(20))
		require.NoError(t, err)
		f.payments.On("FindBySessionID", mock.Anything, "cs_second").Return(nil, shared.ErrNotFound)
		f.events.On("FindByID", mock.Anything, e.ID).Return(e, nil)
		f.tickets.On("FindActiveByEventAndUser", mock.Anything, e.ID, userID).Return(held, nil)
		f.payments.On("Create", mock.Anything, mock.AnythingOfType("*ticketing.Payment")).Return(nil)

		got, err := f.service.ConfirmCheckout(ctx, CheckoutConfirmation{
			SessionID: "cs_second", EventID: e.ID, UserID: userID, Amount: decimal.NewFromInt(20), Currency: "usd", Provider: ticketing.ProviderStripe,
		})
		require.NoError(t, err)
		assert.Equal(t, held.ID, got.ID)
		f.tickets.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.payments.AssertCalled(t, "Create", mock.Anything, mock.MatchedBy(func(p *ticketing.Payment) bool {
			return p.TicketID == held.ID && p.ProviderSessionID == "cs_second"
		}))
		assert.Equal(t, []string{CheckoutDuplicate}, f.recorder.outcomes)
		assert.Empty(t, f.published.Published())
	})

	t.Run("free checkout for a held ticket is refused", func(t *testing.T) {
		f := newTicketFixture(t, now, false)
		e := publishedEvent(t, decimal.Zero, now.Add(time.Hour))
		held, err := ticketing.NewTicket(e.ID, userID, decimal.Zero)
		require.NoError(t, err)
		f.payments.On("FindBySessionID", mock.Anything, "free_again").Return(nil, shared.ErrNotFound)
		f.events.On("FindByID", mock.Anything, e.ID).Return(e, nil)
		f.tickets.On("FindActiveByEventAndUser", mock.Anything, e.ID, userID).Return(held, nil)

		_, err = f.service.ConfirmCheckout(ctx, CheckoutConfirmation{
			SessionID: "free_again", EventID: e.ID, UserID: userID, Amount: decimal.Zero, Provider: ticketing.ProviderFree,
		})
		assert.ErrorIs(t, err, ticketing.ErrTicketAlreadyOwned)
		f.payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("free purchase loses the promo race", func(t *testing.T) {
		f := newTicketFixture(t, now, false)
		e := publishedEvent(t, decimal.NewFromInt(20), now.Add(time.Hour))
		promo, err := event.NewPromoCode(e.ID, "FREE", decimal.NewFromInt(1))
		require.NoError(t, err)
		f.expectIssue(e, "free_x")
		f.promos.On("FindByCode", mock.Anything, "FREE").Return(promo, nil)
		f.promos.On("MarkUsed", mock.Anything, promo.ID).Return(false, nil)

		_, err = f.service.ConfirmCheckout(ctx, CheckoutConfirmation{
			SessionID: "free_x", EventID: e.ID, UserID: userID, PromoCode: "FREE", Amount: decimal.Zero, Provider: ticketing.ProviderFree,
		})
		assert.ErrorIs(t, err, event.ErrPromoCodeInvalid)
	})
}

func TestTicketService_Confirm(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	e := publishedEvent(t, decimal.NewFromInt(20), time.Now().Add(time.Hour))

	t.Run("session of another user", func(t *testing.T) {
		f := newTicketFixture(t, time.Now(), true)
		f.gateway.On("GetCheckoutSession", mock.Anything, "cs_1").Return(&CheckoutSession{ID: "cs_1", Paid: true, UserID: uuid.New(), EventID: e.ID}, nil)

		_, err := f.service.Confirm(ctx, userID, "cs_1")
		assert.ErrorIs(t, err, ticketing.ErrInvalidSession)
	})

	t.Run("unpaid session", func(t *testing.T) {
		f := newTicketFixture(t, time.Now(), true)
		f.gateway.On("GetCheckoutSession", mock.Anything, "cs_1").Return(&CheckoutSession{ID: "cs_1", UserID: userID, EventID: e.ID}, nil)

		_, err := f.service.Confirm(ctx, userID, "cs_1")
		assert.ErrorIs(t, err, ticketing.ErrPaymentNotCompleted)
	})

	t.Run("paid session", func(t *testing.T) {
		f := newTicketFixture(t, time.Now(), true)
		f.gateway.On("GetCheckoutSession", mock.Anything, "cs_1").Return(&CheckoutSession{
			ID: "cs_1", Paid: true, UserID: userID, EventID: e.ID, Amount: decimal.NewFromInt(20), Currency: "usd",
		}, nil)
		f.expectIssue(e, "cs_1")

		resp, err := f.service.Confirm(ctx, userID, "cs_1")
		require.NoError(t, err)
		assert.Equal(t, e.ID, resp.EventID)
		require.NotNil(t, resp.Event)
		assert.Equal(t, "Concert", resp.Event.Title)
	})
}

func TestTicketService_HandleWebhook(t *testing.T) {
	ctx := context.Background()
	payload := []byte(`{"id":"evt_1"}`)
	userID := uuid.New()

	t.Run("bad signature", func(t *testing.T) {
		f := newTicketFixture(t, time.Now(), true)
		f.gateway.On("ParseWebhook", payload, "bad").Return(nil, errors.New("signature mismatch"))

		err := f.service.HandleWebhook(ctx, payload, "bad")
		assert.ErrorIs(t, err, ErrInvalidWebhook)
	})

	t.Run("completed checkout is confirmed once", func(t *testing.T) {
		f := newTicketFixture(t, time.Now(), true)
		e := publishedEvent(t, decimal.NewFromInt(20), time.Now().Add(time.Hour))
		f.gateway.On("ParseWebhook", payload, "sig").Return(&WebhookEvent{ID: "evt_1", Type: WebhookCheckoutCompleted, SessionID: "cs_1"}, nil)
		f.gateway.On("GetCheckoutSession", mock.Anything, "cs_1").Return(&CheckoutSession{
			ID: "cs_1", Paid: true, UserID: userID, EventID: e.ID, Amount: decimal.NewFromInt(20),
		}, nil).Once()
		f.expectIssue(e, "cs_1")

		require.NoError(t, f.service.HandleWebhook(ctx, payload, "sig"))
		require.NoError(t, f.service.HandleWebhook(ctx, payload, "sig"))

		f.gateway.AssertNumberOfCalls(t, "GetCheckoutSession", 1)
		f.tickets.AssertNumberOfCalls(t, "Create", 1)
	})

	t.Run("expired checkout is only counted", func(t *testing.T) {
		f := newTicketFixture(t, time.Now(), true)
		f.gateway.On("ParseWebhook", payload, "sig").Return(&WebhookEvent{ID: "evt_2", Type: WebhookCheckoutExpired, SessionID: "cs_2"}, nil)

		require.NoError(t, f.service.HandleWebhook(ctx, payload, "sig"))
		assert.Equal(t, []string{CheckoutExpired}, f.recorder.outcomes)
	})

	t.Run("payments disabled", func(t *testing.T) {
		f := newTicketFixture(t, time.Now(), false)
		assert.ErrorIs(t, f.service.HandleWebhook(ctx, payload, "sig"), ErrPaymentsDisabled)
	})
}

func TestTicketService_Holders(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	e := publishedEvent(t, decimal.NewFromInt(20), time.Now().Add(time.Hour))
	ticket, err := ticketing.NewTicket(e.ID, userID, decimal.NewFromInt(20))
	require.NoError(t, err)

	t.Run("list with events", func(t *testing.T) {
		f := newTicketFixture(t, time.Now(), false)
		f.tickets.On("FindByUser", mock.Anything, userID).Return([]*ticketing.Ticket{ticket}, nil)
		f.events.On("FindByIDs", mock.Anything, []uuid.UUID{e.ID}).Return([]*event.Event{e}, nil)

		out, err := f.service.List(ctx, userID)
		require.NoError(t, err)
		require.Len(t, out, 1)
		require.NotNil(t, out[0].Event)
		assert.NotEmpty(t, out[0].QRData)
	})

	t.Run("only the owner gets the ticket", func(t *testing.T) {
		f := newTicketFixture(t, time.Now(), false)
		f.tickets.On("FindByID", mock.Anything, ticket.ID).Return(ticket, nil)

		_, err := f.service.Get(ctx, ticket.ID, uuid.New())
		assert.ErrorIs(t, err, ErrNotTicketOwner)
	})

	t.Run("pdf", func(t *testing.T) {
		f := newTicketFixture(t, time.Now(), false)
		holder, err := identity.NewUser("bob@example.com", "Bob", "secret123")
		require.NoError(t, err)
		f.tickets.On("FindByID", mock.Anything, ticket.ID).Return(ticket, nil)
		f.events.On("FindByID", mock.Anything, e.ID).Return(e, nil)
		f.users.On("FindByID", mock.Anything, userID).Return(holder, nil)
		f.renderer.On("RenderTicket", mock.Anything, TicketDocument{Ticket: ticket, Event: e, HolderName: "Bob"}).Return([]byte("%PDF"), nil)

		pdf, err := f.service.PDF(ctx, ticket.ID, userID)
		require.NoError(t, err)
		assert.Equal(t, "ticket-"+ticket.ID.String()+".pdf", pdf.Filename)
		assert.Equal(t, []byte("%PDF"), pdf.Data)
	})

	t.Run("check", func(t *testing.T) {
		f := newTicketFixture(t, time.Now(), false)
		other := uuid.New()
		f.tickets.On("FindActiveByEventAndUser", mock.Anything, e.ID, userID).Return(ticket, nil)
		f.tickets.On("FindActiveByEventAndUser", mock.Anything, e.ID, other).Return(nil, shared.ErrNotFound)

		yes, err := f.service.Check(ctx, e.ID, userID)
		require.NoError(t, err)
		assert.True(t, yes.HasTicket)
		no, err := f.service.Check(ctx, e.ID, other)
		require.NoError(t, err)
		assert.False(t, no.HasTicket)
	})

	t.Run("payments", func(t *testing.T) {
		f := newTicketFixture(t, time.Now(), false)
		payment, err := ticketing.NewCompletedPayment(ticket, ticket.Price, "usd", ticketing.ProviderStripe, "cs_9")
		require.NoError(t, err)
		f.payments.On("FindByUser", mock.Anything, userID).Return([]*ticketing.Payment{payment}, nil)
		f.events.On("FindByIDs", mock.Anything, []uuid.UUID{e.ID}).Return([]*event.Event{e}, nil)

		out, err := f.service.ListPayments(ctx, userID)
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "COMPLETED", out[0].Status)
		assert.Equal(t, "Concert", out[0].Event.Title)
	})
}
