package ticketing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/t1tandr/uevent/internal/domain/event"
	"github.com/t1tandr/uevent/internal/domain/identity"
	"github.com/t1tandr/uevent/internal/domain/shared"
	"github.com/t1tandr/uevent/internal/domain/ticketing"
	"github.com/t1tandr/uevent/internal/infrastructure/telemetry"
)

// Ticketing errors raised by the service
var (
	ErrNotTicketOwner = shared.NewDomainError("FORBIDDEN", "You do not own this ticket")
	ErrInvalidWebhook = shared.NewDomainError("INVALID_WEBHOOK", "Invalid webhook payload or signature")
)

const webhookIdempotencyTTL = 72 * time.Hour

// Repositories groups the repositories used outside of transactions
type Repositories struct {
	Events     event.EventRepository
	PromoCodes event.PromoCodeRepository
	Tickets    ticketing.TicketRepository
	Payments   ticketing.PaymentRepository
	Users      identity.UserRepository
}

// TicketService sells tickets and serves them to their holders
type TicketService struct {
	repos       Repositories
	tx          TransactionScope
	gateway     PaymentGateway
	renderer    TicketRenderer
	idempotency shared.IdempotencyStore
	events      shared.EventPublisher
	recorder    CheckoutRecorder
	logger      *zap.Logger
	now         func() time.Time
}

// TicketServiceOption configures optional collaborators
type TicketServiceOption func(*TicketService)

// WithPaymentGateway enables paid checkouts
func WithPaymentGateway(g PaymentGateway) TicketServiceOption {
	return func(s *TicketService) { s.gateway = g }
}

// WithIdempotencyStore drops webhook deliveries that were already handled
func WithIdempotencyStore(store shared.IdempotencyStore) TicketServiceOption {
	return func(s *TicketService) { s.idempotency = store }
}

// WithCheckoutRecorder reports checkout outcomes
func WithCheckoutRecorder(r CheckoutRecorder) TicketServiceOption {
	return func(s *TicketService) { s.recorder = r }
}

// NewTicketService creates a new ticket service. Without a payment gateway
// only free tickets can be issued.
func NewTicketService(
	repos Repositories,
	tx TransactionScope,
	renderer TicketRenderer,
	events shared.EventPublisher,
	logger *zap.Logger,
	opts ...TicketServiceOption,
) *TicketService {
	s := &TicketService{
		repos:    repos,
		tx:       tx,
		renderer: renderer,
		events:   events,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Purchase issues a free ticket directly or opens a hosted checkout
func (s *TicketService) Purchase(ctx context.Context, userID uuid.UUID, req PurchaseRequest) (res *PurchaseResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ticket", "purchase", telemetry.AttrEventID.String(req.EventID.String()))
	defer func() { telemetry.EndSpan(span, err) }()
	return s.purchase(ctx, userID, req)
}

func (s *TicketService) purchase(ctx context.Context, userID uuid.UUID, req PurchaseRequest) (*PurchaseResult, error) {
	e, err := s.findEvent(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	active, err := s.repos.Tickets.CountActiveByEvent(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	if err := e.EnsurePurchasable(s.now(), active); err != nil {
		return nil, err
	}
	if err := s.ensureNoTicket(ctx, e.ID, userID); err != nil {
		return nil, err
	}

	code := strings.TrimSpace(req.PromoCode)
	price := e.Price
	if code != "" {
		promo, err := s.repos.PromoCodes.FindByCode(ctx, code)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, event.ErrPromoCodeInvalid
			}
			return nil, err
		}
		if err := promo.Redeemable(e.ID); err != nil {
			return nil, err
		}
		price = promo.Apply(price)
	}

	if price.IsZero() {
		t, err := s.ConfirmCheckout(ctx, CheckoutConfirmation{
			SessionID: ticketing.FreeSessionID(),
			EventID:   e.ID,
			UserID:    userID,
			PromoCode: code,
			Amount:    price,
			Provider:  ticketing.ProviderFree,
		})
		if err != nil {
			return nil, err
		}
		resp := ToTicketResponse(t, e)
		return &PurchaseResult{Ticket: &resp}, nil
	}

	if s.gateway == nil {
		return nil, ErrPaymentsDisabled
	}
	user, err := s.repos.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	checkout := CheckoutRequest{
		EventID:       e.ID,
		UserID:        userID,
		PromoCode:     code,
		Title:         e.Title,
		Description:   e.Description,
		CustomerEmail: user.Email,
		Amount:        price,
	}
	if len(e.ImageURLs) > 0 {
		checkout.ImageURL = e.ImageURLs[0]
	}
	session, err := s.gateway.CreateCheckoutSession(ctx, checkout)
	if err != nil {
		return nil, err
	}
	s.record(CheckoutCreated)
	return &PurchaseResult{SessionID: session.ID, URL: session.URL}, nil
}

// Confirm finishes a paid checkout for the user returning from the
// payment page
func (s *TicketService) Confirm(ctx context.Context, userID uuid.UUID, sessionID string) (*TicketResponse, error) {
	if s.gateway == nil {
		return nil, ErrPaymentsDisabled
	}
	session, err := s.gateway.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, ticketing.ErrInvalidSession
	}
	if !session.Paid {
		return nil, ticketing.ErrPaymentNotCompleted
	}
	t, err := s.ConfirmCheckout(ctx, confirmationOf(session))
	if err != nil {
		return nil, err
	}
	e, err := s.findEvent(ctx, t.EventID)
	if err != nil {
		return nil, err
	}
	resp := ToTicketResponse(t, e)
	return &resp, nil
}

// HandleWebhook processes a signed provider notification. Deliveries that
// were already handled and event types of no interest are acknowledged
// without work.
func (s *TicketService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.gateway == nil {
		return ErrPaymentsDisabled
	}
	evt, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		s.logger.Warn("rejected payment webhook", zap.Error(err))
		return ErrInvalidWebhook
	}

	switch evt.Type {
	case WebhookCheckoutCompleted:
	case WebhookCheckoutExpired:
		s.record(CheckoutExpired)
		return nil
	default:
		s.logger.Debug("ignoring payment webhook", zap.String("type", evt.Type))
		return nil
	}

	if s.idempotency != nil {
		done, err := s.idempotency.IsProcessed(ctx, evt.ID)
		if err != nil {
			s.logger.Warn("idempotency lookup failed", zap.String("webhook_id", evt.ID), zap.Error(err))
		} else if done {
			s.logger.Debug("duplicate payment webhook", zap.String("webhook_id", evt.ID))
			return nil
		}
	}

	session, err := s.gateway.GetCheckoutSession(ctx, evt.SessionID)
	if err != nil {
		return err
	}
	if !session.Paid {
		s.logger.Info("checkout completed without payment",
			zap.String("session_id", session.ID))
		return nil
	}
	if _, err := s.ConfirmCheckout(ctx, confirmationOf(session)); err != nil {
		return err
	}

	if s.idempotency != nil {
		if _, err := s.idempotency.MarkProcessed(ctx, evt.ID, webhookIdempotencyTTL); err != nil {
			s.logger.Warn("failed to mark webhook processed", zap.String("webhook_id", evt.ID), zap.Error(err))
		}
	}
	return nil
}

// ConfirmCheckout creates the ticket and payment of a settled checkout in
// one transaction. A session that was already confirmed returns its
// existing ticket. A user already holding an ACTIVE ticket gets no second
// one: a free checkout is refused, while a paid one is recorded against the
// held ticket and logged for refund.
func (s *TicketService) ConfirmCheckout(ctx context.Context, c CheckoutConfirmation) (*ticketing.Ticket, error) {
	var (
		ticket    *ticketing.Ticket
		payment   *ticketing.Payment
		duplicate *ticketing.Payment
	)
	err := s.tx.Execute(ctx, func(repos TransactionalRepositories) error {
		existing, err := repos.Payments().FindBySessionID(ctx, c.SessionID)
		if err == nil {
			ticket, err = repos.Tickets().FindByID(ctx, existing.TicketID)
			return err
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return err
		}

		e, err := repos.Events().FindByID(ctx, c.EventID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return event.ErrEventNotFound
			}
			return err
		}
		held, err := repos.Tickets().FindActiveByEventAndUser(ctx, e.ID, c.UserID)
		switch {
		case err == nil:
			if c.Provider != ticketing.ProviderStripe {
				return ticketing.ErrTicketAlreadyOwned
			}
			p, err := ticketing.NewCompletedPayment(held, c.Amount, c.Currency, c.Provider, c.SessionID)
			if err != nil {
				return err
			}
			if err := repos.Payments().Create(ctx, p); err != nil {
				return err
			}
			ticket, duplicate = held, p
			return nil
		case !errors.Is(err, shared.ErrNotFound):
			return err
		}

		active, err := repos.Tickets().CountActiveByEvent(ctx, e.ID)
		if err != nil {
			return err
		}
		if !e.HasCapacity(active) {
			return event.ErrEventFull
		}

		t, err := ticketing.NewTicket(e.ID, c.UserID, c.Amount)
		if err != nil {
			return err
		}
		if err := repos.Tickets().Create(ctx, t); err != nil {
			return err
		}

		if c.PromoCode != "" {
			if err := s.redeem(ctx, repos, e.ID, c); err != nil {
				return err
			}
		}

		p, err := ticketing.NewCompletedPayment(t, c.Amount, c.Currency, c.Provider, c.SessionID)
		if err != nil {
			return err
		}
		if err := repos.Payments().Create(ctx, p); err != nil {
			return err
		}
		ticket, payment = t, p
		return nil
	})
	if err != nil {
		return nil, err
	}

	if duplicate != nil {
		s.logger.Warn("paid checkout for a user who already holds a ticket, refund due",
			zap.String("ticket_id", ticket.ID.String()),
			zap.String("payment_id", duplicate.ID.String()),
			zap.String("session_id", c.SessionID),
			zap.String("amount", duplicate.Amount.StringFixed(2)))
		s.record(CheckoutDuplicate)
	}
	if payment != nil {
		s.logger.Info("ticket issued",
			zap.String("ticket_id", ticket.ID.String()),
			zap.String("event_id", ticket.EventID.String()),
			zap.String("provider", payment.Provider))
		if payment.Provider == ticketing.ProviderStripe {
			s.record(CheckoutCompleted)
		}
		if s.events != nil {
			if err := s.events.Publish(ctx, ticketing.NewTicketPurchasedEvent(ticket, payment)); err != nil {
				s.logger.Error("failed to publish ticket purchase", zap.Error(err))
			}
		}
	}
	return ticket, nil
}

// List returns the user's tickets with their events
func (s *TicketService) List(ctx context.Context, userID uuid.UUID) ([]TicketResponse, error) {
	tickets, err := s.repos.Tickets.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(tickets))
	for _, t := range tickets {
		ids = append(ids, t.EventID)
	}
	events, err := s.eventsByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]TicketResponse, len(tickets))
	for i, t := range tickets {
		out[i] = ToTicketResponse(t, events[t.EventID])
	}
	return out, nil
}

// Get returns one of the user's tickets
func (s *TicketService) Get(ctx context.Context, id, userID uuid.UUID) (*TicketResponse, error) {
	t, err := s.ownTicket(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	e, err := s.findEvent(ctx, t.EventID)
	if err != nil {
		return nil, err
	}
	resp := ToTicketResponse(t, e)
	return &resp, nil
}

// PDF renders one of the user's tickets
func (s *TicketService) PDF(ctx context.Context, id, userID uuid.UUID) (*TicketPDF, error) {
	t, err := s.ownTicket(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	e, err := s.findEvent(ctx, t.EventID)
	if err != nil {
		return nil, err
	}
	holder := ""
	if u, err := s.repos.Users.FindByID(ctx, userID); err == nil {
		holder = u.Name
	}
	data, err := s.renderer.RenderTicket(ctx, TicketDocument{Ticket: t, Event: e, HolderName: holder})
	if err != nil {
		return nil, fmt.Errorf("render ticket: %w", err)
	}
	return &TicketPDF{Filename: fmt.Sprintf("ticket-%s.pdf", t.ID), Data: data}, nil
}

// Check reports whether the user holds an ACTIVE ticket for the event
func (s *TicketService) Check(ctx context.Context, eventID, userID uuid.UUID) (*TicketCheck, error) {
	_, err := s.repos.Tickets.FindActiveByEventAndUser(ctx, eventID, userID)
	if err == nil {
		return &TicketCheck{HasTicket: true}, nil
	}
	if errors.Is(err, shared.ErrNotFound) {
		return &TicketCheck{HasTicket: false}, nil
	}
	return nil, err
}

// ListPayments returns the user's payments, newest first
func (s *TicketService) ListPayments(ctx context.Context, userID uuid.UUID) ([]PaymentResponse, error) {
	payments, err := s.repos.Payments.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(payments))
	for _, p := range payments {
		ids = append(ids, p.EventID)
	}
	events, err := s.eventsByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]PaymentResponse, len(payments))
	for i, p := range payments {
		out[i] = toPaymentResponse(p, events[p.EventID])
	}
	return out, nil
}

// redeem marks the promo code used. Losing the race fails a free purchase;
// a paid checkout keeps its ticket.
func (s *TicketService) redeem(ctx context.Context, repos TransactionalRepositories, eventID uuid.UUID, c CheckoutConfirmation) error {
	promo, err := repos.PromoCodes().FindByCode(ctx, c.PromoCode)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) && c.Provider != ticketing.ProviderFree {
			s.logger.Warn("promo code vanished before confirmation",
				zap.String("session_id", c.SessionID), zap.String("code", c.PromoCode))
			return nil
		}
		if errors.Is(err, shared.ErrNotFound) {
			return event.ErrPromoCodeInvalid
		}
		return err
	}
	if promo.EventID != eventID {
		return event.ErrPromoCodeInvalid
	}
	marked, err := repos.PromoCodes().MarkUsed(ctx, promo.ID)
	if err != nil {
		return err
	}
	if !marked {
		if c.Provider == ticketing.ProviderFree {
			return event.ErrPromoCodeInvalid
		}
		s.logger.Warn("promo code already used at confirmation",
			zap.String("session_id", c.SessionID), zap.String("code", c.PromoCode))
	}
	return nil
}

func (s *TicketService) ensureNoTicket(ctx context.Context, eventID, userID uuid.UUID) error {
	_, err := s.repos.Tickets.FindActiveByEventAndUser(ctx, eventID, userID)
	if err == nil {
		return ticketing.ErrTicketAlreadyOwned
	}
	if errors.Is(err, shared.ErrNotFound) {
		return nil
	}
	return err
}

func (s *TicketService) ownTicket(ctx context.Context, id, userID uuid.UUID) (*ticketing.Ticket, error) {
	t, err := s.repos.Tickets.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ticketing.ErrTicketNotFound
		}
		return nil, err
	}
	if !t.BelongsTo(userID) {
		return nil, ErrNotTicketOwner
	}
	return t, nil
}

func (s *TicketService) findEvent(ctx context.Context, id uuid.UUID) (*event.Event, error) {
	e, err := s.repos.Events.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, event.ErrEventNotFound
		}
		return nil, err
	}
	return e, nil
}

func (s *TicketService) eventsByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*event.Event, error) {
	out := make(map[uuid.UUID]*event.Event, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	events, err := s.repos.Events.FindByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, err
	}
	for _, e := range events {
		out[e.ID] = e
	}
	return out, nil
}

func (s *TicketService) record(outcome string) {
	if s.recorder != nil {
		s.recorder.CheckoutSession(outcome)
	}
}

func confirmationOf(session *CheckoutSession) CheckoutConfirmation {
	return CheckoutConfirmation{
		SessionID: session.ID,
		EventID:   session.EventID,
		UserID:    session.UserID,
		PromoCode: session.PromoCode,
		Amount:    session.Amount,
		Currency:  session.Currency,
		Provider:  ticketing.ProviderStripe,
	}
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
