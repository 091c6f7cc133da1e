package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/t1tandr/uevent/internal/domain/shared"
)

// Delivery outcomes reported to an OutcomeObserver
const (
	OutcomeHandled   = "handled"
	OutcomeDuplicate = "duplicate"
	OutcomeFailed    = "failed"
)

// OutcomeObserver receives one call per delivery. *metrics.Metrics
// satisfies it.
type OutcomeObserver interface {
	HandlerOutcome(handler, outcome string)
}

type nopObserver struct{}

func (nopObserver) HandlerOutcome(string, string) {}

// IdempotentHandler runs the wrapped handler at most once per event ID.
// Keys are "<name>:<event id>", so two wrappers with different names may
// both process the same event.
type IdempotentHandler struct {
	name     string
	next     shared.EventHandler
	store    shared.IdempotencyStore
	cfg      shared.IdempotencyConfig
	observer OutcomeObserver
	logger   *zap.Logger
}

type IdempotentHandlerOption func(*IdempotentHandler)

func WithIdempotencyConfig(cfg shared.IdempotencyConfig) IdempotentHandlerOption {
	return func(h *IdempotentHandler) { h.cfg = cfg }
}

func WithOutcomeObserver(o OutcomeObserver) IdempotentHandlerOption {
	return func(h *IdempotentHandler) {
		if o != nil {
			h.observer = o
		}
	}
}

func NewIdempotentHandler(
	name string,
	next shared.EventHandler,
	store shared.IdempotencyStore,
	logger *zap.Logger,
	opts ...IdempotentHandlerOption,
) *IdempotentHandler {
	h := &IdempotentHandler{
		name:     name,
		next:     next,
		store:    store,
		cfg:      shared.DefaultIdempotencyConfig(),
		observer: nopObserver{},
		logger:   logger.With(zap.String("handler", name)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *IdempotentHandler) EventTypes() []string {
	return h.next.EventTypes()
}

func (h *IdempotentHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.cfg.Enabled {
		first, err := h.store.MarkProcessed(ctx, h.name+":"+event.EventID().String(), h.cfg.TTL)
		switch {
		case err != nil:
			// fail open: a store outage must not drop notifications
			h.logger.Warn("idempotency store unavailable, handling anyway",
				zap.Stringer("event_id", event.EventID()), zap.Error(err))
		case !first:
			h.logger.Debug("skipping duplicate event",
				zap.Stringer("event_id", event.EventID()),
				zap.String("event_type", event.EventType()))
			h.observer.HandlerOutcome(h.name, OutcomeDuplicate)
			return nil
		}
	}

	// a failed event keeps its key until TTL, so redelivery does not loop
	if err := h.next.Handle(ctx, event); err != nil {
		h.observer.HandlerOutcome(h.name, OutcomeFailed)
		return err
	}
	h.observer.HandlerOutcome(h.name, OutcomeHandled)
	return nil
}

var _ shared.EventHandler = (*IdempotentHandler)(nil)
