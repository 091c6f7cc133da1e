package event

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/t1tandr/uevent/internal/domain/shared"
)

type BusOption func(*InMemoryEventBus)

// WithAsyncDispatch hands each event to a goroutine so Publish returns
// immediately. Stop waits for those goroutines.
func WithAsyncDispatch() BusOption {
	return func(b *InMemoryEventBus) { b.async = true }
}

// InMemoryEventBus delivers events to in-process handlers. Handler errors
// and panics are logged and never reach the publisher.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
	async    bool
	inflight sync.WaitGroup
}

func NewInMemoryEventBus(logger *zap.Logger, opts ...BusOption) *InMemoryEventBus {
	b := &InMemoryEventBus{registry: NewHandlerRegistry(), logger: logger}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, event := range events {
		handlers := b.registry.GetHandlers(event.EventType())
		switch {
		case len(handlers) == 0:
		case b.async:
			// handlers outlive the request that raised the event
			detached := context.WithoutCancel(ctx)
			b.inflight.Add(1)
			go func() {
				defer b.inflight.Done()
				b.deliver(detached, handlers, event)
			}()
		default:
			b.deliver(ctx, handlers, event)
		}
	}
	return nil
}

func (b *InMemoryEventBus) deliver(ctx context.Context, handlers []shared.EventHandler, event shared.DomainEvent) {
	for _, h := range handlers {
		if err := safeHandle(ctx, h, event); err != nil {
			b.logger.Error("event handler failed",
				zap.String("event_type", event.EventType()),
				zap.Stringer("event_id", event.EventID()),
				zap.Error(err))
		}
	}
}

func safeHandle(ctx context.Context, h shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h.Handle(ctx, event)
}

// Subscribe falls back to handler.EventTypes when no types are given
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed", zap.Strings("event_types", eventTypes))
}

func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
}

func (b *InMemoryEventBus) Start(context.Context) error {
	b.logger.Info("event bus started", zap.Bool("async", b.async))
	return nil
}

// Stop waits for in-flight async deliveries or until ctx is done
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	drained := make(chan struct{})
	go func() {
		b.inflight.Wait()
		close(drained)
	}()
	select {
	case <-drained:
		b.logger.Info("event bus stopped")
		return nil
	case <-ctx.Done():
		b.logger.Warn("event bus stopped with deliveries in flight")
		return ctx.Err()
	}
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
