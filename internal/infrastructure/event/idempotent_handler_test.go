package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/t1tandr/uevent/internal/domain/shared"
	"github.com/t1tandr/uevent/internal/infrastructure/cache"
)

type MockEventHandler struct {
	mock.Mock
}

func (m *MockEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventHandler) EventTypes() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	return m.Called().Error(0)
}

type outcomeRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func newOutcomeRecorder() *outcomeRecorder {
	return &outcomeRecorder{counts: map[string]int{}}
}

func (r *outcomeRecorder) HandlerOutcome(handler, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[handler+"/"+outcome]++
}

func (r *outcomeRecorder) count(handler, outcome string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[handler+"/"+outcome]
}

func TestIdempotentHandler_Handle_NewEvent(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	inner := new(MockEventHandler)
	event := newTestEvent("TicketPurchased")
	inner.On("Handle", mock.Anything, event).Return(nil)

	outcomes := newOutcomeRecorder()
	handler := NewIdempotentHandler("mail", inner, store, zap.NewNop(), WithOutcomeObserver(outcomes))
	require.NoError(t, handler.Handle(context.Background(), event))

	inner.AssertExpectations(t)
	assert.Equal(t, 1, outcomes.count("mail", OutcomeHandled))
	assert.Zero(t, outcomes.count("mail", OutcomeDuplicate))

	processed, err := store.IsProcessed(context.Background(), "mail:"+event.EventID().String())
	require.NoError(t, err)
	assert.True(t, processed)
}

func TestIdempotentHandler_Handle_DuplicateEvent(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	inner := new(MockEventHandler)
	event := newTestEvent("TicketPurchased")
	inner.On("Handle", mock.Anything, event).Return(nil).Once()

	outcomes := newOutcomeRecorder()
	handler := NewIdempotentHandler("mail", inner, store, zap.NewNop(), WithOutcomeObserver(outcomes))
	for range 3 {
		require.NoError(t, handler.Handle(context.Background(), event))
	}

	inner.AssertExpectations(t)
	assert.Equal(t, 1, outcomes.count("mail", OutcomeHandled))
	assert.Equal(t, 2, outcomes.count("mail", OutcomeDuplicate))
}

func TestIdempotentHandler_KeysAreScopedByName(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	event := newTestEvent("TicketPurchased")
	mailer := new(MockEventHandler)
	notifier := new(MockEventHandler)
	mailer.On("Handle", mock.Anything, event).Return(nil).Once()
	notifier.On("Handle", mock.Anything, event).Return(nil).Once()

	require.NoError(t, NewIdempotentHandler("mail", mailer, store, zap.NewNop()).Handle(context.Background(), event))
	require.NoError(t, NewIdempotentHandler("notifications", notifier, store, zap.NewNop()).Handle(context.Background(), event))

	mailer.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestIdempotentHandler_Handle_HandlerError(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	inner := new(MockEventHandler)
	event := newTestEvent("TicketPurchased")
	inner.On("Handle", mock.Anything, event).Return(errors.New("smtp down")).Once()

	outcomes := newOutcomeRecorder()
	handler := NewIdempotentHandler("mail", inner, store, zap.NewNop(), WithOutcomeObserver(outcomes))
	assert.EqualError(t, handler.Handle(context.Background(), event), "smtp down")
	assert.Equal(t, 1, outcomes.count("mail", OutcomeFailed))

	// the key is kept, so an immediate redelivery is skipped
	require.NoError(t, handler.Handle(context.Background(), event))
	inner.AssertExpectations(t)
}

func TestIdempotentHandler_Handle_StoreError(t *testing.T) {
	store := new(MockIdempotencyStore)
	inner := new(MockEventHandler)
	event := newTestEvent("TicketPurchased")

	store.On("MarkProcessed", mock.Anything, "mail:"+event.EventID().String(), 24*time.Hour).
		Return(false, errors.New("redis unavailable"))
	inner.On("Handle", mock.Anything, event).Return(nil)

	handler := NewIdempotentHandler("mail", inner, store, zap.NewNop())
	require.NoError(t, handler.Handle(context.Background(), event))

	store.AssertExpectations(t)
	inner.AssertExpectations(t)
}

func TestIdempotentHandler_Handle_Disabled(t *testing.T) {
	store := new(MockIdempotencyStore)
	inner := new(MockEventHandler)
	event := newTestEvent("TicketPurchased")
	inner.On("Handle", mock.Anything, event).Return(nil).Twice()

	handler := NewIdempotentHandler("mail", inner, store, zap.NewNop(),
		WithIdempotencyConfig(shared.IdempotencyConfig{Enabled: false}))
	require.NoError(t, handler.Handle(context.Background(), event))
	require.NoError(t, handler.Handle(context.Background(), event))

	inner.AssertExpectations(t)
	store.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
}

func TestIdempotentHandler_CustomTTL(t *testing.T) {
	store := new(MockIdempotencyStore)
	inner := new(MockEventHandler)
	event := newTestEvent("TicketPurchased")

	store.On("MarkProcessed", mock.Anything, mock.Anything, time.Hour).Return(true, nil)
	inner.On("Handle", mock.Anything, event).Return(nil)
	inner.On("EventTypes").Return([]string{"TicketPurchased"})

	handler := NewIdempotentHandler("mail", inner, store, zap.NewNop(),
		WithIdempotencyConfig(shared.IdempotencyConfig{Enabled: true, TTL: time.Hour}),
		WithOutcomeObserver(nil))

	assert.Equal(t, []string{"TicketPurchased"}, handler.EventTypes())
	require.NoError(t, handler.Handle(context.Background(), event))
	store.AssertExpectations(t)
}

func TestIdempotentHandler_ConcurrentDuplicates(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	var calls int
	var mu sync.Mutex
	inner := &funcHandler{fn: func(context.Context, shared.DomainEvent) error {
		mu.Lock()
		calls++
		mu.Unlock()
		return nil
	}}
	outcomes := newOutcomeRecorder()
	handler := NewIdempotentHandler("mail", inner, store, zap.NewNop(), WithOutcomeObserver(outcomes))
	event := newTestEvent("TicketPurchased")

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = handler.Handle(context.Background(), event)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, calls)
	assert.Equal(t, 19, outcomes.count("mail", OutcomeDuplicate))
}
