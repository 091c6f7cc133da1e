package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/t1tandr/uevent/internal/infrastructure/config"
)

type outcomeRecorder struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *outcomeRecorder) record(o string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
}

func (r *outcomeRecorder) count(o string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, got := range r.outcomes {
		if got == o {
			n++
		}
	}
	return n
}

func testPublisherConfig() PublisherConfig {
	return PublisherConfig{
		PollInterval: 10 * time.Millisecond,
		MaxAttempts:  3,
		RetryDelay:   5 * time.Millisecond,
		BatchSize:    10,
		Workers:      2,
		JobTimeout:   time.Second,
	}
}

func startPublisher(t *testing.T, store JobStore, handler JobHandler) (*DelayedPublisher, *outcomeRecorder) {
	t.Helper()
	rec := &outcomeRecorder{}
	p := NewDelayedPublisher(store, testPublisherConfig(), zap.NewNop(), WithOutcomeHook(rec.record))
	p.SetHandler(handler)
	require.NoError(t, p.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = p.Stop(ctx)
	})
	return p, rec
}

func TestDelayedPublisher_RunsDueJob(t *testing.T) {
	store := NewMemoryJobStore()
	var ran atomic.Int32
	id := uuid.New()

	p, rec := startPublisher(t, store, func(_ context.Context, eventID uuid.UUID) error {
		assert.Equal(t, id, eventID)
		ran.Add(1)
		return nil
	})

	require.NoError(t, p.Schedule(context.Background(), id, time.Now().Add(-time.Hour)))

	assert.Eventually(t, func() bool { return rec.count(OutcomePublished) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), ran.Load())

	pending, err := store.Pending(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, pending)
}

func TestDelayedPublisher_FutureJobWaits(t *testing.T) {
	store := NewMemoryJobStore()
	var ran atomic.Int32
	p, _ := startPublisher(t, store, func(context.Context, uuid.UUID) error {
		ran.Add(1)
		return nil
	})

	require.NoError(t, p.Schedule(context.Background(), uuid.New(), time.Now().Add(time.Hour)))
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, ran.Load())
}

func TestDelayedPublisher_RetriesThenFails(t *testing.T) {
	store := NewMemoryJobStore()
	var calls atomic.Int32
	id := uuid.New()

	p, rec := startPublisher(t, store, func(context.Context, uuid.UUID) error {
		calls.Add(1)
		return errors.New("database unavailable")
	})
	require.NoError(t, p.Schedule(context.Background(), id, time.Now()))

	assert.Eventually(t, func() bool { return rec.count(OutcomeFailed) == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 2, rec.count(OutcomeRetried))

	failed := store.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, id, failed[0].EventID)
	assert.Equal(t, 3, failed[0].Attempts)
	assert.Equal(t, "database unavailable", failed[0].LastError)
}

func TestDelayedPublisher_RecoversAfterRetry(t *testing.T) {
	store := NewMemoryJobStore()
	var calls atomic.Int32

	p, rec := startPublisher(t, store, func(context.Context, uuid.UUID) error {
		if calls.Add(1) == 1 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, p.Schedule(context.Background(), uuid.New(), time.Now()))

	assert.Eventually(t, func() bool { return rec.count(OutcomePublished) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, rec.count(OutcomeRetried))
	assert.Empty(t, store.Failed())
}

func TestDelayedPublisher_Cancel(t *testing.T) {
	store := NewMemoryJobStore()
	rec := &outcomeRecorder{}
	p := NewDelayedPublisher(store, testPublisherConfig(), zap.NewNop(), WithOutcomeHook(rec.record))
	id := uuid.New()

	require.NoError(t, p.Schedule(context.Background(), id, time.Now().Add(time.Hour)))
	require.NoError(t, p.Cancel(context.Background(), id))
	require.NoError(t, p.Cancel(context.Background(), uuid.New()))

	pending, err := store.Pending(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, pending)
}

func TestDelayedPublisher_ScheduleClampsPastTime(t *testing.T) {
	store := NewMemoryJobStore()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	p := NewDelayedPublisher(store, testPublisherConfig(), zap.NewNop(), WithClock(func() time.Time { return now }))
	id := uuid.New()

	require.NoError(t, p.Schedule(context.Background(), id, now.Add(-48*time.Hour)))

	pending, err := store.Pending(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.True(t, pending.RunAt.Equal(now))
}

func TestDelayedPublisher_StartRequiresHandler(t *testing.T) {
	p := NewDelayedPublisher(NewMemoryJobStore(), testPublisherConfig(), zap.NewNop())
	assert.ErrorIs(t, p.Start(context.Background()), ErrInvalidConfig)
}

func TestDelayedPublisher_StopWhenNotRunning(t *testing.T) {
	p := NewDelayedPublisher(NewMemoryJobStore(), testPublisherConfig(), zap.NewNop())
	assert.ErrorIs(t, p.Stop(context.Background()), ErrSchedulerNotRunning)
}

func TestPublisherConfigFrom(t *testing.T) {
	cfg := PublisherConfigFrom(config.PublisherConfig{PollInterval: 2 * time.Second, Workers: 4})
	assert.Equal(t, 2*time.Second, cfg.PollInterval)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.NoError(t, cfg.Validate())

	assert.Equal(t, DefaultLease, cfg.Lease)
	assert.NoError(t, cfg.Validate())

	assert.ErrorIs(t, PublisherConfig{}.Validate(), ErrInvalidConfig)

	cfg.Lease = cfg.JobTimeout
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig, "a lease shorter than a run hands the job out twice")
}

func TestDelayedPublisher_ReleaseUndelivered(t *testing.T) {
	store := NewMemoryJobStore()
	now := time.Now()
	id := uuid.New()
	require.NoError(t, store.Put(context.Background(), NewPublishJob(id, now.Add(-time.Second))))
	claimed, err := store.Claim(context.Background(), now, 10)
	require.NoError(t, err)
	require.Len(t, claimed, 1)

	p := NewDelayedPublisher(store, testPublisherConfig(), zap.NewNop())
	stopped, cancel := context.WithCancel(context.Background())
	cancel()
	p.release(stopped, claimed)

	again, err := store.Claim(context.Background(), now, 10)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, id, again[0].EventID)
	assert.Zero(t, again[0].Attempts)
}
