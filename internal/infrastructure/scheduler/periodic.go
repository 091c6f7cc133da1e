package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// PeriodicTask runs fn every interval until stopped. A run that is still
// going when the next tick fires delays the next run instead of overlapping.
type PeriodicTask struct {
	name     string
	interval time.Duration
	fn       func(ctx context.Context) error
	logger   *zap.Logger

	// RunOnStart triggers one run immediately after Start
	RunOnStart bool

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewPeriodicTask creates a periodic task
func NewPeriodicTask(name string, interval time.Duration, fn func(ctx context.Context) error, logger *zap.Logger) *PeriodicTask {
	return &PeriodicTask{
		name:     name,
		interval: interval,
		fn:       fn,
		logger:   logger.With(zap.String("task", name)),
	}
}

// Start starts the run loop
func (t *PeriodicTask) Start(ctx context.Context) error {
	if t.interval <= 0 || t.fn == nil {
		return ErrInvalidConfig
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.isRunning {
		return nil
	}
	t.isRunning = true

	ctx, t.cancel = context.WithCancel(ctx)
	t.wg.Add(1)
	go t.runLoop(ctx)

	t.logger.Info("Periodic task started", zap.Duration("interval", t.interval))
	return nil
}

// Stop cancels the loop and waits for a running invocation
func (t *PeriodicTask) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	t.isRunning = false
	t.mu.Unlock()

	t.cancel()

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Info("Periodic task stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *PeriodicTask) runLoop(ctx context.Context) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	if t.RunOnStart {
		t.runOnce(ctx)
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.runOnce(ctx)
		}
	}
}

func (t *PeriodicTask) runOnce(ctx context.Context) {
	start := time.Now()
	if err := t.fn(ctx); err != nil {
		t.logger.Error("Periodic task failed", zap.Error(err))
		return
	}
	t.logger.Debug("Periodic task finished", zap.Duration("duration", time.Since(start)))
}
