package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appevent "github.com/t1tandr/uevent/internal/application/event"
	"github.com/t1tandr/uevent/internal/infrastructure/config"
)

const releaseTimeout = 5 * time.Second

// PublisherConfig holds delayed publisher configuration
type PublisherConfig struct {
	PollInterval time.Duration
	MaxAttempts  int
	RetryDelay   time.Duration
	BatchSize    int
	Workers      int
	// JobTimeout bounds a single handler run
	JobTimeout time.Duration
	// Lease is how long the store holds a claimed job for this publisher;
	// it must exceed JobTimeout
	Lease time.Duration
}

// DefaultPublisherConfig returns default publisher configuration
func DefaultPublisherConfig() PublisherConfig {
	return PublisherConfig{
		PollInterval: time.Second,
		MaxAttempts:  3,
		RetryDelay:   5 * time.Second,
		BatchSize:    50,
		Workers:      2,
		JobTimeout:   time.Minute,
		Lease:        DefaultLease,
	}
}

// PublisherConfigFrom maps the application publisher settings
func PublisherConfigFrom(cfg config.PublisherConfig) PublisherConfig {
	out := DefaultPublisherConfig()
	if cfg.PollInterval > 0 {
		out.PollInterval = cfg.PollInterval
	}
	if cfg.MaxAttempts > 0 {
		out.MaxAttempts = cfg.MaxAttempts
	}
	if cfg.RetryDelay > 0 {
		out.RetryDelay = cfg.RetryDelay
	}
	if cfg.BatchSize > 0 {
		out.BatchSize = cfg.BatchSize
	}
	if cfg.Workers > 0 {
		out.Workers = cfg.Workers
	}
	return out
}

// Validate checks the configuration
func (c PublisherConfig) Validate() error {
	if c.PollInterval <= 0 || c.MaxAttempts <= 0 || c.Workers <= 0 || c.BatchSize <= 0 {
		return ErrInvalidConfig
	}
	if c.Lease > 0 && c.Lease <= c.JobTimeout {
		return fmt.Errorf("%w: lease %s must exceed job timeout %s", ErrInvalidConfig, c.Lease, c.JobTimeout)
	}
	return nil
}

// PublisherOption configures the delayed publisher
type PublisherOption func(*DelayedPublisher)

// WithOutcomeHook registers a callback invoked with each job outcome
func WithOutcomeHook(hook func(outcome string)) PublisherOption {
	return func(p *DelayedPublisher) {
		p.onOutcome = hook
	}
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) PublisherOption {
	return func(p *DelayedPublisher) {
		p.now = now
	}
}

// DelayedPublisher queues one publish job per event and runs the handler
// once the job is due. Jobs survive restarts when the store does.
type DelayedPublisher struct {
	store     JobStore
	handler   JobHandler
	config    PublisherConfig
	logger    *zap.Logger
	onOutcome func(string)
	now       func() time.Time

	jobs      chan PublishJob
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewDelayedPublisher creates a publisher. The handler is set separately
// with SetHandler because it usually depends on services built later.
func NewDelayedPublisher(store JobStore, cfg PublisherConfig, logger *zap.Logger, opts ...PublisherOption) *DelayedPublisher {
	p := &DelayedPublisher{
		store:  store,
		config: cfg,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SetHandler sets the function run for each due job
func (p *DelayedPublisher) SetHandler(handler JobHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handler = handler
}

// Schedule queues eventID for publication at publishAt, replacing any
// pending job for the same event. A past publishAt runs on the next poll.
func (p *DelayedPublisher) Schedule(ctx context.Context, eventID uuid.UUID, publishAt time.Time) error {
	now := p.now()
	if publishAt.Before(now) {
		publishAt = now
	}
	if err := p.store.Put(ctx, NewPublishJob(eventID, publishAt)); err != nil {
		return err
	}
	p.logger.Debug("publish job scheduled",
		zap.String("event_id", eventID.String()),
		zap.Time("run_at", publishAt),
	)
	return nil
}

// Cancel drops the pending job for eventID
func (p *DelayedPublisher) Cancel(ctx context.Context, eventID uuid.UUID) error {
	if err := p.store.Remove(ctx, eventID); err != nil {
		return err
	}
	p.logger.Debug("publish job cancelled", zap.String("event_id", eventID.String()))
	return nil
}

// Start launches the poller and the worker pool
func (p *DelayedPublisher) Start(ctx context.Context) error {
	if err := p.config.Validate(); err != nil {
		return err
	}

	p.mu.Lock()
	if p.isRunning {
		p.mu.Unlock()
		return nil
	}
	if p.handler == nil {
		p.mu.Unlock()
		return fmt.Errorf("%w: no job handler set", ErrInvalidConfig)
	}
	p.isRunning = true
	p.jobs = make(chan PublishJob, p.config.BatchSize)
	p.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	for i := range p.config.Workers {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
	p.wg.Add(1)
	go p.poll(ctx)

	p.logger.Info("Delayed publisher started",
		zap.Int("workers", p.config.Workers),
		zap.Duration("poll_interval", p.config.PollInterval),
	)
	return nil
}

// Stop stops polling and waits for running jobs
func (p *DelayedPublisher) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.isRunning {
		p.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	p.isRunning = false
	p.mu.Unlock()

	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("Delayed publisher stopped gracefully")
		return nil
	case <-ctx.Done():
		p.logger.Warn("Delayed publisher stop timed out")
		return ctx.Err()
	}
}

func (p *DelayedPublisher) poll(ctx context.Context) {
	defer p.wg.Done()
	defer close(p.jobs)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		p.claimDue(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (p *DelayedPublisher) claimDue(ctx context.Context) {
	jobs, err := p.store.Claim(ctx, p.now(), p.config.BatchSize)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			p.logger.Error("Failed to claim publish jobs", zap.Error(err))
		}
		if len(jobs) == 0 {
			return
		}
	}
	for i, job := range jobs {
		select {
		case p.jobs <- job:
		case <-ctx.Done():
			p.release(ctx, jobs[i:])
			return
		}
	}
}

// release puts claimed jobs that no worker took back on the schedule,
// unchanged, so they do not wait out their lease
func (p *DelayedPublisher) release(ctx context.Context, jobs []PublishJob) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()
	for _, job := range jobs {
		if err := p.store.Retry(ctx, job); err != nil && !errors.Is(err, ErrJobNotFound) {
			p.logger.Warn("Failed to release publish job",
				zap.String("event_id", job.EventID.String()), zap.Error(err))
		}
	}
}

func (p *DelayedPublisher) worker(ctx context.Context, workerID int) {
	defer p.wg.Done()
	for job := range p.jobs {
		p.process(ctx, job, workerID)
	}
}

func (p *DelayedPublisher) process(ctx context.Context, job PublishJob, workerID int) {
	// a claimed job finishes even when shutdown begins
	jobCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.config.JobTimeout)
	defer cancel()

	fields := []zap.Field{
		zap.Int("worker_id", workerID),
		zap.String("event_id", job.EventID.String()),
		zap.Int("attempt", job.Attempts+1),
	}

	err := p.handler(jobCtx, job.EventID)
	if err == nil {
		if cerr := p.store.Complete(jobCtx, job); cerr != nil {
			p.logger.Error("Failed to complete publish job", append(fields, zap.Error(cerr))...)
		}
		p.logger.Info("Event published", fields...)
		p.report(OutcomePublished)
		return
	}

	job.Attempts++
	job.LastError = err.Error()
	fields = append(fields, zap.Error(err))

	if job.Attempts < p.config.MaxAttempts {
		job.RunAt = p.now().Add(p.config.RetryDelay)
		if rerr := p.store.Retry(jobCtx, job); rerr != nil && !errors.Is(rerr, ErrJobNotFound) {
			p.logger.Error("Failed to re-queue publish job", append(fields, zap.NamedError("store_error", rerr))...)
		}
		p.logger.Warn("Publish job failed, retrying", append(fields, zap.Time("next_run", job.RunAt))...)
		p.report(OutcomeRetried)
		return
	}

	if ferr := p.store.Fail(jobCtx, job); ferr != nil && !errors.Is(ferr, ErrJobNotFound) {
		p.logger.Error("Failed to move publish job to failed set", append(fields, zap.NamedError("store_error", ferr))...)
	}
	p.logger.Error("Publish job failed permanently", fields...)
	p.report(OutcomeFailed)
}

func (p *DelayedPublisher) report(outcome string) {
	if p.onOutcome != nil {
		p.onOutcome(outcome)
	}
}

var _ appevent.Publisher = (*DelayedPublisher)(nil)
