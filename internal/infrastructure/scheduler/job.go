package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Job outcomes reported to the outcome hook
const (
	OutcomePublished = "published"
	OutcomeRetried   = "retried"
	OutcomeFailed    = "failed"
)

// PublishJob is one pending publication of an event
type PublishJob struct {
	EventID  uuid.UUID `json:"eventId"`
	RunAt    time.Time `json:"runAt"`
	Attempts int       `json:"attempts"`
	// Token identifies this scheduling of the job. A reschedule issues a new
	// token so a worker still running the old one cannot complete it.
	Token     string `json:"token"`
	LastError string `json:"lastError,omitempty"`
}

// NewPublishJob creates a job for eventID due at runAt
func NewPublishJob(eventID uuid.UUID, runAt time.Time) PublishJob {
	return PublishJob{
		EventID: eventID,
		RunAt:   runAt,
		Token:   uuid.NewString(),
	}
}

// DefaultLease is how long a claimed job may stay unsettled before Claim
// hands it out again
const DefaultLease = 5 * time.Minute

// StoreOption configures a JobStore
type StoreOption func(*storeOptions)

type storeOptions struct {
	lease time.Duration
}

// WithLease sets how long a claim holds a job. It must exceed the longest
// handler run or a slow job is run twice.
func WithLease(d time.Duration) StoreOption {
	return func(o *storeOptions) {
		if d > 0 {
			o.lease = d
		}
	}
}

func newStoreOptions(opts []StoreOption) storeOptions {
	o := storeOptions{lease: DefaultLease}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// JobStore persists delayed jobs. Claim must hand each due job to exactly
// one caller and leases it; claimed jobs stay stored until Complete, Retry
// or Fail, and a job whose lease ran out is due again.
type JobStore interface {
	// Put inserts or replaces the job for job.EventID
	Put(ctx context.Context, job PublishJob) error
	// Remove deletes the job for eventID, pending or claimed
	Remove(ctx context.Context, eventID uuid.UUID) error
	// Claim takes up to limit jobs whose RunAt is not after now, first
	// returning expired leases to the schedule
	Claim(ctx context.Context, now time.Time, limit int) ([]PublishJob, error)
	// Complete deletes a claimed job if its token still matches
	Complete(ctx context.Context, job PublishJob) error
	// Retry stores the updated job and makes it due at job.RunAt again
	Retry(ctx context.Context, job PublishJob) error
	// Fail moves the job to the failed set
	Fail(ctx context.Context, job PublishJob) error
	// Pending reports the job queued for eventID, if any
	Pending(ctx context.Context, eventID uuid.UUID) (*PublishJob, error)
}

// JobHandler runs the work for one event
type JobHandler func(ctx context.Context, eventID uuid.UUID) error
