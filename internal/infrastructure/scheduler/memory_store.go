package scheduler

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryEntry struct {
	job PublishJob
	// leasedUntil is zero while the job waits on the schedule
	leasedUntil time.Time
}

func (e *memoryEntry) due(now time.Time) bool {
	if !e.leasedUntil.IsZero() {
		return !now.Before(e.leasedUntil)
	}
	return !e.job.RunAt.After(now)
}

// MemoryJobStore keeps jobs in process memory. Jobs are lost on restart,
// so it serves tests and single-instance development without Redis.
type MemoryJobStore struct {
	mu     sync.Mutex
	lease  time.Duration
	jobs   map[uuid.UUID]*memoryEntry
	failed map[uuid.UUID]PublishJob
}

// NewMemoryJobStore creates an empty in-memory job store
func NewMemoryJobStore(opts ...StoreOption) *MemoryJobStore {
	return &MemoryJobStore{
		lease:  newStoreOptions(opts).lease,
		jobs:   make(map[uuid.UUID]*memoryEntry),
		failed: make(map[uuid.UUID]PublishJob),
	}
}

func (s *MemoryJobStore) Put(_ context.Context, job PublishJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.EventID] = &memoryEntry{job: job}
	delete(s.failed, job.EventID)
	return nil
}

func (s *MemoryJobStore) Remove(_ context.Context, eventID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, eventID)
	return nil
}

func (s *MemoryJobStore) Claim(_ context.Context, now time.Time, limit int) ([]PublishJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	due := make([]*memoryEntry, 0)
	for _, e := range s.jobs {
		if e.due(now) {
			due = append(due, e)
		}
	}
	slices.SortFunc(due, func(a, b *memoryEntry) int {
		return a.job.RunAt.Compare(b.job.RunAt)
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}

	claimed := make([]PublishJob, len(due))
	for i, e := range due {
		e.leasedUntil = now.Add(s.lease)
		claimed[i] = e.job
	}
	return claimed, nil
}

func (s *MemoryJobStore) Complete(_ context.Context, job PublishJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.jobs[job.EventID]; ok && e.job.Token == job.Token {
		delete(s.jobs, job.EventID)
	}
	return nil
}

func (s *MemoryJobStore) Retry(_ context.Context, job PublishJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.jobs[job.EventID]
	if !ok || e.job.Token != job.Token {
		return ErrJobNotFound
	}
	e.job = job
	e.leasedUntil = time.Time{}
	return nil
}

func (s *MemoryJobStore) Fail(_ context.Context, job PublishJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.jobs[job.EventID]
	if !ok || e.job.Token != job.Token {
		return ErrJobNotFound
	}
	delete(s.jobs, job.EventID)
	s.failed[job.EventID] = job
	return nil
}

func (s *MemoryJobStore) Pending(_ context.Context, eventID uuid.UUID) (*PublishJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.jobs[eventID]
	if !ok {
		return nil, nil
	}
	job := e.job
	return &job, nil
}

// Failed returns the jobs that exhausted their attempts
func (s *MemoryJobStore) Failed() []PublishJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PublishJob, 0, len(s.failed))
	for _, j := range s.failed {
		out = append(out, j)
	}
	return out
}

var _ JobStore = (*MemoryJobStore)(nil)
