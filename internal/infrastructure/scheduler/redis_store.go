package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Redis keys used by the publish queue
const (
	DefaultDelayedKey    = "uevent:publish:delayed"
	DefaultProcessingKey = "uevent:publish:processing"
	DefaultJobsKey       = "uevent:publish:jobs"
	DefaultFailedKey     = "uevent:publish:failed"
)

// claimScript first puts jobs whose lease ran out back on the schedule, then
// moves due ids from the schedule to the processing set scored by their
// lease deadline. The script runs atomically so a job has one owner.
// KEYS: delayed, jobs, processing. ARGV: now, limit, lease deadline
var claimScript = redis.NewScript(`
local expired = redis.call('ZRANGEBYSCORE', KEYS[3], '-inf', ARGV[1])
for _, id in ipairs(expired) do
  redis.call('ZREM', KEYS[3], id)
  if redis.call('HEXISTS', KEYS[2], id) == 1 then
    redis.call('ZADD', KEYS[1], ARGV[1], id)
  end
end
local ids = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, ARGV[2])
local out = {}
for _, id in ipairs(ids) do
  redis.call('ZREM', KEYS[1], id)
  local payload = redis.call('HGET', KEYS[2], id)
  if payload then
    redis.call('ZADD', KEYS[3], ARGV[3], id)
    table.insert(out, payload)
  end
end
return out
`)

// settleScript acts on a claimed job only while its token is current.
// KEYS: jobs, delayed, failed, processing
// ARGV: id, token, action (complete|retry|fail), payload, score
var settleScript = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], ARGV[1])
if not cur then
  return 0
end
if cjson.decode(cur).token ~= ARGV[2] then
  return 0
end
redis.call('ZREM', KEYS[4], ARGV[1])
if ARGV[3] == 'complete' then
  redis.call('HDEL', KEYS[1], ARGV[1])
elseif ARGV[3] == 'retry' then
  redis.call('HSET', KEYS[1], ARGV[1], ARGV[4])
  redis.call('ZADD', KEYS[2], ARGV[5], ARGV[1])
else
  redis.call('HDEL', KEYS[1], ARGV[1])
  redis.call('HSET', KEYS[3], ARGV[1], ARGV[4])
end
return 1
`)

// RedisJobStore keeps the schedule in a sorted set scored by run-at
// milliseconds, claimed ids in a second sorted set scored by lease deadline
// and the job payloads in a hash keyed by event id.
type RedisJobStore struct {
	client        redis.UniversalClient
	lease         time.Duration
	delayedKey    string
	processingKey string
	jobsKey       string
	failedKey     string
}

// NewRedisJobStore creates a store on the default keys
func NewRedisJobStore(client redis.UniversalClient, opts ...StoreOption) *RedisJobStore {
	return &RedisJobStore{
		client:        client,
		lease:         newStoreOptions(opts).lease,
		delayedKey:    DefaultDelayedKey,
		processingKey: DefaultProcessingKey,
		jobsKey:       DefaultJobsKey,
		failedKey:     DefaultFailedKey,
	}
}

func (s *RedisJobStore) Put(ctx context.Context, job PublishJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode publish job: %w", err)
	}
	id := job.EventID.String()

	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, s.jobsKey, id, payload)
		p.ZAdd(ctx, s.delayedKey, redis.Z{Score: score(job.RunAt), Member: id})
		p.ZRem(ctx, s.processingKey, id)
		p.HDel(ctx, s.failedKey, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to schedule publish job: %w", err)
	}
	return nil
}

func (s *RedisJobStore) Remove(ctx context.Context, eventID uuid.UUID) error {
	id := eventID.String()
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.ZRem(ctx, s.delayedKey, id)
		p.ZRem(ctx, s.processingKey, id)
		p.HDel(ctx, s.jobsKey, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to remove publish job: %w", err)
	}
	return nil
}

// Claim leases up to limit due jobs. A payload that does not decode is
// skipped and reported; the other jobs are still returned.
func (s *RedisJobStore) Claim(ctx context.Context, now time.Time, limit int) ([]PublishJob, error) {
	if limit <= 0 {
		limit = 10
	}
	raw, err := claimScript.Run(ctx, s.client,
		[]string{s.delayedKey, s.jobsKey, s.processingKey},
		strconv.FormatInt(now.UnixMilli(), 10), limit,
		strconv.FormatInt(now.Add(s.lease).UnixMilli(), 10),
	).StringSlice()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to claim publish jobs: %w", err)
	}

	jobs := make([]PublishJob, 0, len(raw))
	var decodeErr error
	for _, payload := range raw {
		var job PublishJob
		if err := json.Unmarshal([]byte(payload), &job); err != nil {
			decodeErr = errors.Join(decodeErr, fmt.Errorf("failed to decode publish job: %w", err))
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, decodeErr
}

func (s *RedisJobStore) Complete(ctx context.Context, job PublishJob) error {
	_, err := s.settle(ctx, job, "complete")
	return err
}

func (s *RedisJobStore) Retry(ctx context.Context, job PublishJob) error {
	return s.settleOrMissing(ctx, job, "retry")
}

func (s *RedisJobStore) Fail(ctx context.Context, job PublishJob) error {
	return s.settleOrMissing(ctx, job, "fail")
}

// Pending reports the stored job for eventID, whether waiting or leased
func (s *RedisJobStore) Pending(ctx context.Context, eventID uuid.UUID) (*PublishJob, error) {
	payload, err := s.client.HGet(ctx, s.jobsKey, eventID.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read publish job: %w", err)
	}
	var job PublishJob
	if err := json.Unmarshal(payload, &job); err != nil {
		return nil, fmt.Errorf("failed to decode publish job: %w", err)
	}
	return &job, nil
}

func (s *RedisJobStore) settleOrMissing(ctx context.Context, job PublishJob, action string) error {
	ok, err := s.settle(ctx, job, action)
	if err != nil {
		return err
	}
	if !ok {
		return ErrJobNotFound
	}
	return nil
}

func (s *RedisJobStore) settle(ctx context.Context, job PublishJob, action string) (bool, error) {
	payload, err := json.Marshal(job)
	if err != nil {
		return false, fmt.Errorf("failed to encode publish job: %w", err)
	}
	n, err := settleScript.Run(ctx, s.client,
		[]string{s.jobsKey, s.delayedKey, s.failedKey, s.processingKey},
		job.EventID.String(), job.Token, action, payload, score(job.RunAt),
	).Int()
	if err != nil {
		return false, fmt.Errorf("failed to %s publish job: %w", action, err)
	}
	return n == 1, nil
}

func score(t time.Time) float64 {
	return float64(t.UnixMilli())
}

var _ JobStore = (*RedisJobStore)(nil)
