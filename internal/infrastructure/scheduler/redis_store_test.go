package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisJobStore(t *testing.T, opts ...StoreOption) (*RedisJobStore, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisJobStore(client, opts...), client
}

func TestRedisJobStore_ClaimIsExclusive(t *testing.T) {
	ctx := context.Background()
	store, client := newRedisJobStore(t)
	now := time.Now()

	due := map[uuid.UUID]bool{}
	for i := range 6 {
		job := NewPublishJob(uuid.New(), now.Add(-time.Duration(i+1)*time.Minute))
		require.NoError(t, store.Put(ctx, job))
		due[job.EventID] = true
	}
	require.NoError(t, store.Put(ctx, NewPublishJob(uuid.New(), now.Add(time.Hour))))

	var (
		mu  sync.Mutex
		got = map[uuid.UUID]int{}
		wg  sync.WaitGroup
	)
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			jobs, err := store.Claim(ctx, now, 2)
			assert.NoError(t, err)
			mu.Lock()
			defer mu.Unlock()
			for _, j := range jobs {
				got[j.EventID]++
			}
		}()
	}
	wg.Wait()

	require.Len(t, got, 6)
	for id, n := range got {
		assert.True(t, due[id])
		assert.Equal(t, 1, n, "each job is claimed once")
	}
	assert.Equal(t, int64(1), client.ZCard(ctx, DefaultDelayedKey).Val(), "the future job stays scheduled")
	assert.Equal(t, int64(6), client.ZCard(ctx, DefaultProcessingKey).Val())
}

func TestRedisJobStore_ClaimOldestFirst(t *testing.T) {
	ctx := context.Background()
	store, _ := newRedisJobStore(t)
	now := time.Now()

	late := NewPublishJob(uuid.New(), now.Add(-time.Minute))
	early := NewPublishJob(uuid.New(), now.Add(-time.Hour))
	require.NoError(t, store.Put(ctx, late))
	require.NoError(t, store.Put(ctx, early))

	jobs, err := store.Claim(ctx, now, 1)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, early.EventID, jobs[0].EventID)
	assert.Equal(t, early.Token, jobs[0].Token)
}

func TestRedisJobStore_StaleTokenCannotSettle(t *testing.T) {
	ctx := context.Background()
	store, client := newRedisJobStore(t)
	now := time.Now()
	id := uuid.New()

	require.NoError(t, store.Put(ctx, NewPublishJob(id, now.Add(-time.Second))))
	claimed, err := store.Claim(ctx, now, 1)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	old := claimed[0]

	rescheduled := NewPublishJob(id, now.Add(time.Hour))
	require.NoError(t, store.Put(ctx, rescheduled))
	assert.Zero(t, client.ZCard(ctx, DefaultProcessingKey).Val(), "a reschedule drops the lease")

	require.NoError(t, store.Complete(ctx, old))
	assert.ErrorIs(t, store.Retry(ctx, old), ErrJobNotFound)
	assert.ErrorIs(t, store.Fail(ctx, old), ErrJobNotFound)

	pending, err := store.Pending(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, rescheduled.Token, pending.Token)
	assert.Equal(t, float64(rescheduled.RunAt.UnixMilli()), client.ZScore(ctx, DefaultDelayedKey, id.String()).Val())
	assert.Zero(t, client.HLen(ctx, DefaultFailedKey).Val())
}

func TestRedisJobStore_RetryRescores(t *testing.T) {
	ctx := context.Background()
	store, client := newRedisJobStore(t)
	now := time.Now()
	job := NewPublishJob(uuid.New(), now.Add(-time.Second))
	require.NoError(t, store.Put(ctx, job))

	claimed, err := store.Claim(ctx, now, 1)
	require.NoError(t, err)
	require.Len(t, claimed, 1)

	retry := claimed[0]
	retry.Attempts++
	retry.LastError = "database unavailable"
	retry.RunAt = now.Add(time.Minute)
	require.NoError(t, store.Retry(ctx, retry))
	assert.Zero(t, client.ZCard(ctx, DefaultProcessingKey).Val())
	assert.Equal(t, float64(retry.RunAt.UnixMilli()), client.ZScore(ctx, DefaultDelayedKey, job.EventID.String()).Val())

	early, err := store.Claim(ctx, now.Add(59*time.Second), 1)
	require.NoError(t, err)
	assert.Empty(t, early)

	again, err := store.Claim(ctx, now.Add(time.Minute), 1)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, 1, again[0].Attempts)
	assert.Equal(t, "database unavailable", again[0].LastError)
}

func TestRedisJobStore_FailMovesToFailedSet(t *testing.T) {
	ctx := context.Background()
	store, client := newRedisJobStore(t)
	now := time.Now()
	job := NewPublishJob(uuid.New(), now.Add(-time.Second))
	require.NoError(t, store.Put(ctx, job))

	claimed, err := store.Claim(ctx, now, 1)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	dead := claimed[0]
	dead.Attempts = 3
	require.NoError(t, store.Fail(ctx, dead))

	pending, err := store.Pending(ctx, job.EventID)
	require.NoError(t, err)
	assert.Nil(t, pending)
	assert.Zero(t, client.ZCard(ctx, DefaultProcessingKey).Val())

	raw, err := client.HGet(ctx, DefaultFailedKey, job.EventID.String()).Bytes()
	require.NoError(t, err)
	var failed PublishJob
	require.NoError(t, json.Unmarshal(raw, &failed))
	assert.Equal(t, 3, failed.Attempts)

	require.NoError(t, store.Put(ctx, NewPublishJob(job.EventID, now.Add(time.Hour))))
	assert.Zero(t, client.HLen(ctx, DefaultFailedKey).Val(), "scheduling again clears the failure")
}

func TestRedisJobStore_ExpiredLeaseSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	store, client := newRedisJobStore(t, WithLease(time.Minute))
	now := time.Now()
	job := NewPublishJob(uuid.New(), now.Add(-time.Second))
	require.NoError(t, store.Put(ctx, job))

	claimed, err := store.Claim(ctx, now, 1)
	require.NoError(t, err)
	require.Len(t, claimed, 1)

	// the worker holding the claim never settles it
	restarted := NewRedisJobStore(client, WithLease(time.Minute))

	held, err := restarted.Claim(ctx, now.Add(30*time.Second), 1)
	require.NoError(t, err)
	assert.Empty(t, held)

	reclaimed, err := restarted.Claim(ctx, now.Add(time.Hour), 1)
	require.NoError(t, err)
	require.Len(t, reclaimed, 1)
	assert.Equal(t, job.Token, reclaimed[0].Token)

	require.NoError(t, restarted.Complete(ctx, reclaimed[0]))
	pending, err := restarted.Pending(ctx, job.EventID)
	require.NoError(t, err)
	assert.Nil(t, pending)
	assert.Zero(t, client.ZCard(ctx, DefaultProcessingKey).Val())
}

func TestRedisJobStore_RemoveClaimedJob(t *testing.T) {
	ctx := context.Background()
	store, client := newRedisJobStore(t, WithLease(time.Minute))
	now := time.Now()
	job := NewPublishJob(uuid.New(), now.Add(-time.Second))
	require.NoError(t, store.Put(ctx, job))
	_, err := store.Claim(ctx, now, 1)
	require.NoError(t, err)

	require.NoError(t, store.Remove(ctx, job.EventID))
	require.NoError(t, store.Remove(ctx, uuid.New()))
	assert.Zero(t, client.ZCard(ctx, DefaultProcessingKey).Val())

	jobs, err := store.Claim(ctx, now.Add(time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, jobs)
	assert.ErrorIs(t, store.Retry(ctx, job), ErrJobNotFound)
}

func TestRedisJobStore_ClaimSkipsUndecodablePayload(t *testing.T) {
	ctx := context.Background()
	store, client := newRedisJobStore(t)
	now := time.Now()

	good := NewPublishJob(uuid.New(), now.Add(-time.Minute))
	require.NoError(t, store.Put(ctx, good))
	require.NoError(t, client.HSet(ctx, DefaultJobsKey, "garbled", "{not json").Err())
	require.NoError(t, client.ZAdd(ctx, DefaultDelayedKey, redis.Z{Score: float64(now.Add(-time.Hour).UnixMilli()), Member: "garbled"}).Err())

	jobs, err := store.Claim(ctx, now, 10)
	assert.Error(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, good.EventID, jobs[0].EventID)
}
