package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPeriodicTask_RunsOnInterval(t *testing.T) {
	var runs atomic.Int32
	task := NewPeriodicTask("sweep", 10*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return nil
	}, zap.NewNop())

	require.NoError(t, task.Start(context.Background()))
	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	require.NoError(t, task.Stop(context.Background()))

	after := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, runs.Load())
}

func TestPeriodicTask_RunOnStart(t *testing.T) {
	var runs atomic.Int32
	task := NewPeriodicTask("sweep", time.Hour, func(context.Context) error {
		runs.Add(1)
		return nil
	}, zap.NewNop())
	task.RunOnStart = true

	require.NoError(t, task.Start(context.Background()))
	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, task.Stop(context.Background()))
}

func TestPeriodicTask_ErrorsDoNotStopLoop(t *testing.T) {
	var runs atomic.Int32
	task := NewPeriodicTask("sweep", 5*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return errors.New("boom")
	}, zap.NewNop())

	require.NoError(t, task.Start(context.Background()))
	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
	require.NoError(t, task.Stop(context.Background()))
}

func TestPeriodicTask_InvalidConfig(t *testing.T) {
	task := NewPeriodicTask("sweep", 0, func(context.Context) error { return nil }, zap.NewNop())
	assert.ErrorIs(t, task.Start(context.Background()), ErrInvalidConfig)
	assert.ErrorIs(t, task.Stop(context.Background()), ErrSchedulerNotRunning)
}
