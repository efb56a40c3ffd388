package scheduler

import (
	"context"
	"testing"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readstack/readstack/internal/tasks"
)

type mockEnqueuer struct {
	added []backlite.Task
}

func (m *mockEnqueuer) Enqueue(t backlite.Task) error {
	m.added = append(m.added, t)
	return nil
}

func TestTriggerNow_QueuesSweepTask(t *testing.T) {
	queue := &mockEnqueuer{}
	s := NewEnrichmentSweepScheduler(queue, "0 3 * * *", 25)

	require.NoError(t, s.TriggerNow())

	require.Len(t, queue.added, 1)
	task, ok := queue.added[0].(tasks.EnrichAllBooksTask)
	require.True(t, ok)
	assert.Equal(t, 25, task.Limit)
}

func TestStart_RejectsInvalidSchedule(t *testing.T) {
	s := NewEnrichmentSweepScheduler(&mockEnqueuer{}, "not a schedule", 10)

	err := s.Start(context.Background())

	require.Error(t, err)
}

func TestStop_ReleasesWatcher(t *testing.T) {
	s := NewEnrichmentSweepScheduler(&mockEnqueuer{}, "0 3 * * *", 10)

	require.NoError(t, s.Start(context.Background()))

	// A direct Stop must cancel the derived context, or the goroutine
	// watching it never exits.
	cancelled := false
	inner := s.cancelFunc
	s.cancelFunc = func() {
		cancelled = true
		inner()
	}

	s.Stop()

	assert.True(t, cancelled)
	assert.Nil(t, s.cancelFunc)

	// Stopping again is a no-op.
	s.Stop()
}

func TestStart_Idempotent(t *testing.T) {
	s := NewEnrichmentSweepScheduler(&mockEnqueuer{}, "0 3 * * *", 10)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	require.NoError(t, s.Start(ctx))

	cancel()
	s.Stop()
}
