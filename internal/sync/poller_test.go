package sync_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/teamflow/internal/cache"
	tfsync "github.com/nhle/teamflow/internal/sync"
	"github.com/nhle/teamflow/tests/testutil"
)

type loadedMsg struct{ n int32 }

func countingQuery(resource string, poll bool, calls *atomic.Int32, forced *atomic.Int32) tfsync.Query {
	return tfsync.Query{
		Key:  cache.NewKey(resource),
		Poll: poll,
		Load: func(ctx context.Context, force bool) (tea.Msg, error) {
			if force {
				forced.Add(1)
			}
			return loadedMsg{n: calls.Add(1)}, nil
		},
	}
}

// next waits for one ResultMsg or fails the test.
func next(t *testing.T, p *tfsync.Poller) tfsync.ResultMsg {
	t.Helper()

	ch := make(chan tea.Msg, 1)
	go func() { ch <- p.WaitForNextResult()() }()

	select {
	case msg := <-ch:
		res, ok := msg.(tfsync.ResultMsg)
		require.True(t, ok, "unexpected message %T", msg)
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for poll result")
		return tfsync.ResultMsg{}
	}
}

func TestRegister_LoadsImmediately(t *testing.T) {
	p := tfsync.New(nil, time.Hour)
	var calls, forced atomic.Int32
	p.Register("tasks", countingQuery(cache.ResourceTasks, true, &calls, &forced))

	p.Start()
	defer p.Stop()

	res := next(t, p)
	assert.Equal(t, "tasks", res.Slot)
	assert.NoError(t, res.Err)
	assert.Equal(t, loadedMsg{n: 1}, res.Msg)
	assert.Equal(t, int32(1), forced.Load())
}

func TestTick_RefreshesOnlyPollQueries(t *testing.T) {
	p := tfsync.New(nil, 20*time.Millisecond)
	var taskCalls, taskForced, userCalls, userForced atomic.Int32
	p.Register("tasks", countingQuery(cache.ResourceTasks, true, &taskCalls, &taskForced))
	p.Register("users", countingQuery(cache.ResourceUsers, false, &userCalls, &userForced))

	p.Start()
	defer p.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for taskCalls.Load() < 4 {
		require.True(t, time.Now().Before(deadline), "poll ticks did not fire")
		next(t, p)
	}

	assert.Equal(t, int32(1), userCalls.Load())
}

func TestInvalidation_ReloadsMatchingQueries(t *testing.T) {
	c := testutil.NewTestCache(t)
	p := tfsync.New(c, time.Hour)
	var taskCalls, taskForced, userCalls, userForced atomic.Int32
	p.Register("tasks", countingQuery(cache.ResourceTasks, true, &taskCalls, &taskForced))
	p.Register("users", countingQuery(cache.ResourceUsers, false, &userCalls, &userForced))

	p.Start()
	defer p.Stop()
	next(t, p)
	next(t, p)

	require.NoError(t, c.Invalidate(context.Background(), cache.MutationResources...))

	res := next(t, p)
	assert.Equal(t, "tasks", res.Slot)
	assert.Equal(t, int32(2), taskCalls.Load())
	assert.Equal(t, int32(1), taskForced.Load(), "invalidation reloads are not forced")
	assert.Equal(t, int32(1), userCalls.Load())
}

func TestLoadError_IsDelivered(t *testing.T) {
	p := tfsync.New(nil, time.Hour)
	boom := errors.New("boom")
	p.Register("stats", tfsync.Query{
		Key: cache.NewKey(cache.ResourceStats),
		Load: func(ctx context.Context, force bool) (tea.Msg, error) {
			return nil, boom
		},
	})

	p.Start()
	defer p.Stop()

	res := next(t, p)
	assert.Equal(t, "stats", res.Slot)
	assert.ErrorIs(t, res.Err, boom)
}

func TestUnregisterAndReset(t *testing.T) {
	p := tfsync.New(nil, time.Hour)
	var calls, forced atomic.Int32
	p.Register("a", countingQuery(cache.ResourceTasks, true, &calls, &forced))
	p.Register("b", countingQuery(cache.ResourceStats, true, &calls, &forced))
	assert.Equal(t, []string{"a", "b"}, p.Slots())

	p.Unregister("a")
	assert.Equal(t, []string{"b"}, p.Slots())

	p.Reset()
	assert.Empty(t, p.Slots())
}

func TestStop_UnblocksWaiters(t *testing.T) {
	p := tfsync.New(nil, time.Hour)
	p.Start()

	done := make(chan tea.Msg, 1)
	go func() { done <- p.WaitForNextResult()() }()
	p.Stop()

	select {
	case msg := <-done:
		assert.Nil(t, msg)
	case <-time.After(time.Second):
		t.Fatal("waiter not released by Stop")
	}
}
