package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/teamflow/internal/cache"
	"github.com/nhle/teamflow/internal/metrics"
	"github.com/nhle/teamflow/internal/model"
	"github.com/nhle/teamflow/tests/testutil"
)

type counter struct {
	calls atomic.Int32
	value []model.Task
	err   error
}

func (c *counter) fetch(ctx context.Context) ([]model.Task, error) {
	c.calls.Add(1)
	return c.value, c.err
}

// lookups reads teamflow_cache_lookups_total for one label pair.
func lookups(t *testing.T, m *metrics.Metrics, resource, result string) float64 {
	t.Helper()

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "teamflow_cache_lookups_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range metric.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["resource"] == resource && labels["result"] == result {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestGet_MissThenHit(t *testing.T) {
	c := testutil.NewTestCache(t)
	ctx := context.Background()
	key := cache.NewKey(cache.ResourceTasks)
	src := &counter{value: []model.Task{{ID: "1", Title: "a", Status: model.StatusTodo}}}

	got, err := cache.Get(ctx, c, key, src.fetch)
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = cache.Get(ctx, c, key, src.fetch)
	require.NoError(t, err)
	assert.Equal(t, "a", got[0].Title)
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestGet_DistinctParamsAreDistinctEntries(t *testing.T) {
	c := testutil.NewTestCache(t)
	ctx := context.Background()
	src := &counter{}

	_, err := cache.Get(ctx, c, cache.NewKey(cache.ResourceTasks, "status", "TODO"), src.fetch)
	require.NoError(t, err)
	_, err = cache.Get(ctx, c, cache.NewKey(cache.ResourceTasks, "status", "DONE"), src.fetch)
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.calls.Load())

	keys, err := c.Keys(ctx, cache.ResourceTasks)
	require.NoError(t, err)
	assert.Equal(t, []string{"tasks?status=DONE", "tasks?status=TODO"}, keys)
}

func TestInvalidate_RefetchesAndNotifies(t *testing.T) {
	c := testutil.NewTestCache(t)
	ctx := context.Background()
	tasksKey := cache.NewKey(cache.ResourceTasks)
	usersKey := cache.NewKey(cache.ResourceUsers)
	tasks := &counter{}
	users := &counter{}

	var notified [][]string
	unsubscribe := c.OnInvalidate(func(resources []string) {
		notified = append(notified, resources)
	})
	defer unsubscribe()

	_, err := cache.Get(ctx, c, tasksKey, tasks.fetch)
	require.NoError(t, err)
	_, err = cache.Get(ctx, c, usersKey, users.fetch)
	require.NoError(t, err)

	require.NoError(t, c.Invalidate(ctx, cache.MutationResources...))
	require.Len(t, notified, 1)
	assert.Equal(t, cache.MutationResources, notified[0])

	_, err = cache.Get(ctx, c, tasksKey, tasks.fetch)
	require.NoError(t, err)
	_, err = cache.Get(ctx, c, usersKey, users.fetch)
	require.NoError(t, err)

	assert.Equal(t, int32(2), tasks.calls.Load())
	assert.Equal(t, int32(1), users.calls.Load(), "users are not a mutation resource")
}

func TestOnInvalidate_Unsubscribe(t *testing.T) {
	c := testutil.NewTestCache(t)
	calls := 0
	unsubscribe := c.OnInvalidate(func([]string) { calls++ })
	unsubscribe()

	require.NoError(t, c.Invalidate(context.Background(), cache.ResourceTasks))
	assert.Zero(t, calls)
}

func TestGet_FailureKeepsStaleEntryReadable(t *testing.T) {
	c := testutil.NewTestCache(t)
	ctx := context.Background()
	key := cache.NewKey(cache.ResourceTasks)
	src := &counter{value: []model.Task{{ID: "1", Title: "old", Status: model.StatusTodo}}}

	_, err := cache.Get(ctx, c, key, src.fetch)
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(ctx, cache.ResourceTasks))

	src.err = errors.New("connection refused")
	_, err = cache.Get(ctx, c, key, src.fetch)
	require.Error(t, err)

	stale, ok, err := cache.Peek[[]model.Task](ctx, c, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "old", stale[0].Title)
}

func TestRefresh_AlwaysFetches(t *testing.T) {
	c := testutil.NewTestCache(t)
	ctx := context.Background()
	key := cache.NewKey(cache.ResourceStats)
	calls := 0
	fetch := func(ctx context.Context) (model.Stats, error) {
		calls++
		return model.Stats{Total: calls}, nil
	}

	_, err := cache.Get(ctx, c, key, fetch)
	require.NoError(t, err)
	s, err := cache.Refresh(ctx, c, key, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Total)

	s, err = cache.Get(ctx, c, key, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Total, "refresh result is cached")
	assert.Equal(t, 2, calls)
}

func TestGet_DeduplicatesConcurrentFetches(t *testing.T) {
	m := metrics.New()
	c := testutil.NewTestCache(t, cache.WithMetrics(m))
	ctx := context.Background()
	key := cache.NewKey(cache.ResourceTasks)

	release := make(chan struct{})
	var calls atomic.Int32
	fetch := func(ctx context.Context) ([]model.Task, error) {
		calls.Add(1)
		<-release
		return []model.Task{{ID: "1", Title: "a", Status: model.StatusTodo}}, nil
	}

	const callers = 8
	var wg sync.WaitGroup
	var started sync.WaitGroup
	results := make([][]model.Task, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		started.Add(1)
		go func(i int) {
			defer wg.Done()
			started.Done()
			results[i], _ = cache.Refresh(ctx, c, key, fetch)
		}(i)
	}
	started.Wait()

	// Let every goroutine join the flight before it completes.
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		require.Len(t, r, 1)
	}
	assert.Equal(t, 1.0, lookups(t, m, cache.ResourceTasks, "miss"))
}

func TestFresh_IgnoresStaleEntries(t *testing.T) {
	c := testutil.NewTestCache(t)
	ctx := context.Background()
	key := cache.NewKey(cache.ResourceTasks)
	src := &counter{value: []model.Task{{ID: "1", Title: "a", Status: model.StatusTodo}}}

	_, ok, err := cache.Fresh[[]model.Task](ctx, c, key)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = cache.Get(ctx, c, key, src.fetch)
	require.NoError(t, err)
	got, ok, err := cache.Fresh[[]model.Task](ctx, c, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, got, 1)

	require.NoError(t, c.Invalidate(ctx, cache.ResourceTasks))
	_, ok, err = cache.Fresh[[]model.Task](ctx, c, key)
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = cache.Peek[[]model.Task](ctx, c, key)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGet_JoinedCallerSurvivesFirstCallerCancel(t *testing.T) {
	c := testutil.NewTestCache(t)
	key := cache.NewKey(cache.ResourceTasks)

	release := make(chan struct{})
	var calls atomic.Int32
	fetch := func(ctx context.Context) ([]model.Task, error) {
		calls.Add(1)
		select {
		case <-release:
			return []model.Task{{ID: "1", Title: "a", Status: model.StatusTodo}}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := cache.Get(ctxA, c, key, fetch)
		errA <- err
	}()
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)

	type result struct {
		tasks []model.Task
		err   error
	}
	resB := make(chan result, 1)
	go func() {
		tasks, err := cache.Get(context.Background(), c, key, fetch)
		resB <- result{tasks, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	close(release)
	got := <-resB
	require.NoError(t, got.err)
	assert.Len(t, got.tasks, 1)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGet_SharedFetchHasOwnDeadline(t *testing.T) {
	c := testutil.NewTestCache(t, cache.WithFetchTimeout(10*time.Millisecond))
	key := cache.NewKey(cache.ResourceTasks)

	_, err := cache.Get(context.Background(), c, key, func(ctx context.Context) ([]model.Task, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestInvalidateDuringFetch_StoresAsStale(t *testing.T) {
	c := testutil.NewTestCache(t)
	ctx := context.Background()
	key := cache.NewKey(cache.ResourceTasks)

	calls := 0
	fetch := func(ctx context.Context) ([]model.Task, error) {
		calls++
		if calls == 1 {
			assert.NoError(t, c.Invalidate(ctx, cache.ResourceTasks))
		}
		return nil, nil
	}

	_, err := cache.Get(ctx, c, key, fetch)
	require.NoError(t, err)
	_, err = cache.Get(ctx, c, key, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestWithMaxAge(t *testing.T) {
	c := testutil.NewTestCache(t, cache.WithMaxAge(time.Nanosecond))
	ctx := context.Background()
	key := cache.NewKey(cache.ResourceUsers)
	src := &counter{}

	_, err := cache.Get(ctx, c, key, src.fetch)
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	_, err = cache.Get(ctx, c, key, src.fetch)
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestReset(t *testing.T) {
	c := testutil.NewTestCache(t)
	ctx := context.Background()
	key := cache.NewKey(cache.ResourceTasks)
	src := &counter{}

	_, err := cache.Get(ctx, c, key, src.fetch)
	require.NoError(t, err)
	require.NoError(t, c.Reset(ctx))

	_, ok, err := cache.Peek[[]model.Task](ctx, c, key)
	require.NoError(t, err)
	assert.False(t, ok)
}
