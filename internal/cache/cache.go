package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	gosync "sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/nhle/teamflow/internal/metrics"
)

// Cache is a keyed query cache over server resources. Entries are fresh
// until their resource is invalidated (or, with WithMaxAge, until they
// age out). Concurrent fetches of one key share a single call.
type Cache struct {
	store   *Store
	group   singleflight.Group
	logger  *zap.Logger
	metrics *metrics.Metrics
	maxAge  time.Duration
	timeout time.Duration
	now     func() time.Time

	mu          gosync.Mutex
	epoch       uint64
	generations map[string]uint64
	listeners   map[int]func(resources []string)
	nextID      int
}

// Option customises a Cache.
type Option func(*Cache)

// WithLogger sets the cache logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

// WithMetrics enables hit/miss instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

// WithMaxAge makes entries older than d count as stale. Zero disables
// age-based expiry.
func WithMaxAge(d time.Duration) Option {
	return func(c *Cache) { c.maxAge = d }
}

// WithFetchTimeout bounds a shared fetch. Fetches outlive the caller that
// started them, so they carry their own deadline.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Cache) { c.timeout = d }
}

// New opens the in-memory entry store and returns an empty cache.
func New(opts ...Option) (*Cache, error) {
	store, err := OpenStore()
	if err != nil {
		return nil, err
	}

	c := &Cache{
		store:       store,
		logger:      zap.NewNop(),
		timeout:     30 * time.Second,
		now:         time.Now,
		generations: make(map[string]uint64),
		listeners:   make(map[int]func([]string)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Close releases the entry store.
func (c *Cache) Close() error {
	return c.store.Close()
}

// Get returns the cached value for key when it is fresh, otherwise fetches
// it. On fetch failure the error is returned and any previous entry stays
// readable through Peek.
func Get[T any](ctx context.Context, c *Cache, key Key, fetch func(context.Context) (T, error)) (T, error) {
	var zero T

	e, ok, err := c.store.get(ctx, key.String())
	if err != nil {
		return zero, err
	}
	if ok && c.fresh(e) {
		var v T
		if err := json.Unmarshal(e.Payload, &v); err == nil {
			c.metrics.CacheLookup(key.Resource, "hit")
			return v, nil
		}
		c.logger.Warn("discarding undecodable cache entry", zap.String("key", e.Key))
	}

	return load(ctx, c, key, fetch)
}

// Refresh fetches key regardless of freshness. Poll ticks use it.
func Refresh[T any](ctx context.Context, c *Cache, key Key, fetch func(context.Context) (T, error)) (T, error) {
	return load(ctx, c, key, fetch)
}

// Peek returns the last stored value for key, fresh or stale, without
// touching the network.
func Peek[T any](ctx context.Context, c *Cache, key Key) (T, bool, error) {
	var v T

	e, ok, err := c.store.get(ctx, key.String())
	if err != nil || !ok {
		return v, false, err
	}
	if err := json.Unmarshal(e.Payload, &v); err != nil {
		return v, false, fmt.Errorf("decoding entry %s: %w", e.Key, err)
	}
	return v, true, nil
}

// Fresh is Peek restricted to entries Get would serve without fetching.
func Fresh[T any](ctx context.Context, c *Cache, key Key) (T, bool, error) {
	var v T

	e, ok, err := c.store.get(ctx, key.String())
	if err != nil || !ok || !c.fresh(e) {
		return v, false, err
	}
	if err := json.Unmarshal(e.Payload, &v); err != nil {
		return v, false, fmt.Errorf("decoding entry %s: %w", e.Key, err)
	}
	return v, true, nil
}

type loaded[T any] struct {
	value T
}

func load[T any](ctx context.Context, c *Cache, key Key, fetch func(context.Context) (T, error)) (T, error) {
	var zero T
	canonical := key.String()
	gen := c.generation(key.Resource)

	// A fetch started before an invalidation must not be joined by callers
	// arriving after it, so the flight key carries the generation.
	flight := canonical + "#" + strconv.FormatUint(gen, 10)

	ch := c.group.DoChan(flight, func() (any, error) {
		c.metrics.CacheLookup(key.Resource, "miss")

		// Joined callers wait on this fetch, so one caller cancelling must
		// not fail the rest.
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		v, err := fetch(fctx)
		if err != nil {
			return nil, err
		}

		payload, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", canonical, err)
		}

		e := entry{
			Key:       canonical,
			Resource:  key.Resource,
			Payload:   payload,
			FetchedAt: c.now().UnixNano(),
			// Invalidated while in flight: keep the data but refetch next time.
			Stale: c.generation(key.Resource) != gen,
		}
		if err := c.store.put(fctx, e); err != nil {
			c.logger.Warn("storing cache entry", zap.String("key", canonical), zap.Error(err))
		}
		return loaded[T]{value: v}, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		if res.Shared {
			c.metrics.CacheLookup(key.Resource, "shared")
		}
		return res.Val.(loaded[T]).value, nil
	}
}

// Invalidate marks every entry of the given resources stale and notifies
// listeners. Stale entries are refetched on the next Get.
func (c *Cache) Invalidate(ctx context.Context, resources ...string) error {
	if len(resources) == 0 {
		return nil
	}

	c.mu.Lock()
	for _, r := range resources {
		c.generations[r]++
	}
	listeners := make([]func([]string), 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	n, err := c.store.markStale(ctx, resources...)
	if err != nil {
		return err
	}
	for _, r := range resources {
		c.metrics.CacheInvalidated(r)
	}
	c.logger.Debug("cache invalidated",
		zap.Strings("resources", resources),
		zap.Int64("entries", n),
	)

	for _, fn := range listeners {
		fn(resources)
	}
	return nil
}

// OnInvalidate registers fn to be called after every invalidation. The
// returned func unregisters it. fn must not block.
func (c *Cache) OnInvalidate(fn func(resources []string)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.listeners[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// Keys lists the cached keys of a resource in canonical form.
func (c *Cache) Keys(ctx context.Context, resource string) ([]string, error) {
	return c.store.keys(ctx, resource)
}

// Reset drops every entry, e.g. on logout.
func (c *Cache) Reset(ctx context.Context) error {
	c.mu.Lock()
	c.epoch++
	c.mu.Unlock()
	return c.store.clear(ctx)
}

func (c *Cache) generation(resource string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch + c.generations[resource]
}

func (c *Cache) fresh(e entry) bool {
	if e.Stale {
		return false
	}
	if c.maxAge > 0 && c.now().Sub(e.fetchedAt()) > c.maxAge {
		return false
	}
	return true
}
