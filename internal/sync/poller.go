package sync

import (
	"context"
	"slices"
	"sort"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/teamflow/internal/cache"
)

// DefaultInterval is how often poll queries are refreshed.
const DefaultInterval = 5 * time.Second

// fetchTimeout is the maximum time allowed for a single load.
const fetchTimeout = 30 * time.Second

// Query is a named read the poller keeps current. Load is called with
// force=true on poll ticks and explicit refreshes, and force=false after an
// invalidation (the cache then decides whether to refetch).
type Query struct {
	Key  cache.Key
	Poll bool
	Load func(ctx context.Context, force bool) (tea.Msg, error)
}

// ResultMsg is a tea.Msg carrying the outcome of one load. Msg is whatever
// the query's Load returned; Err is set instead on failure.
type ResultMsg struct {
	Slot string
	Msg  tea.Msg
	Err  error
}

type trigger struct {
	slot      string
	resources []string
}

// Poller keeps registered queries fresh: poll queries on a fixed interval,
// every query when its resource is invalidated.
type Poller struct {
	cache    *cache.Cache
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger

	queries     map[string]Query
	resultCh    chan ResultMsg
	triggerCh   chan trigger
	stopCh      chan struct{}
	unsubscribe func()
	mu          gosync.Mutex
	running     bool
}

// Option customises a Poller.
type Option func(*Poller)

// WithLogger sets the poller logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Poller) { p.logger = l }
}

// WithTimeout bounds every load.
func WithTimeout(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// New creates a Poller refreshing poll queries every interval. A
// non-positive interval uses DefaultInterval.
func New(c *cache.Cache, interval time.Duration, opts ...Option) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	p := &Poller{
		cache:     c,
		interval:  interval,
		timeout:   fetchTimeout,
		logger:    zap.NewNop(),
		queries:   make(map[string]Query),
		resultCh:  make(chan ResultMsg, 32),
		triggerCh: make(chan trigger, 32),
		stopCh:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Register adds or replaces the query in slot and schedules a load.
func (p *Poller) Register(slot string, q Query) {
	p.mu.Lock()
	p.queries[slot] = q
	p.mu.Unlock()

	p.Refresh(slot)
}

// Unregister removes the query in slot. In-flight results for it are still
// delivered and should be ignored by the receiver.
func (p *Poller) Unregister(slot string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.queries, slot)
}

// Reset removes every query, e.g. on logout.
func (p *Poller) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queries = make(map[string]Query)
}

// Slots returns the registered slot names, sorted.
func (p *Poller) Slots() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	slots := make([]string, 0, len(p.queries))
	for s := range p.queries {
		slots = append(slots, s)
	}
	sort.Strings(slots)
	return slots
}

// Start returns a tea.Cmd that starts the polling goroutine and
// subscribes to results. It also listens for cache invalidations.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return p.waitForResult()
	}
	p.running = true
	p.mu.Unlock()

	if p.cache != nil {
		p.unsubscribe = p.cache.OnInvalidate(func(resources []string) {
			p.send(trigger{resources: resources})
		})
	}

	go p.loop()

	return p.waitForResult()
}

// Stop halts the polling goroutine. A stopped Poller cannot be restarted.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	if p.unsubscribe != nil {
		p.unsubscribe()
	}
	close(p.stopCh)
	p.running = false
}

// Refresh triggers an immediate forced load of one slot.
func (p *Poller) Refresh(slot string) {
	p.send(trigger{slot: slot})
}

// RefreshAll triggers an immediate forced load of every slot.
func (p *Poller) RefreshAll() {
	for _, slot := range p.Slots() {
		p.Refresh(slot)
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next result.
// Call it after handling a ResultMsg to keep listening.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return p.waitForResult()
}

func (p *Poller) send(t trigger) {
	select {
	case p.triggerCh <- t:
	default:
		// Channel full; the next tick catches up.
		p.logger.Debug("poll trigger dropped", zap.String("slot", t.slot))
	}
}

func (p *Poller) loop() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			for slot, q := range p.snapshot() {
				if q.Poll {
					p.load(slot, q, true)
				}
			}
		case t := <-p.triggerCh:
			queries := p.snapshot()
			if t.slot != "" {
				if q, ok := queries[t.slot]; ok {
					p.load(t.slot, q, true)
				}
				continue
			}
			for slot, q := range queries {
				if slices.Contains(t.resources, q.Key.Resource) {
					p.load(slot, q, false)
				}
			}
		}
	}
}

func (p *Poller) snapshot() map[string]Query {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make(map[string]Query, len(p.queries))
	for k, v := range p.queries {
		out[k] = v
	}
	return out
}

// load runs a single query and sends its result without blocking.
func (p *Poller) load(slot string, q Query, force bool) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	msg, err := q.Load(ctx, force)
	if err != nil {
		p.logger.Debug("poll load failed",
			zap.String("slot", slot),
			zap.String("key", q.Key.String()),
			zap.Error(err),
		)
	}

	select {
	case p.resultCh <- ResultMsg{Slot: slot, Msg: msg, Err: err}:
	default:
		// Drop if channel is full to avoid blocking the poller.
	}
}

func (p *Poller) waitForResult() tea.Cmd {
	return func() tea.Msg {
		select {
		case result := <-p.resultCh:
			return result
		case <-p.stopCh:
			return nil
		}
	}
}
