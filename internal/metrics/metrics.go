package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics groups the client-side instrumentation. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	apiRequestDuration *prometheus.HistogramVec
	apiRequestsTotal   *prometheus.CounterVec
	cacheLookups       *prometheus.CounterVec
	cacheInvalidations *prometheus.CounterVec
	mutationsTotal     *prometheus.CounterVec
}

// New creates and registers every collector on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		apiRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "teamflow",
				Name:      "api_request_duration_seconds",
				Help:      "Backend request duration in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
			},
			[]string{"method", "resource"},
		),
		apiRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "teamflow",
				Name:      "api_requests_total",
				Help:      "Backend requests by outcome",
			},
			[]string{"method", "resource", "code"},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "teamflow",
				Name:      "cache_lookups_total",
				Help:      "Query cache lookups by result (hit, miss, shared)",
			},
			[]string{"resource", "result"},
		),
		cacheInvalidations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "teamflow",
				Name:      "cache_invalidations_total",
				Help:      "Query cache invalidations per resource",
			},
			[]string{"resource"},
		),
		mutationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "teamflow",
				Name:      "mutations_total",
				Help:      "Entity mutations by kind, action and status",
			},
			[]string{"kind", "action", "status"},
		),
	}

	reg.MustRegister(
		m.apiRequestDuration,
		m.apiRequestsTotal,
		m.cacheLookups,
		m.cacheInvalidations,
		m.mutationsTotal,
		collectors.NewGoCollector(),
	)
	return m
}

// Registry exposes the underlying registry for the HTTP handler and tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveRequest records one backend round trip. code is 0 for transport
// failures.
func (m *Metrics) ObserveRequest(method, resource string, code int, d time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if code > 0 {
		label = strconv.Itoa(code)
	}
	m.apiRequestDuration.WithLabelValues(method, resource).Observe(d.Seconds())
	m.apiRequestsTotal.WithLabelValues(method, resource, label).Inc()
}

// CacheLookup records a cache hit, miss or shared in-flight result.
func (m *Metrics) CacheLookup(resource, result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(resource, result).Inc()
}

// CacheInvalidated records invalidation of a resource.
func (m *Metrics) CacheInvalidated(resource string) {
	if m == nil {
		return
	}
	m.cacheInvalidations.WithLabelValues(resource).Inc()
}

// Mutation records a mutation attempt.
func (m *Metrics) Mutation(kind, action string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.mutationsTotal.WithLabelValues(kind, action, status).Inc()
}
