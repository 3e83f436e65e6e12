// Package metrics exposes Prometheus instrumentation for the client core.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// APIMetrics exposes counters for gateway requests.
type APIMetrics struct {
	requestsTotal *prometheus.CounterVec
	authExpired   prometheus.Counter
}

func NewAPIMetrics(reg prometheus.Registerer) *APIMetrics {
	m := &APIMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "barberpro",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total API gateway requests",
		}, []string{"method", "outcome", "status"}),
		authExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "barberpro",
			Subsystem: "api",
			Name:      "session_expired_total",
			Help:      "Total 401 responses that invalidated the session",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.authExpired)
	return m
}

// ObserveRequest records one completed gateway request. status is 0 for
// transport failures.
func (m *APIMetrics) ObserveRequest(method, outcome string, status int) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, outcome, strconv.Itoa(status)).Inc()
}

func (m *APIMetrics) ObserveSessionExpired() {
	if m == nil {
		return
	}
	m.authExpired.Inc()
}

// CacheMetrics exposes counters for the read-through cache.
type CacheMetrics struct {
	hits      *prometheus.CounterVec
	misses    *prometheus.CounterVec
	refreshes *prometheus.CounterVec
}

func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	m := &CacheMetrics{
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "barberpro",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Cache reads served from memory",
		}, []string{"query"}),
		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "barberpro",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Cache reads that triggered a fetch",
		}, []string{"query"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "barberpro",
			Subsystem: "cache",
			Name:      "foreground_refreshes_total",
			Help:      "Background refetches triggered by app foreground",
		}, []string{"query"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.hits, m.misses, m.refreshes)
	return m
}

func (m *CacheMetrics) ObserveHit(query string) {
	if m == nil {
		return
	}
	m.hits.WithLabelValues(query).Inc()
}

func (m *CacheMetrics) ObserveMiss(query string) {
	if m == nil {
		return
	}
	m.misses.WithLabelValues(query).Inc()
}

func (m *CacheMetrics) ObserveRefresh(query string) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(query).Inc()
}
