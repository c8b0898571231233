// Package metrics exposes Prometheus collectors for path searches, link
// caches and wiki API requests.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/soundprediction/linkpath/pkg/types"
)

const namespace = "linkpath"

// Metrics implements search.Observer, links.Observer and wiki.Observer.
//
// Thread Safety: safe for concurrent use.
type Metrics struct {
	searches       *prometheus.CounterVec
	searchDuration *prometheus.HistogramVec
	hops           prometheus.Histogram
	expansions     prometheus.Histogram
	deadEnds       prometheus.Counter
	failedFetches  prometheus.Counter

	cacheHits      *prometheus.CounterVec
	cacheMisses    *prometheus.CounterVec
	lookupFailures *prometheus.CounterVec

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New registers the collectors with reg. Passing prometheus.DefaultRegisterer
// serves them from promhttp.Handler(); tests pass a fresh registry.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		// searches counts finished searches.
		// Labels: outcome (found, not_found, budget_exhausted, embedding_error, lookup_error, cancelled, error)
		searches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "total",
			Help:      "Finished path searches by outcome",
		}, []string{"outcome"}),

		searchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Path search duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120, 300},
		}, []string{"outcome"}),

		hops: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "hops",
			Help:      "Links followed by found paths",
			Buckets:   []float64{1, 2, 3, 4, 5, 6, 8},
		}),

		expansions: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "expansions",
			Help:      "Pages expanded per search",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),

		deadEnds: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "dead_ends_total",
			Help:      "Expanded pages without links",
		}),

		failedFetches: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "failed_fetches_total",
			Help:      "Expanded pages whose link lookup failed and was skipped",
		}),

		// Labels: cache (links, resolve)
		cacheHits: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Lookups answered from memory",
		}, []string{"cache"}),

		cacheMisses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Lookups sent upstream",
		}, []string{"cache"}),

		lookupFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookup_failures_total",
			Help:      "Upstream lookups that failed",
		}, []string{"op"}),

		// Labels: op (links, resolve), outcome (ok, http_503, malformed, breaker_open, ...)
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "wiki",
			Name:      "requests_total",
			Help:      "Wiki API requests by outcome",
		}, []string{"op", "outcome"}),

		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "wiki",
			Name:      "request_duration_seconds",
			Help:      "Wiki API request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
	}
}

// SearchFinished implements search.Observer.
func (m *Metrics) SearchFinished(outcome string, hops int, stats types.SearchStats) {
	m.searches.WithLabelValues(outcome).Inc()
	m.searchDuration.WithLabelValues(outcome).Observe(stats.Duration.Seconds())
	m.expansions.Observe(float64(stats.Expansions))
	m.deadEnds.Add(float64(stats.DeadEnds))
	m.failedFetches.Add(float64(stats.FailedFetches))
	if hops > 0 {
		m.hops.Observe(float64(hops))
	}
}

// CacheHit implements links.Observer.
func (m *Metrics) CacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// CacheMiss implements links.Observer.
func (m *Metrics) CacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// LookupFailed implements links.Observer.
func (m *Metrics) LookupFailed(op string) {
	m.lookupFailures.WithLabelValues(op).Inc()
}

// ObserveRequest implements wiki.Observer.
func (m *Metrics) ObserveRequest(op, outcome string, d time.Duration) {
	m.requests.WithLabelValues(op, outcome).Inc()
	m.requestDuration.WithLabelValues(op).Observe(d.Seconds())
}
