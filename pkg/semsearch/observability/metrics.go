// Package observability owns the metrics and tracing enrichment applied
// to each search request.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Package-level Prometheus metrics for the search pipeline. Auto-
// registered via promauto so no explicit registry wiring is needed.
var (
	// searchDuration measures end-to-end orchestrator latency.
	searchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "semsearch",
		Subsystem: "gateway",
		Name:      "search_duration_seconds",
		Help:      "End-to-end search request duration in seconds.",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	})

	// embeddingDuration measures embedding backend call latency.
	embeddingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "semsearch",
		Subsystem: "gateway",
		Name:      "embedding_duration_seconds",
		Help:      "Embedding backend call duration in seconds.",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	})

	// cacheHitsTotal and cacheMissesTotal count cache outcomes.
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "semsearch",
		Subsystem: "gateway",
		Name:      "cache_hits_total",
		Help:      "Total search requests served from cache.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "semsearch",
		Subsystem: "gateway",
		Name:      "cache_misses_total",
		Help:      "Total search requests that missed the cache.",
	})

	// activeSearches tracks requests currently executing.
	activeSearches = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "semsearch",
		Subsystem: "gateway",
		Name:      "active_searches",
		Help:      "Number of search requests currently in flight.",
	})

	// circuitBreakerOpen is 1 when the named backend's circuit is open.
	//
	// Labels:
	//   - backend: "embedding" or "index"
	circuitBreakerOpen = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "semsearch",
		Subsystem: "gateway",
		Name:      "circuit_breaker_open",
		Help:      "1 if the backend's circuit breaker is open, 0 otherwise.",
	}, []string{"backend"})
)

// RecordSearchDuration records the end-to-end orchestrator latency.
func RecordSearchDuration(seconds float64) {
	searchDuration.Observe(seconds)
}

// RecordEmbeddingDuration records an embedding backend call's latency.
func RecordEmbeddingDuration(seconds float64) {
	embeddingDuration.Observe(seconds)
}

// RecordCacheOutcome increments the hit or miss counter.
func RecordCacheOutcome(hit bool) {
	if hit {
		cacheHitsTotal.Inc()
		return
	}
	cacheMissesTotal.Inc()
}

// SearchStarted/SearchFinished track the active_searches gauge around a
// single request's lifetime.
func SearchStarted() { activeSearches.Inc() }
func SearchFinished() { activeSearches.Dec() }

// SetCircuitBreakerOpen drives the circuit_breaker_open gauge; it is
// passed as a resilience.StateGauge callback from process wiring so this
// package stays decoupled from the resilience package.
func SetCircuitBreakerOpen(backend string, open bool) {
	value := 0.0
	if open {
		value = 1.0
	}
	circuitBreakerOpen.WithLabelValues(backend).Set(value)
}
