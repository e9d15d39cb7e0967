// Package observability provides Prometheus metrics for the layout service.
package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus collectors. A nil *Metrics is valid
// and turns every method into a no-op, so callers never need a metrics flag.
type Metrics struct {
	orderCacheHits    *prometheus.CounterVec
	orderCacheMisses  *prometheus.CounterVec
	computeDuration   prometheus.Histogram
	dimensionFailures prometheus.Counter
	degradedResponses prometheus.Counter
}

// NewMetrics registers the service collectors with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		orderCacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "masonry_order_cache_hits_total",
			Help: "Ordering cache hits by column count.",
		}, []string{"columns"}),
		orderCacheMisses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "masonry_order_cache_misses_total",
			Help: "Ordering cache misses by column count.",
		}, []string{"columns"}),
		computeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "masonry_compute_duration_seconds",
			Help:    "Duration of skyline ordering computations.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		dimensionFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "masonry_dimension_failures_total",
			Help: "Images excluded from ordering due to unresolved dimensions.",
		}),
		degradedResponses: factory.NewCounter(prometheus.CounterOpts{
			Name: "masonry_degraded_responses_total",
			Help: "Responses served from the fallback slot during upstream outages.",
		}),
	}
}

// OrderCacheHit records an ordering cache hit.
func (m *Metrics) OrderCacheHit(columns int) {
	if m == nil {
		return
	}
	m.orderCacheHits.WithLabelValues(strconv.Itoa(columns)).Inc()
}

// OrderCacheMiss records an ordering cache miss.
func (m *Metrics) OrderCacheMiss(columns int) {
	if m == nil {
		return
	}
	m.orderCacheMisses.WithLabelValues(strconv.Itoa(columns)).Inc()
}

// ObserveComputeDuration records how long a skyline computation took.
func (m *Metrics) ObserveComputeDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.computeDuration.Observe(d.Seconds())
}

// DimensionFailure records an image excluded for unresolvable dimensions.
func (m *Metrics) DimensionFailure() {
	if m == nil {
		return
	}
	m.dimensionFailures.Inc()
}

// DegradedResponse records a response served from the fallback slot.
func (m *Metrics) DegradedResponse() {
	if m == nil {
		return
	}
	m.degradedResponses.Inc()
}
