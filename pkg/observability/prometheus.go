package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics
const metricsNamespace = "discrete"

// PrometheusHooks records every hook event as a Prometheus metric.
//
// All operations are thread-safe via Prometheus's internal locking.
type PrometheusHooks struct {
	// EnumerationsTotal counts enumerations.
	// Labels: kind (coset, quotient), status (complete, partial, error)
	EnumerationsTotal *prometheus.CounterVec

	// EnumerationDuration measures wall time per enumeration.
	// Labels: kind
	EnumerationDuration *prometheus.HistogramVec

	// EnumerationPoints observes the number of points discovered.
	// Labels: kind
	EnumerationPoints *prometheus.HistogramVec

	// CoincidencesTotal counts coincidences resolved.
	// Labels: kind
	CoincidencesTotal *prometheus.CounterVec

	// CacheOpsTotal counts cache lookups and writes.
	// Labels: key_type, op (hit, miss, set)
	CacheOpsTotal *prometheus.CounterVec

	// HTTPRequestsTotal counts served requests.
	// Labels: method, route, status
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPDuration measures request latency.
	// Labels: method, route
	HTTPDuration *prometheus.HistogramVec

	// HTTPErrorsTotal counts handler errors.
	// Labels: method, route
	HTTPErrorsTotal *prometheus.CounterVec
}

// NewPrometheusHooks creates and registers all metrics with reg.
// Registering twice on the same registry panics.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	factory := promauto.With(reg)
	return &PrometheusHooks{
		EnumerationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "enumerations_total",
			Help:      "Total number of enumerations by kind and outcome",
		}, []string{"kind", "status"}),
		EnumerationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "enumeration_duration_seconds",
			Help:      "Wall time per enumeration",
			Buckets:   []float64{0.0001, 0.001, 0.01, 0.1, 1, 10, 60},
		}, []string{"kind"}),
		EnumerationPoints: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "enumeration_points",
			Help:      "Points discovered per enumeration",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}, []string{"kind"}),
		CoincidencesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "coincidences_total",
			Help:      "Total coincidences resolved during enumeration",
		}, []string{"kind"}),
		CacheOpsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "operations_total",
			Help:      "Cache operations by key type and result",
		}, []string{"key_type", "op"}),
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		HTTPErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "errors_total",
			Help:      "HTTP handler errors by method and route",
		}, []string{"method", "route"}),
	}
}

// OnEnumerateStart implements EnumerationHooks.
func (h *PrometheusHooks) OnEnumerateStart(context.Context, string, int, int) {}

// OnEnumerateComplete implements EnumerationHooks.
func (h *PrometheusHooks) OnEnumerateComplete(_ context.Context, kind string, result EnumerationResult, duration time.Duration, err error) {
	status := "partial"
	switch {
	case err != nil:
		status = "error"
	case result.Complete:
		status = "complete"
	}
	h.EnumerationsTotal.WithLabelValues(kind, status).Inc()
	h.EnumerationDuration.WithLabelValues(kind).Observe(duration.Seconds())
	if err == nil {
		h.EnumerationPoints.WithLabelValues(kind).Observe(float64(result.Points))
		h.CoincidencesTotal.WithLabelValues(kind).Add(float64(result.Coincidences))
	}
}

// OnCacheHit implements CacheHooks.
func (h *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	h.CacheOpsTotal.WithLabelValues(keyType, "hit").Inc()
}

// OnCacheMiss implements CacheHooks.
func (h *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.CacheOpsTotal.WithLabelValues(keyType, "miss").Inc()
}

// OnCacheSet implements CacheHooks.
func (h *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, _ int) {
	h.CacheOpsTotal.WithLabelValues(keyType, "set").Inc()
}

// OnRequest implements HTTPHooks.
func (h *PrometheusHooks) OnRequest(context.Context, string, string) {}

// OnResponse implements HTTPHooks.
func (h *PrometheusHooks) OnResponse(_ context.Context, method, route string, statusCode int, duration time.Duration) {
	h.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	h.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// OnError implements HTTPHooks.
func (h *PrometheusHooks) OnError(_ context.Context, method, route string, _ error) {
	h.HTTPErrorsTotal.WithLabelValues(method, route).Inc()
}

var (
	_ EnumerationHooks = (*PrometheusHooks)(nil)
	_ CacheHooks       = (*PrometheusHooks)(nil)
	_ HTTPHooks        = (*PrometheusHooks)(nil)
)
