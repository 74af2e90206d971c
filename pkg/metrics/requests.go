package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RequestMetrics provides observability for protocol request processing.
//
// Implementations can collect metrics about requests, connection lifecycle,
// and rejections. This interface is optional - if not provided to the server,
// a no-op implementation is used with zero overhead.
type RequestMetrics interface {
	// RecordRequest records a completed request with its kind, duration,
	// and outcome. Malformed frames are recorded under the "unknown" kind.
	RecordRequest(kind string, duration time.Duration, success bool)

	// RecordRateLimited increments the rejected-by-rate-limit counter for
	// the given request kind.
	RecordRateLimited(kind string)

	// SetActiveConnections updates the current connection count.
	SetActiveConnections(count int32)

	// RecordConnectionAccepted increments the total accepted connections counter.
	RecordConnectionAccepted()

	// RecordConnectionClosed increments the total closed connections counter.
	RecordConnectionClosed()

	// RecordConnectionForceClosed increments the counter of connections
	// force-closed at the shutdown timeout.
	RecordConnectionForceClosed()
}

// requestMetrics is the Prometheus implementation of RequestMetrics.
type requestMetrics struct {
	requestsTotal          *prometheus.CounterVec
	requestDuration        *prometheus.HistogramVec
	rateLimited            *prometheus.CounterVec
	activeConnections      prometheus.Gauge
	connectionsAccepted    prometheus.Counter
	connectionsClosed      prometheus.Counter
	connectionsForceClosed prometheus.Counter
}

// NewRequestMetrics creates a new Prometheus-backed RequestMetrics instance.
//
// Returns a no-op implementation if metrics are not enabled (InitRegistry
// not called).
func NewRequestMetrics() RequestMetrics {
	if !IsEnabled() {
		return NewNoopRequestMetrics()
	}

	reg := GetRegistry()

	return &requestMetrics{
		requestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "funkostore_requests_total",
				Help: "Total number of requests by kind and status",
			},
			[]string{"kind", "status"},
		),
		requestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "funkostore_request_duration_seconds",
				Help: "Duration of request processing in seconds",
				Buckets: []float64{
					0.001, // 1ms
					0.005, // 5ms
					0.01,  // 10ms
					0.05,  // 50ms
					0.1,   // 100ms
					0.5,   // 500ms
					1.0,   // 1s
					5.0,   // 5s
				},
			},
			[]string{"kind"},
		),
		rateLimited: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "funkostore_requests_rate_limited_total",
				Help: "Total number of requests rejected by the rate limiter",
			},
			[]string{"kind"},
		),
		activeConnections: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "funkostore_active_connections",
				Help: "Current number of active client connections",
			},
		),
		connectionsAccepted: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "funkostore_connections_accepted_total",
				Help: "Total number of connections accepted",
			},
		),
		connectionsClosed: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "funkostore_connections_closed_total",
				Help: "Total number of connections closed",
			},
		),
		connectionsForceClosed: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "funkostore_connections_force_closed_total",
				Help: "Total number of connections force-closed during shutdown timeout",
			},
		),
	}
}

func (m *requestMetrics) RecordRequest(kind string, duration time.Duration, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}

	m.requestsTotal.WithLabelValues(kind, status).Inc()
	m.requestDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

func (m *requestMetrics) RecordRateLimited(kind string) {
	m.rateLimited.WithLabelValues(kind).Inc()
}

func (m *requestMetrics) SetActiveConnections(count int32) {
	m.activeConnections.Set(float64(count))
}

func (m *requestMetrics) RecordConnectionAccepted() {
	m.connectionsAccepted.Inc()
}

func (m *requestMetrics) RecordConnectionClosed() {
	m.connectionsClosed.Inc()
}

func (m *requestMetrics) RecordConnectionForceClosed() {
	m.connectionsForceClosed.Inc()
}

// noopRequestMetrics is a no-op implementation of RequestMetrics with zero
// overhead.
type noopRequestMetrics struct{}

// NewNoopRequestMetrics returns a RequestMetrics that discards everything.
func NewNoopRequestMetrics() RequestMetrics {
	return noopRequestMetrics{}
}

func (noopRequestMetrics) RecordRequest(kind string, duration time.Duration, success bool) {}
func (noopRequestMetrics) RecordRateLimited(kind string)                                   {}
func (noopRequestMetrics) SetActiveConnections(count int32)                                {}
func (noopRequestMetrics) RecordConnectionAccepted()                                       {}
func (noopRequestMetrics) RecordConnectionClosed()                                         {}
func (noopRequestMetrics) RecordConnectionForceClosed()                                    {}
