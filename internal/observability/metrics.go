package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// UnmatchedRoute is the label value used for requests that do not match any
// registered integration, keeping the route label bounded.
const UnmatchedRoute = "unmatched"

// Transform outcomes recorded by RecordTransform.
const (
	TransformApplied     = "applied"
	TransformPassthrough = "passthrough"
	TransformFailed      = "error"
)

// Metrics holds all Prometheus metrics for the gateway.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	activeRequests  prometheus.Gauge
	transformsTotal *prometheus.CounterVec
	upstreamErrors  *prometheus.CounterVec
	circuitBreaker  *prometheus.GaugeVec
	snapshotVersion prometheus.Gauge
	snapshotRoutes  prometheus.Gauge
	buildInfo       *prometheus.GaugeVec
	registry        *prometheus.Registry
}

// NewMetrics creates a new Metrics instance with its own registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "bff"
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}

	m.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	m.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)

	m.activeRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_requests",
			Help:      "Number of in-flight HTTP requests",
		},
	)

	m.transformsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transforms_total",
			Help:      "Total number of outbound request transforms by outcome",
		},
		[]string{"cluster", "outcome"},
	)

	m.upstreamErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_errors_total",
			Help:      "Total number of failed upstream round trips",
		},
		[]string{"cluster", "reason"},
	)

	m.circuitBreaker = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"cluster"},
	)

	m.snapshotVersion = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_version",
			Help:      "Version of the active routing snapshot",
		},
	)

	m.snapshotRoutes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_routes",
			Help:      "Number of routes in the active routing snapshot",
		},
	)

	m.buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_info",
			Help:      "Build information for the gateway",
		},
		[]string{"version", "commit", "build_time"},
	)

	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.activeRequests,
		m.transformsTotal,
		m.upstreamErrors,
		m.circuitBreaker,
		m.snapshotVersion,
		m.snapshotRoutes,
		m.buildInfo,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// RecordRequest records a completed HTTP request. route must be a route id
// or UnmatchedRoute, never a raw path.
func (m *Metrics) RecordRequest(method, route string, status int, duration time.Duration) {
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// IncActiveRequests increments the in-flight gauge.
func (m *Metrics) IncActiveRequests() { m.activeRequests.Inc() }

// DecActiveRequests decrements the in-flight gauge.
func (m *Metrics) DecActiveRequests() { m.activeRequests.Dec() }

// RecordTransform records the outcome of a transform dispatch for a cluster.
func (m *Metrics) RecordTransform(cluster, outcome string) {
	m.transformsTotal.WithLabelValues(cluster, outcome).Inc()
}

// RecordUpstreamError records a failed upstream round trip.
func (m *Metrics) RecordUpstreamError(cluster, reason string) {
	m.upstreamErrors.WithLabelValues(cluster, reason).Inc()
}

// SetCircuitBreakerState sets the circuit breaker state for a cluster.
func (m *Metrics) SetCircuitBreakerState(cluster string, state int) {
	m.circuitBreaker.WithLabelValues(cluster).Set(float64(state))
}

// SetSnapshot records the active snapshot version and route count.
func (m *Metrics) SetSnapshot(version uint64, routes int) {
	m.snapshotVersion.Set(float64(version))
	m.snapshotRoutes.Set(float64(routes))
}

// SetBuildInfo sets the build information metric.
func (m *Metrics) SetBuildInfo(version, commit, buildTime string) {
	m.buildInfo.WithLabelValues(version, commit, buildTime).Set(1)
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Registry returns the Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
