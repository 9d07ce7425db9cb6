package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values for registry operations.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Metrics holds the Prometheus collectors for the service.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ActiveRequests  prometheus.Gauge

	// Discovery agent metrics
	RegistryOperations *prometheus.CounterVec
	RegistryDuration   *prometheus.HistogramVec
	Registered         prometheus.Gauge

	gatherer prometheus.Gatherer
}

// NewMetrics creates a Metrics instance backed by a private registry that also
// exposes the Go runtime and process collectors.
func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewMetricsWithRegistry(namespace, reg, reg)
}

// NewMetricsWithRegistry creates a Metrics instance with a custom registry.
func NewMetricsWithRegistry(namespace string, registerer prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	factory := promauto.With(registerer)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latencies in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		ActiveRequests: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_active",
				Help:      "Number of HTTP requests currently being served",
			},
		),
		RegistryOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "registry_operations_total",
				Help:      "Discovery agent calls by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		RegistryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "registry_operation_duration_seconds",
				Help:      "Discovery agent call latencies in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"operation"},
		),
		Registered: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "registered",
				Help:      "1 while this instance holds a registration with the discovery agent",
			},
		),
		gatherer: gatherer,
	}
}

// Handler returns the Prometheus exposition handler for this instance's registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// RequestStarted increments the active request gauge.
func (m *Metrics) RequestStarted() {
	if m == nil {
		return
	}
	m.ActiveRequests.Inc()
}

// RequestFinished decrements the active request gauge and records the request.
func (m *Metrics) RequestFinished(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.ActiveRequests.Dec()
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordRegistryOperation records the outcome and latency of one agent call.
func (m *Metrics) RecordRegistryOperation(operation string, err error, d time.Duration) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	m.RegistryOperations.WithLabelValues(operation, outcome).Inc()
	m.RegistryDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// SetRegistered flips the registration gauge.
func (m *Metrics) SetRegistered(registered bool) {
	if m == nil {
		return
	}
	if registered {
		m.Registered.Set(1)
		return
	}
	m.Registered.Set(0)
}
