package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dairyctl"

// Metrics groups the client's collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RoutingResolves *prometheus.CounterVec
	Assignments     *prometheus.CounterVec
	Deliveries      *prometheus.CounterVec
	MapClients      prometheus.Gauge
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Backend requests by endpoint and HTTP status (0 for transport failures).",
		}, []string{"endpoint", "code"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "Backend request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		RoutingResolves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "routing_resolves_total",
			Help:      "Route geometry resolutions by source (street, straight) and fallback reason.",
		}, []string{"source", "reason"}),
		Assignments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "route_assignments_total",
			Help:      "Route assignment submissions by result.",
		}, []string{"result"}),
		Deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_transitions_total",
			Help:      "Delivery lifecycle actions by kind and result.",
		}, []string{"kind", "result"}),
		MapClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "map_feed_clients",
			Help:      "Connected live map feed clients.",
		}),
	}
	m.registry.MustRegister(
		m.Requests, m.RequestDuration, m.RoutingResolves,
		m.Assignments, m.Deliveries, m.MapClients,
		collectors.NewGoCollector(),
	)
	return m
}

// Registry exposes the underlying registry (tests, custom handlers).
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one backend call. code 0 means the request never got a response.
func (m *Metrics) ObserveRequest(endpoint string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(endpoint, strconv.Itoa(code)).Inc()
	m.RequestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// ObserveResolve records how a route geometry was produced.
func (m *Metrics) ObserveResolve(source, reason string) {
	if m == nil {
		return
	}
	m.RoutingResolves.WithLabelValues(source, reason).Inc()
}

// ObserveAssignment records a submit outcome: ok, rejected, invalid or failed.
func (m *Metrics) ObserveAssignment(result string) {
	if m == nil {
		return
	}
	m.Assignments.WithLabelValues(result).Inc()
}

// ObserveDelivery records a lifecycle action outcome.
func (m *Metrics) ObserveDelivery(kind, result string) {
	if m == nil {
		return
	}
	m.Deliveries.WithLabelValues(kind, result).Inc()
}

// MapClientDelta moves the connected-clients gauge.
func (m *Metrics) MapClientDelta(d float64) {
	if m == nil {
		return
	}
	m.MapClients.Add(d)
}
