// Package metrics provides Prometheus instrumentation for the smart bin API.
// All collectors live on a private registry so the /metrics endpoint exposes
// only what this service registers.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector the service records into.
// A nil *Metrics is valid and records nothing, so tests can pass nil.
type Metrics struct {
	registry *prometheus.Registry

	collectionsIngested *prometheus.CounterVec
	emptyDetections     prometheus.Counter

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		collectionsIngested: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smartbin",
			Subsystem: "api",
			Name:      "collections_ingested_total",
			Help:      "Collection events persisted, by material kind.",
		}, []string{"tipo"}),
		emptyDetections: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "smartbin",
			Subsystem: "api",
			Name:      "empty_detections_total",
			Help:      "Classifier readings that saw an empty bin (never persisted).",
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smartbin",
			Subsystem: "api",
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by method, route pattern, and status.",
		}, []string{"method", "path", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "smartbin",
			Subsystem: "api",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// CollectionIngested records one persisted event of the given material.
func (m *Metrics) CollectionIngested(tipo string) {
	if m == nil {
		return
	}
	m.collectionsIngested.WithLabelValues(tipo).Inc()
}

// EmptyDetection records one empty-bin reading.
func (m *Metrics) EmptyDetection() {
	if m == nil {
		return
	}
	m.emptyDetections.Inc()
}

// ObserveRequest records one served HTTP request.
// path should be a bounded route pattern, not a raw URL.
func (m *Metrics) ObserveRequest(method, path string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}
