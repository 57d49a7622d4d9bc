package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the API. Each instance owns its
// registry so tests and multiple servers do not collide on registration.
type Metrics struct {
	registry      *prometheus.Registry
	routeDuration prometheus.Histogram
	routeErrors   *prometheus.CounterVec
	requests      *prometheus.CounterVec
}

// NewMetrics creates and registers the API collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		routeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "network_router",
			Name:      "route_duration_seconds",
			Help:      "Time spent computing a route, including graph construction.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 16),
		}),
		routeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "network_router",
			Name:      "route_errors_total",
			Help:      "Failed route queries by error kind.",
		}, []string{"kind"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "network_router",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status code.",
		}, []string{"pattern", "code"}),
	}
	m.registry.MustRegister(
		m.routeDuration,
		m.routeErrors,
		m.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observeRoute(d time.Duration, kind string) {
	if m == nil {
		return
	}
	m.routeDuration.Observe(d.Seconds())
	if kind != "" {
		m.routeErrors.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) observeRequest(pattern string, code int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(pattern, strconv.Itoa(code)).Inc()
}
