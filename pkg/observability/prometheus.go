package observability

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var camelBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)

// PrometheusMetrics exposes the pipeline counters and HTTP request metrics on
// a private registry for the local server's /metrics endpoint.
type PrometheusMetrics struct {
	namespace string
	registry  *prometheus.Registry

	mu       sync.Mutex
	counters map[string]prometheus.Counter

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewPrometheusMetrics creates a collector with its own registry.
func NewPrometheusMetrics(namespace string) *PrometheusMetrics {
	registry := prometheus.NewRegistry()

	httpRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	httpDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	registry.MustRegister(httpRequests, httpDuration)

	return &PrometheusMetrics{
		namespace:    namespace,
		registry:     registry,
		counters:     make(map[string]prometheus.Counter),
		httpRequests: httpRequests,
		httpDuration: httpDuration,
	}
}

// Count adds value to the counter named after the pipeline metric, e.g.
// RoomsUpdated becomes <namespace>_rooms_updated_total.
func (p *PrometheusMetrics) Count(_ context.Context, name string, value float64) {
	if value < 0 {
		return
	}
	p.counter(name).Add(value)
}

// Flush is a no-op; prometheus is scraped.
func (p *PrometheusMetrics) Flush(context.Context) error { return nil }

// RecordHTTPRequest records one served request.
func (p *PrometheusMetrics) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	p.httpRequests.WithLabelValues(method, route, status).Inc()
	p.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler serves the registry in the exposition format.
func (p *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// Registry returns the underlying registry.
func (p *PrometheusMetrics) Registry() *prometheus.Registry {
	return p.registry
}

func (p *PrometheusMetrics) counter(name string) prometheus.Counter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.counters[name]; ok {
		return c
	}
	c := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: p.namespace,
		Name:      snakeCase(name) + "_total",
		Help:      "Agenda sync counter " + name,
	})
	p.registry.MustRegister(c)
	p.counters[name] = c
	return c
}

func snakeCase(name string) string {
	return strings.ToLower(camelBoundary.ReplaceAllString(name, "${1}_${2}"))
}
