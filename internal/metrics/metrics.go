package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// Metrics holds the service collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry
	drags    *prometheus.CounterVec
	writes   *prometheus.HistogramVec
	failures *prometheus.CounterVec
}

// New registers the collectors under namespace.
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		drags: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "drag_outcomes_total",
			Help:      "Drag gestures by operation and outcome.",
		}, []string{"operation", "status"}),
		writes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_write_seconds",
			Help:      "Latency of gateway writes.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"backend"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_write_failures_total",
			Help:      "Gateway writes that returned an error.",
		}, []string{"backend"}),
	}
	reg.MustRegister(
		m.drags,
		m.writes,
		m.failures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveDrag(operation, status string) {
	m.drags.WithLabelValues(operation, status).Inc()
}

func (m *Metrics) ObserveWrite(backend string, d time.Duration, err error) {
	m.writes.WithLabelValues(backend).Observe(d.Seconds())
	if err != nil {
		m.failures.WithLabelValues(backend).Inc()
	}
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() fasthttp.RequestHandler {
	return fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
