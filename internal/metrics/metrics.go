// Package metrics exposes Prometheus counters for the request pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "docserve"

// Metrics holds the pipeline collectors. Each instance owns its registry so
// several can coexist in one process (tests, embedded servers).
type Metrics struct {
	registry *prometheus.Registry

	Requests       *prometheus.CounterVec
	RenderDuration *prometheus.HistogramVec
	Classified     *prometheus.CounterVec
	ListingSkips   prometheus.Counter
}

// New creates and registers the collectors, plus the Go and process
// collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Pipeline responses by client class and outcome",
		}, []string{"client", "outcome"}),
		RenderDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Time from request to rendered response",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"client"}),
		Classified: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifications_total",
			Help:      "Request classifications by deciding rule",
		}, []string{"reason"}),
		ListingSkips: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listing_unavailable_total",
			Help:      "Index requests served with an empty listing because the docs directory was unreadable",
		}),
	}
}

// Observe records one pipeline response. A nil receiver is a no-op.
func (m *Metrics) Observe(client, reason, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(client, outcome).Inc()
	m.Classified.WithLabelValues(reason).Inc()
	m.RenderDuration.WithLabelValues(client).Observe(elapsed.Seconds())
}

// ListingUnavailable records an index served without a listing.
func (m *Metrics) ListingUnavailable() {
	if m == nil {
		return
	}
	m.ListingSkips.Inc()
}

// Handler returns the HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
