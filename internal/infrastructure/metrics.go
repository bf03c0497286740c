package infrastructure

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the application's Prometheus instruments.
type Metrics struct {
	registry *prometheus.Registry

	// FilesProcessed counts uploaded scan files by outcome (ok, error).
	FilesProcessed *prometheus.CounterVec
	// BlocksParsed counts scan blocks successfully extracted.
	BlocksParsed prometheus.Counter
	// HTTPDuration observes request latency per route and status.
	HTTPDuration *prometheus.HistogramVec
}

// NewMetrics creates a metric set on a fresh registry, including the
// standard Go and process collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(registry)
	return &Metrics{
		registry: registry,
		FilesProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sickscan",
			Name:      "files_processed_total",
			Help:      "Uploaded scan files processed, labelled by outcome.",
		}, []string{"outcome"}),
		BlocksParsed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "sickscan",
			Name:      "scan_blocks_parsed_total",
			Help:      "Scan blocks successfully parsed across all files.",
		}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sickscan",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

// Handler returns the /metrics endpoint for this metric set.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
