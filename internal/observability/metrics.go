// Package observability provides the pipeline's prometheus metrics, otel
// tracing helpers, and an EventBridge-backed stage.Handler for pipeline
// events. Grounded on the teacher's internal/infrastructure/observability
// package (metrics.go's Collector) and infrastructure/messaging/eventbridge
// (publisher.go).
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the pipeline's prometheus metrics: queue depth, in-flight
// workers, per-stage duration, and retry counts (spec.md §9's observability
// surface, out of scope for the core but carried as ambient stack here).
type Collector struct {
	registry *prometheus.Registry

	QueueDepth    prometheus.Gauge
	InFlight      prometheus.Gauge
	StageDuration *prometheus.HistogramVec
	StageRetries  *prometheus.CounterVec
	StageErrors   *prometheus.CounterVec
	PagesComplete prometheus.Counter
	PagesFailed   prometheus.Counter
}

// NewCollector builds a Collector registered against its own registry
// rather than the global one, so repeated construction in tests doesn't
// panic on duplicate registration.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "queue_depth", Help: "Number of URLs waiting to be processed.",
		}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "in_flight_pages", Help: "Number of pages currently being processed.",
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "stage_duration_seconds", Help: "Duration of each pipeline stage.",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
		StageRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "stage_retries_total", Help: "Number of component retry attempts.",
		}, []string{"stage"}),
		StageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "stage_errors_total", Help: "Number of stage failures.",
		}, []string{"stage"}),
		PagesComplete: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "pages_completed_total", Help: "Number of pages that reached the complete stage.",
		}),
		PagesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "pages_failed_total", Help: "Number of pages that aborted with an error.",
		}),
	}

	registry.MustRegister(
		c.QueueDepth, c.InFlight, c.StageDuration, c.StageRetries,
		c.StageErrors, c.PagesComplete, c.PagesFailed,
	)
	return c
}

// Registry exposes the collector's registry for wiring into an HTTP
// /metrics handler.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// ObserveStageDuration records a completed stage's duration.
func (c *Collector) ObserveStageDuration(stage string, d time.Duration) {
	c.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}
