// Package metrics exposes Prometheus collectors for the lipsync worker.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Conversion outcomes used as the "outcome" label.
const (
	OutcomeSuccess        = "success"
	OutcomeInvalidEvent   = "invalid_event"
	OutcomeDownloadFailed = "download_failed"
	OutcomeEncodeFailed   = "encode_failed"
	OutcomeUploadFailed   = "upload_failed"
	OutcomeReplyFailed    = "reply_failed"
)

// Metrics groups the collectors of one worker.
type Metrics struct {
	registry *prometheus.Registry

	Conversions       *prometheus.CounterVec
	ConversionLatency prometheus.Histogram
	VisemesEmitted    prometheus.Counter
	TimelineDuration  prometheus.Histogram
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		Conversions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lipsync_conversions_total",
				Help: "Total number of text to viseme conversions by outcome",
			},
			[]string{"outcome"},
		),

		ConversionLatency: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "lipsync_conversion_duration_seconds",
				Help:    "Time spent handling one text processed event",
				Buckets: prometheus.DefBuckets,
			},
		),

		VisemesEmitted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "lipsync_visemes_emitted_total",
				Help: "Total number of viseme events produced by conversions, silence padding excluded",
			},
		),

		TimelineDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "lipsync_timeline_duration_milliseconds",
				Help:    "Length of generated timelines in milliseconds",
				Buckets: prometheus.ExponentialBuckets(250, 2, 10),
			},
		),
	}
}

// ObserveConversion records one handled event.
func (m *Metrics) ObserveConversion(outcome string, started time.Time) {
	m.Conversions.WithLabelValues(outcome).Inc()
	m.ConversionLatency.Observe(time.Since(started).Seconds())
}

// ObserveTimeline records the size of a produced timeline.
func (m *Metrics) ObserveTimeline(events int, durationMs float64) {
	m.VisemesEmitted.Add(float64(events))
	m.TimelineDuration.Observe(durationMs)
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collectors in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
