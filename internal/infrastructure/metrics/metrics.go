// Package metrics defines the Prometheus collectors of the service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values
const (
	OutcomeSuccess = "success"
	OutcomePartial = "partial"
	OutcomeFailure = "failure"
)

// Metrics groups every collector. A nil *Metrics records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	RenderRuns       *prometheus.CounterVec
	RenderDuration   prometheus.Histogram
	SnapshotRenders  *prometheus.CounterVec
	SnapshotDuration prometheus.Histogram
	UploadedBytes    *prometheus.CounterVec
	LogoFetches      *prometheus.CounterVec
}

// New creates the collectors and registers them on a fresh registry.
func New(namespace string) *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),

		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		RenderRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "render_runs_total",
				Help:      "Render requests by outcome",
			},
			[]string{"outcome"},
		),
		RenderDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "render_run_duration_seconds",
				Help:      "Wall time of complete render requests",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
		),
		SnapshotRenders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "snapshot_renders_total",
				Help:      "Snapshot renders by outcome",
			},
			[]string{"outcome"},
		),
		SnapshotDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "snapshot_render_duration_seconds",
				Help:      "Wall time of one snapshot render including uploads",
				Buckets:   prometheus.DefBuckets,
			},
		),
		UploadedBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "uploaded_bytes_total",
				Help:      "Bytes written to the blob store by artifact kind",
			},
			[]string{"kind"},
		),
		LogoFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "logo_fetches_total",
				Help:      "Header logo fetches by outcome",
			},
			[]string{"outcome"},
		),
	}

	m.Registry.MustRegister(
		m.RequestsTotal, m.RequestDuration,
		m.RenderRuns, m.RenderDuration,
		m.SnapshotRenders, m.SnapshotDuration,
		m.UploadedBytes, m.LogoFetches,
	)
	return m
}

func (m *Metrics) ObserveRun(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.RenderRuns.WithLabelValues(outcome).Inc()
	m.RenderDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveSnapshot(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.SnapshotRenders.WithLabelValues(outcome).Inc()
	m.SnapshotDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveUpload(kind string, n int) {
	if m == nil {
		return
	}
	m.UploadedBytes.WithLabelValues(kind).Add(float64(n))
}

func (m *Metrics) ObserveLogoFetch(err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.LogoFetches.WithLabelValues(outcome).Inc()
}
