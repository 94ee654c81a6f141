// Package metrics exposes Prometheus counters for sync runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// Namespace prefixes every metric.
	Namespace = "canvas_notion"

	// Subsystem groups the sync metrics.
	Subsystem = "sync"
)

// Run results used as the runs_total label.
const (
	ResultOK           = "ok"
	ResultDigestFailed = "digest_failed"
	ResultBusy         = "busy"
	ResultError        = "error"
)

// Metrics holds the run, upsert and digest metrics.
type Metrics struct {
	registry *prometheus.Registry

	RunsTotal          *prometheus.CounterVec
	RunDurationSeconds prometheus.Histogram
	RunInProgress      prometheus.Gauge
	LastSuccess        prometheus.Gauge

	UpsertsTotal        *prometheus.CounterVec
	CoursesSkippedTotal *prometheus.CounterVec
	DigestBlocks        prometheus.Gauge
}

// New registers all metrics on a fresh registry, plus Go and process
// collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)
	m := &Metrics{registry: reg}

	m.RunsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "runs_total",
			Help:      "Sync runs by result (ok, digest_failed, busy, error)",
		},
		[]string{"result"},
	)

	m.RunDurationSeconds = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "run_duration_seconds",
			Help:      "Wall time of one sync run",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~34min
		},
	)

	m.RunInProgress = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "run_in_progress",
			Help:      "1 while a sync run holds the run lock",
		},
	)

	m.LastSuccess = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last completed run",
		},
	)

	m.UpsertsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "assignment_upserts_total",
			Help:      "Assignment upserts by action (created, updated, skipped, failed)",
		},
		[]string{"action"},
	)

	m.CoursesSkippedTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "courses_skipped_total",
			Help:      "Courses skipped after a Canvas fetch error, by pass",
		},
		[]string{"pass"},
	)

	m.DigestBlocks = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "digest_blocks",
			Help:      "Blocks written to the digest page by the last run",
		},
	)

	return m
}

// Registry returns the registry backing m, for tests and custom exposition.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// The Record helpers accept a nil *Metrics so components can run without
// instrumentation.

func (m *Metrics) RecordUpsert(action string) {
	if m == nil {
		return
	}
	m.UpsertsTotal.WithLabelValues(action).Inc()
}

func (m *Metrics) RecordCourseSkipped(pass string) {
	if m == nil {
		return
	}
	m.CoursesSkippedTotal.WithLabelValues(pass).Inc()
}

func (m *Metrics) RecordRunStart() {
	if m == nil {
		return
	}
	m.RunInProgress.Set(1)
}

// RecordRunEnd closes a run started with RecordRunStart.
func (m *Metrics) RecordRunEnd(result string, elapsed time.Duration, digestBlocks int, finished time.Time) {
	if m == nil {
		return
	}
	m.RunInProgress.Set(0)
	m.RunsTotal.WithLabelValues(result).Inc()
	m.RunDurationSeconds.Observe(elapsed.Seconds())
	m.DigestBlocks.Set(float64(digestBlocks))
	if result != ResultError {
		m.LastSuccess.Set(float64(finished.Unix()))
	}
}

func (m *Metrics) RecordBusy() {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(ResultBusy).Inc()
}
