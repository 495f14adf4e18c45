// Package jobmetrics instruments background report jobs.
package jobmetrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors for background jobs.
type Metrics struct {
	runs      *prometheus.CounterVec
	failures  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	unbalance *prometheus.CounterVec
	artifacts *prometheus.CounterVec
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// NewMetrics registers the job metrics against the provided registerer. When the
// registerer is nil the default Prometheus registerer is used.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		defaultOnce.Do(func() {
			defaultMetrics = buildMetrics(prometheus.DefaultRegisterer)
		})
		return defaultMetrics
	}
	return buildMetrics(registerer)
}

// Tracker provides lifecycle instrumentation helpers for a single job run.
type Tracker struct {
	metrics *Metrics
	job     string
	start   time.Time
}

// Track spawns a tracker for the given job name.
func (m *Metrics) Track(job string) *Tracker {
	if m == nil {
		return &Tracker{job: job, start: time.Now()}
	}
	return &Tracker{metrics: m, job: job, start: time.Now()}
}

// End finalises the tracker, recording duration and success/failure counts, and
// returns the provided error untouched.
func (t *Tracker) End(err error) error {
	if t == nil || t.metrics == nil || t.job == "" {
		return err
	}
	status := "success"
	if err != nil {
		status = "failure"
		t.metrics.failures.WithLabelValues(t.job).Inc()
	}
	t.metrics.runs.WithLabelValues(t.job, status).Inc()
	t.metrics.duration.WithLabelValues(t.job).Observe(time.Since(t.start).Seconds())
	return err
}

// AddUnbalanced counts accounts whose ledger failed a statement check.
func (m *Metrics) AddUnbalanced(sheet string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.unbalance.WithLabelValues(sheet).Add(float64(count))
}

// ArtifactWritten counts report files written by the generate job.
func (m *Metrics) ArtifactWritten(format string) {
	if m == nil {
		return
	}
	m.artifacts.WithLabelValues(format).Inc()
}

func buildMetrics(registerer prometheus.Registerer) *Metrics {
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "finreports_jobs_total",
		Help: "Total job executions partitioned by job name and status.",
	}, []string{"job", "status"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "finreports_jobs_failures_total",
		Help: "Total failures observed for background jobs.",
	}, []string{"job"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "finreports_job_duration_seconds",
		Help:    "Duration in seconds of background job executions.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	unbalance := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "finreports_jobs_unbalanced_total",
		Help: "Accounts failing a ledger check during scheduled integrity runs, by sheet.",
	}, []string{"sheet"})
	artifacts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "finreports_jobs_artifacts_total",
		Help: "Report files written by background jobs, by format.",
	}, []string{"format"})
	registerer.MustRegister(runs, failures, duration, unbalance, artifacts)
	return &Metrics{runs: runs, failures: failures, duration: duration, unbalance: unbalance, artifacts: artifacts}
}
