package worker

import (
	"yt-sentiment/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WorkerMetrics are the Prometheus metrics of the scheduled worker.
//
// Embedded from ConfigMetrics:
//   - worker_config_load_timestamp
//   - worker_config_validation_errors_total{field}
//   - worker_config_fallbacks_total{field,type}
//   - worker_config_fallback_active
//
// Worker specific:
//   - worker_cron_job_runs_total{status}
//   - worker_cron_job_duration_seconds
//   - worker_cron_job_products_processed_total{status}
//   - worker_cron_job_last_success_timestamp
//
// All metrics register on the default registry when NewWorkerMetrics is
// called, so it must be called once per process.
type WorkerMetrics struct {
	*config.ConfigMetrics

	// CronJobRunsTotal counts watchlist passes by status (success, partial, failure).
	CronJobRunsTotal *prometheus.CounterVec

	// CronJobDurationSeconds observes the duration of a whole watchlist pass.
	CronJobDurationSeconds prometheus.Histogram

	// ProductsProcessedTotal counts analyzed products by status (success, partial, failure).
	ProductsProcessedTotal *prometheus.CounterVec

	// CronJobLastSuccessTimestamp is the Unix time of the last pass without failures.
	CronJobLastSuccessTimestamp prometheus.Gauge
}

// NewWorkerMetrics creates and registers the worker metrics.
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics("worker"),

		CronJobRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_cron_job_runs_total",
			Help: "Total number of watchlist runs by status",
		}, []string{"status"}),

		CronJobDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_cron_job_duration_seconds",
			Help:    "Duration of a watchlist run in seconds",
			Buckets: []float64{10, 30, 60, 300, 900, 1800, 3600, 7200}, // 10s .. 2h
		}),

		ProductsProcessedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_cron_job_products_processed_total",
			Help: "Total number of watchlist products analyzed by status",
		}, []string{"status"}),

		CronJobLastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "worker_cron_job_last_success_timestamp",
			Help: "Unix timestamp of the last watchlist run without failures",
		}),
	}
}

// MustRegister is a no-op kept for the NewWorkerMetrics/MustRegister call
// pattern; promauto already registered everything.
func (m *WorkerMetrics) MustRegister() {}

// RecordJobRun counts a watchlist run with the given status.
func (m *WorkerMetrics) RecordJobRun(status string) {
	m.CronJobRunsTotal.WithLabelValues(status).Inc()
}

// RecordJobDuration observes a run duration in seconds.
func (m *WorkerMetrics) RecordJobDuration(seconds float64) {
	m.CronJobDurationSeconds.Observe(seconds)
}

// RecordProductProcessed counts one analyzed product.
func (m *WorkerMetrics) RecordProductProcessed(status string) {
	m.ProductsProcessedTotal.WithLabelValues(status).Inc()
}

// RecordLastSuccess sets the last success timestamp to now.
func (m *WorkerMetrics) RecordLastSuccess() {
	m.CronJobLastSuccessTimestamp.SetToCurrentTime()
}
