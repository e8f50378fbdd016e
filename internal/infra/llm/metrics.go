package llm

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsRecorder records completion requests. Tests swap in a stub.
type MetricsRecorder interface {
	RecordRequest(provider, operation string, err error, duration time.Duration)
}

// PrometheusMetrics implements MetricsRecorder with Prometheus collectors.
type PrometheusMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var (
	prometheusMetricsInstance *PrometheusMetrics
	prometheusMetricsOnce     sync.Once
)

// registerOrExisting registers c, or returns the collector already registered
// under the same descriptor.
func registerOrExisting[C prometheus.Collector](c C) C {
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

// NewPrometheusMetrics returns the process-wide recorder, registering its
// collectors on first use.
func NewPrometheusMetrics() *PrometheusMetrics {
	prometheusMetricsOnce.Do(func() {
		prometheusMetricsInstance = &PrometheusMetrics{
			requests: registerOrExisting(prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "sentiment_llm_requests_total",
					Help: "Total number of completion requests by provider, operation and status",
				},
				[]string{"provider", "operation", "status"},
			)),
			duration: registerOrExisting(prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "sentiment_llm_request_duration_seconds",
					Help:    "Completion request duration in seconds, retries included",
					Buckets: prometheus.ExponentialBuckets(0.25, 2, 11),
				},
				[]string{"provider"},
			)),
		}
	})
	return prometheusMetricsInstance
}

// RecordRequest implements MetricsRecorder.
func (p *PrometheusMetrics) RecordRequest(provider, operation string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	p.requests.WithLabelValues(provider, operation, status).Inc()
	p.duration.WithLabelValues(provider).Observe(duration.Seconds())
}
