// Package observability groups the pipeline's logging, metrics and tracing helpers.
//
// Subpackages:
//   - logging: slog JSON logger with request and trace correlation
//   - metrics: Prometheus counters and histograms for pipeline stages and providers
//   - tracing: OpenTelemetry spans for stages and HTTP requests
package observability
