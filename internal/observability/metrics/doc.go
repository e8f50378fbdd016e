// Package metrics provides the Prometheus metrics of the sentiment pipeline.
//
// All metrics are registered with the default registry through promauto and are
// exposed on /metrics by the API and the worker.
//
// Example usage:
//
//	start := time.Now()
//	batch := extractor.Extract(ctx, product, refs)
//	metrics.RecordStageDuration("extract", time.Since(start))
//	for _, o := range batch.Outcomes {
//	    metrics.RecordVideoOutcome(o)
//	}
package metrics
