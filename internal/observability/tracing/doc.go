// Package tracing provides OpenTelemetry spans for pipeline stages and HTTP requests.
//
// Spans are created through the global tracer provider. Without a configured
// provider they are no-ops. Stage spans:
//
//	analysis.run       one analysis request
//	analysis.discover  video search and dedup
//	analysis.extract   transcript retrieval and sentiment extraction
//	analysis.store     drop, embed and write both partitions
//	analysis.topics    cluster and label one polarity
package tracing
