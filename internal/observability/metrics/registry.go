package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track API request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds.
	// Analyses run for minutes, so buckets reach well past the default set.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"method", "path", "status"},
	)
)

// Pipeline metrics track analysis runs and their stages
var (
	// RunsTotal counts analysis runs by status (success, partial, failure)
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiment_runs_total",
			Help: "Total number of analysis runs by status",
		},
		[]string{"status"},
	)

	// VideosTotal counts processed videos by outcome and skip reason
	VideosTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiment_videos_total",
			Help: "Total number of candidate videos by outcome",
		},
		[]string{"outcome", "reason"},
	)

	// FragmentsTotal counts extracted sentiment fragments by polarity
	FragmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiment_fragments_total",
			Help: "Total number of extracted sentiment fragments",
		},
		[]string{"polarity"},
	)

	// TopicsTotal counts labeled multi-member topics by polarity
	TopicsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiment_topics_total",
			Help: "Total number of labeled topics",
		},
		[]string{"polarity"},
	)

	// OthersBucketSize observes the size of the per-polarity others bucket
	OthersBucketSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sentiment_others_bucket_size",
			Help:    "Number of singleton fragments pooled into the others topic",
			Buckets: prometheus.ExponentialBuckets(1, 2, 9),
		},
		[]string{"polarity"},
	)

	// StageDuration measures pipeline stage duration
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sentiment_stage_duration_seconds",
			Help:    "Duration of pipeline stages in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 14),
		},
		[]string{"stage"},
	)
)

// Provider metrics track calls to embedding and transcript services
var (
	// EmbeddingRequestsTotal counts embedding batches by provider and status
	EmbeddingRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiment_embedding_requests_total",
			Help: "Total number of embedding requests",
		},
		[]string{"provider", "status"},
	)

	// TranscriptCacheTotal counts transcript cache lookups by result (hit, miss, error)
	TranscriptCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiment_transcript_cache_total",
			Help: "Total number of transcript cache lookups",
		},
		[]string{"result"},
	)

	// DBQueryDuration measures embedding store query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"operation"},
	)
)
