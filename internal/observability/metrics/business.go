package metrics

import (
	"strconv"
	"time"

	"yt-sentiment/internal/domain/entity"
)

// RecordHTTPRequest records an API request with its status and duration.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	HTTPRequestsTotal.WithLabelValues(method, path, code).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
}

// RecordRun records the status of one analysis run: success, partial or failure.
func RecordRun(status string) {
	RunsTotal.WithLabelValues(status).Inc()
}

// RecordVideoOutcome records one video's outcome and, when accepted, its fragment counts.
func RecordVideoOutcome(o entity.VideoOutcome) {
	if o.IsAccepted() {
		VideosTotal.WithLabelValues(string(entity.OutcomeAccepted), "").Inc()
		FragmentsTotal.WithLabelValues(string(entity.PolarityPositive)).Add(float64(len(o.Positive)))
		FragmentsTotal.WithLabelValues(string(entity.PolarityNegative)).Add(float64(len(o.Negative)))
		return
	}
	VideosTotal.WithLabelValues(string(entity.OutcomeSkipped), string(o.Reason)).Inc()
}

// RecordTopics records the labeled topics and the others bucket of one polarity.
func RecordTopics(p entity.Polarity, topics []entity.TopicSummary) {
	for _, t := range topics {
		if t.Others {
			OthersBucketSize.WithLabelValues(string(p)).Observe(float64(t.Count))
			continue
		}
		TopicsTotal.WithLabelValues(string(p)).Inc()
	}
}

// RecordStageDuration records how long one pipeline stage took.
// Stage is one of discover, extract, store, topics.
func RecordStageDuration(stage string, duration time.Duration) {
	StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordEmbeddingRequest records one embedding batch.
func RecordEmbeddingRequest(provider string, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	EmbeddingRequestsTotal.WithLabelValues(provider, status).Inc()
}

// RecordTranscriptCache records a transcript cache lookup: hit, miss or error.
func RecordTranscriptCache(result string) {
	TranscriptCacheTotal.WithLabelValues(result).Inc()
}

// RecordDBQuery records the duration of an embedding store operation,
// e.g. "drop_positive" or "read_negative".
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
