package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"yt-sentiment/internal/domain/entity"
)

func TestRecordVideoOutcome(t *testing.T) {
	ref := entity.NewVideoRef("dQw4w9WgXcQ")
	acceptedBefore := testutil.ToFloat64(VideosTotal.WithLabelValues("accepted", ""))
	skippedBefore := testutil.ToFloat64(VideosTotal.WithLabelValues("skipped", "transcript_unavailable"))
	posBefore := testutil.ToFloat64(FragmentsTotal.WithLabelValues("positive"))
	negBefore := testutil.ToFloat64(FragmentsTotal.WithLabelValues("negative"))

	RecordVideoOutcome(entity.Accepted(ref,
		[]entity.SentimentFragment{{Text: "great battery"}, {Text: "sleek design"}},
		[]entity.SentimentFragment{{Text: "poor camera"}},
	))
	RecordVideoOutcome(entity.Skipped(ref, entity.SkipTranscriptUnavailable, entity.ErrTranscriptUnavailable))

	assert.Equal(t, acceptedBefore+1, testutil.ToFloat64(VideosTotal.WithLabelValues("accepted", "")))
	assert.Equal(t, skippedBefore+1, testutil.ToFloat64(VideosTotal.WithLabelValues("skipped", "transcript_unavailable")))
	assert.Equal(t, posBefore+2, testutil.ToFloat64(FragmentsTotal.WithLabelValues("positive")))
	assert.Equal(t, negBefore+1, testutil.ToFloat64(FragmentsTotal.WithLabelValues("negative")))
}

func TestRecordTopics(t *testing.T) {
	before := testutil.ToFloat64(TopicsTotal.WithLabelValues("negative"))

	RecordTopics(entity.PolarityNegative, []entity.TopicSummary{
		entity.NewTopicSummary("camera quality", entity.PolarityNegative, []string{"poor camera", "blurry photos"}),
		entity.NewTopicSummary("heat", entity.PolarityNegative, []string{"gets hot", "overheats"}),
		entity.NewOthersSummary(entity.PolarityNegative, []string{"pricey"}),
	})

	assert.Equal(t, before+2, testutil.ToFloat64(TopicsTotal.WithLabelValues("negative")))
}

func TestRecordEmbeddingRequest(t *testing.T) {
	okBefore := testutil.ToFloat64(EmbeddingRequestsTotal.WithLabelValues("gemini", "success"))
	failBefore := testutil.ToFloat64(EmbeddingRequestsTotal.WithLabelValues("gemini", "failure"))

	RecordEmbeddingRequest("gemini", nil)
	RecordEmbeddingRequest("gemini", errors.New("quota"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(EmbeddingRequestsTotal.WithLabelValues("gemini", "success")))
	assert.Equal(t, failBefore+1, testutil.ToFloat64(EmbeddingRequestsTotal.WithLabelValues("gemini", "failure")))
}

func TestRecordCounters(t *testing.T) {
	runBefore := testutil.ToFloat64(RunsTotal.WithLabelValues("partial"))
	hitBefore := testutil.ToFloat64(TranscriptCacheTotal.WithLabelValues("hit"))
	reqBefore := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/analyses", "200"))

	RecordRun("partial")
	RecordTranscriptCache("hit")
	RecordHTTPRequest("POST", "/analyses", 200, 3*time.Second)

	assert.Equal(t, runBefore+1, testutil.ToFloat64(RunsTotal.WithLabelValues("partial")))
	assert.Equal(t, hitBefore+1, testutil.ToFloat64(TranscriptCacheTotal.WithLabelValues("hit")))
	assert.Equal(t, reqBefore+1, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/analyses", "200")))

	assert.NotPanics(t, func() {
		RecordStageDuration("extract", 1500*time.Millisecond)
		RecordDBQuery("drop_positive", 2*time.Millisecond)
	})
}

func TestOperation(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, DefaultOperation, Operation(ctx))
	assert.Equal(t, "label", Operation(WithOperation(ctx, "label")))
	assert.Equal(t, DefaultOperation, Operation(WithOperation(ctx, "")))
}
