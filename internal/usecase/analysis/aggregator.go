// Package analysis orchestrates one sentiment analysis run: discovery,
// per-video extraction, embedding persistence, clustering and labeling.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"yt-sentiment/internal/domain/entity"
	"yt-sentiment/internal/observability/metrics"
	"yt-sentiment/internal/observability/tracing"
	"yt-sentiment/internal/usecase/cluster"
	"yt-sentiment/internal/usecase/discovery"
	"yt-sentiment/internal/usecase/extract"
)

// Discoverer finds candidate videos for a product.
type Discoverer interface {
	Discover(ctx context.Context, product string, count int) (*discovery.Result, error)
}

// Extractor turns videos into per-video outcomes.
type Extractor interface {
	ProcessAll(ctx context.Context, product string, refs []entity.VideoRef) (*extract.BatchResult, error)
}

// Clusterer partitions one polarity's records into topic groups.
type Clusterer interface {
	Cluster(records []entity.EmbeddingRecord) (cluster.Partition, error)
}

// Labeler names one multi-member group.
type Labeler interface {
	Label(ctx context.Context, product string, members []string) (string, error)
}

// Request is one analysis request.
type Request struct {
	// Product is the name searched for and quoted in prompts.
	Product string
	// Count is the number of videos to search for. Zero means the configured default.
	Count int
}

// Config holds the aggregator's defaults.
type Config struct {
	// DefaultCount applies when a request leaves Count at zero.
	DefaultCount int
	// MaxCount caps the videos one request may ask for.
	MaxCount int
}

// Aggregator drives analysis runs. It keeps no state between runs; the
// embedding store is reset inside every run while the store lock is held.
type Aggregator struct {
	discoverer Discoverer
	extractor  Extractor
	store      *EmbeddingStore
	clusterer  Clusterer
	labeler    Labeler
	cfg        Config

	// now is overridden in tests for a stable GeneratedAt.
	now func() time.Time
}

// NewAggregator creates an Aggregator.
func NewAggregator(
	discoverer Discoverer,
	extractor Extractor,
	store *EmbeddingStore,
	clusterer Clusterer,
	labeler Labeler,
	cfg Config,
) *Aggregator {
	if cfg.DefaultCount <= 0 {
		cfg.DefaultCount = 20
	}
	if cfg.MaxCount <= 0 {
		cfg.MaxCount = 50
	}
	return &Aggregator{
		discoverer: discoverer,
		extractor:  extractor,
		store:      store,
		clusterer:  clusterer,
		labeler:    labeler,
		cfg:        cfg,
		now:        time.Now,
	}
}

// Run analyzes one product.
//
// A discovery or store-reset failure aborts the run and returns a nil result.
// Failures confined to one polarity (embedding, clustering, labeling) leave the
// other polarity intact: Run then returns the partial result together with an
// error joining one *entity.PolarityError per failed polarity.
func (a *Aggregator) Run(ctx context.Context, req Request) (result *entity.AnalysisResult, err error) {
	if err := entity.ValidateProductName(req.Product); err != nil {
		return nil, err
	}
	if req.Count == 0 {
		req.Count = a.cfg.DefaultCount
	}
	if err := entity.ValidateVideoCount(req.Count, a.cfg.MaxCount); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	ctx, span := tracing.StartStage(ctx, "analysis.run",
		attribute.String("run.id", runID),
		attribute.String("product", req.Product),
		attribute.Int("count", req.Count))
	defer func() { tracing.EndStage(span, err) }()

	logger := slog.Default().With(slog.String("run_id", runID), slog.String("product", req.Product))
	start := time.Now()

	defer func() {
		switch {
		case result == nil:
			metrics.RecordRun("failure")
		case err != nil:
			metrics.RecordRun("partial")
		default:
			metrics.RecordRun("success")
		}
	}()

	refs, dropped, err := a.discover(ctx, req)
	if err != nil {
		logger.Error("discovery failed", slog.Any("error", err))
		return nil, err
	}

	batch, err := a.extract(ctx, req.Product, refs)
	if err != nil {
		return nil, err
	}

	records, storeErrs, err := a.persist(ctx, batch)
	if err != nil {
		logger.Error("embedding store unavailable", slog.Any("error", err))
		return nil, err
	}

	result = &entity.AnalysisResult{
		RunID:          runID,
		Product:        req.Product,
		AcceptedVideos: batch.Accepted(),
		SkippedVideos:  skippedVideos(dropped, batch.Skipped()),
		PositiveTopics: []entity.TopicSummary{},
		NegativeTopics: []entity.TopicSummary{},
	}

	failures := a.topics(ctx, req.Product, records, storeErrs, result)

	result.GeneratedAt = a.now().UTC()
	if len(failures) > 0 {
		result.Failures = make(map[entity.Polarity]string, len(failures))
		errs := make([]error, 0, len(failures))
		for _, p := range entity.Polarities() {
			if f, ok := failures[p]; ok {
				result.Failures[p] = f.Error()
				errs = append(errs, f)
			}
		}
		err = errors.Join(errs...)
	}

	pos, neg := result.SentimentShare()
	logger.Info("analysis completed",
		slog.Int("accepted_videos", len(result.AcceptedVideos)),
		slog.Int("skipped_videos", len(result.SkippedVideos)),
		slog.Int("positive_topics", len(result.PositiveTopics)),
		slog.Int("negative_topics", len(result.NegativeTopics)),
		slog.Float64("positive_share", pos),
		slog.Float64("negative_share", neg),
		slog.Int("failed_polarities", len(failures)),
		slog.Duration("duration", time.Since(start)))

	return result, err
}

func (a *Aggregator) discover(ctx context.Context, req Request) (refs []entity.VideoRef, dropped []entity.VideoOutcome, err error) {
	ctx, span := tracing.StartStage(ctx, "analysis.discover")
	defer func() { tracing.EndStage(span, err) }()
	start := time.Now()
	defer func() { metrics.RecordStageDuration("discover", time.Since(start)) }()

	res, err := a.discoverer.Discover(ctx, req.Product, req.Count)
	if err != nil {
		if !errors.Is(err, entity.ErrDiscovery) {
			err = fmt.Errorf("%w: %w", entity.ErrDiscovery, err)
		}
		return nil, nil, err
	}
	for _, o := range res.Dropped {
		metrics.RecordVideoOutcome(o)
	}
	span.SetAttributes(attribute.Int("videos.unique", len(res.Refs)))
	return res.Refs, res.Dropped, nil
}

func (a *Aggregator) extract(ctx context.Context, product string, refs []entity.VideoRef) (batch *extract.BatchResult, err error) {
	ctx, span := tracing.StartStage(ctx, "analysis.extract", attribute.Int("videos", len(refs)))
	defer func() { tracing.EndStage(span, err) }()
	start := time.Now()
	defer func() { metrics.RecordStageDuration("extract", time.Since(start)) }()

	batch, err = a.extractor.ProcessAll(ctx, product, refs)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	span.SetAttributes(attribute.Int("videos.accepted", len(batch.Accepted())))
	return batch, nil
}

// persist resets and rewrites both partitions, then reads them back, all
// under the store lock. Lock and drop failures are fatal. Write and read
// failures are reported per polarity.
func (a *Aggregator) persist(ctx context.Context, batch *extract.BatchResult) (records map[entity.Polarity][]entity.EmbeddingRecord, failed map[entity.Polarity]error, err error) {
	ctx, span := tracing.StartStage(ctx, "analysis.store")
	defer func() { tracing.EndStage(span, err) }()
	start := time.Now()
	defer func() { metrics.RecordStageDuration("store", time.Since(start)) }()

	release, err := a.store.Lock(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer release()

	for _, p := range entity.Polarities() {
		if err := a.store.Drop(ctx, p); err != nil {
			return nil, nil, err
		}
	}

	records = make(map[entity.Polarity][]entity.EmbeddingRecord, 2)
	failed = make(map[entity.Polarity]error)
	for _, p := range entity.Polarities() {
		frags := batch.Fragments(p)
		texts := make([]string, len(frags))
		for i, f := range frags {
			texts[i] = f.Text
		}

		if err := a.store.Write(ctx, p, texts); err != nil {
			failed[p] = err
			continue
		}
		recs, err := a.store.ReadAll(ctx, p)
		if err != nil {
			failed[p] = err
			continue
		}
		records[p] = recs
		span.SetAttributes(attribute.Int("records."+string(p), len(recs)))
	}

	return records, failed, nil
}

// topics clusters and labels each polarity independently and fills result.
// It returns the per-polarity failures, including those carried over from persist.
func (a *Aggregator) topics(
	ctx context.Context,
	product string,
	records map[entity.Polarity][]entity.EmbeddingRecord,
	storeErrs map[entity.Polarity]error,
	result *entity.AnalysisResult,
) map[entity.Polarity]*entity.PolarityError {
	ctx, span := tracing.StartStage(ctx, "analysis.topics")
	start := time.Now()

	var (
		mu       sync.Mutex
		failures = make(map[entity.Polarity]*entity.PolarityError)
	)
	fail := func(p entity.Polarity, err error) {
		mu.Lock()
		defer mu.Unlock()
		failures[p] = &entity.PolarityError{Polarity: p, Err: err}
	}

	var eg errgroup.Group
	for _, p := range entity.Polarities() {
		if err, ok := storeErrs[p]; ok {
			fail(p, err)
			continue
		}
		eg.Go(func() error {
			summaries, err := a.summarize(ctx, product, p, records[p])
			if err != nil {
				fail(p, err)
				return nil
			}
			metrics.RecordTopics(p, summaries)
			mu.Lock()
			if p == entity.PolarityNegative {
				result.NegativeTopics = summaries
			} else {
				result.PositiveTopics = summaries
			}
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()

	var spanErr error
	for _, p := range entity.Polarities() {
		if f, ok := failures[p]; ok {
			spanErr = errors.Join(spanErr, f)
			slog.Warn("polarity failed",
				slog.String("polarity", string(p)),
				slog.Any("error", f.Err))
		}
	}
	tracing.EndStage(span, spanErr)
	metrics.RecordStageDuration("topics", time.Since(start))

	return failures
}

// summarize builds the topic list of one polarity: one labeled summary per
// multi-member group, in group order, followed by the others bucket.
func (a *Aggregator) summarize(ctx context.Context, product string, p entity.Polarity, records []entity.EmbeddingRecord) ([]entity.TopicSummary, error) {
	partition, err := a.clusterer.Cluster(records)
	if err != nil {
		return nil, fmt.Errorf("cluster: %w", err)
	}

	summaries := make([]entity.TopicSummary, 0, len(partition.Groups)+1)
	for _, members := range partition.Groups {
		label, err := a.labeler.Label(ctx, product, members)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, entity.NewTopicSummary(label, p, members))
	}
	summaries = append(summaries, entity.NewOthersSummary(p, partition.Others))

	return summaries, nil
}

func skippedVideos(groups ...[]entity.VideoOutcome) []entity.SkippedVideo {
	var out []entity.SkippedVideo
	for _, outcomes := range groups {
		for _, o := range outcomes {
			out = append(out, entity.SkippedVideo{VideoID: o.Ref.ID, Reason: o.Reason})
		}
	}
	return out
}
