// Package extract turns discovered videos into polarity-tagged sentiment
// fragments. Each video is processed independently and ends in exactly one
// VideoOutcome; a failing video never aborts the batch.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"yt-sentiment/internal/domain/entity"
	"yt-sentiment/internal/observability/metrics"
)

// TranscriptFetcher returns the ordered caption segments of a video.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, videoID string, languages []string) ([]string, error)
}

// Completer runs one generative completion.
type Completer interface {
	Complete(ctx context.Context, prompt string, temperature float64) (string, error)
}

// Config controls per-video processing.
type Config struct {
	// Languages lists acceptable caption languages, most preferred first.
	Languages []string
	// Parallelism bounds how many videos are processed at once.
	Parallelism int
}

// Service fetches transcripts and extracts sentiment fragments.
type Service struct {
	transcripts TranscriptFetcher
	completer   Completer
	cfg         Config
}

// NewService creates an extraction service. Parallelism below 1 is treated as 1.
func NewService(transcripts TranscriptFetcher, completer Completer, cfg Config) *Service {
	if cfg.Parallelism < 1 {
		cfg.Parallelism = 1
	}
	return &Service{transcripts: transcripts, completer: completer, cfg: cfg}
}

// BatchResult aggregates per-video outcomes in input order.
type BatchResult struct {
	// Outcomes has one entry per input ref, at the ref's index.
	Outcomes []entity.VideoOutcome
}

// Accepted returns the refs of accepted videos in input order.
func (b *BatchResult) Accepted() []entity.VideoRef {
	refs := make([]entity.VideoRef, 0, len(b.Outcomes))
	for _, o := range b.Outcomes {
		if o.IsAccepted() {
			refs = append(refs, o.Ref)
		}
	}
	return refs
}

// Skipped returns the outcomes of videos that contributed nothing.
func (b *BatchResult) Skipped() []entity.VideoOutcome {
	var out []entity.VideoOutcome
	for _, o := range b.Outcomes {
		if !o.IsAccepted() {
			out = append(out, o)
		}
	}
	return out
}

// Fragments concatenates the fragments of one polarity across accepted videos,
// following video order and then sentence order.
func (b *BatchResult) Fragments(p entity.Polarity) []entity.SentimentFragment {
	var out []entity.SentimentFragment
	for _, o := range b.Outcomes {
		if o.IsAccepted() {
			out = append(out, o.Fragments(p)...)
		}
	}
	return out
}

// ProcessAll processes refs with bounded parallelism. Outcomes keep the order
// of refs regardless of completion order. The only error returned is the
// context's, when it is canceled before every video finished.
func (s *Service) ProcessAll(ctx context.Context, product string, refs []entity.VideoRef) (*BatchResult, error) {
	outcomes := make([]entity.VideoOutcome, len(refs))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.cfg.Parallelism)

	for i, ref := range refs {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			outcomes[i] = s.Process(egCtx, product, ref)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &BatchResult{Outcomes: outcomes}, nil
}

// Process runs transcript retrieval, extraction and the structured parse for
// one video. Every failure becomes a skipped outcome.
func (s *Service) Process(ctx context.Context, product string, ref entity.VideoRef) entity.VideoOutcome {
	start := time.Now()
	outcome := s.process(ctx, product, ref)
	metrics.RecordVideoOutcome(outcome)

	logger := slog.Default()
	if outcome.IsAccepted() {
		logger.InfoContext(ctx, "video accepted",
			slog.String("video_id", ref.ID),
			slog.Int("positive", len(outcome.Positive)),
			slog.Int("negative", len(outcome.Negative)),
			slog.Duration("duration", time.Since(start)))
	} else {
		logger.InfoContext(ctx, "video skipped",
			slog.String("video_id", ref.ID),
			slog.String("reason", string(outcome.Reason)),
			slog.Any("error", outcome.Err))
	}
	return outcome
}

func (s *Service) process(ctx context.Context, product string, ref entity.VideoRef) entity.VideoOutcome {
	segments, err := s.transcripts.Fetch(ctx, ref.ID, s.cfg.Languages)
	if err != nil {
		return entity.Skipped(ref, entity.SkipTranscriptUnavailable, err)
	}
	transcript := JoinSegments(segments)
	if transcript == "" {
		return entity.Skipped(ref, entity.SkipTranscriptUnavailable,
			fmt.Errorf("%w: %s: empty transcript", entity.ErrTranscriptUnavailable, ref.ID))
	}

	notes, err := s.completer.Complete(metrics.WithOperation(ctx, "extract"), ExtractionPrompt(product, transcript), 0)
	if err != nil {
		return entity.Skipped(ref, entity.SkipExtractionFailed, fmt.Errorf("extract sentiment: %w", err))
	}

	raw, err := s.completer.Complete(metrics.WithOperation(ctx, "structure"), StructurePrompt(product, notes), 0)
	if err != nil {
		return entity.Skipped(ref, entity.SkipExtractionFailed, fmt.Errorf("structure sentiment: %w", err))
	}

	parsed, err := ParseSentiment(raw)
	if err != nil {
		var perr *entity.ParseError
		if errors.As(err, &perr) {
			return entity.Skipped(ref, entity.SkipParseError, err)
		}
		return entity.Skipped(ref, entity.SkipExtractionFailed, err)
	}

	return entity.Accepted(ref,
		toFragments(parsed.Positive, entity.PolarityPositive, ref.ID),
		toFragments(parsed.Negative, entity.PolarityNegative, ref.ID),
	)
}

// JoinSegments concatenates caption segments in order with single spaces.
func JoinSegments(segments []string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

func toFragments(texts []string, p entity.Polarity, videoID string) []entity.SentimentFragment {
	out := make([]entity.SentimentFragment, len(texts))
	for i, t := range texts {
		out[i] = entity.SentimentFragment{Text: t, Polarity: p, SourceVideoID: videoID}
	}
	return out
}
