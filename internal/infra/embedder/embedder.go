// Package embedder turns sentiment fragments into vectors with Gemini or OpenAI
// embedding models. Requests are chunked to the provider's batch limit and run
// through a circuit breaker and retry policy.
package embedder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"yt-sentiment/internal/config"
	"yt-sentiment/internal/domain/entity"
	"yt-sentiment/internal/observability/metrics"
	"yt-sentiment/internal/resilience"
	"yt-sentiment/internal/resilience/circuitbreaker"
	"yt-sentiment/internal/resilience/retry"
)

// Embedder returns one vector per input text, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// New builds the embedder selected by cfg.EmbeddingProvider.
func New(ctx context.Context, cfg *config.ProviderConfig) (Embedder, error) {
	switch cfg.EmbeddingProvider {
	case config.ProviderGemini:
		return NewGemini(ctx, cfg)
	case config.ProviderOpenAI:
		return NewOpenAI(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider %q", cfg.EmbeddingProvider)
	}
}

// batcher holds the chunking and resilience shared by both providers.
type batcher struct {
	provider       string
	batchSize      int
	timeout        time.Duration
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

func newBatcher(provider string, batchSize int, timeout time.Duration) batcher {
	return batcher{
		provider:       provider,
		batchSize:      batchSize,
		timeout:        timeout,
		circuitBreaker: circuitbreaker.New(circuitbreaker.EmbeddingAPIConfig(provider)),
		retryConfig:    retry.EmbeddingConfig(),
	}
}

// embed splits texts into batches and calls fn for each one. Any failed batch
// fails the whole call with entity.ErrEmbedding.
func (b *batcher) embed(ctx context.Context, texts []string, fn func(ctx context.Context, batch []string) ([][]float32, error)) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += b.batchSize {
		end := min(start+b.batchSize, len(texts))
		batch := texts[start:end]

		vectors, err := b.embedBatch(ctx, batch, fn)
		metrics.RecordEmbeddingRequest(b.provider, err)
		if err != nil {
			slog.WarnContext(ctx, "embedding batch failed",
				slog.String("provider", b.provider),
				slog.Int("offset", start),
				slog.Int("size", len(batch)),
				slog.Any("error", err))
			return nil, fmt.Errorf("%w: %s: %w", entity.ErrEmbedding, b.provider, err)
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("%w: %s returned %d vectors for %d texts",
				entity.ErrEmbedding, b.provider, len(vectors), len(batch))
		}
		out = append(out, vectors...)
	}

	slog.DebugContext(ctx, "embedded texts",
		slog.String("provider", b.provider),
		slog.Int("count", len(out)))
	return out, nil
}

func (b *batcher) embedBatch(ctx context.Context, batch []string, fn func(ctx context.Context, batch []string) ([][]float32, error)) ([][]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	return resilience.Call(ctx, b.circuitBreaker, b.retryConfig, func() ([][]float32, error) {
		return fn(ctx, batch)
	})
}
