package analysis

import (
	"context"
	"errors"
	"fmt"

	"yt-sentiment/internal/domain/entity"
	"yt-sentiment/internal/repository"
)

// Embedder computes one vector per text, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbeddingStore embeds fragment texts and persists them per polarity.
// Write appends: callers Drop a partition before the first Write of a run.
type EmbeddingStore struct {
	repo     repository.SentimentEmbeddingRepository
	embedder Embedder
}

// NewEmbeddingStore creates an EmbeddingStore.
func NewEmbeddingStore(repo repository.SentimentEmbeddingRepository, embedder Embedder) *EmbeddingStore {
	return &EmbeddingStore{repo: repo, embedder: embedder}
}

// Drop clears the partition of polarity.
func (s *EmbeddingStore) Drop(ctx context.Context, polarity entity.Polarity) error {
	if err := s.repo.Drop(ctx, polarity); err != nil {
		return fmt.Errorf("%w: drop %s: %w", entity.ErrStoreUnavailable, polarity, err)
	}
	return nil
}

// Write embeds texts and appends them to the partition of polarity.
// Embedding failures match entity.ErrEmbedding.
func (s *EmbeddingStore) Write(ctx context.Context, polarity entity.Polarity, texts []string) error {
	if len(texts) == 0 {
		return nil
	}

	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		if !errors.Is(err, entity.ErrEmbedding) {
			err = fmt.Errorf("%w: %w", entity.ErrEmbedding, err)
		}
		return fmt.Errorf("embed %s fragments: %w", polarity, err)
	}
	if len(vectors) != len(texts) {
		return fmt.Errorf("%w: got %d vectors for %d texts", entity.ErrEmbedding, len(vectors), len(texts))
	}

	records := make([]entity.EmbeddingRecord, len(texts))
	for i, text := range texts {
		records[i] = entity.EmbeddingRecord{Text: text, Polarity: polarity, Vector: vectors[i]}
	}

	if err := s.repo.Write(ctx, polarity, records); err != nil {
		return fmt.Errorf("%w: write %s: %w", entity.ErrStoreUnavailable, polarity, err)
	}
	return nil
}

// ReadAll returns every record of the partition of polarity.
func (s *EmbeddingStore) ReadAll(ctx context.Context, polarity entity.Polarity) ([]entity.EmbeddingRecord, error) {
	records, err := s.repo.ReadAll(ctx, polarity)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", entity.ErrStoreUnavailable, polarity, err)
	}
	return records, nil
}

// Lock takes the store's run lock.
func (s *EmbeddingStore) Lock(ctx context.Context) (func(), error) {
	release, err := s.repo.Lock(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: lock: %w", entity.ErrStoreUnavailable, err)
	}
	return release, nil
}
