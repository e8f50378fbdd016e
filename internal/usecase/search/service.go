// Package search ranks the fragments of the last analysis run by similarity to a free-text query.
package search

import (
	"context"
	"fmt"
	"strings"

	"yt-sentiment/internal/domain/entity"
	"yt-sentiment/internal/repository"
)

// Embedder computes one vector per text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Result holds the hits of each polarity, best first.
type Result struct {
	Query    string                   `json:"query"`
	Positive []entity.SimilarFragment `json:"positive"`
	Negative []entity.SimilarFragment `json:"negative"`
}

// Service runs similarity searches.
type Service struct {
	// embedder must be the provider that filled repo, or scores are meaningless.
	embedder    Embedder
	repo        repository.SentimentEmbeddingRepository
	defaultTopK int
}

// NewService creates a search service. defaultTopK applies when a search asks for k <= 0.
func NewService(embedder Embedder, repo repository.SentimentEmbeddingRepository, defaultTopK int) *Service {
	if defaultTopK <= 0 {
		defaultTopK = 50
	}
	return &Service{embedder: embedder, repo: repo, defaultTopK: defaultTopK}
}

// Search embeds query and returns up to k hits from each polarity partition.
func (s *Service) Search(ctx context.Context, query string, k int) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &entity.ValidationError{Field: "q", Message: "query is required"}
	}
	if k <= 0 {
		k = s.defaultTopK
	}

	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: got %d vectors for the query", entity.ErrEmbedding, len(vectors))
	}

	result := &Result{Query: query}
	for _, p := range entity.Polarities() {
		hits, err := s.repo.SearchSimilar(ctx, p, vectors[0], k)
		if err != nil {
			return nil, fmt.Errorf("%w: search %s: %w", entity.ErrStoreUnavailable, p, err)
		}
		if p == entity.PolarityNegative {
			result.Negative = hits
		} else {
			result.Positive = hits
		}
	}
	return result, nil
}
