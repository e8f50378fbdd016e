package search_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yt-sentiment/internal/domain/entity"
	"yt-sentiment/internal/infra/adapter/persistence/sqlite"
	"yt-sentiment/internal/usecase/search"
)

type stubEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (s *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = s.vectors[t]
	}
	return out, nil
}

func newService(t *testing.T, embedder search.Embedder) *search.Service {
	t.Helper()
	db, err := sqlite.Open(sqlite.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := sqlite.NewSentimentEmbeddingRepo(db)
	ctx := context.Background()
	require.NoError(t, repo.Write(ctx, entity.PolarityPositive, []entity.EmbeddingRecord{
		{Text: "sleek design", Vector: []float32{0, 1}},
		{Text: "great battery", Vector: []float32{1, 0}},
	}))
	require.NoError(t, repo.Write(ctx, entity.PolarityNegative, []entity.EmbeddingRecord{
		{Text: "battery drains fast", Vector: []float32{0.8, 0.2}},
	}))

	return search.NewService(embedder, repo, 1)
}

func TestSearch(t *testing.T) {
	svc := newService(t, &stubEmbedder{vectors: map[string][]float32{"battery": {1, 0}}})

	got, err := svc.Search(context.Background(), "  battery ", 0)
	require.NoError(t, err)

	assert.Equal(t, "battery", got.Query)
	require.Len(t, got.Positive, 1)
	assert.Equal(t, "great battery", got.Positive[0].Text)
	require.Len(t, got.Negative, 1)
	assert.Equal(t, "battery drains fast", got.Negative[0].Text)
	assert.Equal(t, entity.PolarityNegative, got.Negative[0].Polarity)
}

func TestSearch_ExplicitK(t *testing.T) {
	svc := newService(t, &stubEmbedder{vectors: map[string][]float32{"battery": {1, 0}}})

	got, err := svc.Search(context.Background(), "battery", 10)
	require.NoError(t, err)

	require.Len(t, got.Positive, 2)
	assert.GreaterOrEqual(t, got.Positive[0].Score, got.Positive[1].Score)
}

func TestSearch_EmptyQuery(t *testing.T) {
	svc := newService(t, &stubEmbedder{})

	_, err := svc.Search(context.Background(), "   ", 5)
	var verr *entity.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestSearch_EmbeddingError(t *testing.T) {
	svc := newService(t, &stubEmbedder{err: errors.Join(entity.ErrEmbedding, errors.New("401"))})

	_, err := svc.Search(context.Background(), "battery", 5)
	assert.ErrorIs(t, err, entity.ErrEmbedding)
}
