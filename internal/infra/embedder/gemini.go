package embedder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"yt-sentiment/internal/config"
	"yt-sentiment/internal/resilience/retry"
)

// geminiBatchLimit is the most requests one batchEmbedContents call accepts.
const geminiBatchLimit = 100

// Gemini embeds texts with the Generative Language batchEmbedContents method
// using the CLUSTERING task type.
type Gemini struct {
	batcher
	service *generativelanguage.Service
	model   string
}

// NewGemini creates a Gemini embedder. Extra options are appended after the API key.
func NewGemini(ctx context.Context, cfg *config.ProviderConfig, opts ...option.ClientOption) (*Gemini, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(cfg.GeminiAPIKey)}, opts...)
	svc, err := generativelanguage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gemini service: %w", err)
	}

	model := cfg.GeminiEmbeddingModel
	if !strings.HasPrefix(model, "models/") {
		model = "models/" + model
	}

	return &Gemini{
		batcher: newBatcher(config.ProviderGemini, geminiBatchLimit, cfg.EmbeddingTimeout),
		service: svc,
		model:   model,
	}, nil
}

// Embed implements Embedder.
func (g *Gemini) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return g.embed(ctx, texts, g.doEmbed)
}

func (g *Gemini) doEmbed(ctx context.Context, batch []string) ([][]float32, error) {
	req := &generativelanguage.BatchEmbedContentsRequest{
		Requests: make([]*generativelanguage.EmbedContentRequest, len(batch)),
	}
	for i, text := range batch {
		req.Requests[i] = &generativelanguage.EmbedContentRequest{
			Model:    g.model,
			TaskType: "CLUSTERING",
			Content: &generativelanguage.Content{
				Parts: []*generativelanguage.Part{{Text: text}},
			},
		}
	}

	resp, err := g.service.Models.BatchEmbedContents(g.model, req).Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			return nil, &retry.HTTPError{StatusCode: apiErr.Code, Message: apiErr.Message}
		}
		return nil, err
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		vectors[i] = toFloat32(e.Values)
	}
	return vectors, nil
}

func toFloat32(values []float64) []float32 {
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out
}
