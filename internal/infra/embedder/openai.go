package embedder

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"

	"yt-sentiment/internal/config"
	"yt-sentiment/internal/resilience/retry"
)

// openAIBatchLimit keeps request bodies well below the API's input cap.
const openAIBatchLimit = 512

// OpenAI embeds texts with the Embeddings API.
type OpenAI struct {
	batcher
	client *openai.Client
	model  openai.EmbeddingModel
}

// NewOpenAI creates an OpenAI embedder. cfg.OpenAIBaseURL overrides the API endpoint.
func NewOpenAI(cfg *config.ProviderConfig) *OpenAI {
	clientCfg := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		clientCfg.BaseURL = cfg.OpenAIBaseURL
	}

	return &OpenAI{
		batcher: newBatcher(config.ProviderOpenAI, openAIBatchLimit, cfg.EmbeddingTimeout),
		client:  openai.NewClientWithConfig(clientCfg),
		model:   openai.EmbeddingModel(cfg.OpenAIEmbeddingModel),
	}
}

// Embed implements Embedder.
func (o *OpenAI) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return o.embed(ctx, texts, o.doEmbed)
}

func (o *OpenAI) doEmbed(ctx context.Context, batch []string) ([][]float32, error) {
	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: batch,
		Model: o.model,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return nil, &retry.HTTPError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) {
			return nil, &retry.HTTPError{StatusCode: reqErr.HTTPStatusCode, Message: reqErr.Error()}
		}
		return nil, err
	}

	// The API documents index order but does not promise it.
	vectors := make([][]float32, len(batch))
	for _, d := range resp.Data {
		if d.Index >= 0 && d.Index < len(vectors) {
			vectors[d.Index] = d.Embedding
		}
	}
	for _, v := range vectors {
		if v == nil {
			return nil, errors.New("openai embeddings response is missing an index")
		}
	}
	return vectors, nil
}
