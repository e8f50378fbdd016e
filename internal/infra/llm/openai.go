package llm

import (
	"context"
	"errors"
	"math"

	openai "github.com/sashabaranov/go-openai"

	"yt-sentiment/internal/config"
	"yt-sentiment/internal/resilience/retry"
)

// OpenAI completes prompts with the Chat Completions API.
// OpenAI moderation is not configurable per request, so DisableSafetyFilters has no effect here.
type OpenAI struct {
	caller
	client    *openai.Client
	maxTokens int
}

// NewOpenAI creates an OpenAI completer. cfg.OpenAIBaseURL overrides the API endpoint.
func NewOpenAI(cfg *config.ProviderConfig) *OpenAI {
	clientCfg := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		clientCfg.BaseURL = cfg.OpenAIBaseURL
	}

	return &OpenAI{
		caller:    newCaller(config.ProviderOpenAI, cfg.OpenAIModel, cfg.LLMTimeout),
		client:    openai.NewClientWithConfig(clientCfg),
		maxTokens: cfg.MaxTokens,
	}
}

// Complete implements Completer.
func (o *OpenAI) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	return o.call(ctx, prompt, func(ctx context.Context) (string, error) {
		return o.doComplete(ctx, prompt, temperature)
	})
}

func (o *OpenAI) doComplete(ctx context.Context, prompt string, temperature float64) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		MaxTokens:   o.maxTokens,
		Temperature: requestTemperature(temperature),
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt,
		}},
	})
	if err != nil {
		return "", convertOpenAIError(err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", errEmptyResponse(o.provider)
	}
	return resp.Choices[0].Message.Content, nil
}

// requestTemperature maps t onto the request field. The client drops a zero
// temperature from the payload, which the API reads as 1.
func requestTemperature(t float64) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(t)
}

// convertOpenAIError maps go-openai errors onto *retry.HTTPError.
func convertOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &retry.HTTPError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &retry.HTTPError{StatusCode: reqErr.HTTPStatusCode, Message: reqErr.Error()}
	}
	return err
}
