package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"yt-sentiment/internal/config"
	"yt-sentiment/internal/resilience/retry"
)

// Claude completes prompts with Anthropic's Messages API.
// Anthropic exposes no per-request safety settings, so DisableSafetyFilters has no effect here.
type Claude struct {
	caller
	client    anthropic.Client
	maxTokens int64
}

// NewClaude creates a Claude completer. Extra request options are applied after the API key.
func NewClaude(cfg *config.ProviderConfig, opts ...option.RequestOption) *Claude {
	opts = append([]option.RequestOption{
		option.WithAPIKey(cfg.AnthropicAPIKey),
		// Retries are handled by the caller's retry policy.
		option.WithMaxRetries(0),
	}, opts...)

	return &Claude{
		caller:    newCaller(config.ProviderClaude, cfg.ClaudeModel, cfg.LLMTimeout),
		client:    anthropic.NewClient(opts...),
		maxTokens: int64(cfg.MaxTokens),
	}
}

// Complete implements Completer.
func (c *Claude) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	return c.call(ctx, prompt, func(ctx context.Context) (string, error) {
		return c.doComplete(ctx, prompt, temperature)
	})
}

func (c *Claude) doComplete(ctx context.Context, prompt string, temperature float64) (string, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   c.maxTokens,
		Temperature: anthropic.Float(temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", &retry.HTTPError{StatusCode: apiErr.StatusCode, Message: apiErr.Error()}
		}
		return "", err
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(tb.Text)
		}
	}
	if sb.Len() == 0 {
		return "", errEmptyResponse(c.provider)
	}
	return sb.String(), nil
}
