// Package llm provides text completion clients for Gemini, Claude and OpenAI.
// Every client runs its calls through a circuit breaker and retry policy,
// converts provider errors into *retry.HTTPError and records request metrics.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"yt-sentiment/internal/config"
	"yt-sentiment/internal/observability/metrics"
	"yt-sentiment/internal/resilience"
	"yt-sentiment/internal/resilience/circuitbreaker"
	"yt-sentiment/internal/resilience/retry"
)

// Completer turns a prompt into model text.
type Completer interface {
	Complete(ctx context.Context, prompt string, temperature float64) (string, error)
}

// New builds the completer selected by cfg.LLMProvider.
func New(ctx context.Context, cfg *config.ProviderConfig) (Completer, error) {
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		return NewGemini(ctx, cfg)
	case config.ProviderClaude:
		return NewClaude(cfg), nil
	case config.ProviderOpenAI:
		return NewOpenAI(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.LLMProvider)
	}
}

// caller holds what every provider client shares.
type caller struct {
	provider        string
	model           string
	timeout         time.Duration
	circuitBreaker  *circuitbreaker.CircuitBreaker
	retryConfig     retry.Config
	metricsRecorder MetricsRecorder
}

func newCaller(provider, model string, timeout time.Duration) caller {
	return caller{
		provider:        provider,
		model:           model,
		timeout:         timeout,
		circuitBreaker:  circuitbreaker.New(circuitbreaker.LLMAPIConfig(provider)),
		retryConfig:     retry.LLMConfig(),
		metricsRecorder: NewPrometheusMetrics(),
	}
}

// call runs one completion attempt loop with timeout, breaker, retry, logging and metrics.
func (c *caller) call(ctx context.Context, prompt string, fn func(ctx context.Context) (string, error)) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	operation := metrics.Operation(ctx)
	start := time.Now()

	text, err := resilience.Call(ctx, c.circuitBreaker, c.retryConfig, func() (string, error) {
		return fn(ctx)
	})

	duration := time.Since(start)
	c.metricsRecorder.RecordRequest(c.provider, operation, err, duration)

	if err != nil {
		slog.WarnContext(ctx, "completion failed",
			slog.String("provider", c.provider),
			slog.String("operation", operation),
			slog.Duration("duration", duration),
			slog.Any("error", err))
		return "", fmt.Errorf("%s completion: %w", c.provider, err)
	}

	slog.DebugContext(ctx, "completion succeeded",
		slog.String("provider", c.provider),
		slog.String("model", c.model),
		slog.String("operation", operation),
		slog.Int("prompt_length", len(prompt)),
		slog.Int("response_length", len(text)),
		slog.Duration("duration", duration))

	return text, nil
}

// errEmptyResponse is returned when the provider answers without text. It is
// not retried: the same prompt yields the same refusal.
func errEmptyResponse(provider string) error {
	return &retry.HTTPError{StatusCode: http.StatusUnprocessableEntity, Message: provider + " returned no text"}
}
