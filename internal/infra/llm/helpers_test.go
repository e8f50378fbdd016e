package llm

import (
	"sync"
	"time"

	"yt-sentiment/internal/config"
	"yt-sentiment/internal/resilience/retry"
)

type recordedRequest struct {
	provider  string
	operation string
	err       error
}

type stubRecorder struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (s *stubRecorder) RecordRequest(provider, operation string, err error, _ time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, recordedRequest{provider: provider, operation: operation, err: err})
}

// useFastRetry swaps in millisecond backoff and a stub recorder.
func useFastRetry(c *caller) *stubRecorder {
	rec := &stubRecorder{}
	c.retryConfig = retry.Config{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2,
	}
	c.metricsRecorder = rec
	return rec
}

func testProviderConfig() *config.ProviderConfig {
	return &config.ProviderConfig{
		LLMProvider:          config.ProviderGemini,
		EmbeddingProvider:    config.ProviderGemini,
		GeminiAPIKey:         "test-gemini",
		GeminiModel:          "gemini-2.0-flash",
		GeminiEmbeddingModel: "embedding-001",
		AnthropicAPIKey:      "test-anthropic",
		ClaudeModel:          "claude-sonnet-4-5-20250929",
		OpenAIAPIKey:         "test-openai",
		OpenAIModel:          "gpt-4o-mini",
		OpenAIEmbeddingModel: "text-embedding-3-small",
		DisableSafetyFilters: true,
		MaxTokens:            512,
		LLMTimeout:           5 * time.Second,
		EmbeddingTimeout:     5 * time.Second,
	}
}
