package config

import (
	"errors"
	"fmt"
	"time"

	envconfig "yt-sentiment/pkg/config"
)

// Supported generative and embedding providers.
const (
	ProviderGemini = "gemini"
	ProviderClaude = "claude"
	ProviderOpenAI = "openai"
)

// ProviderConfig holds credentials and model choices for external services.
// It is constructed once and injected into each client; no client reads the
// environment on its own.
type ProviderConfig struct {
	// LLMProvider selects the completion backend: gemini, claude or openai.
	LLMProvider string
	// EmbeddingProvider selects the embedding backend: gemini or openai.
	EmbeddingProvider string

	GeminiAPIKey         string
	GeminiModel          string
	GeminiEmbeddingModel string

	AnthropicAPIKey string
	ClaudeModel     string

	OpenAIAPIKey         string
	OpenAIModel          string
	OpenAIEmbeddingModel string
	// OpenAIBaseURL points the OpenAI client at a compatible gateway when set.
	OpenAIBaseURL string

	// YouTubeAPIKey enables the Data API for search. Without it search falls back
	// to the public results page.
	YouTubeAPIKey string

	// DisableSafetyFilters turns off provider content filters where the provider
	// exposes them. Product reviews routinely trip generic harm filters.
	DisableSafetyFilters bool

	// MaxTokens caps completion length.
	MaxTokens int

	// LLMTimeout bounds one completion call.
	LLMTimeout time.Duration
	// EmbeddingTimeout bounds one embedding batch.
	EmbeddingTimeout time.Duration
}

// LoadProviderConfig loads ProviderConfig from environment variables.
//
// Environment variables:
//   - LLM_PROVIDER (gemini|claude|openai, default gemini)
//   - EMBEDDING_PROVIDER (gemini|openai, default gemini)
//   - GEMINI_API_KEY, GEMINI_MODEL (default gemini-2.0-flash), GEMINI_EMBEDDING_MODEL (default embedding-001)
//   - ANTHROPIC_API_KEY, CLAUDE_MODEL (default claude-sonnet-4-5-20250929)
//   - OPENAI_API_KEY, OPENAI_MODEL (default gpt-4o-mini), OPENAI_EMBEDDING_MODEL (default text-embedding-3-small), OPENAI_BASE_URL
//   - YOUTUBE_API_KEY
//   - LLM_DISABLE_SAFETY_FILTERS (bool, default true)
//   - LLM_MAX_TOKENS (int, default 2048)
//   - LLM_TIMEOUT (duration, default 120s), EMBEDDING_TIMEOUT (duration, default 30s)
func LoadProviderConfig() (*ProviderConfig, error) {
	cfg := &ProviderConfig{
		LLMProvider:          envconfig.GetEnvString("LLM_PROVIDER", ProviderGemini),
		EmbeddingProvider:    envconfig.GetEnvString("EMBEDDING_PROVIDER", ProviderGemini),
		GeminiAPIKey:         envconfig.GetEnvString("GEMINI_API_KEY", ""),
		GeminiModel:          envconfig.GetEnvString("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiEmbeddingModel: envconfig.GetEnvString("GEMINI_EMBEDDING_MODEL", "embedding-001"),
		AnthropicAPIKey:      envconfig.GetEnvString("ANTHROPIC_API_KEY", ""),
		ClaudeModel:          envconfig.GetEnvString("CLAUDE_MODEL", "claude-sonnet-4-5-20250929"),
		OpenAIAPIKey:         envconfig.GetEnvString("OPENAI_API_KEY", ""),
		OpenAIModel:          envconfig.GetEnvString("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIEmbeddingModel: envconfig.GetEnvString("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
		OpenAIBaseURL:        envconfig.GetEnvString("OPENAI_BASE_URL", ""),
		YouTubeAPIKey:        envconfig.GetEnvString("YOUTUBE_API_KEY", ""),
		DisableSafetyFilters: envconfig.GetEnvBool("LLM_DISABLE_SAFETY_FILTERS", true),
		MaxTokens:            envconfig.GetEnvInt("LLM_MAX_TOKENS", 2048),
		LLMTimeout:           envconfig.GetEnvDuration("LLM_TIMEOUT", 120*time.Second),
		EmbeddingTimeout:     envconfig.GetEnvDuration("EMBEDDING_TIMEOUT", 30*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid provider configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the selected providers are known and have credentials.
func (c *ProviderConfig) Validate() error {
	var errs []error

	switch c.LLMProvider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is required when LLM_PROVIDER=gemini"))
		}
	case ProviderClaude:
		if c.AnthropicAPIKey == "" {
			errs = append(errs, errors.New("ANTHROPIC_API_KEY is required when LLM_PROVIDER=claude"))
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required when LLM_PROVIDER=openai"))
		}
	default:
		errs = append(errs, fmt.Errorf("LLM_PROVIDER %q is not supported (use gemini, claude or openai)", c.LLMProvider))
	}

	switch c.EmbeddingProvider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is required when EMBEDDING_PROVIDER=gemini"))
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required when EMBEDDING_PROVIDER=openai"))
		}
	default:
		errs = append(errs, fmt.Errorf("EMBEDDING_PROVIDER %q is not supported (use gemini or openai)", c.EmbeddingProvider))
	}

	if c.MaxTokens <= 0 {
		errs = append(errs, errors.New("LLM_MAX_TOKENS must be positive"))
	}
	if err := envconfig.ValidatePositiveDuration(c.LLMTimeout); err != nil {
		errs = append(errs, fmt.Errorf("LLM_TIMEOUT: %w", err))
	}
	if err := envconfig.ValidatePositiveDuration(c.EmbeddingTimeout); err != nil {
		errs = append(errs, fmt.Errorf("EMBEDDING_TIMEOUT: %w", err))
	}

	return errors.Join(errs...)
}
