// Package config loads the sentiment pipeline's configuration from the environment.
// Values are read once at startup and passed explicitly into constructors.
package config

import (
	"errors"
	"fmt"
	"time"

	envconfig "yt-sentiment/pkg/config"
)

// PipelineConfig holds the tunables of one analysis run.
type PipelineConfig struct {
	// ClusterCutThreshold is the dendrogram height at which topic clusters are cut.
	// Tuned to one embedding space; change it together with the embedding model.
	// Default: 0.5
	ClusterCutThreshold float64

	// LabelRetryBudget bounds the total time spent retrying one topic label.
	// Default: 300s
	LabelRetryBudget time.Duration

	// VideoSearchCount is the number of videos requested from search.
	// Range: 1-50. Default: 20
	VideoSearchCount int

	// TranscriptLanguages lists acceptable caption languages in priority order.
	// Default: en, English
	TranscriptLanguages []string

	// ExtractParallelism bounds concurrent per-video transcript and extraction work.
	// Range: 1-32. Default: 4
	ExtractParallelism int

	// SearchTopK is the number of hits returned per polarity by similarity search.
	// Range: 1-500. Default: 50
	SearchTopK int

	// ChannelIDs are YouTube channels whose feeds supplement search results.
	ChannelIDs []string

	// YouTubeRateLimit is the sustained request rate towards YouTube, per second.
	// Default: 2
	YouTubeRateLimit float64

	// TranscriptCacheTTL is how long fetched transcripts stay in Redis.
	// Default: 24h
	TranscriptCacheTTL time.Duration
}

// DefaultPipelineConfig returns the reference tunables.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		ClusterCutThreshold: 0.5,
		LabelRetryBudget:    300 * time.Second,
		VideoSearchCount:    20,
		TranscriptLanguages: []string{"en", "English"},
		ExtractParallelism:  4,
		SearchTopK:          50,
		YouTubeRateLimit:    2,
		TranscriptCacheTTL:  24 * time.Hour,
	}
}

// LoadPipelineConfig loads PipelineConfig from environment variables.
//
// Environment variables:
//   - CLUSTER_CUT_THRESHOLD (float, default 0.5)
//   - LABEL_RETRY_BUDGET (duration, default 300s)
//   - VIDEO_SEARCH_COUNT (int, default 20)
//   - TRANSCRIPT_LANGUAGES (list, default "en,English")
//   - EXTRACT_PARALLELISM (int, default 4)
//   - SEARCH_TOP_K (int, default 50)
//   - YOUTUBE_CHANNEL_IDS (list, default empty)
//   - YOUTUBE_RATE_LIMIT_RPS (float, default 2)
//   - TRANSCRIPT_CACHE_TTL (duration, default 24h)
func LoadPipelineConfig() (*PipelineConfig, error) {
	def := DefaultPipelineConfig()

	cfg := &PipelineConfig{
		ClusterCutThreshold: envconfig.GetEnvFloat("CLUSTER_CUT_THRESHOLD", def.ClusterCutThreshold),
		LabelRetryBudget:    envconfig.GetEnvDuration("LABEL_RETRY_BUDGET", def.LabelRetryBudget),
		VideoSearchCount:    envconfig.GetEnvInt("VIDEO_SEARCH_COUNT", def.VideoSearchCount),
		TranscriptLanguages: envconfig.GetEnvStringList("TRANSCRIPT_LANGUAGES", def.TranscriptLanguages),
		ExtractParallelism:  envconfig.GetEnvInt("EXTRACT_PARALLELISM", def.ExtractParallelism),
		SearchTopK:          envconfig.GetEnvInt("SEARCH_TOP_K", def.SearchTopK),
		ChannelIDs:          envconfig.GetEnvStringList("YOUTUBE_CHANNEL_IDS", nil),
		YouTubeRateLimit:    envconfig.GetEnvFloat("YOUTUBE_RATE_LIMIT_RPS", def.YouTubeRateLimit),
		TranscriptCacheTTL:  envconfig.GetEnvDuration("TRANSCRIPT_CACHE_TTL", def.TranscriptCacheTTL),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline configuration: %w", err)
	}

	return cfg, nil
}

// MaxVideoSearchCount is the largest count a single search may request.
const MaxVideoSearchCount = 50

// Validate checks configuration correctness. All violations are reported together.
func (c *PipelineConfig) Validate() error {
	var errs []error

	if err := envconfig.ValidateFloatRange(c.ClusterCutThreshold, 0, 2); err != nil {
		errs = append(errs, fmt.Errorf("CLUSTER_CUT_THRESHOLD: %w", err))
	}
	if err := envconfig.ValidatePositiveDuration(c.LabelRetryBudget); err != nil {
		errs = append(errs, fmt.Errorf("LABEL_RETRY_BUDGET: %w", err))
	}
	if err := envconfig.ValidateIntRange(c.VideoSearchCount, 1, MaxVideoSearchCount); err != nil {
		errs = append(errs, fmt.Errorf("VIDEO_SEARCH_COUNT: %w", err))
	}
	if len(c.TranscriptLanguages) == 0 {
		errs = append(errs, errors.New("TRANSCRIPT_LANGUAGES cannot be empty"))
	}
	if err := envconfig.ValidateIntRange(c.ExtractParallelism, 1, 32); err != nil {
		errs = append(errs, fmt.Errorf("EXTRACT_PARALLELISM: %w", err))
	}
	if err := envconfig.ValidateIntRange(c.SearchTopK, 1, 500); err != nil {
		errs = append(errs, fmt.Errorf("SEARCH_TOP_K: %w", err))
	}
	if c.YouTubeRateLimit <= 0 {
		errs = append(errs, errors.New("YOUTUBE_RATE_LIMIT_RPS must be positive"))
	}
	if err := envconfig.ValidateNonNegative(c.TranscriptCacheTTL); err != nil {
		errs = append(errs, fmt.Errorf("TRANSCRIPT_CACHE_TTL: %w", err))
	}

	return errors.Join(errs...)
}
