// Package app assembles the analysis pipeline from configuration. The CLI,
// the worker and the API server share it so every entry point runs the same
// wiring.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"yt-sentiment/internal/config"
	"yt-sentiment/internal/infra/adapter/persistence/postgres"
	"yt-sentiment/internal/infra/adapter/persistence/sqlite"
	"yt-sentiment/internal/infra/cache"
	"yt-sentiment/internal/infra/db"
	"yt-sentiment/internal/infra/embedder"
	"yt-sentiment/internal/infra/llm"
	"yt-sentiment/internal/infra/youtube"
	"yt-sentiment/internal/repository"
	"yt-sentiment/internal/usecase/analysis"
	"yt-sentiment/internal/usecase/cluster"
	"yt-sentiment/internal/usecase/discovery"
	"yt-sentiment/internal/usecase/extract"
	"yt-sentiment/internal/usecase/label"
	"yt-sentiment/internal/usecase/search"

	envconfig "yt-sentiment/pkg/config"
)

// Options selects the backing stores.
type Options struct {
	// DatabaseURL selects the pgvector store. Empty means an in-memory SQLite store.
	DatabaseURL string
	// RedisURL enables the transcript cache when set.
	RedisURL string
	// ResetSchema drops and recreates the pgvector partition tables before
	// use. It has no effect on the in-memory store.
	ResetSchema bool
}

// OptionsFromEnv reads DATABASE_URL and REDIS_URL.
func OptionsFromEnv() Options {
	return Options{
		DatabaseURL: envconfig.GetEnvString("DATABASE_URL", ""),
		RedisURL:    envconfig.GetEnvString("REDIS_URL", ""),
	}
}

// Pipeline is a fully wired analysis pipeline.
type Pipeline struct {
	Aggregator *analysis.Aggregator
	Search     *search.Service
	Config     *config.PipelineConfig

	// DB backs the embedding store: the pgvector pool or the in-memory SQLite database.
	DB *sql.DB
	// Cache is the Redis store, nil when the transcript cache is disabled.
	Cache *cache.RedisStore

	closers []func() error
}

// Build loads pipeline and provider configuration from the environment and
// connects every collaborator. Close releases what Build opened.
func Build(ctx context.Context, logger *slog.Logger, opts Options) (*Pipeline, error) {
	pipelineCfg, err := config.LoadPipelineConfig()
	if err != nil {
		return nil, err
	}
	providerCfg, err := config.LoadProviderConfig()
	if err != nil {
		return nil, err
	}

	p := &Pipeline{Config: pipelineCfg}
	ok := false
	defer func() {
		if !ok {
			_ = p.Close()
		}
	}()

	repo, err := p.openStore(ctx, logger, opts)
	if err != nil {
		return nil, err
	}

	ytClient := youtube.NewClient(nil, youtube.ClientConfig{RequestsPerSecond: pipelineCfg.YouTubeRateLimit})
	searcher, err := youtube.NewSearcher(ctx, ytClient, providerCfg.YouTubeAPIKey)
	if err != nil {
		return nil, err
	}

	var transcripts extract.TranscriptFetcher = youtube.NewTranscriptClient(ytClient)
	if opts.RedisURL != "" {
		store, err := cache.ConnectRedis(ctx, opts.RedisURL)
		if err != nil {
			return nil, err
		}
		p.Cache = store
		p.closers = append(p.closers, store.Close)
		transcripts = cache.NewTranscriptCache(transcripts, store, pipelineCfg.TranscriptCacheTTL)
		logger.Info("transcript cache enabled", slog.Duration("ttl", pipelineCfg.TranscriptCacheTTL))
	}

	completer, err := llm.New(ctx, providerCfg)
	if err != nil {
		return nil, err
	}
	emb, err := embedder.New(ctx, providerCfg)
	if err != nil {
		return nil, err
	}

	clusterer := cluster.New(pipelineCfg.ClusterCutThreshold)
	p.Aggregator = analysis.NewAggregator(
		discovery.NewService(searcher, youtube.NewChannelFeed(ytClient), pipelineCfg.ChannelIDs),
		extract.NewService(transcripts, completer, extract.Config{
			Languages:   pipelineCfg.TranscriptLanguages,
			Parallelism: pipelineCfg.ExtractParallelism,
		}),
		analysis.NewEmbeddingStore(repo, emb),
		clusterer,
		label.New(completer, pipelineCfg.LabelRetryBudget),
		analysis.Config{
			DefaultCount: pipelineCfg.VideoSearchCount,
			MaxCount:     config.MaxVideoSearchCount,
		},
	)
	p.Search = search.NewService(emb, repo, pipelineCfg.SearchTopK)

	logger.Info("pipeline ready",
		slog.String("llm_provider", providerCfg.LLMProvider),
		slog.String("embedding_provider", providerCfg.EmbeddingProvider),
		slog.Bool("youtube_data_api", providerCfg.YouTubeAPIKey != ""),
		slog.Int("channel_feeds", len(pipelineCfg.ChannelIDs)),
		slog.Float64("cluster_cut_threshold", clusterer.Threshold()))

	ok = true
	return p, nil
}

func (p *Pipeline) openStore(ctx context.Context, logger *slog.Logger, opts Options) (repository.SentimentEmbeddingRepository, error) {
	if opts.DatabaseURL == "" {
		database, err := sqlite.Open(sqlite.MemoryPath)
		if err != nil {
			return nil, err
		}
		p.closers = append(p.closers, database.Close)
		p.DB = database
		logger.Info("using in-memory embedding store")
		return sqlite.NewSentimentEmbeddingRepo(database), nil
	}

	database, err := db.Open(ctx, opts.DatabaseURL)
	if err != nil {
		return nil, err
	}
	p.closers = append(p.closers, database.Close)
	if err := prepareSchema(logger, database, opts.ResetSchema); err != nil {
		return nil, err
	}
	p.DB = database
	logger.Info("using pgvector embedding store")
	return postgres.NewSentimentEmbeddingRepo(database), nil
}

// prepareSchema migrates the pgvector store, dropping the partition tables
// first when reset is set.
func prepareSchema(logger *slog.Logger, database *sql.DB, reset bool) error {
	if reset {
		if err := db.MigrateDown(database); err != nil {
			return fmt.Errorf("reset schema: %w", err)
		}
		logger.Warn("embedding store schema dropped")
	}
	if err := db.MigrateUp(database); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}

// Close releases stores in reverse order of opening.
func (p *Pipeline) Close() error {
	var errs []error
	for i := len(p.closers) - 1; i >= 0; i-- {
		if err := p.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	p.closers = nil
	return errors.Join(errs...)
}
