// Command worker analyzes the products of a YAML watchlist on a cron schedule
// and writes each result as a JSON file.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"yt-sentiment/internal/app"
	workerPkg "yt-sentiment/internal/infra/worker"
	"yt-sentiment/internal/observability/logging"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}

	logger := logging.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load worker configuration (fail-open strategy)
	workerMetrics := workerPkg.NewWorkerMetrics()
	workerMetrics.MustRegister()
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.String("watchlist_file", workerConfig.WatchlistFile),
		slog.String("results_dir", workerConfig.ResultsDir),
		slog.Duration("run_timeout", workerConfig.RunTimeout),
		slog.Int("metrics_port", workerConfig.MetricsPort))

	healthAddr := fmt.Sprintf(":%d", workerConfig.MetricsPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	pipeline, err := app.Build(ctx, logger, app.OptionsFromEnv())
	if err != nil {
		logger.Error("failed to build pipeline", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := pipeline.Close(); err != nil {
			logger.Error("failed to close pipeline", slog.Any("error", err))
		}
	}()

	job := &watchlistJob{
		runner:  pipeline.Aggregator,
		cfg:     workerConfig,
		metrics: workerMetrics,
		health:  healthServer,
		logger:  logger,
		now:     time.Now,
	}

	startCronWorker(ctx, logger, job, workerConfig, healthServer)
}

// startCronWorker schedules job and blocks until ctx is cancelled, then waits
// for a running job to finish.
func startCronWorker(ctx context.Context, logger *slog.Logger, job *watchlistJob, cfg *workerPkg.WorkerConfig, healthServer *workerPkg.HealthServer) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	if _, err := c.AddFunc(cfg.CronSchedule, func() { job.Run(ctx) }); err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	healthServer.SetReady(true)
	logger.Info("worker started", slog.String("schedule", cfg.CronSchedule), slog.String("timezone", loc.String()))

	if cfg.RunOnStart {
		go job.Run(ctx)
	}

	<-ctx.Done()
	logger.Info("shutting down worker...")
	healthServer.SetReady(false)

	<-c.Stop().Done()
	// A RunOnStart pass is not tracked by cron; wait for it through the job lock.
	job.running.Lock()
	job.running.Unlock() //nolint:staticcheck // empty critical section waits for the running pass
	logger.Info("worker stopped")
}
