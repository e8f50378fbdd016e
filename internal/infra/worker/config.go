package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"yt-sentiment/pkg/config"
)

// WorkerConfig holds the configuration of the scheduled watchlist worker.
//
// Every field has a default and a validation rule. LoadConfigFromEnv never
// fails: an invalid environment value is replaced by its default, logged and
// counted in WorkerMetrics.
type WorkerConfig struct {
	// CronSchedule is the five-field cron expression for watchlist runs.
	// Default: "0 6 * * *" (every day at 06:00)
	CronSchedule string

	// Timezone is the IANA timezone the schedule is evaluated in.
	// Default: "UTC"
	Timezone string

	// WatchlistFile is the YAML file listing the products to analyze.
	// Default: "watchlist.yaml"
	WatchlistFile string

	// ResultsDir receives one JSON file per product per run.
	// Default: "results"
	ResultsDir string

	// RunTimeout bounds one product's analysis.
	// Range: 1m-4h. Default: 30m
	RunTimeout time.Duration

	// MetricsPort serves /metrics, /health and /health/ready.
	// Range: 1024-65535. Default: 9090
	MetricsPort int

	// RunOnStart triggers one watchlist pass immediately after startup.
	// Default: false
	RunOnStart bool
}

// DefaultConfig returns the worker defaults.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		CronSchedule:  "0 6 * * *",
		Timezone:      "UTC",
		WatchlistFile: "watchlist.yaml",
		ResultsDir:    "results",
		RunTimeout:    30 * time.Minute,
		MetricsPort:   9090,
	}
}

const (
	minRunTimeout = time.Minute
	maxRunTimeout = 4 * time.Hour
)

// Validate checks every field and reports all violations together.
func (c *WorkerConfig) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if strings.TrimSpace(c.WatchlistFile) == "" {
		errs = append(errs, errors.New("watchlist file: cannot be empty"))
	}
	if strings.TrimSpace(c.ResultsDir) == "" {
		errs = append(errs, errors.New("results dir: cannot be empty"))
	}
	if err := config.ValidateDurationRange(c.RunTimeout, minRunTimeout, maxRunTimeout); err != nil {
		errs = append(errs, fmt.Errorf("run timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.MetricsPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("metrics port: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %w", errors.Join(errs...))
	}
	return nil
}

// LoadConfigFromEnv loads WorkerConfig from the environment with a fail-open
// strategy: each invalid value falls back to its default, a warning is logged
// and the fallback is recorded in metrics. The returned error is always nil.
//
// Environment variables:
//   - CRON_SCHEDULE: cron expression (default "0 6 * * *")
//   - WORKER_TIMEZONE: IANA timezone (default "UTC")
//   - WATCHLIST_FILE: YAML watchlist path (default "watchlist.yaml")
//   - RESULTS_DIR: output directory (default "results")
//   - RUN_TIMEOUT: per-product timeout, 1m-4h (default 30m)
//   - METRICS_PORT: 1024-65535 (default 9090)
//   - RUN_ON_START: bool (default false)
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, error) {
	cfg := DefaultConfig()
	anyFallback := false

	record := func(field, envKey, warning string) {
		anyFallback = true
		metrics.RecordValidationError(field)
		metrics.RecordFallback(field, "default")
		logger.Warn("Configuration fallback applied",
			slog.String("field", field),
			slog.String("env_key", envKey),
			slog.String("warning", warning))
	}

	if r := config.LoadWithFallback("CRON_SCHEDULE", cfg.CronSchedule, config.ParseString, config.ValidateCronSchedule); r.FallbackApplied {
		record("cron_schedule", "CRON_SCHEDULE", r.Warning)
	} else {
		cfg.CronSchedule = r.Value
	}

	if r := config.LoadWithFallback("WORKER_TIMEZONE", cfg.Timezone, config.ParseString, config.ValidateTimezone); r.FallbackApplied {
		record("timezone", "WORKER_TIMEZONE", r.Warning)
	} else {
		cfg.Timezone = r.Value
	}

	cfg.WatchlistFile = config.GetEnvString("WATCHLIST_FILE", cfg.WatchlistFile)
	cfg.ResultsDir = config.GetEnvString("RESULTS_DIR", cfg.ResultsDir)

	if r := config.LoadWithFallback("RUN_TIMEOUT", cfg.RunTimeout, config.ParseDuration, func(d time.Duration) error {
		return config.ValidateDurationRange(d, minRunTimeout, maxRunTimeout)
	}); r.FallbackApplied {
		record("run_timeout", "RUN_TIMEOUT", r.Warning)
	} else {
		cfg.RunTimeout = r.Value
	}

	if r := config.LoadWithFallback("METRICS_PORT", cfg.MetricsPort, config.ParseInt, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	}); r.FallbackApplied {
		record("metrics_port", "METRICS_PORT", r.Warning)
	} else {
		cfg.MetricsPort = r.Value
	}

	cfg.RunOnStart = config.GetEnvBool("RUN_ON_START", cfg.RunOnStart)

	metrics.SetFallbackActive(anyFallback)
	metrics.RecordLoadTimestamp()

	return &cfg, nil
}
