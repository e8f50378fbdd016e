package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"yt-sentiment/internal/config"
	"yt-sentiment/internal/domain/entity"
	"yt-sentiment/internal/handler/http/respond"
	workerPkg "yt-sentiment/internal/infra/worker"
	"yt-sentiment/internal/usecase/analysis"
)

// Runner runs one analysis.
type Runner interface {
	Run(ctx context.Context, req analysis.Request) (*entity.AnalysisResult, error)
}

// Run and product statuses.
const (
	statusSuccess = "success"
	statusPartial = "partial"
	statusFailure = "failure"
)

// watchlistJob analyzes every watchlist product in order and writes one JSON
// result file per product. The watchlist is re-read on every run so edits take
// effect without a restart.
type watchlistJob struct {
	runner  Runner
	cfg     *workerPkg.WorkerConfig
	metrics *workerPkg.WorkerMetrics
	health  *workerPkg.HealthServer
	logger  *slog.Logger
	now     func() time.Time

	// running guards against overlapping runs when one outlasts the schedule.
	running sync.Mutex
}

// Run executes one pass. A pass that starts while another is in progress is skipped.
func (j *watchlistJob) Run(ctx context.Context) {
	if !j.running.TryLock() {
		j.logger.Warn("previous watchlist run still in progress, skipping")
		j.metrics.RecordJobRun("skipped")
		return
	}
	defer j.running.Unlock()

	summary := j.runOnce(ctx)

	j.metrics.RecordJobRun(summary.Status)
	j.metrics.RecordJobDuration(summary.FinishedAt.Sub(summary.StartedAt).Seconds())
	if summary.Status == statusSuccess {
		j.metrics.RecordLastSuccess()
	}
	if j.health != nil {
		j.health.SetLastRun(summary)
	}

	j.logger.Info("watchlist run completed",
		slog.String("status", summary.Status),
		slog.Int("products", summary.Products),
		slog.Int("succeeded", summary.Succeeded),
		slog.Int("partial", summary.Partial),
		slog.Int("failed", summary.Failed),
		slog.Duration("duration", summary.FinishedAt.Sub(summary.StartedAt)))
}

func (j *watchlistJob) runOnce(ctx context.Context) (summary workerPkg.RunSummary) {
	summary.StartedAt = j.now()
	defer func() { summary.FinishedAt = j.now() }()

	wl, err := config.LoadWatchlist(j.cfg.WatchlistFile)
	if err != nil {
		j.logger.Error("failed to load watchlist",
			slog.String("path", j.cfg.WatchlistFile),
			slog.Any("error", err))
		summary.Status = statusFailure
		return summary
	}

	if err := os.MkdirAll(j.cfg.ResultsDir, 0o750); err != nil {
		j.logger.Error("failed to create results dir",
			slog.String("path", j.cfg.ResultsDir),
			slog.Any("error", err))
		summary.Status = statusFailure
		return summary
	}

	summary.Products = len(wl.Products)
	for _, p := range wl.Products {
		if ctx.Err() != nil {
			summary.Failed += summary.Products - summary.Succeeded - summary.Partial - summary.Failed
			break
		}

		status := j.analyzeProduct(ctx, p)
		j.metrics.RecordProductProcessed(status)
		switch status {
		case statusSuccess:
			summary.Succeeded++
		case statusPartial:
			summary.Partial++
		default:
			summary.Failed++
		}
	}

	switch {
	case summary.Failed == summary.Products:
		summary.Status = statusFailure
	case summary.Succeeded == summary.Products:
		summary.Status = statusSuccess
	default:
		summary.Status = statusPartial
	}
	return summary
}

func (j *watchlistJob) analyzeProduct(ctx context.Context, p config.WatchedProduct) string {
	logger := j.logger.With(slog.String("product", p.Name))
	start := time.Now()

	runCtx, cancel := context.WithTimeout(ctx, j.cfg.RunTimeout)
	defer cancel()

	result, err := j.runner.Run(runCtx, analysis.Request{Product: p.Name, Count: p.Count})
	if result == nil {
		logger.Error("analysis failed", slog.String("error", respond.SanitizeError(err)))
		return statusFailure
	}

	path, writeErr := writeResultFile(j.cfg.ResultsDir, result)
	if writeErr != nil {
		logger.Error("failed to write result", slog.Any("error", writeErr))
		return statusFailure
	}

	pos, neg := result.SentimentShare()
	logger.Info("analysis stored",
		slog.String("run_id", result.RunID),
		slog.String("path", path),
		slog.Int("accepted_videos", len(result.AcceptedVideos)),
		slog.Int("skipped_videos", len(result.SkippedVideos)),
		slog.Int("positive_topics", len(result.PositiveTopics)),
		slog.Int("negative_topics", len(result.NegativeTopics)),
		slog.Float64("positive_share", pos),
		slog.Float64("negative_share", neg),
		slog.Duration("duration", time.Since(start)))

	if err != nil {
		logger.Warn("analysis finished with failures", slog.String("error", respond.SanitizeError(err)))
		return statusPartial
	}
	return statusSuccess
}

// writeResultFile writes r as <dir>/<slug>-<timestamp>.json through a
// temporary file so readers never see a half-written result.
func writeResultFile(dir string, r *entity.AnalysisResult) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}

	name := fmt.Sprintf("%s-%s.json", slugify(r.Product), r.GeneratedAt.UTC().Format("20060102T150405Z"))
	path := filepath.Join(dir, name)

	tmp, err := os.CreateTemp(dir, ".result-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("rename result: %w", err)
	}
	return path, nil
}

// slugify lowercases s and collapses every run of non-alphanumeric characters
// into a single dash.
func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "product"
	}
	return out
}
