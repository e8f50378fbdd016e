package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yt-sentiment/internal/domain/entity"
	workerPkg "yt-sentiment/internal/infra/worker"
	"yt-sentiment/internal/usecase/analysis"
)

var testMetrics = workerPkg.NewWorkerMetrics()

/* ───────── stubs ───────── */

type stubRunner struct {
	mu       sync.Mutex
	requests []analysis.Request
	results  map[string]*entity.AnalysisResult
	errs     map[string]error
	block    chan struct{}
}

func (s *stubRunner) Run(ctx context.Context, req analysis.Request) (*entity.AnalysisResult, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	if s.block != nil {
		<-s.block
	}
	return s.results[req.Product], s.errs[req.Product]
}

func result(product string) *entity.AnalysisResult {
	return &entity.AnalysisResult{
		RunID:          "run-" + slugify(product),
		Product:        product,
		AcceptedVideos: []entity.VideoRef{entity.NewVideoRef("dQw4w9WgXcQ")},
		PositiveTopics: []entity.TopicSummary{entity.NewOthersSummary(entity.PolarityPositive, []string{"good"})},
		NegativeTopics: []entity.TopicSummary{entity.NewOthersSummary(entity.PolarityNegative, nil)},
		GeneratedAt:    time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC),
	}
}

func newJob(t *testing.T, runner Runner, watchlist string) (*watchlistJob, *workerPkg.HealthServer) {
	t.Helper()
	dir := t.TempDir()
	wlPath := filepath.Join(dir, "watchlist.yaml")
	require.NoError(t, os.WriteFile(wlPath, []byte(watchlist), 0o600))

	cfg := workerPkg.DefaultConfig()
	cfg.WatchlistFile = wlPath
	cfg.ResultsDir = filepath.Join(dir, "results")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	health := workerPkg.NewHealthServer("127.0.0.1:0", logger)

	tick := time.Date(2026, 5, 6, 6, 0, 0, 0, time.UTC)
	return &watchlistJob{
		runner:  runner,
		cfg:     &cfg,
		metrics: testMetrics,
		health:  health,
		logger:  logger,
		now: func() time.Time {
			tick = tick.Add(time.Minute)
			return tick
		},
	}, health
}

const twoProducts = `
products:
  - name: Pixel 9
    count: 5
  - name: Galaxy S24
`

/* ───────── watchlistJob ───────── */

func TestWatchlistJob_AllSucceed(t *testing.T) {
	runner := &stubRunner{results: map[string]*entity.AnalysisResult{
		"Pixel 9":    result("Pixel 9"),
		"Galaxy S24": result("Galaxy S24"),
	}}
	job, _ := newJob(t, runner, twoProducts)

	before := testutil.ToFloat64(testMetrics.CronJobRunsTotal.WithLabelValues("success"))
	summary := job.runOnce(context.Background())

	assert.Equal(t, statusSuccess, summary.Status)
	assert.Equal(t, 2, summary.Products)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, []analysis.Request{{Product: "Pixel 9", Count: 5}, {Product: "Galaxy S24"}}, runner.requests)

	files, err := filepath.Glob(filepath.Join(job.cfg.ResultsDir, "*.json"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(job.cfg.ResultsDir, "pixel-9-20260506T070809Z.json"),
		filepath.Join(job.cfg.ResultsDir, "galaxy-s24-20260506T070809Z.json"),
	}, files)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	var decoded entity.AnalysisResult
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.NotEmpty(t, decoded.RunID)

	job.Run(context.Background())
	assert.Equal(t, before+1, testutil.ToFloat64(testMetrics.CronJobRunsTotal.WithLabelValues("success")))
}

func TestWatchlistJob_PartialAndFailed(t *testing.T) {
	runner := &stubRunner{
		results: map[string]*entity.AnalysisResult{"Pixel 9": result("Pixel 9")},
		errs: map[string]error{
			"Pixel 9":    &entity.PolarityError{Polarity: entity.PolarityNegative, Err: entity.ErrEmbedding},
			"Galaxy S24": entity.ErrDiscovery,
		},
	}
	job, health := newJob(t, runner, twoProducts)

	job.Run(context.Background())

	rec := get(t, health, "/health/last-run")
	var summary workerPkg.RunSummary
	require.NoError(t, json.Unmarshal(rec, &summary))
	assert.Equal(t, statusPartial, summary.Status)
	assert.Equal(t, 1, summary.Partial)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, time.Minute, summary.FinishedAt.Sub(summary.StartedAt))

	files, err := filepath.Glob(filepath.Join(job.cfg.ResultsDir, "*.json"))
	require.NoError(t, err)
	assert.Len(t, files, 1, "partial results are written, failed runs are not")
}

func TestWatchlistJob_AllFail(t *testing.T) {
	runner := &stubRunner{errs: map[string]error{
		"Pixel 9":    errors.New("boom"),
		"Galaxy S24": errors.New("boom"),
	}}
	job, _ := newJob(t, runner, twoProducts)

	assert.Equal(t, statusFailure, job.runOnce(context.Background()).Status)
}

func TestWatchlistJob_BadWatchlist(t *testing.T) {
	runner := &stubRunner{}
	job, _ := newJob(t, runner, "products: []\n")

	summary := job.runOnce(context.Background())
	assert.Equal(t, statusFailure, summary.Status)
	assert.Empty(t, runner.requests)
}

func TestWatchlistJob_CancelledContextStopsRun(t *testing.T) {
	runner := &stubRunner{results: map[string]*entity.AnalysisResult{"Pixel 9": result("Pixel 9")}}
	job, _ := newJob(t, runner, twoProducts)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary := job.runOnce(ctx)
	assert.Equal(t, statusFailure, summary.Status)
	assert.Equal(t, 2, summary.Failed)
	assert.Empty(t, runner.requests)
}

func TestWatchlistJob_SkipsOverlappingRun(t *testing.T) {
	runner := &stubRunner{
		results: map[string]*entity.AnalysisResult{"Pixel 9": result("Pixel 9"), "Galaxy S24": result("Galaxy S24")},
		block:   make(chan struct{}),
	}
	job, _ := newJob(t, runner, twoProducts)

	done := make(chan struct{})
	go func() {
		job.Run(context.Background())
		close(done)
	}()

	require.Eventually(t, func() bool {
		runner.mu.Lock()
		defer runner.mu.Unlock()
		return len(runner.requests) == 1
	}, time.Second, 5*time.Millisecond)

	before := testutil.ToFloat64(testMetrics.CronJobRunsTotal.WithLabelValues("skipped"))
	job.Run(context.Background())
	assert.Equal(t, before+1, testutil.ToFloat64(testMetrics.CronJobRunsTotal.WithLabelValues("skipped")))

	close(runner.block)
	<-done
}

/* ───────── helpers ───────── */

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Pixel 9":           "pixel-9",
		"Galaxy S24, Ultra": "galaxy-s24-ultra",
		"  iPhone 16 Pro! ": "iphone-16-pro",
		"Ümlaut":            "mlaut",
		"!!!":               "product",
	}
	for in, want := range tests {
		assert.Equal(t, want, slugify(in), in)
	}
}

func TestWriteResultFile_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()

	path, err := writeResultFile(dir, result("Pixel 9"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "pixel-9-20260506T070809Z.json"), path)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func get(t *testing.T, h *workerPkg.HealthServer, path string) []byte {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.Bytes()
}
