package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHealthServer() *HealthServer {
	return NewHealthServer("127.0.0.1:0", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthServer_Liveness(t *testing.T) {
	rec := get(t, newTestHealthServer().Handler(), "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHealthServer_Readiness(t *testing.T) {
	s := newTestHealthServer()
	h := s.Handler()

	rec := get(t, h, "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"not ready"}`, rec.Body.String())

	s.SetReady(true)
	rec = get(t, h, "/health/ready")
	assert.Equal(t, http.StatusOK, rec.Code)

	s.SetReady(false)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, h, "/health/ready").Code)
}

func TestHealthServer_LastRun(t *testing.T) {
	s := newTestHealthServer()
	h := s.Handler()

	assert.Equal(t, http.StatusNotFound, get(t, h, "/health/last-run").Code)

	started := time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)
	s.SetLastRun(RunSummary{
		StartedAt:  started,
		FinishedAt: started.Add(12 * time.Minute),
		Status:     "partial",
		Products:   3,
		Succeeded:  2,
		Failed:     1,
	})

	rec := get(t, h, "/health/last-run")
	require.Equal(t, http.StatusOK, rec.Code)

	var got RunSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "partial", got.Status)
	assert.Equal(t, 3, got.Products)
	assert.Equal(t, 1, got.Failed)
	assert.True(t, got.StartedAt.Equal(started))
}

func TestHealthServer_Metrics(t *testing.T) {
	globalTestMetrics.RecordJobRun("success")

	rec := get(t, newTestHealthServer().Handler(), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "worker_cron_job_runs_total")
}

func TestHealthServer_StartAndShutdown(t *testing.T) {
	// Reserve a free port, then hand it to the server.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	s := NewHealthServer(addr, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, http.ErrServerClosed))
	case <-time.After(6 * time.Second):
		t.Fatal("server did not shut down")
	}
}
