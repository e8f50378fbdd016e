package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"yt-sentiment/internal/handler/http/requestid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
}

/* ───────── Logging ───────── */

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	h := requestid.Middleware(Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("queued"))
	})))

	req := httptest.NewRequest(http.MethodPost, "/analyses", nil)
	req.Header.Set(requestid.RequestIDHeader, "req-42")
	h.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "request completed", entry["msg"])
	assert.Equal(t, "req-42", entry["request_id"])
	assert.Equal(t, "POST", entry["method"])
	assert.Equal(t, "/analyses", entry["path"])
	assert.EqualValues(t, http.StatusAccepted, entry["status"])
	assert.EqualValues(t, len("queued"), entry["bytes"])
}

/* ───────── Recover ───────── */

func TestRecover(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	h := Recover(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("cluster matrix exploded")
	}))

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
	assert.Contains(t, buf.String(), "panic recovered")
	assert.Contains(t, buf.String(), "cluster matrix exploded")
}

func TestRecover_RepanicsOnAbort(t *testing.T) {
	h := Recover(slog.New(slog.NewTextHandler(io.Discard, nil)))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	assert.Panics(t, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

/* ───────── LimitRequestBody ───────── */

func TestLimitRequestBody(t *testing.T) {
	h := LimitRequestBody(16)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/analyses", strings.NewReader(`{"product":"x"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/analyses", strings.NewReader(strings.Repeat("a", 17))))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

/* ───────── RateLimiter ───────── */

func newTestLimiter(limit int, window time.Duration, trustProxy bool) (*RateLimiter, *time.Time) {
	rl := NewRateLimiter(limit, window, trustProxy)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	rl.lastSweep = now
	return rl, &now
}

func hit(h http.Handler, remote, xff string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/search?q=x", nil)
	req.RemoteAddr = remote
	if xff != "" {
		req.Header.Set("X-Forwarded-For", xff)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_BurstThenRefill(t *testing.T) {
	rl, now := newTestLimiter(3, time.Minute, false)
	h := rl.Limit(okHandler())

	for i := range 3 {
		assert.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1234", "").Code, "request %d", i)
	}
	rec := hit(h, "10.0.0.1:1234", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "20", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "rate limit exceeded")

	*now = now.Add(20 * time.Second)
	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1234", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "10.0.0.1:1234", "").Code)
}

func TestRateLimiter_PerClient(t *testing.T) {
	rl, _ := newTestLimiter(1, time.Minute, false)
	h := rl.Limit(okHandler())

	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "10.0.0.1:2", "").Code)
	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.2:1", "").Code)
}

func TestRateLimiter_ForwardedHeaderOnlyWhenTrusted(t *testing.T) {
	untrusted, _ := newTestLimiter(1, time.Minute, false)
	h := untrusted.Limit(okHandler())
	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.9:1", "203.0.113.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "10.0.0.9:1", "203.0.113.2").Code)

	trusted, _ := newTestLimiter(1, time.Minute, true)
	h = trusted.Limit(okHandler())
	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.9:1", "203.0.113.1, 10.0.0.9").Code)
	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.9:1", "203.0.113.2").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "10.0.0.9:1", "203.0.113.1").Code)
}

func TestRateLimiter_EvictsIdleClients(t *testing.T) {
	rl, now := newTestLimiter(5, time.Minute, false)
	h := rl.Limit(okHandler())

	hit(h, "10.0.0.1:1", "")
	hit(h, "10.0.0.2:1", "")
	assert.Equal(t, 2, rl.visitorCount())

	*now = now.Add(3 * time.Minute)
	hit(h, "10.0.0.3:1", "")
	assert.Equal(t, 1, rl.visitorCount())
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		remote  string
		headers map[string]string
		trust   bool
		want    string
	}{
		{"remote addr", "192.0.2.1:5555", nil, false, "192.0.2.1"},
		{"remote without port", "192.0.2.1", nil, false, "192.0.2.1"},
		{"xff ignored", "192.0.2.1:5555", map[string]string{"X-Forwarded-For": "198.51.100.7"}, false, "192.0.2.1"},
		{"xff first hop", "192.0.2.1:5555", map[string]string{"X-Forwarded-For": "198.51.100.7, 192.0.2.1"}, true, "198.51.100.7"},
		{"xff garbage falls back to real ip", "192.0.2.1:5555", map[string]string{"X-Forwarded-For": "nope", "X-Real-IP": "198.51.100.8"}, true, "198.51.100.8"},
		{"ipv6", "[2001:db8::1]:443", nil, false, "2001:db8::1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientIP(req, tt.trust))
		})
	}
}
