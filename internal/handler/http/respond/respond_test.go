package respond

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"yt-sentiment/internal/domain/entity"
	"yt-sentiment/internal/resilience"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, struct {
		ID string `json:"id"`
	}{ID: "run-1"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":"run-1"}`, rec.Body.String())
}

func TestJSON_NilBody(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusNoContent, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestJSON_EncodingError(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusOK, map[string]float64{"x": math.NaN()})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestError(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, http.StatusTeapot, errors.New("short and stout"))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "short and stout", decode(t, rec)["error"])
}

func TestSafeError(t *testing.T) {
	tests := []struct {
		name string
		code int
		err  error
		want string
	}{
		{"validation passes through", 400, &entity.ValidationError{Field: "product", Message: "product name is required"}, "validation error on field 'product': product name is required"},
		{"unauthorized passes through", 401, errors.New("unauthorized: invalid token"), "unauthorized: invalid token"},
		{"forbidden passes through", 403, errors.New("forbidden"), "forbidden"},
		{"internal detail hidden", 400, errors.New("pq: relation sentiment_positive does not exist"), "internal server error"},
		{"5xx always hidden", 500, errors.New("invalid memory address"), "internal server error"},
		{"503 generic", 503, errors.New("embedding store unavailable"), "service unavailable"},
		{"504 generic", 504, context.DeadlineExceeded, "request timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			SafeError(rec, tt.code, tt.err)
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.want, decode(t, rec)["error"])
		})
	}
}

func TestSafeError_NilWritesNothing(t *testing.T) {
	rec := httptest.NewRecorder()
	SafeError(rec, http.StatusInternalServerError, nil)
	assert.Empty(t, rec.Body.String())
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", fmt.Errorf("request: %w", &entity.ValidationError{Field: "q", Message: "required"}), http.StatusBadRequest},
		{"invalid input", fmt.Errorf("%w: bad polarity", entity.ErrInvalidInput), http.StatusBadRequest},
		{"not found", entity.ErrNotFound, http.StatusNotFound},
		{"deadline", fmt.Errorf("run: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"store", fmt.Errorf("%w: drop", entity.ErrStoreUnavailable), http.StatusServiceUnavailable},
		{"discovery", fmt.Errorf("%w: quota", entity.ErrDiscovery), http.StatusServiceUnavailable},
		{"breaker", fmt.Errorf("llm unavailable: %w", resilience.ErrCircuitOpen), http.StatusServiceUnavailable},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestFromError(t *testing.T) {
	rec := httptest.NewRecorder()
	FromError(rec, &entity.ValidationError{Field: "count", Message: "count must be between 1 and 50"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "count must be between 1 and 50")
}
