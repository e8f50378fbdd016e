package analysis_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"yt-sentiment/internal/domain/entity"
	"yt-sentiment/internal/handler/http/analysis"
	analysisUC "yt-sentiment/internal/usecase/analysis"
	searchUC "yt-sentiment/internal/usecase/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	result *entity.AnalysisResult
	err    error
	got    analysisUC.Request
}

func (s *stubRunner) Run(_ context.Context, req analysisUC.Request) (*entity.AnalysisResult, error) {
	s.got = req
	return s.result, s.err
}

type stubSearcher struct {
	result *searchUC.Result
	err    error
	query  string
	k      int
}

func (s *stubSearcher) Search(_ context.Context, query string, k int) (*searchUC.Result, error) {
	s.query, s.k = query, k
	return s.result, s.err
}

func newMux(r analysis.Runner, s analysis.Searcher) *http.ServeMux {
	mux := http.NewServeMux()
	analysis.Register(mux, r, s, 500)
	return mux
}

func sampleResult() *entity.AnalysisResult {
	return &entity.AnalysisResult{
		RunID:          "run-1",
		Product:        "Pixel 9",
		AcceptedVideos: []entity.VideoRef{{ID: "dQw4w9WgXcQ", Link: "https://www.youtube.com/watch?v=dQw4w9WgXcQ"}},
		PositiveTopics: []entity.TopicSummary{
			{Label: "long battery life", Members: []string{"great battery", "battery lasts long"}, Count: 2, Polarity: entity.PolarityPositive},
			{Label: "others - positive", Members: []string{"sleek design"}, Count: 1, Polarity: entity.PolarityPositive, Others: true},
		},
		NegativeTopics: []entity.TopicSummary{
			{Label: "others - negative", Members: []string{"poor camera"}, Count: 1, Polarity: entity.PolarityNegative, Others: true},
		},
		GeneratedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func post(mux http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/analyses", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

/* ───────── POST /analyses ───────── */

func TestCreate_Success(t *testing.T) {
	runner := &stubRunner{result: sampleResult()}
	rec := post(newMux(runner, &stubSearcher{}), `{"product":"Pixel 9","count":5}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, analysisUC.Request{Product: "Pixel 9", Count: 5}, runner.got)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "run-1", body["run_id"])
	assert.Len(t, body["positive_topics"], 2)
	assert.Len(t, body["negative_topics"], 1)
	assert.NotContains(t, body, "failures")

	share := body["sentiment_share"].(map[string]any)
	assert.InDelta(t, 75.0, share["positive"], 1e-9)
	assert.InDelta(t, 25.0, share["negative"], 1e-9)
}

func TestCreate_PartialResultIsOK(t *testing.T) {
	res := sampleResult()
	res.NegativeTopics = []entity.TopicSummary{}
	res.Failures = map[entity.Polarity]string{entity.PolarityNegative: "topic labeling failed"}
	runner := &stubRunner{
		result: res,
		err:    &entity.PolarityError{Polarity: entity.PolarityNegative, Err: entity.ErrLabeling},
	}

	rec := post(newMux(runner, &stubSearcher{}), `{"product":"Pixel 9"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Failures map[string]string `json:"failures"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "topic labeling failed", body.Failures["negative"])
}

func TestCreate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"malformed json", `{"product":`, nil, http.StatusBadRequest, "invalid request body"},
		{"unknown field", `{"product":"x","videos":3}`, nil, http.StatusBadRequest, "invalid request body"},
		{"validation", `{"product":""}`, &entity.ValidationError{Field: "product", Message: "product name is required"}, http.StatusBadRequest, "product name is required"},
		{"discovery down", `{"product":"x"}`, fmt.Errorf("%w: quota exceeded", entity.ErrDiscovery), http.StatusServiceUnavailable, "service unavailable"},
		{"store down", `{"product":"x"}`, fmt.Errorf("%w: drop positive", entity.ErrStoreUnavailable), http.StatusServiceUnavailable, "service unavailable"},
		{"timeout", `{"product":"x"}`, context.DeadlineExceeded, http.StatusGatewayTimeout, "request timeout"},
		{"unexpected", `{"product":"x"}`, errors.New("pq: secret detail"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(newMux(&stubRunner{err: tt.err}, &stubSearcher{}), tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantMsg)
			assert.NotContains(t, rec.Body.String(), "secret detail")
		})
	}
}

/* ───────── GET /search ───────── */

func TestSearch_Success(t *testing.T) {
	searcher := &stubSearcher{result: &searchUC.Result{
		Query:    "battery",
		Positive: []entity.SimilarFragment{{Text: "great battery", Polarity: entity.PolarityPositive, Score: 0.93}},
		Negative: []entity.SimilarFragment{},
	}}
	mux := newMux(&stubRunner{}, searcher)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search?q=battery&k=3", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "battery", searcher.query)
	assert.Equal(t, 3, searcher.k)
	assert.JSONEq(t, `{"query":"battery","positive":[{"text":"great battery","sentiment":"positive","score":0.93}],"negative":[]}`, rec.Body.String())
}

func TestSearch_DefaultK(t *testing.T) {
	searcher := &stubSearcher{result: &searchUC.Result{Query: "x"}}
	rec := httptest.NewRecorder()
	newMux(&stubRunner{}, searcher).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search?q=x", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, searcher.k)
}

func TestSearch_InvalidK(t *testing.T) {
	for _, k := range []string{"0", "-1", "abc", "501"} {
		t.Run(k, func(t *testing.T) {
			searcher := &stubSearcher{}
			rec := httptest.NewRecorder()
			newMux(&stubRunner{}, searcher).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search?q=x&k="+k, nil))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "k must be an integer between 1 and 500")
			assert.Empty(t, searcher.query)
		})
	}
}

func TestSearch_ServiceErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"missing query", &entity.ValidationError{Field: "q", Message: "query is required"}, http.StatusBadRequest},
		{"store", fmt.Errorf("%w: search positive: boom", entity.ErrStoreUnavailable), http.StatusServiceUnavailable},
		{"embedding", fmt.Errorf("embed query: %w", entity.ErrEmbedding), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newMux(&stubRunner{}, &stubSearcher{err: tt.err}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search", nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRoutes_MethodMismatch(t *testing.T) {
	rec := httptest.NewRecorder()
	newMux(&stubRunner{}, &stubSearcher{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/analyses", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
