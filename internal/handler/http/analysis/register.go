package analysis

import (
	"context"
	"net/http"

	"yt-sentiment/internal/domain/entity"
	analysisUC "yt-sentiment/internal/usecase/analysis"
	searchUC "yt-sentiment/internal/usecase/search"
)

// Runner runs one analysis.
type Runner interface {
	Run(ctx context.Context, req analysisUC.Request) (*entity.AnalysisResult, error)
}

// Searcher searches the fragments of the last run.
type Searcher interface {
	Search(ctx context.Context, query string, k int) (*searchUC.Result, error)
}

// Register mounts the analysis routes on mux.
func Register(mux *http.ServeMux, runner Runner, searcher Searcher, maxTopK int) {
	mux.Handle("POST /analyses", CreateHandler{Runner: runner})
	mux.Handle("GET /search", SearchHandler{Searcher: searcher, MaxTopK: maxTopK})
}
