package analysis

import (
	"fmt"
	"net/http"
	"strconv"

	"yt-sentiment/internal/domain/entity"
	"yt-sentiment/internal/handler/http/respond"
)

// SearchHandler ranks the last run's fragments against a query.
type SearchHandler struct {
	Searcher Searcher
	MaxTopK  int
}

// ServeHTTP searches fragments.
// @Summary      Search fragments
// @Description  Returns the fragments of the last analysis most similar to q, per polarity, best first.
// @Tags         analyses
// @Security     BearerAuth
// @Produce      json
// @Param        q query string true "Free-text query"
// @Param        k query int false "Hits per polarity (default SEARCH_TOP_K)"
// @Success      200 {object} search.Result
// @Failure      400 {object} map[string]string "Missing q or invalid k"
// @Failure      401 {object} map[string]string "Missing or invalid token"
// @Failure      503 {object} map[string]string "Store unavailable"
// @Router       /search [get]
func (h SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	k := 0
	if raw := r.URL.Query().Get("k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || (h.MaxTopK > 0 && n > h.MaxTopK) {
			respond.FromError(w, &entity.ValidationError{
				Field:   "k",
				Message: fmt.Sprintf("k must be an integer between 1 and %d", h.MaxTopK),
			})
			return
		}
		k = n
	}

	result, err := h.Searcher.Search(r.Context(), q, k)
	if err != nil {
		respond.FromError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, result)
}
