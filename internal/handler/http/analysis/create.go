package analysis

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"yt-sentiment/internal/handler/http/respond"
	"yt-sentiment/internal/observability/logging"
	analysisUC "yt-sentiment/internal/usecase/analysis"
)

// CreateHandler runs an analysis synchronously.
type CreateHandler struct{ Runner Runner }

// ServeHTTP runs an analysis.
// @Summary      Analyze a product
// @Description  Discovers review videos, extracts positive and negative statements, clusters them into topics and labels each topic.
// @Description  When one polarity fails the other is still returned with the error text under "failures".
// @Tags         analyses
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body CreateRequest true "Product and optional video count (1-50, default 20)"
// @Success      200 {object} ResultDTO
// @Failure      400 {object} map[string]string "Invalid product or count"
// @Failure      401 {object} map[string]string "Missing or invalid token"
// @Failure      403 {object} map[string]string "Role may not start analyses"
// @Failure      429 {object} map[string]string "Rate limit exceeded"
// @Failure      503 {object} map[string]string "Discovery or store unavailable"
// @Failure      504 {object} map[string]string "Analysis timed out"
// @Router       /analyses [post]
func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	result, err := h.Runner.Run(r.Context(), analysisUC.Request{Product: req.Product, Count: req.Count})
	if result == nil {
		if err == nil {
			err = errors.New("analysis returned no result")
		}
		respond.FromError(w, err)
		return
	}
	if err != nil {
		logging.WithRequestID(r.Context(), slog.Default()).Warn("analysis partially failed",
			slog.String("run_id", result.RunID),
			slog.Any("error", err))
	}

	respond.JSON(w, http.StatusOK, toDTO(result))
}
