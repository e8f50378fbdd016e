package http

import (
	"net/http"

	"yt-sentiment/internal/handler/http/respond"
)

// Input limits enforced by InputValidation.
const (
	maxAuthorizationHeader = 8 << 10
	maxPathLength          = 2 << 10
	maxQueryLength         = 4 << 10
	maxBodyBytes           = 1 << 20
)

// InputValidation rejects oversized Authorization headers, paths and query
// strings, and caps the request body.
func InputValidation() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case len(r.Header.Get("Authorization")) > maxAuthorizationHeader:
				respond.JSON(w, http.StatusBadRequest, map[string]string{"error": "authorization header too large"})
				return
			case len(r.URL.Path) > maxPathLength, len(r.URL.RawQuery) > maxQueryLength:
				respond.JSON(w, http.StatusRequestURITooLong, map[string]string{"error": "URI too long"})
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
			next.ServeHTTP(w, r)
		})
	}
}
