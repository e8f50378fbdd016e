package http

import (
	"net/http"
	"strings"
	"time"

	"yt-sentiment/internal/handler/http/responsewriter"
	"yt-sentiment/internal/observability/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var httpRequestsInFlight = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "Current number of HTTP requests being served",
	},
)

// unmatchedRoute labels requests outside the registered routes so scanners
// cannot grow the path label without bound.
const unmatchedRoute = "other"

// MetricsMiddleware records request count, duration and in-flight requests.
// Paths are labelled by the matching entry in routes; entries ending in '/'
// match by prefix. Anything else is labelled "other".
func MetricsMiddleware(routes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			httpRequestsInFlight.Inc()
			defer httpRequestsInFlight.Dec()

			wrapped := responsewriter.Wrap(w)
			start := time.Now()
			next.ServeHTTP(wrapped, r)

			metrics.RecordHTTPRequest(r.Method, routeLabel(r.URL.Path, routes), wrapped.StatusCode(), time.Since(start))
		})
	}
}

func routeLabel(path string, routes []string) string {
	for _, route := range routes {
		if path == route {
			return route
		}
		if strings.HasSuffix(route, "/") && strings.HasPrefix(path, route) {
			return route
		}
	}
	return unmatchedRoute
}

// MetricsHandler serves the Prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
