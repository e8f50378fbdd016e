package auth

import "strings"

// PublicEndpoints are served without a bearer token.
//
//   - /health, /ready, /live: orchestration checks
//   - /metrics: Prometheus scraping
//   - /swagger/: API documentation
//   - /auth/token: token issuance
var PublicEndpoints = []string{
	"/health",
	"/ready",
	"/live",
	"/metrics",
	"/swagger/",
	"/auth/token",
}

// IsPublicEndpoint reports whether path is one of PublicEndpoints.
// Entries ending in '/' match by prefix. Other entries match exactly, with an
// optional trailing slash, so "/health" does not match "/healthcheck" or "/health/detail".
func IsPublicEndpoint(path string) bool {
	for _, endpoint := range PublicEndpoints {
		if strings.HasSuffix(endpoint, "/") {
			if strings.HasPrefix(path, endpoint) {
				return true
			}
			continue
		}
		if path == endpoint || path == endpoint+"/" {
			return true
		}
	}
	return false
}
