package csp

import (
	"net/http"
	"strings"
)

const (
	headerEnforce    = "Content-Security-Policy"
	headerReportOnly = "Content-Security-Policy-Report-Only"
)

// Config selects the policy for each request.
type Config struct {
	// Default applies when no entry of PathPolicies matches.
	Default *Policy
	// PathPolicies maps path prefixes to policies; the longest matching prefix wins.
	PathPolicies map[string]*Policy
	// ReportOnly sends Content-Security-Policy-Report-Only instead of enforcing.
	ReportOnly bool
}

// Middleware sets the CSP header selected by cfg on every response.
// Header values are rendered once, up front.
func Middleware(cfg Config) func(http.Handler) http.Handler {
	header := headerEnforce
	if cfg.ReportOnly {
		header = headerReportOnly
	}

	var def string
	if cfg.Default != nil {
		def = cfg.Default.String()
	}
	byPrefix := make(map[string]string, len(cfg.PathPolicies))
	for prefix, p := range cfg.PathPolicies {
		if p != nil {
			byPrefix[prefix] = p.String()
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if value := selectPolicy(r.URL.Path, def, byPrefix); value != "" {
				w.Header().Set(header, value)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func selectPolicy(path, def string, byPrefix map[string]string) string {
	best, value := -1, def
	for prefix, v := range byPrefix {
		if strings.HasPrefix(path, prefix) && len(prefix) > best {
			best, value = len(prefix), v
		}
	}
	return value
}
