package csp

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

/* ───────── Policy ───────── */

func TestPolicy_StringOrdersDirectives(t *testing.T) {
	p := NewPolicy().
		ObjectSrc("'none'").
		ScriptSrc("'self'", "https://cdn.example.com").
		DefaultSrc("'self'")

	assert.Equal(t, "default-src 'self'; script-src 'self' https://cdn.example.com; object-src 'none'", p.String())
}

func TestPolicy_EmptyAndReplaced(t *testing.T) {
	assert.Empty(t, NewPolicy().String())
	assert.Empty(t, NewPolicy().ImgSrc().String(), "directive without sources is omitted")

	p := NewPolicy().FontSrc("'self'").FontSrc("data:")
	assert.Equal(t, "font-src data:", p.String())
}

func TestPresets(t *testing.T) {
	assert.Equal(t,
		"default-src 'none'; connect-src 'self'; frame-ancestors 'none'; form-action 'self'; base-uri 'self'",
		StrictPolicy().String())

	swagger := SwaggerUIPolicy().String()
	assert.Contains(t, swagger, "script-src 'self' 'unsafe-inline' https://cdn.jsdelivr.net")
	assert.Contains(t, swagger, "object-src 'none'")
	assert.NotContains(t, swagger, "'unsafe-eval'")
}

/* ───────── Middleware ───────── */

func serve(cfg Config, path string) http.Header {
	h := Middleware(cfg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec.Header()
}

func TestMiddleware_SelectsByLongestPrefix(t *testing.T) {
	cfg := Config{
		Default: StrictPolicy(),
		PathPolicies: map[string]*Policy{
			"/swagger/":      SwaggerUIPolicy(),
			"/swagger/index": NewPolicy().DefaultSrc("'self'"),
		},
	}

	assert.Equal(t, StrictPolicy().String(), serve(cfg, "/analyses").Get(headerEnforce))
	assert.Equal(t, SwaggerUIPolicy().String(), serve(cfg, "/swagger/doc.json").Get(headerEnforce))
	assert.Equal(t, "default-src 'self'", serve(cfg, "/swagger/index.html").Get(headerEnforce))
}

func TestMiddleware_ReportOnly(t *testing.T) {
	h := serve(Config{Default: StrictPolicy(), ReportOnly: true}, "/search")

	assert.Empty(t, h.Get(headerEnforce))
	assert.Equal(t, StrictPolicy().String(), h.Get(headerReportOnly))
}

func TestMiddleware_NoPolicy(t *testing.T) {
	h := serve(Config{}, "/search")

	assert.Empty(t, h.Get(headerEnforce))
	assert.Empty(t, h.Get(headerReportOnly))
}
