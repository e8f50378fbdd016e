package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yt-sentiment/internal/handler/http/auth"
)

const testSecret = "k7Hq2mZp9vR4xT8wLc3nB6yD1fG5jS0a"

var serverEnvVars = []string{
	"API_ADDR", "VERSION", "JWT_SECRET", "TOKEN_TTL", "ADMIN_USER", "ADMIN_USER_PASSWORD",
	"VIEWER_USER", "VIEWER_USER_PASSWORD", "ANALYSIS_TIMEOUT", "RATE_LIMIT_REQUESTS",
	"RATE_LIMIT_WINDOW", "TRUST_PROXY", "CSP_ENABLED", "CSP_REPORT_ONLY",
}

func setServerEnv(t *testing.T) {
	t.Helper()
	for _, key := range serverEnvVars {
		t.Setenv(key, "")
	}
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("ADMIN_USER", "admin")
	t.Setenv("ADMIN_USER_PASSWORD", "Tr1cky-Harbor-Lamp")
}

func validConfig() *serverConfig {
	return &serverConfig{
		Addr:            ":8080",
		JWTSecret:       []byte(testSecret),
		TokenTTL:        time.Hour,
		Accounts:        []auth.Account{{Username: "admin", Password: "Tr1cky-Harbor-Lamp", Role: auth.RoleAdmin}},
		AnalysisTimeout: 15 * time.Minute,
		RateLimit:       60,
		RateLimitWindow: time.Minute,
		CSPEnabled:      true,
	}
}

/* ───────── loadServerConfig ───────── */

func TestLoadServerConfig_Defaults(t *testing.T) {
	setServerEnv(t)

	cfg, err := loadServerConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "dev", cfg.Version)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, 15*time.Minute, cfg.AnalysisTimeout)
	assert.Equal(t, 60, cfg.RateLimit)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.False(t, cfg.TrustProxy)
	assert.True(t, cfg.CSPEnabled)
	assert.False(t, cfg.CSPReportOnly)
	require.Len(t, cfg.Accounts, 1)
	assert.Equal(t, auth.RoleAdmin, cfg.Accounts[0].Role)
}

func TestLoadServerConfig_Viewer(t *testing.T) {
	setServerEnv(t)
	t.Setenv("VIEWER_USER", "analyst")
	t.Setenv("VIEWER_USER_PASSWORD", "Quiet-Orchard-42")
	t.Setenv("TRUST_PROXY", "true")

	cfg, err := loadServerConfig()
	require.NoError(t, err)

	require.Len(t, cfg.Accounts, 2)
	assert.Equal(t, auth.Account{Username: "analyst", Password: "Quiet-Orchard-42", Role: auth.RoleViewer}, cfg.Accounts[1])
	assert.True(t, cfg.TrustProxy)
}

func TestLoadServerConfig_MissingSecret(t *testing.T) {
	setServerEnv(t)
	t.Setenv("JWT_SECRET", "")

	_, err := loadServerConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET must be set")
}

/* ───────── Validate ───────── */

func TestServerConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *serverConfig)
		wantErr string
	}{
		{"valid", func(*serverConfig) {}, ""},
		{"short secret", func(c *serverConfig) { c.JWTSecret = []byte("short") }, "at least 32 characters"},
		{"weak secret", func(c *serverConfig) { c.JWTSecret = []byte(strings.Repeat("secret", 6)) }, "common weak value"},
		{"weak mixed case", func(c *serverConfig) { c.JWTSecret = []byte(strings.Repeat("ChangeMe", 4)) }, "common weak value"},
		{"no admin", func(c *serverConfig) { c.Accounts[0].Username = "" }, "ADMIN_USER"},
		{"ttl too short", func(c *serverConfig) { c.TokenTTL = time.Second }, "TOKEN_TTL"},
		{"ttl too long", func(c *serverConfig) { c.TokenTTL = 48 * time.Hour }, "TOKEN_TTL"},
		{"zero analysis timeout", func(c *serverConfig) { c.AnalysisTimeout = 0 }, "ANALYSIS_TIMEOUT"},
		{"zero rate limit", func(c *serverConfig) { c.RateLimit = 0 }, "RATE_LIMIT_REQUESTS"},
		{"negative window", func(c *serverConfig) { c.RateLimitWindow = -time.Second }, "RATE_LIMIT_WINDOW"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestServerConfig_ValidateReportsAll(t *testing.T) {
	cfg := validConfig()
	cfg.JWTSecret = nil
	cfg.RateLimit = 0
	cfg.AnalysisTimeout = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "RATE_LIMIT_REQUESTS")
	assert.Contains(t, err.Error(), "ANALYSIS_TIMEOUT")
}
