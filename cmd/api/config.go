package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"yt-sentiment/internal/handler/http/auth"
	"yt-sentiment/pkg/config"
)

// serverConfig holds the HTTP server settings.
type serverConfig struct {
	Addr    string
	Version string

	JWTSecret []byte
	TokenTTL  time.Duration
	Accounts  []auth.Account

	// AnalysisTimeout bounds one request end to end; an analysis takes minutes.
	AnalysisTimeout time.Duration

	RateLimit       int
	RateLimitWindow time.Duration
	TrustProxy      bool

	CSPEnabled    bool
	CSPReportOnly bool
}

// weakSecrets may not make up JWT_SECRET on their own, repeated or not.
var weakSecrets = []string{"secret", "password", "changeme", "default", "jwt-secret"}

// loadServerConfig reads the API settings.
//
// Environment variables:
//   - API_ADDR (default ":8080")
//   - VERSION (default "dev")
//   - JWT_SECRET (required, at least 32 characters)
//   - TOKEN_TTL (default 1h)
//   - ADMIN_USER / ADMIN_USER_PASSWORD (admin role, required)
//   - VIEWER_USER / VIEWER_USER_PASSWORD (viewer role, optional)
//   - ANALYSIS_TIMEOUT (default 15m)
//   - RATE_LIMIT_REQUESTS (default 60), RATE_LIMIT_WINDOW (default 1m)
//   - TRUST_PROXY (default false)
//   - CSP_ENABLED (default true), CSP_REPORT_ONLY (default false)
func loadServerConfig() (*serverConfig, error) {
	cfg := &serverConfig{
		Addr:            config.GetEnvString("API_ADDR", ":8080"),
		Version:         config.GetEnvString("VERSION", "dev"),
		JWTSecret:       []byte(config.GetEnvString("JWT_SECRET", "")),
		TokenTTL:        config.GetEnvDuration("TOKEN_TTL", time.Hour),
		AnalysisTimeout: config.GetEnvDuration("ANALYSIS_TIMEOUT", 15*time.Minute),
		RateLimit:       config.GetEnvInt("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow: config.GetEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		TrustProxy:      config.GetEnvBool("TRUST_PROXY", false),
		CSPEnabled:      config.GetEnvBool("CSP_ENABLED", true),
		CSPReportOnly:   config.GetEnvBool("CSP_REPORT_ONLY", false),
	}

	cfg.Accounts = append(cfg.Accounts, auth.Account{
		Username: config.GetEnvString("ADMIN_USER", ""),
		Password: config.GetEnvString("ADMIN_USER_PASSWORD", ""),
		Role:     auth.RoleAdmin,
	})
	if viewer := config.GetEnvString("VIEWER_USER", ""); viewer != "" {
		cfg.Accounts = append(cfg.Accounts, auth.Account{
			Username: viewer,
			Password: config.GetEnvString("VIEWER_USER_PASSWORD", ""),
			Role:     auth.RoleViewer,
		})
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server configuration: %w", err)
	}
	return cfg, nil
}

// Validate reports every invalid setting together.
func (c *serverConfig) Validate() error {
	var errs []error

	secret := string(c.JWTSecret)
	switch {
	case secret == "":
		errs = append(errs, errors.New("JWT_SECRET must be set"))
	case len(secret) < 32:
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 characters"))
	}
	for _, weak := range weakSecrets {
		if secret != "" && strings.ReplaceAll(strings.ToLower(secret), weak, "") == "" {
			errs = append(errs, errors.New("JWT_SECRET must not be a common weak value"))
			break
		}
	}

	if c.Accounts[0].Username == "" {
		errs = append(errs, errors.New("ADMIN_USER must be set"))
	}
	if err := config.ValidateDurationRange(c.TokenTTL, time.Minute, 24*time.Hour); err != nil {
		errs = append(errs, fmt.Errorf("TOKEN_TTL: %w", err))
	}
	if err := config.ValidatePositiveDuration(c.AnalysisTimeout); err != nil {
		errs = append(errs, fmt.Errorf("ANALYSIS_TIMEOUT: %w", err))
	}
	if err := config.ValidateIntRange(c.RateLimit, 1, 10000); err != nil {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_REQUESTS: %w", err))
	}
	if err := config.ValidatePositiveDuration(c.RateLimitWindow); err != nil {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_WINDOW: %w", err))
	}

	return errors.Join(errs...)
}
