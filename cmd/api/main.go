package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"yt-sentiment/internal/app"
	hhttp "yt-sentiment/internal/handler/http"
	hanalysis "yt-sentiment/internal/handler/http/analysis"
	hauth "yt-sentiment/internal/handler/http/auth"
	"yt-sentiment/internal/handler/http/requestid"
	"yt-sentiment/internal/observability/logging"
	"yt-sentiment/internal/observability/tracing"
	"yt-sentiment/pkg/security/csp"

	_ "yt-sentiment/docs" // swagger docs
)

// @title           YouTube Sentiment API
// @version         1.0
// @description     Runs product sentiment analyses over YouTube reviews and searches the extracted fragments.

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT bearer token from POST /auth/token, sent as "Bearer {token}".

// routes are the metric labels for known paths; anything else is "other".
var routes = []string{"/analyses", "/search", "/auth/token", "/health", "/ready", "/live", "/metrics"}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}

	logger := logging.NewLogger()
	slog.SetDefault(logger)

	cfg, err := loadServerConfig()
	if err != nil {
		logger.Error("failed to load server configuration", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pipeline, err := app.Build(ctx, logger, app.OptionsFromEnv())
	if err != nil {
		logger.Error("failed to build pipeline", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := pipeline.Close(); err != nil {
			logger.Error("failed to close pipeline", slog.Any("error", err))
		}
	}()

	handler, err := setupServer(logger, cfg, pipeline)
	if err != nil {
		logger.Error("failed to set up server", slog.Any("error", err))
		os.Exit(1)
	}

	runServer(ctx, logger, cfg, handler)
}

// setupServer registers all routes and wraps them in the middleware chain.
func setupServer(logger *slog.Logger, cfg *serverConfig, pipeline *app.Pipeline) (http.Handler, error) {
	provider, err := hauth.NewStaticProvider(cfg.Accounts...)
	if err != nil {
		return nil, fmt.Errorf("auth accounts: %w", err)
	}

	// Token requests get a tighter limit than the API as a whole.
	tokenLimiter := hhttp.NewRateLimiter(5, time.Minute, cfg.TrustProxy)

	health := &hhttp.HealthHandler{DB: pipeline.DB, Version: cfg.Version}
	if pipeline.Cache != nil {
		health.Optional = map[string]hhttp.CheckFunc{"redis": pipeline.Cache.Ping}
	}

	mux := http.NewServeMux()
	mux.Handle("POST /auth/token", tokenLimiter.Limit(hauth.TokenHandler(provider, cfg.JWTSecret, cfg.TokenTTL)))
	mux.Handle("/health", health)
	mux.Handle("/ready", &hhttp.ReadyHandler{DB: pipeline.DB})
	mux.Handle("/live", hhttp.LiveHandler{})
	mux.Handle("/metrics", hhttp.MetricsHandler())
	mux.Handle("/swagger/", httpSwagger.WrapHandler)
	hanalysis.Register(mux, pipeline.Aggregator, pipeline.Search, pipeline.Config.SearchTopK*10)

	apiLimiter := hhttp.NewRateLimiter(cfg.RateLimit, cfg.RateLimitWindow, cfg.TrustProxy)

	logger.Info("routes registered",
		slog.Int("accounts", len(cfg.Accounts)),
		slog.Duration("analysis_timeout", cfg.AnalysisTimeout),
		slog.Int("rate_limit", cfg.RateLimit),
		slog.Duration("rate_limit_window", cfg.RateLimitWindow),
		slog.Bool("trust_proxy", cfg.TrustProxy),
		slog.Bool("csp", cfg.CSPEnabled),
		slog.Bool("csp_report_only", cfg.CSPReportOnly))

	// Outermost first:
	// request id → tracing → logging → recovery → CSP → metrics → rate limit →
	// input validation → authorization → timeout → routes
	var h http.Handler = mux
	h = hhttp.Timeout(cfg.AnalysisTimeout)(h)
	h = hauth.Authz(cfg.JWTSecret)(h)
	h = hhttp.InputValidation()(h)
	h = apiLimiter.Limit(h)
	h = hhttp.MetricsMiddleware(routes...)(h)
	if cfg.CSPEnabled {
		h = csp.Middleware(csp.Config{
			Default:      csp.StrictPolicy(),
			PathPolicies: map[string]*csp.Policy{"/swagger/": csp.SwaggerUIPolicy()},
			ReportOnly:   cfg.CSPReportOnly,
		})(h)
	}
	h = hhttp.Recover(logger)(h)
	h = hhttp.Logging(logger)(h)
	h = tracing.Middleware(h)
	h = requestid.Middleware(h)
	return h, nil
}

// runServer serves until ctx is cancelled and then shuts down gracefully.
func runServer(ctx context.Context, logger *slog.Logger, cfg *serverConfig, handler http.Handler) {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.AnalysisTimeout + 30*time.Second,
		IdleTimeout:       2 * time.Minute,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", cfg.Addr),
			slog.String("version", cfg.Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
