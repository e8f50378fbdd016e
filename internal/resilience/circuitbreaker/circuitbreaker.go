// Package circuitbreaker wraps github.com/sony/gobreaker with named, ratio-based
// breakers for the pipeline's external services and exports their state.
package circuitbreaker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"

	"yt-sentiment/internal/resilience/retry"
)

var (
	// breakerState is 0 closed, 1 half-open, 2 open (gobreaker.State values).
	breakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state: 0 closed, 1 half-open, 2 open",
		},
		[]string{"name"},
	)

	breakerRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_rejections_total",
			Help: "Calls rejected without reaching the service",
		},
		[]string{"name"},
	)
)

// Config tunes one breaker.
type Config struct {
	// Name labels logs and metrics.
	Name string
	// MaxRequests may pass while half-open.
	MaxRequests uint32
	// Interval clears the closed-state counts.
	Interval time.Duration
	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration
	// FailureThreshold is the failure ratio that trips the breaker.
	FailureThreshold float64
	// MinRequests must be seen in an interval before the ratio counts.
	MinRequests uint32
}

func ratioConfig(name string, interval, timeout time.Duration, threshold float64, minRequests uint32) Config {
	return Config{
		Name:             name,
		MaxRequests:      3,
		Interval:         interval,
		Timeout:          timeout,
		FailureThreshold: threshold,
		MinRequests:      minRequests,
	}
}

// DefaultConfig trips at 60% failures over at least 5 calls.
func DefaultConfig(name string) Config {
	return ratioConfig(name, 30*time.Second, time.Minute, 0.6, 5)
}

// YouTubeAPIConfig is used for search, channel feed and transcript requests.
// Caption endpoints fail per video (404/403) so the breaker tolerates a higher failure ratio.
func YouTubeAPIConfig() Config {
	return ratioConfig("youtube", time.Minute, 2*time.Minute, 0.8, 10)
}

// LLMAPIConfig is used for generative completions of one provider.
func LLMAPIConfig(provider string) Config {
	return DefaultConfig(provider + "-llm")
}

// EmbeddingAPIConfig is used for embedding batches of one provider.
func EmbeddingAPIConfig(provider string) Config {
	return DefaultConfig(provider + "-embedding")
}

// countsAsHealthy decides which outcomes leave the breaker's failure ratio
// untouched. A non-retryable HTTP status (400 for an oversized transcript, 404
// for missing captions, 422 for an empty completion) is a verdict on one
// request, and a cancelled context is the caller's decision; neither says the
// service is down.
func countsAsHealthy(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var httpErr *retry.HTTPError
	if errors.As(err, &httpErr) {
		return !httpErr.Retryable()
	}
	return false
}

// CircuitBreaker is a named gobreaker whose state is exported as a metric.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
	name    string
}

// New creates a closed breaker.
func New(cfg Config) *CircuitBreaker {
	settings := gobreaker.Settings{
		Name:         cfg.Name,
		MaxRequests:  cfg.MaxRequests,
		Interval:     cfg.Interval,
		Timeout:      cfg.Timeout,
		IsSuccessful: countsAsHealthy,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			breakerState.WithLabelValues(name).Set(float64(to))
			slog.Warn("circuit breaker state changed",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	}

	breakerState.WithLabelValues(cfg.Name).Set(float64(gobreaker.StateClosed))
	return &CircuitBreaker{
		breaker: gobreaker.NewCircuitBreaker(settings),
		name:    cfg.Name,
	}
}

// Execute runs fn unless the breaker is open, in which case it returns
// gobreaker.ErrOpenState (or ErrTooManyRequests while half-open) without calling fn.
func (cb *CircuitBreaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	out, err := cb.breaker.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		breakerRejections.WithLabelValues(cb.name).Inc()
	}
	return out, err
}

// State returns the current state.
func (cb *CircuitBreaker) State() gobreaker.State {
	return cb.breaker.State()
}

// Name returns the breaker name.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// IsOpen reports whether calls are being rejected.
func (cb *CircuitBreaker) IsOpen() bool {
	return cb.breaker.State() == gobreaker.StateOpen
}
