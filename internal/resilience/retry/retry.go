// Package retry decides which failures are transient and retries them on an
// exponential schedule (github.com/cenkalti/backoff) tuned per upstream:
// YouTube, the generative and embedding providers, and the database.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Config is one retry schedule.
type Config struct {
	// MaxAttempts counts the first call.
	MaxAttempts    int
	InitialDelay   time.Duration
	MaxDelay       time.Duration
	Multiplier     float64
	JitterFraction float64
}

// DefaultConfig makes three attempts starting at 1s.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialDelay:   1 * time.Second,
		MaxDelay:       30 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

// YouTubeConfig is used for search, feed and transcript requests.
// YouTube answers bursts with 429, so retries back off further than the default.
func YouTubeConfig() Config {
	return Config{
		MaxAttempts:    4,
		InitialDelay:   1 * time.Second,
		MaxDelay:       20 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.2,
	}
}

// LLMConfig is used for generative completions. Every attempt is billed.
func LLMConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialDelay:   2 * time.Second,
		MaxDelay:       10 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

// EmbeddingConfig is used for embedding batches.
func EmbeddingConfig() Config {
	return Config{
		MaxAttempts:    4,
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       8 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

// DBConfig is used for database operations.
func DBConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialDelay:   100 * time.Millisecond,
		MaxDelay:       1 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

// newBackOff turns cfg into an exponential schedule of MaxAttempts-1 waits
// that stops when ctx is done. JitterFraction randomizes each wait by ± that fraction.
func (c Config) newBackOff(ctx context.Context) backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.InitialDelay
	bo.MaxInterval = c.MaxDelay
	bo.Multiplier = c.Multiplier
	bo.RandomizationFactor = c.JitterFraction
	bo.MaxElapsedTime = 0

	var schedule backoff.BackOff = &backoff.StopBackOff{}
	if c.MaxAttempts > 1 {
		schedule = backoff.WithMaxRetries(bo, uint64(c.MaxAttempts-1))
	}
	return backoff.WithContext(schedule, ctx)
}

// WithBackoff executes fn until it succeeds, returns a non-retryable error,
// the attempts run out or ctx is done. A non-retryable error is returned as is.
func WithBackoff(ctx context.Context, cfg Config, fn func() error) error {
	var (
		attempt   int
		lastErr   error
		permanent bool
	)

	op := func() error {
		attempt++
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) {
			slog.Debug("non-retryable error, aborting",
				slog.Int("attempt", attempt),
				slog.Any("error", lastErr))
			permanent = true
			return backoff.Permanent(lastErr)
		}
		return lastErr
	}
	notify := func(err error, delay time.Duration) {
		slog.Warn("operation failed, retrying",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", cfg.MaxAttempts),
			slog.Duration("delay", delay),
			slog.Any("error", err))
	}

	err := backoff.RetryNotify(op, cfg.newBackOff(ctx), notify)
	switch {
	case err == nil:
		if attempt > 1 {
			slog.Info("operation succeeded after retry", slog.Int("attempt", attempt))
		}
		return nil
	case permanent:
		return lastErr
	case ctx.Err() != nil:
		return fmt.Errorf("retry aborted after %d attempts: %w", attempt, ctx.Err())
	default:
		return fmt.Errorf("max retry attempts (%d) exceeded: %w", cfg.MaxAttempts, lastErr)
	}
}

// IsRetryable reports network timeouts, refused or reset connections and
// transient HTTP statuses. Context errors are never retried.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ETIMEDOUT) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return true
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Retryable()
	}

	return false
}

// HTTPError is an upstream HTTP status. Adapters convert SDK errors into it
// so every retry decision is made by IsRetryable.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// Retryable reports whether the status is transient: 5xx, 429 or 408.
func (e *HTTPError) Retryable() bool {
	switch {
	case e.StatusCode >= 500 && e.StatusCode < 600:
		return true
	case e.StatusCode == http.StatusTooManyRequests, e.StatusCode == http.StatusRequestTimeout:
		return true
	default:
		return false
	}
}

// FromResponse returns an *HTTPError for non-2xx responses and nil otherwise.
func FromResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return &HTTPError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
}
