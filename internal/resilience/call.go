// Package resilience combines retry and circuit breaking for outbound calls.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sony/gobreaker"

	"yt-sentiment/internal/resilience/circuitbreaker"
	"yt-sentiment/internal/resilience/retry"
)

// ErrCircuitOpen is returned when a breaker rejects a call.
var ErrCircuitOpen = errors.New("circuit breaker open")

// Call runs fn through cb, retrying retryable failures according to cfg.
func Call[T any](ctx context.Context, cb *circuitbreaker.CircuitBreaker, cfg retry.Config, fn func() (T, error)) (T, error) {
	var result T

	err := retry.WithBackoff(ctx, cfg, func() error {
		v, err := cb.Execute(func() (interface{}, error) {
			out, err := fn()
			return out, err
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				slog.Warn("circuit breaker open, request rejected",
					slog.String("service", cb.Name()),
					slog.String("state", cb.State().String()))
				return fmt.Errorf("%s unavailable: %w", cb.Name(), ErrCircuitOpen)
			}
			return err
		}
		result, _ = v.(T)
		return nil
	})

	return result, err
}
