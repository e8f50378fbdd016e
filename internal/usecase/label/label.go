// Package label names topic clusters with a short phrase from a generative model.
package label

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"yt-sentiment/internal/domain/entity"
	"yt-sentiment/internal/observability/metrics"
	"yt-sentiment/internal/resilience/retry"
)

// DefaultBudget is the reference retry budget for one label.
const DefaultBudget = 300 * time.Second

// Completer runs one generative completion.
type Completer interface {
	Complete(ctx context.Context, prompt string, temperature float64) (string, error)
}

// defaultTemperature leaves sampling at the model's usual setting.
const defaultTemperature = 1.0

// Labeler is a TopicLabeler. Each Label call retries transient failures until
// its budget is spent.
type Labeler struct {
	completer Completer
	// budget bounds the total time spent retrying one label.
	budget time.Duration

	// newBackOff is replaced in tests to avoid real sleeps.
	newBackOff func(budget time.Duration) backoff.BackOff
}

// New creates a Labeler. A non-positive budget falls back to DefaultBudget.
func New(completer Completer, budget time.Duration) *Labeler {
	if budget <= 0 {
		budget = DefaultBudget
	}
	return &Labeler{completer: completer, budget: budget, newBackOff: exponential}
}

func exponential(budget time.Duration) backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 1 * time.Second
	bo.MaxInterval = 30 * time.Second
	bo.MaxElapsedTime = budget
	return bo
}

// Prompt asks for an eight-word summary of members that leaves out the product name.
func Prompt(product string, members []string) string {
	list, _ := json.Marshal(members)
	return fmt.Sprintf(`Please summarize the content in the list within eight words.
All the contents are refering to %[1]s.
Do not include %[1]s name in the summary.

List: %[2]s`, product, list)
}

// Label returns the model's summary of members, trimmed of surrounding space.
// Errors that cannot succeed on retry end the loop early. When the budget is
// spent the last error is returned wrapped in entity.ErrLabeling.
func (l *Labeler) Label(ctx context.Context, product string, members []string) (string, error) {
	budgetCtx, cancel := context.WithTimeout(ctx, l.budget)
	defer cancel()

	prompt := Prompt(product, members)
	attempts := 0

	var label string
	op := func() error {
		attempts++
		out, err := l.completer.Complete(metrics.WithOperation(budgetCtx, "label"), prompt, defaultTemperature)
		if err != nil {
			var httpErr *retry.HTTPError
			if errors.As(err, &httpErr) && !httpErr.Retryable() {
				return backoff.Permanent(err)
			}
			return err
		}
		label = strings.TrimSpace(out)
		return nil
	}

	notify := func(err error, wait time.Duration) {
		slog.WarnContext(ctx, "topic label failed, retrying",
			slog.Int("attempt", attempts),
			slog.Int("members", len(members)),
			slog.Duration("wait", wait),
			slog.Any("error", err))
	}

	if err := backoff.RetryNotify(op, backoff.WithContext(l.newBackOff(l.budget), budgetCtx), notify); err != nil {
		return "", fmt.Errorf("%w: after %d attempts: %w", entity.ErrLabeling, attempts, err)
	}

	return label, nil
}
