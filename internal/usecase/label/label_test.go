package label

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yt-sentiment/internal/domain/entity"
	"yt-sentiment/internal/resilience/retry"
)

type scriptedCompleter struct {
	replies []reply
	calls   int
	prompts []string
	temps   []float64
}

type reply struct {
	text string
	err  error
}

func (s *scriptedCompleter) Complete(_ context.Context, prompt string, temperature float64) (string, error) {
	s.prompts = append(s.prompts, prompt)
	s.temps = append(s.temps, temperature)
	r := s.replies[min(s.calls, len(s.replies)-1)]
	s.calls++
	return r.text, r.err
}

// fastLabeler retries immediately, at most maxRetries times.
func fastLabeler(c Completer, maxRetries uint64) *Labeler {
	l := New(c, time.Minute)
	l.newBackOff = func(time.Duration) backoff.BackOff {
		return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, maxRetries)
	}
	return l
}

func TestPrompt(t *testing.T) {
	p := Prompt("Pixel 8", []string{"great battery", `battery "lasts" long`})

	assert.True(t, strings.HasPrefix(p, "Please summarize the content in the list within eight words."))
	assert.Contains(t, p, "All the contents are refering to Pixel 8.")
	assert.Contains(t, p, "Do not include Pixel 8 name in the summary.")
	assert.Contains(t, p, `List: ["great battery","battery \"lasts\" long"]`)
}

func TestLabel_Success(t *testing.T) {
	c := &scriptedCompleter{replies: []reply{{text: "  Long lasting battery life\n"}}}

	got, err := fastLabeler(c, 3).Label(context.Background(), "Pixel 8", []string{"a", "b"})

	require.NoError(t, err)
	assert.Equal(t, "Long lasting battery life", got)
	assert.Equal(t, 1, c.calls)
	assert.Equal(t, defaultTemperature, c.temps[0])
}

func TestLabel_RetriesTransientFailures(t *testing.T) {
	c := &scriptedCompleter{replies: []reply{
		{err: &retry.HTTPError{StatusCode: 503, Message: "overloaded"}},
		{err: errors.New("connection reset")},
		{text: "Battery life"},
	}}

	got, err := fastLabeler(c, 5).Label(context.Background(), "Pixel 8", []string{"a", "b"})

	require.NoError(t, err)
	assert.Equal(t, "Battery life", got)
	assert.Equal(t, 3, c.calls)
}

func TestLabel_ExhaustedBudget(t *testing.T) {
	c := &scriptedCompleter{replies: []reply{{err: &retry.HTTPError{StatusCode: 500, Message: "boom"}}}}

	_, err := fastLabeler(c, 2).Label(context.Background(), "Pixel 8", []string{"a", "b"})

	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrLabeling)
	var httpErr *retry.HTTPError
	assert.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 3, c.calls)
}

func TestLabel_PermanentErrorStopsEarly(t *testing.T) {
	c := &scriptedCompleter{replies: []reply{{err: &retry.HTTPError{StatusCode: 400, Message: "bad request"}}}}

	_, err := fastLabeler(c, 10).Label(context.Background(), "Pixel 8", []string{"a", "b"})

	assert.ErrorIs(t, err, entity.ErrLabeling)
	assert.Equal(t, 1, c.calls)
}

func TestLabel_BudgetBoundsWallClock(t *testing.T) {
	c := &scriptedCompleter{replies: []reply{{err: errors.New("unavailable")}}}
	l := New(c, 50*time.Millisecond)
	l.newBackOff = func(budget time.Duration) backoff.BackOff {
		bo := backoff.NewExponentialBackOff()
		bo.InitialInterval = 5 * time.Millisecond
		bo.MaxElapsedTime = budget
		return bo
	}

	start := time.Now()
	_, err := l.Label(context.Background(), "Pixel 8", []string{"a", "b"})

	assert.ErrorIs(t, err, entity.ErrLabeling)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Greater(t, c.calls, 1)
}

func TestLabel_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := &scriptedCompleter{replies: []reply{{err: errors.New("unavailable")}}}

	_, err := fastLabeler(c, 10).Label(ctx, "Pixel 8", []string{"a", "b"})

	assert.ErrorIs(t, err, entity.ErrLabeling)
}

func TestNew_DefaultBudget(t *testing.T) {
	l := New(&scriptedCompleter{}, 0)
	assert.Equal(t, DefaultBudget, l.budget)
}
