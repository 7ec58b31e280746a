// Package remote sends a question to a text-generation endpoint and returns
// the answer text.
package remote

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dhamidi/askiq/history"
)

const (
	// NoAnswerText replaces a response that carries no extractable answer.
	NoAnswerText = "No response received."
	// FailureText replaces the answer when the request itself failed.
	FailureText = "An error occurred. Please try again."
)

// Query is a single question and the time it was asked.
type Query struct {
	Question string
	AskedAt  time.Time
}

// Prompt is the text sent upstream for the query.
func (q Query) Prompt() string {
	return fmt.Sprintf("%s\n(Asked on %s)", q.Question, q.AskedAt.Format(history.TimestampLayout))
}

// Asker answers a Query. An empty answer with a nil error means the endpoint
// replied but the reply had no answer in it.
type Asker interface {
	Ask(ctx context.Context, q Query) (string, error)
}

// AskerFunc adapts a function to the Asker interface.
type AskerFunc func(ctx context.Context, q Query) (string, error)

func (f AskerFunc) Ask(ctx context.Context, q Query) (string, error) {
	return f(ctx, q)
}

func isRetriable(err error) bool {
	if err == nil {
		return false
	}
	e := strings.ToLower(err.Error())
	for _, marker := range []string{
		"status 500", "status 503", "status 429",
		"an internal error has occurred", "server error", "unavailable", "resource_exhausted",
	} {
		if strings.Contains(e, marker) {
			return true
		}
	}
	return false
}

// withRetries calls fn until it succeeds, fails with a non-retriable error or
// the delays are used up.
func withRetries(ctx context.Context, delays []time.Duration, fn func() (string, error)) (string, error) {
	text, err := fn()
	for attempt := 0; attempt < len(delays) && isRetriable(err); attempt++ {
		if !sleepWithContext(ctx, delays[attempt]) {
			return "", ctx.Err()
		}
		text, err = fn()
	}
	return text, err
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
