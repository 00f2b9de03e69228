package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"contractreview-backend/internal/llm"
	"contractreview-backend/internal/shared/telemetry"
)

// RetryingClient wraps an llm.Client and retries transient failures.
// Malformed responses are never retried: a model that answered with the
// wrong shape once will usually do so again, and the caller has its own
// fallback for that.
type RetryingClient struct {
	Inner    llm.Client
	Attempts int
	Backoff  time.Duration
}

// NewRetryingClient wraps inner with up to attempts tries per call.
func NewRetryingClient(inner llm.Client, attempts int, backoff time.Duration) *RetryingClient {
	if attempts < 1 {
		attempts = 1
	}
	return &RetryingClient{Inner: inner, Attempts: attempts, Backoff: backoff}
}

func (c *RetryingClient) Complete(ctx context.Context, req llm.Request) (json.RawMessage, error) {
	var lastErr error
	for attempt := 1; attempt <= c.Attempts; attempt++ {
		raw, err := c.Inner.Complete(ctx, req)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if !errors.Is(err, llm.ErrUnavailable) {
			return nil, err
		}
		if attempt == c.Attempts {
			break
		}
		telemetry.Error("llm.retry", map[string]any{
			"task":    req.Task,
			"attempt": attempt,
			"error":   err.Error(),
		})
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.Backoff * time.Duration(attempt)):
		}
	}
	return nil, lastErr
}

var _ llm.Client = (*RetryingClient)(nil)
