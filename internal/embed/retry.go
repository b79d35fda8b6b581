package embed

import (
	"context"
	"fmt"
	"time"
)

// RetryingClient applies a per-call timeout and a bounded retry to an
// embedding client. A call that still fails after the last attempt returns
// the final error; the caller skips the affected strategy and continues.
type RetryingClient struct {
	Inner   Client
	Timeout time.Duration
	Retries int
}

func (c *RetryingClient) Embed(ctx context.Context, text string) ([]float32, error) {
	var lastErr error

	for attempt := 0; attempt <= c.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * 200 * time.Millisecond):
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, c.Timeout)
		vec, err := c.Inner.Embed(callCtx, text)
		cancel()
		if err == nil {
			return vec, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("embedding failed after %d attempts: %w", c.Retries+1, lastErr)
}
