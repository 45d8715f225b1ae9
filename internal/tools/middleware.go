package tools

import (
	"context"
	"time"

	"github.com/Verdenroz/buff-ai/internal/metrics"
	"github.com/Verdenroz/buff-ai/pkg/errors"
)

// WithRetry retries a failing tool with a fixed backoff. Invalid arguments
// are not retried. The final error from the last attempt is returned.
func WithRetry(t Tool, attempts int, backoff time.Duration) Tool {
	if attempts <= 1 {
		return t
	}

	return New(t.Name(), t.Description(), t.Parameters(), func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		var result interface{}
		var err error

		for i := 0; i < attempts; i++ {
			result, err = t.Execute(ctx, args)
			if err == nil || errors.Is(err, errors.ErrInvalidInput) {
				return result, err
			}

			if backoff > 0 && i < attempts-1 {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(backoff):
				}
			}
		}

		return result, err
	})
}

// WithTimeout enforces a per-call deadline
func WithTimeout(t Tool, timeout time.Duration) Tool {
	if timeout <= 0 {
		return t
	}

	return New(t.Name(), t.Description(), t.Parameters(), func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return t.Execute(ctxWithTimeout, args)
	})
}

// WithMetrics records execution count and latency
func WithMetrics(t Tool) Tool {
	return New(t.Name(), t.Description(), t.Parameters(), func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		start := time.Now()
		result, err := t.Execute(ctx, args)
		metrics.RecordToolExecution(t.Name(), time.Since(start), err)
		return result, err
	})
}
