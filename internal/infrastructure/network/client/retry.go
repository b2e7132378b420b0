package client

import (
	"context"
	"time"
)

// withRetry runs fn until it succeeds, returns an error rejected by
// retryable, or maxRetries extra attempts have been spent. The delay doubles
// after every attempt and waiting honours ctx.
func withRetry(ctx context.Context, maxRetries int, baseDelay time.Duration, retryable func(error) bool, onRetry func(attempt int, err error), fn func(context.Context) error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}

	delay := baseDelay
	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= maxRetries || !retryable(err) {
			return err
		}
		if onRetry != nil {
			onRetry(attempt+1, err)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
	}
}
