// Package retry provides bounded fixed-delay retry for fallible operations.
package retry

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Policy configures retry behavior: an operation runs at most MaxRetries+1
// times with Delay between attempts.
type Policy struct {
	MaxRetries uint
	Delay      time.Duration
}

// Do executes op until it succeeds or the policy is exhausted. The delay is
// slept between attempts, not before the first, and each retry is logged
// with its attempt number. The last observed error is returned unchanged.
func Do[T any](ctx context.Context, log *zap.Logger, policy Policy, name string, op func(context.Context) (T, error)) (T, error) {
	var result T
	var lastErr error

	for attempt := uint(0); attempt <= policy.MaxRetries; attempt++ {
		if attempt > 0 {
			log.Warn("retrying operation",
				zap.String("operation", name),
				zap.Uint("attempt", attempt),
				zap.Uint("max_retries", policy.MaxRetries))

			timer := time.NewTimer(policy.Delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				if lastErr != nil {
					return result, lastErr
				}
				return result, ctx.Err()
			case <-timer.C:
			}
		}

		result, lastErr = op(ctx)
		if lastErr == nil {
			return result, nil
		}
		log.Error("operation failed",
			zap.String("operation", name),
			zap.Error(lastErr))
	}

	return result, lastErr
}

// Run is Do for operations without a result.
func Run(ctx context.Context, log *zap.Logger, policy Policy, name string, op func(context.Context) error) error {
	_, err := Do(ctx, log, policy, name, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}
