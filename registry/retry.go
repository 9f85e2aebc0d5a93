package registry

import (
	"context"
	"fmt"
	"time"

	"diligence-backend/models"
)

// RetryPolicy describes a bounded fixed-interval retry.
// Retryable classifies which errors are worth another attempt;
// a nil Retryable retries every error.
type RetryPolicy struct {
	MaxAttempts int
	Interval    time.Duration
	Retryable   func(error) bool
}

// Do runs op under the policy. On success it returns nil. Once attempts
// are exhausted the last error is returned wrapped with the attempt
// count, never swallowed into a default result.
func (p RetryPolicy) Do(ctx context.Context, op func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.Interval):
			}
		}

		lastErr = op()
		if lastErr == nil {
			return nil
		}

		if p.Retryable != nil && !p.Retryable(lastErr) {
			return lastErr
		}
	}

	return fmt.Errorf("exhausted %d attempts: %w", attempts, lastErr)
}

// PollUntilReady drives an asynchronous server-side job to completion.
// YES means the job is done. SYNC means the job is running, so wait and
// re-poll without touching it. NO and INIT mean the job has not been
// started (or was dropped), so trigger it and wait before the next poll.
//
// There is no deadline: an upstream job that never completes blocks the
// caller until ctx is cancelled.
func PollUntilReady(
	ctx context.Context,
	interval time.Duration,
	status func(ctx context.Context) (models.SyncStatus, error),
	trigger func(ctx context.Context) error,
) error {
	for {
		st, err := status(ctx)
		if err != nil {
			return err
		}

		switch st {
		case models.StatusYes:
			return nil
		case models.StatusSync:
			// Running upstream, just wait.
		case models.StatusNo, models.StatusInit:
			if err := trigger(ctx); err != nil {
				return err
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}
