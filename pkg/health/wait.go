package health

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// WaitOptions controls readiness polling
type WaitOptions struct {
	// InitialDelay is the delay after the first failed check
	InitialDelay time.Duration

	// MaxDelay caps the delay between checks
	MaxDelay time.Duration

	Logger *slog.Logger
}

// DefaultWaitOptions returns the polling schedule used by the host after launching the backend
func DefaultWaitOptions() WaitOptions {
	return WaitOptions{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     2 * time.Second,
	}
}

// WaitReady polls checker until it reports healthy or ctx is done.
// On cancellation the returned error wraps both ctx.Err() and the last check error.
func WaitReady(ctx context.Context, checker Checker, opts WaitOptions) error {
	defaults := DefaultWaitOptions()
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = defaults.InitialDelay
	}
	if opts.MaxDelay < opts.InitialDelay {
		opts.MaxDelay = max(defaults.MaxDelay, opts.InitialDelay)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		status, err := checker.Check(ctx)
		if err == nil {
			logger.Info("backend ready", "status", status, "attempts", attempt+1)
			return nil
		}
		// a check cut short by cancellation says less than the one before it
		if lastErr == nil || ctx.Err() == nil {
			lastErr = err
		}

		delay := ExponentialBackoff(attempt, opts.InitialDelay, opts.MaxDelay)
		logger.Debug("backend not ready", "attempt", attempt+1, "retry_in", delay, "error", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("backend not ready after %d checks: %w: %w", attempt+1, ctx.Err(), lastErr)
		case <-timer.C:
		}
	}
}
