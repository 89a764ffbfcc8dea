package poller

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
)

// Backoff between failed attempts of one target: 250ms, 500ms, 1s, 2s, 2s, ...
const (
	BaseBackoff = 250 * time.Millisecond
	MaxBackoff  = 2 * time.Second
)

// SleepFunc suspends the calling goroutine between attempts.
type SleepFunc func(ctx context.Context, d time.Duration)

// NewBackoff returns the backoff schedule used between failed attempts.
// Each call starts a fresh sequence.
func NewBackoff() retry.Backoff {
	return retry.WithCappedDuration(MaxBackoff, retry.NewExponential(BaseBackoff))
}

// Retrier drives [ProbeOnce] through the attempts allowed for a target.
type Retrier struct {
	fetcher Fetcher
	sleep   SleepFunc
	logger  *slog.Logger
}

// NewRetrier creates a [Retrier] that probes through fetcher.
func NewRetrier(fetcher Fetcher, logger *slog.Logger) *Retrier {
	return &Retrier{
		fetcher: fetcher,
		sleep:   sleepContext,
		logger:  logger,
	}
}

// CheckWithRetries probes t until an attempt succeeds or
// max(1, MaxRetries+1) attempts have been made.
//
// A backoff delay separates consecutive attempts; none is incurred after a
// success or after the final attempt. Exhaustion is a normal outcome carried
// in the returned [Result], never an error.
func (r *Retrier) CheckWithRetries(ctx context.Context, t TargetInfo) Result {
	allowed := max(1, t.MaxRetries+1)
	backoff := NewBackoff()
	attempts := make([]Attempt, 0, allowed)

	for i := 1; i <= allowed; i++ {
		attempt := r.safeProbe(ctx, t)
		attempts = append(attempts, attempt)

		if attempt.Succeeded {
			break
		}

		if i < allowed {
			delay, _ := backoff.Next()
			r.logger.Debug("attempt failed, backing off",
				"target", t.Name,
				"attempt", i,
				"status_code", attempt.StatusCode,
				"reason", attempt.FailureReason,
				"delay_ms", delay.Milliseconds(),
			)
			r.sleep(ctx, delay)
		}
	}

	return newResult(attempts)
}

// safeProbe calls ProbeOnce with panic recovery.
// A panic is logged with a correlation ID and recorded as a failed attempt.
func (r *Retrier) safeProbe(ctx context.Context, t TargetInfo) (attempt Attempt) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			correlationID := uuid.NewString()
			r.logger.Error("probe panic",
				"correlation_id", correlationID,
				"target", t.Name,
				"panic", fmt.Sprintf("%v", rec),
				"stack", string(debug.Stack()),
			)
			attempt = Attempt{
				FailureReason: fmt.Sprintf("internal error (correlation_id: %s)", correlationID),
				Elapsed:       time.Since(start),
			}
		}
	}()
	return ProbeOnce(ctx, r.fetcher, t)
}

// sleepContext waits for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
