package poller

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// TargetInfo contains the configuration needed to probe a single target.
//
// This is the poller-internal representation of a target, decoupled from
// the public pulsecheck.Target type to avoid circular dependencies.
type TargetInfo struct {
	// Name is the display name of the target.
	Name string

	// URL is the address to probe.
	URL string

	// Method is HEAD or GET. Empty defaults to HEAD.
	Method string

	// Headers contains custom HTTP headers to send with requests.
	Headers map[string]string

	// Timeout is the per-request timeout duration.
	Timeout time.Duration

	// MaxRetries is the number of attempts allowed after the first.
	MaxRetries int

	// Accept decides whether a status code counts as healthy.
	// If nil, 2xx and 3xx are accepted.
	Accept func(statusCode int) bool
}

// accepts applies the target's acceptance function. A zero status code
// (no response) is never accepted.
func (t TargetInfo) accepts(code int) bool {
	if code <= 0 {
		return false
	}
	if t.Accept == nil {
		return code >= 200 && code < 400
	}
	return t.Accept(code)
}

// Result summarises the full retry sequence of one target.
type Result struct {
	// OK is true when at least one attempt succeeded.
	OK bool

	// Attempts in the order they were made. Never empty.
	Attempts []Attempt
}

// Last returns the final attempt of the sequence.
func (r Result) Last() Attempt {
	if len(r.Attempts) == 0 {
		return Attempt{}
	}
	return r.Attempts[len(r.Attempts)-1]
}

func newResult(attempts []Attempt) Result {
	ok := false
	for _, a := range attempts {
		if a.Succeeded {
			ok = true
			break
		}
	}
	return Result{OK: ok, Attempts: attempts}
}

// Scheduler runs the retry controller for many targets with bounded
// concurrency.
//
// A fixed pool of workers claims target indices from a shared atomic cursor
// and writes each result into its own slot, so output order always matches
// input order and no locking is needed.
type Scheduler struct {
	concurrency int
	retrier     *Retrier
	logger      *slog.Logger
}

// NewScheduler creates a [Scheduler].
//
// Parameters:
//   - fetcher: performs the HTTP requests (usually a [Client])
//   - concurrency: maximum number of targets in flight at once (minimum 1)
//   - logger: logger for per-target outcomes and panic recovery
func NewScheduler(fetcher Fetcher, concurrency int, logger *slog.Logger) *Scheduler {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Scheduler{
		concurrency: concurrency,
		retrier:     NewRetrier(fetcher, logger),
		logger:      logger,
	}
}

// Run checks every target and returns one [Result] per target, in input order.
//
// At most the configured number of targets are checked simultaneously; each
// worker handles one target at a time from first probe to final attempt.
// A failing target never aborts or delays the others.
func (s *Scheduler) Run(ctx context.Context, targets []TargetInfo) []Result {
	results := make([]Result, len(targets))
	if len(targets) == 0 {
		return results
	}

	workers := min(s.concurrency, len(targets))

	var (
		cursor atomic.Int64
		g      errgroup.Group
	)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for {
				i := int(cursor.Add(1) - 1)
				if i >= len(targets) {
					return nil
				}
				results[i] = s.retrier.CheckWithRetries(ctx, targets[i])
				s.logResult(targets[i], results[i])
			}
		})
	}
	_ = g.Wait() // workers never return errors

	return results
}

// logResult logs a target outcome (DEBUG level for success to reduce noise).
func (s *Scheduler) logResult(t TargetInfo, r Result) {
	last := r.Last()
	attrs := []any{
		"target", t.Name,
		"url", t.URL,
		"attempts", len(r.Attempts),
		"status_code", last.StatusCode,
		"latency_ms", last.Elapsed.Milliseconds(),
	}
	if r.OK {
		s.logger.Debug("target up", attrs...)
		return
	}
	if last.FailureReason != "" {
		attrs = append(attrs, "reason", last.FailureReason)
	}
	s.logger.Warn("target down", attrs...)
}
