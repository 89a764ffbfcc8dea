package pulsecheck

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jpalmerr/pulsecheck/internal/poller"
)

const defaultConcurrency = 5

// Checker runs health checks over a fixed list of targets.
//
// Checker is created using [New] with functional options and executed with
// [Checker.Run]. Each call to Run is a complete, independent invocation: no
// state is carried from one run to the next.
//
// The typical lifecycle is:
//
//	c, err := pulsecheck.New(pulsecheck.WithTargets(targets...))
//	if err != nil {
//	    slog.Error("failed to create checker", "error", err)
//	    os.Exit(1)
//	}
//	defer c.Close()
//
//	report := c.Run(ctx)
//	if !report.AllOK {
//	    // alert on report.Down
//	}
type Checker struct {
	targets         []Target
	concurrency     int
	logger          *slog.Logger
	client          *poller.Client
	scheduler       *poller.Scheduler
	resultCallbacks []func(TargetResult)
}

// New creates a new [Checker] with the given options.
//
// An empty target list is valid; running it yields an all-OK report with
// zero totals. Other options have sensible defaults:
//   - Concurrency: 5
//   - Logger: [slog.Default]
//
// Returns an error if any option is invalid.
func New(opts ...Option) (*Checker, error) {
	cfg := &checkerConfig{
		targets:     []Target{},
		concurrency: defaultConcurrency,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	// default to slog.Default() if no logger provided
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	client := poller.NewClient()

	return &Checker{
		targets:         cfg.targets,
		concurrency:     cfg.concurrency,
		logger:          logger,
		client:          client,
		scheduler:       poller.NewScheduler(client, cfg.concurrency, logger),
		resultCallbacks: cfg.resultCallbacks,
	}, nil
}

// Run probes every target once (with retries) and returns the aggregated
// [Report].
//
// Run blocks until every target has reached a terminal state. Target
// failures are data in the report, never errors. Cancelling ctx makes
// in-flight and remaining attempts fail fast with reason "canceled"; the
// report still contains one result per target.
func (c *Checker) Run(ctx context.Context) Report {
	start := time.Now()
	runID := uuid.NewString()
	logger := c.logger.With("run_id", runID)

	logger.Info("run started",
		"target_count", len(c.targets),
		"concurrency", c.concurrency,
	)

	results := c.scheduler.Run(ctx, c.toPollerTargets())

	targetResults := make([]TargetResult, len(results))
	for i, r := range results {
		targetResults[i] = toTargetResult(c.targets[i], r)
		for _, cb := range c.resultCallbacks {
			invokeCallbackSafe(cb, targetResults[i], logger)
		}
	}

	report := Aggregate(targetResults)
	report.RunID = runID
	report.Timestamp = start.UTC()
	report.DurationMs = time.Since(start).Milliseconds()

	logger.Info("run completed",
		"checked", report.Totals.Checked,
		"up", report.Totals.Up,
		"down", report.Totals.Down,
		"duration_ms", report.DurationMs,
	)

	return report
}

// Close releases idle connections held by the checker's HTTP client.
// The checker remains usable afterwards.
func (c *Checker) Close() {
	c.client.Close()
}

// Targets returns a copy of the configured targets.
func (c *Checker) Targets() []Target {
	cp := make([]Target, len(c.targets))
	copy(cp, c.targets)
	return cp
}

// Concurrency returns the maximum number of targets checked at once.
func (c *Checker) Concurrency() int {
	return c.concurrency
}

// toPollerTargets converts Target slice to poller.TargetInfo slice.
func (c *Checker) toPollerTargets() []poller.TargetInfo {
	result := make([]poller.TargetInfo, len(c.targets))

	for i, t := range c.targets {
		rule := t.rule
		result[i] = poller.TargetInfo{
			Name:       t.name,
			URL:        t.address,
			Method:     t.method,
			Headers:    copyMap(t.headers),
			Timeout:    t.timeout,
			MaxRetries: t.maxRetries,
			Accept: func(statusCode int) bool {
				return Matches(statusCode, rule)
			},
		}
	}

	return result
}

// toTargetResult converts an internal poller result to the public API type.
func toTargetResult(t Target, r poller.Result) TargetResult {
	attempts := make([]Attempt, len(r.Attempts))
	for i, a := range r.Attempts {
		attempts[i] = Attempt{
			Succeeded:     a.Succeeded,
			StatusCode:    a.StatusCode,
			StatusText:    a.StatusText,
			FailureReason: a.FailureReason,
			ElapsedMs:     a.Elapsed.Milliseconds(),
		}
	}

	var last Attempt
	if len(attempts) > 0 {
		last = attempts[len(attempts)-1]
	}

	return TargetResult{
		Name:         t.name,
		Address:      t.address,
		OK:           r.OK,
		Rule:         t.rule,
		Method:       t.method,
		AttemptCount: len(attempts),
		LastAttempt:  last,
		Attempts:     attempts,
		Labels:       copyMap(t.labels),
	}
}

// invokeCallbackSafe calls a result callback with panic recovery.
// Panics are logged but do not propagate.
func invokeCallbackSafe(cb func(TargetResult), result TargetResult, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("result callback panicked",
				"panic", r,
				"target", result.Name,
			)
		}
	}()
	cb(result)
}
