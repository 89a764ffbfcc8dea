package pulsecheck

import (
	"errors"
	"log/slog"
)

// checkerConfig holds mutable state during Checker construction.
type checkerConfig struct {
	targets         []Target
	concurrency     int
	logger          *slog.Logger
	resultCallbacks []func(TargetResult)
}

// Option is a function that configures a [Checker] during construction.
//
// Built-in options: [WithTarget], [WithTargets], [WithConcurrency],
// [WithLogger], [WithResultCallback].
type Option func(*checkerConfig) error

// WithTarget adds a single [Target] to the check list.
//
// Can be called multiple times. Targets are checked and reported in the
// order they were added.
func WithTarget(t Target) Option {
	return func(cfg *checkerConfig) error {
		cfg.targets = append(cfg.targets, t)
		return nil
	}
}

// WithTargets adds multiple [Target] values to the check list.
//
// Equivalent to calling [WithTarget] for each target in order.
//
// Example:
//
//	c, err := pulsecheck.New(
//	    pulsecheck.WithTargets(api, web, cdn),
//	)
func WithTargets(targets ...Target) Option {
	return func(cfg *checkerConfig) error {
		cfg.targets = append(cfg.targets, targets...)
		return nil
	}
}

// WithConcurrency sets the maximum number of targets checked simultaneously.
//
// Each in-flight target occupies one worker from its first probe to its
// final attempt, backoff included. Defaults to 5.
//
// Returns an error if the value is zero or negative.
func WithConcurrency(n int) Option {
	return func(cfg *checkerConfig) error {
		if n <= 0 {
			return errors.New("concurrency must be positive")
		}
		cfg.concurrency = n
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the Checker.
//
// If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *checkerConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithResultCallback registers a function called with every [TargetResult]
// once a run has finished probing.
//
// Callbacks run synchronously in target order, in registration order, before
// [Checker.Run] returns. Panics within callbacks are recovered and logged.
//
// Example:
//
//	c, err := pulsecheck.New(
//	    pulsecheck.WithTarget(api),
//	    pulsecheck.WithResultCallback(func(r pulsecheck.TargetResult) {
//	        if !r.OK {
//	            log.Printf("%s is down after %d attempts", r.Name, r.AttemptCount)
//	        }
//	    }),
//	)
//
// Nil callbacks are silently ignored.
func WithResultCallback(cb func(TargetResult)) Option {
	return func(cfg *checkerConfig) error {
		if cb == nil {
			return nil
		}
		cfg.resultCallbacks = append(cfg.resultCallbacks, cb)
		return nil
	}
}
