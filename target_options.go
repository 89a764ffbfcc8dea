package pulsecheck

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// maxRetriesLimit is the largest accepted retry budget per target.
const maxRetriesLimit = 10

// targetConfig holds mutable state during target construction.
type targetConfig struct {
	name       string
	method     string
	timeout    time.Duration
	maxRetries int
	rule       Rule
	headers    map[string]string
	labels     map[string]string
}

// TargetOption is a function that configures a [Target] during construction.
//
// TargetOption implements the functional options pattern, allowing optional
// configuration to be passed to [NewTarget]. Options return an error if
// validation fails.
type TargetOption func(*targetConfig) error

// WithName sets the display name of the target.
//
// Example:
//
//	t, err := pulsecheck.NewTarget(url, pulsecheck.WithName("Checkout API"))
func WithName(name string) TargetOption {
	return func(cfg *targetConfig) error {
		cfg.name = strings.TrimSpace(name)
		return nil
	}
}

// WithMethod sets the probe method.
//
// HEAD (the default) avoids downloading response bodies. When a server
// answers HEAD with 405 or 501 the probe transparently retries with GET.
// Method names are case-insensitive.
//
// Returns an error if the method is not HEAD or GET.
func WithMethod(method string) TargetOption {
	return func(cfg *targetConfig) error {
		switch m := strings.ToUpper(method); m {
		case http.MethodHead, http.MethodGet:
			cfg.method = m
			return nil
		default:
			return errors.New("method must be HEAD or GET")
		}
	}
}

// WithTimeout sets the per-request timeout for probes of this target.
//
// A request that has not produced response headers within the timeout is
// cancelled and recorded as a "timeout" attempt.
// Defaults to 10 seconds if not specified.
//
// Returns an error if the duration is zero or negative.
func WithTimeout(d time.Duration) TargetOption {
	return func(cfg *targetConfig) error {
		if d <= 0 {
			return errors.New("timeout must be positive")
		}
		cfg.timeout = d
		return nil
	}
}

// WithMaxRetries sets how many retries follow a failed first attempt.
//
// Zero means a single attempt. Defaults to 2.
//
// Returns an error if n is negative or greater than 10.
func WithMaxRetries(n int) TargetOption {
	return func(cfg *targetConfig) error {
		if n < 0 {
			return errors.New("max retries cannot be negative")
		}
		if n > maxRetriesLimit {
			return fmt.Errorf("max retries must not exceed %d", maxRetriesLimit)
		}
		cfg.maxRetries = n
		return nil
	}
}

// WithRule sets the acceptance rule for response status codes.
//
// Invalid rules are accepted; the target is then always reported as down.
//
// Example:
//
//	pulsecheck.WithRule(pulsecheck.AnyOf(
//	    pulsecheck.CodeRange{Min: 200, Max: 299},
//	    pulsecheck.CodeRange{Min: 401, Max: 401},
//	))
func WithRule(r Rule) TargetOption {
	return func(cfg *targetConfig) error {
		cfg.rule = r
		return nil
	}
}

// WithHeaders adds custom HTTP headers to every probe of this target.
//
// Accepts variadic key-value pairs. The number of arguments must be even.
//
// Example:
//
//	t, err := pulsecheck.NewTarget(url,
//	    pulsecheck.WithHeaders("Authorization", "Bearer token123"),
//	)
//
// Returns an error if an odd number of arguments is provided.
func WithHeaders(keyValues ...string) TargetOption {
	return func(cfg *targetConfig) error {
		if len(keyValues)%2 != 0 {
			return errors.New("WithHeaders requires an even number of arguments (key-value pairs)")
		}
		for i := 0; i < len(keyValues); i += 2 {
			cfg.headers[keyValues[i]] = keyValues[i+1]
		}
		return nil
	}
}

// WithLabels attaches metadata labels to the target.
//
// Labels are carried into every [TargetResult] and shown in alerts.
// Accepts variadic key-value pairs. The number of arguments must be even.
//
// Returns an error if an odd number of arguments is provided.
func WithLabels(keyValues ...string) TargetOption {
	return func(cfg *targetConfig) error {
		if len(keyValues)%2 != 0 {
			return errors.New("WithLabels requires an even number of arguments (key-value pairs)")
		}
		for i := 0; i < len(keyValues); i += 2 {
			cfg.labels[keyValues[i]] = keyValues[i+1]
		}
		return nil
	}
}
