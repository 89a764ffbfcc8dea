package pulsecheck

import (
	"errors"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultTargetTimeout    = 10 * time.Second
	defaultTargetMaxRetries = 2
	defaultTargetMethod     = http.MethodHead
)

// Target is a remote endpoint to probe.
//
// Target is immutable after creation via [NewTarget]. All fields are private
// with getter methods that return copies of mutable data (maps and rules),
// so a Target can be shared between goroutines without synchronisation.
//
// Targets are configured using the functional options pattern with
// [TargetOption] functions such as [WithName], [WithMethod], [WithTimeout],
// [WithMaxRetries], [WithRule], [WithHeaders] and [WithLabels].
//
// A target's identity is its address. Two targets with the same address are
// probed independently.
type Target struct {
	name       string
	address    string
	method     string
	timeout    time.Duration
	maxRetries int
	rule       Rule
	headers    map[string]string
	labels     map[string]string
}

// Address returns the URL that is probed.
func (t Target) Address() string {
	return t.address
}

// Name returns the display name used in reports and alerts.
// Defaults to the address when not set via [WithName].
func (t Target) Name() string {
	return t.name
}

// Method returns the probe method, either HEAD (the default) or GET.
func (t Target) Method() string {
	return t.method
}

// Timeout returns the per-request timeout. Defaults to 10 seconds.
func (t Target) Timeout() time.Duration {
	return t.timeout
}

// MaxRetries returns how many additional attempts follow a failed first
// attempt. Defaults to 2, giving three attempts in total.
func (t Target) MaxRetries() int {
	return t.maxRetries
}

// Rule returns the acceptance rule applied to response status codes.
// Defaults to [DefaultRule].
func (t Target) Rule() Rule {
	return t.rule
}

// Headers returns a copy of the custom HTTP headers sent with every probe.
// Returns nil if no custom headers are set.
func (t Target) Headers() map[string]string {
	return copyMap(t.headers)
}

// Labels returns a copy of the target's labels.
// Labels are free-form metadata carried into results and alerts.
// Returns nil if no labels are set.
func (t Target) Labels() map[string]string {
	return copyMap(t.labels)
}

// NewTarget creates a [Target] for the given address.
//
// The address must be an absolute http:// or https:// URL. Options are
// applied in order; the first failing option aborts construction.
//
// Example:
//
//	t, err := pulsecheck.NewTarget("https://api.example.com/health",
//	    pulsecheck.WithName("API"),
//	    pulsecheck.WithMethod("GET"),
//	    pulsecheck.WithRule(pulsecheck.Not(pulsecheck.In(503))),
//	)
func NewTarget(address string, opts ...TargetOption) (Target, error) {
	if address == "" {
		return Target{}, errors.New("target address cannot be empty")
	}

	parsedURL, err := url.Parse(address)
	if err != nil {
		return Target{}, errors.New("invalid URL: " + err.Error())
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return Target{}, errors.New("URL must have a scheme (http:// or https://)")
	}

	if parsedURL.Host == "" {
		return Target{}, errors.New("URL must have a host")
	}

	cfg := &targetConfig{
		method:     defaultTargetMethod,
		timeout:    defaultTargetTimeout,
		maxRetries: defaultTargetMaxRetries,
		headers:    make(map[string]string),
		labels:     make(map[string]string),
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return Target{}, err
		}
	}

	name := cfg.name
	if name == "" {
		name = address
	}

	return Target{
		name:       name,
		address:    address,
		method:     cfg.method,
		timeout:    cfg.timeout,
		maxRetries: cfg.maxRetries,
		rule:       cfg.rule,
		headers:    cfg.headers,
		labels:     cfg.labels,
	}, nil
}

// copyMap returns a shallow copy of the map.
func copyMap(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	cp := make(map[string]string, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}
