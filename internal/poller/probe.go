package poller

import (
	"context"
	"net/http"
	"time"
)

// Attempt is the outcome of one probe of a target.
type Attempt struct {
	// Succeeded is true when a response arrived and the acceptance rule matched.
	Succeeded bool

	// StatusCode of the final response. Zero when no response arrived.
	StatusCode int

	// StatusText is the reason phrase matching StatusCode.
	StatusText string

	// FailureReason explains a transport failure ("timeout", "dns: ...").
	// Empty whenever a response arrived, even if the rule rejected it.
	FailureReason string

	// Elapsed covers the whole probe, including a HEAD to GET fallback.
	Elapsed time.Duration
}

// Fetcher issues a single HTTP request. [Client] is the production
// implementation.
type Fetcher interface {
	Fetch(ctx context.Context, method, url string, headers map[string]string, timeout time.Duration) Response
}

// ProbeOnce issues one probe of the target and classifies the outcome.
//
// When the target uses HEAD and the server answers 405 or 501, exactly one
// GET follows against the same address with a fresh full timeout, and the
// attempt reflects only that second response. No retries happen here.
func ProbeOnce(ctx context.Context, f Fetcher, t TargetInfo) Attempt {
	start := time.Now()

	method := t.Method
	if method == "" {
		method = http.MethodHead
	}

	resp := f.Fetch(ctx, method, t.URL, t.Headers, t.Timeout)
	if method == http.MethodHead && resp.Error == nil && rejectsHead(resp.StatusCode) {
		resp = f.Fetch(ctx, http.MethodGet, t.URL, t.Headers, t.Timeout)
	}

	elapsed := time.Since(start)

	if resp.Error != nil {
		return Attempt{
			FailureReason: resp.Reason,
			Elapsed:       elapsed,
		}
	}

	return Attempt{
		Succeeded:  t.accepts(resp.StatusCode),
		StatusCode: resp.StatusCode,
		StatusText: resp.StatusText,
		Elapsed:    elapsed,
	}
}

// rejectsHead reports whether a status code signals that HEAD is unsupported.
func rejectsHead(code int) bool {
	return code == http.StatusMethodNotAllowed || code == http.StatusNotImplemented
}
