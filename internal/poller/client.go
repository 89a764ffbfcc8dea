package poller

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"
	"time"
)

// maxDrainSize bounds how much of a response body is read before closing it.
// Draining lets the transport reuse the connection; bodies are never inspected.
const maxDrainSize = 64 << 10 // 64KB

// connection pooling limits to prevent resource exhaustion when probing many targets
const (
	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 10
	defaultMaxConnsPerHost     = 10
	defaultIdleConnTimeout     = 60 * time.Second // conservative: matches common ALB defaults
)

// Failure reasons recorded on attempts that produced no HTTP response.
const (
	ReasonTimeout  = "timeout"
	ReasonCanceled = "canceled"
)

// Response holds the result of an HTTP request made by [Client].
type Response struct {
	// StatusCode is the HTTP status code (e.g., 200, 404, 500).
	// Zero if the request failed before receiving a response.
	StatusCode int

	// StatusText is the reason phrase of the response, e.g. "Not Found".
	StatusText string

	// Latency is the total time taken for the request.
	Latency time.Duration

	// Error contains any transport-level error that occurred.
	// nil indicates a response was received, whatever its status.
	Error error

	// Reason is a short classification of Error ("timeout", "dns: ...").
	// Empty when Error is nil.
	Reason string
}

// Client is an HTTP client wrapper tuned for probing health endpoints.
//
// Client uses per-request timeouts via context rather than a global timeout,
// allowing different targets to have different timeout configurations.
// The in-flight request is cancelled when the timeout expires.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a new probing [Client].
//
// The client is configured with connection pooling limits to prevent resource
// exhaustion when probing many targets. Redirects are followed (up to the
// net/http default of 10). Timeouts are applied per-request via the context
// in [Client.Fetch], not as a global client timeout.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			// no default timeout - we use per-request timeouts via context
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
				MaxConnsPerHost:     defaultMaxConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
				DisableKeepAlives:   false, // explicitly enable connection reuse
			},
		},
	}
}

// NewClientWith wraps an existing [http.Client]. The client's own Timeout
// should be zero; Fetch applies per-request timeouts.
func NewClientWith(hc *http.Client) *Client {
	return &Client{httpClient: hc}
}

// Fetch performs one HTTP request and returns a structured [Response].
//
// If method is empty, HEAD is used. The timeout is applied via context
// cancellation and covers the whole exchange up to the response headers.
//
// Fetch always returns a Response; errors are captured in the Error field
// rather than returned separately. This simplifies handling in the prober.
func (c *Client) Fetch(ctx context.Context, method, url string, headers map[string]string, timeout time.Duration) Response {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()

	if method == "" {
		method = http.MethodHead
	}

	req, err := http.NewRequestWithContext(reqCtx, method, url, nil)
	if err != nil {
		err = fmt.Errorf("failed to create request: %w", err)
		return Response{
			Latency: time.Since(start),
			Error:   err,
			Reason:  err.Error(),
		}
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{
			Latency: time.Since(start),
			Error:   fmt.Errorf("request failed: %w", err),
			Reason:  classifyError(ctx, reqCtx, err),
		}
	}
	latency := time.Since(start)

	// drain with a size limit so the connection can go back to the pool
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainSize))
	_ = resp.Body.Close()

	return Response{
		StatusCode: resp.StatusCode,
		StatusText: http.StatusText(resp.StatusCode),
		Latency:    latency,
	}
}

// Close closes all idle connections in the client's connection pool.
//
// Safe to call multiple times. After Close, the client remains usable but
// new connections will be established as needed.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}

	c.httpClient.CloseIdleConnections()
}

// classifyError turns a transport error into a stable, human-readable reason.
//
// parent is the caller's context and reqCtx the per-request one derived from
// it; a deadline on reqCtx alone means the probe timeout fired.
func classifyError(parent, reqCtx context.Context, err error) string {
	if parent.Err() != nil {
		if errors.Is(parent.Err(), context.DeadlineExceeded) {
			return ReasonTimeout
		}
		return ReasonCanceled
	}
	if errors.Is(reqCtx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ReasonTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "dns: " + dnsErr.Err
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return "connection refused"
	}
	if errors.Is(err, syscall.ECONNRESET) {
		return "connection reset"
	}

	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return "tls: " + certErr.Err.Error()
	}
	var unknownAuth x509.UnknownAuthorityError
	if errors.As(err, &unknownAuth) {
		return "tls: " + unknownAuth.Error()
	}
	var hostErr x509.HostnameError
	if errors.As(err, &hostErr) {
		return "tls: " + hostErr.Error()
	}
	var recordErr tls.RecordHeaderError
	if errors.As(err, &recordErr) {
		return "tls: " + recordErr.Msg
	}

	return err.Error()
}
