// Package server provides the HTTP surface for pulsecheck.
//
// This package handles all HTTP concerns:
//
//   - Liveness: "/healthz" always answers 200
//   - Check: "/api/check" runs every target once and answers with an [Envelope]
//   - Latest report: "/api/report" returns the last report of this process
//   - Server-Sent Events: "/api/events" streams reports as runs complete
//   - Metrics: "/metrics" in Prometheus exposition format
//
// Every "/api" route sits behind a bearer-token gate when a token is
// configured (see [RequireToken]). The server supports graceful shutdown via
// context cancellation, with a 5-second timeout for in-flight requests.
package server
