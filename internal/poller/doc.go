// Package poller implements the health-check execution engine of pulsecheck.
//
// This package is internal to pulsecheck and handles probing of HTTP targets
// during a single run. Nothing here keeps state between runs.
//
// The main components are:
//
//   - [Client]: HTTP client wrapper with per-request timeouts
//   - [ProbeOnce]: one bounded probe with HEAD to GET fallback
//   - [Retrier]: per-target attempts with capped exponential backoff
//   - [Scheduler]: bounded worker pool over all targets, order preserving
//
// Users of the pulsecheck library should not need to interact with this
// package directly. Configuration is done through the main pulsecheck package.
package poller
