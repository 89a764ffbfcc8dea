// Package pulsecheck runs one-shot health checks over a list of HTTP targets
// and folds the outcomes into a single report.
//
// A run probes every target with bounded concurrency, retries failures with
// capped exponential backoff, and judges each response against a declarative
// status-code [Rule]. Nothing is persisted between runs.
//
// # Quick Start
//
//	api, _ := pulsecheck.NewTarget("https://api.example.com/health",
//	    pulsecheck.WithName("API"),
//	)
//	c, _ := pulsecheck.New(pulsecheck.WithTarget(api))
//	defer c.Close()
//
//	report := c.Run(ctx)
//	fmt.Println(report.Totals.Up, "up,", report.Totals.Down, "down")
//
// # Targets
//
// Targets are immutable and configured with options:
//
//	t, err := pulsecheck.NewTarget("https://shop.example.com",
//	    pulsecheck.WithMethod("GET"),
//	    pulsecheck.WithTimeout(5 * time.Second),
//	    pulsecheck.WithMaxRetries(3),
//	    pulsecheck.WithRule(pulsecheck.Not(pulsecheck.In(503))),
//	    pulsecheck.WithLabels("env", "production"),
//	)
//
// Probes use HEAD by default. A server answering HEAD with 405 or 501 is
// asked again once with GET inside the same attempt.
//
// Many similar targets can be generated with [NewTargetGrid].
//
// # Rules
//
// A [Rule] is one of:
//
//   - [DefaultRule]: any 2xx or 3xx status
//   - [In]: an explicit set of codes
//   - [Between]: one inclusive range
//   - [AnyOf]: several inclusive ranges
//   - [Not]: the negation of another rule
//
// A missing status code (timeout or transport error) never matches, even
// under negation. Rules built from malformed configuration are [InvalidRule]
// values that never match.
//
// # Retries
//
// Each target gets MaxRetries+1 attempts. The sequence stops at the first
// success. Between attempts the checker sleeps 250ms, 500ms, 1s, then 2s
// for every later gap.
//
// # Architecture
//
// pulsecheck consists of several internal packages (under internal/):
//
//   - poller: HTTP probing, retries and the bounded worker pool
//   - alert: email and Telegram notifications for down targets
//   - server: authenticated HTTP trigger and JSON envelope
//   - store: latest report and live event fan-out
//   - metrics: Prometheus collectors
//   - logger: slog handler construction
//
// These packages are not part of the public API.
package pulsecheck
