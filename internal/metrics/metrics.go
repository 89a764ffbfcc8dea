// Package metrics exposes Prometheus collectors for check runs and alert
// dispatches.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jpalmerr/pulsecheck"
)

var (
	// RunsTotal counts completed runs.
	RunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pulsecheck_runs_total",
			Help: "Total number of completed check runs",
		},
	)

	// AttemptsTotal counts probe attempts by outcome (success, rejected, failed).
	AttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulsecheck_attempts_total",
			Help: "Total number of probe attempts",
		},
		[]string{"outcome"},
	)

	// AttemptDuration tracks per-attempt latency.
	AttemptDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pulsecheck_attempt_duration_seconds",
			Help:    "Probe attempt duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Targets holds the up/down split of the latest run.
	Targets = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pulsecheck_targets",
			Help: "Number of targets by state in the latest run",
		},
		[]string{"state"},
	)

	// AlertsTotal counts alert dispatches by result (sent, failed, skipped).
	AlertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulsecheck_alerts_total",
			Help: "Total number of alert dispatches",
		},
		[]string{"result"},
	)
)

// Attempt outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Alert results.
const (
	AlertSent    = "sent"
	AlertFailed  = "failed"
	AlertSkipped = "skipped"
)

// ObserveReport records one finished run.
func ObserveReport(report pulsecheck.Report) {
	RunsTotal.Inc()

	for _, r := range report.Results {
		for _, a := range r.Attempts {
			AttemptsTotal.WithLabelValues(attemptOutcome(a)).Inc()
			AttemptDuration.Observe((time.Duration(a.ElapsedMs) * time.Millisecond).Seconds())
		}
	}

	Targets.WithLabelValues("up").Set(float64(report.Totals.Up))
	Targets.WithLabelValues("down").Set(float64(report.Totals.Down))
}

// ObserveAlert records the result of one dispatch. attempted is false when
// nothing was sent because every target was up or no channel is configured.
func ObserveAlert(attempted bool, err error) {
	switch {
	case err != nil:
		AlertsTotal.WithLabelValues(AlertFailed).Inc()
	case attempted:
		AlertsTotal.WithLabelValues(AlertSent).Inc()
	default:
		AlertsTotal.WithLabelValues(AlertSkipped).Inc()
	}
}

func attemptOutcome(a pulsecheck.Attempt) string {
	switch {
	case a.Succeeded:
		return OutcomeSuccess
	case a.StatusCode != 0:
		return OutcomeRejected
	default:
		return OutcomeFailed
	}
}
