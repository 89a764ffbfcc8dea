package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/jpalmerr/pulsecheck"
)

func TestObserveReport(t *testing.T) {
	runs := testutil.ToFloat64(RunsTotal)
	success := testutil.ToFloat64(AttemptsTotal.WithLabelValues(OutcomeSuccess))
	rejected := testutil.ToFloat64(AttemptsTotal.WithLabelValues(OutcomeRejected))
	failed := testutil.ToFloat64(AttemptsTotal.WithLabelValues(OutcomeFailed))

	report := pulsecheck.Aggregate([]pulsecheck.TargetResult{
		{
			Name: "A",
			OK:   true,
			Attempts: []pulsecheck.Attempt{
				{StatusCode: 500},
				{Succeeded: true, StatusCode: 200},
			},
		},
		{
			Name:     "B",
			Attempts: []pulsecheck.Attempt{{FailureReason: "timeout"}},
		},
	})

	ObserveReport(report)

	if got := testutil.ToFloat64(RunsTotal) - runs; got != 1 {
		t.Errorf("runs delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(AttemptsTotal.WithLabelValues(OutcomeSuccess)) - success; got != 1 {
		t.Errorf("success delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(AttemptsTotal.WithLabelValues(OutcomeRejected)) - rejected; got != 1 {
		t.Errorf("rejected delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(AttemptsTotal.WithLabelValues(OutcomeFailed)) - failed; got != 1 {
		t.Errorf("failed delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(Targets.WithLabelValues("up")); got != 1 {
		t.Errorf("targets{up} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(Targets.WithLabelValues("down")); got != 1 {
		t.Errorf("targets{down} = %v, want 1", got)
	}
}

func TestObserveAlert(t *testing.T) {
	tests := []struct {
		name      string
		attempted bool
		err       error
		result    string
	}{
		{"sent", true, nil, AlertSent},
		{"failed", true, errors.New("boom"), AlertFailed},
		{"skipped", false, nil, AlertSkipped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(AlertsTotal.WithLabelValues(tt.result))

			ObserveAlert(tt.attempted, tt.err)

			if got := testutil.ToFloat64(AlertsTotal.WithLabelValues(tt.result)) - before; got != 1 {
				t.Errorf("alerts{%s} delta = %v, want 1", tt.result, got)
			}
		})
	}
}
