package server

import (
	"context"
	"net/http"

	"github.com/jpalmerr/pulsecheck"
	"github.com/jpalmerr/pulsecheck/internal/alert"
	"github.com/jpalmerr/pulsecheck/internal/metrics"
)

// Runner executes one check run. [pulsecheck.Checker] implements it.
type Runner interface {
	Run(ctx context.Context) pulsecheck.Report
}

// Alerter notifies about down targets. [alert.Dispatcher] implements it.
type Alerter interface {
	Dispatch(ctx context.Context, report pulsecheck.Report) (alert.Outcome, error)
}

// Envelope is the response body of one invocation.
//
// OK is true only when every target is up and alert dispatch did not fail.
type Envelope struct {
	OK     bool              `json:"ok"`
	Report pulsecheck.Report `json:"report"`
	Alert  AlertStatus       `json:"alert"`
}

// AlertStatus summarises the alert dispatch of an invocation.
type AlertStatus struct {
	Attempted bool     `json:"attempted"`
	Sent      bool     `json:"sent"`
	Channels  []string `json:"channels"`
	Error     string   `json:"error,omitempty"`
}

// StatusCode is the HTTP status for the envelope: 500 when alert dispatch
// failed, 200 otherwise (down targets included).
func (e Envelope) StatusCode() int {
	if e.Alert.Error != "" {
		return http.StatusInternalServerError
	}
	return http.StatusOK
}

// Execute runs every target once, dispatches alerts for down targets and
// records metrics. A nil alerter skips dispatch.
func Execute(ctx context.Context, runner Runner, alerter Alerter) Envelope {
	report := runner.Run(ctx)
	metrics.ObserveReport(report)

	status := AlertStatus{Channels: []string{}}
	if alerter != nil {
		outcome, err := alerter.Dispatch(ctx, report)
		metrics.ObserveAlert(outcome.Attempted, err)

		status.Attempted = outcome.Attempted
		status.Sent = outcome.Sent()
		if outcome.Delivered != nil {
			status.Channels = outcome.Delivered
		}
		if err != nil {
			status.Error = err.Error()
		}
	}

	return Envelope{
		OK:     report.AllOK && status.Error == "",
		Report: report,
		Alert:  status,
	}
}
