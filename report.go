package pulsecheck

import "time"

// Attempt is the outcome of one network probe against a target.
//
// Attempt is immutable once produced. A zero StatusCode means no response
// arrived (timeout or transport failure) and FailureReason says why; a
// non-zero StatusCode with Succeeded false means the response was rejected
// by the target's [Rule].
type Attempt struct {
	// Succeeded is true when a response arrived and satisfied the rule.
	Succeeded bool `json:"succeeded"`

	// StatusCode of the final response, omitted when none arrived.
	StatusCode int `json:"status_code,omitempty"`

	// StatusText is the reason phrase of StatusCode, e.g. "Service Unavailable".
	StatusText string `json:"status_text,omitempty"`

	// FailureReason describes a transport failure, e.g. "timeout".
	FailureReason string `json:"failure_reason,omitempty"`

	// ElapsedMs is the wall-clock duration of the probe, including a
	// HEAD to GET fallback when one happened.
	ElapsedMs int64 `json:"elapsed_ms"`
}

// TargetResult summarises one target's full retry sequence.
//
// OK is true iff at least one attempt succeeded. LastAttempt is the final
// entry of Attempts.
type TargetResult struct {
	Name         string            `json:"name"`
	Address      string            `json:"address"`
	OK           bool              `json:"ok"`
	Rule         Rule              `json:"expect"`
	Method       string            `json:"method"`
	AttemptCount int               `json:"attempt_count"`
	LastAttempt  Attempt           `json:"last_attempt"`
	Attempts     []Attempt         `json:"attempts"`
	Labels       map[string]string `json:"labels,omitempty"`
}

// Totals counts targets by outcome.
type Totals struct {
	Checked int `json:"checked"`
	Down    int `json:"down"`
	Up      int `json:"up"`
}

// Report is the aggregated outcome of one run across all targets.
//
// Results keeps the original target order; Down is the subset of Results
// that are not OK, in the same relative order.
type Report struct {
	RunID      string         `json:"run_id,omitempty"`
	AllOK      bool           `json:"all_ok"`
	Totals     Totals         `json:"totals"`
	Down       []TargetResult `json:"down"`
	Results    []TargetResult `json:"results"`
	DurationMs int64          `json:"duration_ms"`
	Timestamp  time.Time      `json:"timestamp"`
}

// Aggregate folds per-target results into a [Report].
//
// Aggregate is a pure function: it only fills AllOK, Totals, Down and
// Results. Run metadata (RunID, DurationMs, Timestamp) is set by the caller.
// Down and Results are never nil so they encode as JSON arrays.
func Aggregate(results []TargetResult) Report {
	all := make([]TargetResult, len(results))
	copy(all, results)

	down := make([]TargetResult, 0)
	for _, r := range all {
		if !r.OK {
			down = append(down, r)
		}
	}

	totals := Totals{
		Checked: len(all),
		Down:    len(down),
	}
	totals.Up = totals.Checked - totals.Down

	return Report{
		AllOK:   totals.Down == 0,
		Totals:  totals,
		Down:    down,
		Results: all,
	}
}
