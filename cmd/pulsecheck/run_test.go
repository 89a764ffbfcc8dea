package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jpalmerr/pulsecheck/config"
	"github.com/jpalmerr/pulsecheck/internal/server"
)

func newTargetServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/fail" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func runConfig(baseURL string) string {
	return `
concurrency: 2
defaults:
  timeout: 2s
  max_retries: 0
targets:
  - name: Up
    url: ` + baseURL + `/ok
  - name: Down
    url: ` + baseURL + `/fail
`
}

func TestRunOnce_PrintsEnvelope(t *testing.T) {
	t.Setenv("PULSECHECK_LOG_LEVEL", "error")
	ts := newTargetServer(t)
	configPath := writeConfig(t, runConfig(ts.URL))

	output, err := executeCmd(t, "run", "-c", configPath, "--fail-on-down=false")
	if err != nil {
		t.Fatalf("run command error = %v", err)
	}

	var env server.Envelope
	if err := json.Unmarshal([]byte(output), &env); err != nil {
		t.Fatalf("output is not an envelope: %v\nGot: %s", err, output)
	}

	if env.OK {
		t.Error("envelope ok = true, want false")
	}
	if env.Report.Totals.Checked != 2 || env.Report.Totals.Down != 1 {
		t.Errorf("totals = %+v, want 2 checked, 1 down", env.Report.Totals)
	}
	if env.Report.Results[0].Name != "Up" || env.Report.Results[1].Name != "Down" {
		t.Errorf("results out of order: %v, %v", env.Report.Results[0].Name, env.Report.Results[1].Name)
	}
	if got := env.Report.Down[0].LastAttempt.StatusCode; got != http.StatusInternalServerError {
		t.Errorf("down last status = %v, want %v", got, http.StatusInternalServerError)
	}
	if env.Alert.Attempted {
		t.Error("alert.attempted = true with no channels configured")
	}
}

func TestRunOnce_FailOnDown(t *testing.T) {
	t.Setenv("PULSECHECK_LOG_LEVEL", "error")
	ts := newTargetServer(t)
	configPath := writeConfig(t, runConfig(ts.URL))

	_, err := executeCmd(t, "run", "-c", configPath, "--fail-on-down")
	if !errors.Is(err, errTargetsDown) {
		t.Errorf("run --fail-on-down error = %v, want %v", err, errTargetsDown)
	}
}

func TestRunOnce_AllUpWithFailOnDown(t *testing.T) {
	t.Setenv("PULSECHECK_LOG_LEVEL", "error")
	ts := newTargetServer(t)
	configPath := writeConfig(t, `
defaults:
  max_retries: 0
targets:
  - url: `+ts.URL+`/ok
`)

	output, err := executeCmd(t, "run", "-c", configPath, "--fail-on-down")
	if err != nil {
		t.Fatalf("run command error = %v", err)
	}
	if !strings.Contains(output, `"ok": true`) {
		t.Errorf("output missing ok=true\nGot: %s", output)
	}
}

func TestRunOnce_BadLogFormat(t *testing.T) {
	t.Setenv("PULSECHECK_LOG_FORMAT", "xml")
	configPath := writeConfig(t, "targets: []\n")

	_, err := executeCmd(t, "run", "-c", configPath, "--fail-on-down=false")
	if err == nil || !strings.Contains(err.Error(), "failed to configure logging") {
		t.Errorf("run error = %v, want logging configuration error", err)
	}
}

func TestNewLogger_EnvOverridesFile(t *testing.T) {
	cfg := &config.Config{Logging: config.LoggingConfig{Level: "info", Format: "json"}}

	t.Setenv("PULSECHECK_LOG_LEVEL", "verbose")
	if _, err := newLogger(cfg); err == nil {
		t.Error("newLogger() expected error from PULSECHECK_LOG_LEVEL override")
	}

	t.Setenv("PULSECHECK_LOG_LEVEL", "")
	if _, err := newLogger(cfg); err != nil {
		t.Errorf("newLogger() error = %v", err)
	}
}
