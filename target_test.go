package pulsecheck

import (
	"strings"
	"testing"
	"time"
)

func TestNewTarget_Defaults(t *testing.T) {
	tgt, err := NewTarget("https://example.com/health")
	if err != nil {
		t.Fatalf("NewTarget() error = %v", err)
	}

	if tgt.Name() != "https://example.com/health" {
		t.Errorf("Name() = %q, want address", tgt.Name())
	}
	if tgt.Method() != "HEAD" {
		t.Errorf("Method() = %q, want HEAD", tgt.Method())
	}
	if tgt.Timeout() != 10*time.Second {
		t.Errorf("Timeout() = %v, want 10s", tgt.Timeout())
	}
	if tgt.MaxRetries() != 2 {
		t.Errorf("MaxRetries() = %d, want 2", tgt.MaxRetries())
	}
	if tgt.Rule().Kind() != KindDefault {
		t.Errorf("Rule().Kind() = %v, want default", tgt.Rule().Kind())
	}
	if tgt.Headers() != nil {
		t.Errorf("Headers() = %v, want nil", tgt.Headers())
	}
	if tgt.Labels() != nil {
		t.Errorf("Labels() = %v, want nil", tgt.Labels())
	}
}

func TestNewTarget_Options(t *testing.T) {
	tgt, err := NewTarget("http://localhost:8080/ping",
		WithName("  Local  "),
		WithMethod("get"),
		WithTimeout(2*time.Second),
		WithMaxRetries(0),
		WithRule(In(204)),
		WithHeaders("X-Token", "abc"),
		WithLabels("env", "dev"),
	)
	if err != nil {
		t.Fatalf("NewTarget() error = %v", err)
	}

	if tgt.Name() != "Local" {
		t.Errorf("Name() = %q, want %q", tgt.Name(), "Local")
	}
	if tgt.Method() != "GET" {
		t.Errorf("Method() = %q, want GET", tgt.Method())
	}
	if tgt.Timeout() != 2*time.Second {
		t.Errorf("Timeout() = %v, want 2s", tgt.Timeout())
	}
	if tgt.MaxRetries() != 0 {
		t.Errorf("MaxRetries() = %d, want 0", tgt.MaxRetries())
	}
	if !tgt.Rule().Matches(204) || tgt.Rule().Matches(200) {
		t.Errorf("Rule() = %v, want in[204]", tgt.Rule())
	}
	if tgt.Headers()["X-Token"] != "abc" {
		t.Errorf("Headers() = %v", tgt.Headers())
	}
	if tgt.Labels()["env"] != "dev" {
		t.Errorf("Labels() = %v", tgt.Labels())
	}
}

func TestNewTarget_GettersReturnCopies(t *testing.T) {
	tgt, err := NewTarget("https://example.com", WithLabels("env", "prod"))
	if err != nil {
		t.Fatalf("NewTarget() error = %v", err)
	}

	labels := tgt.Labels()
	labels["env"] = "mutated"

	if tgt.Labels()["env"] != "prod" {
		t.Errorf("Labels() mutation leaked into target")
	}
}

func TestNewTarget_Errors(t *testing.T) {
	tests := []struct {
		name    string
		address string
		opts    []TargetOption
		wantErr string
	}{
		{"empty address", "", nil, "cannot be empty"},
		{"no scheme", "example.com", nil, "must have a scheme"},
		{"ftp scheme", "ftp://example.com", nil, "must have a scheme"},
		{"no host", "http://", nil, "must have a host"},
		{"bad method", "https://example.com", []TargetOption{WithMethod("POST")}, "HEAD or GET"},
		{"zero timeout", "https://example.com", []TargetOption{WithTimeout(0)}, "timeout must be positive"},
		{"negative retries", "https://example.com", []TargetOption{WithMaxRetries(-1)}, "cannot be negative"},
		{"too many retries", "https://example.com", []TargetOption{WithMaxRetries(11)}, "must not exceed 10"},
		{"odd headers", "https://example.com", []TargetOption{WithHeaders("a")}, "even number"},
		{"odd labels", "https://example.com", []TargetOption{WithLabels("a", "b", "c")}, "even number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTarget(tt.address, tt.opts...)
			if err == nil {
				t.Fatal("NewTarget() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("NewTarget() error = %q, want containing %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestNewTarget_InvalidRuleAccepted(t *testing.T) {
	tgt, err := NewTarget("https://example.com", WithRule(InvalidRule("range needs two bounds")))
	if err != nil {
		t.Fatalf("NewTarget() error = %v", err)
	}
	if tgt.Rule().Valid() {
		t.Error("Rule().Valid() = true, want false")
	}
}
