package pulsecheck

import (
	"strings"
	"testing"
	"time"
)

func TestExpandCells_TwoDimensions(t *testing.T) {
	cells := expandCells(map[string][]string{
		"y": {"1", "2"},
		"x": {"a", "b"},
	})

	if len(cells) != 4 {
		t.Fatalf("expandCells() returned %d cells, want 4", len(cells))
	}

	// keys sorted (x, y), last dimension varies fastest
	want := []string{"x=a,y=1", "x=a,y=2", "x=b,y=1", "x=b,y=2"}
	for i, c := range cells {
		kv := c.pairs()
		got := kv[0] + "=" + kv[1] + "," + kv[2] + "=" + kv[3]
		if got != want[i] {
			t.Errorf("cell[%d] = %s, want %s", i, got, want[i])
		}
	}
}

func TestExpandCells_Empty(t *testing.T) {
	tests := []struct {
		name string
		dims map[string][]string
	}{
		{"empty map", map[string][]string{}},
		{"empty dimension", map[string][]string{"x": {"a"}, "y": {}}},
		{"nil map", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := expandCells(tt.dims); len(got) != 0 {
				t.Errorf("expandCells() returned %d cells, want 0", len(got))
			}
		})
	}
}

func TestGridCell_NameAndData(t *testing.T) {
	cells := expandCells(map[string][]string{"region": {"eu west"}, "env": {"prod"}})
	c := cells[0]

	// env sorts before region
	if got := c.name("API"); got != "API (prod/eu west)" {
		t.Errorf("name() = %q, want %q", got, "API (prod/eu west)")
	}
	if got := c.escaped()["region"]; got != "eu+west" {
		t.Errorf("escaped()[region] = %q, want %q", got, "eu+west")
	}
	if got := strings.Join(c.pairs(), ","); got != "env,prod,region,eu west" {
		t.Errorf("pairs() = %q", got)
	}
}

func TestNewTargetGrid_Expands(t *testing.T) {
	targets, err := NewTargetGrid("API Health",
		WithURLTemplate("https://{{.env}}.example.com/health?region={{.region}}"),
		WithDimensions(map[string][]string{
			"env":    {"prod", "staging"},
			"region": {"us-east", "eu-west"},
		}),
	)
	if err != nil {
		t.Fatalf("NewTargetGrid() error = %v", err)
	}

	if len(targets) != 4 {
		t.Fatalf("NewTargetGrid() returned %d targets, want 4", len(targets))
	}

	first := targets[0]
	if first.Name() != "API Health (prod/us-east)" {
		t.Errorf("Name() = %q, want %q", first.Name(), "API Health (prod/us-east)")
	}
	if first.Address() != "https://prod.example.com/health?region=us-east" {
		t.Errorf("Address() = %q", first.Address())
	}
	labels := first.Labels()
	if labels["env"] != "prod" || labels["region"] != "us-east" {
		t.Errorf("Labels() = %v, want env=prod region=us-east", labels)
	}
}

func TestNewTargetGrid_URLEncodesValues(t *testing.T) {
	targets, err := NewTargetGrid("Search",
		WithURLTemplate("https://example.com/search?q={{.q}}"),
		WithDimensions(map[string][]string{"q": {"a b&c"}}),
	)
	if err != nil {
		t.Fatalf("NewTargetGrid() error = %v", err)
	}

	if got := targets[0].Address(); got != "https://example.com/search?q=a+b%26c" {
		t.Errorf("Address() = %q, want encoded query", got)
	}
	// labels keep the raw value
	if got := targets[0].Labels()["q"]; got != "a b&c" {
		t.Errorf("Labels()[q] = %q, want %q", got, "a b&c")
	}
}

func TestNewTargetGrid_AppliesSharedSettings(t *testing.T) {
	rule := Not(In(503))

	targets, err := NewTargetGrid("API",
		WithURLTemplate("https://example.com/{{.svc}}"),
		WithDimensions(map[string][]string{"svc": {"users", "orders"}}),
		WithGridLabels("team", "platform", "svc", "override"),
		WithGridHeaders("Authorization", "Bearer x"),
		WithGridTimeout(3*time.Second),
		WithGridMethod("get"),
		WithGridMaxRetries(0),
		WithGridRule(rule),
	)
	if err != nil {
		t.Fatalf("NewTargetGrid() error = %v", err)
	}

	for _, tgt := range targets {
		if tgt.Method() != "GET" {
			t.Errorf("Method() = %q, want GET", tgt.Method())
		}
		if tgt.Timeout() != 3*time.Second {
			t.Errorf("Timeout() = %v, want 3s", tgt.Timeout())
		}
		if tgt.MaxRetries() != 0 {
			t.Errorf("MaxRetries() = %d, want 0", tgt.MaxRetries())
		}
		if tgt.Rule().Kind() != KindNot {
			t.Errorf("Rule().Kind() = %v, want not", tgt.Rule().Kind())
		}
		if tgt.Headers()["Authorization"] != "Bearer x" {
			t.Errorf("Headers() = %v, want Authorization header", tgt.Headers())
		}
		// static labels take precedence over dimension labels
		if tgt.Labels()["svc"] != "override" {
			t.Errorf("Labels()[svc] = %q, want override", tgt.Labels()["svc"])
		}
		if tgt.Labels()["team"] != "platform" {
			t.Errorf("Labels()[team] = %q, want platform", tgt.Labels()["team"])
		}
	}
}

func TestNewTargetGrid_DefaultsWhenUnset(t *testing.T) {
	targets, err := NewTargetGrid("API",
		WithURLTemplate("https://example.com/{{.svc}}"),
		WithDimensions(map[string][]string{"svc": {"users"}}),
	)
	if err != nil {
		t.Fatalf("NewTargetGrid() error = %v", err)
	}

	tgt := targets[0]
	if tgt.Method() != "HEAD" {
		t.Errorf("Method() = %q, want HEAD", tgt.Method())
	}
	if tgt.MaxRetries() != 2 {
		t.Errorf("MaxRetries() = %d, want 2", tgt.MaxRetries())
	}
	if tgt.Timeout() != 10*time.Second {
		t.Errorf("Timeout() = %v, want 10s", tgt.Timeout())
	}
	if tgt.Headers() != nil {
		t.Errorf("Headers() = %v, want nil", tgt.Headers())
	}
}

func TestNewTargetGrid_Errors(t *testing.T) {
	dims := map[string][]string{"env": {"prod"}}

	tests := []struct {
		name     string
		baseName string
		opts     []GridOption
		wantErr  string
	}{
		{
			name:     "empty base name",
			baseName: "  ",
			opts:     []GridOption{WithURLTemplate("https://x.com/{{.env}}"), WithDimensions(dims)},
			wantErr:  "base name cannot be empty",
		},
		{
			name:     "missing template",
			baseName: "API",
			opts:     []GridOption{WithDimensions(dims)},
			wantErr:  "URL template required",
		},
		{
			name:     "missing dimensions",
			baseName: "API",
			opts:     []GridOption{WithURLTemplate("https://x.com/")},
			wantErr:  "at least one dimension required",
		},
		{
			name:     "unknown template key",
			baseName: "API",
			opts:     []GridOption{WithURLTemplate("https://x.com/{{.region}}"), WithDimensions(dims)},
			wantErr:  "template execution failed",
		},
		{
			name:     "malformed template",
			baseName: "API",
			opts:     []GridOption{WithURLTemplate("https://x.com/{{.env"), WithDimensions(dims)},
			wantErr:  "invalid URL template",
		},
		{
			name:     "empty dimension value",
			baseName: "API",
			opts:     []GridOption{WithDimensions(map[string][]string{"env": {"prod", ""}})},
			wantErr:  "contains empty value",
		},
		{
			name:     "unsupported method",
			baseName: "API",
			opts:     []GridOption{WithGridMethod("POST")},
			wantErr:  "method must be HEAD or GET",
		},
		{
			name:     "retries out of range",
			baseName: "API",
			opts:     []GridOption{WithGridMaxRetries(11)},
			wantErr:  "max retries must not exceed 10",
		},
		{
			name:     "odd labels",
			baseName: "API",
			opts:     []GridOption{WithGridLabels("team")},
			wantErr:  "even number of arguments",
		},
		{
			name:     "negative timeout",
			baseName: "API",
			opts:     []GridOption{WithGridTimeout(-time.Second)},
			wantErr:  "timeout cannot be negative",
		},
		{
			name:     "template yields invalid URL",
			baseName: "API",
			opts:     []GridOption{WithURLTemplate("{{.env}}"), WithDimensions(dims)},
			wantErr:  "failed to create target",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTargetGrid(tt.baseName, tt.opts...)
			if err == nil {
				t.Fatal("NewTargetGrid() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("NewTargetGrid() error = %q, want containing %q", err.Error(), tt.wantErr)
			}
		})
	}
}
