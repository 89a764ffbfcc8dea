package pulsecheck

import (
	"errors"
	"fmt"
	"text/template"
	"time"
)

// gridConfig collects grid settings. Settings shared by every generated
// target are kept as ready-made [TargetOption] values.
type gridConfig struct {
	tmpl       *template.Template
	dimensions map[string][]string
	shared     []TargetOption
}

// GridOption configures [NewTargetGrid].
type GridOption func(*gridConfig) error

// share checks opt against a scratch target and keeps it for every cell,
// so a bad setting is reported by the option that introduced it.
func (g *gridConfig) share(opt TargetOption) error {
	scratch := &targetConfig{
		headers: make(map[string]string),
		labels:  make(map[string]string),
	}
	if err := opt(scratch); err != nil {
		return err
	}
	g.shared = append(g.shared, opt)
	return nil
}

// WithURLTemplate sets the address template. Dimension names are the
// template fields, e.g. "https://{{.env}}.example.com/health".
// Referencing a field that is not a dimension fails grid construction.
func WithURLTemplate(tmpl string) GridOption {
	return func(g *gridConfig) error {
		if tmpl == "" {
			return errors.New("URL template required")
		}
		parsed, err := template.New("url").Option("missingkey=error").Parse(tmpl)
		if err != nil {
			return fmt.Errorf("invalid URL template: %w", err)
		}
		g.tmpl = parsed
		return nil
	}
}

// WithDimensions sets the values to expand. One target is generated per
// combination of values, e.g. 2 envs × 3 regions = 6 targets.
func WithDimensions(dims map[string][]string) GridOption {
	return func(g *gridConfig) error {
		if len(dims) == 0 {
			return errors.New("at least one dimension required")
		}
		for name, values := range dims {
			if len(values) == 0 {
				return fmt.Errorf("dimension '%s' has no values", name)
			}
			for i, v := range values {
				if v == "" {
					return fmt.Errorf("dimension '%s' contains empty value at index %d", name, i)
				}
			}
		}
		g.dimensions = dims
		return nil
	}
}

// WithGridLabels adds labels to every target. They win over the labels
// derived from dimension values.
func WithGridLabels(keyValues ...string) GridOption {
	return func(g *gridConfig) error {
		return g.share(WithLabels(keyValues...))
	}
}

// WithGridHeaders sends the given headers with every request of every target.
func WithGridHeaders(keyValues ...string) GridOption {
	return func(g *gridConfig) error {
		return g.share(WithHeaders(keyValues...))
	}
}

// WithGridTimeout sets the per-request timeout of every target.
// Zero keeps the target default.
func WithGridTimeout(d time.Duration) GridOption {
	return func(g *gridConfig) error {
		if d < 0 {
			return errors.New("timeout cannot be negative")
		}
		if d == 0 {
			return nil
		}
		return g.share(WithTimeout(d))
	}
}

// WithGridRule sets the acceptance rule of every target.
func WithGridRule(r Rule) GridOption {
	return func(g *gridConfig) error {
		return g.share(WithRule(r))
	}
}

// WithGridMethod sets the request method (HEAD or GET) of every target.
func WithGridMethod(method string) GridOption {
	return func(g *gridConfig) error {
		return g.share(WithMethod(method))
	}
}

// WithGridMaxRetries sets the retry budget of every target.
func WithGridMaxRetries(n int) GridOption {
	return func(g *gridConfig) error {
		return g.share(WithMaxRetries(n))
	}
}
