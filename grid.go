package pulsecheck

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// NewTargetGrid builds one [Target] per combination of dimension values.
//
// Values are query-escaped before they are substituted into the template;
// labels keep the raw values. Targets are named "Base (v1/v2)" with values
// ordered by dimension name, and come back in that same order.
//
// Example:
//
//	targets, err := pulsecheck.NewTargetGrid("API",
//	    pulsecheck.WithURLTemplate("https://{{.env}}.example.com/health"),
//	    pulsecheck.WithDimensions(map[string][]string{"env": {"prod", "staging"}}),
//	    pulsecheck.WithGridRule(pulsecheck.Not(pulsecheck.In(503))),
//	)
func NewTargetGrid(baseName string, opts ...GridOption) ([]Target, error) {
	if strings.TrimSpace(baseName) == "" {
		return nil, errors.New("base name cannot be empty")
	}

	g := &gridConfig{}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	if g.tmpl == nil {
		return nil, errors.New("URL template required")
	}
	if len(g.dimensions) == 0 {
		return nil, errors.New("at least one dimension required")
	}

	cells := expandCells(g.dimensions)
	targets := make([]Target, 0, len(cells))
	for _, c := range cells {
		var address strings.Builder
		if err := g.tmpl.Execute(&address, c.escaped()); err != nil {
			return nil, fmt.Errorf("template execution failed: %w", err)
		}

		name := c.name(baseName)
		targetOpts := append([]TargetOption{WithName(name), WithLabels(c.pairs()...)}, g.shared...)

		t, err := NewTarget(address.String(), targetOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create target '%s': %w", name, err)
		}
		targets = append(targets, t)
	}

	return targets, nil
}

// gridCell is one combination of dimension values. keys are sorted and
// values[i] belongs to keys[i].
type gridCell struct {
	keys   []string
	values []string
}

// expandCells returns every combination, varying the last dimension fastest.
// Any dimension without values yields no cells.
func expandCells(dims map[string][]string) []gridCell {
	if len(dims) == 0 {
		return nil
	}

	keys := make([]string, 0, len(dims))
	for k := range dims {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := [][]string{{}}
	for _, k := range keys {
		next := make([][]string, 0, len(rows)*len(dims[k]))
		for _, row := range rows {
			for _, v := range dims[k] {
				next = append(next, append(row[:len(row):len(row)], v))
			}
		}
		rows = next
	}

	cells := make([]gridCell, len(rows))
	for i, row := range rows {
		cells[i] = gridCell{keys: keys, values: row}
	}
	return cells
}

func (c gridCell) name(base string) string {
	return base + " (" + strings.Join(c.values, "/") + ")"
}

// escaped is the template data with query-escaped values.
func (c gridCell) escaped() map[string]string {
	data := make(map[string]string, len(c.keys))
	for i, k := range c.keys {
		data[k] = url.QueryEscape(c.values[i])
	}
	return data
}

// pairs returns the raw values as key-value pairs for [WithLabels].
func (c gridCell) pairs() []string {
	kv := make([]string, 0, 2*len(c.keys))
	for i, k := range c.keys {
		kv = append(kv, k, c.values[i])
	}
	return kv
}
