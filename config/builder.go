package config

import (
	"fmt"
	"sort"
	"time"

	"github.com/jpalmerr/pulsecheck"
)

// BuildTargets converts parsed configuration into SDK Target objects.
//
// Direct targets come first, in file order, followed by the expansion of
// each grid. Fields a target leaves unset fall back to cfg.Defaults.
func BuildTargets(cfg *Config) ([]pulsecheck.Target, error) {
	targets := make([]pulsecheck.Target, 0, len(cfg.Targets))

	for i, tc := range cfg.Targets {
		t, err := buildTarget(tc, cfg.Defaults)
		if err != nil {
			return nil, fmt.Errorf("targets[%d] (%s): %w", i, tc.DisplayName(), err)
		}
		targets = append(targets, t)
	}

	for i, gc := range cfg.Grids {
		gridTargets, err := buildGridTargets(gc, cfg.Defaults)
		if err != nil {
			return nil, fmt.Errorf("grids[%d] (%s): %w", i, gc.Name, err)
		}
		targets = append(targets, gridTargets...)
	}

	return targets, nil
}

// Warnings lists configuration mistakes that do not prevent a run, such as
// malformed expect rules. Each affected target will always be reported down.
func Warnings(cfg *Config) []string {
	var warnings []string

	for i, tc := range cfg.Targets {
		if r := tc.Expect.Rule(); !r.Valid() {
			warnings = append(warnings, fmt.Sprintf(
				"targets[%d] (%s): expect: %s; target will always be reported down",
				i, tc.DisplayName(), r.InvalidReason()))
		}
	}
	for i, gc := range cfg.Grids {
		if r := gc.Expect.Rule(); !r.Valid() {
			warnings = append(warnings, fmt.Sprintf(
				"grids[%d] (%s): expect: %s; targets will always be reported down",
				i, gc.Name, r.InvalidReason()))
		}
	}

	return warnings
}

// buildTarget converts a single TargetConfig to an SDK Target.
func buildTarget(tc TargetConfig, defaults DefaultsConfig) (pulsecheck.Target, error) {
	opts := []pulsecheck.TargetOption{
		pulsecheck.WithName(tc.Name),
		pulsecheck.WithMethod(firstNonEmpty(tc.Method, defaults.Method, DefaultMethod)),
		pulsecheck.WithTimeout(firstPositive(tc.Timeout, defaults.Timeout, Duration(DefaultTimeout))),
		pulsecheck.WithMaxRetries(retriesOrDefault(tc.MaxRetries, defaults.MaxRetries)),
		pulsecheck.WithRule(tc.Expect.Rule()),
	}

	if len(tc.Headers) > 0 {
		opts = append(opts, pulsecheck.WithHeaders(mapToKeyValuePairs(tc.Headers)...))
	}

	if len(tc.Labels) > 0 {
		opts = append(opts, pulsecheck.WithLabels(mapToKeyValuePairs(tc.Labels)...))
	}

	return pulsecheck.NewTarget(tc.URL, opts...)
}

// buildGridTargets expands a GridConfig into targets via cartesian product.
func buildGridTargets(gc GridConfig, defaults DefaultsConfig) ([]pulsecheck.Target, error) {
	opts := []pulsecheck.GridOption{
		pulsecheck.WithURLTemplate(gc.URLTemplate),
		pulsecheck.WithDimensions(gc.Dimensions),
		pulsecheck.WithGridMethod(firstNonEmpty(gc.Method, defaults.Method, DefaultMethod)),
		pulsecheck.WithGridTimeout(firstPositive(gc.Timeout, defaults.Timeout, Duration(DefaultTimeout))),
		pulsecheck.WithGridMaxRetries(retriesOrDefault(gc.MaxRetries, defaults.MaxRetries)),
		pulsecheck.WithGridRule(gc.Expect.Rule()),
	}

	if len(gc.Headers) > 0 {
		opts = append(opts, pulsecheck.WithGridHeaders(mapToKeyValuePairs(gc.Headers)...))
	}

	if len(gc.Labels) > 0 {
		opts = append(opts, pulsecheck.WithGridLabels(mapToKeyValuePairs(gc.Labels)...))
	}

	return pulsecheck.NewTargetGrid(gc.Name, opts...)
}

// mapToKeyValuePairs converts a map to a sorted slice of key-value pairs.
func mapToKeyValuePairs(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(m)*2)
	for _, k := range keys {
		pairs = append(pairs, k, m[k])
	}
	return pairs
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPositive(values ...Duration) time.Duration {
	for _, v := range values {
		if v > 0 {
			return v.Duration()
		}
	}
	return 0
}

func retriesOrDefault(n, fallback *int) int {
	if n != nil {
		return *n
	}
	if fallback != nil {
		return *fallback
	}
	return DefaultMaxRetries
}
