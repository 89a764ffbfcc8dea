package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jpalmerr/pulsecheck"
	"gopkg.in/yaml.v3"
)

// RuleConfig is the YAML form of an acceptance rule.
//
// It accepts a shorthand scalar:
//
//	expect: default
//	expect: 2xx
//	expect: 204
//	expect: 200-299
//	expect: 200,204
//
// a list of codes:
//
//	expect: [200, 204]
//
// or a structured node with one of the keys not, in, range, ranges:
//
//	expect: {not: {in: [503]}}
//	expect: {range: [200, 299]}
//	expect: {ranges: [[200, 299], [401, 401]]}
//
// When a node carries several keys, not wins over in, in over range, and
// range over ranges. Decoding never fails: a malformed rule becomes
// [pulsecheck.InvalidRule], which never matches.
type RuleConfig struct {
	rule pulsecheck.Rule
}

// Rule returns the decoded acceptance rule. Unset rules are the default.
func (r RuleConfig) Rule() pulsecheck.Rule {
	return r.rule
}

// UnmarshalYAML implements yaml.Unmarshaler for RuleConfig.
func (r *RuleConfig) UnmarshalYAML(node *yaml.Node) error {
	r.rule = decodeRule(node)
	return nil
}

// decodeRule converts a YAML node into a rule.
func decodeRule(node *yaml.Node) pulsecheck.Rule {
	if node == nil {
		return pulsecheck.DefaultRule()
	}

	switch node.Kind {
	case yaml.AliasNode:
		return decodeRule(node.Alias)
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return pulsecheck.DefaultRule()
		}
		return parseShorthand(node.Value)
	case yaml.SequenceNode:
		codes, err := decodeCodes(node)
		if err != nil {
			return pulsecheck.InvalidRule(err.Error())
		}
		return pulsecheck.In(codes...)
	case yaml.MappingNode:
		return decodeRuleMapping(node)
	default:
		return pulsecheck.InvalidRule("unsupported rule node")
	}
}

// decodeRuleMapping applies the fixed key precedence: not, in, range, ranges.
func decodeRuleMapping(node *yaml.Node) pulsecheck.Rule {
	keys := make(map[string]*yaml.Node, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keys[node.Content[i].Value] = node.Content[i+1]
	}

	if v, ok := keys["not"]; ok {
		return pulsecheck.Not(decodeRule(v))
	}

	if v, ok := keys["in"]; ok {
		codes, err := decodeCodes(v)
		if err != nil {
			return pulsecheck.InvalidRule("in: " + err.Error())
		}
		return pulsecheck.In(codes...)
	}

	if v, ok := keys["range"]; ok {
		cr, err := decodeRange(v)
		if err != nil {
			return pulsecheck.InvalidRule("range: " + err.Error())
		}
		return pulsecheck.Between(cr.Min, cr.Max)
	}

	if v, ok := keys["ranges"]; ok {
		if v.Kind != yaml.SequenceNode {
			return pulsecheck.InvalidRule("ranges: expected a list of [min, max] pairs")
		}
		ranges := make([]pulsecheck.CodeRange, 0, len(v.Content))
		for i, item := range v.Content {
			cr, err := decodeRange(item)
			if err != nil {
				return pulsecheck.InvalidRule(fmt.Sprintf("ranges[%d]: %s", i, err))
			}
			ranges = append(ranges, cr)
		}
		return pulsecheck.AnyOf(ranges...)
	}

	return pulsecheck.InvalidRule("expected one of not, in, range, ranges")
}

func decodeCodes(node *yaml.Node) ([]int, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, errors.New("expected a list of status codes")
	}
	var codes []int
	if err := node.Decode(&codes); err != nil {
		return nil, errors.New("expected a list of status codes")
	}
	return codes, nil
}

func decodeRange(node *yaml.Node) (pulsecheck.CodeRange, error) {
	var bounds []int
	if node.Kind != yaml.SequenceNode || node.Decode(&bounds) != nil || len(bounds) != 2 {
		return pulsecheck.CodeRange{}, errors.New("expected [min, max]")
	}
	return pulsecheck.CodeRange{Min: bounds[0], Max: bounds[1]}, nil
}

// parseShorthand parses scalar rule syntax.
//
// Supported formats:
//   - "default" → 2xx or 3xx
//   - "2xx" → 200-299 (any class 1xx to 5xx)
//   - "204" → exactly 204
//   - "200-299" → inclusive range
//   - "200,204" → set of codes
func parseShorthand(s string) pulsecheck.Rule {
	s = strings.TrimSpace(strings.ToLower(s))

	switch {
	case s == "" || s == "default":
		return pulsecheck.DefaultRule()

	case len(s) == 3 && strings.HasSuffix(s, "xx") && s[0] >= '1' && s[0] <= '5':
		base := int(s[0]-'0') * 100
		return pulsecheck.Between(base, base+99)

	case strings.Contains(s, ","):
		parts := strings.Split(s, ",")
		codes := make([]int, 0, len(parts))
		for _, p := range parts {
			code, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil {
				return pulsecheck.InvalidRule(fmt.Sprintf("invalid status code %q", strings.TrimSpace(p)))
			}
			codes = append(codes, code)
		}
		return pulsecheck.In(codes...)

	case strings.Contains(s, "-"):
		lo, hi, _ := strings.Cut(s, "-")
		minCode, err1 := strconv.Atoi(strings.TrimSpace(lo))
		maxCode, err2 := strconv.Atoi(strings.TrimSpace(hi))
		if err1 != nil || err2 != nil {
			return pulsecheck.InvalidRule(fmt.Sprintf("invalid range %q", s))
		}
		return pulsecheck.Between(minCode, maxCode)

	default:
		code, err := strconv.Atoi(s)
		if err != nil {
			return pulsecheck.InvalidRule(fmt.Sprintf("unknown rule %q", s))
		}
		return pulsecheck.In(code)
	}
}
