package pulsecheck

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// RuleKind identifies which form an acceptance [Rule] takes.
type RuleKind uint8

const (
	// KindDefault accepts 2xx and 3xx responses.
	KindDefault RuleKind = iota
	// KindNot inverts a wrapped rule.
	KindNot
	// KindIn accepts a fixed set of status codes.
	KindIn
	// KindRange accepts a single inclusive [min, max] range.
	KindRange
	// KindRanges accepts a status code that falls in any of several ranges.
	KindRanges
	// KindInvalid is produced for malformed configuration and never matches.
	KindInvalid
)

// String returns the configuration keyword for the kind.
func (k RuleKind) String() string {
	switch k {
	case KindDefault:
		return "default"
	case KindNot:
		return "not"
	case KindIn:
		return "in"
	case KindRange:
		return "range"
	case KindRanges:
		return "ranges"
	default:
		return "invalid"
	}
}

// CodeRange is an inclusive range of HTTP status codes.
type CodeRange struct {
	Min int
	Max int
}

// Contains reports whether code lies within the range, inclusive at both ends.
func (r CodeRange) Contains(code int) bool {
	return r.Min <= code && code <= r.Max
}

// Rule is a declarative predicate over an HTTP status code.
//
// Rule is a tagged variant: exactly one of the forms described by [RuleKind]
// is active. Rules are plain immutable values and can be nested through
// [Not] to any depth. The zero value is the default rule (2xx or 3xx).
//
// Rules are evaluated with [Matches]. Evaluation is pure and total: every
// status code maps to a boolean, and a rule built from malformed
// configuration ([InvalidRule]) never matches instead of failing.
type Rule struct {
	kind   RuleKind
	inner  *Rule
	codes  []int
	ranges []CodeRange
	reason string
}

// DefaultRule returns the rule that accepts any 2xx or 3xx status code.
func DefaultRule() Rule {
	return Rule{}
}

// Not returns a rule that matches exactly when r does not.
//
// A missing status code still never matches, even through negation.
func Not(r Rule) Rule {
	inner := r
	return Rule{kind: KindNot, inner: &inner}
}

// In returns a rule accepting only the listed status codes.
//
// An empty list yields a rule that matches nothing.
func In(codes ...int) Rule {
	return Rule{kind: KindIn, codes: append([]int(nil), codes...)}
}

// Between returns a rule accepting status codes in [minCode, maxCode], inclusive.
func Between(minCode, maxCode int) Rule {
	return Rule{kind: KindRange, ranges: []CodeRange{{Min: minCode, Max: maxCode}}}
}

// AnyOf returns a rule accepting a status code that falls into at least one
// of the given inclusive ranges.
func AnyOf(ranges ...CodeRange) Rule {
	return Rule{kind: KindRanges, ranges: append([]CodeRange(nil), ranges...)}
}

// InvalidRule returns a rule that never matches. The reason is kept for
// diagnostics (see [Rule.Reason]).
func InvalidRule(reason string) Rule {
	return Rule{kind: KindInvalid, reason: reason}
}

// Kind returns which form the rule takes.
func (r Rule) Kind() RuleKind {
	return r.kind
}

// Inner returns the wrapped rule of a [KindNot] rule.
// The second return value is false for every other kind.
func (r Rule) Inner() (Rule, bool) {
	if r.kind != KindNot || r.inner == nil {
		return Rule{}, false
	}
	return *r.inner, true
}

// Codes returns a copy of the accepted codes of a [KindIn] rule.
func (r Rule) Codes() []int {
	return append([]int(nil), r.codes...)
}

// Ranges returns a copy of the ranges of a [KindRange] or [KindRanges] rule.
func (r Rule) Ranges() []CodeRange {
	return append([]CodeRange(nil), r.ranges...)
}

// Reason explains why a [KindInvalid] rule was rejected. Empty otherwise.
func (r Rule) Reason() string {
	return r.reason
}

// Valid reports whether the rule, including any rule it wraps, was built
// from well-formed configuration. It is used to warn about configuration
// mistakes before a run; invalid rules are still safe to evaluate.
func (r Rule) Valid() bool {
	switch r.kind {
	case KindInvalid:
		return false
	case KindNot:
		if r.inner == nil {
			return false
		}
		return r.inner.Valid()
	default:
		return true
	}
}

// InvalidReason returns the reason of the first invalid rule found in r,
// following negations. Empty when r is [Rule.Valid].
func (r Rule) InvalidReason() string {
	switch r.kind {
	case KindInvalid:
		return r.reason
	case KindNot:
		if r.inner == nil {
			return "negation without a rule"
		}
		return r.inner.InvalidReason()
	default:
		return ""
	}
}

// Matches reports whether statusCode satisfies the rule. See [Matches].
func (r Rule) Matches(statusCode int) bool {
	return Matches(statusCode, r)
}

// Matches reports whether statusCode is accepted by rule.
//
// A statusCode of 0 stands for "no response" (network error or timeout) and
// never matches any rule.
func Matches(statusCode int, rule Rule) bool {
	if statusCode <= 0 {
		return false
	}

	switch rule.kind {
	case KindDefault:
		return statusCode >= 200 && statusCode < 400
	case KindNot:
		if rule.inner == nil {
			return false
		}
		return !Matches(statusCode, *rule.inner)
	case KindIn:
		for _, c := range rule.codes {
			if c == statusCode {
				return true
			}
		}
		return false
	case KindRange:
		if len(rule.ranges) != 1 {
			return false
		}
		return rule.ranges[0].Contains(statusCode)
	case KindRanges:
		for _, cr := range rule.ranges {
			if cr.Contains(statusCode) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// String renders the rule in a compact human-readable form used in logs
// and alert messages, e.g. "2xx-3xx", "not(in[503])", "200-299".
func (r Rule) String() string {
	switch r.kind {
	case KindDefault:
		return "2xx-3xx"
	case KindNot:
		if r.inner == nil {
			return "not(?)"
		}
		return "not(" + r.inner.String() + ")"
	case KindIn:
		parts := make([]string, len(r.codes))
		for i, c := range r.codes {
			parts[i] = strconv.Itoa(c)
		}
		return "in[" + strings.Join(parts, ",") + "]"
	case KindRange:
		if len(r.ranges) != 1 {
			return "range(?)"
		}
		return fmt.Sprintf("%d-%d", r.ranges[0].Min, r.ranges[0].Max)
	case KindRanges:
		parts := make([]string, len(r.ranges))
		for i, cr := range r.ranges {
			parts[i] = fmt.Sprintf("%d-%d", cr.Min, cr.Max)
		}
		return "any[" + strings.Join(parts, ",") + "]"
	default:
		if r.reason != "" {
			return "invalid(" + r.reason + ")"
		}
		return "invalid"
	}
}

// MarshalJSON encodes the rule in the same shape the configuration file uses:
// "default", {"not": ...}, {"in": [...]}, {"range": [min, max]} or
// {"ranges": [[min, max], ...]}. Invalid rules encode as {"invalid": reason}.
func (r Rule) MarshalJSON() ([]byte, error) {
	switch r.kind {
	case KindDefault:
		return json.Marshal("default")
	case KindNot:
		inner := Rule{}
		if r.inner != nil {
			inner = *r.inner
		}
		return json.Marshal(map[string]Rule{"not": inner})
	case KindIn:
		codes := r.codes
		if codes == nil {
			codes = []int{}
		}
		return json.Marshal(map[string][]int{"in": codes})
	case KindRange:
		if len(r.ranges) != 1 {
			return json.Marshal(map[string]string{"invalid": "range without bounds"})
		}
		return json.Marshal(map[string][2]int{"range": {r.ranges[0].Min, r.ranges[0].Max}})
	case KindRanges:
		pairs := make([][2]int, len(r.ranges))
		for i, cr := range r.ranges {
			pairs[i] = [2]int{cr.Min, cr.Max}
		}
		return json.Marshal(map[string][][2]int{"ranges": pairs})
	default:
		return json.Marshal(map[string]string{"invalid": r.reason})
	}
}

// UnmarshalJSON decodes the shapes produced by [Rule.MarshalJSON], so
// reports can be read back by API clients. Unknown shapes decode to an
// invalid rule rather than an error.
func (r *Rule) UnmarshalJSON(data []byte) error {
	var keyword string
	if err := json.Unmarshal(data, &keyword); err == nil {
		if keyword == "default" {
			*r = DefaultRule()
		} else {
			*r = InvalidRule(fmt.Sprintf("unknown rule %q", keyword))
		}
		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || len(fields) != 1 {
		*r = InvalidRule("unrecognised rule shape")
		return nil
	}

	for key, raw := range fields {
		*r = decodeRuleField(key, raw)
	}
	return nil
}

func decodeRuleField(key string, raw json.RawMessage) Rule {
	switch key {
	case "not":
		var inner Rule
		if err := json.Unmarshal(raw, &inner); err != nil {
			return InvalidRule("not: " + err.Error())
		}
		return Not(inner)
	case "in":
		var codes []int
		if err := json.Unmarshal(raw, &codes); err != nil {
			return InvalidRule("in: " + err.Error())
		}
		return In(codes...)
	case "range":
		var bounds [2]int
		if err := json.Unmarshal(raw, &bounds); err != nil {
			return InvalidRule("range: " + err.Error())
		}
		return Between(bounds[0], bounds[1])
	case "ranges":
		var pairs [][2]int
		if err := json.Unmarshal(raw, &pairs); err != nil {
			return InvalidRule("ranges: " + err.Error())
		}
		ranges := make([]CodeRange, len(pairs))
		for i, p := range pairs {
			ranges[i] = CodeRange{Min: p[0], Max: p[1]}
		}
		return AnyOf(ranges...)
	case "invalid":
		var reason string
		_ = json.Unmarshal(raw, &reason)
		return InvalidRule(reason)
	default:
		return InvalidRule(fmt.Sprintf("unknown rule %q", key))
	}
}
