package configstore

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ruleKind discriminates parsed validation rules.
type ruleKind int

const (
	ruleNoop ruleKind = iota
	ruleMinLength
	ruleMaxLength
	ruleMinValue
	ruleMaxValue
	ruleRegex
	ruleNotEmpty
	rulePositive
	ruleNonNegative
)

// Rule is one parsed validation rule. Rule strings are parsed once, at
// schema registration or entry construction, rather than on every
// evaluation.
//
// Unknown rule names and malformed parameters parse to a no-op rule that
// always passes. This mirrors the permissive contract of the original
// rule grammar: an unrecognised rule must never reject a value.
type Rule struct {
	kind ruleKind
	n    float64
	re   *regexp.Regexp
	raw  string
}

// ParseRule parses a single rule string such as "min_length:3",
// "regex:^[a-z]+$" or "not_empty".
func ParseRule(raw string) Rule {
	r := Rule{kind: ruleNoop, raw: raw}

	name, param := raw, ""
	if i := strings.Index(raw, ":"); i >= 0 {
		name, param = raw[:i], raw[i+1:]
	}

	switch name {
	case "min_length", "max_length", "min_value", "max_value":
		n, err := strconv.ParseFloat(strings.TrimSpace(param), 64)
		if err != nil {
			return r
		}
		r.n = n
		switch name {
		case "min_length":
			r.kind = ruleMinLength
		case "max_length":
			r.kind = ruleMaxLength
		case "min_value":
			r.kind = ruleMinValue
		case "max_value":
			r.kind = ruleMaxValue
		}
	case "regex":
		// Full match: anchor the pattern so partial hits do not pass.
		re, err := regexp.Compile("^(?:" + param + ")$")
		if err != nil {
			return r
		}
		r.kind = ruleRegex
		r.re = re
	case "not_empty":
		r.kind = ruleNotEmpty
	case "positive":
		r.kind = rulePositive
	case "non_negative":
		r.kind = ruleNonNegative
	}
	return r
}

// ParseRules parses a list of rule strings, preserving order.
func ParseRules(raw []string) []Rule {
	if len(raw) == 0 {
		return nil
	}
	rules := make([]Rule, 0, len(raw))
	for _, s := range raw {
		rules = append(rules, ParseRule(s))
	}
	return rules
}

// Raw returns the original rule string, for display and re-registration.
func (r Rule) Raw() string { return r.raw }

// Evaluate checks the value against the rule. Length rules operate on the
// string representation of the value; numeric rules fail when the value is
// not numeric.
func (r Rule) Evaluate(v Value) error {
	switch r.kind {
	case ruleNoop:
		return nil
	case ruleMinLength:
		if float64(len(v.text())) < r.n {
			return fmt.Errorf("length %d is below minimum %g", len(v.text()), r.n)
		}
	case ruleMaxLength:
		if float64(len(v.text())) > r.n {
			return fmt.Errorf("length %d exceeds maximum %g", len(v.text()), r.n)
		}
	case ruleMinValue:
		f, err := r.numeric(v)
		if err != nil {
			return err
		}
		if f < r.n {
			return fmt.Errorf("value %g is below minimum %g", f, r.n)
		}
	case ruleMaxValue:
		f, err := r.numeric(v)
		if err != nil {
			return err
		}
		if f > r.n {
			return fmt.Errorf("value %g exceeds maximum %g", f, r.n)
		}
	case ruleRegex:
		if !r.re.MatchString(v.text()) {
			return fmt.Errorf("value does not match pattern %q", r.raw)
		}
	case ruleNotEmpty:
		if strings.TrimSpace(v.text()) == "" {
			return fmt.Errorf("value must not be empty")
		}
	case rulePositive:
		f, err := r.numeric(v)
		if err != nil {
			return err
		}
		if f <= 0 {
			return fmt.Errorf("value %g must be positive", f)
		}
	case ruleNonNegative:
		f, err := r.numeric(v)
		if err != nil {
			return err
		}
		if f < 0 {
			return fmt.Errorf("value %g must not be negative", f)
		}
	}
	return nil
}

// numeric extracts a float for comparison rules.
func (r Rule) numeric(v Value) (float64, error) {
	cv, err := v.Coerce(KindFloat)
	if err != nil {
		return 0, fmt.Errorf("rule %q requires a numeric value, got %v", r.raw, v.Any())
	}
	return cv.f, nil
}

// rawRules converts parsed rules back to their original strings.
func rawRules(rules []Rule) []string {
	if len(rules) == 0 {
		return nil
	}
	out := make([]string, len(rules))
	for i, r := range rules {
		out[i] = r.raw
	}
	return out
}
