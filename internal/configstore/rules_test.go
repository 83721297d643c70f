package configstore

import "testing"

func TestParseRule_UnknownIsNoop(t *testing.T) {
	tests := []string{
		"frobnicate",
		"frobnicate:99",
		"min_length",        // missing parameter
		"min_length:abc",    // non-numeric parameter
		"max_value:",        // empty parameter
		"regex:[unclosed",   // invalid pattern
		"",
	}

	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			r := ParseRule(raw)
			if err := r.Evaluate(StringValue("anything")); err != nil {
				t.Errorf("Evaluate() = %v, want nil: unrecognised rules must pass everything", err)
			}
			if r.Raw() != raw {
				t.Errorf("Raw() = %q, want %q", r.Raw(), raw)
			}
		})
	}
}

func TestRule_Lengths(t *testing.T) {
	tests := []struct {
		rule   string
		value  Value
		wantOK bool
	}{
		{"min_length:3", StringValue("ab"), false},
		{"min_length:3", StringValue("abc"), true},
		{"max_length:3", StringValue("abcd"), false},
		{"max_length:3", StringValue("abc"), true},
		// Length rules measure the string rendering of non-strings.
		{"min_length:2", IntValue(7), false},
		{"min_length:2", IntValue(77), true},
	}

	for _, tt := range tests {
		t.Run(tt.rule, func(t *testing.T) {
			err := ParseRule(tt.rule).Evaluate(tt.value)
			if (err == nil) != tt.wantOK {
				t.Errorf("Evaluate(%v) error = %v, wantOK %v", tt.value.Any(), err, tt.wantOK)
			}
		})
	}
}

func TestRule_NumericBounds(t *testing.T) {
	tests := []struct {
		rule   string
		value  Value
		wantOK bool
	}{
		{"min_value:10", IntValue(5), false},
		{"min_value:10", IntValue(15), true},
		{"min_value:10", IntValue(10), true},
		{"max_value:100", FloatValue(100.5), false},
		{"max_value:100", FloatValue(99.9), true},
		// Numeric strings coerce before comparison.
		{"min_value:10", StringValue("15"), true},
		{"min_value:10", StringValue("5"), false},
		// Non-numeric values fail numeric rules.
		{"min_value:10", StringValue("abc"), false},
		{"positive", IntValue(1), true},
		{"positive", IntValue(0), false},
		{"positive", IntValue(-1), false},
		{"non_negative", IntValue(0), true},
		{"non_negative", IntValue(-1), false},
	}

	for _, tt := range tests {
		t.Run(tt.rule, func(t *testing.T) {
			err := ParseRule(tt.rule).Evaluate(tt.value)
			if (err == nil) != tt.wantOK {
				t.Errorf("Evaluate(%v) error = %v, wantOK %v", tt.value.Any(), err, tt.wantOK)
			}
		})
	}
}

func TestRule_RegexIsAnchored(t *testing.T) {
	r := ParseRule("regex:[a-z]+")

	if err := r.Evaluate(StringValue("hello")); err != nil {
		t.Errorf("Evaluate(hello) = %v, want nil", err)
	}
	// A partial hit must not pass: the pattern is anchored to the full value.
	if err := r.Evaluate(StringValue("hello2")); err == nil {
		t.Error("Evaluate(hello2) = nil, want error")
	}
}

func TestRule_NotEmpty(t *testing.T) {
	r := ParseRule("not_empty")

	if err := r.Evaluate(StringValue("x")); err != nil {
		t.Errorf("Evaluate(x) = %v, want nil", err)
	}
	if err := r.Evaluate(StringValue("   ")); err == nil {
		t.Error("Evaluate(whitespace) = nil, want error")
	}
}

func TestParseRules_PreservesOrder(t *testing.T) {
	rules := ParseRules([]string{"min_length:3", "max_length:10", "bogus"})
	if len(rules) != 3 {
		t.Fatalf("len = %d, want 3", len(rules))
	}
	want := []string{"min_length:3", "max_length:10", "bogus"}
	for i, r := range rules {
		if r.Raw() != want[i] {
			t.Errorf("rules[%d].Raw() = %q, want %q", i, r.Raw(), want[i])
		}
	}
}
