package configstore

import (
	"errors"
	"testing"
)

func TestMaskString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "***"},
		{"ab", "***"},
		{"abcd", "***"},
		{"abcde", "ab*de"},
		{"abcdefgh", "ab****gh"},
		{"super-secret-key", "su************ey"},
		// Rune boundaries, not byte boundaries.
		{"日本語秘", "***"},
		{"héllo-wörld", "hé*******ld"},
		{"日本語秘密", "日本*秘密"},
	}

	for _, tt := range tests {
		if got := MaskString(tt.in); got != tt.want {
			t.Errorf("MaskString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEntry_DisplayValue(t *testing.T) {
	sensitive := &Entry{Key: "api.key", Value: StringValue("abcdefgh"), Sensitive: true}
	if got := sensitive.DisplayValue(); got != "ab****gh" {
		t.Errorf("DisplayValue() = %q, want %q", got, "ab****gh")
	}

	plain := &Entry{Key: "app.name", Value: StringValue("configcore")}
	if got := plain.DisplayValue(); got != "configcore" {
		t.Errorf("DisplayValue() = %q, want %q", got, "configcore")
	}

	// Non-string sensitive values render plainly; masking is a string
	// operation.
	num := &Entry{Key: "db.port", Value: IntValue(5432), Sensitive: true}
	if got := num.DisplayValue(); got != "5432" {
		t.Errorf("DisplayValue() = %q, want %q", got, "5432")
	}
}

func TestEntry_Validate_CoercesOnSuccess(t *testing.T) {
	e := &Entry{Key: "db.port", Value: StringValue("5432"), Type: KindInt}
	if err := e.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if e.Value.Any() != int64(5432) {
		t.Errorf("Value = %v, want coerced 5432", e.Value.Any())
	}
}

func TestEntry_Validate_LeavesValueOnFailure(t *testing.T) {
	e := &Entry{Key: "db.port", Value: StringValue("not-a-port"), Type: KindInt}
	err := e.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Validate() error = %v, want *ValidationError", err)
	}
	if verr.Key != "db.port" {
		t.Errorf("Key = %q, want db.port", verr.Key)
	}
	if e.Value.Any() != "not-a-port" {
		t.Errorf("Value = %v, want original string untouched", e.Value.Any())
	}
}

func TestEntry_Validate_CollectsAllRuleFailures(t *testing.T) {
	e := &Entry{
		Key:   "app.name",
		Value: StringValue(""),
		Type:  KindString,
		Rules: ParseRules([]string{"min_length:3", "not_empty"}),
	}
	err := e.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Validate() error = %v, want *ValidationError", err)
	}
	if len(verr.Problems) != 2 {
		t.Errorf("len(Problems) = %d, want 2: %v", len(verr.Problems), verr.Problems)
	}
}

func TestEntry_Validate_RulesSeeCoercedValue(t *testing.T) {
	// "15" declared as int: min_value:10 must evaluate the coerced 15.
	e := &Entry{
		Key:   "pool.size",
		Value: StringValue("15"),
		Type:  KindInt,
		Rules: ParseRules([]string{"min_value:10"}),
	}
	if err := e.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	low := &Entry{
		Key:   "pool.size",
		Value: StringValue("5"),
		Type:  KindInt,
		Rules: ParseRules([]string{"min_value:10"}),
	}
	if err := low.Validate(); err == nil {
		t.Error("Validate() = nil, want error for 5 < 10")
	}
}

func TestSource_Priority(t *testing.T) {
	order := []Source{SourceDefault, SourceDatabase, SourceConfigFile, SourceEnvironment, SourceOverride}
	for i := 1; i < len(order); i++ {
		if order[i].Priority() <= order[i-1].Priority() {
			t.Errorf("Priority(%s) = %d, want > Priority(%s) = %d",
				order[i], order[i].Priority(), order[i-1], order[i-1].Priority())
		}
	}
	if Source("bogus").Priority() != 0 {
		t.Errorf("Priority(bogus) = %d, want 0", Source("bogus").Priority())
	}
}
