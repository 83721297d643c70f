package configstore

import (
	"strings"
	"time"
)

// Source identifies where a configuration value came from. Sources have a
// fixed conceptual priority (Override > Environment > ConfigFile > Database
// > Default) which is enforced by bootstrap load order, never by rank
// comparison at write time.
type Source string

// Known sources, lowest to highest priority.
const (
	SourceDefault     Source = "default"
	SourceDatabase    Source = "database"
	SourceConfigFile  Source = "config_file"
	SourceEnvironment Source = "environment"
	SourceOverride    Source = "override"
)

// Priority returns the conceptual rank of the source; higher wins. It is
// informational only — see the package documentation for the load-order
// contract.
func (s Source) Priority() int {
	switch s {
	case SourceOverride:
		return 5
	case SourceEnvironment:
		return 4
	case SourceConfigFile:
		return 3
	case SourceDatabase:
		return 2
	case SourceDefault:
		return 1
	default:
		return 0
	}
}

// Scope is the intended visibility namespace of an entry. It is
// documentation only and never affects precedence.
type Scope string

// Known scopes.
const (
	ScopeGlobal      Scope = "global"
	ScopeService     Scope = "service"
	ScopeUser        Scope = "user"
	ScopeEnvironment Scope = "environment"
	ScopeAgent       Scope = "agent"
)

// Entry is a single configuration record: a value plus the metadata needed
// to validate, display, and audit it.
type Entry struct {
	Key         string
	Value       Value
	Source      Source
	Scope       Scope
	Type        Kind
	Required    bool
	Sensitive   bool
	Description string
	Rules       []Rule
	LastUpdated time.Time

	// Owning identity tags, copied from the store at write time.
	Environment string
	Service     string
	User        string
}

// Validate coerces the value toward the declared type and evaluates every
// rule against the (possibly coerced) value. On success the coerced value
// replaces the original; on failure the value is left untouched and a
// *ValidationError describes every problem found.
func (e *Entry) Validate() error {
	coerced, err := e.Value.Coerce(e.Type)
	if err != nil {
		return &ValidationError{Key: e.Key, Problems: []string{err.Error()}}
	}

	var problems []string
	for _, r := range e.Rules {
		if rerr := r.Evaluate(coerced); rerr != nil {
			problems = append(problems, rerr.Error())
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Key: e.Key, Problems: problems}
	}

	e.Value = coerced
	return nil
}

// DisplayValue returns the value rendered for logs, listings, and
// broadcasts. Sensitive string values pass through MaskString; everything
// else renders plainly.
func (e *Entry) DisplayValue() string {
	if e.Sensitive && e.Value.Kind() == KindString {
		return MaskString(e.Value.text())
	}
	return e.Value.text()
}

// maskMinLength is the length at or below which a sensitive value is fully
// masked instead of partially revealed.
const maskMinLength = 4

// MaskString masks a sensitive value as first 2 characters + one '*' per
// hidden character + last 2 characters. Values of 4 characters or fewer
// return exactly "***" so short secrets reveal nothing, not even length.
// Lengths count runes, not bytes, so multibyte values mask cleanly.
func MaskString(s string) string {
	r := []rune(s)
	if len(r) <= maskMinLength {
		return "***"
	}
	return string(r[:2]) + strings.Repeat("*", len(r)-4) + string(r[len(r)-2:])
}

// clone returns a copy safe to validate without mutating the stored entry.
// Rules are immutable after parse, so sharing the slice is fine.
func (e *Entry) clone() *Entry {
	c := *e
	return &c
}
