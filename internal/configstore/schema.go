package configstore

import (
	"fmt"
	"sort"
	"strings"
)

// SchemaEntry declares validation metadata for one key. Schemas register
// flags and rules without requiring an entry to exist yet; a later write to
// the key picks them up.
type SchemaEntry struct {
	Required    bool
	Sensitive   bool
	Deprecated  bool
	Type        Kind
	Rules       []string
	Description string
}

// Schema is a bulk registration of validation metadata, keyed by entry key.
type Schema map[string]SchemaEntry

// ApplySchema registers required/sensitive/deprecated flags and validation
// rules for the named keys. Existing entries are updated in place; keys
// with no entry are tracked so ValidateAll can report them when required.
func (s *Store) ApplySchema(schema Schema) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, se := range schema {
		if se.Required {
			s.required[key] = struct{}{}
		}
		if se.Sensitive {
			s.sensitive[key] = struct{}{}
		}
		if se.Deprecated {
			s.deprecated[key] = struct{}{}
		}
		if len(se.Rules) > 0 {
			s.schemaRules[key] = ParseRules(se.Rules)
		}

		e, ok := s.entries[key]
		if !ok {
			continue
		}
		if se.Required {
			e.Required = true
		}
		if se.Sensitive {
			e.Sensitive = true
		}
		if se.Type != KindAny {
			e.Type = se.Type
		}
		if len(se.Rules) > 0 {
			e.Rules = s.schemaRules[key]
		}
		if se.Description != "" && e.Description == "" {
			e.Description = se.Description
		}
	}
}

// Result aggregates the outcome of validating every entry in a store.
type Result struct {
	Valid           bool     `json:"valid"`
	Errors          []string `json:"errors,omitempty"`
	Warnings        []string `json:"warnings,omitempty"`
	MissingRequired []string `json:"missing_required,omitempty"`
	DeprecatedKeys  []string `json:"deprecated_keys,omitempty"`
	CriticalErrors  []string `json:"critical_errors,omitempty"`
}

// ValidateAll re-validates every entry against its declared type and rules
// and classifies the findings:
//
//   - Errors: entries that fail coercion or any rule.
//   - CriticalErrors: the subset of failing entries that are required,
//     plus registered-required keys with no entry at all.
//   - MissingRequired: required entries holding an empty value, plus
//     registered-required keys with no entry.
//   - Warnings/DeprecatedKeys: deprecated keys still present.
//
// Validation here never mutates stored entries; each is validated on a
// copy.
func (s *Store) ValidateAll() Result {
	s.mu.RLock()
	entries := make(map[string]*Entry, len(s.entries))
	for k, e := range s.entries {
		entries[k] = e.clone()
	}
	required := make([]string, 0, len(s.required))
	for k := range s.required {
		required = append(required, k)
	}
	deprecated := make(map[string]struct{}, len(s.deprecated))
	for k := range s.deprecated {
		deprecated[k] = struct{}{}
	}
	s.mu.RUnlock()

	var res Result
	for key, e := range entries {
		if err := e.Validate(); err != nil {
			res.Errors = append(res.Errors, err.Error())
			if e.Required {
				res.CriticalErrors = append(res.CriticalErrors, key)
			}
		}
		if e.Required && strings.TrimSpace(e.Value.text()) == "" {
			res.MissingRequired = append(res.MissingRequired, key)
		}
		if _, dep := deprecated[key]; dep {
			res.DeprecatedKeys = append(res.DeprecatedKeys, key)
			res.Warnings = append(res.Warnings, fmt.Sprintf("key %q is deprecated", key))
		}
	}

	for _, key := range required {
		if _, ok := entries[key]; !ok {
			res.MissingRequired = append(res.MissingRequired, key)
			res.CriticalErrors = append(res.CriticalErrors, key)
		}
	}

	sort.Strings(res.Errors)
	sort.Strings(res.Warnings)
	sort.Strings(res.MissingRequired)
	sort.Strings(res.DeprecatedKeys)
	sort.Strings(res.CriticalErrors)

	res.Valid = len(res.Errors) == 0 &&
		len(res.MissingRequired) == 0 &&
		len(res.CriticalErrors) == 0
	return res
}
