package configstore

import (
	"fmt"
	"strings"
)

// ValidationError is returned by Set (and Entry.Validate) when a value
// fails type coercion or any validation rule. The write that produced it is
// rejected; the store is left unchanged.
type ValidationError struct {
	Key      string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %q: %s", e.Key, strings.Join(e.Problems, "; "))
}

// MissingCriticalError aborts store construction when one or more
// mission-critical keys have no value after all providers have loaded. It
// names every missing key, not just the first.
type MissingCriticalError struct {
	Keys []string
}

func (e *MissingCriticalError) Error() string {
	return fmt.Sprintf("missing mission-critical configuration: %s", strings.Join(e.Keys, ", "))
}
