package configstore

import "context"

// Seed is one raw key/value pair produced by a bootstrap provider, together
// with any metadata the provider can declare about it. Zero-valued fields
// inherit from an earlier-loaded entry for the same key, or are inferred
// from the value itself.
type Seed struct {
	Key         string
	Value       any
	Type        Kind
	Required    bool
	Sensitive   bool
	Description string
	Rules       []string
}

// Provider supplies configuration seeds during store construction. Providers
// are consulted exactly once, in the order given to New, and never again:
// precedence is their load order. A provider that fails is logged and
// skipped — bootstrap is best-effort for everything except the
// mission-critical gate.
//
// Implementations live in internal/provider; this interface is defined on
// the consumer side so providers depend on the store's types and not the
// other way around.
type Provider interface {
	// Name identifies the provider in logs.
	Name() string

	// Source is the provenance recorded on every entry this provider loads.
	Source() Source

	// Load reads the provider's key/value pairs. It is called once, before
	// the store is shared across goroutines, so it may do file, environment,
	// or database I/O freely.
	Load(ctx context.Context) ([]Seed, error)
}
