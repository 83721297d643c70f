package configstore

import "time"

// ValidationSummary condenses a Result for status reporting.
type ValidationSummary struct {
	Valid           bool `json:"valid"`
	Errors          int  `json:"errors"`
	Warnings        int  `json:"warnings"`
	MissingRequired int  `json:"missing_required"`
}

// Status is an aggregate snapshot of one store.
type Status struct {
	User        string `json:"user_id,omitempty"`
	Service     string `json:"service,omitempty"`
	Environment string `json:"environment,omitempty"`

	Entries  int            `json:"entries"`
	BySource map[string]int `json:"by_source"`
	ByScope  map[string]int `json:"by_scope"`

	Validation ValidationSummary `json:"validation"`

	CacheEnabled bool          `json:"cache_enabled"`
	CacheTTL     time.Duration `json:"cache_ttl"`
	CacheSize    int           `json:"cache_size"`

	Listeners     int `json:"listeners"`
	HistoryLength int `json:"history_length"`
}

// Health is the minimal liveness view: "healthy" exactly when every entry
// validates and nothing required is missing.
type Health struct {
	Status          string   `json:"status"`
	Errors          int      `json:"errors"`
	MissingRequired []string `json:"missing_required,omitempty"`
}

// Health status values.
const (
	HealthHealthy   = "healthy"
	HealthUnhealthy = "unhealthy"
)

// Status aggregates entry counts by source and scope, the validation
// summary, cache occupancy, and auditor counters.
func (s *Store) Status() Status {
	res := s.ValidateAll()

	s.mu.RLock()
	st := Status{
		User:        s.identity.User,
		Service:     s.identity.Service,
		Environment: s.identity.Environment,
		Entries:     len(s.entries),
		BySource:    make(map[string]int),
		ByScope:     make(map[string]int),
	}
	for _, e := range s.entries {
		st.BySource[string(e.Source)]++
		st.ByScope[string(e.Scope)]++
	}
	s.mu.RUnlock()

	st.Validation = ValidationSummary{
		Valid:           res.Valid,
		Errors:          len(res.Errors),
		Warnings:        len(res.Warnings),
		MissingRequired: len(res.MissingRequired),
	}
	st.CacheEnabled = s.cache.enabled
	st.CacheTTL = s.cache.ttl
	st.CacheSize = s.cache.size()
	st.Listeners, st.HistoryLength = s.audit.counts()
	return st
}

// Health reports "healthy" iff ValidateAll finds nothing wrong.
func (s *Store) Health() Health {
	res := s.ValidateAll()
	h := Health{
		Status:          HealthHealthy,
		Errors:          len(res.Errors),
		MissingRequired: res.MissingRequired,
	}
	if !res.Valid {
		h.Status = HealthUnhealthy
	}
	return h
}
