package configstore

import (
	"context"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"github.com/ironvale/configcore/internal/infrastructure/logging"
)

// Identity pins a store to its owning tenant. The zero Identity is the
// global store.
type Identity struct {
	User        string
	Service     string
	Environment string
}

// ChangeNotifier receives successful mutations for out-of-process fan-out
// (WebSocket, MQTT). Implementations must not block the mutation path; see
// internal/notify for the queue-backed implementation.
type ChangeNotifier interface {
	NotifyChange(rec ChangeRecord, sensitive bool)
}

// Options configures a Store.
type Options struct {
	// Identity tags every entry and change record written by this store.
	Identity Identity

	// Providers are consulted once, in order, at construction. Later
	// providers win on key collisions (last write wins).
	Providers []Provider

	// CacheEnabled turns on the per-key TTL read cache.
	CacheEnabled bool

	// CacheTTL is the time-to-live for cached resolved reads.
	CacheTTL time.Duration

	// ValidationEnabled makes Set reject entries that fail validation.
	ValidationEnabled bool

	// CriticalKeys must all hold a non-empty value once every provider has
	// loaded, or construction fails with *MissingCriticalError.
	CriticalKeys []string

	// Logger defaults to logging.Default() when nil.
	Logger *logging.Logger
}

// Store is the configuration resolution engine: a last-write-wins entry map
// populated by ordered providers, fronted by a TTL read cache, audited by a
// bounded change log.
type Store struct {
	logger     *logging.Logger
	identity   Identity
	validation bool
	critical   []string

	// mu guards entries and the derived key sets and schema rules below.
	mu          sync.RWMutex
	entries     map[string]*Entry
	required    map[string]struct{}
	sensitive   map[string]struct{}
	deprecated  map[string]struct{}
	schemaRules map[string][]Rule

	// cache synchronises independently of mu.
	cache *readCache

	audit *auditor

	notifierMu sync.RWMutex
	notifier   ChangeNotifier
}

// New constructs a store and runs the bootstrap sequence: every provider is
// loaded in order (best-effort — a broken file or unreachable database is
// logged and skipped), then the mission-critical gate checks that every
// critical key holds a value.
//
// All provider I/O happens here, before the store is shared across
// goroutines, so the bootstrap path takes no locks.
//
// Returns:
//   - *Store: Ready store; safe for concurrent use.
//   - error: *MissingCriticalError if any critical key is absent or empty.
func New(ctx context.Context, opts Options) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}

	s := &Store{
		logger:      logger.With("component", "configstore"),
		identity:    opts.Identity,
		validation:  opts.ValidationEnabled,
		critical:    opts.CriticalKeys,
		entries:     make(map[string]*Entry),
		required:    make(map[string]struct{}),
		sensitive:   make(map[string]struct{}),
		deprecated:  make(map[string]struct{}),
		schemaRules: make(map[string][]Rule),
		cache:       newReadCache(opts.CacheEnabled, opts.CacheTTL),
	}
	s.audit = newAuditor(s.logger)

	for _, p := range opts.Providers {
		seeds, err := p.Load(ctx)
		if err != nil {
			s.logger.Warn("config provider failed, skipping",
				"provider", p.Name(),
				"source", string(p.Source()),
				"error", err,
			)
			continue
		}
		for _, seed := range seeds {
			s.loadSeed(p.Source(), seed)
		}
		s.logger.Debug("config provider loaded", "provider", p.Name(), "seeds", len(seeds))
	}

	if missing := s.missingCritical(); len(missing) > 0 {
		return nil, &MissingCriticalError{Keys: missing}
	}

	s.logger.Info("configuration store ready",
		"entries", len(s.entries),
		"user", s.identity.User,
		"service", s.identity.Service,
		"environment", s.identity.Environment,
	)
	return s, nil
}

// entryMeta carries the metadata a write supplies explicitly. Unset fields
// inherit from the prior entry for the key, then from the registered
// schema, then from the value itself.
type entryMeta struct {
	source      Source
	scope       Scope
	kind        Kind
	kindSet     bool
	rules       []string
	rulesSet    bool
	sensitive   *bool
	required    *bool
	description string
	descSet     bool
}

// loadSeed stores one bootstrap seed, last write wins. Coercion toward the
// declared type is best-effort: a value that will not coerce is kept raw
// and logged, never dropped — bootstrap must not lose data over a bad cast.
func (s *Store) loadSeed(src Source, seed Seed) {
	m := entryMeta{source: src}
	if seed.Type != KindAny {
		m.kind, m.kindSet = seed.Type, true
	}
	if len(seed.Rules) > 0 {
		m.rules, m.rulesSet = seed.Rules, true
	}
	if seed.Sensitive {
		t := true
		m.sensitive = &t
	}
	if seed.Required {
		t := true
		m.required = &t
	}
	if seed.Description != "" {
		m.description, m.descSet = seed.Description, true
	}

	e := s.buildEntry(seed.Key, seed.Value, s.entries[seed.Key], m)
	if coerced, err := e.Value.Coerce(e.Type); err == nil {
		e.Value = coerced
	} else {
		s.logger.Warn("bootstrap value kept uncoerced",
			"key", seed.Key, "source", string(src), "target", e.Type.String(), "error", err)
	}
	s.entries[seed.Key] = e
	s.indexEntry(e, m)
}

// buildEntry assembles a new entry, inheriting unspecified metadata from
// the prior entry, the registered schema, and finally the value itself.
// Caller holds mu (or is the constructor).
func (s *Store) buildEntry(key string, value any, prev *Entry, m entryMeta) *Entry {
	val := FromAny(value)

	e := &Entry{
		Key:         key,
		Value:       val,
		Source:      m.source,
		LastUpdated: time.Now().UTC(),
		Environment: s.identity.Environment,
		Service:     s.identity.Service,
		User:        s.identity.User,
	}

	switch {
	case m.kindSet:
		e.Type = m.kind
	case prev != nil:
		e.Type = prev.Type
	default:
		e.Type = val.Kind()
	}

	switch {
	case m.scope != "":
		e.Scope = m.scope
	case prev != nil:
		e.Scope = prev.Scope
	default:
		e.Scope = ScopeGlobal
	}

	switch {
	case m.sensitive != nil:
		e.Sensitive = *m.sensitive
	case prev != nil:
		e.Sensitive = prev.Sensitive
	default:
		_, e.Sensitive = s.sensitive[key]
	}

	switch {
	case m.required != nil:
		e.Required = *m.required
	case prev != nil:
		e.Required = prev.Required
	default:
		_, e.Required = s.required[key]
	}

	switch {
	case m.rulesSet:
		e.Rules = ParseRules(m.rules)
	case prev != nil && len(prev.Rules) > 0:
		e.Rules = prev.Rules
	default:
		e.Rules = s.schemaRules[key]
	}

	switch {
	case m.descSet:
		e.Description = m.description
	case prev != nil:
		e.Description = prev.Description
	}

	return e
}

// indexEntry keeps the derived key sets in step with an entry write.
// Registered flags persist across Delete so ValidateAll can report keys
// that are required but absent; only an explicit flag change unsets them.
func (s *Store) indexEntry(e *Entry, m entryMeta) {
	if e.Required {
		s.required[e.Key] = struct{}{}
	} else if m.required != nil {
		delete(s.required, e.Key)
	}
	if e.Sensitive {
		s.sensitive[e.Key] = struct{}{}
	} else if m.sensitive != nil {
		delete(s.sensitive, e.Key)
	}
}

// SetOption customises the metadata of a Set call.
type SetOption func(*entryMeta)

// WithSource records the provenance of the write. Defaults to
// SourceOverride — an explicit write outranks everything, conceptually.
func WithSource(src Source) SetOption {
	return func(m *entryMeta) { m.source = src }
}

// WithScope sets the documentation-only visibility scope.
func WithScope(sc Scope) SetOption {
	return func(m *entryMeta) { m.scope = sc }
}

// WithType declares the entry's type, enabling coercion and validation
// against it.
func WithType(k Kind) SetOption {
	return func(m *entryMeta) { m.kind, m.kindSet = k, true }
}

// WithRules attaches validation rules, replacing any inherited ones.
func WithRules(rules ...string) SetOption {
	return func(m *entryMeta) { m.rules, m.rulesSet = rules, true }
}

// WithSensitive flags (or unflags) the entry as sensitive.
func WithSensitive(v bool) SetOption {
	return func(m *entryMeta) { m.sensitive = &v }
}

// WithRequired flags (or unflags) the entry as required.
func WithRequired(v bool) SetOption {
	return func(m *entryMeta) { m.required = &v }
}

// WithDescription sets the human-readable description.
func WithDescription(d string) SetOption {
	return func(m *entryMeta) { m.description, m.descSet = d, true }
}

// Set stores a value for key. The new entry inherits unspecified metadata
// (declared type, sensitivity, rules, description) from any prior entry for
// the key. With validation enabled, a value that fails coercion or any rule
// is rejected with *ValidationError and the store is left unchanged.
//
// On success the key's cache slot is purged, a change record is appended,
// listeners fire synchronously, and the change notifier (if any) is handed
// the record.
func (s *Store) Set(key string, value any, opts ...SetOption) error {
	m := entryMeta{source: SourceOverride}
	for _, o := range opts {
		o(&m)
	}

	s.mu.Lock()
	prev := s.entries[key]
	e := s.buildEntry(key, value, prev, m)
	if s.validation {
		if err := e.Validate(); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	s.entries[key] = e
	s.indexEntry(e, m)
	var old any
	if prev != nil {
		old = prev.Value.Any()
	}
	newValue := e.Value.Any()
	sensitive := e.Sensitive
	src := e.Source
	s.mu.Unlock()

	s.cache.purge(key)

	rec := s.changeRecord(key, old, newValue, src)
	s.audit.record(rec)
	s.audit.notify(key, old, newValue)
	s.publish(rec, sensitive)
	return nil
}

// Delete removes the entry for key, reporting whether it existed. A delete
// is audited with a nil new value. Registered required/sensitive flags
// survive the delete.
func (s *Store) Delete(key string) bool {
	s.mu.Lock()
	prev, ok := s.entries[key]
	if ok {
		delete(s.entries, key)
	}
	s.mu.Unlock()

	if !ok {
		return false
	}

	s.cache.purge(key)

	old := prev.Value.Any()
	rec := s.changeRecord(key, old, nil, prev.Source)
	s.audit.record(rec)
	s.audit.notify(key, old, nil)
	s.publish(rec, prev.Sensitive)
	return true
}

// Get returns the resolved value for key, or def when no entry exists.
// The Get family never fails: bad data degrades to def or to the stored
// value, and problems are logged, not returned.
func (s *Store) Get(key string, def any) any {
	return s.resolve(key, def, KindAny)
}

// GetTyped is Get with read-time coercion toward kind. Coercion failure
// logs a warning and returns the stored value uncoerced — not def.
func (s *Store) GetTyped(key string, def any, kind Kind) any {
	return s.resolve(key, def, kind)
}

func (s *Store) resolve(key string, def any, kind Kind) any {
	if v, ok := s.cache.get(key); ok {
		return v
	}

	s.mu.RLock()
	e, ok := s.entries[key]
	var val Value
	if ok {
		val = e.Value
	}
	s.mu.RUnlock()

	if !ok {
		return def
	}

	out := val.Any()
	if kind != KindAny {
		coerced, err := val.Coerce(kind)
		if err != nil {
			s.logger.Warn("read-time coercion failed, returning stored value",
				"key", key, "target", kind.String(), "error", err)
		} else {
			out = coerced.Any()
		}
	}

	s.cache.put(key, out)
	return out
}

// GetString returns the value coerced to a string, or def.
func (s *Store) GetString(key, def string) string {
	if v, ok := s.resolve(key, nil, KindString).(string); ok {
		return v
	}
	return def
}

// GetInt returns the value coerced to an integer, or def.
func (s *Store) GetInt(key string, def int64) int64 {
	switch v := s.resolve(key, nil, KindInt).(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	default:
		return def
	}
}

// GetFloat returns the value coerced to a float, or def.
func (s *Store) GetFloat(key string, def float64) float64 {
	switch v := s.resolve(key, nil, KindFloat).(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	default:
		return def
	}
}

// GetBool returns the value coerced to a boolean, or def. String values
// pass through the fixed truthy set, so "yes" is true and "enabled" is
// false.
func (s *Store) GetBool(key string, def bool) bool {
	if v, ok := s.resolve(key, nil, KindBool).(bool); ok {
		return v
	}
	return def
}

// GetList interprets the value as a list: a stored array is returned as-is,
// a string is parsed as a JSON array when it is one, otherwise split on
// commas with whitespace trimmed, and any other scalar is wrapped as a
// single-element list. Missing keys return def.
func (s *Store) GetList(key string, def []any) []any {
	raw := s.Get(key, nil)
	switch t := raw.(type) {
	case nil:
		return def
	case []any:
		return t
	case string:
		txt := strings.TrimSpace(t)
		if txt == "" {
			return def
		}
		if gjson.Valid(txt) {
			if res := gjson.Parse(txt); res.IsArray() {
				if arr, ok := res.Value().([]any); ok {
					return arr
				}
			}
		}
		parts := strings.Split(txt, ",")
		out := make([]any, 0, len(parts))
		for _, p := range parts {
			out = append(out, strings.TrimSpace(p))
		}
		return out
	default:
		return []any{raw}
	}
}

// GetMap interprets the value as a JSON-style object. A stored object is
// returned as-is and a string is parsed when it holds a JSON object;
// everything else returns def.
func (s *Store) GetMap(key string, def map[string]any) map[string]any {
	raw := s.Get(key, nil)
	switch t := raw.(type) {
	case map[string]any:
		return t
	case string:
		txt := strings.TrimSpace(t)
		if gjson.Valid(txt) {
			if res := gjson.Parse(txt); res.IsObject() {
				if m, ok := res.Value().(map[string]any); ok {
					return m
				}
			}
		}
		return def
	default:
		return def
	}
}

// Exists reports whether an entry exists for key, bypassing the cache.
func (s *Store) Exists(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[key]
	return ok
}

// Keys returns the sorted keys matching pattern. An empty pattern matches
// everything. Patterns use path.Match globbing ("database.*"); a pattern
// that fails to compile degrades to substring matching, in keeping with the
// never-failing read contract.
func (s *Store) Keys(pattern string) []string {
	s.mu.RLock()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	s.mu.RUnlock()

	if pattern != "" {
		filtered := keys[:0]
		for _, k := range keys {
			ok, err := path.Match(pattern, k)
			if err != nil {
				ok = strings.Contains(k, pattern)
			}
			if ok {
				filtered = append(filtered, k)
			}
		}
		keys = filtered
	}

	sort.Strings(keys)
	return keys
}

// GetAll returns every entry's value keyed by name. Unless includeSensitive
// is set, sensitive values are replaced with their masked display form.
func (s *Store) GetAll(includeSensitive bool) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]any, len(s.entries))
	for k, e := range s.entries {
		if e.Sensitive && !includeSensitive {
			out[k] = e.DisplayValue()
		} else {
			out[k] = e.Value.Any()
		}
	}
	return out
}

// Entry returns a copy of the stored entry for key, for callers that need
// metadata alongside the value.
func (s *Store) Entry(key string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok {
		return Entry{}, false
	}
	return *e.clone(), true
}

// ClearCache purges the given keys from the read cache, or every key when
// none are given.
func (s *Store) ClearCache(keys ...string) {
	if len(keys) == 0 {
		s.cache.purgeAll()
		return
	}
	for _, k := range keys {
		s.cache.purge(k)
	}
}

// RegisterChangeListener registers fn to run synchronously after every
// successful Set and Delete. Listeners must not call back into this
// store's mutation path.
func (s *Store) RegisterChangeListener(fn ListenerFunc) {
	s.audit.addListener(fn)
}

// History returns up to limit most-recent change records, oldest first.
// limit <= 0 returns everything currently retained.
func (s *Store) History(limit int) []ChangeRecord {
	return s.audit.tail(limit)
}

// SetChangeNotifier wires the outbound change notifier. Pass nil to
// disconnect.
func (s *Store) SetChangeNotifier(n ChangeNotifier) {
	s.notifierMu.Lock()
	s.notifier = n
	s.notifierMu.Unlock()
}

// Identity returns the store's owning identity.
func (s *Store) Identity() Identity { return s.identity }

func (s *Store) publish(rec ChangeRecord, sensitive bool) {
	s.notifierMu.RLock()
	n := s.notifier
	s.notifierMu.RUnlock()
	if n != nil {
		n.NotifyChange(rec, sensitive)
	}
}

func (s *Store) changeRecord(key string, oldValue, newValue any, src Source) ChangeRecord {
	return ChangeRecord{
		ID:          newChangeID(),
		Timestamp:   time.Now().UTC(),
		Key:         key,
		OldValue:    oldValue,
		NewValue:    newValue,
		Source:      src,
		User:        s.identity.User,
		Service:     s.identity.Service,
		Environment: s.identity.Environment,
	}
}

// missingCritical returns critical keys without a usable value. Runs during
// construction, before the store is shared, so it takes no lock.
func (s *Store) missingCritical() []string {
	var missing []string
	for _, key := range s.critical {
		e, ok := s.entries[key]
		if !ok || strings.TrimSpace(e.Value.text()) == "" {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	return missing
}
