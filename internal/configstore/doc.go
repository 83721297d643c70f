// Package configstore implements the configuration resolution engine at the
// heart of configcore: a single source of truth that merges values from
// ordered bootstrap providers, validates and type-coerces them, caches
// resolved reads, and records every change.
//
// This package manages:
//   - Typed configuration entries with provenance and scope metadata
//   - A pluggable validation-rule engine with parse-once rule strings
//   - A per-key TTL read cache with write-through invalidation
//   - A bounded in-memory change history with listener notification
//   - A memoizing factory providing isolated per-user/per-service stores
//
// Precedence between sources (Override > Environment > ConfigFile >
// Database > Default) is enforced procedurally: storage is last-write-wins
// and providers are loaded in ascending priority order during construction.
// There is no rank arbitration at read or write time; callers wanting a
// higher-precedence value write later or write with SourceOverride.
//
// Thread Safety:
//   - All Store and Factory methods are safe for concurrent use.
//   - Each store guards its entry map with one mutex and its read cache
//     with an independent one; no I/O happens under either lock.
//   - Change listeners run synchronously on the mutating goroutine. A
//     listener that re-enters the same store's mutation path is unsupported.
//
// Usage:
//
//	store, err := configstore.New(ctx, configstore.Options{
//	    Providers:         provider.Standard(id, provider.Chain{Dir: "configs"}),
//	    CacheEnabled:      true,
//	    CacheTTL:          30 * time.Second,
//	    ValidationEnabled: true,
//	    CriticalKeys:      []string{"database.url", "security.jwt_secret"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	port := store.GetInt("websocket.port", 8765)
package configstore
