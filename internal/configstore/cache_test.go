package configstore

import (
	"testing"
	"time"
)

func TestStore_CacheServesRepeatReads(t *testing.T) {
	s := newTestStore(t, Options{CacheEnabled: true, CacheTTL: time.Minute})
	mustSet(t, s, "app.name", "configcore")

	// Prime the cache, then read again: both reads resolve identically.
	first := s.Get("app.name", nil)
	second := s.Get("app.name", nil)
	if first != second || first != "configcore" {
		t.Errorf("reads = %v, %v, want configcore twice", first, second)
	}
	if size := s.Status().CacheSize; size != 1 {
		t.Errorf("CacheSize = %d, want 1", size)
	}
}

func TestStore_CacheExpires(t *testing.T) {
	s := newTestStore(t, Options{CacheEnabled: true, CacheTTL: 10 * time.Millisecond})
	mustSet(t, s, "app.name", "configcore")

	s.Get("app.name", nil)
	time.Sleep(25 * time.Millisecond)

	// The expired slot is a miss; the read falls through to the entry map
	// and still returns the right value.
	if got := s.Get("app.name", nil); got != "configcore" {
		t.Errorf("Get() after expiry = %v, want configcore", got)
	}
}

func TestStore_CacheHitSkipsEntryMap(t *testing.T) {
	s := newTestStore(t, Options{CacheEnabled: true, CacheTTL: 30 * time.Millisecond})
	mustSet(t, s, "app.name", "cached")

	if got := s.Get("app.name", nil); got != "cached" {
		t.Fatalf("Get() = %v, want cached", got)
	}

	// Rewrite the entry behind the store's back. A real mutation goes
	// through Set and purges the cached slot; this one must stay invisible
	// until the TTL lapses.
	s.mu.Lock()
	s.entries["app.name"].Value = FromAny("mutated")
	s.mu.Unlock()

	if got := s.Get("app.name", nil); got != "cached" {
		t.Errorf("Get() within TTL = %v, want stale cached", got)
	}

	time.Sleep(50 * time.Millisecond)
	if got := s.Get("app.name", nil); got != "mutated" {
		t.Errorf("Get() after expiry = %v, want mutated", got)
	}
}

func TestStore_WriteThroughInvalidation(t *testing.T) {
	s := newTestStore(t, Options{CacheEnabled: true, CacheTTL: time.Hour})
	mustSet(t, s, "app.name", "before")

	if got := s.Get("app.name", nil); got != "before" {
		t.Fatalf("Get() = %v, want before", got)
	}

	// The write purges the cached slot immediately, long before the TTL.
	mustSet(t, s, "app.name", "after")
	if got := s.Get("app.name", nil); got != "after" {
		t.Errorf("Get() after Set = %v, want after", got)
	}

	s.Delete("app.name")
	if got := s.Get("app.name", "gone"); got != "gone" {
		t.Errorf("Get() after Delete = %v, want default", got)
	}
}

func TestStore_ClearCache(t *testing.T) {
	s := newTestStore(t, Options{CacheEnabled: true, CacheTTL: time.Hour})
	mustSet(t, s, "a", 1)
	mustSet(t, s, "b", 2)
	s.Get("a", nil)
	s.Get("b", nil)

	s.ClearCache("a")
	if size := s.Status().CacheSize; size != 1 {
		t.Errorf("CacheSize after selective clear = %d, want 1", size)
	}

	s.ClearCache()
	if size := s.Status().CacheSize; size != 0 {
		t.Errorf("CacheSize after full clear = %d, want 0", size)
	}
}

func TestStore_CacheDisabled(t *testing.T) {
	s := newTestStore(t, Options{CacheEnabled: false})
	mustSet(t, s, "app.name", "configcore")

	if got := s.Get("app.name", nil); got != "configcore" {
		t.Errorf("Get() = %v, want configcore", got)
	}
	st := s.Status()
	if st.CacheEnabled {
		t.Error("CacheEnabled = true, want false")
	}
	if st.CacheSize != 0 {
		t.Errorf("CacheSize = %d, want 0", st.CacheSize)
	}
}

func TestStore_ZeroTTLDisablesCache(t *testing.T) {
	s := newTestStore(t, Options{CacheEnabled: true, CacheTTL: 0})
	if s.Status().CacheEnabled {
		t.Error("CacheEnabled = true with zero TTL, want false")
	}
}
