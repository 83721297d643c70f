package configstore

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// DefaultCacheTTL is the read-cache lifetime used when callers do not
// choose their own.
const DefaultCacheTTL = 5 * time.Minute

// readCache is the per-key TTL cache over resolved reads. It relies on
// ttlcache's lazy expiration: no janitor goroutine runs, expired items are
// simply misses on lookup. The cache synchronises internally, independent
// of the store's entry mutex.
//
// Invalidation is write-through: Set and Delete purge the key immediately,
// never lazily.
type readCache struct {
	enabled bool
	ttl     time.Duration
	items   *ttlcache.Cache[string, any]
}

func newReadCache(enabled bool, ttl time.Duration) *readCache {
	c := &readCache{enabled: enabled && ttl > 0, ttl: ttl}
	if c.enabled {
		c.items = ttlcache.New(
			ttlcache.WithTTL[string, any](ttl),
			ttlcache.WithDisableTouchOnHit[string, any](),
		)
	}
	return c
}

// get returns the cached resolved value for key, if present and younger
// than the TTL.
func (c *readCache) get(key string) (any, bool) {
	if !c.enabled {
		return nil, false
	}
	item := c.items.Get(key)
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

// put caches a resolved value with the current timestamp.
func (c *readCache) put(key string, v any) {
	if !c.enabled {
		return
	}
	c.items.Set(key, v, ttlcache.DefaultTTL)
}

// purge drops one key.
func (c *readCache) purge(key string) {
	if !c.enabled {
		return
	}
	c.items.Delete(key)
}

// purgeAll drops every cached value.
func (c *readCache) purgeAll() {
	if !c.enabled {
		return
	}
	c.items.DeleteAll()
}

// size reports the number of live cached values, evicting anything already
// past its TTL so the count is accurate for status reporting.
func (c *readCache) size() int {
	if !c.enabled {
		return 0
	}
	c.items.DeleteExpired()
	return c.items.Len()
}
