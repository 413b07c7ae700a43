// Package glyphcache caches rasterized glyph bitmaps.
//
// Rendering the same text repeatedly, as benchmark loops do, rasterizes
// the same small set of glyphs over and over. The cache keeps recent
// bitmaps keyed by glyph ID; it must be cleared whenever the pixel size
// or the variation coordinates change, since both invalidate every
// cached bitmap at once.
package glyphcache

import "sync"

// Cache is a bounded map with least-recently-used eviction. A soft limit
// of 0 means unlimited.
//
// Cache is safe for concurrent use and must not be copied after creation.
type Cache[K comparable, V any] struct {
	mu        sync.Mutex
	entries   map[K]*entry[V]
	softLimit int
	tick      int64
}

type entry[V any] struct {
	value V
	atime int64
}

// New creates a cache evicting down once it grows past softLimit.
func New[K comparable, V any](softLimit int) *Cache[K, V] {
	return &Cache[K, V]{
		entries:   make(map[K]*entry[V]),
		softLimit: softLimit,
	}
}

// Get retrieves a cached value and marks it recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.tick++
	e.atime = c.tick
	return e.value, true
}

// Set stores a value, evicting the oldest entries when the soft limit is
// exceeded.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tick++
	c.entries[key] = &entry[V]{value: value, atime: c.tick}

	if c.softLimit > 0 && len(c.entries) > c.softLimit {
		c.evictOldest()
	}
}

// Clear drops every entry.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[K]*entry[V])
	c.tick = 0
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// evictOldest removes entries, oldest first, until the cache is at 3/4 of
// the soft limit. Caller must hold c.mu.
func (c *Cache[K, V]) evictOldest() {
	target := c.softLimit * 3 / 4
	if target < 1 {
		target = 1
	}
	for len(c.entries) > target {
		var (
			oldestKey  K
			oldestTime int64
			found      bool
		)
		for key, e := range c.entries {
			if !found || e.atime < oldestTime {
				oldestKey = key
				oldestTime = e.atime
				found = true
			}
		}
		delete(c.entries, oldestKey)
	}
}
