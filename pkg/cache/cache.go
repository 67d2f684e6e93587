// Package cache memoizes expensive dry-run round-trips by derived key.
// Entries expire by TTL and are evicted least-recently-used at the
// capacity bound; nothing survives a process restart.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry[V any] struct {
	value     V
	createdAt time.Time
}

// Stats tracks cache effectiveness.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
}

// Cache is a TTL + LRU cache safe for concurrent use. GetOrFill
// additionally guarantees at most one in-flight fill per key, so two
// concurrent requests for the same statement do not issue duplicate
// upstream calls.
type Cache[V any] struct {
	capacity int
	ttl      time.Duration

	mu       sync.Mutex
	entries  map[string]*entry[V]
	keyOrder []string
	stats    Stats

	group singleflight.Group
}

// New creates a cache holding up to capacity entries for at most ttl.
// A zero capacity disables storage; every lookup misses.
func New[V any](capacity int, ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		capacity: capacity,
		ttl:      ttl,
		entries:  make(map[string]*entry[V]),
	}
}

// Key derives a stable cache key from the request parts.
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached value when present and fresh.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		return zero, false
	}
	if c.expired(e) {
		c.remove(key)
		c.stats.Misses++
		return zero, false
	}
	c.touch(key)
	c.stats.Hits++
	return e.value, true
}

// Put stores a value, evicting the least recently used entry when the
// capacity bound is reached.
func (c *Cache[V]) Put(key string, value V) {
	if c.capacity <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		c.remove(key)
	}
	for len(c.entries) >= c.capacity {
		c.evictOldest()
	}
	c.entries[key] = &entry[V]{value: value, createdAt: time.Now()}
	c.keyOrder = append(c.keyOrder, key)
}

// GetOrFill returns the cached value or computes it with fill, storing
// the result on success. Concurrent callers for the same key share a
// single fill call; a failed fill is not cached.
func (c *Cache[V]) GetOrFill(key string, fill func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		value, err := fill()
		if err != nil {
			return value, err
		}
		c.Put(key, value)
		return value, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}

// Stats returns a snapshot of the hit/miss/eviction counters.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Len returns the number of stored entries, expired or not.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache[V]) expired(e *entry[V]) bool {
	return c.ttl > 0 && time.Since(e.createdAt) > c.ttl
}

func (c *Cache[V]) touch(key string) {
	for i, k := range c.keyOrder {
		if k == key {
			c.keyOrder = append(c.keyOrder[:i], c.keyOrder[i+1:]...)
			c.keyOrder = append(c.keyOrder, key)
			return
		}
	}
}

func (c *Cache[V]) remove(key string) {
	if _, ok := c.entries[key]; !ok {
		return
	}
	delete(c.entries, key)
	for i, k := range c.keyOrder {
		if k == key {
			c.keyOrder = append(c.keyOrder[:i], c.keyOrder[i+1:]...)
			return
		}
	}
}

func (c *Cache[V]) evictOldest() {
	if len(c.keyOrder) == 0 {
		return
	}
	oldest := c.keyOrder[0]
	c.remove(oldest)
	c.stats.Evictions++
}
