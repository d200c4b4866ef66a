// Package ttlcache is a small mutex-guarded map with per-cache TTL and an
// optional capacity bound. Entries expire lazily: an expired entry is
// removed on the Get that observes it. Nothing is persisted.
package ttlcache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	val      V
	storedAt time.Time
}

type Cache[K comparable, V any] struct {
	mu    sync.Mutex
	ttl   time.Duration
	cap   int // 0 = unbounded
	data  map[K]entry[V]
	clock func() time.Time
}

func New[K comparable, V any](ttl time.Duration) *Cache[K, V] {
	return &Cache[K, V]{
		ttl:   ttl,
		data:  make(map[K]entry[V]),
		clock: time.Now,
	}
}

// WithCapacity bounds the cache; inserting a new key at capacity evicts the
// oldest-by-insertion-time entry first.
func (c *Cache[K, V]) WithCapacity(n int) *Cache[K, V] {
	c.mu.Lock()
	c.cap = n
	c.mu.Unlock()
	return c
}

// WithClock replaces the time source, for tests.
func (c *Cache[K, V]) WithClock(now func() time.Time) *Cache[K, V] {
	c.mu.Lock()
	c.clock = now
	c.mu.Unlock()
	return c
}

// Get returns the value iff its age is below the TTL. An expired entry is
// treated as absent and removed.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.data[key]
	if !ok {
		var zero V
		return zero, false
	}
	if c.clock().Sub(e.storedAt) >= c.ttl {
		delete(c.data, key)
		var zero V
		return zero, false
	}
	return e.val, true
}

// GetStale returns the value and its age regardless of expiry. Callers that
// prefer a stale value over no value at all (rate lookups) use this after a
// failed refresh.
func (c *Cache[K, V]) GetStale(key K) (V, time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.data[key]
	if !ok {
		var zero V
		return zero, 0, false
	}
	return e.val, c.clock().Sub(e.storedAt), true
}

// Set unconditionally overwrites.
func (c *Cache[K, V]) Set(key K, val V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cap > 0 {
		if _, exists := c.data[key]; !exists && len(c.data) >= c.cap {
			c.evictOldestLocked()
		}
	}
	c.data[key] = entry[V]{val: val, storedAt: c.clock()}
}

func (c *Cache[K, V]) evictOldestLocked() {
	var (
		oldest K
		at     time.Time
		found  bool
	)
	for k, e := range c.data {
		if !found || e.storedAt.Before(at) {
			oldest, at, found = k, e.storedAt, true
		}
	}
	if found {
		delete(c.data, oldest)
	}
}

// EvictExpired sweeps out every expired entry and reports how many were
// removed.
func (c *Cache[K, V]) EvictExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock()
	n := 0
	for k, e := range c.data {
		if now.Sub(e.storedAt) >= c.ttl {
			delete(c.data, k)
			n++
		}
	}
	return n
}

func (c *Cache[K, V]) TTL() time.Duration { return c.ttl }

func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}
