package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// Key derives a cache key from arbitrary input text.
func Key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

type entry[V any] struct {
	key        string
	value      V
	insertedAt time.Time
}

// Cache is a bounded key/value store with per-entry TTL. Entries older than
// the TTL are never returned; when the entry count would exceed the maximum,
// the oldest inserted entry is evicted first. All operations are safe for
// concurrent use; reads never mutate the cache.
//
// A Cache with maxEntries <= 0 is disabled: Get always misses and Set is a
// no-op, which makes it usable as a no-op cache in tests.
type Cache[V any] struct {
	mu         sync.RWMutex
	maxEntries int
	ttl        time.Duration
	entries    map[string]*list.Element
	order      *list.List // front = oldest insertion
	now        func() time.Time
}

// Option customizes a Cache
type Option[V any] func(*Cache[V])

// WithClock overrides the time source, for tests.
func WithClock[V any](now func() time.Time) Option[V] {
	return func(c *Cache[V]) {
		c.now = now
	}
}

// New creates a Cache holding at most maxEntries entries, each valid for ttl.
// A ttl of 0 means entries never expire by age.
func New[V any](maxEntries int, ttl time.Duration, opts ...Option[V]) *Cache[V] {
	c := &Cache[V]{
		maxEntries: maxEntries,
		ttl:        ttl,
		entries:    make(map[string]*list.Element),
		order:      list.New(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the value stored under key, if present and not expired.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	if c.maxEntries <= 0 {
		return zero, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	elem, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	e := elem.Value.(*entry[V])
	if c.ttl > 0 && c.now().Sub(e.insertedAt) > c.ttl {
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, evicting the oldest entry on overflow.
// Overwriting an existing key refreshes its insertion time.
func (c *Cache[V]) Set(key string, value V) {
	if c.maxEntries <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		e := elem.Value.(*entry[V])
		e.value = value
		e.insertedAt = c.now()
		c.order.MoveToBack(elem)
		return
	}

	for len(c.entries) >= c.maxEntries {
		oldest := c.order.Front()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*entry[V]).key)
	}

	c.entries[key] = c.order.PushBack(&entry[V]{
		key:        key,
		value:      value,
		insertedAt: c.now(),
	})
}

// Len returns the number of entries currently stored, including expired
// entries that have not yet been evicted.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
