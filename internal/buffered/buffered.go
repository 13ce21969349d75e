// Package buffered holds the pieces shared by the write-back managers: the
// flush contract and the bounded negative cache.
package buffered

import "context"

// Flusher is implemented by every manager that buffers writes in memory.
// Flush persists the whole write set in one backing-store transaction, merges
// it into the read set and clears the write set. Nothing flushes automatically;
// the process entry point decides when to call it.
type Flusher interface {
	Flush(ctx context.Context) error
}

// NegativeCache remembers keys that the backing store confirmed absent, so a
// repeated lookup fails locally instead of doing another round trip. The cache
// is capped; when full the oldest entry is evicted.
//
// Not goroutine safe. Callers guard it with the manager lock.
type NegativeCache[K comparable] struct {
	capacity int
	keys     map[K]struct{}
	order    []K
}

// NewNegativeCache creates a cache holding at most capacity keys.
func NewNegativeCache[K comparable](capacity int) *NegativeCache[K] {
	if capacity < 1 {
		capacity = 1
	}
	return &NegativeCache[K]{
		capacity: capacity,
		keys:     make(map[K]struct{}, capacity),
	}
}

// Contains reports whether key was recorded as absent.
func (c *NegativeCache[K]) Contains(key K) bool {
	_, ok := c.keys[key]
	return ok
}

// Add records key as absent, evicting the oldest entry when the cache is full.
func (c *NegativeCache[K]) Add(key K) {
	if _, ok := c.keys[key]; ok {
		return
	}
	for len(c.keys) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.keys, oldest)
	}
	c.keys[key] = struct{}{}
	c.order = append(c.order, key)
}

// Remove drops key, typically because the entity now exists in a write buffer.
func (c *NegativeCache[K]) Remove(key K) {
	if _, ok := c.keys[key]; !ok {
		return
	}
	delete(c.keys, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of recorded keys.
func (c *NegativeCache[K]) Len() int {
	return len(c.keys)
}
