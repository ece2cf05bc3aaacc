// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import "sync"

// Cache is an append-only map keyed by normalized DOI. The first value
// stored for a key wins and is never evicted. The zero value is ready to
// use and safe for concurrent use.
type Cache[V any] struct {
	mu sync.Mutex
	m  map[string]V
}

// Load returns the value stored for key.
func (c *Cache[V]) Load(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.m[key]
	return v, ok
}

// Store records v for key unless a value is already present, and returns
// the value that ends up cached.
func (c *Cache[V]) Store(key string, v V) V {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.m == nil {
		c.m = make(map[string]V)
	}
	if old, ok := c.m[key]; ok {
		return old
	}
	c.m[key] = v
	return v
}

// Len returns the number of cached keys.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}
