package store

import (
	"sync"

	"github.com/voguefx/vogue/internal/entity"
)

type cacheKey struct {
	kind entity.Kind
	id   string
}

// Cache is the identity-keyed in-memory layer in front of the disk
// documents. It is populated lazily on first access and updated on every
// write-through; it is never authoritative.
type Cache struct {
	mu      sync.RWMutex
	entries map[cacheKey]any
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey]any)}
}

// Get returns the cached instance for (kind, id) if present.
func (c *Cache) Get(kind entity.Kind, id string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[cacheKey{kind, id}]
	return v, ok
}

// Put stores an instance. Callers must only Put after the corresponding
// disk write succeeded, so cache and disk never diverge.
func (c *Cache) Put(kind entity.Kind, id string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey{kind, id}] = v
}

// Evict removes only the memory entry. The disk document is untouched;
// deleting it is a separate explicit operation.
func (c *Cache) Evict(kind entity.Kind, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, cacheKey{kind, id})
}

// Clear drops every entry. Used when switching projects.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[cacheKey]any)
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
