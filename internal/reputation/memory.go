package reputation

import (
	"context"
	"sync"
)

// MemoryCache is an in-process Cache
type MemoryCache struct {
	// mu guards data
	mu sync.RWMutex
	// data maps URLs to their cached entries
	data map[string]Entry
}

// NewMemoryCache creates an empty MemoryCache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{data: make(map[string]Entry)}
}

// Get returns the cached entry for url
func (c *MemoryCache) Get(_ context.Context, url string) (Entry, bool, error) {
	c.mu.RLock()
	e, ok := c.data[url]
	c.mu.RUnlock()

	if !ok {
		return Entry{}, false, nil
	}

	e.Result = cloneStats(e.Result)

	return e, true, nil
}

// Put stores e under e.URL
func (c *MemoryCache) Put(_ context.Context, e Entry) error {
	if e.URL == "" {
		return ErrEmptyURL
	}

	e.Result = cloneStats(e.Result)

	c.mu.Lock()
	c.data[e.URL] = e
	c.mu.Unlock()

	return nil
}

// Len returns the number of cached entries
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.data)
}
