package dataset

import (
	"context"
	"sync"
)

// LoadFunc reads a dataset from its source.
type LoadFunc func(context.Context, Source) (*Dataset, error)

// Cache memoizes loaded datasets per source key for the life of the process.
// The first Get for a key reads the source; later calls return the same
// *Dataset without touching the source until Invalidate is called.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*Dataset
	load    LoadFunc
	reads   int
}

// NewCache returns a cache backed by Load. A nil fn also means Load.
func NewCache(fn LoadFunc) *Cache {
	if fn == nil {
		fn = Load
	}
	return &Cache{entries: make(map[string]*Dataset), load: fn}
}

// Get returns the dataset for src, loading it on first access. Failed loads
// are not cached.
func (c *Cache) Get(ctx context.Context, src Source) (*Dataset, error) {
	key := src.Key()
	c.mu.Lock()
	defer c.mu.Unlock()
	if ds, ok := c.entries[key]; ok {
		return ds, nil
	}
	ds, err := c.load(ctx, src)
	c.reads++
	if err != nil {
		return nil, err
	}
	c.entries[key] = ds
	return ds, nil
}

// Invalidate drops every memoized dataset; the next Get re-reads its source.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]*Dataset)
	c.mu.Unlock()
}

// Reads reports how many times the cache went to a source.
func (c *Cache) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}
