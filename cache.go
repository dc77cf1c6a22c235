package cellfmt

import (
	"sync"

	"github.com/golang/groupcache/lru"
)

// DefaultCacheSize is the number of compiled formats the default engine keeps.
const DefaultCacheSize = 512

// Cache is a bounded LRU of compiled formats keyed by format string.  It is
// safe for concurrent use.  Two goroutines missing on the same format may
// both compile it; the last one stored wins, which is harmless because
// compilation is deterministic.
type Cache struct {
	mu  sync.Mutex
	lru *lru.Cache
}

// NewCache returns a cache holding at most size formats.  A size of zero or
// less selects [DefaultCacheSize].
func NewCache(size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &Cache{lru: lru.New(size)}
}

// Get returns the compiled form of format, compiling it on a miss.
func (c *Cache) Get(format string) *Compiled {
	return c.load(format, compile)
}

func (c *Cache) load(format string, fn func(string) *Compiled) *Compiled {
	c.mu.Lock()
	if v, ok := c.lru.Get(format); ok {
		c.mu.Unlock()
		return v.(*Compiled)
	}
	c.mu.Unlock()

	compiled := fn(format)

	c.mu.Lock()
	c.lru.Add(format, compiled)
	c.mu.Unlock()
	return compiled
}

// Len returns the number of cached formats.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Purge drops every cached format.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Clear()
}
