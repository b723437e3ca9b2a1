package config

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache memoises one Resolved per project root so that files sharing an
// ancestor reuse the same instance instead of re-walking the filesystem and
// re-parsing the config file. It is an explicit object passed through the
// run, not process-wide state, keeping concurrent runs in one process
// independent of each other.
type Cache struct {
	group   singleflight.Group
	mu      sync.RWMutex
	entries map[string]*Resolved
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]*Resolved)}
}

// Resolve returns the cached Resolved for root, invoking load on a miss.
// Concurrent misses for the same root perform load exactly once; the other
// callers block and observe the published result.
func (c *Cache) Resolve(root string, load func() (*Resolved, error)) (*Resolved, error) {
	c.mu.RLock()
	resolved, ok := c.entries[root]
	c.mu.RUnlock()

	if ok {
		return resolved, nil
	}

	v, err, _ := c.group.Do(root, func() (any, error) {
		resolved, err := load()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[root] = resolved
		c.mu.Unlock()

		return resolved, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config for %s: %w", root, err)
	}

	resolved, ok = v.(*Resolved)
	if !ok {
		return nil, fmt.Errorf("unexpected cache entry type %T for %s", v, root)
	}

	return resolved, nil
}
