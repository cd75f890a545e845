package cache

import (
	"sync"

	"tagscope/internal/domain"
)

// IndexCache holds the current project snapshot. Readers see either the
// previous snapshot or the new one, never a partial build.
type IndexCache struct {
	mu      sync.RWMutex
	current *domain.ProjectIndex
	gen     uint64
}

func NewIndexCache() *IndexCache {
	return &IndexCache{}
}

func (c *IndexCache) Get() (*domain.ProjectIndex, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current, c.current != nil
}

// Set swaps in idx and returns the new generation.
func (c *IndexCache) Set(idx *domain.ProjectIndex) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = idx
	c.gen++
	return c.gen
}

func (c *IndexCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return
	}
	c.current = nil
	c.gen++
}

// Generation counts the swaps and clears that changed the slot.
func (c *IndexCache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}
