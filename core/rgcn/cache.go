package rgcn

import "sync"

// embeddingCache is a single-slot cache for the last full-graph enriched
// embedding matrix. Only full-graph propagation may populate it; a
// batch-restricted result is not valid for arbitrary future queries.
// Invalidation happens synchronously with parameter updates so a reader can
// never observe embeddings computed from stale parameters.
type embeddingCache struct {
	mu sync.RWMutex
	x  []float32
	ok bool
}

func (c *embeddingCache) get() ([]float32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.x, c.ok
}

func (c *embeddingCache) set(x []float32) {
	c.mu.Lock()
	c.x = x
	c.ok = true
	c.mu.Unlock()
}

func (c *embeddingCache) invalidate() {
	c.mu.Lock()
	c.x = nil
	c.ok = false
	c.mu.Unlock()
}
