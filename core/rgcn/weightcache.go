package rgcn

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

type weightKey struct {
	layer    int
	relation int
}

// weightCache memoizes the dense matrices produced by a decomposer. Assembly
// costs O(num_bases * d^2) per matrix, and sparse scoring re-enriches per
// batch, so the same (layer, relation) matrix is requested many times between
// parameter updates. Purged together with the embedding cache.
type weightCache struct {
	cache *lru.Cache[weightKey, []float32]
}

func newWeightCache(size int) *weightCache {
	c, err := lru.New[weightKey, []float32](size)
	if err != nil {
		panic("rgcn: invalid weight cache size")
	}
	return &weightCache{cache: c}
}

// get returns the cached matrix or computes and stores it. The returned
// slice is shared between callers and must be treated as read-only.
func (wc *weightCache) get(layer, relation int, d decomposer) []float32 {
	key := weightKey{layer: layer, relation: relation}
	if w, ok := wc.cache.Get(key); ok {
		return w
	}
	w := d.weights(layer, relation)
	wc.cache.Add(key, w)
	return w
}

// purge drops every cached matrix. Called on parameter updates.
func (wc *weightCache) purge() {
	wc.cache.Purge()
}
