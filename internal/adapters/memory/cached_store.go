package memory

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/bft-labs/seqbatch/internal/domain"
	"github.com/bft-labs/seqbatch/internal/ports"
)

// CachedStore keeps recently fetched samples in memory in front of a slower
// store. Failed fetches are not cached.
type CachedStore struct {
	inner ports.SampleStore
	cache *lru.Cache
}

// NewCachedStore wraps inner with an LRU of the given capacity.
func NewCachedStore(inner ports.SampleStore, capacity int) (*CachedStore, error) {
	cache, err := lru.New(capacity)
	if err != nil {
		return nil, err
	}
	return &CachedStore{inner: inner, cache: cache}, nil
}

// Len returns the inner store's length.
func (c *CachedStore) Len() int {
	return c.inner.Len()
}

// Get returns the sample from the cache, fetching it from the inner store on
// a miss.
func (c *CachedStore) Get(index int) (*domain.Sample, error) {
	if v, ok := c.cache.Get(index); ok {
		return v.(*domain.Sample), nil
	}
	s, err := c.inner.Get(index)
	if err != nil {
		return nil, err
	}
	c.cache.Add(index, s)
	return s, nil
}

// Cached returns the number of samples currently held.
func (c *CachedStore) Cached() int {
	return c.cache.Len()
}
