package memory

import (
	"sync"

	"github.com/bft-labs/seqbatch/internal/domain"
)

// SizeCache is an in-memory ports.SizeCache that counts saves.
type SizeCache struct {
	mu    sync.Mutex
	sizes map[string][]int
	saves int
}

// NewSizeCache creates an empty cache.
func NewSizeCache() *SizeCache {
	return &SizeCache{sizes: map[string][]int{}}
}

// Load returns a copy of the cached sizes for split.
func (c *SizeCache) Load(split string) ([]int, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sizes[split]
	if !ok {
		return nil, false, nil
	}
	return append([]int(nil), s...), true, nil
}

// Save stores a copy of sizes for split.
func (c *SizeCache) Save(split string, sizes []int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sizes[split] = append([]int(nil), sizes...)
	c.saves++
	return nil
}

// Saves returns how many times Save was called.
func (c *SizeCache) Saves() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saves
}

// StatsRepository is an in-memory ports.StatsRepository.
type StatsRepository struct {
	mu    sync.Mutex
	stats domain.Stats
	saves int
}

// Load returns the stored statistics.
func (r *StatsRepository) Load() (domain.Stats, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stats == nil {
		return nil, false, nil
	}
	return r.stats, true, nil
}

// Save stores the statistics.
func (r *StatsRepository) Save(stats domain.Stats) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats = stats
	r.saves++
	return nil
}

// Saves returns how many times Save was called.
func (r *StatsRepository) Saves() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}
