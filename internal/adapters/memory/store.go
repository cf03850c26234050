// Package memory provides in-memory adapters: a slice-backed sample store,
// an LRU read-through cache over any store, and in-memory caches for sizes
// and statistics.
package memory

import (
	"fmt"
	"sync/atomic"

	"github.com/bft-labs/seqbatch/internal/domain"
)

// Store is a SampleStore over a slice. A nil entry is an unavailable sample.
type Store struct {
	samples []*domain.Sample
	gets    int64
}

// NewStore creates a store over samples. Each non-nil sample's Index is set
// to its position.
func NewStore(samples []*domain.Sample) *Store {
	for i, s := range samples {
		if s != nil {
			s.Index = i
		}
	}
	return &Store{samples: samples}
}

// Len returns the number of samples.
func (s *Store) Len() int {
	return len(s.samples)
}

// Get returns the sample at index.
func (s *Store) Get(index int) (*domain.Sample, error) {
	atomic.AddInt64(&s.gets, 1)
	if index < 0 || index >= len(s.samples) {
		return nil, fmt.Errorf("%w: %d", domain.ErrIndexOutOfRange, index)
	}
	if s.samples[index] == nil {
		return nil, fmt.Errorf("%w: index %d", domain.ErrSampleUnavailable, index)
	}
	return s.samples[index], nil
}

// Gets returns how many times Get has been called.
func (s *Store) Gets() int {
	return int(atomic.LoadInt64(&s.gets))
}
