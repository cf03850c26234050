// Package sizeindex derives the per-sample size array used for bucketing and
// the stable size ordering of sample indices.
//
// Sizes are computed once per split and persisted through a ports.SizeCache.
// A cached array is authoritative: it is returned verbatim even if the
// store's contents have changed since it was written.
package sizeindex

import (
	"fmt"
	"sort"

	"github.com/sbwhitecap/tqdm"
	"github.com/sbwhitecap/tqdm/iterators"

	"github.com/bft-labs/seqbatch/internal/domain"
	"github.com/bft-labs/seqbatch/internal/ports"
)

// Index computes and caches sample sizes for one split.
type Index struct {
	store     ports.SampleStore
	cache     ports.SizeCache
	split     string
	sizeField string
	logger    ports.Logger
	progress  bool
}

// Option configures an Index.
type Option func(*Index)

// WithProgress renders a terminal progress bar while counting sizes.
func WithProgress(enabled bool) Option {
	return func(x *Index) { x.progress = enabled }
}

// New creates an Index. sizeField names the primary field whose row count
// is the sample size.
func New(store ports.SampleStore, cache ports.SizeCache, split, sizeField string, logger ports.Logger, opts ...Option) *Index {
	x := &Index{
		store:     store,
		cache:     cache,
		split:     split,
		sizeField: sizeField,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Sizes returns the size of every sample, loading it from the cache when
// present and otherwise computing and persisting it.
func (x *Index) Sizes() ([]int, error) {
	sizes, ok, err := x.cache.Load(x.split)
	if err != nil {
		return nil, fmt.Errorf("load sizes for %s: %w", x.split, err)
	}
	if ok {
		x.logger.Debug("loaded cached sizes", ports.String("split", x.split), ports.Int("samples", len(sizes)))
		return sizes, nil
	}

	sizes, err = x.compute()
	if err != nil {
		return nil, err
	}
	if err := x.cache.Save(x.split, sizes); err != nil {
		return nil, fmt.Errorf("save sizes for %s: %w", x.split, err)
	}
	x.logger.Info("computed sizes", ports.String("split", x.split), ports.Int("samples", len(sizes)))
	return sizes, nil
}

func (x *Index) compute() ([]int, error) {
	n := x.store.Len()
	sizes := make([]int, n)
	missing := 0

	measure := func(i int) {
		sample, err := x.store.Get(i)
		if err != nil || sample == nil {
			missing++
			x.logger.Warn("sample unavailable, size 0", ports.Int("index", i), ports.Err(err))
			return
		}
		sizes[i] = sample.Len(x.sizeField)
	}

	if x.progress && n > 0 {
		err := tqdm.With(iterators.Interval(0, n), "Counting sample sizes", func(v interface{}) (brk bool) {
			measure(v.(int))
			return
		})
		if err != nil {
			return nil, fmt.Errorf("count sizes: %w", err)
		}
	} else {
		for i := 0; i < n; i++ {
			measure(i)
		}
	}

	if missing > 0 {
		x.logger.Warn("unavailable samples", ports.String("split", x.split), ports.Int("count", missing))
	}
	return sizes, nil
}

// OrderedIndices returns the permutation of [0, len(sizes)) sorted by size
// ascending. The sort is stable, so equal sizes keep their index order and
// the result is reproducible from the same sizes.
func OrderedIndices(sizes []int) []int {
	indices := make([]int, len(sizes))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		return sizes[indices[a]] < sizes[indices[b]]
	})
	return indices
}

// SizeOf returns a lookup into sizes for use by the scheduler.
func SizeOf(sizes []int) func(int) (int, error) {
	return func(i int) (int, error) {
		if i < 0 || i >= len(sizes) {
			return 0, fmt.Errorf("%w: %d not in [0, %d)", domain.ErrIndexOutOfRange, i, len(sizes))
		}
		return sizes[i], nil
	}
}
