package scheduler

import (
	"fmt"
	"io"

	"github.com/bft-labs/seqbatch/internal/domain"
)

const (
	// DefaultMaxTokens is the token budget used when none is configured.
	DefaultMaxTokens = 60000

	// DefaultMaxSentences is the per-bucket sample cap used when none is
	// configured.
	DefaultMaxSentences = 512
)

// SizeFunc returns the size of the sample at index.
type SizeFunc func(index int) (int, error)

// Options bounds each bucket. Zero or negative values select the defaults;
// Alignment defaults to 1 (no alignment).
type Options struct {
	MaxTokens    int
	MaxSentences int
	Alignment    int
}

func (o Options) withDefaults() Options {
	if o.MaxTokens <= 0 {
		o.MaxTokens = DefaultMaxTokens
	}
	if o.MaxSentences <= 0 {
		o.MaxSentences = DefaultMaxSentences
	}
	if o.Alignment <= 0 {
		o.Alignment = 1
	}
	return o
}

// accumulator is the fold state: the open bucket, the sizes of its members
// in arrival order and their running maximum.
type accumulator struct {
	open      []int
	sizes     []int
	sampleLen int
}

// step folds one index into acc. When the open bucket is full before idx is
// added, the closed prefix is returned as closed. next reuses the backing
// arrays of acc, so acc must not be used afterwards; closed never aliases
// them.
func step(acc accumulator, idx, size int, opts Options) (next accumulator, closed []int, err error) {
	sampleLen := max(acc.sampleLen, size)
	if sampleLen > opts.MaxTokens {
		return acc, nil, fmt.Errorf("%w: sample %d has size %d, limit %d",
			domain.ErrSampleTooLarge, idx, sampleLen, opts.MaxTokens)
	}

	open, sizes := acc.open, append(acc.sizes, size)
	projected := (len(open) + 1) * sampleLen
	if len(open) > 0 && (len(open) == opts.MaxSentences || projected > opts.MaxTokens) {
		m := truncation(len(open), opts.Alignment)
		closed = append([]int(nil), open[:m]...)
		open = append(open[:0], open[m:]...)
		sizes = append(sizes[:0], sizes[m:]...)
		sampleLen = maxOf(sizes)
	}

	next = accumulator{
		open:      append(open, idx),
		sizes:     sizes,
		sampleLen: sampleLen,
	}
	return next, closed, nil
}

// truncation returns how many members of a full bucket of length l to emit
// under alignment a.
func truncation(l, a int) int {
	return max(a*(l/a), l%a)
}

func maxOf(xs []int) int {
	m := 0
	for _, x := range xs {
		if x > m {
			m = x
		}
	}
	return m
}

// Scheduler lazily yields buckets from an ordered index sequence.
type Scheduler struct {
	indices []int
	sizeOf  SizeFunc
	opts    Options

	pos  int
	acc  accumulator
	seq  int
	done bool
	err  error
}

// New creates a Scheduler over indices, which should already be sorted by
// size (see sizeindex.OrderedIndices).
func New(indices []int, sizeOf SizeFunc, opts Options) *Scheduler {
	return &Scheduler{
		indices: indices,
		sizeOf:  sizeOf,
		opts:    opts.withDefaults(),
	}
}

// Next returns the next bucket. It returns io.EOF when all indices have
// been scheduled. Any other error is permanent and is returned again by
// every later call.
func (s *Scheduler) Next() (domain.Bucket, error) {
	if s.err != nil {
		return domain.Bucket{}, s.err
	}

	for s.pos < len(s.indices) {
		idx := s.indices[s.pos]
		size, err := s.sizeOf(idx)
		if err != nil {
			s.err = fmt.Errorf("size of sample %d: %w", idx, err)
			return domain.Bucket{}, s.err
		}
		acc, closed, err := step(s.acc, idx, size, s.opts)
		if err != nil {
			s.err = err
			return domain.Bucket{}, err
		}
		s.acc = acc
		s.pos++
		if closed != nil {
			return s.emit(closed), nil
		}
	}

	if !s.done && len(s.acc.open) > 0 {
		s.done = true
		return s.emit(s.acc.open), nil
	}
	s.done = true
	return domain.Bucket{}, io.EOF
}

func (s *Scheduler) emit(indices []int) domain.Bucket {
	b := domain.Bucket{Seq: s.seq, Indices: indices}
	s.seq++
	return b
}

// BatchBySize schedules every index and returns all buckets. On error no
// buckets are returned.
func BatchBySize(indices []int, sizeOf SizeFunc, opts Options) ([]domain.Bucket, error) {
	s := New(indices, sizeOf, opts)
	var buckets []domain.Bucket
	for {
		b, err := s.Next()
		if err == io.EOF {
			return buckets, nil
		}
		if err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
}
