package ports

import "github.com/bft-labs/seqbatch/internal/domain"

// SampleStore is an addressable, read-only collection of samples.
type SampleStore interface {
	// Len returns the number of samples N. Valid indices are [0, N).
	Len() int

	// Get returns the sample at index. A missing or corrupt record is
	// reported as an error wrapping domain.ErrSampleUnavailable; callers
	// treat any error as a null sample.
	Get(index int) (*domain.Sample, error)
}
