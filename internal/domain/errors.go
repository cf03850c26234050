package domain

import "errors"

// Domain errors. Check with errors.Is; callers wrap them with context.
var (
	// ErrSampleTooLarge is returned by the scheduler when a single sample's
	// size exceeds the token budget. Scheduling cannot proceed.
	ErrSampleTooLarge = errors.New("seqbatch: sample exceeds max tokens")

	// ErrSampleUnavailable is returned by stores for missing or corrupt records.
	ErrSampleUnavailable = errors.New("seqbatch: sample unavailable")

	// ErrShapeMismatch is returned when a field's shape disagrees with the
	// schema or with the other samples in a batch.
	ErrShapeMismatch = errors.New("seqbatch: shape mismatch")

	// ErrMissingField is returned when a required schema field is absent.
	ErrMissingField = errors.New("seqbatch: missing field")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("seqbatch: invalid configuration")

	// ErrStatsRequireTrain is returned when statistics would be generated
	// from a split other than train.
	ErrStatsRequireTrain = errors.New("seqbatch: statistics must be generated from the train split")

	// ErrIndexOutOfRange is returned for indices outside [0, N).
	ErrIndexOutOfRange = errors.New("seqbatch: index out of range")
)
