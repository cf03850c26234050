package ports

import "github.com/bft-labs/seqbatch/internal/domain"

// StatsRepository persists normalization statistics.
type StatsRepository interface {
	// Load returns the cached statistics. ok is false if nothing is cached.
	Load() (stats domain.Stats, ok bool, err error)

	// Save persists the statistics atomically.
	Save(stats domain.Stats) error
}
