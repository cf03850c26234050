package seqbatch

import (
	"fmt"

	"github.com/bft-labs/seqbatch/internal/app"
	"github.com/bft-labs/seqbatch/internal/collate"
	"github.com/bft-labs/seqbatch/internal/domain"
	"github.com/bft-labs/seqbatch/internal/scheduler"
)

// Config holds loader configuration.
type Config struct {
	// DataDir holds one database per split plus the cache files.
	DataDir string
	Split   string

	MaxTokens    int
	MaxSentences int
	Alignment    int
	RateRatio    int

	Workers int
	Ordered bool
	Shuffle bool
	Seed    int64

	// MemoryCacheSize is the number of decoded samples kept in memory.
	// Zero disables the cache.
	MemoryCacheSize int

	// Normalize applies per-channel statistics to secondary fields.
	Normalize bool

	// Style derives the style vector of samples that lack one from the
	// training statistics.
	Style bool

	// Progress renders progress bars while computing caches.
	Progress bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Split:        "train",
		MaxTokens:    scheduler.DefaultMaxTokens,
		MaxSentences: scheduler.DefaultMaxSentences,
		Alignment:    collate.DefaultAlignment,
		RateRatio:    collate.DefaultRateRatio,
		Workers:      app.DefaultWorkers,
		Seed:         1,
	}
}

// SetDefaults fills zero values with defaults.
func (c *Config) SetDefaults() {
	d := DefaultConfig()
	if c.Split == "" {
		c.Split = d.Split
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = d.MaxTokens
	}
	if c.MaxSentences == 0 {
		c.MaxSentences = d.MaxSentences
	}
	if c.Alignment == 0 {
		c.Alignment = d.Alignment
	}
	if c.RateRatio == 0 {
		c.RateRatio = d.RateRatio
	}
	if c.Workers == 0 {
		c.Workers = d.Workers
	}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	switch {
	case c.DataDir == "":
		return fmt.Errorf("%w: data dir is required", domain.ErrInvalidConfig)
	case c.Split == "":
		return fmt.Errorf("%w: split is required", domain.ErrInvalidConfig)
	case c.MaxTokens <= 0:
		return fmt.Errorf("%w: max tokens must be positive", domain.ErrInvalidConfig)
	case c.MaxSentences <= 0:
		return fmt.Errorf("%w: max sentences must be positive", domain.ErrInvalidConfig)
	case c.Alignment <= 0:
		return fmt.Errorf("%w: alignment must be positive", domain.ErrInvalidConfig)
	case c.RateRatio <= 0:
		return fmt.Errorf("%w: rate ratio must be positive", domain.ErrInvalidConfig)
	case c.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive", domain.ErrInvalidConfig)
	case c.MemoryCacheSize < 0:
		return fmt.Errorf("%w: memory cache size cannot be negative", domain.ErrInvalidConfig)
	}
	return nil
}
