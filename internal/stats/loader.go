package stats

import (
	"fmt"

	"github.com/bft-labs/seqbatch/internal/domain"
	"github.com/bft-labs/seqbatch/internal/ports"
)

// Loader returns cached statistics, computing them from the train split on
// first use.
type Loader struct {
	repo   ports.StatsRepository
	store  ports.SampleStore
	split  string
	fields []string
	opts   []Option
}

// NewLoader creates a Loader. store and split describe the split currently
// open; statistics are only generated when split is TrainSplit.
func NewLoader(repo ports.StatsRepository, store ports.SampleStore, split string, fields []string, opts ...Option) *Loader {
	return &Loader{repo: repo, store: store, split: split, fields: fields, opts: opts}
}

// Load returns the persisted statistics, or computes and persists them.
func (l *Loader) Load() (domain.Stats, error) {
	st, ok, err := l.repo.Load()
	if err != nil {
		return nil, fmt.Errorf("load statistics: %w", err)
	}
	if ok {
		return st, nil
	}
	if l.split != TrainSplit {
		return nil, fmt.Errorf("%w: split %q", domain.ErrStatsRequireTrain, l.split)
	}

	st, err = Compute(l.store, l.fields, l.opts...)
	if err != nil {
		return nil, err
	}
	if err := l.repo.Save(st); err != nil {
		return nil, fmt.Errorf("save statistics: %w", err)
	}
	cfg := newComputeConfig(l.opts)
	cfg.logger.Info("computed statistics", ports.Int("fields", len(l.fields)), ports.Int("samples", l.store.Len()))
	return st, nil
}
