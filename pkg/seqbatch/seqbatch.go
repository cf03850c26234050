package seqbatch

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/bft-labs/seqbatch/internal/adapters/fs"
	"github.com/bft-labs/seqbatch/internal/adapters/leveldb"
	"github.com/bft-labs/seqbatch/internal/adapters/memory"
	"github.com/bft-labs/seqbatch/internal/app"
	"github.com/bft-labs/seqbatch/internal/collate"
	"github.com/bft-labs/seqbatch/internal/ports"
	"github.com/bft-labs/seqbatch/internal/scheduler"
	"github.com/bft-labs/seqbatch/internal/sizeindex"
	"github.com/bft-labs/seqbatch/internal/stats"
)

// Loader plans and produces batches for one split.
type Loader struct {
	config   Config
	opts     options
	store    ports.SampleStore
	closer   io.Closer
	collator *collate.Collator
	sizes    *sizeindex.Index
	stats    *stats.Loader
	logger   ports.Logger

	mu     sync.Mutex
	driver *app.Driver
}

// New creates a Loader. Unless WithStore is given, the split's database is
// opened read-only from DataDir.
func New(cfg Config, opts ...Option) (*Loader, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger

	collator, err := collate.New(o.schema, collate.Options{Alignment: cfg.Alignment, RateRatio: cfg.RateRatio})
	if err != nil {
		return nil, err
	}

	var closer io.Closer
	store := o.store
	if store == nil {
		db, err := leveldb.Open(filepath.Join(cfg.DataDir, cfg.Split))
		if err != nil {
			return nil, err
		}
		store, closer = db, db
	}
	if cfg.MemoryCacheSize > 0 {
		cached, err := memory.NewCachedStore(store, cfg.MemoryCacheSize)
		if err != nil {
			if closer != nil {
				closer.Close()
			}
			return nil, err
		}
		store = cached
	}

	secondary := make([]string, len(o.schema.Secondary))
	for i, f := range o.schema.Secondary {
		secondary[i] = f.Name
	}

	l := &Loader{
		config:   cfg,
		opts:     o,
		store:    store,
		closer:   closer,
		collator: collator,
		logger:   logger,
		sizes: sizeindex.New(store, fs.NewSizeCacheFile(o.fs, cfg.DataDir), cfg.Split,
			o.schema.SizeField(), logger, sizeindex.WithProgress(cfg.Progress)),
		stats: stats.NewLoader(fs.NewStatsFile(o.fs, cfg.DataDir), store, cfg.Split, secondary,
			stats.WithLogger(logger), stats.WithProgress(cfg.Progress)),
	}
	logger.Info("loader ready",
		ports.String("split", cfg.Split),
		ports.Int("samples", store.Len()),
		ports.Int("schema_version", o.schema.Version),
	)
	return l, nil
}

// Config returns the effective configuration.
func (l *Loader) Config() Config {
	return l.config
}

// Len returns the number of samples in the split.
func (l *Loader) Len() int {
	return l.store.Len()
}

// Sizes returns every sample's size, computing and caching it on first use.
func (l *Loader) Sizes() ([]int, error) {
	return l.sizes.Sizes()
}

// Plan returns the split's buckets in emission order.
func (l *Loader) Plan() ([]Bucket, error) {
	sizes, err := l.Sizes()
	if err != nil {
		return nil, err
	}
	buckets, err := scheduler.BatchBySize(sizeindex.OrderedIndices(sizes), sizeindex.SizeOf(sizes), scheduler.Options{
		MaxTokens:    l.config.MaxTokens,
		MaxSentences: l.config.MaxSentences,
		Alignment:    l.config.Alignment,
	})
	if err != nil {
		return nil, fmt.Errorf("plan %s: %w", l.config.Split, err)
	}
	l.logger.Debug("planned buckets", ports.String("split", l.config.Split), ports.Int("buckets", len(buckets)))
	return buckets, nil
}

// Stats returns the normalization statistics, generating them from the
// train split if they are not cached yet.
func (l *Loader) Stats() (Stats, error) {
	return l.stats.Load()
}

// Batches plans the split and calls yield for every batch. Each call is one
// epoch; with Shuffle set, successive epochs visit buckets in different
// orders.
func (l *Loader) Batches(ctx context.Context, yield func(*Batch) error) error {
	buckets, err := l.Plan()
	if err != nil {
		return err
	}
	driver, err := l.getDriver()
	if err != nil {
		return err
	}
	return driver.Run(ctx, buckets, yield)
}

func (l *Loader) getDriver() (*app.Driver, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.driver != nil {
		return l.driver, nil
	}

	var st Stats
	if l.config.Normalize || l.config.Style {
		var err error
		if st, err = l.Stats(); err != nil {
			return nil, err
		}
	}

	// Derived vectors come from the raw sequences, so encoding runs first.
	var encoderStats Stats
	if l.config.Style {
		encoderStats = st
	}
	encoder, err := stats.NewStyleEncoder(encoderStats)
	if err != nil {
		return nil, err
	}
	if spec, ok := fixedField(l.opts.schema, stats.StyleField); ok && l.config.Style && encoder.Width() != spec.Channels {
		return nil, fmt.Errorf("%w: style encoding has %d values, schema declares %d",
			ErrShapeMismatch, encoder.Width(), spec.Channels)
	}
	driverOpts := []app.DriverOption{app.WithTransform(encoder)}

	if l.config.Normalize {
		if err := stats.CheckChannels(st, l.opts.schema.Secondary); err != nil {
			return nil, err
		}
		fields := make([]string, len(l.opts.schema.Secondary))
		for i, f := range l.opts.schema.Secondary {
			fields[i] = f.Name
		}
		driverOpts = append(driverOpts, app.WithTransform(stats.NewNormalizer(st, fields)))
	}
	driverOpts = append(driverOpts, app.WithValidator(l.opts.schema))
	if l.opts.eventHandler != nil {
		driverOpts = append(driverOpts, app.WithEmitter(eventEmitterWrapper{handler: l.opts.eventHandler}))
	}

	l.driver = app.NewDriver(app.DriverConfig{
		Workers: l.config.Workers,
		Ordered: l.config.Ordered,
		Shuffle: l.config.Shuffle,
		Seed:    l.config.Seed,
	}, l.store, l.collator, l.logger, driverOpts...)
	return l.driver, nil
}

func fixedField(schema Schema, name string) (FieldSpec, bool) {
	for _, f := range schema.Fixed {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Close releases the store if the loader opened it.
func (l *Loader) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
