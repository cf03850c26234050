// Package app runs the batch pipeline: it fetches each bucket's samples,
// collates them on a bounded worker pool and hands the batches to the
// caller, optionally in bucket order.
package app

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/bft-labs/seqbatch/internal/domain"
	"github.com/bft-labs/seqbatch/internal/ports"
)

// DefaultWorkers is the worker count used when none is configured.
const DefaultWorkers = 4

// DriverConfig contains configuration for the pipeline driver.
type DriverConfig struct {
	// Workers bounds how many buckets are fetched and collated at once.
	Workers int

	// Ordered delivers batches strictly in bucket order.
	Ordered bool

	// Shuffle permutes the bucket order once per Run.
	Shuffle bool
	Seed    int64
}

// Collator turns fetched samples into a padded batch. A nil batch with a nil
// error means every sample was unavailable.
type Collator interface {
	Collate(samples []*domain.Sample) (*domain.Batch, error)
}

// Transform rewrites a fetched sample before collation, e.g. to normalize it.
type Transform interface {
	Apply(s *domain.Sample) (*domain.Sample, error)
}

// Validator checks a transformed sample before collation.
type Validator interface {
	Validate(s *domain.Sample) error
}

// BatchEventEmitter is called as buckets complete.
type BatchEventEmitter interface {
	OnBatch(seq, samples int, duration time.Duration)
	OnEmpty(seq int)
}

// Driver runs buckets through fetch, transform and collation.
type Driver struct {
	config     DriverConfig
	store      ports.SampleStore
	collator   Collator
	transforms []Transform
	validator  Validator
	logger     ports.Logger
	emitter    BatchEventEmitter

	mu  sync.Mutex
	rng *rand.Rand
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithTransform applies t to every fetched sample. Transforms run in the
// order they are given.
func WithTransform(t Transform) DriverOption {
	return func(d *Driver) { d.transforms = append(d.transforms, t) }
}

// WithValidator drops samples v rejects, as if they were unavailable.
func WithValidator(v Validator) DriverOption {
	return func(d *Driver) { d.validator = v }
}

// WithEmitter reports per-bucket events to e.
func WithEmitter(e BatchEventEmitter) DriverOption {
	return func(d *Driver) { d.emitter = e }
}

// NewDriver creates a driver with the given dependencies.
func NewDriver(config DriverConfig, store ports.SampleStore, collator Collator, logger ports.Logger, opts ...DriverOption) *Driver {
	if config.Workers < 1 {
		config.Workers = DefaultWorkers
	}
	d := &Driver{
		config:   config,
		store:    store,
		collator: collator,
		logger:   logger,
		rng:      rand.New(rand.NewSource(config.Seed)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type job struct {
	seq     int
	indices []int
}

type result struct {
	seq     int
	batch   *domain.Batch
	dropped int
	err     error
}

// Run processes buckets and calls yield for every non-empty batch. yield is
// only ever called from the goroutine that called Run.
//
// The first error from collation or yield cancels the run; remaining work is
// drained and that error is returned. If ctx is canceled first, ctx.Err() is
// returned.
func (d *Driver) Run(ctx context.Context, buckets []domain.Bucket, yield func(*domain.Batch) error) error {
	jobs := d.plan(buckets)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	inCh := make(chan job, d.config.Workers*2)
	outCh := make(chan result, d.config.Workers*2)

	var wg sync.WaitGroup
	wg.Add(d.config.Workers)
	for i := 0; i < d.config.Workers; i++ {
		go func() {
			defer wg.Done()
			for j := range inCh {
				if runCtx.Err() != nil {
					outCh <- result{seq: j.seq, err: runCtx.Err()}
					continue
				}
				outCh <- d.process(j)
			}
		}()
	}

	go func() {
		defer close(inCh)
		for _, j := range jobs {
			select {
			case <-runCtx.Done():
				return
			case inCh <- j:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outCh)
	}()

	var firstErr error
	var batches, empty, dropped, expect int
	pending := make(map[int]result)
	start := time.Now()

	fail := func(err error) {
		if firstErr == nil {
			firstErr = err
			cancel()
		}
	}
	deliver := func(r result) {
		dropped += r.dropped
		if r.batch == nil {
			empty++
			return
		}
		if firstErr != nil {
			return
		}
		if err := yield(r.batch); err != nil {
			fail(err)
			return
		}
		batches++
	}

	for r := range outCh {
		if r.err != nil {
			if ctx.Err() == nil {
				fail(r.err)
			}
			continue
		}
		if !d.config.Ordered {
			deliver(r)
			continue
		}
		pending[r.seq] = r
		for {
			next, ok := pending[expect]
			if !ok {
				break
			}
			delete(pending, expect)
			expect++
			deliver(next)
		}
	}

	if firstErr == nil && ctx.Err() != nil {
		firstErr = ctx.Err()
	}
	if firstErr != nil {
		d.logger.Error("run aborted", ports.Err(firstErr), ports.Int("batches", batches))
		return firstErr
	}

	d.logger.Info("run complete",
		ports.Int("buckets", len(jobs)),
		ports.Int("batches", batches),
		ports.Int("empty", empty),
		ports.Int("dropped_samples", dropped),
		ports.Duration("duration", time.Since(start)),
	)
	return nil
}

// plan assigns dispatch order. Sequence numbers always follow the final
// order, so ordered delivery reproduces a shuffled order.
func (d *Driver) plan(buckets []domain.Bucket) []job {
	jobs := make([]job, len(buckets))
	for i, b := range buckets {
		jobs[i] = job{indices: b.Indices}
	}
	if d.config.Shuffle {
		d.mu.Lock()
		d.rng.Shuffle(len(jobs), func(i, j int) { jobs[i], jobs[j] = jobs[j], jobs[i] })
		d.mu.Unlock()
	}
	for i := range jobs {
		jobs[i].seq = i
	}
	return jobs
}

// process fetches and collates one bucket. Unavailable and invalid samples
// become nil entries, which the collator drops.
func (d *Driver) process(j job) result {
	start := time.Now()
	samples := make([]*domain.Sample, len(j.indices))
	dropped := 0
	for i, idx := range j.indices {
		s, err := d.store.Get(idx)
		if err != nil || s == nil {
			dropped++
			d.logger.Debug("sample unavailable", ports.Int("index", idx), ports.Err(err))
			continue
		}
		for _, t := range d.transforms {
			if s, err = t.Apply(s); err != nil {
				return result{seq: j.seq, err: err}
			}
		}
		if d.validator != nil {
			if err := d.validator.Validate(s); err != nil {
				dropped++
				d.logger.Warn("invalid sample dropped", ports.Int("index", idx),
					ports.Err(fmt.Errorf("%w: %v", domain.ErrSampleUnavailable, err)))
				continue
			}
		}
		samples[i] = s
	}

	batch, err := d.collator.Collate(samples)
	if err != nil {
		return result{seq: j.seq, err: err}
	}
	if batch == nil {
		if d.emitter != nil {
			d.emitter.OnEmpty(j.seq)
		}
		return result{seq: j.seq, dropped: dropped}
	}
	batch.Seq = j.seq
	if d.emitter != nil {
		d.emitter.OnBatch(j.seq, batch.Size(), time.Since(start))
	}
	return result{seq: j.seq, batch: batch, dropped: dropped}
}
