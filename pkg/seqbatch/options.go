package seqbatch

import (
	"time"

	"github.com/spf13/afero"

	"github.com/bft-labs/seqbatch/internal/domain"
	"github.com/bft-labs/seqbatch/internal/ports"
	"github.com/bft-labs/seqbatch/pkg/log"
)

// Re-exported types so callers need only this package.
type (
	Batch     = domain.Batch
	Bucket    = domain.Bucket
	Sample    = domain.Sample
	Matrix    = domain.Matrix
	Schema    = domain.Schema
	FieldSpec = domain.FieldSpec
	Stats     = domain.Stats

	// Logger is the interface for structured logging.
	Logger = log.Logger

	// SampleStore is an indexed, random-access sample source.
	SampleStore = ports.SampleStore
)

// AudioMotionV1 is the default schema.
var AudioMotionV1 = domain.AudioMotionV1

// Sentinel errors, re-exported for errors.Is.
var (
	ErrSampleTooLarge    = domain.ErrSampleTooLarge
	ErrSampleUnavailable = domain.ErrSampleUnavailable
	ErrShapeMismatch     = domain.ErrShapeMismatch
	ErrMissingField      = domain.ErrMissingField
	ErrInvalidConfig     = domain.ErrInvalidConfig
	ErrStatsRequireTrain = domain.ErrStatsRequireTrain
)

// BatchEvent describes one collated batch.
type BatchEvent struct {
	Seq      int
	Samples  int
	Duration time.Duration
}

// EventHandler receives pipeline events. Methods are called from worker
// goroutines and must be safe for concurrent use.
type EventHandler interface {
	OnBatch(event BatchEvent)
	OnEmpty(seq int)
}

// BaseEventHandler implements EventHandler with no-ops. Embed it to handle
// only some events.
type BaseEventHandler struct{}

func (BaseEventHandler) OnBatch(BatchEvent) {}
func (BaseEventHandler) OnEmpty(int)        {}

// Option configures optional behavior of a Loader.
type Option func(*options)

type options struct {
	logger       Logger
	store        ports.SampleStore
	fs           afero.Fs
	schema       domain.Schema
	eventHandler EventHandler
}

func defaultOptions() options {
	return options{
		logger: log.NewNoopLogger(),
		fs:     afero.NewOsFs(),
		schema: domain.AudioMotionV1,
	}
}

// WithLogger sets a custom logger. If not provided, nothing is logged.
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStore reads samples from store instead of the LevelDB database under
// DataDir. The loader does not close a supplied store.
func WithStore(store SampleStore) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithFs sets the filesystem holding the size and statistics caches.
func WithFs(fs afero.Fs) Option {
	return func(o *options) {
		o.fs = fs
	}
}

// WithSchema sets the field set samples are validated and collated against.
func WithSchema(schema Schema) Option {
	return func(o *options) {
		o.schema = schema
	}
}

// WithEventHandler sets a handler for per-batch events.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// eventEmitterWrapper adapts an EventHandler to the driver's emitter.
type eventEmitterWrapper struct {
	handler EventHandler
}

func (w eventEmitterWrapper) OnBatch(seq, samples int, d time.Duration) {
	w.handler.OnBatch(BatchEvent{Seq: seq, Samples: samples, Duration: d})
}

func (w eventEmitterWrapper) OnEmpty(seq int) {
	w.handler.OnEmpty(seq)
}
