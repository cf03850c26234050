// Package stats computes per-channel normalization constants for sequence
// fields over a training split and applies them.
package stats

import (
	"errors"
	"fmt"
	"math"

	mstats "github.com/montanaflynn/stats"
	"github.com/sbwhitecap/tqdm"
	"github.com/sbwhitecap/tqdm/iterators"

	"github.com/bft-labs/seqbatch/internal/domain"
	"github.com/bft-labs/seqbatch/internal/ports"
	"github.com/bft-labs/seqbatch/pkg/log"
)

// TrainSplit is the only split statistics may be generated from.
const TrainSplit = "train"

// DefaultStyleFields get the per-sample std and frame-difference std
// summaries in addition to the per-channel mean and std.
var DefaultStyleFields = []string{"exp", "pose"}

// Key suffixes used in domain.Stats.
const (
	MeanSuffix        = "_mean"
	StdSuffix         = "_std"
	StdMeanSuffix     = "_std_mean"
	StdStdSuffix      = "_std_std"
	DiffStdMeanSuffix = "_diff_std_mean"
	DiffStdStdSuffix  = "_diff_std_std"
)

type computeConfig struct {
	styleFields []string
	logger      ports.Logger
	progress    bool
}

// Option configures Compute and Loader.
type Option func(*computeConfig)

// WithStyleFields overrides DefaultStyleFields.
func WithStyleFields(fields ...string) Option {
	return func(c *computeConfig) { c.styleFields = fields }
}

// WithLogger sets the logger for skipped samples.
func WithLogger(l ports.Logger) Option {
	return func(c *computeConfig) { c.logger = l }
}

// WithProgress renders a progress bar over the samples.
func WithProgress(enabled bool) Option {
	return func(c *computeConfig) { c.progress = enabled }
}

func newComputeConfig(opts []Option) computeConfig {
	cfg := computeConfig{styleFields: DefaultStyleFields}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = log.NewNoopLogger()
	}
	return cfg
}

// channels accumulates the values of one field, one slice per channel.
type channels struct {
	values  [][]float64
	stds    [][]float64
	diffStd [][]float64
}

// add appends m to the accumulated values. A matrix whose width differs from
// the first one seen, or that holds NaN or Inf, is rejected unrecorded.
func (c *channels) add(m domain.Matrix, style bool) error {
	if c.values != nil && m.Cols != len(c.values) {
		return fmt.Errorf("%w: %d channels, want %d", domain.ErrShapeMismatch, m.Cols, len(c.values))
	}
	for _, x := range m.Data {
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return errNonFinite
		}
	}
	if c.values == nil {
		c.values = make([][]float64, m.Cols)
		c.stds = make([][]float64, m.Cols)
		c.diffStd = make([][]float64, m.Cols)
	}
	for ch := 0; ch < m.Cols; ch++ {
		col := column(m, ch)
		c.values[ch] = append(c.values[ch], col...)
		if !style || m.Rows == 0 {
			continue
		}
		sd, _ := mstats.StandardDeviationPopulation(col)
		c.stds[ch] = append(c.stds[ch], sd)
		if m.Rows > 1 {
			dsd, _ := mstats.StandardDeviationPopulation(diff(col))
			c.diffStd[ch] = append(c.diffStd[ch], dsd)
		}
	}
	return nil
}

var errNonFinite = errors.New("non-finite value")

func column(m domain.Matrix, ch int) []float64 {
	col := make([]float64, m.Rows)
	for t := 0; t < m.Rows; t++ {
		col[t] = float64(m.At(t, ch))
	}
	return col
}

// diff returns the successive differences of col.
func diff(col []float64) []float64 {
	if len(col) < 2 {
		return nil
	}
	out := make([]float64, len(col)-1)
	for t := 1; t < len(col); t++ {
		out[t-1] = col[t] - col[t-1]
	}
	return out
}

// Compute walks every sample of store and returns the statistics of the
// named sequence fields. Unavailable samples and samples missing a field are
// skipped, as are fields that hold NaN or Inf or whose width differs from the
// first sample seen.
func Compute(store ports.SampleStore, fields []string, opts ...Option) (domain.Stats, error) {
	cfg := newComputeConfig(opts)
	style := map[string]bool{}
	for _, f := range cfg.styleFields {
		style[f] = true
	}

	acc := make(map[string]*channels, len(fields))
	for _, f := range fields {
		acc[f] = &channels{}
	}

	n := store.Len()
	skipped, rejected := 0, 0
	visit := func(i int) {
		sample, err := store.Get(i)
		if err != nil || sample == nil {
			skipped++
			cfg.logger.Debug("skip unavailable sample", ports.Int("index", i), ports.Err(err))
			return
		}
		for _, f := range fields {
			m, ok := sample.Sequence(f)
			if !ok {
				continue
			}
			if err := acc[f].add(m, style[f]); err != nil {
				rejected++
				cfg.logger.Warn("statistics skip field", ports.Int("index", i),
					ports.String("id", sample.ID), ports.String("field", f), ports.Err(err))
			}
		}
	}
	if cfg.progress && n > 0 {
		if err := tqdm.With(iterators.Interval(0, n), "Computing statistics", func(v interface{}) (brk bool) {
			visit(v.(int))
			return
		}); err != nil {
			return nil, fmt.Errorf("compute statistics: %w", err)
		}
	} else {
		for i := 0; i < n; i++ {
			visit(i)
		}
	}
	if skipped > 0 {
		cfg.logger.Warn("statistics skipped unavailable samples", ports.Int("count", skipped))
	}
	if rejected > 0 {
		cfg.logger.Warn("statistics skipped malformed fields", ports.Int("count", rejected))
	}

	out := domain.Stats{}
	for _, f := range fields {
		c := acc[f]
		if c.values == nil {
			continue
		}
		out[f+MeanSuffix], out[f+StdSuffix] = meanStd(c.values)
		if style[f] {
			out[f+StdMeanSuffix], out[f+StdStdSuffix] = meanStd(c.stds)
			out[f+DiffStdMeanSuffix], out[f+DiffStdStdSuffix] = meanStd(c.diffStd)
		}
	}
	return out, nil
}

// meanStd returns the per-channel population mean and std. An empty channel
// yields 0 for both.
func meanStd(cols [][]float64) (mean, std []float64) {
	mean = make([]float64, len(cols))
	std = make([]float64, len(cols))
	for ch, col := range cols {
		if len(col) == 0 {
			continue
		}
		mean[ch], _ = mstats.Mean(col)
		std[ch], _ = mstats.StandardDeviationPopulation(col)
	}
	return mean, std
}

// Normalize returns (m - mean) / std per channel using field's statistics.
// A zero std is treated as 1. m is not modified.
func Normalize(st domain.Stats, field string, m domain.Matrix) (domain.Matrix, error) {
	return apply(st, field, m, func(x, mean, std float64) float64 { return (x - mean) / std })
}

// Denormalize inverts Normalize.
func Denormalize(st domain.Stats, field string, m domain.Matrix) (domain.Matrix, error) {
	return apply(st, field, m, func(x, mean, std float64) float64 { return x*std + mean })
}

func apply(st domain.Stats, field string, m domain.Matrix, f func(x, mean, std float64) float64) (domain.Matrix, error) {
	mean, ok := st.Get(field + MeanSuffix)
	if !ok {
		return domain.Matrix{}, fmt.Errorf("%w: no statistics for %q", domain.ErrMissingField, field)
	}
	std, ok := st.Get(field + StdSuffix)
	if !ok || len(mean) != m.Cols || len(std) != m.Cols {
		return domain.Matrix{}, fmt.Errorf("%w: statistics for %q do not match %d channels",
			domain.ErrShapeMismatch, field, m.Cols)
	}
	out := domain.NewMatrix(m.Rows, m.Cols)
	for i, x := range m.Data {
		ch := i % m.Cols
		sd := std[ch]
		if sd == 0 || math.IsNaN(sd) {
			sd = 1
		}
		out.Data[i] = float32(f(float64(x), mean[ch], sd))
	}
	return out, nil
}

// Normalizer rewrites a sample's sequence fields in normalized form.
type Normalizer struct {
	stats  domain.Stats
	fields []string
}

// NewNormalizer normalizes every field in fields that has statistics.
func NewNormalizer(st domain.Stats, fields []string) *Normalizer {
	var keep []string
	for _, f := range fields {
		if _, ok := st.Get(f + MeanSuffix); ok {
			keep = append(keep, f)
		}
	}
	return &Normalizer{stats: st, fields: keep}
}

// Apply returns a copy of s with the configured fields normalized. Samples
// are shared between batches, so s itself is never modified. A field whose
// width disagrees with its statistics is copied unchanged.
func (n *Normalizer) Apply(s *domain.Sample) (*domain.Sample, error) {
	out := *s
	out.Sequences = make(map[string]domain.Matrix, len(s.Sequences))
	for k, v := range s.Sequences {
		out.Sequences[k] = v
	}
	for _, f := range n.fields {
		m, ok := s.Sequences[f]
		if !ok {
			continue
		}
		norm, err := Normalize(n.stats, f, m)
		if errors.Is(err, domain.ErrShapeMismatch) {
			// Left as is; schema validation rejects the sample.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("sample %q: %w", s.ID, err)
		}
		out.Sequences[f] = norm
	}
	return &out, nil
}

// CheckChannels verifies that the statistics of every field in specs have
// the declared channel count. Fields without statistics are ignored.
func CheckChannels(st domain.Stats, specs []domain.FieldSpec) error {
	for _, f := range specs {
		for _, suffix := range []string{MeanSuffix, StdSuffix} {
			v, ok := st.Get(f.Name + suffix)
			if ok && len(v) != f.Channels {
				return fmt.Errorf("%w: statistics %q have %d channels, schema declares %d",
					domain.ErrShapeMismatch, f.Name+suffix, len(v), f.Channels)
			}
		}
	}
	return nil
}
