// Package collate assembles a bucket of samples into fixed-shape, aligned
// and masked tensors.
//
// The padded primary length is the longest size field in the bucket rounded
// up to a multiple of the alignment factor. The secondary length is always
// derived from it by integer division with the rate ratio and is never
// reconciled with a sample's own secondary length: longer secondary fields
// are truncated and shorter ones zero-padded.
//
// A Collator has no mutable state and is safe for concurrent use.
package collate

import (
	"fmt"

	"github.com/bft-labs/seqbatch/internal/domain"
)

const (
	// DefaultAlignment is the multiple primary lengths are rounded up to.
	DefaultAlignment = 8

	// DefaultRateRatio is the primary-to-secondary frame rate ratio.
	DefaultRateRatio = 2
)

// Options configures length derivation.
type Options struct {
	Alignment int
	RateRatio int
}

// Collator pads and stacks samples according to a schema.
type Collator struct {
	schema    domain.Schema
	alignment int
	rateRatio int
}

// New creates a Collator. Non-positive options select the defaults.
func New(schema domain.Schema, opts Options) (*Collator, error) {
	if err := schema.Check(); err != nil {
		return nil, err
	}
	if opts.Alignment <= 0 {
		opts.Alignment = DefaultAlignment
	}
	if opts.RateRatio <= 0 {
		opts.RateRatio = DefaultRateRatio
	}
	return &Collator{schema: schema, alignment: opts.Alignment, rateRatio: opts.RateRatio}, nil
}

// Lengths returns the padded primary and secondary lengths for a bucket
// whose longest size field has maxLen frames.
func (c *Collator) Lengths(maxLen int) (xLen, yLen int) {
	xLen = maxLen + (c.alignment-maxLen%c.alignment)%c.alignment
	return xLen, xLen / c.rateRatio
}

// Collate builds a batch from samples. Nil entries are dropped in order;
// if none remain the result is nil with a nil error.
func (c *Collator) Collate(samples []*domain.Sample) (*domain.Batch, error) {
	live := make([]*domain.Sample, 0, len(samples))
	for _, s := range samples {
		if s != nil {
			live = append(live, s)
		}
	}
	if len(live) == 0 {
		return nil, nil
	}

	sizeField := c.schema.SizeField()
	maxLen := 0
	for _, s := range live {
		if _, ok := s.Sequence(sizeField); !ok {
			return nil, fmt.Errorf("%w: sample %q field %q", domain.ErrMissingField, s.ID, sizeField)
		}
		maxLen = max(maxLen, s.Len(sizeField))
	}
	xLen, yLen := c.Lengths(maxLen)

	batch := &domain.Batch{
		IDs:       make([]string, len(live)),
		Sequences: make(map[string]domain.Tensor3, len(c.schema.Primary)+len(c.schema.Secondary)),
		Fixed:     make(map[string]domain.Tensor2, len(c.schema.Fixed)),
		XLen:      xLen,
		YLen:      yLen,
	}
	for i, s := range live {
		batch.IDs[i] = s.ID
	}

	for _, f := range c.schema.Primary {
		t, ok, err := pad(live, f, xLen)
		if err != nil {
			return nil, err
		}
		if ok {
			batch.Sequences[f.Name] = t
		}
	}
	for _, f := range c.schema.Secondary {
		t, ok, err := pad(live, f, yLen)
		if err != nil {
			return nil, err
		}
		if ok {
			batch.Sequences[f.Name] = t
		}
	}
	for _, f := range c.schema.Fixed {
		t, ok, err := stack(live, f)
		if err != nil {
			return nil, err
		}
		if ok {
			batch.Fixed[f.Name] = t
		}
	}

	batch.XMask = coverage(batch.Sequences[c.schema.PrimaryMask], len(live), xLen)
	batch.YMask = coverage(batch.Sequences[c.schema.SecondaryMask], len(live), yLen)
	return batch, nil
}

// pad copies each sample's field into the prefix of its row of a zeroed
// [B, length, C] tensor. ok is false when the field is optional and absent
// from every sample.
func pad(samples []*domain.Sample, f domain.FieldSpec, length int) (domain.Tensor3, bool, error) {
	out := domain.NewTensor3(len(samples), length, f.Channels)
	present := 0
	for b, s := range samples {
		m, ok := s.Sequence(f.Name)
		if !ok {
			if f.Optional {
				continue
			}
			return domain.Tensor3{}, false, fmt.Errorf("%w: sample %q field %q", domain.ErrMissingField, s.ID, f.Name)
		}
		if m.Cols != f.Channels || len(m.Data) != m.Rows*m.Cols {
			return domain.Tensor3{}, false, fmt.Errorf("%w: sample %q field %q is [%d,%d], want C=%d",
				domain.ErrShapeMismatch, s.ID, f.Name, m.Rows, m.Cols, f.Channels)
		}
		rows := min(m.Rows, length)
		copy(out.Data[b*length*f.Channels:], m.Data[:rows*f.Channels])
		present++
	}
	return out, present > 0, nil
}

// stack stacks a fixed-size field into [B, D]. Absent optional entries stay
// zero.
func stack(samples []*domain.Sample, f domain.FieldSpec) (domain.Tensor2, bool, error) {
	out := domain.NewTensor2(len(samples), f.Channels)
	present := 0
	for b, s := range samples {
		v, ok := s.Vector(f.Name)
		if !ok {
			if f.Optional {
				continue
			}
			return domain.Tensor2{}, false, fmt.Errorf("%w: sample %q field %q", domain.ErrMissingField, s.ID, f.Name)
		}
		if len(v) != f.Channels {
			return domain.Tensor2{}, false, fmt.Errorf("%w: sample %q field %q has length %d, want %d",
				domain.ErrShapeMismatch, s.ID, f.Name, len(v), f.Channels)
		}
		copy(out.Row(b), v)
		present++
	}
	return out, present > 0, nil
}

// coverage marks (b, t) with 1 where the reference frame has any non-zero
// value. An all-zero real frame is indistinguishable from padding.
func coverage(ref domain.Tensor3, b, t int) domain.Tensor2 {
	mask := domain.NewTensor2(b, t)
	if ref.Data == nil {
		return mask
	}
	for i := 0; i < b; i++ {
		for j := 0; j < t; j++ {
			var sum float32
			for _, v := range ref.Frame(i, j) {
				if v < 0 {
					sum -= v
				} else {
					sum += v
				}
			}
			if sum > 0 {
				mask.Data[i*t+j] = 1
			}
		}
	}
	return mask
}
