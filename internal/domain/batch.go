package domain

// Batch is the tensor set materialized from one bucket. It is built fresh
// per bucket and owned by the consumer once emitted.
type Batch struct {
	// Seq is the sequence number of the bucket this batch came from.
	Seq int

	// IDs lists sample identifiers in row order.
	IDs []string

	// Sequences holds one [B, XLen, C] tensor per primary field and one
	// [B, YLen, C] tensor per secondary field.
	Sequences map[string]Tensor3

	// Fixed holds one [B, D] tensor per fixed-size field.
	Fixed map[string]Tensor2

	// XMask and YMask are [B, XLen] and [B, YLen] coverage masks of 0 or 1.
	XMask Tensor2
	YMask Tensor2

	XLen int
	YLen int
}

// Size returns the number of rows in the batch.
func (b *Batch) Size() int {
	return len(b.IDs)
}

// Empty returns true if the batch has no rows.
func (b *Batch) Empty() bool {
	return len(b.IDs) == 0
}

// Tokens returns the padded primary token count, B * XLen.
func (b *Batch) Tokens() int {
	return len(b.IDs) * b.XLen
}
