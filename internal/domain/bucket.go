package domain

// Bucket is one batch's worth of sample indices, in scheduling order.
type Bucket struct {
	// Seq is the bucket's position in emission order. The pipeline driver
	// uses it to restore order after parallel collation.
	Seq int

	Indices []int
}

// Size returns the number of samples in the bucket.
func (b Bucket) Size() int {
	return len(b.Indices)
}

// Empty returns true if the bucket has no samples.
func (b Bucket) Empty() bool {
	return len(b.Indices) == 0
}
