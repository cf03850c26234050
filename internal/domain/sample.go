package domain

// Sample is one immutable training record. Sequences holds the primary- and
// secondary-rate fields as [T, C] matrices; Vectors holds fixed-size
// auxiliary fields. An optional field that is absent has no map entry.
type Sample struct {
	// Index is the sample's position in the store, in [0, N).
	Index int

	// ID is the string identifier, e.g. "<speaker>_<clip>".
	ID string

	Sequences map[string]Matrix
	Vectors   map[string][]float32
}

// Sequence returns the named sequence field and whether it is present.
func (s *Sample) Sequence(name string) (Matrix, bool) {
	m, ok := s.Sequences[name]
	return m, ok
}

// Vector returns the named fixed-size field and whether it is present.
func (s *Sample) Vector(name string) ([]float32, bool) {
	v, ok := s.Vectors[name]
	return v, ok
}

// Len returns the number of rows of the named sequence field, or 0 if it is
// absent.
func (s *Sample) Len(name string) int {
	return s.Sequences[name].Rows
}
