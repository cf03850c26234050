package ports

// SizeCache persists the per-sample size array of a split.
type SizeCache interface {
	// Load returns the cached sizes for split. ok is false if nothing is
	// cached. Returns an error only for actual read failures.
	Load(split string) (sizes []int, ok bool, err error)

	// Save persists sizes for split. Implementations should write atomically.
	Save(split string, sizes []int) error
}
