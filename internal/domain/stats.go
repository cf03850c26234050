package domain

// Stats holds normalization constants keyed by name, e.g. "exp_mean",
// "exp_std", "pose_diff_std_mean". Each value is a per-channel vector.
type Stats map[string][]float64

// Get returns the named vector and whether it is present.
func (s Stats) Get(key string) ([]float64, bool) {
	v, ok := s[key]
	return v, ok
}
