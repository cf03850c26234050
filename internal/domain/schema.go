package domain

import "fmt"

// FieldSpec describes one named field of a Schema.
type FieldSpec struct {
	Name string

	// Channels is C for sequence fields and the vector length for fixed fields.
	Channels int

	// Optional fields may be omitted from a sample.
	Optional bool
}

// Schema is the versioned field set samples are validated against.
//
// The first primary field is the size field: its row count is the sample's
// size for bucketing and drives the padded primary length.
type Schema struct {
	Version   int
	Primary   []FieldSpec
	Secondary []FieldSpec
	Fixed     []FieldSpec

	// PrimaryMask and SecondaryMask name the reference fields for x_mask and
	// y_mask.
	PrimaryMask   string
	SecondaryMask string
}

// AudioMotionV1 is the audio-to-motion field set: audio features at the
// primary rate, face coefficients and landmarks at half that rate.
var AudioMotionV1 = Schema{
	Version: 1,
	Primary: []FieldSpec{
		{Name: "mel", Channels: 80},
		{Name: "hubert", Channels: 1024},
	},
	Secondary: []FieldSpec{
		{Name: "exp", Channels: 64},
		{Name: "pose", Channels: 7},
		{Name: "idexp_lm3d", Channels: 204},
		{Name: "mouth_idexp_lm3d", Channels: 60},
		{Name: "au45_r", Channels: 1, Optional: true},
	},
	Fixed: []FieldSpec{
		{Name: "style", Channels: 135, Optional: true},
		{Name: "ref_mean_lm3d", Channels: 204},
	},
	PrimaryMask:   "mel",
	SecondaryMask: "pose",
}

// SizeField returns the name of the field whose length is the sample size.
func (s Schema) SizeField() string {
	if len(s.Primary) == 0 {
		return ""
	}
	return s.Primary[0].Name
}

// Check verifies the schema itself is usable.
func (s Schema) Check() error {
	if len(s.Primary) == 0 {
		return fmt.Errorf("%w: schema v%d has no primary field", ErrInvalidConfig, s.Version)
	}
	seen := map[string]bool{}
	all := append(append(append([]FieldSpec{}, s.Primary...), s.Secondary...), s.Fixed...)
	for _, f := range all {
		if f.Name == "" || seen[f.Name] {
			return fmt.Errorf("%w: schema v%d field %q empty or duplicated", ErrInvalidConfig, s.Version, f.Name)
		}
		if f.Channels <= 0 {
			return fmt.Errorf("%w: schema v%d field %q has %d channels", ErrInvalidConfig, s.Version, f.Name, f.Channels)
		}
		seen[f.Name] = true
	}
	if s.Primary[0].Optional {
		return fmt.Errorf("%w: size field %q cannot be optional", ErrInvalidConfig, s.Primary[0].Name)
	}
	if !hasField(s.Primary, s.PrimaryMask) {
		return fmt.Errorf("%w: primary mask field %q not in primary fields", ErrInvalidConfig, s.PrimaryMask)
	}
	if len(s.Secondary) > 0 && !hasField(s.Secondary, s.SecondaryMask) {
		return fmt.Errorf("%w: secondary mask field %q not in secondary fields", ErrInvalidConfig, s.SecondaryMask)
	}
	return nil
}

// Validate checks a sample against the schema: required fields are present
// and every present field has the declared channel count.
func (s Schema) Validate(sample *Sample) error {
	check := func(specs []FieldSpec) error {
		for _, f := range specs {
			m, ok := sample.Sequences[f.Name]
			if !ok {
				if f.Optional {
					continue
				}
				return fmt.Errorf("%w: sample %q field %q", ErrMissingField, sample.ID, f.Name)
			}
			if err := m.Check(); err != nil {
				return fmt.Errorf("sample %q field %q: %w", sample.ID, f.Name, err)
			}
			if m.Cols != f.Channels {
				return fmt.Errorf("%w: sample %q field %q has %d channels, want %d",
					ErrShapeMismatch, sample.ID, f.Name, m.Cols, f.Channels)
			}
		}
		return nil
	}
	if err := check(s.Primary); err != nil {
		return err
	}
	if err := check(s.Secondary); err != nil {
		return err
	}
	for _, f := range s.Fixed {
		v, ok := sample.Vectors[f.Name]
		if !ok {
			if f.Optional {
				continue
			}
			return fmt.Errorf("%w: sample %q field %q", ErrMissingField, sample.ID, f.Name)
		}
		if len(v) != f.Channels {
			return fmt.Errorf("%w: sample %q field %q has length %d, want %d",
				ErrShapeMismatch, sample.ID, f.Name, len(v), f.Channels)
		}
	}
	return nil
}

func hasField(specs []FieldSpec, name string) bool {
	for _, f := range specs {
		if f.Name == name {
			return true
		}
	}
	return false
}
