package domain

import (
	"errors"
	"testing"
)

func tinySchema() Schema {
	return Schema{
		Version:       1,
		Primary:       []FieldSpec{{Name: "mel", Channels: 2}},
		Secondary:     []FieldSpec{{Name: "pose", Channels: 1}, {Name: "blink", Channels: 1, Optional: true}},
		Fixed:         []FieldSpec{{Name: "style", Channels: 3, Optional: true}},
		PrimaryMask:   "mel",
		SecondaryMask: "pose",
	}
}

func TestAudioMotionV1(t *testing.T) {
	if err := AudioMotionV1.Check(); err != nil {
		t.Fatalf("Check() = %v", err)
	}
	if got := AudioMotionV1.SizeField(); got != "mel" {
		t.Errorf("SizeField() = %q, want mel", got)
	}
}

func TestSchema_Check(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Schema)
	}{
		{"no primary", func(s *Schema) { s.Primary = nil }},
		{"duplicate name", func(s *Schema) { s.Secondary[0].Name = "mel" }},
		{"empty name", func(s *Schema) { s.Fixed[0].Name = "" }},
		{"zero channels", func(s *Schema) { s.Secondary[0].Channels = 0 }},
		{"optional size field", func(s *Schema) { s.Primary[0].Optional = true }},
		{"unknown primary mask", func(s *Schema) { s.PrimaryMask = "pose" }},
		{"unknown secondary mask", func(s *Schema) { s.SecondaryMask = "mel" }},
	}

	if err := tinySchema().Check(); err != nil {
		t.Fatalf("valid schema: Check() = %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tinySchema()
			tt.mutate(&s)
			if err := s.Check(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Check() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestSchema_Validate(t *testing.T) {
	valid := func() *Sample {
		return &Sample{
			ID: "a",
			Sequences: map[string]Matrix{
				"mel":  NewMatrix(4, 2),
				"pose": NewMatrix(2, 1),
			},
			Vectors: map[string][]float32{},
		}
	}

	if err := tinySchema().Validate(valid()); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Sample)
		want   error
	}{
		{"missing required", func(s *Sample) { delete(s.Sequences, "pose") }, ErrMissingField},
		{"wrong channels", func(s *Sample) { s.Sequences["mel"] = NewMatrix(4, 3) }, ErrShapeMismatch},
		{"wrong optional channels", func(s *Sample) { s.Sequences["blink"] = NewMatrix(2, 2) }, ErrShapeMismatch},
		{"short data", func(s *Sample) { s.Sequences["mel"] = Matrix{Rows: 4, Cols: 2, Data: make([]float32, 7)} }, ErrShapeMismatch},
		{"wrong vector length", func(s *Sample) { s.Vectors["style"] = []float32{1} }, ErrShapeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(s)
			if err := tinySchema().Validate(s); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSample_Accessors(t *testing.T) {
	s := &Sample{Sequences: map[string]Matrix{"mel": NewMatrix(5, 2)}}
	if s.Len("mel") != 5 {
		t.Errorf("Len(mel) = %d, want 5", s.Len("mel"))
	}
	if s.Len("pose") != 0 {
		t.Errorf("Len(pose) = %d, want 0", s.Len("pose"))
	}
	if _, ok := s.Vector("style"); ok {
		t.Error("Vector(style) present on a sample without vectors")
	}
}
