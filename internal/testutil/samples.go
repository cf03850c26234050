// Package testutil builds schema-conforming samples for tests.
package testutil

import "github.com/bft-labs/seqbatch/internal/domain"

// Schema is a small two-rate schema used across package tests.
var Schema = domain.Schema{
	Version:       1,
	Primary:       []domain.FieldSpec{{Name: "mel", Channels: 2}, {Name: "hubert", Channels: 3}},
	Secondary:     []domain.FieldSpec{{Name: "exp", Channels: 2}, {Name: "pose", Channels: 1}},
	Fixed:         []domain.FieldSpec{{Name: "style", Channels: 4}},
	PrimaryMask:   "mel",
	SecondaryMask: "pose",
}

// Sample returns a sample of schema with xLen primary frames and yLen
// secondary frames. Every value is non-zero: frame t of every field holds
// t+1 in each channel.
func Sample(schema domain.Schema, id string, xLen, yLen int) *domain.Sample {
	s := &domain.Sample{
		ID:        id,
		Sequences: map[string]domain.Matrix{},
		Vectors:   map[string][]float32{},
	}
	for _, f := range schema.Primary {
		s.Sequences[f.Name] = Ramp(xLen, f.Channels)
	}
	for _, f := range schema.Secondary {
		s.Sequences[f.Name] = Ramp(yLen, f.Channels)
	}
	for _, f := range schema.Fixed {
		v := make([]float32, f.Channels)
		for i := range v {
			v[i] = float32(i + 1)
		}
		s.Vectors[f.Name] = v
	}
	return s
}

// Ramp returns a [rows, cols] matrix whose row t is filled with t+1.
func Ramp(rows, cols int) domain.Matrix {
	m := domain.NewMatrix(rows, cols)
	for r := 0; r < rows; r++ {
		row := m.Row(r)
		for c := range row {
			row[c] = float32(r + 1)
		}
	}
	return m
}

// Sized returns one sample per entry of xLens, with yLen = xLen / 2.
func Sized(schema domain.Schema, xLens ...int) []*domain.Sample {
	out := make([]*domain.Sample, len(xLens))
	for i, n := range xLens {
		out[i] = Sample(schema, string(rune('a'+i%26)), n, n/2)
	}
	return out
}
