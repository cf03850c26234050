package domain

import "fmt"

// Matrix is a row-major [Rows, Cols] float32 array. Rows is the time axis
// for sequence fields.
type Matrix struct {
	Rows int
	Cols int
	Data []float32
}

// NewMatrix allocates a zeroed matrix.
func NewMatrix(rows, cols int) Matrix {
	return Matrix{Rows: rows, Cols: cols, Data: make([]float32, rows*cols)}
}

// Row returns the slice backing row r.
func (m Matrix) Row(r int) []float32 {
	return m.Data[r*m.Cols : (r+1)*m.Cols]
}

// At returns element (r, c).
func (m Matrix) At(r, c int) float32 {
	return m.Data[r*m.Cols+c]
}

// Check verifies that Data matches the declared shape.
func (m Matrix) Check() error {
	if m.Rows < 0 || m.Cols < 0 || len(m.Data) != m.Rows*m.Cols {
		return fmt.Errorf("%w: matrix [%d,%d] with %d values", ErrShapeMismatch, m.Rows, m.Cols, len(m.Data))
	}
	return nil
}

// Tensor3 is a row-major [B, T, C] float32 tensor.
type Tensor3 struct {
	B, T, C int
	Data    []float32
}

// NewTensor3 allocates a zeroed tensor.
func NewTensor3(b, t, c int) Tensor3 {
	return Tensor3{B: b, T: t, C: c, Data: make([]float32, b*t*c)}
}

// At returns element (b, t, c).
func (x Tensor3) At(b, t, c int) float32 {
	return x.Data[(b*x.T+t)*x.C+c]
}

// Frame returns the C values at (b, t).
func (x Tensor3) Frame(b, t int) []float32 {
	off := (b*x.T + t) * x.C
	return x.Data[off : off+x.C]
}

// Shape returns [B, T, C].
func (x Tensor3) Shape() []int { return []int{x.B, x.T, x.C} }

// Tensor2 is a row-major [R, C] float32 tensor used for stacked vectors and
// masks.
type Tensor2 struct {
	R, C int
	Data []float32
}

// NewTensor2 allocates a zeroed tensor.
func NewTensor2(r, c int) Tensor2 {
	return Tensor2{R: r, C: c, Data: make([]float32, r*c)}
}

// At returns element (r, c).
func (x Tensor2) At(r, c int) float32 {
	return x.Data[r*x.C+c]
}

// Row returns the slice backing row r.
func (x Tensor2) Row(r int) []float32 {
	return x.Data[r*x.C : (r+1)*x.C]
}

// Shape returns [R, C].
func (x Tensor2) Shape() []int { return []int{x.R, x.C} }
