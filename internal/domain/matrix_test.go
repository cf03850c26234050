package domain

import "testing"

func TestMatrix_RowAndAt(t *testing.T) {
	m := NewMatrix(2, 3)
	copy(m.Row(1), []float32{4, 5, 6})

	if m.At(1, 2) != 6 {
		t.Errorf("At(1, 2) = %v, want 6", m.At(1, 2))
	}
	if m.At(0, 0) != 0 {
		t.Errorf("At(0, 0) = %v, want 0", m.At(0, 0))
	}
	if err := m.Check(); err != nil {
		t.Errorf("Check() = %v", err)
	}
}

func TestTensor3_Frame(t *testing.T) {
	x := NewTensor3(2, 3, 2)
	copy(x.Frame(1, 2), []float32{7, 8})

	if x.At(1, 2, 1) != 8 {
		t.Errorf("At(1, 2, 1) = %v, want 8", x.At(1, 2, 1))
	}
	if got := x.Shape(); got[0] != 2 || got[1] != 3 || got[2] != 2 {
		t.Errorf("Shape() = %v", got)
	}
	if len(x.Data) != 12 {
		t.Errorf("len(Data) = %d, want 12", len(x.Data))
	}
}

func TestBatch_Tokens(t *testing.T) {
	b := &Batch{IDs: []string{"a", "b", "c"}, XLen: 16}
	if b.Tokens() != 48 {
		t.Errorf("Tokens() = %d, want 48", b.Tokens())
	}
	if b.Empty() {
		t.Error("Empty() = true")
	}
	if !(&Batch{}).Empty() {
		t.Error("zero batch should be empty")
	}
}
