package collate

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/seqbatch/internal/domain"
	"github.com/bft-labs/seqbatch/internal/testutil"
)

func newCollator(t *testing.T, schema domain.Schema) *Collator {
	t.Helper()
	c, err := New(schema, Options{Alignment: 8, RateRatio: 2})
	require.NoError(t, err)
	return c
}

func TestLengths(t *testing.T) {
	c := newCollator(t, testutil.Schema)

	tests := []struct{ maxLen, x, y int }{
		{16, 16, 8},
		{10, 16, 8},
		{17, 24, 12},
		{1, 8, 4},
		{0, 0, 0},
	}
	for _, tt := range tests {
		x, y := c.Lengths(tt.maxLen)
		assert.Equal(t, tt.x, x, "xLen for %d", tt.maxLen)
		assert.Equal(t, tt.y, y, "yLen for %d", tt.maxLen)
	}
}

func TestCollate_Padding(t *testing.T) {
	c := newCollator(t, testutil.Schema)
	samples := testutil.Sized(testutil.Schema, 10, 16, 3)

	batch, err := c.Collate(samples)
	require.NoError(t, err)
	require.NotNil(t, batch)

	assert.Equal(t, 16, batch.XLen)
	assert.Equal(t, 8, batch.YLen)
	assert.Equal(t, []string{"a", "b", "c"}, batch.IDs)

	mel := batch.Sequences["mel"]
	assert.Equal(t, []int{3, 16, 2}, mel.Shape())
	assert.Equal(t, []int{3, 16, 3}, batch.Sequences["hubert"].Shape())
	assert.Equal(t, []int{3, 8, 2}, batch.Sequences["exp"].Shape())
	assert.Equal(t, []int{3, 8, 1}, batch.Sequences["pose"].Shape())

	// Data is copied into the row prefix; the tail is zero.
	for tt := 0; tt < 16; tt++ {
		want0 := float32(0)
		if tt < 10 {
			want0 = float32(tt + 1)
		}
		want2 := float32(0)
		if tt < 3 {
			want2 = float32(tt + 1)
		}
		assert.Equal(t, want0, mel.At(0, tt, 1), "sample 0 t=%d", tt)
		assert.Equal(t, float32(tt+1), mel.At(1, tt, 0), "sample 1 t=%d", tt)
		assert.Equal(t, want2, mel.At(2, tt, 0), "sample 2 t=%d", tt)
	}
	// Sample 0 has exactly six trailing padded positions.
	for tt := 10; tt < 16; tt++ {
		assert.Equal(t, []float32{0, 0}, mel.Frame(0, tt))
	}

	style := batch.Fixed["style"]
	assert.Equal(t, []int{3, 4}, style.Shape())
	assert.Equal(t, []float32{1, 2, 3, 4}, style.Row(2))
}

func TestCollate_Masks(t *testing.T) {
	c := newCollator(t, testutil.Schema)
	samples := testutil.Sized(testutil.Schema, 10, 16, 3)

	batch, err := c.Collate(samples)
	require.NoError(t, err)

	assert.Equal(t, []int{3, 16}, batch.XMask.Shape())
	assert.Equal(t, []int{3, 8}, batch.YMask.Shape())
	for tt := 0; tt < 16; tt++ {
		assert.Equal(t, boolf(tt < 10), batch.XMask.At(0, tt))
		assert.Equal(t, float32(1), batch.XMask.At(1, tt))
		assert.Equal(t, boolf(tt < 3), batch.XMask.At(2, tt))
	}
	for tt := 0; tt < 8; tt++ {
		assert.Equal(t, boolf(tt < 5), batch.YMask.At(0, tt))
		assert.Equal(t, float32(1), batch.YMask.At(1, tt))
		assert.Equal(t, boolf(tt < 1), batch.YMask.At(2, tt))
	}
}

func TestCollate_MaskIsContentProxy(t *testing.T) {
	c := newCollator(t, testutil.Schema)
	s := testutil.Sample(testutil.Schema, "silent", 8, 4)
	// Frame 2 is real but all zero.
	copy(s.Sequences["mel"].Row(2), []float32{0, 0})
	// Negative values still count as coverage.
	copy(s.Sequences["mel"].Row(3), []float32{-1, 1})

	batch, err := c.Collate([]*domain.Sample{s})
	require.NoError(t, err)

	assert.Equal(t, float32(1), batch.XMask.At(0, 1))
	assert.Equal(t, float32(0), batch.XMask.At(0, 2))
	assert.Equal(t, float32(1), batch.XMask.At(0, 3))
}

func TestCollate_Nulls(t *testing.T) {
	c := newCollator(t, testutil.Schema)
	samples := testutil.Sized(testutil.Schema, 4, 6)

	batch, err := c.Collate([]*domain.Sample{samples[0], nil, samples[1]})
	require.NoError(t, err)
	require.NotNil(t, batch)
	assert.Equal(t, 2, batch.Size())
	assert.Equal(t, []string{"a", "b"}, batch.IDs)

	batch, err = c.Collate([]*domain.Sample{nil, nil})
	assert.NoError(t, err)
	assert.Nil(t, batch)

	batch, err = c.Collate(nil)
	assert.NoError(t, err)
	assert.Nil(t, batch)
}

func TestCollate_SecondaryLengthIsDerived(t *testing.T) {
	c := newCollator(t, testutil.Schema)
	// Secondary fields longer than xLen/R are truncated.
	s := testutil.Sample(testutil.Schema, "long", 8, 7)

	batch, err := c.Collate([]*domain.Sample{s})
	require.NoError(t, err)

	pose := batch.Sequences["pose"]
	assert.Equal(t, []int{1, 4, 1}, pose.Shape())
	assert.Equal(t, []float32{1, 2, 3, 4}, pose.Data)
}

func TestCollate_OptionalFields(t *testing.T) {
	schema := testutil.Schema
	schema.Secondary = append([]domain.FieldSpec{}, schema.Secondary...)
	schema.Secondary = append(schema.Secondary, domain.FieldSpec{Name: "au45_r", Channels: 1, Optional: true})
	c := newCollator(t, schema)

	a := testutil.Sample(schema, "a", 8, 4)
	b := testutil.Sample(schema, "b", 8, 4)
	delete(b.Sequences, "au45_r")

	batch, err := c.Collate([]*domain.Sample{a, b})
	require.NoError(t, err)
	au := batch.Sequences["au45_r"]
	assert.Equal(t, float32(1), au.At(0, 0, 0))
	assert.Equal(t, float32(0), au.At(1, 0, 0), "absent optional field is zero-filled")

	delete(a.Sequences, "au45_r")
	batch, err = c.Collate([]*domain.Sample{a, b})
	require.NoError(t, err)
	_, ok := batch.Sequences["au45_r"]
	assert.False(t, ok, "field absent from every sample is omitted")
}

func TestCollate_Errors(t *testing.T) {
	c := newCollator(t, testutil.Schema)

	t.Run("fixed shape mismatch", func(t *testing.T) {
		s := testutil.Sample(testutil.Schema, "bad", 4, 2)
		s.Vectors["style"] = []float32{1}
		_, err := c.Collate([]*domain.Sample{s})
		assert.True(t, errors.Is(err, domain.ErrShapeMismatch))
	})

	t.Run("channel mismatch", func(t *testing.T) {
		s := testutil.Sample(testutil.Schema, "bad", 4, 2)
		s.Sequences["exp"] = testutil.Ramp(2, 5)
		_, err := c.Collate([]*domain.Sample{s})
		assert.True(t, errors.Is(err, domain.ErrShapeMismatch))
	})

	t.Run("missing required field", func(t *testing.T) {
		s := testutil.Sample(testutil.Schema, "bad", 4, 2)
		delete(s.Sequences, "hubert")
		_, err := c.Collate([]*domain.Sample{s})
		assert.True(t, errors.Is(err, domain.ErrMissingField))
	})
}

func TestCollate_Concurrent(t *testing.T) {
	c := newCollator(t, testutil.Schema)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			batch, err := c.Collate(testutil.Sized(testutil.Schema, n+1, n+9))
			assert.NoError(t, err)
			assert.Equal(t, 2, batch.Size())
		}(i)
	}
	wg.Wait()
}

func TestNew_RejectsBadSchema(t *testing.T) {
	_, err := New(domain.Schema{}, Options{})
	assert.True(t, errors.Is(err, domain.ErrInvalidConfig))
}

func boolf(b bool) float32 {
	if b {
		return 1
	}
	return 0
}
