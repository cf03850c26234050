package leveldb

import (
	"errors"
	"testing"

	"github.com/golang/snappy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinylib/msgp/msgp"

	"github.com/bft-labs/seqbatch/internal/domain"
	"github.com/bft-labs/seqbatch/internal/testutil"
)

func TestCodec_RoundTrip(t *testing.T) {
	in := testutil.Sample(testutil.Schema, "spk_0001", 6, 3)

	out, err := DecodeSample(EncodeSample(in))
	require.NoError(t, err)
	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, in.Sequences, out.Sequences)
	assert.Equal(t, in.Vectors, out.Vectors)
}

func TestCodec_Corrupt(t *testing.T) {
	_, err := DecodeSample([]byte("definitely not snappy"))
	assert.Error(t, err)

	bad := EncodeSample(&domain.Sample{
		ID:        "x",
		Sequences: map[string]domain.Matrix{"mel": {Rows: 3, Cols: 2, Data: []float32{1}}},
	})
	_, err = DecodeSample(bad)
	assert.Error(t, err, "data length must match rows*cols")

	// An array header claiming far more floats than the record holds.
	raw := msgp.AppendMapHeader(nil, 1)
	raw = msgp.AppendString(raw, "vec")
	raw = msgp.AppendMapHeader(raw, 1)
	raw = msgp.AppendString(raw, "style")
	raw = msgp.AppendArrayHeader(raw, 0xFFFFFFF0)
	_, err = DecodeSample(snappy.Encode(nil, raw))
	assert.True(t, errors.Is(err, msgp.ErrShortBytes), "got %v", err)
}

func TestStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	samples := testutil.Sized(testutil.Schema, 4, 9, 2)

	w, err := Create(dir)
	require.NoError(t, err)
	for _, s := range samples {
		w.Append(s)
	}
	require.NoError(t, w.Close())

	st, err := Open(dir)
	require.NoError(t, err)
	defer st.Close()

	require.Equal(t, 3, st.Len())
	for i, want := range samples {
		got, err := st.Get(i)
		require.NoError(t, err)
		assert.Equal(t, i, got.Index)
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.Len("mel"), got.Len("mel"))
		assert.Equal(t, want.Sequences["pose"], got.Sequences["pose"])
	}

	_, err = st.Get(3)
	assert.True(t, errors.Is(err, domain.ErrIndexOutOfRange))
}

func TestStore_Gap(t *testing.T) {
	dir := t.TempDir()
	w, err := Create(dir)
	require.NoError(t, err)
	w.Put(2, testutil.Sample(testutil.Schema, "late", 4, 2))
	require.NoError(t, w.Close())

	st, err := Open(dir)
	require.NoError(t, err)
	defer st.Close()

	assert.Equal(t, 3, st.Len())
	_, err = st.Get(0)
	assert.True(t, errors.Is(err, domain.ErrSampleUnavailable))
	s, err := st.Get(2)
	require.NoError(t, err)
	assert.Equal(t, "late", s.ID)
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(t.TempDir())
	assert.Error(t, err)
}
