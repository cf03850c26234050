package memory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/seqbatch/internal/domain"
)

func TestCachedStore_ReadThrough(t *testing.T) {
	inner := NewStore([]*domain.Sample{{ID: "a"}, nil, {ID: "c"}})
	cs, err := NewCachedStore(inner, 2)
	require.NoError(t, err)

	assert.Equal(t, 3, cs.Len())

	s, err := cs.Get(0)
	require.NoError(t, err)
	assert.Equal(t, "a", s.ID)

	s, err = cs.Get(0)
	require.NoError(t, err)
	assert.Equal(t, "a", s.ID)
	assert.Equal(t, 1, inner.Gets(), "second Get should hit the cache")

	_, err = cs.Get(1)
	assert.True(t, errors.Is(err, domain.ErrSampleUnavailable))
	assert.Equal(t, 1, cs.Cached(), "failed fetch must not be cached")

	_, err = cs.Get(2)
	require.NoError(t, err)
	assert.Equal(t, 2, cs.Cached())
}

func TestNewCachedStore_BadCapacity(t *testing.T) {
	_, err := NewCachedStore(NewStore(nil), 0)
	assert.Error(t, err)
}

func TestStore_Get(t *testing.T) {
	st := NewStore([]*domain.Sample{{ID: "a"}, {ID: "b"}})

	s, err := st.Get(1)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Index)

	_, err = st.Get(2)
	assert.True(t, errors.Is(err, domain.ErrIndexOutOfRange))
}
