package log

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologAdapter_Fields(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerologAdapterWithLogger(zerolog.New(&buf))

	l.Info("bucket closed",
		String("split", "train"),
		Int("size", 8),
		Bool("aligned", true),
		Any("indices", []int{1, 2}),
		Err(errors.New("boom")),
	)

	out := buf.String()
	assert.Contains(t, out, `"message":"bucket closed"`)
	assert.Contains(t, out, `"split":"train"`)
	assert.Contains(t, out, `"size":8`)
	assert.Contains(t, out, `"aligned":true`)
	assert.Contains(t, out, `"indices":[1,2]`)
	assert.Contains(t, out, `"error":"boom"`)
}

func TestNewConsole_Level(t *testing.T) {
	var buf bytes.Buffer
	zl, err := NewConsole(&buf, "warn")
	require.NoError(t, err)

	l := NewZerologAdapterWithLogger(zl)
	l.Info("hidden")
	l.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewConsole_BadLevel(t *testing.T) {
	_, err := NewConsole(&bytes.Buffer{}, "loud")
	assert.Error(t, err)
}
