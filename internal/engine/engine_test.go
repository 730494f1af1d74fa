package engine

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarkerRoundTrip(t *testing.T) {
	dir, err := os.MkdirTemp("", "marker-test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	name, ok, err := ReadMarker(dir, "engine")
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, Name(""), name)

	require.NoError(t, WriteMarker(dir, "engine", NameKVS))

	got, ok, err := ReadMarker(dir, "engine")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, NameKVS, got)
}

func TestWriteMarkerRejectsMismatch(t *testing.T) {
	dir, err := os.MkdirTemp("", "marker-test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	require.NoError(t, WriteMarker(dir, "engine", NameKVS))
	err = WriteMarker(dir, "engine", NameSled)
	require.ErrorIs(t, err, ErrEngineMismatch)
}

func TestWriteMarkerIsIdempotent(t *testing.T) {
	dir, err := os.MkdirTemp("", "marker-test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	require.NoError(t, WriteMarker(dir, "engine", NameKVS))
	require.NoError(t, WriteMarker(dir, "engine", NameKVS))
}
