package tokenstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStore_SaveLoadClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "token")

	s, err := Open(path)
	require.NoError(t, err)
	require.Empty(t, s.Token())

	require.NoError(t, s.Save("t1"))
	require.Equal(t, "t1", s.Token())

	// A new store over the same path sees the persisted token.
	s2, err := Open(path)
	require.NoError(t, err)
	require.Equal(t, "t1", s2.Token())

	require.NoError(t, s.Clear())
	require.Empty(t, s.Token())

	s3, err := Open(path)
	require.NoError(t, err)
	require.Empty(t, s3.Token())
}

func TestStore_ClearMissingFileIsNoError(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "token"))
	require.NoError(t, err)
	require.NoError(t, s.Clear())
}
