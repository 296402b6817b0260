package statestore_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/filmsync/internal/platform/statestore"
)

func TestStore_MissingFileIsEmptyMap(t *testing.T) {
	store := statestore.New(filepath.Join(t.TempDir(), "does-not-exist.json"))

	_, ok, err := store.GetString("global_state")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_SetThenGetRoundTrips(t *testing.T) {
	store := statestore.New(filepath.Join(t.TempDir(), "main.json"))

	require.NoError(t, store.Set("global_state", "START"))

	value, ok, err := store.GetString("global_state")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "START", value)
}

func TestStore_SetPreservesOtherKeys(t *testing.T) {
	store := statestore.New(filepath.Join(t.TempDir(), "main.json"))

	require.NoError(t, store.Set("a", "1"))
	require.NoError(t, store.Set("b", "2"))

	a, ok, err := store.GetString("a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1", a)

	b, ok, err := store.GetString("b")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2", b)
}

func TestStore_CorruptFileTreatedAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store := statestore.New(path)
	_, ok, err := store.GetString("anything")
	require.NoError(t, err)
	assert.False(t, ok)
}
