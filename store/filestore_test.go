package store_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/soundboard/soundboard/store"
)

func newFileStore(t *testing.T) (*store.FileStore, string) {
	t.Helper()
	dir := t.TempDir()
	fs, err := store.NewFileStore(dir)
	require.NoError(t, err)
	return fs, dir
}

func TestFileStoreRoundTrip(t *testing.T) {
	fs, _ := newFileStore(t)

	require.NoError(t, fs.Set("access_token", `{"data":{"access_token":"at-1"}}`))

	value, err := fs.Get("access_token")
	require.NoError(t, err)
	require.Equal(t, `{"data":{"access_token":"at-1"}}`, value)
}

func TestFileStoreOverwrite(t *testing.T) {
	fs, _ := newFileStore(t)

	require.NoError(t, fs.Set("app_state", "state-1"))
	require.NoError(t, fs.Set("app_state", "state-2"))

	value, err := fs.Get("app_state")
	require.NoError(t, err)
	require.Equal(t, "state-2", value)
}

func TestFileStoreMissingKey(t *testing.T) {
	fs, _ := newFileStore(t)

	_, err := fs.Get("missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestFileStoreRemove(t *testing.T) {
	fs, _ := newFileStore(t)

	require.NoError(t, fs.Set("app_state", "state-1"))
	require.NoError(t, fs.Remove("app_state"))

	_, err := fs.Get("app_state")
	require.ErrorIs(t, err, store.ErrNotFound)

	// Removing an absent key is not an error.
	require.NoError(t, fs.Remove("app_state"))
}

func TestFileStorePrivatePermissions(t *testing.T) {
	fs, dir := newFileStore(t)
	require.NoError(t, fs.Set("access_token", "secret"))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o700), info.Mode().Perm())

	info, err = os.Stat(filepath.Join(dir, "access_token"))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStoreNoTempFileLeftBehind(t *testing.T) {
	fs, dir := newFileStore(t)
	require.NoError(t, fs.Set("access_token", "secret"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "access_token", entries[0].Name())
}
