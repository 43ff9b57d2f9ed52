package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStorage runs the contract every backend must meet.
func exerciseStorage(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, TokenKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetAll(ctx, map[string]string{TokenKey: "t1", UserKey: `{"id":"u1"}`}))

	v, ok, err := s.Get(ctx, TokenKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "t1", v)

	v, ok, err = s.Get(ctx, UserKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"id":"u1"}`, v)

	require.NoError(t, s.Delete(ctx, TokenKey, UserKey))
	require.NoError(t, s.Delete(ctx, TokenKey, UserKey), "deleting missing keys is not an error")

	_, ok, err = s.Get(ctx, UserKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStorage(t *testing.T) {
	s := NewMemoryStorage()
	exerciseStorage(t, s)
	assert.Equal(t, "memory", s.Name())
	assert.Zero(t, s.Len())
}

func TestFileStorage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sessions")
	s := NewFileStorage(dir, "tty-42")
	assert.Equal(t, filepath.Join(dir, "tty-42.json"), s.Path())
	exerciseStorage(t, s)

	_, err := os.Stat(s.Path())
	assert.True(t, os.IsNotExist(err), "empty session file should be removed")
}

func TestFileStoragePermissions(t *testing.T) {
	s := NewFileStorage(t.TempDir(), "scope")
	require.NoError(t, s.SetAll(context.Background(), map[string]string{TokenKey: "t"}))

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStorageSharedAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	require.NoError(t, NewFileStorage(dir, "a").SetAll(ctx, map[string]string{TokenKey: "t"}))

	v, ok, err := NewFileStorage(dir, "a").Get(ctx, TokenKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "t", v)

	_, ok, err = NewFileStorage(dir, "b").Get(ctx, TokenKey)
	require.NoError(t, err)
	assert.False(t, ok, "scopes are isolated")
}

func TestFileStorageCorruptDocument(t *testing.T) {
	s := NewFileStorage(t.TempDir(), "scope")
	require.NoError(t, os.WriteFile(s.Path(), []byte("garbage"), 0o600))

	_, _, err := s.Get(context.Background(), TokenKey)
	assert.ErrorIs(t, err, ErrCorruptStorage)

	// A corrupt document is a malformed session: no error, no session,
	// and the file is cleared.
	store := NewStore(s, nil)
	require.NoError(t, store.Initialize(context.Background()))
	snap := store.Snapshot()
	assert.False(t, snap.Loading)
	assert.False(t, snap.Authenticated())

	_, err = os.Stat(s.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestDefaultScope(t *testing.T) {
	t.Setenv("HIS_SESSION_SCOPE", "kiosk-3")
	assert.Equal(t, "kiosk-3", DefaultScope())

	t.Setenv("HIS_SESSION_SCOPE", "")
	assert.Regexp(t, `^tty-\d+$`, DefaultScope())
}
