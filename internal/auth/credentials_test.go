package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	s := NewStore(t.TempDir())
	require.NoError(t, s.Load())
	assert.False(t, s.Authenticated())
	assert.Empty(t, s.Token())
}

func TestSetPersistsAcrossLoad(t *testing.T) {
	dir := t.TempDir()

	s := NewStore(dir)
	require.NoError(t, s.Load())
	require.NoError(t, s.Set("vx_live_0123456789abcdef"))
	assert.True(t, s.Authenticated())

	// Fresh store sees the persisted key.
	s2 := NewStore(dir)
	require.NoError(t, s2.Load())
	assert.Equal(t, "vx_live_0123456789abcdef", s2.Token())
}

func TestSetFilePermissions(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	require.NoError(t, s.Set("secret-key-value"))

	info, err := os.Stat(filepath.Join(dir, credentialFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestClear(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	require.NoError(t, s.Set("vx_live_0123456789abcdef"))
	require.NoError(t, s.Clear())
	assert.False(t, s.Authenticated())

	// Reload confirms the slot is gone from disk.
	s2 := NewStore(dir)
	require.NoError(t, s2.Load())
	assert.False(t, s2.Authenticated())
}

func TestClearWithoutFile(t *testing.T) {
	s := NewStore(t.TempDir())
	require.NoError(t, s.Clear())
}

func TestMasked(t *testing.T) {
	s := NewStore(t.TempDir())
	assert.Equal(t, "not set", s.Masked())

	require.NoError(t, s.Set("short"))
	assert.Equal(t, "****", s.Masked())

	require.NoError(t, s.Set("vx_live_0123456789abcdef"))
	assert.Equal(t, "vx_live_01...cdef", s.Masked())
}
