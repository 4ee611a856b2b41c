package pkgfetch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStage_Paths(t *testing.T) {
	dir := t.TempDir()
	s := NewStage(dir)

	require.Equal(t, dir, s.Path())
	require.Equal(t, filepath.Join(dir, "source"), s.SourcePath())
	require.Equal(t, filepath.Join(dir, "a", "b"), s.JoinPath("a", "b"))
}

func TestStage_Expanded(t *testing.T) {
	dir := t.TempDir()
	s := NewStage(dir)

	require.False(t, s.Expanded(), "source directory does not exist yet")

	require.NoError(t, s.EnsureSourcePath())
	require.False(t, s.Expanded(), "source directory exists but is empty")

	require.NoError(t, os.WriteFile(filepath.Join(s.SourcePath(), "file.txt"), []byte("x"), 0o644))
	require.True(t, s.Expanded())
}

func TestStage_EnsureSourcePath_Idempotent(t *testing.T) {
	dir := t.TempDir()
	s := NewStage(dir)

	require.NoError(t, s.EnsureSourcePath())
	require.NoError(t, s.EnsureSourcePath())

	info, err := os.Stat(s.SourcePath())
	require.NoError(t, err)
	require.True(t, info.IsDir())
}
