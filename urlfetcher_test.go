package pkgfetch

import (
	"archive/tar"
	"compress/gzip"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewURLFetcher_RejectsUnparsableURL(t *testing.T) {
	ctx := newTestContext(t)

	_, err := NewURLFetcher(ctx, "://not-a-url", nil, false)
	require.Error(t, err)
}

func TestURLFetcher_RequiresBoundStage(t *testing.T) {
	ctx := newTestContext(t)
	f, err := NewURLFetcher(ctx, "https://example.com/pkg-1.0.0.tar.gz", nil, false)
	require.NoError(t, err)

	assert.ErrorIs(t, f.Check(t.Context()), ErrNoStage)
	assert.ErrorIs(t, f.Expand(t.Context()), ErrNoStage)
	assert.ErrorIs(t, f.Archive(t.Context(), &url.URL{}), ErrNoStage)
}

func TestURLFetcher_CheckRequiresAFetchedArchiveAndADigest(t *testing.T) {
	ctx := newTestContext(t)
	f, err := NewURLFetcher(ctx, "https://example.com/pkg-1.0.0.tar.gz", nil, false)
	require.NoError(t, err)
	f.Bind(NewStage(t.TempDir()))

	assert.ErrorIs(t, f.Check(t.Context()), ErrNoArchive)

	f.stage.ArchiveFile = f.stage.JoinPath("pkg-1.0.0.tar.gz")
	assert.ErrorIs(t, f.Check(t.Context()), ErrNoDigest)
}

func TestURLFetcher_Cachable(t *testing.T) {
	ctx := newTestContext(t)

	withoutDigest, err := NewURLFetcher(ctx, "https://example.com/pkg.tar.gz", nil, false)
	require.NoError(t, err)
	assert.False(t, withoutDigest.Cachable())

	noCache, err := NewURLFetcher(ctx, "https://example.com/pkg.tar.gz", nil, true)
	require.NoError(t, err)
	assert.False(t, noCache.Cachable())
}

// buildTarGz writes a gzip-compressed tar archive at dst containing the
// given relative paths, all nested under topDir when topDir is non-empty.
func buildTarGz(t *testing.T, dst, topDir string, files map[string]string) {
	t.Helper()

	out, err := os.Create(dst)
	require.NoError(t, err)
	defer func() { _ = out.Close() }()

	gz := gzip.NewWriter(out)
	defer func() { _ = gz.Close() }()

	tw := tar.NewWriter(gz)
	defer func() { _ = tw.Close() }()

	for name, content := range files {
		full := name
		if topDir != "" {
			full = filepath.Join(topDir, name)
		}

		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name: full,
			Mode: 0o644,
			Size: int64(len(content)),
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
}

func TestExplodeArchive_PromotesSingleTopDirectory(t *testing.T) {
	stage := NewStage(t.TempDir())
	require.NoError(t, os.MkdirAll(stage.SourcePath(), 0o755))

	archivePath := stage.JoinPath("pkg-1.0.0.tar.gz")
	buildTarGz(t, archivePath, "pkg-1.0.0", map[string]string{
		"README.md":  "hello",
		"main.go":    "package main",
	})
	stage.ArchiveFile = archivePath

	require.NoError(t, explodeArchive(stage))

	assert.Equal(t, "pkg-1.0.0", stage.Srcdir)
	assert.FileExists(t, filepath.Join(stage.SourcePath(), "README.md"))
	assert.FileExists(t, filepath.Join(stage.SourcePath(), "main.go"))
	assert.NoDirExists(t, filepath.Join(stage.SourcePath(), "pkg-1.0.0"))
}

func TestExplodeArchive_KeepsFlatArchiveAsIs(t *testing.T) {
	stage := NewStage(t.TempDir())
	require.NoError(t, os.MkdirAll(stage.SourcePath(), 0o755))

	archivePath := stage.JoinPath("flat.tar.gz")
	buildTarGz(t, archivePath, "", map[string]string{
		"a.txt": "a",
		"b.txt": "b",
	})
	stage.ArchiveFile = archivePath

	require.NoError(t, explodeArchive(stage))

	assert.Empty(t, stage.Srcdir)
	assert.FileExists(t, filepath.Join(stage.SourcePath(), "a.txt"))
	assert.FileExists(t, filepath.Join(stage.SourcePath(), "b.txt"))
}
