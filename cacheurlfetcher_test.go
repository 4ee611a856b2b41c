package pkgfetch

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fallbackStub is a [Fetcher] that writes fixed content to its stage on
// Fetch, used to exercise [CacheURLFetcher]'s fallback-then-populate path.
type fallbackStub struct {
	bound   *Stage
	content string
}

var _ Fetcher = (*fallbackStub)(nil)

func (s *fallbackStub) Bind(stage *Stage) { s.bound = stage }
func (s *fallbackStub) Fetch(ctx context.Context) error {
	dest := s.bound.JoinPath("archive.tar.gz")

	return os.WriteFile(dest, []byte(s.content), 0o644)
}
func (s *fallbackStub) Check(ctx context.Context) error                       { return nil }
func (s *fallbackStub) Expand(ctx context.Context) error                      { return nil }
func (s *fallbackStub) Reset(ctx context.Context) error                       { return nil }
func (s *fallbackStub) Archive(ctx context.Context, destination *url.URL) error { return nil }
func (s *fallbackStub) Cachable() bool                                        { return true }
func (s *fallbackStub) SourceID(ctx context.Context) (string, error)          { return "", nil }

func TestCacheURLFetcher_MissFallsBackAndPopulatesCache(t *testing.T) {
	ctx := newTestContext(t)
	fallback := &fallbackStub{content: "archive-bytes"}
	f := NewCacheURLFetcher(ctx, "example", "archive.tar.gz", nil, fallback)

	stage := NewStage(t.TempDir())
	f.Bind(stage)

	require.NoError(t, f.Fetch(t.Context()))
	assert.False(t, f.fromCache)
	assert.FileExists(t, f.stage.ArchiveFile)

	cacheKey := f.cacheKey
	assert.True(t, ctx.Cache.Exists(cacheKey), "fetch should have populated the mirror cache")
}

func TestCacheURLFetcher_HitLinksFromCacheWithoutTouchingFallback(t *testing.T) {
	ctx := newTestContext(t)
	cacheKey := "example/archive.tar.gz"

	dest, err := ctx.Cache.Reserve(cacheKey)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(dest, []byte("cached-bytes"), 0o644))

	f := NewCacheURLFetcher(ctx, "example", "archive.tar.gz", nil, nil)
	require.Equal(t, cacheKey, f.cacheKey)

	stage := NewStage(t.TempDir())
	f.Bind(stage)

	require.NoError(t, f.Fetch(t.Context()))
	assert.True(t, f.fromCache)

	linked, err := filepath.EvalSymlinks(f.stage.ArchiveFile)
	require.NoError(t, err)
	content, err := os.ReadFile(linked)
	require.NoError(t, err)
	assert.Equal(t, "cached-bytes", string(content))
}

func TestCacheURLFetcher_MissWithoutFallbackErrors(t *testing.T) {
	ctx := newTestContext(t)
	f := NewCacheURLFetcher(ctx, "missing", "archive.tar.gz", nil, nil)
	f.Bind(NewStage(t.TempDir()))

	err := f.Fetch(t.Context())
	require.ErrorIs(t, err, ErrNoCache)
}
