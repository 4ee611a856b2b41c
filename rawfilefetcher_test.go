package pkgfetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRawFileFetcher(t *testing.T) {
	ctx := newTestContext(t)

	t.Run("builds a github raw-content URL from a blob URL", func(t *testing.T) {
		f, err := NewRawFileFetcher(ctx, "https://github.com/go-swagger/go-swagger/blob/v0.30.5/README.md", nil)
		require.NoError(t, err)
		require.NotNil(t, f.rawURL)
		assert.Equal(t, "raw.githubusercontent.com", f.rawURL.Host)
	})

	t.Run("rejects a URL from an unrecognised provider", func(t *testing.T) {
		_, err := NewRawFileFetcher(ctx, "https://example.com/owner/repo/blob/main/file.txt", nil)
		require.Error(t, err)
	})

	t.Run("rejects an unparsable URL", func(t *testing.T) {
		_, err := NewRawFileFetcher(ctx, "://not-a-url", nil)
		require.Error(t, err)
	})
}

func TestRawFileFetcher_RequiresBoundStage(t *testing.T) {
	ctx := newTestContext(t)
	f, err := NewRawFileFetcher(ctx, "https://github.com/go-swagger/go-swagger/blob/v0.30.5/README.md", nil)
	require.NoError(t, err)

	assert.ErrorIs(t, f.Fetch(t.Context()), ErrNoStage)
	assert.ErrorIs(t, f.Check(t.Context()), ErrNoStage)
	assert.ErrorIs(t, f.Expand(t.Context()), ErrNoStage)
	assert.ErrorIs(t, f.Reset(t.Context()), ErrNoStage)
}

func TestRawFileFetcher_CheckWithoutDigest(t *testing.T) {
	ctx := newTestContext(t)
	f, err := NewRawFileFetcher(ctx, "https://github.com/go-swagger/go-swagger/blob/v0.30.5/README.md", nil)
	require.NoError(t, err)
	f.Bind(NewStage(t.TempDir()))

	assert.ErrorIs(t, f.Check(t.Context()), ErrNoDigest)
}

func TestRawFileFetcher_CachableReflectsDigestPresence(t *testing.T) {
	ctx := newTestContext(t)

	f, err := NewRawFileFetcher(ctx, "https://github.com/go-swagger/go-swagger/blob/v0.30.5/README.md", nil)
	require.NoError(t, err)
	assert.False(t, f.Cachable())

	id, err := f.SourceID(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "v0.30.5", id, "falls back to the locator's pinned version")
}
