package pkgfetch

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHgFetcher_RequiresBoundStage(t *testing.T) {
	ctx := newTestContext(t)
	f := NewHgFetcher(ctx, "https://hg.example/repo", "tip")

	assert.ErrorIs(t, f.Check(t.Context()), ErrNoStage)
	assert.ErrorIs(t, f.Expand(t.Context()), ErrNoStage)
	assert.ErrorIs(t, f.Archive(t.Context(), &url.URL{}), ErrNoStage)
}

func TestHgFetcher_SourceIDRequiresAPriorFetch(t *testing.T) {
	ctx := newTestContext(t)
	f := NewHgFetcher(ctx, "https://hg.example/repo", "tip")
	f.Bind(NewStage(t.TempDir()))

	_, err := f.SourceID(t.Context())
	require.ErrorIs(t, err, ErrNoArchive)
}

func TestHgFetcher_IsAlwaysCachable(t *testing.T) {
	ctx := newTestContext(t)
	f := NewHgFetcher(ctx, "https://hg.example/repo", "tip")

	assert.True(t, f.Cachable())
}
