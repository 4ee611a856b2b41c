package pkgfetch

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSvnFetcher_RequiresBoundStage(t *testing.T) {
	ctx := newTestContext(t)
	f := NewSvnFetcher(ctx, "https://svn.example/repo/trunk", "")

	assert.ErrorIs(t, f.Check(t.Context()), ErrNoStage)
	assert.ErrorIs(t, f.Expand(t.Context()), ErrNoStage)
	assert.ErrorIs(t, f.Archive(t.Context(), &url.URL{}), ErrNoStage)
}

func TestSvnFetcher_SourceIDRequiresAPriorFetch(t *testing.T) {
	ctx := newTestContext(t)
	f := NewSvnFetcher(ctx, "https://svn.example/repo/trunk", "")
	f.Bind(NewStage(t.TempDir()))

	_, err := f.SourceID(t.Context())
	require.ErrorIs(t, err, ErrNoArchive)
}

func TestSvnFetcher_IsAlwaysCachable(t *testing.T) {
	ctx := newTestContext(t)
	f := NewSvnFetcher(ctx, "https://svn.example/repo/trunk", "42")

	assert.True(t, f.Cachable())
}
