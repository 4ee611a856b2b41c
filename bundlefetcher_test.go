package pkgfetch

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBundleFetcher_EveryOperationRequiresABoundStage(t *testing.T) {
	f := NewBundleFetcher()

	assert.ErrorIs(t, f.Fetch(t.Context()), ErrNoStage)
	assert.ErrorIs(t, f.Check(t.Context()), ErrNoStage)
	assert.ErrorIs(t, f.Expand(t.Context()), ErrNoStage)
	assert.ErrorIs(t, f.Reset(t.Context()), ErrNoStage)
	assert.ErrorIs(t, f.Archive(t.Context(), &url.URL{}), ErrNoStage)
}

func TestBundleFetcher_OnceBoundEveryOperationSucceeds(t *testing.T) {
	f := NewBundleFetcher()
	f.Bind(NewStage(t.TempDir()))

	require.NoError(t, f.Fetch(t.Context()))
	require.NoError(t, f.Check(t.Context()))
	require.NoError(t, f.Expand(t.Context()))
	require.NoError(t, f.Reset(t.Context()))
	require.NoError(t, f.Archive(t.Context(), &url.URL{}))
}

func TestBundleFetcher_HasNoContentIdentity(t *testing.T) {
	f := NewBundleFetcher()

	assert.False(t, f.Cachable())

	id, err := f.SourceID(t.Context())
	require.NoError(t, err)
	assert.Empty(t, id)
}
