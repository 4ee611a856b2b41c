package pkgfetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContext_Defaults(t *testing.T) {
	ctx := NewContext(t.TempDir())

	assert.True(t, ctx.VerifySSL)
	assert.True(t, ctx.Checksum)
	assert.NotZero(t, ctx.Timeout)
	require.NotNil(t, ctx.Mirrors)
	require.NotNil(t, ctx.Cache)
	assert.Empty(t, ctx.Mirrors.Entries())
}

func TestExtrapolationCache(t *testing.T) {
	t.Run("nil cache is a safe no-op", func(t *testing.T) {
		var c *extrapolationCache

		c.put("key", "value")
		_, ok := c.get("key")
		assert.False(t, ok)
	})

	t.Run("stores and retrieves", func(t *testing.T) {
		c := &extrapolationCache{entries: make(map[string]string)}

		c.put("pkg@1.0.0", "https://example.com/pkg-1.0.0.tar.gz")
		v, ok := c.get("pkg@1.0.0")
		require.True(t, ok)
		assert.Equal(t, "https://example.com/pkg-1.0.0.tar.gz", v)

		_, ok = c.get("missing")
		assert.False(t, ok)
	})
}
