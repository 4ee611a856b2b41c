package pkgfetch

import (
	"net/http"
	"time"

	"github.com/pkgfetch/pkgfetch/internal/fetchcache"
)

// Context carries the explicit configuration and shared caches every
// fetcher needs, threaded explicitly by the caller rather than kept as
// package-level mutable state.
type Context struct {
	// VerifySSL enables TLS certificate validation for HTTP(S)
	// transports. When false, validation is disabled there and the git
	// backend's Options.GitSSLNoVerify is set.
	VerifySSL bool

	// Checksum records the config:checksum setting. No fetcher in this
	// package reads it: Check verifies a declared digest, and reports a
	// missing one, whatever its value.
	Checksum bool

	// Debug enables verbose fetcher logging.
	Debug bool

	// Timeout bounds a single network operation.
	Timeout time.Duration

	// Mirrors is the active mirror-set manager.
	Mirrors *MirrorSet

	// Cache is the content-addressed filesystem mirror cache.
	Cache *fetchcache.Cache

	// HTTPClient is shared across URL, S3 and spider operations so
	// connection pooling and the redirect policy stay consistent.
	HTTPClient *http.Client

	extrapolationMemo *extrapolationCache
}

// NewContext builds a [Context] with the given cache root and sensible
// defaults (checksum verification on, SSL verification on).
func NewContext(cacheRoot string) *Context {
	return &Context{
		VerifySSL: true,
		Checksum:  true,
		Timeout:   10 * time.Second,
		Mirrors:   NewMirrorSet(),
		Cache:     fetchcache.New(cacheRoot),
		extrapolationMemo: &extrapolationCache{
			entries: make(map[string]string),
		},
	}
}

// extrapolationCache memoizes URL extrapolation results per
// package+version, so Package.URLForVersion is called once per key; its
// answer never changes within a run.
type extrapolationCache struct {
	entries map[string]string
}

func (c *extrapolationCache) get(key string) (string, bool) {
	if c == nil {
		return "", false
	}
	v, ok := c.entries[key]

	return v, ok
}

func (c *extrapolationCache) put(key, value string) {
	if c == nil {
		return
	}
	c.entries[key] = value
}
