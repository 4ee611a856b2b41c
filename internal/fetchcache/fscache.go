// Package fetchcache implements the content-addressed filesystem mirror
// cache: a package-name/archive-basename tree rooted at
// config:source_cache.
package fetchcache

import (
	"fmt"
	"os"
	"path/filepath"
)

type cacheError string

func (e cacheError) Error() string { return string(e) }

// ErrCache is a sentinel error for all errors that originate from this package.
const ErrCache cacheError = "filesystem cache error"

// ErrNoCache is raised when the requested artifact is absent from the cache.
const ErrNoCache cacheError = "artifact not present in cache"

// Cache is a content-addressed archive store rooted at a directory on the
// local filesystem. It is append-only from the core's point of view;
// pruning is an external operation.
type Cache struct {
	root string
}

// New returns a [Cache] rooted at root. root is created lazily on first
// write.
func New(root string) *Cache {
	return &Cache{root: root}
}

// Root returns the cache's root directory.
func (c *Cache) Root() string {
	return c.root
}

// Key builds the cache-relative path "<package-name>/<archive-basename>".
func Key(packageName, archiveBasename string) string {
	return filepath.Join(packageName, archiveBasename)
}

// Path resolves a cache key to an absolute path under root.
func (c *Cache) Path(key string) string {
	return filepath.Join(c.root, key)
}

// Exists reports whether an artifact is already present at key.
func (c *Cache) Exists(key string) bool {
	_, err := os.Stat(c.Path(key))

	return err == nil
}

// Reserve creates the parent directory for key so a caller may write the
// artifact there (e.g. via a fetcher's Archive operation).
func (c *Cache) Reserve(key string) (string, error) {
	dest := c.Path(key)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("could not create cache directory for %q: %w: %w", key, err, ErrCache)
	}

	return dest, nil
}

// Destroy recursively removes the cache root.
func (c *Cache) Destroy() error {
	if err := os.RemoveAll(c.root); err != nil {
		return fmt.Errorf("could not destroy cache at %q: %w: %w", c.root, err, ErrCache)
	}

	return nil
}
