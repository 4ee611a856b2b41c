package pkgfetch

import (
	"context"
	"fmt"
	"net/url"
	"os"

	"github.com/pkgfetch/pkgfetch/internal/digest"
	"github.com/pkgfetch/pkgfetch/internal/fetchcache"
	"github.com/pkgfetch/pkgfetch/internal/urlutil"
)

// CacheURLFetcher serves an archive straight out of the content-addressed
// mirror cache, falling back to an underlying [URLFetcher] on a
// cache miss and populating the cache afterwards.
type CacheURLFetcher struct {
	ctx             *Context
	packageName     string
	archiveBasename string
	digest          *digest.Digest
	fallback        Fetcher

	stage      *Stage
	cacheKey   string
	fromCache  bool
}

// NewCacheURLFetcher builds a [CacheURLFetcher]. fallback may be nil when
// the caller wants cache-or-fail semantics only.
func NewCacheURLFetcher(ctx *Context, packageName, archiveBasename string, dig *digest.Digest, fallback Fetcher) *CacheURLFetcher {
	return &CacheURLFetcher{
		ctx:             ctx,
		packageName:     packageName,
		archiveBasename: archiveBasename,
		digest:          dig,
		fallback:        fallback,
		cacheKey:        fetchcache.Key(packageName, archiveBasename),
	}
}

var _ Fetcher = (*CacheURLFetcher)(nil)

func (f *CacheURLFetcher) Bind(stage *Stage) {
	f.stage = stage
	if f.fallback != nil {
		f.fallback.Bind(stage)
	}
}

func (f *CacheURLFetcher) Fetch(ctx context.Context) error {
	if err := requireStage(f.stage, "fetch"); err != nil {
		return err
	}

	if f.ctx.Cache != nil && f.ctx.Cache.Exists(f.cacheKey) {
		return f.linkFromCache()
	}

	if f.fallback == nil {
		return fmt.Errorf("%q: %w", f.cacheKey, ErrNoCache)
	}

	if err := f.fallback.Fetch(ctx); err != nil {
		return err
	}
	f.stage.ArchiveFile = f.stageArchiveFile()
	f.fromCache = false

	return f.populateCache()
}

func (f *CacheURLFetcher) linkFromCache() error {
	cachePath := f.ctx.Cache.Path(f.cacheKey)
	linkPath := f.stage.JoinPath(f.archiveBasename)

	if _, err := os.Lstat(linkPath); err == nil {
		_ = os.Remove(linkPath)
	}

	if err := os.Symlink(cachePath, linkPath); err != nil {
		return fmt.Errorf("could not link cached archive %q into stage: %w: %w", f.cacheKey, err, ErrNoCache)
	}

	f.stage.ArchiveFile = linkPath
	f.fromCache = true

	return nil
}

func (f *CacheURLFetcher) stageArchiveFile() string {
	if f.stage.ArchiveFile != "" {
		return f.stage.ArchiveFile
	}

	return f.stage.JoinPath(f.archiveBasename)
}

// populateCache copies a freshly fetched archive into the content-addressed
// cache so future fetches of the same key hit [linkFromCache] instead.
func (f *CacheURLFetcher) populateCache() error {
	if f.ctx.Cache == nil {
		return nil
	}

	dest, err := f.ctx.Cache.Reserve(f.cacheKey)
	if err != nil {
		return err
	}

	return copyFile(f.stage.ArchiveFile, dest)
}

func (f *CacheURLFetcher) Check(ctx context.Context) error {
	if err := requireStage(f.stage, "check"); err != nil {
		return err
	}
	if f.digest == nil {
		return ErrNoDigest
	}

	ok, actual, err := digest.Verify(f.stage.ArchiveFile, *f.digest)
	if err != nil {
		return err
	}
	if !ok {
		if f.fromCache {
			// drop the stage's link to the corrupt cache entry so the
			// stage no longer points at it; the cache entry itself stays.
			linkPath := f.stage.JoinPath(f.archiveBasename)
			_ = os.Remove(linkPath)
		}

		return fmt.Errorf("expected %s digest %s, got %s: %w", f.digest.Algo, f.digest.Hex, actual, ErrChecksum)
	}

	return nil
}

func (f *CacheURLFetcher) Expand(ctx context.Context) error {
	if f.fallback != nil {
		return f.fallback.Expand(ctx)
	}
	if err := requireStage(f.stage, "expand"); err != nil {
		return err
	}
	if f.stage.Expanded() {
		return nil
	}
	if err := f.stage.EnsureSourcePath(); err != nil {
		return err
	}

	return explodeArchive(f.stage)
}

func (f *CacheURLFetcher) Reset(ctx context.Context) error {
	if err := requireStage(f.stage, "reset"); err != nil {
		return err
	}
	if err := os.RemoveAll(f.stage.SourcePath()); err != nil {
		return fmt.Errorf("could not clear source directory: %w: %w", err, Error)
	}

	return f.Expand(ctx)
}

func (f *CacheURLFetcher) Archive(ctx context.Context, destination *url.URL) error {
	if f.fallback != nil {
		return f.fallback.Archive(ctx, destination)
	}
	if err := requireStage(f.stage, "archive"); err != nil {
		return err
	}

	to, err := urlutil.LocalPath(destination)
	if err != nil {
		return err
	}

	return copyFile(f.stage.ArchiveFile, to)
}

func (f *CacheURLFetcher) Cachable() bool {
	return true
}

func (f *CacheURLFetcher) SourceID(ctx context.Context) (string, error) {
	if f.digest == nil {
		return "", nil
	}

	return f.digest.Hex, nil
}
