package pkgfetch

import (
	"context"
	"fmt"
	"net/url"
	"os"

	"github.com/pkgfetch/pkgfetch/internal/digest"
	"github.com/pkgfetch/pkgfetch/internal/fetchurl"
	"github.com/pkgfetch/pkgfetch/internal/giturl"
	"github.com/pkgfetch/pkgfetch/internal/urlutil"
)

// RawFileFetcher retrieves a single file out of a GitHub or GitLab
// blob/tree URL via the provider's raw-content endpoint, bypassing a full
// git clone entirely. It exists for resources that name one file rather
// than a whole tree — a patch, a changelog, a single build script — where
// cloning the owning repository would be wasteful.
type RawFileFetcher struct {
	ctx     *Context
	locator giturl.Locator
	digest  *digest.Digest
	rawURL  *url.URL

	stage *Stage
}

// NewRawFileFetcher builds a [RawFileFetcher] from a GitHub/GitLab
// blob/tree style URL (e.g.
// "https://github.com/owner/repo/blob/v1.2.3/scripts/install.sh").
func NewRawFileFetcher(ctx *Context, blobURL string, dig *digest.Digest) (*RawFileFetcher, error) {
	u, err := urlutil.Parse(blobURL)
	if err != nil {
		return nil, err
	}

	_, locator, err := giturl.AutoDetect(u)
	if err != nil {
		return nil, err
	}

	raw, err := giturl.Raw(locator)
	if err != nil {
		return nil, err
	}

	return &RawFileFetcher{ctx: ctx, locator: locator, digest: dig, rawURL: raw}, nil
}

var _ Fetcher = (*RawFileFetcher)(nil)

func (f *RawFileFetcher) Bind(stage *Stage) { f.stage = stage }

func (f *RawFileFetcher) Fetch(ctx context.Context) error {
	if err := requireStage(f.stage, "fetch"); err != nil {
		return err
	}

	dest := f.stage.JoinPath(urlutil.Basename(f.rawURL))
	if _, err := os.Stat(dest); err == nil {
		f.stage.ArchiveFile = dest

		return nil
	}

	client := f.ctx.HTTPClient
	if client == nil {
		client = fetchurl.NewClient(f.ctx.VerifySSL, f.ctx.Timeout)
	}

	if _, err := fetchurl.Download(ctx, client, f.rawURL.String(), dest, fetchurl.Options{
		VerifySSL: f.ctx.VerifySSL,
		Timeout:   f.ctx.Timeout,
	}); err != nil {
		return err
	}

	f.stage.ArchiveFile = dest

	return nil
}

func (f *RawFileFetcher) Check(ctx context.Context) error {
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
		return fmt.Errorf("expected %s digest %s, got %s: %w", f.digest.Algo, f.digest.Hex, actual, ErrChecksum)
	}

	return nil
}

// Expand is a no-op: a single raw file is not an archive.
func (f *RawFileFetcher) Expand(ctx context.Context) error { return requireStage(f.stage, "expand") }

func (f *RawFileFetcher) Reset(ctx context.Context) error { return requireStage(f.stage, "reset") }

func (f *RawFileFetcher) Archive(ctx context.Context, destination *url.URL) error {
	if err := requireStage(f.stage, "archive"); err != nil {
		return err
	}
	if f.stage.ArchiveFile == "" {
		return ErrNoArchive
	}

	destPath, err := urlutil.LocalPath(destination)
	if err != nil {
		return err
	}

	return copyFile(f.stage.ArchiveFile, destPath)
}

func (f *RawFileFetcher) Cachable() bool {
	return f.digest != nil
}

func (f *RawFileFetcher) SourceID(ctx context.Context) (string, error) {
	if f.digest != nil {
		return f.digest.Hex, nil
	}

	return f.locator.Version(), nil
}
