package pkgfetch

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"github.com/pkgfetch/pkgfetch/internal/archiveutil"
	"github.com/pkgfetch/pkgfetch/internal/digest"
	"github.com/pkgfetch/pkgfetch/internal/fetchurl"
	"github.com/pkgfetch/pkgfetch/internal/urlutil"
)

// URLFetcher retrieves a bit-preserving archive over HTTP(S) and expands
// it onto the stage's source directory. Fetch does not retrieve file:// or
// ftp:// URLs: the download client has no transport for them.
type URLFetcher struct {
	ctx    *Context
	url    *url.URL
	digest *digest.Digest
	noCache bool

	stage *Stage
}

// NewURLFetcher builds a [URLFetcher] for rawURL, with an optional declared
// digest (empty algo/hex means "no digest declared").
func NewURLFetcher(ctx *Context, rawURL string, dig *digest.Digest, noCache bool) (*URLFetcher, error) {
	u, err := urlutil.Parse(rawURL)
	if err != nil {
		return nil, err
	}

	return &URLFetcher{ctx: ctx, url: u, digest: dig, noCache: noCache}, nil
}

var _ Fetcher = (*URLFetcher)(nil)

func (f *URLFetcher) Bind(stage *Stage) { f.stage = stage }

func (f *URLFetcher) Fetch(ctx context.Context) error {
	if err := requireStage(f.stage, "fetch"); err != nil {
		return err
	}

	saveFilename := f.stage.SaveFilename
	if saveFilename == "" {
		saveFilename = urlutil.Basename(f.url)
	}
	dest := f.stage.JoinPath(saveFilename)

	if _, err := os.Stat(dest); err == nil {
		f.stage.ArchiveFile = dest

		return nil
	}

	client := f.ctx.HTTPClient
	if client == nil {
		client = fetchurl.NewClient(f.ctx.VerifySSL, f.ctx.Timeout)
	}

	result, err := fetchurl.Download(ctx, client, f.url.String(), dest, fetchurl.Options{
		VerifySSL: f.ctx.VerifySSL,
		Timeout:   f.ctx.Timeout,
	})
	if err != nil {
		return err
	}

	if looksLikeHTMLErrorPage(dest, result.ContentType) {
		_ = os.Remove(dest)

		return fmt.Errorf("%q served an HTML page instead of an archive: %w", f.url, ErrFailedDownload)
	}

	f.stage.ArchiveFile = dest

	return nil
}

func looksLikeHTMLErrorPage(path, contentType string) bool {
	if contentType != "" && !archiveutil.IsArchive(path) {
		// an explicit content type on a filename that is not a recognised
		// archive is the caller's problem, not ours to second-guess.
		return false
	}

	head := make([]byte, 512)
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()

	n, _ := f.Read(head)

	return archiveutil.SniffContentType(head[:n])
}

func (f *URLFetcher) Check(ctx context.Context) error {
	if err := requireStage(f.stage, "check"); err != nil {
		return err
	}
	if f.stage.ArchiveFile == "" {
		return ErrNoArchive
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

func (f *URLFetcher) Expand(ctx context.Context) error {
	if err := requireStage(f.stage, "expand"); err != nil {
		return err
	}
	if f.stage.ArchiveFile == "" {
		return ErrNoArchive
	}
	if f.stage.Expanded() {
		return nil
	}

	if err := f.stage.EnsureSourcePath(); err != nil {
		return err
	}

	return explodeArchive(f.stage)
}

// explodeArchive extracts stage.ArchiveFile into a scratch directory, then
// applies the single-top-directory rule: when the archive
// contains exactly one top-level directory, its contents are promoted to
// be the source directory itself, rather than leaving a redundant nesting
// level.
func explodeArchive(stage *Stage) error {
	scratch := stage.JoinPath("expand-tmp")
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		return fmt.Errorf("could not create scratch expansion directory: %w: %w", err, Error)
	}
	defer func() { _ = os.RemoveAll(scratch) }()

	top, err := archiveutil.Extract(stage.ArchiveFile, scratch)
	if err != nil {
		return err
	}

	if len(top) == 1 {
		single := filepath.Join(scratch, top[0])
		if info, statErr := os.Stat(single); statErr == nil && info.IsDir() {
			stage.Srcdir = top[0]

			return moveContents(single, stage.SourcePath())
		}
	}

	return moveContents(scratch, stage.SourcePath())
}

func moveContents(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("could not list %q: %w: %w", src, err, Error)
	}

	for _, entry := range entries {
		from := filepath.Join(src, entry.Name())
		to := filepath.Join(dst, entry.Name())
		if err := os.Rename(from, to); err != nil {
			return fmt.Errorf("could not move %q to %q: %w: %w", from, to, err, Error)
		}
	}

	return nil
}

func (f *URLFetcher) Reset(ctx context.Context) error {
	if err := requireStage(f.stage, "reset"); err != nil {
		return err
	}

	if err := os.RemoveAll(f.stage.SourcePath()); err != nil {
		return fmt.Errorf("could not clear source directory: %w: %w", err, Error)
	}

	return f.Expand(ctx)
}

func (f *URLFetcher) Archive(ctx context.Context, destination *url.URL) error {
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

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("could not create parent directory for %q: %w: %w", dst, err, Error)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("could not open %q: %w: %w", src, err, Error)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("could not create %q: %w: %w", dst, err, Error)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("could not copy %q to %q: %w: %w", src, dst, err, Error)
	}

	return nil
}

func (f *URLFetcher) Cachable() bool {
	return !f.noCache && f.ctx.Cache != nil && f.digest != nil
}

func (f *URLFetcher) SourceID(ctx context.Context) (string, error) {
	if f.digest == nil {
		return "", nil
	}

	return f.digest.Hex, nil
}
