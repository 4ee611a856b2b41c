package pkgfetch

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/pkgfetch/pkgfetch/internal/digest"
	"github.com/pkgfetch/pkgfetch/internal/s3fetch"
)

// S3Fetcher retrieves an archive object from an S3-compatible bucket.
type S3Fetcher struct {
	ctx      *Context
	location s3fetch.Location
	digest   *digest.Digest

	stage  *Stage
	client *s3fetch.Client
}

// NewS3Fetcher builds an [S3Fetcher] for loc. The client is constructed
// lazily on first use so building a fetcher never touches the network or
// the ambient AWS credential chain.
func NewS3Fetcher(ctx *Context, loc s3fetch.Location, dig *digest.Digest) *S3Fetcher {
	return &S3Fetcher{ctx: ctx, location: loc, digest: dig}
}

var _ Fetcher = (*S3Fetcher)(nil)

func (f *S3Fetcher) Bind(stage *Stage) { f.stage = stage }

func (f *S3Fetcher) ensureClient(ctx context.Context) error {
	if f.client != nil {
		return nil
	}

	client, err := s3fetch.NewClient(ctx, f.location.Region)
	if err != nil {
		return err
	}
	f.client = client

	return nil
}

func (f *S3Fetcher) Fetch(ctx context.Context) error {
	if err := requireStage(f.stage, "fetch"); err != nil {
		return err
	}
	if err := f.ensureClient(ctx); err != nil {
		return err
	}

	dest := f.stage.JoinPath(lastPathElement(f.location.Key))
	if _, err := os.Stat(dest); err == nil {
		f.stage.ArchiveFile = dest

		return nil
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("could not create %q: %w: %w", dest, err, Error)
	}
	defer func() { _ = out.Close() }()

	if err := f.client.Download(ctx, f.location, out); err != nil {
		_ = os.Remove(dest)

		return err
	}

	f.stage.ArchiveFile = dest

	return nil
}

func lastPathElement(key string) string {
	if i := strings.LastIndexByte(key, '/'); i >= 0 {
		return key[i+1:]
	}

	return key
}

func (f *S3Fetcher) Check(ctx context.Context) error {
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

func (f *S3Fetcher) Expand(ctx context.Context) error {
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

func (f *S3Fetcher) Reset(ctx context.Context) error {
	if err := requireStage(f.stage, "reset"); err != nil {
		return err
	}
	if err := os.RemoveAll(f.stage.SourcePath()); err != nil {
		return fmt.Errorf("could not clear source directory: %w: %w", err, Error)
	}

	return f.Expand(ctx)
}

// Archive uploads the staged archive back to an S3 destination, or copies
// it to a local path when destination is file://. The URL and VCS
// fetchers' Archive accepts file:// destinations only.
func (f *S3Fetcher) Archive(ctx context.Context, destination *url.URL) error {
	if err := requireStage(f.stage, "archive"); err != nil {
		return err
	}
	if f.stage.ArchiveFile == "" {
		return ErrNoArchive
	}

	if destination.Scheme == "s3" {
		return f.archiveToS3(ctx, destination)
	}

	destPath, err := localPathOrTemp(destination)
	if err != nil {
		return err
	}

	return copyFile(f.stage.ArchiveFile, destPath)
}

func (f *S3Fetcher) archiveToS3(ctx context.Context, destination *url.URL) error {
	if err := f.ensureClient(ctx); err != nil {
		return err
	}

	loc := s3fetch.Location{
		Bucket: destination.Host,
		Key:    strings.TrimPrefix(destination.Path, "/"),
		Region: f.location.Region,
	}

	in, err := os.Open(f.stage.ArchiveFile)
	if err != nil {
		return fmt.Errorf("could not open %q: %w: %w", f.stage.ArchiveFile, err, Error)
	}
	defer func() { _ = in.Close() }()

	return f.client.Upload(ctx, loc, in, "")
}

func (f *S3Fetcher) Cachable() bool {
	return f.digest != nil
}

func (f *S3Fetcher) SourceID(ctx context.Context) (string, error) {
	if f.digest == nil {
		return "", nil
	}

	return f.digest.Hex, nil
}
