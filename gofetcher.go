package pkgfetch

import (
	"context"
	"fmt"
	"net/url"
	"os"

	"github.com/pkgfetch/pkgfetch/internal/gomodfetch"
	"github.com/pkgfetch/pkgfetch/internal/urlutil"
)

// GoFetcher retrieves a module zip from a Go module proxy. The
// downloaded zip always contains exactly one top-level directory named
// "<module>@<version>", so Expand applies the same single-top-directory
// promotion the URL fetcher uses for ordinary tarballs.
type GoFetcher struct {
	ctx        *Context
	client     *gomodfetch.Client
	modulePath string
	version    string

	stage        *Stage
	resolvedInfo gomodfetch.Info
}

// NewGoFetcher builds a [GoFetcher] for modulePath@version, querying proxy
// (gomodfetch.DefaultProxy when empty).
func NewGoFetcher(ctx *Context, modulePath, version, proxy string) (*GoFetcher, error) {
	if err := gomodfetch.ValidatePath(modulePath); err != nil {
		return nil, err
	}

	client := gomodfetch.NewClient(ctx.HTTPClient, proxy)

	return &GoFetcher{ctx: ctx, client: client, modulePath: modulePath, version: version}, nil
}

var _ Fetcher = (*GoFetcher)(nil)

func (f *GoFetcher) Bind(stage *Stage) { f.stage = stage }

func (f *GoFetcher) Fetch(ctx context.Context) error {
	if err := requireStage(f.stage, "fetch"); err != nil {
		return err
	}

	dest := f.stage.JoinPath("module.zip")
	if _, err := os.Stat(dest); err == nil {
		f.stage.ArchiveFile = dest

		return nil
	}

	info, err := f.client.Resolve(ctx, f.modulePath, f.version)
	if err != nil {
		return err
	}
	f.resolvedInfo = info

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("could not create %q: %w: %w", dest, err, Error)
	}
	defer func() { _ = out.Close() }()

	if err := f.client.DownloadZip(ctx, f.modulePath, info.Version, out); err != nil {
		_ = os.Remove(dest)

		return err
	}

	f.stage.ArchiveFile = dest

	return nil
}

// Check has nothing to verify: the module proxy's own TLS and checksum
// database (GONOSUMCHECK-gated, out of scope here) are its integrity
// mechanism, not a declared package-level digest.
func (f *GoFetcher) Check(ctx context.Context) error { return requireStage(f.stage, "check") }

func (f *GoFetcher) Expand(ctx context.Context) error {
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

func (f *GoFetcher) Reset(ctx context.Context) error {
	if err := requireStage(f.stage, "reset"); err != nil {
		return err
	}
	if err := os.RemoveAll(f.stage.SourcePath()); err != nil {
		return fmt.Errorf("could not clear source directory: %w: %w", err, Error)
	}

	return f.Expand(ctx)
}

func (f *GoFetcher) Archive(ctx context.Context, destination *url.URL) error {
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

// Cachable is true: a resolved module version's zip content is immutable
// by the proxy protocol's own guarantees.
func (f *GoFetcher) Cachable() bool { return true }

func (f *GoFetcher) SourceID(ctx context.Context) (string, error) {
	if f.resolvedInfo.Version != "" {
		return f.modulePath + "@" + f.resolvedInfo.Version, nil
	}

	info, err := f.client.Resolve(ctx, f.modulePath, f.version)
	if err != nil {
		return "", err
	}

	return f.modulePath + "@" + info.Version, nil
}
