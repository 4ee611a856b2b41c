package pkgfetch

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"

	"github.com/pkgfetch/pkgfetch/internal/archiveutil"
	"github.com/pkgfetch/pkgfetch/internal/svn"
)

// SvnFetcher checks out a Subversion URL directly onto the stage's source
// directory.
type SvnFetcher struct {
	ctx      *Context
	repo     *svn.Repository
	revision string

	stage *Stage
}

// NewSvnFetcher builds an [SvnFetcher] for repoURL pinned at revision (an
// integer revision number as a string, or empty/"HEAD").
func NewSvnFetcher(ctx *Context, repoURL, revision string) *SvnFetcher {
	return &SvnFetcher{ctx: ctx, repo: svn.NewRepo(repoURL, ctx.Debug), revision: revision}
}

var _ Fetcher = (*SvnFetcher)(nil)

func (f *SvnFetcher) Bind(stage *Stage) { f.stage = stage }

func (f *SvnFetcher) Fetch(ctx context.Context) error {
	if err := requireStage(f.stage, "fetch"); err != nil {
		return err
	}
	if f.stage.Expanded() {
		return nil
	}
	if err := f.stage.EnsureSourcePath(); err != nil {
		return err
	}

	if err := f.repo.Checkout(ctx, f.stage.SourcePath(), f.revision); err != nil {
		_ = os.RemoveAll(f.stage.SourcePath())

		return err
	}

	return nil
}

// Check has nothing to verify against: a Subversion fetch is pinned by its
// revision, not a separate digest.
func (f *SvnFetcher) Check(ctx context.Context) error { return requireStage(f.stage, "check") }

func (f *SvnFetcher) Expand(ctx context.Context) error { return requireStage(f.stage, "expand") }

func (f *SvnFetcher) Reset(ctx context.Context) error {
	if err := requireStage(f.stage, "reset"); err != nil {
		return err
	}

	return f.repo.Reset(ctx, f.stage.SourcePath())
}

func (f *SvnFetcher) Archive(ctx context.Context, destination *url.URL) error {
	if err := requireStage(f.stage, "archive"); err != nil {
		return err
	}

	destPath, err := localPathOrTemp(destination)
	if err != nil {
		return err
	}

	return archiveutil.ArchiveTarGz(f.stage.SourcePath(), destPath, ".svn")
}

func (f *SvnFetcher) Cachable() bool { return true }

func (f *SvnFetcher) SourceID(ctx context.Context) (string, error) {
	if err := requireStage(f.stage, "source_id"); err != nil {
		return "", err
	}
	if !f.stage.Expanded() {
		return "", fmt.Errorf("cannot resolve source id before fetch: %w", ErrNoArchive)
	}

	rev, err := f.repo.Revision(ctx, f.stage.SourcePath())
	if err != nil {
		return "", err
	}

	return strconv.FormatInt(rev, 10), nil
}
