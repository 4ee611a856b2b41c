package pkgfetch

import (
	"context"
	"fmt"
	"net/url"
	"os"

	"github.com/pkgfetch/pkgfetch/internal/archiveutil"
	"github.com/pkgfetch/pkgfetch/internal/hg"
)

// HgFetcher clones a Mercurial repository directly onto the stage's source
// directory.
type HgFetcher struct {
	ctx  *Context
	repo *hg.Repository
	rev  string

	stage *Stage
}

// NewHgFetcher builds an [HgFetcher] for repoURL pinned at rev (a
// changeset hash, tag, branch or bookmark; empty means tip of default).
func NewHgFetcher(ctx *Context, repoURL, rev string) *HgFetcher {
	return &HgFetcher{ctx: ctx, repo: hg.NewRepo(repoURL, ctx.Debug), rev: rev}
}

var _ Fetcher = (*HgFetcher)(nil)

func (f *HgFetcher) Bind(stage *Stage) { f.stage = stage }

func (f *HgFetcher) Fetch(ctx context.Context) error {
	if err := requireStage(f.stage, "fetch"); err != nil {
		return err
	}
	if f.stage.Expanded() {
		return nil
	}
	if err := f.stage.EnsureSourcePath(); err != nil {
		return err
	}

	if err := f.repo.Clone(ctx, f.stage.SourcePath(), f.rev); err != nil {
		_ = os.RemoveAll(f.stage.SourcePath())

		return err
	}

	return nil
}

// Check has nothing to verify against: a Mercurial fetch is pinned by its
// revision, not a separate digest.
func (f *HgFetcher) Check(ctx context.Context) error { return requireStage(f.stage, "check") }

func (f *HgFetcher) Expand(ctx context.Context) error { return requireStage(f.stage, "expand") }

func (f *HgFetcher) Reset(ctx context.Context) error {
	if err := requireStage(f.stage, "reset"); err != nil {
		return err
	}

	return f.repo.Reset(ctx, f.stage.SourcePath())
}

func (f *HgFetcher) Archive(ctx context.Context, destination *url.URL) error {
	if err := requireStage(f.stage, "archive"); err != nil {
		return err
	}

	destPath, err := localPathOrTemp(destination)
	if err != nil {
		return err
	}

	return archiveutil.ArchiveTarGz(f.stage.SourcePath(), destPath, ".hg")
}

func (f *HgFetcher) Cachable() bool { return true }

func (f *HgFetcher) SourceID(ctx context.Context) (string, error) {
	if err := requireStage(f.stage, "source_id"); err != nil {
		return "", err
	}
	if !f.stage.Expanded() {
		return "", fmt.Errorf("cannot resolve source id before fetch: %w", ErrNoArchive)
	}

	return f.repo.Identify(ctx, f.stage.SourcePath())
}
