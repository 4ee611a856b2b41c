package pkgfetch

import (
	"context"
	"fmt"
	"net/url"
	"os"

	"github.com/pkgfetch/pkgfetch/internal/archiveutil"
	"github.com/pkgfetch/pkgfetch/internal/git"
)

// GitFetcher clones a git repository directly onto the stage's source
// directory. Expand is a no-op: Fetch already leaves a checked
// out worktree in place.
type GitFetcher struct {
	ctx  *Context
	repo *git.Repository
	ref  git.Refspec

	stage *Stage
	hash  string
}

// NewGitFetcher builds a [GitFetcher] for repoURL pinned at ref.
func NewGitFetcher(ctx *Context, repoURL *url.URL, ref git.Refspec, opts *git.Options) *GitFetcher {
	if opts == nil {
		opts = &git.Options{}
	}
	opts.Debug = opts.Debug || ctx.Debug
	opts.GitSSLNoVerify = opts.GitSSLNoVerify || !ctx.VerifySSL

	return &GitFetcher{ctx: ctx, repo: git.NewRepo(repoURL, opts), ref: ref}
}

var _ Fetcher = (*GitFetcher)(nil)

func (f *GitFetcher) Bind(stage *Stage) { f.stage = stage }

func (f *GitFetcher) Fetch(ctx context.Context) error {
	if err := requireStage(f.stage, "fetch"); err != nil {
		return err
	}

	if f.stage.Expanded() {
		return nil
	}

	if err := f.stage.EnsureSourcePath(); err != nil {
		return err
	}

	f.repo.LogCapabilities(ctx)

	hash, err := f.repo.Clone(ctx, f.stage.SourcePath(), f.ref)
	if err != nil {
		_ = os.RemoveAll(f.stage.SourcePath())

		return err
	}

	f.hash = hash.String()

	return nil
}

// Check has nothing to verify against: a git fetch is authenticated by the
// pinned commit hash itself, not a separate digest.
func (f *GitFetcher) Check(ctx context.Context) error {
	return requireStage(f.stage, "check")
}

// Expand is a no-op: [Fetch] already produced a checked-out worktree.
func (f *GitFetcher) Expand(ctx context.Context) error {
	return requireStage(f.stage, "expand")
}

// Reset reverts the worktree to its checked-out state and discards local
// modifications, entirely offline: no re-clone, no network access.
func (f *GitFetcher) Reset(ctx context.Context) error {
	if err := requireStage(f.stage, "reset"); err != nil {
		return err
	}

	if err := f.repo.ResetWorktree(f.stage.SourcePath()); err != nil {
		return fmt.Errorf("could not reset worktree: %w: %w", err, Error)
	}

	return nil
}

func (f *GitFetcher) Archive(ctx context.Context, destination *url.URL) error {
	if err := requireStage(f.stage, "archive"); err != nil {
		return err
	}

	destPath, err := localPathOrTemp(destination)
	if err != nil {
		return err
	}

	return archiveutil.ArchiveTarGz(f.stage.SourcePath(), destPath, ".git")
}

// Cachable is true: a pinned commit, tag or resolved branch head always
// produces the same tree.
func (f *GitFetcher) Cachable() bool { return true }

func (f *GitFetcher) SourceID(ctx context.Context) (string, error) {
	if f.hash != "" {
		return f.hash, nil
	}

	return f.repo.GetSourceID(ctx, f.ref.String())
}
