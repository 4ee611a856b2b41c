package pkgfetch

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/pkgfetch/pkgfetch/internal/git"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGitFetcher_PropagatesContextDefaults(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Debug = true
	ctx.VerifySSL = false

	repoURL, err := url.Parse("https://github.com/go-swagger/go-swagger")
	require.NoError(t, err)

	f := NewGitFetcher(ctx, repoURL, git.Refspec{Tag: "v0.30.5"}, nil)
	assert.True(t, f.Cachable(), "a pinned tag always produces the same tree")
	assert.True(t, f.repo.Debug, "ctx.Debug propagates to the git repository options")
	assert.True(t, f.repo.GitSSLNoVerify, "ctx.VerifySSL=false propagates as GitSSLNoVerify")
}

func TestGitFetcher_RequiresBoundStage(t *testing.T) {
	ctx := newTestContext(t)
	repoURL, _ := url.Parse("https://github.com/go-swagger/go-swagger")
	f := NewGitFetcher(ctx, repoURL, git.Refspec{Tag: "v0.30.5"}, nil)

	assert.ErrorIs(t, f.Check(t.Context()), ErrNoStage)
	assert.ErrorIs(t, f.Expand(t.Context()), ErrNoStage)
	assert.ErrorIs(t, f.Archive(t.Context(), &url.URL{}), ErrNoStage)
	assert.ErrorIs(t, f.Reset(t.Context()), ErrNoStage)
}

func TestGitFetcher_CheckIsAlwaysANoOp(t *testing.T) {
	ctx := newTestContext(t)
	repoURL, _ := url.Parse("https://github.com/go-swagger/go-swagger")
	f := NewGitFetcher(ctx, repoURL, git.Refspec{Tag: "v0.30.5"}, nil)
	f.Bind(NewStage(t.TempDir()))

	require.NoError(t, f.Check(t.Context()), "a pinned ref is its own integrity check")
}

// TestGitFetcher_ResetIsOffline confirms Reset never re-clones: it drives
// the worktree directly through [git.Repository.ResetWorktree] against a
// plain local repository with no remote, the same way
// TestRepository_ResetWorktree exercises the package below it.
func TestGitFetcher_ResetIsOffline(t *testing.T) {
	ctx := newTestContext(t)
	repoURL, _ := url.Parse("https://example.invalid/unreachable.git")
	f := NewGitFetcher(ctx, repoURL, git.Refspec{Branch: "main"}, nil)

	stage := NewStage(t.TempDir())
	require.NoError(t, stage.EnsureSourcePath())
	f.Bind(stage)

	repo, err := gogit.PlainInit(stage.SourcePath(), false)
	require.NoError(t, err)

	wt, err := repo.Worktree()
	require.NoError(t, err)

	tracked := filepath.Join(stage.SourcePath(), "tracked.txt")
	require.NoError(t, os.WriteFile(tracked, []byte("committed\n"), 0o644))
	_, err = wt.Add("tracked.txt")
	require.NoError(t, err)
	_, err = wt.Commit("initial", &gogit.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.invalid"},
	})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(tracked, []byte("dirty\n"), 0o644))

	require.NoError(t, f.Reset(t.Context()), "reset must succeed without ever contacting example.invalid")

	content, err := os.ReadFile(tracked)
	require.NoError(t, err)
	assert.Equal(t, "committed\n", string(content))
}
