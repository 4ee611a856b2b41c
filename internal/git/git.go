// Package git implements the git VCS fetcher backend: clone,
// checkout, reset and archive, built on go-git so this module carries no
// hard runtime dependency on the git binary for the common path. The
// native git command, when present, is used opportunistically for
// `git archive --remote` (native.go).
package git

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/davecgh/go-spew/spew"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
)

type gitError string

func (e gitError) Error() string { return string(e) }

// ErrGit is a sentinel error for all errors that originate from this package.
const ErrGit gitError = "git backend error"

// Refspec is the caller's pin: exactly one of Commit, Tag or Branch may be
// set. A zero Refspec resolves to HEAD of the default branch.
type Refspec struct {
	Commit string
	Tag    string
	Branch string
}

func (r Refspec) String() string {
	switch {
	case r.Commit != "":
		return r.Commit
	case r.Tag != "":
		return r.Tag
	case r.Branch != "":
		return r.Branch
	default:
		return HEAD
	}
}

// Repository is a git repo addressed by URL, always materialised onto an
// on-disk worktree handed to it by the caller (the fetcher's stage).
//
// There is no in-memory (memfs) code path: package staging is disk-based
// by construction, so a Repository only ever clones through
// [gogit.PlainClone] onto a caller-supplied directory.
type Repository struct {
	*Options

	repoURL *url.URL
	debug   func(string, ...any)
}

// NewRepo builds a [Repository] for repoURL. No network activity happens
// until [Repository.Clone] or [Repository.GetSourceID] is called.
func NewRepo(repoURL *url.URL, opts *Options) *Repository {
	debug := noDebug
	if opts != nil && opts.Debug {
		debug = func(format string, args ...any) { fmt.Printf("[git] "+format+"\n", args...) }
	}

	return &Repository{Options: opts, repoURL: repoURL, debug: debug}
}

func noDebug(string, ...any) {}

// ProtocolSupportsShallowClone reports whether the repository's transport
// allows a shallow clone: every scheme except bare "http" and
// local filesystem paths, which go-git cannot shallow-clone reliably.
func (r *Repository) ProtocolSupportsShallowClone() bool {
	scheme := strings.ToLower(r.repoURL.Scheme)

	return scheme != "http" && scheme != "" && scheme != "file"
}

// Clone clones the repository into dir (an existing, typically empty
// directory such as stage.SourcePath()) at the given ref, and returns the
// resolved commit hash.
func (r *Repository) Clone(ctx context.Context, dir string, ref Refspec) (plumbing.Hash, error) {
	if r.repoURL == nil || r.repoURL.String() == "" {
		return plumbing.ZeroHash, fmt.Errorf("cannot clone with an empty URL: %w", ErrGit)
	}

	getFullRepo := r.Options != nil && r.Options.GetFullRepo

	if ref.Commit != "" {
		return r.cloneAtCommit(ctx, dir, ref.Commit)
	}

	return r.cloneAtRef(ctx, dir, ref, getFullRepo)
}

// cloneAtCommit clones full history, since an arbitrary commit is not in
// general reachable from a shallow fetch of the default branch.
func (r *Repository) cloneAtCommit(ctx context.Context, dir, commit string) (plumbing.Hash, error) {
	repo, err := gogit.PlainCloneContext(ctx, dir, false, &gogit.CloneOptions{
		URL:               r.repoURL.String(),
		SingleBranch:      false,
		Tags:              gogit.AllTags,
		RecurseSubmodules: r.submoduleDepth(),
	})
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("could not clone %q: %w: %w", r.repoURL, err, ErrGit)
	}

	hash := plumbing.NewHash(commit)

	wt, err := repo.Worktree()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("could not open worktree: %w: %w", err, ErrGit)
	}

	if err := wt.Checkout(&gogit.CheckoutOptions{Hash: hash, Force: true}); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("could not checkout commit %q: %w: %w", commit, err, ErrGit)
	}

	return hash, nil
}

func (r *Repository) cloneAtRef(ctx context.Context, dir string, ref Refspec, getFullRepo bool) (plumbing.Hash, error) {
	selected, err := r.resolveRef(ctx, ref.String())
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("could not resolve ref %q: %w", ref, err)
	}

	shallow := !getFullRepo && r.ProtocolSupportsShallowClone()

	cloneOpts := &gogit.CloneOptions{
		URL:               r.repoURL.String(),
		ReferenceName:     selected.Name(),
		SingleBranch:      !getFullRepo,
		RecurseSubmodules: r.submoduleDepth(),
	}
	if shallow {
		cloneOpts.Depth = 1
	}

	r.debug("cloning %s at %s (shallow=%v)", r.repoURL, selected.Name(), shallow)

	repo, err := gogit.PlainCloneContext(ctx, dir, false, cloneOpts)
	if err != nil {
		// some transports are picky about ReferenceName + SingleBranch
		// together for annotated tags; retry with a full clone and an
		// explicit checkout by hash.
		cloneOpts.ReferenceName = ""
		cloneOpts.SingleBranch = false
		cloneOpts.Depth = 0
		repo, err = gogit.PlainCloneContext(ctx, dir, false, cloneOpts)
	}
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("could not clone %q at %q: %w: %w", r.repoURL, ref, err, ErrGit)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("could not open worktree: %w: %w", err, ErrGit)
	}
	if err := wt.Checkout(&gogit.CheckoutOptions{Hash: selected.Hash(), Force: true}); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("could not checkout %q: %w: %w", selected.Name(), err, ErrGit)
	}

	return selected.Hash(), nil
}

func (r *Repository) submoduleDepth() gogit.SubmoduleRescursivity {
	if r.Options != nil && r.Options.RecurseSubModules {
		return gogit.SubmoduleRecursive
	}

	return gogit.NoRecurseSubmodules
}

// GetSourceID resolves ref to a commit SHA without cloning, so a branch pin
// gets a stable source id ("for a branch alone, source id resolution
// performs a remote list").
func (r *Repository) GetSourceID(ctx context.Context, ref string) (string, error) {
	selected, err := r.resolveRef(ctx, ref)
	if err != nil {
		return "", err
	}

	return selected.Hash().String(), nil
}

func (r *Repository) resolveRef(ctx context.Context, ref string) (*Ref, error) {
	remote := gogit.NewRemote(nil, &config.RemoteConfig{
		Name: "origin",
		URLs: []string{r.repoURL.String()},
	})

	allRefs, err := remote.ListContext(ctx, &gogit.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("could not list remote refs for %q: %w: %w", r.repoURL, err, ErrGit)
	}

	return pickRef(allRefs, ref, r.Options)
}

// ResetWorktree reverts dir (an already-cloned worktree, such as
// stage.SourcePath()) to HEAD and discards untracked files, the local
// equivalent of `git checkout . && git clean -f`. Unlike [Repository.Clone]
// this touches no network: it opens the repository already on disk.
func (r *Repository) ResetWorktree(dir string) error {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return fmt.Errorf("could not open worktree at %q: %w: %w", dir, err, ErrGit)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("could not open worktree at %q: %w: %w", dir, err, ErrGit)
	}

	head, err := repo.Head()
	if err != nil {
		return fmt.Errorf("could not resolve HEAD in %q: %w: %w", dir, err, ErrGit)
	}

	if err := wt.Checkout(&gogit.CheckoutOptions{Hash: head.Hash(), Force: true}); err != nil {
		return fmt.Errorf("could not checkout HEAD in %q: %w: %w", dir, err, ErrGit)
	}

	if err := wt.Clean(&gogit.CleanOptions{Dir: false}); err != nil {
		return fmt.Errorf("could not clean %q: %w: %w", dir, err, ErrGit)
	}

	return nil
}

// LogCapabilities dumps the remote's advertised protocol capabilities when
// debug is enabled, as a troubleshooting aid run only on request rather
// than unconditionally on every fetch.
func (r *Repository) LogCapabilities(ctx context.Context) {
	if r.Options == nil || !r.Options.Debug {
		return
	}

	caps, err := getRemoteCapabilities(ctx, &gogit.FetchOptions{RemoteURL: r.repoURL.String()})
	if err != nil {
		r.debug("could not retrieve remote capabilities: %v", err)

		return
	}

	r.debug("remote capabilities: %s", spew.Sdump(caps))
}
