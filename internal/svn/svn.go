// Package svn implements the Subversion VCS fetcher backend by
// shelling out to the native svn binary, following the same os/exec
// pattern internal/hg uses: neither VCS has a maintained pure-Go client in
// this dependency set.
package svn

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

type svnError string

func (e svnError) Error() string { return string(e) }

// ErrSvn is a sentinel error for all errors that originate from this package.
const ErrSvn svnError = "subversion backend error"

// ErrNotInstalled is returned when the svn binary cannot be located.
const ErrNotInstalled svnError = "svn executable not found on PATH"

// Repository is a Subversion repo (or a sub-tree thereof) addressed by URL.
type Repository struct {
	repoURL string
	debug   func(string, ...any)
}

// NewRepo builds a [Repository] for repoURL.
func NewRepo(repoURL string, debug bool) *Repository {
	d := func(string, ...any) {}
	if debug {
		d = func(format string, args ...any) { fmt.Printf("[svn] "+format+"\n", args...) }
	}

	return &Repository{repoURL: repoURL, debug: d}
}

// Installed reports whether the svn binary is on PATH.
func Installed() bool {
	_, err := exec.LookPath("svn")

	return err == nil
}

// Checkout checks out the repository into dir at the given revision (an
// integer revision number as a string, or "HEAD").
func (r *Repository) Checkout(ctx context.Context, dir string, revision string) error {
	if !Installed() {
		return ErrNotInstalled
	}

	if revision == "" {
		revision = "HEAD"
	}

	args := []string{"checkout", "--revision", revision, "--non-interactive", "--trust-server-cert", r.repoURL, dir}

	if _, err := r.output(ctx, "", args...); err != nil {
		return fmt.Errorf("could not checkout %q: %w: %w", r.repoURL, err, ErrSvn)
	}

	return nil
}

// Reset reverts local modifications and removes unversioned files from
// dir, the svn analogue of git's checkout+clean.
func (r *Repository) Reset(ctx context.Context, dir string) error {
	if _, err := r.output(ctx, dir, "revert", "--recursive", "."); err != nil {
		return fmt.Errorf("could not revert %q: %w: %w", dir, err, ErrSvn)
	}

	out, err := r.output(ctx, dir, "status", "--no-ignore")
	if err != nil {
		return fmt.Errorf("could not list unversioned files in %q: %w: %w", dir, err, ErrSvn)
	}

	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		if line[0] != '?' && line[0] != 'I' {
			continue
		}

		path := strings.TrimSpace(line[8:])
		if path == "" {
			continue
		}

		if _, err := r.output(ctx, dir, "remove", "--force", path); err != nil {
			r.debug("could not remove unversioned path %q: %v", path, err)
		}
	}

	return nil
}

// Revision returns the working copy's current revision number at dir,
// used as the fetcher's source id.
func (r *Repository) Revision(ctx context.Context, dir string) (int64, error) {
	out, err := r.output(ctx, dir, "info", "--show-item", "revision")
	if err != nil {
		return 0, fmt.Errorf("could not resolve revision of %q: %w: %w", dir, err, ErrSvn)
	}

	rev, err := strconv.ParseInt(strings.TrimSpace(out), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected revision output %q: %w: %w", out, err, ErrSvn)
	}

	return rev, nil
}

func (r *Repository) output(ctx context.Context, dir string, args ...string) (string, error) {
	r.debug("running svn %s (dir=%s)", strings.Join(args, " "), dir)

	cmd := exec.CommandContext(ctx, "svn", args...)
	cmd.Dir = dir

	var stderr strings.Builder
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if stderr.Len() > 0 {
			return "", errors.Join(err, errors.New(stderr.String()))
		}

		return "", err
	}

	return string(out), nil
}
