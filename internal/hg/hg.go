// Package hg implements the Mercurial VCS fetcher backend by
// shelling out to the native hg binary, mirroring the approach
// internal/git/native.go uses for its own git-archive shortcut: Mercurial
// has no maintained pure-Go implementation in this dependency set, so the
// native command is the only viable transport.
package hg

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

type hgError string

func (e hgError) Error() string { return string(e) }

// ErrHg is a sentinel error for all errors that originate from this package.
const ErrHg hgError = "mercurial backend error"

// ErrNotInstalled is returned when the hg binary cannot be located.
const ErrNotInstalled hgError = "hg executable not found on PATH"

// Repository is a Mercurial repo addressed by URL.
type Repository struct {
	repoURL string
	debug   func(string, ...any)
}

// NewRepo builds a [Repository] for repoURL.
func NewRepo(repoURL string, debug bool) *Repository {
	d := func(string, ...any) {}
	if debug {
		d = func(format string, args ...any) { fmt.Printf("[hg] "+format+"\n", args...) }
	}

	return &Repository{repoURL: repoURL, debug: d}
}

// Installed reports whether the hg binary is on PATH.
func Installed() bool {
	_, err := exec.LookPath("hg")

	return err == nil
}

// Clone clones the repository into dir and updates to rev (a changeset
// hash, tag, branch or bookmark; the empty string means the tip of the
// default branch).
func (r *Repository) Clone(ctx context.Context, dir, rev string) error {
	if !Installed() {
		return ErrNotInstalled
	}

	args := []string{"clone"}
	if rev != "" {
		args = append(args, "--updaterev", rev)
	}
	args = append(args, r.repoURL, dir)

	if err := r.run(ctx, "", args...); err != nil {
		return fmt.Errorf("could not clone %q: %w: %w", r.repoURL, err, ErrHg)
	}

	return nil
}

// Reset discards all local modifications to dir and updates back to the
// currently checked-out revision, the Mercurial analogue of git's
// checkout+clean.
func (r *Repository) Reset(ctx context.Context, dir string) error {
	if err := r.run(ctx, dir, "update", "--clean", "."); err != nil {
		return fmt.Errorf("could not reset %q: %w: %w", dir, err, ErrHg)
	}
	if err := r.run(ctx, dir, "purge", "--all"); err != nil {
		return fmt.Errorf("could not purge untracked files in %q: %w: %w", dir, err, ErrHg)
	}

	return nil
}

// Identify returns the full 40-character changeset hash currently checked
// out at dir, used as the fetcher's source id.
func (r *Repository) Identify(ctx context.Context, dir string) (string, error) {
	out, err := r.output(ctx, dir, "--debug", "identify", "--id")
	if err != nil {
		return "", fmt.Errorf("could not identify %q: %w: %w", dir, err, ErrHg)
	}

	return strings.TrimSuffix(strings.TrimSpace(out), "+"), nil
}

func (r *Repository) run(ctx context.Context, dir string, args ...string) error {
	_, err := r.output(ctx, dir, args...)

	return err
}

func (r *Repository) output(ctx context.Context, dir string, args ...string) (string, error) {
	r.debug("running hg %s (dir=%s)", strings.Join(args, " "), dir)

	cmd := exec.CommandContext(ctx, "hg", args...)
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
