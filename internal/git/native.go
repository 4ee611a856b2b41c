package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// isGitInstalled reports whether the git command is on PATH.
func isGitInstalled() bool {
	_, err := exec.LookPath("git")

	return err == nil
}

// supportsRemoteArchive reports whether repoURL's scheme is one the native
// `git archive --remote` shortcut understands (git:// and ssh-style
// transports only; smart-HTTP servers do not implement upload-archive).
func (r *Repository) supportsRemoteArchive() bool {
	scheme := strings.ToLower(r.repoURL.Scheme)

	return scheme == "git" || scheme == "ssh"
}

// ArchiveNative streams `git archive --remote` straight to destPath,
// skipping a full clone entirely. It returns an error when the transport
// does not support it or the git binary is missing. No fetcher in this
// module calls it: the git fetcher archives its clone instead.
func (r *Repository) ArchiveNative(ctx context.Context, destPath string, commit string) (err error) {
	if !r.supportsRemoteArchive() || !isGitInstalled() {
		return fmt.Errorf("native remote archive not supported for %q: %w", r.repoURL, ErrGit)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("could not create %q: %w: %w", destPath, err, ErrGit)
	}
	defer func() { _ = out.Close() }()

	args := []string{
		"archive",
		"--format=tar.gz",
		fmt.Sprintf("--remote=%s", r.repoURL),
		commit,
	}
	r.debug("running git %s", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Stdout = out

	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return errors.Join(fmt.Errorf("git archive --remote failed: %w: %w", err, ErrGit), errors.New(stderr.String()))
	}

	return nil
}
