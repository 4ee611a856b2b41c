// SPDX-FileCopyrightText: Copyright 2025 Frédéric BIDON
// SPDX-License-Identifier: Apache-2.0

package pkgfetch

import (
	"fmt"
	"os"
	"path/filepath"
)

// Stage owns a scratch directory tree into which a bound [Fetcher] deposits
// bytes.
//
// A stage is created by the invoker before any fetcher operation, passed to
// exactly one fetcher via its Bind method, and destroyed by the invoker
// after use. A fetcher never creates or destroys its own stage, and two
// fetchers must never share one: the stage directory is exclusively owned
// by the fetcher bound to it for the duration of an
// operation).
type Stage struct {
	path string

	// ArchiveFile is the path to the downloaded artifact, if any.
	ArchiveFile string

	// SaveFilename is the target filename under path/ that a download
	// must land in.
	SaveFilename string

	// Srcdir remembers the name of the top-level directory inside a
	// tarball, so it can be restored when re-archiving.
	Srcdir string
}

// NewStage creates a stage rooted at dir. The caller is responsible for
// creating dir beforehand and removing it once the stage is no longer
// needed.
func NewStage(dir string) *Stage {
	return &Stage{path: dir}
}

// Path is the root of the scratch directory tree.
func (s *Stage) Path() string {
	return s.path
}

// SourcePath is the canonical unpacked-source directory.
func (s *Stage) SourcePath() string {
	return filepath.Join(s.path, "source")
}

// Expanded reports whether SourcePath exists and is non-empty.
func (s *Stage) Expanded() bool {
	entries, err := os.ReadDir(s.SourcePath())
	if err != nil {
		return false
	}

	return len(entries) > 0
}

// EnsureSourcePath creates the source directory if it does not exist yet.
func (s *Stage) EnsureSourcePath() error {
	if err := os.MkdirAll(s.SourcePath(), 0o755); err != nil {
		return fmt.Errorf("could not create source directory: %w: %w", err, Error)
	}

	return nil
}

// JoinPath joins a relative path under the stage root.
func (s *Stage) JoinPath(elem ...string) string {
	return filepath.Join(append([]string{s.path}, elem...)...)
}
