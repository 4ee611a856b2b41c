package git

// Options for a git [Repository].
//
// A [Repository] always clones onto an on-disk worktree supplied by the
// caller's stage rather than choosing between an in-memory and an
// osfs-backed worktree: package staging is disk-based by construction, so
// an in-memory worktree backend would never have a caller.
type Options struct {
	ResolveExactTag   bool
	AllowPreReleases  bool
	RecurseSubModules bool
	Debug             bool

	// GetFullRepo disables the single-branch/shallow-clone optimisations
	// even when the URL scheme would otherwise support them.
	GetFullRepo bool

	// GitSSLNoVerify records config:verify_ssl=false. The clone, ref
	// listing and native archive code in this package do not read it, so
	// TLS certificates are still verified on those paths.
	GitSSLNoVerify bool
}
