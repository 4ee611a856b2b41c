// SPDX-FileCopyrightText: Copyright 2025 Frédéric BIDON
// SPDX-License-Identifier: Apache-2.0

package pkgfetch

type errFetch string

func (e errFetch) Error() string {
	return string(e)
}

// Error is a sentinel error for all errors that originate from this package.
//
// Use errors.Is(err, pkgfetch.Error) to recognize any failure raised by this
// module, and the more specific sentinels below to discriminate the exit-code
// taxonomy surfaced to callers.
const Error errFetch = "pkgfetch error"

const (
	// ErrFailedDownload reports a transport-level failure: network error,
	// HTTP status >= 400, or TLS verification failure. Retryable at the
	// mirror level.
	ErrFailedDownload errFetch = "failed download"

	// ErrChecksum reports a digest mismatch between the declared and the
	// computed hash of a downloaded artifact.
	ErrChecksum errFetch = "checksum mismatch"

	// ErrNoDigest is raised by check() when no digest was declared for the
	// fetcher and the caller did not tolerate that absence.
	ErrNoDigest errFetch = "no digest to verify against"

	// ErrNoStage is raised when a fetcher operation runs before bind(stage).
	ErrNoStage errFetch = "fetcher has no bound stage"

	// ErrNoArchive is raised by expand()/reset() when no archive file is
	// present in the stage.
	ErrNoArchive errFetch = "no archive present in stage"

	// ErrNoCache is raised by the cache-URL fetcher when the requested
	// artifact is absent from the filesystem cache.
	ErrNoCache errFetch = "artifact not present in cache"

	// ErrFetcherConflict reports a configuration impossibility: more than
	// one VCS attribute at the package top level, or a version attribute
	// bag that names a key outside the selected backend's recognised set.
	ErrFetcherConflict errFetch = "conflicting fetcher attributes"

	// ErrInvalidArgs reports that no backend in the registry matches the
	// attributes supplied for a package version.
	ErrInvalidArgs errFetch = "no backend matches the supplied attributes"

	// ErrExtrapolationError reports that a version absent from the
	// package's version table could not be extrapolated via
	// Package.URLForVersion.
	ErrExtrapolationError errFetch = "could not extrapolate a URL for this version"

	// ErrNoNetworkConnection reports that the web spider could not reach
	// its root URL and the caller asked to fail loudly on that condition.
	ErrNoNetworkConnection errFetch = "no network connection"
)
