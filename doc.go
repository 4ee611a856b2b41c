// SPDX-FileCopyrightText: Copyright 2025 Frédéric BIDON
// SPDX-License-Identifier: Apache-2.0

// Package pkgfetch is the source-acquisition core of a package manager.
//
// Given a declarative description of a package version — a URL, a VCS
// location and revision, or both — it locates, downloads, verifies,
// unpacks, caches and mirrors the bytes that constitute that version's
// source. Downstream build logic sees one staged source directory
// regardless of origin.
//
// # Fetchers
//
// A [Fetcher] is a tagged variant over one shared contract: bind a [Stage],
// then drive it through fetch, check, expand, reset and archive. Concrete
// backends are URL archives (http/https), S3 objects, and VCS
// checkouts (git, mercurial, subversion, go modules, and single raw files
// hosted on github/gitlab). [ForPackageVersion] picks exactly one backend
// from a package's declared attributes, walking an ordered registry of
// backend descriptors.
//
// # Caching and mirrors
//
// A [github.com/pkgfetch/pkgfetch/internal/fetchcache.Cache] stores
// backend-produced archives under a content-addressed layout so repeat
// fetches of the same version are local. A [MirrorSet]
// enumerates user-configured upstream mirrors in priority order; the
// fetchers in this package do not iterate over it themselves.
//
// # Concurrency
//
// The fetcher lifecycle is synchronous and blocking: no operation
// suspends cooperatively, and a [Stage] is exclusively owned by whichever
// fetcher is bound to it. The only component with internal parallelism is
// the [internal/spider] link crawler, which runs a bounded worker pool per
// BFS depth level.
//
// # What this package does not do
//
// It does not parse build recipes, resolve dependency graphs, run builds,
// or manage installed prefixes, and it does not attempt cryptographic
// provenance beyond content-hash verification of downloaded artifacts.
package pkgfetch
