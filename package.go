// SPDX-FileCopyrightText: Copyright 2025 Frédéric BIDON
// SPDX-License-Identifier: Apache-2.0

package pkgfetch

import "net/url"

// Version is a dotted/hyphenated alphanumeric token identifying one
// release of a package. This core only requires equality and hashing; the
// total order used to compare versions lives in the (out of scope) package
// repository.
type Version string

// AttributeBag is a mapping of option name to value, as declared for one
// package version (e.g. {"sha256": "...", "url": "..."}).
type AttributeBag map[string]string

// Resource bundles an attribute bag for an additional fetch associated
// with a package version (e.g. a vendored dependency fetched alongside the
// primary source). Resources compose into a [CompositeFetcher].
type Resource struct {
	Name  string
	Attrs AttributeBag
}

// Package is the narrow interface this core consumes from the (out of
// scope) package repository.
type Package interface {
	// Name is the lowercase package identifier.
	Name() string

	// HasCode reports whether this package has any source to fetch at
	// all. A package with HasCode() == false always selects the bundle
	// fetcher.
	HasCode() bool

	// TopLevelAttrs exposes the package-wide URL-family attributes, e.g.
	// {"url": "..."} or {"git": "..."}.
	TopLevelAttrs() AttributeBag

	// Versions maps a known version to its declared attribute bag.
	Versions() map[Version]AttributeBag

	// Resources maps a known version to the list of additional resources
	// fetched alongside the primary source.
	Resources() map[Version][]Resource

	// URLForVersion extrapolates a download URL for a version absent
	// from Versions(), by templating the package's URL pattern. Returns
	// an error if extrapolation is not supported for this package.
	URLForVersion(v Version) (*url.URL, error)

	// ListURL is an optional page the web spider can crawl to discover
	// versions not yet known to the package.
	ListURL() (*url.URL, bool)
}
