package pkgfetch

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/pkgfetch/pkgfetch/internal/digest"
	"github.com/pkgfetch/pkgfetch/internal/git"
	"github.com/pkgfetch/pkgfetch/internal/s3fetch"
)

// backendDescriptor names one entry in the fetcher registry: the
// top-level attribute key that selects it (e.g. "url", "git"), the
// optional per-version attributes it additionally recognises, and the
// constructor that turns a validated attribute bag into a [Fetcher].
//
// The registry is walked in order: URL-archive backends precede VCS
// backends, so a package that declares both a "url" and a
// "git" attribute resolves deterministically rather than by map
// iteration order.
type backendDescriptor struct {
	name          string
	urlAttr       string
	optionalAttrs []string
	build         func(ctx *Context, attrs AttributeBag) (Fetcher, error)
}

var registry = []backendDescriptor{
	{
		name:          "url",
		urlAttr:       "url",
		optionalAttrs: []string{"sha256", "sha1", "md5", "sha512"},
		build:         buildURLFetcher,
	},
	{
		name:          "s3",
		urlAttr:       "s3",
		optionalAttrs: []string{"sha256", "region"},
		build:         buildS3Fetcher,
	},
	{
		name:          "git",
		urlAttr:       "git",
		optionalAttrs: []string{"tag", "branch", "commit", "submodules"},
		build:         buildGitFetcher,
	},
	{
		name:          "hg",
		urlAttr:       "hg",
		optionalAttrs: []string{"revision"},
		build:         buildHgFetcher,
	},
	{
		name:          "svn",
		urlAttr:       "svn",
		optionalAttrs: []string{"revision"},
		build:         buildSvnFetcher,
	},
	{
		name:          "go",
		urlAttr:       "go",
		optionalAttrs: []string{"version", "proxy"},
		build:         buildGoFetcher,
	},
	{
		name:          "raw",
		urlAttr:       "raw",
		optionalAttrs: []string{"sha256", "sha1", "md5", "sha512"},
		build:         buildRawFileFetcher,
	},
}

// ForPackageVersion selects and builds the [Fetcher] for pkg at v,
// applying the following selection rules:
//
//  1. A package with no code always gets the bundle fetcher.
//  2. A package's top-level attributes must name at most one VCS/URL
//     backend, "url" excluded: a package may legally declare both a
//     top-level "url" and a top-level "git" (or other VCS) attribute,
//     the per-version attributes disambiguating which one actually
//     applies to a given version.
//  3. A version absent from pkg.Versions() is extrapolated via
//     pkg.URLForVersion; extrapolation failure is terminal.
//  4. Otherwise the version's own declared attribute bag selects a
//     backend via a three-pass cascade, see [buildFromVersionAttrs].
//  5. The winning backend's merged attribute bag must not contain an
//     attribute recognised as some other backend's optional attribute.
func ForPackageVersion(ctx *Context, pkg Package, v Version) (Fetcher, error) {
	if !pkg.HasCode() {
		return NewBundleFetcher(), nil
	}

	top := pkg.TopLevelAttrs()
	if countURLAttrs(top) > 1 {
		return nil, fmt.Errorf("package %q declares more than one source attribute: %w", pkg.Name(), ErrFetcherConflict)
	}

	primary, err := buildPrimaryFetcher(ctx, pkg, v, top)
	if err != nil {
		return nil, err
	}

	resources := pkg.Resources()[v]
	if len(resources) == 0 {
		return primary, nil
	}

	built := make(map[string]Fetcher, len(resources))
	order := make([]string, 0, len(resources))
	for _, res := range resources {
		f, err := buildFromResourceAttrs(ctx, res.Attrs)
		if err != nil {
			return nil, fmt.Errorf("resource %q: %w", res.Name, err)
		}
		built[res.Name] = f
		order = append(order, res.Name)
	}

	return NewCompositeFetcher(primary, built, order), nil
}

// buildPrimaryFetcher extrapolates a URL fetcher for a version absent
// from pkg.Versions(), or else resolves the version's own declared
// attribute bag via [buildFromVersionAttrs].
func buildPrimaryFetcher(ctx *Context, pkg Package, v Version, top AttributeBag) (Fetcher, error) {
	args, known := pkg.Versions()[v]
	if !known {
		extrapolated, err := extrapolate(ctx, pkg, v)
		if err != nil {
			return nil, err
		}

		return buildURLFetcher(ctx, AttributeBag{"url": extrapolated})
	}

	return buildFromVersionAttrs(ctx, pkg, v, top, args)
}

// extrapolate derives a download URL for a version pkg never declared,
// memoizing the result in ctx for the lifetime of the run.
func extrapolate(ctx *Context, pkg Package, v Version) (string, error) {
	key := pkg.Name() + "@" + string(v)
	if cached, ok := ctx.extrapolationMemo.get(key); ok {
		return cached, nil
	}

	u, err := pkg.URLForVersion(v)
	if err != nil {
		return "", fmt.Errorf("package %q version %q: %w: %w", pkg.Name(), v, err, ErrExtrapolationError)
	}

	ctx.extrapolationMemo.put(key, u.String())

	return u.String(), nil
}

// buildFromVersionAttrs selects a backend for a version's own declared
// attribute bag args, following a three-pass cascade:
//
//  1. args names a backend's url_attr directly: build from args alone.
//  2. a backend whose url_attr is present at the top level (or is
//     "url", which has no literal top-level attribute of its own) is
//     selected when args mentions one of that backend's optional
//     attributes; the backend's url is then merged in from top (or, for
//     "url", extrapolated) with args layered on top.
//  3. fallback: the first backend whose url_attr is present at the top
//     level, merged the same way.
func buildFromVersionAttrs(ctx *Context, pkg Package, v Version, top, args AttributeBag) (Fetcher, error) {
	for _, desc := range registry {
		if _, ok := args[desc.urlAttr]; !ok {
			continue
		}

		if err := checkVersionAttributes(desc, args); err != nil {
			return nil, err
		}

		return desc.build(ctx, args)
	}

	for _, desc := range registry {
		_, topHasAttr := top[desc.urlAttr]
		if !topHasAttr && desc.urlAttr != "url" {
			continue
		}

		if !anyKeyPresent(args, desc.optionalAttrs) {
			continue
		}

		if err := checkVersionAttributes(desc, args); err != nil {
			return nil, err
		}

		return buildFromMerged(ctx, pkg, v, desc, top, args)
	}

	for _, desc := range registry {
		if _, ok := top[desc.urlAttr]; !ok {
			continue
		}

		if err := checkVersionAttributes(desc, args); err != nil {
			return nil, err
		}

		return buildFromMerged(ctx, pkg, v, desc, top, args)
	}

	return nil, fmt.Errorf("no recognised source attribute among %v: %w", attrKeys(args), ErrInvalidArgs)
}

// buildFromMerged assembles the attribute bag for a backend selected via
// a top-level attribute: the backend's own url (extrapolated for "url",
// taken from top otherwise) plus every attribute declared on the
// version itself.
func buildFromMerged(ctx *Context, pkg Package, v Version, desc backendDescriptor, top, args AttributeBag) (Fetcher, error) {
	merged := make(AttributeBag, len(args)+1)

	if desc.urlAttr == "url" {
		extrapolated, err := extrapolate(ctx, pkg, v)
		if err != nil {
			return nil, err
		}
		merged["url"] = extrapolated
	} else {
		merged[desc.urlAttr] = top[desc.urlAttr]
	}

	for k, val := range args {
		merged[k] = val
	}

	return desc.build(ctx, merged)
}

func anyKeyPresent(attrs AttributeBag, keys []string) bool {
	for _, k := range keys {
		if _, ok := attrs[k]; ok {
			return true
		}
	}

	return false
}

// countURLAttrs counts how many registry backends have their url_attr
// present in attrs. "url" is excluded: it is not a VCS fetch method and
// may legally coexist with one.
func countURLAttrs(attrs AttributeBag) int {
	count := 0
	for _, desc := range registry {
		if desc.urlAttr == "url" {
			continue
		}
		if _, ok := attrs[desc.urlAttr]; ok {
			count++
		}
	}

	return count
}

// buildFromResourceAttrs selects a backend for a resource's own
// self-contained attribute bag: a resource always names its url_attr
// directly, so this is a single pass with no top-level merge.
func buildFromResourceAttrs(ctx *Context, attrs AttributeBag) (Fetcher, error) {
	for _, desc := range registry {
		if _, ok := attrs[desc.urlAttr]; !ok {
			continue
		}

		if err := checkVersionAttributes(desc, attrs); err != nil {
			return nil, err
		}

		return desc.build(ctx, attrs)
	}

	return nil, fmt.Errorf("no recognised source attribute among %v: %w", attrKeys(attrs), ErrInvalidArgs)
}

// checkVersionAttributes rejects a version's (or resource's) attribute
// bag when it declares an attribute that is recognised as some other
// backend's optional attribute but not the selected backend's own. An
// attribute nobody's optional_attrs recognises at all is left alone:
// only attributes plausibly meant for a different backend are flagged.
func checkVersionAttributes(desc backendDescriptor, args AttributeBag) error {
	recognised := map[string]struct{}{desc.urlAttr: {}, "no_cache": {}}
	for _, opt := range desc.optionalAttrs {
		recognised[opt] = struct{}{}
	}

	var extra []string
	for k := range args {
		if _, ok := recognised[k]; ok {
			continue
		}
		if _, ok := allOptionalAttrs()[k]; ok {
			extra = append(extra, k)
		}
	}

	if len(extra) > 0 {
		return fmt.Errorf("version declares attributes not recognised by the %q backend: %v: %w", desc.name, extra, ErrFetcherConflict)
	}

	return nil
}

func allOptionalAttrs() map[string]struct{} {
	all := make(map[string]struct{})
	for _, desc := range registry {
		for _, opt := range desc.optionalAttrs {
			all[opt] = struct{}{}
		}
	}

	return all
}

func attrKeys(attrs AttributeBag) []string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}

	return keys
}

func noCache(attrs AttributeBag) bool {
	return attrs["no_cache"] == "true" || attrs["no_cache"] == "1"
}

func parseDigest(attrs AttributeBag) *digest.Digest {
	for _, algo := range []digest.Algo{digest.SHA512, digest.SHA256, digest.SHA1, digest.MD5} {
		if hex, ok := attrs[string(algo)]; ok && hex != "" {
			d, err := digest.New(algo, hex)
			if err == nil {
				return &d
			}
		}
	}

	return nil
}

func buildURLFetcher(ctx *Context, attrs AttributeBag) (Fetcher, error) {
	return NewURLFetcher(ctx, attrs["url"], parseDigest(attrs), noCache(attrs))
}

func buildGitFetcher(ctx *Context, attrs AttributeBag) (Fetcher, error) {
	repoURL, err := url.Parse(attrs["git"])
	if err != nil {
		return nil, fmt.Errorf("invalid git URL %q: %w", attrs["git"], err)
	}

	ref := git.Refspec{Commit: attrs["commit"], Tag: attrs["tag"], Branch: attrs["branch"]}

	return NewGitFetcher(ctx, repoURL, ref, &git.Options{
		RecurseSubModules: attrs["submodules"] == "true",
	}), nil
}

func buildHgFetcher(ctx *Context, attrs AttributeBag) (Fetcher, error) {
	return NewHgFetcher(ctx, attrs["hg"], attrs["revision"]), nil
}

func buildSvnFetcher(ctx *Context, attrs AttributeBag) (Fetcher, error) {
	return NewSvnFetcher(ctx, attrs["svn"], attrs["revision"]), nil
}

func buildGoFetcher(ctx *Context, attrs AttributeBag) (Fetcher, error) {
	return NewGoFetcher(ctx, attrs["go"], attrs["version"], attrs["proxy"])
}

func buildRawFileFetcher(ctx *Context, attrs AttributeBag) (Fetcher, error) {
	return NewRawFileFetcher(ctx, attrs["raw"], parseDigest(attrs))
}

func buildS3Fetcher(ctx *Context, attrs AttributeBag) (Fetcher, error) {
	u, err := url.Parse(attrs["s3"])
	if err != nil {
		return nil, fmt.Errorf("invalid s3 URL %q: %w", attrs["s3"], err)
	}

	loc := s3fetch.Location{
		Bucket: u.Host,
		Key:    strings.TrimPrefix(u.Path, "/"),
		Region: attrs["region"],
	}

	return NewS3Fetcher(ctx, loc, parseDigest(attrs)), nil
}
