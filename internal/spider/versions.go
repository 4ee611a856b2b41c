package spider

import (
	"context"
	"net/http"
	"path"
	"regexp"
	"sort"
	"strings"
)

// versionInFilename extracts a dotted-numeric version from an archive
// filename such as "mypkg-1.2.3.tar.gz", tolerating a leading package name
// and an arbitrary known archive suffix.
var versionInFilename = regexp.MustCompile(`(\d+(?:\.\d+)+(?:[-_][A-Za-z0-9.]+)?)`)

// VersionedArchive is a single version discovered by [FindVersionsOfArchive].
type VersionedArchive struct {
	Version string
	URL     string
}

// FindVersionsOfArchive crawls seed looking for archive links whose
// basename starts with packageName, and returns one entry per distinct
// version discovered, consuming [Crawl]'s results ("listing pages
// with no machine-readable index").
func FindVersionsOfArchive(ctx context.Context, client *http.Client, seed, packageName string, opts Options) ([]VersionedArchive, error) {
	links, err := Crawl(ctx, client, seed, opts)
	if err != nil {
		return nil, err
	}

	urls := make([]string, len(links))
	for i, link := range links {
		urls[i] = link.URL
	}

	return versionsAmong(urls, packageName), nil
}

// FindVersionsAmongKeys applies the same basename/version matching
// [FindVersionsOfArchive] uses, against a flat list of keys rather than an
// HTML crawl: an S3-backed mirror has no link page to crawl, only a bucket
// listing ([s3fetch.Client.ListObjects]), so version discovery there
// matches directly against the listed keys instead.
func FindVersionsAmongKeys(keys []string, packageName string) []VersionedArchive {
	return versionsAmong(keys, packageName)
}

func versionsAmong(urls []string, packageName string) []VersionedArchive {
	byVersion := make(map[string]VersionedArchive)
	for _, u := range urls {
		base := path.Base(u)
		if !strings.HasPrefix(base, packageName) {
			continue
		}

		version := versionInFilename.FindString(base)
		if version == "" {
			continue
		}

		if _, exists := byVersion[version]; exists {
			continue
		}
		byVersion[version] = VersionedArchive{Version: version, URL: u}
	}

	out := make([]VersionedArchive, 0, len(byVersion))
	for _, v := range byVersion {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })

	return out
}
