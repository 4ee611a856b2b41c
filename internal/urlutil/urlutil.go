// Package urlutil parses, normalizes, joins and classifies URLs used to
// locate package source, and extracts local paths from file:// URLs.
package urlutil

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

type urlError string

func (e urlError) Error() string { return string(e) }

// ErrURL is a sentinel error for all errors that originate from this package.
const ErrURL urlError = "url error"

// Scheme classifies the transport a URL names.
type Scheme string

const (
	SchemeHTTP  Scheme = "http"
	SchemeHTTPS Scheme = "https"
	SchemeFTP   Scheme = "ftp"
	SchemeFile  Scheme = "file"
	SchemeS3    Scheme = "s3"
	SchemeGit   Scheme = "git"
	SchemeSSH   Scheme = "ssh"
	SchemeHG    Scheme = "hg"
	SchemeSVN   Scheme = "svn"
	SchemeGo    Scheme = "go"
	SchemeOther Scheme = ""
)

// Parse parses a raw URL string. A "<tool>+<transport>" scheme such as
// "git+https" is kept as is; [SplitToolScheme] and [ClassifyScheme]
// separate its parts.
func Parse(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w: %w", raw, err, ErrURL)
	}

	return u, nil
}

// SplitToolScheme splits a scheme of the form "<tool>+<transport>" (e.g.
// "git+https") into its tool and transport parts. If there is no "+", tool
// is empty and transport is the scheme unchanged.
func SplitToolScheme(scheme string) (tool, transport string) {
	tool, transport, found := strings.Cut(scheme, "+")
	if !found {
		return "", scheme
	}

	return tool, transport
}

// ClassifyScheme maps a URL's transport scheme (after stripping any
// "<tool>+" prefix) to a [Scheme].
func ClassifyScheme(u *url.URL) Scheme {
	_, transport := SplitToolScheme(u.Scheme)

	switch strings.ToLower(transport) {
	case "http":
		return SchemeHTTP
	case "https":
		return SchemeHTTPS
	case "ftp":
		return SchemeFTP
	case "file":
		return SchemeFile
	case "s3":
		return SchemeS3
	case "git":
		return SchemeGit
	case "ssh":
		return SchemeSSH
	case "hg":
		return SchemeHG
	case "svn":
		return SchemeSVN
	case "go":
		return SchemeGo
	default:
		return SchemeOther
	}
}

// Join appends path elements to the path component of u, returning a copy.
func Join(u *url.URL, elem ...string) *url.URL {
	v := *u
	v.Path = path.Join(append([]string{v.Path}, elem...)...)

	return &v
}

// LocalPath extracts the filesystem path out of a file:// URL. It returns
// an error if u's scheme is not "file".
func LocalPath(u *url.URL) (string, error) {
	if ClassifyScheme(u) != SchemeFile {
		return "", fmt.Errorf("%q is not a file:// URL: %w", u.String(), ErrURL)
	}

	if u.Path != "" {
		return u.Path, nil
	}

	return u.Opaque, nil
}

// Basename returns the final path segment of u, used as the cache-key
// basename and the save-filename for a download.
func Basename(u *url.URL) string {
	return path.Base(u.Path)
}

// Format renders u back to its string form, preserving user info.
func Format(u *url.URL) string {
	return u.String()
}
