// Package giturl detects the SCM provider behind a git-style URL and
// exposes a raw-content URL for it, bypassing a full clone whenever the
// platform offers one.
package giturl

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/pkgfetch/pkgfetch/internal/giturl/github"
	"github.com/pkgfetch/pkgfetch/internal/giturl/gitlab"
)

// Provider represents a SCM platform with a proprietary git-url format.
type Provider string

const (
	ProviderUnknown Provider = "unknown"
	ProviderGithub  Provider = "github"
	ProviderGitlab  Provider = "gitlab"
)

func (p Provider) String() string {
	return string(p)
}

// Locator is the minimal interface returned by a parsed URL.
type Locator interface {
	RepoURL() *url.URL
	Path() string
	Version() string
}

// AutoDetect tries to determine the [Provider] that corresponds to a given [url.URL].
//
// Detection is rather crude and based on the host in the URL. It does not
// work for SCMs deployed on-premises: such hosts yield
// [ErrUnknownProvider].
func AutoDetect(u *url.URL) (Provider, Locator, error) {
	host := strings.ToLower(u.Host)

	switch {
	case strings.Contains(host, ProviderGithub.String()):
		locator, err := github.Parse(u)

		return ProviderGithub, locator, err
	case strings.Contains(host, ProviderGitlab.String()):
		locator, err := gitlab.Parse(u)

		return ProviderGitlab, locator, err
	default:
		return ProviderUnknown, nil, fmt.Errorf("url=%q: %w: %w", u.String(), ErrUnknownProvider, ErrProvider)
	}
}

// Raw transforms a [Locator] into a raw-content URL to retrieve a single file
// from well-known SCM providers, bypassing the use of git entirely.
func Raw(locator Locator) (*url.URL, error) {
	provider, _, err := AutoDetect(locator.RepoURL())
	if err != nil {
		return nil, err
	}

	switch provider {
	case ProviderGithub:
		return github.Raw(locator)
	case ProviderGitlab:
		return gitlab.Raw(locator)
	default:
		return nil, fmt.Errorf("no raw-content URL scheme known for provider %q: %w", provider, ErrProvider)
	}
}
