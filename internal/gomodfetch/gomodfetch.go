// Package gomodfetch implements the Go module-proxy VCS fetcher backend
// module path validation via golang.org/x/mod, and retrieval of
// a versioned module zip from a Go module proxy (GOPROXY protocol,
// https://go.dev/ref/mod#goproxy-protocol).
package gomodfetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/mod/module"
)

type modError string

func (e modError) Error() string { return string(e) }

// ErrGoModule is a sentinel error for all errors that originate from this
// package.
const ErrGoModule modError = "go module proxy error"

// DefaultProxy is used when the caller does not override it, matching the
// default GOPROXY value shipped by the go tool.
const DefaultProxy = "https://proxy.golang.org"

// Info mirrors the proxy's @v/<version>.info response.
type Info struct {
	Version string `json:"Version"`
	Time    string `json:"Time"`
}

// Client queries a Go module proxy.
type Client struct {
	HTTP  *http.Client
	Proxy string
}

// NewClient builds a [Client] targeting proxy (DefaultProxy if empty).
func NewClient(httpClient *http.Client, proxy string) *Client {
	if proxy == "" {
		proxy = DefaultProxy
	}

	return &Client{HTTP: httpClient, Proxy: proxy}
}

// ValidatePath validates modulePath against the module path grammar,
// rejecting anything the proxy protocol could not address unambiguously.
func ValidatePath(modulePath string) error {
	if err := module.CheckPath(modulePath); err != nil {
		return fmt.Errorf("invalid module path %q: %w: %w", modulePath, err, ErrGoModule)
	}

	return nil
}

// Resolve resolves version (a semver tag, "latest", or empty meaning
// "latest") to a concrete [Info] for modulePath.
func (c *Client) Resolve(ctx context.Context, modulePath, version string) (Info, error) {
	if err := ValidatePath(modulePath); err != nil {
		return Info{}, err
	}

	escaped, err := module.EscapePath(modulePath)
	if err != nil {
		return Info{}, fmt.Errorf("could not escape module path %q: %w: %w", modulePath, err, ErrGoModule)
	}

	suffix := "@latest"
	if version != "" && version != "latest" {
		escapedVersion, err := module.EscapeVersion(version)
		if err != nil {
			return Info{}, fmt.Errorf("could not escape version %q: %w: %w", version, err, ErrGoModule)
		}
		suffix = "@v/" + escapedVersion + ".info"
	}

	var info Info
	if err := c.getJSON(ctx, escaped, suffix, &info); err != nil {
		return Info{}, err
	}

	return info, nil
}

// DownloadZip streams the module zip for modulePath@version into w.
func (c *Client) DownloadZip(ctx context.Context, modulePath, version string, w io.Writer) error {
	escaped, err := module.EscapePath(modulePath)
	if err != nil {
		return fmt.Errorf("could not escape module path %q: %w: %w", modulePath, err, ErrGoModule)
	}
	escapedVersion, err := module.EscapeVersion(version)
	if err != nil {
		return fmt.Errorf("could not escape version %q: %w: %w", version, err, ErrGoModule)
	}

	rawURL := strings.Join([]string{c.Proxy, escaped, "@v", escapedVersion + ".zip"}, "/")

	resp, err := c.get(ctx, rawURL)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("could not download %q: %w: %w", rawURL, err, ErrGoModule)
	}

	return nil
}

func (c *Client) getJSON(ctx context.Context, escapedModule, suffix string, dest any) error {
	rawURL := strings.Join([]string{c.Proxy, escapedModule, suffix}, "/")

	resp, err := c.get(ctx, rawURL)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("could not decode response from %q: %w: %w", rawURL, err, ErrGoModule)
	}

	return nil
}

func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	if _, err := url.Parse(rawURL); err != nil {
		return nil, fmt.Errorf("invalid proxy URL %q: %w: %w", rawURL, err, ErrGoModule)
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("could not build request for %q: %w: %w", rawURL, err, ErrGoModule)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not reach %q: %w: %w", rawURL, err, ErrGoModule)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()

		return nil, fmt.Errorf("proxy responded %s for %q: %w", resp.Status, rawURL, ErrGoModule)
	}

	return resp, nil
}
