// Package spider implements the HTML link-spider: a depth-bounded,
// prefix-scoped breadth-first crawl used to discover candidate archive
// URLs on package index pages that publish no machine-readable listing.
package spider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
)

type spiderError string

func (e spiderError) Error() string { return string(e) }

// ErrSpider is a sentinel error for all errors that originate from this
// package.
const ErrSpider spiderError = "spider error"

// Options configures a crawl.
type Options struct {
	// MaxDepth bounds how many link hops the crawl follows from the seed
	// page. A depth of 0 only inspects the seed page itself.
	MaxDepth int

	// Concurrency bounds the number of in-flight page fetches.
	Concurrency int

	// PrefixScope restricts link-following to URLs whose string form has
	// this prefix, preventing the crawl from wandering off the package's
	// own directory tree. It defaults to the seed URL's directory.
	PrefixScope string

	// ArchiveSuffixes marks a link as a leaf (an archive candidate, not
	// followed further) when its path ends with one of these suffixes.
	ArchiveSuffixes []string
}

// Result is a single discovered archive link.
type Result struct {
	URL  string
	Text string
}

// Crawl performs the BFS described above, starting at seed, and returns
// every leaf link discovered. It is safe to call concurrently with
// itself for distinct seeds sharing the same client.
func Crawl(ctx context.Context, client *http.Client, seed string, opts Options) ([]Result, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.PrefixScope == "" {
		// default to the seed's own directory, so a seed of ".../index.html"
		// scopes the crawl to the pages beside and below it
		opts.PrefixScope = seed
		if u, err := url.Parse(seed); err == nil {
			u.Path = u.Path[:strings.LastIndex(u.Path, "/")+1]
			u.RawPath, u.RawQuery, u.Fragment = "", "", ""
			opts.PrefixScope = u.String()
		}
	}

	visited := &visitedSet{seen: make(map[string]bool)}
	results := &resultSet{}

	type frontierItem struct {
		url   string
		depth int
	}

	frontier := []frontierItem{{url: seed, depth: 0}}

	for len(frontier) > 0 {
		group, gctx := errgroup.WithContext(ctx)
		group.SetLimit(opts.Concurrency)

		var mu sync.Mutex
		var next []frontierItem

		for _, item := range frontier {
			item := item
			if !visited.markVisited(item.url) {
				continue
			}

			group.Go(func() error {
				links, err := fetchLinks(gctx, client, item.url)
				if err != nil {
					// a single broken page must not abort the whole crawl
					return nil
				}

				for _, link := range links {
					if isArchiveLeaf(link.URL, opts.ArchiveSuffixes) {
						results.add(link)

						continue
					}

					if item.depth >= opts.MaxDepth {
						continue
					}
					if !strings.HasPrefix(link.URL, opts.PrefixScope) {
						continue
					}

					mu.Lock()
					next = append(next, frontierItem{url: link.URL, depth: item.depth + 1})
					mu.Unlock()
				}

				return nil
			})
		}

		if err := group.Wait(); err != nil {
			return nil, fmt.Errorf("crawl of %q failed: %w: %w", seed, err, ErrSpider)
		}

		frontier = next
	}

	return results.items, nil
}

func fetchLinks(ctx context.Context, client *http.Client, pageURL string) ([]Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("could not build request for %q: %w: %w", pageURL, err, ErrSpider)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not fetch %q: %w: %w", pageURL, err, ErrSpider)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%q responded %s: %w", pageURL, resp.Status, ErrSpider)
	}

	if !strings.Contains(resp.Header.Get("Content-Type"), "html") {
		return nil, nil
	}

	return extractLinks(resp.Body, pageURL)
}

func extractLinks(body io.Reader, base string) ([]Result, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w: %w", base, err, ErrSpider)
	}

	doc, err := html.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("could not parse HTML from %q: %w: %w", base, err, ErrSpider)
	}

	var links []Result
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}

				resolved, err := baseURL.Parse(attr.Val)
				if err != nil {
					continue
				}

				links = append(links, Result{URL: resolved.String(), Text: textContent(n)})
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return links, nil
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return strings.TrimSpace(sb.String())
}

func isArchiveLeaf(rawURL string, suffixes []string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	path := strings.ToLower(u.Path)
	for _, suffix := range suffixes {
		if strings.HasSuffix(path, strings.ToLower(suffix)) {
			return true
		}
	}

	return false
}

type visitedSet struct {
	mu   sync.Mutex
	seen map[string]bool
}

// markVisited returns true the first time url is seen, false on repeats.
func (v *visitedSet) markVisited(url string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.seen[url] {
		return false
	}
	v.seen[url] = true

	return true
}

type resultSet struct {
	mu    sync.Mutex
	items []Result
	seen  map[string]bool
}

func (r *resultSet) add(item Result) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.seen == nil {
		r.seen = make(map[string]bool)
	}
	if r.seen[item.URL] {
		return
	}
	r.seen[item.URL] = true
	r.items = append(r.items, item)
}
