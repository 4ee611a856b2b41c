package pkgfetch

import (
	"context"
	"errors"
	"net/url"
)

// CompositeFetcher aggregates a primary fetcher with zero or more resource
// fetchers: a package version may declare additional resources fetched
// alongside its primary source. Lifecycle operations run in
// registration order: primary first, then each resource in the order it
// was added. SourceID aggregation is all-or-nothing: if any member
// fetcher's SourceID fails, or if the primary itself is not content
// addressable, the composite as a whole is not either.
type CompositeFetcher struct {
	members []namedFetcher

	stage *Stage
}

type namedFetcher struct {
	name    string
	fetcher Fetcher
}

// NewCompositeFetcher builds a [CompositeFetcher] whose first member is
// the package's primary source and the rest are its declared resources.
func NewCompositeFetcher(primary Fetcher, resources map[string]Fetcher, order []string) *CompositeFetcher {
	members := make([]namedFetcher, 0, 1+len(resources))
	members = append(members, namedFetcher{name: "", fetcher: primary})

	for _, name := range order {
		if f, ok := resources[name]; ok {
			members = append(members, namedFetcher{name: name, fetcher: f})
		}
	}

	return &CompositeFetcher{members: members}
}

var _ Fetcher = (*CompositeFetcher)(nil)

func (f *CompositeFetcher) Bind(stage *Stage) {
	f.stage = stage
	for _, m := range f.members {
		m.fetcher.Bind(stage)
	}
}

func (f *CompositeFetcher) Fetch(ctx context.Context) error {
	return f.forEach(func(m namedFetcher) error { return m.fetcher.Fetch(ctx) })
}

func (f *CompositeFetcher) Check(ctx context.Context) error {
	return f.forEach(func(m namedFetcher) error { return m.fetcher.Check(ctx) })
}

func (f *CompositeFetcher) Expand(ctx context.Context) error {
	return f.forEach(func(m namedFetcher) error { return m.fetcher.Expand(ctx) })
}

func (f *CompositeFetcher) Reset(ctx context.Context) error {
	return f.forEach(func(m namedFetcher) error { return m.fetcher.Reset(ctx) })
}

func (f *CompositeFetcher) Archive(ctx context.Context, destination *url.URL) error {
	return f.forEach(func(m namedFetcher) error { return m.fetcher.Archive(ctx, destination) })
}

func (f *CompositeFetcher) forEach(op func(namedFetcher) error) error {
	if err := requireStage(f.stage, "composite"); err != nil {
		return err
	}

	for _, m := range f.members {
		if err := op(m); err != nil {
			if m.name == "" {
				return err
			}

			return errors.Join(err, errNamedResource(m.name))
		}
	}

	return nil
}

func errNamedResource(name string) error {
	return &resourceError{name: name}
}

type resourceError struct{ name string }

func (e *resourceError) Error() string { return "resource " + e.name + " failed" }

// Cachable is true only when every member is cachable: a composite source
// is reproducible only if all of its parts are.
func (f *CompositeFetcher) Cachable() bool {
	for _, m := range f.members {
		if !m.fetcher.Cachable() {
			return false
		}
	}

	return true
}

// SourceID concatenates every member's id in registration order, prefixed
// by its resource name (empty for the primary). If any member fails to
// produce one, the whole composite fails; if any member returns an empty
// id (not content addressable), the composite returns "" as well.
func (f *CompositeFetcher) SourceID(ctx context.Context) (string, error) {
	var combined string
	for _, m := range f.members {
		id, err := m.fetcher.SourceID(ctx)
		if err != nil {
			return "", err
		}
		if id == "" {
			return "", nil
		}

		if combined != "" {
			combined += ";"
		}
		if m.name != "" {
			combined += m.name + "="
		}
		combined += id
	}

	return combined, nil
}
