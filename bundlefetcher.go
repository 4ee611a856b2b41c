package pkgfetch

import (
	"context"
	"net/url"
)

// BundleFetcher is the no-op fetcher selected for a package with
// HasCode() == false: there is nothing to retrieve, so every
// lifecycle operation trivially succeeds.
type BundleFetcher struct {
	stage *Stage
}

// NewBundleFetcher returns a [BundleFetcher].
func NewBundleFetcher() *BundleFetcher {
	return &BundleFetcher{}
}

var _ Fetcher = (*BundleFetcher)(nil)

func (f *BundleFetcher) Bind(stage *Stage) { f.stage = stage }

func (f *BundleFetcher) Fetch(ctx context.Context) error { return requireStage(f.stage, "fetch") }

func (f *BundleFetcher) Check(ctx context.Context) error { return requireStage(f.stage, "check") }

func (f *BundleFetcher) Expand(ctx context.Context) error { return requireStage(f.stage, "expand") }

func (f *BundleFetcher) Reset(ctx context.Context) error { return requireStage(f.stage, "reset") }

func (f *BundleFetcher) Archive(ctx context.Context, destination *url.URL) error {
	return requireStage(f.stage, "archive")
}

func (f *BundleFetcher) Cachable() bool { return false }

// SourceID is always empty: a bundle has no content to address.
func (f *BundleFetcher) SourceID(ctx context.Context) (string, error) { return "", nil }
