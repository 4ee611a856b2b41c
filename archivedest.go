package pkgfetch

import (
	"net/url"

	"github.com/pkgfetch/pkgfetch/internal/urlutil"
)

// localPathOrTemp resolves an Archive destination to a local filesystem
// path. Only file:// destinations are supported directly; producing a
// mirror artifact for a remote destination (e.g. s3://) is the caller's
// job: archive to a local path first, then hand that path to the relevant
// upload client (see [S3Fetcher.Archive] for the one backend that does
// this itself).
func localPathOrTemp(destination *url.URL) (string, error) {
	return urlutil.LocalPath(destination)
}
