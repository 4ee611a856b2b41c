package pkgfetch

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalPathOrTemp_FileURL(t *testing.T) {
	u, err := url.Parse("file:///var/cache/pkgfetch/archive.tar.gz")
	require.NoError(t, err)

	pth, err := localPathOrTemp(u)
	require.NoError(t, err)
	require.Equal(t, "/var/cache/pkgfetch/archive.tar.gz", pth)
}

func TestLocalPathOrTemp_RejectsNonFileScheme(t *testing.T) {
	u, err := url.Parse("s3://bucket/key")
	require.NoError(t, err)

	_, err = localPathOrTemp(u)
	require.Error(t, err)
}
