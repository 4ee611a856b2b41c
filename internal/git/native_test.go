package git

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_SupportsRemoteArchive(t *testing.T) {
	cases := []struct {
		url  string
		want bool
	}{
		{"ssh://git@github.com/go-swagger/go-swagger", true},
		{"git://github.com/go-swagger/go-swagger", true},
		{"https://github.com/go-swagger/go-swagger", false},
		{"http://internal.example/repo.git", false},
	}

	for _, tc := range cases {
		t.Run(tc.url, func(t *testing.T) {
			u, err := url.Parse(tc.url)
			require.NoError(t, err)

			r := NewRepo(u, nil)
			assert.Equal(t, tc.want, r.supportsRemoteArchive())
		})
	}
}

func TestRepository_ArchiveNative_UnsupportedTransport(t *testing.T) {
	u, err := url.Parse("https://github.com/go-swagger/go-swagger")
	require.NoError(t, err)

	r := NewRepo(u, nil)
	dest := t.TempDir() + "/archive.tar.gz"

	err = r.ArchiveNative(t.Context(), dest, "main")
	require.ErrorIs(t, err, ErrGit)
}
