package git

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRepository_LogCapabilities_DisabledByDefault(t *testing.T) {
	u, err := url.Parse("https://example.invalid/repo.git")
	require.NoError(t, err)

	r := NewRepo(u, nil)

	// With Debug unset, LogCapabilities must not attempt any network call;
	// it should return immediately.
	r.LogCapabilities(t.Context())
}
