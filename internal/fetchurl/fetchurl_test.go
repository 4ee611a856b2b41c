package fetchurl

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExists_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)

			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ok, err := Exists(t.Context(), srv.Client(), srv.URL+"/present")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Exists(t.Context(), srv.Client(), srv.URL+"/missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExists_File(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "present.txt")
	require.NoError(t, os.WriteFile(present, []byte("x"), 0o644))

	ok, err := Exists(t.Context(), nil, "file://"+present)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Exists(t.Context(), nil, "file://"+filepath.Join(dir, "absent.txt"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestContentLength(t *testing.T) {
	h := http.Header{}
	assert.Equal(t, int64(-1), ContentLength(h))

	h.Set("Content-Length", "1024")
	assert.Equal(t, int64(1024), ContentLength(h))

	h.Set("Content-Length", "not-a-number")
	assert.Equal(t, int64(-1), ContentLength(h))
}

func TestDownload_ResumesFromPartial(t *testing.T) {
	const full = "0123456789"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rang := r.Header.Get("Range")
		if rang == "" {
			w.Header().Set("Content-Type", "application/octet-stream")
			_, _ = w.Write([]byte(full))

			return
		}

		w.Header().Set("Content-Type", "application/octet-stream")
		w.WriteHeader(http.StatusPartialContent)
		_, _ = w.Write([]byte(full[5:]))
	}))
	defer srv.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "archive.tar.gz")
	require.NoError(t, os.WriteFile(dest+".part", []byte(full[:5]), 0o644))

	result, err := Download(t.Context(), srv.Client(), srv.URL, dest, Options{})
	require.NoError(t, err)
	assert.Equal(t, StatusOK, result.Status)
	assert.True(t, result.Resumed)

	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, full, string(content))
}

func TestDownload_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	dir := t.TempDir()
	_, err := Download(t.Context(), srv.Client(), srv.URL, filepath.Join(dir, "out"), Options{})
	require.ErrorIs(t, err, ErrNotFound)
}
