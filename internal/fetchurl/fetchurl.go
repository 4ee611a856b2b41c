// Package fetchurl implements the resumable HTTP(S) transport backing the
// URL fetcher. [Exists] also probes file:// paths; [Download] serves
// neither file:// nor ftp:// URLs.
package fetchurl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

type transportError string

func (e transportError) Error() string { return string(e) }

const (
	// ErrFailedDownload is a sentinel error for all transport failures.
	ErrFailedDownload transportError = "failed download"

	// ErrNotFound marks an HTTP 404 response specifically.
	ErrNotFound transportError = "resource not found"

	// ErrInvalidCertificate marks a TLS verification failure.
	ErrInvalidCertificate transportError = "invalid TLS certificate"
)

// Status is the outcome of a fetch attempt, distinguishing a handful of
// exit statuses: OK, 404, cert-invalid, other.
type Status int

const (
	StatusOK Status = iota
	StatusNotFound
	StatusCertInvalid
	StatusOther
)

// Options configures a single download.
type Options struct {
	VerifySSL     bool
	Timeout       time.Duration
	CurlOptions   []string
	UserAgent     string
	BasicUsername string
	BasicPassword string
	CustomHeaders map[string]string
}

const defaultTimeout = 10 * time.Second

// Result reports the outcome of [Download].
type Result struct {
	Status      Status
	ContentType string
	Resumed     bool
}

// Download retrieves rawURL into destPath, resuming from a ".part" sibling
// file when one already exists, and returns the last Content-Type header
// seen (following the "use the last occurrence" rule across redirects).
//
// Supported schemes are http and https. [NewClient] registers no file or
// ftp transport, so file:// and ftp:// URLs fail with an unsupported
// protocol scheme error.
func Download(ctx context.Context, client *http.Client, rawURL, destPath string, opts Options) (Result, error) {
	partPath := destPath + ".part"

	var resumeFrom int64
	if info, err := os.Stat(partPath); err == nil {
		resumeFrom = info.Size()
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Result{}, fmt.Errorf("could not build request for %q: %w: %w", rawURL, err, ErrFailedDownload)
	}

	if resumeFrom > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", resumeFrom))
	}
	if opts.UserAgent != "" {
		req.Header.Set("User-Agent", opts.UserAgent)
	}
	if opts.BasicUsername != "" {
		req.SetBasicAuth(opts.BasicUsername, opts.BasicPassword)
	}
	for key, val := range opts.CustomHeaders {
		req.Header.Set(key, val)
	}

	resp, err := client.Do(req)
	if err != nil {
		return classifyTransportError(rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	contentType := lastContentType(resp.Header)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Result{Status: StatusNotFound, ContentType: contentType}, fmt.Errorf("%q: %w: %w", rawURL, ErrNotFound, ErrFailedDownload)
	case resp.StatusCode >= http.StatusBadRequest:
		return Result{Status: StatusOther, ContentType: contentType}, fmt.Errorf("%q: server responded %s: %w", rawURL, resp.Status, ErrFailedDownload)
	}

	resumed := resumeFrom > 0 && resp.StatusCode == http.StatusPartialContent

	if err := writeBody(resp.Body, partPath, resumed); err != nil {
		_ = os.Remove(partPath)

		return Result{Status: StatusOther, ContentType: contentType}, err
	}

	if err := os.Rename(partPath, destPath); err != nil {
		return Result{Status: StatusOther, ContentType: contentType}, fmt.Errorf("could not finalize download to %q: %w: %w", destPath, err, ErrFailedDownload)
	}

	return Result{Status: StatusOK, ContentType: contentType, Resumed: resumed}, nil
}

func writeBody(body io.Reader, partPath string, resume bool) error {
	flags := os.O_CREATE | os.O_WRONLY
	if resume {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	f, err := os.OpenFile(partPath, flags, 0o644)
	if err != nil {
		return fmt.Errorf("could not open %q for writing: %w: %w", partPath, err, ErrFailedDownload)
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(f, body); err != nil {
		return fmt.Errorf("could not write download body to %q: %w: %w", partPath, err, ErrFailedDownload)
	}

	return nil
}

// Exists reports whether rawURL is reachable without downloading it: a
// HEAD request for http(s), a stat for file://. It is a cheap pre-check a
// caller holding a list of candidate mirrors can use to skip a dead one
// before attempting a full [Download].
func Exists(ctx context.Context, client *http.Client, rawURL string) (bool, error) {
	if strings.HasPrefix(rawURL, "file://") {
		path := strings.TrimPrefix(rawURL, "file://")
		_, err := os.Stat(path)
		if err == nil {
			return true, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}

		return false, fmt.Errorf("could not stat %q: %w: %w", rawURL, err, ErrFailedDownload)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return false, fmt.Errorf("could not build HEAD request for %q: %w: %w", rawURL, err, ErrFailedDownload)
	}

	resp, err := client.Do(req)
	if err != nil {
		_, classifyErr := classifyTransportError(rawURL, err)

		return false, classifyErr
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}

	return resp.StatusCode < http.StatusBadRequest, nil
}

func classifyTransportError(rawURL string, err error) (Result, error) {
	var certErr interface{ Error() string }
	if errors.As(err, &certErr) && strings.Contains(strings.ToLower(err.Error()), "certificate") {
		return Result{Status: StatusCertInvalid}, fmt.Errorf("%q: %w: %w", rawURL, ErrInvalidCertificate, ErrFailedDownload)
	}

	return Result{Status: StatusOther}, fmt.Errorf("%q: %w: %w", rawURL, err, ErrFailedDownload)
}

// lastContentType returns the last Content-Type header value, matching the
// "use the last occurrence" rule for redirect chains.
func lastContentType(h http.Header) string {
	values := h.Values("Content-Type")
	if len(values) == 0 {
		return ""
	}

	return values[len(values)-1]
}

// ContentLength parses the Content-Length header, returning -1 if absent
// or malformed.
func ContentLength(h http.Header) int64 {
	raw := h.Get("Content-Length")
	if raw == "" {
		return -1
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return -1
	}

	return n
}
