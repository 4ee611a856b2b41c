// Package archiveutil detects archive extensions, selects a decompressor,
// and stream-extracts an archive into a directory.
//
// Gzip and zstd streams are decoded with klauspost/compress, the codec the
// retrieval pack's own fetchers (quay/claircore's layer fetcher,
// arc-language/upkg's pacman manager) reach for instead of the stdlib
// gzip reader.
package archiveutil

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/bzip2"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

type archiveError string

func (e archiveError) Error() string { return string(e) }

// ErrArchive is a sentinel error for all errors that originate from this package.
const ErrArchive archiveError = "archive error"

// Kind identifies the container+compression combination of an archive.
type Kind int

const (
	KindUnknown Kind = iota
	KindTarGz
	KindTarBz2
	KindTarXz
	KindTarZst
	KindTar
	KindZip
	KindGz // a single compressed file, not a tar container
)

var suffixes = []struct {
	suffix string
	kind   Kind
}{
	{".tar.gz", KindTarGz},
	{".tgz", KindTarGz},
	{".tar.bz2", KindTarBz2},
	{".tbz2", KindTarBz2},
	{".tar.xz", KindTarXz},
	{".txz", KindTarXz},
	{".tar.zst", KindTarZst},
	{".tzst", KindTarZst},
	{".tar", KindTar},
	{".zip", KindZip},
	{".gz", KindGz},
}

// DetectKind classifies an archive filename by its extension.
func DetectKind(filename string) Kind {
	lower := strings.ToLower(filename)
	for _, s := range suffixes {
		if strings.HasSuffix(lower, s.suffix) {
			return s.kind
		}
	}

	return KindUnknown
}

// IsArchive reports whether filename is recognised as an archive.
func IsArchive(filename string) bool {
	return DetectKind(filename) != KindUnknown
}

// Extract stream-extracts the archive at src into directory dst, which must
// already exist. It returns the set of top-level entry names written
// directly under dst (used by the caller to apply the single-top-directory
// rule).
func Extract(src, dst string) ([]string, error) {
	kind := DetectKind(src)
	if kind == KindUnknown {
		return nil, fmt.Errorf("could not detect archive kind for %q: %w", src, ErrArchive)
	}

	f, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("could not open archive %q: %w: %w", src, err, ErrArchive)
	}
	defer func() { _ = f.Close() }()

	switch kind {
	case KindZip:
		return extractZip(src, dst)
	case KindGz:
		return extractBareGzip(f, dst, strings.TrimSuffix(filepath.Base(src), ".gz"))
	default:
		r, err := decompressor(kind, f)
		if err != nil {
			return nil, err
		}

		return extractTar(r, dst)
	}
}

func decompressor(kind Kind, r io.Reader) (io.Reader, error) {
	switch kind {
	case KindTarGz:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("could not open gzip stream: %w: %w", err, ErrArchive)
		}

		return gz, nil
	case KindTarBz2:
		return bzip2.NewReader(r), nil
	case KindTarZst:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("could not open zstd stream: %w: %w", err, ErrArchive)
		}

		return zr.IOReadCloser(), nil
	case KindTarXz:
		// No xz codec ships in this module's dependency set; treat as an
		// unsupported compression rather than silently passing raw bytes
		// to the tar reader.
		return nil, fmt.Errorf("xz-compressed archives are not supported: %w", ErrArchive)
	case KindTar:
		return r, nil
	default:
		return nil, fmt.Errorf("unsupported archive kind for decompression: %w", ErrArchive)
	}
}

func extractTar(r io.Reader, dst string) ([]string, error) {
	tr := tar.NewReader(r)
	top := map[string]struct{}{}

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("could not read tar entry: %w: %w", err, ErrArchive)
		}

		name := filepath.Clean(hdr.Name)
		if name == "." || strings.HasPrefix(name, "..") {
			continue
		}

		target := filepath.Join(dst, name)
		if err := writeTarEntry(tr, hdr, target); err != nil {
			return nil, err
		}

		top[topLevel(name)] = struct{}{}
	}

	return keys(top), nil
}

func writeTarEntry(tr *tar.Reader, hdr *tar.Header, target string) error {
	switch hdr.Typeflag {
	case tar.TypeDir:
		return os.MkdirAll(target, 0o755)
	case tar.TypeReg:
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("could not create parent directory for %q: %w: %w", target, err, ErrArchive)
		}

		out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode&0o777))
		if err != nil {
			return fmt.Errorf("could not create %q: %w: %w", target, err, ErrArchive)
		}
		defer func() { _ = out.Close() }()

		if _, err := io.Copy(out, tr); err != nil {
			return fmt.Errorf("could not write %q: %w: %w", target, err, ErrArchive)
		}

		return nil
	case tar.TypeSymlink:
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}

		return os.Symlink(hdr.Linkname, target)
	default:
		return nil
	}
}

func extractZip(src, dst string) ([]string, error) {
	zr, err := zip.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("could not open zip archive %q: %w: %w", src, err, ErrArchive)
	}
	defer func() { _ = zr.Close() }()

	top := map[string]struct{}{}

	for _, zf := range zr.File {
		name := filepath.Clean(zf.Name)
		if name == "." || strings.HasPrefix(name, "..") {
			continue
		}

		target := filepath.Join(dst, name)
		if zf.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return nil, err
			}

			top[topLevel(name)] = struct{}{}

			continue
		}

		if err := extractZipFile(zf, target); err != nil {
			return nil, err
		}

		top[topLevel(name)] = struct{}{}
	}

	return keys(top), nil
}

func extractZipFile(zf *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("could not create parent directory for %q: %w: %w", target, err, ErrArchive)
	}

	rc, err := zf.Open()
	if err != nil {
		return fmt.Errorf("could not open zip entry %q: %w: %w", zf.Name, err, ErrArchive)
	}
	defer func() { _ = rc.Close() }()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, zf.Mode())
	if err != nil {
		return fmt.Errorf("could not create %q: %w: %w", target, err, ErrArchive)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, rc); err != nil {
		return fmt.Errorf("could not write %q: %w: %w", target, err, ErrArchive)
	}

	return nil
}

func extractBareGzip(r io.Reader, dst, filename string) ([]string, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("could not open gzip stream: %w: %w", err, ErrArchive)
	}
	defer func() { _ = gz.Close() }()

	target := filepath.Join(dst, filename)
	out, err := os.Create(target)
	if err != nil {
		return nil, fmt.Errorf("could not create %q: %w: %w", target, err, ErrArchive)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, gz); err != nil {
		return nil, fmt.Errorf("could not write %q: %w: %w", target, err, ErrArchive)
	}

	return []string{filename}, nil
}

func topLevel(name string) string {
	if i := strings.IndexRune(name, filepath.Separator); i >= 0 {
		return name[:i]
	}

	return name
}

func keys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}

	return out
}

// ArchiveTarGz writes a gzip-compressed tar of srcDir to dst, optionally
// excluding a set of top-level directory names (used by VCS fetchers to
// exclude their metadata directory, e.g. ".git").
func ArchiveTarGz(srcDir, dst string, excludeTop ...string) error {
	exclude := make(map[string]struct{}, len(excludeTop))
	for _, e := range excludeTop {
		exclude[e] = struct{}{}
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("could not create %q: %w: %w", dst, err, ErrArchive)
	}
	defer func() { _ = out.Close() }()

	gz := gzip.NewWriter(out)
	defer func() { _ = gz.Close() }()

	tw := tar.NewWriter(gz)
	defer func() { _ = tw.Close() }()

	return filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if _, skip := exclude[topLevel(rel)]; skip {
			if info.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		return writeArchiveEntry(tw, path, rel, info)
	})
}

func writeArchiveEntry(tw *tar.Writer, path, rel string, info os.FileInfo) error {
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	hdr.Name = filepath.ToSlash(rel)

	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}

	if info.IsDir() {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	_, err = io.Copy(tw, f)

	return err
}

// SniffContentType inspects the first bytes of a buffer to decide whether
// it looks like HTML — used to detect error pages masquerading as
// archives (a content-type sniff). This is a fallback for
// bodies where the server omitted or lied about Content-Type.
func SniffContentType(head []byte) bool {
	trimmed := bytes.TrimSpace(bytes.ToLower(head))

	return bytes.HasPrefix(trimmed, []byte("<!doctype html")) || bytes.HasPrefix(trimmed, []byte("<html"))
}
