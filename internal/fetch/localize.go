package fetch

import (
	"context"
	"io"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/rotisserie/eris"
)

// Localize resolves a source reference to a local file path. Local paths
// are returned as-is with a no-op cleanup; http(s) and ftp URLs are
// downloaded to a temp file that preserves the remote file extension so
// the ingest layer can dispatch on it. The caller must invoke cleanup.
func (f *Fetcher) Localize(ctx context.Context, source string) (string, func(), error) {
	noop := func() {}

	u, err := url.Parse(source)
	if err != nil || u.Scheme == "" {
		return source, noop, nil
	}

	var body io.ReadCloser
	switch u.Scheme {
	case "http", "https":
		body, err = f.Download(ctx, source)
	case "ftp":
		body, err = f.DownloadFTP(ctx, source)
	default:
		return "", noop, eris.Errorf("fetch: unsupported scheme %q", u.Scheme)
	}
	if err != nil {
		return "", noop, err
	}
	defer func() { _ = body.Close() }()

	ext := strings.ToLower(path.Ext(u.Path))
	tmp, err := os.CreateTemp("", "siterank-*"+ext)
	if err != nil {
		return "", noop, eris.Wrap(err, "fetch: create temp file")
	}

	if _, err := io.Copy(tmp, body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", noop, eris.Wrapf(err, "fetch: download %s", source)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", noop, eris.Wrap(err, "fetch: close temp file")
	}

	return tmp.Name(), func() { _ = os.Remove(tmp.Name()) }, nil
}
