package fetch

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFetcher() *Fetcher {
	return New(Options{
		Timeout:        5 * time.Second,
		MaxRetries:     3,
		RequestsPerSec: 100, // keep tests fast
	})
}

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "siterank/1.0", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte("area_id,name\n"))
	}))
	defer srv.Close()

	body, err := testFetcher().Download(context.Background(), srv.URL)
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "area_id,name\n", string(data))
}

func TestDownloadRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, err := testFetcher().Download(context.Background(), srv.URL)
	require.NoError(t, err)
	defer body.Close()

	data, _ := io.ReadAll(body)
	assert.Equal(t, "ok", string(data))
	assert.Equal(t, int32(3), calls.Load())
}

func TestDownloadClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testFetcher().Download(context.Background(), srv.URL)
	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestLocalizeLocalPath(t *testing.T) {
	path, cleanup, err := testFetcher().Localize(context.Background(), "testdata/areas.csv")
	require.NoError(t, err)
	defer cleanup()
	assert.Equal(t, "testdata/areas.csv", path)
}

func TestLocalizeHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("id,name\nA,Alpha\n"))
	}))
	defer srv.Close()

	path, cleanup, err := testFetcher().Localize(context.Background(), srv.URL+"/facilities.csv")
	require.NoError(t, err)
	defer cleanup()

	assert.NotEqual(t, srv.URL+"/facilities.csv", path)
	assert.Contains(t, path, ".csv", "temp file keeps the remote extension")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "id,name\nA,Alpha\n", string(data))

	cleanup()
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestLocalizeUnsupportedScheme(t *testing.T) {
	_, _, err := testFetcher().Localize(context.Background(), "gopher://example.com/data.csv")
	assert.Error(t, err)
}

func TestParseFTPURL(t *testing.T) {
	host, path, err := parseFTPURL("ftp://data.example.org/pub/imd.csv")
	require.NoError(t, err)
	assert.Equal(t, "data.example.org:21", host)
	assert.Equal(t, "/pub/imd.csv", path)

	host, _, err = parseFTPURL("ftp://data.example.org:2121/pub/imd.csv")
	require.NoError(t, err)
	assert.Equal(t, "data.example.org:2121", host)

	_, _, err = parseFTPURL("https://example.org/x")
	assert.Error(t, err)

	_, _, err = parseFTPURL("ftp://example.org")
	assert.Error(t, err)
}
