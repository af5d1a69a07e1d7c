package board

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte("image-bytes"))
	}))
	defer server.Close()

	dir := t.TempDir()
	url := server.URL + "/bin/pico/en_US/adafruit-circuitpython-pico-en_US-9.0.5.uf2"

	dl := NewDownloader(WithHTTPClient(server.Client()))
	path, err := dl.Fetch(context.Background(), url, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "adafruit-circuitpython-pico-en_US-9.0.5.uf2"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("image-bytes"), data)
	assert.Equal(t, 1, hits)
}

func TestFetchDestinationConflict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("new-bytes"))
	}))
	defer server.Close()

	dir := t.TempDir()
	url := server.URL + "/stale.uf2"
	stale := filepath.Join(dir, "stale.uf2")
	require.NoError(t, os.WriteFile(stale, []byte("stale"), 0o644))

	// A stale same-named file is a conflict, never silently reused.
	dl := NewDownloader(WithHTTPClient(server.Client()))
	_, err := dl.Fetch(context.Background(), url, dir)
	var conflict *DestinationConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, stale, conflict.Path)

	// Unless overwriting is explicitly enabled.
	dl = NewDownloader(WithHTTPClient(server.Client()), WithOverwrite(true))
	path, err := dl.Fetch(context.Background(), url, dir)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("new-bytes"), data)
}

func TestFetchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	dl := NewDownloader(WithHTTPClient(server.Client()))
	_, err := dl.Fetch(context.Background(), server.URL+"/missing.uf2", t.TempDir())
	var dlErr *DownloadError
	require.ErrorAs(t, err, &dlErr)
	assert.Equal(t, http.StatusNotFound, dlErr.Status)
}

func TestFetchOffline(t *testing.T) {
	// Offline mode performs no I/O: any request hitting the server fails
	// the test.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("offline fetch performed network I/O")
	}))
	defer server.Close()

	url := server.URL + "/image.uf2"
	dl := NewDownloader(WithHTTPClient(server.Client()), WithOffline(true))
	got, err := dl.Fetch(context.Background(), url, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, url, got)
}

func TestFetchServesFromCache(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte("image-bytes"))
	}))
	defer server.Close()

	cache := &Cache{Dir: t.TempDir()}
	url := server.URL + "/image.uf2"
	dl := NewDownloader(WithHTTPClient(server.Client()), WithCache(cache))

	_, err := dl.Fetch(context.Background(), url, t.TempDir())
	require.NoError(t, err)
	_, err = dl.Fetch(context.Background(), url, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 1, hits)
}

func TestFetchCatalog(t *testing.T) {
	cache := &Cache{Dir: t.TempDir()}
	require.NoError(t, cache.Put(CatalogURL, []byte(catalogJSON)))

	dl := NewDownloader(WithCache(cache))
	catalog, err := dl.FetchCatalog(context.Background())
	require.NoError(t, err)
	_, err = catalog.ByID("raspberry_pi_pico")
	assert.NoError(t, err)
}
