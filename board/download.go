package board

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// DownloadConfig holds the downloader configuration.
type DownloadConfig struct {
	// Client performs HTTP requests
	Client *http.Client

	// Cache serves repeated requests without network I/O (optional)
	Cache *Cache

	// Logger receives download progress logs (optional)
	Logger logrus.FieldLogger

	// Offline makes Fetch return the URL without performing any I/O
	Offline bool

	// Overwrite allows Fetch to replace an existing destination file
	Overwrite bool
}

// DownloadOption is a functional option for configuring the Downloader.
type DownloadOption func(*DownloadConfig)

// WithHTTPClient sets the HTTP client used for downloads.
func WithHTTPClient(client *http.Client) DownloadOption {
	return func(c *DownloadConfig) {
		c.Client = client
	}
}

// WithCache sets the on-disk request cache.
func WithCache(cache *Cache) DownloadOption {
	return func(c *DownloadConfig) {
		c.Cache = cache
	}
}

// WithDownloadLogger sets the logger for download operations.
func WithDownloadLogger(logger logrus.FieldLogger) DownloadOption {
	return func(c *DownloadConfig) {
		c.Logger = logger
	}
}

// WithOffline enables offline mode: Fetch returns the URL it would have
// downloaded instead of performing I/O.
func WithOffline(offline bool) DownloadOption {
	return func(c *DownloadConfig) {
		c.Offline = offline
	}
}

// WithOverwrite allows an existing destination file to be replaced instead
// of reported as a conflict.
func WithOverwrite(overwrite bool) DownloadOption {
	return func(c *DownloadConfig) {
		c.Overwrite = overwrite
	}
}

// Downloader retrieves UF2 images over HTTP with optional on-disk caching.
type Downloader struct {
	config DownloadConfig
}

// NewDownloader creates a Downloader with the given options.
//
// Example:
//
//	dl := board.NewDownloader(
//	    board.WithCache(cache),
//	    board.WithDownloadLogger(log),
//	)
func NewDownloader(opts ...DownloadOption) *Downloader {
	cfg := DownloadConfig{
		Client: http.DefaultClient,
		Logger: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Downloader{config: cfg}
}

// Fetch downloads rawURL into destination and returns the local file path.
//
// If destination is a directory, the filename is taken from the URL's final
// path element (which encodes board ID, locale and version). An existing file
// at the resolved path is a DestinationConflictError unless overwriting was
// enabled; the downloader never silently reuses stale files.
//
// In offline mode Fetch performs no I/O and returns rawURL itself.
func (d *Downloader) Fetch(ctx context.Context, rawURL string, destination string) (string, error) {
	if d.config.Offline {
		return rawURL, nil
	}

	dest, err := d.destinationPath(rawURL, destination)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(dest); err == nil && !d.config.Overwrite {
		return "", &DestinationConflictError{Path: dest}
	}

	data, err := d.get(ctx, rawURL)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", dest, err)
	}
	d.config.Logger.WithFields(logrus.Fields{
		"url":  rawURL,
		"path": dest,
		"size": len(data),
	}).Info("download complete")
	return dest, nil
}

// FetchCatalog retrieves the published board index and parses it, serving
// from the cache when possible.
func (d *Downloader) FetchCatalog(ctx context.Context) (*Catalog, error) {
	data, err := d.get(ctx, CatalogURL)
	if err != nil {
		return nil, err
	}
	return ParseCatalog(bytes.NewReader(data))
}

// get retrieves a URL's body, consulting the cache first.
func (d *Downloader) get(ctx context.Context, rawURL string) ([]byte, error) {
	if d.config.Cache != nil {
		if data, ok := d.config.Cache.Get(rawURL); ok {
			d.config.Logger.WithField("url", rawURL).Debug("serving request from cache")
			return data, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &DownloadError{URL: rawURL, Err: err}
	}
	resp, err := d.config.Client.Do(req)
	if err != nil {
		return nil, &DownloadError{URL: rawURL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &DownloadError{URL: rawURL, Status: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &DownloadError{URL: rawURL, Err: err}
	}

	if d.config.Cache != nil {
		if err := d.config.Cache.Put(rawURL, data); err != nil {
			d.config.Logger.WithError(err).Warn("failed to populate request cache")
		}
	}
	return data, nil
}

// destinationPath resolves the local file path for a download.
func (d *Downloader) destinationPath(rawURL string, destination string) (string, error) {
	info, err := os.Stat(destination)
	if err == nil && info.IsDir() {
		parsed, err := url.Parse(rawURL)
		if err != nil {
			return "", &DownloadError{URL: rawURL, Err: err}
		}
		return filepath.Join(destination, path.Base(parsed.Path)), nil
	}
	return destination, nil
}
