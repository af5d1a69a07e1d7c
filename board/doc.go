// Package board resolves CircuitPython board identifiers to downloadable UF2
// images.
//
// # Catalog
//
// The catalog maps a board ID to its available CircuitPython releases. A
// board has at most one stable and one unstable version, each with a list of
// supported locales. The package ships an embedded snapshot of the catalog
// and can refresh it from circuitpython.org's published board index.
//
//	catalog, err := board.DefaultCatalog()
//	b, err := catalog.ByID("raspberry_pi_pico")
//	url := b.DownloadURL(b.MostRecentVersion(), "en_US")
//
// # Downloading
//
// Downloader fetches an image URL into a destination directory, serving
// repeated requests from an on-disk cache keyed by URL. In offline mode no
// network or filesystem I/O is performed and Fetch returns the URL itself,
// letting callers preview a download.
//
//	dl := board.NewDownloader()
//	path, err := dl.Fetch(ctx, url, ".")
//
// The downloader deduplicates by filename only: an existing file at the
// destination path is a conflict, not a cache hit.
package board
