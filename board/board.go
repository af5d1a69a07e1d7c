package board

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// DownloadPrefix is the base URL CircuitPython images are published under.
const DownloadPrefix = "https://adafruit-circuit-python.s3.amazonaws.com/bin"

// CatalogURL is the published board index the embedded snapshot is taken
// from, and the source for catalog refreshes.
const CatalogURL = "https://raw.githubusercontent.com/adafruit/circuitpython-org/main/_data/files.json"

//go:embed boards.json
var embeddedCatalog []byte

// Version is a CircuitPython release for a board.
type Version struct {
	// Label is the version string, e.g. "9.0.5"
	Label string

	// Locales lists the locale codes this release was built for
	Locales []string
}

// SupportsLocale reports whether the release was built for the given locale.
func (v Version) SupportsLocale(locale string) bool {
	for _, l := range v.Locales {
		if l == locale {
			return true
		}
	}
	return false
}

// Board is one catalog entry: a board ID and its available releases.
// At most one stable and one unstable version exist per board.
type Board struct {
	ID string

	StableVersion   *Version
	UnstableVersion *Version

	// Downloads is the all-time download count, used for popularity sorting
	Downloads int
}

// Versions lists available versions, most stable first.
func (b Board) Versions() []Version {
	var versions []Version
	if b.StableVersion != nil {
		versions = append(versions, *b.StableVersion)
	}
	if b.UnstableVersion != nil {
		versions = append(versions, *b.UnstableVersion)
	}
	return versions
}

// MostRecentVersion returns the newest release, preferring unstable over
// stable when both exist.
func (b Board) MostRecentVersion() Version {
	versions := b.Versions()
	return versions[len(versions)-1]
}

// DownloadURL constructs the image URL for the given release and locale.
// This is pure string construction; no I/O is performed and the locale is
// not checked against the release's locale list.
func (b Board) DownloadURL(version Version, locale string) string {
	file := fmt.Sprintf("adafruit-circuitpython-%s-%s-%s.uf2", b.ID, locale, version.Label)
	return fmt.Sprintf("%s/%s/%s/%s", DownloadPrefix, b.ID, locale, file)
}

// Catalog maps board IDs to catalog entries. Read-only after construction.
type Catalog struct {
	boards map[string]Board
}

// catalogEntry mirrors the JSON structure of circuitpython.org's files.json.
type catalogEntry struct {
	ID        string `json:"id"`
	Downloads int    `json:"downloads"`
	Versions  []struct {
		Version    string   `json:"version"`
		Stable     bool     `json:"stable"`
		Languages  []string `json:"languages"`
		Extensions []string `json:"extensions"`
	} `json:"versions"`
}

// ParseCatalog reads a catalog from files.json-formatted JSON. Boards with
// no UF2 releases are omitted.
func ParseCatalog(r io.Reader) (*Catalog, error) {
	var entries []catalogEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode board catalog: %w", err)
	}

	catalog := &Catalog{boards: make(map[string]Board, len(entries))}
	for _, entry := range entries {
		b := Board{ID: entry.ID, Downloads: entry.Downloads}
		for _, v := range entry.Versions {
			if !hasUF2(v.Extensions) {
				continue
			}
			version := &Version{Label: v.Version, Locales: v.Languages}
			if v.Stable {
				b.StableVersion = version
			} else {
				b.UnstableVersion = version
			}
		}
		if b.StableVersion == nil && b.UnstableVersion == nil {
			continue
		}
		catalog.boards[b.ID] = b
	}
	return catalog, nil
}

// DefaultCatalog returns the catalog from the embedded snapshot.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(bytes.NewReader(embeddedCatalog))
}

// ByID looks up a board by ID.
func (c *Catalog) ByID(id string) (Board, error) {
	b, ok := c.boards[id]
	if !ok {
		return Board{}, &UnknownBoardError{ID: id}
	}
	return b, nil
}

// Boards lists all catalog entries, sorted by decreasing popularity and then
// alphabetically by ID.
func (c *Catalog) Boards() []Board {
	boards := make([]Board, 0, len(c.boards))
	for _, b := range c.boards {
		boards = append(boards, b)
	}
	sort.Slice(boards, func(i, j int) bool {
		if boards[i].Downloads != boards[j].Downloads {
			return boards[i].Downloads > boards[j].Downloads
		}
		return boards[i].ID < boards[j].ID
	})
	return boards
}

// Locales returns the set of all locale codes appearing in the catalog,
// sorted alphabetically.
func (c *Catalog) Locales() []string {
	seen := make(map[string]bool)
	for _, b := range c.boards {
		for _, v := range b.Versions() {
			for _, l := range v.Locales {
				seen[l] = true
			}
		}
	}
	locales := make([]string, 0, len(seen))
	for l := range seen {
		locales = append(locales, l)
	}
	sort.Strings(locales)
	return locales
}

func hasUF2(extensions []string) bool {
	for _, ext := range extensions {
		if ext == "uf2" {
			return true
		}
	}
	return false
}
