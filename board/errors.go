package board

import (
	"fmt"
)

// UnknownBoardError indicates the board ID is absent from the catalog.
type UnknownBoardError struct {
	ID string
}

func (e *UnknownBoardError) Error() string {
	return fmt.Sprintf("unknown board ID: %q", e.ID)
}

// UnknownLocaleError indicates the requested locale is not available for the
// board's release.
type UnknownLocaleError struct {
	Locale    string
	BoardID   string
	Available []string
}

func (e *UnknownLocaleError) Error() string {
	return fmt.Sprintf("locale %q is not available for board %q (available: %v)",
		e.Locale, e.BoardID, e.Available)
}

// DownloadError indicates an image retrieval failed, either from a transport
// error or a non-success HTTP status.
type DownloadError struct {
	URL    string
	Status int
	Err    error
}

func (e *DownloadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("download of %s failed: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("download of %s failed with status %d", e.URL, e.Status)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

// DestinationConflictError indicates a same-named file already exists at the
// download destination and overwriting was not requested.
type DestinationConflictError struct {
	Path string
}

func (e *DestinationConflictError) Error() string {
	return fmt.Sprintf("destination file already exists: %s", e.Path)
}
