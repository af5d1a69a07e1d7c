package device

import (
	"fmt"
	"strings"
)

// QueryParseError indicates a malformed device query string.
type QueryParseError struct {
	Value  string
	Reason string
}

func (e *QueryParseError) Error() string {
	return fmt.Sprintf("invalid device query %q: %s", e.Value, e.Reason)
}

// NoMatchError indicates a query matched no attached device.
type NoMatchError struct {
	Query Query
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no device matches query %q", e.Query)
}

// AmbiguousMatchError indicates a query matched more than one device when
// exactly one was required.
type AmbiguousMatchError struct {
	Query      Query
	Candidates []Identity
}

func (e *AmbiguousMatchError) Error() string {
	names := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		names[i] = c.String()
	}
	return fmt.Sprintf("query %q matches %d devices: %s",
		e.Query, len(e.Candidates), strings.Join(names, "; "))
}

// MountError indicates a mount or unmount operation failed.
type MountError struct {
	Device string
	Op     string
	Err    error
}

func (e *MountError) Error() string {
	return fmt.Sprintf("%s of %s failed: %v", e.Op, e.Device, e.Err)
}

func (e *MountError) Unwrap() error {
	return e.Err
}
