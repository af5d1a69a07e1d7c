package installer

import (
	"fmt"
	"time"

	"github.com/dhrosa/uf2tool/device"
)

// RequestError indicates an invalid install request (caller error).
type RequestError struct {
	Reason string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("invalid install request: %s", e.Reason)
}

// ImageUnavailableError indicates the session could not resolve a UF2 image
// to install, either from a local path or from the board catalog.
type ImageUnavailableError struct {
	Source string
	Err    error
}

func (e *ImageUnavailableError) Error() string {
	return fmt.Sprintf("image unavailable from %s: %v", e.Source, e.Err)
}

func (e *ImageUnavailableError) Unwrap() error {
	return e.Err
}

// BootloaderTimeoutError indicates no bootloader device appeared within the
// configured timeout. Elapsed is the actual wait, so operators can judge
// whether retrying with a longer timeout is worthwhile.
type BootloaderTimeoutError struct {
	Elapsed time.Duration
	Timeout time.Duration
}

func (e *BootloaderTimeoutError) Error() string {
	return fmt.Sprintf("no bootloader device appeared after %s (timeout %s)",
		e.Elapsed.Round(time.Millisecond), e.Timeout)
}

// AmbiguousBootloaderTargetError indicates multiple bootloader devices are
// attached and the caller did not disambiguate. The session never guesses:
// flashing the wrong device is destructive.
type AmbiguousBootloaderTargetError struct {
	Candidates []device.BootloaderDevice
}

func (e *AmbiguousBootloaderTargetError) Error() string {
	return fmt.Sprintf("%d bootloader devices attached; refusing to pick one", len(e.Candidates))
}

// MountFailedError indicates the target bootloader volume could not be
// mounted.
type MountFailedError struct {
	Err error
}

func (e *MountFailedError) Error() string {
	return fmt.Sprintf("failed to mount bootloader volume: %v", e.Err)
}

func (e *MountFailedError) Unwrap() error {
	return e.Err
}

// CopyError indicates writing the image onto the bootloader volume failed.
// The write is treated as committed once started; the session never attempts
// to undo a partial flash.
type CopyError struct {
	Destination string
	Err         error
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("failed to copy image to %s: %v", e.Destination, e.Err)
}

func (e *CopyError) Unwrap() error {
	return e.Err
}
