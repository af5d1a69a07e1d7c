// Package installer drives the multi-step sequence that installs a UF2
// image onto a bootloader device.
//
// # Install Sequence
//
// One call to Installer.Install runs a single session through these states:
//
//	Idle -> ResolvingImage -> (RestartingDevice) -> AwaitingBootloader
//	     -> Mounting -> Copying -> AwaitingReboot -> Done
//
// RestartingDevice is skipped when no source device was specified; the
// session then assumes a bootloader device is already attached. A session
// that fails in any non-terminal state reports Failed with a typed error.
//
// # Basic Usage
//
//	inst := installer.New(
//	    installer.WithDetector(&device.Detector{}),
//	    installer.WithDeviceLister(&device.Lister{}),
//	    installer.WithFetcher(board.NewDownloader()),
//	)
//	err := inst.Install(ctx, installer.Request{
//	    ImagePath: "firmware.uf2",
//	    Query:     &query,
//	})
//
// # Timeouts and Cancellation
//
// Waiting for the device to reappear in bootloader mode (and optionally to
// leave it again) is implemented as polling with a wall-clock deadline, so a
// cancelled context is observed between polls rather than at the deadline.
// Cancellation is deliberately not honored while the image is being copied:
// interrupting a flash write can leave the device in a worse state than
// letting it finish.
//
// # Safety
//
// Flashing the wrong device is destructive, so when more than one bootloader
// device is attached and the caller gave no way to disambiguate, the session
// fails with AmbiguousBootloaderTargetError rather than guessing.
package installer
