package installer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dhrosa/uf2tool/board"
	"github.com/dhrosa/uf2tool/device"
	"github.com/dhrosa/uf2tool/uf2"
)

// copyChunkSize is the buffer size for writing the image onto the
// bootloader volume.
const copyChunkSize = 64 * 1024

// Request describes one install invocation. Exactly one of ImagePath and
// BoardID must be set.
type Request struct {
	// ImagePath is an already-existing UF2 image to install
	ImagePath string

	// BoardID selects a CircuitPython image to download and install
	BoardID string

	// Locale for the downloaded image; defaults to en_US
	Locale string

	// Query selects the normal-mode device to restart into its bootloader.
	// When nil, the restart step is skipped and a bootloader device is
	// assumed to already be attached.
	Query *device.Query

	// BootloaderQuery disambiguates when multiple bootloader devices are
	// attached. When nil and more than one is present, the session fails.
	BootloaderQuery *device.Query

	// DeleteDownload removes the downloaded image once the session ends.
	// It has no effect when ImagePath was supplied by the caller.
	DeleteDownload bool
}

// Installer coordinates the restart/wait/copy/verify sequence of a UF2
// install. One Installer may run many sessions; each Install call owns its
// own session state, so unrelated sessions do not contend.
type Installer struct {
	config Config
}

// New creates an Installer with the given options.
func New(opts ...Option) *Installer {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Mounter == nil {
		cfg.Mounter = detectedVolumeMounter{}
	}
	return &Installer{config: cfg}
}

// session is the mutable state owned by one Install call.
type session struct {
	id    uuid.UUID
	start time.Time
	state State
	log   logrus.FieldLogger

	// downloadDir is the temporary directory holding a fetched image;
	// empty when the caller supplied the image
	downloadDir string
}

func (i *Installer) newSession() *session {
	s := &session{
		id:    uuid.New(),
		start: time.Now(),
		state: StateIdle,
	}
	s.log = i.config.Logger.WithField("session", s.id)
	return s
}

// enter transitions the session to a new state and reports progress.
func (i *Installer) enter(s *session, state State) {
	s.state = state
	s.log.WithField("state", state).Debug("state transition")
	i.report(s, Progress{State: state})
}

func (i *Installer) report(s *session, p Progress) {
	if i.config.Progress == nil {
		return
	}
	p.Elapsed = time.Since(s.start)
	i.config.Progress(p)
}

// fail transitions the session to Failed and returns err unchanged.
func (i *Installer) fail(s *session, err error) error {
	s.state = StateFailed
	s.log.WithError(err).Error("install failed")
	i.report(s, Progress{State: StateFailed})
	return err
}

// Install runs one complete install session. See the package documentation
// for the state sequence. The returned error is nil only when the session
// reached Done.
func (i *Installer) Install(ctx context.Context, req Request) error {
	s := i.newSession()
	defer i.cleanup(s, req)

	// ResolvingImage
	i.enter(s, StateResolvingImage)
	imagePath, err := i.resolveImage(ctx, s, req)
	if err != nil {
		return i.fail(s, err)
	}

	restarted := false
	if req.Query != nil {
		// RestartingDevice
		i.enter(s, StateRestartingDevice)
		if err := i.restartDevice(ctx, s, *req.Query); err != nil {
			return i.fail(s, err)
		}
		restarted = true
	}

	// AwaitingBootloader
	i.enter(s, StateAwaitingBootloader)
	target, err := i.awaitBootloader(ctx, s, req, restarted)
	if err != nil {
		return i.fail(s, err)
	}
	s.log.WithFields(logrus.Fields{
		"mount": target.MountPath,
		"model": target.Model,
	}).Info("selected bootloader device")

	// Mounting
	i.enter(s, StateMounting)
	mountpoint, err := i.config.Mounter.MountIfNeeded(ctx, target)
	if err != nil {
		return i.fail(s, &MountFailedError{Err: err})
	}

	// Copying
	i.enter(s, StateCopying)
	if err := i.copyImage(s, imagePath, mountpoint); err != nil {
		return i.fail(s, err)
	}

	// AwaitingReboot
	if i.config.AwaitReboot {
		i.enter(s, StateAwaitingReboot)
		i.awaitReboot(ctx, s, target)
	}

	i.enter(s, StateDone)
	s.log.WithField("elapsed", time.Since(s.start).String()).Info("install complete")
	return nil
}

// resolveImage produces the local path of the image to install, downloading
// it when a board ID was given.
func (i *Installer) resolveImage(ctx context.Context, s *session, req Request) (string, error) {
	if req.ImagePath == "" && req.BoardID == "" {
		return "", &RequestError{Reason: "one of an image path or a board ID is required"}
	}
	if req.ImagePath != "" && req.BoardID != "" {
		return "", &RequestError{Reason: "an image path and a board ID are mutually exclusive"}
	}

	imagePath := req.ImagePath
	if req.BoardID != "" {
		if i.config.Catalog == nil || i.config.Fetcher == nil {
			return "", &ImageUnavailableError{
				Source: req.BoardID,
				Err:    fmt.Errorf("no board catalog or downloader configured"),
			}
		}
		b, err := i.config.Catalog.ByID(req.BoardID)
		if err != nil {
			return "", &ImageUnavailableError{Source: req.BoardID, Err: err}
		}
		locale := req.Locale
		if locale == "" {
			locale = "en_US"
		}
		version := b.MostRecentVersion()
		if !version.SupportsLocale(locale) {
			return "", &ImageUnavailableError{
				Source: req.BoardID,
				Err: &board.UnknownLocaleError{
					Locale:    locale,
					BoardID:   req.BoardID,
					Available: version.Locales,
				},
			}
		}
		url := b.DownloadURL(version, locale)

		dir, err := os.MkdirTemp("", "uf2tool-")
		if err != nil {
			return "", &ImageUnavailableError{Source: url, Err: err}
		}
		s.downloadDir = dir

		imagePath, err = i.config.Fetcher.Fetch(ctx, url, dir)
		if err != nil {
			return "", &ImageUnavailableError{Source: url, Err: err}
		}
	}

	img, err := uf2.ParseFile(imagePath)
	if err != nil {
		return "", &ImageUnavailableError{Source: imagePath, Err: err}
	}
	if img.MixedFamily {
		s.log.WithField("path", imagePath).Warn("image blocks disagree on family ID")
	}
	s.log.WithFields(logrus.Fields{
		"path":   imagePath,
		"blocks": img.NumBlocks,
	}).Info("image validated")
	return imagePath, nil
}

// enumerate takes a detector snapshot, tolerating partial enumeration
// failures: an unreadable volume must not hide devices that were classified
// successfully, so the error is surfaced only when nothing was classified.
func (i *Installer) enumerate(ctx context.Context, s *session) ([]device.BootloaderDevice, error) {
	found, err := i.config.Detector.Enumerate(ctx)
	if err != nil {
		if len(found) == 0 {
			return nil, err
		}
		s.log.WithError(err).Warn("some volumes could not be classified")
	}
	return found, nil
}

// restartDevice resolves the source device and triggers its bootloader
// restart. The trigger is fire-and-forget; the device disconnecting
// afterwards is expected.
func (i *Installer) restartDevice(ctx context.Context, s *session, q device.Query) error {
	if i.config.Devices == nil {
		return fmt.Errorf("no device lister configured")
	}
	devices, err := i.config.Devices.Devices(ctx)
	if err != nil {
		return err
	}
	d, err := device.ResolveSingle(q, devices)
	if err != nil {
		return err
	}

	// A bootloader device that is already attached would be
	// indistinguishable from the one about to appear.
	existing, err := i.enumerate(ctx, s)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return &AmbiguousBootloaderTargetError{Candidates: existing}
	}

	s.log.WithField("device", d.Identity.String()).Info("restarting device into bootloader")
	return i.config.Restart(ctx, d)
}

// awaitBootloader polls the detector until at least one bootloader device is
// attached, then picks the target. Identity is never assumed to carry across
// the mode transition, so "the device reappeared" means "a bootloader device
// appeared": with several present the caller must disambiguate.
func (i *Installer) awaitBootloader(ctx context.Context, s *session, req Request, restarted bool) (device.BootloaderDevice, error) {
	var candidates []device.BootloaderDevice
	elapsed, err := pollUntil(ctx, i.config.PollInterval, i.config.BootloaderTimeout, func(ctx context.Context) (bool, error) {
		found, err := i.enumerate(ctx, s)
		if err != nil {
			return false, err
		}
		candidates = found
		return len(found) > 0, nil
	})
	if err == errPollTimeout {
		return device.BootloaderDevice{}, &BootloaderTimeoutError{
			Elapsed: elapsed,
			Timeout: i.config.BootloaderTimeout,
		}
	}
	if err != nil {
		return device.BootloaderDevice{}, err
	}
	if restarted {
		s.log.WithField("elapsed", elapsed.Round(time.Millisecond).String()).Info("device entered bootloader")
	}

	if len(candidates) == 1 {
		return candidates[0], nil
	}
	if req.BootloaderQuery != nil {
		return device.ResolveSingle(*req.BootloaderQuery, candidates)
	}
	return device.BootloaderDevice{}, &AmbiguousBootloaderTargetError{Candidates: candidates}
}

// copyImage writes the image onto the mounted bootloader volume under the
// image's own filename. A successful write makes the device flash and reboot
// on its own; cancellation is not honored here so the write either finishes
// or fails on its own terms.
func (i *Installer) copyImage(s *session, imagePath, mountpoint string) error {
	destination := filepath.Join(mountpoint, filepath.Base(imagePath))

	src, err := os.Open(imagePath)
	if err != nil {
		return &CopyError{Destination: destination, Err: err}
	}
	defer func() { _ = src.Close() }()

	info, err := src.Stat()
	if err != nil {
		return &CopyError{Destination: destination, Err: err}
	}
	total := info.Size()

	dst, err := os.Create(destination)
	if err != nil {
		return &CopyError{Destination: destination, Err: err}
	}

	var written int64
	buf := make([]byte, copyChunkSize)
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				_ = dst.Close()
				return &CopyError{Destination: destination, Err: err}
			}
			written += int64(n)
			i.report(s, Progress{State: StateCopying, BytesWritten: written, TotalBytes: total})
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			_ = dst.Close()
			return &CopyError{Destination: destination, Err: readErr}
		}
	}

	// Closing blocks until the kernel finishes flushing to the device,
	// which is when the bootloader starts flashing.
	if err := dst.Sync(); err != nil {
		_ = dst.Close()
		return &CopyError{Destination: destination, Err: err}
	}
	if err := dst.Close(); err != nil {
		return &CopyError{Destination: destination, Err: err}
	}
	s.log.WithFields(logrus.Fields{
		"destination": destination,
		"bytes":       written,
	}).Info("image copied")
	return nil
}

// awaitReboot polls for the target to leave bootloader mode. Failure to
// observe the disappearance is only a warning: fast boards reboot before
// the first poll.
func (i *Installer) awaitReboot(ctx context.Context, s *session, target device.BootloaderDevice) {
	elapsed, err := pollUntil(ctx, i.config.PollInterval, i.config.RebootTimeout, func(ctx context.Context) (bool, error) {
		devices, err := i.enumerate(ctx, s)
		if err != nil {
			return false, err
		}
		for _, d := range devices {
			if d.MountPath == target.MountPath {
				return false, nil
			}
		}
		return true, nil
	})
	switch {
	case err == errPollTimeout:
		s.log.WithField("timeout", i.config.RebootTimeout.String()).
			Warn("device still in bootloader mode; it may still reboot on its own")
	case err != nil:
		s.log.WithError(err).Warn("could not confirm device left bootloader mode")
	default:
		s.log.WithField("elapsed", elapsed.Round(time.Millisecond).String()).Info("device left bootloader mode")
	}
}

// cleanup removes the session's downloaded image when requested. Removal
// failure is logged, never escalated.
func (i *Installer) cleanup(s *session, req Request) {
	if s.downloadDir == "" {
		return
	}
	if !req.DeleteDownload {
		s.log.WithField("dir", s.downloadDir).Debug("keeping downloaded image")
		return
	}
	if err := os.RemoveAll(s.downloadDir); err != nil {
		s.log.WithError(err).Warn("failed to delete downloaded image")
		return
	}
	s.log.WithField("dir", s.downloadDir).Debug("deleted downloaded image")
}

// detectedVolumeMounter is the default Mounter: devices found by scanning
// mount roots are already mounted, so mount-if-needed is a lookup.
type detectedVolumeMounter struct{}

func (detectedVolumeMounter) MountIfNeeded(ctx context.Context, d device.BootloaderDevice) (string, error) {
	if d.MountPath == "" {
		return "", fmt.Errorf("bootloader device has no mountpoint")
	}
	if _, err := os.Stat(d.MountPath); err != nil {
		return "", fmt.Errorf("bootloader volume vanished: %w", err)
	}
	return d.MountPath, nil
}
