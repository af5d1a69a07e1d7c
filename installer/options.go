package installer

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dhrosa/uf2tool/board"
	"github.com/dhrosa/uf2tool/device"
)

// Detector enumerates devices currently in bootloader mode. Implemented by
// device.Detector; tests substitute scripted fakes.
type Detector interface {
	Enumerate(ctx context.Context) ([]device.BootloaderDevice, error)
}

// DeviceLister enumerates normal-mode devices. Implemented by device.Lister.
type DeviceLister interface {
	Devices(ctx context.Context) ([]device.Device, error)
}

// Fetcher retrieves an image URL into a destination directory. Implemented
// by board.Downloader.
type Fetcher interface {
	Fetch(ctx context.Context, url string, destination string) (string, error)
}

// Mounter ensures a bootloader device's volume is mounted and returns the
// mountpoint.
type Mounter interface {
	MountIfNeeded(ctx context.Context, d device.BootloaderDevice) (string, error)
}

// Config holds the installer configuration.
type Config struct {
	Detector Detector
	Devices  DeviceLister
	Fetcher  Fetcher
	Catalog  *board.Catalog
	Mounter  Mounter

	// Restart asks a normal-mode device to reboot into its bootloader;
	// defaults to Device.EnterBootloader
	Restart func(ctx context.Context, d device.Device) error

	// PollInterval is how often device enumeration is retried while waiting
	PollInterval time.Duration

	// BootloaderTimeout bounds the wait for a bootloader device to appear
	BootloaderTimeout time.Duration

	// RebootTimeout bounds the wait for the device to leave bootloader mode
	RebootTimeout time.Duration

	// AwaitReboot polls for the bootloader device to disappear after the
	// copy. Missing the disappearance is a warning, never a failure: fast
	// boards reboot before polling starts.
	AwaitReboot bool

	// Logger receives session logs (optional)
	Logger logrus.FieldLogger

	// Progress receives state transitions and copy progress (optional)
	Progress ProgressCallback
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Restart: func(ctx context.Context, d device.Device) error {
			return d.EnterBootloader(ctx)
		},
		PollInterval:      100 * time.Millisecond,
		BootloaderTimeout: 30 * time.Second,
		RebootTimeout:     10 * time.Second,
		AwaitReboot:       true,
		Logger:            logrus.StandardLogger(),
	}
}

// Option is a functional option for configuring the Installer.
type Option func(*Config)

// WithDetector sets the bootloader device detector.
func WithDetector(d Detector) Option {
	return func(c *Config) {
		c.Detector = d
	}
}

// WithDeviceLister sets the normal-mode device lister.
func WithDeviceLister(l DeviceLister) Option {
	return func(c *Config) {
		c.Devices = l
	}
}

// WithFetcher sets the image downloader.
func WithFetcher(f Fetcher) Option {
	return func(c *Config) {
		c.Fetcher = f
	}
}

// WithCatalog sets the board catalog used to resolve board IDs.
func WithCatalog(catalog *board.Catalog) Option {
	return func(c *Config) {
		c.Catalog = catalog
	}
}

// WithMounter sets the mounter used to bring up the bootloader volume.
func WithMounter(m Mounter) Option {
	return func(c *Config) {
		c.Mounter = m
	}
}

// WithRestart overrides how a device is asked to enter its bootloader.
func WithRestart(restart func(ctx context.Context, d device.Device) error) Option {
	return func(c *Config) {
		c.Restart = restart
	}
}

// WithPollInterval sets the device enumeration poll interval.
func WithPollInterval(interval time.Duration) Option {
	return func(c *Config) {
		if interval > 0 {
			c.PollInterval = interval
		}
	}
}

// WithBootloaderTimeout bounds the wait for a bootloader device to appear.
func WithBootloaderTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.BootloaderTimeout = timeout
	}
}

// WithRebootTimeout bounds the wait for the device to leave bootloader mode.
func WithRebootTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.RebootTimeout = timeout
	}
}

// WithAwaitReboot enables or disables waiting for the flashed device to
// leave bootloader mode. Default is true.
func WithAwaitReboot(await bool) Option {
	return func(c *Config) {
		c.AwaitReboot = await
	}
}

// WithLogger sets the session logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithProgressCallback sets a callback to track install progress.
//
// Example:
//
//	inst := installer.New(
//	    installer.WithProgressCallback(func(p installer.Progress) {
//	        fmt.Printf("[%s] %s\n", p.State, p.Elapsed)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.Progress = callback
	}
}
