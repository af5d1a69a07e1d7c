package device

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// EnterBootloader asks the device to restart into its UF2 bootloader by
// touching its serial port at 1200 baud, the convention RP2040-based
// CircuitPython builds recognize.
//
// This is fire-and-forget: the device disconnecting immediately afterwards
// is the expected outcome, not an error. Callers must poll for a bootloader
// device to appear; see the installer package.
func (d Device) EnterBootloader(ctx context.Context) error {
	if d.SerialPath == "" {
		return fmt.Errorf("device %s has no serial path to trigger the bootloader through", d.Identity)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.OpenFile(d.SerialPath, os.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", d.SerialPath, err)
	}
	defer func() { _ = f.Close() }()

	fd := int(f.Fd())
	attr, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return fmt.Errorf("failed to read termios attributes of %s: %w", d.SerialPath, err)
	}

	attr.Cflag &^= unix.CBAUD
	attr.Cflag |= unix.B1200
	attr.Ispeed = unix.B1200
	attr.Ospeed = unix.B1200

	logrus.WithField("serial", d.SerialPath).Info("triggering bootloader restart via 1200 baud touch")
	if err := unix.IoctlSetTermios(fd, unix.TCSETS, attr); err != nil {
		return fmt.Errorf("failed to set 1200 baud on %s: %w", d.SerialPath, err)
	}
	return nil
}
