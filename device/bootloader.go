package device

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
)

// InfoFileName is the self-describing info file every UF2 bootloader places
// at the root of its mass-storage volume.
const InfoFileName = "INFO_UF2.TXT"

// bootloaderTag is the signature on the first line of INFO_UF2.TXT that
// classifies a volume as a UF2 bootloader. A CIRCUITPY volume has no such
// file, so normal-mode devices are excluded naturally.
const bootloaderTag = "UF2 Bootloader"

// BootloaderInfo is the parsed contents of a bootloader's INFO_UF2.TXT.
type BootloaderInfo struct {
	// Header is the first line of the file, e.g. "UF2 Bootloader v3.0"
	Header string

	// Model is the bootloader's self-reported board model
	Model string

	// BoardID is the bootloader's board family hint, e.g. "RPI-RP2"
	BoardID string
}

// ParseInfoFile parses INFO_UF2.TXT contents. It fails when the signature
// tag is absent from the first line.
func ParseInfoFile(text string) (BootloaderInfo, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if !strings.Contains(lines[0], bootloaderTag) {
		return BootloaderInfo{}, fmt.Errorf("missing %q signature in first line: %q", bootloaderTag, lines[0])
	}
	info := BootloaderInfo{Header: strings.TrimSpace(lines[0])}
	for _, line := range lines[1:] {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch key {
		case "Model":
			info.Model = value
		case "Board-ID":
			info.BoardID = value
		}
	}
	return info, nil
}

// BootloaderDevice is a USB mass-storage device currently in UF2 bootloader
// mode. Its mount path doubles as its identity within one enumeration
// snapshot; nothing stronger is available, since bootloaders frequently do
// not expose the serial number the device has in normal mode.
type BootloaderDevice struct {
	Identity

	// MountPath is where the bootloader volume is mounted
	MountPath string

	// Info is the parsed INFO_UF2.TXT
	Info BootloaderInfo
}

// Detector finds devices currently in UF2 bootloader mode by scanning mount
// roots for volumes carrying the INFO_UF2.TXT signature file. Every call to
// Enumerate takes a fresh snapshot; nothing is cached.
type Detector struct {
	// Roots are the directories removable volumes are mounted under;
	// defaults to DefaultMountRoots()
	Roots []string

	// Logger receives per-volume classification logs (optional)
	Logger logrus.FieldLogger
}

// DefaultMountRoots returns the directories desktop environments mount
// removable volumes under.
func DefaultMountRoots() []string {
	roots := []string{"/media"}
	if u, err := user.Current(); err == nil {
		roots = append(roots,
			filepath.Join("/media", u.Username),
			filepath.Join("/run/media", u.Username),
		)
	}
	return roots
}

// Enumerate returns a snapshot of all bootloader-mode devices. Volumes that
// cannot be read are collected into the returned error but do not hide
// successfully classified devices.
func (d *Detector) Enumerate(ctx context.Context) ([]BootloaderDevice, error) {
	roots := d.Roots
	if len(roots) == 0 {
		roots = DefaultMountRoots()
	}
	log := d.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	var devices []BootloaderDevice
	var errs *multierror.Error
	for _, root := range roots {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		volumes, err := os.ReadDir(root)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		for _, volume := range volumes {
			if !volume.IsDir() {
				continue
			}
			mount := filepath.Join(root, volume.Name())
			text, err := os.ReadFile(filepath.Join(mount, InfoFileName))
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				errs = multierror.Append(errs, err)
				continue
			}
			info, err := ParseInfoFile(string(text))
			if err != nil {
				log.WithField("mount", mount).WithError(err).Debug("volume has info file but no bootloader signature")
				continue
			}
			devices = append(devices, BootloaderDevice{
				Identity:  Identity{Model: info.Model, Serial: info.BoardID},
				MountPath: mount,
				Info:      info,
			})
		}
	}
	return devices, errs.ErrorOrNil()
}
