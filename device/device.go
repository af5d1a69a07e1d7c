package device

import (
	"fmt"
	"regexp"
	"strings"
)

// Identity is the vendor/model/serial triple identifying a USB device.
type Identity struct {
	Vendor string
	Model  string
	Serial string
}

// DeviceIdentity returns the identity itself; it exists so that types
// embedding Identity satisfy the Identifiable constraint.
func (i Identity) DeviceIdentity() Identity {
	return i
}

func (i Identity) String() string {
	return fmt.Sprintf("%s %s (serial %s)", i.Vendor, i.Model, i.Serial)
}

// Identifiable is satisfied by every device kind in this package.
type Identifiable interface {
	DeviceIdentity() Identity
}

// Device is a CircuitPython board in normal mode: a composite USB device
// with a CIRCUITPY partition and usually a serial port.
type Device struct {
	Identity

	// PartitionPath is the block device of the CIRCUITPY partition,
	// e.g. /dev/sda1
	PartitionPath string

	// SerialPath is the serial port device, e.g. /dev/ttyACM0.
	// Empty when the board exposes no serial interface.
	SerialPath string
}

// BootInfo is the self-reported firmware information from a device's
// boot_out.txt.
type BootInfo struct {
	// Version is the CircuitPython version string
	Version string

	// BoardID is the CircuitPython board identifier, usable as a catalog key
	BoardID string
}

var (
	versionPattern = regexp.MustCompile(`^Adafruit CircuitPython (\S+)`)
	boardIDPattern = regexp.MustCompile(`^Board ID:(\S+)`)
)

// ParseBootOut parses the contents of a CIRCUITPY volume's boot_out.txt.
func ParseBootOut(text string) (BootInfo, error) {
	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return BootInfo{}, fmt.Errorf("boot_out.txt has %d lines, expected at least 2", len(lines))
	}
	versionMatch := versionPattern.FindStringSubmatch(lines[0])
	if versionMatch == nil {
		return BootInfo{}, fmt.Errorf("unable to parse version from line: %q", lines[0])
	}
	boardIDMatch := boardIDPattern.FindStringSubmatch(lines[1])
	if boardIDMatch == nil {
		return BootInfo{}, fmt.Errorf("unable to parse board ID from line: %q", lines[1])
	}
	return BootInfo{Version: versionMatch[1], BoardID: boardIDMatch[1]}, nil
}
