package device

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes an external command and returns its combined stdout.
// It exists so tests can substitute canned command output.
type Runner func(ctx context.Context, name string, args ...string) (string, error)

// ExecRunner runs commands with os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return "", fmt.Errorf("%s failed: %w", name, err)
	}
	return string(out), nil
}

// UsbEntry is one USB device record from udev.
type UsbEntry struct {
	// Path is the device node, e.g. /dev/sda1 or /dev/ttyACM0
	Path string

	Vendor string
	Model  string
	Serial string

	// VendorID and ModelID are the numeric USB IDs, used to correlate a
	// board's partition device with its serial device
	VendorID string
	ModelID  string

	// PartitionLabel is the filesystem label if this is a partition device
	PartitionLabel string

	// IsTTY reports whether this is a serial port device
	IsTTY bool
}

// ParseExportDB parses `udevadm info --export-db` output into USB entries.
// Non-USB devices and entries without a device node are skipped.
func ParseExportDB(text string) []UsbEntry {
	var entries []UsbEntry
	for _, record := range strings.Split(strings.TrimRight(text, "\n"), "\n\n") {
		props := parseProperties(record)
		if props["ID_BUS"] != "usb" || props["DEVNAME"] == "" {
			continue
		}
		serial := props["ID_USB_SERIAL_SHORT"]
		if serial == "" {
			serial = props["ID_USB_SERIAL"]
		}
		entries = append(entries, UsbEntry{
			Path:           props["DEVNAME"],
			Vendor:         props["ID_USB_VENDOR"],
			Model:          props["ID_USB_MODEL"],
			Serial:         serial,
			VendorID:       props["ID_VENDOR_ID"],
			ModelID:        props["ID_MODEL_ID"],
			PartitionLabel: props["ID_FS_LABEL"],
			IsTTY:          props["SUBSYSTEM"] == "tty",
		})
	}
	return entries
}

// parseProperties extracts the E: KEY=VALUE property lines of one udev
// record.
func parseProperties(record string) map[string]string {
	props := make(map[string]string)
	for _, line := range strings.Split(record, "\n") {
		value, ok := strings.CutPrefix(line, "E: ")
		if !ok {
			continue
		}
		key, val, ok := strings.Cut(value, "=")
		if !ok {
			continue
		}
		props[key] = val
	}
	return props
}

// circuitPythonLabel is the filesystem label of a CircuitPython board's
// normal-mode volume.
const circuitPythonLabel = "CIRCUITPY"

// Lister takes fresh snapshots of attached normal-mode CircuitPython
// devices via udev.
type Lister struct {
	// Run executes udevadm; defaults to ExecRunner
	Run Runner
}

// Devices returns a snapshot of attached CircuitPython devices in normal
// mode: every CIRCUITPY-labeled partition, with its serial port merged in
// when the same physical board exposes one.
func (l *Lister) Devices(ctx context.Context) ([]Device, error) {
	run := l.Run
	if run == nil {
		run = ExecRunner
	}
	out, err := run(ctx, "udevadm", "info", "--export-db")
	if err != nil {
		return nil, fmt.Errorf("udev enumeration failed: %w", err)
	}
	return assembleDevices(ParseExportDB(out)), nil
}

// assembleDevices pairs CIRCUITPY partitions with serial ports from the
// same physical board. Each partition yields its own device: boards sharing
// USB IDs and serial (e.g. both with empty serials) stay distinct by
// partition path, and an ambiguous tty merges into all of them.
func assembleDevices(entries []UsbEntry) []Device {
	type key struct {
		vendorID string
		modelID  string
		serial   string
	}

	byKey := make(map[key][]*Device)
	var order []*Device
	for _, entry := range entries {
		if entry.PartitionLabel != circuitPythonLabel {
			continue
		}
		k := key{entry.VendorID, entry.ModelID, entry.Serial}
		d := &Device{
			Identity: Identity{
				Vendor: entry.Vendor,
				Model:  entry.Model,
				Serial: entry.Serial,
			},
			PartitionPath: entry.Path,
		}
		byKey[k] = append(byKey[k], d)
		order = append(order, d)
	}

	for _, entry := range entries {
		if !entry.IsTTY {
			continue
		}
		k := key{entry.VendorID, entry.ModelID, entry.Serial}
		for _, d := range byKey[k] {
			// Prefer the serial device's descriptor strings; they tend to
			// be more descriptive than the mass-storage interface's.
			d.Vendor = entry.Vendor
			d.Model = entry.Model
			d.Serial = entry.Serial
			d.SerialPath = entry.Path
		}
	}

	devices := make([]Device, 0, len(order))
	for _, d := range order {
		devices = append(devices, *d)
	}
	return devices
}
