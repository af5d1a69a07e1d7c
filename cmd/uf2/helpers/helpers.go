// Package helpers holds device resolution shared by the uf2 verbs.
package helpers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/dhrosa/uf2tool/cmd/uf2/commands"
	"github.com/dhrosa/uf2tool/device"
)

// QueryFromArgs interprets the optional positional device query of a verb.
// No argument matches any device.
func QueryFromArgs(args []string) (device.Query, error) {
	switch len(args) {
	case 0:
		return device.AnyQuery(), nil
	case 1:
		q, err := device.ParseQuery(args[0])
		if err != nil {
			return device.Query{}, commands.ErrArgs{Err: err}
		}
		return q, nil
	default:
		return device.Query{}, commands.ErrArgs{Err: fmt.Errorf("too many arguments")}
	}
}

// ResolveBootloaderDevice picks the single attached bootloader-mode device
// matching the query. Volumes that could not be classified are logged; the
// enumeration error is surfaced only when no device was classified at all.
func ResolveBootloaderDevice(ctx context.Context, log logrus.FieldLogger, q device.Query) (device.BootloaderDevice, error) {
	detector := device.Detector{Logger: log}
	found, err := detector.Enumerate(ctx)
	if err != nil {
		if len(found) == 0 {
			return device.BootloaderDevice{}, err
		}
		log.WithError(err).Warn("some volumes could not be classified")
	}
	return device.ResolveSingle(q, found)
}

// ResolveNormalDevice picks the single attached normal-mode CircuitPython
// device matching the query.
func ResolveNormalDevice(ctx context.Context, q device.Query) (device.Device, error) {
	lister := device.Lister{}
	found, err := lister.Devices(ctx)
	if err != nil {
		return device.Device{}, err
	}
	return device.ResolveSingle(q, found)
}

// WriteHelperImage writes an embedded UF2 helper image onto a mounted
// bootloader volume. Writing it makes the bootloader act on the image and
// reboot; the file never persists, so overwriting is not a concern.
func WriteHelperImage(mountpoint, name string, data []byte) (string, error) {
	destination := filepath.Join(mountpoint, name)
	f, err := os.Create(destination)
	if err != nil {
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return "", err
	}
	// Block until the kernel flushes to the device; that is when the
	// bootloader starts acting on the image.
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return "", err
	}
	return destination, f.Close()
}

// Partition is a USB partition device, used by the mount and unmount verbs
// to address a bootloader volume by its block device.
type Partition struct {
	device.Identity

	// Path is the partition's device node, e.g. /dev/sda1
	Path string

	// Label is the partition's filesystem label
	Label string
}

// LabeledPartitions returns all attached USB partitions carrying the given
// filesystem label.
func LabeledPartitions(ctx context.Context, run device.Runner, label string) ([]Partition, error) {
	if run == nil {
		run = device.ExecRunner
	}
	out, err := run(ctx, "udevadm", "info", "--export-db")
	if err != nil {
		return nil, fmt.Errorf("udev enumeration failed: %w", err)
	}

	var partitions []Partition
	for _, entry := range device.ParseExportDB(out) {
		if entry.PartitionLabel != label {
			continue
		}
		partitions = append(partitions, Partition{
			Identity: device.Identity{
				Vendor: entry.Vendor,
				Model:  entry.Model,
				Serial: entry.Serial,
			},
			Path:  entry.Path,
			Label: entry.PartitionLabel,
		})
	}
	return partitions, nil
}
