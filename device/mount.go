package device

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Mounter mounts and unmounts partition devices through udisks, the same
// mechanism desktop environments use, so no elevated privileges are needed.
type Mounter struct {
	// Run executes lsblk/udisksctl; defaults to ExecRunner
	Run Runner

	// Logger receives mount operation logs (optional)
	Logger logrus.FieldLogger
}

func (m *Mounter) run(ctx context.Context, name string, args ...string) (string, error) {
	if m.Run != nil {
		return m.Run(ctx, name, args...)
	}
	return ExecRunner(ctx, name, args...)
}

func (m *Mounter) log() logrus.FieldLogger {
	if m.Logger != nil {
		return m.Logger
	}
	return logrus.StandardLogger()
}

// Mountpoint returns where the partition device is mounted, or "" if it is
// not mounted.
func (m *Mounter) Mountpoint(ctx context.Context, partitionPath string) (string, error) {
	out, err := m.run(ctx, "lsblk", partitionPath, "--output", "mountpoint", "--noheadings")
	if err != nil {
		return "", &MountError{Device: partitionPath, Op: "mountpoint lookup", Err: err}
	}
	return strings.TrimSpace(out), nil
}

// MountIfNeeded mounts the partition device if it is not already mounted and
// returns the mountpoint.
func (m *Mounter) MountIfNeeded(ctx context.Context, partitionPath string) (string, error) {
	existing, err := m.Mountpoint(ctx, partitionPath)
	if err != nil {
		return "", err
	}
	if existing != "" {
		return existing, nil
	}

	out, err := m.run(ctx, "udisksctl", "mount", "--block-device", partitionPath, "--options", "noatime")
	if err != nil {
		return "", &MountError{Device: partitionPath, Op: "mount", Err: err}
	}
	m.log().WithField("device", partitionPath).Info(strings.TrimSpace(out))

	mountpoint, err := m.Mountpoint(ctx, partitionPath)
	if err != nil {
		return "", err
	}
	if mountpoint == "" {
		return "", &MountError{
			Device: partitionPath,
			Op:     "mount",
			Err:    fmt.Errorf("device not mounted after udisksctl reported success"),
		}
	}
	return mountpoint, nil
}

// UnmountIfNeeded unmounts the partition device if it is mounted.
func (m *Mounter) UnmountIfNeeded(ctx context.Context, partitionPath string) error {
	existing, err := m.Mountpoint(ctx, partitionPath)
	if err != nil {
		return err
	}
	if existing == "" {
		return nil
	}

	out, err := m.run(ctx, "udisksctl", "unmount", "--block-device", partitionPath)
	if err != nil {
		return &MountError{Device: partitionPath, Op: "unmount", Err: err}
	}
	m.log().WithField("device", partitionPath).Info(strings.TrimSpace(out))
	return nil
}
