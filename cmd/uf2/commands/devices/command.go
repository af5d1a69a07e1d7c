// Package devices implements `uf2 devices`: listing attached bootloader-mode
// devices, optionally filtered by a query.
package devices

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"github.com/dhrosa/uf2tool/cmd/uf2/commands"
	"github.com/dhrosa/uf2tool/cmd/uf2/helpers"
	"github.com/dhrosa/uf2tool/device"
)

// Command is the implementation of commands.Command.
type Command struct {
	normal *bool
}

// Usage prints the syntax of arguments for this command.
func (cmd Command) Usage() string {
	return "[query]"
}

// Description explains what this verb does.
func (cmd Command) Description() string {
	return "list attached bootloader-mode devices"
}

// SetupFlagSet registers the verb's option flags.
func (cmd *Command) SetupFlagSet(flag *pflag.FlagSet) {
	cmd.normal = flag.Bool("normal", false, "list normal-mode CircuitPython devices instead")
}

// Execute lists devices matching the optional query.
func (cmd Command) Execute(ctx context.Context, cfg commands.Config, args []string) error {
	query, err := helpers.QueryFromArgs(args)
	if err != nil {
		return err
	}

	if *cmd.normal {
		return cmd.listNormal(ctx, cfg, query)
	}
	return cmd.listBootloader(ctx, cfg, query)
}

func (cmd Command) listBootloader(ctx context.Context, cfg commands.Config, query device.Query) error {
	detector := device.Detector{Logger: cfg.Logger}
	found, err := detector.Enumerate(ctx)
	if err != nil {
		if len(found) == 0 {
			return err
		}
		cfg.Logger.WithError(err).Warn("some volumes could not be classified")
	}
	for _, d := range device.Filter(query, found) {
		fmt.Fprintf(cfg.Stdout, "%s  %s (%s)\n",
			color.CyanString("%s", d.MountPath), d.Info.Model, d.Info.BoardID)
	}
	return nil
}

func (cmd Command) listNormal(ctx context.Context, cfg commands.Config, query device.Query) error {
	lister := device.Lister{}
	found, err := lister.Devices(ctx)
	if err != nil {
		return err
	}
	for _, d := range device.Filter(query, found) {
		line := fmt.Sprintf("%s  %s",
			color.CyanString("%s", d.Identity.String()), d.PartitionPath)
		if d.SerialPath != "" {
			line += "  " + d.SerialPath
		}
		if info, ok := readBootInfo(ctx, d); ok {
			line += fmt.Sprintf("  CircuitPython %s", info.Version)
		}
		fmt.Fprintln(cfg.Stdout, line)
	}
	return nil
}

// readBootInfo reads the boot_out.txt a CircuitPython board leaves on its
// volume, when the volume happens to be mounted.
func readBootInfo(ctx context.Context, d device.Device) (device.BootInfo, bool) {
	mounter := device.Mounter{}
	mountpoint, err := mounter.Mountpoint(ctx, d.PartitionPath)
	if err != nil || mountpoint == "" {
		return device.BootInfo{}, false
	}
	text, err := os.ReadFile(filepath.Join(mountpoint, "boot_out.txt"))
	if err != nil {
		return device.BootInfo{}, false
	}
	info, err := device.ParseBootOut(string(text))
	if err != nil {
		return device.BootInfo{}, false
	}
	return info, true
}
