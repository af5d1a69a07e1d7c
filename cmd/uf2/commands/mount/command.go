// Package mount implements `uf2 mount`: mounting a bootloader partition
// device through udisks.
package mount

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/dhrosa/uf2tool/cmd/uf2/commands"
	"github.com/dhrosa/uf2tool/cmd/uf2/helpers"
	"github.com/dhrosa/uf2tool/device"
)

// Command is the implementation of commands.Command.
type Command struct {
	label *string
}

// Usage prints the syntax of arguments for this command.
func (cmd Command) Usage() string {
	return "[query]"
}

// Description explains what this verb does.
func (cmd Command) Description() string {
	return "mount a bootloader partition if it is not already mounted"
}

// SetupFlagSet registers the verb's option flags.
func (cmd *Command) SetupFlagSet(flag *pflag.FlagSet) {
	cmd.label = flag.String("label", "RPI-RP2", "filesystem label of the bootloader partition")
}

// Execute resolves the single matching bootloader partition and mounts it.
func (cmd Command) Execute(ctx context.Context, cfg commands.Config, args []string) error {
	query, err := helpers.QueryFromArgs(args)
	if err != nil {
		return err
	}
	partitions, err := helpers.LabeledPartitions(ctx, nil, *cmd.label)
	if err != nil {
		return err
	}
	p, err := device.ResolveSingle(query, partitions)
	if err != nil {
		return err
	}

	mounter := device.Mounter{Logger: cfg.Logger}
	mountpoint, err := mounter.MountIfNeeded(ctx, p.Path)
	if err != nil {
		return err
	}
	fmt.Fprintln(cfg.Stdout, mountpoint)
	return nil
}
