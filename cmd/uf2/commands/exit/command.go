// Package exit implements `uf2 exit`: rebooting an RP2040 out of bootloader
// mode without touching flash.
package exit

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/dhrosa/uf2tool/cmd/uf2/commands"
	"github.com/dhrosa/uf2tool/cmd/uf2/helpers"
	"github.com/dhrosa/uf2tool/static"
)

// Command is the implementation of commands.Command.
type Command struct{}

// Usage prints the syntax of arguments for this command.
func (cmd Command) Usage() string {
	return "[query]"
}

// Description explains what this verb does.
func (cmd Command) Description() string {
	return "reboot an RP2040 out of bootloader mode without modifying flash"
}

// SetupFlagSet registers the verb's option flags.
func (cmd *Command) SetupFlagSet(flag *pflag.FlagSet) {}

// Execute writes the embedded exit image onto the single matching bootloader
// volume.
func (cmd Command) Execute(ctx context.Context, cfg commands.Config, args []string) error {
	query, err := helpers.QueryFromArgs(args)
	if err != nil {
		return err
	}
	d, err := helpers.ResolveBootloaderDevice(ctx, cfg.Logger, query)
	if err != nil {
		return err
	}
	if _, err := helpers.WriteHelperImage(d.MountPath, "uf2_exit.uf2", static.ExitImage()); err != nil {
		return err
	}
	fmt.Fprintf(cfg.Stdout, "rebooting device at %s\n", d.MountPath)
	return nil
}
