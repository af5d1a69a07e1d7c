// Package enter implements `uf2 enter`: restarting a normal-mode device into
// its UF2 bootloader.
package enter

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/dhrosa/uf2tool/cmd/uf2/commands"
	"github.com/dhrosa/uf2tool/cmd/uf2/helpers"
)

// Command is the implementation of commands.Command.
type Command struct{}

// Usage prints the syntax of arguments for this command.
func (cmd Command) Usage() string {
	return "[query]"
}

// Description explains what this verb does.
func (cmd Command) Description() string {
	return "restart a device into its UF2 bootloader"
}

// SetupFlagSet registers the verb's option flags.
func (cmd *Command) SetupFlagSet(flag *pflag.FlagSet) {}

// Execute resolves the single matching normal-mode device and triggers its
// bootloader restart. The trigger is fire-and-forget; the device
// disconnecting afterwards is expected.
func (cmd Command) Execute(ctx context.Context, cfg commands.Config, args []string) error {
	query, err := helpers.QueryFromArgs(args)
	if err != nil {
		return err
	}
	d, err := helpers.ResolveNormalDevice(ctx, query)
	if err != nil {
		return err
	}
	if err := d.EnterBootloader(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cfg.Stdout, "restarted %s into bootloader mode\n", d.Identity.String())
	return nil
}
