// Package nuke implements `uf2 nuke`: erasing an RP2040's flash with the
// embedded flash-erase image.
package nuke

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"github.com/dhrosa/uf2tool/cmd/uf2/commands"
	"github.com/dhrosa/uf2tool/cmd/uf2/helpers"
	"github.com/dhrosa/uf2tool/static"
)

// Command is the implementation of commands.Command.
type Command struct {
	force *bool
}

// Usage prints the syntax of arguments for this command.
func (cmd Command) Usage() string {
	return "[query]"
}

// Description explains what this verb does.
func (cmd Command) Description() string {
	return "erase all flash contents of an RP2040 in bootloader mode"
}

// SetupFlagSet registers the verb's option flags.
func (cmd *Command) SetupFlagSet(flag *pflag.FlagSet) {
	cmd.force = flag.Bool("force", false, "skip the confirmation prompt")
}

// Execute erases the single matching bootloader device after an explicit
// confirmation.
func (cmd Command) Execute(ctx context.Context, cfg commands.Config, args []string) error {
	query, err := helpers.QueryFromArgs(args)
	if err != nil {
		return err
	}
	d, err := helpers.ResolveBootloaderDevice(ctx, cfg.Logger, query)
	if err != nil {
		return err
	}

	if !*cmd.force {
		fmt.Fprintf(cfg.Stdout, "%s erase ALL flash contents of %s (%s)? [y/N] ",
			color.RedString("warning:"), d.MountPath, d.Info.Model)
		line, err := bufio.NewReader(cfg.Stdin).ReadString('\n')
		if err != nil {
			return fmt.Errorf("confirmation aborted: %w", err)
		}
		if answer := strings.ToLower(strings.TrimSpace(line)); answer != "y" && answer != "yes" {
			fmt.Fprintln(cfg.Stdout, "aborted")
			return nil
		}
	}

	if _, err := helpers.WriteHelperImage(d.MountPath, "flash_nuke.uf2", static.NukeImage()); err != nil {
		return err
	}
	fmt.Fprintf(cfg.Stdout, "erasing flash of device at %s\n", d.MountPath)
	return nil
}
