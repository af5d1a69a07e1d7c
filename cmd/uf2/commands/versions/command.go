// Package versions implements `uf2 versions`: listing known boards and the
// CircuitPython versions available for them.
package versions

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"github.com/dhrosa/uf2tool/board"
	"github.com/dhrosa/uf2tool/cmd/uf2/commands"
)

// Command is the implementation of commands.Command.
type Command struct {
	remote *bool
}

// Usage prints the syntax of arguments for this command.
func (cmd Command) Usage() string {
	return "[board]"
}

// Description explains what this verb does.
func (cmd Command) Description() string {
	return "list known boards, or the versions available for one board"
}

// SetupFlagSet registers the verb's option flags.
func (cmd *Command) SetupFlagSet(flag *pflag.FlagSet) {
	cmd.remote = flag.Bool("remote-catalog", false, "use the live catalog instead of the embedded snapshot")
}

// Execute lists all boards, or the version/locale table of one board.
func (cmd Command) Execute(ctx context.Context, cfg commands.Config, args []string) error {
	if len(args) > 1 {
		return commands.ErrArgs{Err: fmt.Errorf("too many arguments")}
	}

	catalog, err := cmd.catalog(ctx, cfg)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		for _, b := range catalog.Boards() {
			fmt.Fprintf(cfg.Stdout, "%s  %s downloads\n",
				color.CyanString("%s", b.ID), humanize.Comma(int64(b.Downloads)))
		}
		return nil
	}

	b, err := catalog.ByID(args[0])
	if err != nil {
		return err
	}
	for _, v := range b.Versions() {
		fmt.Fprintf(cfg.Stdout, "%s  %s\n",
			color.CyanString("%s", v.Label), strings.Join(v.Locales, " "))
	}
	return nil
}

func (cmd Command) catalog(ctx context.Context, cfg commands.Config) (*board.Catalog, error) {
	if *cmd.remote {
		downloader := board.NewDownloader(board.WithDownloadLogger(cfg.Logger))
		return downloader.FetchCatalog(ctx)
	}
	return board.DefaultCatalog()
}
