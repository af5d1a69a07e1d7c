// Package download implements `uf2 download`: fetching a CircuitPython UF2
// image for a board.
package download

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/dhrosa/uf2tool/board"
	"github.com/dhrosa/uf2tool/cmd/uf2/commands"
)

// Command is the implementation of commands.Command.
type Command struct {
	locale    *string
	offline   *bool
	overwrite *bool
	remote    *bool
}

// Usage prints the syntax of arguments for this command.
func (cmd Command) Usage() string {
	return "<board> [destination]"
}

// Description explains what this verb does.
func (cmd Command) Description() string {
	return "download the newest CircuitPython image for a board"
}

// SetupFlagSet registers the verb's option flags.
func (cmd *Command) SetupFlagSet(flag *pflag.FlagSet) {
	cmd.locale = flag.String("locale", "en_US", "image locale")
	cmd.offline = flag.Bool("offline", false, "print the download URL without fetching it")
	cmd.overwrite = flag.Bool("overwrite", false, "replace an existing file at the destination")
	cmd.remote = flag.Bool("remote-catalog", false, "resolve the board against the live catalog instead of the embedded snapshot")
}

// Execute resolves the board to a URL and fetches it into the destination
// directory (default current directory).
func (cmd Command) Execute(ctx context.Context, cfg commands.Config, args []string) error {
	if len(args) < 1 {
		return commands.ErrArgs{Err: fmt.Errorf("a board ID is required")}
	}
	if len(args) > 2 {
		return commands.ErrArgs{Err: fmt.Errorf("too many arguments")}
	}
	boardID := args[0]
	destination := "."
	if len(args) == 2 {
		destination = args[1]
	}

	opts := []board.DownloadOption{
		board.WithDownloadLogger(cfg.Logger),
		board.WithOffline(*cmd.offline),
		board.WithOverwrite(*cmd.overwrite),
	}
	if cache, err := board.DefaultCache(); err == nil {
		opts = append(opts, board.WithCache(cache))
	} else {
		cfg.Logger.WithError(err).Warn("request cache unavailable")
	}
	downloader := board.NewDownloader(opts...)

	catalog, err := cmd.catalog(ctx, downloader)
	if err != nil {
		return err
	}
	b, err := catalog.ByID(boardID)
	if err != nil {
		return err
	}
	version := b.MostRecentVersion()
	if !version.SupportsLocale(*cmd.locale) {
		return &board.UnknownLocaleError{
			Locale:    *cmd.locale,
			BoardID:   boardID,
			Available: version.Locales,
		}
	}

	result, err := downloader.Fetch(ctx, b.DownloadURL(version, *cmd.locale), destination)
	if err != nil {
		return err
	}
	fmt.Fprintln(cfg.Stdout, result)
	return nil
}

func (cmd Command) catalog(ctx context.Context, downloader *board.Downloader) (*board.Catalog, error) {
	if *cmd.remote {
		return downloader.FetchCatalog(ctx)
	}
	return board.DefaultCatalog()
}
