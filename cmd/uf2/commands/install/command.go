// Package install implements `uf2 install`: the full restart/wait/copy
// sequence that puts a UF2 image onto a device.
package install

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"github.com/dhrosa/uf2tool/board"
	"github.com/dhrosa/uf2tool/cmd/uf2/commands"
	"github.com/dhrosa/uf2tool/device"
	"github.com/dhrosa/uf2tool/installer"
)

// Command is the implementation of commands.Command.
type Command struct {
	imagePath       *string
	boardID         *string
	locale          *string
	deviceQuery     *string
	bootloaderQuery *string
	deleteDownload  *bool
	bootloaderWait  *time.Duration
	noAwaitReboot   *bool
	remoteCatalog   *bool
}

// Usage prints the syntax of arguments for this command.
func (cmd Command) Usage() string {
	return ""
}

// Description explains what this verb does.
func (cmd Command) Description() string {
	return "install a UF2 image onto a device"
}

// SetupFlagSet registers the verb's option flags.
func (cmd *Command) SetupFlagSet(flag *pflag.FlagSet) {
	cmd.imagePath = flag.String("image-path", "", "path of a UF2 image to install")
	cmd.boardID = flag.String("board", "", "board ID whose CircuitPython image to download and install")
	cmd.locale = flag.String("locale", "en_US", "locale of the downloaded image")
	cmd.deviceQuery = flag.String("device", "", "vendor:model:serial query selecting the device to restart into its bootloader; empty substrings match anything. Without this flag a bootloader device must already be attached")
	cmd.bootloaderQuery = flag.String("bootloader-device", "", "vendor:model:serial query disambiguating between multiple attached bootloader devices")
	cmd.deleteDownload = flag.Bool("delete-download", false, "delete the downloaded image after the install")
	cmd.bootloaderWait = flag.Duration("timeout", 30*time.Second, "how long to wait for the bootloader device to appear")
	cmd.noAwaitReboot = flag.Bool("no-wait-reboot", false, "do not wait for the device to leave bootloader mode after the copy")
	cmd.remoteCatalog = flag.Bool("remote-catalog", false, "resolve --board against the live catalog instead of the embedded snapshot")
}

// Execute assembles an installer from real device and download components
// and runs one session.
func (cmd Command) Execute(ctx context.Context, cfg commands.Config, args []string) error {
	if len(args) != 0 {
		return commands.ErrArgs{Err: fmt.Errorf("install takes no positional arguments")}
	}

	req, err := cmd.request()
	if err != nil {
		return err
	}

	opts, err := cmd.options(ctx, cfg)
	if err != nil {
		return err
	}
	return installer.New(opts...).Install(ctx, req)
}

func (cmd Command) request() (installer.Request, error) {
	req := installer.Request{
		ImagePath:      *cmd.imagePath,
		BoardID:        *cmd.boardID,
		Locale:         *cmd.locale,
		DeleteDownload: *cmd.deleteDownload,
	}
	if *cmd.deviceQuery != "" {
		q, err := device.ParseQuery(*cmd.deviceQuery)
		if err != nil {
			return installer.Request{}, commands.ErrArgs{Err: err}
		}
		req.Query = &q
	}
	if *cmd.bootloaderQuery != "" {
		q, err := device.ParseQuery(*cmd.bootloaderQuery)
		if err != nil {
			return installer.Request{}, commands.ErrArgs{Err: err}
		}
		req.BootloaderQuery = &q
	}
	return req, nil
}

func (cmd Command) options(ctx context.Context, cfg commands.Config) ([]installer.Option, error) {
	opts := []installer.Option{
		installer.WithDetector(&device.Detector{Logger: cfg.Logger}),
		installer.WithDeviceLister(&device.Lister{}),
		installer.WithLogger(cfg.Logger),
		installer.WithProgressCallback(progressPrinter(cfg)),
	}
	if *cmd.noAwaitReboot {
		opts = append(opts, installer.WithAwaitReboot(false))
	}
	opts = append(opts, installer.WithBootloaderTimeout(*cmd.bootloaderWait))

	if *cmd.boardID != "" {
		downloadOpts := []board.DownloadOption{board.WithDownloadLogger(cfg.Logger)}
		if cache, err := board.DefaultCache(); err == nil {
			downloadOpts = append(downloadOpts, board.WithCache(cache))
		}
		downloader := board.NewDownloader(downloadOpts...)

		catalog, err := cmd.catalog(ctx, downloader)
		if err != nil {
			return nil, err
		}
		opts = append(opts,
			installer.WithCatalog(catalog),
			installer.WithFetcher(downloader),
		)
	}
	return opts, nil
}

func (cmd Command) catalog(ctx context.Context, downloader *board.Downloader) (*board.Catalog, error) {
	if *cmd.remoteCatalog {
		return downloader.FetchCatalog(ctx)
	}
	return board.DefaultCatalog()
}

// progressPrinter reports state transitions and copy progress on stdout.
func progressPrinter(cfg commands.Config) installer.ProgressCallback {
	var lastState installer.State
	return func(p installer.Progress) {
		if p.State != lastState {
			lastState = p.State
			fmt.Fprintf(cfg.Stdout, "%s\n", color.CyanString("[%s]", p.State))
		}
		if p.State == installer.StateCopying && p.TotalBytes > 0 {
			fmt.Fprintf(cfg.Stdout, "\r%s / %s",
				humanize.Bytes(uint64(p.BytesWritten)), humanize.Bytes(uint64(p.TotalBytes)))
			if p.BytesWritten == p.TotalBytes {
				fmt.Fprintln(cfg.Stdout)
			}
		}
	}
}
