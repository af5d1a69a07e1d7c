// Command uf2 inspects UF2 images and installs them onto devices with UF2
// mass-storage bootloaders.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/dhrosa/uf2tool/board"
	"github.com/dhrosa/uf2tool/cmd/uf2/commands"
	"github.com/dhrosa/uf2tool/cmd/uf2/commands/analyze"
	"github.com/dhrosa/uf2tool/cmd/uf2/commands/devices"
	"github.com/dhrosa/uf2tool/cmd/uf2/commands/download"
	"github.com/dhrosa/uf2tool/cmd/uf2/commands/enter"
	"github.com/dhrosa/uf2tool/cmd/uf2/commands/exit"
	"github.com/dhrosa/uf2tool/cmd/uf2/commands/install"
	"github.com/dhrosa/uf2tool/cmd/uf2/commands/mount"
	"github.com/dhrosa/uf2tool/cmd/uf2/commands/nuke"
	"github.com/dhrosa/uf2tool/cmd/uf2/commands/unmount"
	"github.com/dhrosa/uf2tool/cmd/uf2/commands/versions"
	"github.com/dhrosa/uf2tool/device"
	"github.com/dhrosa/uf2tool/installer"
	"github.com/dhrosa/uf2tool/uf2"
)

// Exit codes. Bad input and ambiguous targets are distinguished from
// environment failures so scripts can decide whether retrying makes sense.
const (
	exitInternal    = 1
	exitUsage       = 2
	exitEnvironment = 3
)

var knownCommands = map[string]commands.Command{
	"analyze":  &analyze.Command{},
	"devices":  &devices.Command{},
	"download": &download.Command{},
	"enter":    &enter.Command{},
	"exit":     &exit.Command{},
	"install":  &install.Command{},
	"mount":    &mount.Command{},
	"nuke":     &nuke.Command{},
	"unmount":  &unmount.Command{},
	"versions": &versions.Command{},
}

func usage(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, "syntax: uf2 <command> [options] {arguments}\n")
	fmt.Fprintf(os.Stderr, "\nCommands:\n")

	var names []string
	for name := range knownCommands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		command := knownCommands[name]
		fmt.Fprintf(os.Stderr, "    uf2 %-28s %s\n",
			fmt.Sprintf("%s %s", name, command.Usage()), command.Description())
	}

	fmt.Fprintf(os.Stderr, "\nOptions:\n%s\n", flagSet.FlagUsages())
}

func main() {
	os.Exit(run())
}

func run() int {
	flagSet := pflag.NewFlagSet("uf2", pflag.ContinueOnError)
	// Stop global flag parsing at the verb so verb flags pass through.
	flagSet.SetInterspersed(false)
	logLevel := flagSet.String("log-level", "warning", "logging level")
	noColor := flagSet.Bool("no-color", false, "disable colored output")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		usage(flagSet)
		return exitUsage
	}
	if *noColor {
		color.NoColor = true
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: unknown log level %q\n", *logLevel)
		return exitUsage
	}
	logger.SetLevel(level)

	if flagSet.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "error: no command specified\n\n")
		usage(flagSet)
		return exitUsage
	}
	commandName := flagSet.Arg(0)
	command := knownCommands[commandName]
	if command == nil {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n\n", commandName)
		usage(flagSet)
		return exitUsage
	}

	commandFlags := pflag.NewFlagSet(commandName, pflag.ContinueOnError)
	commandFlags.Usage = func() {
		fmt.Fprintf(os.Stderr, "syntax: uf2 %s [options] %s\n\nOptions:\n%s\n",
			commandName, command.Usage(), commandFlags.FlagUsages())
	}
	command.SetupFlagSet(commandFlags)
	if err := commandFlags.Parse(flagSet.Args()[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		commandFlags.Usage()
		return exitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := commands.Config{
		Logger: logger,
		Stdout: os.Stdout,
		Stdin:  os.Stdin,
	}
	err = command.Execute(ctx, cfg, commandFlags.Args())
	if err == nil {
		return 0
	}

	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	var errArgs commands.ErrArgs
	if errors.As(err, &errArgs) {
		commandFlags.Usage()
		return exitUsage
	}
	return exitCode(err)
}

// exitCode classifies an error as bad input, environment failure, or
// internal error.
func exitCode(err error) int {
	var exitCoder commands.ExitCoder
	if errors.As(err, &exitCoder) {
		return exitCoder.ExitCode()
	}

	var (
		queryParse    *device.QueryParseError
		noMatch       *device.NoMatchError
		ambiguous     *device.AmbiguousMatchError
		unknownBoard  *board.UnknownBoardError
		unknownLocale *board.UnknownLocaleError
		conflict      *board.DestinationConflictError
		badRequest    *installer.RequestError
		ambiguousBoot *installer.AmbiguousBootloaderTargetError
		badSize       *uf2.ImageSizeError
		malformed     *uf2.MalformedBlockError
		badCount      *uf2.BlockCountError
		badSequence   *uf2.BlockSequenceError
	)
	switch {
	case errors.As(err, &queryParse),
		errors.As(err, &noMatch),
		errors.As(err, &ambiguous),
		errors.As(err, &unknownBoard),
		errors.As(err, &unknownLocale),
		errors.As(err, &conflict),
		errors.As(err, &badRequest),
		errors.As(err, &ambiguousBoot),
		errors.As(err, &badSize),
		errors.As(err, &malformed),
		errors.As(err, &badCount),
		errors.As(err, &badSequence):
		return exitUsage
	}

	var (
		timeout     *installer.BootloaderTimeoutError
		mountFailed *installer.MountFailedError
		copyFailed  *installer.CopyError
		downloadErr *board.DownloadError
		mountErr    *device.MountError
	)
	switch {
	case errors.As(err, &timeout),
		errors.As(err, &mountFailed),
		errors.As(err, &copyFailed),
		errors.As(err, &downloadErr),
		errors.As(err, &mountErr),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return exitEnvironment
	}

	return exitInternal
}
