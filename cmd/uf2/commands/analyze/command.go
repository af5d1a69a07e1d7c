// Package analyze implements `uf2 analyze`: per-block inspection of a UF2
// image file.
package analyze

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/dhrosa/uf2tool/cmd/uf2/commands"
	"github.com/dhrosa/uf2tool/uf2"
)

// Command is the implementation of commands.Command.
type Command struct{}

// Usage prints the syntax of arguments for this command.
func (cmd Command) Usage() string {
	return "<path>"
}

// Description explains what this verb does.
func (cmd Command) Description() string {
	return "print a per-block summary of a UF2 image"
}

// SetupFlagSet registers the verb's option flags.
func (cmd *Command) SetupFlagSet(flag *pflag.FlagSet) {}

// Execute streams block summaries without loading the whole file, so
// arbitrarily large images are fine.
func (cmd Command) Execute(ctx context.Context, cfg commands.Config, args []string) error {
	if len(args) != 1 {
		return commands.ErrArgs{Err: fmt.Errorf("exactly one image path is required")}
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	var blocks int
	var payloadBytes uint64
	var family uint32
	var familySeen, mixedFamily bool
	scanner := uf2.NewScanner(f)
	for scanner.Scan() {
		summary := scanner.Summary()
		fmt.Fprintln(cfg.Stdout, summary)
		blocks++
		payloadBytes += uint64(summary.PayloadSize)
		if summary.Flags.HasFamilyID() {
			if familySeen && summary.FamilyID != family {
				mixedFamily = true
			}
			family = summary.FamilyID
			familySeen = true
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if mixedFamily {
		cfg.Logger.Warn("image blocks disagree on family ID")
	}

	fmt.Fprintf(cfg.Stdout, "%d blocks, %s of payload\n", blocks, humanize.Bytes(payloadBytes))
	return nil
}
