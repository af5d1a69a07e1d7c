// Package commands defines the interface every uf2 verb implements, plus the
// shared configuration and error kinds used to map failures to exit codes.
package commands

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

// Command is one verb of the uf2 tool.
type Command interface {
	// Usage returns the syntax of the verb's positional arguments.
	Usage() string

	// Description is a one-line summary shown in the global help.
	Description() string

	// SetupFlagSet registers the verb's option flags.
	SetupFlagSet(flag *pflag.FlagSet)

	// Execute runs the verb. args are the positional arguments left after
	// flag parsing.
	Execute(ctx context.Context, cfg Config, args []string) error
}

// Config is the environment shared by all verbs.
type Config struct {
	// Logger receives diagnostics; verbs must not write them to Stdout
	Logger logrus.FieldLogger

	// Stdout receives the verb's primary output
	Stdout io.Writer

	// Stdin is read for interactive confirmations
	Stdin io.Reader
}
