package commands

import "fmt"

// ExitCoder overrides the process exit code chosen in main.
type ExitCoder interface {
	ExitCode() int
}

// ErrArgs indicates invalid positional arguments; main prints the verb's
// usage in response.
type ErrArgs struct {
	Err error
}

func (err ErrArgs) Error() string {
	return fmt.Sprintf("invalid arguments: %v", err.Err)
}

func (err ErrArgs) Unwrap() error {
	return err.Err
}
