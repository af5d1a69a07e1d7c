//go:build !linux

package device

import (
	"context"
	"fmt"
	"runtime"
)

// EnterBootloader requires Linux termios support.
func (d Device) EnterBootloader(ctx context.Context) error {
	return fmt.Errorf("bootloader restart is not supported on %s", runtime.GOOS)
}
