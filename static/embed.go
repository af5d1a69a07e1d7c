// Package static carries prebuilt UF2 helper images for RP2040 boards.
package static

import (
	_ "embed"
)

//go:embed uf2_exit.uf2
var exitImage []byte

//go:embed flash_nuke.uf2
var nukeImage []byte

// ExitImage returns a UF2 image that reboots an RP2040 out of bootloader
// mode without modifying flash.
func ExitImage() []byte {
	return exitImage
}

// NukeImage returns a UF2 image that erases RP2040 flash contents.
func NukeImage() []byte {
	return nukeImage
}
