// Package uf2 provides parsing and encoding for UF2 firmware image files.
//
// # UF2 File Format
//
// A UF2 file is a sequence of fixed-size 512-byte blocks. Each block carries
// its own framing and metadata, so an image can be written to a bootloader's
// mass-storage volume in any order and reassembled by the device.
//
// Block layout (all integers little-endian):
//
//	[MagicStart0(4)][MagicStart1(4)][Flags(4)][TargetAddr(4)]
//	[PayloadSize(4)][BlockNo(4)][NumBlocks(4)][FamilyID(4)]
//	[Data(476)][MagicEnd(4)]
//
// MagicStart0, MagicStart1 and MagicEnd are fixed constants. PayloadSize is
// the number of Data bytes actually used (at most 476); the remainder of Data
// is zero padding. FamilyID identifies the target microcontroller family and
// is only meaningful when FlagFamilyID is set in Flags.
//
// # Usage
//
// Parse and validate a complete image:
//
//	img, err := uf2.ParseFile("firmware.uf2")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Blocks: %d\n", img.NumBlocks)
//	fmt.Printf("Payload: %d bytes\n", len(img.Payload()))
//
// Stream over blocks of a large image without holding it in memory:
//
//	s := uf2.NewScanner(file)
//	for s.Scan() {
//	    b := s.Summary()
//	    fmt.Printf("block %d @ 0x%08X (%d bytes)\n", b.BlockNo, b.TargetAddr, b.PayloadSize)
//	}
//	if err := s.Err(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Error Handling
//
// Parse returns typed errors for invalid images:
//   - MalformedBlockError for bad magic numbers or payload sizes, reported at
//     the first offending block index
//   - BlockCountError when blocks disagree on the declared total block count
//   - BlockSequenceError for missing or duplicated block numbers
//
// Blocks that disagree on family ID are not an error; the image reports a
// mixed family instead, and callers may warn.
//
// Format specification: https://github.com/microsoft/uf2
package uf2
