package uf2

import (
	"fmt"
)

// ImageSizeError indicates the input is empty or its length is not a
// multiple of 512.
type ImageSizeError struct {
	Size int
}

func (e *ImageSizeError) Error() string {
	if e.Size == 0 {
		return "image is empty"
	}
	return fmt.Sprintf("image size %d is not a multiple of %d", e.Size, BlockSize)
}

// MalformedBlockError indicates a single block failed structural validation
// (bad magic number or oversized payload). Index is the block's position in
// the file.
type MalformedBlockError struct {
	Index  int
	Reason string
	Got    uint32
	Want   uint32
}

func (e *MalformedBlockError) Error() string {
	if e.Want == 0 && e.Got == 0 {
		return fmt.Sprintf("malformed block %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("malformed block %d: %s: got 0x%08X, want 0x%08X",
		e.Index, e.Reason, e.Got, e.Want)
}

// BlockCountError indicates blocks disagree on the declared total block
// count. Index is the first block whose declaration differs from block 0's.
type BlockCountError struct {
	Index int
	Got   uint32
	Want  uint32
}

func (e *BlockCountError) Error() string {
	return fmt.Sprintf("block %d declares total block count %d, but block 0 declared %d",
		e.Index, e.Got, e.Want)
}

// BlockSequenceError indicates the set of block numbers is not exactly
// {0..NumBlocks-1}: some numbers are missing, duplicated, or out of range.
type BlockSequenceError struct {
	NumBlocks  uint32
	Missing    []uint32
	Duplicated []uint32
	OutOfRange []uint32
}

func (e *BlockSequenceError) Error() string {
	return fmt.Sprintf("block numbers do not form 0..%d: missing %v, duplicated %v, out of range %v",
		e.NumBlocks-1, e.Missing, e.Duplicated, e.OutOfRange)
}
