package uf2

import (
	"errors"
	"fmt"
	"io"
)

// Summary is a lightweight per-block view produced by Scanner. It carries
// the block's metadata but not its payload bytes, so arbitrarily large
// images can be inspected without holding them in memory.
type Summary struct {
	// Index is the block's position in the file
	Index int

	Flags       Flags
	TargetAddr  uint32
	PayloadSize uint32
	BlockNo     uint32
	NumBlocks   uint32

	// FamilyID is only meaningful when Flags.HasFamilyID() is true
	FamilyID uint32
}

// Scanner iterates over the blocks of a UF2 image in file order, one
// 512-byte block at a time. The usage mirrors bufio.Scanner:
//
//	s := uf2.NewScanner(file)
//	for s.Scan() {
//	    fmt.Println(s.Summary())
//	}
//	if err := s.Err(); err != nil {
//	    log.Fatal(err)
//	}
//
// A Scanner performs no whole-image validation (block count consistency,
// sequence completeness); each block is only checked structurally. To
// restart iteration, create a new Scanner from a re-opened source.
type Scanner struct {
	r       io.Reader
	buf     [BlockSize]byte
	index   int
	summary Summary
	err     error
	done    bool
}

// NewScanner returns a Scanner reading blocks from r.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{r: r}
}

// Scan advances to the next block. It returns false when the input is
// exhausted or an error occurs; Err distinguishes the two.
func (s *Scanner) Scan() bool {
	if s.done || s.err != nil {
		return false
	}

	n, err := io.ReadFull(s.r, s.buf[:])
	if errors.Is(err, io.EOF) {
		s.done = true
		return false
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		s.err = &ImageSizeError{Size: s.index*BlockSize + n}
		return false
	}
	if err != nil {
		s.err = fmt.Errorf("failed to read block %d: %w", s.index, err)
		return false
	}

	block, err := DecodeBlock(s.buf[:], s.index)
	if err != nil {
		s.err = err
		return false
	}

	s.summary = Summary{
		Index:       s.index,
		Flags:       block.Flags,
		TargetAddr:  block.TargetAddr,
		PayloadSize: uint32(len(block.Payload)),
		BlockNo:     block.BlockNo,
		NumBlocks:   block.NumBlocks,
		FamilyID:    block.FamilyID,
	}
	s.index++
	return true
}

// Summary returns the most recent block summary produced by Scan.
func (s *Scanner) Summary() Summary {
	return s.summary
}

// Err returns the first error encountered by the Scanner, or nil if the
// input was exhausted cleanly.
func (s *Scanner) Err() error {
	return s.err
}

// String renders the summary in a single line suitable for terminal output.
func (b Summary) String() string {
	family := "-"
	if b.Flags.HasFamilyID() {
		family = fmt.Sprintf("0x%08X", b.FamilyID)
	}
	return fmt.Sprintf("block %d/%d: addr=0x%08X payload=%d flags=0x%08X family=%s",
		b.BlockNo, b.NumBlocks, b.TargetAddr, b.PayloadSize, uint32(b.Flags), family)
}
