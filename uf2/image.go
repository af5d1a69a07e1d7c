package uf2

import (
	"fmt"
	"io"
	"os"
	"sort"
)

// Image is an ordered sequence of validated UF2 blocks plus derived metadata.
// Images are built once by Parse and never mutated.
type Image struct {
	// Blocks holds every block in file order
	Blocks []*Block

	// NumBlocks is the total block count declared by the image
	NumBlocks uint32

	// HasFamilyID reports whether any block declared a family ID
	HasFamilyID bool

	// MixedFamily reports whether blocks disagreed on the family ID.
	// When true, FamilyID holds the first declared value and callers
	// should warn rather than trust it.
	MixedFamily bool

	// FamilyID is the uniform family ID declared by the image's blocks;
	// only meaningful when HasFamilyID is true and MixedFamily is false
	FamilyID uint32
}

// Parse parses and validates a complete UF2 image from raw bytes.
//
// The input length must be an exact multiple of 512. Every block must carry
// the expected magic numbers, all blocks must agree on the declared total
// block count, and the block numbers must be exactly {0..NumBlocks-1}.
// Blocks that disagree on family ID are tolerated; the image is marked as
// having a mixed family instead.
func Parse(raw []byte) (*Image, error) {
	if len(raw) == 0 || len(raw)%BlockSize != 0 {
		return nil, &ImageSizeError{Size: len(raw)}
	}

	img := &Image{}
	for offset, index := 0, 0; offset < len(raw); offset, index = offset+BlockSize, index+1 {
		block, err := DecodeBlock(raw[offset:offset+BlockSize], index)
		if err != nil {
			return nil, err
		}
		img.Blocks = append(img.Blocks, block)
	}

	img.NumBlocks = img.Blocks[0].NumBlocks
	for i, block := range img.Blocks {
		if block.NumBlocks != img.NumBlocks {
			return nil, &BlockCountError{
				Index: i,
				Got:   block.NumBlocks,
				Want:  img.NumBlocks,
			}
		}
	}

	if err := checkSequence(img.Blocks, img.NumBlocks); err != nil {
		return nil, err
	}

	for _, block := range img.Blocks {
		if !block.Flags.HasFamilyID() {
			continue
		}
		if !img.HasFamilyID {
			img.HasFamilyID = true
			img.FamilyID = block.FamilyID
			continue
		}
		if block.FamilyID != img.FamilyID {
			img.MixedFamily = true
		}
	}

	return img, nil
}

// ParseReader reads a complete UF2 image from r and parses it.
func ParseReader(r io.Reader) (*Image, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return Parse(raw)
}

// ParseFile parses a UF2 image from the given file path.
//
// Example:
//
//	img, err := uf2.ParseFile("firmware.uf2")
//	if err != nil {
//	    log.Fatal(err)
//	}
func ParseFile(path string) (*Image, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(raw)
}

// Payload reconstructs the image's flat payload: block payloads concatenated
// in target address order. Blocks flagged as not targeting main flash are
// skipped.
func (img *Image) Payload() []byte {
	blocks := make([]*Block, 0, len(img.Blocks))
	for _, block := range img.Blocks {
		if block.Flags&FlagNotMainFlash != 0 {
			continue
		}
		blocks = append(blocks, block)
	}
	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].TargetAddr < blocks[j].TargetAddr
	})

	var payload []byte
	for _, block := range blocks {
		payload = append(payload, block.Payload...)
	}
	return payload
}

// checkSequence verifies block numbers form exactly {0..numBlocks-1}.
func checkSequence(blocks []*Block, numBlocks uint32) error {
	seen := make(map[uint32]int, len(blocks))
	seqErr := &BlockSequenceError{NumBlocks: numBlocks}
	for _, block := range blocks {
		if block.BlockNo >= numBlocks {
			seqErr.OutOfRange = append(seqErr.OutOfRange, block.BlockNo)
			continue
		}
		seen[block.BlockNo]++
		if seen[block.BlockNo] == 2 {
			seqErr.Duplicated = append(seqErr.Duplicated, block.BlockNo)
		}
	}
	for n := uint32(0); n < numBlocks; n++ {
		if seen[n] == 0 {
			seqErr.Missing = append(seqErr.Missing, n)
		}
	}
	if len(seqErr.Missing) > 0 || len(seqErr.Duplicated) > 0 || len(seqErr.OutOfRange) > 0 {
		return seqErr
	}
	return nil
}
