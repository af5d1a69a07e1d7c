package uf2

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildImage concatenates the encodings of the given blocks.
func buildImage(blocks ...*Block) []byte {
	var raw []byte
	for _, b := range blocks {
		raw = append(raw, b.Encode()...)
	}
	return raw
}

// block is a fixture helper producing a block with a small payload derived
// from its block number.
func block(no, total uint32, addr uint32) *Block {
	return &Block{
		TargetAddr: addr,
		BlockNo:    no,
		NumBlocks:  total,
		Payload:    []byte{byte(no), byte(no + 1), byte(no + 2)},
	}
}

func TestParseRoundTrip(t *testing.T) {
	blocks := []*Block{
		block(0, 3, 0x1000),
		block(1, 3, 0x1100),
		block(2, 3, 0x1200),
	}
	raw := buildImage(blocks...)

	img, err := Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, uint32(3), img.NumBlocks)
	assert.Len(t, img.Blocks, 3)
	for i, b := range img.Blocks {
		assert.Equal(t, blocks[i].TargetAddr, b.TargetAddr)
		assert.Equal(t, blocks[i].Payload, b.Payload)
	}

	var want []byte
	for _, b := range blocks {
		want = append(want, b.Payload...)
	}
	assert.Equal(t, want, img.Payload())
}

func TestParsePayloadAddressOrder(t *testing.T) {
	// Blocks appear in file order 0,1,2 but with descending target
	// addresses; the flat payload must follow address order.
	blocks := []*Block{
		block(0, 3, 0x3000),
		block(1, 3, 0x1000),
		block(2, 3, 0x2000),
	}
	img, err := Parse(buildImage(blocks...))
	require.NoError(t, err)

	want := append(append([]byte{}, blocks[1].Payload...), blocks[2].Payload...)
	want = append(want, blocks[0].Payload...)
	assert.Equal(t, want, img.Payload())
}

func TestParsePayloadSkipsNotMainFlash(t *testing.T) {
	b0 := block(0, 2, 0x1000)
	b1 := block(1, 2, 0x2000)
	b1.Flags |= FlagNotMainFlash

	img, err := Parse(buildImage(b0, b1))
	require.NoError(t, err)
	assert.Equal(t, b0.Payload, img.Payload())
}

func TestParseSizeErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{name: "empty", raw: nil},
		{name: "truncated block", raw: make([]byte, 100)},
		{name: "trailing bytes", raw: append(buildImage(block(0, 1, 0)), 0x00)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.raw)
			var sizeErr *ImageSizeError
			require.ErrorAs(t, err, &sizeErr)
			assert.Equal(t, len(tt.raw), sizeErr.Size)
		})
	}
}

func TestParseCorruptedMagic(t *testing.T) {
	tests := []struct {
		name   string
		offset int // byte offset within the corrupted block
	}{
		{name: "magic start 0", offset: 0},
		{name: "magic start 1", offset: 4},
		{name: "magic end", offset: 508},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := buildImage(
				block(0, 3, 0x1000),
				block(1, 3, 0x1100),
				block(2, 3, 0x1200),
			)
			// Corrupt the middle block.
			binary.LittleEndian.PutUint32(raw[BlockSize+tt.offset:], 0xDEADBEEF)

			_, err := Parse(raw)
			var malformed *MalformedBlockError
			require.ErrorAs(t, err, &malformed)
			// The error is reported at the corrupted block's index, and
			// later blocks are not blamed for the same cause.
			assert.Equal(t, 1, malformed.Index)
		})
	}
}

func TestParseOversizedPayload(t *testing.T) {
	raw := buildImage(block(0, 1, 0))
	binary.LittleEndian.PutUint32(raw[16:20], MaxPayloadSize+1)

	_, err := Parse(raw)
	var malformed *MalformedBlockError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, 0, malformed.Index)
}

func TestParseInconsistentBlockCount(t *testing.T) {
	b0 := block(0, 2, 0x1000)
	b1 := block(1, 3, 0x1100) // disagrees with block 0

	_, err := Parse(buildImage(b0, b1))
	var countErr *BlockCountError
	require.ErrorAs(t, err, &countErr)
	assert.Equal(t, 1, countErr.Index)
	assert.Equal(t, uint32(3), countErr.Got)
	assert.Equal(t, uint32(2), countErr.Want)
}

func TestParseBlockSequence(t *testing.T) {
	tests := []struct {
		name       string
		blockNos   []uint32
		total      uint32
		missing    []uint32
		duplicated []uint32
		outOfRange []uint32
	}{
		{
			name:     "gap",
			blockNos: []uint32{0, 2},
			total:    3,
			missing:  []uint32{1},
		},
		{
			name:       "duplicate",
			blockNos:   []uint32{0, 1, 1},
			total:      3,
			missing:    []uint32{2},
			duplicated: []uint32{1},
		},
		{
			name:       "out of range",
			blockNos:   []uint32{0, 5},
			total:      2,
			missing:    []uint32{1},
			outOfRange: []uint32{5},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var blocks []*Block
			for _, no := range tt.blockNos {
				blocks = append(blocks, block(no, tt.total, 0x1000+no*0x100))
			}
			_, err := Parse(buildImage(blocks...))
			var seqErr *BlockSequenceError
			require.ErrorAs(t, err, &seqErr)
			assert.Equal(t, tt.missing, seqErr.Missing)
			assert.Equal(t, tt.duplicated, seqErr.Duplicated)
			assert.Equal(t, tt.outOfRange, seqErr.OutOfRange)
		})
	}
}

func TestParseFamilyID(t *testing.T) {
	t.Run("uniform", func(t *testing.T) {
		b0 := block(0, 2, 0x1000)
		b0.Flags |= FlagFamilyID
		b0.FamilyID = 0xE48BFF56
		b1 := block(1, 2, 0x1100)
		b1.Flags |= FlagFamilyID
		b1.FamilyID = 0xE48BFF56

		img, err := Parse(buildImage(b0, b1))
		require.NoError(t, err)
		assert.True(t, img.HasFamilyID)
		assert.False(t, img.MixedFamily)
		assert.Equal(t, uint32(0xE48BFF56), img.FamilyID)
	})

	t.Run("mixed is tolerated", func(t *testing.T) {
		b0 := block(0, 2, 0x1000)
		b0.Flags |= FlagFamilyID
		b0.FamilyID = 0xE48BFF56
		b1 := block(1, 2, 0x1100)
		b1.Flags |= FlagFamilyID
		b1.FamilyID = 0x12345678

		img, err := Parse(buildImage(b0, b1))
		require.NoError(t, err)
		assert.True(t, img.HasFamilyID)
		assert.True(t, img.MixedFamily)
	})

	t.Run("absent", func(t *testing.T) {
		img, err := Parse(buildImage(block(0, 1, 0x1000)))
		require.NoError(t, err)
		assert.False(t, img.HasFamilyID)
	})

	t.Run("declared by subset", func(t *testing.T) {
		b0 := block(0, 2, 0x1000)
		b1 := block(1, 2, 0x1100)
		b1.Flags |= FlagFamilyID
		b1.FamilyID = 0xE48BFF56

		img, err := Parse(buildImage(b0, b1))
		require.NoError(t, err)
		assert.True(t, img.HasFamilyID)
		assert.False(t, img.MixedFamily)
		assert.Equal(t, uint32(0xE48BFF56), img.FamilyID)
	})
}

func TestParseReader(t *testing.T) {
	raw := buildImage(block(0, 1, 0x1000))
	img, err := ParseReader(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, uint32(1), img.NumBlocks)
}

func TestEncodeDecodeBlock(t *testing.T) {
	want := &Block{
		Flags:      FlagFamilyID,
		TargetAddr: 0x10004000,
		BlockNo:    7,
		NumBlocks:  32,
		FamilyID:   0xE48BFF56,
		Payload:    bytes.Repeat([]byte{0xAB}, 256),
	}
	got, err := DecodeBlock(want.Encode(), 7)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
