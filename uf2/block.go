package uf2

import (
	"encoding/binary"
)

// Constants for the UF2 block format.
const (
	// MagicStart0 is the first magic number at offset 0 of every block.
	MagicStart0 = 0x0A324655

	// MagicStart1 is the second magic number at offset 4 of every block.
	MagicStart1 = 0x9E5D5157

	// MagicEnd is the trailing magic number at offset 508 of every block.
	MagicEnd = 0x0AB16F30

	// BlockSize is the fixed size of every UF2 block in bytes.
	BlockSize = 512

	// MaxPayloadSize is the maximum number of payload bytes per block.
	MaxPayloadSize = 476

	// headerSize is the size of the block header preceding the payload.
	headerSize = 32
)

// Flags is the 32-bit flag bitfield of a UF2 block.
type Flags uint32

// Flag bits defined by the UF2 specification.
const (
	// FlagNotMainFlash marks a block that should not be written to flash.
	FlagNotMainFlash Flags = 0x00000001

	// FlagFileContainer marks a block holding file data rather than firmware.
	FlagFileContainer Flags = 0x00001000

	// FlagFamilyID indicates the FamilyID field is valid.
	FlagFamilyID Flags = 0x00002000

	// FlagMD5Checksum indicates the payload is followed by an MD5 checksum region.
	FlagMD5Checksum Flags = 0x00004000

	// FlagExtensions indicates extension tags follow the payload.
	FlagExtensions Flags = 0x00008000
)

// HasFamilyID reports whether the family ID flag bit is set.
func (f Flags) HasFamilyID() bool {
	return f&FlagFamilyID != 0
}

// Block is a single validated 512-byte UF2 block.
type Block struct {
	// Flags is the block's flag bitfield
	Flags Flags

	// TargetAddr is the flash address the payload is written to
	TargetAddr uint32

	// BlockNo is this block's sequence index within the image
	BlockNo uint32

	// NumBlocks is the total block count declared by this block
	NumBlocks uint32

	// FamilyID is the target microcontroller family; only meaningful
	// when Flags.HasFamilyID() is true
	FamilyID uint32

	// Payload is the used portion of the block's data region,
	// PayloadSize bytes long
	Payload []byte
}

// DecodeBlock parses a single 512-byte raw blob into a Block.
// The index is the block's position in the file and is only used
// for error reporting.
func DecodeBlock(raw []byte, index int) (*Block, error) {
	if len(raw) != BlockSize {
		return nil, &MalformedBlockError{
			Index:  index,
			Reason: "block must be exactly 512 bytes",
		}
	}

	magicStart0 := binary.LittleEndian.Uint32(raw[0:4])
	magicStart1 := binary.LittleEndian.Uint32(raw[4:8])
	magicEnd := binary.LittleEndian.Uint32(raw[508:512])

	if magicStart0 != MagicStart0 {
		return nil, &MalformedBlockError{
			Index:  index,
			Reason: "bad first start magic",
			Got:    magicStart0,
			Want:   MagicStart0,
		}
	}
	if magicStart1 != MagicStart1 {
		return nil, &MalformedBlockError{
			Index:  index,
			Reason: "bad second start magic",
			Got:    magicStart1,
			Want:   MagicStart1,
		}
	}
	if magicEnd != MagicEnd {
		return nil, &MalformedBlockError{
			Index:  index,
			Reason: "bad end magic",
			Got:    magicEnd,
			Want:   MagicEnd,
		}
	}

	payloadSize := binary.LittleEndian.Uint32(raw[16:20])
	if payloadSize > MaxPayloadSize {
		return nil, &MalformedBlockError{
			Index:  index,
			Reason: "payload size exceeds 476 bytes",
			Got:    payloadSize,
			Want:   MaxPayloadSize,
		}
	}

	payload := make([]byte, payloadSize)
	copy(payload, raw[headerSize:headerSize+payloadSize])

	return &Block{
		Flags:      Flags(binary.LittleEndian.Uint32(raw[8:12])),
		TargetAddr: binary.LittleEndian.Uint32(raw[12:16]),
		BlockNo:    binary.LittleEndian.Uint32(raw[20:24]),
		NumBlocks:  binary.LittleEndian.Uint32(raw[24:28]),
		FamilyID:   binary.LittleEndian.Uint32(raw[28:32]),
		Payload:    payload,
	}, nil
}

// Encode serializes the block into a 512-byte raw blob.
// The payload is zero-padded to fill the data region.
func (b *Block) Encode() []byte {
	raw := make([]byte, BlockSize)
	binary.LittleEndian.PutUint32(raw[0:4], MagicStart0)
	binary.LittleEndian.PutUint32(raw[4:8], MagicStart1)
	binary.LittleEndian.PutUint32(raw[8:12], uint32(b.Flags))
	binary.LittleEndian.PutUint32(raw[12:16], b.TargetAddr)
	binary.LittleEndian.PutUint32(raw[16:20], uint32(len(b.Payload)))
	binary.LittleEndian.PutUint32(raw[20:24], b.BlockNo)
	binary.LittleEndian.PutUint32(raw[24:28], b.NumBlocks)
	binary.LittleEndian.PutUint32(raw[28:32], b.FamilyID)
	copy(raw[headerSize:headerSize+MaxPayloadSize], b.Payload)
	binary.LittleEndian.PutUint32(raw[508:512], MagicEnd)
	return raw
}
