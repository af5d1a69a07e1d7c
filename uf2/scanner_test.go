package uf2

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanner(t *testing.T) {
	b0 := block(0, 2, 0x1000)
	b1 := block(1, 2, 0x1100)
	b1.Flags |= FlagFamilyID
	b1.FamilyID = 0xE48BFF56
	raw := buildImage(b0, b1)

	s := NewScanner(bytes.NewReader(raw))

	require.True(t, s.Scan())
	got := s.Summary()
	assert.Equal(t, 0, got.Index)
	assert.Equal(t, uint32(0x1000), got.TargetAddr)
	assert.Equal(t, uint32(3), got.PayloadSize)

	require.True(t, s.Scan())
	got = s.Summary()
	assert.Equal(t, 1, got.Index)
	assert.True(t, got.Flags.HasFamilyID())
	assert.Equal(t, uint32(0xE48BFF56), got.FamilyID)

	assert.False(t, s.Scan())
	assert.NoError(t, s.Err())
}

func TestScannerTruncatedInput(t *testing.T) {
	raw := buildImage(block(0, 1, 0x1000))
	s := NewScanner(bytes.NewReader(raw[:700]))

	require.True(t, s.Scan())
	assert.False(t, s.Scan())

	var sizeErr *ImageSizeError
	require.ErrorAs(t, s.Err(), &sizeErr)
	assert.Equal(t, 700, sizeErr.Size)
}

func TestScannerMalformedBlock(t *testing.T) {
	raw := buildImage(block(0, 2, 0x1000), block(1, 2, 0x1100))
	raw[BlockSize] = 0x00 // corrupt second block's start magic

	s := NewScanner(bytes.NewReader(raw))
	require.True(t, s.Scan())
	assert.False(t, s.Scan())

	var malformed *MalformedBlockError
	require.ErrorAs(t, s.Err(), &malformed)
	assert.Equal(t, 1, malformed.Index)
}

func TestScannerRestart(t *testing.T) {
	raw := buildImage(block(0, 1, 0x1000))

	for i := 0; i < 2; i++ {
		s := NewScanner(bytes.NewReader(raw))
		require.True(t, s.Scan())
		assert.Equal(t, 0, s.Summary().Index)
		assert.False(t, s.Scan())
		assert.NoError(t, s.Err())
	}
}

func TestScannerEmptyInput(t *testing.T) {
	s := NewScanner(bytes.NewReader(nil))
	assert.False(t, s.Scan())
	assert.NoError(t, s.Err())
}
