package device

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const infoFile = "UF2 Bootloader v3.0\nModel: Raspberry Pi RP2\nBoard-ID: RPI-RP2\n"

func TestParseInfoFile(t *testing.T) {
	info, err := ParseInfoFile(infoFile)
	require.NoError(t, err)
	assert.Equal(t, "UF2 Bootloader v3.0", info.Header)
	assert.Equal(t, "Raspberry Pi RP2", info.Model)
	assert.Equal(t, "RPI-RP2", info.BoardID)
}

func TestParseInfoFileCRLF(t *testing.T) {
	info, err := ParseInfoFile("UF2 Bootloader v2.0\r\nModel: PyBadge\r\nBoard-ID: SAMD51G19A-PyBadge-v0\r\n")
	require.NoError(t, err)
	assert.Equal(t, "PyBadge", info.Model)
}

func TestParseInfoFileMissingSignature(t *testing.T) {
	_, err := ParseInfoFile("CircuitPython boot output\n")
	assert.Error(t, err)
}

// writeVolume creates a fake mounted volume under root.
func writeVolume(t *testing.T, root, name string, files map[string]string) string {
	t.Helper()
	mount := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(mount, 0o755))
	for file, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(mount, file), []byte(content), 0o644))
	}
	return mount
}

func TestDetectorEnumerate(t *testing.T) {
	root := t.TempDir()
	bootMount := writeVolume(t, root, "RPI-RP2", map[string]string{InfoFileName: infoFile})
	// A normal-mode CircuitPython volume must not be classified as a
	// bootloader device.
	writeVolume(t, root, "CIRCUITPY", map[string]string{
		"boot_out.txt": "Adafruit CircuitPython 9.0.5\nBoard ID:raspberry_pi_pico\n",
	})
	// Unrelated removable volume.
	writeVolume(t, root, "BACKUP", map[string]string{"notes.txt": "hello"})

	detector := &Detector{Roots: []string{root, filepath.Join(root, "does-not-exist")}}
	devices, err := detector.Enumerate(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 1)

	d := devices[0]
	assert.Equal(t, bootMount, d.MountPath)
	assert.Equal(t, "Raspberry Pi RP2", d.Model)
	assert.Equal(t, "RPI-RP2", d.Info.BoardID)
}

func TestDetectorEnumerateEmpty(t *testing.T) {
	detector := &Detector{Roots: []string{t.TempDir()}}
	devices, err := detector.Enumerate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, devices)
}

func TestDetectorSnapshotIsFresh(t *testing.T) {
	root := t.TempDir()
	detector := &Detector{Roots: []string{root}}

	devices, err := detector.Enumerate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, devices)

	// A device appearing between calls shows up in the next snapshot.
	writeVolume(t, root, "RPI-RP2", map[string]string{InfoFileName: infoFile})
	devices, err = detector.Enumerate(context.Background())
	require.NoError(t, err)
	assert.Len(t, devices, 1)
}
