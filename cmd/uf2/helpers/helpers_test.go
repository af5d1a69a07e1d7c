package helpers

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhrosa/uf2tool/cmd/uf2/commands"
	"github.com/dhrosa/uf2tool/device"
)

func TestQueryFromArgs(t *testing.T) {
	q, err := QueryFromArgs(nil)
	require.NoError(t, err)
	assert.Equal(t, device.AnyQuery(), q)

	q, err = QueryFromArgs([]string{"Raspberry:Pico:"})
	require.NoError(t, err)
	assert.Equal(t, "Raspberry", q.Vendor)
	assert.Equal(t, "Pico", q.Model)

	_, err = QueryFromArgs([]string{"not-a-query"})
	var errArgs commands.ErrArgs
	assert.ErrorAs(t, err, &errArgs)

	_, err = QueryFromArgs([]string{"a:b:c", "d:e:f"})
	assert.ErrorAs(t, err, &errArgs)
}

func TestWriteHelperImage(t *testing.T) {
	dir := t.TempDir()
	data := []byte{1, 2, 3, 4}

	path, err := WriteHelperImage(dir, "uf2_exit.uf2", data)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "uf2_exit.uf2"), path)

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, written)
}

const partitionExportDB = `P: /devices/platform/soc/usb1/1-1/block/sda/sda1
E: DEVNAME=/dev/sda1
E: SUBSYSTEM=block
E: ID_BUS=usb
E: ID_USB_VENDOR=Raspberry_Pi
E: ID_USB_MODEL=RP2_Boot
E: ID_USB_SERIAL_SHORT=E0C912345678
E: ID_VENDOR_ID=2e8a
E: ID_MODEL_ID=0003
E: ID_FS_LABEL=RPI-RP2

P: /devices/platform/soc/usb1/1-2/block/sdb/sdb1
E: DEVNAME=/dev/sdb1
E: SUBSYSTEM=block
E: ID_BUS=usb
E: ID_USB_VENDOR=Adafruit
E: ID_USB_MODEL=Feather
E: ID_USB_SERIAL_SHORT=ABC123
E: ID_VENDOR_ID=239a
E: ID_MODEL_ID=80f2
E: ID_FS_LABEL=CIRCUITPY
`

func TestLabeledPartitions(t *testing.T) {
	run := func(ctx context.Context, name string, args ...string) (string, error) {
		assert.Equal(t, "udevadm", name)
		return partitionExportDB, nil
	}

	partitions, err := LabeledPartitions(context.Background(), run, "RPI-RP2")
	require.NoError(t, err)
	require.Len(t, partitions, 1)
	assert.Equal(t, "/dev/sda1", partitions[0].Path)
	assert.Equal(t, "Raspberry_Pi", partitions[0].Vendor)

	// Resolvable through the generic query machinery.
	q, err := device.ParseQuery("Raspberry::")
	require.NoError(t, err)
	p, err := device.ResolveSingle(q, partitions)
	require.NoError(t, err)
	assert.Equal(t, "/dev/sda1", p.Path)
}
