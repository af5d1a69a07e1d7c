package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureDevices() []Device {
	return []Device{
		{
			Identity:      Identity{Vendor: "Raspberry Pi", Model: "Pico", Serial: "E660C0D1C75D8C32"},
			PartitionPath: "/dev/sda1",
			SerialPath:    "/dev/ttyACM0",
		},
		{
			Identity:      Identity{Vendor: "Adafruit Industries", Model: "Feather RP2040", Serial: "A1B2C3"},
			PartitionPath: "/dev/sdb1",
		},
		{
			Identity:      Identity{Vendor: "Adafruit Industries", Model: "QT Py RP2040", Serial: "D4E5F6"},
			PartitionPath: "/dev/sdc1",
		},
	}
}

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    Query
		wantErr bool
	}{
		{name: "empty matches anything", value: "", want: AnyQuery()},
		{name: "all fields", value: "Raspberry:Pico:E660", want: Query{"Raspberry", "Pico", "E660"}},
		{name: "vendor only", value: "Adafruit::", want: Query{Vendor: "Adafruit"}},
		{name: "wildcards", value: "::", want: AnyQuery()},
		{name: "too few parts", value: "Adafruit:", wantErr: true},
		{name: "too many parts", value: "a:b:c:d", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseQuery(tt.value)
			if tt.wantErr {
				var parseErr *QueryParseError
				require.ErrorAs(t, err, &parseErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQueryMatchesIsCaseSensitive(t *testing.T) {
	id := Identity{Vendor: "Adafruit Industries", Model: "Feather", Serial: "A1"}
	assert.True(t, Query{Vendor: "Adafruit"}.Matches(id))
	assert.False(t, Query{Vendor: "adafruit"}.Matches(id))
}

func TestFilter(t *testing.T) {
	devices := fixtureDevices()

	matched := Filter(Query{Vendor: "Adafruit"}, devices)
	require.Len(t, matched, 2)

	matched = Filter(AnyQuery(), devices)
	assert.Len(t, matched, 3)

	matched = Filter(Query{Serial: "ZZZ"}, devices)
	assert.Empty(t, matched)
}

func TestResolveSingle(t *testing.T) {
	devices := fixtureDevices()

	t.Run("exactly one", func(t *testing.T) {
		d, err := ResolveSingle(Query{Model: "Pico"}, devices)
		require.NoError(t, err)
		assert.Equal(t, "/dev/sda1", d.PartitionPath)
	})

	t.Run("no match", func(t *testing.T) {
		_, err := ResolveSingle(Query{Vendor: "SparkFun"}, devices)
		var noMatch *NoMatchError
		require.ErrorAs(t, err, &noMatch)
	})

	t.Run("ambiguous lists all candidates", func(t *testing.T) {
		_, err := ResolveSingle(Query{Vendor: "Adafruit"}, devices)
		var ambiguous *AmbiguousMatchError
		require.ErrorAs(t, err, &ambiguous)
		assert.Len(t, ambiguous.Candidates, 2)
	})
}

func TestResolveSingleBootloaderDevices(t *testing.T) {
	// The resolver operates uniformly over bootloader-mode devices.
	devices := []BootloaderDevice{
		{Identity: Identity{Model: "Raspberry Pi RP2", Serial: "RPI-RP2"}, MountPath: "/media/a/RPI-RP2"},
		{Identity: Identity{Model: "Raspberry Pi RP2", Serial: "RPI-RP2"}, MountPath: "/media/a/RPI-RP21"},
	}

	_, err := ResolveSingle(Query{Model: "RP2"}, devices)
	var ambiguous *AmbiguousMatchError
	require.ErrorAs(t, err, &ambiguous)

	d, err := ResolveSingle(AnyQuery(), devices[:1])
	require.NoError(t, err)
	assert.Equal(t, "/media/a/RPI-RP2", d.MountPath)
}
