package backend

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zonekit/po2zone/pkg/zone"
)

func TestNewMmapDevice(t *testing.T) {
	name := filepath.Join(t.TempDir(), "zoned_test")

	dev, err := NewMmapDevice(name, 12, 120)
	require.NoError(t, err)
	defer dev.Close()

	fileInfo, err := os.Stat(name)
	require.NoError(t, err)
	assert.Equal(t, int64(120*zone.SectorSize), fileInfo.Size())

	assert.Equal(t, int64(12), dev.ZoneSectors())
	assert.Equal(t, int64(120), dev.Capacity())
}

func TestMmapDevice_ReadWrite(t *testing.T) {
	name := filepath.Join(t.TempDir(), "zoned_test")

	dev, err := NewMmapDevice(name, 12, 120)
	require.NoError(t, err)
	defer dev.Close()

	data := sectors(4, 0xaa)
	n, err := dev.WriteAt(data, 0)
	require.NoError(t, err)
	assert.Equal(t, len(data), n)

	got := make([]byte, len(data))
	n, err = dev.ReadAt(got, 0)
	require.NoError(t, err)
	assert.Equal(t, len(data), n)
	assert.True(t, bytes.Equal(data, got))

	require.NoError(t, dev.Sync())
}

func TestMmapDevice_Close(t *testing.T) {
	name := filepath.Join(t.TempDir(), "zoned_test")

	dev, err := NewMmapDevice(name, 12, 120)
	require.NoError(t, err)

	_, err = dev.WriteAt(sectors(2, 0xbb), 0)
	require.NoError(t, err)

	require.NoError(t, dev.Close())
}
