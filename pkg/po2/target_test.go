package po2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zonekit/po2zone/pkg/backend"
	"github.com/zonekit/po2zone/pkg/zone"
)

func newTestTarget(t *testing.T) (*Target, *backend.MemDevice) {
	t.Helper()

	dev := backend.NewMemDevice(12, 120)
	target, err := New(dev, Config{Sectors: dev.Capacity()})
	require.NoError(t, err)

	return target, dev
}

func TestNew_RejectsPartialMapping(t *testing.T) {
	dev := backend.NewMemDevice(12, 120)

	var confErr *ConfigurationError

	_, err := New(dev, Config{Begin: 12, Sectors: dev.Capacity()})
	require.ErrorAs(t, err, &confErr)

	_, err = New(dev, Config{Sectors: dev.Capacity() - 12})
	require.ErrorAs(t, err, &confErr)
}

func TestNew_WarnsWhenAlreadyPO2(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	dev := backend.NewMemDevice(16, 160)

	_, err := New(dev, Config{Sectors: dev.Capacity(), Logger: zap.New(core)})
	require.NoError(t, err)

	require.Equal(t, 1, logs.Len())
	assert.Contains(t, logs.All()[0].Message, "power of two")
}

func TestTarget_Properties(t *testing.T) {
	target, _ := newTestTarget(t)

	assert.Equal(t, int64(16), target.ChunkSectors())
	assert.Equal(t, int64(160), target.Capacity())
	assert.Equal(t, FeatureZonedHM|FeatureEmulatedZones, target.Features())
}

func TestTarget_ReportZones(t *testing.T) {
	target, dev := newTestTarget(t)

	// Four sectors into zone 0, two into zone 1 (device sector 12).
	_, err := dev.WriteAt(make([]byte, 4*zone.SectorSize), 0)
	require.NoError(t, err)
	_, err = dev.WriteAt(make([]byte, 2*zone.SectorSize), 12*zone.SectorSize)
	require.NoError(t, err)

	var zones []zone.Zone
	next, err := target.ReportZones(0, 3, func(z zone.Zone) error {
		zones = append(zones, z)

		return nil
	})
	require.NoError(t, err)
	require.Len(t, zones, 3)
	assert.Equal(t, int64(48), next)

	assert.Equal(t, int64(0), zones[0].Start)
	assert.Equal(t, int64(4), zones[0].WritePointer)
	assert.Equal(t, int64(16), zones[0].Sectors)
	assert.Equal(t, zone.StateImplicitOpen, zones[0].State)
	assert.Equal(t, zone.TypeSeqWriteRequired, zones[0].Type)

	assert.Equal(t, int64(16), zones[1].Start)
	assert.Equal(t, int64(18), zones[1].WritePointer)
	assert.Equal(t, int64(16), zones[1].Sectors)

	assert.Equal(t, int64(32), zones[2].Start)
	assert.Equal(t, int64(32), zones[2].WritePointer)
	assert.Equal(t, zone.StateEmpty, zones[2].State)
}

func TestTarget_ReportZones_FromCursor(t *testing.T) {
	target, _ := newTestTarget(t)

	var zones []zone.Zone
	next, err := target.ReportZones(16, 1, func(z zone.Zone) error {
		zones = append(zones, z)

		return nil
	})
	require.NoError(t, err)
	require.Len(t, zones, 1)

	assert.Equal(t, int64(16), zones[0].Start)
	assert.Equal(t, int64(32), next)
}

// Translating the same device state twice yields identical descriptors.
func TestTarget_ReportZones_Deterministic(t *testing.T) {
	target, dev := newTestTarget(t)

	_, err := dev.WriteAt(make([]byte, 3*zone.SectorSize), 0)
	require.NoError(t, err)

	collect := func() []zone.Zone {
		var zones []zone.Zone
		_, err := target.ReportZones(0, 10, func(z zone.Zone) error {
			zones = append(zones, z)

			return nil
		})
		require.NoError(t, err)

		return zones
	}

	assert.Equal(t, collect(), collect())
}

func TestTarget_IterateDevices(t *testing.T) {
	target, dev := newTestTarget(t)

	calls := 0
	err := target.IterateDevices(func(d zone.Device, start, sectors int64) error {
		calls++
		assert.Same(t, dev, d)
		assert.Equal(t, int64(0), start)
		assert.Equal(t, int64(120), sectors)

		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
