// Package po2 presents a zoned device with an arbitrary zone size as a
// logical device whose zones have power-of-two size. The tail of each
// logical zone that has no physical backing reads as zeroes and is never
// writable.
package po2

import (
	"math/bits"
)

// Geometry holds the per-device translation parameters. It is computed once
// at construction and never mutated.
type Geometry struct {
	// ZoneSectors is the usable zone size of the backing device.
	ZoneSectors int64

	// PO2ZoneSectors is ZoneSectors rounded up to the nearest power of two.
	// This is the zone size the logical device advertises.
	PO2ZoneSectors int64

	// Shift is log2(PO2ZoneSectors).
	Shift uint

	// SizeDiff is PO2ZoneSectors - ZoneSectors, the per-zone emulated tail.
	SizeDiff int64

	// Zones is the number of zones on the device.
	Zones int64

	// Capacity is the logical device length in sectors,
	// PO2ZoneSectors * Zones.
	Capacity int64
}

// NewGeometry derives the translation parameters from the backing device's
// zone size and capacity, both in sectors. A capacity that is not a multiple
// of the zone size truncates to whole zones.
func NewGeometry(zoneSectors, devCapacity int64) (Geometry, error) {
	if zoneSectors <= 0 {
		return Geometry{}, &ConfigurationError{Reason: "zone size must be a positive sector count"}
	}
	if devCapacity < zoneSectors {
		return Geometry{}, &ConfigurationError{Reason: "device capacity is smaller than a single zone"}
	}

	po2 := nextPowerOfTwo(zoneSectors)
	zones := devCapacity / zoneSectors

	return Geometry{
		ZoneSectors:    zoneSectors,
		PO2ZoneSectors: po2,
		Shift:          uint(bits.TrailingZeros64(uint64(po2))),
		SizeDiff:       po2 - zoneSectors,
		Zones:          zones,
		Capacity:       po2 * zones,
	}, nil
}

func nextPowerOfTwo(v int64) int64 {
	if v&(v-1) == 0 {
		return v
	}

	return 1 << bits.Len64(uint64(v))
}

// AlreadyPO2 reports whether the backing zone size was already a power of
// two, in which case the emulation adds no value.
func (g Geometry) AlreadyPO2() bool {
	return g.SizeDiff == 0
}

// ZoneIndex is the index of the logical zone containing the logical sector.
func (g Geometry) ZoneIndex(sector int64) int64 {
	return sector >> g.Shift
}

// DeviceZoneIndex is the index of the physical zone containing the device
// sector. Physical zones are not power-of-two sized, so this divides.
func (g Geometry) DeviceZoneIndex(sector int64) int64 {
	return sector / g.ZoneSectors
}

// ToDevice maps a logical sector to its backing device sector. Only valid
// for sectors below the zone's emulated boundary.
func (g Geometry) ToDevice(sector int64) int64 {
	return sector - g.ZoneIndex(sector)*g.SizeDiff
}

// ToTarget maps a device sector back to its logical sector. Inverse of
// ToDevice on the physically backed ranges.
func (g Geometry) ToTarget(sector int64) int64 {
	return sector + g.DeviceZoneIndex(sector)*g.SizeDiff
}

// Boundary is the first logical sector of the emulated tail of the given
// logical zone. Sectors at or past it have no physical backing.
func (g Geometry) Boundary(zoneIdx int64) int64 {
	return zoneIdx<<g.Shift + g.ZoneSectors
}
