package backend

import (
	"github.com/zonekit/po2zone/pkg/zone"
)

// MemDevice is an in-memory zoned device. It cannot be resized.
type MemDevice struct {
	*zonedBuffer
}

// NewMemDevice creates a zoned device with zoneSectors sectors per zone.
// A capacity that is not a multiple of the zone size truncates to whole
// zones.
func NewMemDevice(zoneSectors, capacity int64) *MemDevice {
	zones := capacity / zoneSectors
	buf := make([]byte, zones*zoneSectors*zone.SectorSize)

	return &MemDevice{
		zonedBuffer: newZonedBuffer(buf, zoneSectors, capacity),
	}
}

func (m *MemDevice) Sync() error {
	return nil
}
