// Package backend provides physical zoned devices for the po2 target: an
// in-memory device for tests and an mmap-backed device for real use. Both
// enforce the sequential-write rules of a host-managed device.
package backend

import (
	"sync"

	"github.com/zonekit/po2zone/pkg/zone"
)

// zonedBuffer implements the zoned device semantics over a flat byte
// buffer. The buffer is supplied by the concrete device (heap slice or
// mmapped file) and must hold capacity * SectorSize bytes.
type zonedBuffer struct {
	buf         []byte
	zoneSectors int64
	capacity    int64

	wp     []int64 // absolute device sector, one per zone
	states []zone.State
	marker *Marker
	mu     sync.RWMutex
}

func newZonedBuffer(buf []byte, zoneSectors, capacity int64) *zonedBuffer {
	zones := capacity / zoneSectors

	wp := make([]int64, zones)
	states := make([]zone.State, zones)
	for i := range wp {
		wp[i] = int64(i) * zoneSectors
		states[i] = zone.StateEmpty
	}

	return &zonedBuffer{
		buf:         buf,
		zoneSectors: zoneSectors,
		capacity:    zones * zoneSectors,
		wp:          wp,
		states:      states,
		marker:      NewMarker(uint(zones * zoneSectors)),
	}
}

func (z *zonedBuffer) ZoneSectors() int64 {
	return z.zoneSectors
}

func (z *zonedBuffer) Capacity() int64 {
	return z.capacity
}

// ReadAt serves sector-aligned reads. Sectors that were never written read
// as zeroes.
func (z *zonedBuffer) ReadAt(p []byte, off int64) (int, error) {
	if off%zone.SectorSize != 0 || len(p)%zone.SectorSize != 0 {
		return 0, zone.ErrOutOfRange{Sector: off / zone.SectorSize}
	}

	length := int64(len(p))
	if off+length > z.capacity*zone.SectorSize {
		return 0, zone.ErrOutOfRange{Sector: (off + length) / zone.SectorSize}
	}

	z.mu.RLock()
	defer z.mu.RUnlock()

	for s := int64(0); s < length/zone.SectorSize; s++ {
		sector := off/zone.SectorSize + s
		buf := p[s*zone.SectorSize : (s+1)*zone.SectorSize]

		if z.marker.IsMarked(sector) {
			copy(buf, z.buf[sector*zone.SectorSize:(sector+1)*zone.SectorSize])

			continue
		}

		for i := range buf {
			buf[i] = 0
		}
	}

	return int(length), nil
}

// WriteAt serves sector-aligned writes. The write must land exactly on the
// zone's write pointer and fit within the zone.
func (z *zonedBuffer) WriteAt(p []byte, off int64) (int, error) {
	if off%zone.SectorSize != 0 || len(p)%zone.SectorSize != 0 {
		return 0, zone.ErrOutOfRange{Sector: off / zone.SectorSize}
	}

	sector := off / zone.SectorSize
	sectors := int64(len(p)) / zone.SectorSize

	z.mu.Lock()
	defer z.mu.Unlock()

	if err := z.checkWrite(sector, sectors); err != nil {
		return 0, err
	}

	return z.commitWrite(sector, p), nil
}

// Append writes at the zone's write pointer and returns the landing sector.
func (z *zonedBuffer) Append(zoneStart int64, p []byte) (int64, error) {
	if zoneStart%z.zoneSectors != 0 || len(p)%zone.SectorSize != 0 {
		return 0, zone.ErrOutOfRange{Sector: zoneStart}
	}

	z.mu.Lock()
	defer z.mu.Unlock()

	zoneIdx := zoneStart / z.zoneSectors
	if zoneIdx >= int64(len(z.wp)) {
		return 0, zone.ErrOutOfRange{Sector: zoneStart}
	}

	landing := z.wp[zoneIdx]
	if err := z.checkWrite(landing, int64(len(p))/zone.SectorSize); err != nil {
		return 0, err
	}

	z.commitWrite(landing, p)

	return landing, nil
}

// checkWrite validates the sequential-write rules; caller holds the lock.
func (z *zonedBuffer) checkWrite(sector, sectors int64) error {
	zoneIdx := sector / z.zoneSectors
	if zoneIdx >= int64(len(z.wp)) {
		return zone.ErrOutOfRange{Sector: sector}
	}

	if sector != z.wp[zoneIdx] {
		return zone.ErrWriteMisaligned{Sector: sector, WritePointer: z.wp[zoneIdx]}
	}

	if sector+sectors > (zoneIdx+1)*z.zoneSectors {
		return zone.ErrZoneFull{Zone: zoneIdx}
	}

	return nil
}

// commitWrite copies the data, advances the write pointer, and updates the
// zone state; caller holds the lock and has validated the write.
func (z *zonedBuffer) commitWrite(sector int64, p []byte) int {
	copy(z.buf[sector*zone.SectorSize:], p)

	sectors := int64(len(p)) / zone.SectorSize
	for s := sector; s < sector+sectors; s++ {
		z.marker.Mark(s)
	}

	zoneIdx := sector / z.zoneSectors
	z.wp[zoneIdx] += sectors
	if z.wp[zoneIdx] == (zoneIdx+1)*z.zoneSectors {
		z.states[zoneIdx] = zone.StateFull
	} else if z.states[zoneIdx] == zone.StateEmpty || z.states[zoneIdx] == zone.StateClosed {
		z.states[zoneIdx] = zone.StateImplicitOpen
	}

	return len(p)
}

func (z *zonedBuffer) ManageZone(op zone.Op, zoneStart int64) error {
	if zoneStart%z.zoneSectors != 0 {
		return zone.ErrOutOfRange{Sector: zoneStart}
	}

	z.mu.Lock()
	defer z.mu.Unlock()

	zoneIdx := zoneStart / z.zoneSectors
	if zoneIdx >= int64(len(z.wp)) {
		return zone.ErrOutOfRange{Sector: zoneStart}
	}

	switch op {
	case zone.OpZoneReset:
		z.wp[zoneIdx] = zoneStart
		z.states[zoneIdx] = zone.StateEmpty
		z.marker.ClearRange(zoneStart, zoneStart+z.zoneSectors)
	case zone.OpZoneOpen:
		z.states[zoneIdx] = zone.StateExplicitOpen
	case zone.OpZoneClose:
		if z.states[zoneIdx] == zone.StateImplicitOpen || z.states[zoneIdx] == zone.StateExplicitOpen {
			z.states[zoneIdx] = zone.StateClosed
		}
	case zone.OpZoneFinish:
		z.wp[zoneIdx] = (zoneIdx + 1) * z.zoneSectors
		z.states[zoneIdx] = zone.StateFull
	default:
		return zone.ErrOutOfRange{Sector: zoneStart}
	}

	return nil
}

func (z *zonedBuffer) ReportZones(start int64, limit int, fn func(zone.Zone) error) error {
	z.mu.RLock()
	defer z.mu.RUnlock()

	first := start / z.zoneSectors
	for i := first; i < int64(len(z.wp)) && int(i-first) < limit; i++ {
		err := fn(zone.Zone{
			Start:        i * z.zoneSectors,
			WritePointer: z.wp[i],
			Sectors:      z.zoneSectors,
			State:        z.states[i],
			Type:         zone.TypeSeqWriteRequired,
		})
		if err != nil {
			return err
		}
	}

	return nil
}
