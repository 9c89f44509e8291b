package po2

import (
	"fmt"
	"io"

	"github.com/zonekit/po2zone/pkg/zone"
)

// LogicalDevice is the byte-addressed data plane over a target. It plays
// the dispatch framework's role: it splits I/O at logical zone boundaries,
// routes each piece, resubmits split remainders, and fills emulated reads
// with zeroes. Offsets are in bytes and must be sector aligned.
type LogicalDevice struct {
	target *Target
	dev    zone.Device
}

// NewLogicalDevice builds the data plane for a target.
func NewLogicalDevice(t *Target) *LogicalDevice {
	return &LogicalDevice{target: t, dev: t.dev}
}

// Size is the logical device length in bytes.
func (d *LogicalDevice) Size() (int64, error) {
	return d.target.Capacity() * zone.SectorSize, nil
}

// BlockSize is the I/O alignment unit in bytes.
func (d *LogicalDevice) BlockSize() int64 {
	return zone.SectorSize
}

func (d *LogicalDevice) Sync() error {
	return d.dev.Sync()
}

// clip bounds an I/O to the logical device length. It reports the byte
// length to serve and whether the request ran past the end.
func (d *LogicalDevice) clip(off, length int64) (int64, bool) {
	size := d.target.Capacity() * zone.SectorSize
	if off+length <= size {
		return length, false
	}
	if off >= size {
		return 0, true
	}

	return size - off, true
}

func (d *LogicalDevice) ReadAt(p []byte, off int64) (int, error) {
	if off%zone.SectorSize != 0 || len(p)%zone.SectorSize != 0 {
		return 0, ErrUnalignedIO{Offset: off, Length: len(p)}
	}

	length, eof := d.clip(off, int64(len(p)))

	var n int64
	for n < length {
		req := d.nextRequest(zone.OpRead, off+n, length-n)

		m, err := d.target.Route(req)
		if err != nil {
			return int(n), err
		}

		buf := p[n : n+m.Sectors*zone.SectorSize]
		switch m.Kind {
		case KindZeroFill:
			for i := range buf {
				buf[i] = 0
			}
		case KindRemap:
			if _, rErr := d.dev.ReadAt(buf, m.Sector*zone.SectorSize); rErr != nil {
				return int(n), fmt.Errorf("read %d sectors at device sector %d: %w", m.Sectors, m.Sector, rErr)
			}
		}

		// A split remainder starts right after the accepted part, so the
		// next iteration resubmits it as a fresh request.
		n += m.Sectors * zone.SectorSize
	}

	if eof {
		return int(n), io.EOF
	}

	return int(n), nil
}

func (d *LogicalDevice) WriteAt(p []byte, off int64) (int, error) {
	if off%zone.SectorSize != 0 || len(p)%zone.SectorSize != 0 {
		return 0, ErrUnalignedIO{Offset: off, Length: len(p)}
	}

	length, past := d.clip(off, int64(len(p)))
	if past {
		return 0, zone.ErrOutOfRange{Sector: (off + int64(len(p))) / zone.SectorSize}
	}

	var n int64
	for n < length {
		req := d.nextRequest(zone.OpWrite, off+n, length-n)

		m, err := d.target.Route(req)
		if err != nil {
			return int(n), err
		}

		buf := p[n : n+m.Sectors*zone.SectorSize]
		if _, wErr := d.dev.WriteAt(buf, m.Sector*zone.SectorSize); wErr != nil {
			return int(n), fmt.Errorf("write %d sectors at device sector %d: %w", m.Sectors, m.Sector, wErr)
		}

		n += m.Sectors * zone.SectorSize
	}

	return int(n), nil
}

// nextRequest builds the next piece of a byte-addressed I/O, clipped at the
// logical zone boundary the way the framework's chunk splitting would.
func (d *LogicalDevice) nextRequest(op zone.Op, off, length int64) Request {
	sector := off / zone.SectorSize
	sectors := length / zone.SectorSize

	zoneEnd := (d.target.geo.ZoneIndex(sector) + 1) << d.target.geo.Shift
	if sector+sectors > zoneEnd {
		sectors = zoneEnd - sector
	}

	return Request{Op: op, Sector: sector, Sectors: sectors}
}

// Append writes p at the write pointer of the given logical zone and
// returns the landing sector in logical coordinates.
func (d *LogicalDevice) Append(zoneIdx int64, p []byte) (int64, error) {
	if len(p)%zone.SectorSize != 0 {
		return 0, ErrUnalignedIO{Length: len(p)}
	}

	req := Request{
		Op:      zone.OpAppend,
		Sector:  zoneIdx << d.target.geo.Shift,
		Sectors: int64(len(p)) / zone.SectorSize,
	}

	m, err := d.target.Route(req)
	if err != nil {
		return 0, err
	}

	landing, appendErr := d.dev.Append(m.Sector, p)

	done := Request{Op: zone.OpAppend, Sector: landing, Sectors: req.Sectors}
	d.target.Complete(&done, appendErr)
	if appendErr != nil {
		return 0, fmt.Errorf("append %d sectors to zone %d: %w", req.Sectors, zoneIdx, appendErr)
	}

	return done.Sector, nil
}

// ManageZone applies a zone-management operation to the zone containing the
// logical sector.
func (d *LogicalDevice) ManageZone(op zone.Op, sector int64) error {
	m, err := d.target.Route(Request{Op: op, Sector: sector})
	if err != nil {
		return err
	}

	if mErr := d.dev.ManageZone(op, m.Sector); mErr != nil {
		return fmt.Errorf("%s at device sector %d: %w", op, m.Sector, mErr)
	}

	return nil
}
