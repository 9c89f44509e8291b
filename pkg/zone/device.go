package zone

import (
	"io"
)

// Device is a physical zoned block device. Data offsets are in bytes and
// must be sector aligned; zone addresses are in sectors.
type Device interface {
	io.ReaderAt
	io.WriterAt
	Sync() error

	// ZoneSectors is the number of usable sectors per zone. It does not
	// have to be a power of two.
	ZoneSectors() int64

	// Capacity is the total number of sectors on the device.
	Capacity() int64

	// Append writes p at the zone's write pointer and returns the sector
	// the data landed on. zoneStart must be the first sector of a zone.
	Append(zoneStart int64, p []byte) (int64, error)

	// ManageZone applies a zone-management operation to the zone starting
	// at zoneStart.
	ManageZone(op Op, zoneStart int64) error

	// ReportZones invokes fn for up to limit zones, in ascending order,
	// beginning with the zone containing the start sector. Enumeration
	// stops early if fn returns an error.
	ReportZones(start int64, limit int, fn func(Zone) error) error
}
