package zone

import "fmt"

// ErrWriteMisaligned is returned when a write does not land exactly on the
// zone's write pointer.
type ErrWriteMisaligned struct {
	Sector       int64
	WritePointer int64
}

func (e ErrWriteMisaligned) Error() string {
	return fmt.Sprintf("write at sector %d does not match write pointer %d", e.Sector, e.WritePointer)
}

// ErrZoneFull is returned when a write or append does not fit in the
// remaining capacity of the zone.
type ErrZoneFull struct {
	Zone int64
}

func (e ErrZoneFull) Error() string {
	return fmt.Sprintf("zone %d has no room for the requested sectors", e.Zone)
}

// ErrOutOfRange is returned for sector addresses outside the device.
type ErrOutOfRange struct {
	Sector int64
}

func (e ErrOutOfRange) Error() string {
	return fmt.Sprintf("sector %d is out of the device range", e.Sector)
}
