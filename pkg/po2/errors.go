package po2

import (
	"fmt"

	"github.com/zonekit/po2zone/pkg/zone"
)

// ConfigurationError rejects the construction of a target. The logical
// device is not created.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "po2zone: " + e.Reason
}

// EmulatedRegionWriteError rejects a non-read request that touches the
// emulated tail of a logical zone. Nothing is ever written there, so the
// request is refused synchronously and never reaches the device.
type EmulatedRegionWriteError struct {
	Op     zone.Op
	Sector int64
	Zone   int64
}

func (e *EmulatedRegionWriteError) Error() string {
	return fmt.Sprintf("po2zone: %s at sector %d touches the emulated region of zone %d", e.Op, e.Sector, e.Zone)
}

// ErrUnalignedIO is returned for byte-addressed I/O that is not sector
// aligned.
type ErrUnalignedIO struct {
	Offset int64
	Length int
}

func (e ErrUnalignedIO) Error() string {
	return fmt.Sprintf("I/O at offset %d with length %d is not sector aligned", e.Offset, e.Length)
}
