package po2

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/zonekit/po2zone/pkg/zone"
)

// Features advertised for the logical device.
type Features uint8

const (
	// FeatureZonedHM marks the logical device as host-managed zoned.
	FeatureZonedHM Features = 1 << iota
	// FeatureEmulatedZones signals that part of each zone may not be
	// physically writable.
	FeatureEmulatedZones
)

// Config carries the construction parameters for a target. Begin and
// Sectors describe the requested logical extent; anything other than the
// whole device is refused.
type Config struct {
	Begin   int64
	Sectors int64
	Logger  *zap.Logger
}

// Target maps a whole physical zoned device to a logical device with
// power-of-two zones. Safe for concurrent use: the geometry is immutable
// and routing depends only on the request.
type Target struct {
	dev zone.Device
	geo Geometry
	log *zap.Logger
}

// New builds a target over the backing device. The requested extent must
// cover the whole device with no offset.
func New(dev zone.Device, cfg Config) (*Target, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	capacity := dev.Capacity()
	if cfg.Begin != 0 || cfg.Sectors != capacity {
		return nil, &ConfigurationError{Reason: "partial mapping of the device is not supported"}
	}

	geo, err := NewGeometry(dev.ZoneSectors(), capacity)
	if err != nil {
		return nil, err
	}

	if geo.AlreadyPO2() {
		log.Warn("zone size is already a power of two, the emulation adds no value",
			zap.Int64("zone_sectors", geo.ZoneSectors))
	}

	if tail := capacity % geo.ZoneSectors; tail != 0 {
		log.Warn("device capacity is not zone aligned, ignoring trailing sectors",
			zap.Int64("trailing_sectors", tail))
	}

	return &Target{dev: dev, geo: geo, log: log}, nil
}

// Geometry returns the immutable translation parameters.
func (t *Target) Geometry() Geometry {
	return t.geo
}

// Features reports the logical device capabilities.
func (t *Target) Features() Features {
	return FeatureZonedHM | FeatureEmulatedZones
}

// Capacity is the logical device length in sectors.
func (t *Target) Capacity() int64 {
	return t.geo.Capacity
}

// ChunkSectors is the logical zone size. Upstream splitting must align I/O
// to it so no request spans a logical zone boundary.
func (t *Target) ChunkSectors() int64 {
	return t.geo.PO2ZoneSectors
}

// Route decides how a request reaches the device. See Geometry.Route.
func (t *Target) Route(req Request) (Mapping, error) {
	return t.geo.Route(req)
}

// Complete is the per-request completion hook. See Geometry.Complete.
func (t *Target) Complete(req *Request, opErr error) {
	t.geo.Complete(req, opErr)
}

// ReportZones enumerates zones in logical coordinates, beginning with the
// zone containing the cursor sector, and returns the cursor for the next
// enumeration. Zone starts and write pointers are translated; the length is
// always the full logical zone size; state and type pass through unchanged.
func (t *Target) ReportZones(cursor int64, limit int, fn func(zone.Zone) error) (int64, error) {
	// The device query starts at the physical zone backing the logical
	// cursor zone.
	start := t.geo.ZoneIndex(cursor) * t.geo.ZoneSectors

	next := cursor
	err := t.dev.ReportZones(start, limit, func(z zone.Zone) error {
		z.Start = t.geo.ToTarget(z.Start)
		z.WritePointer = t.geo.ToTarget(z.WritePointer)
		z.Sectors = t.geo.PO2ZoneSectors
		next = z.Start + z.Sectors

		return fn(z)
	})
	if err != nil {
		return next, fmt.Errorf("report zones from device sector %d: %w", start, err)
	}

	return next, nil
}

// IterateDevices invokes fn once with the full backing extent in physical
// coordinates.
func (t *Target) IterateDevices(fn func(dev zone.Device, start, sectors int64) error) error {
	return fn(t.dev, 0, t.geo.Zones*t.geo.ZoneSectors)
}
