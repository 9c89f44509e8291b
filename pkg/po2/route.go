package po2

import (
	"github.com/zonekit/po2zone/pkg/zone"
)

// Request is a single in-flight I/O or zone-management request in logical
// sector coordinates. It exists only for the duration of routing.
type Request struct {
	Op      zone.Op
	Sector  int64
	Sectors int64
}

// MappingKind is the routing outcome for the accepted part of a request.
type MappingKind uint8

const (
	// KindRemap submits the accepted sectors to the device at
	// Mapping.Sector.
	KindRemap MappingKind = iota

	// KindZeroFill completes the accepted sectors immediately with zero
	// bytes, without touching the device.
	KindZeroFill
)

// Mapping is the routing decision for a request. Sectors is the number of
// sectors accepted now; when the request had to be split, Remainder holds
// the rest, to be resubmitted as a fresh request.
type Mapping struct {
	Kind      MappingKind
	Sector    int64
	Sectors   int64
	Remainder *Request
}

// Route decides how a request in logical coordinates reaches the device.
// Requests never span a logical zone boundary; the dispatch layer splits
// them at PO2ZoneSectors first (see LogicalDevice and ChunkSectors).
func (g Geometry) Route(req Request) (Mapping, error) {
	// A pure flush carries no sectors and needs no sector rewrite.
	if req.Sectors == 0 && !req.Op.IsZoneMgmt() {
		return Mapping{Kind: KindRemap, Sector: req.Sector}, nil
	}

	zoneIdx := g.ZoneIndex(req.Sector)
	boundary := g.Boundary(zoneIdx)

	if req.Op.IsZoneMgmt() {
		if req.Sector >= boundary {
			return Mapping{}, &EmulatedRegionWriteError{Op: req.Op, Sector: req.Sector, Zone: zoneIdx}
		}

		// Zone management acts on the whole zone; aim it at the
		// physical zone start.
		return Mapping{Kind: KindRemap, Sector: zoneIdx * g.ZoneSectors}, nil
	}

	if req.Sector+req.Sectors <= boundary {
		return Mapping{Kind: KindRemap, Sector: g.ToDevice(req.Sector), Sectors: req.Sectors}, nil
	}

	if req.Op != zone.OpRead {
		return Mapping{}, &EmulatedRegionWriteError{Op: req.Op, Sector: req.Sector, Zone: zoneIdx}
	}

	if req.Sector < boundary {
		// Backed prefix up to the boundary; the emulated tail is
		// resubmitted and lands in the zero-fill branch.
		accepted := boundary - req.Sector

		return Mapping{
			Kind:    KindRemap,
			Sector:  g.ToDevice(req.Sector),
			Sectors: accepted,
			Remainder: &Request{
				Op:      req.Op,
				Sector:  boundary,
				Sectors: req.Sectors - accepted,
			},
		}, nil
	}

	// Entirely within the emulated tail: all zeroes, clipped to the zone
	// end in case the caller did not split at the logical zone boundary.
	zoneEnd := (zoneIdx + 1) << g.Shift
	accepted := req.Sectors
	var remainder *Request
	if req.Sector+accepted > zoneEnd {
		accepted = zoneEnd - req.Sector
		remainder = &Request{
			Op:      req.Op,
			Sector:  zoneEnd,
			Sectors: req.Sectors - accepted,
		}
	}

	return Mapping{Kind: KindZeroFill, Sectors: accepted, Remainder: remainder}, nil
}

// Complete is the post-completion hook. For a successful zone append the
// device reports the landing sector in device coordinates; rewrite it to
// logical coordinates before the caller observes it. Everything else passes
// through unchanged.
func (g Geometry) Complete(req *Request, opErr error) {
	if opErr != nil || req.Op != zone.OpAppend {
		return
	}

	req.Sector = g.ToTarget(req.Sector)
}
