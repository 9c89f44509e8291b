package zone

// SectorSize is the size of one sector in bytes. All sector counts and
// sector addresses in this module use this unit.
const SectorSize = 512

// State is the condition of a zone as reported by a zone enumeration.
type State uint8

const (
	StateEmpty State = iota
	StateImplicitOpen
	StateExplicitOpen
	StateClosed
	StateFull
	StateReadOnly
	StateOffline
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateImplicitOpen:
		return "implicit-open"
	case StateExplicitOpen:
		return "explicit-open"
	case StateClosed:
		return "closed"
	case StateFull:
		return "full"
	case StateReadOnly:
		return "read-only"
	case StateOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// Type is the zone model. Only sequential-write-required (host-managed)
// zones are supported.
type Type uint8

const (
	TypeSeqWriteRequired Type = iota + 1
)

// Zone describes a single zone. Positional fields are in sectors.
type Zone struct {
	Start        int64
	WritePointer int64
	Sectors      int64
	State        State
	Type         Type
}

// Op is the kind of an I/O or zone-management request.
type Op uint8

const (
	OpRead Op = iota
	OpWrite
	OpAppend
	OpFlush
	OpZoneReset
	OpZoneOpen
	OpZoneClose
	OpZoneFinish
)

// IsZoneMgmt reports whether the operation manages zone state rather than
// transferring data.
func (o Op) IsZoneMgmt() bool {
	switch o {
	case OpZoneReset, OpZoneOpen, OpZoneClose, OpZoneFinish:
		return true
	default:
		return false
	}
}

func (o Op) String() string {
	switch o {
	case OpRead:
		return "read"
	case OpWrite:
		return "write"
	case OpAppend:
		return "append"
	case OpFlush:
		return "flush"
	case OpZoneReset:
		return "zone-reset"
	case OpZoneOpen:
		return "zone-open"
	case OpZoneClose:
		return "zone-close"
	case OpZoneFinish:
		return "zone-finish"
	default:
		return "unknown"
	}
}
