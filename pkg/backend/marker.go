package backend

import (
	"sync"

	"github.com/bits-and-blooms/bitset"
)

// Marker tracks which sectors of a device have been written. Sectors that
// were never written (or whose zone was reset) read as zeroes without the
// store being cleared.
type Marker struct {
	bitset *bitset.BitSet
	mu     sync.RWMutex
}

func NewMarker(sectors uint) *Marker {
	return &Marker{
		bitset: bitset.New(sectors),
	}
}

func (m *Marker) Mark(sector int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.bitset.Set(uint(sector))
}

func (m *Marker) IsMarked(sector int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.bitset.Test(uint(sector))
}

// ClearRange unmarks the sectors in [start, end). Used on zone reset.
func (m *Marker) ClearRange(start, end int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for s := start; s < end; s++ {
		m.bitset.Clear(uint(s))
	}
}
