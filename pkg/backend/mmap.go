package backend

import (
	"errors"
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"

	"github.com/zonekit/po2zone/pkg/zone"
)

// MmapDevice is a zoned device over an mmapped file. The write-pointer
// table lives in memory, so the file is expected to be fresh for each run.
type MmapDevice struct {
	*zonedBuffer

	file *os.File
	mmap mmap.MMap
}

// NewMmapDevice creates (or truncates) the backing file to hold the whole
// device and maps it.
func NewMmapDevice(filePath string, zoneSectors, capacity int64) (*MmapDevice, error) {
	zones := capacity / zoneSectors
	size := zones * zoneSectors * zone.SectorSize

	f, err := os.OpenFile(filePath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}

	err = f.Truncate(size)
	if err != nil {
		f.Close()

		return nil, fmt.Errorf("error allocating file: %w", err)
	}

	// Preallocate so writes cannot fail with ENOSPC mid-zone.
	err = fallocate(size, f)
	if err != nil {
		f.Close()

		return nil, fmt.Errorf("error preallocating file: %w", err)
	}

	mm, err := mmap.Map(f, mmap.RDWR, 0)
	if err != nil {
		f.Close()

		return nil, fmt.Errorf("error mapping file: %w", err)
	}

	return &MmapDevice{
		zonedBuffer: newZonedBuffer(mm, zoneSectors, capacity),
		file:        f,
		mmap:        mm,
	}, nil
}

func (m *MmapDevice) Sync() error {
	return m.mmap.Flush()
}

func (m *MmapDevice) Close() error {
	flushErr := m.mmap.Flush()

	mmapErr := m.mmap.Unmap()
	closeErr := m.file.Close()

	return errors.Join(flushErr, mmapErr, closeErr)
}
