package binpool

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// Backend supplies the single contiguous memory region a pool carves into buffers.
type Backend interface {
	// Allocate returns a region of size bytes for regionID. The recoverable flag
	// reports whether the memory survives a restart; pools do not depend on it.
	Allocate(regionID uint32, size int) (mem []byte, recoverable bool, err error)

	// Free returns a region previously returned by Allocate.
	Free(regionID uint32, mem []byte) error
}

var (
	ErrRegionInUse   = errors.New("region is already allocated")
	ErrUnknownRegion = errors.New("region is not allocated")
)

// HeapBackend allocates regions on the Go heap.
// It is safe for concurrent use by multiple goroutines.
type HeapBackend struct {
	mu      sync.Mutex
	regions map[uint32][]byte
}

func NewHeapBackend() *HeapBackend {
	return &HeapBackend{regions: make(map[uint32][]byte)}
}

func (h *HeapBackend) Allocate(regionID uint32, size int) ([]byte, bool, error) {
	if size <= 0 {
		return nil, false, fmt.Errorf("cannot allocate %d bytes for region %d", size, regionID)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.regions[regionID]; ok {
		return nil, false, fmt.Errorf("%w: %d", ErrRegionInUse, regionID)
	}
	mem := make([]byte, size)
	h.regions[regionID] = mem
	return mem, false, nil
}

func (h *HeapBackend) Free(regionID uint32, mem []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.regions[regionID]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownRegion, regionID)
	}
	delete(h.regions, regionID)
	return nil
}

// MmapBackend allocates regions as anonymous private memory mappings outside
// the Go heap, so the garbage collector never scans buffer memory.
// It is safe for concurrent use by multiple goroutines.
type MmapBackend struct {
	mu      sync.Mutex
	regions map[uint32][]byte
}

func NewMmapBackend() *MmapBackend {
	return &MmapBackend{regions: make(map[uint32][]byte)}
}

func (m *MmapBackend) Allocate(regionID uint32, size int) ([]byte, bool, error) {
	if size <= 0 {
		return nil, false, fmt.Errorf("cannot allocate %d bytes for region %d", size, regionID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.regions[regionID]; ok {
		return nil, false, fmt.Errorf("%w: %d", ErrRegionInUse, regionID)
	}
	data, err := unix.Mmap(-1, 0, size,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANON|unix.MAP_PRIVATE,
	)
	if err != nil {
		return nil, false, fmt.Errorf("cannot allocate %d bytes via mmap for region %d: %w", size, regionID, err)
	}
	m.regions[regionID] = data
	return data, false, nil
}

// Free unmaps the region. The mapping registered for regionID is released,
// regardless of the slice header passed in.
func (m *MmapBackend) Free(regionID uint32, _ []byte) error {
	m.mu.Lock()
	data, ok := m.regions[regionID]
	delete(m.regions, regionID)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownRegion, regionID)
	}
	if err := unix.Munmap(data); err != nil {
		return fmt.Errorf("cannot unmap region %d: %w", regionID, err)
	}
	return nil
}

// numRegions returns the number of live regions.
// It is primarily intended as helper method in tests.
func (m *MmapBackend) numRegions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.regions)
}
