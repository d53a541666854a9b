package testutils

import (
	"errors"
	"sync/atomic"
)

var ErrMockAllocate = errors.New("mock backend: allocation failed")

// MockBackend is an in-memory backend whose failures can be scripted.
type MockBackend struct {
	Fail        bool // Allocate returns ErrMockAllocate.
	ReturnNil   bool // Allocate returns no memory and no error.
	SizeDelta   int  // Added to the requested size of the returned region.
	Recoverable bool

	allocCalls atomic.Int64
	freeCalls  atomic.Int64
	lastSize   atomic.Int64
	lastRegion atomic.Uint32
	lastMem    []byte
	freedMem   []byte
}

func (b *MockBackend) Allocate(regionID uint32, size int) ([]byte, bool, error) {
	b.allocCalls.Add(1)
	b.lastSize.Store(int64(size))
	b.lastRegion.Store(regionID)
	if b.Fail {
		return nil, false, ErrMockAllocate
	}
	if b.ReturnNil {
		return nil, b.Recoverable, nil
	}
	b.lastMem = make([]byte, size+b.SizeDelta)
	return b.lastMem, b.Recoverable, nil
}

func (b *MockBackend) Free(regionID uint32, mem []byte) error {
	b.freeCalls.Add(1)
	b.freedMem = mem
	return nil
}

func (b *MockBackend) AllocCalls() int64 {
	return b.allocCalls.Load()
}

func (b *MockBackend) FreeCalls() int64 {
	return b.freeCalls.Load()
}

// LastSize returns the size of the most recent allocation request.
func (b *MockBackend) LastSize() int {
	return int(b.lastSize.Load())
}

func (b *MockBackend) LastRegion() uint32 {
	return b.lastRegion.Load()
}

// LastMem returns the region handed out by the most recent successful Allocate.
func (b *MockBackend) LastMem() []byte {
	return b.lastMem
}

// FreedMem returns the region passed to the most recent Free.
func (b *MockBackend) FreedMem() []byte {
	return b.freedMem
}
