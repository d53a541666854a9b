// Package binpool implements a fixed-capacity buffer pool organized in bins.
//
// A pool reserves one contiguous memory region at setup, carves it into
// buffers of the sizes declared by its bins, and recycles those buffers for
// the rest of its life. Acquire and Release never allocate.
package binpool

import (
	"fmt"
	"log/slog"

	"github.com/holmberd/go-binpool/internal/slot"
)

type poolState int

const (
	stateNew    poolState = iota // Created, Setup not called yet.
	stateReady                   // Set up; buffers can be acquired and released.
	stateClosed                  // Region returned to the backend.
)

func (s poolState) String() string {
	switch s {
	case stateNew:
		return "new"
	case stateReady:
		return "ready"
	case stateClosed:
		return "closed"
	default:
		return fmt.Sprintf("poolState(%d)", s)
	}
}

// Stats represents pool stats.
type Stats struct {
	TotalBuffers   int    // Number of buffers tracked by the pool.
	CurrentBuffers int    // Buffers currently allocated.
	HighWater      int    // Maximum number of simultaneously allocated buffers.
	NoBuffers      uint64 // Acquire calls that found no buffer.
	EmptyBuffers   uint64 // Release calls handed a zero-size buffer.
	Fingerprint    uint64 // Layout fingerprint of the bin configuration.
}

// SlotInfo describes a single tracked buffer.
type SlotInfo = slot.Info

// Option configures a Pool.
type Option func(*Pool)

// WithObserver sets the observer notified of pool events.
func WithObserver(o Observer) Option {
	return func(p *Pool) {
		if o != nil {
			p.observer = o
		}
	}
}

// WithLogger sets the pool logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pool) {
		if l != nil {
			p.logger = l
		}
	}
}

// Pool is a bin-organized buffer pool.
//
// A Pool is not safe for concurrent use: Setup must complete before the first
// Acquire or Release, and calls must be serialized by the caller (see SyncPool).
type Pool struct {
	logger    *slog.Logger
	observer  Observer
	managerID uint32
	regionID  uint32
	backend   Backend
	state     poolState

	mem    []byte      // Region from the backend: slot table followed by payload.
	slots  *slot.Table // Slot records inside mem.
	layout Layout

	current      int
	highWater    int
	noBuffers    uint64
	emptyBuffers uint64
}

// NewPool creates a pool identified by managerID. The pool holds no memory
// until Setup is called.
func NewPool(managerID uint32, opts ...Option) *Pool {
	p := &Pool{
		logger:    slog.Default(),
		observer:  NopObserver{},
		managerID: managerID,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ManagerID returns the identity stamped on every handle the pool issues.
func (p *Pool) ManagerID() uint32 {
	return p.managerID
}

// Setup allocates the pool region from backend and initializes one buffer per
// declared bin entry, in declaration order. It must be called exactly once.
//
// Setup panics with a *ContractError if the pool was already set up, bins are
// invalid, or the backend cannot supply exactly the required region.
func (p *Pool) Setup(bins Bins, backend Backend, regionID uint32) {
	const op = "setup"
	switch p.state {
	case stateReady:
		p.fatal(op, ErrAlreadySetUp)
	case stateClosed:
		p.fatal(op, ErrClosed)
	}
	if backend == nil {
		p.fatal(op, fmt.Errorf("%w: nil backend", ErrBackend))
	}
	if err := bins.Validate(); err != nil {
		p.fatal(op, fmt.Errorf("%w: %w", ErrInvalidBins, err))
	}

	layout := bins.Layout()
	mem, recoverable, err := backend.Allocate(regionID, layout.TotalBytes)
	if err != nil {
		p.fatal(op, fmt.Errorf("%w: region %d: %w", ErrBackend, regionID, err))
	}
	if mem == nil {
		p.fatal(op, fmt.Errorf("%w: region %d: no memory returned", ErrBackend, regionID))
	}
	if len(mem) != layout.TotalBytes {
		p.fatal(op, fmt.Errorf("%w: requested %d bytes, got %d", ErrShortAllocation, layout.TotalBytes, len(mem)))
	}

	table, err := slot.NewTable(mem, layout.Slots)
	if err != nil {
		p.fatal(op, fmt.Errorf("%w: %w", ErrLayout, err))
	}
	id := 0
	for _, b := range bins {
		for j, n := 0, max(b.Count, 0); j < n; j++ {
			if err := table.Append(id, uint32(b.BufferSize)); err != nil {
				p.fatal(op, fmt.Errorf("%w: %w", ErrLayout, err))
			}
			id++
		}
	}
	if end := table.NextOffset(); end != uint64(layout.TotalBytes) {
		p.fatal(op, fmt.Errorf("%w: payload ends at %d, region is %d bytes", ErrLayout, end, layout.TotalBytes))
	}
	if id != layout.Slots {
		p.fatal(op, fmt.Errorf("%w: created %d slots, expected %d", ErrLayout, id, layout.Slots))
	}

	p.backend = backend
	p.regionID = regionID
	p.mem = mem
	p.slots = table
	p.layout = layout
	p.state = stateReady

	p.logger.Info(
		"Buffer pool ready",
		"manager", p.managerID,
		"region", regionID,
		"buffers", layout.Slots,
		"bytes", layout.TotalBytes,
		"recoverable", recoverable,
		"fingerprint", fmt.Sprintf("%016x", layout.Fingerprint),
	)
	if r, ok := p.observer.(ReadyObserver); ok {
		r.PoolReady(layout.Slots)
	}
}

func (p *Pool) mustBeReady(op string) {
	switch p.state {
	case stateNew:
		p.fatal(op, ErrNotSetUp)
	case stateClosed:
		p.fatal(op, ErrClosed)
	}
}

// Acquire returns the first free buffer, in bin declaration order, whose
// capacity is strictly greater than size. The handle reports the full capacity
// of the buffer.
//
// If no such buffer exists Acquire returns the empty Handle; callers must
// tolerate not receiving a buffer.
func (p *Pool) Acquire(size int) Handle {
	p.mustBeReady("acquire")

	for i, n := 0, p.slots.Len(); i < n; i++ {
		if p.slots.Allocated(i) || int64(p.slots.Capacity(i)) <= int64(size) {
			continue
		}
		p.slots.SetAllocated(i, true)
		p.current++
		p.observer.CurrentCountChanged(p.current)
		if p.current > p.highWater {
			p.highWater = p.current
			p.observer.HighWaterChanged(p.highWater)
		}
		return Handle{
			OwnerID: p.managerID,
			SlotID:  uint32(i),
			Offset:  p.slots.Offset(i),
			Data:    p.slots.Payload(i)[:p.slots.Size(i)],
		}
	}

	p.noBuffers++
	p.logger.Warn("No buffer available", "manager", p.managerID, "size", size)
	p.observer.NoBufferAvailable(size)
	return Handle{}
}

// Release returns the buffer referenced by h to the pool.
//
// A zero-size handle is reported as a warning and otherwise ignored. Any other
// handle that was not issued by this pool, or is not currently allocated,
// causes a panic with a *ContractError.
func (p *Pool) Release(h Handle) {
	const op = "release"
	p.mustBeReady(op)

	if h.Size() == 0 {
		p.emptyBuffers++
		p.logger.Warn("Zero-size buffer released", "manager", p.managerID, "slot", h.SlotID)
		p.observer.EmptyBufferWarning()
		return
	}

	if int(h.SlotID) >= p.slots.Len() {
		p.fatal(op, fmt.Errorf("%w: %d not in [0, %d)", ErrSlotOutOfRange, h.SlotID, p.slots.Len()))
	}
	if h.OwnerID != p.managerID {
		p.fatal(op, fmt.Errorf("%w: owner %d, pool %d", ErrOwnerMismatch, h.OwnerID, p.managerID))
	}
	i := int(h.SlotID)
	if !p.slots.Allocated(i) {
		p.fatal(op, fmt.Errorf("%w: slot %d", ErrSlotNotAllocated, i))
	}
	payload := p.slots.Payload(i)
	if h.Offset != p.slots.Offset(i) || &h.Data[0] != &payload[0] {
		p.fatal(op, fmt.Errorf("%w: slot %d at offset %d, handle offset %d", ErrDataMismatch, i, p.slots.Offset(i), h.Offset))
	}
	if capacity := p.slots.Capacity(i); uint64(h.Size()) > uint64(capacity) {
		p.fatal(op, fmt.Errorf("%w: size %d, capacity %d", ErrSizeExceedsCapacity, h.Size(), capacity))
	}

	p.slots.SetAllocated(i, false)
	p.slots.SetSize(i, p.slots.Capacity(i))
	p.current--
	p.observer.CurrentCountChanged(p.current)
}

// Stats returns a snapshot of the pool counters.
func (p *Pool) Stats() Stats {
	s := Stats{
		CurrentBuffers: p.current,
		HighWater:      p.highWater,
		NoBuffers:      p.noBuffers,
		EmptyBuffers:   p.emptyBuffers,
		Fingerprint:    p.layout.Fingerprint,
	}
	if p.slots != nil {
		s.TotalBuffers = p.slots.Len()
	}
	return s
}

// Layout returns the layout of the pool region. It is zero before Setup.
func (p *Pool) Layout() Layout {
	return p.layout
}

// Slot returns a description of the buffer with the given id.
func (p *Pool) Slot(id int) (SlotInfo, bool) {
	if p.state != stateReady || id < 0 || id >= p.slots.Len() {
		return SlotInfo{}, false
	}
	return p.slots.Info(id), true
}

// Close returns the pool region to the backend. The pool cannot be used
// afterwards. Closing a pool that was never set up, or closing twice, is a no-op.
func (p *Pool) Close() error {
	if p.state != stateReady {
		return nil
	}
	p.state = stateClosed
	mem := p.mem
	p.mem = nil
	p.slots = nil
	if err := p.backend.Free(p.regionID, mem); err != nil {
		return fmt.Errorf("free region %d: %w", p.regionID, err)
	}
	p.logger.Info("Buffer pool closed", "manager", p.managerID, "region", p.regionID)
	return nil
}
