// Package slot implements the slot table of a bin pool: fixed-width slot records
// encoded at the start of an arena, followed by the payload memory they track.
package slot

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// MetadataSize is the size of a single encoded slot record, in bytes.
//
// Record layout (little endian):
//
//	[0:4)   id
//	[4:8)   capacity
//	[8:16)  payload offset within the arena
//	[16:20) tracked size
//	[20]    flags
//	[21:24) reserved
const MetadataSize = 24

const (
	idOff       = 0
	capacityOff = 4
	offsetOff   = 8
	sizeOff     = 16
	flagsOff    = 20

	flagAllocated = 1 << 0
)

var ErrArenaTooSmall = errors.New("arena is too small for slot table")

// Info is a decoded copy of a slot record.
type Info struct {
	ID        uint32
	Capacity  uint32
	Offset    uint64 // Payload offset within the arena.
	Size      uint32 // Tracked size; equal to Capacity whenever the slot is free.
	Allocated bool
}

// Table addresses the slot records and payload ranges of an arena by slot id.
// It performs no allocation after construction and is not safe for concurrent use.
type Table struct {
	arena []byte
	n     int
	next  uint64 // Next unused payload offset, only advanced by Append.
}

// NewTable creates a table of n slot records over arena. The records occupy
// arena[:n*MetadataSize]; payload space starts right after.
func NewTable(arena []byte, n int) (*Table, error) {
	meta := n * MetadataSize
	if n < 0 || meta > len(arena) {
		return nil, fmt.Errorf("%w: %d slots need %d bytes, arena has %d", ErrArenaTooSmall, n, meta, len(arena))
	}
	return &Table{arena: arena, n: n, next: uint64(meta)}, nil
}

// Len returns the number of slot records in the table.
func (t *Table) Len() int {
	return t.n
}

// PayloadStart returns the arena offset where payload memory begins.
func (t *Table) PayloadStart() uint64 {
	return uint64(t.n * MetadataSize)
}

// NextOffset returns the next unused payload offset.
func (t *Table) NextOffset() uint64 {
	return t.next
}

// Append initializes the record for id with the given capacity at the next
// unused payload offset, marks it free, and advances the payload offset.
func (t *Table) Append(id int, capacity uint32) error {
	if id < 0 || id >= t.n {
		return fmt.Errorf("slot id %d out of range [0, %d)", id, t.n)
	}
	end := t.next + uint64(capacity)
	if end > uint64(len(t.arena)) {
		return fmt.Errorf("%w: slot %d payload ends at %d, arena has %d", ErrArenaTooSmall, id, end, len(t.arena))
	}
	r := t.record(id)
	binary.LittleEndian.PutUint32(r[idOff:], uint32(id))
	binary.LittleEndian.PutUint32(r[capacityOff:], capacity)
	binary.LittleEndian.PutUint64(r[offsetOff:], t.next)
	binary.LittleEndian.PutUint32(r[sizeOff:], capacity)
	r[flagsOff] = 0
	t.next = end
	return nil
}

func (t *Table) record(id int) []byte {
	start := id * MetadataSize
	return t.arena[start : start+MetadataSize : start+MetadataSize]
}

// ID returns the id stored in the record of slot i.
func (t *Table) ID(i int) uint32 {
	return binary.LittleEndian.Uint32(t.record(i)[idOff:])
}

// Capacity returns the capacity of slot i.
func (t *Table) Capacity(i int) uint32 {
	return binary.LittleEndian.Uint32(t.record(i)[capacityOff:])
}

// Offset returns the payload offset of slot i.
func (t *Table) Offset(i int) uint64 {
	return binary.LittleEndian.Uint64(t.record(i)[offsetOff:])
}

// Size returns the tracked size of slot i.
func (t *Table) Size(i int) uint32 {
	return binary.LittleEndian.Uint32(t.record(i)[sizeOff:])
}

// SetSize sets the tracked size of slot i.
func (t *Table) SetSize(i int, size uint32) {
	binary.LittleEndian.PutUint32(t.record(i)[sizeOff:], size)
}

// Allocated reports whether slot i is allocated.
func (t *Table) Allocated(i int) bool {
	return t.record(i)[flagsOff]&flagAllocated != 0
}

// SetAllocated sets the allocated flag of slot i.
func (t *Table) SetAllocated(i int, allocated bool) {
	r := t.record(i)
	if allocated {
		r[flagsOff] |= flagAllocated
	} else {
		r[flagsOff] &^= flagAllocated
	}
}

// Payload returns the full-capacity payload range of slot i.
// The slice capacity is clamped so appends cannot spill into the next slot.
func (t *Table) Payload(i int) []byte {
	start := t.Offset(i)
	end := start + uint64(t.Capacity(i))
	return t.arena[start:end:end]
}

// Info returns a decoded copy of the record of slot i.
func (t *Table) Info(i int) Info {
	return Info{
		ID:        t.ID(i),
		Capacity:  t.Capacity(i),
		Offset:    t.Offset(i),
		Size:      t.Size(i),
		Allocated: t.Allocated(i),
	}
}
