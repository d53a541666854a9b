package slot

import (
	"errors"
	"testing"
)

// newTestTable is a helper that builds a table for the given capacities over
// an exactly sized arena.
func newTestTable(t *testing.T, capacities ...uint32) (*Table, []byte) {
	t.Helper()
	total := len(capacities) * MetadataSize
	for _, c := range capacities {
		total += int(c)
	}
	arena := make([]byte, total)
	table, err := NewTable(arena, len(capacities))
	if err != nil {
		t.Fatal(err)
	}
	for id, c := range capacities {
		if err := table.Append(id, c); err != nil {
			t.Fatalf("append slot %d: %v", id, err)
		}
	}
	return table, arena
}

func TestTable(t *testing.T) {
	t.Run("Records follow declaration order", func(t *testing.T) {
		table, arena := newTestTable(t, 8, 8, 16)
		if table.Len() != 3 {
			t.Fatalf("expected 3 slots, got %d", table.Len())
		}
		wantOffsets := []uint64{3 * MetadataSize, 3*MetadataSize + 8, 3*MetadataSize + 16}
		wantCaps := []uint32{8, 8, 16}
		for i, n := 0, table.Len(); i < n; i++ {
			info := table.Info(i)
			if info.ID != uint32(i) {
				t.Errorf("slot %d: expected id %d, got %d", i, i, info.ID)
			}
			if info.Capacity != wantCaps[i] {
				t.Errorf("slot %d: expected capacity %d, got %d", i, wantCaps[i], info.Capacity)
			}
			if info.Offset != wantOffsets[i] {
				t.Errorf("slot %d: expected offset %d, got %d", i, wantOffsets[i], info.Offset)
			}
			if info.Size != info.Capacity {
				t.Errorf("slot %d: expected size to equal capacity %d, got %d", i, info.Capacity, info.Size)
			}
			if info.Allocated {
				t.Errorf("slot %d: expected free slot after append", i)
			}
		}
		if table.NextOffset() != uint64(len(arena)) {
			t.Errorf("expected payload to end at %d, got %d", len(arena), table.NextOffset())
		}
	})

	t.Run("Allocated flag and size round trip", func(t *testing.T) {
		table, _ := newTestTable(t, 4, 4)
		table.SetAllocated(1, true)
		table.SetSize(1, 2)
		if !table.Allocated(1) || table.Allocated(0) {
			t.Fatalf("expected only slot 1 allocated")
		}
		if table.Size(1) != 2 {
			t.Errorf("expected size 2, got %d", table.Size(1))
		}
		table.SetAllocated(1, false)
		if table.Allocated(1) {
			t.Errorf("expected slot 1 to be free")
		}
		if table.Capacity(1) != 4 {
			t.Errorf("flag changes must not touch capacity, got %d", table.Capacity(1))
		}
	})

	t.Run("Payload ranges are disjoint", func(t *testing.T) {
		table, arena := newTestTable(t, 3, 5)
		p0 := table.Payload(0)
		p1 := table.Payload(1)
		if len(p0) != 3 || cap(p0) != 3 || len(p1) != 5 || cap(p1) != 5 {
			t.Fatalf("unexpected payload shapes: len/cap %d/%d and %d/%d", len(p0), cap(p0), len(p1), cap(p1))
		}
		for i := range p0 {
			p0[i] = 0xAA
		}
		for i := range p1 {
			p1[i] = 0xBB
		}
		start := 2 * MetadataSize
		for i, b := range arena[start:] {
			want := byte(0xAA)
			if i >= 3 {
				want = 0xBB
			}
			if b != want {
				t.Fatalf("payload byte %d: expected %#x, got %#x", i, want, b)
			}
		}
		if table.Capacity(0) != 3 || table.Capacity(1) != 5 {
			t.Errorf("payload writes corrupted metadata")
		}
	})

	t.Run("Arena too small for metadata", func(t *testing.T) {
		_, err := NewTable(make([]byte, MetadataSize), 2)
		if !errors.Is(err, ErrArenaTooSmall) {
			t.Fatalf("expected ErrArenaTooSmall, got %v", err)
		}
	})

	t.Run("Arena too small for payload", func(t *testing.T) {
		table, err := NewTable(make([]byte, MetadataSize+4), 1)
		if err != nil {
			t.Fatal(err)
		}
		if err := table.Append(0, 5); !errors.Is(err, ErrArenaTooSmall) {
			t.Fatalf("expected ErrArenaTooSmall, got %v", err)
		}
	})

	t.Run("Append out of range", func(t *testing.T) {
		table, err := NewTable(make([]byte, MetadataSize+4), 1)
		if err != nil {
			t.Fatal(err)
		}
		if err := table.Append(1, 4); err == nil {
			t.Fatal("expected an error for out of range id")
		}
	})
}
