package binpool

// Handle references a buffer acquired from a pool. The zero Handle is the
// empty handle returned when no buffer is available.
//
// A handle is valid only until it is released. Data aliases pool memory, so
// it must not be retained after Release.
type Handle struct {
	OwnerID uint32 // Manager id of the pool that issued the handle.
	SlotID  uint32
	Offset  uint64 // Offset of Data within the pool's memory region.
	Data    []byte // Buffer memory; len(Data) is the reported size.
}

// Size returns the reported size of the buffer.
func (h Handle) Size() int {
	return len(h.Data)
}

// IsEmpty reports whether the handle carries no buffer memory.
func (h Handle) IsEmpty() bool {
	return h.Data == nil
}

// Shrink returns a copy of the handle reporting only the first n bytes.
// It never grows the buffer; n larger than the current size is clamped.
func (h Handle) Shrink(n int) Handle {
	if n < 0 {
		n = 0
	}
	if n < len(h.Data) {
		h.Data = h.Data[:n]
	}
	return h
}
