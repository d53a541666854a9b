package binpool

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/holmberd/go-binpool/internal/slot"
)

const (
	KiB = 1024
	MiB = KiB * KiB

	MaxBins       = 10             // Maximum number of bins in a configuration.
	MaxBufferSize = math.MaxUint32 // Maximum buffer size of a bin, in bytes.
)

// SlotMetadataSize is the number of arena bytes used to track each buffer.
const SlotMetadataSize = slot.MetadataSize

// Bin declares a class of Count buffers of BufferSize bytes each.
type Bin struct {
	BufferSize int
	Count      int
}

// Bins is an ordered bin configuration. Bins with a zero count are ignored.
//
// Acquire scans buffers in declaration order and takes the first free buffer
// that is strictly larger than the request, so bins should be declared in
// ascending BufferSize order for smallest-fit behaviour. The order is not checked.
type Bins []Bin

// DefaultBins returns a small general purpose configuration in ascending size order.
func DefaultBins() Bins {
	return Bins{
		{BufferSize: 256, Count: 64},
		{BufferSize: 4 * KiB, Count: 32},
		{BufferSize: 64 * KiB, Count: 8},
	}
}

func (bins Bins) Validate() error {
	var errs []error
	if len(bins) > MaxBins {
		errs = append(errs, fmt.Errorf("invalid bins: %d bins exceed the maximum of %d", len(bins), MaxBins))
	}
	slots := 0
	for i, b := range bins {
		if b.Count < 0 {
			errs = append(errs, fmt.Errorf("invalid bins: bin %d has negative count %d", i, b.Count))
			continue
		}
		if b.Count == 0 {
			continue
		}
		if b.BufferSize <= 0 {
			errs = append(errs, fmt.Errorf("invalid bins: bin %d has buffer size %d, must be > 0", i, b.BufferSize))
			continue
		}
		if uint64(b.BufferSize) > MaxBufferSize {
			errs = append(errs, fmt.Errorf("invalid bins: bin %d buffer size %d exceeds %d", i, b.BufferSize, MaxBufferSize))
			continue
		}
		slots += b.Count
	}
	if len(errs) == 0 && slots == 0 {
		errs = append(errs, errors.New("invalid bins: configuration declares no buffers"))
	}
	return errors.Join(errs...)
}

// Layout describes the arena a bin configuration needs.
type Layout struct {
	Slots         int    // Number of tracked buffers.
	MetadataBytes int    // Bytes used by the slot table at the start of the arena.
	PayloadBytes  int    // Bytes of buffer memory after the slot table.
	TotalBytes    int    // MetadataBytes + PayloadBytes.
	Fingerprint   uint64 // Hash of the effective (size, count) sequence.
}

// Layout computes the arena layout of the configuration. It does not validate bins.
func (bins Bins) Layout() Layout {
	var l Layout
	d := xxhash.New()
	var rec [16]byte
	for _, b := range bins {
		if b.Count <= 0 {
			continue
		}
		l.PayloadBytes += b.BufferSize * b.Count
		l.MetadataBytes += b.Count * SlotMetadataSize
		l.Slots += b.Count

		binary.LittleEndian.PutUint64(rec[0:], uint64(b.BufferSize))
		binary.LittleEndian.PutUint64(rec[8:], uint64(b.Count))
		d.Write(rec[:])
	}
	l.TotalBytes = l.MetadataBytes + l.PayloadBytes
	l.Fingerprint = d.Sum64()
	return l
}
