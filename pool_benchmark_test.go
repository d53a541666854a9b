package binpool

import (
	"testing"

	"github.com/holmberd/go-binpool/internal/testutils"
)

// go test -bench=BenchmarkPool -benchmem .

// BenchmarkPoolAcquireRelease measures a hit in the last bin, which scans every
// slot of the smaller bins first.
func BenchmarkPoolAcquireRelease(b *testing.B) {
	p := NewPool(1, WithLogger(discardLogger))
	p.Setup(DefaultBins(), &testutils.MockBackend{}, 0)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h := p.Acquire(32 * KiB)
		p.Release(h)
	}
}

// BenchmarkPoolExhausted measures the cost of a miss over a full pool.
func BenchmarkPoolExhausted(b *testing.B) {
	p := NewPool(1, WithLogger(discardLogger))
	p.Setup(Bins{{BufferSize: 64, Count: 128}}, &testutils.MockBackend{}, 0)
	for i := 0; i < 128; i++ {
		p.Acquire(1)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.Acquire(1)
	}
}
