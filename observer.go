package binpool

// Observer receives pool telemetry. Pools call it synchronously from Acquire
// and Release, so implementations must be fast and must not call back into the pool.
type Observer interface {
	CurrentCountChanged(n int)           // Number of allocated buffers changed.
	HighWaterChanged(n int)              // New maximum of simultaneously allocated buffers.
	NoBufferAvailable(requestedSize int) // Acquire found no buffer larger than requestedSize.
	EmptyBufferWarning()                 // Release was handed a zero-size buffer.
}

// ReadyObserver is implemented by observers that want the total number of
// buffers once setup completes.
type ReadyObserver interface {
	PoolReady(totalBuffers int)
}

// NopObserver discards all events.
type NopObserver struct{}

func (NopObserver) CurrentCountChanged(int) {}
func (NopObserver) HighWaterChanged(int)    {}
func (NopObserver) NoBufferAvailable(int)   {}
func (NopObserver) EmptyBufferWarning()     {}

// MultiObserver fans events out to each observer in order.
type MultiObserver []Observer

func (m MultiObserver) CurrentCountChanged(n int) {
	for _, o := range m {
		o.CurrentCountChanged(n)
	}
}

func (m MultiObserver) HighWaterChanged(n int) {
	for _, o := range m {
		o.HighWaterChanged(n)
	}
}

func (m MultiObserver) NoBufferAvailable(requestedSize int) {
	for _, o := range m {
		o.NoBufferAvailable(requestedSize)
	}
}

func (m MultiObserver) EmptyBufferWarning() {
	for _, o := range m {
		o.EmptyBufferWarning()
	}
}

func (m MultiObserver) PoolReady(totalBuffers int) {
	for _, o := range m {
		if r, ok := o.(ReadyObserver); ok {
			r.PoolReady(totalBuffers)
		}
	}
}

var (
	_ Observer      = NopObserver{}
	_ ReadyObserver = MultiObserver(nil)
)
