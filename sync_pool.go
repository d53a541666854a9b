package binpool

import "sync"

// SyncPool serializes access to a set up Pool for hosts that call it from
// multiple goroutines. It adds no other behaviour.
type SyncPool struct {
	mu   sync.Mutex
	pool *Pool
}

func NewSyncPool(p *Pool) *SyncPool {
	return &SyncPool{pool: p}
}

func (s *SyncPool) Acquire(size int) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pool.Acquire(size)
}

func (s *SyncPool) Release(h Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pool.Release(h)
}

func (s *SyncPool) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pool.Stats()
}
