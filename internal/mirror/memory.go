package mirror

import (
	"sync"

	"payrecon/internal/domain"
)

// MemoryMirror is the in-process mirror implementation: a mutex-guarded
// map keyed by batch id, so a chunk's four counters increment as one
// atomic step. It satisfies §4.H's advisory contract without an
// external broker — nothing in the example pack wires a Redis client
// or embedded KV store for this domain, so the mirror lives in the
// worker process itself and is lost on restart, which is within the
// spec's own tolerance for a "may be stale, missing, or unavailable"
// store.
type MemoryMirror struct {
	mu    sync.Mutex
	state map[string]Counters
}

func NewMemoryMirror() *MemoryMirror {
	return &MemoryMirror{state: make(map[string]Counters)}
}

func (m *MemoryMirror) Init(batchID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state[batchID] = Counters{Status: domain.BatchProcessing}
}

func (m *MemoryMirror) SetTotal(batchID string, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.state[batchID]
	c.Total = total
	m.state[batchID] = c
}

func (m *MemoryMirror) Increment(batchID string, f Fields) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.state[batchID]
	c.Processed += f.Processed
	c.AutoMatched += f.AutoMatched
	c.NeedsReview += f.NeedsReview
	c.Unmatched += f.Unmatched
	m.state[batchID] = c
}

func (m *MemoryMirror) SetStatus(batchID string, status domain.BatchStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.state[batchID]
	c.Status = status
	m.state[batchID] = c
}

func (m *MemoryMirror) Get(batchID string) (Counters, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.state[batchID]
	return c, ok
}

func (m *MemoryMirror) Clear(batchID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.state, batchID)
}
