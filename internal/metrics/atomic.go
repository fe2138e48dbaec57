package metrics

import "sync/atomic"

// AtomicMetrics is a counter set whose keys are fixed at construction.
// Updates are single atomic adds with no locking; updates to unknown
// keys are ignored. The map itself is never written after NewAtomic,
// which is what makes the handle safe to share.
type AtomicMetrics struct {
	data map[string]*atomic.Int64
}

// NewAtomic creates a counter set for exactly the given keys.
func NewAtomic(keys ...string) *AtomicMetrics {
	data := make(map[string]*atomic.Int64, len(keys))
	for _, k := range keys {
		data[k] = new(atomic.Int64)
	}
	return &AtomicMetrics{data: data}
}

// Inc increments the counter for key if it exists. Nil-safe.
func (m *AtomicMetrics) Inc(key string) {
	m.Add(key, 1)
}

// Dec decrements the counter for key if it exists. Nil-safe.
func (m *AtomicMetrics) Dec(key string) {
	m.Add(key, -1)
}

// Add adds delta to the counter for key if it exists. Nil-safe.
func (m *AtomicMetrics) Add(key string, delta int64) {
	if m == nil {
		return
	}
	if c, ok := m.data[key]; ok {
		c.Add(delta)
	}
}

// Get returns the current value for key, zero if unknown.
func (m *AtomicMetrics) Get(key string) int64 {
	if m == nil {
		return 0
	}
	if c, ok := m.data[key]; ok {
		return c.Load()
	}
	return 0
}

// Snapshot returns the current value of every counter.
func (m *AtomicMetrics) Snapshot() map[string]int64 {
	if m == nil {
		return map[string]int64{}
	}
	out := make(map[string]int64, len(m.data))
	for k, c := range m.data {
		out[k] = c.Load()
	}
	return out
}

// String renders the counters as "key=value" pairs in key order.
func (m *AtomicMetrics) String() string {
	return formatCounters(m.Snapshot())
}
