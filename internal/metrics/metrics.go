// Package metrics provides small named-counter sets shared by handle
// across goroutines.
//
// Metrics grows its key set on demand behind a mutex and suits dynamic
// keys such as per-route request counts. AtomicMetrics fixes its key
// set at construction and updates lock-free, which suits hot paths
// with a known set of counters.
package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Metrics is a mutex-guarded set of named int64 counters. The zero
// value is not usable; call New. All methods are safe for concurrent
// use and tolerate a nil receiver, so optional instrumentation needs
// no call-site guards.
type Metrics struct {
	mu   sync.RWMutex
	data map[string]int64
}

// New creates an empty counter set.
func New() *Metrics {
	return &Metrics{data: make(map[string]int64)}
}

// Inc increments the counter for key, creating it at zero first.
func (m *Metrics) Inc(key string) {
	m.Add(key, 1)
}

// Dec decrements the counter for key, creating it at zero first.
func (m *Metrics) Dec(key string) {
	m.Add(key, -1)
}

// Add adds delta to the counter for key, creating it at zero first.
func (m *Metrics) Add(key string, delta int64) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.data[key] += delta
	m.mu.Unlock()
}

// Get returns the current value for key, zero if absent.
func (m *Metrics) Get(key string) int64 {
	if m == nil {
		return 0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data[key]
}

// Snapshot returns a copy of all counters.
func (m *Metrics) Snapshot() map[string]int64 {
	if m == nil {
		return map[string]int64{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]int64, len(m.data))
	for k, v := range m.data {
		out[k] = v
	}
	return out
}

// String renders the counters as "key=value" pairs in key order.
func (m *Metrics) String() string {
	return formatCounters(m.Snapshot())
}

func formatCounters(snap map[string]int64) string {
	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%s=%d", k, snap[k])
	}
	return sb.String()
}
