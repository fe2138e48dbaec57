package matrix

import (
	"fmt"
	"sync"

	"github.com/samcharles93/lattice/internal/metrics"
)

// Counter keys reported by pools that carry an AtomicMetrics handle.
const (
	MetricTasksDispatched = "multiply.tasks.dispatched"
	MetricTasksCompleted  = "multiply.tasks.completed"
	MetricFailures        = "multiply.failures"
)

// PoolMetricKeys returns the counter keys a pool updates, in the form
// metrics.NewAtomic expects.
func PoolMetricKeys() []string {
	return []string{MetricTasksDispatched, MetricTasksCompleted, MetricFailures}
}

// taskQueueDepth bounds each worker's private queue. Any depth is
// deadlock-free: replies are one-shot buffered channels, so a worker
// never blocks on the collector and always drains its queue.
const taskQueueDepth = 32

// task is one output cell's worth of work. The row and column are
// copies owned by the task; the dispatcher keeps no reference to them
// after the send.
type task[T Number] struct {
	idx   int
	row   []T
	col   []T
	reply chan reply[T]
}

// reply is produced exactly once per task on the task's own channel.
type reply[T Number] struct {
	idx   int
	value T
	err   error
}

// PoolConfig configures a multiply pool.
type PoolConfig struct {
	// Workers is the fixed worker count; must be at least 1.
	Workers int
	// Counters, when non-nil, receives task accounting under the
	// Metric* keys.
	Counters *metrics.AtomicMetrics
}

// Pool is a fixed set of long-lived workers for concurrent multiplies.
// Each worker owns one private task queue and executes tasks strictly
// in the order they arrive on it; tasks on different queues run
// concurrently with no ordering between them.
//
// A Pool may serve many Multiply calls before Close. Close must not
// race an in-flight Multiply on the same pool from the caller's side;
// a racing Multiply fails cleanly with ErrDispatchFailure rather than
// producing a partial result.
type Pool[T Number] struct {
	queues   []chan task[T]
	done     chan struct{}
	counters *metrics.AtomicMetrics

	// compute is Dot unless a test substitutes a failing kernel.
	compute func(a, b []T) (T, error)

	// mu orders dispatch against shutdown: senders hold the read
	// lock, Close flips closed and closes the queues under the write
	// lock. A dispatcher therefore either sees closed before sending
	// anything or finishes its sends before any queue closes.
	mu        sync.RWMutex
	closed    bool
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewPool starts cfg.Workers workers and returns the pool.
func NewPool[T Number](cfg PoolConfig) (*Pool[T], error) {
	if cfg.Workers < 1 {
		return nil, fmt.Errorf("pool: %w: got %d", ErrNoWorkers, cfg.Workers)
	}
	p := &Pool[T]{
		queues:   make([]chan task[T], cfg.Workers),
		done:     make(chan struct{}),
		counters: cfg.Counters,
		compute:  Dot[T],
	}
	for w := range p.queues {
		q := make(chan task[T], taskQueueDepth)
		p.queues[w] = q
		p.wg.Add(1)
		go p.worker(q)
	}
	return p, nil
}

// Workers returns the fixed worker count.
func (p *Pool[T]) Workers() int {
	return len(p.queues)
}

// Close stops dispatch, closes every worker queue and waits for the
// workers to drain outstanding tasks and exit. Idempotent.
func (p *Pool[T]) Close() {
	p.closeOnce.Do(func() {
		// done unblocks a dispatcher parked on a full queue; it holds
		// the read lock, so it must bail out before the write lock
		// below can be taken.
		close(p.done)
		p.mu.Lock()
		p.closed = true
		for _, q := range p.queues {
			close(q)
		}
		p.mu.Unlock()
		p.wg.Wait()
	})
}

// Multiply computes a×b across the pool, one task per output cell.
//
// Cells are assigned round-robin by flat index idx = i*b.C + j, so the
// partitioning is deterministic for a given shape and worker count.
// Every task carries its own one-shot reply channel; the collector
// receives those channels in dispatch order, which by construction is
// flat-index order, so each value lands in its slot without any
// idx-to-slot bookkeeping.
//
// Any failure (incompatible shapes, a pool closed mid-dispatch, a
// worker that terminates without replying) fails the whole multiply.
// No partial matrix is ever returned.
func (p *Pool[T]) Multiply(a, b Matrix[T]) (Matrix[T], error) {
	if a.C != b.R {
		return Matrix[T]{}, fmt.Errorf("multiply: %w: a.cols=%d b.rows=%d", ErrDimensionMismatch, a.C, b.R)
	}

	n := len(p.queues)
	total := a.R * b.C
	pending := make([]chan reply[T], 0, total)

	p.mu.RLock()
	if p.closed {
		// Checked under the read lock: the select below must never
		// see a closed queue, since a ready send case races <-p.done
		// and losing that race would panic.
		p.mu.RUnlock()
		p.counters.Inc(MetricFailures)
		return Matrix[T]{}, fmt.Errorf("multiply: %w: pool closed", ErrDispatchFailure)
	}
	for i := 0; i < a.R; i++ {
		for j := 0; j < b.C; j++ {
			idx := i*b.C + j
			t := task[T]{
				idx: idx,
				// Copies, not views: ownership of both operands
				// transfers to the worker.
				row: append([]T(nil), a.Row(i)...),
				col: b.Col(j),
				// Buffered so the worker's single send never waits on
				// the collector, even if collection aborts early.
				reply: make(chan reply[T], 1),
			}
			pending = append(pending, t.reply)
			select {
			case p.queues[idx%n] <- t:
				p.counters.Inc(MetricTasksDispatched)
			case <-p.done:
				p.mu.RUnlock()
				p.counters.Inc(MetricFailures)
				return Matrix[T]{}, fmt.Errorf("cell %d: %w: pool closed", idx, ErrDispatchFailure)
			}
		}
	}
	p.mu.RUnlock()

	// Collect in dispatch order: the receiver at position k carries
	// idx == k. A slow worker for an early cell stalls the loop even if
	// later cells are done; ordering, not execution order, is the only
	// cross-task guarantee.
	data := make([]T, total)
	for k, rc := range pending {
		r, ok := <-rc
		if !ok {
			p.counters.Inc(MetricFailures)
			return Matrix[T]{}, fmt.Errorf("cell %d: %w: no reply", k, ErrWorkerFailure)
		}
		if r.err != nil {
			p.counters.Inc(MetricFailures)
			return Matrix[T]{}, fmt.Errorf("cell %d: %w", r.idx, r.err)
		}
		data[r.idx] = r.value
		p.counters.Inc(MetricTasksCompleted)
	}
	return New(data, a.R, b.C), nil
}

func (p *Pool[T]) worker(queue <-chan task[T]) {
	defer p.wg.Done()
	for t := range queue {
		p.run(t)
	}
}

// run resolves exactly one task: it sends a value or an error on the
// reply channel, or closes the channel unsent if the kernel panics, so
// the collector always observes worker death instead of hanging.
func (p *Pool[T]) run(t task[T]) {
	defer func() {
		if r := recover(); r != nil {
			close(t.reply)
		}
	}()
	v, err := p.compute(t.row, t.col)
	t.reply <- reply[T]{idx: t.idx, value: v, err: err}
}

// MultiplyConcurrent computes a×b by partitioning the output cells
// across a dedicated pool of workers torn down before returning. The
// result is element-for-element identical to Multiply for every worker
// count, including counts larger than the number of cells.
func MultiplyConcurrent[T Number](a, b Matrix[T], workers int) (Matrix[T], error) {
	p, err := NewPool[T](PoolConfig{Workers: workers})
	if err != nil {
		return Matrix[T]{}, err
	}
	defer p.Close()
	return p.Multiply(a, b)
}
