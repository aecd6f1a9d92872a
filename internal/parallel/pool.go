// Package parallel provides the concurrency primitives behind tile
// rendering: a fixed-size worker pool fed by one shared queue, and an
// atomic bitmap for tracking which work items have finished.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool is a fixed set of goroutines pulling work from one shared queue.
//
// Idle workers take the next item as soon as they finish the previous one,
// so workers that draw cheap items simply process more of them. This keeps
// all workers busy when item costs are uneven, without assigning items to
// workers up front.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	// queue is the shared multi-producer multi-consumer work queue.
	queue chan func()

	// mu serializes closing the queue against in-flight Submit calls.
	mu sync.RWMutex

	// wg waits for all workers to finish.
	wg sync.WaitGroup

	// running indicates whether the pool is accepting work.
	running atomic.Bool
}

// NewWorkerPool creates a pool with the given number of workers and a queue
// buffering up to queueSize pending items.
// If workers is 0 or negative, GOMAXPROCS is used. If queueSize is 0 or
// negative, 4x the worker count is used.
// The pool starts immediately and workers begin waiting for work.
func NewWorkerPool(workers, queueSize int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if queueSize <= 0 {
		queueSize = workers * 4
	}

	p := &WorkerPool{
		queue: make(chan func(), queueSize),
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for range workers {
		go p.worker()
	}

	return p
}

// worker is the main loop for each worker goroutine. It exits once the
// queue is closed and drained.
func (p *WorkerPool) worker() {
	defer p.wg.Done()

	for work := range p.queue {
		work()
	}
}

// Submit enqueues fn, blocking while the queue is full.
// It reports whether fn was accepted; after Close it returns false and fn
// is never run. A nil fn is ignored.
func (p *WorkerPool) Submit(fn func()) bool {
	if fn == nil {
		return false
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.running.Load() {
		return false
	}
	p.queue <- fn
	return true
}

// Close stops accepting work, lets the workers finish everything already
// queued, and waits for them to exit.
// Close is safe to call multiple times.
func (p *WorkerPool) Close() {
	p.mu.Lock()
	if !p.running.CompareAndSwap(true, false) {
		p.mu.Unlock()
		p.wg.Wait()
		return
	}
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
}
