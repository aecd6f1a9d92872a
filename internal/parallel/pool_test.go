package parallel

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// runAll submits n items that each record their index, closes the pool and
// returns how many times each index ran.
func runAll(t *testing.T, pool *WorkerPool, n int) []int {
	t.Helper()
	var mu sync.Mutex
	runs := make([]int, n)
	for i := range n {
		if !pool.Submit(func() {
			mu.Lock()
			runs[i]++
			mu.Unlock()
		}) {
			t.Fatalf("Submit(%d) rejected by an open pool", i)
		}
	}
	pool.Close()
	return runs
}

// =============================================================================
// Submit and Close
// =============================================================================

func TestWorkerPool_RunsEveryItemOnce(t *testing.T) {
	tests := []struct {
		name           string
		workers, queue int
		items          int
	}{
		{"single worker", 1, 1, 50},
		{"small queue", 4, 2, 100},
		{"queue fits all", 4, 100, 100},
		{"more workers than items", 32, 0, 3},
		{"default sizes", 0, 0, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs := runAll(t, NewWorkerPool(tt.workers, tt.queue), tt.items)
			for i, n := range runs {
				if n != 1 {
					t.Errorf("item %d ran %d times, want 1", i, n)
				}
			}
		})
	}
}

func TestWorkerPool_SubmitNil(t *testing.T) {
	pool := NewWorkerPool(2, 0)
	defer pool.Close()

	if pool.Submit(nil) {
		t.Error("Submit(nil) = true, want false")
	}
}

func TestWorkerPool_SubmitAfterClose(t *testing.T) {
	pool := NewWorkerPool(2, 0)
	pool.Close()
	pool.Close() // second Close returns without blocking

	var ran atomic.Bool
	if pool.Submit(func() { ran.Store(true) }) {
		t.Error("Submit after Close = true, want false")
	}
	time.Sleep(20 * time.Millisecond)
	if ran.Load() {
		t.Error("item ran on a closed pool")
	}
}

func TestWorkerPool_CloseWaitsForRunningItems(t *testing.T) {
	pool := NewWorkerPool(2, 8)

	var finished atomic.Int64
	for range 8 {
		pool.Submit(func() {
			time.Sleep(5 * time.Millisecond)
			finished.Add(1)
		})
	}
	pool.Close()

	if finished.Load() != 8 {
		t.Errorf("Close returned with %d of 8 items finished", finished.Load())
	}
}

// =============================================================================
// Scheduling
// =============================================================================

func TestWorkerPool_SlowItemDoesNotBlockQueue(t *testing.T) {
	pool := NewWorkerPool(2, 16)

	release := make(chan struct{})
	var cheap atomic.Int64
	pool.Submit(func() { <-release })
	for range 10 {
		pool.Submit(func() { cheap.Add(1) })
	}

	// One worker is stuck; the other must drain every cheap item.
	deadline := time.Now().Add(5 * time.Second)
	for cheap.Load() < 10 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if got := cheap.Load(); got != 10 {
		t.Errorf("%d of 10 cheap items ran while one worker was blocked", got)
	}

	close(release)
	pool.Close()
}

func TestWorkerPool_SubmitRacesClose(t *testing.T) {
	for range 20 {
		pool := NewWorkerPool(2, 1)

		var accepted, ran atomic.Int64
		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range 10 {
					if pool.Submit(func() { ran.Add(1) }) {
						accepted.Add(1)
					}
				}
			}()
		}

		pool.Close()
		wg.Wait()

		// Every accepted item runs exactly once, even when Close wins the race.
		if ran.Load() != accepted.Load() {
			t.Fatalf("ran %d items, accepted %d", ran.Load(), accepted.Load())
		}
	}
}
