package fractal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/fractal/internal/parallel"
)

// State is the lifecycle state of a Scheduler.
type State int32

const (
	// StateIdle is the state of a new scheduler, before Dispatch.
	StateIdle State = iota

	// StateRunning means tiles are being rendered.
	StateRunning

	// StateCompleted means every dispatched tile was published, failed or
	// interrupted. It is final.
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Scheduler renders a collection of tiles on a bounded pool of workers and
// publishes each finished tile to a Canvas.
//
// Workers pull tiles from a shared queue, so workers that finish cheap
// tiles (inside the set, where the analytic tests short-circuit) go on to
// take more tiles while others are still iterating on the boundary. Tiles
// complete independently and in no particular order: a failing or
// interrupted tile never affects its siblings.
//
// A Scheduler runs one job. It goes from StateIdle to StateRunning on
// Dispatch and to StateCompleted once every tile is resolved; it cannot
// be restarted.
//
// Thread safety: all methods are safe for concurrent use.
type Scheduler struct {
	canvas  *Canvas
	eval    Evaluator
	palette Palette

	state atomic.Int32
	done  chan struct{}

	// Set by Dispatch before any worker starts; read-only afterwards.
	ctx      context.Context
	cancel   context.CancelFunc
	tiles    []Tile
	resolved *parallel.Bitmap
	started  time.Time

	published   atomic.Int64
	failed      atomic.Int64
	interrupted atomic.Int64

	mu       sync.Mutex
	failures []*TileError
	elapsed  time.Duration
}

// NewScheduler creates an idle scheduler that renders tiles with eval and
// palette and publishes them to canvas.
func NewScheduler(canvas *Canvas, eval Evaluator, palette Palette) (*Scheduler, error) {
	if canvas == nil || eval == nil || palette == nil {
		return nil, fmt.Errorf("%w: nil canvas, evaluator or palette", ErrInvalidArgument)
	}
	return &Scheduler{
		canvas:  canvas,
		eval:    eval,
		palette: palette,
		done:    make(chan struct{}),
		cancel:  func() {},
	}, nil
}

// Dispatch is DispatchContext with a background context.
func (s *Scheduler) Dispatch(tiles []Tile, workers int) error {
	return s.DispatchContext(context.Background(), tiles, workers)
}

// DispatchContext starts rendering tiles on the given number of workers and
// returns immediately. Canceling ctx has the same effect as Cancel.
//
// It returns ErrInvalidArgument if ctx is nil, tiles is empty or workers
// is below one, and ErrAlreadyStarted if the scheduler has been dispatched
// before. Any worker count is valid, including one worker per tile.
func (s *Scheduler) DispatchContext(ctx context.Context, tiles []Tile, workers int) error {
	if State(s.state.Load()) != StateIdle {
		return ErrAlreadyStarted
	}
	if ctx == nil {
		return fmt.Errorf("%w: nil context", ErrInvalidArgument)
	}
	if len(tiles) == 0 {
		return fmt.Errorf("%w: no tiles to dispatch", ErrInvalidArgument)
	}
	if workers < 1 {
		return fmt.Errorf("%w: worker count %d", ErrInvalidArgument, workers)
	}
	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return ErrAlreadyStarted
	}

	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.tiles = append([]Tile(nil), tiles...)
	s.resolved = parallel.NewBitmap(len(tiles))
	s.started = time.Now()
	s.mu.Unlock()

	Logger().Info("fractal: dispatching tiles", "tiles", len(tiles), "workers", workers)

	pool := parallel.NewWorkerPool(workers, len(tiles))
	for slot := range s.tiles {
		pool.Submit(func() { s.runTile(slot) })
	}

	go func() {
		// Close drains the queue, so every tile has run once it returns.
		pool.Close()
		s.complete()
	}()
	return nil
}

// runTile renders, publishes and accounts for one tile. slot is the tile's
// position in the dispatched collection.
func (s *Scheduler) runTile(slot int) {
	tile := s.tiles[slot]
	defer s.resolved.Set(slot)

	buf, err := s.render(tile)
	if err == nil {
		err = s.canvas.Publish(tile.Area, buf)
	}

	switch {
	case err == nil:
		s.published.Add(1)
	case errors.Is(err, ErrInterrupted):
		s.interrupted.Add(1)
		Logger().Debug("fractal: tile interrupted", "tile", tile.Index, "rect", tile.Pixels)
	default:
		s.failed.Add(1)
		tileErr := &TileError{Tile: tile, Err: err}
		s.mu.Lock()
		s.failures = append(s.failures, tileErr)
		s.mu.Unlock()
		Logger().Warn("fractal: tile failed", "tile", tile.Index, "rect", tile.Pixels, "err", err)
	}
}

// render runs RenderTile, converting a panic in the evaluator or palette
// into an error local to the tile.
func (s *Scheduler) render(tile Tile) (buf *Pixmap, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf = nil
			err = fmt.Errorf("%w: panic: %v", ErrTileRender, r)
		}
	}()
	return RenderTile(s.ctx, tile.Area, s.eval, s.palette)
}

// complete moves the scheduler to StateCompleted.
func (s *Scheduler) complete() {
	s.mu.Lock()
	s.elapsed = time.Since(s.started)
	s.mu.Unlock()

	s.state.Store(int32(StateCompleted))
	close(s.done)
	s.cancel() // release the context's resources

	r := s.Report()
	Logger().Info("fractal: rendering complete",
		"tiles", r.Total,
		"published", r.Published,
		"failed", r.Failed,
		"interrupted", r.Interrupted,
		"elapsed", r.Elapsed)
}

// Cancel asks in-flight and queued tiles to stop. Tiles already published
// stay published. Cancellation is checked between pixel rows, so a tile
// past its last row finishes normally. Cancel does not block; the
// scheduler still reaches StateCompleted once the workers wind down.
// Calling Cancel before Dispatch or after completion has no effect.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if State(s.state.Load()) == StateRunning {
		Logger().Info("fractal: cancel requested")
	}
	cancel()
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// IsComplete reports whether every dispatched tile has been resolved.
// It never blocks, and once it returns true it always will.
func (s *Scheduler) IsComplete() bool {
	return s.State() == StateCompleted
}

// Done returns a channel that is closed when the scheduler completes.
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}

// AwaitCompletion blocks until the scheduler completes or timeout elapses,
// and reports whether completion was observed. A timeout of zero or less
// waits indefinitely. A scheduler that has not been dispatched cannot
// complete, so AwaitCompletion returns false for it at once.
func (s *Scheduler) AwaitCompletion(timeout time.Duration) bool {
	if s.State() == StateIdle {
		return false
	}
	if timeout <= 0 {
		<-s.done
		return true
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-s.done:
		return true
	case <-timer.C:
		return s.IsComplete()
	}
}

// Wait blocks until the scheduler completes or ctx is done.
// It returns ctx.Err() in the latter case.
func (s *Scheduler) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending returns the indices of dispatched tiles that have not been
// resolved yet, in dispatch order.
func (s *Scheduler) Pending() []int {
	s.mu.Lock()
	resolved, tiles := s.resolved, s.tiles
	s.mu.Unlock()

	if resolved == nil {
		return nil
	}
	pending := make([]int, 0, len(tiles)-resolved.Count())
	resolved.ForEachClear(func(slot int) {
		pending = append(pending, tiles[slot].Index)
	})
	return pending
}

// Report summarizes the progress of a job.
type Report struct {
	State       State
	Total       int
	Published   int
	Failed      int
	Interrupted int

	// Elapsed is the time from Dispatch to completion, or to now while
	// the job is running.
	Elapsed time.Duration

	// Failures holds one error per failed tile.
	Failures []*TileError
}

// Resolved returns the number of tiles that are no longer pending.
func (r Report) Resolved() int {
	return r.Published + r.Failed + r.Interrupted
}

// Err joins the tile failures, or returns nil if no tile failed.
// Interrupted tiles are not failures.
func (r Report) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return fmt.Errorf("fractal: completed with %d failed tiles: %w", len(r.Failures), errors.Join(errs...))
}

// Report returns a snapshot of the job's progress.
func (s *Scheduler) Report() Report {
	state := s.State()

	s.mu.Lock()
	defer s.mu.Unlock()

	r := Report{
		State:       state,
		Total:       len(s.tiles),
		Published:   int(s.published.Load()),
		Failed:      int(s.failed.Load()),
		Interrupted: int(s.interrupted.Load()),
		Failures:    append([]*TileError(nil), s.failures...),
	}
	switch state {
	case StateCompleted:
		r.Elapsed = s.elapsed
	case StateRunning:
		if !s.started.IsZero() {
			r.Elapsed = time.Since(s.started)
		}
	}
	return r
}
