package main

import (
	"context"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/fractal"
	"github.com/gogpu/fractal/internal/config"
)

// job is one rendering run: the tiles of the configured area, the canvas
// they are published to and the scheduler rendering them.
type job struct {
	area      fractal.Area
	tiles     []fractal.Tile
	workers   int
	canvas    *fractal.Canvas
	scheduler *fractal.Scheduler

	// reported is set once the completion summary has been handed out.
	reported bool
}

func newJob(cfg *config.Config) (*job, error) {
	area, err := cfg.Area()
	if err != nil {
		return nil, err
	}
	tiles, err := area.Split(cfg.Tile.Width, cfg.Tile.Height)
	if err != nil {
		return nil, err
	}
	palette, err := cfg.Palette.Build()
	if err != nil {
		return nil, err
	}
	canvas, err := fractal.NewCanvas(area.Pixels)
	if err != nil {
		return nil, err
	}
	scheduler, err := fractal.NewScheduler(canvas, fractal.Mandelbrot(cfg.Threshold), palette)
	if err != nil {
		return nil, err
	}
	return &job{
		area:      area,
		tiles:     tiles,
		workers:   cfg.Workers,
		canvas:    canvas,
		scheduler: scheduler,
	}, nil
}

func (j *job) start(ctx context.Context) error {
	fractal.Logger().Info("mandelbrot: starting job",
		"area", j.area.String(),
		"tiles", len(j.tiles),
		"workers", j.workers)
	return j.scheduler.DispatchContext(ctx, j.tiles, j.workers)
}

// completed returns the completion summary the first time it is called
// after the scheduler finishes, and false on every other call.
func (j *job) completed() (string, bool) {
	if j.reported || !j.scheduler.IsComplete() {
		return "", false
	}
	j.reported = true
	return j.summary(), true
}

// progress returns a one-line description of the job's state.
func (j *job) progress() string {
	r := j.scheduler.Report()
	return printer.Sprintf("%d/%d tiles, %v", r.Resolved(), r.Total, r.Elapsed.Round(time.Millisecond))
}

func (j *job) summary() string {
	r := j.scheduler.Report()
	pixels := j.area.Pixels.Dx() * j.area.Pixels.Dy()
	s := printer.Sprintf("rendered %d pixels in %d tiles on %d workers in %v",
		pixels, r.Published, j.workers, r.Elapsed.Round(time.Microsecond))
	if r.Interrupted > 0 {
		s += printer.Sprintf(", %d tiles interrupted", r.Interrupted)
	}
	if r.Failed > 0 {
		s += printer.Sprintf(", %d tiles failed", r.Failed)
	}
	return s
}

// printer formats counts with digit grouping.
var printer = message.NewPrinter(language.English)
