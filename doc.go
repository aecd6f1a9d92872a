// Package fractal renders escape-time fractals in parallel, tile by tile.
//
// # Overview
//
// An image is described by an Area: a rectangle of pixels paired with the
// rectangle of the complex plane it shows. The area is split into Tiles,
// each tile is rendered independently on a pool of workers, and finished
// tiles are published to a Canvas that a display can draw at any time,
// including while other tiles are still being computed.
//
// # Quick Start
//
//	import "github.com/gogpu/fractal"
//
//	root, _ := fractal.NewArea(image.Rect(0, 0, 600, 400), fractal.FullSet)
//	tiles, _ := root.Split(50, 100)
//
//	canvas, _ := fractal.NewCanvas(root.Pixels)
//	s, _ := fractal.NewScheduler(canvas, fractal.Mandelbrot(1000), fractal.Ultra)
//	_ = s.Dispatch(tiles, runtime.GOMAXPROCS(0))
//
//	s.AwaitCompletion(0)
//	img := canvas.Snapshot()
//
// # Architecture
//
// The package is organized into:
//   - Geometry: PlaneRect, Area, Tile and Area.Split
//   - Scoring: Evaluator and Mandelbrot
//   - Coloring: RGBA and Palette with its combinators
//   - Rendering: RenderTile, Scheduler and Canvas
//
// Evaluators and palettes are plain functions. They must be pure: they
// are called concurrently from every worker.
//
// # Coordinate System
//
// Pixel coordinates follow image conventions:
//   - Origin (0,0) at top-left
//   - X increases right
//   - Y increases down
//
// The plane rectangle of an area starts at its minimal real and imaginary
// parts, so the top row of pixels shows the smallest imaginary part.
//
// # Determinism
//
// Every pixel is computed from its coordinates alone, so the composite
// image is byte-for-byte the same for any worker count and any order of
// tile completion.
//
// # Logging
//
// The package is silent by default. Use SetLogger to receive lifecycle
// events at Info, per-tile events at Debug, and tile failures and
// duplicate publishes at Warn.
package fractal
