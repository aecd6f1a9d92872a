package fractal

import (
	"cmp"
	"fmt"
	"image"
	"slices"

	"github.com/gogpu/fractal/cache"
	"github.com/gogpu/fractal/surface"
)

// Target is the drawing surface a canvas composites onto.
// surface.ImageSurface implements it.
type Target = surface.Target

// Canvas accumulates the pixel buffers of finished tiles.
//
// Each tile rectangle is published at most once and its buffer is never
// replaced or removed, so the published set only grows. Tiles are stored in
// a sharded map keyed by pixel rectangle: a publish locks one shard, and
// readers hold a shard's read lock only while copying its entries out.
// Painting therefore never stalls the workers for more than one shard
// access.
//
// Thread safety: Canvas is safe for concurrent use by any number of
// publishing workers and painting readers.
type Canvas struct {
	bounds image.Rectangle
	tiles  *cache.Sharded[image.Rectangle, *Pixmap]
}

// NewCanvas creates an empty canvas covering bounds, normally the pixel
// rectangle of the root area.
func NewCanvas(bounds image.Rectangle) (*Canvas, error) {
	if bounds.Empty() {
		return nil, fmt.Errorf("%w: empty canvas %v", ErrInvalidArgument, bounds)
	}
	return &Canvas{
		bounds: bounds,
		tiles:  cache.NewSharded[image.Rectangle, *Pixmap](cache.RectHasher),
	}, nil
}

// Bounds returns the pixel rectangle covered by the canvas.
func (c *Canvas) Bounds() image.Rectangle {
	return c.bounds
}

// Publish records buf as the image of tile.
//
// The buffer must cover exactly tile.Pixels, inside the canvas bounds;
// otherwise Publish returns ErrInvalidArgument. The buffer must not be
// modified afterwards.
//
// Publishing the same rectangle twice is a scheduling bug. In builds tagged
// fractaldebug Publish panics; otherwise it logs a warning and returns
// ErrDuplicatePublish, leaving the first buffer in place.
func (c *Canvas) Publish(tile Area, buf *Pixmap) error {
	if buf == nil {
		return fmt.Errorf("%w: nil buffer for %v", ErrInvalidArgument, tile.Pixels)
	}
	if buf.Bounds() != tile.Pixels {
		return fmt.Errorf("%w: buffer %v does not match tile %v", ErrInvalidArgument, buf.Bounds(), tile.Pixels)
	}
	if tile.Pixels.Empty() || !tile.Pixels.In(c.bounds) {
		return fmt.Errorf("%w: tile %v outside canvas %v", ErrInvalidArgument, tile.Pixels, c.bounds)
	}

	if !c.tiles.SetOnce(tile.Pixels, buf) {
		err := fmt.Errorf("%w: %v", ErrDuplicatePublish, tile.Pixels)
		if debugBuild {
			panic(err)
		}
		Logger().Warn("fractal: duplicate tile publish ignored", "rect", tile.Pixels)
		return err
	}

	Logger().Debug("fractal: tile published", "rect", tile.Pixels, "published", c.tiles.Len())
	return nil
}

// Published returns the number of tiles published so far.
func (c *Canvas) Published() int {
	return c.tiles.Len()
}

// IsPublished reports whether rect has been published.
func (c *Canvas) IsPublished(rect image.Rectangle) bool {
	_, ok := c.tiles.Get(rect)
	return ok
}

// Rects returns the rectangles published so far in row-major order.
func (c *Canvas) Rects() []image.Rectangle {
	rects := c.tiles.Keys()
	slices.SortFunc(rects, func(a, b image.Rectangle) int {
		return cmp.Or(cmp.Compare(a.Min.Y, b.Min.Y), cmp.Compare(a.Min.X, b.Min.X))
	})
	return rects
}

// DrawOnto draws every tile published so far onto dst at its pixel position.
//
// DrawOnto may be called at any time, including while tiles are still being
// published; it draws whatever subset is available. It does not change the
// canvas, so repeated calls are harmless.
func (c *Canvas) DrawOnto(dst Target) {
	if dst == nil {
		return
	}
	for _, buf := range c.tiles.Values() {
		dst.DrawImage(buf.Image(), buf.Bounds().Min)
	}
}

// Snapshot composites the published tiles into a new image covering the
// canvas bounds. Unpublished pixels are transparent.
func (c *Canvas) Snapshot() *image.RGBA {
	s := surface.NewImageSurfaceFromImage(image.NewRGBA(c.bounds))
	c.DrawOnto(s)
	return s.Image()
}

// NewPainter returns a Painter that draws each tile of c only once.
func (c *Canvas) NewPainter() *Painter {
	return &Painter{
		canvas: c,
		drawn:  make(map[image.Rectangle]struct{}),
	}
}

// Painter draws the tiles published since its previous Paint call. Shells
// that keep their own surface across frames use it instead of redrawing
// the whole canvas on every repaint.
//
// A Painter belongs to one paint loop and is not safe for concurrent use.
type Painter struct {
	canvas *Canvas
	drawn  map[image.Rectangle]struct{}
}

// Paint draws the newly published tiles onto dst and returns how many it
// drew.
func (p *Painter) Paint(dst Target) int {
	if dst == nil {
		return 0
	}
	if len(p.drawn) == p.canvas.Published() {
		return 0
	}

	n := 0
	for _, buf := range p.canvas.tiles.Values() {
		r := buf.Bounds()
		if _, ok := p.drawn[r]; ok {
			continue
		}
		dst.DrawImage(buf.Image(), r.Min)
		p.drawn[r] = struct{}{}
		n++
	}
	return n
}

// Drawn returns the number of tiles the painter has drawn so far.
func (p *Painter) Drawn() int {
	return len(p.drawn)
}
