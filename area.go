package fractal

import (
	"fmt"
	"image"
	"math"
)

// PlaneRect is an axis-aligned rectangle of the complex plane.
// X and Y are the minimal real and imaginary parts; W and H are the extents.
type PlaneRect struct {
	X, Y, W, H float64
}

// Valid reports whether the rectangle has finite coordinates and strictly
// positive extents.
func (r PlaneRect) Valid() bool {
	for _, v := range [...]float64{r.X, r.Y, r.W, r.H} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return r.W > 0 && r.H > 0
}

func (r PlaneRect) String() string {
	return fmt.Sprintf("(%g,%g %gx%g)", r.X, r.Y, r.W, r.H)
}

// Area pairs a rectangle of pixels with the rectangle of the complex plane
// it represents. The pixel rectangle maps onto the plane rectangle by an
// affine scaling along each axis.
//
// Areas are values and are never modified; derivations return new Areas.
type Area struct {
	Pixels image.Rectangle
	Plane  PlaneRect
}

// NewArea creates an area from a pixel rectangle and a plane rectangle.
// It returns ErrInvalidArgument if either rectangle is empty.
func NewArea(pixels image.Rectangle, plane PlaneRect) (Area, error) {
	if pixels.Dx() <= 0 || pixels.Dy() <= 0 {
		return Area{}, fmt.Errorf("%w: empty pixel rectangle %v", ErrInvalidArgument, pixels)
	}
	if !plane.Valid() {
		return Area{}, fmt.Errorf("%w: empty plane rectangle %v", ErrInvalidArgument, plane)
	}
	return Area{Pixels: pixels, Plane: plane}, nil
}

// NewAreaWithin is like NewArea but also requires the pixel rectangle to
// lie inside screen.
func NewAreaWithin(screen, pixels image.Rectangle, plane PlaneRect) (Area, error) {
	if !pixels.In(screen) {
		return Area{}, fmt.Errorf("%w: %v is outside screen %v", ErrInvalidArgument, pixels, screen)
	}
	return NewArea(pixels, plane)
}

// PixelToPlaneX returns the real part represented by pixel column px.
// px is an absolute pixel coordinate; the area's pixel origin maps to Plane.X.
func (a Area) PixelToPlaneX(px int) float64 {
	return a.Plane.X + float64(px-a.Pixels.Min.X)*a.Plane.W/float64(a.Pixels.Dx())
}

// PixelToPlaneY returns the imaginary part represented by pixel row py.
func (a Area) PixelToPlaneY(py int) float64 {
	return a.Plane.Y + float64(py-a.Pixels.Min.Y)*a.Plane.H/float64(a.Pixels.Dy())
}

// PlaneToPixelX returns the pixel column containing real part x,
// truncated toward zero.
func (a Area) PlaneToPixelX(x float64) int {
	return int(float64(a.Pixels.Min.X) + (x-a.Plane.X)*float64(a.Pixels.Dx())/a.Plane.W)
}

// PlaneToPixelY returns the pixel row containing imaginary part y,
// truncated toward zero.
func (a Area) PlaneToPixelY(y float64) int {
	return int(float64(a.Pixels.Min.Y) + (y-a.Plane.Y)*float64(a.Pixels.Dy())/a.Plane.H)
}

// Contains reports whether pixel (px, py) belongs to the area.
func (a Area) Contains(px, py int) bool {
	return image.Pt(px, py).In(a.Pixels)
}

// GridSize returns the number of tile columns and rows Split produces for
// the given tile size. Both are zero for non-positive sizes.
func (a Area) GridSize(tileWidth, tileHeight int) (cols, rows int) {
	if tileWidth <= 0 || tileHeight <= 0 {
		return 0, 0
	}
	cols = (a.Pixels.Dx() + tileWidth - 1) / tileWidth
	rows = (a.Pixels.Dy() + tileHeight - 1) / tileHeight
	return cols, rows
}

// Split divides the area into tiles of tileWidth x tileHeight pixels.
//
// Tiles are produced row by row from the top-left corner. Tiles in the last
// column and row are clipped to the area, and the plane rectangle of every
// tile is derived with the same pixel-to-plane ratio as the parent, so the
// tiles partition both rectangles exactly. A tile size larger than the area
// yields a single tile equal to the area.
func (a Area) Split(tileWidth, tileHeight int) ([]Tile, error) {
	if tileWidth <= 0 || tileHeight <= 0 {
		return nil, fmt.Errorf("%w: tile size %dx%d", ErrInvalidArgument, tileWidth, tileHeight)
	}

	cols, rows := a.GridSize(tileWidth, tileHeight)
	tiles := make([]Tile, 0, cols*rows)

	scaleX := a.Plane.W / float64(a.Pixels.Dx())
	scaleY := a.Plane.H / float64(a.Pixels.Dy())

	for ty := range rows {
		y0 := a.Pixels.Min.Y + ty*tileHeight
		y1 := min(y0+tileHeight, a.Pixels.Max.Y)
		for tx := range cols {
			x0 := a.Pixels.Min.X + tx*tileWidth
			x1 := min(x0+tileWidth, a.Pixels.Max.X)

			pixels := image.Rect(x0, y0, x1, y1)
			plane := PlaneRect{
				X: a.PixelToPlaneX(x0),
				Y: a.PixelToPlaneY(y0),
				W: scaleX * float64(pixels.Dx()),
				H: scaleY * float64(pixels.Dy()),
			}
			tiles = append(tiles, Tile{
				Area:  Area{Pixels: pixels, Plane: plane},
				Index: len(tiles),
			})
		}
	}
	return tiles, nil
}

func (a Area) String() string {
	return fmt.Sprintf("%v -> %v", a.Pixels, a.Plane)
}

// Tile is an Area scheduled as one unit of parallel work.
// Index is the tile's position in the row-major order produced by Split;
// it is used for diagnostics and stable ordering only.
type Tile struct {
	Area
	Index int
}
