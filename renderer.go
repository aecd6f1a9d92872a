package fractal

import (
	"context"
	"fmt"
)

// RenderTile evaluates eval and palette at every pixel of tile and returns
// the resulting buffer, whose bounds equal tile.Pixels.
//
// Pixels are computed row by row. ctx is checked before each row; once it
// is done RenderTile returns ErrInterrupted and discards the rows already
// computed, so a canceled render never yields a partial buffer.
func RenderTile(ctx context.Context, tile Area, eval Evaluator, palette Palette) (*Pixmap, error) {
	if eval == nil || palette == nil {
		return nil, fmt.Errorf("%w: nil evaluator or palette", ErrInvalidArgument)
	}
	if tile.Pixels.Empty() {
		return nil, fmt.Errorf("%w: empty tile %v", ErrInvalidArgument, tile.Pixels)
	}

	r := tile.Pixels
	pm := NewPixmap(r)

	for j := range r.Dy() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v after %d of %d rows: %w", ErrInterrupted, r, j, r.Dy(), err)
		}
		y := tile.PixelToPlaneY(r.Min.Y + j)
		for i := range r.Dx() {
			x := tile.PixelToPlaneX(r.Min.X + i)
			pm.SetPixel(i, j, palette(eval(x, y)))
		}
	}
	return pm, nil
}
