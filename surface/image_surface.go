// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
)

// ImageSurface is a CPU-based surface backed by an *image.RGBA.
//
// Example:
//
//	s := surface.NewImageSurface(800, 600)
//	defer s.Close()
//
//	s.Clear(color.Black)
//	s.DrawImage(tile, tile.Bounds().Min)
//	img := s.Snapshot()
type ImageSurface struct {
	img *image.RGBA

	// closed tracks if Close has been called
	closed bool
}

// NewImageSurface creates a new surface covering (0,0)-(width,height).
// Non-positive dimensions are clamped to 1.
func NewImageSurface(width, height int) *ImageSurface {
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	return &ImageSurface{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// NewImageSurfaceFromImage creates a surface backed by an existing image.
// The surface draws into the provided image directly and keeps its bounds,
// which need not start at the origin.
func NewImageSurfaceFromImage(img *image.RGBA) *ImageSurface {
	return &ImageSurface{img: img}
}

// Bounds returns the surface bounds.
func (s *ImageSurface) Bounds() image.Rectangle {
	if s.closed {
		return image.Rectangle{}
	}
	return s.img.Rect
}

// Width returns the surface width.
func (s *ImageSurface) Width() int {
	return s.Bounds().Dx()
}

// Height returns the surface height.
func (s *ImageSurface) Height() int {
	return s.Bounds().Dy()
}

// Clear fills the entire surface with a solid color.
func (s *ImageSurface) Clear(c color.Color) {
	if s.closed {
		return
	}
	xdraw.Draw(s.img, s.img.Rect, image.NewUniform(c), image.Point{}, xdraw.Src)
}

// DrawImage copies img onto the surface with its top-left corner at at.
// The source replaces the destination, alpha included.
func (s *ImageSurface) DrawImage(img image.Image, at image.Point) {
	if s.closed || img == nil {
		return
	}
	xdraw.Copy(s.img, at, img, img.Bounds(), xdraw.Src, nil)
}

// Snapshot returns a copy of the current surface contents.
func (s *ImageSurface) Snapshot() *image.RGBA {
	if s.closed {
		return nil
	}

	result := image.NewRGBA(s.img.Rect)
	xdraw.Copy(result, s.img.Rect.Min, s.img, s.img.Rect, xdraw.Src, nil)
	return result
}

// Close releases resources associated with the surface.
func (s *ImageSurface) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.img = nil
	return nil
}

// Image returns the underlying image.RGBA.
// This is a direct reference, not a copy.
func (s *ImageSurface) Image() *image.RGBA {
	return s.img
}

// Scale returns a copy of src resized to width x height with bilinear
// filtering. Display shells use it to fit the canvas to their viewport.
func Scale(src image.Image, width, height int) *image.RGBA {
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	if src != nil {
		xdraw.ApproxBiLinear.Scale(dst, dst.Rect, src, src.Bounds(), xdraw.Src, nil)
	}
	return dst
}

// Interface assertion.
var _ Surface = (*ImageSurface)(nil)
