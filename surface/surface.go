// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"image"
	"image/color"
)

// Target is anything a tile image can be drawn onto.
type Target interface {
	// DrawImage draws img with its top-left corner at the given position.
	// Pixels that fall outside the target are discarded.
	DrawImage(img image.Image, at image.Point)
}

// Surface is a Target with a fixed pixel area that can be read back.
//
// Surfaces are NOT thread-safe. Each surface should be used from a single
// goroutine, or external synchronization must be used.
type Surface interface {
	Target

	// Bounds returns the pixel area of the surface.
	Bounds() image.Rectangle

	// Width returns the surface width in pixels.
	Width() int

	// Height returns the surface height in pixels.
	Height() int

	// Clear fills the entire surface with the given color.
	Clear(c color.Color)

	// Snapshot returns the current surface contents as an RGBA image.
	// The returned image is a copy; modifications to it do not affect the surface.
	Snapshot() *image.RGBA

	// Close releases all resources associated with the surface.
	// After Close, the surface must not be used.
	// Close is idempotent; multiple calls are safe.
	Close() error
}
