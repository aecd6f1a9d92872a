// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"image"
	"image/color"
	"testing"
)

// TestNewImageSurface tests surface creation.
func TestNewImageSurface(t *testing.T) {
	s := NewImageSurface(100, 50)
	if s == nil {
		t.Fatal("NewImageSurface returned nil")
	}
	defer s.Close()

	if s.Width() != 100 {
		t.Errorf("Width() = %d, want 100", s.Width())
	}
	if s.Height() != 50 {
		t.Errorf("Height() = %d, want 50", s.Height())
	}
}

// TestNewImageSurfaceInvalidSize tests handling of invalid dimensions.
func TestNewImageSurfaceInvalidSize(t *testing.T) {
	// Should clamp to minimum of 1x1
	s := NewImageSurface(0, -3)
	defer s.Close()

	if s.Width() != 1 || s.Height() != 1 {
		t.Errorf("expected 1x1, got %dx%d", s.Width(), s.Height())
	}
}

// TestNewImageSurfaceFromImageKeepsOrigin tests surfaces not anchored at (0,0).
func TestNewImageSurfaceFromImageKeepsOrigin(t *testing.T) {
	img := image.NewRGBA(image.Rect(10, 20, 30, 40))
	s := NewImageSurfaceFromImage(img)

	if got := s.Bounds(); got != img.Rect {
		t.Errorf("Bounds() = %v, want %v", got, img.Rect)
	}

	src := image.NewNRGBA(image.Rect(12, 22, 14, 24))
	for i := range src.Pix {
		src.Pix[i] = 0xff
	}
	s.DrawImage(src, src.Rect.Min)

	if c := img.RGBAAt(13, 23); c != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("pixel (13,23) = %v, want white", c)
	}
	if c := img.RGBAAt(15, 23); c.A != 0 {
		t.Errorf("pixel (15,23) = %v, want untouched", c)
	}
}

// TestImageSurfaceClear tests the Clear operation.
func TestImageSurfaceClear(t *testing.T) {
	s := NewImageSurface(10, 10)
	defer s.Close()

	s.Clear(color.RGBA{255, 0, 0, 255})

	img := s.Snapshot()
	if img == nil {
		t.Fatal("Snapshot returned nil")
	}

	c := img.RGBAAt(5, 5)
	if c.R != 255 || c.G != 0 || c.B != 0 || c.A != 255 {
		t.Errorf("pixel = %v, want (255, 0, 0, 255)", c)
	}
}

// TestImageSurfaceDrawImage tests blitting at an offset with clipping.
func TestImageSurfaceDrawImage(t *testing.T) {
	s := NewImageSurface(10, 10)
	defer s.Close()

	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i+0] = 0
		src.Pix[i+1] = 200
		src.Pix[i+2] = 0
		src.Pix[i+3] = 255
	}

	// Extends past the right and bottom edges.
	s.DrawImage(src, image.Pt(8, 8))

	img := s.Image()
	tests := []struct {
		x, y int
		want color.RGBA
	}{
		{8, 8, color.RGBA{0, 200, 0, 255}},
		{9, 9, color.RGBA{0, 200, 0, 255}},
		{7, 8, color.RGBA{}},
		{8, 7, color.RGBA{}},
	}
	for _, tt := range tests {
		if got := img.RGBAAt(tt.x, tt.y); got != tt.want {
			t.Errorf("pixel (%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

// TestImageSurfaceSnapshotIsCopy tests that snapshots are independent.
func TestImageSurfaceSnapshotIsCopy(t *testing.T) {
	s := NewImageSurface(4, 4)
	defer s.Close()

	snap := s.Snapshot()
	s.Clear(color.White)

	if c := snap.RGBAAt(0, 0); c.A != 0 {
		t.Errorf("snapshot changed after Clear: %v", c)
	}
}

// TestImageSurfaceClose tests idempotent close and use after close.
func TestImageSurfaceClose(t *testing.T) {
	s := NewImageSurface(4, 4)

	if err := s.Close(); err != nil {
		t.Errorf("Close() = %v, want nil", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() = %v, want nil", err)
	}

	// Must not panic after close.
	s.Clear(color.White)
	s.DrawImage(image.NewRGBA(image.Rect(0, 0, 1, 1)), image.Point{})
	if s.Snapshot() != nil {
		t.Error("Snapshot() after Close should return nil")
	}
	if !s.Bounds().Empty() {
		t.Errorf("Bounds() after Close = %v, want empty", s.Bounds())
	}
}

// TestScale tests resizing a uniform image.
func TestScale(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i+0] = 10
		src.Pix[i+1] = 20
		src.Pix[i+2] = 30
		src.Pix[i+3] = 255
	}

	dst := Scale(src, 8, 4)
	if dst.Rect.Dx() != 8 || dst.Rect.Dy() != 4 {
		t.Fatalf("Scale size = %v, want 8x4", dst.Rect)
	}
	if c := dst.RGBAAt(3, 2); c != (color.RGBA{10, 20, 30, 255}) {
		t.Errorf("scaled pixel = %v, want (10, 20, 30, 255)", c)
	}

	if empty := Scale(nil, 0, 0); empty.Rect.Dx() != 1 || empty.Rect.Dy() != 1 {
		t.Errorf("Scale(nil, 0, 0) size = %v, want 1x1", empty.Rect)
	}
}
