// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface provides the drawing targets tile images are composited
// onto.
//
// A display shell owns a Surface and hands it to the canvas on every
// repaint; the canvas draws each published tile at its pixel position.
// Surfaces are rendering targets independent of the rendering job, so a
// shell can keep one surface across frames and only draw what changed.
//
// # Usage
//
//	s := surface.NewImageSurface(800, 600)
//	defer s.Close()
//
//	s.Clear(color.Black)
//	canvas.DrawOnto(s)
//	img := s.Snapshot()
//
// Surfaces are NOT thread-safe. Each surface should be used from a single
// goroutine, typically the shell's paint loop.
package surface
