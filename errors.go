package fractal

import (
	"errors"
	"fmt"
)

// Package errors. Match them with errors.Is; constructors and methods wrap
// them with call-specific context.
var (
	// ErrInvalidArgument is returned for non-positive dimensions, empty
	// regions, empty tile collections and worker counts below one.
	ErrInvalidArgument = errors.New("fractal: invalid argument")

	// ErrAlreadyStarted is returned by Dispatch on a scheduler that has
	// already left the idle state.
	ErrAlreadyStarted = errors.New("fractal: scheduler already started")

	// ErrTileRender marks a tile whose evaluator or palette failed.
	ErrTileRender = errors.New("fractal: tile render failed")

	// ErrInterrupted is returned by RenderTile when its context is
	// canceled before the last row was computed.
	ErrInterrupted = errors.New("fractal: render interrupted")

	// ErrDuplicatePublish is returned when a tile rectangle is published
	// to a canvas twice.
	ErrDuplicatePublish = errors.New("fractal: tile already published")
)

// TileError records the failure of a single tile.
// It matches ErrTileRender with errors.Is and unwraps to its cause.
type TileError struct {
	Tile Tile
	Err  error
}

func (e *TileError) Error() string {
	return fmt.Sprintf("fractal: tile %d %v: %v", e.Tile.Index, e.Tile.Pixels, e.Err)
}

func (e *TileError) Unwrap() error { return e.Err }

// Is reports whether target is ErrTileRender.
func (e *TileError) Is(target error) bool { return target == ErrTileRender }
