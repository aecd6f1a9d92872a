// Package config loads rendering jobs from YAML files.
//
// A job file names the part of the complex plane to render, the output
// size, how the image is cut into tiles and how many workers render them,
// and how escape scores are colored. Every field is optional; omitted
// fields keep the values from Default. Command-line flags are applied on
// top of the loaded file by the caller.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/fractal"
)

// Palette kinds.
const (
	PaletteUltra    = "ultra"
	PaletteGradient = "gradient"
	PaletteMapping  = "mapping"
)

// Config describes one rendering job.
type Config struct {
	// Region is the name of a preset region of the plane.
	// Ignored when Plane is set.
	Region string `yaml:"region"`

	// Plane is an explicit rectangle of the plane.
	Plane *PlaneConfig `yaml:"plane,omitempty"`

	// Width and Height are the output size in pixels.
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	// Tile is the tile size in pixels.
	Tile TileConfig `yaml:"tile"`

	// Workers is the number of rendering workers.
	Workers int `yaml:"workers"`

	// Threshold is the iteration limit of the escape test.
	Threshold int `yaml:"threshold"`

	// Palette configures score coloring.
	Palette PaletteConfig `yaml:"palette"`
}

// PlaneConfig is an explicit rectangle of the complex plane.
type PlaneConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	W float64 `yaml:"w"`
	H float64 `yaml:"h"`
}

// TileConfig is the size of one tile.
type TileConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// PaletteConfig configures how scores map to colors.
type PaletteConfig struct {
	// Kind is one of "ultra", "gradient" or "mapping".
	Kind string `yaml:"kind"`

	// Colors are hex colors. Gradient uses the first; mapping cycles
	// through all of them.
	Colors []string `yaml:"colors,omitempty"`

	// Negative is the hex color of points that never escape.
	// Empty keeps the kind's own choice.
	Negative string `yaml:"negative,omitempty"`

	// Brighter and Darker apply the filter that many times.
	Brighter int `yaml:"brighter,omitempty"`
	Darker   int `yaml:"darker,omitempty"`
}

// Default returns the job rendered when nothing is configured: the full
// set at 600x400 in 48 tiles of 50x100 on four workers.
func Default() *Config {
	return &Config{
		Region:    "full",
		Width:     600,
		Height:    400,
		Tile:      TileConfig{Width: 50, Height: 100},
		Workers:   4,
		Threshold: 1000,
		Palette:   PaletteConfig{Kind: PaletteUltra},
	}
}

// Load reads and validates the job file at path, applied over Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over Default and validates the result.
// Unknown fields are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(data); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse: %w", err)
	}
	return nil
}

// Validate checks the configuration for errors. It reports every problem
// found, joined into one error.
func (c *Config) Validate() error {
	var errs []error

	if c.Plane != nil {
		if _, err := fractal.NewArea(image.Rect(0, 0, 1, 1), c.PlaneRect()); err != nil {
			errs = append(errs, fmt.Errorf("plane: %w", err))
		}
	} else if _, err := fractal.Region(c.Region); err != nil {
		errs = append(errs, fmt.Errorf("region: %w", err))
	}

	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("size %dx%d must be positive", c.Width, c.Height))
	}
	if c.Tile.Width <= 0 || c.Tile.Height <= 0 {
		errs = append(errs, fmt.Errorf("tile size %dx%d must be positive", c.Tile.Width, c.Tile.Height))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers %d must be at least 1", c.Workers))
	}
	if c.Threshold < 1 {
		errs = append(errs, fmt.Errorf("threshold %d must be at least 1", c.Threshold))
	}
	if _, err := c.Palette.Build(); err != nil {
		errs = append(errs, fmt.Errorf("palette: %w", err))
	}

	return errors.Join(errs...)
}

// PlaneRect returns the rectangle of the plane to render.
func (c *Config) PlaneRect() fractal.PlaneRect {
	if c.Plane != nil {
		return fractal.PlaneRect{X: c.Plane.X, Y: c.Plane.Y, W: c.Plane.W, H: c.Plane.H}
	}
	r, _ := fractal.Region(c.Region)
	return r
}

// Area returns the root area of the job, with its pixel origin at (0, 0).
func (c *Config) Area() (fractal.Area, error) {
	return fractal.NewArea(image.Rect(0, 0, c.Width, c.Height), c.PlaneRect())
}

// Build returns the palette described by p.
func (p PaletteConfig) Build() (fractal.Palette, error) {
	colors := make([]fractal.RGBA, 0, len(p.Colors))
	for _, s := range p.Colors {
		c, err := fractal.ParseHex(s)
		if err != nil {
			return nil, err
		}
		colors = append(colors, c)
	}

	var pal fractal.Palette
	switch p.Kind {
	case PaletteUltra, "":
		pal = fractal.Ultra
	case PaletteGradient:
		if len(colors) == 0 {
			return nil, fmt.Errorf("%w: gradient needs a color", fractal.ErrInvalidArgument)
		}
		pal = fractal.Gradient(colors[0])
	case PaletteMapping:
		if len(colors) == 0 {
			return nil, fmt.Errorf("%w: mapping needs at least one color", fractal.ErrInvalidArgument)
		}
		pal = fractal.Mapping(colors...)
	default:
		return nil, fmt.Errorf("%w: unknown palette kind %q", fractal.ErrInvalidArgument, p.Kind)
	}

	if p.Brighter < 0 || p.Darker < 0 {
		return nil, fmt.Errorf("%w: negative filter count", fractal.ErrInvalidArgument)
	}
	for range p.Brighter {
		pal = pal.Brighter()
	}
	for range p.Darker {
		pal = pal.Darker()
	}

	if p.Negative != "" {
		neg, err := fractal.ParseHex(p.Negative)
		if err != nil {
			return nil, err
		}
		pal = pal.WithNegative(neg)
	}
	return pal, nil
}
