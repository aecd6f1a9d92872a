package fractal

import (
	"image"
	"image/color"
)

// Pixmap is the RGBA pixel buffer of one tile.
//
// The buffer covers a rectangle in canvas coordinates. SetPixel and
// GetPixel take offsets relative to the top-left corner of that
// rectangle, while the image.Image methods use canvas coordinates, so a
// Pixmap can be drawn directly at its position on the canvas.
type Pixmap struct {
	rect image.Rectangle
	data []uint8 // RGBA format, 4 bytes per pixel
}

// NewPixmap creates a new transparent pixmap covering r.
func NewPixmap(r image.Rectangle) *Pixmap {
	r = r.Canon()
	return &Pixmap{
		rect: r,
		data: make([]uint8, r.Dx()*r.Dy()*4),
	}
}

// Width returns the width of the pixmap.
func (p *Pixmap) Width() int {
	return p.rect.Dx()
}

// Height returns the height of the pixmap.
func (p *Pixmap) Height() int {
	return p.rect.Dy()
}

// Data returns the raw pixel data (RGBA format, row-major).
func (p *Pixmap) Data() []uint8 {
	return p.data
}

// SetPixel sets the color of the pixel at offset (i, j).
func (p *Pixmap) SetPixel(i, j int, c RGBA) {
	if i < 0 || i >= p.rect.Dx() || j < 0 || j >= p.rect.Dy() {
		return
	}
	n := c.NRGBA()
	k := (j*p.rect.Dx() + i) * 4
	p.data[k+0] = n.R
	p.data[k+1] = n.G
	p.data[k+2] = n.B
	p.data[k+3] = n.A
}

// GetPixel returns the color of the pixel at offset (i, j).
func (p *Pixmap) GetPixel(i, j int) RGBA {
	if i < 0 || i >= p.rect.Dx() || j < 0 || j >= p.rect.Dy() {
		return Transparent
	}
	k := (j*p.rect.Dx() + i) * 4
	return RGBA{
		R: float64(p.data[k+0]) / 255,
		G: float64(p.data[k+1]) / 255,
		B: float64(p.data[k+2]) / 255,
		A: float64(p.data[k+3]) / 255,
	}
}

// Fill sets every pixel to c.
func (p *Pixmap) Fill(c RGBA) {
	n := c.NRGBA()
	for k := 0; k < len(p.data); k += 4 {
		p.data[k+0] = n.R
		p.data[k+1] = n.G
		p.data[k+2] = n.B
		p.data[k+3] = n.A
	}
}

// Image returns an *image.NRGBA sharing the pixmap's memory.
// The image has the pixmap's canvas bounds.
func (p *Pixmap) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    p.data,
		Stride: p.rect.Dx() * 4,
		Rect:   p.rect,
	}
}

// At implements the image.Image interface.
func (p *Pixmap) At(x, y int) color.Color {
	if !image.Pt(x, y).In(p.rect) {
		return color.NRGBA{}
	}
	k := ((y-p.rect.Min.Y)*p.rect.Dx() + (x - p.rect.Min.X)) * 4
	return color.NRGBA{R: p.data[k], G: p.data[k+1], B: p.data[k+2], A: p.data[k+3]}
}

// Bounds implements the image.Image interface.
func (p *Pixmap) Bounds() image.Rectangle {
	return p.rect
}

// ColorModel implements the image.Image interface.
func (p *Pixmap) ColorModel() color.Model {
	return color.NRGBAModel
}
