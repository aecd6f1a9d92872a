package fractal

import "math"

// Palette maps an escape score to a display color.
//
// Palettes must be pure functions: tiles are colored concurrently. The
// combinator methods never modify the receiver; each returns a new
// Palette wrapping it.
type Palette func(score float64) RGBA

// WithNegative returns a palette that yields c for negative scores (points
// that never escape) and defers to p otherwise.
func (p Palette) WithNegative(c RGBA) Palette {
	return func(score float64) RGBA {
		if score < 0 {
			return c
		}
		return p(score)
	}
}

// WithFilter returns a palette that applies filter to every color of p.
func (p Palette) WithFilter(filter func(RGBA) RGBA) Palette {
	return func(score float64) RGBA {
		return filter(p(score))
	}
}

// Brighter returns a brighter version of p. See RGBA.Brighter.
func (p Palette) Brighter() Palette {
	return p.WithFilter(RGBA.Brighter)
}

// Darker returns a darker version of p. See RGBA.Darker.
func (p Palette) Darker() Palette {
	return p.WithFilter(RGBA.Darker)
}

// gradientSpan is the score at which Gradient reaches its base color.
const gradientSpan = 50

// Gradient returns a palette that is black for negative scores and scales
// c by score/50 otherwise, each 8-bit channel saturating at 255.
func Gradient(c RGBA) Palette {
	base := c.NRGBA()
	scale := func(v uint8, score float64) float64 {
		return float64(int(math.Min(255, float64(v)*score/gradientSpan))) / 255
	}
	return func(score float64) RGBA {
		if score < 0 {
			return Black
		}
		return RGBA{
			R: scale(base.R, score),
			G: scale(base.G, score),
			B: scale(base.B, score),
			A: 1,
		}
	}
}

// Mapping returns a palette cycling through colors by the integer part of
// the score. The fractional part interpolates towards the next color,
// wrapping from the last color back to the first.
//
// Mapping with no colors yields a palette that is always black.
func Mapping(colors ...RGBA) Palette {
	table := append([]RGBA(nil), colors...)
	n := len(table)
	if n == 0 {
		return func(float64) RGBA { return Black }
	}
	return func(score float64) RGBA {
		whole := math.Floor(score)
		frac := score - whole
		i := int(math.Mod(whole, float64(n)))
		if i < 0 {
			i += n
		}
		from, to := table[i], table[(i+1)%n]
		return from.Lerp(to, frac)
	}
}

// Ultra is the classic 16-color Mandelbrot palette; the set itself is black.
var Ultra = Mapping(
	RGB8(66, 30, 15),
	RGB8(25, 7, 26),
	RGB8(9, 1, 47),
	RGB8(4, 4, 73),
	RGB8(0, 7, 100),
	RGB8(12, 44, 138),
	RGB8(24, 82, 177),
	RGB8(57, 125, 209),
	RGB8(134, 181, 229),
	RGB8(211, 236, 248),
	RGB8(241, 233, 191),
	RGB8(248, 201, 95),
	RGB8(255, 170, 0),
	RGB8(204, 128, 0),
	RGB8(153, 87, 0),
	RGB8(106, 52, 3),
).WithNegative(Black)
