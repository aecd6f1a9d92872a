package fractal

import (
	"fmt"
	"math"
	"sort"
)

// Never is the score of a point presumed never to escape.
const Never = -1.0

// Evaluator maps a point of the complex plane to an escape score: the
// number of iterations after which the point escaped, or Never.
//
// Evaluators must be pure: the scheduler calls them concurrently from
// every worker without synchronization.
type Evaluator func(x, y float64) float64

// Mandelbrot returns the escape-time evaluator of the Mandelbrot set.
//
// It iterates z = z² + c starting from z = c and returns the number of
// iterations performed when |z|² first reaches 4, so a point that escapes
// on the first step scores 1. Points still bounded after threshold
// iterations score Never. Threshold values below 1 are treated as 1.
//
// Points inside the main cardioid and the period-2 bulb are recognized
// analytically and score Never without iterating; they would never escape
// under the iteration either.
func Mandelbrot(threshold int) Evaluator {
	if threshold < 1 {
		threshold = 1
	}
	return func(x, y float64) float64 {
		if inMainCardioid(x, y) || inMainBulb(x, y) {
			return Never
		}
		zx, zy := x, y
		for k := 1; k <= threshold; k++ {
			zx, zy = zx*zx-zy*zy+x, 2*zx*zy+y
			if zx*zx+zy*zy >= 4 {
				return float64(k)
			}
		}
		return Never
	}
}

// inMainCardioid tests membership in the cardioid bounded by
// q(q + (x - 1/4)) < y²/4 with q = (x - 1/4)² + y².
func inMainCardioid(x, y float64) bool {
	p2 := (x-0.25)*(x-0.25) + y*y
	p := math.Sqrt(p2)
	return x < p-2*p2+0.25
}

// inMainBulb tests membership in the disc of radius 1/4 centered on -1.
func inMainBulb(x, y float64) bool {
	return (x+1)*(x+1)+y*y < 0.25*0.25
}

// Regions of interest of the Mandelbrot set.
var (
	FullSet        = PlaneRect{X: -2.25, Y: -1, W: 3, H: 2}
	SideOfCardioid = PlaneRect{X: -0.65, Y: -0.72, W: 0.33, H: 0.22}
	BiggestCircle  = PlaneRect{X: -1.5, Y: -0.1, W: 0.3, H: 0.2}
	LeftReplicate  = PlaneRect{X: -1.5, Y: -0.01, W: 0.03, H: 0.02}
	Squeezed       = PlaneRect{X: -0.122, Y: 0.643, W: 0.03, H: 0.02}
)

var regions = map[string]PlaneRect{
	"full":             FullSet,
	"side-of-cardioid": SideOfCardioid,
	"biggest-circle":   BiggestCircle,
	"left-replicate":   LeftReplicate,
	"squeezed":         Squeezed,
}

// Region returns the named region of interest.
func Region(name string) (PlaneRect, error) {
	r, ok := regions[name]
	if !ok {
		return PlaneRect{}, fmt.Errorf("%w: unknown region %q", ErrInvalidArgument, name)
	}
	return r, nil
}

// RegionNames returns the names accepted by Region, sorted.
func RegionNames() []string {
	names := make([]string, 0, len(regions))
	for name := range regions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
