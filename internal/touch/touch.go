// Package touch provides touch input with hardware abstraction.
// The real implementations talk to the touch controller over periph.io
// SPI (XPT2046, resistive) or I2C (CST816S, capacitive).
// The fake implementation allows testing without hardware.
package touch

import "errors"

// ErrInputFault wraps controller bus errors. A fault only means "no input
// this cycle" to the caller.
var ErrInputFault = errors.New("touch input fault")

// Point is a position in logical screen coordinates.
type Point struct {
	X int
	Y int
}

// Adapter reports new presses.
type Adapter interface {
	// Poll returns a point only on a new press (finger-down edge), never
	// while the finger stays down and never on release.
	Poll() (Point, bool, error)
}

// Sampler reads the controller's current level.
type Sampler interface {
	// Sample returns the touched point and true while a finger is down.
	Sample() (Point, bool, error)
}

// Screen bounds touch coordinates are clamped to.
type Screen struct {
	Width  int
	Height int
}

// Clamp limits p to the screen.
func (s Screen) Clamp(p Point) Point {
	return Point{X: clamp(p.X, 0, s.Width-1), Y: clamp(p.Y, 0, s.Height-1)}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// scale maps v from [inMin, inMax] to [0, out] the way Arduino's map() does.
func scale(v, inMin, inMax, out int) int {
	if inMax == inMin {
		return 0
	}
	return (v - inMin) * out / (inMax - inMin)
}
