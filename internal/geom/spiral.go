// Package geom holds the coordinate core of the spiral: the logarithmic
// spiral equation, polar and Cartesian conversion, the screen/world
// transform, focal zoom and scale normalization.
//
// Everything here is pure math on float64 values. Callers own the state.
package geom

import "math"

// Spiral and viewport constants.
const (
	// Phi is the golden ratio, the spiral's growth factor per quarter turn.
	Phi = 1.6180339887

	// QuarterTurn is the angular period of one growth step.
	QuarterTurn = math.Pi / 2

	// ThetaStep is the base angular sampling step of the spiral polyline.
	ThetaStep = 0.01

	// ZoomSensitivity converts wheel delta units into an exponential zoom factor.
	ZoomSensitivity = 0.0015

	// RotationSensitivity converts wheel delta units into radians of rotation.
	RotationSensitivity = 0.0003

	// MaxRotation bounds the viewport rotation in both directions.
	MaxRotation = math.Pi / 6

	// MinScale and MaxScale bound the viewport scale.
	MinScale = 0.01
	MaxScale = 100.0

	// TargetFPS is the nominal frame rate of the render loop.
	TargetFPS = 60

	// Epsilon is the radius below which the inverse spiral is defined as 0.
	Epsilon = 1e-10
)

// LogPhi is ln(Phi).
var LogPhi = math.Log(Phi)

// Point is a 2D point in either screen or world space.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Len returns the distance of p from the origin.
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }

// Radius returns r(theta) = a * period^(theta / (pi/2)).
func Radius(theta, a, period float64) float64 {
	return a * math.Pow(period, theta/QuarterTurn)
}

// Theta is the inverse of Radius: (pi/2) * log_period(r/a).
// It returns 0 when r or a is at or below Epsilon.
func Theta(r, a, period float64) float64 {
	if r <= Epsilon || a <= Epsilon {
		return 0
	}
	return QuarterTurn * (math.Log(r/a) / math.Log(period))
}

// PolarToCartesian converts (r, theta) to a Cartesian point.
func PolarToCartesian(r, theta float64) Point {
	return Point{X: r * math.Cos(theta), Y: r * math.Sin(theta)}
}

// CartesianToPolar converts a Cartesian point to (r, theta) with theta in (-pi, pi].
func CartesianToPolar(x, y float64) (r, theta float64) {
	return math.Hypot(x, y), math.Atan2(y, x)
}

// SpiralPoint returns the world position of the spiral at theta.
func SpiralPoint(theta, a, period float64) Point {
	return PolarToCartesian(Radius(theta, a, period), theta)
}

// Clamp returns x limited to [lo, hi]. NaN clamps to lo.
func Clamp(x, lo, hi float64) float64 {
	if x < lo || math.IsNaN(x) {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
