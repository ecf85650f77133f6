package geom

import "math"

// DefaultMargin is the off-screen slack used by visibility tests.
const DefaultMargin = 100

// Viewport is the camera over world space.
//
// The spiral center sits at world origin. A world point is offset, rotated,
// scaled and finally translated to the canvas center.
type Viewport struct {
	Scale    float64 `json:"scale"`
	OffsetX  float64 `json:"offsetX"`
	OffsetY  float64 `json:"offsetY"`
	Rotation float64 `json:"rotation"`
}

// Size is a canvas size in logical pixels.
type Size struct {
	W, H float64
}

// Center returns the canvas center.
func (s Size) Center() Point { return Point{X: s.W / 2, Y: s.H / 2} }

// ToWorld maps a screen point into world space.
func ToWorld(v Viewport, screen Point, size Size) Point {
	x := screen.X - size.W/2
	y := screen.Y - size.H/2

	c := math.Cos(-v.Rotation)
	s := math.Sin(-v.Rotation)
	xr := x*c - y*s
	yr := x*s + y*c

	return Point{
		X: xr/v.Scale - v.OffsetX,
		Y: yr/v.Scale - v.OffsetY,
	}
}

// ToScreen maps a world point onto the screen. It is the exact inverse of ToWorld.
func ToScreen(v Viewport, world Point, size Size) Point {
	x := world.X + v.OffsetX
	y := world.Y + v.OffsetY

	c := math.Cos(v.Rotation)
	s := math.Sin(v.Rotation)
	xr := x*c - y*s
	yr := x*s + y*c

	return Point{
		X: xr*v.Scale + size.W/2,
		Y: yr*v.Scale + size.H/2,
	}
}

// OnScreen reports whether a screen point lies inside the canvas grown by margin.
func OnScreen(p Point, size Size, margin float64) bool {
	return p.X >= -margin && p.X <= size.W+margin &&
		p.Y >= -margin && p.Y <= size.H+margin
}

// IsVisible reports whether a world point projects inside the canvas grown by margin.
func IsVisible(v Viewport, world Point, size Size, margin float64) bool {
	return OnScreen(ToScreen(v, world, size), size, margin)
}

// MaxCornerDistance returns the largest world-space distance from the
// origin to any of the four screen corners.
func MaxCornerDistance(v Viewport, size Size) float64 {
	corners := [4]Point{
		{0, 0},
		{size.W, 0},
		{0, size.H},
		{size.W, size.H},
	}
	var maxDist float64
	for _, c := range corners {
		if d := ToWorld(v, c, size).Len(); d > maxDist {
			maxDist = d
		}
	}
	return maxDist
}

// ApplyFocalZoom multiplies the scale by factor while keeping the world
// point under focal fixed on screen. Rotation is passed through unchanged.
func ApplyFocalZoom(v Viewport, focal Point, factor float64, size Size) Viewport {
	world := ToWorld(v, focal, size)

	next := v
	next.Scale = v.Scale * factor

	// The residual is measured on screen, so it is rotated back into world
	// axes before it is added to the offset.
	moved := ToScreen(next, world, size)
	return ApplyPan(next, focal.X-moved.X, focal.Y-moved.Y)
}

// ApplyPan shifts the offset by a screen-space delta, undoing rotation first.
func ApplyPan(v Viewport, dx, dy float64) Viewport {
	c := math.Cos(-v.Rotation)
	s := math.Sin(-v.Rotation)
	rx := dx*c - dy*s
	ry := dx*s + dy*c

	v.OffsetX += rx / v.Scale
	v.OffsetY += ry / v.Scale
	return v
}

// ClampViewport enforces the scale and rotation bounds.
func ClampViewport(v Viewport) Viewport {
	v.Scale = Clamp(v.Scale, MinScale, MaxScale)
	v.Rotation = Clamp(v.Rotation, -MaxRotation, MaxRotation)
	return v
}
