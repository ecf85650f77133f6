package spiral

import (
	"fmt"
	"math"

	"github.com/gogpu/spiral/internal/geom"
)

// layoutPhi is the rounded golden ratio used by the placement helpers.
const layoutPhi = 1.618

// PolarBBoxForArc returns the box of arc arcIndex when every full turn is
// split into subdivisions arcs. Each completed turn grows the radius band
// by the golden ratio. Non-positive arguments fall back to 5 subdivisions
// and a base radius of 100.
func PolarBBoxForArc(arcIndex, subdivisions int, baseRadius float64) PolarBBox {
	if subdivisions <= 0 {
		subdivisions = 5
	}
	if baseRadius <= 0 {
		baseRadius = 100
	}
	span := 2 * math.Pi / float64(subdivisions)
	tMin := float64(arcIndex) * span

	turn := math.Floor(float64(arcIndex) / float64(subdivisions))
	rMin := baseRadius * math.Pow(layoutPhi, turn)
	return PolarBBox{
		RMin: rMin,
		RMax: rMin * layoutPhi,
		TMin: tMin,
		TMax: tMin + span,
	}
}

// SpiralLayout generates count placeholder tiles spaced 60 degrees apart
// with radii growing by sqrt(phi) per tile. Earlier tiles get higher
// priority.
func SpiralLayout(count int, baseRadius float64) []Tile {
	if baseRadius <= 0 {
		baseRadius = 100
	}
	tiles := make([]Tile, 0, max(count, 0))
	for i := 0; i < count; i++ {
		theta := float64(i) * math.Pi / 3
		rMin := baseRadius * math.Pow(layoutPhi, float64(i)*0.5)
		tiles = append(tiles, Tile{
			ID:      fmt.Sprintf("tile-%d", i),
			Title:   fmt.Sprintf("Section %d", i+1),
			Route:   fmt.Sprintf("/section-%d", i+1),
			Summary: fmt.Sprintf("Content for section %d", i+1),
			BBox: PolarBBox{
				RMin: rMin,
				RMax: rMin * 1.5,
				TMin: theta - math.Pi/6,
				TMax: theta + math.Pi/6,
			},
			Priority: Ptr(float64(count - i)),
		})
	}
	return tiles
}

// NormalizeAngle wraps an angle into [-pi, pi].
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a > math.Pi {
		a -= 2 * math.Pi
	}
	if a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// Lerp interpolates linearly from a to b.
func Lerp(a, b, t float64) float64 { return a + (b-a)*t }

// SmoothStep is the cubic Hermite ease of t clamped to [0, 1].
func SmoothStep(t float64) float64 {
	x := geom.Clamp(t, 0, 1)
	return x * x * (3 - 2*x)
}
