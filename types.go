package spiral

import (
	"cmp"
	"math"
	"slices"

	"github.com/gogpu/spiral/internal/geom"
)

// Viewport is the camera over world space: uniform scale, offset in world
// units and rotation in radians.
type Viewport = geom.Viewport

// Point is a 2D point in screen or world space.
type Point = geom.Point

// DefaultViewport is the viewport a freshly built engine starts from.
func DefaultViewport() Viewport {
	return Viewport{Scale: DefaultScale}
}

// ViewportPatch holds the viewport fields to change. Nil fields keep their
// current value.
type ViewportPatch struct {
	Scale    *float64
	OffsetX  *float64
	OffsetY  *float64
	Rotation *float64
}

// PatchAll returns a patch that sets every field from v.
func PatchAll(v Viewport) ViewportPatch {
	return ViewportPatch{
		Scale:    Ptr(v.Scale),
		OffsetX:  Ptr(v.OffsetX),
		OffsetY:  Ptr(v.OffsetY),
		Rotation: Ptr(v.Rotation),
	}
}

// Apply returns v with the patch merged in. NaN and infinite fields are
// ignored.
func (p ViewportPatch) Apply(v Viewport) Viewport {
	if finite(p.Scale) {
		v.Scale = *p.Scale
	}
	if finite(p.OffsetX) {
		v.OffsetX = *p.OffsetX
	}
	if finite(p.OffsetY) {
		v.OffsetY = *p.OffsetY
	}
	if finite(p.Rotation) {
		v.Rotation = *p.Rotation
	}
	return v
}

func finite(f *float64) bool {
	return f != nil && !math.IsNaN(*f) && !math.IsInf(*f, 0)
}

// Ptr returns a pointer to v. It is shorthand for building patches.
func Ptr[T any](v T) *T { return &v }

// PolarBBox is a tile's extent in polar world coordinates.
type PolarBBox struct {
	RMin float64 `json:"rMin" yaml:"rMin"`
	RMax float64 `json:"rMax" yaml:"rMax"`
	TMin float64 `json:"tMin" yaml:"tMin"`
	TMax float64 `json:"tMax" yaml:"tMax"`
}

// CenterRadius returns the mid radius of the box.
func (b PolarBBox) CenterRadius() float64 { return (b.RMin + b.RMax) / 2 }

// CenterTheta returns the mid angle of the box.
func (b PolarBBox) CenterTheta() float64 { return (b.TMin + b.TMax) / 2 }

// Centroid returns the world position of the box's polar center.
func (b PolarBBox) Centroid() Point {
	return geom.PolarToCartesian(b.CenterRadius(), b.CenterTheta())
}

// Contains reports whether the polar point (r, theta) lies in the box.
// Angles are compared after wrapping to [-pi, pi], so boxes that straddle
// the negative x axis work.
func (b PolarBBox) Contains(r, theta float64) bool {
	if r < b.RMin || r > b.RMax {
		return false
	}
	t := NormalizeAngle(theta)
	lo := NormalizeAngle(b.TMin)
	hi := NormalizeAngle(b.TMax)
	if lo <= hi {
		return t >= lo && t <= hi
	}
	return t >= lo || t <= hi
}

// Tile is a content anchor placed on the spiral.
type Tile struct {
	ID       string    `json:"id" yaml:"id"`
	Title    string    `json:"title" yaml:"title"`
	Route    string    `json:"route" yaml:"route"`
	Summary  string    `json:"summary,omitempty" yaml:"summary,omitempty"`
	BBox     PolarBBox `json:"bbox" yaml:"bbox"`
	Priority *float64  `json:"priority,omitempty" yaml:"priority,omitempty"`
}

// PriorityValue returns the priority, treating a missing one as 0.
func (t Tile) PriorityValue() float64 {
	if t.Priority == nil {
		return 0
	}
	return *t.Priority
}

// SamePriority reports whether both tiles carry the same raw priority:
// both missing, or both set to equal values.
func SamePriority(a, b Tile) bool {
	if a.Priority == nil || b.Priority == nil {
		return a.Priority == nil && b.Priority == nil
	}
	return *a.Priority == *b.Priority
}

// SortTiles returns a copy of tiles stably sorted by descending priority.
func SortTiles(tiles []Tile) []Tile {
	out := slices.Clone(tiles)
	slices.SortStableFunc(out, func(a, b Tile) int {
		return cmp.Compare(b.PriorityValue(), a.PriorityValue())
	})
	return out
}
