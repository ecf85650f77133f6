package spiral

import (
	"math"

	"github.com/gogpu/spiral/internal/geom"
)

// overlayMargin is how far off screen a tile label may sit and still be laid out.
const overlayMargin = 200

// TilePlacement is where a host should draw a tile's label overlay.
type TilePlacement struct {
	ID string
	// Screen is the tile centroid in logical pixels.
	Screen Point
	// Scale grows with zoom up to 1.5.
	Scale float64
	// Opacity is 0 off screen and between 0.6 and 1 on screen, brightest
	// at the canvas center.
	Opacity float64
	// Interactive reports whether the overlay should accept clicks.
	Interactive bool
	// Focused mirrors the engine's focused tile.
	Focused bool
}

// PlaceTiles lays out label overlays for tiles under v on a w x h canvas.
// Hosts call it each frame to position their own label widgets.
func PlaceTiles(v Viewport, tiles []Tile, w, h float64, focused string) []TilePlacement {
	size := geom.Size{W: w, H: h}
	tileScale := math.Min(1.5, 0.8+v.Scale/80)
	maxDist := math.Hypot(w, h) / 2

	out := make([]TilePlacement, 0, len(tiles))
	for _, t := range tiles {
		s := geom.ToScreen(v, t.BBox.Centroid(), size)
		p := TilePlacement{ID: t.ID, Screen: s, Scale: tileScale, Focused: t.ID != "" && t.ID == focused}
		if geom.OnScreen(s, size, overlayMargin) {
			proximity := 1.0
			if maxDist > 0 {
				d := math.Hypot(s.X-w/2, s.Y-h/2)
				proximity = 1 - math.Min(1, d/maxDist)
			}
			p.Opacity = proximity*0.4 + 0.6
			p.Interactive = true
		}
		out = append(out, p)
	}
	return out
}
