// Package phase maps spiral radii to the five growth-phase color bands.
//
// Band bounds are expressed in a-normalized radius units, so a band
// assignment survives any normalization pass that multiplies both the
// radius and a by the same power of the period.
package phase

import (
	"math"

	"github.com/gogpu/gg"
)

// Definition is one contiguous radius band.
type Definition struct {
	ID    string
	Label string
	RMin  float64
	RMax  float64
	Color string
	RGB   gg.RGBA
}

// Contains reports whether the normalized radius falls in [RMin, RMax).
func (d Definition) Contains(rNorm float64) bool {
	return rNorm >= d.RMin && rNorm < d.RMax
}

// Fallback is the color used for any radius outside every band.
const Fallback = "#fbbf24"

var bands = []Definition{
	{ID: "overview", Label: "Overview", RMin: 0, RMax: 50, Color: "#60a5fa", RGB: gg.Hex("#60a5fa")},
	{ID: "discovery", Label: "Discovery", RMin: 50, RMax: 120, Color: "#34d399", RGB: gg.Hex("#34d399")},
	{ID: "strategy", Label: "Strategy", RMin: 120, RMax: 220, Color: "#fb923c", RGB: gg.Hex("#fb923c")},
	{ID: "execution", Label: "Execution", RMin: 220, RMax: 360, Color: "#a78bfa", RGB: gg.Hex("#a78bfa")},
	{ID: "scale", Label: "Scale", RMin: 360, RMax: 560, Color: Fallback, RGB: gg.Hex(Fallback)},
}

// Bands returns a copy of the ordered band table.
func Bands() []Definition {
	out := make([]Definition, len(bands))
	copy(out, bands)
	return out
}

// Normalized returns radius / max(a, 1e-8).
func Normalized(radius, a float64) float64 {
	return radius / math.Max(a, 1e-8)
}

// Index returns the band index for a world radius under normalization a.
// Radii outside every band resolve to the last band.
func Index(radius, a float64) int {
	rn := Normalized(radius, a)
	for i := range bands {
		if bands[i].Contains(rn) {
			return i
		}
	}
	return len(bands) - 1
}

// For returns the band for a world radius under normalization a.
func For(radius, a float64) Definition {
	return bands[Index(radius, a)]
}

// Color returns the band hex color for a world radius under normalization a.
func Color(radius, a float64) string {
	return bands[Index(radius, a)].Color
}

// RGB returns the band color as gg.RGBA.
func RGB(radius, a float64) gg.RGBA {
	return bands[Index(radius, a)].RGB
}

// BandRGB returns the color of band i, or the fallback color when i is out
// of range.
func BandRGB(i int) gg.RGBA {
	if i < 0 || i >= len(bands) {
		return gg.Hex(Fallback)
	}
	return bands[i].RGB
}

// WithAlpha returns c with its alpha replaced, clamped to [0, 1].
func WithAlpha(c gg.RGBA, alpha float64) gg.RGBA {
	c.A = math.Min(1, math.Max(0, alpha))
	return c
}

// ParseHex parses a #rrggbb or #rgb color. Malformed input yields the
// fallback band color.
func ParseHex(hex string) gg.RGBA {
	if !validHex(hex) {
		return gg.Hex(Fallback)
	}
	return gg.Hex(hex)
}

func validHex(s string) bool {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	if len(s) != 3 && len(s) != 6 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// zoomBase is the scale at which the overview phase is centered.
const zoomBase = 25

// ZoomPhase classifies a viewport scale into a band by counting how many
// golden-ratio steps it lies above the base scale of 25.
func ZoomPhase(scale float64) Definition {
	if scale <= 0 {
		return bands[0]
	}
	q := math.Log(scale/zoomBase) / math.Log(1.618)
	switch {
	case q < 0.5:
		return bands[0]
	case q < 1.5:
		return bands[1]
	case q < 2.5:
		return bands[2]
	case q < 3.5:
		return bands[3]
	default:
		return bands[4]
	}
}
