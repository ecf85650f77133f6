package spiral

import (
	"math"
	"testing"
)

func TestPolarBBoxForArc(t *testing.T) {
	tests := []struct {
		arc        int
		wantRMin   float64
		wantTMinPi float64 // in units of pi
	}{
		{0, 100, 0},
		{1, 100, 0.4},
		{4, 100, 1.6},
		{5, 161.8, 2},
		{10, 100 * 1.618 * 1.618, 4},
	}
	for _, tt := range tests {
		b := PolarBBoxForArc(tt.arc, 5, 100)
		if math.Abs(b.RMin-tt.wantRMin) > 1e-9 {
			t.Errorf("arc %d: RMin = %v, want %v", tt.arc, b.RMin, tt.wantRMin)
		}
		if math.Abs(b.RMax-b.RMin*1.618) > 1e-9 {
			t.Errorf("arc %d: RMax = %v, want RMin*1.618", tt.arc, b.RMax)
		}
		if math.Abs(b.TMin-tt.wantTMinPi*math.Pi) > 1e-9 {
			t.Errorf("arc %d: TMin = %v, want %v*pi", tt.arc, b.TMin, tt.wantTMinPi)
		}
		if math.Abs(b.TMax-b.TMin-2*math.Pi/5) > 1e-9 {
			t.Errorf("arc %d: span = %v", tt.arc, b.TMax-b.TMin)
		}
	}
	if d := PolarBBoxForArc(0, 0, 0); d.RMin != 100 {
		t.Errorf("defaults: RMin = %v, want 100", d.RMin)
	}
}

func TestSpiralLayout(t *testing.T) {
	tiles := SpiralLayout(4, 100)
	if len(tiles) != 4 {
		t.Fatalf("len = %d, want 4", len(tiles))
	}
	for i, tl := range tiles {
		theta := float64(i) * math.Pi / 3
		if math.Abs(tl.BBox.CenterTheta()-theta) > 1e-9 {
			t.Errorf("tile %d: center theta = %v, want %v", i, tl.BBox.CenterTheta(), theta)
		}
		if math.Abs(tl.BBox.RMax/tl.BBox.RMin-1.5) > 1e-9 {
			t.Errorf("tile %d: RMax/RMin = %v", i, tl.BBox.RMax/tl.BBox.RMin)
		}
		if tl.PriorityValue() != float64(4-i) {
			t.Errorf("tile %d: priority = %v", i, tl.PriorityValue())
		}
	}
	if tiles[0].ID != "tile-0" || tiles[3].Title != "Section 4" || tiles[3].Route != "/section-4" {
		t.Errorf("naming: %+v", tiles[3])
	}
	if math.Abs(tiles[2].BBox.RMin-100*1.618) > 1e-9 {
		t.Errorf("tile 2 RMin = %v, want %v", tiles[2].BBox.RMin, 100*1.618)
	}
	if SpiralLayout(-1, 100) == nil || len(SpiralLayout(0, 0)) != 0 {
		t.Error("empty layouts")
	}
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, 0},
		{math.Pi / 2, math.Pi / 2},
		{3 * math.Pi / 2, -math.Pi / 2},
		{-3 * math.Pi / 2, math.Pi / 2},
		{4*math.Pi + 1, 1},
	}
	for _, tt := range tests {
		if got := NormalizeAngle(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("NormalizeAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLerpSmoothStep(t *testing.T) {
	if Lerp(2, 4, 0.25) != 2.5 {
		t.Errorf("Lerp = %v", Lerp(2, 4, 0.25))
	}
	tests := []struct{ in, want float64 }{
		{-1, 0}, {0, 0}, {0.5, 0.5}, {1, 1}, {2, 1},
	}
	for _, tt := range tests {
		if got := SmoothStep(tt.in); got != tt.want {
			t.Errorf("SmoothStep(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
