package spiral

import (
	"math"
	"testing"
)

func TestSortTiles(t *testing.T) {
	in := []Tile{
		{ID: "A", Priority: Ptr(1.0)},
		{ID: "B", Priority: Ptr(3.0)},
		{ID: "C", Priority: Ptr(3.0)},
		{ID: "D"},
	}
	got := SortTiles(in)
	want := []string{"B", "C", "A", "D"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("order = %v, want %v", ids(got), want)
		}
	}
	if in[0].ID != "A" {
		t.Error("SortTiles mutated its input")
	}
}

func TestSortTilesNegativeAfterMissing(t *testing.T) {
	got := SortTiles([]Tile{{ID: "neg", Priority: Ptr(-1.0)}, {ID: "nil"}})
	if got[0].ID != "nil" {
		t.Errorf("order = %v, want nil first", ids(got))
	}
}

func ids(tiles []Tile) []string {
	out := make([]string, len(tiles))
	for i, t := range tiles {
		out[i] = t.ID
	}
	return out
}

func TestSamePriority(t *testing.T) {
	tests := []struct {
		a, b *float64
		want bool
	}{
		{nil, nil, true},
		{Ptr(0.0), nil, false},
		{Ptr(2.0), Ptr(2.0), true},
		{Ptr(2.0), Ptr(3.0), false},
	}
	for _, tt := range tests {
		if got := SamePriority(Tile{Priority: tt.a}, Tile{Priority: tt.b}); got != tt.want {
			t.Errorf("SamePriority(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestViewportPatch(t *testing.T) {
	v := Viewport{Scale: 2, OffsetX: 3, OffsetY: 4, Rotation: 0.1}
	got := ViewportPatch{Scale: Ptr(5.0)}.Apply(v)
	want := Viewport{Scale: 5, OffsetX: 3, OffsetY: 4, Rotation: 0.1}
	if got != want {
		t.Errorf("Apply = %+v, want %+v", got, want)
	}
	if got := PatchAll(want).Apply(Viewport{}); got != want {
		t.Errorf("PatchAll round trip = %+v", got)
	}

	nan, inf := math.NaN(), math.Inf(1)
	bad := ViewportPatch{Scale: &nan, OffsetX: &inf, OffsetY: &nan, Rotation: &inf}
	if got := bad.Apply(v); got != v {
		t.Errorf("non-finite patch applied: %+v", got)
	}
}

func TestPolarBBoxCentroid(t *testing.T) {
	b := PolarBBox{RMin: 100, RMax: 200, TMin: 0, TMax: math.Pi}
	c := b.Centroid()
	if math.Abs(c.X) > 1e-9 || math.Abs(c.Y-150) > 1e-9 {
		t.Errorf("Centroid = %+v, want (0, 150)", c)
	}
}

func TestPolarBBoxContains(t *testing.T) {
	plain := PolarBBox{RMin: 1, RMax: 2, TMin: 0, TMax: 1}
	wrap := PolarBBox{RMin: 1, RMax: 2, TMin: 3, TMax: 3.5} // 3.5 wraps past pi
	tests := []struct {
		name     string
		b        PolarBBox
		r, theta float64
		want     bool
	}{
		{"inside", plain, 1.5, 0.5, true},
		{"radius low", plain, 0.5, 0.5, false},
		{"radius high", plain, 2.5, 0.5, false},
		{"angle out", plain, 1.5, 2, false},
		{"full turn later", plain, 1.5, 0.5 + 2*math.Pi, true},
		{"wrap near pi", wrap, 1.5, 3.1, true},
		{"wrap past pi", wrap, 1.5, -3.0, true},
		{"wrap outside", wrap, 1.5, 0, false},
	}
	for _, tt := range tests {
		if got := tt.b.Contains(tt.r, tt.theta); got != tt.want {
			t.Errorf("%s: Contains(%v, %v) = %v, want %v", tt.name, tt.r, tt.theta, got, tt.want)
		}
	}
}

func TestEffectsPatch(t *testing.T) {
	c := EffectsPatch{EnableGlow: Ptr(false), ParticleDensity: Ptr(0.1)}.Apply(DefaultEffects())
	if c.EnableGlow || c.ParticleDensity != 0.1 {
		t.Errorf("patched = %+v", c)
	}
	if !c.EnablePulse || c.GlowIntensity != 0.4 {
		t.Errorf("untouched fields changed: %+v", c)
	}
}

func TestEffectsEnabled(t *testing.T) {
	c := DefaultEffects()
	if !c.Enabled(EffectPulse, false) {
		t.Error("pulse disabled without reduced motion")
	}
	if c.Enabled(EffectPulse, true) {
		t.Error("pulse enabled under reduced motion")
	}
	c.RespectReducedMotion = false
	if !c.Enabled(EffectParticles, true) {
		t.Error("particles suppressed although reduced motion is not respected")
	}
	c.EnableFeedbackPaths = false
	if c.Enabled(EffectFeedbackPaths, false) {
		t.Error("feedback paths enabled although flag is off")
	}
}

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig(WithPeriod(1), WithA(-3), nil)
	if cfg.Period <= 1 || cfg.A != 1 || cfg.InitialScale != DefaultScale {
		t.Errorf("NewConfig = %+v", cfg)
	}
	s := cfg.EffectsStore()
	if s.Load() != DefaultEffects() {
		t.Error("default store not seeded with DefaultEffects")
	}
}
