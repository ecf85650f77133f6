package engine

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/gogpu/spiral"
	"github.com/gogpu/spiral/internal/enginetest"
	"github.com/gogpu/spiral/internal/geom"
	"github.com/gogpu/spiral/internal/particle"
)

type recorder struct {
	frames  []Frame
	resizes int
	dpr     float64
	err     error
}

func (r *recorder) Render(f Frame) error {
	r.frames = append(r.frames, f)
	return r.err
}

func (r *recorder) Resize(_, _ int, dpr float64) {
	r.resizes++
	r.dpr = dpr
}

// memStore is an EffectsStore that counts saves.
type memStore struct {
	cfg   spiral.EffectsConfig
	saves int
}

func (m *memStore) Load() spiral.EffectsConfig  { return m.cfg }
func (m *memStore) Save(c spiral.EffectsConfig) { m.cfg = c; m.saves++ }

func newMounted(t *testing.T, opts ...spiral.Option) (*Core, *enginetest.Container, *recorder) {
	t.Helper()
	opts = append([]spiral.Option{spiral.WithRand(rand.New(rand.NewPCG(1, 1)))}, opts...)
	c := NewCore(spiral.NewConfig(opts...), Params{ParticleRadius: 1.5, ParticleSpread: 2})
	ct := enginetest.New(800, 600)
	r := &recorder{}
	if err := c.Attach(ct, r); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	t.Cleanup(c.Detach)
	return c, ct, r
}

func TestInitialViewport(t *testing.T) {
	c := NewCore(spiral.NewConfig(), Params{})
	v := c.Viewport()
	if v.Scale != 25 || v.OffsetX != 0 || v.OffsetY != 0 || v.Rotation != 0 {
		t.Errorf("initial viewport = %+v", v)
	}
	if c.A() != 1 {
		t.Errorf("initial a = %v", c.A())
	}
}

func TestSetTilesSorted(t *testing.T) {
	c := NewCore(spiral.NewConfig(), Params{})
	c.SetTiles([]spiral.Tile{
		{ID: "A", Priority: spiral.Ptr(1.0)},
		{ID: "B", Priority: spiral.Ptr(3.0)},
		{ID: "C", Priority: spiral.Ptr(3.0)},
		{ID: "D"},
	})
	var got []string
	for _, tl := range c.Tiles() {
		got = append(got, tl.ID)
	}
	want := []string{"B", "C", "A", "D"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestFocusNotifications(t *testing.T) {
	c := NewCore(spiral.NewConfig(), Params{})
	c.SetTiles(spiral.SpiralLayout(3, 100))

	var calls []string
	c.OnFocus(func(id string) { calls = append(calls, "first:"+id) })
	c.OnFocus(func(id string) { calls = append(calls, "second:"+id) })
	c.OnFocus(nil)

	c.FocusTile("tile-1")
	c.FocusTile("tile-1") // unchanged, no callbacks
	c.FocusTile("missing")
	c.ClearFocus()
	c.ClearFocus()

	want := []string{"first:tile-1", "second:tile-1", "first:", "second:"}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("calls[%d] = %q, want %q", i, calls[i], want[i])
		}
	}
}

func TestFocusTileCenters(t *testing.T) {
	c := NewCore(spiral.NewConfig(), Params{})
	tile := spiral.Tile{ID: "x", BBox: spiral.PolarBBox{RMin: 100, RMax: 150, TMin: 0, TMax: math.Pi / 2}}
	c.SetTiles([]spiral.Tile{tile})

	before := c.Viewport()
	c.FocusTile("missing")
	if c.Viewport() != before {
		t.Fatal("unknown ID changed the viewport")
	}

	c.FocusTile("x")
	v := c.Viewport()
	center := tile.BBox.Centroid()
	if math.Abs(v.OffsetX+center.X) > 1e-9 || math.Abs(v.OffsetY+center.Y) > 1e-9 {
		t.Errorf("offset = (%v, %v), want -(%v, %v)", v.OffsetX, v.OffsetY, center.X, center.Y)
	}
	if v.Scale != 8 {
		t.Errorf("scale = %v, want 200/25 = 8", v.Scale)
	}
	if c.Focused() != "x" {
		t.Errorf("Focused = %q", c.Focused())
	}
}

func TestFocusTileClamps(t *testing.T) {
	c := NewCore(spiral.NewConfig(), Params{})
	c.SetTiles([]spiral.Tile{{ID: "thin", BBox: spiral.PolarBBox{RMin: 10, RMax: 10}}})
	c.FocusTile("thin")
	if s := c.Viewport().Scale; s != geom.MaxScale {
		t.Errorf("scale = %v, want %v", s, geom.MaxScale)
	}
}

func TestSetViewportNormalizes(t *testing.T) {
	c := NewCore(spiral.NewConfig(), Params{})
	c.SetViewport(spiral.ViewportPatch{Scale: spiral.Ptr(25.0), Rotation: spiral.Ptr(1.0)})
	v := c.Viewport()
	if v.Scale < 1 || v.Scale >= geom.Phi {
		t.Errorf("scale = %v, want in [1, phi)", v.Scale)
	}
	if v.Rotation != geom.MaxRotation {
		t.Errorf("rotation = %v, want %v", v.Rotation, geom.MaxRotation)
	}
	// The product scale*a is what reaches the screen.
	if got := v.Scale * c.A(); math.Abs(got-25) > 1e-9 {
		t.Errorf("scale*a = %v, want 25", got)
	}
}

func TestSetViewportExtremes(t *testing.T) {
	c := NewCore(spiral.NewConfig(), Params{})
	for _, s := range []float64{1e300, -5, 0, 1e-300, math.Inf(1)} {
		c.SetViewport(spiral.ViewportPatch{Scale: spiral.Ptr(s), Rotation: spiral.Ptr(-s)})
		v := c.Viewport()
		if v.Scale < geom.MinScale || v.Scale > geom.MaxScale {
			t.Errorf("SetViewport(%v): scale = %v out of range", s, v.Scale)
		}
		if math.Abs(v.Rotation) > geom.MaxRotation {
			t.Errorf("SetViewport(%v): rotation = %v out of range", s, v.Rotation)
		}
	}
}

func TestSetViewportNonFinite(t *testing.T) {
	c, _, _ := newMounted(t)
	start := c.Viewport()
	nan := math.NaN()
	c.SetViewport(spiral.ViewportPatch{Scale: &nan, Rotation: &nan, OffsetX: &nan})
	if v := c.Viewport(); v != start {
		t.Errorf("NaN patch changed viewport: %+v", v)
	}

	c.HandleWheel(100, 0, 0)
	v := c.Viewport()
	if math.IsNaN(v.Scale) || v.Scale < geom.MinScale || v.Scale > geom.MaxScale {
		t.Errorf("scale = %v after wheel", v.Scale)
	}
	if math.IsNaN(v.Rotation) || math.Abs(v.Rotation) > geom.MaxRotation {
		t.Errorf("rotation = %v after wheel", v.Rotation)
	}

	for _, d := range []float64{nan, math.Inf(-1)} {
		before := c.Viewport()
		c.HandleWheel(d, 10, 10)
		if c.Viewport() != before {
			t.Errorf("HandleWheel(%v) changed viewport to %+v", d, c.Viewport())
		}
	}
}

func TestHandleWheelUnmountedIsNoop(t *testing.T) {
	c := NewCore(spiral.NewConfig(), Params{})
	before := c.Viewport()
	c.HandleWheel(-100, 0, 0)
	if c.Viewport() != before {
		t.Error("wheel changed an unmounted engine")
	}
}

func TestHandleWheel(t *testing.T) {
	c, _, _ := newMounted(t, spiral.WithEffectsCache(&memStore{cfg: spiral.DefaultEffects()}))
	a0, s0 := c.A(), c.Viewport().Scale

	c.HandleWheel(-100, 12, 34)
	v := c.Viewport()
	if v.OffsetX != 0 || v.OffsetY != 0 {
		t.Errorf("offset = (%v, %v), want 0", v.OffsetX, v.OffsetY)
	}
	if math.Abs(v.Rotation-(-100*geom.RotationSensitivity)) > 1e-12 {
		t.Errorf("rotation = %v", v.Rotation)
	}
	want := s0 * a0 * math.Exp(100*geom.ZoomSensitivity)
	if got := v.Scale * c.A(); math.Abs(got-want)/want > 1e-9 {
		t.Errorf("effective scale = %v, want %v", got, want)
	}
	if v.Scale < 1 || v.Scale >= geom.Phi {
		t.Errorf("scale %v not normalized", v.Scale)
	}
	if n := c.Particles().Len(); n != 8 {
		t.Errorf("particles = %d, want 8", n)
	}

	c.HandleWheel(35, 0, 0)
	if n := c.Particles().Len(); n != 11 {
		t.Errorf("particles = %d, want 11", n)
	}
}

func TestHandleWheelClampsUnderAnySequence(t *testing.T) {
	c, _, _ := newMounted(t)
	rng := rand.New(rand.NewPCG(7, 7))
	for i := 0; i < 2000; i++ {
		d := (rng.Float64()*2 - 1) * 5000
		c.HandleWheel(d, 0, 0)
		v := c.Viewport()
		if v.Scale < geom.MinScale || v.Scale > geom.MaxScale || math.Abs(v.Rotation) > geom.MaxRotation {
			t.Fatalf("step %d: viewport %+v out of range", i, v)
		}
	}
}

func TestHandlePanIsNoop(t *testing.T) {
	c, _, _ := newMounted(t)
	before := c.Viewport()
	c.HandlePan(50, -20)
	if c.Viewport() != before {
		t.Error("HandlePan changed the viewport")
	}
}

func TestReducedMotionSuppressesEffects(t *testing.T) {
	store := &memStore{cfg: spiral.DefaultEffects()}
	c := NewCore(spiral.NewConfig(spiral.WithEffectsCache(store)), Params{})
	ct := enginetest.New(200, 200)
	ct.Reduce = true
	if err := c.Attach(ct, &recorder{}); err != nil {
		t.Fatal(err)
	}
	defer c.Detach()

	for _, e := range []spiral.Effect{spiral.EffectParticles, spiral.EffectPulse, spiral.EffectGlow, spiral.EffectFeedbackPaths} {
		if c.EffectEnabled(e) {
			t.Errorf("effect %d enabled under reduced motion", e)
		}
	}
	c.HandleWheel(-200, 0, 0)
	if c.Particles().Len() != 0 {
		t.Error("particles emitted under reduced motion")
	}

	c.SetEffects(spiral.EffectsPatch{RespectReducedMotion: spiral.Ptr(false)})
	if !c.EffectEnabled(spiral.EffectPulse) {
		t.Error("pulse still suppressed after disabling respectReducedMotion")
	}
}

func TestSetEffectsPersists(t *testing.T) {
	store := &memStore{cfg: spiral.DefaultEffects()}
	store.cfg.GlowIntensity = 0.9
	c := NewCore(spiral.NewConfig(spiral.WithEffectsCache(store)), Params{})
	if c.Effects().GlowIntensity != 0.9 {
		t.Fatalf("effects not seeded from store: %+v", c.Effects())
	}
	c.SetEffects(spiral.EffectsPatch{EnableParticles: spiral.Ptr(false)})
	if store.saves != 1 || store.cfg.EnableParticles || store.cfg.GlowIntensity != 0.9 {
		t.Errorf("store = %+v after %d saves", store.cfg, store.saves)
	}
}

func TestFrameLoop(t *testing.T) {
	c, ct, r := newMounted(t)
	ct.Step(100 * time.Millisecond)
	ct.Step(150 * time.Millisecond)
	if len(r.frames) != 2 {
		t.Fatalf("frames = %d, want 2", len(r.frames))
	}
	if r.frames[0].DT != 0 {
		t.Errorf("first dt = %v, want 0", r.frames[0].DT)
	}
	if math.Abs(r.frames[1].DT-0.05) > 1e-12 {
		t.Errorf("second dt = %v, want 0.05", r.frames[1].DT)
	}
	if r.frames[1].Size != (geom.Size{W: 800, H: 600}) {
		t.Errorf("size = %+v", r.frames[1].Size)
	}

	ct.Resize(400, 300)
	if r.resizes != 1 || c.Size() != (geom.Size{W: 400, H: 300}) {
		t.Errorf("resize not applied: %d, %+v", r.resizes, c.Size())
	}
}

func TestResizePicksUpRatio(t *testing.T) {
	c, ct, r := newMounted(t)
	if c.DPR() != 1 {
		t.Fatalf("mounted dpr = %v", c.DPR())
	}

	ct.Ratio = 2
	ct.Resize(800, 600)
	if c.DPR() != 2 || r.dpr != 2 {
		t.Errorf("dpr after resize: core %v, renderer %v, want 2", c.DPR(), r.dpr)
	}
	ct.Step(0)
	if got := r.frames[len(r.frames)-1].DPR; got != 2 {
		t.Errorf("frame dpr = %v, want 2", got)
	}

	// A bogus ratio keeps the last good one.
	ct.Ratio = 0
	ct.Resize(640, 480)
	if c.DPR() != 2 || r.dpr != 2 {
		t.Errorf("dpr after zero ratio: core %v, renderer %v", c.DPR(), r.dpr)
	}
}

func TestRenderErrorKeepsLooping(t *testing.T) {
	_, ct, r := newMounted(t)
	r.err = errors.New("device lost")
	ct.Step(0)
	ct.Step(time.Millisecond)
	if len(r.frames) != 2 {
		t.Errorf("frames = %d, want 2", len(r.frames))
	}
}

func TestDetachIdempotent(t *testing.T) {
	c, ct, r := newMounted(t)
	c.Detach()
	c.Detach()
	if ct.Manual.Pending() != 0 {
		t.Errorf("pending frames = %d after Detach", ct.Manual.Pending())
	}
	if ct.Listeners() != 0 {
		t.Errorf("resize listeners = %d after Detach", ct.Listeners())
	}
	ct.Step(time.Second)
	if len(r.frames) != 0 {
		t.Error("rendered after Detach")
	}
	if c.Mounted() {
		t.Error("Mounted after Detach")
	}
}

func TestParticlesExpire(t *testing.T) {
	c, ct, _ := newMounted(t)
	c.EmitParticles(20, 400, 300)
	now := time.Duration(0)
	for i := 0; i < 120; i++ {
		ct.Step(now)
		now += time.Second / 60
	}
	if n := c.Particles().Len(); n != 0 {
		t.Errorf("particles alive after 2s: %d", n)
	}
}

func TestNorms(t *testing.T) {
	for _, n := range []Norm{NewLinearNorm(1, geom.Phi), NewLogNorm(1, geom.Phi)} {
		s := n.Apply(30)
		if math.Abs(s*n.A()-30) > 1e-9 {
			t.Errorf("%T: scale*a = %v, want 30", n, s*n.A())
		}
		if n.Period() != geom.Phi {
			t.Errorf("%T: period = %v", n, n.Period())
		}
	}
}

var _ particle.Source = rand.New(rand.NewPCG(0, 0))
