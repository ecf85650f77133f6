package input

import (
	"math"
	"testing"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/spiral"
)

type zoomCall struct{ dy, x, y float64 }

type recorder struct {
	zooms []zoomCall
	keys  []gpucontext.Key
}

func (r *recorder) zoom(dy, x, y float64) { r.zooms = append(r.zooms, zoomCall{dy, x, y}) }
func (r *recorder) key(k gpucontext.Key, _ gpucontext.Modifiers) {
	r.keys = append(r.keys, k)
}

type size struct{ w, h int }

func (s size) Size() (int, int) { return s.w, s.h }

func newUnifier() (*Unifier, *recorder) {
	r := &recorder{}
	return New(r.zoom, r.key, size{800, 600}), r
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestScroll(t *testing.T) {
	u, r := newUnifier()
	u.HandleScroll(gpucontext.ScrollEvent{X: 10, Y: 20, DeltaY: 30})
	u.WheelScale = 2
	u.OnScroll(0, -5)

	want := []zoomCall{{30, 10, 20}, {-10, 400, 300}}
	if len(r.zooms) != len(want) {
		t.Fatalf("zooms = %v", r.zooms)
	}
	for i, w := range want {
		if r.zooms[i] != w {
			t.Errorf("zoom %d = %v, want %v", i, r.zooms[i], w)
		}
	}
}

func touchEv(typ gpucontext.PointerEventType, id int, x, y float64) gpucontext.PointerEvent {
	return gpucontext.PointerEvent{Type: typ, PointerID: id, X: x, Y: y, PointerType: gpucontext.PointerTypeTouch}
}

func TestPinch(t *testing.T) {
	u, r := newUnifier()
	u.HandlePointer(touchEv(gpucontext.PointerDown, 1, 100, 100))
	u.HandlePointer(touchEv(gpucontext.PointerMove, 1, 100, 100))
	if len(r.zooms) != 0 {
		t.Fatalf("single touch zoomed: %v", r.zooms)
	}
	u.HandlePointer(touchEv(gpucontext.PointerDown, 2, 200, 100)) // dist 100

	// Spread to 200: deltaY = (1 - 2) * 100 = -100, zooming in.
	u.HandlePointer(touchEv(gpucontext.PointerMove, 2, 300, 100))
	if len(r.zooms) != 1 {
		t.Fatalf("zooms = %v", r.zooms)
	}
	z := r.zooms[0]
	if !near(z.dy, -100) || !near(z.x, 200) || !near(z.y, 100) {
		t.Errorf("pinch out = %+v, want {-100 200 100}", z)
	}

	// Pinch back to 100: deltaY = (1 - 0.5) * 100 = 50.
	u.HandlePointer(touchEv(gpucontext.PointerMove, 2, 200, 100))
	if !near(r.zooms[1].dy, 50) {
		t.Errorf("pinch in dy = %v, want 50", r.zooms[1].dy)
	}

	u.HandlePointer(touchEv(gpucontext.PointerUp, 1, 0, 0))
	u.HandlePointer(touchEv(gpucontext.PointerMove, 2, 500, 100))
	if len(r.zooms) != 2 {
		t.Errorf("zoomed with one finger left: %v", r.zooms)
	}
	u.HandlePointer(touchEv(gpucontext.PointerCancel, 2, 0, 0))
	if u.Touches() != 0 || u.prevDist != 0 {
		t.Errorf("touches = %d, prevDist = %v after all up", u.Touches(), u.prevDist)
	}
}

func TestMouseDoesNotPan(t *testing.T) {
	u, r := newUnifier()
	for _, typ := range []gpucontext.PointerEventType{gpucontext.PointerDown, gpucontext.PointerMove, gpucontext.PointerUp} {
		u.HandlePointer(gpucontext.PointerEvent{Type: typ, X: 5, Y: 5, PointerType: gpucontext.PointerTypeMouse})
	}
	if len(r.zooms) != 0 || u.Touches() != 0 {
		t.Errorf("mouse produced zooms %v, touches %d", r.zooms, u.Touches())
	}
}

func TestKeys(t *testing.T) {
	tests := []struct {
		key    gpucontext.Key
		zoom   bool
		deltaY float64
	}{
		{gpucontext.KeyEqual, true, -KeyZoomStep},
		{gpucontext.KeyNumpadAdd, true, -KeyZoomStep},
		{gpucontext.KeyMinus, true, KeyZoomStep},
		{gpucontext.KeyNumpadSubtract, true, KeyZoomStep},
		{gpucontext.KeyA, false, 0},
	}
	for _, tt := range tests {
		u, r := newUnifier()
		u.HandleKey(tt.key, 0)
		if len(r.keys) != 1 || r.keys[0] != tt.key {
			t.Errorf("key %v not passed through: %v", tt.key, r.keys)
		}
		if !tt.zoom {
			if len(r.zooms) != 0 {
				t.Errorf("key %v zoomed", tt.key)
			}
			continue
		}
		if len(r.zooms) != 1 || r.zooms[0] != (zoomCall{tt.deltaY, 400, 300}) {
			t.Errorf("key %v zooms = %v", tt.key, r.zooms)
		}
	}
}

type fakeSource struct {
	gpucontext.NullEventSource
	scroll  func(float64, float64)
	scrollE func(gpucontext.ScrollEvent)
	pointer func(gpucontext.PointerEvent)
	key     func(gpucontext.Key, gpucontext.Modifiers)
}

func (s *fakeSource) OnScroll(fn func(dx, dy float64))                         { s.scroll = fn }
func (s *fakeSource) OnKeyPress(fn func(gpucontext.Key, gpucontext.Modifiers)) { s.key = fn }

type richSource struct {
	fakeSource
}

func (s *richSource) OnScrollEvent(fn func(gpucontext.ScrollEvent)) { s.scrollE = fn }
func (s *richSource) OnPointer(fn func(gpucontext.PointerEvent))    { s.pointer = fn }

func TestAttachDetach(t *testing.T) {
	u, r := newUnifier()
	src := &fakeSource{}
	u.Attach(src)
	if src.scroll == nil || src.key == nil {
		t.Fatal("Attach did not register scroll and key handlers")
	}
	src.scroll(0, 10)
	src.key(gpucontext.KeyB, 0)
	if len(r.zooms) != 1 || len(r.keys) != 1 {
		t.Fatalf("zooms %v keys %v", r.zooms, r.keys)
	}

	u.Detach()
	u.Detach()
	src.scroll(0, 10)
	src.key(gpucontext.KeyB, 0)
	if len(r.zooms) != 1 || len(r.keys) != 1 {
		t.Errorf("callbacks fired after Detach: zooms %v keys %v", r.zooms, r.keys)
	}

	// Reattaching revives only the new registration.
	old := src.scroll
	src2 := &fakeSource{}
	u.Attach(src2)
	old(0, 10)
	if len(r.zooms) != 1 {
		t.Error("stale callback fired after reattach")
	}
	src2.scroll(0, 10)
	if len(r.zooms) != 2 {
		t.Error("new callback did not fire")
	}
}

func TestAttachPrefersRichSources(t *testing.T) {
	u, r := newUnifier()
	src := &richSource{}
	u.Attach(src)
	if src.scroll != nil {
		t.Error("plain OnScroll registered alongside OnScrollEvent")
	}
	if src.scrollE == nil || src.pointer == nil {
		t.Fatal("rich handlers not registered")
	}
	src.scrollE(gpucontext.ScrollEvent{X: 1, Y: 2, DeltaY: 3})
	src.pointer(touchEv(gpucontext.PointerDown, 7, 0, 0))
	if len(r.zooms) != 1 || u.Touches() != 1 {
		t.Errorf("zooms %v touches %d", r.zooms, u.Touches())
	}
}

type fakeEngine struct {
	spiral.Engine // panics on unexpected calls
	patches       []spiral.ViewportPatch
	cleared       int
	debug         []bool
}

func (e *fakeEngine) SetViewport(p spiral.ViewportPatch) { e.patches = append(e.patches, p) }
func (e *fakeEngine) ClearFocus()                        { e.cleared++ }
func (e *fakeEngine) SetDebug(on bool)                   { e.debug = append(e.debug, on) }

func TestBindEngineKeys(t *testing.T) {
	e := &fakeEngine{}
	menus := 0
	fn := BindEngineKeys(e, Bindings{Menu: func() { menus++ }})

	fn(gpucontext.KeyHome, 0)
	if len(e.patches) != 1 || e.cleared != 1 {
		t.Fatalf("Home: patches %d cleared %d", len(e.patches), e.cleared)
	}
	v := e.patches[0].Apply(spiral.Viewport{Scale: 3, OffsetX: 1, OffsetY: 2, Rotation: 0.5})
	if v != spiral.DefaultViewport() {
		t.Errorf("Home viewport = %+v, want %+v", v, spiral.DefaultViewport())
	}
	fn(gpucontext.KeyH, 0)
	fn(gpucontext.KeyEscape, 0)
	if len(e.patches) != 2 || e.cleared != 3 {
		t.Errorf("H/Escape: patches %d cleared %d", len(e.patches), e.cleared)
	}
	fn(gpucontext.KeySpace, 0)
	fn(gpucontext.KeyM, 0)
	if menus != 2 {
		t.Errorf("menu calls = %d, want 2", menus)
	}
	fn(gpucontext.KeyF3, 0)
	fn(gpucontext.KeyF3, 0)
	if len(e.debug) != 2 || !e.debug[0] || e.debug[1] {
		t.Errorf("debug toggles = %v", e.debug)
	}
	fn(gpucontext.KeyQ, 0) // unbound
}

func TestBindEngineKeysNilMenu(t *testing.T) {
	fn := BindEngineKeys(&fakeEngine{}, Bindings{})
	fn(gpucontext.KeySpace, 0)
}
