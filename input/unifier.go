// Package input folds wheel, touch and keyboard events from a gpucontext
// event source into one zoom channel plus a key pass-through.
//
// Zoom deltas use wheel units: positive zooms out. Two-finger pinches and
// the +/- keys are translated into the same units, so an engine only needs
// HandleWheel.
package input

import (
	"math"
	"slices"

	"github.com/gogpu/gpucontext"
)

// KeyZoomStep is the wheel delta synthesized by the zoom keys.
const KeyZoomStep = 50

// pinchScale converts a relative pinch into wheel units.
const pinchScale = 100

// ZoomFunc receives a zoom request in wheel units centered at (x, y).
type ZoomFunc func(deltaY, x, y float64)

// KeyFunc receives every key press.
type KeyFunc func(key gpucontext.Key, mods gpucontext.Modifiers)

// Sizer reports the size of the element receiving input.
type Sizer interface {
	Size() (w, h int)
}

// Unifier translates host events into zoom and key callbacks.
//
// Callbacks run on the goroutine that delivers the events. A Unifier is
// not safe for concurrent use.
type Unifier struct {
	// WheelScale multiplies wheel deltas. Zero means 1.
	WheelScale float64

	zoom ZoomFunc
	key  KeyFunc
	size Sizer

	touches  map[int]touch
	order    []int
	prevDist float64

	// gen invalidates callbacks registered by earlier Attach calls.
	gen    int
	active bool
}

type touch struct{ x, y float64 }

// New returns a unifier. zoom and key may be nil. size locates the element
// center for key zooms; nil centers at the origin.
func New(zoom ZoomFunc, key KeyFunc, size Sizer) *Unifier {
	return &Unifier{
		zoom:    zoom,
		key:     key,
		size:    size,
		touches: make(map[int]touch),
		active:  true,
	}
}

// Attach registers on src. Pointer and scroll events are taken from the
// richer PointerEventSource and ScrollEventSource interfaces when src
// implements them. Callbacks from a previous Attach are disabled.
func (u *Unifier) Attach(src gpucontext.EventSource) {
	u.gen++
	u.active = true
	g := u.gen
	live := func() bool { return u.active && u.gen == g }

	if ss, ok := src.(gpucontext.ScrollEventSource); ok {
		ss.OnScrollEvent(func(ev gpucontext.ScrollEvent) {
			if live() {
				u.HandleScroll(ev)
			}
		})
	} else {
		src.OnScroll(func(dx, dy float64) {
			if live() {
				u.OnScroll(dx, dy)
			}
		})
	}
	if ps, ok := src.(gpucontext.PointerEventSource); ok {
		ps.OnPointer(func(ev gpucontext.PointerEvent) {
			if live() {
				u.HandlePointer(ev)
			}
		})
	}
	src.OnKeyPress(func(k gpucontext.Key, m gpucontext.Modifiers) {
		if live() {
			u.HandleKey(k, m)
		}
	})
	src.OnMousePress(func(b gpucontext.MouseButton, x, y float64) {
		if live() {
			u.mouseDown(b, x, y)
		}
	})
	src.OnMouseMove(func(x, y float64) {
		if live() {
			u.mouseMove(x, y)
		}
	})
	src.OnMouseRelease(func(b gpucontext.MouseButton, x, y float64) {
		if live() {
			u.mouseUp(b, x, y)
		}
	})
}

// Detach disables every callback registered by Attach and drops touch
// state. It is idempotent.
func (u *Unifier) Detach() {
	u.active = false
	clear(u.touches)
	u.order = u.order[:0]
	u.prevDist = 0
}

// Active reports whether events are being delivered.
func (u *Unifier) Active() bool { return u.active }

func (u *Unifier) emit(deltaY, x, y float64) {
	if u.zoom != nil {
		u.zoom(deltaY, x, y)
	}
}

func (u *Unifier) wheelScale() float64 {
	if u.WheelScale == 0 {
		return 1
	}
	return u.WheelScale
}

// HandleScroll forwards a positioned wheel event to the zoom channel.
func (u *Unifier) HandleScroll(ev gpucontext.ScrollEvent) {
	u.emit(ev.DeltaY*u.wheelScale(), ev.X, ev.Y)
}

// OnScroll forwards an unpositioned wheel event, centered on the element.
func (u *Unifier) OnScroll(_, dy float64) {
	x, y := u.center()
	u.emit(dy*u.wheelScale(), x, y)
}

// HandlePointer tracks touches for two-finger pinch zoom. Mouse pointers
// are ignored.
func (u *Unifier) HandlePointer(ev gpucontext.PointerEvent) {
	if ev.PointerType != gpucontext.PointerTypeTouch {
		switch ev.Type {
		case gpucontext.PointerDown:
			u.mouseDown(0, ev.X, ev.Y)
		case gpucontext.PointerMove:
			u.mouseMove(ev.X, ev.Y)
		case gpucontext.PointerUp:
			u.mouseUp(0, ev.X, ev.Y)
		}
		return
	}

	switch ev.Type {
	case gpucontext.PointerDown:
		if _, ok := u.touches[ev.PointerID]; !ok {
			u.order = append(u.order, ev.PointerID)
		}
		u.touches[ev.PointerID] = touch{ev.X, ev.Y}
		if len(u.touches) == 2 {
			u.prevDist = u.pinchDistance()
		}
	case gpucontext.PointerMove:
		if _, ok := u.touches[ev.PointerID]; !ok {
			return
		}
		u.touches[ev.PointerID] = touch{ev.X, ev.Y}
		if len(u.touches) != 2 || u.prevDist <= 0 {
			return
		}
		dist := u.pinchDistance()
		a, b := u.pinchPair()
		u.emit((1-dist/u.prevDist)*pinchScale, (a.x+b.x)/2, (a.y+b.y)/2)
		u.prevDist = dist
	case gpucontext.PointerUp, gpucontext.PointerCancel:
		delete(u.touches, ev.PointerID)
		if i := slices.Index(u.order, ev.PointerID); i >= 0 {
			u.order = slices.Delete(u.order, i, i+1)
		}
		if len(u.touches) == 0 {
			u.prevDist = 0
		}
	}
}

// Touches returns the number of active touches.
func (u *Unifier) Touches() int { return len(u.touches) }

// pinchPair returns the two most recent touches.
func (u *Unifier) pinchPair() (touch, touch) {
	n := len(u.order)
	return u.touches[u.order[n-2]], u.touches[u.order[n-1]]
}

func (u *Unifier) pinchDistance() float64 {
	a, b := u.pinchPair()
	return math.Hypot(b.x-a.x, b.y-a.y)
}

// HandleKey passes key through to the key channel, then zooms for + and -.
func (u *Unifier) HandleKey(key gpucontext.Key, mods gpucontext.Modifiers) {
	if u.key != nil {
		u.key(key, mods)
	}
	switch key {
	case gpucontext.KeyEqual, gpucontext.KeyNumpadAdd:
		x, y := u.center()
		u.emit(-KeyZoomStep, x, y)
	case gpucontext.KeyMinus, gpucontext.KeyNumpadSubtract:
		x, y := u.center()
		u.emit(KeyZoomStep, x, y)
	}
}

func (u *Unifier) center() (float64, float64) {
	if u.size == nil {
		return 0, 0
	}
	w, h := u.size.Size()
	return float64(w) / 2, float64(h) / 2
}

// Mouse drag does not pan; the spiral stays centered.
func (u *Unifier) mouseDown(gpucontext.MouseButton, float64, float64) {}
func (u *Unifier) mouseMove(float64, float64)                         {}
func (u *Unifier) mouseUp(gpucontext.MouseButton, float64, float64)   {}
