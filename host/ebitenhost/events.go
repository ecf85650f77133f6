package ebitenhost

import (
	"slices"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// WheelLine is the pixel delta of one wheel notch.
const WheelLine = 100

// Events is the gpucontext event source of a Host. Ebiten input is polled
// once per tick and delivered synchronously from Host.Update.
//
// Only the callbacks spiral consumes are stored; the rest come from
// gpucontext.NullEventSource.
type Events struct {
	gpucontext.NullEventSource

	keyPress    []func(gpucontext.Key, gpucontext.Modifiers)
	scroll      []func(dx, dy float64)
	scrollEvent []func(gpucontext.ScrollEvent)
	pointer     []func(gpucontext.PointerEvent)

	touches map[ebiten.TouchID]point
	mouse   point
	down    bool
}

var (
	_ gpucontext.EventSource        = (*Events)(nil)
	_ gpucontext.PointerEventSource = (*Events)(nil)
	_ gpucontext.ScrollEventSource  = (*Events)(nil)
)

type point struct{ x, y float64 }

func newEvents() *Events {
	return &Events{touches: make(map[ebiten.TouchID]point)}
}

// OnKeyPress implements gpucontext.EventSource.
func (e *Events) OnKeyPress(fn func(gpucontext.Key, gpucontext.Modifiers)) {
	e.keyPress = append(e.keyPress, fn)
}

// OnScroll implements gpucontext.EventSource.
func (e *Events) OnScroll(fn func(dx, dy float64)) {
	e.scroll = append(e.scroll, fn)
}

// OnScrollEvent implements gpucontext.ScrollEventSource.
func (e *Events) OnScrollEvent(fn func(gpucontext.ScrollEvent)) {
	e.scrollEvent = append(e.scrollEvent, fn)
}

// OnPointer implements gpucontext.PointerEventSource.
func (e *Events) OnPointer(fn func(gpucontext.PointerEvent)) {
	e.pointer = append(e.pointer, fn)
}

// state is the input polled in one tick.
type state struct {
	keys    []ebiten.Key
	mods    gpucontext.Modifiers
	wheelX  float64
	wheelY  float64
	cursor  point
	pressed bool
	touches map[ebiten.TouchID]point
	at      time.Duration
}

// poll reads the current ebiten input into s, reusing its storage.
func poll(s *state, at time.Duration) {
	s.keys = inpututil.AppendJustPressedKeys(s.keys[:0])
	s.mods = modifiers(ebiten.IsKeyPressed)
	s.wheelX, s.wheelY = ebiten.Wheel()
	cx, cy := ebiten.CursorPosition()
	s.cursor = point{float64(cx), float64(cy)}
	s.pressed = ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	if s.touches == nil {
		s.touches = make(map[ebiten.TouchID]point)
	}
	clear(s.touches)
	var ids []ebiten.TouchID
	for _, id := range ebiten.AppendTouchIDs(ids) {
		x, y := ebiten.TouchPosition(id)
		s.touches[id] = point{float64(x), float64(y)}
	}
	s.at = at
}

// dispatch turns one polled state into callbacks: keys first, then the
// wheel, then pointers.
func (e *Events) dispatch(s *state) {
	for _, k := range s.keys {
		gk := Key(k)
		if gk == gpucontext.KeyUnknown {
			continue
		}
		for _, fn := range e.keyPress {
			fn(gk, s.mods)
		}
	}

	if s.wheelX != 0 || s.wheelY != 0 {
		// Ebiten reports notches with positive y away from the user.
		dx, dy := -s.wheelX*WheelLine, -s.wheelY*WheelLine
		for _, fn := range e.scroll {
			fn(dx, dy)
		}
		ev := gpucontext.ScrollEvent{
			X:         s.cursor.x,
			Y:         s.cursor.y,
			DeltaX:    dx,
			DeltaY:    dy,
			DeltaMode: gpucontext.ScrollDeltaPixel,
			Modifiers: s.mods,
			Timestamp: s.at,
		}
		for _, fn := range e.scrollEvent {
			fn(ev)
		}
	}

	e.dispatchMouse(s)
	e.dispatchTouches(s)
}

func (e *Events) dispatchMouse(s *state) {
	switch {
	case s.pressed && !e.down:
		e.emit(s, gpucontext.PointerDown, 0, gpucontext.PointerTypeMouse, s.cursor)
	case !s.pressed && e.down:
		e.emit(s, gpucontext.PointerUp, 0, gpucontext.PointerTypeMouse, s.cursor)
	case s.cursor != e.mouse:
		e.emit(s, gpucontext.PointerMove, 0, gpucontext.PointerTypeMouse, s.cursor)
	}
	e.down = s.pressed
	e.mouse = s.cursor
}

// dispatchTouches diffs the touch set against the previous tick. IDs are
// visited in ascending order so pinch pairs are stable.
func (e *Events) dispatchTouches(s *state) {
	var ended []ebiten.TouchID
	for id := range e.touches {
		if _, ok := s.touches[id]; !ok {
			ended = append(ended, id)
		}
	}
	slices.Sort(ended)
	for _, id := range ended {
		e.emit(s, gpucontext.PointerUp, int(id), gpucontext.PointerTypeTouch, e.touches[id])
		delete(e.touches, id)
	}

	current := make([]ebiten.TouchID, 0, len(s.touches))
	for id := range s.touches {
		current = append(current, id)
	}
	slices.Sort(current)
	for _, id := range current {
		p := s.touches[id]
		prev, ok := e.touches[id]
		switch {
		case !ok:
			e.emit(s, gpucontext.PointerDown, int(id), gpucontext.PointerTypeTouch, p)
		case prev != p:
			e.emit(s, gpucontext.PointerMove, int(id), gpucontext.PointerTypeTouch, p)
		}
		e.touches[id] = p
	}
}

func (e *Events) emit(s *state, typ gpucontext.PointerEventType, id int, kind gpucontext.PointerType, p point) {
	ev := gpucontext.PointerEvent{
		Type:        typ,
		PointerID:   id,
		X:           p.x,
		Y:           p.y,
		PointerType: kind,
		IsPrimary:   kind == gpucontext.PointerTypeMouse || len(e.touches) == 0,
		Button:      gpucontext.ButtonNone,
		Modifiers:   s.mods,
		Timestamp:   s.at,
	}
	if typ != gpucontext.PointerMove {
		ev.Button = gpucontext.ButtonLeft
	}
	if typ == gpucontext.PointerDown || typ == gpucontext.PointerMove {
		ev.Pressure = 0.5
		ev.Buttons = gpucontext.ButtonsLeft
	}
	if kind == gpucontext.PointerTypeMouse && typ == gpucontext.PointerMove && !s.pressed {
		ev.Pressure = 0
		ev.Buttons = 0
	}
	for _, fn := range e.pointer {
		fn(ev)
	}
}
