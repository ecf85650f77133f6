// Package ebitenhost runs a spiral engine in a desktop window.
//
// A Host is the spiral.Container and spiral.Presenter for an engine and the
// ebiten.Game that drives it. Every ebiten tick polls input, runs the hooks
// registered with OnUpdate and fires the engine's frame callbacks. Draw
// scales the last presented frame to the window.
//
//	h := ebitenhost.New(ebitenhost.Options{Title: "spiral"})
//	eng.Mount(h)
//	u := input.New(eng.HandleWheel, keys, h)
//	u.Attach(h.Events())
//	err := h.Run()
package ebitenhost

import (
	"errors"
	"image"
	"math"
	"slices"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/draw"

	"github.com/gogpu/spiral"
	"github.com/gogpu/spiral/internal/frame"
)

// Options configure a Host.
type Options struct {
	Title string

	// Width and Height are the initial window size in logical pixels.
	// Zero means 1024x768.
	Width, Height int

	// TPS is the tick rate. Zero means ebiten.DefaultTPS.
	TPS int

	// ReduceMotion is reported through spiral.MotionPreference.
	ReduceMotion bool
}

// Host is a window hosting one spiral engine.
//
// All methods except Run must be called from the ebiten game loop or before
// Run starts.
type Host struct {
	opts Options

	w, h int
	dpr  float64

	frames frame.Manual
	start  time.Time

	listeners map[int]func(w, h int)
	nextID    int

	events  *Events
	input   state
	updates []func()

	frame  *image.RGBA
	dirty  bool
	screen *ebiten.Image

	closed bool
}

var (
	_ spiral.Container        = (*Host)(nil)
	_ spiral.Presenter        = (*Host)(nil)
	_ spiral.MotionPreference = (*Host)(nil)
	_ ebiten.Game             = (*Host)(nil)
)

// New returns a host with the given options. The window opens in Run.
func New(opts Options) *Host {
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 1024, 768
	}
	if opts.TPS <= 0 {
		opts.TPS = ebiten.DefaultTPS
	}
	return &Host{
		opts:      opts,
		w:         opts.Width,
		h:         opts.Height,
		dpr:       1,
		listeners: make(map[int]func(w, h int)),
		events:    newEvents(),
	}
}

// Run opens the window and blocks until it is closed or Close is called.
func (h *Host) Run() error {
	ebiten.SetWindowTitle(h.opts.Title)
	ebiten.SetWindowSize(h.opts.Width, h.opts.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(h.opts.TPS)
	h.start = time.Now()
	err := ebiten.RunGame(h)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

// Close ends Run after the current tick.
func (h *Host) Close() { h.closed = true }

// Events returns the host's input source.
func (h *Host) Events() *Events { return h.events }

// OnUpdate registers fn to run once per tick, after input and before the
// frame callbacks.
func (h *Host) OnUpdate(fn func()) {
	h.updates = append(h.updates, fn)
}

// Size implements spiral.Container.
func (h *Host) Size() (int, int) { return h.w, h.h }

// DevicePixelRatio implements spiral.Container.
func (h *Host) DevicePixelRatio() float64 { return h.dpr }

// Frames implements spiral.Container.
func (h *Host) Frames() spiral.FrameSource { return &h.frames }

// ReduceMotion implements spiral.MotionPreference.
func (h *Host) ReduceMotion() bool { return h.opts.ReduceMotion }

// OnResize implements spiral.Container.
func (h *Host) OnResize(fn func(w, h int)) func() {
	h.nextID++
	id := h.nextID
	h.listeners[id] = fn
	return func() { delete(h.listeners, id) }
}

// resize records the window size and notifies listeners in registration
// order when it changed.
func (h *Host) resize(w, ht int, dpr float64) {
	if w <= 0 || ht <= 0 {
		return
	}
	if !(dpr > 0) {
		dpr = 1
	}
	if w == h.w && ht == h.h && dpr == h.dpr {
		return
	}
	h.w, h.h, h.dpr = w, ht, dpr
	ids := make([]int, 0, len(h.listeners))
	for id := range h.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if fn, ok := h.listeners[id]; ok {
			fn(w, ht)
		}
	}
}

// Present implements spiral.Presenter. The frame is copied, so engines may
// reuse img.
func (h *Host) Present(img image.Image) error {
	b := img.Bounds()
	if b.Empty() {
		return nil
	}
	if h.frame == nil || h.frame.Rect.Dx() != b.Dx() || h.frame.Rect.Dy() != b.Dy() {
		h.frame = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	}
	if src, ok := img.(*image.RGBA); ok && src.Stride == 4*b.Dx() && len(src.Pix) == len(h.frame.Pix) {
		copy(h.frame.Pix, src.Pix)
	} else {
		draw.Draw(h.frame, h.frame.Rect, img, b.Min, draw.Src)
	}
	h.dirty = true
	return nil
}

// Update implements ebiten.Game.
func (h *Host) Update() error {
	if h.closed {
		return ebiten.Termination
	}
	now := time.Since(h.start)
	poll(&h.input, now)
	h.tick(now)
	return nil
}

func (h *Host) tick(now time.Duration) {
	h.events.dispatch(&h.input)
	for _, fn := range h.updates {
		fn()
	}
	h.frames.Step(now)
}

// Draw implements ebiten.Game.
func (h *Host) Draw(screen *ebiten.Image) {
	if h.frame == nil {
		return
	}
	fw, fh := h.frame.Rect.Dx(), h.frame.Rect.Dy()
	if h.screen == nil || h.screen.Bounds().Dx() != fw || h.screen.Bounds().Dy() != fh {
		if h.screen != nil {
			h.screen.Deallocate()
		}
		h.screen = ebiten.NewImage(fw, fh)
		h.dirty = true
	}
	if h.dirty {
		h.screen.WritePixels(h.frame.Pix)
		h.dirty = false
	}
	sb := screen.Bounds()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(sb.Dx())/float64(fw), float64(sb.Dy())/float64(fh))
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(h.screen, op)
}

// Layout implements ebiten.Game. The screen is sized in device pixels so
// frames are shown unscaled on high-density displays.
func (h *Host) Layout(outsideWidth, outsideHeight int) (int, int) {
	dpr := 1.0
	if m := ebiten.Monitor(); m != nil {
		dpr = m.DeviceScaleFactor()
	}
	h.resize(outsideWidth, outsideHeight, dpr)
	return physical(outsideWidth, dpr), physical(outsideHeight, dpr)
}

func physical(n int, dpr float64) int {
	return max(1, int(math.Round(float64(n)*dpr)))
}
