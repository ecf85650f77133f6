// Package enginetest provides an in-memory spiral.Container for engine tests.
package enginetest

import (
	"image"
	"time"

	"github.com/gogpu/spiral"
	"github.com/gogpu/spiral/internal/frame"
)

// Container is a headless container driven by Step.
type Container struct {
	W, H      int
	Ratio     float64
	Reduce    bool
	Manual    frame.Manual
	Presented []image.Image // presented frames, newest last

	PresentErr error

	listeners map[int]func(w, h int)
	nextID    int
}

// New returns a w x h container with a device pixel ratio of 1.
func New(w, h int) *Container {
	return &Container{W: w, H: h, Ratio: 1}
}

var (
	_ spiral.Container        = (*Container)(nil)
	_ spiral.Presenter        = (*Container)(nil)
	_ spiral.MotionPreference = (*Container)(nil)
)

func (c *Container) Size() (int, int)           { return c.W, c.H }
func (c *Container) DevicePixelRatio() float64  { return c.Ratio }
func (c *Container) Frames() spiral.FrameSource { return &c.Manual }
func (c *Container) ReduceMotion() bool         { return c.Reduce }

func (c *Container) OnResize(fn func(w, h int)) func() {
	if c.listeners == nil {
		c.listeners = make(map[int]func(w, h int))
	}
	c.nextID++
	id := c.nextID
	c.listeners[id] = fn
	return func() { delete(c.listeners, id) }
}

// Listeners returns the number of registered resize listeners.
func (c *Container) Listeners() int { return len(c.listeners) }

// Resize changes the size and notifies listeners.
func (c *Container) Resize(w, h int) {
	c.W, c.H = w, h
	for _, fn := range c.listeners {
		fn(w, h)
	}
}

// Present records img.
func (c *Container) Present(img image.Image) error {
	if c.PresentErr != nil {
		return c.PresentErr
	}
	c.Presented = append(c.Presented, img)
	return nil
}

// Step advances the frame source to now.
func (c *Container) Step(now time.Duration) { c.Manual.Step(now) }

// Last returns the most recently presented frame, or nil.
func (c *Container) Last() image.Image {
	if len(c.Presented) == 0 {
		return nil
	}
	return c.Presented[len(c.Presented)-1]
}
