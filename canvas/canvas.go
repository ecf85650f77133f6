// Package canvas is the 2D spiral engine, drawn on the CPU with gogpu/gg.
//
// It registers itself as the spiral.ModeCanvas backend:
//
//	import _ "github.com/gogpu/spiral/canvas"
//
// Each frame is rasterized into a gg.Context and handed to the container's
// spiral.Presenter.
package canvas

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/gogpu/spiral"
	"github.com/gogpu/spiral/internal/engine"
)

// Particle radius is 1.5 + rand*2 pixels.
const (
	particleRadius = 1.5
	particleSpread = 2
)

// DebugFontSize is the debug overlay text size in pixels.
const DebugFontSize = 12

func init() {
	if err := spiral.RegisterBackend(spiral.ModeCanvas, Backend{}); err != nil {
		spiral.Logger().Warn("canvas: register backend", "err", err)
	}
}

// Backend is the spiral.Backend for the 2D engine.
type Backend struct{}

// Name implements spiral.Backend.
func (Backend) Name() string { return "canvas" }

// NewEngine implements spiral.Backend.
func (Backend) NewEngine(cfg spiral.Config) (spiral.Engine, error) {
	return New(cfg), nil
}

// SetLogger implements the optional logger hook of spiral.Backend. gg
// shares the engine's logger.
func (Backend) SetLogger(l *slog.Logger) {
	gg.SetLogger(l)
}

// Engine is the 2D spiral engine.
type Engine struct {
	*engine.Core

	presenter spiral.Presenter
	dc        *gg.Context
	font      *text.FontSource
	face      text.Face

	samples []engine.Sample
}

var _ spiral.Engine = (*Engine)(nil)

// New returns an unmounted 2D engine.
func New(cfg spiral.Config) *Engine {
	return &Engine{
		Core: engine.NewCore(cfg, engine.Params{
			Norm:           engine.NewLinearNorm(cfg.A, cfg.Period),
			ParticleRadius: particleRadius,
			ParticleSpread: particleSpread,
		}),
	}
}

// Mount attaches the engine to c. The container must implement
// spiral.Presenter and report a non-zero size.
func (e *Engine) Mount(c spiral.Container) error {
	if e.Mounted() {
		return nil
	}
	p, ok := c.(spiral.Presenter)
	if !ok {
		return fmt.Errorf("%w: container cannot present frames", spiral.ErrNoSurface)
	}
	w, h := c.Size()
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: container size %dx%d", spiral.ErrNoSurface, w, h)
	}

	data := e.Config().MonoFont
	if data == nil {
		data = gomono.TTF
	}
	font, err := text.NewFontSource(data)
	if err != nil {
		return fmt.Errorf("canvas: debug font: %w", err)
	}

	dpr := c.DevicePixelRatio()
	if !(dpr > 0) {
		dpr = 1
	}
	e.presenter = p
	e.dc = gg.NewContext(w, h, gg.WithDeviceScale(dpr))
	e.font = font
	e.face = font.Face(DebugFontSize)

	if err := e.Attach(c, e); err != nil {
		e.release()
		return err
	}
	spiral.Logger().Debug("canvas: mounted", "w", w, "h", h, "dpr", dpr)
	return nil
}

// Unmount stops the frame loop and releases the drawing surface. It is
// idempotent.
func (e *Engine) Unmount() {
	e.Detach()
	e.release()
}

func (e *Engine) release() {
	if e.dc != nil {
		if err := e.dc.Close(); err != nil {
			spiral.Logger().Warn("canvas: close context", "err", err)
		}
		e.dc = nil
	}
	if e.font != nil {
		if err := e.font.Close(); err != nil {
			spiral.Logger().Warn("canvas: close font", "err", err)
		}
		e.font = nil
		e.face = nil
	}
	e.presenter = nil
	e.samples = e.samples[:0]
}

// Resize implements engine.Renderer. A changed device pixel ratio
// reallocates the surface at the new physical size.
func (e *Engine) Resize(w, h int, dpr float64) {
	if e.dc == nil || w <= 0 || h <= 0 {
		return
	}
	if err := e.dc.Resize(w, h); err != nil {
		spiral.Logger().Warn("canvas: resize", "w", w, "h", h, "err", err)
	}
	e.dc.SetDeviceScale(dpr)
}

// Render implements engine.Renderer.
func (e *Engine) Render(f engine.Frame) error {
	if e.dc == nil {
		return spiral.ErrNotMounted
	}
	if err := e.draw(f); err != nil {
		return err
	}
	return e.presenter.Present(e.dc.Image())
}

// Context returns the drawing context while mounted.
func (e *Engine) Context() *gg.Context { return e.dc }
