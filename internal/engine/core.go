// Package engine holds the backend-independent half of a spiral engine:
// viewport state and normalization, the tile set, focus subscribers,
// effects preferences, particles and the frame loop.
//
// Backends embed *Core and add surface setup and drawing.
package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/gogpu/gg"

	"github.com/gogpu/spiral"
	"github.com/gogpu/spiral/internal/frame"
	"github.com/gogpu/spiral/internal/geom"
	"github.com/gogpu/spiral/internal/particle"
	"github.com/gogpu/spiral/internal/phase"
)

// Frame describes one tick handed to a Renderer.
type Frame struct {
	// Now is the frame source timestamp.
	Now time.Duration
	// DT is the time since the previous frame in seconds, 0 on the first.
	DT float64
	// Size is the canvas size in logical pixels.
	Size geom.Size
	// DPR is the device pixel ratio.
	DPR float64
}

// Time returns Now in seconds, the clock used by the pulse animation.
func (f Frame) Time() float64 { return f.Now.Seconds() }

// Renderer draws frames for a Core.
type Renderer interface {
	Render(f Frame) error
	Resize(w, h int, dpr float64)
}

// Params are the backend-specific parts of a Core.
type Params struct {
	Norm Norm

	// ParticleRadius and ParticleSpread give particles a radius of
	// ParticleRadius + rand*ParticleSpread pixels.
	ParticleRadius float64
	ParticleSpread float64
}

// Core implements every spiral.Engine method except Mount and Unmount.
type Core struct {
	cfg  spiral.Config
	norm Norm

	viewport spiral.Viewport
	tiles    []spiral.Tile
	focused  string
	subs     []spiral.FocusFunc

	store         spiral.EffectsStore
	effects       spiral.EffectsConfig
	reducedMotion bool
	debug         bool

	particles *particle.Pool

	mounted      bool
	size         geom.Size
	dpr          float64
	loop         *frame.Loop
	removeResize func()
	renderer     Renderer
	last         time.Duration
	hasLast      bool
	renderFailed bool
}

// NewCore builds a core from the engine config.
func NewCore(cfg spiral.Config, p Params) *Core {
	if p.Norm == nil {
		p.Norm = NewLinearNorm(cfg.A, cfg.Period)
	}
	store := cfg.EffectsStore()
	var rng particle.Source
	if cfg.Rand != nil {
		rng = cfg.Rand
	}
	c := &Core{
		cfg:           cfg,
		norm:          p.Norm,
		store:         store,
		effects:       store.Load(),
		reducedMotion: cfg.ReducedMotion,
		debug:         cfg.Debug,
		particles:     particle.NewPool(rng, p.ParticleRadius, p.ParticleSpread),
		dpr:           1,
	}
	c.viewport = spiral.Viewport{Scale: cfg.InitialScale}
	c.viewport = geom.ClampViewport(c.viewport)
	return c
}

// Config returns the construction config.
func (c *Core) Config() spiral.Config { return c.cfg }

// Norm returns the normalization state.
func (c *Core) Norm() Norm { return c.norm }

// A returns the current radius parameter.
func (c *Core) A() float64 { return c.norm.A() }

// Attach starts driving r from container ct. It records the container
// size, reduced-motion preference and resize listener, then starts the
// frame loop.
func (c *Core) Attach(ct spiral.Container, r Renderer) error {
	if c.mounted {
		return nil
	}
	src := ct.Frames()
	if src == nil {
		return fmt.Errorf("%w: container has no frame source", spiral.ErrNoSurface)
	}
	w, h := ct.Size()
	c.size = geom.Size{W: float64(w), H: float64(h)}
	c.dpr = ct.DevicePixelRatio()
	if !(c.dpr > 0) {
		c.dpr = 1
	}
	if mp, ok := ct.(spiral.MotionPreference); ok && mp.ReduceMotion() {
		c.reducedMotion = true
	}

	c.renderer = r
	c.removeResize = ct.OnResize(func(w, h int) {
		c.size = geom.Size{W: float64(w), H: float64(h)}
		// The ratio changes when the window moves between displays.
		if dpr := ct.DevicePixelRatio(); dpr > 0 {
			c.dpr = dpr
		}
		if c.renderer != nil {
			c.renderer.Resize(w, h, c.dpr)
		}
	})
	c.loop = frame.NewLoop(src, c.tick)
	c.mounted = true
	c.hasLast = false
	c.loop.Start()
	return nil
}

// Detach stops the frame loop and removes the resize listener. It is
// idempotent.
func (c *Core) Detach() {
	if !c.mounted {
		return
	}
	c.mounted = false
	if c.loop != nil {
		c.loop.Stop()
		c.loop = nil
	}
	if c.removeResize != nil {
		c.removeResize()
		c.removeResize = nil
	}
	c.renderer = nil
	c.hasLast = false
	c.particles.Reset()
}

// Mounted reports whether the core is attached to a container.
func (c *Core) Mounted() bool { return c.mounted }

// Size returns the canvas size in logical pixels.
func (c *Core) Size() geom.Size { return c.size }

// DPR returns the device pixel ratio of the attached container as of the
// last mount or resize.
func (c *Core) DPR() float64 { return c.dpr }

func (c *Core) tick(now time.Duration) {
	var dt float64
	if c.hasLast && now > c.last {
		dt = (now - c.last).Seconds()
	}
	c.last = now
	c.hasLast = true

	if c.EffectEnabled(spiral.EffectParticles) {
		c.particles.Update(dt)
	}
	if c.renderer == nil {
		return
	}
	err := c.renderer.Render(Frame{Now: now, DT: dt, Size: c.size, DPR: c.dpr})
	switch {
	case err != nil && !c.renderFailed:
		c.renderFailed = true
		spiral.Logger().Warn("spiral: frame render failed", "err", err)
	case err == nil && c.renderFailed:
		c.renderFailed = false
		spiral.Logger().Info("spiral: frame render recovered")
	}
}

// SetTiles stores a copy of tiles sorted by descending priority.
func (c *Core) SetTiles(tiles []spiral.Tile) {
	c.tiles = spiral.SortTiles(tiles)
}

// Tiles returns a copy of the sorted tile set.
func (c *Core) Tiles() []spiral.Tile {
	out := make([]spiral.Tile, len(c.tiles))
	copy(out, c.tiles)
	return out
}

// SortedTiles returns the tile set without copying. Callers must not
// modify it.
func (c *Core) SortedTiles() []spiral.Tile { return c.tiles }

// OnFocus subscribes fn to focus changes.
func (c *Core) OnFocus(fn spiral.FocusFunc) {
	if fn != nil {
		c.subs = append(c.subs, fn)
	}
}

// FocusTile centers the viewport on the tile with the given ID and scales
// its radial extent to about 200 pixels. Unknown IDs are ignored.
func (c *Core) FocusTile(id string) {
	for i := range c.tiles {
		t := &c.tiles[i]
		if t.ID != id {
			continue
		}
		center := t.BBox.Centroid()
		c.viewport.OffsetX = -center.X
		c.viewport.OffsetY = -center.Y
		c.viewport.Scale = focusSize / ((t.BBox.RMax - t.BBox.RMin) / 2)
		c.viewport = geom.ClampViewport(c.viewport)
		c.setFocused(id)
		return
	}
}

// focusSize is the on-screen radial size of a focused tile in pixels.
const focusSize = 200

// ClearFocus drops focus and notifies subscribers with "".
func (c *Core) ClearFocus() { c.setFocused("") }

// Focused returns the focused tile ID.
func (c *Core) Focused() string { return c.focused }

func (c *Core) setFocused(id string) {
	if c.focused == id {
		return
	}
	c.focused = id
	for _, fn := range c.subs {
		fn(id)
	}
}

// Viewport returns the current viewport.
func (c *Core) Viewport() spiral.Viewport { return c.viewport }

// SetViewport merges p into the viewport, then normalizes and clamps.
func (c *Core) SetViewport(p spiral.ViewportPatch) {
	c.viewport = p.Apply(c.viewport)
	c.normalize()
}

func (c *Core) normalize() {
	before := c.norm.A()
	c.viewport.Scale = c.norm.Apply(c.viewport.Scale)
	c.viewport = geom.ClampViewport(c.viewport)
	if a := c.norm.A(); a != before {
		spiral.Logger().Debug("spiral: normalized",
			"scale", c.viewport.Scale, "a", a)
	}
}

// HandleWheel zooms about the canvas center. Each call also tilts the
// viewport slightly, recenters the spiral and may emit particles. It does
// nothing while unmounted or for a non-finite delta.
func (c *Core) HandleWheel(deltaY, _, _ float64) {
	if !c.mounted || math.IsNaN(deltaY) || math.IsInf(deltaY, 0) {
		return
	}
	factor := math.Exp(-deltaY * geom.ZoomSensitivity)
	center := c.size.Center()

	c.viewport = geom.ApplyFocalZoom(c.viewport, center, factor, c.size)
	c.viewport.Rotation += deltaY * geom.RotationSensitivity
	c.viewport.OffsetX = 0
	c.viewport.OffsetY = 0
	c.normalize()

	if c.EffectEnabled(spiral.EffectParticles) {
		n := int(math.Floor(math.Min(8, math.Abs(deltaY)/10)))
		c.EmitParticles(n, center.X, center.Y)
	}
}

// HandlePan is intentionally inert: the spiral stays centered.
func (c *Core) HandlePan(_, _ float64) {}

// EmitParticles spawns n particles at (x, y) colored by a random phase
// near the current spiral scale.
func (c *Core) EmitParticles(n int, x, y float64) {
	if n <= 0 {
		return
	}
	a := c.norm.A()
	rng := c.particles.Rand()
	pick := func() gg.RGBA {
		r := a * math.Pow(geom.Phi, rng.Float64()*5)
		return phase.RGB(r, a)
	}
	c.particles.Emit(n, x, y, c.effects.ParticleDensity, pick)
}

// Particles returns the live particle pool.
func (c *Core) Particles() *particle.Pool { return c.particles }

// SetEffects merges p into the effects config and persists the result.
func (c *Core) SetEffects(p spiral.EffectsPatch) {
	c.effects = p.Apply(c.effects)
	c.store.Save(c.effects)
}

// Effects returns the effects config.
func (c *Core) Effects() spiral.EffectsConfig { return c.effects }

// EffectEnabled reports whether effect e should be drawn, taking reduced
// motion into account.
func (c *Core) EffectEnabled(e spiral.Effect) bool {
	return c.effects.Enabled(e, c.reducedMotion)
}

// ReducedMotion reports whether reduced motion was requested.
func (c *Core) ReducedMotion() bool { return c.reducedMotion }

// SetDebug toggles the debug overlay.
func (c *Core) SetDebug(on bool) { c.debug = on }

// Debug reports whether the debug overlay is on.
func (c *Core) Debug() bool { return c.debug }
