//go:build !nogpu

// Package gpu is the GPU spiral engine, drawn with gogpu/wgpu.
//
// It registers itself as the spiral.ModeGPU backend:
//
//	import _ "github.com/gogpu/spiral/gpu"
//
// Three WGSL programs draw the spiral line strip, the pulsing tile nodes and
// the particles into an offscreen BGRA8 texture. Each frame is read back
// and handed to the container's spiral.Presenter.
//
// The device comes from spiral.Config.DeviceProvider when set, so an
// application already running gogpu can share its device. Otherwise the
// engine opens its own.
//
// Build with -tags nogpu to leave the backend out.
package gpu

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"

	"github.com/gogpu/spiral"
	"github.com/gogpu/spiral/internal/engine"
)

// Particle radius is 2 + rand*3 pixels.
const (
	particleRadius = 2
	particleSpread = 3
)

// clearColor is the frame background.
var clearColor = gputypes.Color{R: 0.04, G: 0.04, B: 0.04, A: 1}

func init() {
	if err := spiral.RegisterBackend(spiral.ModeGPU, Backend{}); err != nil {
		spiral.Logger().Warn("gpu: register backend", "err", err)
	}
}

// Backend is the spiral.Backend for the GPU engine.
type Backend struct{}

// Name implements spiral.Backend.
func (Backend) Name() string { return "gpu" }

// NewEngine implements spiral.Backend.
func (Backend) NewEngine(cfg spiral.Config) (spiral.Engine, error) {
	return New(cfg), nil
}

// SetLogger implements the optional logger hook of spiral.Backend. wgpu
// shares the engine's logger.
func (Backend) SetLogger(l *slog.Logger) {
	wgpu.SetLogger(l)
}

// Engine is the GPU spiral engine.
type Engine struct {
	*engine.Core
	norm *engine.LogNorm

	presenter spiral.Presenter
	dev       *device
	target    target

	spiral    *program
	nodes     *program
	particles *program

	samples  []engine.Sample
	vertices []byte
	uniforms []byte
}

var _ spiral.Engine = (*Engine)(nil)

// New returns an unmounted GPU engine. It keeps a in log space.
func New(cfg spiral.Config) *Engine {
	norm := engine.NewLogNorm(cfg.A, cfg.Period)
	return &Engine{
		Core: engine.NewCore(cfg, engine.Params{
			Norm:           norm,
			ParticleRadius: particleRadius,
			ParticleSpread: particleSpread,
		}),
		norm: norm,
	}
}

// LogA returns ln(a).
func (e *Engine) LogA() float64 { return e.norm.LogA() }

// Mount opens a device, builds the three programs and starts drawing into
// c. The container must implement spiral.Presenter and report a non-zero
// size. A failed Mount releases everything it created.
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

	dev, err := openDevice(e.Config())
	if err != nil {
		return err
	}
	e.dev = dev
	e.presenter = p
	e.target = target{device: dev.dev}

	if err := e.setup(w, h, c.DevicePixelRatio()); err != nil {
		e.release()
		return err
	}
	if err := e.Attach(c, e); err != nil {
		e.release()
		return err
	}
	spiral.Logger().Debug("gpu: mounted", "w", w, "h", h, "shared", dev.shared)
	return nil
}

func (e *Engine) setup(w, h int, dpr float64) error {
	var err error
	if e.spiral, err = newProgram(e.dev.dev, e.dev.queue, spiralProgram); err != nil {
		return err
	}
	if e.nodes, err = newProgram(e.dev.dev, e.dev.queue, nodeProgram); err != nil {
		return err
	}
	if e.particles, err = newProgram(e.dev.dev, e.dev.queue, particleProgram); err != nil {
		return err
	}
	pw, ph := physical(w, h, dpr)
	return e.target.ensure(pw, ph)
}

// physical converts a logical size to device pixels.
func physical(w, h int, dpr float64) (uint32, uint32) {
	if !(dpr > 0) {
		dpr = 1
	}
	pw := math.Max(1, math.Round(float64(w)*dpr))
	ph := math.Max(1, math.Round(float64(h)*dpr))
	return uint32(pw), uint32(ph)
}

// Unmount stops the frame loop and releases every program, buffer and
// texture. A device the engine opened itself is released too. It is
// idempotent.
func (e *Engine) Unmount() {
	e.Detach()
	e.release()
}

func (e *Engine) release() {
	for _, p := range []*program{e.spiral, e.nodes, e.particles} {
		if p != nil {
			p.release()
		}
	}
	e.spiral, e.nodes, e.particles = nil, nil, nil
	e.target.release()
	e.dev.release()
	e.dev = nil
	e.presenter = nil
	e.samples = e.samples[:0]
}

// Resize implements engine.Renderer.
func (e *Engine) Resize(w, h int, dpr float64) {
	if e.dev == nil || w <= 0 || h <= 0 {
		return
	}
	pw, ph := physical(w, h, dpr)
	if err := e.target.ensure(pw, ph); err != nil {
		spiral.Logger().Warn("gpu: resize", "w", w, "h", h, "err", err)
	}
}

// Render implements engine.Renderer.
func (e *Engine) Render(f engine.Frame) error {
	if e.dev == nil || e.target.tex == nil {
		return spiral.ErrNotMounted
	}
	if err := e.upload(f); err != nil {
		return err
	}
	if err := e.encode(); err != nil {
		return err
	}
	img, err := e.target.readback(context.Background())
	if err != nil {
		return err
	}
	return e.presenter.Present(img)
}

// upload packs and writes this frame's uniforms and vertex streams.
func (e *Engine) upload(f engine.Frame) error {
	m := ClipMatrix(e.Viewport(), f.Size)
	t := f.Time()

	glow := 0.0
	if e.EffectEnabled(spiral.EffectGlow) {
		glow = e.Effects().GlowIntensity
	}
	e.samples = e.SpiralSamples(e.samples[:0])
	e.vertices = packSpiral(e.vertices[:0], e.samples)
	e.uniforms = spiralUniforms(e.uniforms, m, t, e.A(), glow)
	if err := e.spiral.upload(e.uniforms, e.vertices); err != nil {
		return err
	}

	e.vertices = e.vertices[:0]
	if e.EffectEnabled(spiral.EffectPulse) {
		e.vertices = packNodes(e.vertices, e.Nodes(-1))
	}
	e.uniforms = nodeUniforms(e.uniforms, m, f.Size, t)
	if err := e.nodes.upload(e.uniforms, e.vertices); err != nil {
		return err
	}

	e.vertices = e.vertices[:0]
	if e.EffectEnabled(spiral.EffectParticles) {
		e.vertices = packParticles(e.vertices, e.Particles().Particles())
	}
	e.uniforms = particleUniforms(e.uniforms, f.Size)
	return e.particles.upload(e.uniforms, e.vertices)
}

// encode records the render pass and the readback copy, then submits.
func (e *Engine) encode() error {
	enc, err := e.dev.dev.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{
		Label: "spiral_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	rp, err := enc.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "spiral_pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       e.target.view,
				LoadOp:     gputypes.LoadOpClear,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: clearColor,
			},
		},
	})
	if err != nil {
		enc.DiscardEncoding()
		return fmt.Errorf("begin render pass: %w", err)
	}
	e.spiral.record(rp)
	e.nodes.record(rp)
	e.particles.record(rp)
	if err := rp.End(); err != nil {
		enc.DiscardEncoding()
		return fmt.Errorf("end render pass: %w", err)
	}

	e.target.encodeCopy(enc)

	cmd, err := enc.Finish()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	if _, err := e.dev.queue.Submit(cmd); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	return nil
}
