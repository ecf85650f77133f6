package spiral

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/spiral/internal/geom"
)

// DefaultScale is the initial viewport scale, zoomed out far enough to show
// several tiles.
const DefaultScale = 25

// Config holds engine construction settings. Backends receive it from
// NewEngine; callers build it with Option values.
type Config struct {
	// A is the initial radius parameter of r = a * period^(theta/(pi/2)).
	A float64
	// Period is the growth per quarter turn and the normalization step.
	Period float64
	// InitialScale is the starting viewport scale.
	InitialScale float64

	Debug         bool
	ReducedMotion bool

	// Effects seeds and persists the effects config. Nil keeps the
	// config in memory only.
	Effects EffectsStore

	// DeviceProvider shares an existing GPU device with the GPU backend.
	DeviceProvider gpucontext.DeviceProvider

	// MonoFont is TrueType data for the debug overlay. Nil uses Go Mono.
	MonoFont []byte

	// Rand drives particle emission. Nil uses math/rand/v2.
	Rand RandSource
}

// RandSource yields uniform floats in [0, 1). *rand.Rand from math/rand/v2
// satisfies it.
type RandSource interface {
	Float64() float64
}

// Option configures an engine during creation.
//
// Example:
//
//	e, err := spiral.NewEngine(spiral.ModeAuto, caps,
//	    spiral.WithDebug(true),
//	    spiral.WithEffectsCache(effects.Default()),
//	)
type Option func(*Config)

// NewConfig returns the default config with opts applied.
func NewConfig(opts ...Option) Config {
	cfg := Config{
		A:            1,
		Period:       geom.Phi,
		InitialScale: DefaultScale,
	}
	for _, o := range opts {
		if o != nil {
			o(&cfg)
		}
	}
	if !(cfg.Period > 1) {
		cfg.Period = geom.Phi
	}
	if !(cfg.A > 0) {
		cfg.A = 1
	}
	if !(cfg.InitialScale > 0) {
		cfg.InitialScale = DefaultScale
	}
	return cfg
}

// EffectsStore returns the configured store, or an in-memory store seeded
// with the defaults.
func (c Config) EffectsStore() EffectsStore {
	if c.Effects != nil {
		return c.Effects
	}
	return &memoryEffects{cfg: DefaultEffects()}
}

// WithA sets the initial radius parameter.
func WithA(a float64) Option {
	return func(c *Config) { c.A = a }
}

// WithPeriod sets the spiral period. Values not above 1 are ignored.
func WithPeriod(p float64) Option {
	return func(c *Config) { c.Period = p }
}

// WithInitialScale sets the starting viewport scale.
func WithInitialScale(s float64) Option {
	return func(c *Config) { c.InitialScale = s }
}

// WithDebug enables the debug overlay.
func WithDebug(on bool) Option {
	return func(c *Config) { c.Debug = on }
}

// WithReducedMotion marks the user as preferring reduced motion, in
// addition to whatever the container reports.
func WithReducedMotion(on bool) Option {
	return func(c *Config) { c.ReducedMotion = on }
}

// WithEffectsCache makes the engine seed its effects from s and write
// changes back to it.
func WithEffectsCache(s EffectsStore) Option {
	return func(c *Config) { c.Effects = s }
}

// WithDeviceProvider shares a host GPU device with the GPU backend instead
// of creating a private one.
func WithDeviceProvider(p gpucontext.DeviceProvider) Option {
	return func(c *Config) { c.DeviceProvider = p }
}

// WithMonoFont sets the debug overlay font.
func WithMonoFont(ttf []byte) Option {
	return func(c *Config) { c.MonoFont = ttf }
}

// WithRand sets the random source used for particles.
func WithRand(r RandSource) Option {
	return func(c *Config) { c.Rand = r }
}
