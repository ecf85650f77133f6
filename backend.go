package spiral

import (
	"errors"
	"fmt"
	"sync"
)

// Backend builds render engines of one kind.
//
// Backend packages register themselves from init, so hosts opt in with a
// blank import:
//
//	import (
//	    _ "github.com/gogpu/spiral/canvas" // 2D renderer
//	    _ "github.com/gogpu/spiral/gpu"    // wgpu renderer
//	)
type Backend interface {
	// Name returns a short backend name for logs ("canvas", "gpu").
	Name() string

	// NewEngine returns an unmounted engine configured by cfg.
	NewEngine(cfg Config) (Engine, error)
}

var (
	backendsMu sync.RWMutex
	backends   = map[RenderMode]Backend{}
)

// RegisterBackend registers the backend serving mode, which must be
// ModeCanvas or ModeGPU. A later registration replaces the earlier one.
func RegisterBackend(mode RenderMode, b Backend) error {
	if b == nil {
		return errors.New("spiral: backend must not be nil")
	}
	if mode != ModeCanvas && mode != ModeGPU {
		return fmt.Errorf("spiral: cannot register backend for mode %s", mode)
	}
	backendsMu.Lock()
	backends[mode] = b
	backendsMu.Unlock()

	propagateLogger(b, Logger())
	return nil
}

// LookupBackend returns the backend registered for mode, if any.
func LookupBackend(mode RenderMode) (Backend, bool) {
	backendsMu.RLock()
	b, ok := backends[mode]
	backendsMu.RUnlock()
	return b, ok
}

func registeredBackends() []Backend {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	out := make([]Backend, 0, len(backends))
	for _, m := range []RenderMode{ModeCanvas, ModeGPU} {
		if b, ok := backends[m]; ok {
			out = append(out, b)
		}
	}
	return out
}

// NewEngine selects a backend for mode and caps and builds an engine.
//
// The GPU backend is used when ShouldUseGPU reports true and a GPU backend
// is registered. Otherwise the canvas backend is used.
func NewEngine(mode RenderMode, caps Capabilities, opts ...Option) (Engine, error) {
	cfg := NewConfig(opts...)

	target := ModeCanvas
	if ShouldUseGPU(mode, caps) {
		target = ModeGPU
	}

	b, ok := LookupBackend(target)
	if !ok && target == ModeGPU {
		Logger().Warn("spiral: gpu backend not registered, using canvas")
		target = ModeCanvas
		b, ok = LookupBackend(target)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, target)
	}

	Logger().Info("spiral: backend selected",
		"backend", b.Name(),
		"requested", mode.String(),
		"tier", caps.Tier.String(),
		"adapter", caps.Adapter)

	e, err := b.NewEngine(cfg)
	if err != nil {
		return nil, fmt.Errorf("spiral: %s backend: %w", b.Name(), err)
	}
	return e, nil
}
