package spiral

import (
	"fmt"
	"strings"
)

// RenderMode selects the rendering backend.
type RenderMode int

const (
	// ModeAuto picks the GPU backend only on high-tier desktop hardware.
	ModeAuto RenderMode = iota

	// ModeCanvas forces the 2D path renderer.
	ModeCanvas

	// ModeGPU requests the GPU renderer whenever a GPU is available.
	ModeGPU
)

// String returns the mode name.
func (m RenderMode) String() string {
	switch m {
	case ModeAuto:
		return "auto"
	case ModeCanvas:
		return "canvas"
	case ModeGPU:
		return "gpu"
	default:
		return "unknown"
	}
}

// ParseRenderMode parses "auto", "canvas", "gpu" or "webgl" (an alias of
// "gpu"). Matching is case-insensitive. The empty string is ModeAuto.
func ParseRenderMode(s string) (RenderMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ModeAuto, nil
	case "canvas":
		return ModeCanvas, nil
	case "gpu", "webgl":
		return ModeGPU, nil
	default:
		return ModeAuto, fmt.Errorf("spiral: unknown render mode %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m RenderMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *RenderMode) UnmarshalText(b []byte) error {
	v, err := ParseRenderMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// ShouldUseGPU decides whether mode and caps call for the GPU backend.
func ShouldUseGPU(mode RenderMode, caps Capabilities) bool {
	switch mode {
	case ModeCanvas:
		return false
	case ModeGPU:
		return caps.GPUSupported
	default:
		return caps.GPUSupported && caps.Tier == TierHigh && !caps.Mobile
	}
}
