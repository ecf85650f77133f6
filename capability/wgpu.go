//go:build !nogpu

package capability

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"
	_ "github.com/gogpu/wgpu/hal/allbackends"
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/gogpu/spiral"
)

// WGPU probes adapters through wgpu: a modern adapter first, then GL.
type WGPU struct {
	// Power is the adapter power preference.
	Power gputypes.PowerPreference
}

// Probe implements Prober.
func (w WGPU) Probe() Probe {
	if p, ok := w.try(wgpu.BackendsPrimary); ok {
		return p
	}
	if p, ok := w.try(wgpu.BackendsGL); ok {
		return p
	}
	return Probe{}
}

func (w WGPU) try(backends wgpu.Backends) (Probe, bool) {
	inst, err := wgpu.CreateInstance(&wgpu.InstanceDescriptor{Backends: backends})
	if err != nil {
		spiral.Logger().Debug("spiral: instance creation failed", "backends", backends, "err", err)
		return Probe{}, false
	}
	defer inst.Release()

	adapter, err := inst.RequestAdapter(&wgpu.RequestAdapterOptions{PowerPreference: w.Power})
	if err != nil {
		spiral.Logger().Debug("spiral: no adapter", "backends", backends, "err", err)
		return Probe{}, false
	}
	defer adapter.Release()
	return FromAdapter(adapter.Info(), adapter.Features(), adapter.Limits()), true
}

// FromAdapter builds a probe from adapter properties. Instancing is native
// on modern backends and needs FeatureIndirectFirstInstance on GL.
func FromAdapter(info gputypes.AdapterInfo, features gputypes.Features, limits gputypes.Limits) Probe {
	modern := isModern(info.Backend)
	return Probe{
		Supported:      true,
		Modern:         modern,
		MaxTextureSize: int(limits.MaxTextureDimension2D),
		FloatTextures:  features.Contains(gputypes.FeatureFloat32Filterable),
		Instancing:     modern || features.Contains(gputypes.FeatureIndirectFirstInstance),
		Backend:        info.Backend.String(),
		Adapter:        info.Name,
	}
}

func isModern(b gputypes.Backend) bool {
	switch b {
	case gputypes.BackendVulkan, gputypes.BackendMetal, gputypes.BackendDX12:
		return true
	default:
		return false
	}
}
