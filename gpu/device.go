//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"
	_ "github.com/gogpu/wgpu/hal/allbackends"

	"github.com/gogpu/spiral"
)

// device is the wgpu device a GPU engine draws with. A device shared
// through a gpucontext.DeviceProvider is never released by the engine.
type device struct {
	dev   *wgpu.Device
	queue *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	shared   bool
}

// openDevice returns the provider's device when one is configured, and
// otherwise creates one: a modern backend first, then GL.
func openDevice(cfg spiral.Config) (*device, error) {
	if cfg.DeviceProvider != nil {
		return sharedDevice(cfg.DeviceProvider)
	}
	var errs []error
	for _, backends := range []wgpu.Backends{wgpu.BackendsPrimary, wgpu.BackendsGL} {
		d, err := createDevice(backends)
		if err == nil {
			return d, nil
		}
		spiral.Logger().Debug("gpu: device creation failed", "backends", backends, "err", err)
		errs = append(errs, err)
	}
	return nil, fmt.Errorf("%w: %w", spiral.ErrNoDevice, errors.Join(errs...))
}

func sharedDevice(p gpucontext.DeviceProvider) (*device, error) {
	dev := p.Device()
	if dev == nil {
		return nil, fmt.Errorf("%w: provider device is nil", spiral.ErrNoDevice)
	}
	wgpuDev, ok := dev.(*wgpu.Device)
	if !ok {
		return nil, fmt.Errorf("%w: provider device is not *wgpu.Device (got %T)", spiral.ErrNoDevice, dev)
	}
	queue := wgpuDev.Queue()
	if queue == nil {
		return nil, fmt.Errorf("%w: provider queue is nil", spiral.ErrNoDevice)
	}
	return &device{dev: wgpuDev, queue: queue, shared: true}, nil
}

func createDevice(backends wgpu.Backends) (*device, error) {
	instance, err := wgpu.CreateInstance(&wgpu.InstanceDescriptor{Backends: backends})
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: gputypes.PowerPreferenceHighPerformance,
	})
	if err != nil {
		instance.Release()
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	dev, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{Label: "spiral"})
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("request device: %w", err)
	}
	info := adapter.Info()
	spiral.Logger().Info("gpu: device ready", "adapter", info.Name, "backend", info.Backend.String())
	return &device{dev: dev, queue: dev.Queue(), instance: instance, adapter: adapter}, nil
}

// release frees an owned device. It is safe to call more than once.
func (d *device) release() {
	if d == nil || d.shared {
		return
	}
	if d.dev != nil {
		d.dev.Release()
		d.dev = nil
		d.queue = nil
	}
	if d.adapter != nil {
		d.adapter.Release()
		d.adapter = nil
	}
	if d.instance != nil {
		d.instance.Release()
		d.instance = nil
	}
}
