//go:build !nogpu

package gpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu"

	"github.com/gogpu/spiral"
)

var (
	//go:embed shaders/spiral.wgsl
	spiralShaderSource string

	//go:embed shaders/node.wgsl
	nodeShaderSource string

	//go:embed shaders/particle.wgsl
	particleShaderSource string
)

const (
	shaderEntryVS = "vs_main"
	shaderEntryFS = "fs_main"
)

// programDesc describes one render program.
type programDesc struct {
	name        string
	source      string
	uniformSize uint64
	topology    gputypes.PrimitiveTopology
	stride      uint64
	step        gputypes.VertexStepMode
	attributes  []Attribute
}

var (
	spiralProgram = programDesc{
		name:        "spiral",
		source:      spiralShaderSource,
		uniformSize: spiralUniformSize,
		topology:    gputypes.PrimitiveTopologyLineStrip,
		stride:      SpiralStride,
		step:        gputypes.VertexStepModeVertex,
		attributes:  spiralAttributes,
	}
	nodeProgram = programDesc{
		name:        "node",
		source:      nodeShaderSource,
		uniformSize: nodeUniformSize,
		topology:    gputypes.PrimitiveTopologyTriangleList,
		stride:      NodeStride,
		step:        gputypes.VertexStepModeInstance,
		attributes:  nodeAttributes,
	}
	particleProgram = programDesc{
		name:        "particle",
		source:      particleShaderSource,
		uniformSize: particleUniformSize,
		topology:    gputypes.PrimitiveTopologyTriangleList,
		stride:      ParticleStride,
		step:        gputypes.VertexStepModeInstance,
		attributes:  particleAttributes,
	}
)

// program owns the pipeline, uniform block and vertex buffer of one
// shader. The vertex buffer grows on demand and is never shrunk.
type program struct {
	desc   programDesc
	device *wgpu.Device
	queue  *wgpu.Queue

	shader        *wgpu.ShaderModule
	uniformLayout *wgpu.BindGroupLayout
	pipeLayout    *wgpu.PipelineLayout
	pipeline      *wgpu.RenderPipeline
	uniforms      *wgpu.Buffer
	bindGroup     *wgpu.BindGroup

	vertices *wgpu.Buffer
	capacity uint64
	count    uint32
}

// newProgram validates the WGSL with naga, then builds the pipeline. On
// failure every resource created so far is released and the error wraps
// spiral.ErrShaderCompile.
func newProgram(device *wgpu.Device, queue *wgpu.Queue, desc programDesc) (*program, error) {
	p := &program{desc: desc, device: device, queue: queue}
	if err := p.create(); err != nil {
		p.release()
		spiral.Logger().Warn("gpu: program setup failed", "program", desc.name, "err", err)
		return nil, fmt.Errorf("%w: %s: %w", spiral.ErrShaderCompile, desc.name, err)
	}
	return p, nil
}

func (p *program) create() error {
	if p.desc.source == "" {
		return fmt.Errorf("shader source is empty")
	}
	if _, err := naga.Compile(p.desc.source); err != nil {
		return fmt.Errorf("validate: %w", err)
	}

	shader, err := p.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: p.desc.name + "_shader",
		WGSL:  p.desc.source,
	})
	if err != nil {
		return fmt.Errorf("create shader module: %w", err)
	}
	p.shader = shader

	uniformLayout, err := p.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: p.desc.name + "_uniform_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform, MinBindingSize: p.desc.uniformSize},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create uniform layout: %w", err)
	}
	p.uniformLayout = uniformLayout

	pipeLayout, err := p.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.desc.name + "_pipe_layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{p.uniformLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	premulBlend := gputypes.BlendStatePremultiplied()
	pipeline, err := p.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.desc.name + "_pipeline",
		Layout: p.pipeLayout,
		Vertex: wgpu.VertexState{
			Module:     p.shader,
			EntryPoint: shaderEntryVS,
			Buffers:    vertexLayout(p.desc.stride, p.desc.step, p.desc.attributes),
		},
		Fragment: &wgpu.FragmentState{
			Module:     p.shader,
			EntryPoint: shaderEntryFS,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    targetFormat,
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: p.desc.topology,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
	})
	if err != nil {
		return fmt.Errorf("create render pipeline: %w", err)
	}
	p.pipeline = pipeline

	uniforms, err := p.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: p.desc.name + "_uniforms",
		Size:  p.desc.uniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create uniform buffer: %w", err)
	}
	p.uniforms = uniforms

	bindGroup, err := p.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  p.desc.name + "_bind",
		Layout: p.uniformLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: p.uniforms, Offset: 0, Size: p.desc.uniformSize},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group: %w", err)
	}
	p.bindGroup = bindGroup
	return nil
}

// upload writes the uniform block and vertex data for the next draw. An
// empty data slice skips the draw.
func (p *program) upload(uniforms, data []byte) error {
	if err := p.queue.WriteBuffer(p.uniforms, 0, uniforms); err != nil {
		return fmt.Errorf("%s: write uniforms: %w", p.desc.name, err)
	}
	p.count = 0
	if len(data) == 0 {
		return nil
	}
	size := uint64(len(data))
	if size > p.capacity {
		if p.vertices != nil {
			p.vertices.Release()
			p.vertices = nil
			p.capacity = 0
		}
		capacity := grow(size)
		buf, err := p.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: p.desc.name + "_vertices",
			Size:  capacity,
			Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("%s: create vertex buffer: %w", p.desc.name, err)
		}
		p.vertices = buf
		p.capacity = capacity
	}
	if err := p.queue.WriteBuffer(p.vertices, 0, data); err != nil {
		return fmt.Errorf("%s: write vertices: %w", p.desc.name, err)
	}
	p.count = uint32(size / p.desc.stride) //nolint:gosec // bounded by the sample cap
	return nil
}

// grow rounds n up to a power of two, at least 4 KiB.
func grow(n uint64) uint64 {
	c := uint64(4096)
	for c < n {
		c <<= 1
	}
	return c
}

// record issues the draw for the uploaded data, if any.
func (p *program) record(rp *wgpu.RenderPassEncoder) {
	if p.count == 0 {
		return
	}
	rp.SetPipeline(p.pipeline)
	rp.SetBindGroup(0, p.bindGroup, nil)
	rp.SetVertexBuffer(0, p.vertices, 0)
	if p.desc.step == gputypes.VertexStepModeInstance {
		rp.Draw(quadVertices, p.count, 0, 0)
		return
	}
	rp.Draw(p.count, 1, 0, 0)
}

// release frees every resource. It is safe to call more than once.
func (p *program) release() {
	if p.vertices != nil {
		p.vertices.Release()
		p.vertices = nil
		p.capacity = 0
		p.count = 0
	}
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	if p.uniforms != nil {
		p.uniforms.Release()
		p.uniforms = nil
	}
	if p.pipeline != nil {
		p.pipeline.Release()
		p.pipeline = nil
	}
	if p.pipeLayout != nil {
		p.pipeLayout.Release()
		p.pipeLayout = nil
	}
	if p.uniformLayout != nil {
		p.uniformLayout.Release()
		p.uniformLayout = nil
	}
	if p.shader != nil {
		p.shader.Release()
		p.shader = nil
	}
}
