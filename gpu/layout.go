//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"math"

	"github.com/chewxy/math32"
	"github.com/gogpu/gg"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/spiral/internal/engine"
	"github.com/gogpu/spiral/internal/geom"
	"github.com/gogpu/spiral/internal/particle"
	"github.com/gogpu/spiral/internal/phase"
)

// Byte strides of the three vertex streams.
//
// Spiral, per vertex:
//
//	a_position (vec2<f32>) = 8 bytes  (location 0)
//	a_radius   (f32)       = 4 bytes  (location 1)
//
// Node, per instance:
//
//	a_center       (vec2<f32>) = 8 bytes  (location 0)
//	a_radius       (f32)       = 4 bytes  (location 1)
//	a_color        (vec3<f32>) = 12 bytes (location 2)
//	a_phase_offset (f32)       = 4 bytes  (location 3)
//
// Particle, per instance:
//
//	a_position (vec2<f32>) = 8 bytes  (location 0)
//	a_color    (vec3<f32>) = 12 bytes (location 1)
//	a_life     (f32)       = 4 bytes  (location 2)
//	a_radius   (f32)       = 4 bytes  (location 3)
const (
	SpiralStride   = 12
	NodeStride     = 28
	ParticleStride = 28
)

// Uniform block sizes. Matrices are column-major mat4x4<f32>.
const (
	spiralUniformSize   = 80 // u_matrix, u_time, u_a, u_glow_intensity, pad
	nodeUniformSize     = 80 // u_matrix, u_resolution, u_time, pad
	particleUniformSize = 16 // u_resolution, pad
)

// quadVertices is the vertex count of one instanced quad.
const quadVertices = 6

// NodeRadius is the base node radius in pixels.
const NodeRadius = 12

// Attribute describes one shader input for contract checks.
type Attribute struct {
	Name   string
	Format gputypes.VertexFormat
	Offset uint64
}

var (
	spiralAttributes = []Attribute{
		{"a_position", gputypes.VertexFormatFloat32x2, 0},
		{"a_radius", gputypes.VertexFormatFloat32, 8},
	}
	nodeAttributes = []Attribute{
		{"a_center", gputypes.VertexFormatFloat32x2, 0},
		{"a_radius", gputypes.VertexFormatFloat32, 8},
		{"a_color", gputypes.VertexFormatFloat32x3, 12},
		{"a_phase_offset", gputypes.VertexFormatFloat32, 24},
	}
	particleAttributes = []Attribute{
		{"a_position", gputypes.VertexFormatFloat32x2, 0},
		{"a_color", gputypes.VertexFormatFloat32x3, 8},
		{"a_life", gputypes.VertexFormatFloat32, 20},
		{"a_radius", gputypes.VertexFormatFloat32, 24},
	}
)

func vertexLayout(stride uint64, step gputypes.VertexStepMode, attrs []Attribute) []gputypes.VertexBufferLayout {
	out := make([]gputypes.VertexAttribute, len(attrs))
	for i, a := range attrs {
		out[i] = gputypes.VertexAttribute{
			Format:         a.Format,
			Offset:         a.Offset,
			ShaderLocation: uint32(i), //nolint:gosec // a handful of attributes
		}
	}
	return []gputypes.VertexBufferLayout{{
		ArrayStride: stride,
		StepMode:    step,
		Attributes:  out,
	}}
}

// writer appends little-endian float32 values.
type writer struct {
	buf []byte
}

func (w *writer) f32(v float32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, math.Float32bits(v))
}

func (w *writer) f64(v float64) { w.f32(float32(v)) }

func (w *writer) rgb(c gg.RGBA) {
	w.f64(c.R)
	w.f64(c.G)
	w.f64(c.B)
}

func (w *writer) mat(m [16]float32) {
	for _, v := range m {
		w.f32(v)
	}
}

// packSpiral appends one (x, y, radius) vertex per sample.
func packSpiral(dst []byte, samples []engine.Sample) []byte {
	w := writer{buf: dst}
	for i := range samples {
		s := &samples[i]
		w.f64(s.World.X)
		w.f64(s.World.Y)
		w.f64(s.R)
	}
	return w.buf
}

// packNodes appends one instance per node, colored by its band.
func packNodes(dst []byte, nodes []engine.Node) []byte {
	w := writer{buf: dst}
	for _, n := range nodes {
		w.f64(n.World.X)
		w.f64(n.World.Y)
		w.f32(NodeRadius)
		w.rgb(phase.BandRGB(n.Band))
		w.f64(n.PulseOffset())
	}
	return w.buf
}

// packParticles appends one instance per live particle.
func packParticles(dst []byte, ps []particle.Particle) []byte {
	w := writer{buf: dst}
	for i := range ps {
		p := &ps[i]
		w.f64(p.X)
		w.f64(p.Y)
		w.rgb(p.Color)
		w.f32(math32.Max(0, float32(p.Life)))
		w.f64(p.Radius)
	}
	return w.buf
}

// ClipMatrix maps world coordinates to clip space for viewport v over a
// canvas of the given logical size. It is ToScreen followed by the
// pixel-to-clip flip, as a column-major 4x4 matrix.
func ClipMatrix(v geom.Viewport, size geom.Size) [16]float32 {
	if size.W <= 0 || size.H <= 0 {
		return identity()
	}
	c, s := math.Cos(v.Rotation), math.Sin(v.Rotation)
	kx := 2 * v.Scale / size.W
	ky := 2 * v.Scale / size.H
	tx := kx * (c*v.OffsetX - s*v.OffsetY)
	ty := -ky * (s*v.OffsetX + c*v.OffsetY)
	return [16]float32{
		float32(kx * c), float32(-ky * s), 0, 0,
		float32(-kx * s), float32(-ky * c), 0, 0,
		0, 0, 1, 0,
		float32(tx), float32(ty), 0, 1,
	}
}

func identity() [16]float32 {
	return [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
}

// clipPoint applies m to a world point, for tests and hit checks.
func clipPoint(m [16]float32, p geom.Point) (x, y float32) {
	px, py := float32(p.X), float32(p.Y)
	return m[0]*px + m[4]*py + m[12], m[1]*px + m[5]*py + m[13]
}

func spiralUniforms(dst []byte, m [16]float32, t, a, glow float64) []byte {
	w := writer{buf: dst[:0]}
	w.mat(m)
	w.f64(t)
	w.f32(math32.Max(float32(a), 1e-8))
	w.f64(glow)
	w.f32(0)
	return w.buf
}

func nodeUniforms(dst []byte, m [16]float32, size geom.Size, t float64) []byte {
	w := writer{buf: dst[:0]}
	w.mat(m)
	w.f64(size.W)
	w.f64(size.H)
	w.f64(t)
	w.f32(0)
	return w.buf
}

func particleUniforms(dst []byte, size geom.Size) []byte {
	w := writer{buf: dst[:0]}
	w.f64(size.W)
	w.f64(size.H)
	w.f32(0)
	w.f32(0)
	return w.buf
}
