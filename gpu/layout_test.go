//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"image"
	"math"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/gogpu/gg"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"

	"github.com/gogpu/spiral/internal/engine"
	"github.com/gogpu/spiral/internal/geom"
	"github.com/gogpu/spiral/internal/particle"
)

func sizeOf(w, h float64) geom.Size { return geom.Size{W: w, H: h} }

func readF32(b []byte, i int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
}

func TestShadersCompile(t *testing.T) {
	for _, desc := range []programDesc{spiralProgram, nodeProgram, particleProgram} {
		t.Run(desc.name, func(t *testing.T) {
			if desc.source == "" {
				t.Fatal("shader source is empty")
			}
			spirv, err := naga.Compile(desc.source)
			if err != nil {
				t.Fatalf("naga.Compile: %v", err)
			}
			if len(spirv) == 0 || len(spirv)%4 != 0 {
				t.Errorf("SPIR-V length %d", len(spirv))
			}
		})
	}
}

var (
	inputRE = regexp.MustCompile(`@location\((\d+)\)\s+(a_\w+)\s*:\s*([\w<>]+)`)

	wgslFormats = map[string]gputypes.VertexFormat{
		"f32":       gputypes.VertexFormatFloat32,
		"vec2<f32>": gputypes.VertexFormatFloat32x2,
		"vec3<f32>": gputypes.VertexFormatFloat32x3,
	}
	formatSize = map[gputypes.VertexFormat]uint64{
		gputypes.VertexFormatFloat32:   4,
		gputypes.VertexFormatFloat32x2: 8,
		gputypes.VertexFormatFloat32x3: 12,
	}
)

// TestShaderContract checks the Go vertex layouts against the attribute
// declarations in the WGSL sources.
func TestShaderContract(t *testing.T) {
	tests := []struct {
		desc     programDesc
		stride   uint64
		uniforms []string
	}{
		{spiralProgram, 12, []string{"u_matrix", "u_time", "u_a", "u_glow_intensity"}},
		{nodeProgram, 28, []string{"u_matrix", "u_resolution", "u_time"}},
		{particleProgram, 28, []string{"u_resolution"}},
	}
	for _, tt := range tests {
		t.Run(tt.desc.name, func(t *testing.T) {
			if tt.desc.stride != tt.stride {
				t.Errorf("stride = %d, want %d", tt.desc.stride, tt.stride)
			}

			matches := inputRE.FindAllStringSubmatch(tt.desc.source, -1)
			if len(matches) != len(tt.desc.attributes) {
				t.Fatalf("WGSL declares %d inputs, Go layout has %d", len(matches), len(tt.desc.attributes))
			}
			var end uint64
			for _, m := range matches {
				loc, _ := strconv.Atoi(m[1])
				attr := tt.desc.attributes[loc]
				if attr.Name != m[2] {
					t.Errorf("location %d: Go %q, WGSL %q", loc, attr.Name, m[2])
				}
				if want := wgslFormats[m[3]]; attr.Format != want {
					t.Errorf("%s: format %v, WGSL type %s", attr.Name, attr.Format, m[3])
				}
				end = max(end, attr.Offset+formatSize[attr.Format])
			}
			if end != tt.desc.stride {
				t.Errorf("attributes end at %d, stride %d", end, tt.desc.stride)
			}

			for _, name := range tt.uniforms {
				if !strings.Contains(tt.desc.source, name+":") {
					t.Errorf("uniform %s not declared", name)
				}
			}
		})
	}
}

func TestVertexLayout(t *testing.T) {
	l := vertexLayout(NodeStride, gputypes.VertexStepModeInstance, nodeAttributes)
	if len(l) != 1 {
		t.Fatalf("got %d buffer layouts", len(l))
	}
	if l[0].ArrayStride != NodeStride || l[0].StepMode != gputypes.VertexStepModeInstance {
		t.Errorf("layout = %+v", l[0])
	}
	for i, a := range l[0].Attributes {
		if a.ShaderLocation != uint32(i) {
			t.Errorf("attribute %d at location %d", i, a.ShaderLocation)
		}
	}
}

func TestUniformSizes(t *testing.T) {
	m := identity()
	size := sizeOf(640, 480)
	if got := len(spiralUniforms(nil, m, 1, 2, 0.5)); got != spiralUniformSize {
		t.Errorf("spiral uniforms = %d bytes", got)
	}
	if got := len(nodeUniforms(nil, m, size, 1)); got != nodeUniformSize {
		t.Errorf("node uniforms = %d bytes", got)
	}
	if got := len(particleUniforms(nil, size)); got != particleUniformSize {
		t.Errorf("particle uniforms = %d bytes", got)
	}

	// Buffers are reused from the start.
	buf := make([]byte, 0, 128)
	buf = spiralUniforms(buf, m, 3, 0, 0.25)
	buf = particleUniforms(buf, size)
	if readF32(buf, 0) != 640 || readF32(buf, 1) != 480 {
		t.Errorf("resolution = %v, %v", readF32(buf, 0), readF32(buf, 1))
	}

	u := spiralUniforms(nil, m, 3, 0, 0.25)
	if readF32(u, 16) != 3 {
		t.Errorf("u_time = %v", readF32(u, 16))
	}
	if a := readF32(u, 17); !(a > 0) {
		t.Errorf("u_a = %v, want > 0", a)
	}
	if readF32(u, 18) != 0.25 {
		t.Errorf("u_glow_intensity = %v", readF32(u, 18))
	}
}

func TestClipMatrix(t *testing.T) {
	size := sizeOf(800, 600)
	viewports := []geom.Viewport{
		{Scale: 1},
		{Scale: 25},
		{Scale: 3.5, OffsetX: 12, OffsetY: -7, Rotation: 0.4},
		{Scale: 0.2, OffsetX: -300, OffsetY: 150, Rotation: -2.1},
	}
	points := []geom.Point{{X: 0, Y: 0}, {X: 10, Y: -4}, {X: -120, Y: 33}}
	for _, v := range viewports {
		m := ClipMatrix(v, size)
		for _, p := range points {
			s := geom.ToScreen(v, p, size)
			wantX := s.X/size.W*2 - 1
			wantY := 1 - s.Y/size.H*2
			x, y := clipPoint(m, p)
			if math.Abs(float64(x)-wantX) > 1e-4 || math.Abs(float64(y)-wantY) > 1e-4 {
				t.Errorf("viewport %+v point %v: clip (%v, %v), want (%v, %v)", v, p, x, y, wantX, wantY)
			}
		}
	}

	// The canvas center is the world origin's image when there is no offset.
	x, y := clipPoint(ClipMatrix(geom.Viewport{Scale: 5, Rotation: 1}, size), geom.Point{})
	if x != 0 || y != 0 {
		t.Errorf("origin maps to (%v, %v)", x, y)
	}
	if ClipMatrix(geom.Viewport{Scale: 1}, sizeOf(0, 10)) != identity() {
		t.Error("empty canvas should give identity")
	}
}

func TestPackSpiral(t *testing.T) {
	samples := []engine.Sample{
		{World: geom.Point{X: 1, Y: 2}, R: 3},
		{World: geom.Point{X: -4, Y: 5}, R: 6.5},
	}
	b := packSpiral(nil, samples)
	if len(b) != len(samples)*SpiralStride {
		t.Fatalf("len = %d", len(b))
	}
	want := []float32{1, 2, 3, -4, 5, 6.5}
	for i, w := range want {
		if got := readF32(b, i); got != w {
			t.Errorf("float %d = %v, want %v", i, got, w)
		}
	}
}

func TestPackNodes(t *testing.T) {
	nodes := []engine.Node{
		{Index: 0, World: geom.Point{X: 10, Y: 20}, Band: 0},
		{Index: 2, World: geom.Point{X: -1, Y: 0}, Band: 3},
	}
	b := packNodes(nil, nodes)
	if len(b) != len(nodes)*NodeStride {
		t.Fatalf("len = %d", len(b))
	}
	second := b[NodeStride:]
	if readF32(second, 0) != -1 || readF32(second, 2) != NodeRadius {
		t.Errorf("center/radius = %v, %v", readF32(second, 0), readF32(second, 2))
	}
	if got := readF32(second, 6); math.Abs(float64(got)-1.4) > 1e-6 {
		t.Errorf("phase offset = %v, want 1.4", got)
	}
	c := gg.Hex("#a78bfa")
	if math.Abs(float64(readF32(second, 3))-c.R) > 1e-6 {
		t.Errorf("color red = %v, want %v", readF32(second, 3), c.R)
	}
}

func TestPackParticles(t *testing.T) {
	ps := []particle.Particle{
		{X: 5, Y: 6, Life: 0.5, Radius: 3, Color: gg.RGBA{R: 1, G: 0.5, B: 0.25, A: 1}},
		{X: 0, Y: 0, Life: -0.2, Radius: 2},
	}
	b := packParticles(nil, ps)
	if len(b) != len(ps)*ParticleStride {
		t.Fatalf("len = %d", len(b))
	}
	want := []float32{5, 6, 1, 0.5, 0.25, 0.5, 3}
	for i, w := range want {
		if got := readF32(b, i); got != w {
			t.Errorf("float %d = %v, want %v", i, got, w)
		}
	}
	if life := readF32(b[ParticleStride:], 5); life != 0 {
		t.Errorf("negative life packed as %v", life)
	}
}

func TestBGRAToRGBA(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 2, 2))
	stride := 256
	src := make([]byte, stride*2)
	copy(src[0:], []byte{1, 2, 3, 4, 5, 6, 7, 8})
	copy(src[stride:], []byte{9, 10, 11, 12, 13, 14, 15, 16})
	bgraToRGBA(dst, src, stride)

	want := []byte{3, 2, 1, 4, 7, 6, 5, 8, 11, 10, 9, 12, 15, 14, 13, 16}
	for i, w := range want {
		if dst.Pix[i] != w {
			t.Fatalf("Pix = %v, want %v", dst.Pix[:16], want)
		}
	}
}

func TestSizes(t *testing.T) {
	if w, h := physical(100, 50, 1.5); w != 150 || h != 75 {
		t.Errorf("physical = %dx%d", w, h)
	}
	if w, h := physical(10, 10, 0); w != 10 || h != 10 {
		t.Errorf("physical with dpr 0 = %dx%d", w, h)
	}
	if got := alignUp(4*100, copyRowAlignment); got != 512 {
		t.Errorf("alignUp = %d", got)
	}
	if got := alignUp(256, copyRowAlignment); got != 256 {
		t.Errorf("alignUp(256) = %d", got)
	}
	tests := []struct{ n, want uint64 }{{1, 4096}, {4096, 4096}, {4097, 8192}, {100000, 131072}}
	for _, tt := range tests {
		if got := grow(tt.n); got != tt.want {
			t.Errorf("grow(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}
