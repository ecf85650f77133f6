//go:build !nogpu

package gpu

import (
	"context"
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"

	"github.com/gogpu/spiral"
)

const targetFormat = gputypes.TextureFormatBGRA8Unorm

// copyRowAlignment is the WebGPU bytesPerRow alignment for buffer copies.
const copyRowAlignment = 256

// target is the offscreen color attachment plus its readback buffer.
type target struct {
	device *wgpu.Device

	tex     *wgpu.Texture
	view    *wgpu.TextureView
	staging *wgpu.Buffer

	width, height uint32
	rowBytes      uint32
	img           *image.RGBA
}

// ensure (re)creates the texture when the physical size changes.
func (t *target) ensure(w, h uint32) error {
	if t.tex != nil && t.width == w && t.height == h {
		return nil
	}
	t.release()
	if w == 0 || h == 0 {
		return fmt.Errorf("%w: target size %dx%d", spiral.ErrNoSurface, w, h)
	}

	size := wgpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1}
	tex, err := t.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "spiral_target",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        targetFormat,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create target texture: %w", err)
	}
	t.tex = tex

	view, err := t.device.CreateTextureView(tex, &wgpu.TextureViewDescriptor{
		Label:         "spiral_target_view",
		Format:        targetFormat,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		t.release()
		return fmt.Errorf("create target view: %w", err)
	}
	t.view = view

	rowBytes := alignUp(w*4, copyRowAlignment)
	staging, err := t.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "spiral_staging",
		Size:  uint64(rowBytes) * uint64(h),
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		t.release()
		return fmt.Errorf("create staging buffer: %w", err)
	}
	t.staging = staging

	t.width, t.height, t.rowBytes = w, h, rowBytes
	t.img = image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	return nil
}

func alignUp(n, a uint32) uint32 {
	return (n + a - 1) / a * a
}

// encodeCopy records the texture-to-staging copy after the render pass.
func (t *target) encodeCopy(enc *wgpu.CommandEncoder) {
	enc.TransitionTextures([]wgpu.TextureBarrier{{
		Texture: t.tex,
		Usage: wgpu.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	enc.CopyTextureToBuffer(t.tex, t.staging, []wgpu.BufferTextureCopy{{
		BufferLayout: wgpu.ImageDataLayout{Offset: 0, BytesPerRow: t.rowBytes, RowsPerImage: t.height},
		TextureBase:  wgpu.ImageCopyTexture{Texture: t.tex, MipLevel: 0},
		Size:         wgpu.Extent3D{Width: t.width, Height: t.height, DepthOrArrayLayers: 1},
	}})
}

// readback maps the staging buffer and converts it into t.img. The image
// is reused across frames.
func (t *target) readback(ctx context.Context) (*image.RGBA, error) {
	size := uint64(t.rowBytes) * uint64(t.height)
	if err := t.staging.Map(ctx, wgpu.MapModeRead, 0, size); err != nil {
		return nil, fmt.Errorf("map staging: %w", err)
	}
	rng, err := t.staging.MappedRange(0, size)
	if err != nil {
		if err := t.staging.Unmap(); err != nil {
			spiral.Logger().Warn("gpu: unmap failed", "err", err)
		}
		return nil, fmt.Errorf("mapped range: %w", err)
	}
	bgraToRGBA(t.img, rng.Bytes(), int(t.rowBytes))
	rng.Release()
	if err := t.staging.Unmap(); err != nil {
		spiral.Logger().Warn("gpu: unmap failed", "err", err)
	}
	return t.img, nil
}

// bgraToRGBA copies padded BGRA rows into dst, swapping red and blue.
func bgraToRGBA(dst *image.RGBA, src []byte, srcStride int) {
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	for y := 0; y < h; y++ {
		row := src[y*srcStride:]
		out := dst.Pix[y*dst.Stride:]
		for x := 0; x < w; x++ {
			i := x * 4
			out[i+0] = row[i+2]
			out[i+1] = row[i+1]
			out[i+2] = row[i+0]
			out[i+3] = row[i+3]
		}
	}
}

// release frees the texture, view and staging buffer. It is safe to call
// more than once.
func (t *target) release() {
	if t.staging != nil {
		t.staging.Release()
		t.staging = nil
	}
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	if t.tex != nil {
		t.tex.Release()
		t.tex = nil
	}
	t.width, t.height, t.rowBytes = 0, 0, 0
	t.img = nil
}
