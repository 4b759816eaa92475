package gpu

import (
	"fmt"
	"image"

	"github.com/cogentcore/webgpu/wgpu"
)

// Texture is a sampled 2D texture with its default view.
type Texture struct {
	Texture *wgpu.Texture
	View    *wgpu.TextureView
	Width   uint32
	Height  uint32
}

func (t *Texture) Release() {
	if t.View != nil {
		t.View.Release()
		t.View = nil
	}
	if t.Texture != nil {
		t.Texture.Release()
		t.Texture = nil
	}
}

func uploadTexture(device *wgpu.Device, label string, format wgpu.TextureFormat, pix []byte, w, h, bytesPerPixel int) (*Texture, error) {
	tex, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Size:          wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
		Format:        format,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("create texture %q: %w", label, err)
	}

	device.GetQueue().WriteTexture(tex.AsImageCopy(), pix, &wgpu.TextureDataLayout{
		Offset:       0,
		BytesPerRow:  uint32(w * bytesPerPixel),
		RowsPerImage: uint32(h),
	}, &wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1})

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("create view %q: %w", label, err)
	}

	return &Texture{Texture: tex, View: view, Width: uint32(w), Height: uint32(h)}, nil
}

// NewRGBATexture uploads an RGBA image, typically a sprite atlas.
func NewRGBATexture(device *wgpu.Device, label string, img *image.RGBA) (*Texture, error) {
	b := img.Bounds()
	return uploadTexture(device, label, wgpu.TextureFormatRGBA8UnormSrgb, img.Pix, b.Dx(), b.Dy(), 4)
}

// NewAlphaTexture uploads a single-channel image, typically a baked
// glyph atlas.
func NewAlphaTexture(device *wgpu.Device, label string, img *image.Alpha) (*Texture, error) {
	b := img.Bounds()
	return uploadTexture(device, label, wgpu.TextureFormatR8Unorm, img.Pix, b.Dx(), b.Dy(), 1)
}
