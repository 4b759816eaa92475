package core

import "github.com/go-gl/mathgl/mgl32"

// Color is a straight-alpha RGBA color with float channels in [0, 1].
type Color struct {
	R, G, B, A float32
}

var (
	White       = Color{1, 1, 1, 1}
	Black       = Color{0, 0, 0, 1}
	Red         = Color{1, 0, 0, 1}
	Green       = Color{0, 1, 0, 1}
	Blue        = Color{0, 0, 1, 1}
	Yellow      = Color{1, 1, 0, 1}
	Transparent = Color{0, 0, 0, 0}
)

func RGB(r, g, b float32) Color {
	return Color{r, g, b, 1}
}

func RGBA(r, g, b, a float32) Color {
	return Color{r, g, b, a}
}

func (c Color) Vec4() mgl32.Vec4 {
	return mgl32.Vec4{c.R, c.G, c.B, c.A}
}

// WithAlpha returns the color with its alpha channel replaced.
func (c Color) WithAlpha(a float32) Color {
	c.A = a
	return c
}

// PackRGBA8 packs the color into a single word, one byte per channel,
// R in the low byte. Matches WGSL unpack4x8unorm.
func (c Color) PackRGBA8() uint32 {
	return uint32(unorm8(c.R)) |
		uint32(unorm8(c.G))<<8 |
		uint32(unorm8(c.B))<<16 |
		uint32(unorm8(c.A))<<24
}

// UnpackRGBA8 is the inverse of PackRGBA8.
func UnpackRGBA8(w uint32) Color {
	return Color{
		R: float32(w&0xFF) / 255.0,
		G: float32(w>>8&0xFF) / 255.0,
		B: float32(w>>16&0xFF) / 255.0,
		A: float32(w>>24&0xFF) / 255.0,
	}
}

func unorm8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255.0 + 0.5)
}
