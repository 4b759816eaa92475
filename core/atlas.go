package core

import "github.com/google/uuid"

// AtlasId identifies a texture atlas registered with the renderer.
type AtlasId string

// NewAtlasId allocates a fresh atlas identifier.
func NewAtlasId() AtlasId {
	return AtlasId(uuid.NewString())
}

// Region is a rectangle in normalized atlas coordinates: U,V is the
// top-left corner, W,H the extent. All components lie in [0, 1].
type Region struct {
	U, V float32
	W, H float32
}

// PixelRegion converts a pixel rectangle inside an atlas of the given
// dimensions into a normalized Region.
func PixelRegion(x, y, w, h, atlasW, atlasH int) Region {
	fw := float32(atlasW)
	fh := float32(atlasH)
	return Region{
		U: float32(x) / fw,
		V: float32(y) / fh,
		W: float32(w) / fw,
		H: float32(h) / fh,
	}
}

// Min returns the region's top-left corner.
func (r Region) Min() (float32, float32) { return r.U, r.V }

// Max returns the region's bottom-right corner.
func (r Region) Max() (float32, float32) { return r.U + r.W, r.V + r.H }

// FrameGrid slices an atlas of uniform frames laid out row-major into
// per-frame regions. Sprite animation flipbooks index into the result.
func FrameGrid(frameW, frameH, atlasW, atlasH int) []Region {
	cols := atlasW / frameW
	rows := atlasH / frameH
	regions := make([]Region, 0, cols*rows)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			regions = append(regions, PixelRegion(col*frameW, row*frameH, frameW, frameH, atlasW, atlasH))
		}
	}
	return regions
}
