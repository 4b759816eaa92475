package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Transform2D is the transform consumed by the instance encoders: a
// pixel-space position, a pixel extent, and a z rotation in radians.
type Transform2D struct {
	Position mgl32.Vec2
	Size     mgl32.Vec2
	Rotation float32
}

func NewTransform2D() Transform2D {
	return Transform2D{Size: mgl32.Vec2{1, 1}}
}

func (t Transform2D) WithPosition(x, y float32) Transform2D {
	t.Position = mgl32.Vec2{x, y}
	return t
}

func (t Transform2D) WithSize(w, h float32) Transform2D {
	t.Size = mgl32.Vec2{w, h}
	return t
}

func (t Transform2D) WithRotation(radians float32) Transform2D {
	t.Rotation = radians
	return t
}

// Bounds returns the axis-aligned extent [min, max] of the unrotated
// transform, origin at the top-left corner.
func (t Transform2D) Bounds() (mgl32.Vec2, mgl32.Vec2) {
	return t.Position, t.Position.Add(t.Size)
}
