package core

import "github.com/go-gl/mathgl/mgl32"

// Camera2D maps pixel space to clip space with the origin at the
// top-left corner and y growing downward. Position pans the view;
// Zoom scales around the viewport center.
type Camera2D struct {
	Position mgl32.Vec2
	Zoom     float32

	width  float32
	height float32
}

// NewCamera2D returns a camera for the given viewport in pixels.
func NewCamera2D(width, height float32) *Camera2D {
	return &Camera2D{
		Zoom:   1,
		width:  width,
		height: height,
	}
}

// Resize updates the viewport dimensions.
func (c *Camera2D) Resize(width, height float32) {
	c.width = width
	c.height = height
}

// ViewportSize returns the viewport dimensions in pixels.
func (c *Camera2D) ViewportSize() mgl32.Vec2 {
	return mgl32.Vec2{c.width, c.height}
}

// ViewProjection builds the combined matrix uploaded to the vertex
// stages each frame.
func (c *Camera2D) ViewProjection() mgl32.Mat4 {
	proj := mgl32.Ortho(0, c.width, c.height, 0, -1, 1)
	zoom := c.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	view := mgl32.Translate3D(c.width/2, c.height/2, 0).
		Mul4(mgl32.Scale3D(zoom, zoom, 1)).
		Mul4(mgl32.Translate3D(-c.width/2-c.Position.X(), -c.height/2-c.Position.Y(), 0))
	return proj.Mul4(view)
}

// Planes returns the visibility bound planes for the current view. An
// unmoved camera at zoom 1 yields the plain screen-edge planes.
func (c *Camera2D) Planes() BoundPlanes {
	if c.Position == (mgl32.Vec2{}) && (c.Zoom == 1 || c.Zoom == 0) {
		return ScreenBounds(c.width, c.height)
	}
	zoom := c.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	// Visible world rectangle after pan and zoom.
	halfW := c.width / (2 * zoom)
	halfH := c.height / (2 * zoom)
	cx := c.width/2 + c.Position.X()
	cy := c.height/2 + c.Position.Y()
	return BoundPlanes{
		{1, 0, 0, -(cx - halfW)},
		{-1, 0, 0, cx + halfW},
		{0, 1, 0, -(cy - halfH)},
		{0, -1, 0, cy + halfH},
		{0, 0, 0, 1},
		{0, 0, 0, 1},
	}
}
