package core

import (
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
)

// CullWorkgroupSize is the number of records one cull workgroup (or one
// reference-kernel chunk) handles.
const CullWorkgroupSize = 64

// BoundPlanes are the six half-space planes visibility is tested
// against, as (a, b, c, d) with the visible side at ax+by+cz+d >= 0.
// For the 2D renderer only the four screen edges constrain; the last
// two planes are degenerate always-pass entries so the kernel layout
// matches a full frustum.
type BoundPlanes [6]mgl32.Vec4

// ScreenBounds builds the planes for a pixel-space viewport with the
// origin at the top-left corner. Objects exactly on an edge count as
// visible.
func ScreenBounds(width, height float32) BoundPlanes {
	return BoundPlanes{
		{1, 0, 0, 0},       // left
		{-1, 0, 0, width},  // right
		{0, 1, 0, 0},       // top
		{0, -1, 0, height}, // bottom
		{0, 0, 0, 1},       // always pass
		{0, 0, 0, 1},       // always pass
	}
}

// ExtractPlanes derives bound planes from a view-projection matrix by
// the row-combination method, normalized to unit normals. Cameras that
// pan or zoom use this instead of ScreenBounds.
func ExtractPlanes(viewProj mgl32.Mat4) BoundPlanes {
	row := func(i int) mgl32.Vec4 {
		return mgl32.Vec4{viewProj.At(i, 0), viewProj.At(i, 1), viewProj.At(i, 2), viewProj.At(i, 3)}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	planes := BoundPlanes{
		r3.Add(r0), // left
		r3.Sub(r0), // right
		r3.Add(r1), // bottom
		r3.Sub(r1), // top
		r3.Add(r2), // near
		r3.Sub(r2), // far
	}
	for i, p := range planes {
		n := mgl32.Vec3{p.X(), p.Y(), p.Z()}
		if l := n.Len(); l > 0 {
			planes[i] = p.Mul(1 / l)
		}
	}
	return planes
}

// visible runs the per-record test the compute kernel runs: a point
// record must lie on the visible side of every plane; an area record
// passes if its positive vertex against each plane does.
func (p BoundPlanes) visible(r InstanceRecord) bool {
	pos := r.Position()
	if r.IsArea() {
		size := r.Size()
		for _, plane := range p {
			vx, vy := pos.X(), pos.Y()
			if plane.X() >= 0 {
				vx += size.X()
			}
			if plane.Y() >= 0 {
				vy += size.Y()
			}
			if plane.X()*vx+plane.Y()*vy+plane.W() < 0 {
				return false
			}
		}
		return true
	}
	for _, plane := range p {
		if plane.X()*pos.X()+plane.Y()*pos.Y()+plane.W() < 0 {
			return false
		}
	}
	return true
}

// CullRecords compacts the visible subset of records into a new slice,
// processing chunks of CullWorkgroupSize concurrently and reserving
// output slots with an atomic counter the way the GPU pass does. Slot
// order is nondeterministic; callers compare results as sets.
func CullRecords(planes BoundPlanes, records []InstanceRecord) []InstanceRecord {
	if len(records) == 0 {
		return nil
	}
	out := make([]InstanceRecord, len(records))
	var count atomic.Uint32
	var wg sync.WaitGroup

	for start := 0; start < len(records); start += CullWorkgroupSize {
		end := start + CullWorkgroupSize
		if end > len(records) {
			end = len(records)
		}
		wg.Add(1)
		go func(chunk []InstanceRecord) {
			defer wg.Done()
			for _, r := range chunk {
				if planes.visible(r) {
					out[count.Add(1)-1] = r
				}
			}
		}(records[start:end])
	}
	wg.Wait()
	return out[:count.Load()]
}

// CountVisible returns how many records pass the visibility test
// without compacting them.
func CountVisible(planes BoundPlanes, records []InstanceRecord) int {
	n := 0
	for _, r := range records {
		if planes.visible(r) {
			n++
		}
	}
	return n
}
