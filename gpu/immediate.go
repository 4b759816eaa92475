package gpu

import (
	"encoding/binary"
	"math"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/lumen2d/lumen/core"
)

// ImmediateVertexStride is the byte stride of one immediate vertex:
// position vec2 plus color vec4.
const ImmediateVertexStride = 24

// ImmediateBatch accumulates debug line geometry drawn once per frame
// without instancing or culling. The vertex buffer only grows.
type ImmediateBatch struct {
	Device *wgpu.Device

	vertices []byte
	count    uint32
	buffer   *wgpu.Buffer
}

func NewImmediateBatch(device *wgpu.Device) *ImmediateBatch {
	return &ImmediateBatch{Device: device}
}

// Len returns the number of queued vertices.
func (b *ImmediateBatch) Len() int { return int(b.count) }

func (b *ImmediateBatch) vertex(p mgl32.Vec2, c core.Color) {
	var buf [ImmediateVertexStride]byte
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(p.X()))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(p.Y()))
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(c.R))
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(c.G))
	binary.LittleEndian.PutUint32(buf[16:], math.Float32bits(c.B))
	binary.LittleEndian.PutUint32(buf[20:], math.Float32bits(c.A))
	b.vertices = append(b.vertices, buf[:]...)
	b.count++
}

// Line queues a line segment.
func (b *ImmediateBatch) Line(from, to mgl32.Vec2, c core.Color) {
	b.vertex(from, c)
	b.vertex(to, c)
}

// RectOutline queues the four edges of a rectangle.
func (b *ImmediateBatch) RectOutline(pos, size mgl32.Vec2, c core.Color) {
	tl := pos
	tr := pos.Add(mgl32.Vec2{size.X(), 0})
	br := pos.Add(size)
	bl := pos.Add(mgl32.Vec2{0, size.Y()})
	b.Line(tl, tr, c)
	b.Line(tr, br, c)
	b.Line(br, bl, c)
	b.Line(bl, tl, c)
}

// Circle queues a segmented circle outline.
func (b *ImmediateBatch) Circle(center mgl32.Vec2, radius float32, segments int, c core.Color) {
	if segments < 3 {
		segments = 3
	}
	step := 2 * math.Pi / float64(segments)
	prev := center.Add(mgl32.Vec2{radius, 0})
	for i := 1; i <= segments; i++ {
		a := step * float64(i)
		next := center.Add(mgl32.Vec2{
			radius * float32(math.Cos(a)),
			radius * float32(math.Sin(a)),
		})
		b.Line(prev, next, c)
		prev = next
	}
}

// Upload stages the queued vertices, growing the buffer with margin
// when needed. Returns false when nothing is queued.
func (b *ImmediateBatch) Upload() bool {
	if b.count == 0 {
		return false
	}

	size := uint64(len(b.vertices))
	if b.buffer == nil || b.buffer.GetSize() < size {
		if b.buffer != nil {
			b.buffer.Release()
		}
		buf, err := b.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "ImmediateVB",
			Size:  size + 128*ImmediateVertexStride,
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			panic(err)
		}
		b.buffer = buf
	}
	b.Device.GetQueue().WriteBuffer(b.buffer, 0, b.vertices)
	return true
}

// Draw records the immediate draw into an open render pass. Upload must
// have run this frame.
func (b *ImmediateBatch) Draw(pass *wgpu.RenderPassEncoder, pipeline *wgpu.RenderPipeline, cameraBG *wgpu.BindGroup) {
	if b.count == 0 || b.buffer == nil {
		return
	}
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, cameraBG, nil)
	pass.SetVertexBuffer(0, b.buffer, 0, uint64(len(b.vertices)))
	pass.Draw(b.count, 1, 0, 0)
}

// Clear drops the queued vertices but keeps capacity.
func (b *ImmediateBatch) Clear() {
	b.vertices = b.vertices[:0]
	b.count = 0
}
