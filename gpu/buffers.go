package gpu

import (
	"encoding/binary"
	"math"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/lumen2d/lumen/core"
)

const (
	// HeadroomInstances is extra capacity added when an instance buffer
	// grows, so steady frame-to-frame jitter does not recreate buffers.
	HeadroomInstances = 256 * core.RecordStride

	// CameraUniformSize is the byte size of the camera uniform block:
	// view-projection matrix plus viewport size, padded to 16.
	CameraUniformSize = 80

	// CullParamsSize is the byte size of the cull uniform block: six
	// planes plus the instance count, padded to 16.
	CullParamsSize = 6*16 + 16
)

// classBuffers is the per-class GPU buffer triple: the raw uploaded
// records, the cull-compacted copy the vertex stage reads, and the
// indirect argument block the cull kernel counts into.
type classBuffers struct {
	Input    *wgpu.Buffer
	Output   *wgpu.Buffer
	Indirect *wgpu.Buffer
	Params   *wgpu.Buffer
	Count    uint32
}

// BufferManager owns the per-class instance buffers and the camera
// uniform. Buffers only grow; growth recreates them with headroom and
// reports the recreation so dependent bind groups can be rebuilt.
type BufferManager struct {
	Device *wgpu.Device

	CameraBuf *wgpu.Buffer

	classes [core.NumDrawClasses]classBuffers
	staging []byte
}

func NewBufferManager(device *wgpu.Device) *BufferManager {
	return &BufferManager{Device: device}
}

// Class exposes the buffer triple for bind group and draw call setup.
func (m *BufferManager) Class(class core.DrawClass) *classBuffers {
	return &m.classes[class]
}

func (m *BufferManager) ensureBuffer(name string, buf **wgpu.Buffer, data []byte, usage wgpu.BufferUsage, headroom int) bool {
	neededSize := uint64(len(data) + headroom)
	if neededSize%4 != 0 {
		neededSize += 4 - (neededSize % 4)
	}

	current := *buf
	if current == nil || current.GetSize() < neededSize {
		if current != nil {
			current.Release()
		}

		newBuf, err := m.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: name,
			Size:  neededSize,
			Usage: usage | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			panic(err)
		}
		*buf = newBuf

		if len(data) > 0 {
			m.Device.GetQueue().WriteBuffer(*buf, 0, data)
		}
		return true
	}
	if len(data) > 0 {
		m.Device.GetQueue().WriteBuffer(*buf, 0, data)
	}
	return false
}

// UploadBatch stages a batch's records into the class's input buffer
// and sizes the compacted output to match. An empty batch uploads
// nothing. Returns true when any buffer was recreated, which
// invalidates bind groups referencing it.
func (m *BufferManager) UploadBatch(batch *core.Batch) bool {
	cb := &m.classes[batch.Class()]
	cb.Count = uint32(batch.Len())
	if batch.Len() == 0 {
		return false
	}

	m.staging = batch.Bytes(m.staging[:0])

	name := batch.Class().String()
	recreated := m.ensureBuffer(name+"InstanceInput", &cb.Input, m.staging,
		wgpu.BufferUsageStorage, HeadroomInstances)

	// The compacted output never holds more than the input; size it to
	// the input's capacity so growth stays in lockstep.
	outSize := cb.Input.GetSize()
	if cb.Output == nil || cb.Output.GetSize() < outSize {
		if cb.Output != nil {
			cb.Output.Release()
		}
		out, err := m.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: name + "InstanceCompacted",
			Size:  outSize,
			Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageVertex,
		})
		if err != nil {
			panic(err)
		}
		cb.Output = out
		recreated = true
	}

	if cb.Indirect == nil {
		ind, err := m.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: name + "IndirectArgs",
			Size:  DrawIndirectSize,
			Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageIndirect | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			panic(err)
		}
		cb.Indirect = ind
		recreated = true
	}
	if cb.Params == nil {
		params, err := m.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: name + "CullParams",
			Size:  CullParamsSize,
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			panic(err)
		}
		cb.Params = params
		recreated = true
	}

	return recreated
}

// ResetIndirect writes the pre-dispatch argument block: the class's
// vertex count with zero instances, so a dispatch that culls everything
// leaves a draw that touches no vertices.
func (m *BufferManager) ResetIndirect(class core.DrawClass) {
	cb := &m.classes[class]
	if cb.Indirect == nil {
		return
	}
	m.Device.GetQueue().WriteBuffer(cb.Indirect, 0, ResetArgs(class).Marshal())
}

// packCullParams lays out the cull uniform block: six planes at offset
// 0, the record count at offset 96, padded to 112.
func packCullParams(planes core.BoundPlanes, count uint32) []byte {
	buf := make([]byte, CullParamsSize)
	for i, p := range planes {
		for j := 0; j < 4; j++ {
			binary.LittleEndian.PutUint32(buf[i*16+j*4:], math.Float32bits(p[j]))
		}
	}
	binary.LittleEndian.PutUint32(buf[96:], count)
	return buf
}

// packCamera lays out the camera uniform block: column-major matrix at
// offset 0, viewport size at 64, padded to 80.
func packCamera(viewProj mgl32.Mat4, viewSize mgl32.Vec2) []byte {
	buf := make([]byte, CameraUniformSize)
	for i := 0; i < 16; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(viewProj[i]))
	}
	binary.LittleEndian.PutUint32(buf[64:], math.Float32bits(viewSize.X()))
	binary.LittleEndian.PutUint32(buf[68:], math.Float32bits(viewSize.Y()))
	return buf
}

// WriteCullParams uploads the plane set and record count for one
// class's dispatch. Each class has its own uniform block because every
// queued write lands before the submitted passes execute.
func (m *BufferManager) WriteCullParams(class core.DrawClass, planes core.BoundPlanes) {
	cb := &m.classes[class]
	if cb.Params == nil {
		return
	}
	m.Device.GetQueue().WriteBuffer(cb.Params, 0, packCullParams(planes, cb.Count))
}

// UpdateCamera uploads the camera uniform block.
func (m *BufferManager) UpdateCamera(viewProj mgl32.Mat4, viewSize mgl32.Vec2) {
	buf := packCamera(viewProj, viewSize)

	if m.CameraBuf == nil {
		cam, err := m.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "CameraUB",
			Size:  CameraUniformSize,
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			panic(err)
		}
		m.CameraBuf = cam
	}
	m.Device.GetQueue().WriteBuffer(m.CameraBuf, 0, buf)
}

// Release frees every owned buffer.
func (m *BufferManager) Release() {
	for i := range m.classes {
		cb := &m.classes[i]
		for _, b := range []*wgpu.Buffer{cb.Input, cb.Output, cb.Indirect, cb.Params} {
			if b != nil {
				b.Release()
			}
		}
		m.classes[i] = classBuffers{}
	}
	if m.CameraBuf != nil {
		m.CameraBuf.Release()
		m.CameraBuf = nil
	}
}
