package gpu

import (
	"encoding/binary"

	"github.com/lumen2d/lumen/core"
)

// DrawIndirectSize is the byte size of non-indexed indirect draw
// arguments.
const DrawIndirectSize = 16

// DrawIndirectArgs mirrors the GPU-side indirect draw argument block.
// The host writes it with InstanceCount zero before the cull dispatch;
// the cull kernel's atomic counter fills InstanceCount in. The value is
// never read back.
type DrawIndirectArgs struct {
	VertexCount   uint32
	InstanceCount uint32
	FirstVertex   uint32
	FirstInstance uint32
}

// Marshal packs the arguments little-endian for WriteBuffer.
func (a DrawIndirectArgs) Marshal() []byte {
	buf := make([]byte, DrawIndirectSize)
	binary.LittleEndian.PutUint32(buf[0:], a.VertexCount)
	binary.LittleEndian.PutUint32(buf[4:], a.InstanceCount)
	binary.LittleEndian.PutUint32(buf[8:], a.FirstVertex)
	binary.LittleEndian.PutUint32(buf[12:], a.FirstInstance)
	return buf
}

// UnmarshalDrawIndirectArgs reads an argument block back from bytes.
func UnmarshalDrawIndirectArgs(buf []byte) DrawIndirectArgs {
	return DrawIndirectArgs{
		VertexCount:   binary.LittleEndian.Uint32(buf[0:]),
		InstanceCount: binary.LittleEndian.Uint32(buf[4:]),
		FirstVertex:   binary.LittleEndian.Uint32(buf[8:]),
		FirstInstance: binary.LittleEndian.Uint32(buf[12:]),
	}
}

// ClassVertexCount returns the fixed per-instance vertex count a draw
// class expands to: six for the quad-shaped classes, one for points.
func ClassVertexCount(class core.DrawClass) uint32 {
	if class == core.ClassPoint {
		return 1
	}
	return 6
}

// ResetArgs builds the argument block uploaded before each cull
// dispatch: full vertex count, zero instances.
func ResetArgs(class core.DrawClass) DrawIndirectArgs {
	return DrawIndirectArgs{VertexCount: ClassVertexCount(class)}
}
