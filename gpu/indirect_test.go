package gpu

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/lumen2d/lumen/core"
)

func TestDrawIndirectArgsMarshal(t *testing.T) {
	args := DrawIndirectArgs{
		VertexCount:   6,
		InstanceCount: 0,
		FirstVertex:   0,
		FirstInstance: 0,
	}

	raw := args.Marshal()
	if len(raw) != DrawIndirectSize {
		t.Fatalf("expected %d bytes, got %d", DrawIndirectSize, len(raw))
	}
	if binary.LittleEndian.Uint32(raw[0:]) != 6 {
		t.Errorf("vertex count at offset 0: %d", binary.LittleEndian.Uint32(raw[0:]))
	}
	if binary.LittleEndian.Uint32(raw[4:]) != 0 {
		t.Errorf("instance count at offset 4 should be zero before dispatch")
	}

	if back := UnmarshalDrawIndirectArgs(raw); back != args {
		t.Errorf("round trip: %+v != %+v", back, args)
	}
}

func TestClassVertexCounts(t *testing.T) {
	tests := []struct {
		class    core.DrawClass
		expected uint32
	}{
		{core.ClassQuad, 6},
		{core.ClassPoint, 1},
		{core.ClassSprite, 6},
		{core.ClassGlyph, 6},
	}
	for _, tc := range tests {
		if got := ClassVertexCount(tc.class); got != tc.expected {
			t.Errorf("%s: expected %d vertices, got %d", tc.class, tc.expected, got)
		}
		args := ResetArgs(tc.class)
		if args.VertexCount != tc.expected || args.InstanceCount != 0 {
			t.Errorf("%s reset args: %+v", tc.class, args)
		}
	}
}

func TestPackCullParams(t *testing.T) {
	planes := core.ScreenBounds(800, 600)
	buf := packCullParams(planes, 1234)

	if len(buf) != CullParamsSize {
		t.Fatalf("expected %d bytes, got %d", CullParamsSize, len(buf))
	}
	// Right plane is the second entry: (-1, 0, 0, 800).
	if got := math.Float32frombits(binary.LittleEndian.Uint32(buf[16:])); got != -1 {
		t.Errorf("right plane normal x: %v", got)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(buf[28:])); got != 800 {
		t.Errorf("right plane distance: %v", got)
	}
	if got := binary.LittleEndian.Uint32(buf[96:]); got != 1234 {
		t.Errorf("instance count at offset 96: %d", got)
	}
}

func TestPackCamera(t *testing.T) {
	vp := mgl32.Ortho(0, 800, 600, 0, -1, 1)
	buf := packCamera(vp, mgl32.Vec2{800, 600})

	if len(buf) != CameraUniformSize {
		t.Fatalf("expected %d bytes, got %d", CameraUniformSize, len(buf))
	}
	for i := 0; i < 16; i++ {
		got := math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
		if got != vp[i] {
			t.Errorf("matrix element %d: %v != %v", i, got, vp[i])
		}
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(buf[64:])); got != 800 {
		t.Errorf("view size x: %v", got)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(buf[68:])); got != 600 {
		t.Errorf("view size y: %v", got)
	}
}
