package core

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestEncodeQuadLayout(t *testing.T) {
	rec, err := EncodeQuad(
		Transform2D{Position: mgl32.Vec2{10, 20}, Size: mgl32.Vec2{30, 40}},
		Color{0.1, 0.2, 0.3, 0.4},
	)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	raw := rec.AppendBytes(nil)
	if len(raw) != RecordStride {
		t.Fatalf("expected %d bytes, got %d", RecordStride, len(raw))
	}

	// Position at byte 0, size at byte 8, little-endian floats.
	if got := math.Float32frombits(binary.LittleEndian.Uint32(raw[0:])); got != 10 {
		t.Errorf("pos.x: expected 10, got %v", got)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(raw[4:])); got != 20 {
		t.Errorf("pos.y: expected 20, got %v", got)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(raw[8:])); got != 30 {
		t.Errorf("size.x: expected 30, got %v", got)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(raw[12:])); got != 40 {
		t.Errorf("size.y: expected 40, got %v", got)
	}

	if back := RecordFromBytes(raw); back != rec {
		t.Errorf("byte round trip changed record: %v != %v", back, rec)
	}

	tr, c := DecodeQuad(rec)
	if tr.Position != (mgl32.Vec2{10, 20}) || tr.Size != (mgl32.Vec2{30, 40}) {
		t.Errorf("decoded transform %+v", tr)
	}
	if c != (Color{0.1, 0.2, 0.3, 0.4}) {
		t.Errorf("decoded color %+v", c)
	}
}

func TestEncodePointMarker(t *testing.T) {
	rec, err := EncodePoint(mgl32.Vec2{5, 7}, Red)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if rec.Size() != (mgl32.Vec2{}) {
		t.Errorf("point size field should be the zero marker, got %v", rec.Size())
	}
	if rec.IsArea() {
		t.Error("point record classified as area")
	}

	pos, c := DecodePoint(rec)
	if pos != (mgl32.Vec2{5, 7}) || c != Red {
		t.Errorf("decoded %v %+v", pos, c)
	}
}

func TestEncodeSpriteRoundTrip(t *testing.T) {
	in := Transform2D{Position: mgl32.Vec2{100, 200}, Size: mgl32.Vec2{64, 32}, Rotation: 0.5}
	uv := Region{U: 0.25, V: 0.5, W: 0.25, H: 0.125}
	rec, err := EncodeSprite(in, Color{1, 0.5, 0.25, 1}, &uv)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !rec.IsArea() {
		t.Error("sprite record should classify as area")
	}

	tr, c, region := DecodeSprite(rec)
	if tr.Position != in.Position || tr.Size != in.Size || tr.Rotation != in.Rotation {
		t.Errorf("decoded transform %+v", tr)
	}
	// Color went through 8-bit quantization.
	const colorEps = 1.0 / 255
	for i, pair := range [][2]float32{{c.R, 1}, {c.G, 0.5}, {c.B, 0.25}, {c.A, 1}} {
		if diff := pair[0] - pair[1]; diff > colorEps || diff < -colorEps {
			t.Errorf("color channel %d: %v vs %v", i, pair[0], pair[1])
		}
	}
	// UVs went through 16-bit quantization.
	const uvEps = 1.0 / 65535
	for _, pair := range [][2]float32{
		{region.U, uv.U}, {region.V, uv.V}, {region.W, uv.W}, {region.H, uv.H},
	} {
		if diff := pair[0] - pair[1]; diff > uvEps || diff < -uvEps {
			t.Errorf("uv component: %v vs %v", pair[0], pair[1])
		}
	}
}

func TestEncodeGlyphRoundTrip(t *testing.T) {
	pivot := mgl32.Vec2{320, 240}
	offset := mgl32.Vec2{14.5, -3.25}
	size := mgl32.Vec2{12, 18}
	uvMin := mgl32.Vec2{0.125, 0.0625}

	rec, err := EncodeGlyph(pivot, offset, size, 1.5, 2, uvMin, Yellow)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if rec.Position() != pivot {
		t.Errorf("pivot field: %v", rec.Position())
	}
	if rec.Size() != size {
		t.Errorf("size field: %v", rec.Size())
	}

	gotPivot, gotOffset, gotSize, rot, scale, gotUV, c := DecodeGlyph(rec)
	if gotPivot != pivot || gotSize != size || rot != 1.5 || scale != 2 {
		t.Errorf("decoded pivot=%v size=%v rot=%v scale=%v", gotPivot, gotSize, rot, scale)
	}
	// Offsets are half precision; 14.5 and -3.25 are exact halves.
	if gotOffset != offset {
		t.Errorf("decoded offset %v, expected %v", gotOffset, offset)
	}
	const uvEps = 1.0 / 65535
	if d := gotUV.X() - uvMin.X(); d > uvEps || d < -uvEps {
		t.Errorf("uvMin.x %v vs %v", gotUV.X(), uvMin.X())
	}
	if c != Yellow {
		t.Errorf("decoded color %+v", c)
	}
}

func TestEncodeRejectsInvalid(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))

	tests := []struct {
		name string
		run  func() error
	}{
		{"NaN position", func() error {
			_, err := EncodeQuad(Transform2D{Position: mgl32.Vec2{nan, 0}, Size: mgl32.Vec2{1, 1}}, White)
			return err
		}},
		{"Inf size", func() error {
			_, err := EncodeQuad(Transform2D{Size: mgl32.Vec2{inf, 1}}, White)
			return err
		}},
		{"Zero size quad", func() error {
			_, err := EncodeQuad(Transform2D{Size: mgl32.Vec2{0, 10}}, White)
			return err
		}},
		{"Negative size quad", func() error {
			_, err := EncodeQuad(Transform2D{Size: mgl32.Vec2{-5, 10}}, White)
			return err
		}},
		{"Oversize quad", func() error {
			_, err := EncodeQuad(Transform2D{Size: mgl32.Vec2{MaxExtent, 10}}, White)
			return err
		}},
		{"NaN point", func() error {
			_, err := EncodePoint(mgl32.Vec2{0, nan}, White)
			return err
		}},
		{"Sprite without UV", func() error {
			_, err := EncodeSprite(Transform2D{Size: mgl32.Vec2{1, 1}}, White, nil)
			return err
		}},
		{"Glyph zero size", func() error {
			_, err := EncodeGlyph(mgl32.Vec2{}, mgl32.Vec2{}, mgl32.Vec2{0, 5}, 0, 1, mgl32.Vec2{}, White)
			return err
		}},
		{"Glyph NaN rotation", func() error {
			_, err := EncodeGlyph(mgl32.Vec2{}, mgl32.Vec2{}, mgl32.Vec2{5, 5}, nan, 1, mgl32.Vec2{}, White)
			return err
		}},
		{"Glyph zero scale", func() error {
			_, err := EncodeGlyph(mgl32.Vec2{}, mgl32.Vec2{}, mgl32.Vec2{5, 5}, 0, 0, mgl32.Vec2{}, White)
			return err
		}},
	}

	for _, tc := range tests {
		err := tc.run()
		if !errors.Is(err, ErrInvalidObject) {
			t.Errorf("Test %s: expected ErrInvalidObject, got %v", tc.name, err)
		}
	}
}

func TestEncodeDispatch(t *testing.T) {
	tr := Transform2D{Position: mgl32.Vec2{1, 2}, Size: mgl32.Vec2{3, 4}}
	uv := Region{W: 1, H: 1}

	for _, class := range []DrawClass{ClassQuad, ClassPoint, ClassSprite, ClassGlyph} {
		var region *Region
		if class == ClassSprite || class == ClassGlyph {
			region = &uv
		}
		if _, err := Encode(class, tr, White, region); err != nil {
			t.Errorf("Encode(%s): %v", class, err)
		}
	}

	if _, err := Encode(ClassSprite, tr, White, nil); !errors.Is(err, ErrInvalidObject) {
		t.Errorf("sprite without UV: expected ErrInvalidObject, got %v", err)
	}
	if _, err := Encode(DrawClass(99), tr, White, nil); !errors.Is(err, ErrInvalidObject) {
		t.Errorf("unknown class: expected ErrInvalidObject, got %v", err)
	}
}

func TestHalfPacking(t *testing.T) {
	values := [][2]float32{
		{0, 0},
		{1, -1},
		{0.5, -0.25},
		{128, -512},
		{2048, -4096},
	}
	for _, v := range values {
		x, y := unpackHalf2x16(packHalf2x16(v[0], v[1]))
		if x != v[0] || y != v[1] {
			t.Errorf("half round trip (%v, %v) -> (%v, %v)", v[0], v[1], x, y)
		}
	}

	// Values beyond half range saturate to infinity.
	x, _ := unpackHalf2x16(packHalf2x16(1e20, 0))
	if !math.IsInf(float64(x), 1) {
		t.Errorf("expected +inf for overflow, got %v", x)
	}
}

func TestUnormPacking(t *testing.T) {
	for _, v := range []float32{0, 0.25, 0.5, 0.75, 1} {
		x, y := unpackUnorm2x16(packUnorm2x16(v, 1-v))
		const eps = 1.0 / 65535
		if d := x - v; d > eps || d < -eps {
			t.Errorf("unorm x: %v vs %v", x, v)
		}
		if d := y - (1 - v); d > eps || d < -eps {
			t.Errorf("unorm y: %v vs %v", y, 1-v)
		}
	}

	// Out-of-range inputs clamp.
	if w := packUnorm2x16(-1, 2); w != 0xFFFF0000 {
		t.Errorf("clamp: got %#x", w)
	}
}
