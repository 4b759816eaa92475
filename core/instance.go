package core

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// DrawClass selects the instance layout and pipeline a record is drawn
// with. Records of different classes never share a batch.
type DrawClass uint8

const (
	// ClassQuad draws filled axis-aligned rectangles.
	ClassQuad DrawClass = iota
	// ClassPoint draws flat-colored single-pixel primitives.
	ClassPoint
	// ClassSprite draws tinted textured quads addressed into an atlas.
	ClassSprite
	// ClassGlyph draws text glyphs rotating rigidly about a shared pivot.
	ClassGlyph

	NumDrawClasses = 4
)

func (c DrawClass) String() string {
	switch c {
	case ClassQuad:
		return "quad"
	case ClassPoint:
		return "point"
	case ClassSprite:
		return "sprite"
	case ClassGlyph:
		return "glyph"
	}
	return fmt.Sprintf("class(%d)", uint8(c))
}

const (
	// RecordWords is the number of 4-byte words in one instance record.
	RecordWords = 8
	// RecordStride is the byte stride shared by every draw class routed
	// through the culling pass. The cull kernel assumes exactly this.
	RecordStride = RecordWords * 4

	// MaxExtent bounds the open interval (0, MaxExtent) inside which a
	// record's size field classifies it as an area object. Encoders
	// reject sized records outside the interval so the kernel's
	// size-magnitude classification cannot misfire.
	MaxExtent = 10000.0
)

// InstanceRecord is one drawable object packed for the GPU: eight
// little-endian words, position at word 0, size-or-marker at word 2.
// The remaining words hold color/rotation/UV depending on the draw
// class. Records are built once per object per frame by the encoders,
// copied verbatim into batches, read by the cull kernel, and discarded
// at the frame boundary.
type InstanceRecord [RecordWords]uint32

// Record word indices shared by all classes.
const (
	wordPosX  = 0
	wordPosY  = 1
	wordSizeX = 2
	wordSizeY = 3
)

// Position reads the record's position field.
func (r InstanceRecord) Position() mgl32.Vec2 {
	return mgl32.Vec2{
		math.Float32frombits(r[wordPosX]),
		math.Float32frombits(r[wordPosY]),
	}
}

// Size reads the record's size-or-marker field. A point record carries
// (0, 0) here.
func (r InstanceRecord) Size() mgl32.Vec2 {
	return mgl32.Vec2{
		math.Float32frombits(r[wordSizeX]),
		math.Float32frombits(r[wordSizeY]),
	}
}

// IsArea reports whether the size field classifies this record as an
// area object: both components strictly inside (0, MaxExtent).
// Everything else is treated as a single point.
func (r InstanceRecord) IsArea() bool {
	s := r.Size()
	return s.X() > 0 && s.X() < MaxExtent && s.Y() > 0 && s.Y() < MaxExtent
}

// AppendBytes appends the record's little-endian byte image. Upload
// paths use this to build the staging slice without reflection.
func (r InstanceRecord) AppendBytes(dst []byte) []byte {
	var buf [RecordStride]byte
	for i, w := range r {
		binary.LittleEndian.PutUint32(buf[i*4:], w)
	}
	return append(dst, buf[:]...)
}

// RecordFromBytes reads one record back from its byte image.
func RecordFromBytes(src []byte) InstanceRecord {
	var r InstanceRecord
	for i := range r {
		r[i] = binary.LittleEndian.Uint32(src[i*4:])
	}
	return r
}

// EncodeQuad packs a filled rectangle: position, size, then the color as
// four floats. Layout: pos.xy, size.xy, color.rgba.
func EncodeQuad(t Transform2D, c Color) (InstanceRecord, error) {
	if err := validateSized(t); err != nil {
		return InstanceRecord{}, err
	}
	var r InstanceRecord
	putVec2(&r, 0, t.Position)
	putVec2(&r, 2, t.Size)
	putVec4(&r, 4, c.Vec4())
	return r, nil
}

// EncodePoint packs a flat-colored point. The size field is the (0, 0)
// marker so the cull kernel takes the point path.
// Layout: pos.xy, marker.xy, color.rgba.
func EncodePoint(pos mgl32.Vec2, c Color) (InstanceRecord, error) {
	if !finiteVec2(pos) {
		return InstanceRecord{}, fmt.Errorf("point at %v: %w", pos, ErrInvalidObject)
	}
	var r InstanceRecord
	putVec2(&r, 0, pos)
	putVec2(&r, 2, mgl32.Vec2{})
	putVec4(&r, 4, c.Vec4())
	return r, nil
}

// EncodeSprite packs a tinted atlas quad. The UV region is required.
// Layout: pos.xy, size.xy, rotation, rgba8, uvOffset.2x16unorm,
// uvScale.2x16unorm.
func EncodeSprite(t Transform2D, c Color, uv *Region) (InstanceRecord, error) {
	if uv == nil {
		return InstanceRecord{}, fmt.Errorf("sprite without UV region: %w", ErrInvalidObject)
	}
	if err := validateSized(t); err != nil {
		return InstanceRecord{}, err
	}
	var r InstanceRecord
	putVec2(&r, 0, t.Position)
	putVec2(&r, 2, t.Size)
	r[4] = math.Float32bits(t.Rotation)
	r[5] = c.PackRGBA8()
	r[6] = packUnorm2x16(uv.U, uv.V)
	r[7] = packUnorm2x16(uv.W, uv.H)
	return r, nil
}

// EncodeGlyph packs one glyph of a text run. pivot is the run anchor
// the whole glyph rotates around; offset is the glyph quad's unrotated
// displacement from that anchor; size is the on-screen extent, scale
// the factor it was multiplied by. uvMin addresses the glyph's top-left
// texel in normalized atlas space; the shader derives the UV span from
// size, scale and the atlas texel size. Rotation and scale travel as
// half floats.
// Layout: pivot.xy, size.xy, offset.2x16float, (rotation, scale).2x16float,
// uvMin.2x16unorm, rgba8.
func EncodeGlyph(pivot, offset, size mgl32.Vec2, rotation, scale float32, uvMin mgl32.Vec2, c Color) (InstanceRecord, error) {
	if !finiteVec2(pivot) || !finiteVec2(offset) || !finite(rotation) {
		return InstanceRecord{}, fmt.Errorf("glyph at %v: %w", pivot, ErrInvalidObject)
	}
	if !(finite(scale) && scale > 0) {
		return InstanceRecord{}, fmt.Errorf("glyph scale %v: %w", scale, ErrInvalidObject)
	}
	if !(size.X() > 0 && size.X() < MaxExtent && size.Y() > 0 && size.Y() < MaxExtent) {
		return InstanceRecord{}, fmt.Errorf("glyph size %v outside (0, %v): %w", size, float32(MaxExtent), ErrInvalidObject)
	}
	var r InstanceRecord
	putVec2(&r, 0, pivot)
	putVec2(&r, 2, size)
	r[4] = packHalf2x16(offset.X(), offset.Y())
	r[5] = packHalf2x16(rotation, scale)
	r[6] = packUnorm2x16(uvMin.X(), uvMin.Y())
	r[7] = c.PackRGBA8()
	return r, nil
}

// Encode dispatches on the draw class. uv may be nil for the untextured
// classes; textured classes report ErrInvalidObject without it.
func Encode(class DrawClass, t Transform2D, c Color, uv *Region) (InstanceRecord, error) {
	switch class {
	case ClassQuad:
		return EncodeQuad(t, c)
	case ClassPoint:
		return EncodePoint(t.Position, c)
	case ClassSprite:
		return EncodeSprite(t, c, uv)
	case ClassGlyph:
		if uv == nil {
			return InstanceRecord{}, fmt.Errorf("glyph without UV region: %w", ErrInvalidObject)
		}
		return EncodeGlyph(t.Position, mgl32.Vec2{}, t.Size, t.Rotation, 1, mgl32.Vec2{uv.U, uv.V}, c)
	}
	return InstanceRecord{}, fmt.Errorf("unknown draw class %d: %w", class, ErrInvalidObject)
}

// DecodeQuad recovers the fields written by EncodeQuad.
func DecodeQuad(r InstanceRecord) (Transform2D, Color) {
	t := Transform2D{Position: r.Position(), Size: r.Size()}
	v := getVec4(r, 4)
	return t, Color{v.X(), v.Y(), v.Z(), v.W()}
}

// DecodePoint recovers the fields written by EncodePoint.
func DecodePoint(r InstanceRecord) (mgl32.Vec2, Color) {
	v := getVec4(r, 4)
	return r.Position(), Color{v.X(), v.Y(), v.Z(), v.W()}
}

// DecodeSprite recovers the fields written by EncodeSprite.
func DecodeSprite(r InstanceRecord) (Transform2D, Color, Region) {
	t := Transform2D{
		Position: r.Position(),
		Size:     r.Size(),
		Rotation: math.Float32frombits(r[4]),
	}
	u, v := unpackUnorm2x16(r[6])
	w, h := unpackUnorm2x16(r[7])
	return t, UnpackRGBA8(r[5]), Region{U: u, V: v, W: w, H: h}
}

// DecodeGlyph recovers the fields written by EncodeGlyph.
func DecodeGlyph(r InstanceRecord) (pivot, offset, size mgl32.Vec2, rotation, scale float32, uvMin mgl32.Vec2, c Color) {
	pivot = r.Position()
	size = r.Size()
	ox, oy := unpackHalf2x16(r[4])
	offset = mgl32.Vec2{ox, oy}
	rotation, scale = unpackHalf2x16(r[5])
	u, v := unpackUnorm2x16(r[6])
	uvMin = mgl32.Vec2{u, v}
	c = UnpackRGBA8(r[7])
	return
}

func validateSized(t Transform2D) error {
	if !finiteVec2(t.Position) || !finiteVec2(t.Size) || !finite(t.Rotation) {
		return fmt.Errorf("non-finite transform at %v: %w", t.Position, ErrInvalidObject)
	}
	if !(t.Size.X() > 0 && t.Size.X() < MaxExtent && t.Size.Y() > 0 && t.Size.Y() < MaxExtent) {
		return fmt.Errorf("size %v outside (0, %v): %w", t.Size, float32(MaxExtent), ErrInvalidObject)
	}
	return nil
}

func finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func finiteVec2(v mgl32.Vec2) bool {
	return finite(v.X()) && finite(v.Y())
}

func putVec2(r *InstanceRecord, word int, v mgl32.Vec2) {
	r[word] = math.Float32bits(v.X())
	r[word+1] = math.Float32bits(v.Y())
}

func putVec4(r *InstanceRecord, word int, v mgl32.Vec4) {
	for i := 0; i < 4; i++ {
		r[word+i] = math.Float32bits(v[i])
	}
}

func getVec4(r InstanceRecord, word int) mgl32.Vec4 {
	return mgl32.Vec4{
		math.Float32frombits(r[word]),
		math.Float32frombits(r[word+1]),
		math.Float32frombits(r[word+2]),
		math.Float32frombits(r[word+3]),
	}
}

// packUnorm2x16 packs two [0, 1] floats into 16-bit fixed point, x in
// the low half. Matches WGSL unpack2x16unorm.
func packUnorm2x16(x, y float32) uint32 {
	return uint32(unorm16(x)) | uint32(unorm16(y))<<16
}

func unpackUnorm2x16(w uint32) (float32, float32) {
	return float32(w&0xFFFF) / 65535.0, float32(w>>16) / 65535.0
}

func unorm16(v float32) uint16 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 65535
	}
	return uint16(v*65535.0 + 0.5)
}

// packHalf2x16 packs two floats as IEEE 754 halves, x in the low half.
// Matches WGSL unpack2x16float. Glyph offsets stay well inside half
// range; out-of-range values saturate to infinity like the GPU op.
func packHalf2x16(x, y float32) uint32 {
	return uint32(float16bits(x)) | uint32(float16bits(y))<<16
}

func unpackHalf2x16(w uint32) (float32, float32) {
	return float16frombits(uint16(w)), float16frombits(uint16(w >> 16))
}

func float16bits(f float32) uint16 {
	b := math.Float32bits(f)
	sign := uint16(b>>16) & 0x8000
	exp := int32(b>>23&0xFF) - 127 + 15
	mant := b & 0x7FFFFF

	switch {
	case exp >= 0x1F:
		// Overflow and infinities saturate to inf; NaN keeps a payload bit.
		if int32(b>>23&0xFF) == 0xFF && mant != 0 {
			return sign | 0x7E00
		}
		return sign | 0x7C00
	case exp <= 0:
		// Subnormal or zero.
		if exp < -10 {
			return sign
		}
		mant |= 0x800000
		shift := uint32(14 - exp)
		return sign | uint16(mant>>shift)
	default:
		return sign | uint16(exp)<<10 | uint16(mant>>13)
	}
}

func float16frombits(h uint16) float32 {
	sign := uint32(h&0x8000) << 16
	exp := uint32(h >> 10 & 0x1F)
	mant := uint32(h & 0x3FF)

	switch {
	case exp == 0:
		if mant == 0 {
			return math.Float32frombits(sign)
		}
		// Normalize the subnormal.
		for mant&0x400 == 0 {
			mant <<= 1
			exp--
		}
		mant &= 0x3FF
		return math.Float32frombits(sign | (exp+1-15+127)<<23 | mant<<13)
	case exp == 0x1F:
		return math.Float32frombits(sign | 0xFF<<23 | mant<<13)
	default:
		return math.Float32frombits(sign | (exp-15+127)<<23 | mant<<13)
	}
}
