package core

import (
	"fmt"
	"image"
	"image/draw"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// AtlasSize is the side length in pixels of the rasterized glyph atlas.
const AtlasSize = 512

// GlyphInfo records where a glyph lives in the atlas and how to place
// its quad relative to the pen position.
type GlyphInfo struct {
	UVMin mgl32.Vec2
	Size  mgl32.Vec2
	Off   mgl32.Vec2
	Adv   float32
}

// TextLabel is one string to lay out: Pivot is the pixel-space anchor
// the whole run rotates around.
type TextLabel struct {
	Text     string
	Pivot    mgl32.Vec2
	Rotation float32
	Scale    float32
	Color    Color
}

// FontAtlas rasterizes the printable ASCII range of a font into a
// single-channel image and lays out text as glyph instance records.
type FontAtlas struct {
	Image  *image.Alpha
	Glyphs map[rune]GlyphInfo
	Face   font.Face
}

// NewFontAtlas loads a font file and bakes its glyphs at the given
// point size.
func NewFontAtlas(fontPath string, fontSize float64) (*FontAtlas, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}
	return ParseFontAtlas(fontBytes, fontSize)
}

// ParseFontAtlas bakes a glyph atlas from in-memory font data.
func ParseFontAtlas(fontBytes []byte, fontSize float64) (*FontAtlas, error) {
	f, err := opentype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    fontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create face: %w", err)
	}

	atlas := image.NewAlpha(image.Rect(0, 0, AtlasSize, AtlasSize))
	glyphs := make(map[rune]GlyphInfo)

	x, y := 2, 2
	rowHeight := 0

	for r := rune(32); r < 127; r++ {
		bounds, mask, _, adv, ok := face.Glyph(fixed.Point26_6{}, r)
		if !ok {
			continue
		}

		w := mask.Bounds().Dx()
		h := mask.Bounds().Dy()

		if x+w >= AtlasSize {
			x = 2
			y += rowHeight + 4
			rowHeight = 0
		}

		if y+h >= AtlasSize {
			break
		}

		draw.Draw(atlas, image.Rect(x, y, x+w, y+h), mask, mask.Bounds().Min, draw.Src)

		glyphs[r] = GlyphInfo{
			UVMin: mgl32.Vec2{float32(x) / AtlasSize, float32(y) / AtlasSize},
			Size:  mgl32.Vec2{float32(w), float32(h)},
			Off:   mgl32.Vec2{float32(bounds.Min.X), float32(bounds.Min.Y)},
			Adv:   float32(adv) / 64.0, // fixed 26.6 to float
		}

		x += w + 4
		if h > rowHeight {
			rowHeight = h
		}
	}

	return &FontAtlas{
		Image:  atlas,
		Glyphs: glyphs,
		Face:   face,
	}, nil
}

// Layout appends one glyph instance record per visible glyph of the
// label to dst. Every glyph shares the label's pivot and rotation, so
// the run rotates rigidly as a unit in the vertex stage. Glyphs with no
// atlas entry are skipped; empty masks (spaces) produce no record but
// still advance the pen.
func (fa *FontAtlas) Layout(dst []InstanceRecord, label TextLabel) ([]InstanceRecord, error) {
	scale := label.Scale
	if scale == 0 {
		scale = 1
	}

	metrics := fa.Face.Metrics()
	ascent := float32(metrics.Ascent.Ceil())
	lineHeight := float32(metrics.Height.Ceil())

	penX := float32(0)
	penY := ascent * scale

	for _, r := range label.Text {
		if r == '\n' {
			penX = 0
			penY += lineHeight * scale
			continue
		}

		g, ok := fa.Glyphs[r]
		if !ok {
			continue
		}
		if g.Size.X() == 0 || g.Size.Y() == 0 {
			penX += g.Adv * scale
			continue
		}

		offset := mgl32.Vec2{
			penX + g.Off.X()*scale,
			penY + g.Off.Y()*scale,
		}
		size := g.Size.Mul(scale)

		rec, err := EncodeGlyph(label.Pivot, offset, size, label.Rotation, scale, g.UVMin, label.Color)
		if err != nil {
			return dst, err
		}
		dst = append(dst, rec)

		penX += g.Adv * scale
	}

	return dst, nil
}

// MeasureText returns the pixel width and height the text would occupy
// at the given scale.
func (fa *FontAtlas) MeasureText(text string, scale float32) (float32, float32) {
	if fa == nil {
		return 0, 0
	}

	metrics := fa.Face.Metrics()
	lineHeight := float32(metrics.Height.Ceil())

	maxW := float32(0)
	currentW := float32(0)
	lines := 1

	for _, r := range text {
		if r == '\n' {
			if currentW > maxW {
				maxW = currentW
			}
			currentW = 0
			lines++
			continue
		}

		g, ok := fa.Glyphs[r]
		if !ok {
			continue
		}
		currentW += g.Adv * scale
	}

	if currentW > maxW {
		maxW = currentW
	}

	return maxW, lineHeight * scale * float32(lines)
}

// LineHeight returns the scaled distance between baselines.
func (fa *FontAtlas) LineHeight(scale float32) float32 {
	if fa == nil {
		return 0
	}
	metrics := fa.Face.Metrics()
	return float32(metrics.Height.Ceil()) * scale
}
