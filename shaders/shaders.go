package shaders

import (
	_ "embed"
)

//go:embed cull.wgsl
var CullWGSL string

//go:embed quad.wgsl
var QuadWGSL string

//go:embed point.wgsl
var PointWGSL string

//go:embed sprite.wgsl
var SpriteWGSL string

//go:embed glyph.wgsl
var GlyphWGSL string

//go:embed immediate.wgsl
var ImmediateWGSL string
