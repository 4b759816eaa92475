package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/lumen2d/lumen/core"
	"github.com/lumen2d/lumen/shaders"
)

// PipelineSet holds the render pipelines: one instanced pipeline per
// draw class consuming compacted 32-byte records, plus the immediate
// pipeline for raw debug vertices.
type PipelineSet struct {
	Device *wgpu.Device

	Quad      *wgpu.RenderPipeline
	Point     *wgpu.RenderPipeline
	Sprite    *wgpu.RenderPipeline
	Glyph     *wgpu.RenderPipeline
	Immediate *wgpu.RenderPipeline
}

// ForClass maps a draw class to its pipeline.
func (ps *PipelineSet) ForClass(class core.DrawClass) *wgpu.RenderPipeline {
	switch class {
	case core.ClassQuad:
		return ps.Quad
	case core.ClassPoint:
		return ps.Point
	case core.ClassSprite:
		return ps.Sprite
	case core.ClassGlyph:
		return ps.Glyph
	}
	return nil
}

var alphaBlend = &wgpu.BlendState{
	Color: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorSrcAlpha,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		Operation: wgpu.BlendOperationAdd,
	},
	Alpha: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		Operation: wgpu.BlendOperationAdd,
	},
}

func NewPipelineSet(device *wgpu.Device, format wgpu.TextureFormat) (*PipelineSet, error) {
	ps := &PipelineSet{Device: device}

	type pipelineSpec struct {
		name     string
		wgsl     string
		topology wgpu.PrimitiveTopology
		layout   wgpu.VertexBufferLayout
		target   **wgpu.RenderPipeline
	}

	recordLayout := func(attrs []wgpu.VertexAttribute) wgpu.VertexBufferLayout {
		return wgpu.VertexBufferLayout{
			ArrayStride: core.RecordStride,
			StepMode:    wgpu.VertexStepModeInstance,
			Attributes:  attrs,
		}
	}

	specs := []pipelineSpec{
		{
			name:     "Quad",
			wgsl:     shaders.QuadWGSL,
			topology: wgpu.PrimitiveTopologyTriangleList,
			layout: recordLayout([]wgpu.VertexAttribute{
				{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
				{Format: wgpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
				{Format: wgpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2},
			}),
			target: &ps.Quad,
		},
		{
			name:     "Point",
			wgsl:     shaders.PointWGSL,
			topology: wgpu.PrimitiveTopologyPointList,
			layout: recordLayout([]wgpu.VertexAttribute{
				{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
				{Format: wgpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 1},
			}),
			target: &ps.Point,
		},
		{
			name:     "Sprite",
			wgsl:     shaders.SpriteWGSL,
			topology: wgpu.PrimitiveTopologyTriangleList,
			layout: recordLayout([]wgpu.VertexAttribute{
				{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
				{Format: wgpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
				{Format: wgpu.VertexFormatFloat32, Offset: 16, ShaderLocation: 2},
				{Format: wgpu.VertexFormatUint32, Offset: 20, ShaderLocation: 3},
				{Format: wgpu.VertexFormatUint32, Offset: 24, ShaderLocation: 4},
				{Format: wgpu.VertexFormatUint32, Offset: 28, ShaderLocation: 5},
			}),
			target: &ps.Sprite,
		},
		{
			name:     "Glyph",
			wgsl:     shaders.GlyphWGSL,
			topology: wgpu.PrimitiveTopologyTriangleList,
			layout: recordLayout([]wgpu.VertexAttribute{
				{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
				{Format: wgpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
				{Format: wgpu.VertexFormatUint32, Offset: 16, ShaderLocation: 2},
				{Format: wgpu.VertexFormatUint32, Offset: 20, ShaderLocation: 3},
				{Format: wgpu.VertexFormatUint32, Offset: 24, ShaderLocation: 4},
				{Format: wgpu.VertexFormatUint32, Offset: 28, ShaderLocation: 5},
			}),
			target: &ps.Glyph,
		},
		{
			name:     "Immediate",
			wgsl:     shaders.ImmediateWGSL,
			topology: wgpu.PrimitiveTopologyLineList,
			layout: wgpu.VertexBufferLayout{
				ArrayStride: ImmediateVertexStride,
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
					{Format: wgpu.VertexFormatFloat32x4, Offset: 8, ShaderLocation: 1},
				},
			},
			target: &ps.Immediate,
		},
	}

	for _, spec := range specs {
		module, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
			Label:          spec.name + "Shader",
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: spec.wgsl},
		})
		if err != nil {
			return nil, fmt.Errorf("%s shader module: %w", spec.name, err)
		}

		pipeline, err := device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
			Label: spec.name + "Pipeline",
			Vertex: wgpu.VertexState{
				Module:     module,
				EntryPoint: "vs_main",
				Buffers:    []wgpu.VertexBufferLayout{spec.layout},
			},
			Fragment: &wgpu.FragmentState{
				Module:     module,
				EntryPoint: "fs_main",
				Targets: []wgpu.ColorTargetState{{
					Format:    format,
					Blend:     alphaBlend,
					WriteMask: wgpu.ColorWriteMaskAll,
				}},
			},
			Primitive: wgpu.PrimitiveState{
				Topology:  spec.topology,
				FrontFace: wgpu.FrontFaceCCW,
				CullMode:  wgpu.CullModeNone,
			},
			Multisample: wgpu.MultisampleState{
				Count: 1,
				Mask:  0xFFFFFFFF,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("%s pipeline: %w", spec.name, err)
		}
		*spec.target = pipeline
	}

	return ps, nil
}

// CreateCameraBindGroup binds the camera uniform to group 0 of one
// pipeline. Each pipeline has its own layout, so each needs its own
// bind group over the shared buffer.
func (ps *PipelineSet) CreateCameraBindGroup(pipeline *wgpu.RenderPipeline, cameraBuf *wgpu.Buffer) (*wgpu.BindGroup, error) {
	return ps.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "CameraBG",
		Layout: pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: cameraBuf, Size: wgpu.WholeSize},
		},
	})
}

// CreateSpriteAtlasBindGroup binds the sprite atlas texture and sampler
// to group 1 of the sprite pipeline.
func (ps *PipelineSet) CreateSpriteAtlasBindGroup(view *wgpu.TextureView, sampler *wgpu.Sampler) (*wgpu.BindGroup, error) {
	return ps.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "SpriteAtlasBG",
		Layout: ps.Sprite.GetBindGroupLayout(1),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: view},
			{Binding: 1, Sampler: sampler},
		},
	})
}

// CreateGlyphAtlasBindGroup binds the glyph atlas, its sampler and the
// atlas parameter uniform to group 1 of the glyph pipeline.
func (ps *PipelineSet) CreateGlyphAtlasBindGroup(view *wgpu.TextureView, sampler *wgpu.Sampler, params *wgpu.Buffer) (*wgpu.BindGroup, error) {
	return ps.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "GlyphAtlasBG",
		Layout: ps.Glyph.GetBindGroupLayout(1),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: view},
			{Binding: 1, Sampler: sampler},
			{Binding: 2, Buffer: params, Size: wgpu.WholeSize},
		},
	})
}
