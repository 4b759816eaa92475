package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/lumen2d/lumen"
	"github.com/lumen2d/lumen/core"
)

// drawOrder fixes the submission order of the instanced classes within
// a frame: fills under sprites under text.
var drawOrder = [core.NumDrawClasses]core.DrawClass{
	core.ClassQuad,
	core.ClassSprite,
	core.ClassPoint,
	core.ClassGlyph,
}

// Renderer orchestrates a frame: queue records per class, then Flush
// uploads the batches, runs the cull dispatch and records the indirect
// draws, all inside one command encoder so the compute pass completes
// before the vertex stage reads its output.
type Renderer struct {
	Device *wgpu.Device
	Camera *core.Camera2D
	Log    lumen.Logger

	buffers   *BufferManager
	cull      *CullPass
	pipelines *PipelineSet
	immediate *ImmediateBatch

	batches     [core.NumDrawClasses]*core.Batch
	cameraBGs   [core.NumDrawClasses]*wgpu.BindGroup
	immediateBG *wgpu.BindGroup

	sampler        *wgpu.Sampler
	spriteAtlas    *Texture
	spriteAtlasBG  *wgpu.BindGroup
	font           *core.FontAtlas
	glyphAtlas     *Texture
	glyphAtlasBG   *wgpu.BindGroup
	glyphParamsBuf *wgpu.Buffer

	glyphScratch []core.InstanceRecord
	clearColor   wgpu.Color
}

// RendererOptions configures renderer construction.
type RendererOptions struct {
	// Width and Height are the initial viewport in pixels.
	Width, Height float32
	// MaxInstances caps each class's per-frame record count; zero
	// means unbounded.
	MaxInstances int
	// ClearColor fills the target before drawing.
	ClearColor core.Color
	// Log receives frame diagnostics; nil disables them.
	Log lumen.Logger
}

func NewRenderer(device *wgpu.Device, format wgpu.TextureFormat, opts RendererOptions) (*Renderer, error) {
	log := opts.Log
	if log == nil {
		log = lumen.NewNopLogger()
	}

	pipelines, err := NewPipelineSet(device, format)
	if err != nil {
		return nil, err
	}
	cull, err := NewCullPass(device)
	if err != nil {
		return nil, err
	}

	sampler, err := device.CreateSampler(&wgpu.SamplerDescriptor{
		MinFilter:     wgpu.FilterModeLinear,
		MagFilter:     wgpu.FilterModeLinear,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("atlas sampler: %w", err)
	}

	r := &Renderer{
		Device:    device,
		Camera:    core.NewCamera2D(opts.Width, opts.Height),
		Log:       log,
		buffers:   NewBufferManager(device),
		cull:      cull,
		pipelines: pipelines,
		immediate: NewImmediateBatch(device),
		sampler:   sampler,
		clearColor: wgpu.Color{
			R: float64(opts.ClearColor.R),
			G: float64(opts.ClearColor.G),
			B: float64(opts.ClearColor.B),
			A: float64(opts.ClearColor.A),
		},
	}
	for class := core.DrawClass(0); class < core.NumDrawClasses; class++ {
		r.batches[class] = core.NewBatch(class, opts.MaxInstances)
	}

	// The camera buffer must exist before the per-pipeline bind groups.
	r.buffers.UpdateCamera(r.Camera.ViewProjection(), r.Camera.ViewportSize())
	for class := core.DrawClass(0); class < core.NumDrawClasses; class++ {
		bg, err := pipelines.CreateCameraBindGroup(pipelines.ForClass(class), r.buffers.CameraBuf)
		if err != nil {
			return nil, fmt.Errorf("%s camera bind group: %w", class, err)
		}
		r.cameraBGs[class] = bg
	}
	r.immediateBG, err = pipelines.CreateCameraBindGroup(pipelines.Immediate, r.buffers.CameraBuf)
	if err != nil {
		return nil, fmt.Errorf("immediate camera bind group: %w", err)
	}

	return r, nil
}

// Resize updates the camera viewport.
func (r *Renderer) Resize(width, height float32) {
	r.Camera.Resize(width, height)
}

// SetSpriteAtlas installs the texture sprite records address into.
func (r *Renderer) SetSpriteAtlas(tex *Texture) error {
	bg, err := r.pipelines.CreateSpriteAtlasBindGroup(tex.View, r.sampler)
	if err != nil {
		return err
	}
	if r.spriteAtlas != nil {
		r.spriteAtlas.Release()
	}
	r.spriteAtlas = tex
	r.spriteAtlasBG = bg
	return nil
}

// SetFontAtlas uploads a baked font atlas and installs it for text
// drawing.
func (r *Renderer) SetFontAtlas(fa *core.FontAtlas) error {
	tex, err := NewAlphaTexture(r.Device, "GlyphAtlas", fa.Image)
	if err != nil {
		return err
	}

	if r.glyphParamsBuf == nil {
		r.glyphParamsBuf, err = r.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "GlyphAtlasParams",
			Size:  16,
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			tex.Release()
			return fmt.Errorf("glyph params buffer: %w", err)
		}
	}
	params := make([]byte, 16)
	binary.LittleEndian.PutUint32(params[0:], math.Float32bits(1/float32(tex.Width)))
	binary.LittleEndian.PutUint32(params[4:], math.Float32bits(1/float32(tex.Height)))
	r.Device.GetQueue().WriteBuffer(r.glyphParamsBuf, 0, params)

	bg, err := r.pipelines.CreateGlyphAtlasBindGroup(tex.View, r.sampler, r.glyphParamsBuf)
	if err != nil {
		tex.Release()
		return err
	}
	if r.glyphAtlas != nil {
		r.glyphAtlas.Release()
	}
	r.font = fa
	r.glyphAtlas = tex
	r.glyphAtlasBG = bg
	return nil
}

// Font returns the installed font atlas, or nil.
func (r *Renderer) Font() *core.FontAtlas { return r.font }

// DrawQuad queues a filled rectangle.
func (r *Renderer) DrawQuad(t core.Transform2D, c core.Color) error {
	rec, err := core.EncodeQuad(t, c)
	if err != nil {
		return err
	}
	return r.batches[core.ClassQuad].Push(rec)
}

// DrawPoint queues a single point.
func (r *Renderer) DrawPoint(pos mgl32.Vec2, c core.Color) error {
	rec, err := core.EncodePoint(pos, c)
	if err != nil {
		return err
	}
	return r.batches[core.ClassPoint].Push(rec)
}

// DrawSprite queues a textured quad addressing the sprite atlas.
func (r *Renderer) DrawSprite(t core.Transform2D, c core.Color, uv core.Region) error {
	rec, err := core.EncodeSprite(t, c, &uv)
	if err != nil {
		return err
	}
	return r.batches[core.ClassSprite].Push(rec)
}

// DrawText lays out a label and queues one glyph record per visible
// glyph. Requires an installed font atlas.
func (r *Renderer) DrawText(label core.TextLabel) error {
	if r.font == nil {
		return fmt.Errorf("no font atlas installed: %w", core.ErrInvalidObject)
	}
	recs, err := r.font.Layout(r.glyphScratch[:0], label)
	r.glyphScratch = recs
	if err != nil {
		return err
	}
	batch := r.batches[core.ClassGlyph]
	for _, rec := range recs {
		if err := batch.Push(rec); err != nil {
			return err
		}
	}
	return nil
}

// DrawLine queues an immediate debug line, bypassing culling.
func (r *Renderer) DrawLine(from, to mgl32.Vec2, c core.Color) {
	r.immediate.Line(from, to, c)
}

// DrawRectOutline queues an immediate rectangle outline.
func (r *Renderer) DrawRectOutline(pos, size mgl32.Vec2, c core.Color) {
	r.immediate.RectOutline(pos, size, c)
}

// DrawCircle queues an immediate circle outline.
func (r *Renderer) DrawCircle(center mgl32.Vec2, radius float32, c core.Color) {
	r.immediate.Circle(center, radius, 32, c)
}

// Batch exposes a class's batch, mainly for tests and direct record
// injection.
func (r *Renderer) Batch(class core.DrawClass) *core.Batch {
	return r.batches[class]
}

// Flush encodes the whole frame into view and submits it: camera
// upload, per-class instance upload and indirect reset, one compute
// pass culling every non-empty class, then one render pass of indirect
// draws plus the immediate batch. Batches are cleared afterwards even
// on error.
func (r *Renderer) Flush(view *wgpu.TextureView) error {
	defer r.clearBatches()

	r.buffers.UpdateCamera(r.Camera.ViewProjection(), r.Camera.ViewportSize())
	planes := r.Camera.Planes()

	// Upload phase. Empty classes are skipped entirely: no upload, no
	// dispatch, no draw.
	active := make([]core.DrawClass, 0, core.NumDrawClasses)
	for _, class := range drawOrder {
		batch := r.batches[class]
		if batch.Len() == 0 {
			continue
		}
		if batch.Overflowed() {
			r.Log.Warnf("dropping %s frame: batch overflowed its %d-record cap", class, batch.Len())
			continue
		}
		if class == core.ClassSprite && r.spriteAtlasBG == nil {
			r.Log.Warnf("dropping %d sprite records: no atlas installed", batch.Len())
			continue
		}
		if class == core.ClassGlyph && r.glyphAtlasBG == nil {
			r.Log.Warnf("dropping %d glyph records: no font atlas installed", batch.Len())
			continue
		}
		if r.buffers.UploadBatch(batch) {
			r.cull.Invalidate(class)
		}
		r.buffers.ResetIndirect(class)
		r.buffers.WriteCullParams(class, planes)
		active = append(active, class)
	}

	hasImmediate := r.immediate.Upload()
	if len(active) == 0 && !hasImmediate {
		return nil
	}

	encoder, err := r.Device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("command encoder: %w: %v", core.ErrDeviceDispatch, err)
	}

	if len(active) > 0 {
		cPass := encoder.BeginComputePass(nil)
		cPass.SetPipeline(r.cull.Pipeline)
		for _, class := range active {
			if err := r.cull.Dispatch(cPass, class, r.buffers.Class(class)); err != nil {
				cPass.End()
				return fmt.Errorf("%s cull: %w: %v", class, core.ErrDeviceDispatch, err)
			}
		}
		if err := cPass.End(); err != nil {
			return fmt.Errorf("cull pass: %w: %v", core.ErrDeviceDispatch, err)
		}
	}

	rPass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: r.clearColor,
		}},
	})
	for _, class := range active {
		cb := r.buffers.Class(class)
		rPass.SetPipeline(r.pipelines.ForClass(class))
		rPass.SetBindGroup(0, r.cameraBGs[class], nil)
		switch class {
		case core.ClassSprite:
			rPass.SetBindGroup(1, r.spriteAtlasBG, nil)
		case core.ClassGlyph:
			rPass.SetBindGroup(1, r.glyphAtlasBG, nil)
		}
		rPass.SetVertexBuffer(0, cb.Output, 0, uint64(cb.Count)*core.RecordStride)
		rPass.DrawIndirect(cb.Indirect, 0)
	}
	if hasImmediate {
		r.immediate.Draw(rPass, r.pipelines.Immediate, r.immediateBG)
	}
	if err := rPass.End(); err != nil {
		return fmt.Errorf("render pass: %w: %v", core.ErrDeviceDispatch, err)
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("encoder finish: %w: %v", core.ErrDeviceDispatch, err)
	}
	r.Device.GetQueue().Submit(cmd)

	if r.Log.DebugEnabled() {
		for _, class := range active {
			r.Log.Debugf("frame: %s uploaded %d records", class, r.buffers.Class(class).Count)
		}
	}
	return nil
}

func (r *Renderer) clearBatches() {
	for _, b := range r.batches {
		b.Clear()
	}
	r.immediate.Clear()
}

// Release frees GPU resources owned by the renderer.
func (r *Renderer) Release() {
	r.buffers.Release()
	if r.spriteAtlas != nil {
		r.spriteAtlas.Release()
	}
	if r.glyphAtlas != nil {
		r.glyphAtlas.Release()
	}
	if r.glyphParamsBuf != nil {
		r.glyphParamsBuf.Release()
	}
}
