package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/lumen2d/lumen/core"
	"github.com/lumen2d/lumen/shaders"
)

// CullPass owns the visibility compute pipeline and the per-class bind
// groups over the instance buffer triples. Bind groups are cached and
// rebuilt only when a referenced buffer was recreated.
type CullPass struct {
	Device   *wgpu.Device
	Pipeline *wgpu.ComputePipeline

	bindGroups [core.NumDrawClasses]*wgpu.BindGroup
}

func NewCullPass(device *wgpu.Device) (*CullPass, error) {
	module, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "CullShader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.CullWGSL},
	})
	if err != nil {
		return nil, fmt.Errorf("cull shader module: %w", err)
	}

	pipeline, err := device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label: "CullPipeline",
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: "cs_main",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("cull pipeline: %w", err)
	}

	return &CullPass{Device: device, Pipeline: pipeline}, nil
}

// Invalidate drops the cached bind group for a class after its buffers
// were recreated.
func (c *CullPass) Invalidate(class core.DrawClass) {
	c.bindGroups[class] = nil
}

func (c *CullPass) ensureBindGroup(class core.DrawClass, cb *classBuffers) error {
	if c.bindGroups[class] != nil {
		return nil
	}
	bg, err := c.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  class.String() + "CullBG",
		Layout: c.Pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: cb.Params, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: cb.Input, Size: wgpu.WholeSize},
			{Binding: 2, Buffer: cb.Output, Size: wgpu.WholeSize},
			{Binding: 3, Buffer: cb.Indirect, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return fmt.Errorf("%s cull bind group: %w", class, err)
	}
	c.bindGroups[class] = bg
	return nil
}

// Dispatch records the cull dispatch for one class into the compute
// pass: one invocation per record, workgroups of 64.
func (c *CullPass) Dispatch(pass *wgpu.ComputePassEncoder, class core.DrawClass, cb *classBuffers) error {
	if cb.Count == 0 {
		return nil
	}
	if err := c.ensureBindGroup(class, cb); err != nil {
		return err
	}

	groups := (cb.Count + core.CullWorkgroupSize - 1) / core.CullWorkgroupSize
	pass.SetBindGroup(0, c.bindGroups[class], nil)
	pass.DispatchWorkgroups(groups, 1, 1)
	return nil
}
