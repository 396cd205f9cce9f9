package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/light2d/render/shaders"
)

// BlitPipeline copies a texture onto a color attachment with one covering
// triangle.
type BlitPipeline struct {
	Layout   *wgpu.BindGroupLayout
	Sampler  *wgpu.Sampler
	Pipeline *wgpu.RenderPipeline
	Format   wgpu.TextureFormat

	pipelineLayout *wgpu.PipelineLayout
	vertex         *wgpu.ShaderModule
	fragment       *wgpu.ShaderModule
}

func NewBlitPipeline(device LightingDevice, format wgpu.TextureFormat) (*BlitPipeline, error) {
	p := &BlitPipeline{Format: format}
	var err error

	p.Layout, err = device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "light2d_blit_layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("blit bind group layout: %w", err)
	}

	p.Sampler, err = device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "light2d_blit_sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("blit sampler: %w", err)
	}

	p.vertex, err = device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "light2d_blit_vertex",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.FullscreenWGSL},
	})
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("blit vertex shader: %w", err)
	}
	p.fragment, err = device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "light2d_blit_fragment",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.BlitWGSL},
	})
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("blit fragment shader: %w", err)
	}

	p.pipelineLayout, err = device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "light2d_blit_pipeline_layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{p.Layout},
	})
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("blit pipeline layout: %w", err)
	}

	p.Pipeline, err = device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "light2d_blit_pipeline",
		Layout: p.pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     p.vertex,
			EntryPoint: shaders.VertexEntryPoint,
		},
		Fragment: &wgpu.FragmentState{
			Module:     p.fragment,
			EntryPoint: shaders.FragmentEntryPoint,
			Targets: []wgpu.ColorTargetState{
				{
					Format:    format,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
			CullMode: wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("blit pipeline: %w", err)
	}
	return p, nil
}

func (p *BlitPipeline) BindGroup(device *wgpu.Device, source *wgpu.TextureView) (*wgpu.BindGroup, error) {
	return device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "light2d_blit_bind_group",
		Layout: p.Layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: source},
			{Binding: 1, Sampler: p.Sampler},
		},
	})
}

// Draw records a pass that overwrites dst with the texture bound in group.
func (p *BlitPipeline) Draw(encoder *wgpu.CommandEncoder, group *wgpu.BindGroup, dst *wgpu.TextureView, load wgpu.LoadOp, clear wgpu.Color) error {
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "light2d_blit_pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       dst,
				LoadOp:     load,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: clear,
			},
		},
	})
	defer pass.Release()

	if group != nil {
		pass.SetPipeline(p.Pipeline)
		pass.SetBindGroup(0, group, nil)
		pass.Draw(3, 1, 0, 0)
	}
	return pass.End()
}

func (p *BlitPipeline) Release() {
	if p == nil {
		return
	}
	if p.Pipeline != nil {
		p.Pipeline.Release()
	}
	if p.pipelineLayout != nil {
		p.pipelineLayout.Release()
	}
	if p.fragment != nil {
		p.fragment.Release()
	}
	if p.vertex != nil {
		p.vertex.Release()
	}
	if p.Sampler != nil {
		p.Sampler.Release()
	}
	if p.Layout != nil {
		p.Layout.Release()
	}
}
