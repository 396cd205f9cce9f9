// Package gpu builds and runs the lighting pass on a wgpu device.
package gpu

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/light2d/render/core"
	"github.com/gekko3d/light2d/render/shaders"
)

var (
	ErrShaderValidation = errors.New("lighting shader failed validation")
	ErrPipelineCreation = errors.New("lighting pipeline creation failed")
)

// Logger is the diagnostic channel used by this package.
type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// LightingDevice is the part of *wgpu.Device the pipeline builder needs.
type LightingDevice interface {
	CreateBindGroupLayout(descriptor *wgpu.BindGroupLayoutDescriptor) (*wgpu.BindGroupLayout, error)
	CreateSampler(descriptor *wgpu.SamplerDescriptor) (*wgpu.Sampler, error)
	CreateShaderModule(descriptor *wgpu.ShaderModuleDescriptor) (*wgpu.ShaderModule, error)
	CreatePipelineLayout(descriptor *wgpu.PipelineLayoutDescriptor) (*wgpu.PipelineLayout, error)
	CreateRenderPipeline(descriptor *wgpu.RenderPipelineDescriptor) (*wgpu.RenderPipeline, error)
}

const (
	BindingScreenTexture = iota
	BindingSampler
	BindingView
	BindingAmbientLight
	BindingPointLights
	BindingOccluders
)

// LightingBindGroupLayoutEntries declares the resources of the lighting
// shader in binding order.
func LightingBindGroupLayoutEntries() []wgpu.BindGroupLayoutEntry {
	return []wgpu.BindGroupLayoutEntry{
		{
			Binding:    BindingScreenTexture,
			Visibility: wgpu.ShaderStageFragment,
			Texture: wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeFloat,
				ViewDimension: wgpu.TextureViewDimension2D,
				Multisampled:  false,
			},
		},
		{
			Binding:    BindingSampler,
			Visibility: wgpu.ShaderStageFragment,
			Sampler: wgpu.SamplerBindingLayout{
				Type: wgpu.SamplerBindingTypeFiltering,
			},
		},
		{
			Binding:    BindingView,
			Visibility: wgpu.ShaderStageFragment,
			Buffer: wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeUniform,
				MinBindingSize: core.ViewUniformSize,
			},
		},
		{
			Binding:    BindingAmbientLight,
			Visibility: wgpu.ShaderStageFragment,
			Buffer: wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeUniform,
				MinBindingSize: core.AmbientLightSize,
			},
		},
		{
			Binding:    BindingPointLights,
			Visibility: wgpu.ShaderStageFragment,
			Buffer: wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeReadOnlyStorage,
				MinBindingSize: core.ArrayBufferHeaderSize + core.PointLightSize,
			},
		},
		{
			Binding:    BindingOccluders,
			Visibility: wgpu.ShaderStageFragment,
			Buffer: wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeReadOnlyStorage,
				MinBindingSize: core.ArrayBufferHeaderSize + core.CircularOccluderSize,
			},
		},
	}
}

// LightingPipeline is an immutable set of GPU objects for one output format.
type LightingPipeline struct {
	Layout   *wgpu.BindGroupLayout
	Sampler  *wgpu.Sampler
	Pipeline *wgpu.RenderPipeline
	Format   wgpu.TextureFormat

	pipelineLayout *wgpu.PipelineLayout
	vertex         *wgpu.ShaderModule
	fragment       *wgpu.ShaderModule
}

// Release frees every object that was created. It accepts partially built
// pipelines.
func (p *LightingPipeline) Release() {
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

type pipelineFailure struct {
	format wgpu.TextureFormat
	source string
	err    error
}

// LightingPipelineBuilder creates the lighting pipeline on first use and
// hands out the cached one until the output format or the shader source
// changes.
type LightingPipelineBuilder struct {
	device LightingDevice
	logger Logger
	source string

	cached  *LightingPipeline
	failure *pipelineFailure
	builds  int

	validate func(src string) error
	release  func(p *LightingPipeline)
}

// NewLightingPipelineBuilder returns a builder for the given fragment source.
// An empty source selects the embedded lighting shader.
func NewLightingPipelineBuilder(device LightingDevice, logger Logger, source string) *LightingPipelineBuilder {
	if source == "" {
		source = shaders.LightingWGSL
	}
	return &LightingPipelineBuilder{
		device:   device,
		logger:   logger,
		source:   source,
		validate: shaders.Validate,
		release:  (*LightingPipeline).Release,
	}
}

// Get returns the pipeline for format, building it if needed. A failed build
// is remembered and reported only once; later calls return the same error
// until the format or the source changes.
func (b *LightingPipelineBuilder) Get(format wgpu.TextureFormat) (*LightingPipeline, error) {
	if b.cached != nil {
		if b.cached.Format == format {
			return b.cached, nil
		}
		b.logger.Debugf("lighting pipeline format changed (%v -> %v), rebuilding", b.cached.Format, format)
		b.dropCached()
	}
	if f := b.failure; f != nil && f.format == format && f.source == b.source {
		return nil, f.err
	}

	p, err := b.build(format)
	if err != nil {
		b.failure = &pipelineFailure{format: format, source: b.source, err: err}
		b.logger.Errorf("lighting pass disabled: %v", err)
		return nil, err
	}
	b.failure = nil
	b.cached = p
	b.builds++
	b.logger.Debugf("lighting pipeline built for format %v", format)
	return p, nil
}

// Cached returns the current pipeline without building one.
func (b *LightingPipelineBuilder) Cached() *LightingPipeline {
	return b.cached
}

// Builds counts successful pipeline builds.
func (b *LightingPipelineBuilder) Builds() int {
	return b.builds
}

// Invalidate drops the cached pipeline and any remembered failure.
func (b *LightingPipelineBuilder) Invalidate() {
	b.dropCached()
	b.failure = nil
}

// SetShaderSource replaces the fragment source. The next Get rebuilds.
func (b *LightingPipelineBuilder) SetShaderSource(src string) {
	if src == "" {
		src = shaders.LightingWGSL
	}
	if src == b.source {
		return
	}
	b.source = src
	b.Invalidate()
}

func (b *LightingPipelineBuilder) Release() {
	b.Invalidate()
}

func (b *LightingPipelineBuilder) dropCached() {
	if b.cached != nil {
		b.release(b.cached)
		b.cached = nil
	}
}

func (b *LightingPipelineBuilder) build(format wgpu.TextureFormat) (*LightingPipeline, error) {
	if err := b.validate(b.source); err != nil {
		if !errors.Is(err, shaders.ErrValidatorUnsupported) {
			return nil, fmt.Errorf("%w: %w", ErrShaderValidation, err)
		}
		b.logger.Debugf("skipping WGSL validation: %v", err)
	}

	p := &LightingPipeline{Format: format}
	fail := func(step string, err error) (*LightingPipeline, error) {
		b.release(p)
		return nil, fmt.Errorf("%w: %s: %w", ErrPipelineCreation, step, err)
	}

	var err error
	p.Layout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   "light2d_lighting_layout",
		Entries: LightingBindGroupLayoutEntries(),
	})
	if err != nil {
		return fail("bind group layout", err)
	}

	p.Sampler, err = b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "light2d_lighting_sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fail("sampler", err)
	}

	p.vertex, err = b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "light2d_fullscreen_vertex",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.FullscreenWGSL},
	})
	if err != nil {
		return fail("vertex shader", err)
	}

	p.fragment, err = b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "light2d_lighting_fragment",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: b.source},
	})
	if err != nil {
		return fail("fragment shader", err)
	}

	p.pipelineLayout, err = b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "light2d_lighting_pipeline_layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{p.Layout},
	})
	if err != nil {
		return fail("pipeline layout", err)
	}

	p.Pipeline, err = b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "light2d_lighting_pipeline",
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
					Blend:     nil,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		DepthStencil: nil,
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fail("render pipeline", err)
	}
	return p, nil
}
