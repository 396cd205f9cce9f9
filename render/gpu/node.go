package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

type NodeState int

const (
	// NodePending means no pipeline is available; the frame passes through
	// unlit.
	NodePending NodeState = iota
	NodeReady
)

func (s NodeState) String() string {
	switch s {
	case NodePending:
		return "pending"
	case NodeReady:
		return "ready"
	}
	return fmt.Sprintf("NodeState(%d)", int(s))
}

// LightingNode applies the lighting shader to the view target. It reads the
// current main texture, writes the alternate one and swaps them.
type LightingNode struct {
	builder *LightingPipelineBuilder
	buffers *LightBuffers
	logger  Logger
	state   NodeState

	bindGroups     map[*wgpu.TextureView]*wgpu.BindGroup
	bindPipeline   *LightingPipeline
	bindGeneration uint64

	encode           func(ctx *RenderContext, p *LightingPipeline, source, destination *wgpu.TextureView) error
	releaseBindGroup func(group *wgpu.BindGroup)
}

func NewLightingNode(builder *LightingPipelineBuilder, buffers *LightBuffers, logger Logger) *LightingNode {
	n := &LightingNode{
		builder:          builder,
		buffers:          buffers,
		logger:           logger,
		bindGroups:       make(map[*wgpu.TextureView]*wgpu.BindGroup),
		releaseBindGroup: (*wgpu.BindGroup).Release,
	}
	n.encode = n.encodeLighting
	return n
}

func (n *LightingNode) State() NodeState { return n.state }

func (n *LightingNode) Run(ctx *RenderContext) error {
	p, err := n.builder.Get(ctx.Target.Format())
	if err != nil {
		// Reported by the builder.
		n.setState(NodePending)
		return nil
	}
	if n.buffers != nil && !n.buffers.Ready() {
		n.setState(NodePending)
		return nil
	}
	n.setState(NodeReady)

	source, destination := ctx.Target.PostProcessViews()
	if err := n.encode(ctx, p, source, destination); err != nil {
		return err
	}
	ctx.Target.Swap()
	return nil
}

func (n *LightingNode) setState(s NodeState) {
	if n.state == s {
		return
	}
	n.logger.Debugf("lighting node %v -> %v", n.state, s)
	n.state = s
}

func (n *LightingNode) encodeLighting(ctx *RenderContext, p *LightingPipeline, source, destination *wgpu.TextureView) error {
	group, err := n.bindGroup(ctx.Device, p, source)
	if err != nil {
		return err
	}

	pass := ctx.Encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "light2d_lighting_pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       destination,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
			},
		},
	})
	defer pass.Release()

	pass.SetPipeline(p.Pipeline)
	pass.SetBindGroup(0, group, nil)
	pass.Draw(3, 1, 0, 0)
	return pass.End()
}

// bindGroup returns the bind group reading source. Groups are kept per source
// view, since the view target alternates between two, and dropped when the
// pipeline or a buffer is recreated.
func (n *LightingNode) bindGroup(device *wgpu.Device, p *LightingPipeline, source *wgpu.TextureView) (*wgpu.BindGroup, error) {
	generation := n.buffers.Generation()
	if n.bindPipeline != p || n.bindGeneration != generation {
		n.releaseBindGroups()
		n.bindPipeline = p
		n.bindGeneration = generation
	}
	if group, ok := n.bindGroups[source]; ok {
		return group, nil
	}

	group, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "light2d_lighting_bind_group",
		Layout: p.Layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: BindingScreenTexture, TextureView: source},
			{Binding: BindingSampler, Sampler: p.Sampler},
			{Binding: BindingView, Buffer: n.buffers.View.Buffer(), Size: wgpu.WholeSize},
			{Binding: BindingAmbientLight, Buffer: n.buffers.Ambient.Buffer(), Size: wgpu.WholeSize},
			{Binding: BindingPointLights, Buffer: n.buffers.PointLights.Buffer(), Size: wgpu.WholeSize},
			{Binding: BindingOccluders, Buffer: n.buffers.Occluders.Buffer(), Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("lighting bind group: %w", err)
	}
	n.bindGroups[source] = group
	return group, nil
}

func (n *LightingNode) releaseBindGroups() {
	for view, group := range n.bindGroups {
		n.releaseBindGroup(group)
		delete(n.bindGroups, view)
	}
}

// Reset drops the cached bind groups. Call it when the view target is
// recreated.
func (n *LightingNode) Reset() {
	n.releaseBindGroups()
}

func (n *LightingNode) Release() {
	n.releaseBindGroups()
	n.bindPipeline = nil
}

// MainPassNode clears the view target and draws the background texture, if
// one is set.
type MainPassNode struct {
	ClearColor wgpu.Color

	blit  *BlitPipeline
	group *wgpu.BindGroup
}

func NewMainPassNode(clear wgpu.Color) *MainPassNode {
	return &MainPassNode{ClearColor: clear}
}

// SetBackground makes the pass draw view over the clear color.
func (n *MainPassNode) SetBackground(device *wgpu.Device, blit *BlitPipeline, view *wgpu.TextureView) error {
	group, err := blit.BindGroup(device, view)
	if err != nil {
		return fmt.Errorf("background bind group: %w", err)
	}
	if n.group != nil {
		n.group.Release()
	}
	n.blit = blit
	n.group = group
	return nil
}

func (n *MainPassNode) Run(ctx *RenderContext) error {
	if n.blit != nil {
		return n.blit.Draw(ctx.Encoder, n.group, ctx.Target.MainView(), wgpu.LoadOpClear, n.ClearColor)
	}

	pass := ctx.Encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "light2d_main_pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       ctx.Target.MainView(),
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: n.ClearColor,
			},
		},
	})
	defer pass.Release()
	return pass.End()
}

func (n *MainPassNode) Release() {
	if n.group != nil {
		n.group.Release()
		n.group = nil
	}
}

// BlitNode copies the view target to the surface.
type BlitNode struct {
	blit   *BlitPipeline
	groups map[*wgpu.TextureView]*wgpu.BindGroup
}

func NewBlitNode(blit *BlitPipeline) *BlitNode {
	return &BlitNode{blit: blit, groups: make(map[*wgpu.TextureView]*wgpu.BindGroup)}
}

func (n *BlitNode) Run(ctx *RenderContext) error {
	source := ctx.Target.MainView()
	group, ok := n.groups[source]
	if !ok {
		var err error
		group, err = n.blit.BindGroup(ctx.Device, source)
		if err != nil {
			return fmt.Errorf("blit bind group: %w", err)
		}
		n.groups[source] = group
	}
	return n.blit.Draw(ctx.Encoder, group, ctx.Output, wgpu.LoadOpClear, wgpu.Color{A: 1})
}

// Reset drops the cached bind groups, e.g. after the view target was
// recreated.
func (n *BlitNode) Reset() {
	for view, group := range n.groups {
		group.Release()
		delete(n.groups, view)
	}
}
