package light2d

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/light2d/render/gpu"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// ViewTargetFormat is the format of the offscreen target that is lit before
// it reaches the surface.
const ViewTargetFormat = wgpu.TextureFormatRGBA8UnormSrgb

// ClientModule opens a window and renders the frame with wgpu.
type ClientModule struct {
	WindowWidth  int
	WindowHeight int
	WindowTitle  string
	ClearColor   wgpu.Color
	// Background is a texture asset drawn over the clear color by the main
	// pass. Requires AssetServerModule.
	Background AssetId
}

// RenderState holds the GPU objects of the wgpu renderer.
type RenderState struct {
	window *windowState
	gpu    *gpuState
	logger Logger

	target     *gpu.ViewTarget
	graph      *gpu.RenderGraph
	mainPass   *gpu.MainPassNode
	blitNode   *gpu.BlitNode
	targetBlit *gpu.BlitPipeline
	surfBlit   *gpu.BlitPipeline
	background []releaser

	lighting *gpuLighting
}

type releaser interface{ Release() }

func (rs *RenderState) Device() *wgpu.Device     { return rs.gpu.device }
func (rs *RenderState) Queue() *wgpu.Queue       { return rs.gpu.queue }
func (rs *RenderState) Graph() *gpu.RenderGraph  { return rs.graph }
func (rs *RenderState) Target() *gpu.ViewTarget  { return rs.target }
func (rs *RenderState) Lighting() *gpu.LightingNode {
	if rs.lighting == nil {
		return nil
	}
	return rs.lighting.node
}

func (mod ClientModule) Install(app *App, cmd *Commands) {
	ensureSingleRenderer(app, RendererWGPU)
	width, height, title := mod.WindowWidth, mod.WindowHeight, mod.WindowTitle
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 720
	}
	if title == "" {
		title = "light2d"
	}
	clear := mod.ClearColor
	if clear == (wgpu.Color{}) {
		clear = wgpu.Color{R: 1, G: 1, B: 1, A: 1}
	}

	logger := app.Logger()
	win, err := createWindowState(width, height, title)
	if err != nil {
		logger.Errorf("window: %v", err)
		panic(err)
	}
	gs, err := createGpuState(win)
	if err != nil {
		logger.Errorf("gpu: %v", err)
		panic(err)
	}

	rs := &RenderState{window: win, gpu: gs, logger: logger}
	if err := rs.createTarget(uint32(width), uint32(height)); err != nil {
		panic(err)
	}

	rs.targetBlit, err = gpu.NewBlitPipeline(gs.device, ViewTargetFormat)
	if err != nil {
		panic(err)
	}
	rs.surfBlit, err = gpu.NewBlitPipeline(gs.device, gs.surfaceConfig.Format)
	if err != nil {
		panic(err)
	}

	rs.mainPass = gpu.NewMainPassNode(clear)
	rs.blitNode = gpu.NewBlitNode(rs.surfBlit)
	rs.graph = gpu.NewRenderGraph()
	rs.graph.AddNode(gpu.NodeMainPass, rs.mainPass)
	rs.graph.AddNode(gpu.NodeBlit, rs.blitNode)
	if err := rs.graph.AddEdge(gpu.NodeMainPass, gpu.NodeBlit); err != nil {
		panic(err)
	}

	if mod.Background != "" {
		rs.setBackground(app, mod.Background)
	}

	viewport := ensureViewport(app)
	viewport.Width, viewport.Height = uint32(width), uint32(height)

	app.addResources(rs)
	logger.Infof("wgpu renderer ready (%dx%d, surface %v)", width, height, gs.surfaceConfig.Format)

	if settings, ok := Resource[Light2dSettings](app); ok {
		installGpuLighting(app, rs, settings)
	}

	app.UseSystem(
		System(windowEventsSystem).
			InStage(PreUpdate).
			RunAlways(),
	)
	app.UseSystem(
		System(renderSystem).
			InStage(Render).
			RunAlways(),
	)
	app.OnShutdown(rs.release)
}

func (rs *RenderState) createTarget(width, height uint32) error {
	target, err := gpu.NewViewTarget(rs.gpu.device, width, height, ViewTargetFormat)
	if err != nil {
		return err
	}
	if rs.target != nil {
		rs.target.Release()
	}
	rs.target = target
	return nil
}

func (rs *RenderState) setBackground(app *App, id AssetId) {
	assets, ok := Resource[AssetServer](app)
	if !ok {
		rs.logger.Warnf("background %s ignored: no AssetServer", id)
		return
	}
	tex, ok := assets.Texture(id)
	if !ok {
		rs.logger.Warnf("background %s ignored: unknown texture", id)
		return
	}
	texture, view, err := createTextureView(rs.gpu, tex.Image, "light2d_background")
	if err != nil {
		rs.logger.Errorf("background: %v", err)
		return
	}
	if err := rs.mainPass.SetBackground(rs.gpu.device, rs.targetBlit, view); err != nil {
		rs.logger.Errorf("background: %v", err)
		view.Release()
		texture.Release()
		return
	}
	rs.background = append(rs.background, view, texture)
}

func (rs *RenderState) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	rs.gpu.resize(uint32(width), uint32(height))
	if err := rs.createTarget(uint32(width), uint32(height)); err != nil {
		rs.logger.Errorf("resize: %v", err)
		return
	}
	rs.blitNode.Reset()
	if rs.lighting != nil {
		rs.lighting.node.Reset()
	}
	rs.logger.Debugf("resized to %dx%d", width, height)
}

func (rs *RenderState) release() {
	if rs.lighting != nil {
		rs.lighting.release()
	}
	rs.blitNode.Reset()
	rs.mainPass.Release()
	for _, r := range rs.background {
		r.Release()
	}
	rs.surfBlit.Release()
	rs.targetBlit.Release()
	rs.target.Release()
	rs.gpu.release()
	rs.window.destroy()
}

func windowEventsSystem(cmd *Commands, rs *RenderState, viewport *ViewportSize) {
	glfw.PollEvents()
	if rs.window.window.ShouldClose() {
		cmd.Exit()
		return
	}

	width, height := rs.window.window.GetFramebufferSize()
	if width != rs.window.width || height != rs.window.height {
		rs.window.width, rs.window.height = width, height
		rs.resize(width, height)
		if width > 0 && height > 0 {
			viewport.Width, viewport.Height = uint32(width), uint32(height)
		}
	}
}

// renderSystem records and submits one frame. Failures are logged and the
// frame is dropped.
func renderSystem(rs *RenderState) {
	if rs.window.width <= 0 || rs.window.height <= 0 {
		return
	}

	surfaceTexture, err := rs.gpu.surface.GetCurrentTexture()
	if err != nil {
		rs.logger.Warnf("acquire surface texture: %v", err)
		return
	}
	if err := drawToSurface(surfaceTexture, (*wgpu.TextureView).Release, rs.drawFrame); err != nil {
		rs.logger.Errorf("%v", err)
	}
}

// surfaceFrame is the texture acquired from the surface for one frame.
// *wgpu.Texture implements it.
type surfaceFrame interface {
	CreateView(descriptor *wgpu.TextureViewDescriptor) (*wgpu.TextureView, error)
	Release()
}

// drawToSurface runs draw against a view of frame. The view and the frame
// are released on every path.
func drawToSurface(frame surfaceFrame, releaseView func(*wgpu.TextureView), draw func(view *wgpu.TextureView) error) error {
	defer frame.Release()

	view, err := frame.CreateView(nil)
	if err != nil {
		return fmt.Errorf("surface view: %w", err)
	}
	defer releaseView(view)

	return draw(view)
}

func (rs *RenderState) drawFrame(view *wgpu.TextureView) error {
	encoder, err := rs.gpu.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("command encoder: %w", err)
	}
	defer encoder.Release()

	ctx := &gpu.RenderContext{
		Device:  rs.gpu.device,
		Queue:   rs.gpu.queue,
		Encoder: encoder,
		Target:  rs.target,
		Output:  view,
	}
	if err := rs.graph.Run(ctx); err != nil {
		return fmt.Errorf("render graph: %w", err)
	}

	cmdBuffer, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("finish frame: %w", err)
	}
	defer cmdBuffer.Release()

	rs.gpu.queue.Submit(cmdBuffer)
	rs.gpu.surface.Present()
	return nil
}
