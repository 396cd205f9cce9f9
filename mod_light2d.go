package light2d

import (
	"time"

	"github.com/gekko3d/light2d/render/core"
	"github.com/gekko3d/light2d/render/gpu"
)

// Light2dModule adds 2D lighting: extraction of lights and occluders every
// frame, and the lighting pass of whichever renderer is installed.
type Light2dModule struct {
	// ShaderSource replaces the embedded lighting fragment shader.
	ShaderSource string
	// ShaderAsset is a shader loaded through the AssetServer. It is re-read
	// every ShaderReloadInterval when that is non-zero.
	ShaderAsset          AssetId
	ShaderReloadInterval time.Duration
}

// Light2dSettings is the resource form of Light2dModule.
type Light2dSettings struct {
	ShaderSource         string
	ShaderAsset          AssetId
	ShaderReloadInterval time.Duration
}

type gpuLighting struct {
	buffers *gpu.LightBuffers
	builder *gpu.LightingPipelineBuilder
	node    *gpu.LightingNode
	reload  shaderReloadState
}

func (l *gpuLighting) release() {
	l.node.Release()
	l.builder.Release()
	l.buffers.Release()
}

func (mod Light2dModule) Install(app *App, cmd *Commands) {
	settings := &Light2dSettings{
		ShaderSource:         mod.ShaderSource,
		ShaderAsset:          mod.ShaderAsset,
		ShaderReloadInterval: mod.ShaderReloadInterval,
	}
	app.addResources(settings)
	ensureLightingFrame(app)
	ensureViewport(app)

	app.UseSystem(
		System(extractLightingSystem).
			InStage(PreRender).
			RunAlways(),
	)

	if rs, ok := Resource[RenderState](app); ok {
		installGpuLighting(app, rs, settings)
	}
}

// installGpuLighting wires the lighting node between the main pass and the
// blit. It runs from whichever of Light2dModule and ClientModule is installed
// second.
func installGpuLighting(app *App, rs *RenderState, settings *Light2dSettings) {
	if rs.lighting != nil {
		return
	}
	logger := app.Logger()

	source := settings.ShaderSource
	if settings.ShaderAsset != "" {
		if assets, ok := Resource[AssetServer](app); ok {
			if shader, ok := assets.Shader(settings.ShaderAsset); ok {
				source = shader.Source
			} else {
				logger.Warnf("lighting shader %s not found, using the embedded one", settings.ShaderAsset)
			}
		}
	}

	lighting := &gpuLighting{
		buffers: gpu.NewLightBuffers(rs.gpu.device),
		builder: gpu.NewLightingPipelineBuilder(rs.gpu.device, logger, source),
	}
	lighting.node = gpu.NewLightingNode(lighting.builder, lighting.buffers, logger)
	rs.lighting = lighting

	rs.graph.AddNode(gpu.NodeLighting, lighting.node)
	for _, edge := range [][2]string{{gpu.NodeMainPass, gpu.NodeLighting}, {gpu.NodeLighting, gpu.NodeBlit}} {
		if err := rs.graph.AddEdge(edge[0], edge[1]); err != nil {
			panic(err)
		}
	}

	app.UseSystem(
		System(uploadLightingSystem).
			InStage(PreRender).
			RunAlways(),
	)
	_, hasTime := Resource[Time](app)
	_, hasAssets := Resource[AssetServer](app)
	if settings.ShaderAsset != "" && settings.ShaderReloadInterval > 0 {
		if !hasTime || !hasAssets {
			logger.Warnf("lighting shader reload needs TimeModule and AssetServerModule; disabled")
		} else {
			app.UseSystem(
				System(shaderReloadSystem).
					InStage(PreUpdate).
					RunAlways(),
			)
		}
	}
	logger.Infof("lighting pass installed")
}

func uploadLightingSystem(frame *core.LightingFrame, rs *RenderState) {
	if rs.lighting == nil {
		return
	}
	if err := rs.lighting.buffers.Upload(rs.gpu.queue, frame); err != nil {
		rs.logger.Errorf("upload lights: %v", err)
	}
}

type shaderReloadState struct {
	next time.Duration
}

func shaderReloadSystem(t *Time, assets *AssetServer, settings *Light2dSettings, rs *RenderState) {
	if rs.lighting == nil || t.Elapsed < rs.lighting.reload.next {
		return
	}
	rs.lighting.reload.next = t.Elapsed + settings.ShaderReloadInterval

	changed, err := assets.ReloadShader(settings.ShaderAsset)
	if err != nil {
		rs.logger.Warnf("lighting shader reload: %v", err)
		return
	}
	if !changed {
		return
	}
	shader, _ := assets.Shader(settings.ShaderAsset)
	rs.lighting.builder.SetShaderSource(shader.Source)
	rs.logger.Infof("lighting shader reloaded")
}

func ensureLightingFrame(app *App) *core.LightingFrame {
	if frame, ok := Resource[core.LightingFrame](app); ok {
		return frame
	}
	frame := core.NewLightingFrame()
	app.addResources(frame)
	return frame
}

func ensureViewport(app *App) *ViewportSize {
	if viewport, ok := Resource[ViewportSize](app); ok {
		return viewport
	}
	viewport := &ViewportSize{Width: 1, Height: 1}
	app.addResources(viewport)
	return viewport
}
