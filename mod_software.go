package light2d

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"runtime"

	"github.com/gekko3d/light2d/render/core"
	"golang.org/x/image/draw"
)

// SoftwareRendererModule renders headless: every frame the scene image is lit
// on the CPU into the SoftwareFrame resource.
type SoftwareRendererModule struct {
	Width  int
	Height int
	// Background is a texture asset used as the scene. Without one the scene
	// is ClearColor.
	Background AssetId
	ClearColor color.RGBA
	// Workers is the size of the compositing pool; zero means one per CPU.
	Workers int
}

// SoftwareFrame is the last lit frame.
type SoftwareFrame struct {
	Image *image.RGBA
	Count uint64
}

func (f *SoftwareFrame) WritePNG(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	if err := png.Encode(file, f.Image); err != nil {
		file.Close()
		return fmt.Errorf("encode frame: %w", err)
	}
	return file.Close()
}

func (mod SoftwareRendererModule) Install(app *App, cmd *Commands) {
	ensureSingleRenderer(app, RendererSoftware)
	width, height := mod.Width, mod.Height
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 720
	}
	workers := mod.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	scene := mod.scene(app, width, height)
	out := &SoftwareFrame{Image: image.NewRGBA(image.Rect(0, 0, width, height))}
	compositor := core.NewCompositor(workers)
	app.OnShutdown(compositor.Close)

	ensureLightingFrame(app)
	viewport := ensureViewport(app)
	viewport.Width, viewport.Height = uint32(width), uint32(height)
	app.addResources(out)

	app.UseSystem(
		System(func(frame *core.LightingFrame, out *SoftwareFrame) {
			compositor.Composite(out.Image, scene, frame)
			out.Count++
		}).
			InStage(Render).
			RunAlways(),
	)
	app.Logger().Infof("software renderer ready (%dx%d, %d workers)", width, height, workers)
}

func (mod SoftwareRendererModule) scene(app *App, width, height int) *image.RGBA {
	scene := image.NewRGBA(image.Rect(0, 0, width, height))
	clear := mod.ClearColor
	if clear == (color.RGBA{}) {
		clear = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	draw.Draw(scene, scene.Bounds(), image.NewUniform(clear), image.Point{}, draw.Src)

	if mod.Background == "" {
		return scene
	}
	assets, ok := Resource[AssetServer](app)
	if !ok {
		app.Logger().Warnf("background %s ignored: no AssetServer", mod.Background)
		return scene
	}
	tex, ok := assets.Texture(mod.Background)
	if !ok {
		app.Logger().Warnf("background %s ignored: unknown texture", mod.Background)
		return scene
	}
	draw.BiLinear.Scale(scene, scene.Bounds(), tex.Image, tex.Image.Bounds(), draw.Over, nil)
	return scene
}
