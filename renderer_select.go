package light2d

// RendererName identifies a concrete renderer module.
type RendererName string

const (
	RendererWGPU     RendererName = "wgpu"
	RendererSoftware RendererName = "software"
)

// UseRenderer installs exactly one renderer module.
// Usage:
//
//	app.UseRenderer(RendererWGPU, ClientModule{})
func (app *App) UseRenderer(name RendererName, mod Module) *App {
	ensureSingleRenderer(app, name)
	app.Logger().Infof("Renderer selected: %s", name)
	app.UseModules(mod)
	return app
}

// UseWGPU selects the windowed wgpu renderer.
func (app *App) UseWGPU(width, height int, title string) *App {
	return app.UseRenderer(RendererWGPU, ClientModule{
		WindowWidth:  width,
		WindowHeight: height,
		WindowTitle:  title,
	})
}

// UseSoftware selects the headless CPU renderer.
func (app *App) UseSoftware(width, height int) *App {
	return app.UseRenderer(RendererSoftware, SoftwareRendererModule{
		Width:  width,
		Height: height,
	})
}
