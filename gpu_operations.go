package light2d

import (
	"fmt"
	"image"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

type windowState struct {
	window *glfw.Window
	width  int
	height int
	title  string
}

type gpuState struct {
	instance      *wgpu.Instance
	surface       *wgpu.Surface
	adapter       *wgpu.Adapter
	device        *wgpu.Device
	queue         *wgpu.Queue
	surfaceConfig *wgpu.SurfaceConfiguration
}

func createWindowState(width, height int, title string) (*windowState, error) {
	// GLFW must stay on the main thread.
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // no OpenGL context, wgpu owns the surface
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}

	return &windowState{window: win, width: width, height: height, title: title}, nil
}

func (w *windowState) destroy() {
	w.window.Destroy()
	glfw.Terminate()
}

func createGpuState(w *windowState) (*gpuState, error) {
	instance := wgpu.CreateInstance(nil)
	surface := instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(w.window))

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return nil, fmt.Errorf("request adapter: %w", err)
	}

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "light2d_device",
	})
	if err != nil {
		return nil, fmt.Errorf("request device: %w", err)
	}

	caps := surface.GetCapabilities(adapter)
	if len(caps.Formats) == 0 {
		return nil, fmt.Errorf("surface reports no supported formats")
	}
	cfg := wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(w.width),
		Height:      uint32(w.height),
		PresentMode: wgpu.PresentModeFifo, // vsync
		AlphaMode:   caps.AlphaModes[0],
	}
	surface.Configure(adapter, device, &cfg)

	return &gpuState{
		instance:      instance,
		surface:       surface,
		adapter:       adapter,
		device:        device,
		queue:         device.GetQueue(),
		surfaceConfig: &cfg,
	}, nil
}

func (g *gpuState) resize(width, height uint32) {
	g.surfaceConfig.Width = width
	g.surfaceConfig.Height = height
	g.surface.Configure(g.adapter, g.device, g.surfaceConfig)
}

func (g *gpuState) release() {
	g.queue.Release()
	g.device.Release()
	g.adapter.Release()
	g.surface.Release()
	g.instance.Release()
}

// createTextureView uploads an RGBA image as an sRGB texture.
func createTextureView(g *gpuState, img *image.RGBA, label string) (*wgpu.Texture, *wgpu.TextureView, error) {
	b := img.Bounds()
	extent := wgpu.Extent3D{
		Width:              uint32(b.Dx()),
		Height:             uint32(b.Dy()),
		DepthOrArrayLayers: 1,
	}
	texture, err := g.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Size:          extent,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create texture %s: %w", label, err)
	}

	err = g.queue.WriteTexture(
		texture.AsImageCopy(),
		img.Pix,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(img.Stride),
			RowsPerImage: extent.Height,
		},
		&extent,
	)
	if err != nil {
		texture.Release()
		return nil, nil, fmt.Errorf("upload texture %s: %w", label, err)
	}

	view, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return nil, nil, fmt.Errorf("create view %s: %w", label, err)
	}
	return texture, view, nil
}
