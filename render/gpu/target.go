package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// PostProcessTarget is a ping-pong pair of color textures. A post-process
// pass reads the current main texture, writes the other one, then swaps.
type PostProcessTarget interface {
	Format() wgpu.TextureFormat
	MainView() *wgpu.TextureView
	PostProcessViews() (source, destination *wgpu.TextureView)
	Swap()
}

// ViewTarget is the offscreen color target the frame is rendered into before
// it is blitted to the surface.
type ViewTarget struct {
	textures [2]*wgpu.Texture
	views    [2]*wgpu.TextureView
	main     int
	format   wgpu.TextureFormat
	width    uint32
	height   uint32
}

func NewViewTarget(device *wgpu.Device, width, height uint32, format wgpu.TextureFormat) (*ViewTarget, error) {
	t := &ViewTarget{format: format, width: width, height: height}
	for i := range t.textures {
		tex, err := device.CreateTexture(&wgpu.TextureDescriptor{
			Label:         fmt.Sprintf("light2d_view_target_%d", i),
			Size:          wgpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     wgpu.TextureDimension2D,
			Format:        format,
			Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
		})
		if err != nil {
			t.Release()
			return nil, fmt.Errorf("create view target texture: %w", err)
		}
		t.textures[i] = tex

		view, err := tex.CreateView(nil)
		if err != nil {
			t.Release()
			return nil, fmt.Errorf("create view target view: %w", err)
		}
		t.views[i] = view
	}
	return t, nil
}

func (t *ViewTarget) Format() wgpu.TextureFormat  { return t.format }
func (t *ViewTarget) Size() (uint32, uint32)      { return t.width, t.height }
func (t *ViewTarget) MainView() *wgpu.TextureView { return t.views[t.main] }

func (t *ViewTarget) PostProcessViews() (source, destination *wgpu.TextureView) {
	return t.views[t.main], t.views[1-t.main]
}

func (t *ViewTarget) Swap() {
	t.main = 1 - t.main
}

func (t *ViewTarget) Release() {
	for i := range t.textures {
		if t.views[i] != nil {
			t.views[i].Release()
			t.views[i] = nil
		}
		if t.textures[i] != nil {
			t.textures[i].Release()
			t.textures[i] = nil
		}
	}
}
