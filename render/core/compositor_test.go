package core

import (
	"image"
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniformScene(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestSRGBRoundTrip(t *testing.T) {
	for i := 0; i < 256; i++ {
		assert.Equal(t, uint8(i), srgb8(linear8(uint8(i))), "channel %d", i)
	}
}

func TestCompositorIdentity(t *testing.T) {
	const w, h = 16, 12
	scene := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range scene.Pix {
		scene.Pix[i] = uint8(i * 7)
	}
	for i := 3; i < len(scene.Pix); i += 4 {
		scene.Pix[i] = 255
	}

	f := NewLightingFrame()
	f.View = NewOrthographicView(mgl32.Vec2{}, 1, w, h)
	f.Ambient = ExtractedAmbientLight2d{Color: mgl32.Vec3{1, 1, 1}, Intensity: 1}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	NewCompositor(3).Composite(dst, scene, f)
	assert.Equal(t, scene.Pix, dst.Pix)
}

func TestCompositorBlackWithoutLight(t *testing.T) {
	const w, h = 8, 8
	f := NewLightingFrame()
	f.View = NewOrthographicView(mgl32.Vec2{}, 1, w, h)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	NewCompositor(2).Composite(dst, uniformScene(w, h, color.RGBA{200, 150, 100, 255}), f)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			assert.Equal(t, color.RGBA{0, 0, 0, 255}, dst.RGBAAt(x, y))
		}
	}
}

func TestCompositorShadow(t *testing.T) {
	const w, h = 64, 32
	f := NewLightingFrame()
	f.View = NewOrthographicView(mgl32.Vec2{}, 1, w, h)
	f.PointLights.Push(ExtractedPointLight2d{Center: mgl32.Vec2{-20, 0}, Radius: 60, Intensity: 1, Color: mgl32.Vec3{1, 1, 1}})
	f.Occluders.Push(ExtractedCircularOccluder2d{Center: mgl32.Vec2{0, 0}, Radius: 4})

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	NewCompositor(4).Composite(dst, uniformScene(w, h, color.RGBA{255, 255, 255, 255}), f)

	// Pixel columns are centred on x+0.5 in world space, rows on y+0.5.
	toPixel := func(p mgl32.Vec2) (int, int) {
		px := f.View.WorldToPixel(p)
		return int(px[0]), int(px[1])
	}

	lx, ly := toPixel(mgl32.Vec2{-19.5, 0.5})
	lit := dst.RGBAAt(lx, ly)
	assert.Greater(t, lit.R, uint8(200))

	sx, sy := toPixel(mgl32.Vec2{10.5, 0.5})
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, dst.RGBAAt(sx, sy))

	ox, oy := toPixel(mgl32.Vec2{10.5, 12.5})
	assert.Greater(t, dst.RGBAAt(ox, oy).R, uint8(0))
}

func TestCompositorResamplesScene(t *testing.T) {
	f := NewLightingFrame()
	f.View = NewOrthographicView(mgl32.Vec2{}, 1, 20, 10)
	f.Ambient = ExtractedAmbientLight2d{Color: mgl32.Vec3{1, 1, 1}, Intensity: 1}

	scene := uniformScene(5, 5, color.RGBA{10, 20, 30, 255})
	dst := image.NewRGBA(image.Rect(0, 0, 20, 10))
	c := NewCompositor(2)
	c.Composite(dst, scene, f)
	require.NotNil(t, c.scaled)
	assert.Equal(t, color.RGBA{10, 20, 30, 255}, dst.RGBAAt(13, 7))

	// A nil scene is treated as white.
	c.Composite(dst, nil, f)
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, dst.RGBAAt(0, 0))
}

func TestCompositorCloseKeepsOutput(t *testing.T) {
	const w, h = 32, 16
	f := NewLightingFrame()
	f.View = NewOrthographicView(mgl32.Vec2{}, 1, w, h)
	f.Ambient = ExtractedAmbientLight2d{Color: mgl32.Vec3{0.1, 0.1, 0.1}, Intensity: 1}
	f.PointLights.Push(ExtractedPointLight2d{Center: mgl32.Vec2{-8, 0}, Radius: 30, Intensity: 1, Color: mgl32.Vec3{1, 1, 1}})
	f.Occluders.Push(ExtractedCircularOccluder2d{Center: mgl32.Vec2{0, 0}, Radius: 3})
	scene := uniformScene(w, h, color.RGBA{255, 255, 255, 255})

	c := NewCompositor(4)
	pooled := image.NewRGBA(image.Rect(0, 0, w, h))
	c.Composite(pooled, scene, f)

	c.Close()
	c.Close()
	assert.True(t, c.closed)

	inline := image.NewRGBA(image.Rect(0, 0, w, h))
	c.Composite(inline, scene, f)
	assert.Equal(t, pooled.Pix, inline.Pix)
}
