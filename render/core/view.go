package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// ViewUniform is the camera data shared by every shader invocation.
//
//	struct View {
//	    clip_from_world: mat4x4<f32>,
//	    world_from_clip: mat4x4<f32>,
//	    viewport: vec4<f32>, // x, y, width, height
//	}
type ViewUniform struct {
	ClipFromWorld mgl32.Mat4
	WorldFromClip mgl32.Mat4
	Viewport      mgl32.Vec4
}

func (v ViewUniform) Size() int { return ViewUniformSize }

func (v ViewUniform) MarshalTo(dst []byte) {
	putMat4(dst[0:], v.ClipFromWorld)
	putMat4(dst[64:], v.WorldFromClip)
	putVec4(dst[128:], v.Viewport)
}

// NewOrthographicView builds a 2D view centred on center. One world unit maps
// to 1/scale pixels; scale <= 0 is treated as 1. Y points up in world space.
func NewOrthographicView(center mgl32.Vec2, scale float32, width, height uint32) ViewUniform {
	if !(scale > 0) {
		scale = 1
	}
	if width == 0 {
		width = 1
	}
	if height == 0 {
		height = 1
	}
	halfW := float32(width) * scale / 2
	halfH := float32(height) * scale / 2

	clipFromWorld := mgl32.Ortho(
		center[0]-halfW, center[0]+halfW,
		center[1]-halfH, center[1]+halfH,
		-1000, 1000,
	)
	return ViewUniform{
		ClipFromWorld: clipFromWorld,
		WorldFromClip: clipFromWorld.Inv(),
		Viewport:      mgl32.Vec4{0, 0, float32(width), float32(height)},
	}
}

// WorldFromUV maps a screen texture coordinate (origin top-left) to world
// space, the same way the lighting shader does.
func (v ViewUniform) WorldFromUV(uv mgl32.Vec2) mgl32.Vec2 {
	ndc := mgl32.Vec4{uv[0]*2 - 1, 1 - uv[1]*2, 0, 1}
	world := v.WorldFromClip.Mul4x1(ndc)
	if world[3] == 0 {
		return mgl32.Vec2{world[0], world[1]}
	}
	return mgl32.Vec2{world[0] / world[3], world[1] / world[3]}
}

// WorldFromPixel returns the world position of the centre of pixel (px, py).
func (v ViewUniform) WorldFromPixel(px, py int) mgl32.Vec2 {
	uv := mgl32.Vec2{
		(float32(px) + 0.5) / v.Viewport[2],
		(float32(py) + 0.5) / v.Viewport[3],
	}
	return v.WorldFromUV(uv)
}

// WorldToPixel is the inverse of WorldFromPixel, without the half-pixel
// offset.
func (v ViewUniform) WorldToPixel(p mgl32.Vec2) mgl32.Vec2 {
	clip := v.ClipFromWorld.Mul4x1(mgl32.Vec4{p[0], p[1], 0, 1})
	u := (clip[0] + 1) / 2
	vv := (1 - clip[1]) / 2
	return mgl32.Vec2{u * v.Viewport[2], vv * v.Viewport[3]}
}
