package core

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// GpuRecord is a fixed-size value with a WGSL-compatible byte layout.
type GpuRecord interface {
	Size() int
	MarshalTo(dst []byte)
}

const (
	AmbientLightSize      = 16
	PointLightSize        = 32
	CircularOccluderSize  = 16
	ViewUniformSize       = 144
	ArrayBufferHeaderSize = 16
)

// ExtractedAmbientLight2d matches
//
//	struct AmbientLight2d { color: vec3<f32>, intensity: f32 }
type ExtractedAmbientLight2d struct {
	Color     mgl32.Vec3
	Intensity float32
}

func (a ExtractedAmbientLight2d) Size() int { return AmbientLightSize }

func (a ExtractedAmbientLight2d) MarshalTo(dst []byte) {
	putVec3(dst[0:], a.Color)
	putF32(dst[12:], a.Intensity)
}

// ExtractedPointLight2d matches
//
//	struct PointLight2d {
//	    center: vec2<f32>, radius: f32, _pad: f32,
//	    color: vec3<f32>, intensity: f32,
//	}
type ExtractedPointLight2d struct {
	Center    mgl32.Vec2
	Radius    float32
	Color     mgl32.Vec3
	Intensity float32
}

func (p ExtractedPointLight2d) Size() int { return PointLightSize }

func (p ExtractedPointLight2d) MarshalTo(dst []byte) {
	putVec2(dst[0:], p.Center)
	putF32(dst[8:], p.Radius)
	putF32(dst[12:], 0)
	putVec3(dst[16:], p.Color)
	putF32(dst[28:], p.Intensity)
}

// ExtractedCircularOccluder2d matches
//
//	struct CircularOccluder2d { center: vec2<f32>, radius: f32, _pad: f32 }
type ExtractedCircularOccluder2d struct {
	Center mgl32.Vec2
	Radius float32
}

func (o ExtractedCircularOccluder2d) Size() int { return CircularOccluderSize }

func (o ExtractedCircularOccluder2d) MarshalTo(dst []byte) {
	putVec2(dst[0:], o.Center)
	putF32(dst[8:], o.Radius)
	putF32(dst[12:], 0)
}

func putF32(dst []byte, v float32) {
	binary.LittleEndian.PutUint32(dst, math.Float32bits(v))
}

func putVec2(dst []byte, v mgl32.Vec2) {
	putF32(dst[0:], v[0])
	putF32(dst[4:], v[1])
}

func putVec3(dst []byte, v mgl32.Vec3) {
	putF32(dst[0:], v[0])
	putF32(dst[4:], v[1])
	putF32(dst[8:], v[2])
}

func putVec4(dst []byte, v mgl32.Vec4) {
	for i := 0; i < 4; i++ {
		putF32(dst[i*4:], v[i])
	}
}

func putMat4(dst []byte, m mgl32.Mat4) {
	// mgl32 matrices are column-major, same as WGSL mat4x4.
	for i := 0; i < 16; i++ {
		putF32(dst[i*4:], m[i])
	}
}

// Bytes returns a freshly allocated encoding of r.
func Bytes(r GpuRecord) []byte {
	buf := make([]byte, r.Size())
	r.MarshalTo(buf)
	return buf
}
