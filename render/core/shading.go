package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Falloff maps a normalised distance x = d/radius to a light weight. It is 1
// at x = 0, exactly 0 for x >= 1 and smooth in between.
func Falloff(x float32) float32 {
	if !(x < 1) {
		return 0
	}
	if x <= 0 {
		return 1
	}
	t := 1 - x
	return t * t * (3 - 2*t)
}

// Attenuation is the weight of a light with the given radius at distance d.
// A light with a non-positive radius reaches nothing.
func Attenuation(d, radius float32) float32 {
	if !(radius > 0) || d >= radius {
		return 0
	}
	return Falloff(d / radius)
}

// SegmentIntersectsCircle reports whether the segment a-b passes strictly
// inside the circle at c. Touching the rim does not count.
func SegmentIntersectsCircle(a, b, c mgl32.Vec2, radius float32) bool {
	if !(radius > 0) {
		return false
	}
	ab := b.Sub(a)
	var t float32
	if lenSq := ab.Dot(ab); lenSq > 0 {
		t = mgl32.Clamp(c.Sub(a).Dot(ab)/lenSq, 0, 1)
	}
	closest := a.Add(ab.Mul(t))
	delta := c.Sub(closest)
	return delta.Dot(delta) < radius*radius
}

// Occluded reports whether any occluder blocks the path from light to p.
func Occluded(light, p mgl32.Vec2, occluders []ExtractedCircularOccluder2d) bool {
	for _, o := range occluders {
		if SegmentIntersectsCircle(light, p, o.Center, o.Radius) {
			return true
		}
	}
	return false
}

// AccumulateLight returns the linear light reaching world position p.
func AccumulateLight(p mgl32.Vec2, frame *LightingFrame) mgl32.Vec3 {
	light := frame.Ambient.Color.Mul(frame.Ambient.Intensity)
	occluders := frame.Occluders.Items()

	for _, pl := range frame.PointLights.Items() {
		att := Attenuation(pl.Center.Sub(p).Len(), pl.Radius)
		if att == 0 {
			continue
		}
		if Occluded(pl.Center, p, occluders) {
			continue
		}
		light = light.Add(pl.Color.Mul(pl.Intensity * att))
	}
	return light
}

// ShadePixel modulates a linear scene color by the light at p. Alpha is
// passed through.
func ShadePixel(scene mgl32.Vec4, p mgl32.Vec2, frame *LightingFrame) mgl32.Vec4 {
	light := AccumulateLight(p, frame)
	return mgl32.Vec4{
		clamp01(scene[0] * light[0]),
		clamp01(scene[1] * light[1]),
		clamp01(scene[2] * light[2]),
		scene[3],
	}
}

func clamp01(v float32) float32 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
