package light2d

import (
	"math"

	"github.com/gekko3d/light2d/render/core"
	"github.com/go-gl/mathgl/mgl32"
)

// extractLightingSystem rebuilds the LightingFrame from the world. Entities
// are visited in ascending id order, so an unchanged world always produces
// the same bytes.
func extractLightingSystem(cmd *Commands, frame *core.LightingFrame, viewport *ViewportSize) {
	frame.Reset()
	frame.View = extractView(cmd, viewport)
	frame.Ambient = extractAmbient(cmd)

	MakeQuery2[TransformComponent, PointLight2d](cmd).Map(
		func(eid EntityId, tr *TransformComponent, light *PointLight2d) bool {
			frame.PointLights.Push(core.ExtractedPointLight2d{
				Center:    tr.Translation2d(),
				Radius:    nonNegative(light.Radius),
				Color:     sanitizeColor(light.Color),
				Intensity: nonNegative(light.Intensity),
			})
			return true
		})

	MakeQuery2[TransformComponent, CircularOccluder2d](cmd).Map(
		func(eid EntityId, tr *TransformComponent, occluder *CircularOccluder2d) bool {
			frame.Occluders.Push(core.ExtractedCircularOccluder2d{
				Center: tr.Translation2d(),
				Radius: nonNegative(occluder.Radius),
			})
			return true
		})
}

func extractView(cmd *Commands, viewport *ViewportSize) core.ViewUniform {
	center := mgl32.Vec2{}
	scale := float32(1)
	MakeQuery2[TransformComponent, Camera2dComponent](cmd).Map(
		func(eid EntityId, tr *TransformComponent, cam *Camera2dComponent) bool {
			center = tr.Translation2d()
			scale = cam.Scale
			return false
		})
	return core.NewOrthographicView(center, scale, viewport.Width, viewport.Height)
}

// extractAmbient sums every ambient light and clamps the result per channel.
// No ambient light means no ambient term.
func extractAmbient(cmd *Commands) core.ExtractedAmbientLight2d {
	var sum mgl32.Vec3
	found := false
	MakeQuery1[AmbientLight2d](cmd).Map(func(eid EntityId, ambient *AmbientLight2d) bool {
		found = true
		c := sanitizeColor(ambient.Color)
		sum = sum.Add(c.Mul(nonNegative(ambient.Intensity)))
		return true
	})
	if !found {
		return core.ExtractedAmbientLight2d{}
	}
	return core.ExtractedAmbientLight2d{
		Color:     mgl32.Vec3{clamp01(sum[0]), clamp01(sum[1]), clamp01(sum[2])},
		Intensity: 1,
	}
}

// nonNegative maps negative, NaN and infinite values to zero.
func nonNegative(v float32) float32 {
	if !(v > 0) || v > math.MaxFloat32 {
		return 0
	}
	return v
}

func sanitizeColor(c [3]float32) mgl32.Vec3 {
	return mgl32.Vec3{nonNegative(c[0]), nonNegative(c[1]), nonNegative(c[2])}
}

func clamp01(v float32) float32 {
	return min(nonNegative(v), 1)
}
