package light2d

import (
	"github.com/go-gl/mathgl/mgl32"
)

// TransformComponent is the world transform of an entity. Lights and
// occluders are placed at Position.XY.
type TransformComponent struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

func NewTransform(x, y float32) TransformComponent {
	return TransformComponent{
		Position: mgl32.Vec3{x, y, 0},
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

func (t TransformComponent) Translation2d() mgl32.Vec2 {
	return mgl32.Vec2{t.Position.X(), t.Position.Y()}
}

// LocalTransformComponent is the transform relative to Parent. The hierarchy
// system derives TransformComponent from it.
type LocalTransformComponent struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

func NewLocalTransform(x, y float32) LocalTransformComponent {
	return LocalTransformComponent(NewTransform(x, y))
}

type Parent struct {
	Entity EntityId
}

// composeTransform returns the world transform of a child with the given
// local transform.
func composeTransform(parent TransformComponent, local LocalTransformComponent) TransformComponent {
	// Components are combined directly so that negative scales survive.
	scaledLocalPos := mgl32.Vec3{
		local.Position.X() * parent.Scale.X(),
		local.Position.Y() * parent.Scale.Y(),
		local.Position.Z() * parent.Scale.Z(),
	}
	return TransformComponent{
		Position: parent.Position.Add(parent.Rotation.Rotate(scaledLocalPos)),
		Rotation: parent.Rotation.Mul(local.Rotation).Normalize(),
		Scale: mgl32.Vec3{
			parent.Scale.X() * local.Scale.X(),
			parent.Scale.Y() * local.Scale.Y(),
			parent.Scale.Z() * local.Scale.Z(),
		},
	}
}
