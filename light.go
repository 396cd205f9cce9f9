package light2d

// AmbientLight2d lights every pixel evenly and is never occluded. When several
// exist their contributions are summed and clamped to [0,1] per channel.
type AmbientLight2d struct {
	Color     [3]float32 // linear RGB
	Intensity float32
}

func NewAmbientLight2d() AmbientLight2d {
	return AmbientLight2d{Color: [3]float32{1, 1, 1}, Intensity: 1}
}

// PointLight2d lights pixels within Radius world units of the entity's
// transform, fading to zero at the radius.
type PointLight2d struct {
	Color     [3]float32 // linear RGB
	Intensity float32
	Radius    float32
}

func NewPointLight2d() PointLight2d {
	return PointLight2d{Color: [3]float32{1, 1, 1}, Intensity: 1, Radius: 0.5}
}

// CircularOccluder2d is an opaque disc that blocks point lights.
type CircularOccluder2d struct {
	Radius float32
}

func NewCircularOccluder2d(radius float32) CircularOccluder2d {
	return CircularOccluder2d{Radius: radius}
}
