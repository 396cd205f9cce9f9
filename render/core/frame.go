package core

// LightingFrame is everything the lighting pass needs for one frame. It is
// rebuilt from scratch by extraction every frame.
type LightingFrame struct {
	View        ViewUniform
	Ambient     ExtractedAmbientLight2d
	PointLights ArrayBuffer[ExtractedPointLight2d]
	Occluders   ArrayBuffer[ExtractedCircularOccluder2d]
}

func NewLightingFrame() *LightingFrame {
	return &LightingFrame{}
}

// Reset drops all extracted data while keeping allocations.
func (f *LightingFrame) Reset() {
	f.View = ViewUniform{}
	f.Ambient = ExtractedAmbientLight2d{}
	f.PointLights.Clear()
	f.Occluders.Clear()
}
