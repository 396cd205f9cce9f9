package light2d

// Camera2dComponent marks the entity whose transform centres the view.
// Scale is the number of world units per pixel.
type Camera2dComponent struct {
	Scale float32
}

func NewCamera2d() Camera2dComponent {
	return Camera2dComponent{Scale: 1}
}

// ViewportSize is the size in pixels of the target being lit. Renderers
// keep it up to date.
type ViewportSize struct {
	Width  uint32
	Height uint32
}
