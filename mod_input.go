package light2d

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

type Key int

const (
	KeyEscape Key = iota
	KeySpace
	KeyEnter
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyW
	KeyA
	KeyS
	KeyD
	KeyMinus
	KeyEqual
	MouseButtonLeft
	MouseButtonRight
	keyCount
)

// InputModule samples the window's keyboard and mouse once per frame. It
// needs the wgpu renderer; without a window Input stays zeroed.
type InputModule struct{}

type Input struct {
	Pressed      [keyCount]bool
	JustPressed  [keyCount]bool
	JustReleased [keyCount]bool

	// Cursor position in window pixels, origin top-left.
	MouseX, MouseY float64
}

func (mod InputModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Input{})
	if _, ok := Resource[RenderState](app); !ok {
		app.Logger().Warnf("InputModule installed without a window; input is disabled")
		return
	}
	app.UseSystem(
		System(inputSystem).
			InStage(PreUpdate).
			RunAlways(),
	)
}

// setKey records the state of key for this frame.
func (input *Input) setKey(key Key, down bool) {
	input.JustPressed[key] = down && !input.Pressed[key]
	input.JustReleased[key] = !down && input.Pressed[key]
	input.Pressed[key] = down
}

// Axis returns -1, 0 or 1 from a pair of opposing keys.
func (input *Input) Axis(negative, positive Key) float32 {
	var v float32
	if input.Pressed[negative] {
		v--
	}
	if input.Pressed[positive] {
		v++
	}
	return v
}

// inputSystem runs after windowEventsSystem has polled events.
func inputSystem(rs *RenderState, input *Input) {
	win := rs.window.window
	for key, glfwKey := range keyToGlfw {
		input.setKey(key, win.GetKey(glfwKey) == glfw.Press)
	}
	input.setKey(MouseButtonLeft, win.GetMouseButton(glfw.MouseButtonLeft) == glfw.Press)
	input.setKey(MouseButtonRight, win.GetMouseButton(glfw.MouseButtonRight) == glfw.Press)
	input.MouseX, input.MouseY = win.GetCursorPos()
}

var keyToGlfw = map[Key]glfw.Key{
	KeyEscape: glfw.KeyEscape,
	KeySpace:  glfw.KeySpace,
	KeyEnter:  glfw.KeyEnter,
	KeyLeft:   glfw.KeyLeft,
	KeyRight:  glfw.KeyRight,
	KeyUp:     glfw.KeyUp,
	KeyDown:   glfw.KeyDown,
	KeyW:      glfw.KeyW,
	KeyA:      glfw.KeyA,
	KeyS:      glfw.KeyS,
	KeyD:      glfw.KeyD,
	KeyMinus:  glfw.KeyMinus,
	KeyEqual:  glfw.KeyEqual,
}
