package light2d

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInput_SetKeyEdges(t *testing.T) {
	var input Input

	input.setKey(KeySpace, true)
	assert.True(t, input.Pressed[KeySpace])
	assert.True(t, input.JustPressed[KeySpace])

	input.setKey(KeySpace, true)
	assert.True(t, input.Pressed[KeySpace])
	assert.False(t, input.JustPressed[KeySpace])

	input.setKey(KeySpace, false)
	assert.False(t, input.Pressed[KeySpace])
	assert.True(t, input.JustReleased[KeySpace])

	input.setKey(KeySpace, false)
	assert.False(t, input.JustReleased[KeySpace])
}

func TestInput_Axis(t *testing.T) {
	var input Input
	assert.Equal(t, float32(0), input.Axis(KeyLeft, KeyRight))

	input.setKey(KeyRight, true)
	assert.Equal(t, float32(1), input.Axis(KeyLeft, KeyRight))

	input.setKey(KeyLeft, true)
	assert.Equal(t, float32(0), input.Axis(KeyLeft, KeyRight))

	input.setKey(KeyRight, false)
	assert.Equal(t, float32(-1), input.Axis(KeyLeft, KeyRight))
}

func TestInputModule_WithoutWindow(t *testing.T) {
	app := NewAppBuilder().UseModule(InputModule{}).Build()
	_, ok := Resource[Input](app)
	assert.True(t, ok)
	assert.NotPanics(t, func() { app.Update() })
}

func TestKeyToGlfwCoversKeyboard(t *testing.T) {
	for key := KeyEscape; key < MouseButtonLeft; key++ {
		assert.Contains(t, keyToGlfw, key)
	}
}
