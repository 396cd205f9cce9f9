package light2d

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLifecycleModule_RemovesExpiredLights(t *testing.T) {
	app := NewAppBuilder().
		UseModule(TimeModule{FixedStep: 100 * time.Millisecond}, LifecycleModule{}).
		Build()
	cmd := app.Commands()

	flash := cmd.AddEntity(NewTransform(0, 0), NewPointLight2d(), LifetimeComponent{TimeLeft: 250 * time.Millisecond})
	steady := cmd.AddEntity(NewTransform(1, 0), NewPointLight2d())
	app.FlushCommands()

	// The first frame has no delta, so the flash survives three more.
	for range 3 {
		app.Update()
		assert.NotNil(t, cmd.GetAllComponents(flash))
	}
	app.Update()

	assert.Nil(t, cmd.GetAllComponents(flash))
	assert.NotNil(t, cmd.GetAllComponents(steady))
}
