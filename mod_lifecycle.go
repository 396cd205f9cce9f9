package light2d

import (
	"time"
)

// LifetimeComponent removes its entity once TimeLeft runs out. Attach it to
// a point light to get a flash.
type LifetimeComponent struct {
	TimeLeft time.Duration
}

type LifecycleModule struct{}

func (mod LifecycleModule) Install(app *App, cmd *Commands) {
	app.UseSystem(
		System(lifetimeSystem).
			InStage(PostUpdate).
			RunAlways(),
	)
}

func lifetimeSystem(t *Time, cmd *Commands) {
	if t.Dt <= 0 {
		return
	}
	logger := cmd.app.Logger()
	MakeQuery1[LifetimeComponent](cmd).Map(func(eid EntityId, lt *LifetimeComponent) bool {
		lt.TimeLeft -= t.Dt
		if lt.TimeLeft <= 0 {
			logger.Debugf("lifetime of entity %d expired", eid)
			cmd.RemoveEntity(eid)
		}
		return true
	})
}
