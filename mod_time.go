package light2d

import (
	"time"
)

type Time struct {
	Time    time.Time
	Dt      time.Duration
	Elapsed time.Duration
	Frame   uint64
}

// TimeModule keeps a Time resource up to date. With a non-zero FixedStep
// every frame advances the clock by exactly that much, which makes headless
// runs reproducible.
type TimeModule struct {
	FixedStep time.Duration
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Time{
		Time: time.Now(),
	})
	if mod.FixedStep > 0 {
		step := mod.FixedStep
		app.UseSystem(System(func(t *Time) { advanceTime(t, t.Time.Add(step)) }).InStage(Prelude))
		return
	}
	app.UseSystem(System(timeSystem).InStage(Prelude))
}

func timeSystem(timeResource *Time) {
	advanceTime(timeResource, time.Now())
}

func advanceTime(t *Time, now time.Time) {
	if t.Frame == 0 {
		t.Dt = 0
	} else {
		t.Dt = now.Sub(t.Time)
	}
	t.Elapsed += t.Dt
	t.Time = now
	t.Frame++
}
