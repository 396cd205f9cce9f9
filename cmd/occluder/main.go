// Command occluder shows a point light and a moving circular occluder.
package main

import (
	"flag"
	"log"
	"math"
	"time"

	"github.com/gekko3d/light2d"
)

func main() {
	var (
		headless   = flag.Bool("headless", false, "render on the CPU without a window")
		frames     = flag.Int("frames", 60, "frames to render in headless mode")
		output     = flag.String("out", "occluder.png", "headless output file")
		width      = flag.Int("width", 1280, "viewport width")
		height     = flag.Int("height", 720, "viewport height")
		background = flag.String("background", "", "optional background image (png, jpeg, bmp, webp)")
		debug      = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	builder := light2d.NewAppBuilder().
		UseModule(light2d.LoggingModule{Prefix: "occluder", Debug: *debug}).
		UseModule(light2d.AssetServerModule{})
	if *headless {
		builder.UseModule(light2d.TimeModule{FixedStep: time.Second / 60})
	} else {
		builder.UseModule(light2d.TimeModule{})
	}
	app := builder.Build()

	var bg light2d.AssetId
	if *background != "" {
		assets, _ := light2d.Resource[light2d.AssetServer](app)
		id, err := assets.LoadTexture(*background)
		if err != nil {
			log.Fatalf("background: %v", err)
		}
		bg = id
	}

	if *headless {
		app.UseRenderer(light2d.RendererSoftware, light2d.SoftwareRendererModule{
			Width:      *width,
			Height:     *height,
			Background: bg,
		})
	} else {
		app.UseRenderer(light2d.RendererWGPU, light2d.ClientModule{
			WindowWidth:  *width,
			WindowHeight: *height,
			WindowTitle:  "light2d occluder",
			Background:   bg,
		})
	}
	app.UseModules(light2d.HierarchyModule{}, light2d.LifecycleModule{}, light2d.Light2dModule{})
	app.UseSystem(light2d.System(moveOccluder).InStage(light2d.Update))
	if !*headless {
		app.UseModules(light2d.InputModule{})
		app.UseSystem(light2d.System(steerLight).InStage(light2d.Update))
	}

	setup(app.Commands())

	if !*headless {
		app.Run()
		return
	}

	for i := 0; i < *frames; i++ {
		app.Update()
	}
	app.Shutdown()

	frame, _ := light2d.Resource[light2d.SoftwareFrame](app)
	if err := frame.WritePNG(*output); err != nil {
		log.Fatalf("write %s: %v", *output, err)
	}
	log.Printf("wrote %s after %d frames", *output, frame.Count)
}

func setup(cmd *light2d.Commands) {
	cmd.AddEntity(light2d.NewTransform(0, 0), light2d.NewCamera2d())

	light := light2d.NewPointLight2d()
	light.Intensity = 3
	light.Radius = 400
	cmd.AddEntity(light2d.NewTransform(0, 0), light)

	cmd.AddEntity(light2d.NewTransform(100, 50), light2d.NewCircularOccluder2d(10))
}

func moveOccluder(cmd *light2d.Commands, t *light2d.Time) {
	x := float32(math.Sin(t.Elapsed.Seconds()) * 100)
	light2d.MakeQuery2[light2d.TransformComponent, light2d.CircularOccluder2d](cmd).Map(
		func(eid light2d.EntityId, tr *light2d.TransformComponent, _ *light2d.CircularOccluder2d) bool {
			tr.Position[0] = x
			return true
		})
}

// steerLight moves the light with the arrow keys. Space fires a short
// orange flash at the origin and Escape quits.
func steerLight(cmd *light2d.Commands, input *light2d.Input, t *light2d.Time) {
	if input.JustPressed[light2d.KeyEscape] {
		cmd.Exit()
		return
	}
	if input.JustPressed[light2d.KeySpace] {
		cmd.AddEntity(
			light2d.NewTransform(0, 0),
			light2d.PointLight2d{Color: [3]float32{1, 0.6, 0.2}, Intensity: 2, Radius: 250},
			light2d.LifetimeComponent{TimeLeft: 300 * time.Millisecond},
		)
	}
	const speed = 200 // world units per second
	step := float32(t.Dt.Seconds()) * speed
	dx := input.Axis(light2d.KeyLeft, light2d.KeyRight) * step
	dy := input.Axis(light2d.KeyDown, light2d.KeyUp) * step
	if dx == 0 && dy == 0 {
		return
	}
	light2d.MakeQuery2[light2d.TransformComponent, light2d.PointLight2d](cmd).Map(
		func(eid light2d.EntityId, tr *light2d.TransformComponent, _ *light2d.PointLight2d) bool {
			tr.Position[0] += dx
			tr.Position[1] += dy
			return true
		})
}
