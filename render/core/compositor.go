package core

import (
	"image"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/draw"
)

// Compositor runs the lighting pass on the CPU. It produces the same image
// the GPU pass would, one row band per pool task.
type Compositor struct {
	pool    worker.DynamicWorkerPool
	workers int
	scaled  *image.RGBA
	grid    *OccluderGrid
	plans   []lightPlan
	closed  bool
}

func NewCompositor(workers int) *Compositor {
	if workers <= 0 {
		workers = 1
	}
	return &Compositor{
		pool:    worker.NewDynamicWorkerPool(workers, 256, 1*time.Second),
		workers: workers,
		grid:    NewOccluderGrid(1),
	}
}

// Composite lights scene into dst using frame. Scene is resampled to the
// size of dst when they differ. Both images are treated as sRGB.
func (c *Compositor) Composite(dst *image.RGBA, scene image.Image, frame *LightingFrame) {
	bounds := dst.Bounds()
	if bounds.Empty() {
		return
	}
	src := c.resample(scene, bounds)
	c.plans = planLights(c.plans, c.grid, frame)
	ambient := frame.Ambient.Color.Mul(frame.Ambient.Intensity)
	plans := c.plans

	if c.closed {
		shadeRows(dst, src, frame.View, ambient, plans, bounds.Min.Y, bounds.Max.Y)
		return
	}

	bands := min(c.workers, bounds.Dy())
	rowsPerBand := (bounds.Dy() + bands - 1) / bands

	var wg sync.WaitGroup
	for i := 0; i < bands; i++ {
		y0 := bounds.Min.Y + i*rowsPerBand
		y1 := min(y0+rowsPerBand, bounds.Max.Y)
		if y0 >= y1 {
			break
		}
		wg.Add(1)
		c.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				shadeRows(dst, src, frame.View, ambient, plans, y0, y1)
				return nil, nil
			},
		})
	}
	wg.Wait()
}

// Close stops the worker pool. Later frames are shaded on the calling
// goroutine.
func (c *Compositor) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.pool.Stop()
}

func (c *Compositor) resample(scene image.Image, bounds image.Rectangle) *image.RGBA {
	if rgba, ok := scene.(*image.RGBA); ok && rgba.Bounds() == bounds {
		return rgba
	}
	if c.scaled == nil || c.scaled.Bounds() != bounds {
		c.scaled = image.NewRGBA(bounds)
	}
	if scene == nil {
		draw.Draw(c.scaled, bounds, image.White, image.Point{}, draw.Src)
		return c.scaled
	}
	draw.BiLinear.Scale(c.scaled, bounds, scene, scene.Bounds(), draw.Src, nil)
	return c.scaled
}

func shadeRows(dst, src *image.RGBA, view ViewUniform, ambient mgl32.Vec3, plans []lightPlan, y0, y1 int) {
	bounds := dst.Bounds()
	for y := y0; y < y1; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			si := src.PixOffset(x, y)
			s := src.Pix[si : si+4 : si+4]
			color := mgl32.Vec3{linear8(s[0]), linear8(s[1]), linear8(s[2])}

			p := view.WorldFromPixel(x-bounds.Min.X, y-bounds.Min.Y)
			light := accumulatePlanned(p, ambient, plans)
			lit := mgl32.Vec3{
				clamp01(color[0] * light[0]),
				clamp01(color[1] * light[1]),
				clamp01(color[2] * light[2]),
			}

			di := dst.PixOffset(x, y)
			d := dst.Pix[di : di+4 : di+4]
			d[0] = srgb8(lit[0])
			d[1] = srgb8(lit[1])
			d[2] = srgb8(lit[2])
			d[3] = s[3]
		}
	}
}
