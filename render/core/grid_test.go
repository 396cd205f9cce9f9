package core

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOccluderGrid_Query(t *testing.T) {
	grid := NewOccluderGrid(2)
	grid.Insert(0, ExtractedCircularOccluder2d{Center: mgl32.Vec2{0.5, 0.5}, Radius: 0.5})
	grid.Insert(1, ExtractedCircularOccluder2d{Center: mgl32.Vec2{3.5, 3.5}, Radius: 0.5})
	grid.Insert(2, ExtractedCircularOccluder2d{Center: mgl32.Vec2{-10, 0}, Radius: 0})
	require.Equal(t, 2, grid.Len(), "zero-radius discs are skipped")

	assert.Equal(t, []int{0}, grid.QueryCircle(nil, mgl32.Vec2{0.5, 0.5}, 0.5))
	assert.Equal(t, []int{1}, grid.QueryCircle(nil, mgl32.Vec2{3.5, 3.5}, 0.5))
	assert.Equal(t, []int{0, 1}, grid.QueryCircle(nil, mgl32.Vec2{2, 2}, 1))
	assert.Empty(t, grid.QueryCircle(nil, mgl32.Vec2{-20, -20}, 1))
}

func TestOccluderGrid_QueryAppendsWithoutDuplicates(t *testing.T) {
	grid := NewOccluderGrid(1)
	// Spans many cells.
	grid.Insert(4, ExtractedCircularOccluder2d{Center: mgl32.Vec2{0, 0}, Radius: 3})

	got := grid.QueryCircle([]int{99}, mgl32.Vec2{0, 0}, 5)
	assert.Equal(t, []int{99, 4}, got)
}

func TestOccluderGrid_HugeDiscsAndQueries(t *testing.T) {
	grid := NewOccluderGrid(1)
	grid.Insert(0, ExtractedCircularOccluder2d{Center: mgl32.Vec2{0, 0}, Radius: float32(math.Inf(1))})
	grid.Insert(1, ExtractedCircularOccluder2d{Center: mgl32.Vec2{500, 500}, Radius: 1})

	assert.Equal(t, []int{0}, grid.QueryCircle(nil, mgl32.Vec2{-500, -500}, 1))
	assert.Equal(t, []int{0, 1}, grid.QueryCircle(nil, mgl32.Vec2{0, 0}, 1e6))

	grid.Reset(4)
	assert.Zero(t, grid.Len())
	assert.Empty(t, grid.QueryCircle(nil, mgl32.Vec2{0, 0}, 1e6))
}

func TestPlanLights_CullsDistantOccluders(t *testing.T) {
	f := NewLightingFrame()
	f.PointLights.Push(ExtractedPointLight2d{Center: mgl32.Vec2{0, 0}, Radius: 10, Color: mgl32.Vec3{1, 1, 1}, Intensity: 1})
	f.PointLights.Push(ExtractedPointLight2d{Center: mgl32.Vec2{100, 0}, Radius: 0, Color: mgl32.Vec3{1, 1, 1}, Intensity: 1})
	f.Occluders.Push(ExtractedCircularOccluder2d{Center: mgl32.Vec2{5, 0}, Radius: 1})
	f.Occluders.Push(ExtractedCircularOccluder2d{Center: mgl32.Vec2{11.5, 0}, Radius: 2})
	f.Occluders.Push(ExtractedCircularOccluder2d{Center: mgl32.Vec2{13, 0}, Radius: 2})

	plans := planLights(nil, NewOccluderGrid(1), f)
	require.Len(t, plans, 1, "a light with no radius reaches nothing")
	assert.Equal(t, []ExtractedCircularOccluder2d{
		{Center: mgl32.Vec2{5, 0}, Radius: 1},
		{Center: mgl32.Vec2{11.5, 0}, Radius: 2},
	}, plans[0].occluders)
}

func TestAccumulatePlannedMatchesAccumulateLight(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	coord := func() float32 { return rng.Float32()*200 - 100 }

	for scene := 0; scene < 20; scene++ {
		f := NewLightingFrame()
		f.Ambient = ExtractedAmbientLight2d{Color: mgl32.Vec3{0.05, 0.1, 0.02}, Intensity: 1}
		for range 1 + rng.IntN(6) {
			f.PointLights.Push(ExtractedPointLight2d{
				Center:    mgl32.Vec2{coord(), coord()},
				Radius:    rng.Float32() * 120,
				Color:     mgl32.Vec3{rng.Float32(), rng.Float32(), rng.Float32()},
				Intensity: rng.Float32() * 3,
			})
		}
		for range rng.IntN(40) {
			f.Occluders.Push(ExtractedCircularOccluder2d{
				Center: mgl32.Vec2{coord(), coord()},
				Radius: rng.Float32() * 15,
			})
		}

		plans := planLights(nil, NewOccluderGrid(1), f)
		ambient := f.Ambient.Color.Mul(f.Ambient.Intensity)
		for range 500 {
			p := mgl32.Vec2{coord(), coord()}
			require.Equal(t, AccumulateLight(p, f), accumulatePlanned(p, ambient, plans), "scene %d at %v", scene, p)
		}
	}
}
