package core

import (
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
)

// maxGridQueryCells bounds the cells a single insert or query walks. Larger
// discs go to a list checked by every query, and larger queries fall back to
// scanning every occluder.
const maxGridQueryCells = 4096

// OccluderGrid is a uniform hash grid over occluder discs. Queries return
// candidates, which the caller filters exactly.
type OccluderGrid struct {
	cellSize  float32
	cells     map[uint64][]int
	unbounded []int
	count     int
}

func NewOccluderGrid(cellSize float32) *OccluderGrid {
	if !(cellSize > 0) {
		cellSize = 1
	}
	return &OccluderGrid{
		cellSize: cellSize,
		cells:    make(map[uint64][]int),
	}
}

// Reset drops every occluder and re-buckets the grid with a new cell size.
func (g *OccluderGrid) Reset(cellSize float32) {
	if cellSize > 0 {
		g.cellSize = cellSize
	}
	clear(g.cells)
	g.unbounded = g.unbounded[:0]
	g.count = 0
}

// Insert adds the occluder at index i of the frame's occluder buffer.
// Discs with no area are ignored since they never block anything.
func (g *OccluderGrid) Insert(i int, o ExtractedCircularOccluder2d) {
	if !(o.Radius > 0) {
		return
	}
	g.count++
	minX, maxX := g.cellIndex(o.Center[0]-o.Radius), g.cellIndex(o.Center[0]+o.Radius)
	minY, maxY := g.cellIndex(o.Center[1]-o.Radius), g.cellIndex(o.Center[1]+o.Radius)
	if span := cellSpan(minX, maxX, minY, maxY); span > maxGridQueryCells || span <= 0 {
		g.unbounded = append(g.unbounded, i)
		return
	}
	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			key := cellKey(x, y)
			g.cells[key] = append(g.cells[key], i)
		}
	}
}

// QueryCircle appends to dst the indices of occluders whose bounding box
// overlaps the cells covering the circle. The result is sorted and has no
// duplicates.
func (g *OccluderGrid) QueryCircle(dst []int, center mgl32.Vec2, radius float32) []int {
	start := len(dst)
	minX, maxX := g.cellIndex(center[0]-radius), g.cellIndex(center[0]+radius)
	minY, maxY := g.cellIndex(center[1]-radius), g.cellIndex(center[1]+radius)

	dst = append(dst, g.unbounded...)
	if span := cellSpan(minX, maxX, minY, maxY); span > maxGridQueryCells || span <= 0 {
		for _, ids := range g.cells {
			dst = append(dst, ids...)
		}
	} else {
		for x := minX; x <= maxX; x++ {
			for y := minY; y <= maxY; y++ {
				dst = append(dst, g.cells[cellKey(x, y)]...)
			}
		}
	}

	found := dst[start:]
	slices.Sort(found)
	found = slices.Compact(found)
	return dst[:start+len(found)]
}

// Len is the number of occluders inserted since the last Reset.
func (g *OccluderGrid) Len() int { return g.count }

func (g *OccluderGrid) cellIndex(v float32) int32 {
	c := math.Floor(float64(v / g.cellSize))
	if math.IsNaN(c) {
		return 0
	}
	return int32(max(min(c, math.MaxInt32-1), math.MinInt32+1))
}

func cellSpan(minX, maxX, minY, maxY int32) int64 {
	return (int64(maxX) - int64(minX) + 1) * (int64(maxY) - int64(minY) + 1)
}

func cellKey(x, y int32) uint64 {
	return uint64(uint32(x))<<32 | uint64(uint32(y))
}

// lightPlan pairs a point light with the occluders able to block any of the
// pixels it reaches.
type lightPlan struct {
	light     ExtractedPointLight2d
	occluders []ExtractedCircularOccluder2d
}

// planLights culls, for every light that can contribute, the occluders that
// lie too far away to cut a segment from the light to a lit pixel. A lit
// pixel is closer than Radius, so a blocking disc must have its centre
// closer than Radius plus its own radius.
func planLights(dst []lightPlan, grid *OccluderGrid, frame *LightingFrame) []lightPlan {
	dst = dst[:0]
	occluders := frame.Occluders.Items()

	// Cells fit the largest disc, and the largest light spans at most
	// 16 cells per axis.
	var maxOccluder, maxLight float32
	for _, o := range occluders {
		if o.Radius > maxOccluder && o.Radius <= math.MaxFloat32 {
			maxOccluder = o.Radius
		}
	}
	for _, pl := range frame.PointLights.Items() {
		if pl.Radius > maxLight && pl.Radius <= math.MaxFloat32 {
			maxLight = pl.Radius
		}
	}
	grid.Reset(max(2*maxOccluder, maxLight/16))
	for i, o := range occluders {
		grid.Insert(i, o)
	}

	var candidates []int
	for _, pl := range frame.PointLights.Items() {
		if !(pl.Radius > 0) {
			continue
		}
		plan := lightPlan{light: pl}
		candidates = grid.QueryCircle(candidates[:0], pl.Center, pl.Radius)
		for _, i := range candidates {
			o := occluders[i]
			reach := (pl.Radius + o.Radius) * (1 + 1e-5)
			if pl.Center.Sub(o.Center).Len() < reach {
				plan.occluders = append(plan.occluders, o)
			}
		}
		dst = append(dst, plan)
	}
	return dst
}

// accumulatePlanned is AccumulateLight over culled occluder sets.
func accumulatePlanned(p mgl32.Vec2, ambient mgl32.Vec3, plans []lightPlan) mgl32.Vec3 {
	light := ambient
	for i := range plans {
		pl := &plans[i].light
		att := Attenuation(pl.Center.Sub(p).Len(), pl.Radius)
		if att == 0 {
			continue
		}
		if Occluded(pl.Center, p, plans[i].occluders) {
			continue
		}
		light = light.Add(pl.Color.Mul(pl.Intensity * att))
	}
	return light
}
