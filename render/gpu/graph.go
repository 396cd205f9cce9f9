package gpu

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

var (
	ErrUnknownNode = errors.New("unknown render graph node")
	ErrGraphCycle  = errors.New("render graph has a cycle")
)

// Well-known node labels.
const (
	NodeMainPass = "main_pass"
	NodeLighting = "lighting"
	NodeBlit     = "blit"
)

// RenderContext is what a node gets to record its commands for one frame.
type RenderContext struct {
	Device  *wgpu.Device
	Queue   *wgpu.Queue
	Encoder *wgpu.CommandEncoder
	Target  PostProcessTarget
	// Output is the surface texture view of this frame.
	Output *wgpu.TextureView
}

// Node is one step of the frame. The graph decides when it runs.
type Node interface {
	Run(ctx *RenderContext) error
}

// RenderGraph runs labelled nodes in dependency order. Nodes without a
// dependency between them run in the order they were added.
type RenderGraph struct {
	labels []string
	nodes  map[string]Node
	edges  map[string][]string
	order  []string
	dirty  bool
}

func NewRenderGraph() *RenderGraph {
	return &RenderGraph{
		nodes: make(map[string]Node),
		edges: make(map[string][]string),
	}
}

// AddNode adds or replaces the node with the given label.
func (g *RenderGraph) AddNode(label string, node Node) {
	if _, ok := g.nodes[label]; !ok {
		g.labels = append(g.labels, label)
	}
	g.nodes[label] = node
	g.dirty = true
}

func (g *RenderGraph) Node(label string) (Node, bool) {
	n, ok := g.nodes[label]
	return n, ok
}

// AddEdge makes to run after from.
func (g *RenderGraph) AddEdge(from, to string) error {
	if _, ok := g.nodes[from]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownNode, from)
	}
	if _, ok := g.nodes[to]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownNode, to)
	}
	g.edges[from] = append(g.edges[from], to)
	g.dirty = true
	return nil
}

// Order returns the labels in execution order.
func (g *RenderGraph) Order() ([]string, error) {
	if !g.dirty && g.order != nil {
		return g.order, nil
	}

	inDegree := make(map[string]int, len(g.labels))
	for _, targets := range g.edges {
		for _, to := range targets {
			inDegree[to]++
		}
	}

	order := make([]string, 0, len(g.labels))
	done := make(map[string]bool, len(g.labels))
	for len(order) < len(g.labels) {
		progressed := false
		for _, label := range g.labels {
			if done[label] || inDegree[label] > 0 {
				continue
			}
			done[label] = true
			order = append(order, label)
			for _, to := range g.edges[label] {
				inDegree[to]--
			}
			progressed = true
			break
		}
		if !progressed {
			return nil, ErrGraphCycle
		}
	}

	g.order = order
	g.dirty = false
	return order, nil
}

// Run executes every node once. The first failing node stops the frame.
func (g *RenderGraph) Run(ctx *RenderContext) error {
	order, err := g.Order()
	if err != nil {
		return err
	}
	for _, label := range order {
		if err := g.nodes[label].Run(ctx); err != nil {
			return fmt.Errorf("render node %q: %w", label, err)
		}
	}
	return nil
}
