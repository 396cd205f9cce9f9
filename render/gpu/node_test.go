package gpu

import (
	"errors"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/light2d/render/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTarget struct {
	format wgpu.TextureFormat
	views  [2]*wgpu.TextureView
	main   int
	swaps  int
}

func newFakeTarget() *fakeTarget {
	return &fakeTarget{
		format: wgpu.TextureFormatRGBA8UnormSrgb,
		views:  [2]*wgpu.TextureView{{}, {}},
	}
}

func (t *fakeTarget) Format() wgpu.TextureFormat  { return t.format }
func (t *fakeTarget) MainView() *wgpu.TextureView { return t.views[t.main] }
func (t *fakeTarget) PostProcessViews() (*wgpu.TextureView, *wgpu.TextureView) {
	return t.views[t.main], t.views[1-t.main]
}
func (t *fakeTarget) Swap() {
	t.main = 1 - t.main
	t.swaps++
}

type encodeCall struct {
	pipeline            *LightingPipeline
	source, destination *wgpu.TextureView
}

func newTestNode(t *testing.T, b *testBuilder, buffers *LightBuffers) (*LightingNode, *[]encodeCall) {
	t.Helper()
	calls := &[]encodeCall{}
	n := NewLightingNode(b.LightingPipelineBuilder, buffers, b.logger)
	n.encode = func(ctx *RenderContext, p *LightingPipeline, source, destination *wgpu.TextureView) error {
		*calls = append(*calls, encodeCall{pipeline: p, source: source, destination: destination})
		return nil
	}
	n.releaseBindGroup = func(*wgpu.BindGroup) {}
	return n, calls
}

func TestLightingNodePendingPassesThrough(t *testing.T) {
	b := newTestBuilder(t)
	b.device.failPipeline = errors.New("compile error")
	n, calls := newTestNode(t, b, nil)
	target := newFakeTarget()

	for i := 0; i < 3; i++ {
		require.NoError(t, n.Run(&RenderContext{Target: target}))
	}

	assert.Equal(t, NodePending, n.State())
	assert.Empty(t, *calls)
	assert.Equal(t, 0, target.swaps)
	assert.Len(t, b.logger.errors, 1)
}

func TestLightingNodeBecomesReady(t *testing.T) {
	b := newTestBuilder(t)
	n, calls := newTestNode(t, b, nil)
	target := newFakeTarget()
	assert.Equal(t, NodePending, n.State())

	require.NoError(t, n.Run(&RenderContext{Target: target}))
	assert.Equal(t, NodeReady, n.State())
	require.Len(t, *calls, 1)
	assert.Same(t, target.views[0], (*calls)[0].source)
	assert.Same(t, target.views[1], (*calls)[0].destination)
	assert.Same(t, b.Cached(), (*calls)[0].pipeline)
	assert.Equal(t, 1, target.swaps)

	// The next frame reads what this one wrote.
	require.NoError(t, n.Run(&RenderContext{Target: target}))
	require.Len(t, *calls, 2)
	assert.Same(t, target.views[1], (*calls)[1].source)
	assert.Equal(t, 1, b.Builds())
}

func TestLightingNodeReturnsToPendingOnInvalidation(t *testing.T) {
	b := newTestBuilder(t)
	n, _ := newTestNode(t, b, nil)
	target := newFakeTarget()

	require.NoError(t, n.Run(&RenderContext{Target: target}))
	assert.Equal(t, NodeReady, n.State())

	b.device.failPipeline = errors.New("driver lost")
	b.Invalidate()
	require.NoError(t, n.Run(&RenderContext{Target: target}))
	assert.Equal(t, NodePending, n.State())
	assert.Equal(t, 1, target.swaps)

	b.device.failPipeline = nil
	b.Invalidate()
	require.NoError(t, n.Run(&RenderContext{Target: target}))
	assert.Equal(t, NodeReady, n.State())
}

func TestLightingNodeWaitsForBuffers(t *testing.T) {
	b := newTestBuilder(t)
	stats := &bufferStats{}
	buffers := newTestLightBuffers(stats)
	n, calls := newTestNode(t, b, buffers)
	target := newFakeTarget()

	require.NoError(t, n.Run(&RenderContext{Target: target}))
	assert.Equal(t, NodePending, n.State())
	assert.Empty(t, *calls)

	require.NoError(t, buffers.Upload(&fakeQueue{}, core.NewLightingFrame()))
	require.NoError(t, n.Run(&RenderContext{Target: target}))
	assert.Equal(t, NodeReady, n.State())
	assert.Len(t, *calls, 1)
}

func TestLightingNodeSkipsPartiallyUploadedFrame(t *testing.T) {
	b := newTestBuilder(t)
	buffers := newTestLightBuffers(&bufferStats{})
	n, calls := newTestNode(t, b, buffers)
	target := newFakeTarget()

	require.NoError(t, buffers.Upload(&fakeQueue{}, core.NewLightingFrame()))
	require.NoError(t, n.Run(&RenderContext{Target: target}))
	require.Equal(t, NodeReady, n.State())
	require.Len(t, *calls, 1)

	// View and ambient hold the new frame, the light arrays the old one.
	queue := &fakeQueue{err: errors.New("device lost"), failAt: 3}
	require.Error(t, buffers.Upload(queue, core.NewLightingFrame()))

	require.NoError(t, n.Run(&RenderContext{Target: target}))
	assert.Equal(t, NodePending, n.State())
	assert.Len(t, *calls, 1)
	assert.Equal(t, 1, target.swaps)
}

func TestLightingNodeEncodeErrorSkipsSwap(t *testing.T) {
	b := newTestBuilder(t)
	n, _ := newTestNode(t, b, nil)
	n.encode = func(*RenderContext, *LightingPipeline, *wgpu.TextureView, *wgpu.TextureView) error {
		return errors.New("bind group")
	}
	target := newFakeTarget()

	assert.Error(t, n.Run(&RenderContext{Target: target}))
	assert.Equal(t, 0, target.swaps)
}

func TestNodeStateString(t *testing.T) {
	assert.Equal(t, "pending", NodePending.String())
	assert.Equal(t, "ready", NodeReady.String())
}
