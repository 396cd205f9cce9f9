package light2d

import (
	"errors"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSurfaceFrame struct {
	view      *wgpu.TextureView
	viewErr   error
	releases  int
	releasedV []*wgpu.TextureView
}

func (f *fakeSurfaceFrame) CreateView(*wgpu.TextureViewDescriptor) (*wgpu.TextureView, error) {
	if f.viewErr != nil {
		return nil, f.viewErr
	}
	return f.view, nil
}

func (f *fakeSurfaceFrame) Release() { f.releases++ }

func (f *fakeSurfaceFrame) releaseView(v *wgpu.TextureView) {
	f.releasedV = append(f.releasedV, v)
}

func TestDrawToSurface_ReleasesFrameAfterDraw(t *testing.T) {
	frame := &fakeSurfaceFrame{view: &wgpu.TextureView{}}
	var drawn *wgpu.TextureView

	err := drawToSurface(frame, frame.releaseView, func(view *wgpu.TextureView) error {
		drawn = view
		assert.Equal(t, 0, frame.releases, "frame released before present")
		return nil
	})

	require.NoError(t, err)
	assert.Same(t, frame.view, drawn)
	assert.Equal(t, 1, frame.releases)
	require.Len(t, frame.releasedV, 1)
	assert.Same(t, frame.view, frame.releasedV[0])
}

func TestDrawToSurface_ReleasesFrameWhenDrawFails(t *testing.T) {
	frame := &fakeSurfaceFrame{view: &wgpu.TextureView{}}

	err := drawToSurface(frame, frame.releaseView, func(*wgpu.TextureView) error {
		return errors.New("render graph: lost")
	})

	assert.ErrorContains(t, err, "lost")
	assert.Equal(t, 1, frame.releases)
	assert.Len(t, frame.releasedV, 1)
}

func TestDrawToSurface_ReleasesFrameWhenViewFails(t *testing.T) {
	frame := &fakeSurfaceFrame{viewErr: errors.New("outdated")}
	called := false

	err := drawToSurface(frame, frame.releaseView, func(*wgpu.TextureView) error {
		called = true
		return nil
	})

	assert.ErrorContains(t, err, "surface view: outdated")
	assert.False(t, called)
	assert.Equal(t, 1, frame.releases)
	assert.Empty(t, frame.releasedV)
}
