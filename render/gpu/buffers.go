package gpu

import (
	"fmt"
	"math/bits"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/light2d/render/core"
)

// BufferWriter uploads bytes into a buffer. *wgpu.Queue implements it.
type BufferWriter interface {
	WriteBuffer(buffer *wgpu.Buffer, bufferOffset uint64, data []byte) error
}

const minBufferSize = 16

// nextCapacity returns the buffer size used to hold size bytes: the next
// power of two, never below 16.
func nextCapacity(size uint64) uint64 {
	if size <= minBufferSize {
		return minBufferSize
	}
	return 1 << bits.Len64(size-1)
}

// DynamicBuffer is a GPU buffer that is recreated larger when the data no
// longer fits, and smaller once the data drops below a quarter of it.
// Generation changes every time the underlying buffer does, so
// bind groups referencing it know when to rebuild.
type DynamicBuffer struct {
	label      string
	usage      wgpu.BufferUsage
	buffer     *wgpu.Buffer
	capacity   uint64
	generation uint64

	create  func(desc *wgpu.BufferDescriptor) (*wgpu.Buffer, error)
	release func(buf *wgpu.Buffer)
}

func NewDynamicBuffer(device *wgpu.Device, label string, usage wgpu.BufferUsage) *DynamicBuffer {
	return &DynamicBuffer{
		label:   label,
		usage:   usage | wgpu.BufferUsageCopyDst,
		create:  device.CreateBuffer,
		release: (*wgpu.Buffer).Release,
	}
}

func (b *DynamicBuffer) Buffer() *wgpu.Buffer { return b.buffer }
func (b *DynamicBuffer) Capacity() uint64     { return b.capacity }
func (b *DynamicBuffer) Generation() uint64   { return b.generation }

// Reserve makes sure the buffer holds at least size bytes and reports
// whether it had to be recreated.
func (b *DynamicBuffer) Reserve(size uint64) (bool, error) {
	if b.buffer != nil && size <= b.capacity && !b.oversized(size) {
		return false, nil
	}
	capacity := nextCapacity(size)
	buf, err := b.create(&wgpu.BufferDescriptor{
		Label:            b.label,
		Size:             capacity,
		Usage:            b.usage,
		MappedAtCreation: false,
	})
	if err != nil {
		return false, fmt.Errorf("create %s buffer (%d bytes): %w", b.label, capacity, err)
	}
	if b.buffer != nil {
		b.release(b.buffer)
	}
	b.buffer = buf
	b.capacity = capacity
	b.generation++
	return true, nil
}

// oversized reports whether the buffer is more than four times what size
// needs. The floor keeps small buffers from churning.
func (b *DynamicBuffer) oversized(size uint64) bool {
	return b.capacity > minBufferSize && nextCapacity(size) < b.capacity/4
}

// Write reserves room for data and uploads it at offset 0.
func (b *DynamicBuffer) Write(queue BufferWriter, data []byte) error {
	if _, err := b.Reserve(uint64(len(data))); err != nil {
		return err
	}
	if err := queue.WriteBuffer(b.buffer, 0, data); err != nil {
		return fmt.Errorf("write %s buffer: %w", b.label, err)
	}
	return nil
}

func (b *DynamicBuffer) Release() {
	if b.buffer != nil {
		b.release(b.buffer)
		b.buffer = nil
	}
	b.capacity = 0
}

// LightBuffers hold the GPU copies of one LightingFrame.
type LightBuffers struct {
	View        *DynamicBuffer
	Ambient     *DynamicBuffer
	PointLights *DynamicBuffer
	Occluders   *DynamicBuffer

	// complete is set once every buffer holds the same frame.
	complete bool
	scratch  [core.ViewUniformSize]byte
}

func NewLightBuffers(device *wgpu.Device) *LightBuffers {
	return &LightBuffers{
		View:        NewDynamicBuffer(device, "light2d_view", wgpu.BufferUsageUniform),
		Ambient:     NewDynamicBuffer(device, "light2d_ambient", wgpu.BufferUsageUniform),
		PointLights: NewDynamicBuffer(device, "light2d_point_lights", wgpu.BufferUsageStorage),
		Occluders:   NewDynamicBuffer(device, "light2d_occluders", wgpu.BufferUsageStorage),
	}
}

// Upload writes the whole frame. It runs after extraction and before the
// lighting node, once per frame.
func (lb *LightBuffers) Upload(queue BufferWriter, frame *core.LightingFrame) error {
	lb.complete = false
	view := lb.scratch[:core.ViewUniformSize]
	frame.View.MarshalTo(view)
	if err := lb.View.Write(queue, view); err != nil {
		return err
	}

	ambient := lb.scratch[:core.AmbientLightSize]
	frame.Ambient.MarshalTo(ambient)
	if err := lb.Ambient.Write(queue, ambient); err != nil {
		return err
	}

	if err := lb.PointLights.Write(queue, frame.PointLights.Bytes()); err != nil {
		return err
	}
	if err := lb.Occluders.Write(queue, frame.Occluders.Bytes()); err != nil {
		return err
	}
	lb.complete = true
	return nil
}

// Generation changes whenever any of the buffers was recreated.
func (lb *LightBuffers) Generation() uint64 {
	return lb.View.Generation() + lb.Ambient.Generation() + lb.PointLights.Generation() + lb.Occluders.Generation()
}

// Ready reports whether the last Upload wrote every buffer. A partial
// upload leaves buffers from different frames, which must not be drawn.
func (lb *LightBuffers) Ready() bool {
	return lb.complete && lb.View.Buffer() != nil && lb.Ambient.Buffer() != nil &&
		lb.PointLights.Buffer() != nil && lb.Occluders.Buffer() != nil
}

func (lb *LightBuffers) Release() {
	lb.View.Release()
	lb.Ambient.Release()
	lb.PointLights.Release()
	lb.Occluders.Release()
	lb.complete = false
}
