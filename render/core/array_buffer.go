package core

import "encoding/binary"

// ArrayBuffer collects records for a runtime-sized storage array:
//
//	struct Items { count: u32, _pad: vec3<u32>, items: array<T> }
//
// The encoding always carries at least one element slot so that the bound
// buffer is never empty; count tells the shader how many are valid.
type ArrayBuffer[T GpuRecord] struct {
	items []T
	bytes []byte
}

func (b *ArrayBuffer[T]) Clear() {
	b.items = b.items[:0]
}

// Push appends v and returns its index.
func (b *ArrayBuffer[T]) Push(v T) int {
	b.items = append(b.items, v)
	return len(b.items) - 1
}

func (b *ArrayBuffer[T]) Len() int { return len(b.items) }

func (b *ArrayBuffer[T]) At(i int) T { return b.items[i] }

// Items returns the backing slice. It is only valid until the next Push or
// Clear.
func (b *ArrayBuffer[T]) Items() []T { return b.items }

// Bytes encodes the header and items. The returned slice is reused by the
// next call.
func (b *ArrayBuffer[T]) Bytes() []byte {
	var zero T
	stride := zero.Size()
	slots := max(len(b.items), 1)
	size := ArrayBufferHeaderSize + slots*stride

	if cap(b.bytes) < size {
		b.bytes = make([]byte, size)
	}
	b.bytes = b.bytes[:size]
	clear(b.bytes)

	binary.LittleEndian.PutUint32(b.bytes[0:], uint32(len(b.items)))
	for i, item := range b.items {
		off := ArrayBufferHeaderSize + i*stride
		item.MarshalTo(b.bytes[off : off+stride])
	}
	return b.bytes
}
