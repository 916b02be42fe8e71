package dvi

import "sync/atomic"

// RingBuffer is a single-producer single-consumer queue. The producer and
// consumer may run on different goroutines without further locking; each
// side only moves its own cursor.
type RingBuffer[T any] struct {
	buf   []T
	read  atomic.Uint64
	write atomic.Uint64
}

func NewRingBuffer[T any](capacity int) *RingBuffer[T] {
	if capacity <= 0 {
		panic("dvi: ring capacity must be positive")
	}
	return &RingBuffer[T]{buf: make([]T, capacity)}
}

func (r *RingBuffer[T]) Capacity() int {
	return len(r.buf)
}

// FullWritableSize returns the total free space.
func (r *RingBuffer[T]) FullWritableSize() int {
	return len(r.buf) - int(r.write.Load()-r.read.Load())
}

// WritableSize returns the free space reachable without wrapping.
func (r *RingBuffer[T]) WritableSize() int {
	pos := int(r.write.Load() % uint64(len(r.buf)))
	return min(r.FullWritableSize(), len(r.buf)-pos)
}

// WritePointer returns the contiguous free region. Fill a prefix of it and
// publish with AdvanceWritePointer.
func (r *RingBuffer[T]) WritePointer() []T {
	pos := int(r.write.Load() % uint64(len(r.buf)))
	return r.buf[pos : pos+r.WritableSize()]
}

func (r *RingBuffer[T]) AdvanceWritePointer(n int) {
	if n < 0 || n > r.FullWritableSize() {
		panic("dvi: ring write overrun")
	}
	r.write.Add(uint64(n))
}

// FullReadableSize returns the number of queued elements.
func (r *RingBuffer[T]) FullReadableSize() int {
	return int(r.write.Load() - r.read.Load())
}

// ReadableSize returns the queued elements reachable without wrapping.
func (r *RingBuffer[T]) ReadableSize() int {
	pos := int(r.read.Load() % uint64(len(r.buf)))
	return min(r.FullReadableSize(), len(r.buf)-pos)
}

// ReadPointer returns the contiguous queued region.
func (r *RingBuffer[T]) ReadPointer() []T {
	pos := int(r.read.Load() % uint64(len(r.buf)))
	return r.buf[pos : pos+r.ReadableSize()]
}

func (r *RingBuffer[T]) AdvanceReadPointer(n int) {
	if n < 0 || n > r.FullReadableSize() {
		panic("dvi: ring read overrun")
	}
	r.read.Add(uint64(n))
}
