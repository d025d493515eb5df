package particle

import (
	"fmt"
	"slices"
)

// Buffer is the storage behind one per-particle attribute. It is either owned
// by the System and grown on demand, or supplied by the caller, in which case
// its length caps the system capacity and it is never reallocated. Deferred
// buffers stay nil until first requested.
type Buffer[T any] struct {
	data     []T
	supplied int
	deferred bool
}

func (b *Buffer[T]) allocated() bool {
	return b.data != nil
}

// limit clamps a proposed capacity to caller-supplied storage.
func (b *Buffer[T]) limit(capacity int) int {
	if b.supplied > 0 && capacity > b.supplied {
		return b.supplied
	}
	return capacity
}

func (b *Buffer[T]) reallocate(count, capacity int) {
	if b.supplied > 0 || (b.deferred && b.data == nil) || len(b.data) >= capacity {
		return
	}
	data := make([]T, capacity)
	copy(data, b.data[:count])
	b.data = data
}

// request materializes a deferred buffer.
func (b *Buffer[T]) request(capacity int) []T {
	if b.data == nil {
		b.data = make([]T, capacity)
	}
	return b.data
}

// set installs caller storage, copying the live prefix into it. A nil slice
// hands storage back to the System.
func (b *Buffer[T]) set(data []T, count, capacity int) error {
	if data == nil {
		if b.supplied == 0 {
			return nil
		}
		owned := make([]T, capacity)
		copy(owned, b.data[:count])
		b.data, b.supplied = owned, 0
		return nil
	}
	if len(data) < count {
		return fmt.Errorf("%w: need %d, got %d", ErrBufferTooSmall, count, len(data))
	}
	if b.data != nil {
		copy(data, b.data[:count])
	}
	b.data, b.supplied = data, len(data)
	return nil
}

func (b *Buffer[T]) slice(count int) []T {
	if b.data == nil {
		return nil
	}
	return b.data[:count]
}

func (b *Buffer[T]) move(dst, src int) {
	if b.data != nil {
		b.data[dst] = b.data[src]
	}
}

func (b *Buffer[T]) rotate(start, mid, end int) {
	if b.data != nil {
		rotate(b.data[start:end], mid-start)
	}
}

// reset zeroes [from, to) so dropped references can be collected.
func (b *Buffer[T]) reset(from, to int) {
	if b.data != nil {
		clear(b.data[from:to])
	}
}

// rotate moves s[k:] in front of s[:k] in place.
func rotate[T any](s []T, k int) {
	slices.Reverse(s[:k])
	slices.Reverse(s[k:])
	slices.Reverse(s)
}
