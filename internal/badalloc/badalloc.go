// Package badalloc is the deliberately broken allocator: it exists as a
// negative control for the harness and the validator, so a passing run
// against blockalloc.Engine can be contrasted with a run that is expected to
// fail P5 (containment) and P8 (realloc preservation).
//
// Grounded on bad_allocator.c: every allocation ignores the requested size
// and claims a fixed BadSize of the heap instead (so most requests get more
// than they asked for, but a request for BadSize+1 silently overflows into
// its neighbor), free does nothing, and realloc allocates a fresh block
// without copying the old contents.
package badalloc

import (
	"github.com/fenwicklabs/heaplab/internal/heapsim"
	"github.com/fenwicklabs/heaplab/internal/iface"
)

var _ iface.Allocator = (*Allocator)(nil)

// BadSize is the fixed, deliberately misaligned block size every allocation
// claims, regardless of what was requested.
const BadSize = 4101

// Allocator is the broken allocator. It still grows a real heapsim.Heap (so
// HeapLow/HeapHigh/Bytes behave like blockalloc's), but never tracks which
// bytes are free, never reuses anything, and never copies on realloc.
type Allocator struct {
	heap *heapsim.Heap
}

// New constructs a broken allocator over a heap of the given capacity (0
// selects heapsim.DefaultMaxHeap).
func New(maxBytes int64) *Allocator {
	return &Allocator{heap: heapsim.New(maxBytes)}
}

// Init does nothing.
func (a *Allocator) Init() error { return nil }

// Allocate always claims BadSize bytes from the heap, whatever size was
// requested.
func (a *Allocator) Allocate(size uintptr) iface.Ptr {
	start, err := a.heap.Grow(BadSize)
	if err != nil {
		return iface.Null
	}

	return iface.Ptr(start)
}

// Free does nothing: the claimed bytes are never reclaimed.
func (a *Allocator) Free(ptr iface.Ptr) {}

// Reallocate allocates a new BadSize block and returns it without copying
// the old block's contents.
func (a *Allocator) Reallocate(ptr iface.Ptr, size uintptr) iface.Ptr {
	if ptr == iface.Null {
		return a.Allocate(size)
	}
	if size == 0 {
		return iface.Null
	}

	return a.Allocate(size)
}

// Check never reports a failure: the broken allocator has no checker of its
// own, by design.
func (a *Allocator) Check() error { return nil }

// Reset shrinks the heap back to empty.
func (a *Allocator) Reset() { a.heap.Reset() }

// HeapLow returns the address of the first heap byte.
func (a *Allocator) HeapLow() iface.Ptr { return iface.Ptr(a.heap.Low()) }

// HeapHigh returns the address of the last live heap byte.
func (a *Allocator) HeapHigh() iface.Ptr { return iface.Ptr(a.heap.High()) }

// Bytes exposes the live heap region.
func (a *Allocator) Bytes() []byte { return a.heap.Bytes() }

// Payload returns a writable view of the n bytes at ptr, sliced from the
// heap's full backing buffer. Since every block is BadSize regardless of
// request, asking for more than BadSize bytes here silently spills into the
// next block (or past the break) instead of failing, the same way writing
// past a too-small malformed block corrupts memory in the original; only a
// view reaching past the heap cap panics.
func (a *Allocator) Payload(ptr iface.Ptr, n uintptr) []byte {
	off := int64(ptr)
	return a.heap.Raw()[off : off+int64(n)]
}
