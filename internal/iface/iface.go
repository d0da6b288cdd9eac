// Package iface declares the capability set shared by every allocator
// implementation in heaplab: the segregated free-list engine, the libc
// pass-through reference, and the deliberately broken one. A trace-replay
// harness drives any of the three through this single interface.
package iface

// Ptr is a logical address into a Heap: a byte offset, not a real pointer.
// The allocator and its callers never own memory directly, only offsets into
// a byte region owned by the heap substrate.
type Ptr int64

// Null is the sentinel "no pointer" value, returned on allocation failure and
// accepted by Free/Reallocate as a no-op/alloc-equivalent input.
const Null Ptr = -1

// Allocator is the capability set a trace driver needs: init, the three
// payload operations, the invariant checker, heap bounds, and reset. Every
// implementation (blockalloc.Engine, refalloc.Allocator, badalloc.Allocator)
// satisfies this so the harness can run traces against any of them
// interchangeably.
type Allocator interface {
	// Init resets internal bookkeeping. Idempotent; safe to call again after
	// Reset.
	Init() error

	// Allocate returns a payload pointer of at least size bytes, or Null on
	// out-of-memory.
	Allocate(size uintptr) Ptr

	// Reallocate resizes the block at ptr, preserving min(old, size) bytes of
	// content. ptr == Null behaves as Allocate; size == 0 behaves as Free and
	// returns Null.
	Reallocate(ptr Ptr, size uintptr) Ptr

	// Free releases the block at ptr. No-op on Null.
	Free(ptr Ptr)

	// Check walks the heap and verifies the structural invariants. A
	// non-nil error means the heap is corrupt and further behavior is
	// undefined.
	Check() error

	// Reset discards all blocks and growth; the next Init starts from an
	// empty heap.
	Reset()

	// HeapLow and HeapHigh bound the live heap region (inclusive). While
	// the heap is empty HeapHigh is below HeapLow. Both return Null when
	// the implementation doesn't track a simulated heap (e.g. refalloc).
	HeapLow() Ptr
	HeapHigh() Ptr

	// Bytes exposes the live heap region for validators and tests that need
	// to read/write payload content directly. Implementations that don't
	// back onto a simulated heap (refalloc) may return nil.
	Bytes() []byte

	// Payload returns a writable view of the n bytes starting at ptr,
	// regardless of whether the implementation backs onto one contiguous
	// heap or a separate Go allocation per block. Used by the trace
	// replayer's write ops and by P8's realloc-preservation check.
	Payload(ptr Ptr, n uintptr) []byte
}
