// Package refalloc is the pass-through reference allocator: it satisfies
// iface.Allocator by handing every request straight to Go's own allocator,
// exactly as libc_allocator.c hands every request straight to libc malloc.
// It exists so the harness can compare blockalloc.Engine's behavior and
// throughput against a known-good baseline.
//
// Grounded on libc_allocator.c (init/check/reset_brk are no-ops, heap_lo/
// heap_hi report nothing), with map-of-live-allocations bookkeeping behind
// an RWMutex and atomic counters for the allocated/freed byte totals.
package refalloc

import (
	"sync"
	"sync/atomic"

	"github.com/fenwicklabs/heaplab/internal/iface"
)

var _ iface.Allocator = (*Allocator)(nil)

// Allocator hands every request to Go's own allocator and tracks live blocks
// by a synthetic logical pointer so callers can address them the same way
// they address a simulated heap's offsets.
type Allocator struct {
	mu      sync.RWMutex
	live    map[iface.Ptr][]byte
	nextPtr int64

	allocated uint64 // atomic: total bytes ever allocated
	freed     uint64 // atomic: total bytes ever freed
}

// New constructs an empty reference allocator.
func New() *Allocator {
	return &Allocator{live: make(map[iface.Ptr][]byte)}
}

// Init is a no-op: libc needs no initialization.
func (a *Allocator) Init() error { return nil }

// Allocate hands size bytes to Go's allocator and returns a synthetic
// pointer identifying the resulting slice. Synthetic pointers are spaced 16
// apart, as libc malloc's results are aligned, so they pass the harness's
// alignment check.
func (a *Allocator) Allocate(size uintptr) iface.Ptr {
	if size == 0 {
		return iface.Null
	}

	buf := make([]byte, size)
	ptr := iface.Ptr(atomic.AddInt64(&a.nextPtr, 1) * 16)

	a.mu.Lock()
	a.live[ptr] = buf
	a.mu.Unlock()

	atomic.AddUint64(&a.allocated, uint64(size))

	return ptr
}

// Reallocate grows or shrinks the block at ptr, copying min(old, new) bytes,
// exactly as libc_realloc delegates to realloc(3).
func (a *Allocator) Reallocate(ptr iface.Ptr, size uintptr) iface.Ptr {
	if ptr == iface.Null {
		return a.Allocate(size)
	}
	if size == 0 {
		a.Free(ptr)
		return iface.Null
	}

	a.mu.RLock()
	old, ok := a.live[ptr]
	a.mu.RUnlock()
	if !ok {
		return iface.Null
	}

	next := make([]byte, size)
	copy(next, old)

	a.mu.Lock()
	a.live[ptr] = next
	a.mu.Unlock()

	if size > uintptr(len(old)) {
		atomic.AddUint64(&a.allocated, uint64(size-uintptr(len(old))))
	} else {
		atomic.AddUint64(&a.freed, uint64(uintptr(len(old))-size))
	}

	return ptr
}

// Free releases the block at ptr, allowing Go's GC to reclaim it.
func (a *Allocator) Free(ptr iface.Ptr) {
	if ptr == iface.Null {
		return
	}

	a.mu.Lock()
	buf, ok := a.live[ptr]
	delete(a.live, ptr)
	a.mu.Unlock()

	if ok {
		atomic.AddUint64(&a.freed, uint64(len(buf)))
	}
}

// Check always succeeds: libc has no heap checker of its own to run.
func (a *Allocator) Check() error { return nil }

// Reset discards every tracked allocation.
func (a *Allocator) Reset() {
	a.mu.Lock()
	a.live = make(map[iface.Ptr][]byte)
	a.mu.Unlock()
	atomic.StoreInt64(&a.nextPtr, 0)
	atomic.StoreUint64(&a.allocated, 0)
	atomic.StoreUint64(&a.freed, 0)
}

// HeapLow and HeapHigh have no meaning for a pass-through allocator: there is
// no simulated heap to bound.
func (a *Allocator) HeapLow() iface.Ptr  { return iface.Null }
func (a *Allocator) HeapHigh() iface.Ptr { return iface.Null }

// Bytes has no meaning either: each live allocation is its own Go slice, not
// a region of one contiguous heap.
func (a *Allocator) Bytes() []byte { return nil }

// Payload returns a writable view of the n bytes at the block identified by
// ptr, aliasing that block's own Go slice.
func (a *Allocator) Payload(ptr iface.Ptr, n uintptr) []byte {
	a.mu.RLock()
	defer a.mu.RUnlock()

	buf, ok := a.live[ptr]
	if !ok {
		return nil
	}

	return buf[:n]
}

// Stats reports running totals for the harness's utilization reporting.
func (a *Allocator) Stats() (allocated, freed uint64) {
	return atomic.LoadUint64(&a.allocated), atomic.LoadUint64(&a.freed)
}
