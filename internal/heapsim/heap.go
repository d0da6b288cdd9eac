// Package heapsim models the memory system so an allocator can be developed
// and tested without touching the real process address space. It provides
// the sole growth primitive (a sbrk-style bump) that blockalloc and badalloc
// both grow against.
//
// Grounded on memlib.c's mem_init/mem_sbrk/mem_reset_brk/mem_heap_lo/
// mem_heap_hi, reworked from a single global C heap into an instance so tests
// can run many heaps side by side. The bump-pointer growth loop follows the
// shape of allocator.ArenaAllocatorImpl.Alloc (bounds check, advance,
// peak-usage tracking) with unsafe.Pointer arithmetic replaced by slice
// indexing and the mutex replaced by an atomic fetch-add.
package heapsim

import (
	"fmt"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// DefaultMaxHeap is the compile-time heap cap from config.h's MAX_HEAP: 50 MiB.
const DefaultMaxHeap = 50 * (1 << 20)

// ErrOutOfMemory is returned by Grow when growing would exceed the heap's cap.
var ErrOutOfMemory = fmt.Errorf("heapsim: out of memory")

// Heap is a contiguous, monotonically growing byte region with a single
// sbrk-style growth primitive. It never shrinks; Reset is the only way to
// discard content, and it starts the heap over from empty.
type Heap struct {
	buf      []byte
	brk      int64 // atomic: current break, i.e. current heap size in bytes
	max      int64
	peakSize int64 // atomic: largest brk ever observed, for stats
}

// New creates a heap backed by a maxBytes-capacity buffer, initially empty
// (Low() == High()+1, i.e. a zero-length heap).
func New(maxBytes int64) *Heap {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxHeap
	}

	return &Heap{
		buf: make([]byte, maxBytes),
		max: maxBytes,
	}
}

// Grow extends the heap by n bytes and returns the byte offset at which the
// new region starts. It atomically fetches-and-adds the break pointer so
// concurrent callers (across distinct Heap instances, or in principle the
// same one) never claim overlapping regions; if the post-add break would
// exceed the cap, the increment is reversed and ErrOutOfMemory is returned.
func (h *Heap) Grow(n int64) (int64, error) {
	if n < 0 {
		return 0, fmt.Errorf("heapsim: negative growth %d", n)
	}
	if n == 0 {
		return atomic.LoadInt64(&h.brk), nil
	}

	start := atomic.AddInt64(&h.brk, n) - n
	newBrk := start + n
	if newBrk > h.max {
		atomic.AddInt64(&h.brk, -n)
		return 0, ErrOutOfMemory
	}

	h.bumpPeak(newBrk)

	return start, nil
}

func (h *Heap) bumpPeak(size int64) {
	for {
		cur := atomic.LoadInt64(&h.peakSize)
		if size <= cur {
			return
		}
		if atomic.CompareAndSwapInt64(&h.peakSize, cur, size) {
			return
		}
	}
}

// Low returns the offset of the first heap byte. Always 0: offsets are
// relative to this Heap's own buffer, not the process address space.
func (h *Heap) Low() int64 { return 0 }

// High returns the offset of the last valid heap byte (inclusive). For an
// empty heap this is -1, i.e. Low() > High().
func (h *Heap) High() int64 { return atomic.LoadInt64(&h.brk) - 1 }

// Size returns the current heap size in bytes.
func (h *Heap) Size() int64 { return atomic.LoadInt64(&h.brk) }

// Cap returns the configured maximum heap size in bytes.
func (h *Heap) Cap() int64 { return h.max }

// PeakSize returns the largest size this heap has reached since it was
// created or last Reset.
func (h *Heap) PeakSize() int64 { return atomic.LoadInt64(&h.peakSize) }

// PageSize reports the host page size, restoring memlib.c's mem_pagesize();
// purely informational, never used in sizing decisions.
func (h *Heap) PageSize() int {
	return unix.Getpagesize()
}

// Reset discards all heap content and shrinks the break back to empty. The
// backing buffer capacity (and therefore Cap) is unchanged.
func (h *Heap) Reset() {
	atomic.StoreInt64(&h.brk, 0)
	atomic.StoreInt64(&h.peakSize, 0)
}

// Bytes returns the live heap region [Low(), High()]. The returned slice
// aliases the heap's storage; callers must not retain it across a Grow or
// Reset.
func (h *Heap) Bytes() []byte {
	return h.buf[:atomic.LoadInt64(&h.brk)]
}

// Raw returns the full backing buffer (length == Cap), for allocator
// internals that index by offset without wanting Bytes' brk-bounded slice to
// go stale across a Grow within the same call.
func (h *Heap) Raw() []byte {
	return h.buf
}
