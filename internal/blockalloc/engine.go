// Package blockalloc implements the segregated free-list allocator at the
// core of heaplab, grounded line-for-line on mymalloc/allocator.c's
// my_malloc/my_free/my_realloc/coalesce/get_best_block, with a functional-
// options Config/Option builder in the same shape as the rest of this
// module.
package blockalloc

import (
	"fmt"

	allocerrors "github.com/fenwicklabs/heaplab/internal/errors"
	"github.com/fenwicklabs/heaplab/internal/heapsim"
	"github.com/fenwicklabs/heaplab/internal/iface"
)

var _ iface.Allocator = (*Engine)(nil)

// Engine is the segregated free-list allocator. It owns a heapsim.Heap
// exclusively between Init and Reset; nothing about it is safe for
// concurrent use except through the heap's own atomic growth.
type Engine struct {
	heap  *heapsim.Heap
	cfg   Config
	table freeTable
}

// New builds an Engine with the given options layered over the default
// configuration (8-byte alignment, 25 classes, split threshold 112,
// best-of-4, 50 MiB heap cap), and initializes it.
func New(opts ...Option) *Engine {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	e := &Engine{
		heap: heapsim.New(cfg.HeapCap),
		cfg:  cfg,
	}
	_ = e.Init()

	return e
}

// Init zeroes every free-list head and the occupied-class high-water mark.
// Idempotent, and safe to call again after Reset.
func (e *Engine) Init() error {
	e.table = newFreeTable(e.cfg.ClassCount)
	return nil
}

// Reset discards every block and shrinks the heap back to empty. The next
// Init (or just continuing to call Allocate) starts from a clean slate.
func (e *Engine) Reset() {
	e.heap.Reset()
	e.table.reset()
}

// HeapLow returns the address of the first heap byte.
func (e *Engine) HeapLow() iface.Ptr { return iface.Ptr(e.heap.Low()) }

// HeapHigh returns the address of the last live heap byte (inclusive).
func (e *Engine) HeapHigh() iface.Ptr { return iface.Ptr(e.heap.High()) }

// Bytes exposes the live heap region for validators and tests.
func (e *Engine) Bytes() []byte { return e.heap.Bytes() }

// Payload returns a writable view of the n bytes starting at ptr, aliasing
// the heap's own backing array.
func (e *Engine) Payload(ptr iface.Ptr, n uintptr) []byte {
	off := int64(ptr)
	return e.heap.Raw()[off : off+int64(n)]
}

// requiredPayload rounds a request up to the alignment unit and the minimum
// payload floor (large enough to later hold the two free-list links).
func (e *Engine) requiredPayload(size uintptr) int64 {
	payload := alignUp(int64(size), e.cfg.Alignment)
	if min := minPayload(e.cfg); payload < min {
		payload = min
	}

	return payload
}

// Allocate tries the exact size class first, refined by best-of-K, then an
// upward scan across larger classes with split-if-the-remainder-is-large-
// enough, and finally grows the heap as a last resort.
func (e *Engine) Allocate(size uintptr) iface.Ptr {
	if size == 0 {
		return iface.Null
	}

	buf := e.heap.Raw()
	payload := e.requiredPayload(size)
	block := blockStride(payload)
	class := sizeClass(payload, e.cfg.ClassCount)

	if winner, ok := e.scanSameClass(buf, class, payload); ok {
		wp := readPayload(buf, winner)
		e.table.remove(buf, winner, wp)
		writeHeader(buf, winner, wp, false)
		writeFooter(buf, winner, wp)

		return iface.Ptr(payloadOffset(winner))
	}

	if winner, ok := e.scanUpward(buf, class, payload); ok {
		wp := readPayload(buf, winner)
		e.table.remove(buf, winner, wp)

		if wp-block >= minPayload(e.cfg)+e.cfg.SplitThreshold {
			e.split(buf, winner, wp, block, payload)
		} else {
			writeHeader(buf, winner, wp, false)
			writeFooter(buf, winner, wp)
		}

		return iface.Ptr(payloadOffset(winner))
	}

	start, err := e.heap.Grow(block)
	if err != nil {
		return iface.Null
	}

	// Raw() is a fixed-length view over the heap's pre-allocated backing
	// array (see heapsim.Heap), so buf itself is still valid after Grow.
	writeHeader(buf, start, payload, false)
	writeFooter(buf, start, payload)

	return iface.Ptr(payloadOffset(start))
}

// scanSameClass searches the exact class whose blocks are guaranteed to be
// in [2^class, 2^(class+1)) linearly for the first block of sufficient size,
// then refines the pick with best-of-K. Never splits: using the whole block,
// even when it's much bigger than requested, preserves block identity for a
// later in-place realloc grow.
func (e *Engine) scanSameClass(buf []byte, class int, payload int64) (int64, bool) {
	head := e.table.heads[class]
	if head == nullOff {
		return nullOff, false
	}

	var first int64 = nullOff
	if readPayload(buf, head) >= payload {
		first = head
	} else {
		for cur := readNextFree(buf, head); cur != nullOff; cur = readNextFree(buf, cur) {
			if readPayload(buf, cur) >= payload {
				first = cur
				break
			}
		}
	}

	if first == nullOff {
		return nullOff, false
	}

	return e.bestOfK(buf, first, payload), true
}

// scanUpward ascends from class+1 to maxClass, taking the head of the first
// non-empty class (guaranteed large enough since its whole class floor
// exceeds the request), best-of-K refined within that class.
func (e *Engine) scanUpward(buf []byte, class int, payload int64) (int64, bool) {
	for c := class + 1; c <= e.table.maxClass; c++ {
		head := e.table.heads[c]
		if head == nullOff {
			continue
		}

		return e.bestOfK(buf, head, payload), true
	}

	return nullOff, false
}

// bestOfK starts at first and follows next_free for up to BestOfK additional
// steps within the same class, keeping the smallest candidate that still
// fits. Ties go to the earliest-visited block (strict "<" below never
// displaces an equal-size later candidate).
func (e *Engine) bestOfK(buf []byte, first int64, payload int64) int64 {
	best := first
	bestSize := readPayload(buf, first)

	cur := readNextFree(buf, first)
	for i := 0; i < e.cfg.BestOfK && cur != nullOff; i++ {
		size := readPayload(buf, cur)
		if size >= payload && size < bestSize {
			best, bestSize = cur, size
		}

		cur = readNextFree(buf, cur)
	}

	return best
}

// split carves `block` bytes off the low end of a free block of total
// payload f for the caller, and frees the remainder.
//
// The remainder's payload follows from byte conservation: the original free
// block occupies headerSize+f+footerSize total bytes, and the carved-off
// left part consumes `block` of those, so the remainder occupies
// headerSize+f+footerSize-block bytes. As a block of its own
// (headerSize+rightPayload+footerSize), that gives rightPayload = f - block;
// this is the formula that keeps every byte of the original block accounted
// for in the two resulting blocks, with no gap between them.
func (e *Engine) split(buf []byte, start, f, block, payload int64) {
	writeHeader(buf, start, payload, false)
	writeFooter(buf, start, payload)

	rightStart := start + block
	rightPayload := f - block

	e.freeBlock(buf, rightStart, rightPayload)
}

// Free recovers the header, rejects an already-free block (best-effort
// double-free detection), coalesces with free neighbors, and inserts the
// result into its size class.
func (e *Engine) Free(ptr iface.Ptr) {
	if ptr == iface.Null {
		return
	}

	buf := e.heap.Raw()
	b := int64(ptr) - headerSize

	_, free := readHeader(buf, b)
	if free {
		panic(allocerrors.DoubleFree(b))
	}

	payload := readPayload(buf, b)
	e.freeBlock(buf, b, payload)
}

// freeBlock is Free's body factored out so split's remainder can go through
// the same coalesce-then-insert path as an ordinary free.
func (e *Engine) freeBlock(buf []byte, b, payload int64) {
	newStart, newPayload := e.coalesce(buf, b, payload)
	writeHeader(buf, newStart, newPayload, true)
	e.table.insert(buf, newStart, newPayload)
}

// coalesce merges b with a free left and/or right neighbor, covering all
// four combinations of (left free, right free). Returns the merged block's
// start and payload, with header/footer already written (free bit still
// clear; the caller sets it).
func (e *Engine) coalesce(buf []byte, b, payload int64) (int64, int64) {
	lo := e.heap.Low()
	hi := e.heap.High()

	leftFree, leftStart, leftPayload := false, int64(0), int64(0)
	if b > lo {
		leftPayload = int64(readWord(buf, b-footerSize)) // left neighbor's footer == its payload size
		leftStart = b - footerSize - headerSize - leftPayload
		_, leftFree = readHeader(buf, leftStart)
	}

	end := footerOffset(b, payload) + footerSize

	rightFree, rightStart, rightPayload := false, int64(0), int64(0)
	if end <= hi {
		rightStart = end
		rightPayload, rightFree = readHeader(buf, rightStart)
	}

	newStart, newEnd := b, end

	if leftFree {
		e.table.remove(buf, leftStart, leftPayload)
		newStart = leftStart
	}

	if rightFree {
		e.table.remove(buf, rightStart, rightPayload)
		newEnd = footerOffset(rightStart, rightPayload) + footerSize
	}

	newPayload := newEnd - newStart - headerSize - footerSize

	writeHeader(buf, newStart, newPayload, false)
	writeFooter(buf, newStart, newPayload)

	return newStart, newPayload
}

// Reallocate returns ptr unchanged when the request fits the current payload
// (the block is not shrunk), grows the last block in place via heap growth,
// or falls back to allocate-copy-free.
func (e *Engine) Reallocate(ptr iface.Ptr, size uintptr) iface.Ptr {
	if ptr == iface.Null {
		return e.Allocate(size)
	}

	if size == 0 {
		e.Free(ptr)
		return iface.Null
	}

	buf := e.heap.Raw()
	b := int64(ptr) - headerSize
	current := readPayload(buf, b)
	newPayload := e.requiredPayload(size)

	if newPayload <= current {
		return ptr
	}

	if footerOffset(b, current)+footerSize-1 == e.heap.High() {
		delta := newPayload - current
		if _, err := e.heap.Grow(delta); err != nil {
			return iface.Null
		}

		writeHeader(buf, b, newPayload, false)
		writeFooter(buf, b, newPayload)

		return ptr
	}

	newPtr := e.Allocate(size)
	if newPtr == iface.Null {
		return iface.Null
	}

	newB := int64(newPtr) - headerSize
	copy(buf[payloadOffset(newB):payloadOffset(newB)+current], buf[payloadOffset(b):payloadOffset(b)+current])

	e.Free(ptr)

	return newPtr
}

// Check walks the heap verifying header/footer size agreement at every
// block, and that the walk lands exactly on heap_high+1.
func (e *Engine) Check() error {
	buf := e.heap.Raw()
	lo := e.heap.Low()
	hi := e.heap.High() + 1

	p := lo
	for p < hi {
		payload, _ := readHeader(buf, p)
		if payload <= 0 {
			return allocerrors.InvariantViolation(fmt.Sprintf("non-positive payload %d", payload), p)
		}

		if f := readFooter(buf, p, payload); f != payload {
			return allocerrors.InvariantViolation(fmt.Sprintf("header/footer size mismatch: %d != %d", payload, f), p)
		}

		p += blockStride(payload)
	}

	if p != hi {
		return allocerrors.InvariantViolation(fmt.Sprintf("walk ended at %d, want %d", p, hi), p)
	}

	return nil
}
