package blockalloc

import (
	"bytes"
	"testing"

	"github.com/fenwicklabs/heaplab/internal/iface"
)

func payloadBytes(e *Engine, p iface.Ptr, n int64) []byte {
	return e.Payload(p, uintptr(n))
}

func TestSmallChurnReusesFreedBlock(t *testing.T) {
	e := New()

	a := e.Allocate(16)
	b := e.Allocate(16)
	if a == iface.Null || b == iface.Null {
		t.Fatalf("unexpected OOM: a=%v b=%v", a, b)
	}

	e.Free(a)
	c := e.Allocate(16)

	if c != a {
		t.Fatalf("expected the freed block to be reused: a=%v c=%v", a, c)
	}
	if err := e.Check(); err != nil {
		t.Fatalf("check failed: %v", err)
	}
}

func TestSplitLeavesTwoBlocks(t *testing.T) {
	e := New()

	a := e.Allocate(4096)
	if a == iface.Null {
		t.Fatal("unexpected OOM")
	}
	e.Free(a)

	b := e.Allocate(64)
	if b == iface.Null {
		t.Fatal("unexpected OOM")
	}
	if b != a {
		t.Fatalf("expected split to reuse the low end of the freed block: a=%v b=%v", a, b)
	}

	if err := e.Check(); err != nil {
		t.Fatalf("check failed: %v", err)
	}

	buf := e.heap.Raw()
	bStart := int64(b) - headerSize
	bPayload, bFree := readHeader(buf, bStart)
	if bFree {
		t.Fatal("block b should be in use")
	}
	if bPayload != alignUp(64, e.cfg.Alignment) {
		t.Fatalf("unexpected payload for b: %d", bPayload)
	}

	remainderStart := bStart + blockStride(bPayload)
	remPayload, remFree := readHeader(buf, remainderStart)
	if !remFree {
		t.Fatal("remainder should be free")
	}
	if remPayload < 3*1024 {
		t.Fatalf("expected remainder of roughly 3.9 KiB, got %d", remPayload)
	}

	end := footerOffset(remainderStart, remPayload) + footerSize
	if end-1 != e.heap.High() {
		t.Fatalf("remainder should cover the rest of the heap: end=%d high=%d", end-1, e.heap.High())
	}
}

func TestCoalesceMergesBothNeighbors(t *testing.T) {
	e := New()

	a := e.Allocate(64)
	b := e.Allocate(64)
	c := e.Allocate(64)
	if a == iface.Null || b == iface.Null || c == iface.Null {
		t.Fatal("unexpected OOM")
	}

	payload := alignUp(64, e.cfg.Alignment)
	stride := blockStride(payload)

	e.Free(a)
	e.Free(c)
	e.Free(b)

	if err := e.Check(); err != nil {
		t.Fatalf("check failed: %v", err)
	}

	buf := e.heap.Raw()
	aStart := int64(a) - headerSize
	merged, free := readHeader(buf, aStart)
	if !free {
		t.Fatal("expected a single free block covering A..C")
	}
	want := 3*stride - headerSize - footerSize
	if merged != want {
		t.Fatalf("unexpected merged size: got %d, want %d", merged, want)
	}

	end := footerOffset(aStart, merged) + footerSize
	if end-1 != e.heap.High() {
		t.Fatalf("merged block should reach heap high: end=%d high=%d", end-1, e.heap.High())
	}
}

func TestReallocateShrinkIsNoOp(t *testing.T) {
	e := New()

	a := e.Allocate(200)
	if a == iface.Null {
		t.Fatal("unexpected OOM")
	}

	pattern := bytes.Repeat([]byte{0xA5}, 200)
	copy(payloadBytes(e, a, 200), pattern)

	aPrime := e.Reallocate(a, 100)
	if aPrime != a {
		t.Fatalf("shrink should return the same pointer: a=%v a'=%v", a, aPrime)
	}

	got := payloadBytes(e, aPrime, 100)
	if !bytes.Equal(got, pattern[:100]) {
		t.Fatal("shrink corrupted the retained bytes")
	}
}

func TestReallocateLastBlockGrowsInPlace(t *testing.T) {
	e := New()

	a := e.Allocate(128)
	if a == iface.Null {
		t.Fatal("unexpected OOM")
	}
	sizeBefore := e.heap.Size()

	aPrime := e.Reallocate(a, 4096)
	if aPrime != a {
		t.Fatalf("last-block grow should return the same pointer: a=%v a'=%v", a, aPrime)
	}

	grown := e.heap.Size() - sizeBefore
	wantPayload := alignUp(4096, e.cfg.Alignment) - alignUp(128, e.cfg.Alignment)
	if grown != wantPayload {
		t.Fatalf("expected heap to grow by exactly the aligned delta: got %d, want %d", grown, wantPayload)
	}
}

func TestAllocateOutOfMemoryThenRecovers(t *testing.T) {
	e := New()

	huge := e.Allocate(60 * 1024 * 1024)
	if huge != iface.Null {
		t.Fatal("expected OOM for a 60 MiB request against a 50 MiB cap")
	}

	small := e.Allocate(64)
	if small == iface.Null {
		t.Fatal("allocator should still serve a small request after a failed large one")
	}
}

func TestFreeNullIsNoOp(t *testing.T) {
	e := New()
	e.Free(iface.Null) // must not panic
}

func TestDoubleFreePanics(t *testing.T) {
	e := New()
	a := e.Allocate(32)
	if a == iface.Null {
		t.Fatal("unexpected OOM")
	}
	e.Free(a)

	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic on double free")
		}
	}()
	e.Free(a)
}

func TestAllocateZeroReturnsNull(t *testing.T) {
	e := New()
	if p := e.Allocate(0); p != iface.Null {
		t.Fatalf("expected Null for a zero-size request, got %v", p)
	}
}

func TestReallocateNullBehavesAsAllocate(t *testing.T) {
	e := New()
	p := e.Reallocate(iface.Null, 64)
	if p == iface.Null {
		t.Fatal("unexpected OOM")
	}
}

func TestReallocateZeroSizeFrees(t *testing.T) {
	e := New()
	a := e.Allocate(64)
	if a == iface.Null {
		t.Fatal("unexpected OOM")
	}

	p := e.Reallocate(a, 0)
	if p != iface.Null {
		t.Fatal("expected Null when reallocating to size zero")
	}

	// a's bytes should now belong to a free block; reallocating a fresh
	// request of the same size should be free to reuse it.
	b := e.Allocate(64)
	if b != a {
		t.Fatalf("expected the freed block to be reused: a=%v b=%v", a, b)
	}
}

func TestPointerAlignmentAndContainment(t *testing.T) {
	e := New()

	sizes := []uintptr{1, 7, 8, 9, 63, 64, 65, 1000}
	var ptrs []iface.Ptr
	for _, s := range sizes {
		p := e.Allocate(s)
		if p == iface.Null {
			t.Fatalf("unexpected OOM allocating %d", s)
		}
		ptrs = append(ptrs, p)
	}

	lo, hi := int64(e.HeapLow()), int64(e.HeapHigh())
	for i, p := range ptrs {
		if int64(p)%e.cfg.Alignment != 0 {
			t.Fatalf("pointer %d (%v) is not %d-byte aligned", i, p, e.cfg.Alignment)
		}
		if int64(p) < lo || int64(p) > hi {
			t.Fatalf("pointer %d (%v) outside heap bounds [%d, %d]", i, p, lo, hi)
		}
	}

	if err := e.Check(); err != nil {
		t.Fatalf("check failed: %v", err)
	}
}

func TestNoOverlapAmongLiveAllocations(t *testing.T) {
	e := New()

	type extent struct{ lo, hi int64 }
	var extents []extent

	for i := int64(1); i <= 20; i++ {
		size := uintptr(i * 7)
		p := e.Allocate(size)
		if p == iface.Null {
			t.Fatalf("unexpected OOM allocating %d", size)
		}
		payload := alignUp(int64(size), e.cfg.Alignment)
		if payload < minPayload(e.cfg) {
			payload = minPayload(e.cfg)
		}
		extents = append(extents, extent{int64(p), int64(p) + payload - 1})
	}

	for i := range extents {
		for j := range extents {
			if i == j {
				continue
			}
			if extents[i].lo <= extents[j].hi && extents[j].lo <= extents[i].hi {
				t.Fatalf("overlapping live extents: %v and %v", extents[i], extents[j])
			}
		}
	}
}

func TestResetEmptiesTheHeap(t *testing.T) {
	e := New()
	e.Allocate(64)
	e.Allocate(128)

	e.Reset()
	if err := e.Init(); err != nil {
		t.Fatalf("init after reset failed: %v", err)
	}

	if e.heap.Size() != 0 {
		t.Fatalf("expected an empty heap after reset, got size %d", e.heap.Size())
	}
	if err := e.Check(); err != nil {
		t.Fatalf("check on empty heap failed: %v", err)
	}
}

func TestDoubleInitIsNoOp(t *testing.T) {
	e := New()
	a := e.Allocate(64)
	if a == iface.Null {
		t.Fatal("unexpected OOM")
	}
	if err := e.Init(); err != nil {
		t.Fatalf("second init failed: %v", err)
	}
	// Init only resets bookkeeping, not the heap itself; the live block's
	// bytes are untouched.
	if err := e.Check(); err != nil {
		t.Fatalf("check failed: %v", err)
	}
}
