package badalloc

import (
	"testing"

	"github.com/fenwicklabs/heaplab/internal/iface"
)

func TestAllocateAlwaysClaimsBadSize(t *testing.T) {
	a := New(1 << 20)

	first := a.Allocate(8)
	second := a.Allocate(8)
	if first == iface.Null || second == iface.Null {
		t.Fatal("unexpected OOM")
	}

	if int64(second)-int64(first) != BadSize {
		t.Fatalf("expected successive blocks to be BadSize apart, got %d", int64(second)-int64(first))
	}
}

func TestFreeDoesNotReclaim(t *testing.T) {
	a := New(1 << 20)

	sizeBefore := a.heap.Size()
	p := a.Allocate(8)
	a.Free(p)

	q := a.Allocate(8)
	if q == p {
		t.Fatal("bad allocator should never reuse a freed block")
	}
	if a.heap.Size() != sizeBefore+2*BadSize {
		t.Fatalf("expected two BadSize claims, heap grew by %d", a.heap.Size()-sizeBefore)
	}
}

func TestReallocateDoesNotCopy(t *testing.T) {
	a := New(1 << 20)

	p := a.Allocate(8)
	copy(a.Payload(p, 8), []byte("deadbeef"))

	q := a.Reallocate(p, 8)
	if q == iface.Null {
		t.Fatal("unexpected OOM")
	}

	got := a.Payload(q, 8)
	if string(got) == "deadbeef" {
		t.Fatal("bad allocator's realloc must not have copied the old contents")
	}
}
