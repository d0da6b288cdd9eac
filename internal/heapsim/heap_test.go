package heapsim

import (
	"sync"
	"testing"
)

func TestNewHeapStartsEmpty(t *testing.T) {
	h := New(1024)
	if h.Size() != 0 {
		t.Fatalf("expected size 0, got %d", h.Size())
	}
	if h.Low() <= h.High() {
		t.Fatalf("expected Low() > High() for an empty heap, got low=%d high=%d", h.Low(), h.High())
	}
}

func TestGrowAdvancesBreakAndReturnsOldBreak(t *testing.T) {
	h := New(1024)

	start, err := h.Grow(64)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start != 0 {
		t.Fatalf("expected first Grow to start at 0, got %d", start)
	}
	if h.Size() != 64 {
		t.Fatalf("expected size 64, got %d", h.Size())
	}

	start2, err := h.Grow(32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start2 != 64 {
		t.Fatalf("expected second Grow to start at 64, got %d", start2)
	}
}

func TestGrowPastCapReturnsOutOfMemory(t *testing.T) {
	h := New(128)

	if _, err := h.Grow(200); err != ErrOutOfMemory {
		t.Fatalf("expected ErrOutOfMemory, got %v", err)
	}
	if h.Size() != 0 {
		t.Fatalf("expected a failed Grow to leave size unchanged, got %d", h.Size())
	}

	// a subsequent, fitting Grow must still succeed.
	if _, err := h.Grow(64); err != nil {
		t.Fatalf("unexpected error after a failed grow: %v", err)
	}
}

func TestResetShrinksBackToEmpty(t *testing.T) {
	h := New(1024)
	h.Grow(512)

	h.Reset()
	if h.Size() != 0 {
		t.Fatalf("expected size 0 after reset, got %d", h.Size())
	}
	if h.Cap() != 1024 {
		t.Fatalf("reset should not change capacity, got %d", h.Cap())
	}
}

func TestPeakSizeTracksHighWaterMark(t *testing.T) {
	h := New(1024)
	h.Grow(200)
	h.Grow(100)
	if h.PeakSize() != 300 {
		t.Fatalf("expected peak 300, got %d", h.PeakSize())
	}

	h.Reset()
	if h.PeakSize() != 0 {
		t.Fatalf("expected peak to reset to 0, got %d", h.PeakSize())
	}
}

func TestConcurrentGrowsNeverOverlap(t *testing.T) {
	h := New(1 << 20)

	const n = 200
	const chunk = 16

	var wg sync.WaitGroup
	starts := make([]int64, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			start, err := h.Grow(chunk)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			starts[i] = start
		}(i)
	}
	wg.Wait()

	seen := make(map[int64]bool, n)
	for _, s := range starts {
		if seen[s] {
			t.Fatalf("two concurrent grows claimed the same start offset %d", s)
		}
		seen[s] = true
	}
	if h.Size() != n*chunk {
		t.Fatalf("expected final size %d, got %d", n*chunk, h.Size())
	}
}

func TestBytesReflectsLiveRegionOnly(t *testing.T) {
	h := New(1024)
	h.Grow(10)

	if len(h.Bytes()) != 10 {
		t.Fatalf("expected Bytes() length 10, got %d", len(h.Bytes()))
	}
	if len(h.Raw()) != 1024 {
		t.Fatalf("expected Raw() length 1024, got %d", len(h.Raw()))
	}
}
