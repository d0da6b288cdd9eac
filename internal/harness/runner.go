// Grounded on mymalloc/mdriver.c's eval_mm_valid (correctness: fills each
// block with a byte derived from its id, verifies it survives realloc),
// eval_mm_util (space utilization: peak total payload bytes over peak heap
// size), and fsecs.c/eval_mm_speed (wall-clock throughput). The three are
// fused into one pass here since Go's allocator under test and the harness
// share a process anyway; there is no "student binary vs. driver binary"
// boundary to preserve.
package harness

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fenwicklabs/heaplab/internal/iface"
	"golang.org/x/sync/errgroup"
)

// Result summarizes one trace replayed against one allocator.
type Result struct {
	Trace       string
	Ops         int
	Valid       bool
	Error       error
	Utilization float64 // peak live payload bytes / peak heap size
	Elapsed     time.Duration
	OpsPerSec   float64
}

// Run replays every op in tr against impl, validating alignment,
// containment and overlap on every allocate/realloc, and verifying that
// realloc preserves the overlapping prefix of a block's previous contents.
// It also tracks space utilization and wall-clock throughput.
//
// alignment is the allocator's alignment contract (8 for blockalloc.Engine);
// pass 1 for an allocator with no alignment guarantee of its own.
func Run(ctx context.Context, name string, impl iface.Allocator, tr *Trace, alignment int64) Result {
	res := Result{Trace: name, Ops: len(tr.Ops)}

	impl.Reset()
	if err := impl.Init(); err != nil {
		res.Error = fmt.Errorf("init: %w", err)
		return res
	}

	sizes := make([]int, tr.NumIDs)
	ptrs := make([]iface.Ptr, tr.NumIDs)
	rl := newRangeList()

	var totalSize, maxTotalSize int64

	start := time.Now()

	for i, op := range tr.Ops {
		select {
		case <-ctx.Done():
			res.Error = ctx.Err()
			return res
		default:
		}

		switch op.Type {
		case OpAlloc:
			p := impl.Allocate(uintptr(op.Size))
			if p == iface.Null {
				res.Error = fmt.Errorf("op %d: allocate(%d) failed", i, op.Size)
				return res
			}
			if err := rl.add(alignment, impl.HeapLow(), impl.HeapHigh(), op.Index, p, op.Size); err != nil {
				res.Error = fmt.Errorf("op %d: %w", i, err)
				return res
			}

			stampPattern(impl, p, op.Index, op.Size)

			ptrs[op.Index] = p
			sizes[op.Index] = op.Size
			totalSize += int64(op.Size)

		case OpRealloc:
			oldSize := sizes[op.Index]
			oldPtr := ptrs[op.Index]

			overlap := oldSize
			if op.Size < overlap {
				overlap = op.Size
			}
			var want []byte
			if overlap > 0 {
				want = append([]byte(nil), impl.Payload(oldPtr, uintptr(overlap))...)
			}

			p := impl.Reallocate(oldPtr, uintptr(op.Size))
			if p == iface.Null && op.Size != 0 {
				res.Error = fmt.Errorf("op %d: reallocate(%d) failed", i, op.Size)
				return res
			}

			rl.remove(op.Index)
			if op.Size != 0 {
				if err := rl.add(alignment, impl.HeapLow(), impl.HeapHigh(), op.Index, p, op.Size); err != nil {
					res.Error = fmt.Errorf("op %d: %w", i, err)
					return res
				}
				if overlap > 0 {
					got := impl.Payload(p, uintptr(overlap))
					if !bytesEqual(got, want) {
						res.Error = fmt.Errorf("op %d: realloc did not preserve the first %d bytes", i, overlap)
						return res
					}
				}
				stampPattern(impl, p, op.Index, op.Size)
			}

			totalSize += int64(op.Size - oldSize)
			ptrs[op.Index] = p
			sizes[op.Index] = op.Size

		case OpFree:
			rl.remove(op.Index)
			impl.Free(ptrs[op.Index])
			totalSize -= int64(sizes[op.Index])
			sizes[op.Index] = 0
			ptrs[op.Index] = iface.Null

		case OpWrite:
			if sizes[op.Index] > 0 {
				n := op.Size
				if n > sizes[op.Index] {
					n = sizes[op.Index]
				}
				stampPattern(impl, ptrs[op.Index], op.Index, n)
			}
		}

		if totalSize > maxTotalSize {
			maxTotalSize = totalSize
		}

		if err := impl.Check(); err != nil {
			res.Error = fmt.Errorf("op %d: %w", i, err)
			return res
		}
	}

	res.Elapsed = time.Since(start)
	if res.Elapsed > 0 {
		res.OpsPerSec = float64(len(tr.Ops)) / res.Elapsed.Seconds()
	}

	if heapSize := heapFootprint(impl); heapSize > 0 {
		res.Utilization = float64(maxTotalSize) / float64(heapSize)
	}

	rl.clear()
	res.Valid = true

	return res
}

func stampPattern(impl iface.Allocator, p iface.Ptr, id, size int) {
	if size <= 0 {
		return
	}
	buf := impl.Payload(p, uintptr(size))
	b := byte(id)
	for i := range buf {
		buf[i] = b
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func heapFootprint(impl iface.Allocator) int64 {
	lo, hi := impl.HeapLow(), impl.HeapHigh()
	if lo == iface.Null || hi < lo {
		return 0
	}
	return int64(hi) - int64(lo) + 1
}

// RunAll replays every (implementation, trace) pair concurrently. newImpl
// builds a fresh allocator instance per run rather than sharing one: no
// allocator implementation in this module is safe for concurrent use, so
// each goroutine gets its own.
func RunAll(ctx context.Context, newImpl map[string]func() iface.Allocator, traces map[string]*Trace, alignment int64) (map[string]Result, error) {
	results := make(map[string]Result, len(newImpl)*len(traces))

	g, ctx := errgroup.WithContext(ctx)
	var mu sync.Mutex

	for implName, factory := range newImpl {
		for traceName, tr := range traces {
			implName, factory, traceName, tr := implName, factory, traceName, tr
			g.Go(func() error {
				res := Run(ctx, traceName, factory(), tr, alignment)

				mu.Lock()
				results[implName+"/"+traceName] = res
				mu.Unlock()

				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
