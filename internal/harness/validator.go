// Grounded on validator.h's range_t/add_range/remove_range: a linked list of
// live payload extents used to catch overlapping allocations, turned into a
// Go map keyed by the trace id so removal doesn't need a linear scan.
package harness

import (
	"fmt"

	"github.com/fenwicklabs/heaplab/internal/iface"
)

type extent struct {
	lo, hi int64 // inclusive payload bounds
}

// rangeList tracks every currently live payload extent, keyed by the
// trace's own block id, so it can check alignment, containment and overlap
// on every allocate/realloc and catch a misbehaving allocator as soon as it
// happens rather than only at the end of a run.
type rangeList struct {
	byID map[int]extent
}

func newRangeList() *rangeList {
	return &rangeList{byID: make(map[int]extent)}
}

// add validates the extent [lo, lo+size) against alignment, heap
// containment, and overlap with every other live extent, then records it.
func (rl *rangeList) add(alignment int64, heapLow, heapHigh iface.Ptr, id int, lo iface.Ptr, size int) error {
	if size <= 0 {
		return fmt.Errorf("harness: id %d: non-positive size %d", id, size)
	}

	hi := int64(lo) + int64(size) - 1

	if int64(lo)%alignment != 0 {
		return fmt.Errorf("harness: id %d: payload %d is not %d-byte aligned", id, lo, alignment)
	}

	if heapLow != iface.Null && (int64(lo) < int64(heapLow) || hi > int64(heapHigh)) {
		return fmt.Errorf("harness: id %d: payload [%d, %d] outside heap bounds [%d, %d]", id, lo, hi, heapLow, heapHigh)
	}

	for other, e := range rl.byID {
		if other == id {
			continue
		}
		if e.hi >= int64(lo) && e.lo <= hi {
			return fmt.Errorf("harness: id %d overlaps live id %d: [%d,%d] vs [%d,%d]", id, other, lo, hi, e.lo, e.hi)
		}
	}

	rl.byID[id] = extent{lo: int64(lo), hi: hi}

	return nil
}

// remove drops id's extent. A no-op if id was never added (e.g. a free of a
// block that was never successfully allocated).
func (rl *rangeList) remove(id int) {
	delete(rl.byID, id)
}

// clear drops every tracked extent, mirroring clear_ranges at the end of a
// validation pass.
func (rl *rangeList) clear() {
	rl.byID = make(map[int]extent)
}
