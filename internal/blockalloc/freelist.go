package blockalloc

// freeTable is the segregated free-list table: one doubly linked list head
// per size class, plus a monotonic upper bound on occupied classes so the
// upward scan in Allocate doesn't have to walk every class every time.
//
// Grounded on mymalloc/allocator.c's free_lists[]/free_list_max globals,
// turned into a value embedded in Engine instead of package-level state so
// multiple engines can run side by side without sharing free lists.
type freeTable struct {
	heads    []int64
	maxClass int
}

func newFreeTable(classCount int) freeTable {
	heads := make([]int64, classCount)
	for i := range heads {
		heads[i] = nullOff
	}

	return freeTable{heads: heads}
}

func (t *freeTable) reset() {
	for i := range t.heads {
		t.heads[i] = nullOff
	}

	t.maxClass = 0
}

// insert prepends the block at b (payload-sized, already stamped free) to
// its size class's list and updates maxClass. Does not itself set the header
// free bit; the caller stamps that before inserting.
func (t *freeTable) insert(buf []byte, b, payload int64) {
	c := sizeClass(payload, len(t.heads))
	head := t.heads[c]

	writePrevFree(buf, b, nullOff)
	writeNextFree(buf, b, head)

	if head != nullOff {
		writePrevFree(buf, head, b)
	}

	t.heads[c] = b
	if c > t.maxClass {
		t.maxClass = c
	}
}

// remove unlinks the block at b (payload-sized) from its size class's list.
// maxClass is deliberately never decremented here: it is a monotonic upper
// bound, and the upward scan simply skips classes that turn out empty.
func (t *freeTable) remove(buf []byte, b, payload int64) {
	prev := readPrevFree(buf, b)
	next := readNextFree(buf, b)

	if prev == nullOff {
		c := sizeClass(payload, len(t.heads))
		t.heads[c] = next
	} else {
		writeNextFree(buf, prev, next)
	}

	if next != nullOff {
		writePrevFree(buf, next, prev)
	}
}
