package blockalloc

import (
	"encoding/binary"
	"math/bits"
)

// Block layout, grounded on mymalloc/allocator.c's header_t/footer_t:
//
//	offset 0  .. 7   header  : payload size (high bits) | free bit (LSB)
//	offset 8  .. N+7 payload : N bytes, N a multiple of alignment
//	  (when free: bytes 8..15 hold prev_free, 16..23 hold next_free,
//	   both as 8-byte little-endian block-start offsets into the heap)
//	offset N+8..N+15 footer  : payload size (no flag)
//
// headerSize/footerSize/linkSize are fixed at 8 bytes regardless of
// Config.Alignment: they are word-size choices, not alignment choices.
// Config.Alignment governs payload rounding, not header/footer width.
const (
	headerSize = 8
	footerSize = 8
	linkSize   = 8
	freeBit    = uint64(1)
)

// nullOff is the sentinel "no block" offset used internally (free-list heads
// and link fields); iface.Null is the equivalent sentinel for payload
// pointers returned across the public API.
const nullOff = int64(-1)

// alignUp rounds n up to the nearest multiple of a.
func alignUp(n, a int64) int64 {
	return (n + a - 1) &^ (a - 1)
}

// minPayload is the smallest payload size that can still hold the two
// free-list link fields once a block becomes free.
func minPayload(cfg Config) int64 {
	return alignUp(2*linkSize, cfg.Alignment)
}

// blockStride returns the total bytes a block of the given payload size
// occupies on the heap: header + payload + footer.
func blockStride(payload int64) int64 {
	return headerSize + payload + footerSize
}

// sizeClass returns floor(log2(payload)), the segregated free-list index for
// a block of this payload size, clamped to classCount-1 so a single
// unusually large block (25 classes only size payloads up to ~16 MiB
// exactly) still has a class to live in rather than indexing out of range;
// that top class is then a catch-all for "class floor and up". Panics on
// payload <= 0: every live block has a positive payload by construction.
func sizeClass(payload int64, classCount int) int {
	if payload <= 0 {
		panic("blockalloc: sizeClass of non-positive payload")
	}

	c := bits.Len64(uint64(payload)) - 1
	if c >= classCount {
		c = classCount - 1
	}

	return c
}

func readWord(buf []byte, off int64) uint64 {
	i := int(off)
	return binary.LittleEndian.Uint64(buf[i : i+8])
}

func writeWord(buf []byte, off int64, v uint64) {
	i := int(off)
	binary.LittleEndian.PutUint64(buf[i:i+8], v)
}

// readHeader returns the payload size and free flag stored in the header at
// block start b.
func readHeader(buf []byte, b int64) (payload int64, free bool) {
	w := readWord(buf, b)
	return int64(w &^ freeBit), w&freeBit != 0
}

// writeHeader stamps the header at block start b.
func writeHeader(buf []byte, b, payload int64, free bool) {
	w := uint64(payload)
	if free {
		w |= freeBit
	}

	writeWord(buf, b, w)
}

// readPayload is readHeader without the free flag, for call sites that only
// need the size (e.g. walking a free list whose members are all free by
// construction).
func readPayload(buf []byte, b int64) int64 {
	payload, _ := readHeader(buf, b)
	return payload
}

// footerOffset returns the offset of a block's footer, given its start and
// payload size.
func footerOffset(b, payload int64) int64 {
	return b + headerSize + payload
}

func readFooter(buf []byte, b, payload int64) int64 {
	return int64(readWord(buf, footerOffset(b, payload)))
}

func writeFooter(buf []byte, b, payload int64) {
	writeWord(buf, footerOffset(b, payload), uint64(payload))
}

// payloadOffset returns the offset of the payload area (and thus, for a free
// block, the prev_free link) of the block starting at b.
func payloadOffset(b int64) int64 {
	return b + headerSize
}

func readPrevFree(buf []byte, b int64) int64 {
	return int64(readWord(buf, payloadOffset(b)))
}

func writePrevFree(buf []byte, b, v int64) {
	writeWord(buf, payloadOffset(b), uint64(v))
}

func readNextFree(buf []byte, b int64) int64 {
	return int64(readWord(buf, payloadOffset(b)+linkSize))
}

func writeNextFree(buf []byte, b, v int64) {
	writeWord(buf, payloadOffset(b)+linkSize, uint64(v))
}
