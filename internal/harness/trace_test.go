package harness

import (
	"strings"
	"testing"
)

const sampleTrace = `100 3 5 1
a 0 16
a 1 32
w 0 16
f 0
r 1 64
`

func TestParseReadsHeaderAndOps(t *testing.T) {
	tr, err := Parse(strings.NewReader(sampleTrace))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tr.SuggestedHeapSize != 100 || tr.NumIDs != 3 || tr.NumOps != 5 || tr.Weight != 1 {
		t.Fatalf("unexpected header: %+v", tr)
	}

	want := []Op{
		{Type: OpAlloc, Index: 0, Size: 16},
		{Type: OpAlloc, Index: 1, Size: 32},
		{Type: OpWrite, Index: 0, Size: 16},
		{Type: OpFree, Index: 0},
		{Type: OpRealloc, Index: 1, Size: 64},
	}

	if len(tr.Ops) != len(want) {
		t.Fatalf("expected %d ops, got %d", len(want), len(tr.Ops))
	}
	for i, op := range tr.Ops {
		if op != want[i] {
			t.Fatalf("op %d: got %+v, want %+v", i, op, want[i])
		}
	}
}

func TestParseRejectsOpCountMismatch(t *testing.T) {
	bad := "100 2 99 1\na 0 16\nf 0\n"
	if _, err := Parse(strings.NewReader(bad)); err == nil {
		t.Fatal("expected an error for a header/op-count mismatch")
	}
}

func TestParseRejectsBogusOpType(t *testing.T) {
	bad := "100 1 1 1\nx 0 16\n"
	if _, err := Parse(strings.NewReader(bad)); err == nil {
		t.Fatal("expected an error for a bogus op type")
	}
}
