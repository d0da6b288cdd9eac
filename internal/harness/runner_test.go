package harness

import (
	"context"
	"strings"
	"testing"

	"github.com/fenwicklabs/heaplab/internal/badalloc"
	"github.com/fenwicklabs/heaplab/internal/blockalloc"
	"github.com/fenwicklabs/heaplab/internal/harness/ifacemock"
	"github.com/fenwicklabs/heaplab/internal/iface"
	"github.com/fenwicklabs/heaplab/internal/refalloc"
	"go.uber.org/mock/gomock"
)

func TestRunAgainstEngineSucceeds(t *testing.T) {
	tr, err := Parse(strings.NewReader(`64 2 4 1
a 0 32
a 1 16
w 0 32
f 1
`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	res := Run(context.Background(), "sample", blockalloc.New(), tr, 8)
	if !res.Valid {
		t.Fatalf("expected a valid run, got error: %v", res.Error)
	}
	if res.Utilization <= 0 {
		t.Fatalf("expected positive utilization, got %f", res.Utilization)
	}
}

func TestRunAgainstRefallocSucceeds(t *testing.T) {
	tr, err := Parse(strings.NewReader(`64 2 3 1
a 0 32
r 0 64
f 0
`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	res := Run(context.Background(), "sample", refalloc.New(), tr, 1)
	if !res.Valid {
		t.Fatalf("expected a valid run, got error: %v", res.Error)
	}
}

func TestRunDetectsBadAllocatorContainmentViolation(t *testing.T) {
	tr, err := Parse(strings.NewReader(`64 1 1 1
a 0 5000
`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	res := Run(context.Background(), "oversize", badalloc.New(1<<20), tr, 1)
	if res.Valid {
		t.Fatal("expected the bad allocator to fail a request larger than its fixed block size")
	}
}

func TestRunReportsAllocateFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := ifacemock.NewMockAllocator(ctrl)

	m.EXPECT().Reset()
	m.EXPECT().Init().Return(nil)
	m.EXPECT().Allocate(uintptr(16)).Return(iface.Null)

	tr, err := Parse(strings.NewReader("16 1 1 1\na 0 16\n"))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	res := Run(context.Background(), "mocked", m, tr, 8)
	if res.Valid {
		t.Fatal("expected the run to fail when Allocate returns Null")
	}
}

func TestRunAllCoversEveryImplTracePair(t *testing.T) {
	tr, err := Parse(strings.NewReader("64 1 2 1\na 0 16\nf 0\n"))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	traces := map[string]*Trace{"t1": tr}
	impls := map[string]func() iface.Allocator{
		"blockalloc": func() iface.Allocator { return blockalloc.New() },
		"refalloc":   func() iface.Allocator { return refalloc.New() },
	}

	results, err := RunAll(context.Background(), impls, traces, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, key := range []string{"blockalloc/t1", "refalloc/t1"} {
		res, ok := results[key]
		if !ok {
			t.Fatalf("missing result for %s", key)
		}
		if !res.Valid {
			t.Fatalf("%s: expected a valid run, got error: %v", key, res.Error)
		}
	}
}
