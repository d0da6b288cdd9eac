package blockalloc

import "github.com/fenwicklabs/heaplab/internal/heapsim"

// Config tunes the allocator's policy knobs, in the same functional-options
// shape as the rest of this module's Config/Option pairs.
type Config struct {
	// Alignment is the byte alignment required of every header, payload and
	// footer address. Changing it away from 8 is unsupported: the on-heap
	// word layout (layout.go) assumes 8-byte header/footer/link fields.
	Alignment int64

	// ClassCount is the number of segregated free lists, indexed by
	// floor(log2(payload)).
	ClassCount int

	// SplitThreshold is the extra payload required above MinPayload to
	// justify splitting a free block rather than using it whole.
	SplitThreshold int64

	// BestOfK is the number of extra free-list entries examined after the
	// first fit, looking for a tighter one.
	BestOfK int

	// HeapCap is the maximum size in bytes the backing heap may grow to.
	HeapCap int64
}

// Option configures an Engine at construction time.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Alignment:      8,
		ClassCount:     25,
		SplitThreshold: 112,
		BestOfK:        4,
		HeapCap:        heapsim.DefaultMaxHeap,
	}
}

// WithAlignment overrides the alignment unit. See Config.Alignment's caveat.
func WithAlignment(a int64) Option {
	return func(c *Config) { c.Alignment = a }
}

// WithClassCount overrides the number of segregated free-list classes.
func WithClassCount(n int) Option {
	return func(c *Config) { c.ClassCount = n }
}

// WithSplitThreshold overrides the split-worthiness threshold.
func WithSplitThreshold(n int64) Option {
	return func(c *Config) { c.SplitThreshold = n }
}

// WithBestOfK overrides the best-of-K refinement walk length.
func WithBestOfK(k int) Option {
	return func(c *Config) { c.BestOfK = k }
}

// WithHeapCap overrides the maximum heap size.
func WithHeapCap(n int64) Option {
	return func(c *Config) { c.HeapCap = n }
}
