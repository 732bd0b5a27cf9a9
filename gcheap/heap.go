// Package gcheap implements the generational, object-tracking garbage
// collector backing the VM's heap.
//
// Go already owns real memory management for every *object.Object this
// package tracks; nothing here may physically relocate a live Go value the
// way a native engine's Scavenge/MarkCompact moves raw bytes, since Go gives
// user code no sound primitive for that. Heap instead layers a generational
// lifecycle — age tracking, promotion, destructor-runs-once, remembered-set
// write barriers — on top of Go's allocator: "moving" an object between
// generations means relabeling its Header and relisting it, not copying
// bytes. internal/semispace and internal/memregion still do real bump-offset
// accounting, so that size budgets, the occupancy collection trigger and the
// large-object threshold behave the way a native generational heap's would.
package gcheap

import (
	"go.uber.org/zap"

	"github.com/voskan/mjsvm/internal/memregion"
	"github.com/voskan/mjsvm/internal/metrics"
	"github.com/voskan/mjsvm/internal/semispace"
	"github.com/voskan/mjsvm/object"
	"github.com/voskan/mjsvm/value"
)

// TenureAgeThreshold is the survivor age at which Scavenge promotes an
// object to old space.
const TenureAgeThreshold uint8 = 3

// LargeObjectRatio is the fraction of a semispace's size above which a fresh
// allocation is placed directly into old space instead of young.
const LargeObjectRatio = 0.25

// DefaultGCThresholdPercent is the young-space occupancy percentage at
// which Allocate triggers a Scavenge before giving up and growing anything.
const DefaultGCThresholdPercent = 80

// Option configures a Heap at construction time, following the functional
// options idiom used throughout mjsvm.
type Option func(*Heap)

// WithLogger attaches a zap logger; every collection cycle logs one Info
// line with before/after occupancy, matching the ambient logging style used
// throughout mjsvm.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Heap) { h.logger = logger }
}

// WithMetrics attaches a metrics sink; defaults to the no-op sink.
func WithMetrics(sink metrics.Sink) Option {
	return func(h *Heap) { h.metrics = sink }
}

// WithGCThreshold overrides the young-space occupancy percentage (0-100)
// that triggers a Scavenge.
func WithGCThreshold(percent int) Option {
	return func(h *Heap) { h.gcThresholdPercent = percent }
}

// WithOldSpaceInitialSize overrides the old space's starting capacity.
func WithOldSpaceInitialSize(bytes int) Option {
	return func(h *Heap) { h.oldInitialBytes = bytes }
}

// Heap owns one Context's generational object graph.
type Heap struct {
	young *semispace.Pair
	old *memregion.Region

	youngObjects []*object.Object
	oldObjects []*object.Object

	remembered *RememberedSet
	roots *RootRegistry

	gcThresholdPercent int
	oldInitialBytes int

	logger *zap.Logger
	metrics metrics.Sink

	stats Stats
}

// NewHeap constructs a Heap with semiSize bytes per young semispace.
func NewHeap(semiSize int, opts ...Option) *Heap {
	h := &Heap{
		young: semispace.New(semiSize),
		remembered: newRememberedSet(),
		roots: newRootRegistry(),
		gcThresholdPercent: DefaultGCThresholdPercent,
		oldInitialBytes: semiSize * 2,
		logger: zap.NewNop(),
		metrics: metrics.Noop,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.old = memregion.New(h.oldInitialBytes)
	return h
}

// AddRootSource registers a RootSource consulted on every collection (the
// operand stack, the job queue, a handle scope chain).
func (h *Heap) AddRootSource(s RootSource) { h.roots.AddSource(s) }

// AddRoot pins an individual embedder global Value as always-live.
func (h *Heap) AddRoot(v *value.Value) { h.roots.AddRoot(v) }

// RemoveRoot unpins a previously pinned global Value.
func (h *Heap) RemoveRoot(v *value.Value) { h.roots.RemoveRoot(v) }

// isLarge reports whether size exceeds LargeObjectRatio of the young
// semispace, meaning the allocation should go directly to old space.
func (h *Heap) isLarge(size uint32) bool {
	return float64(size) > LargeObjectRatio*float64(h.young.SemiSize())
}

// Allocate registers obj (already constructed by the caller) as size bytes
// of heap memory, choosing young or old space per the large-object
// rule, triggering a Scavenge first if young space is past its occupancy
// threshold.
func (h *Heap) Allocate(obj *object.Object, size uint32) {
	if h.isLarge(size) {
		obj.Header = object.NewHeader(obj.Header.Type(), size).WithGeneration(object.GenerationOld)
		h.installOldBarrier(obj)
		h.oldObjects = append(h.oldObjects, obj)
		h.bumpOld(size)
		return
	}

	if h.young.Occupancy()*100 >= float64(h.gcThresholdPercent) {
		h.Scavenge()
	}

	if h.young.From().Alloc(uintptr(size), 8) == nil {
		// Still full immediately after a collection: another cycle won't
		// help, so widen the semispace pair outright.
		h.young = semispace.New(h.young.SemiSize() * 2)
		h.young.From().Alloc(uintptr(size), 8)
	}
	obj.Header = object.NewHeader(obj.Header.Type(), size).WithGeneration(object.GenerationYoung)
	h.youngObjects = append(h.youngObjects, obj)
	h.metrics.SetHeapBytes("young", int64(h.young.From().Used()))
}

func (h *Heap) bumpOld(size uint32) {
	if h.old.Remaining() < uintptr(size) {
		h.old = h.old.Grow(h.old.Capacity() * 2)
	}
	h.old.Alloc(uintptr(size), 8)
	h.metrics.SetHeapBytes("old", int64(h.old.Used()))
}

func (h *Heap) installOldBarrier(obj *object.Object) {
	obj.WriteBarrier = func() { h.remembered.Record(obj) }
}

// Stats summarizes a Heap's current occupancy and collection counters.
type Stats struct {
	YoungBytesUsed uintptr
	YoungCapacity int
	OldBytesUsed uintptr
	OldCapacity int
	MinorGCCount uint64
	MajorGCCount uint64
	LiveYoungCount int
	LiveOldCount int
	RememberedCount int
}

// Stats returns a snapshot of the heap's current occupancy and GC counters.
func (h *Heap) Stats() Stats {
	return Stats{
		YoungBytesUsed: h.young.From().Used(),
		YoungCapacity: h.young.SemiSize(),
		OldBytesUsed: h.old.Used(),
		OldCapacity: h.old.Capacity(),
		MinorGCCount: h.stats.MinorGCCount,
		MajorGCCount: h.stats.MajorGCCount,
		LiveYoungCount: len(h.youngObjects),
		LiveOldCount: len(h.oldObjects),
		RememberedCount: h.remembered.Len(),
	}
}

// ForceFullGC runs a Scavenge followed immediately by a MarkCompact,
// regardless of current occupancy; surfaced for diagnostics and tests.
func (h *Heap) ForceFullGC() {
	h.Scavenge()
	h.MarkCompact()
}
