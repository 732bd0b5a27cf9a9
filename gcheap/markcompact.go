package gcheap

import (
	"go.uber.org/zap"

	"github.com/voskan/mjsvm/internal/memregion"
	"github.com/voskan/mjsvm/object"
	"github.com/voskan/mjsvm/value"
)

// MarkCompact runs a full (major) collection over old space: mark every old
// object reachable from roots (including reachable young survivors, which
// may themselves keep old objects alive), then compact by dropping every
// unreached old object and rebuilding the accounting region. As with Scavenge, "compact" here means relisting
// survivors, not relocating live Go memory — see heap.go's package doc.
func (h *Heap) MarkCompact() {
	before := h.old.Used()

	marked := make(map[*object.Object]bool, len(h.oldObjects)+len(h.youngObjects))
	var walk func(obj *object.Object)
	walk = func(obj *object.Object) {
		if obj == nil || marked[obj] {
			return
		}
		marked[obj] = true
		if obj.Proto != nil {
			walk(obj.Proto)
		}
		obj.GCTraverse(func(slot *value.Value) {
			walk(objectReachedThrough(*slot))
		})
	}

	h.roots.iterate(func(slot *value.Value) {
		walk(objectReachedThrough(*slot))
	})
	for _, obj := range h.youngObjects {
		walk(obj)
	}

	survivors := h.oldObjects[:0]
	var survivorBytes uintptr
	for _, obj := range h.oldObjects {
		if !marked[obj] {
			h.finalizeOnce(obj)
			continue
		}
		obj.Header = obj.Header.WithMarked(false) // reset for next cycle
		survivorBytes += uintptr(obj.Header.Size())
		survivors = append(survivors, obj)
	}
	h.oldObjects = survivors

	compacted := memregion.New(h.old.Capacity())
	compacted.Alloc(survivorBytes, 1)
	h.old = compacted

	h.stats.MajorGCCount++
	h.metrics.IncGCCycle("major")
	h.metrics.SetHeapBytes("old", int64(h.old.Used()))
	h.logger.Info("gcheap: mark-compact complete",
		zap.Uint64("before_bytes", uint64(before)),
		zap.Uint64("after_bytes", uint64(h.old.Used())),
		zap.Int("survivors", len(h.oldObjects)),
	)
}
