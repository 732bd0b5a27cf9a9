package gcheap

import (
	"go.uber.org/zap"

	"github.com/voskan/mjsvm/object"
	"github.com/voskan/mjsvm/value"
)

// Scavenge runs one minor collection: copying (logically — see heap.go's
// package doc) every young object reachable from the current roots plus the
// remembered set, aging survivors and promoting those that have reached
// TenureAgeThreshold, and running the finalizer of everything else exactly
// once.
func (h *Heap) Scavenge() {
	before := h.young.From().Used()

	reachable := make(map[*object.Object]bool, len(h.youngObjects))
	var walk func(obj *object.Object)
	walk = func(obj *object.Object) {
		if obj == nil || reachable[obj] {
			return
		}
		reachable[obj] = true
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
	h.remembered.iterate(func(obj *object.Object) {
		obj.GCTraverse(func(slot *value.Value) {
			walk(objectReachedThrough(*slot))
		})
	})

	h.young.ResetTo()
	survivors := h.youngObjects[:0]
	var survivorBytes uintptr
	for _, obj := range h.youngObjects {
		if !reachable[obj] {
			h.finalizeOnce(obj)
			continue
		}
		obj.Header = obj.Header.IncAge()
		survivorBytes += uintptr(obj.Header.Size())
		if obj.Header.Age() >= TenureAgeThreshold {
			obj.Header = obj.Header.WithGeneration(object.GenerationOld)
			h.installOldBarrier(obj)
			h.oldObjects = append(h.oldObjects, obj)
			h.bumpOld(obj.Header.Size())
			continue
		}
		survivors = append(survivors, obj)
	}
	h.youngObjects = survivors
	h.young.To().Alloc(survivorBytes, 1)
	h.young.Flip()

	h.stats.MinorGCCount++
	h.metrics.IncGCCycle("minor")
	h.metrics.SetHeapBytes("young", int64(h.young.From().Used()))
	h.logger.Info("gcheap: scavenge complete",
		zap.Uint64("before_bytes", uint64(before)),
		zap.Uint64("after_bytes", uint64(h.young.From().Used())),
		zap.Int("survivors", len(h.youngObjects)),
		zap.Int("old_total", len(h.oldObjects)),
	)
}

func (h *Heap) finalizeOnce(obj *object.Object) {
	if obj.Header.Destructed() {
		return
	}
	obj.Header = obj.Header.WithDestructed(true)
	if obj.Finalizer != nil {
		obj.Finalizer()
	}
}
