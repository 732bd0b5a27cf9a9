package gcheap

import (
	"testing"
	"unsafe"

	"github.com/voskan/mjsvm/object"
	"github.com/voskan/mjsvm/shape"
	"github.com/voskan/mjsvm/value"
)

func newRootObject(t *testing.T, h *Heap) (*object.Object, *value.Value) {
	t.Helper()
	m := shape.NewManager()
	obj := object.New(object.ClassPlainObject, nil, m.EmptyShape)
	h.Allocate(obj, 64)
	root := value.ObjectPtr(unsafe.Pointer(obj))
	h.AddRoot(&root)
	return obj, &root
}

func TestScavengePromotesAfterThreeCollections(t *testing.T) {
	h := NewHeap(1 << 16)
	obj, _ := newRootObject(t, h)

	for i := 0; i < int(TenureAgeThreshold); i++ {
		h.Scavenge()
	}

	if obj.Header.Generation() != object.GenerationOld {
		t.Fatalf("object should be promoted to old space after %d scavenges, generation=%v",
			TenureAgeThreshold, obj.Header.Generation())
	}
}

func TestScavengeCollectsUnreachableObject(t *testing.T) {
	h := NewHeap(1 << 16)
	m := shape.NewManager()
	obj := object.New(object.ClassPlainObject, nil, m.EmptyShape)
	h.Allocate(obj, 32)

	destroyed := false
	obj.Finalizer = func() { destroyed = true }

	h.Scavenge()

	if !destroyed {
		t.Fatal("unreachable object's finalizer should run during Scavenge")
	}
	if got := h.Stats().LiveYoungCount; got != 0 {
		t.Fatalf("LiveYoungCount = %d, want 0 after collecting the only object", got)
	}
}

func TestFinalizerRunsAtMostOnce(t *testing.T) {
	h := NewHeap(1 << 16)
	m := shape.NewManager()
	obj := object.New(object.ClassPlainObject, nil, m.EmptyShape)
	h.Allocate(obj, 32)

	runs := 0
	obj.Finalizer = func() { runs++ }

	h.finalizeOnce(obj)
	h.finalizeOnce(obj)

	if runs != 1 {
		t.Fatalf("finalizer ran %d times, want 1", runs)
	}
}

func TestLargeObjectGoesDirectlyToOldSpace(t *testing.T) {
	h := NewHeap(1000)
	m := shape.NewManager()
	obj := object.New(object.ClassPlainObject, nil, m.EmptyShape)
	h.Allocate(obj, 400) // > 0.25 * 1000

	if obj.Header.Generation() != object.GenerationOld {
		t.Fatal("an allocation above LargeObjectRatio of the semispace should start in old space")
	}
	if h.Stats().LiveOldCount != 1 {
		t.Fatalf("LiveOldCount = %d, want 1", h.Stats().LiveOldCount)
	}
}

func TestForceFullGCRunsBothCycles(t *testing.T) {
	h := NewHeap(1 << 16)
	newRootObject(t, h)

	h.ForceFullGC()

	stats := h.Stats()
	if stats.MinorGCCount == 0 || stats.MajorGCCount == 0 {
		t.Fatalf("ForceFullGC should bump both counters, got %+v", stats)
	}
}

func TestRememberedSetKeepsOldToYoungReferenceAlive(t *testing.T) {
	h := NewHeap(1 << 16)
	m := shape.NewManager()

	oldObj := object.New(object.ClassPlainObject, nil, m.EmptyShape)
	h.Allocate(oldObj, 1<<15) // large -> immediately old

	youngObj := object.New(object.ClassPlainObject, nil, m.EmptyShape)
	h.Allocate(youngObj, 32)

	oldObj.SetProperty(value.GlobalIndex(0), value.ObjectPtr(unsafe.Pointer(youngObj)))

	h.Scavenge()

	if youngObj.Header.Destructed() {
		t.Fatal("young object referenced only from an old object's remembered-set entry must survive Scavenge")
	}
}
