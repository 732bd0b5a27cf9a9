package gcheap

import "github.com/voskan/mjsvm/object"

// RememberedSet tracks old objects whose write barrier has ever fired
// (entries are never removed), so a minor collection can rescan just those objects for
// old-to-young references instead of every old object ("Write
// barrier"). The set is object-granularity rather than per-slot: simpler and
// still sound, since Scavenge only needs to find young survivors, not
// identify exactly which slot changed.
type RememberedSet struct {
	entries map[*object.Object]struct{}
}

func newRememberedSet() *RememberedSet {
	return &RememberedSet{entries: make(map[*object.Object]struct{})}
}

// Record adds obj to the set; called from the write barrier installed on
// every object once it is promoted to old space.
func (r *RememberedSet) Record(obj *object.Object) { r.entries[obj] = struct{}{} }

func (r *RememberedSet) iterate(visit func(*object.Object)) {
	for obj := range r.entries {
		visit(obj)
	}
}

func (r *RememberedSet) Len() int { return len(r.entries) }
