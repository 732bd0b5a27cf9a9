package gcheap

import "github.com/voskan/mjsvm/value"

// RootSource is implemented by anything that can enumerate the Values it is
// currently holding live: the operand stack, the job queue, an embedder's
// pinned-global table. Roots are discovered on demand at the start of every
// collection cycle rather than tracked incrementally ("Roots").
type RootSource interface {
	IterateRoots(visit func(*value.Value))
}

// RootSourceFunc adapts a plain function to RootSource.
type RootSourceFunc func(visit func(*value.Value))

func (f RootSourceFunc) IterateRoots(visit func(*value.Value)) { f(visit) }

// RootRegistry tracks every RootSource a Heap consults plus individually
// pinned embedder globals added via Heap.AddRoot/RemoveRoot.
type RootRegistry struct {
	sources []RootSource
	pinned map[*value.Value]struct{}
}

func newRootRegistry() *RootRegistry {
	return &RootRegistry{pinned: make(map[*value.Value]struct{})}
}

// AddSource registers a RootSource consulted on every collection.
func (r *RootRegistry) AddSource(s RootSource) { r.sources = append(r.sources, s) }

// AddRoot pins an individual Value slot as always-live, e.g. an embedder's
// global object reference that nothing else in the heap happens to reach.
func (r *RootRegistry) AddRoot(v *value.Value) { r.pinned[v] = struct{}{} }

// RemoveRoot unpins a previously pinned slot.
func (r *RootRegistry) RemoveRoot(v *value.Value) { delete(r.pinned, v) }

// iterate visits every currently-live root Value across every registered
// source plus pinned globals.
func (r *RootRegistry) iterate(visit func(*value.Value)) {
	for _, s := range r.sources {
		s.IterateRoots(visit)
	}
	for v := range r.pinned {
		visit(v)
	}
}
