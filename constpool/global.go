// Package constpool implements the two constant pools: a process-wide Global
// pool shared by every Context, and a per-Context Local pool. ConstIndex's
// sign tells a reader which of the two to consult
// (value.ConstIndex.IsGlobal/IsLocal).
package constpool

import (
	"sync"
	"sync/atomic"

	"github.com/voskan/mjsvm/value"
)

// segmentSize is the capacity the global pool's backing slice gains on each
// growth step, so a full copy of the pool happens once every segmentSize
// appends rather than on every append.
const segmentSize = 4096

// Global is the process-wide constant pool, held as one flat slice rather
// than separate fixed-size blocks. Appends are serialized by mu; when the
// slice is full it is copied whole into a larger one and the new slice is
// published. Reads go through an
// atomic.Pointer snapshot and take no lock at all, matching the
// "mutex-guarded growth, lock-free reads" requirement.
type Global struct {
	mu sync.Mutex
	slots atomic.Pointer[[]value.Value]
	dedup map[string]value.ConstIndex // string/symbol canonicalization
	dedupMu sync.Mutex
}

// NewGlobal constructs an empty global pool.
func NewGlobal() *Global {
	g := &Global{dedup: make(map[string]value.ConstIndex)}
	empty := make([]value.Value, 0, segmentSize)
	g.slots.Store(&empty)
	return g
}

// Get reads slot idx's value without taking any lock. The caller is responsible for passing a valid, already-committed
// index; indices are never reused within a process so this is race-free
// against concurrent Intern calls on other slots.
func (g *Global) Get(idx value.ConstIndex) (value.Value, bool) {
	if !idx.IsGlobal() {
		return value.Undefined, false
	}
	slot := idx.GlobalSlot()
	cur := *g.slots.Load()
	if slot < 0 || slot >= len(cur) {
		return value.Undefined, false
	}
	return cur[slot], true
}

// Append adds v as a brand-new global slot and returns its index. When the
// backing array is full, Append copies every existing slot into a new array
// with segmentSize more capacity, then publishes it atomically so concurrent
// Get calls never observe a torn read.
func (g *Global) Append(v value.Value) value.ConstIndex {
	g.mu.Lock()
	defer g.mu.Unlock()

	cur := *g.slots.Load()
	if len(cur) == cap(cur) {
		grown := make([]value.Value, len(cur), cap(cur)+segmentSize)
		copy(grown, cur)
		cur = grown
	}
	cur = append(cur, v)
	g.slots.Store(&cur)
	return value.GlobalIndex(len(cur) - 1)
}

// Len reports the current number of committed global slots.
func (g *Global) Len() int { return len(*g.slots.Load()) }

// InternString canonicalizes a string constant: the first call for a given
// byte sequence appends it and caches the index; subsequent calls return the
// cached index, giving interned strings pointer-equal semantics for
// StrictEquals.
func (g *Global) InternString(s string, makeValue func() value.Value) value.ConstIndex {
	g.dedupMu.Lock()
	defer g.dedupMu.Unlock()
	if idx, ok := g.dedup[s]; ok {
		return idx
	}
	idx := g.Append(makeValue())
	g.dedup[s] = idx
	return idx
}
