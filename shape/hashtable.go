// Package shape implements the hidden-class (shape) transition tree that
// gives objects sharing a property-addition history O(1) slot lookup, per
// the design section 3.3/4.4.
package shape

import (
	"hash/maphash"

	"github.com/voskan/mjsvm/value"
)

// linearScanLimit is the property count below which lookup is a plain linear
// scan.
const linearScanLimit = 4

// entry is one property-key -> slot-index binding.
type entry struct {
	key value.ConstIndex
	slot int
	occupied bool
}

// PropertyHashTable is the shared, forkable lookup structure a chain of
// Shapes points into. It is deliberately not a Go map: a small-N linear
// scan gives way to a maphash-seeded probe (start at a hash-derived index
// and wrap around; entries stay in slot order, with no Robin Hood
// displacement) once a shape accumulates enough properties, and the table
// itself can be cheaply
// forked so sibling shapes never corrupt each other's lookup set.
type PropertyHashTable struct {
	seed maphash.Seed
	entries []entry // linear storage; first `linear` entries are scan-order
	linear int // count of entries while table is still <=linearScanLimit
}

// NewPropertyHashTable constructs an empty table.
func NewPropertyHashTable() *PropertyHashTable {
	return &PropertyHashTable{seed: maphash.MakeSeed()}
}

func (t *PropertyHashTable) hash(key value.ConstIndex) uint64 {
	var h maphash.Hash
	h.SetSeed(t.seed)
	var buf [4]byte
	k := uint32(key)
	buf[0] = byte(k)
	buf[1] = byte(k >> 8)
	buf[2] = byte(k >> 16)
	buf[3] = byte(k >> 24)
	h.Write(buf[:])
	return h.Sum64()
}

// lookupUpTo scans only the first limit live entries, per the
// "lookups scan only the first property_size entries" rule: a forked or
// ancestor table may carry more entries than the Shape consulting it is
// allowed to see.
func (t *PropertyHashTable) lookupUpTo(key value.ConstIndex, limit int) (int, bool) {
	if limit <= linearScanLimit {
		n := limit
		if n > len(t.entries) {
			n = len(t.entries)
		}
		for i := 0; i < n; i++ {
			if t.entries[i].occupied && t.entries[i].key == key {
				return t.entries[i].slot, true
			}
		}
		return 0, false
	}
	// Past the small-N threshold, probe the same backing slice starting at a
	// hash-derived index and wrapping around, skipping entries at or beyond
	// limit. Entries are appended in slot order rather than hash order
	// (keeping Fork()'s "copy first N" semantics intact), so a probe may visit
	// every entry before it finds key or gives up.
	h := t.hash(key)
	tableLen := uint64(len(t.entries))
	if tableLen == 0 {
		return 0, false
	}
	start := h % tableLen
	for i := uint64(0); i < tableLen; i++ {
		idx := (start + i) % tableLen
		if int(idx) >= limit {
			continue
		}
		e := t.entries[idx]
		if e.occupied && e.key == key {
			return e.slot, true
		}
	}
	return 0, false
}

// append adds a new key->slot binding at the end of the table (slot order
// matches property-addition order, which is what makes Fork()'s prefix copy
// correct).
func (t *PropertyHashTable) append(key value.ConstIndex, slot int) {
	t.entries = append(t.entries, entry{key: key, slot: slot, occupied: true})
}

// Fork returns a new table containing only the first n live entries, used
// when a shape's transition table grows past one child: the branching shape
// must fork its own table so further additions on one branch do not pollute
// a sibling's lookup set.
func (t *PropertyHashTable) Fork(n int) *PropertyHashTable {
	forked := NewPropertyHashTable()
	limit := n
	if limit > len(t.entries) {
		limit = len(t.entries)
	}
	forked.entries = append(forked.entries, t.entries[:limit]...)
	return forked
}

// Len returns the number of entries physically stored (not bounded by any
// particular Shape's property_size).
func (t *PropertyHashTable) Len() int { return len(t.entries) }
