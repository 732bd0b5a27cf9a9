package constpool

import "github.com/voskan/mjsvm/value"

// localEntry pairs a slot's value with its refcount; a slot with refcount 0
// sits on the free list and is eligible for recycling.
type localEntry struct {
	val value.Value
	refCount int32
}

// Local is a per-Context constant pool. Unlike Global it
// needs no locking: a Context and everything reachable from it runs on a
// single goroutine at a time.
type Local struct {
	entries []localEntry
	freeList []int
}

// NewLocal constructs an empty local pool.
func NewLocal() *Local {
	return &Local{}
}

// Append adds v as a fresh local slot with refcount 1, recycling a freed slot
// from freeList when one is available instead of growing entries.
func (l *Local) Append(v value.Value) value.ConstIndex {
	if n := len(l.freeList); n > 0 {
		slot := l.freeList[n-1]
		l.freeList = l.freeList[:n-1]
		l.entries[slot] = localEntry{val: v, refCount: 1}
		return value.LocalIndex(slot)
	}
	l.entries = append(l.entries, localEntry{val: v, refCount: 1})
	return value.LocalIndex(len(l.entries) - 1)
}

// Get reads idx's current value. Returns false for a freed or out-of-range
// slot.
func (l *Local) Get(idx value.ConstIndex) (value.Value, bool) {
	if !idx.IsLocal() {
		return value.Undefined, false
	}
	slot := idx.LocalSlot()
	if slot < 0 || slot >= len(l.entries) || l.entries[slot].refCount <= 0 {
		return value.Undefined, false
	}
	return l.entries[slot].val, true
}

// Retain increments idx's refcount, e.g. when a second closure captures the
// same local constant.
func (l *Local) Retain(idx value.ConstIndex) {
	slot := idx.LocalSlot()
	if slot < 0 || slot >= len(l.entries) {
		return
	}
	l.entries[slot].refCount++
}

// Release decrements idx's refcount, recycling the slot onto the free list
// once it drops to zero so a later Append can reuse it without growing
// entries ("free-list recycled").
func (l *Local) Release(idx value.ConstIndex) {
	slot := idx.LocalSlot()
	if slot < 0 || slot >= len(l.entries) || l.entries[slot].refCount <= 0 {
		return
	}
	l.entries[slot].refCount--
	if l.entries[slot].refCount == 0 {
		l.entries[slot].val = value.Undefined
		l.freeList = append(l.freeList, slot)
	}
}

// Len reports the number of allocated slots including freed-but-not-reused
// ones; it is not the live count.
func (l *Local) Len() int { return len(l.entries) }
