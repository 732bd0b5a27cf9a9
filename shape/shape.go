package shape

import "github.com/voskan/mjsvm/value"

// Shape is a node in the transition tree: an immutable description of the
// property layout shared by every object with the same property-addition
// history.
type Shape struct {
	Parent *Shape
	PropertySize int
	PropertyMap *PropertyHashTable
	Transitions map[value.ConstIndex]*Shape
	RefCount int32

	// addedKey is the key this shape added relative to Parent, InvalidConstIndex
	// for the empty root shape. Kept so Fork() knows what to re-append when a
	// table must be copied rather than shared.
	addedKey value.ConstIndex
	addedSlot int
}

// newEmptyShape constructs the root of every transition tree: no properties,
// a fresh empty property map, no parent.
func newEmptyShape() *Shape {
	return &Shape{
		PropertyMap: NewPropertyHashTable(),
		Transitions: make(map[value.ConstIndex]*Shape),
		addedKey: value.InvalidConstIndex,
	}
}

// Find looks up key's slot index, scanning only this shape's own
// property_size entries.
func (s *Shape) Find(key value.ConstIndex) (int, bool) {
	return s.PropertyMap.lookupUpTo(key, s.PropertySize)
}

// Transition returns the successor shape obtained by adding key, creating
// and interning it if this is the first time key has been added to s
//.
func (s *Shape) Transition(key value.ConstIndex) *Shape {
	if existing, ok := s.Transitions[key]; ok {
		return existing
	}

	// Transition safety: if s already has other children, fork the property
	// map so the new branch doesn't pollute siblings' lookup sets.
	propMap := s.PropertyMap
	if len(s.Transitions) > 0 {
		propMap = s.PropertyMap.Fork(s.PropertySize)
	}

	slot := s.PropertySize
	propMap.append(key, slot)

	child := &Shape{
		Parent: s,
		PropertySize: s.PropertySize + 1,
		PropertyMap: propMap,
		Transitions: make(map[value.ConstIndex]*Shape),
		addedKey: key,
		addedSlot: slot,
	}
	s.Transitions[key] = child
	s.Retain() // the child's reference, dropped by the child's Release
	return child
}

// AddedKey returns the property key this shape introduced relative to its
// parent, and whether this is the empty root (no added key).
func (s *Shape) AddedKey() (value.ConstIndex, bool) {
	if s.Parent == nil {
		return value.InvalidConstIndex, false
	}
	return s.addedKey, true
}

// IsRoot reports whether s is the empty root shape.
func (s *Shape) IsRoot() bool { return s.Parent == nil }

// Retain/Release implement refcounting on Shape: a shape becomes
// collectible only when no object references it and no child shape
// references it. mjsvm refcounts rather than marking shapes during a
// major GC.
func (s *Shape) Retain() { s.RefCount++ }

func (s *Shape) Release() bool {
	s.RefCount--
	if s.RefCount <= 0 && len(s.Transitions) == 0 {
		if s.Parent != nil {
			delete(s.Parent.Transitions, s.addedKey)
			s.Parent.Release()
		}
		return true
	}
	return false
}
