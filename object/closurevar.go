package object

import (
	"unsafe"

	"github.com/voskan/mjsvm/value"
)

// ClosureVar is the refcounted heap cell backing a captured local. It is not itself GC-managed the way Object is: closures
// are expected to be short-lived and cheap, so mjsvm gives them manual
// refcounting instead of paying for GC header/traversal machinery on every
// captured variable.
//
// ClosureVar never nests: Boxed holds a plain Value, never another
// ClosureVar. Two closures created from
// the same enclosing frame share the same *ClosureVar for a given local, so
// writes through one are visible through the other.
type ClosureVar struct {
	Boxed value.Value
	refCount int32
}

// NewClosureVar allocates a fresh cell with refcount 1, already owned by its
// creator (the frame that captured the local).
func NewClosureVar(initial value.Value) *ClosureVar {
	return &ClosureVar{Boxed: initial, refCount: 1}
}

func (c *ClosureVar) Retain() *ClosureVar {
	c.refCount++
	return c
}

// Release drops a reference, returning true once the last owner let go.
// Callers must not touch Boxed after Release returns true.
func (c *ClosureVar) Release() bool {
	c.refCount--
	return c.refCount <= 0
}

func (c *ClosureVar) RefCount() int32 { return c.refCount }

func (c *ClosureVar) Get() value.Value { return c.Boxed }

func (c *ClosureVar) Set(v value.Value) { c.Boxed = v }

// WrapValue and ClosureVarFromValue convert between a *ClosureVar and the
// KindClosureVar Value a captured local variable slot holds once boxed
//. Centralized here, rather than duplicated by every package
// that needs to box/unbox a slot, for the same reason FromValue/ToValue
// exist for Object: gcheap's root walker must be able to see through a
// ClosureVar slot to trace whatever live reference is boxed inside it, even
// though the cell itself is refcounted rather than GC-traced.
func WrapValue(c *ClosureVar) value.Value {
	return value.ClosureVarPtr(unsafe.Pointer(c))
}

func ClosureVarFromValue(v value.Value) *ClosureVar {
	if v.Kind() != value.KindClosureVar {
		return nil
	}
	if p := v.Ptr(); p != nil {
		return (*ClosureVar)(p)
	}
	return nil
}
