package object

import (
	"unsafe"

	"github.com/voskan/mjsvm/value"
)

// FromValue extracts the *Object backing v, for every Value kind that wraps
// one (KindObject, and the two promise sentinel kinds, since Promise/
// Generator instances are themselves Objects distinguished by ClassID).
// Returns nil for any other kind, including a nil pointer payload.
func FromValue(v value.Value) *Object {
	switch v.Kind() {
	case value.KindObject, value.KindPromiseResolve, value.KindPromiseReject:
		if p := v.Ptr(); p != nil {
			return (*Object)(p)
		}
	}
	return nil
}

// ToValue wraps o as a KindObject Value.
func ToValue(o *Object) value.Value {
	if o == nil {
		return value.Null
	}
	return value.ObjectPtr(unsafe.Pointer(o))
}
