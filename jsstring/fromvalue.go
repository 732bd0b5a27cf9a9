package jsstring

import (
	"unsafe"

	"github.com/voskan/mjsvm/value"
)

// FromValue extracts the *String backing v, or nil if v is not KindString.
func FromValue(v value.Value) *String {
	if v.Kind() != value.KindString {
		return nil
	}
	if p := v.Ptr(); p != nil {
		return (*String)(p)
	}
	return nil
}

// ToValue wraps s as a KindString Value.
func ToValue(s *String) value.Value {
	return value.StringPtr(unsafe.Pointer(s))
}
