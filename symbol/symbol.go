// Package symbol implements the KindSymbol heap variant the design section 3.1
// lists alongside String: a unique, by-identity-only value distinguished
// from a string by never comparing equal on content. Structured the same
// way jsstring.String is (a small allocated struct, FromValue/ToValue at
// the package boundary) since Symbol is the other interned-by-the-
// runtime primitive.
package symbol

import (
	"unsafe"

	"github.com/voskan/mjsvm/value"
)

// Symbol carries only a description; two Symbols are never equal unless
// they are the same pointer ("Symbol.for(name) interns into
// the context's symbol table", implying ordinary `Symbol()` calls do not).
type Symbol struct {
	Description string
}

// New allocates a fresh, never-interned Symbol.
func New(description string) *Symbol {
	return &Symbol{Description: description}
}

// FromValue extracts the *Symbol backing v, or nil if v is not KindSymbol.
func FromValue(v value.Value) *Symbol {
	if v.Kind() != value.KindSymbol {
		return nil
	}
	if p := v.Ptr(); p != nil {
		return (*Symbol)(p)
	}
	return nil
}

// ToValue wraps s as a KindSymbol Value.
func ToValue(s *Symbol) value.Value {
	return value.SymbolPtr(unsafe.Pointer(s))
}
