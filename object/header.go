// Package object implements the heap object model: the packed GC header
// every heap allocation carries, the base Object with its property slots and
// prototype chain, and the small refcounted non-GC types (ClosureVar) that
// live alongside it.
package object

// TypeTag identifies what kind of heap object a Header describes.
type TypeTag uint8

const (
	TypeObject TypeTag = iota
	TypeArray
	TypeFunction
	TypeString
	TypeShape
	TypeModuleDef
	TypeFunctionDef
	TypeClosureVar
	TypeOther
)

// Generation marks which GC space an object currently lives in.
type Generation uint8

const (
	GenerationYoung Generation = iota
	GenerationOld
)

// Header is the 64-bit packed header every object starts with, laid out
// as:
//
//	bits 0-7 type (TypeTag)
//	bit 8 generation (0=young, 1=old)
//	bit 9 marked (mark-compact)
//	bit 10 forwarded
//	bit 11 destructed
//	bit 12 pinned
//	bits 13-16 age (0-15, promotes to old at kTenureAgeThreshold)
//	bits 32-63 size (total allocation size including header)
//
// The forwarding pointer itself does not fit in a uint64 on 64-bit
// platforms, so it is kept alongside the header rather than packed into it;
// Header only carries the bit that says whether the forwarding union is
// currently in use.
type Header uint64

const (
	shiftType = 0
	shiftGeneration = 8
	shiftMarked = 9
	shiftForwarded = 10
	shiftDestructed = 11
	shiftPinned = 12
	shiftAge = 13
	maskAge = 0xF
	shiftSize = 32
)

// NewHeader builds a fresh Header for a just-allocated object of the given
// type and total size, in the young generation, with all flags clear.
func NewHeader(t TypeTag, size uint32) Header {
	var h Header
	h = h.withType(t)
	h = h.withSize(size)
	return h
}

func (h Header) Type() TypeTag { return TypeTag(h >> shiftType) }
func (h Header) withType(t TypeTag) Header {
	return (h &^ 0xFF) | Header(t)
}

func (h Header) Generation() Generation { return Generation((h >> shiftGeneration) & 1) }
func (h Header) WithGeneration(g Generation) Header {
	return h.setBit(shiftGeneration, g == GenerationOld)
}

func (h Header) Marked() bool { return h.bit(shiftMarked) }
func (h Header) WithMarked(v bool) Header { return h.setBit(shiftMarked, v) }

func (h Header) Forwarded() bool { return h.bit(shiftForwarded) }
func (h Header) WithForwarded(v bool) Header { return h.setBit(shiftForwarded, v) }

func (h Header) Destructed() bool { return h.bit(shiftDestructed) }
func (h Header) WithDestructed(v bool) Header { return h.setBit(shiftDestructed, v) }

func (h Header) Pinned() bool { return h.bit(shiftPinned) }
func (h Header) WithPinned(v bool) Header { return h.setBit(shiftPinned, v) }

func (h Header) Age() uint8 {
	return uint8((h >> shiftAge) & maskAge)
}

// WithAge sets the age field, clamped to the 4-bit range.
func (h Header) WithAge(age uint8) Header {
	if age > maskAge {
		age = maskAge
	}
	cleared := h &^ (Header(maskAge) << shiftAge)
	return cleared | (Header(age) << shiftAge)
}

// IncAge returns h with age incremented by one, saturating at maskAge.
func (h Header) IncAge() Header {
	a := h.Age()
	if a < maskAge {
		a++
	}
	return h.WithAge(a)
}

func (h Header) Size() uint32 { return uint32(h >> shiftSize) }
func (h Header) withSize(size uint32) Header {
	cleared := h &^ (Header(0xFFFFFFFF) << shiftSize)
	return cleared | (Header(size) << shiftSize)
}

func (h Header) bit(shift uint) bool { return (h>>shift)&1 != 0 }
func (h Header) setBit(shift uint, v bool) Header {
	if v {
		return h | (1 << shift)
	}
	return h &^ (1 << shift)
}
