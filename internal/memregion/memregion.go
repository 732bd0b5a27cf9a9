// Package memregion provides a thin bump-pointer allocator used by gcheap's
// young semispaces and old-space region. An earlier design wrapped the
// experimental goexperiment.arenas stdlib package, but that requires a
// build tag unsuited to a GC core meant to build everywhere, so memregion
// exposes a New/Reset/Alloc/AllocBytes surface backed by a plain []byte
// slice and raw pointer arithmetic — the placement-new style a generational
// heap's spaces need.
//
// Region is not thread-safe. gcheap takes no lock around it; each Heap
// belongs to a single Context, which runs on one goroutine at a time.
package memregion

import (
	"unsafe"

	"github.com/voskan/mjsvm/internal/bitpack"
)

// Region is a contiguous byte buffer with a bump allocation pointer.
type Region struct {
	buf    []byte
	offset uintptr
}

// New allocates a Region of the given capacity, ready for bump allocation.
func New(capacity int) *Region {
	return &Region{buf: make([]byte, capacity)}
}

// Capacity returns the total byte capacity of the region.
func (r *Region) Capacity() int { return len(r.buf) }

// Used returns the number of bytes bump-allocated so far.
func (r *Region) Used() uintptr { return r.offset }

// Remaining returns the number of bytes still available.
func (r *Region) Remaining() uintptr { return uintptr(len(r.buf)) - r.offset }

// Reset rewinds the bump pointer to the start, making the whole region
// available again. Any pointer previously returned by Alloc becomes invalid.
func (r *Region) Reset() { r.offset = 0 }

// Base returns the address of the first byte of the region's backing array.
func (r *Region) Base() unsafe.Pointer {
	if len(r.buf) == 0 {
		return nil
	}
	return unsafe.Pointer(&r.buf[0])
}

// Alloc reserves size bytes aligned to align (a power of two) and returns a
// pointer to the start of the reservation, or nil if the region is full.
func (r *Region) Alloc(size uintptr, align uintptr) unsafe.Pointer {
	aligned := bitpack.AlignUp(r.offset, align)
	if aligned+size > uintptr(len(r.buf)) {
		return nil
	}
	r.offset = aligned + size
	return unsafe.Pointer(&r.buf[aligned])
}

// AllocBytes copies buf into the region and returns the new slice, or nil if
// there is no room.
func (r *Region) AllocBytes(buf []byte) []byte {
	p := r.Alloc(uintptr(len(buf)), 1)
	if p == nil {
		return nil
	}
	dst := bitpack.PtrSlice((*byte)(p), len(buf))
	copy(dst, buf)
	return dst
}

// Grow returns a new Region with the given capacity, copying over everything
// allocated so far. Used by gcheap's old space when it must double in size.
func (r *Region) Grow(newCapacity int) *Region {
	grown := New(newCapacity)
	copy(grown.buf, r.buf[:r.offset])
	grown.offset = r.offset
	return grown
}

// Contains reports whether p points inside this region's backing array.
func (r *Region) Contains(p unsafe.Pointer) bool {
	if len(r.buf) == 0 {
		return false
	}
	start := uintptr(unsafe.Pointer(&r.buf[0]))
	end := start + uintptr(len(r.buf))
	addr := uintptr(p)
	return addr >= start && addr < end
}

// OffsetOf returns the byte offset of p within the region.
func (r *Region) OffsetOf(p unsafe.Pointer) uintptr {
	start := uintptr(unsafe.Pointer(&r.buf[0]))
	return uintptr(p) - start
}

// AtOffset returns the address of the byte at the given offset.
func (r *Region) AtOffset(off uintptr) unsafe.Pointer {
	return unsafe.Pointer(&r.buf[off])
}
