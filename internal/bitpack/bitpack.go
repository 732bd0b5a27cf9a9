// Package bitpack centralises every unavoidable use of the `unsafe` standard
// library package in mjsvm, keeping that usage in one audited place. Every
// helper documents its pre/post conditions. Within mjsvm these functions are
// used only by internal/memregion's placement arithmetic.
//
// DISCLAIMER: these helpers deliberately trade memory safety for zero-copy
// conversions. They are not part of the public API and may change without
// notice.
package bitpack

import "unsafe"

// BytesToString converts a byte slice to a string without copying. The
// caller must guarantee b is never mutated for the string's lifetime;
// mjsvm only calls this on bytes already committed into a refcounted,
// immutable value.String backing array.
func BytesToString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(&b[0], len(b))
}

// StringToBytes reinterprets string data as a byte slice without copying.
// The returned slice MUST be treated as read-only.
func StringToBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

// PtrSlice converts a *T pointer plus element count into a []T without
// copying. Used to view a memregion-allocated array as a slice.
func PtrSlice[T any](ptr *T, n int) []T {
	if n == 0 {
		return nil
	}
	return unsafe.Slice(ptr, n)
}

// ByteSliceFrom returns a []byte view of raw memory starting at ptr. Caller
// must ensure at least length bytes are valid.
func ByteSliceFrom(ptr unsafe.Pointer, length uintptr) []byte {
	if length == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(ptr), length)
}

// AlignUp rounds x up to the nearest multiple of align, which must be a
// power of two. Used to size semispace/old-space regions and to round
// per-object allocation sizes to pointer alignment.
func AlignUp(x, align uintptr) uintptr {
	return (x + align - 1) &^ (align - 1)
}

// IsPowerOfTwo reports whether x has exactly one bit set.
func IsPowerOfTwo(x uintptr) bool {
	return x != 0 && (x&(x-1)) == 0
}
