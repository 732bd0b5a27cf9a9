// Package jsstring implements the refcounted, immutable UTF-8 string type:
// one of Value's heap-backed variants, carrying a precomputed hash. Hashing
// follows the same maphash-seeded discipline the shape package's property
// hash table uses, so two mjsvm processes never need to agree on a hash
// function across restarts.
package jsstring

import "hash/maphash"

var seed = maphash.MakeSeed()

// String is never mutated after construction; Go's string header already
// gives cheap slicing/sharing, so the only thing this type adds over a bare
// Go string is the precomputed hash and the refcount constant-pool interning
// relies on to know when a slot can be recycled.
type String struct {
	Data string
	Hash uint64
	refCount int32
}

// New allocates a String with refcount 1 and its hash precomputed once.
func New(s string) *String {
	var h maphash.Hash
	h.SetSeed(seed)
	h.WriteString(s)
	return &String{Data: s, Hash: h.Sum64(), refCount: 1}
}

func (s *String) Retain() *String {
	s.refCount++
	return s
}

// Release drops a reference, returning true once the last owner let go.
func (s *String) Release() bool {
	s.refCount--
	return s.refCount <= 0
}

func (s *String) RefCount() int32 { return s.refCount }

// Equals implements the "equality for strings ... uses content
// hash": a fast hash mismatch rejects unequal strings without a byte
// comparison, a hash collision falls back to Data equality.
func (s *String) Equals(o *String) bool {
	if s == o {
		return true
	}
	if s.Hash != o.Hash {
		return false
	}
	return s.Data == o.Data
}

func (s *String) Len() int { return len(s.Data) }
