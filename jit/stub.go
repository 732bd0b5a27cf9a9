package jit

import "github.com/voskan/mjsvm/internal/jitcache"

// StubTable is the interface a real JIT backend implements: one compiled
// entry point per opcode family that can be baseline-compiled, given the
// interpreter's frame state. mjsvm ships no implementation of StubTable
// — it exists purely as the
// documented seam, consumed only by StubCache's bookkeeping around it.
type StubTable interface {
	// CompileArith produces a stub for the arithmetic opcode family
	// (Add/Sub/Mul/Div/Mod/Neg/Inc).
	CompileArith(op uint8) (blob []byte, err error)
	// CompilePropertyAccess produces a stub for PropertyLoad/PropertyStore.
	CompilePropertyAccess(op uint8) (blob []byte, err error)
	// CompileCall produces a stub for FunctionCall/New.
	CompileCall(op uint8) (blob []byte, err error)
}

// FunctionKey re-exports internal/jitcache's key type so callers outside
// this package never need to import internal/jitcache directly.
type FunctionKey = jitcache.FunctionKey

// StubCache is the compiled-code cache keyed by FunctionDef identity,
// tracked by total blob size with an LRU-by-size prune threshold, built on the CLOCK-Pro ring in internal/jitcache.
type StubCache struct {
	cache *jitcache.Cache
}

// NewStubCache constructs a cache with the given total byte budget. eject is
// invoked when a blob is evicted for capacity reasons, typically to release
// the backend's native code page.
func NewStubCache(capacityBytes int64, eject func(key FunctionKey, blob []byte)) *StubCache {
	return &StubCache{cache: jitcache.New(capacityBytes, jitcache.EjectFunc(eject))}
}

// Insert registers a freshly compiled blob for key.
func (s *StubCache) Insert(key FunctionKey, blob []byte) { s.cache.Insert(key, blob) }

// Touch marks key as recently used.
func (s *StubCache) Touch(key FunctionKey) { s.cache.Touch(key) }

// Remove evicts key's entry outright, e.g. once its FunctionDef is collected.
func (s *StubCache) Remove(key FunctionKey) { s.cache.Remove(key) }

// Get returns the compiled blob for key, if still cached.
func (s *StubCache) Get(key FunctionKey) ([]byte, bool) { return s.cache.Get(key) }

// SizeBytes reports the cache's current total occupancy.
func (s *StubCache) SizeBytes() int64 { return s.cache.SizeBytes() }
