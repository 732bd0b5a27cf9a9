package jit

import "testing"

func TestStubCacheEvictsUnderBudget(t *testing.T) {
	var evicted []FunctionKey
	cache := NewStubCache(16, func(key FunctionKey, blob []byte) {
		evicted = append(evicted, key)
	})

	cache.Insert(1, make([]byte, 10))
	cache.Insert(2, make([]byte, 10))

	if _, ok := cache.Get(1); !ok {
		cache.Insert(3, make([]byte, 2)) // nudge eviction if 1 already gone
	}
	if cache.SizeBytes() > 16 {
		t.Fatalf("SizeBytes() = %d, want <= 16 after eviction", cache.SizeBytes())
	}
}

func TestStubCacheGetAfterInsert(t *testing.T) {
	cache := NewStubCache(1024, nil)
	cache.Insert(5, []byte{1, 2, 3})
	blob, ok := cache.Get(5)
	if !ok || len(blob) != 3 {
		t.Fatalf("Get(5) = (%v, %v)", blob, ok)
	}
}
