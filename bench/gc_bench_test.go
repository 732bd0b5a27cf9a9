package bench

import (
	"testing"

	"github.com/voskan/mjsvm/object"
	"github.com/voskan/mjsvm/runtime"
)

// BenchmarkObjectAllocate measures the cost of allocating plain objects
// against a fresh Context's young generation, the allocation-heavy path
// every function call and literal construction goes through.
func BenchmarkObjectAllocate(b *testing.B) {
	ctx := newBenchContext(b)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ctx.NewObject(object.ClassPlainObject)
	}
}

// BenchmarkScavenge measures a minor GC cycle's cost against a young
// generation filled to its default occupancy threshold.
func BenchmarkScavenge(b *testing.B) {
	ctx := newBenchContext(b)
	const fill = 4096
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		for j := 0; j < fill; j++ {
			ctx.NewObject(object.ClassPlainObject)
		}
		b.StartTimer()
		ctx.Heap().Scavenge()
	}
}
