// Package bench provides reproducible micro-benchmarks for mjsvm's
// interpreter and GC heap: one fixed workload shape, ns/op + alloc/op
// reporting, a dataset built once via an init-time closure rather than
// per-benchmark allocation.
//
// Run via: go test ./bench -bench=. -benchmem -cpu 1,4,16
package bench

import (
	"math/rand"
	"testing"

	"github.com/voskan/mjsvm/bytecode"
	"github.com/voskan/mjsvm/funcdef"
	"github.com/voskan/mjsvm/object"
	"github.com/voskan/mjsvm/runtime"
	"github.com/voskan/mjsvm/value"
)

const opsDatasetSize = 1 << 16

// opsDataset is a fixed set of float operands reused across every
// interpreter benchmark, built once rather than reallocated per-run.
var opsDataset = func() []float64 {
	r := rand.New(rand.NewSource(42))
	arr := make([]float64, opsDatasetSize)
	for i := range arr {
		arr[i] = r.Float64() * 1000
	}
	return arr
}()

func newBenchContext(b *testing.B) *runtime.Context {
	rt, err := runtime.New()
	if err != nil {
		b.Fatalf("runtime init: %v", err)
	}
	b.Cleanup(func() { rt.Close() })
	return rt.Default
}

// newArithFunc builds (a + b) * 2, the smallest loop body that exercises
// const loads, an arithmetic op and a return.
func newArithFunc(ctx *runtime.Context, a, b float64) value.Value {
	def := funcdef.New("bench", 0)
	ca := ctx.LocalConsts().Append(value.Float64(a))
	cb := ctx.LocalConsts().Append(value.Float64(b))
	c2 := ctx.LocalConsts().Append(value.Float64(2))
	def.BytecodeTable.EmitU32(bytecode.OpCLoadD, uint32(ca))
	def.BytecodeTable.EmitU32(bytecode.OpCLoadD, uint32(cb))
	def.BytecodeTable.Emit(bytecode.OpAdd)
	def.BytecodeTable.EmitU32(bytecode.OpCLoadD, uint32(c2))
	def.BytecodeTable.Emit(bytecode.OpMul)
	def.BytecodeTable.Emit(bytecode.OpReturn)

	fnObj := ctx.NewObject(object.ClassFunction)
	fnObj.Func = &object.FunctionData{Def: def}
	return object.ToValue(fnObj)
}

func BenchmarkInterpreterCall(b *testing.B) {
	ctx := newBenchContext(b)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		idx := i & (opsDatasetSize - 1)
		fn := newArithFunc(ctx, opsDataset[idx], opsDataset[(idx+1)&(opsDatasetSize-1)])
		ctx.Interp().Call(ctx.Stack(), fn, value.Undefined, nil)
	}
}

func BenchmarkInterpreterCallParallel(b *testing.B) {
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		rt, err := runtime.New()
		if err != nil {
			b.Fatalf("runtime init: %v", err)
		}
		ctx := rt.Default
		idx := 0
		for pb.Next() {
			idx = (idx + 1) & (opsDatasetSize - 1)
			fn := newArithFunc(ctx, opsDataset[idx], opsDataset[(idx+1)&(opsDatasetSize-1)])
			ctx.Interp().Call(ctx.Stack(), fn, value.Undefined, nil)
		}
		rt.Close()
	})
}
