package generator

import (
	"testing"

	"github.com/voskan/mjsvm/bytecode"
	"github.com/voskan/mjsvm/funcdef"
	"github.com/voskan/mjsvm/object"
	"github.com/voskan/mjsvm/promise"
	"github.com/voskan/mjsvm/value"
	"github.com/voskan/mjsvm/vm"
)

// asyncAddOne builds `async function() { return (await 5) + 1; }`.
func asyncAddOne(env *testEnv) value.Value {
	def := funcdef.New("addOne", 0)
	def.IsAsync = true
	table := def.BytecodeTable

	five := internLocal(env, value.Float64(5))
	one := internLocal(env, value.Float64(1))

	table.EmitU32(bytecode.OpCLoadD, five)
	table.Emit(bytecode.OpAwait)
	table.EmitU32(bytecode.OpCLoadD, one)
	table.Emit(bytecode.OpAdd)
	table.Emit(bytecode.OpAsyncReturn)

	return newFuncObj(env, def)
}

func TestAsyncStartReturnsPromiseImmediately(t *testing.T) {
	env := newTestEnv()
	it, _ := wireInterpreter(env)
	stack := vm.NewStack(64)

	fnVal := asyncAddOne(env)
	comp := it.Call(stack, fnVal, value.Undefined, nil)
	if comp.Kind != vm.CompletionReturn {
		t.Fatalf("expected CompletionReturn handing back res_promise, got %v", comp.Kind)
	}
	obj := object.FromValue(comp.Value)
	if obj == nil || obj.ClassID != object.ClassPromise || obj.Promise == nil {
		t.Fatalf("expected a promise object, got %v", comp.Value)
	}
}

func TestAsyncAwaitOfPlainValueSettlesAfterDrain(t *testing.T) {
	env := newTestEnv()
	it, queue := wireInterpreter(env)
	stack := vm.NewStack(64)

	fnVal := asyncAddOne(env)
	comp := it.Call(stack, fnVal, value.Undefined, nil)
	resPromise := object.FromValue(comp.Value)

	if resPromise.Promise.State != object.PromisePending {
		t.Fatalf("expected Pending before the await's reaction runs, got %v", resPromise.Promise.State)
	}

	queue.Drain(it, stack)

	if resPromise.Promise.State != object.PromiseFulfilled {
		t.Fatalf("expected Fulfilled after drain, got %v", resPromise.Promise.State)
	}
	if got := resPromise.Promise.Result.Float64(); got != 6 {
		t.Fatalf("expected 5+1=6, got %v", got)
	}
}

// asyncRethrow builds `async function() { return await x; }` where x is a
// local constant supplied per-test (a promise value).
func asyncRethrow(env *testEnv, awaited value.Value) value.Value {
	def := funcdef.New("rethrow", 0)
	def.IsAsync = true
	table := def.BytecodeTable

	idx := internLocal(env, awaited)
	table.EmitU32(bytecode.OpCLoadD, idx)
	table.Emit(bytecode.OpAwait)
	table.Emit(bytecode.OpAsyncReturn)

	return newFuncObj(env, def)
}

func TestAsyncAwaitOfRejectedPromisePropagates(t *testing.T) {
	env := newTestEnv()
	it, queue := wireInterpreter(env)
	stack := vm.NewStack(64)

	inner := promise.New(env)
	promise.Reject(env, queue, inner, value.Float64(13))

	fnVal := asyncRethrow(env, object.ToValue(inner))
	comp := it.Call(stack, fnVal, value.Undefined, nil)
	resPromise := object.FromValue(comp.Value)

	queue.Drain(it, stack)

	if resPromise.Promise.State != object.PromiseRejected {
		t.Fatalf("expected Rejected after the awaited promise's rejection propagates, got %v", resPromise.Promise.State)
	}
	if got := resPromise.Promise.Result.Float64(); got != 13 {
		t.Fatalf("expected propagated reason 13, got %v", got)
	}
}

func TestAsyncAwaitOfFulfilledPromiseResolves(t *testing.T) {
	env := newTestEnv()
	it, queue := wireInterpreter(env)
	stack := vm.NewStack(64)

	inner := promise.New(env)
	promise.Resolve(env, queue, inner, value.Float64(99))

	fnVal := asyncRethrow(env, object.ToValue(inner))
	comp := it.Call(stack, fnVal, value.Undefined, nil)
	resPromise := object.FromValue(comp.Value)

	queue.Drain(it, stack)

	if resPromise.Promise.State != object.PromiseFulfilled {
		t.Fatalf("expected Fulfilled, got %v", resPromise.Promise.State)
	}
	if got := resPromise.Promise.Result.Float64(); got != 99 {
		t.Fatalf("expected 99, got %v", got)
	}
}
