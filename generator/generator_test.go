package generator

import (
	"testing"

	"github.com/voskan/mjsvm/bytecode"
	"github.com/voskan/mjsvm/constpool"
	"github.com/voskan/mjsvm/funcdef"
	"github.com/voskan/mjsvm/gcheap"
	"github.com/voskan/mjsvm/object"
	"github.com/voskan/mjsvm/promise"
	"github.com/voskan/mjsvm/shape"
	"github.com/voskan/mjsvm/value"
	"github.com/voskan/mjsvm/vm"
)

// testEnv is a minimal vm.Environment, the same shape promise's own tests
// use in place of runtime.Context.
type testEnv struct {
	heap   *gcheap.Heap
	global *constpool.Global
	local  *constpool.Local
	shapes *shape.Manager
	protos map[object.ClassID]*object.Object
}

func newTestEnv() *testEnv {
	return &testEnv{
		heap:   gcheap.NewHeap(1 << 16),
		global: constpool.NewGlobal(),
		local:  constpool.NewLocal(),
		shapes: shape.NewManager(),
		protos: make(map[object.ClassID]*object.Object),
	}
}

func (e *testEnv) Heap() *gcheap.Heap              { return e.heap }
func (e *testEnv) GlobalConsts() *constpool.Global { return e.global }
func (e *testEnv) LocalConsts() *constpool.Local   { return e.local }
func (e *testEnv) EmptyShape() *shape.Shape        { return e.shapes.EmptyShape }
func (e *testEnv) GlobalThis() value.Value         { return value.Undefined }
func (e *testEnv) PrototypeFor(classID object.ClassID) *object.Object {
	return e.protos[classID]
}
func (e *testEnv) NewObject(classID object.ClassID) *object.Object {
	obj := object.New(classID, e.PrototypeFor(classID), e.EmptyShape())
	e.heap.Allocate(obj, 64)
	return obj
}
func (e *testEnv) GetModule(value.ConstIndex) value.Value      { return value.Undefined }
func (e *testEnv) GetModuleAsync(value.ConstIndex) value.Value { return value.Undefined }
func (e *testEnv) ThrowTypeError(format string, args ...any) value.Value {
	return e.makeError(format, args ...)
}
func (e *testEnv) ThrowRangeError(format string, args ...any) value.Value {
	return e.makeError(format, args ...)
}
func (e *testEnv) ThrowReferenceError(format string, args ...any) value.Value {
	return e.makeError(format, args ...)
}
func (e *testEnv) makeError(format string, args ...any) value.Value {
	obj := e.NewObject(object.ClassError)
	return object.ToValue(obj).WithException()
}

func internLocal(env *testEnv, v value.Value) uint32 {
	return uint32(env.local.Append(v))
}

func newFuncObj(env *testEnv, def *funcdef.FunctionDef) value.Value {
	obj := env.NewObject(object.ClassFunction)
	obj.Func = &object.FunctionData{Def: def}
	return object.ToValue(obj)
}

// counterGen builds `function*() { yield 1; yield 2; return 3; }`.
func counterGen(env *testEnv) value.Value {
	def := funcdef.New("counter", 0)
	def.IsGenerator = true
	table := def.BytecodeTable

	one := internLocal(env, value.Float64(1))
	two := internLocal(env, value.Float64(2))
	three := internLocal(env, value.Float64(3))

	table.EmitU32(bytecode.OpCLoadD, one)
	table.Emit(bytecode.OpYield)
	table.Emit(bytecode.OpPop) // discard the value Next() sends back in
	table.EmitU32(bytecode.OpCLoadD, two)
	table.Emit(bytecode.OpYield)
	table.Emit(bytecode.OpPop)
	table.EmitU32(bytecode.OpCLoadD, three)
	table.Emit(bytecode.OpGeneratorReturn)

	return newFuncObj(env, def)
}

func wireInterpreter(env *testEnv) (*vm.Interpreter, *promise.JobQueue) {
	queue := promise.NewJobQueue()
	it := vm.NewInterpreter(env)
	it.Generators = &Hook{Env: env, Queue: queue}
	it.Promises = &promise.Hook{Env: env, Queue: queue}
	return it, queue
}

func resultFields(t *testing.T, env *testEnv, v value.Value) (value.Value, bool) {
	t.Helper()
	obj := object.FromValue(v)
	if obj == nil {
		t.Fatalf("expected an iterator result object, got %v", v)
	}
	valKey := iterKey(env, "value")
	doneKey := iterKey(env, "done")
	val := obj.GetProperty(valKey).Value
	done := obj.GetProperty(doneKey).Value
	return val, done.Bool()
}

func TestGeneratorCallDoesNotRunBody(t *testing.T) {
	env := newTestEnv()
	it, _ := wireInterpreter(env)
	stack := vm.NewStack(64)

	fnVal := counterGen(env)
	comp := it.Call(stack, fnVal, value.Undefined, nil)
	if comp.Kind != vm.CompletionReturn {
		t.Fatalf("expected CompletionReturn building the generator object, got %v", comp.Kind)
	}
	g := FromValue(comp.Value)
	if g == nil {
		t.Fatalf("expected a *Generator backing the returned object")
	}
	if g.state != Suspended {
		t.Fatalf("expected Suspended before the first Next(), got %v", g.state)
	}
}

func TestGeneratorYieldsThenReturns(t *testing.T) {
	env := newTestEnv()
	it, _ := wireInterpreter(env)
	stack := vm.NewStack(64)

	fnVal := counterGen(env)
	comp := it.Call(stack, fnVal, value.Undefined, nil)
	g := FromValue(comp.Value)

	r1 := g.Next(env, stack, value.Undefined)
	v1, done1 := resultFields(t, env, r1.Value)
	if done1 || v1.Float64() != 1 {
		t.Fatalf("expected {1, false}, got {%v, %v}", v1, done1)
	}

	r2 := g.Next(env, stack, value.Undefined)
	v2, done2 := resultFields(t, env, r2.Value)
	if done2 || v2.Float64() != 2 {
		t.Fatalf("expected {2, false}, got {%v, %v}", v2, done2)
	}

	r3 := g.Next(env, stack, value.Undefined)
	v3, done3 := resultFields(t, env, r3.Value)
	if !done3 || v3.Float64() != 3 {
		t.Fatalf("expected {3, true}, got {%v, %v}", v3, done3)
	}

	// Next() on a Closed generator is the idle {undefined, true} forever.
	r4 := g.Next(env, stack, value.Undefined)
	v4, done4 := resultFields(t, env, r4.Value)
	if !done4 || !v4.IsUndefined() {
		t.Fatalf("expected {undefined, true} once closed, got {%v, %v}", v4, done4)
	}
}

func TestGeneratorNextSendsValueIntoYieldExpression(t *testing.T) {
	env := newTestEnv()
	it, _ := wireInterpreter(env)
	stack := vm.NewStack(64)

	// function*() { var x = yield 1; return x; }
	def := funcdef.New("echo", 0)
	def.IsGenerator = true
	def.VarDefTable = []funcdef.VarDef{{}}
	table := def.BytecodeTable
	one := internLocal(env, value.Float64(1))
	table.EmitU32(bytecode.OpCLoadD, one)
	table.Emit(bytecode.OpYield)
	table.Emit(bytecode.OpVStore_0)
	table.Emit(bytecode.OpVLoad_0)
	table.Emit(bytecode.OpGeneratorReturn)

	fnVal := newFuncObj(env, def)
	comp := it.Call(stack, fnVal, value.Undefined, nil)
	g := FromValue(comp.Value)

	r1 := g.Next(env, stack, value.Undefined)
	v1, done1 := resultFields(t, env, r1.Value)
	if done1 || v1.Float64() != 1 {
		t.Fatalf("expected {1, false}, got {%v, %v}", v1, done1)
	}

	r2 := g.Next(env, stack, value.Float64(42))
	v2, done2 := resultFields(t, env, r2.Value)
	if !done2 || v2.Float64() != 42 {
		t.Fatalf("expected the sent value 42 echoed back done, got {%v, %v}", v2, done2)
	}
}

func TestGeneratorCloseStopsMidSuspension(t *testing.T) {
	env := newTestEnv()
	it, _ := wireInterpreter(env)
	stack := vm.NewStack(64)

	fnVal := counterGen(env)
	comp := it.Call(stack, fnVal, value.Undefined, nil)
	g := FromValue(comp.Value)

	g.Next(env, stack, value.Undefined)
	if g.state != Suspended {
		t.Fatalf("expected Suspended after first yield, got %v", g.state)
	}

	g.Close(stack)
	if g.state != Closed {
		t.Fatalf("expected Closed after Close(), got %v", g.state)
	}

	r := g.Next(env, stack, value.Undefined)
	_, done := resultFields(t, env, r.Value)
	if !done {
		t.Fatalf("expected Next() on a closed generator to report done")
	}
}
