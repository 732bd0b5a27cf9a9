package classdef

import (
	"github.com/voskan/mjsvm/constpool"
	"github.com/voskan/mjsvm/gcheap"
	"github.com/voskan/mjsvm/object"
	"github.com/voskan/mjsvm/shape"
	"github.com/voskan/mjsvm/value"
	"github.com/voskan/mjsvm/vm"
)

// testEnv is a minimal vm.Environment, standing in for runtime.Context the
// same way the promise and vm packages' own tests do.
type testEnv struct {
	heap   *gcheap.Heap
	global *constpool.Global
	local  *constpool.Local
	shapes *shape.Manager
	table  *Table
}

func newEnv() *testEnv {
	e := &testEnv{
		heap:   gcheap.NewHeap(1 << 16),
		global: constpool.NewGlobal(),
		local:  constpool.NewLocal(),
		shapes: shape.NewManager(),
	}
	e.table = NewTable(e.heap, e.shapes.EmptyShape, e.global)
	return e
}

func (e *testEnv) Heap() *gcheap.Heap              { return e.heap }
func (e *testEnv) GlobalConsts() *constpool.Global { return e.global }
func (e *testEnv) LocalConsts() *constpool.Local   { return e.local }
func (e *testEnv) EmptyShape() *shape.Shape        { return e.shapes.EmptyShape }
func (e *testEnv) GlobalThis() value.Value         { return value.Undefined }
func (e *testEnv) PrototypeFor(classID object.ClassID) *object.Object {
	return e.table.PrototypeFor(classID)
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

// callMethod invokes a native prototype method the way vm.Interpreter.Call's
// native dispatch path would: build a *vm.HostCall and call the method's
// underlying value.CppFunction directly.
func callMethod(env *testEnv, method value.Value, this value.Value, args ...value.Value) value.Value {
	fn := object.FromValue(method)
	hc := &vm.HostCall{Env: env, This: this, Args: args, It: vm.NewInterpreter(env), Stack: vm.NewStack(64)}
	return fn.Func.Native(env, uint32(len(args)), hc)
}

func getMethod(env *testEnv, proto *object.Object, name string) value.Value {
	key := env.global.InternString(name, func() value.Value { return jsstringValue(name) })
	return proto.GetProperty(key).Value
}

// nativeFn wraps fn as a callable ClassFunction object, the form every
// function value passed through vm.Interpreter.Call must take (a bare
// value.Cpp is not enough: object.FromValue only unwraps KindObject).
func nativeFn(env *testEnv, fn value.CppFunction) value.Value {
	obj := env.NewObject(object.ClassFunction)
	obj.Func = &object.FunctionData{Native: fn}
	return object.ToValue(obj)
}
