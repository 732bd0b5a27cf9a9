package vm

import (
	"fmt"

	"github.com/voskan/mjsvm/constpool"
	"github.com/voskan/mjsvm/gcheap"
	"github.com/voskan/mjsvm/jsstring"
	"github.com/voskan/mjsvm/object"
	"github.com/voskan/mjsvm/shape"
	"github.com/voskan/mjsvm/value"
)

// fakeEnv is a minimal Environment good enough to drive the interpreter in
// isolation, standing in for runtime.Context the way a hand-rolled fake
// normally would.
type fakeEnv struct {
	heap    *gcheap.Heap
	global  *constpool.Global
	local   *constpool.Local
	shapes  *shape.Manager
	protos  map[object.ClassID]*object.Object
	thisVal value.Value
}

func newFakeEnv() *fakeEnv {
	return &fakeEnv{
		heap:   gcheap.NewHeap(1 << 16),
		global: constpool.NewGlobal(),
		local:  constpool.NewLocal(),
		shapes: shape.NewManager(),
		protos: make(map[object.ClassID]*object.Object),
	}
}

func (e *fakeEnv) Heap() *gcheap.Heap               { return e.heap }
func (e *fakeEnv) GlobalConsts() *constpool.Global  { return e.global }
func (e *fakeEnv) LocalConsts() *constpool.Local    { return e.local }
func (e *fakeEnv) EmptyShape() *shape.Shape         { return e.shapes.EmptyShape }
func (e *fakeEnv) GlobalThis() value.Value          { return e.thisVal }

func (e *fakeEnv) PrototypeFor(classID object.ClassID) *object.Object {
	return e.protos[classID]
}

func (e *fakeEnv) NewObject(classID object.ClassID) *object.Object {
	obj := object.New(classID, e.PrototypeFor(classID), e.EmptyShape())
	e.heap.Allocate(obj, 64)
	return obj
}

func (e *fakeEnv) GetModule(pathConst value.ConstIndex) value.Value      { return value.Undefined }
func (e *fakeEnv) GetModuleAsync(pathConst value.ConstIndex) value.Value { return value.Undefined }

func (e *fakeEnv) ThrowTypeError(format string, args ...any) value.Value {
	return e.makeError(format, args ...)
}

func (e *fakeEnv) ThrowRangeError(format string, args ...any) value.Value {
	return e.makeError(format, args ...)
}

func (e *fakeEnv) ThrowReferenceError(format string, args ...any) value.Value {
	return e.makeError(format, args ...)
}

func (e *fakeEnv) makeError(format string, args ...any) value.Value {
	obj := e.NewObject(object.ClassError)
	key := e.global.InternString("message", func() value.Value {
		return jsstring.ToValue(jsstring.New("message"))
	})
	obj.SetProperty(key, jsstring.ToValue(jsstring.New(fmt.Sprintf(format, args ...))))
	return object.ToValue(obj).WithException()
}

// internLocal appends v to the local pool and returns its ConstIndex as the
// raw bit pattern CLoadD's operand expects: negative, so the interpreter's
// sign check resolves it back to the local pool.
func internLocal(env *fakeEnv, v value.Value) uint32 {
	idx := env.local.Append(v)
	return uint32(idx)
}

// internGlobal appends v to the global pool and returns its ConstIndex as the
// raw bit pattern CLoadD's operand expects: positive, so the interpreter's
// sign check resolves it back to the global pool.
func internGlobal(env *fakeEnv, v value.Value) uint32 {
	idx := env.global.Append(v)
	return uint32(idx)
}
