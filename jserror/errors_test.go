package jserror

import (
	"strings"
	"testing"

	"github.com/voskan/mjsvm/constpool"
	"github.com/voskan/mjsvm/funcdef"
	"github.com/voskan/mjsvm/gcheap"
	"github.com/voskan/mjsvm/jsstring"
	"github.com/voskan/mjsvm/object"
	"github.com/voskan/mjsvm/shape"
	"github.com/voskan/mjsvm/value"
	"github.com/voskan/mjsvm/vm"
)

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
	return New(e, nil, TypeError, format, args ...)
}
func (e *testEnv) ThrowRangeError(format string, args ...any) value.Value {
	return New(e, nil, RangeError, format, args ...)
}
func (e *testEnv) ThrowReferenceError(format string, args ...any) value.Value {
	return New(e, nil, ReferenceError, format, args ...)
}

func TestNewSetsNameMessageAndStack(t *testing.T) {
	env := newTestEnv()

	def := funcdef.New("doStuff", 0)
	def.DebugTable = []funcdef.DebugEntry{{StartPC: 0, Line: 12, Column: 4}}
	frame := &vm.Frame{FunctionDef: def, PC: 0}

	v := New(env, []*vm.Frame{frame}, TypeError, "bad %s", "value")
	if !v.IsException() {
		t.Fatalf("expected exception bit set")
	}
	obj := object.FromValue(v)
	if obj == nil || obj.ClassID != object.ClassError {
		t.Fatalf("expected a ClassError object, got %v", v)
	}

	nameKey := internKey(env, "name")
	msgKey := internKey(env, "message")
	stackKey := internKey(env, "stack")

	if got := obj.GetProperty(nameKey).Value; got.Kind() == value.KindUndefined {
		t.Fatalf("expected a name property")
	}
	msg := obj.GetProperty(msgKey).Value
	stack := obj.GetProperty(stackKey).Value

	msgStr := valueString(msg)
	if msgStr != "bad value" {
		t.Fatalf("expected message 'bad value', got %q", msgStr)
	}
	stackStr := valueString(stack)
	if !strings.Contains(stackStr, "TypeError: bad value") {
		t.Fatalf("expected stack to lead with the error summary, got %q", stackStr)
	}
	if !strings.Contains(stackStr, "doStuff") || !strings.Contains(stackStr, "12:4") {
		t.Fatalf("expected stack to name the faulting frame and position, got %q", stackStr)
	}
}

func TestNewWithNoFramesStillBuildsAnError(t *testing.T) {
	env := newTestEnv()
	v := New(env, nil, RangeError, "out of range")
	if !v.IsException() {
		t.Fatalf("expected exception bit set")
	}
}

func valueString(v value.Value) string {
	s := jsstring.FromValue(v)
	if s == nil {
		return ""
	}
	return s.Data
}
