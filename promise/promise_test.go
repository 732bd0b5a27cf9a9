package promise

import (
	"testing"

	"github.com/voskan/mjsvm/constpool"
	"github.com/voskan/mjsvm/gcheap"
	"github.com/voskan/mjsvm/object"
	"github.com/voskan/mjsvm/shape"
	"github.com/voskan/mjsvm/value"
	"github.com/voskan/mjsvm/vm"
)

// testEnv is a minimal vm.Environment, standing in for runtime.Context the
// same way vm's own package tests do.
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

func adder(env vm.Environment, n float64) value.Value {
	return nativeFunc(env, func(ctx any, argc uint32, frame any) value.Value {
		hc := frame.(*vm.HostCall)
		f, _ := hc.Arg(0).Number()
		return value.Float64(f + n)
	})
}

func multiplier(env vm.Environment, n float64) value.Value {
	return nativeFunc(env, func(ctx any, argc uint32, frame any) value.Value {
		hc := frame.(*vm.HostCall)
		f, _ := hc.Arg(0).Number()
		return value.Float64(f * n)
	})
}

func TestResolveFulfillsImmediatelySettledValue(t *testing.T) {
	env := newTestEnv()
	queue := NewJobQueue()
	p := New(env)

	Resolve(env, queue, p, value.Float64(7))

	if p.Promise.State != object.PromiseFulfilled {
		t.Fatalf("expected Fulfilled, got %v", p.Promise.State)
	}
	if got := p.Promise.Result.Float64(); got != 7 {
		t.Fatalf("expected result 7, got %v", got)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	env := newTestEnv()
	queue := NewJobQueue()
	p := New(env)

	Resolve(env, queue, p, value.Float64(1))
	Resolve(env, queue, p, value.Float64(2))
	Reject(env, queue, p, value.Float64(3))

	if got := p.Promise.Result.Float64(); got != 1 {
		t.Fatalf("expected first settlement to win (1), got %v", got)
	}
}

func TestResolveWithSelfRejectsCycle(t *testing.T) {
	env := newTestEnv()
	queue := NewJobQueue()
	p := New(env)

	Resolve(env, queue, p, object.ToValue(p))

	if p.Promise.State != object.PromiseRejected {
		t.Fatalf("expected Rejected on self-resolve, got %v", p.Promise.State)
	}
	if !p.Promise.Result.IsException() {
		t.Fatalf("expected exception bit set on cycle rejection")
	}
}

func TestThenChainMatchesPromiseAlgebra(t *testing.T) {
	env := newTestEnv()
	queue := NewJobQueue()
	it := vm.NewInterpreter(env)
	stack := vm.NewStack(64)

	p1 := New(env)
	Resolve(env, queue, p1, value.Float64(1))

	p2 := Then(env, queue, p1, adder(env, 2), value.Undefined)
	p3 := Then(env, queue, p2, multiplier(env, 10), value.Undefined)

	queue.Drain(it, stack)

	if p3.Promise.State != object.PromiseFulfilled {
		t.Fatalf("expected p3 Fulfilled, got %v", p3.Promise.State)
	}
	if got := p3.Promise.Result.Float64(); got != 30 {
		t.Fatalf("expected (1+2)*10=30, got %v", got)
	}
}

func TestThenRejectionPropagates(t *testing.T) {
	env := newTestEnv()
	queue := NewJobQueue()
	it := vm.NewInterpreter(env)
	stack := vm.NewStack(64)

	p1 := New(env)
	Reject(env, queue, p1, value.Float64(99))

	var caught value.Value
	catcher := nativeFunc(env, func(ctx any, argc uint32, frame any) value.Value {
		hc := frame.(*vm.HostCall)
		caught = hc.Arg(0)
		return value.Undefined
	})
	p2 := Then(env, queue, p1, value.Undefined, catcher)
	queue.Drain(it, stack)

	if p2.Promise.State != object.PromiseFulfilled {
		t.Fatalf("expected catcher's return to fulfill p2, got %v", p2.Promise.State)
	}
	if got := caught.Float64(); got != 99 {
		t.Fatalf("expected rejection reason 99, got %v", got)
	}
}

func TestJobQueueFIFOAndSelfEnqueue(t *testing.T) {
	env := newTestEnv()
	queue := NewJobQueue()
	it := vm.NewInterpreter(env)
	stack := vm.NewStack(64)

	var order []int
	mark := func(n int, enqueueNext bool) value.Value {
		return nativeFunc(env, func(ctx any, argc uint32, frame any) value.Value {
			order = append(order, n)
			if enqueueNext {
				queue.Enqueue(Job{Fn: mark(3, false)})
			}
			return value.Undefined
		})
	}
	queue.Enqueue(Job{Fn: mark(1, true)})
	queue.Enqueue(Job{Fn: mark(2, false)})

	queue.Drain(it, stack)

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Fatalf("expected FIFO order [1 2 3], got %v", order)
	}
}
