package promise

import (
	"unsafe"

	"github.com/voskan/mjsvm/object"
	"github.com/voskan/mjsvm/value"
	"github.com/voskan/mjsvm/vm"
)

// New allocates a fresh, Pending ClassPromise object.
func New(env vm.Environment) *object.Object {
	obj := env.NewObject(object.ClassPromise)
	obj.Promise = &object.PromiseData{State: object.PromisePending}
	return obj
}

// fromValue returns v's object if v is a promise object (ClassPromise with
// its PromiseData installed), nil otherwise.
func fromValue(v value.Value) *object.Object {
	obj := object.FromValue(v)
	if obj == nil || obj.ClassID != object.ClassPromise || obj.Promise == nil {
		return nil
	}
	return obj
}

// nativeFunc wraps fn as a proper ClassFunction object the way every other
// callable in the system is represented (object.FunctionData.Native), since
// Interpreter.Call resolves fnVal through object.FromValue and requires
// fnObj.Func to be set — a bare value.Cpp value is not itself callable.
func nativeFunc(env vm.Environment, fn value.CppFunction) value.Value {
	obj := env.NewObject(object.ClassFunction)
	obj.Func = &object.FunctionData{Native: fn}
	return object.ToValue(obj)
}

// NewWithExecutor implements the Promise constructor: allocate a
// Pending promise, then call executor immediately with the two
// KindPromiseResolve/KindPromiseReject bound-builtin sentinels, each
// carrying this promise's own pointer rather than an allocated
// function object. An uncaught throw from the executor itself rejects the
// promise, matching the ordinary `new Promise` executor contract.
func NewWithExecutor(env vm.Environment, it *vm.Interpreter, stack *vm.Stack, queue *JobQueue, executor value.Value) *object.Object {
	p := New(env)
	resolveFn := value.PromiseResolve(unsafe.Pointer(p))
	rejectFn := value.PromiseReject(unsafe.Pointer(p))

	comp := it.Call(stack, executor, value.Undefined, []value.Value{resolveFn, rejectFn})
	if comp.Kind == vm.CompletionException {
		Reject(env, queue, p, comp.Value)
	}
	return p
}

// Resolve implements the Resolve(value): idempotent once settled,
// unwraps a settled inner promise synchronously, attaches to a pending inner
// promise, and detects resolving a promise with itself.
func Resolve(env vm.Environment, queue *JobQueue, p *object.Object, val value.Value) {
	if p.Promise.State != object.PromisePending {
		return
	}
	if inner := fromValue(val); inner != nil {
		if inner == p {
			Reject(env, queue, p, env.ThrowTypeError("Cycle detected"))
			return
		}
		switch inner.Promise.State {
		case object.PromisePending:
			inner.Promise.OnFulfill = append(inner.Promise.OnFulfill, resolveThunk(env, queue, p))
			inner.Promise.OnReject = append(inner.Promise.OnReject, rejectThunk(env, queue, p))
		case object.PromiseFulfilled:
			Resolve(env, queue, p, inner.Promise.Result)
		case object.PromiseRejected:
			Reject(env, queue, p, inner.Promise.Result)
		}
		return
	}

	p.Promise.State = object.PromiseFulfilled
	p.Promise.Result = val
	for _, fn := range p.Promise.OnFulfill {
		queue.Enqueue(Job{Fn: fn, This: value.Undefined, Argv: []value.Value{val}})
	}
	p.Promise.OnFulfill = nil
	p.Promise.OnReject = nil
}

// Reject implements the Reject(reason): symmetric to Resolve,
// marking reason with the exception bit before handing it to callbacks.
func Reject(env vm.Environment, queue *JobQueue, p *object.Object, reason value.Value) {
	if p.Promise.State != object.PromisePending {
		return
	}
	reason = reason.WithException()
	p.Promise.State = object.PromiseRejected
	p.Promise.Result = reason
	for _, fn := range p.Promise.OnReject {
		queue.Enqueue(Job{Fn: fn, This: value.Undefined, Argv: []value.Value{reason}})
	}
	p.Promise.OnFulfill = nil
	p.Promise.OnReject = nil
}

// resolveThunk and rejectThunk build the native callback Resolve attaches to
// a pending inner promise so that when it eventually settles, p follows it.
func resolveThunk(env vm.Environment, queue *JobQueue, p *object.Object) value.Value {
	return nativeFunc(env, func(ctx any, argc uint32, frame any) value.Value {
		hc := frame.(*vm.HostCall)
		Resolve(env, queue, p, hc.Arg(0))
		return value.Undefined
	})
}

func rejectThunk(env vm.Environment, queue *JobQueue, p *object.Object) value.Value {
	return nativeFunc(env, func(ctx any, argc uint32, frame any) value.Value {
		hc := frame.(*vm.HostCall)
		Reject(env, queue, p, hc.Arg(0))
		return value.Undefined
	})
}

// Then implements the Then(on_fulfilled, on_rejected): creates a
// child promise p2, registers reaction thunks that invoke the user callback
// (or default identity/re-throw when one is missing) and settle p2 with its
// result, and either enqueues them immediately (p already settled) or
// appends to the matching pending list.
func Then(env vm.Environment, queue *JobQueue, p *object.Object, onFulfilled, onRejected value.Value) *object.Object {
	p2 := New(env)

	fulfillReaction := nativeFunc(env, func(ctx any, argc uint32, frame any) value.Value {
		hc := frame.(*vm.HostCall)
		arg := hc.Arg(0)
		if onFulfilled.IsUndefined() {
			Resolve(env, queue, p2, arg)
			return value.Undefined
		}
		runReaction(hc, env, queue, p2, onFulfilled, arg)
		return value.Undefined
	})

	rejectReaction := nativeFunc(env, func(ctx any, argc uint32, frame any) value.Value {
		hc := frame.(*vm.HostCall)
		arg := hc.Arg(0)
		if onRejected.IsUndefined() {
			Reject(env, queue, p2, arg)
			return value.Undefined
		}
		runReaction(hc, env, queue, p2, onRejected, arg)
		return value.Undefined
	})

	switch p.Promise.State {
	case object.PromisePending:
		p.Promise.OnFulfill = append(p.Promise.OnFulfill, fulfillReaction)
		p.Promise.OnReject = append(p.Promise.OnReject, rejectReaction)
	case object.PromiseFulfilled:
		queue.Enqueue(Job{Fn: fulfillReaction, This: value.Undefined, Argv: []value.Value{p.Promise.Result}})
	case object.PromiseRejected:
		queue.Enqueue(Job{Fn: rejectReaction, This: value.Undefined, Argv: []value.Value{p.Promise.Result}})
	}

	return p2
}

// runReaction invokes the user's then/catch callback via the interpreter
// reachable through hc (see vm.HostCall's It/Stack fields), resolving p2
// with its return value or rejecting p2 with whatever it throws.
func runReaction(hc *vm.HostCall, env vm.Environment, queue *JobQueue, p2 *object.Object, callback value.Value, arg value.Value) {
	comp := hc.It.Call(hc.Stack, callback, value.Undefined, []value.Value{arg})
	if comp.Kind == vm.CompletionException {
		Reject(env, queue, p2, comp.Value)
		return
	}
	Resolve(env, queue, p2, comp.Value)
}
