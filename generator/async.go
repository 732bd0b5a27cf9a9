package generator

import (
	"github.com/voskan/mjsvm/object"
	"github.com/voskan/mjsvm/promise"
	"github.com/voskan/mjsvm/value"
	"github.com/voskan/mjsvm/vm"
)

// AsyncObject is the coroutine-shaped async function call: a
// parked callee frame exactly like a Generator's, plus the res_promise
// returned to the original caller. Unlike a Generator it is never driven by
// an external Next() — Await's re-entry thunks drive it themselves.
type AsyncObject struct {
	env vm.Environment
	it *vm.Interpreter
	queue *promise.JobQueue
	state State
	frame *vm.Frame
	saved []value.Value
	resPromise *object.Object
}

// resumeKind distinguishes the three ways an AsyncObject's frame resumes:
// the one-time initial run (nothing pushed — execution starts at PC 0), a
// fulfilled Await (the settled value pushed as the Await expression's
// result), and a rejected Await (thrown through the exception table at the
// suspension point instead of pushed).
type resumeKind uint8

const (
	resumeInitial resumeKind = iota
	resumeFulfilled
	resumeRejected
)

func newAsync(env vm.Environment, it *vm.Interpreter, queue *promise.JobQueue, frame *vm.Frame, saved []value.Value) *AsyncObject {
	a := &AsyncObject{env: env, it: it, queue: queue, state: Suspended, frame: frame, saved: saved}
	a.resPromise = promise.New(env)
	a.resPromise.Ext = a
	a.resPromise.ExtraRoots = a.iterateRoots
	return a
}

// iterateRoots mirrors Generator.iterateRoots: the saved stack slice and
// frame metadata are reachable only from here while the async body is
// paused at an Await, not through any ordinary object-graph edge.
func (a *AsyncObject) iterateRoots(visit func(*value.Value)) {
	if a.state == Closed {
		return
	}
	for i := range a.saved {
		visit(&a.saved[i])
	}
	if a.frame != nil {
		visit(&a.frame.FunctionVal)
		visit(&a.frame.ThisVal)
		visit(&a.frame.OuterThis)
	}
}

// start implements the "immediately resumes its body": runs the
// callee synchronously, right here, up to its first Await or completion,
// then returns res_promise to the original caller regardless of which
// happened.
func (a *AsyncObject) start(stack *vm.Stack) vm.Completion {
	a.resumeFrame(stack, value.Undefined, resumeInitial)
	return vm.Completion{Kind: vm.CompletionReturn, Value: object.ToValue(a.resPromise)}
}

// resumeFrame restores the parked frame, runs it until the next suspension
// or completion, and wires up whatever follows: another Await's.then, or
// settling res_promise. kind selects whether sent is pushed as an ordinary
// resume value (resumeFulfilled), raised through the frame's exception
// table at the point of suspension (resumeRejected — the design: "the
// failure thunk restores and then throws the reason at the suspension
// point"), or ignored entirely (resumeInitial: execution starts fresh at
// PC 0, which expects nothing pre-pushed).
func (a *AsyncObject) resumeFrame(stack *vm.Stack, sent value.Value, kind resumeKind) {
	stack.PushSuspendedFrame(a.frame, a.saved)
	a.saved = nil
	a.state = Executing

	var comp vm.Completion
	switch kind {
	case resumeRejected:
		comp = a.it.ResumeWithThrow(stack, a.frame, sent)
	case resumeFulfilled:
		stack.Push(sent)
		comp = a.it.Resume(stack, a.frame)
	default:
		comp = a.it.Resume(stack, a.frame)
	}

	switch comp.Kind {
	case vm.CompletionAwait:
		a.saved = stack.PopSuspendedFrame(a.frame)
		a.state = Suspended
		a.awaitOn(stack, comp.Value)
	case vm.CompletionException:
		a.finish(stack)
		promise.Reject(a.env, a.queue, a.resPromise, comp.Value)
	default: // CompletionReturn: AsyncReturn reached the frame boundary.
		a.finish(stack)
		promise.Resolve(a.env, a.queue, a.resPromise, comp.Value)
	}
}

// awaitOn implements the Await step: wrap a non-promise awaited
// value in an already-fulfilled promise, then attach the two re-entry
// thunks via Then.
func (a *AsyncObject) awaitOn(stack *vm.Stack, awaited value.Value) {
	p := object.FromValue(awaited)
	if p == nil || p.ClassID != object.ClassPromise || p.Promise == nil {
		p = promise.New(a.env)
		promise.Resolve(a.env, a.queue, p, awaited)
	}
	promise.Then(a.env, a.queue, p, a.reentryThunk(false), a.reentryThunk(true))
}

// reentryThunk builds the native callback Then invokes once the awaited
// promise settles: rejecting==false resumes normally with the fulfillment
// value, rejecting==true resumes by throwing the rejection reason at the
// Await point.
func (a *AsyncObject) reentryThunk(rejecting bool) value.Value {
	kind := resumeFulfilled
	if rejecting {
		kind = resumeRejected
	}
	obj := a.env.NewObject(object.ClassFunction)
	obj.Func = &object.FunctionData{Native: func(ctx any, argc uint32, frame any) value.Value {
		hc := frame.(*vm.HostCall)
		a.resumeFrame(hc.Stack, hc.Arg(0), kind)
		return value.Undefined
	}}
	return object.ToValue(obj)
}

func (a *AsyncObject) finish(stack *vm.Stack) {
	if a.state == Executing {
		stack.PopSuspendedFrame(a.frame)
	}
	a.state = Closed
	a.saved = nil
	vm.FinishSuspendedFrame(a.frame)
}
