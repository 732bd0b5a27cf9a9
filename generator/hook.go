package generator

import (
	"github.com/voskan/mjsvm/object"
	"github.com/voskan/mjsvm/promise"
	"github.com/voskan/mjsvm/value"
	"github.com/voskan/mjsvm/vm"
)

// Hook implements vm.GeneratorHook, dispatching a generator/async
// FunctionDef's call and the KindGeneratorNext bound-builtin sentinel back
// into this package. Wired onto Interpreter.Generators once, by whichever
// package constructs the Interpreter (normally runtime.Context).
type Hook struct {
	Env   vm.Environment
	Queue *promise.JobQueue
}

func (h *Hook) NewGenerator(it *vm.Interpreter, stack *vm.Stack, fnVal, thisVal value.Value, args []value.Value) vm.Completion {
	frame, saved, errComp := it.StartSuspendedFrame(stack, fnVal, thisVal, args)
	if errComp.Kind == vm.CompletionException {
		return errComp
	}
	g := New(h.Env, it, frame, saved, fnVal)
	return vm.Completion{Kind: vm.CompletionReturn, Value: object.ToValue(g.Obj)}
}

func (h *Hook) NewAsync(it *vm.Interpreter, stack *vm.Stack, fnVal, thisVal value.Value, args []value.Value) vm.Completion {
	frame, saved, errComp := it.StartSuspendedFrame(stack, fnVal, thisVal, args)
	if errComp.Kind == vm.CompletionException {
		return errComp
	}
	a := newAsync(h.Env, it, h.Queue, frame, saved)
	return a.start(stack)
}

func (h *Hook) CallNext(it *vm.Interpreter, stack *vm.Stack, thisVal value.Value, args []value.Value) vm.Completion {
	g := FromValue(thisVal)
	if g == nil {
		return vm.Completion{Kind: vm.CompletionException, Value: h.Env.ThrowTypeError("next called on a non-generator")}
	}
	sent := value.Undefined
	if len(args) > 0 {
		sent = args[0]
	}
	return g.Next(h.Env, stack, sent)
}
