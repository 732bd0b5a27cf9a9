package promise

import (
	"github.com/voskan/mjsvm/object"
	"github.com/voskan/mjsvm/value"
	"github.com/voskan/mjsvm/vm"
)

// Hook implements vm.PromiseHook, dispatching the KindPromiseResolve/
// KindPromiseReject bound-builtin sentinels a Promise executor receives
// back into this package's Resolve/Reject. Wired onto
// Interpreter.Promises once, by whichever package constructs the
// Interpreter (normally runtime.Context).
type Hook struct {
	Env vm.Environment
	Queue *JobQueue
}

func (h *Hook) Resolve(it *vm.Interpreter, stack *vm.Stack, p *object.Object, arg value.Value) vm.Completion {
	Resolve(h.Env, h.Queue, p, arg)
	return vm.Completion{Kind: vm.CompletionReturn, Value: value.Undefined}
}

func (h *Hook) Reject(it *vm.Interpreter, stack *vm.Stack, p *object.Object, arg value.Value) vm.Completion {
	Reject(h.Env, h.Queue, p, arg)
	return vm.Completion{Kind: vm.CompletionReturn, Value: value.Undefined}
}
