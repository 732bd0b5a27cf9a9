package vm

import "github.com/voskan/mjsvm/value"

// HostCall is the `frame any` argument every value.CppFunction trampoline
// receives ("Host functions ... are invoked via a trampoline:
// the host reads arguments through the frame, pushes its result, returns").
// Native bindings type-assert the opaque argument back to *HostCall.
type HostCall struct {
	Env Environment
	This value.Value
	Args []value.Value
	IsNew bool
	NewThis value.Value // set only when IsNew; the object `new` pre-allocated

	// It and Stack let a native binding call back into interpreted JS (a
	// promise reaction, Array.prototype.forEach's callback,...) the same
	// way the interpreter itself would, via It.Call(Stack, fnVal,...).
	It *Interpreter
	Stack *Stack
}

// Arg returns the i'th argument, or Undefined past the end (the
// "fewer arguments than params" boundary behavior, extended to natives).
func (h *HostCall) Arg(i int) value.Value {
	if i < 0 || i >= len(h.Args) {
		return value.Undefined
	}
	return h.Args[i]
}
