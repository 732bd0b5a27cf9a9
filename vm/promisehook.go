package vm

import (
	"github.com/voskan/mjsvm/object"
	"github.com/voskan/mjsvm/value"
)

// PromiseHook lets Call invoke the two bound-builtin sentinel kinds the design
// 3.1 lists (`PromiseResolve(ptr)` / `PromiseReject(ptr)`) without this
// package importing package promise, which imports vm for Frame/Stack/
// Interpreter. These sentinels are what a Promise constructor's executor
// receives as its resolve/reject arguments : a flat Value
// carrying the target promise's pointer directly, avoiding an allocated
// function Object for the single most common native callable pattern in the
// whole runtime.
type PromiseHook interface {
	Resolve(it *Interpreter, stack *Stack, p *object.Object, arg value.Value) Completion
	Reject(it *Interpreter, stack *Stack, p *object.Object, arg value.Value) Completion
}
