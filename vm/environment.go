package vm

import (
	"github.com/voskan/mjsvm/constpool"
	"github.com/voskan/mjsvm/gcheap"
	"github.com/voskan/mjsvm/object"
	"github.com/voskan/mjsvm/shape"
	"github.com/voskan/mjsvm/value"
)

// Environment is everything Interpreter needs from the owning Context
// besides the operand stack itself. It is an interface rather than a
// concrete *runtime.Context so this package never imports runtime, module,
// classdef, promise or generator — every one of those imports vm for Frame/
// Stack, and Go does not allow import cycles.
type Environment interface {
	// Heap returns the Context's GC heap, consulted by NewObject and by
	// every allocating opcode (Closure, New, string concatenation).
	Heap() *gcheap.Heap

	// GlobalConsts and LocalConsts back the CLoad family and every
	// const-index-keyed opcode (PropertyLoad/Store, GetGlobal, GetModule,
	// GetModuleAsync, Closure).
	GlobalConsts() *constpool.Global
	LocalConsts() *constpool.Local

	// EmptyShape is the process-wide transition-tree root new objects are
	// rooted at.
	EmptyShape() *shape.Shape

	// PrototypeFor returns the default prototype object.New should use for
	// classID when no user __proto__ applies.
	PrototypeFor(classID object.ClassID) *object.Object

	// NewObject allocates and registers a fresh heap object of classID with
	// its default prototype, via Heap().Allocate.
	NewObject(classID object.ClassID) *object.Object

	// GlobalThis is the Value bound to `this` at a module's top level.
	GlobalThis() value.Value

	// GetModule and GetModuleAsync implement the Module opcode family;
	// pathConst names the module specifier in the global constant pool.
	GetModule(pathConst value.ConstIndex) value.Value
	GetModuleAsync(pathConst value.ConstIndex) value.Value

	// ThrowTypeError, ThrowRangeError and ThrowReferenceError construct the
	// corresponding Error object, already flagged with Value.WithException,
	// for opcodes that fault (calling a non-function, array index out of
	// range coercion failures, reading an unresolved global).
	ThrowTypeError(format string, args ...any) value.Value
	ThrowRangeError(format string, args ...any) value.Value
	ThrowReferenceError(format string, args ...any) value.Value
}
