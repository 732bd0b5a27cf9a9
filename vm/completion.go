package vm

import "github.com/voskan/mjsvm/value"

// CompletionKind discriminates why Interpreter.runFrame stopped
// executing a frame.
type CompletionKind uint8

const (
	// CompletionReturn carries the frame's Return/GeneratorReturn/
	// AsyncReturn value.
	CompletionReturn CompletionKind = iota
	// CompletionException carries an uncaught exception that unwound past
	// every exception-table entry in the frame.
	CompletionException
	// CompletionYield carries a Yield opcode's operand; only ever produced
	// by a FunctionDef with IsGenerator set, and resumed by generator.Next.
	CompletionYield
	// CompletionAwait carries an Await opcode's operand; only ever produced
	// by a FunctionDef with IsAsync set, and resumed once the awaited
	// promise settles.
	CompletionAwait
)

// Completion is what runFrame returns instead of a bare Value, since a
// suspension (Yield/Await) must be distinguishable from an ordinary return
// without overloading Value itself.
type Completion struct {
	Kind CompletionKind
	Value value.Value
}
