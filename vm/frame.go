// Package vm implements the bytecode interpreter: the operand stack, call
// frames, the dispatch loop, exception unwinding, and closure construction.
package vm

import (
	"github.com/voskan/mjsvm/funcdef"
	"github.com/voskan/mjsvm/object"
	"github.com/voskan/mjsvm/value"
)

// Frame is one activation record. Bottom is the index
// into the owning Stack where this frame's locals begin; PC is the next
// instruction to execute in FunctionDef.BytecodeTable.
type Frame struct {
	Bottom int
	FunctionVal value.Value
	FunctionDef *funcdef.FunctionDef
	ThisVal value.Value
	OuterThis value.Value
	PC int

	// ClosureVars holds, per VarDefTable slot that IsCaptured, the shared
	// object.ClosureVar cell a nested closure boxes into instead of a plain
	// stack slot ("Closure construction").
	ClosureVars []*object.ClosureVar

	// pendingAction replays a FinallyReturn/FinallyGoto across a finally
	// block's natural fallthrough.
	pending pendingAction

	// activeCatchEntry is the exception-table index of the catch region PC
	// currently sits inside, or -1. A fault while it is set skips straight
	// to that same entry's finally instead of re-entering catch.
	activeCatchEntry int
}

type pendingKind uint8

const (
	pendingNone pendingKind = iota
	pendingReturn
	pendingGoto
	pendingRethrow
)

type pendingAction struct {
	kind pendingKind
	value value.Value
	gotoPC int
}

// Local and SetLocal address a frame-relative variable slot on the shared
// operand stack.
func (f *Frame) Local(stack *Stack, slot int) value.Value {
	return stack.Values[f.Bottom+slot]
}

func (f *Frame) SetLocal(stack *Stack, slot int, v value.Value) {
	stack.Values[f.Bottom+slot] = v
}
