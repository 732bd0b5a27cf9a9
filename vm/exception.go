package vm

import "github.com/voskan/mjsvm/value"

// findExceptionEntry returns the innermost exception-table index covering
// pc, exactly like funcdef.FunctionDef.FindExceptionEntry but additionally
// returning the index so dispatchFault can recognize "this same entry" on a
// later fault (catch-to-finally fallthrough rule).
func (f *Frame) findExceptionEntry(pc int) (int, bool) {
	table := f.FunctionDef.ExceptionTable
	for i := len(table) - 1; i >= 0; i-- {
		e := table[i]
		if pc >= e.StartPC && pc < e.EndPC {
			return i, true
		}
	}
	return -1, false
}

// dispatchFault implements the per-frame unwind step for a Throw
// (or any opcode that set the exception bit) at the frame's current PC. It
// returns false when no exception-table entry in this frame covers the
// fault, meaning the caller must unwind one frame and retry there (rule 3).
func (it *Interpreter) dispatchFault(stack *Stack, frame *Frame, exc value.Value) bool {
	idx, ok := frame.findExceptionEntry(frame.PC)
	if !ok {
		return false
	}
	entry := frame.FunctionDef.ExceptionTable[idx]

	if entry.CatchPC >= 0 && frame.activeCatchEntry != idx {
		// Rule 1: truncate the operand stack back to the frame's locals
		// (whatever the try body pushed is discarded) and bind the cleared
		// exception into catch_err_var.
		stack.Values = stack.Values[:frame.Bottom+len(frame.FunctionDef.VarDefTable)]
		frame.SetLocal(stack, entry.CatchSlot, exc.ClearException())
		frame.PC = entry.CatchPC
		frame.activeCatchEntry = idx
		return true
	}

	if entry.FinallyPC >= 0 {
		// Rule 2: a fault inside the try body with no catch, or a fault
		// inside the catch body itself, both fall through to finally. The
		// pending re-throw replays once FinallyReturn/FinallyGoto is
		// reached, per the invariant "a fault within finally itself
		// replaces the pending action".
		stack.Values = stack.Values[:frame.Bottom+len(frame.FunctionDef.VarDefTable)]
		frame.pending = pendingAction{kind: pendingRethrow, value: exc}
		frame.PC = entry.FinallyPC
		frame.activeCatchEntry = -1
		return true
	}

	return false
}

// interceptReturn redirects a return completion into the innermost enclosing
// finally, if frame.PC currently sits inside a try/catch region that has
// one, instead of letting the return leave the frame directly. It mirrors
// dispatchFault's rule 2, but for a normal return rather than a thrown
// exception: a bare `return` must still run any finally in scope, replaying
// the return value once the finally's own OpFinallyReturn is reached. It
// reports whether it redirected control; the caller must return immediately
// when it did not.
func (it *Interpreter) interceptReturn(stack *Stack, frame *Frame, retVal value.Value) bool {
	idx, ok := frame.findExceptionEntry(frame.PC)
	if !ok {
		return false
	}
	entry := frame.FunctionDef.ExceptionTable[idx]
	if entry.FinallyPC < 0 {
		return false
	}
	stack.Values = stack.Values[:frame.Bottom+len(frame.FunctionDef.VarDefTable)]
	frame.pending = pendingAction{kind: pendingReturn, value: retVal}
	frame.PC = entry.FinallyPC
	frame.activeCatchEntry = -1
	return true
}
