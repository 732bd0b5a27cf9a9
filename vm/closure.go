package vm

import (
	"github.com/voskan/mjsvm/funcdef"
	"github.com/voskan/mjsvm/object"
	"github.com/voskan/mjsvm/value"
)

// wireImportedClosureVars places the cells a closure captured from its
// enclosing frame into this frame's own locals, so the callee's bytecode
// can read/write them with the ordinary VLoad/VStore opcodes. By
// convention the compiler lays out a captured function's VarDefTable as
// [params][ordinary locals][imported cells, same order as
// FunctionDef.ClosureVarTable] — the last len(cells) slots — letting the
// call protocol's "arguments become locals 0..argc-1" rule and imported
// captures coexist without a dedicated opcode.
func wireImportedClosureVars(stack *Stack, frame *Frame, def *funcdef.FunctionDef, cells []*object.ClosureVar) {
	if len(cells) == 0 {
		return
	}
	base := len(def.VarDefTable) - len(cells)
	for i, cv := range cells {
		frame.SetLocal(stack, base+i, object.WrapValue(cv))
	}
}

// boxCapturedLocals runs once, right after a new frame's locals are laid
// out (including any imported cells wireImportedClosureVars already placed),
// replacing every remaining VarDefTable slot marked IsCaptured with a
// freshly owned object.ClosureVar cell wrapping that slot's current value
// ("Closure construction": "take (and promote if needed) the
// parent frame's variable to a ClosureVar cell"). A slot already holding an
// imported cell is left alone — ClosureVar never nests, and the point of
// importing is to share the parent's identical cell, not box a new one
// around it.
func boxCapturedLocals(stack *Stack, frame *Frame, def *funcdef.FunctionDef) {
	if len(def.VarDefTable) == 0 {
		return
	}
	frame.ClosureVars = make([]*object.ClosureVar, len(def.VarDefTable))
	for slot, v := range def.VarDefTable {
		if !v.IsCaptured {
			continue
		}
		if existing := object.ClosureVarFromValue(frame.Local(stack, slot)); existing != nil {
			frame.ClosureVars[slot] = existing
			continue
		}
		cv := object.NewClosureVar(frame.Local(stack, slot))
		frame.ClosureVars[slot] = cv
		frame.SetLocal(stack, slot, object.WrapValue(cv))
	}
}

// releaseCapturedLocals drops this frame's ownership of every cell it
// boxed, freeing a cell immediately if no Closure built over this call
// retained it.
func releaseCapturedLocals(frame *Frame) {
	for _, cv := range frame.ClosureVars {
		if cv != nil {
			cv.Release()
		}
	}
}

// loadVar and storeVar are VLoad/VStore's indirection point: a slot the
// compiler marked captured holds a KindClosureVar Value instead of the raw
// value, so every read/write must go through the cell.
func loadVar(stack *Stack, frame *Frame, slot int) value.Value {
	raw := frame.Local(stack, slot)
	if cv := object.ClosureVarFromValue(raw); cv != nil {
		return cv.Get()
	}
	return raw
}

func storeVar(stack *Stack, frame *Frame, slot int, v value.Value) {
	raw := frame.Local(stack, slot)
	if cv := object.ClosureVarFromValue(raw); cv != nil {
		cv.Set(v)
		return
	}
	frame.SetLocal(stack, slot, v)
}

// makeClosure implements the Closure opcode: read childDef's closure-var
// table and, for each entry, retain the already-boxed cell the enclosing
// frame owns for OuterSlot, then allocate a ClassFunction object exposing
// those cells ("Closure construction"). The enclosing frame's
// current `this` is always recorded as the lexical this; GetOuterThis is
// the only opcode that ever reads it, so recording it unconditionally costs
// nothing for non-arrow functions.
func (it *Interpreter) makeClosure(stack *Stack, frame *Frame, childDef *funcdef.FunctionDef) value.Value {
	fnObj := it.Env.NewObject(object.ClassFunction)
	cells := make([]*object.ClosureVar, len(childDef.ClosureVarTable))
	for i, entry := range childDef.ClosureVarTable {
		cv := frame.ClosureVars[entry.OuterSlot]
		cells[i] = cv.Retain()
	}
	fnObj.Func = &object.FunctionData{
		Def: childDef,
		ClosureVars: cells,
		LexicalThis: frame.ThisVal,
		HasLexicalThis: true,
	}
	return object.ToValue(fnObj)
}
