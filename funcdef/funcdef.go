// Package funcdef implements the compiled-function and compiled-module
// metadata described in the design sections 3.6 and 6.
package funcdef

import (
	"github.com/voskan/mjsvm/bytecode"
	"github.com/voskan/mjsvm/jit"
	"github.com/voskan/mjsvm/value"
)

// VarDef describes one local variable slot's static metadata (name constant
// index, used for debugging/disassembly; mjsvm carries no type information).
type VarDef struct {
	NameConst value.ConstIndex
	IsCaptured bool
}

// ClosureVarDef describes one entry of a function's closure-variable table:
// which outer-frame local slot a nested closure must box into a shared
// object.ClosureVar cell when it is instantiated.
type ClosureVarDef struct {
	OuterSlot int
	NameConst value.ConstIndex
}

// ExceptionEntry is one row of a function's exception table: the
// [StartPC, EndPC) range a try region covers, where its catch and finally
// handlers start, and which local slot the caught exception value is stored
// into on entry to the catch handler.
type ExceptionEntry struct {
	StartPC int
	EndPC int
	CatchPC int // -1 if this entry has no catch handler
	FinallyPC int // -1 if this entry has no finally handler
	CatchSlot int
}

// DebugEntry maps a PC range back to a source line/column, consulted lazily
// when reconstructing a stack trace.
type DebugEntry struct {
	StartPC int
	Line int
	Column int
}

// FunctionDef is the compiled, immutable representation of one JS function
// body. Bytecode, tables and hotness counter are set
// once by a builder and never mutated by the interpreter except Hotness,
// which is bumped on every call; loop back-edges are not counted.
type FunctionDef struct {
	Name string
	ParamCount int
	BytecodeTable *bytecode.Table
	VarDefTable []VarDef
	ClosureVarTable []ClosureVarDef
	ExceptionTable []ExceptionEntry
	DebugTable []DebugEntry
	Hotness *jit.HotnessCounter
	IsGenerator bool
	IsAsync bool
}

// New constructs an empty FunctionDef ready for a builder to emit into via
// BytecodeTable.
func New(name string, paramCount int) *FunctionDef {
	return &FunctionDef{
		Name: name,
		ParamCount: paramCount,
		BytecodeTable: bytecode.New(),
		Hotness: jit.NewHotnessCounter(),
	}
}

// FindExceptionEntry returns the innermost exception-table entry covering
// pc, or false if pc is not inside any try region. Exception entries are
// expected to be emitted innermost-last by a builder; mjsvm does not
// re-sort them, so ordering is the builder's responsibility.
func (f *FunctionDef) FindExceptionEntry(pc int) (ExceptionEntry, bool) {
	for i := len(f.ExceptionTable) - 1; i >= 0; i-- {
		e := f.ExceptionTable[i]
		if pc >= e.StartPC && pc < e.EndPC {
			return e, true
		}
	}
	return ExceptionEntry{}, false
}

// LineForPC resolves pc to a source line using the last DebugEntry whose
// StartPC does not exceed pc.
func (f *FunctionDef) LineForPC(pc int) (int, int, bool) {
	line, col, found := 0, 0, false
	for _, e := range f.DebugTable {
		if e.StartPC > pc {
			break
		}
		line, col, found = e.Line, e.Column, true
	}
	return line, col, found
}
