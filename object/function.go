package object

import (
	"github.com/voskan/mjsvm/funcdef"
	"github.com/voskan/mjsvm/value"
)

// FunctionData holds the parts of a function object a plain data Object has
// no use for: which compiled definition (or host callable) FunctionCall/New
// invoke, the closure cells captured from an enclosing frame, and the bound
// lexical this an arrow function records at construction. It hangs off
// Object.Func instead of being modeled as its own value.Kind, since function
// objects are ordinary Objects distinguished by ClassID (ClassFunction);
// only FunctionCall/New and Closure ever need to look here.
type FunctionData struct {
	Def *funcdef.FunctionDef // nil for a native function
	Native value.CppFunction // nil for an interpreted function
	ClosureVars []*ClosureVar
	LexicalThis value.Value
	HasLexicalThis bool

	// OwnPrototype is this function's own `.prototype` object, created
	// lazily the first time the function is used as a constructor or its
	// prototype property is read. nil until then; classdef and vm.New both
	// go through the same lazy accessor rather than each keeping their own
	// copy, so a later property read sees the identical object `new` set an
	// instance's Proto to.
	OwnPrototype *Object
}
