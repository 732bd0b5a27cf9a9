package vm

import "github.com/voskan/mjsvm/value"

// GeneratorHook lets Call construct a Generator/AsyncObject for a generator
// or async function invocation without this package importing package
// generator, which itself imports vm for Frame/Stack/Interpreter (the same
// interface-seam technique Environment uses to keep vm import-cycle-free).
// Whichever package wires an Interpreter together (normally
// runtime.Context's constructor) sets Interpreter.Generators once.
type GeneratorHook interface {
	// NewGenerator implements the generator-function half of the
	// call protocol: build the callee frame but do not run it, wrap it in a
	// Suspended generator object, and return that object as the call's
	// result.
	NewGenerator(it *Interpreter, stack *Stack, fnVal, thisVal value.Value, args []value.Value) Completion

	// NewAsync implements the design: build the callee frame, immediately
	// resume it once, and return the embedded result promise.
	NewAsync(it *Interpreter, stack *Stack, fnVal, thisVal value.Value, args []value.Value) Completion

	// CallNext dispatches the `KindGeneratorNext` bound-builtin sentinel
	// : thisVal is the generator/async-generator object itself
	// (the sentinel value carries no pointer of its own — it is installed
	// once on the shared prototype and relies on ordinary method-call `this`
	// binding to say which instance to advance).
	CallNext(it *Interpreter, stack *Stack, thisVal value.Value, args []value.Value) Completion
}
