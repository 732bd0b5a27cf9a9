// Package generator implements the Suspended/Executing/Closed generator
// state machine of the design section 4.7, and the async-function protocol of
// section 4.9 (async.go) built directly on top of it.
package generator

import (
	"github.com/voskan/mjsvm/jsstring"
	"github.com/voskan/mjsvm/object"
	"github.com/voskan/mjsvm/value"
	"github.com/voskan/mjsvm/vm"
)

// State is a generator's lifecycle stage.
type State uint8

const (
	Suspended State = iota
	Executing
	Closed
)

// Generator is the Go-side state backing a ClassGenerator object: a
// function value together with a parked callee Frame and its saved operand-
// stack slice. The *object.Object wired to JS carries no fields of its own
// for any of this (Object.Properties only ever holds JS-visible own
// properties); Object.ExtraRoots is set to g.iterateRoots so the saved
// slice stays reachable across a GC cycle while Suspended even though
// nothing walks an ordinary property edge to reach it (package object
// cannot import vm for a *vm.Frame field without an import cycle, so the
// frame itself lives only here).
type Generator struct {
	Obj *object.Object
	it *vm.Interpreter
	state State
	fnVal value.Value
	frame *vm.Frame
	saved []value.Value
	started bool // false until the first Next(); that resume must not push
	// a value onto the fresh frame's stack, since it starts executing at PC
	// 0 rather than resuming a paused `yield` expression.
}

// iterKey interns the property key a {value, done} iterator result object
// installs its two fields under.
func iterKey(env vm.Environment, s string) value.ConstIndex {
	return env.GlobalConsts().InternString(s, func() value.Value {
		return jsstring.ToValue(jsstring.New(s))
	})
}

func iterResult(env vm.Environment, val value.Value, done bool) value.Value {
	obj := env.NewObject(object.ClassPlainObject)
	obj.SetProperty(iterKey(env, "value"), val)
	obj.SetProperty(iterKey(env, "done"), value.Bool(done))
	return object.ToValue(obj)
}

// New builds a fresh Suspended generator wrapping fnVal's callee frame,
// which has been built (via Interpreter.StartSuspendedFrame) but not yet
// run — the design: calling a generator function does not execute any of
// its body until the first Next().
func New(env vm.Environment, it *vm.Interpreter, frame *vm.Frame, saved []value.Value, fnVal value.Value) *Generator {
	g := &Generator{it: it, state: Suspended, fnVal: fnVal, frame: frame, saved: saved}
	obj := env.NewObject(object.ClassGenerator)
	obj.Ext = g
	obj.ExtraRoots = g.iterateRoots
	g.Obj = obj
	return g
}

// iterateRoots visits every Value this generator currently keeps alive
// outside the ordinary object graph: the saved stack slice while Suspended,
// and the frame/function metadata in every non-Closed state (Executing's
// saved slice is empty since it is sitting on the live Stack instead, which
// Stack.IterateRoots already covers, but the frame's own FunctionVal/
// ThisVal/OuterThis are not otherwise reachable and must still be visited).
func (g *Generator) iterateRoots(visit func(*value.Value)) {
	if g.state == Closed {
		return
	}
	visit(&g.fnVal)
	for i := range g.saved {
		visit(&g.saved[i])
	}
	if g.frame != nil {
		visit(&g.frame.FunctionVal)
		visit(&g.frame.ThisVal)
		visit(&g.frame.OuterThis)
	}
}

// Next implements the Next(): restore the saved stack slice and
// PC, resume until Yield (suspend and return {value, done: false}) or
// GeneratorReturn/an uncaught throw (transition to Closed). sent becomes
// the value the paused `yield` expression evaluates to, per the ordinary
// generator protocol (`x = yield foo()` receives whatever the caller passed
// to the next Next() call).
func (g *Generator) Next(env vm.Environment, stack *vm.Stack, sent value.Value) vm.Completion {
	if g.state == Closed {
		return vm.Completion{Kind: vm.CompletionReturn, Value: iterResult(env, value.Undefined, true)}
	}

	stack.PushSuspendedFrame(g.frame, g.saved)
	g.saved = nil
	g.state = Executing
	if g.started {
		// Resuming a paused `yield` expression: sent becomes its value.
		// The very first Next() instead starts execution at PC 0, which
		// expects nothing pre-pushed.
		stack.Push(sent)
	}
	g.started = true

	comp := g.it.Resume(stack, g.frame)
	switch comp.Kind {
	case vm.CompletionYield:
		g.saved = stack.PopSuspendedFrame(g.frame)
		g.state = Suspended
		return vm.Completion{Kind: vm.CompletionReturn, Value: iterResult(env, comp.Value, false)}
	case vm.CompletionException:
		g.close(stack)
		return comp
	default: // CompletionReturn: GeneratorReturn reached the frame boundary.
		g.close(stack)
		return vm.Completion{Kind: vm.CompletionReturn, Value: iterResult(env, comp.Value, true)}
	}
}

// Close moves a Suspended generator to Closed: once Closed, Next() always
// returns {undefined, true} without resuming anything. Nothing calls Close
// automatically when the generator object is collected; no finalizer is
// installed for it. Closing a generator that is
// already Closed or mid-resume (Executing, i.e. Close called re-entrantly
// from within the generator's own body) is a no-op.
func (g *Generator) Close(stack *vm.Stack) {
	if g.state != Suspended {
		return
	}
	g.close(stack)
}

func (g *Generator) close(stack *vm.Stack) {
	if g.state == Executing {
		stack.PopSuspendedFrame(g.frame)
	}
	g.state = Closed
	g.saved = nil
	vm.FinishSuspendedFrame(g.frame)
}

// FromValue returns the Generator backing v's ClassGenerator object, or nil
// if v is not one (the built-in `next` binding uses this to recover Go-side
// state from the `this` a HostCall hands it).
func FromValue(v value.Value) *Generator {
	obj := object.FromValue(v)
	if obj == nil {
		return nil
	}
	g, _ := obj.Ext.(*Generator)
	return g
}
