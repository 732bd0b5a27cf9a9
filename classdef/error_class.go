package classdef

import (
	"github.com/voskan/mjsvm/jserror"
	"github.com/voskan/mjsvm/object"
	"github.com/voskan/mjsvm/value"
	"github.com/voskan/mjsvm/vm"
)

// buildError installs the ClassError prototype and the plain `Error`
// constructor, a thin native wrapper around
// jserror.New's already-implemented name/message/stack construction so
// `new TypeError("x")` from user code and an engine-internal
// Environment.ThrowTypeError fault produce indistinguishable objects. The
// TypeError/RangeError/ReferenceError/SyntaxError globals are bound by the
// runtime package through ErrorCtor.
func buildError(b *boot, t *Table, objectProto *object.Object) {
	proto := b.newObject(object.ClassPlainObject, objectProto)
	proto.SetProperty(b.key("name"), jsstringValue("Error"))
	proto.SetProperty(b.key("message"), jsstringValue(""))
	t.Error = &ClassDef{ID: object.ClassError, Name: "Error", NameKey: b.key("Error"), Prototype: proto}
	t.defs[object.ClassError] = t.Error

	t.Error.Constructor = object.FromValue(b.nativeFunc(errorCtor(jserror.GenericError)))
}

// errorCtor builds the native constructor for one error Kind, used both for
// the plain `Error` constructor (with kind GenericError, named "Error") and
// wired separately by runtime.Context for
// TypeError/RangeError/ReferenceError/SyntaxError (see runtime package).
func errorCtor(kind jserror.Kind) value.CppFunction {
	return func(ctx any, argc uint32, frame any) value.Value {
		hc := frame.(*vm.HostCall)
		msg := ""
		if s := argString(hc, 0); s != "" {
			msg = s
		}
		v := jserror.New(hc.Env, hc.Stack.Frames(), kind, "%s", msg)
		return v.ClearException() // `new Error(...)` builds a value; it only becomes a live exception via `throw`
	}
}

// ErrorCtor exports errorCtor for runtime.Context to wire the other four
// kinds' named globals (TypeError, RangeError, ReferenceError, SyntaxError)
// onto the same ClassDef.Prototype chain as Error.
func ErrorCtor(kind jserror.Kind) value.CppFunction {
	return errorCtor(kind)
}
