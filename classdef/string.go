package classdef

import (
	"strings"

	"github.com/voskan/mjsvm/jsstring"
	"github.com/voskan/mjsvm/object"
	"github.com/voskan/mjsvm/value"
	"github.com/voskan/mjsvm/vm"
)

// buildString installs the String class: a prototype every
// KindString primitive resolves methods against via
// Interpreter.getBoxedProperty (vm/interpreter.go), never an instantiable
// constructor of its own (mjsvm has no boxed String object type, only the
// primitive).
func buildString(b *boot, t *Table, objectProto *object.Object) {
	proto := b.newObject(object.ClassPlainObject, objectProto)
	t.String = &ClassDef{ID: object.ClassString, Name: "String", NameKey: b.key("String"), Prototype: proto}
	t.defs[object.ClassString] = t.String

	b.defineAccessor(proto, "length", stringLengthGetter, nil)
	b.defineMethod(proto, "split", stringSplit)
	b.defineMethod(proto, "substring", stringSubstring)
	b.defineMethod(proto, "indexOf", stringIndexOf)
	b.defineMethod(proto, "toLowerCase", stringToLowerCase)
	b.defineMethod(proto, "toUpperCase", stringToUpperCase)
	b.defineMethod(proto, "trim", stringTrim)
	b.defineMethod(proto, "replace", stringReplace)
}

// thisString recovers the Go string the receiver carries. hc.This is always
// the primitive string Value itself (getBoxedProperty never boxes it into an
// Object), so this simply unwraps it.
func thisString(hc *vm.HostCall) (string, bool) {
	s := jsstring.FromValue(hc.This)
	if s == nil {
		return "", false
	}
	return s.Data, true
}

func argString(hc *vm.HostCall, i int) string {
	if s := jsstring.FromValue(hc.Arg(i)); s != nil {
		return s.Data
	}
	return ""
}

func stringLengthGetter(ctx any, argc uint32, frame any) value.Value {
	hc := frame.(*vm.HostCall)
	s, ok := thisString(hc)
	if !ok {
		return hc.Env.ThrowTypeError("String.prototype.length called on a non-string")
	}
	return value.Int64(int64(len([]rune(s))))
}

func stringSplit(ctx any, argc uint32, frame any) value.Value {
	hc := frame.(*vm.HostCall)
	s, ok := thisString(hc)
	if !ok {
		return hc.Env.ThrowTypeError("String.prototype.split called on a non-string")
	}
	var parts []string
	if hc.Arg(0).IsUndefined() {
		parts = []string{s}
	} else {
		parts = strings.Split(s, argString(hc, 0))
	}
	arr := NewArray(hc.Env)
	for i, p := range parts {
		arraySet(hc.Env, arr, i, jsstringValue(p))
	}
	arr.ArrayLength = len(parts)
	return object.ToValue(arr)
}

func stringSubstring(ctx any, argc uint32, frame any) value.Value {
	hc := frame.(*vm.HostCall)
	s, ok := thisString(hc)
	if !ok {
		return hc.Env.ThrowTypeError("String.prototype.substring called on a non-string")
	}
	r := []rune(s)
	start := clampIndex(hc.Arg(0), 0, len(r))
	end := len(r)
	if !hc.Arg(1).IsUndefined() {
		end = clampIndex(hc.Arg(1), 0, len(r))
	}
	if start > end {
		start, end = end, start
	}
	return jsstringValue(string(r[start:end]))
}

func clampIndex(v value.Value, lo, hi int) int {
	n, ok := v.Number()
	if !ok {
		return lo
	}
	i := int(n)
	if i < lo {
		return lo
	}
	if i > hi {
		return hi
	}
	return i
}

func stringIndexOf(ctx any, argc uint32, frame any) value.Value {
	hc := frame.(*vm.HostCall)
	s, ok := thisString(hc)
	if !ok {
		return hc.Env.ThrowTypeError("String.prototype.indexOf called on a non-string")
	}
	return value.Int64(int64(strings.Index(s, argString(hc, 0))))
}

func stringToLowerCase(ctx any, argc uint32, frame any) value.Value {
	hc := frame.(*vm.HostCall)
	s, ok := thisString(hc)
	if !ok {
		return hc.Env.ThrowTypeError("String.prototype.toLowerCase called on a non-string")
	}
	return jsstringValue(strings.ToLower(s))
}

func stringToUpperCase(ctx any, argc uint32, frame any) value.Value {
	hc := frame.(*vm.HostCall)
	s, ok := thisString(hc)
	if !ok {
		return hc.Env.ThrowTypeError("String.prototype.toUpperCase called on a non-string")
	}
	return jsstringValue(strings.ToUpper(s))
}

func stringTrim(ctx any, argc uint32, frame any) value.Value {
	hc := frame.(*vm.HostCall)
	s, ok := thisString(hc)
	if !ok {
		return hc.Env.ThrowTypeError("String.prototype.trim called on a non-string")
	}
	return jsstringValue(strings.TrimSpace(s))
}

func stringReplace(ctx any, argc uint32, frame any) value.Value {
	hc := frame.(*vm.HostCall)
	s, ok := thisString(hc)
	if !ok {
		return hc.Env.ThrowTypeError("String.prototype.replace called on a non-string")
	}
	return jsstringValue(strings.Replace(s, argString(hc, 0), argString(hc, 1), 1))
}
