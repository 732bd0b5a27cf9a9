package classdef

import (
	"github.com/voskan/mjsvm/object"
	"github.com/voskan/mjsvm/value"
	"github.com/voskan/mjsvm/vm"
)

// buildFunction installs the Function class: every ClassFunction
// object's default prototype (vm.makeClosure allocates plain ClassFunction
// objects, which resolve here through Environment.PrototypeFor). The
// "prototype" accessor is what actually realizes "every non-arrow/non-
// generator/non-async user function has its own prototype object with a
// constructor back-pointer" — it defers to
// vm.Interpreter.OwnPrototypeOf (vm/interpreter.go), which lazily builds and
// caches that per-function object on first read, from either this accessor
// or `new`. Function itself has no `new` form: functions are only ever
// produced by the Closure opcode.
func buildFunction(b *boot, t *Table, objectProto *object.Object) {
	proto := b.newObject(object.ClassFunction, objectProto)
	t.Function = &ClassDef{ID: object.ClassFunction, Name: "Function", NameKey: b.key("Function"), Prototype: proto}
	t.defs[object.ClassFunction] = t.Function

	b.defineAccessor(proto, "prototype", functionPrototypeGetter, nil)
}

func functionPrototypeGetter(ctx any, argc uint32, frame any) value.Value {
	hc := frame.(*vm.HostCall)
	fnObj := object.FromValue(hc.This)
	if fnObj == nil || fnObj.Func == nil {
		return hc.Env.ThrowTypeError("prototype read on a non-function")
	}
	if fnObj.Func.Def == nil || fnObj.Func.Def.IsGenerator || fnObj.Func.Def.IsAsync {
		return value.Undefined
	}
	return object.ToValue(hc.It.OwnPrototypeOf(fnObj))
}
