package classdef

import (
	"github.com/voskan/mjsvm/object"
	"github.com/voskan/mjsvm/value"
	"github.com/voskan/mjsvm/vm"
)

// installObjectStatics wires the Object built-ins
// (freeze/seal/preventExtensions/defineProperty) onto a constructor function
// object, built last since it needs every other ClassDef's Prototype object
// to already exist only indirectly (it operates on whatever object argument
// it's given, not a particular class).
func installObjectStatics(b *boot, t *Table) {
	ctorFn := b.nativeFunc(func(ctx any, argc uint32, frame any) value.Value {
		hc := frame.(*vm.HostCall)
		return object.ToValue(hc.Env.NewObject(object.ClassPlainObject))
	})
	ctor := object.FromValue(ctorFn)
	b.defineMethod(ctor, "freeze", objectFreeze)
	b.defineMethod(ctor, "seal", objectSeal)
	b.defineMethod(ctor, "preventExtensions", objectPreventExtensions)
	b.defineMethod(ctor, "defineProperty", objectDefineProperty)
	t.Object.Constructor = ctor
}

func argObject(hc *vm.HostCall, i int) *object.Object {
	return object.FromValue(hc.Arg(i))
}

func objectFreeze(ctx any, argc uint32, frame any) value.Value {
	hc := frame.(*vm.HostCall)
	o := argObject(hc, 0)
	if o == nil {
		return hc.Env.ThrowTypeError("Object.freeze called on a non-object")
	}
	o.Freeze()
	return hc.Arg(0)
}

func objectSeal(ctx any, argc uint32, frame any) value.Value {
	hc := frame.(*vm.HostCall)
	o := argObject(hc, 0)
	if o == nil {
		return hc.Env.ThrowTypeError("Object.seal called on a non-object")
	}
	o.Seal()
	return hc.Arg(0)
}

func objectPreventExtensions(ctx any, argc uint32, frame any) value.Value {
	hc := frame.(*vm.HostCall)
	o := argObject(hc, 0)
	if o == nil {
		return hc.Env.ThrowTypeError("Object.preventExtensions called on a non-object")
	}
	o.PreventExtensions()
	return hc.Arg(0)
}

// objectDefineProperty implements the data-descriptor subset of
// Object.defineProperty(obj, key, descriptor): value/writable/enumerable/
// configurable, or get/set for an accessor descriptor. Descriptor fields not
// present default the same way a fresh own property would.
func objectDefineProperty(ctx any, argc uint32, frame any) value.Value {
	hc := frame.(*vm.HostCall)
	o := argObject(hc, 0)
	if o == nil {
		return hc.Env.ThrowTypeError("Object.defineProperty called on a non-object")
	}
	keyStr := argString(hc, 1)
	keyIdx := hc.Env.GlobalConsts().InternString(keyStr, func() value.Value { return jsstringValue(keyStr) })
	desc := argObject(hc, 2)
	if desc == nil {
		return hc.Env.ThrowTypeError("Object.defineProperty requires a descriptor object")
	}

	nameKey := func(s string) value.ConstIndex {
		return hc.Env.GlobalConsts().InternString(s, func() value.Value { return jsstringValue(s) })
	}
	get := desc.GetProperty(nameKey("get")).Value
	set := desc.GetProperty(nameKey("set")).Value
	if !get.IsUndefined() || !set.IsUndefined() {
		enumerable := desc.GetProperty(nameKey("enumerable")).Value.Bool()
		configurable := desc.GetProperty(nameKey("configurable")).Value.Bool()
		o.DefineAccessorProperty(keyIdx, get, set, enumerable, configurable)
		return hc.Arg(0)
	}

	val := desc.GetProperty(nameKey("value")).Value
	o.SetProperty(keyIdx, val)
	if slot, ok := o.Shape.Find(keyIdx); ok && slot < len(o.Properties) {
		o.Properties[slot].Set(object.FlagWritable, desc.GetProperty(nameKey("writable")).Value.Bool())
		o.Properties[slot].Set(object.FlagEnumerable, desc.GetProperty(nameKey("enumerable")).Value.Bool())
		o.Properties[slot].Set(object.FlagConfigurable, desc.GetProperty(nameKey("configurable")).Value.Bool())
	}
	return hc.Arg(0)
}
