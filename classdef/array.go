package classdef

import (
	"math"
	"strconv"

	"github.com/voskan/mjsvm/object"
	"github.com/voskan/mjsvm/value"
	"github.com/voskan/mjsvm/vm"
)

// indexKey interns index's stringified form, the own-property key an array
// element lives under.
func indexKey(env vm.Environment, index int) value.ConstIndex {
	s := strconv.Itoa(index)
	return env.GlobalConsts().InternString(s, func() value.Value { return jsstringValue(s) })
}

func arrayGet(env vm.Environment, arr *object.Object, index int) value.Value {
	return arr.GetProperty(indexKey(env, index)).Value
}

func arraySet(env vm.Environment, arr *object.Object, index int, v value.Value) {
	arr.SetProperty(indexKey(env, index), v)
}

// NewArray allocates a fresh, empty ClassArray object. Exported for
// built-ins (Array.of, String.split) that must produce an array result
// without going through the `new Array()` constructor path.
func NewArray(env vm.Environment) *object.Object {
	return env.NewObject(object.ClassArray)
}

func buildArray(b *boot, t *Table, objectProto *object.Object) {
	proto := b.newObject(object.ClassArray, objectProto)
	t.Array = &ClassDef{ID: object.ClassArray, Name: "Array", NameKey: b.key("Array"), Prototype: proto}
	t.defs[object.ClassArray] = t.Array

	b.defineAccessor(proto, "length", arrayLengthGetter, arrayLengthSetter)

	b.defineMethod(proto, "push", arrayPush)
	b.defineMethod(proto, "pop", arrayPop)
	b.defineMethod(proto, "forEach", arrayForEach)
	b.defineMethod(proto, "map", arrayMap)
	b.defineMethod(proto, "filter", arrayFilter)
	b.defineMethod(proto, "reduce", arrayReduce)

	ctorFn := b.nativeFunc(arrayConstructor)
	ctor := object.FromValue(ctorFn)
	b.defineMethod(ctor, "of", arrayOf)
	t.Array.Constructor = ctor
}

func thisArray(hc *vm.HostCall) *object.Object {
	obj := object.FromValue(hc.This)
	if obj == nil || obj.ClassID != object.ClassArray {
		return nil
	}
	return obj
}

func arrayConstructor(ctx any, argc uint32, frame any) value.Value {
	hc := frame.(*vm.HostCall)
	arr := NewArray(hc.Env)
	if len(hc.Args) == 1 && (hc.Args[0].Kind() == value.KindInt64 || hc.Args[0].Kind() == value.KindFloat64) {
		n, _ := hc.Args[0].Number()
		if n < 0 || n != math.Trunc(n) {
			return hc.Env.ThrowRangeError("Invalid array length")
		}
		arr.ArrayLength = int(n)
		return object.ToValue(arr)
	}
	for i, v := range hc.Args {
		arraySet(hc.Env, arr, i, v)
	}
	arr.ArrayLength = len(hc.Args)
	return object.ToValue(arr)
}

func arrayOf(ctx any, argc uint32, frame any) value.Value {
	hc := frame.(*vm.HostCall)
	arr := NewArray(hc.Env)
	for i, v := range hc.Args {
		arraySet(hc.Env, arr, i, v)
	}
	arr.ArrayLength = len(hc.Args)
	return object.ToValue(arr)
}

func arrayLengthGetter(ctx any, argc uint32, frame any) value.Value {
	hc := frame.(*vm.HostCall)
	arr := thisArray(hc)
	if arr == nil {
		return hc.Env.ThrowTypeError("Array.prototype.length called on a non-array")
	}
	return value.Int64(int64(arr.ArrayLength))
}

func arrayLengthSetter(ctx any, argc uint32, frame any) value.Value {
	hc := frame.(*vm.HostCall)
	arr := thisArray(hc)
	if arr == nil {
		return hc.Env.ThrowTypeError("Array.prototype.length called on a non-array")
	}
	n, ok := hc.Arg(0).Number()
	if !ok || n < 0 {
		return hc.Env.ThrowRangeError("invalid array length")
	}
	newLen := int(n)
	for i := newLen; i < arr.ArrayLength; i++ {
		arr.DeleteOwnProperty(indexKey(hc.Env, i))
	}
	arr.ArrayLength = newLen
	return value.Undefined
}

func arrayPush(ctx any, argc uint32, frame any) value.Value {
	hc := frame.(*vm.HostCall)
	arr := thisArray(hc)
	if arr == nil {
		return hc.Env.ThrowTypeError("Array.prototype.push called on a non-array")
	}
	for _, v := range hc.Args {
		arraySet(hc.Env, arr, arr.ArrayLength, v)
		arr.ArrayLength++
	}
	return value.Int64(int64(arr.ArrayLength))
}

func arrayPop(ctx any, argc uint32, frame any) value.Value {
	hc := frame.(*vm.HostCall)
	arr := thisArray(hc)
	if arr == nil {
		return hc.Env.ThrowTypeError("Array.prototype.pop called on a non-array")
	}
	if arr.ArrayLength == 0 {
		return value.Undefined
	}
	last := arr.ArrayLength - 1
	v := arrayGet(hc.Env, arr, last)
	arr.DeleteOwnProperty(indexKey(hc.Env, last))
	arr.ArrayLength = last
	return v
}

func arrayForEach(ctx any, argc uint32, frame any) value.Value {
	hc := frame.(*vm.HostCall)
	arr := thisArray(hc)
	if arr == nil {
		return hc.Env.ThrowTypeError("Array.prototype.forEach called on a non-array")
	}
	cb := hc.Arg(0)
	for i := 0; i < arr.ArrayLength; i++ {
		v := arrayGet(hc.Env, arr, i)
		comp := hc.It.Call(hc.Stack, cb, value.Undefined, []value.Value{v, value.Int64(int64(i)), hc.This})
		if comp.Kind == vm.CompletionException {
			return comp.Value
		}
	}
	return value.Undefined
}

func arrayMap(ctx any, argc uint32, frame any) value.Value {
	hc := frame.(*vm.HostCall)
	arr := thisArray(hc)
	if arr == nil {
		return hc.Env.ThrowTypeError("Array.prototype.map called on a non-array")
	}
	cb := hc.Arg(0)
	out := NewArray(hc.Env)
	for i := 0; i < arr.ArrayLength; i++ {
		v := arrayGet(hc.Env, arr, i)
		comp := hc.It.Call(hc.Stack, cb, value.Undefined, []value.Value{v, value.Int64(int64(i)), hc.This})
		if comp.Kind == vm.CompletionException {
			return comp.Value
		}
		arraySet(hc.Env, out, i, comp.Value)
	}
	out.ArrayLength = arr.ArrayLength
	return object.ToValue(out)
}

func arrayFilter(ctx any, argc uint32, frame any) value.Value {
	hc := frame.(*vm.HostCall)
	arr := thisArray(hc)
	if arr == nil {
		return hc.Env.ThrowTypeError("Array.prototype.filter called on a non-array")
	}
	cb := hc.Arg(0)
	out := NewArray(hc.Env)
	for i := 0; i < arr.ArrayLength; i++ {
		v := arrayGet(hc.Env, arr, i)
		comp := hc.It.Call(hc.Stack, cb, value.Undefined, []value.Value{v, value.Int64(int64(i)), hc.This})
		if comp.Kind == vm.CompletionException {
			return comp.Value
		}
		if comp.Value.Bool() {
			arraySet(hc.Env, out, out.ArrayLength, v)
			out.ArrayLength++
		}
	}
	return object.ToValue(out)
}

func arrayReduce(ctx any, argc uint32, frame any) value.Value {
	hc := frame.(*vm.HostCall)
	arr := thisArray(hc)
	if arr == nil {
		return hc.Env.ThrowTypeError("Array.prototype.reduce called on a non-array")
	}
	cb := hc.Arg(0)
	i := 0
	var acc value.Value
	if len(hc.Args) > 1 {
		acc = hc.Args[1]
	} else {
		if arr.ArrayLength == 0 {
			return hc.Env.ThrowTypeError("Reduce of empty array with no initial value")
		}
		acc = arrayGet(hc.Env, arr, 0)
		i = 1
	}
	for ; i < arr.ArrayLength; i++ {
		v := arrayGet(hc.Env, arr, i)
		comp := hc.It.Call(hc.Stack, cb, value.Undefined, []value.Value{acc, v, value.Int64(int64(i)), hc.This})
		if comp.Kind == vm.CompletionException {
			return comp.Value
		}
		acc = comp.Value
	}
	return acc
}
