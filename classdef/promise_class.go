package classdef

import (
	"github.com/voskan/mjsvm/object"
	"github.com/voskan/mjsvm/promise"
	"github.com/voskan/mjsvm/value"
	"github.com/voskan/mjsvm/vm"
)

// buildPromise installs the Promise class on top of package
// promise's already-complete Resolve/Reject/Then: the
// constructor takes an executor called immediately with resolve/reject
// thunks, plus the static resolve/reject and instance then methods.
func buildPromise(b *boot, t *Table, objectProto *object.Object) {
	proto := b.newObject(object.ClassPlainObject, objectProto)
	t.Promise = &ClassDef{ID: object.ClassPromise, Name: "Promise", NameKey: b.key("Promise"), Prototype: proto}
	t.defs[object.ClassPromise] = t.Promise

	b.defineMethod(proto, "then", promiseThen)

	ctorFn := b.nativeFunc(promiseConstructor)
	ctor := object.FromValue(ctorFn)
	b.defineMethod(ctor, "resolve", promiseResolveStatic)
	b.defineMethod(ctor, "reject", promiseRejectStatic)
	t.Promise.Constructor = ctor
}

// promiseHookOf recovers the *promise.Hook wired onto the calling
// Interpreter (runtime.Context always wires one; a Context that never
// constructs a Promise never calls this). classdef is free to import
// promise and vm directly — it is a leaf consumer, not part of the vm/
// promise/generator import-cycle seam those two packages maintain between
// themselves.
func promiseHookOf(it *vm.Interpreter) *promise.Hook {
	ph, _ := it.Promises.(*promise.Hook)
	return ph
}

func promiseConstructor(ctx any, argc uint32, frame any) value.Value {
	hc := frame.(*vm.HostCall)
	ph := promiseHookOf(hc.It)
	if ph == nil {
		return hc.Env.ThrowTypeError("Promise executor support is not wired for this context")
	}
	p := promise.NewWithExecutor(ph.Env, hc.It, hc.Stack, ph.Queue, hc.Arg(0))
	return object.ToValue(p)
}

func promiseResolveStatic(ctx any, argc uint32, frame any) value.Value {
	hc := frame.(*vm.HostCall)
	ph := promiseHookOf(hc.It)
	if ph == nil {
		return hc.Env.ThrowTypeError("Promise support is not wired for this context")
	}
	p := promise.New(ph.Env)
	promise.Resolve(ph.Env, ph.Queue, p, hc.Arg(0))
	return object.ToValue(p)
}

func promiseRejectStatic(ctx any, argc uint32, frame any) value.Value {
	hc := frame.(*vm.HostCall)
	ph := promiseHookOf(hc.It)
	if ph == nil {
		return hc.Env.ThrowTypeError("Promise support is not wired for this context")
	}
	p := promise.New(ph.Env)
	promise.Reject(ph.Env, ph.Queue, p, hc.Arg(0))
	return object.ToValue(p)
}

func promiseThen(ctx any, argc uint32, frame any) value.Value {
	hc := frame.(*vm.HostCall)
	ph := promiseHookOf(hc.It)
	if ph == nil {
		return hc.Env.ThrowTypeError("Promise support is not wired for this context")
	}
	obj := object.FromValue(hc.This)
	if obj == nil || obj.ClassID != object.ClassPromise || obj.Promise == nil {
		return hc.Env.ThrowTypeError("then called on a non-promise")
	}
	p2 := promise.Then(ph.Env, ph.Queue, obj, hc.Arg(0), hc.Arg(1))
	return object.ToValue(p2)
}
