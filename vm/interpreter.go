package vm

import (
	"github.com/voskan/mjsvm/bytecode"
	"github.com/voskan/mjsvm/funcdef"
	"github.com/voskan/mjsvm/jsstring"
	"github.com/voskan/mjsvm/object"
	"github.com/voskan/mjsvm/value"
)

// Interpreter executes FunctionDef bytecode against a Stack, per the design
// section 4.1. It carries no per-call state of its own — everything mutable
// lives on the Stack/Frame the caller passes in — so one Interpreter is
// shared by every Context that wires the same Environment.
type Interpreter struct {
	Env Environment

	// Generators constructs Generator/AsyncObjects for a generator/async
	// FunctionDef's call. nil is only valid for a Context
	// that never calls a generator/async function; Call panics with a clear
	// message rather than silently running the body synchronously, since
	// that would violate the "body does not run until the first Next()"
	// invariant.
	Generators GeneratorHook

	// Promises dispatches the `KindPromiseResolve`/`KindPromiseReject`
	// bound-builtin sentinels. nil is only valid for a Context that never constructs a
	// Promise via its executor form.
	Promises PromiseHook
}

// NewInterpreter constructs an Interpreter bound to env.
func NewInterpreter(env Environment) *Interpreter {
	return &Interpreter{Env: env}
}

// Call implements the "Call protocol": it is the single entry
// point both FunctionCall/New use internally and that a Context, promise
// job or generator resumption uses to invoke a function value from the
// outside. args is already evaluated — the callee sees exactly what the
// caller passed.
func (it *Interpreter) Call(stack *Stack, fnVal value.Value, thisVal value.Value, args []value.Value) Completion {
	switch fnVal.Kind() {
	case value.KindGeneratorNext:
		if it.Generators == nil {
			panic("vm: Interpreter.Generators not wired, cannot call GeneratorNext")
		}
		return it.Generators.CallNext(it, stack, thisVal, args)
	case value.KindPromiseResolve, value.KindPromiseReject:
		if it.Promises == nil {
			panic("vm: Interpreter.Promises not wired, cannot call a Promise executor thunk")
		}
		p := (*object.Object)(fnVal.Ptr())
		arg := value.Undefined
		if len(args) > 0 {
			arg = args[0]
		}
		if fnVal.Kind() == value.KindPromiseResolve {
			return it.Promises.Resolve(it, stack, p, arg)
		}
		return it.Promises.Reject(it, stack, p, arg)
	}

	fnObj := object.FromValue(fnVal)
	if fnObj == nil || fnObj.Func == nil {
		return Completion{Kind: CompletionException, Value: it.Env.ThrowTypeError("value is not a function")}
	}
	fd := fnObj.Func

	if fd.Native != nil {
		call := &HostCall{Env: it.Env, This: thisVal, Args: args, It: it, Stack: stack}
		result := fd.Native(it.Env, uint32(len(args)), call)
		if result.IsException() {
			return Completion{Kind: CompletionException, Value: result}
		}
		return Completion{Kind: CompletionReturn, Value: result}
	}

	if fd.Def.IsGenerator {
		if it.Generators == nil {
			panic("vm: Interpreter.Generators not wired, cannot call a generator function")
		}
		return it.Generators.NewGenerator(it, stack, fnVal, thisVal, args)
	}
	if fd.Def.IsAsync {
		if it.Generators == nil {
			panic("vm: Interpreter.Generators not wired, cannot call an async function")
		}
		return it.Generators.NewAsync(it, stack, fnVal, thisVal, args)
	}

	frame := it.setupFrame(stack, fd, fnVal, thisVal, args)
	comp := it.runFrame(stack, frame)

	releaseCapturedLocals(frame)
	stack.PopFrame(frame)
	return comp
}

// setupFrame performs every step of the call protocol up to
// but not including dispatch: push locals, bind arguments, wire imported and
// newly-captured closure cells. Shared by Call and StartSuspendedFrame,
// whose only difference is whether the built frame runs immediately or is
// parked for a generator/async object to resume later.
func (it *Interpreter) setupFrame(stack *Stack, fd *object.FunctionData, fnVal, thisVal value.Value, args []value.Value) *Frame {
	def := fd.Def
	if def.Hotness != nil {
		def.Hotness.Tick()
	}
	frame := &Frame{
		FunctionVal: fnVal,
		FunctionDef: def,
		ThisVal: thisVal,
		OuterThis: fd.LexicalThis,
		activeCatchEntry: -1,
	}
	stack.PushFrame(frame, len(def.VarDefTable))

	n := len(args)
	if n > def.ParamCount {
		n = def.ParamCount
	}
	for i := 0; i < n; i++ {
		frame.SetLocal(stack, i, args[i])
	}

	wireImportedClosureVars(stack, frame, def, fd.ClosureVars)
	boxCapturedLocals(stack, frame, def)
	return frame
}

// StartSuspendedFrame builds a callee frame for fnVal exactly as Call would,
// but parks it at PC 0 instead of running it, and hands back its saved
// operand-stack slice (here just the zero-filled/bound locals, since nothing
// has executed yet). Used by generator/async construction: the design calls
// for "calling" a generator function to produce a Suspended generator object
// without running any of its body until the first Next().
func (it *Interpreter) StartSuspendedFrame(stack *Stack, fnVal, thisVal value.Value, args []value.Value) (*Frame, []value.Value, Completion) {
	fnObj := object.FromValue(fnVal)
	if fnObj == nil || fnObj.Func == nil || fnObj.Func.Def == nil {
		return nil, nil, Completion{Kind: CompletionException, Value: it.Env.ThrowTypeError("value is not a generator function")}
	}
	frame := it.setupFrame(stack, fnObj.Func, fnVal, thisVal, args)
	saved := stack.PopSuspendedFrame(frame)
	return frame, saved, Completion{}
}

// Resume continues frame from its saved PC after the caller has restored
// its saved operand-stack slice onto stack's current top via
// Stack.PushSuspendedFrame ("restore the saved stack slice and
// PC ... resume interpretation"). It returns without releasing the frame's
// captured closure vars or popping it — the caller (generator.Generator)
// owns that frame across its whole Suspended/Executing lifetime and only
// releases it once the frame reaches Closed.
func (it *Interpreter) Resume(stack *Stack, frame *Frame) Completion {
	return it.runFrame(stack, frame)
}

// ResumeWithThrow continues frame from its saved PC the same way Resume
// does, but first raises exc through the frame's exception table exactly as
// an OpThrow at that PC would — the await-rejection resume path the design
// describes ("the failure thunk restores and then throws the reason at the
// suspension point").
func (it *Interpreter) ResumeWithThrow(stack *Stack, frame *Frame, exc value.Value) Completion {
	comp, cont := it.raise(stack, frame, exc)
	if !cont {
		return comp
	}
	return it.runFrame(stack, frame)
}

// FinishSuspendedFrame releases a generator/async frame's captured closure
// vars once it has reached Closed (GeneratorReturn, AsyncReturn, or an
// uncaught throw) — the counterpart to Call's releaseCapturedLocals+
// PopFrame for a frame that was never pushed via the ordinary path at the
// moment it finishes.
func FinishSuspendedFrame(frame *Frame) {
	releaseCapturedLocals(frame)
}

// New implements the New opcode's object-allocation half of the design: a
// fresh object is pre-allocated as `this`, the constructor runs, and its
// explicit return value wins only if it is itself an object (ordinary `new`
// semantics). The fresh object's Proto is the constructor's own
// `.prototype` object for every ordinary user function;
// native constructors and generator/async functions, which have no such
// prototype, fall back to ClassPlainObject's default.
func (it *Interpreter) New(stack *Stack, fnVal value.Value, args []value.Value) Completion {
	fresh := it.Env.NewObject(object.ClassPlainObject)
	if fnObj := object.FromValue(fnVal); fnObj != nil && fnObj.Func != nil && fnObj.Func.Def != nil &&
		!fnObj.Func.Def.IsGenerator && !fnObj.Func.Def.IsAsync {
		fresh.Proto = it.ownPrototypeOf(fnObj)
	}
	comp := it.Call(stack, fnVal, object.ToValue(fresh), args)
	if comp.Kind != CompletionReturn {
		return comp
	}
	if object.FromValue(comp.Value) != nil {
		return comp
	}
	return Completion{Kind: CompletionReturn, Value: object.ToValue(fresh)}
}

// ownPrototypeOf returns fnObj's own `.prototype` object, building it the
// first time it's needed. classdef's Function.prototype
// accessor and New share this so a property read and a construct call
// always see the same object.
func (it *Interpreter) ownPrototypeOf(fnObj *object.Object) *object.Object {
	fd := fnObj.Func
	if fd.OwnPrototype != nil {
		return fd.OwnPrototype
	}
	proto := it.Env.NewObject(object.ClassPlainObject)
	ctorKey := it.Env.GlobalConsts().InternString("constructor", func() value.Value {
		return jsstring.ToValue(jsstring.New("constructor"))
	})
	proto.SetProperty(ctorKey, object.ToValue(fnObj))
	fd.OwnPrototype = proto
	return proto
}

// OwnPrototypeOf is the exported form of ownPrototypeOf, for classdef's
// Function.prototype accessor (vm cannot be imported by classdef for the
// reverse direction, but classdef is free to call into vm).
func (it *Interpreter) OwnPrototypeOf(fnObj *object.Object) *object.Object {
	return it.ownPrototypeOf(fnObj)
}

// raise runs exc through this frame's exception table. A true continueLoop
// means dispatchFault already repointed frame.PC at a catch/finally handler
// and the dispatch loop should simply keep going; false means the frame has
// no matching entry left and runFrame must return comp to its caller, which
// retries unwinding one frame up.
func (it *Interpreter) raise(stack *Stack, frame *Frame, exc value.Value) (comp Completion, continueLoop bool) {
	if it.dispatchFault(stack, frame, exc) {
		return Completion{}, true
	}
	return Completion{Kind: CompletionException, Value: exc}, false
}

// runFrame is the dispatch loop the design "Dispatch" describes: read
// opcode, switch, fetch operands, apply effect, advance PC.
func (it *Interpreter) runFrame(stack *Stack, frame *Frame) Completion {
	def := frame.FunctionDef
	code := def.BytecodeTable

	for {
		op := bytecode.Op(code.Code[frame.PC])
		frame.PC++

		switch op {
		case bytecode.OpCLoad_0, bytecode.OpCLoad_1, bytecode.OpCLoad_2,
			bytecode.OpCLoad_3, bytecode.OpCLoad_4, bytecode.OpCLoad_5:
			slot := int(op - bytecode.OpCLoad_0)
			stack.Push(it.loadConst(value.LocalIndex(slot)))

		case bytecode.OpCLoad:
			idx := value.ConstIndex(code.ReadI8(frame.PC))
			frame.PC++
			stack.Push(it.loadConst(idx))

		case bytecode.OpCLoadW:
			idx := value.ConstIndex(code.ReadI16(frame.PC))
			frame.PC += 2
			stack.Push(it.loadConst(idx))

		case bytecode.OpCLoadD:
			idx := value.ConstIndex(code.ReadI32(frame.PC))
			frame.PC += 4
			stack.Push(it.loadConst(idx))

		case bytecode.OpVLoad_0, bytecode.OpVLoad_1, bytecode.OpVLoad_2, bytecode.OpVLoad_3:
			slot := int(op - bytecode.OpVLoad_0)
			stack.Push(loadVar(stack, frame, slot))

		case bytecode.OpVLoad:
			slot := int(code.ReadU8(frame.PC))
			frame.PC++
			stack.Push(loadVar(stack, frame, slot))

		case bytecode.OpVStore_0, bytecode.OpVStore_1, bytecode.OpVStore_2, bytecode.OpVStore_3:
			slot := int(op - bytecode.OpVStore_0)
			storeVar(stack, frame, slot, stack.Pop())

		case bytecode.OpVStore:
			slot := int(code.ReadU8(frame.PC))
			frame.PC++
			storeVar(stack, frame, slot, stack.Pop())

		case bytecode.OpPropertyLoad:
			key := value.GlobalIndex(int(code.ReadU32(frame.PC)))
			frame.PC += 4
			recv := stack.Pop()
			v, comp, faulted := it.getProperty(stack, frame, recv, key)
			if faulted {
				if comp.Kind == CompletionException {
					return comp
				}
				continue
			}
			stack.Push(v)

		case bytecode.OpPropertyStore:
			key := value.GlobalIndex(int(code.ReadU32(frame.PC)))
			frame.PC += 4
			v := stack.Pop()
			recv := stack.Pop()
			if comp, faulted := it.setProperty(stack, frame, recv, key, v); faulted {
				if comp.Kind == CompletionException {
					return comp
				}
				continue
			}

		case bytecode.OpIndexedLoad:
			key := stack.Pop()
			recv := stack.Pop()
			v, comp, faulted := it.getProperty(stack, frame, recv, internConstKey(it.Env, key))
			if faulted {
				if comp.Kind == CompletionException {
					return comp
				}
				continue
			}
			stack.Push(v)

		case bytecode.OpIndexedStore:
			v := stack.Pop()
			key := stack.Pop()
			recv := stack.Pop()
			if comp, faulted := it.setProperty(stack, frame, recv, internConstKey(it.Env, key), v); faulted {
				if comp.Kind == CompletionException {
					return comp
				}
				continue
			}

		case bytecode.OpAdd:
			b := stack.Pop()
			a := stack.Pop()
			if isNumeric(a) && isNumeric(b) {
				stack.Push(value.Float64(toNumber(a) + toNumber(b)))
			} else {
				stack.Push(jsstring.ToValue(jsstring.New(toDisplayString(a) + toDisplayString(b))))
			}

		case bytecode.OpSub:
			b, a := stack.Pop(), stack.Pop()
			stack.Push(value.Float64(toNumber(a) - toNumber(b)))
		case bytecode.OpMul:
			b, a := stack.Pop(), stack.Pop()
			stack.Push(value.Float64(toNumber(a) * toNumber(b)))
		case bytecode.OpDiv:
			b, a := stack.Pop(), stack.Pop()
			stack.Push(value.Float64(toNumber(a) / toNumber(b)))
		case bytecode.OpMod:
			b, a := stack.Pop(), stack.Pop()
			stack.Push(value.Float64(jsMod(toNumber(a), toNumber(b))))
		case bytecode.OpNeg:
			a := stack.Pop()
			stack.Push(value.Float64(-toNumber(a)))
		case bytecode.OpInc:
			a := stack.Pop()
			stack.Push(value.Float64(toNumber(a) + 1))

		case bytecode.OpShl:
			b, a := stack.Pop(), stack.Pop()
			stack.Push(value.Int64(int64(int32(toNumber(a)) << (uint32(int32(toNumber(b))) & 31))))
		case bytecode.OpShr:
			b, a := stack.Pop(), stack.Pop()
			stack.Push(value.Int64(int64(int32(toNumber(a)) >> (uint32(int32(toNumber(b))) & 31))))
		case bytecode.OpUShr:
			b, a := stack.Pop(), stack.Pop()
			stack.Push(value.Int64(int64(uint32(int32(toNumber(a))) >> (uint32(int32(toNumber(b))) & 31))))
		case bytecode.OpBitAnd:
			b, a := stack.Pop(), stack.Pop()
			stack.Push(value.Int64(int64(int32(toNumber(a)) & int32(toNumber(b)))))
		case bytecode.OpBitOr:
			b, a := stack.Pop(), stack.Pop()
			stack.Push(value.Int64(int64(int32(toNumber(a)) | int32(toNumber(b)))))
		case bytecode.OpBitXor:
			b, a := stack.Pop(), stack.Pop()
			stack.Push(value.Int64(int64(int32(toNumber(a)) ^ int32(toNumber(b)))))
		case bytecode.OpBitNot:
			a := stack.Pop()
			stack.Push(value.Int64(int64(^int32(toNumber(a)))))

		case bytecode.OpEq:
			b, a := stack.Pop(), stack.Pop()
			stack.Push(value.Bool(looseEquals(a, b)))
		case bytecode.OpNe:
			b, a := stack.Pop(), stack.Pop()
			stack.Push(value.Bool(!looseEquals(a, b)))
		case bytecode.OpLt:
			b, a := stack.Pop(), stack.Pop()
			stack.Push(value.Bool(toNumber(a) < toNumber(b)))
		case bytecode.OpLe:
			b, a := stack.Pop(), stack.Pop()
			stack.Push(value.Bool(toNumber(a) <= toNumber(b)))
		case bytecode.OpGt:
			b, a := stack.Pop(), stack.Pop()
			stack.Push(value.Bool(toNumber(a) > toNumber(b)))
		case bytecode.OpGe:
			b, a := stack.Pop(), stack.Pop()
			stack.Push(value.Bool(toNumber(a) >= toNumber(b)))

		case bytecode.OpIfEq:
			offset := int(code.ReadI16(frame.PC))
			frame.PC += 2
			if !toBoolean(stack.Pop()) {
				frame.PC += offset
			}

		case bytecode.OpGoto:
			offset := int(code.ReadI16(frame.PC))
			frame.PC += 2
			frame.PC += offset

		case bytecode.OpReturn:
			retVal := stack.Pop()
			if it.interceptReturn(stack, frame, retVal) {
				continue
			}
			return Completion{Kind: CompletionReturn, Value: retVal}

		case bytecode.OpFunctionCall:
			argc := int(code.ReadU8(frame.PC))
			frame.PC++
			args := popArgs(stack, argc)
			thisVal := stack.Pop()
			fnVal := stack.Pop()
			comp := it.Call(stack, fnVal, thisVal, args)
			if comp.Kind == CompletionException {
				if c, cont := it.raise(stack, frame, comp.Value); cont {
					continue
				} else {
					return c
				}
			}
			stack.Push(comp.Value)

		case bytecode.OpNew:
			argc := int(code.ReadU8(frame.PC))
			frame.PC++
			args := popArgs(stack, argc)
			fnVal := stack.Pop()
			comp := it.New(stack, fnVal, args)
			if comp.Kind == CompletionException {
				if c, cont := it.raise(stack, frame, comp.Value); cont {
					continue
				} else {
					return c
				}
			}
			stack.Push(comp.Value)

		case bytecode.OpGetThis:
			stack.Push(frame.ThisVal)
		case bytecode.OpGetOuterThis:
			stack.Push(frame.OuterThis)

		case bytecode.OpClosure:
			idx := value.LocalIndex(int(code.ReadU32(frame.PC)))
			frame.PC += 4
			defVal, _ := it.Env.LocalConsts().Get(idx)
			childDef := funcDefFromValue(defVal)
			stack.Push(it.makeClosure(stack, frame, childDef))

		case bytecode.OpYield:
			return Completion{Kind: CompletionYield, Value: stack.Pop()}
		case bytecode.OpGeneratorReturn:
			retVal := stack.Pop()
			if it.interceptReturn(stack, frame, retVal) {
				continue
			}
			return Completion{Kind: CompletionReturn, Value: retVal}
		case bytecode.OpAwait:
			return Completion{Kind: CompletionAwait, Value: stack.Pop()}
		case bytecode.OpAsyncReturn:
			retVal := stack.Pop()
			if it.interceptReturn(stack, frame, retVal) {
				continue
			}
			return Completion{Kind: CompletionReturn, Value: retVal}

		case bytecode.OpTryBegin:
			// The exception-table entry is resolved from frame.PC's range by
			// dispatchFault, not from the index encoded here; the operand
			// only needs to be skipped.
			frame.PC += 2

		case bytecode.OpThrow:
			exc := stack.Pop().WithException()
			if c, cont := it.raise(stack, frame, exc); cont {
				continue
			} else {
				return c
			}

		case bytecode.OpTryEnd:
			frame.activeCatchEntry = -1

		case bytecode.OpFinallyReturn:
			pending := frame.pending
			frame.pending = pendingAction{}
			switch pending.kind {
			case pendingRethrow:
				if c, cont := it.raise(stack, frame, pending.value); cont {
					continue
				} else {
					return c
				}
			case pendingReturn:
				if it.interceptReturn(stack, frame, pending.value) {
					continue
				}
				return Completion{Kind: CompletionReturn, Value: pending.value}
			case pendingGoto:
				frame.PC = pending.gotoPC
			}

		case bytecode.OpFinallyGoto:
			offset := int(code.ReadI16(frame.PC))
			frame.PC += 2
			frame.pending = pendingAction{kind: pendingGoto, gotoPC: frame.PC + offset}

		case bytecode.OpPop:
			stack.Pop()
		case bytecode.OpDump:
			stack.Push(stack.Top())
		case bytecode.OpSwap:
			n := len(stack.Values)
			stack.Values[n-1], stack.Values[n-2] = stack.Values[n-2], stack.Values[n-1]
		case bytecode.OpUndefined:
			stack.Push(value.Undefined)
		case bytecode.OpToString:
			v := stack.Pop()
			stack.Push(jsstring.ToValue(jsstring.New(toDisplayString(v))))

		case bytecode.OpGetGlobal:
			idx := value.GlobalIndex(int(code.ReadU32(frame.PC)))
			frame.PC += 4
			v, _ := it.Env.GlobalConsts().Get(idx)
			stack.Push(v)

		case bytecode.OpGetModule:
			idx := value.GlobalIndex(int(code.ReadU32(frame.PC)))
			frame.PC += 4
			stack.Push(it.Env.GetModule(idx))

		case bytecode.OpGetModuleAsync:
			idx := value.GlobalIndex(int(code.ReadU32(frame.PC)))
			frame.PC += 4
			stack.Push(it.Env.GetModuleAsync(idx))

		default:
			exc := it.Env.ThrowTypeError("invalid opcode %d at pc %d", op, frame.PC-1)
			if c, cont := it.raise(stack, frame, exc); cont {
				continue
			} else {
				return c
			}
		}
	}
}

// loadConst reads idx from whichever pool its sign names (IsGlobal/IsLocal)
// and tags the result with idx so a later StrictEquals/interning check can
// recover it.
func (it *Interpreter) loadConst(idx value.ConstIndex) value.Value {
	var v value.Value
	if idx.IsGlobal() {
		v, _ = it.Env.GlobalConsts().Get(idx)
	} else {
		v, _ = it.Env.LocalConsts().Get(idx)
	}
	return v.WithConstIndex(idx)
}

// faultSentinel is returned by getProperty/setProperty as the "in-frame
// handled" case: an empty, non-exception Completion the caller recognizes
// by faulted==true && Kind==CompletionReturn-zero-value, distinguished from
// the real unwind case by Kind==CompletionException.
var faultSentinel = Completion{}

// getProperty resolves recv.key, invoking a getter through a recursive Call
// when one is found ("Lookup"). faulted==true means the caller
// must not push a value: either the fault was handled in-frame (comp is the
// zero Completion, keep dispatching) or it must propagate (comp.Kind ==
// CompletionException).
func (it *Interpreter) getProperty(stack *Stack, frame *Frame, recv value.Value, key value.ConstIndex) (value.Value, Completion, bool) {
	if recv.Kind() == value.KindString {
		return it.getBoxedProperty(stack, frame, recv, object.ClassString, key)
	}
	obj := object.FromValue(recv)
	if obj == nil {
		comp, cont := it.raise(stack, frame, it.Env.ThrowTypeError("cannot read property of non-object"))
		if cont {
			return value.Undefined, faultSentinel, true
		}
		return value.Undefined, comp, true
	}
	lookup := obj.GetProperty(key)
	if lookup.Kind != object.LookupAccessor {
		return lookup.Value, Completion{}, false
	}
	if lookup.Getter.IsUndefined() {
		return value.Undefined, Completion{}, false
	}
	comp := it.Call(stack, lookup.Getter, recv, nil)
	if comp.Kind == CompletionException {
		c, cont := it.raise(stack, frame, comp.Value)
		if cont {
			return value.Undefined, faultSentinel, true
		}
		return value.Undefined, c, true
	}
	return comp.Value, Completion{}, false
}

// getBoxedProperty resolves a property read against a primitive's built-in
// prototype (String class methods: "abc".indexOf(...) must
// work even though a string Value carries no Properties of its own).
// `this` inside a found accessor/method stays the primitive recv, matching
// ordinary JS boxing semantics, not the prototype object itself.
func (it *Interpreter) getBoxedProperty(stack *Stack, frame *Frame, recv value.Value, classID object.ClassID, key value.ConstIndex) (value.Value, Completion, bool) {
	proto := it.Env.PrototypeFor(classID)
	if proto == nil {
		return value.Undefined, Completion{}, false
	}
	lookup := proto.GetProperty(key)
	if lookup.Kind == object.LookupNotFound {
		return value.Undefined, Completion{}, false
	}
	if lookup.Kind != object.LookupAccessor {
		return lookup.Value, Completion{}, false
	}
	if lookup.Getter.IsUndefined() {
		return value.Undefined, Completion{}, false
	}
	comp := it.Call(stack, lookup.Getter, recv, nil)
	if comp.Kind == CompletionException {
		c, cont := it.raise(stack, frame, comp.Value)
		if cont {
			return value.Undefined, faultSentinel, true
		}
		return value.Undefined, c, true
	}
	return comp.Value, Completion{}, false
}

// setProperty mirrors getProperty for writes, invoking a setter when one
// applies ("Write"). See getProperty's faulted contract.
func (it *Interpreter) setProperty(stack *Stack, frame *Frame, recv value.Value, key value.ConstIndex, v value.Value) (Completion, bool) {
	if recv.Kind() == value.KindString {
		return Completion{}, false // assigning a property onto a string primitive is a silent no-op
	}
	obj := object.FromValue(recv)
	if obj == nil {
		comp, cont := it.raise(stack, frame, it.Env.ThrowTypeError("cannot set property of non-object"))
		if cont {
			return faultSentinel, true
		}
		return comp, true
	}
	outcome := obj.SetProperty(key, v)
	if outcome.Kind != object.SetCallSetter {
		return Completion{}, false
	}
	comp := it.Call(stack, outcome.Setter, recv, []value.Value{v})
	if comp.Kind == CompletionException {
		c, cont := it.raise(stack, frame, comp.Value)
		if cont {
			return faultSentinel, true
		}
		return c, true
	}
	return Completion{}, false
}

func popArgs(stack *Stack, argc int) []value.Value {
	if argc == 0 {
		return nil
	}
	n := len(stack.Values)
	args := make([]value.Value, argc)
	copy(args, stack.Values[n-argc:])
	stack.Values = stack.Values[:n-argc]
	return args
}

func funcDefFromValue(v value.Value) *funcdef.FunctionDef {
	if v.Kind() != value.KindFunctionDef {
		return nil
	}
	return (*funcdef.FunctionDef)(v.Ptr())
}

// internConstKey resolves a computed IndexedLoad/IndexedStore key to a
// ConstIndex so it can flow through the same shape-backed GetProperty/
// SetProperty path as a static PropertyLoad/PropertyStore. Non-string keys
// fall back to the key's own interned const index if it has one (e.g. a
// symbol loaded from a constant); the design treats property names
// uniformly as const-pool entries.
func internConstKey(env Environment, key value.Value) value.ConstIndex {
	if idx := key.ConstIndex(); idx.IsValid() {
		return idx
	}
	if key.Kind() == value.KindString {
		if s := jsstring.FromValue(key); s != nil {
			return env.GlobalConsts().InternString(s.Data, func() value.Value { return key })
		}
	}
	return value.InvalidConstIndex
}

// jsMod implements JS's floating-point remainder (sign follows the
// dividend); exact ECMAScript negative-zero normalization is out of scope.
func jsMod(a, b float64) float64 {
	if b == 0 {
		return nan()
	}
	return a - b*float64(int64(a/b))
}

func nan() float64 {
	var zero float64
	return zero / zero
}

// looseEquals implements the Eq/Ne opcodes' comparison: numeric values
// compare across Int64/Float64 (see value.Value.StrictEquals's doc on why
// that case is handled here instead), strings compare by content,
// everything else falls back to StrictEquals.
func looseEquals(a, b value.Value) bool {
	if isNumeric(a) && isNumeric(b) {
		return toNumber(a) == toNumber(b)
	}
	if a.Kind() == value.KindString && b.Kind() == value.KindString {
		sa, sb := jsstring.FromValue(a), jsstring.FromValue(b)
		if sa == nil || sb == nil {
			return sa == sb
		}
		return sa.Equals(sb)
	}
	return a.StrictEquals(b)
}
