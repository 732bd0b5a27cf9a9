// Package value implements the tagged Value representation shared by every
// other package in mjsvm. A Value is a small, copyable struct: primitives are
// stored inline, everything else is a pointer wrapped behind an unsafe.Pointer
// so the struct stays a fixed size regardless of which variant it holds.
//
// We deliberately do not NaN-box: Go gives no sound way to stash a pointer
// inside a float64's bit pattern past the garbage collector, so a tagged
// struct is the only safe representation.
package value

import (
	"math"
	"unsafe"
)

// Kind discriminates the logical variant a Value currently holds.
type Kind uint8

const (
	KindUndefined Kind = iota
	KindNull
	KindBoolean
	KindInt64
	KindFloat64
	KindString
	KindSymbol
	KindObject
	KindFunctionDef
	KindModuleDef
	KindClosureVar
	KindCppFunction
	KindGeneratorNext
	KindPromiseResolve
	KindPromiseReject
	KindExportVar
)

func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindInt64:
		return "int64"
	case KindFloat64:
		return "float64"
	case KindString:
		return "string"
	case KindSymbol:
		return "symbol"
	case KindObject:
		return "object"
	case KindFunctionDef:
		return "function_def"
	case KindModuleDef:
		return "module_def"
	case KindClosureVar:
		return "closure_var"
	case KindCppFunction:
		return "cpp_function"
	case KindGeneratorNext:
		return "generator_next"
	case KindPromiseResolve:
		return "promise_resolve"
	case KindPromiseReject:
		return "promise_reject"
	case KindExportVar:
		return "export_var"
	default:
		return "unknown"
	}
}

// CppFunction is the host-callable signature every builtin and embedder
// binding uses. ctx is the interpreter's vm.Environment and frame is a
// *vm.HostCall, both threaded in as any to avoid an import cycle between
// value and vm; callers type-assert them back.
type CppFunction func(ctx any, argc uint32, frame any) Value

// Value is the 40-byte (on 64-bit platforms) tagged union every engine value is represented as.
// num holds Int64/Float64 bit patterns and Boolean; ptr holds every pointer
// variant. exception marks a Value "in flight" as a thrown error per the
// exception-bit sentinel modifier. constIdx caches the interned ConstIndex of
// this exact value when it was produced via a constant-pool load, 0 (invalid)
// otherwise.
type Value struct {
	kind Kind
	exception bool
	num uint64
	ptr unsafe.Pointer
	fn CppFunction
	constIdx ConstIndex
}

// Undefined is the canonical undefined Value.
var Undefined = Value{kind: KindUndefined}

// Null is the canonical null Value.
var Null = Value{kind: KindNull}

func Bool(b bool) Value {
	var n uint64
	if b {
		n = 1
	}
	return Value{kind: KindBoolean, num: n}
}

func Int64(i int64) Value {
	return Value{kind: KindInt64, num: uint64(i)}
}

func Float64(f float64) Value {
	return Value{kind: KindFloat64, num: math.Float64bits(f)}
}

// StringPtr, SymbolPtr, ObjectPtr, FunctionDefPtr, ModuleDefPtr, ClosureVarPtr
// and ExportVarPtr wrap a pointer to the corresponding heap/refcounted type.
// The pointer is stored as unsafe.Pointer only at the Value boundary; every
// producer/consumer immediately casts back to its concrete *T, so this does
// not defeat the garbage collector's ability to trace live objects reached
// through an *object.Object field elsewhere in the graph — only the Value
// struct's own internals are untyped, and Value itself is never the sole
// reference keeping an object alive (the owning slot/stack/root always holds
// a concretely typed pointer too; see gcheap/roots.go).
func StringPtr(p unsafe.Pointer) Value { return Value{kind: KindString, ptr: p} }
func SymbolPtr(p unsafe.Pointer) Value { return Value{kind: KindSymbol, ptr: p} }
func ObjectPtr(p unsafe.Pointer) Value { return Value{kind: KindObject, ptr: p} }
func FunctionDefPtr(p unsafe.Pointer) Value { return Value{kind: KindFunctionDef, ptr: p} }
func ModuleDefPtr(p unsafe.Pointer) Value { return Value{kind: KindModuleDef, ptr: p} }
func ClosureVarPtr(p unsafe.Pointer) Value { return Value{kind: KindClosureVar, ptr: p} }
func ExportVarPtr(p unsafe.Pointer) Value { return Value{kind: KindExportVar, ptr: p} }

func Cpp(fn CppFunction) Value {
	return Value{kind: KindCppFunction, fn: fn}
}

func GeneratorNext() Value { return Value{kind: KindGeneratorNext} }

func PromiseResolve(p unsafe.Pointer) Value { return Value{kind: KindPromiseResolve, ptr: p} }
func PromiseReject(p unsafe.Pointer) Value { return Value{kind: KindPromiseReject, ptr: p} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsUndefined() bool { return v.kind == KindUndefined }
func (v Value) IsNull() bool { return v.kind == KindNull }
func (v Value) IsNullish() bool { return v.kind == KindUndefined || v.kind == KindNull }

func (v Value) Bool() bool { return v.num != 0 }
func (v Value) Int64() int64 { return int64(v.num) }
func (v Value) Float64() float64 { return math.Float64frombits(v.num) }

// Number reports whether the Value holds Int64 or Float64, and its float64
// value either way (widening Int64 losslessly for the ranges the interpreter
// actually sees integers in).
func (v Value) Number() (float64, bool) {
	switch v.kind {
	case KindInt64:
		return float64(v.Int64()), true
	case KindFloat64:
		return v.Float64(), true
	default:
		return 0, false
	}
}

func (v Value) Ptr() unsafe.Pointer { return v.ptr }
func (v Value) Fn() CppFunction { return v.fn }

// WithException returns a copy of v flagged as an in-flight exception
// ("sentinel modifiers").
func (v Value) WithException() Value {
	v.exception = true
	return v
}

// ClearException returns a copy of v with the exception bit cleared.
func (v Value) ClearException() Value {
	v.exception = false
	return v
}

func (v Value) IsException() bool { return v.exception }

// ConstIndex returns the interned slot index of v if it was produced by a
// constant-pool load, or the invalid index otherwise.
func (v Value) ConstIndex() ConstIndex { return v.constIdx }

// WithConstIndex tags v with the ConstIndex it was loaded from.
func (v Value) WithConstIndex(idx ConstIndex) Value {
	v.constIdx = idx
	return v
}

// StrictEquals implements the equality invariant: strings/symbols
// compare by content/identity (resolved by the caller passing already-interned
// pointers, since String/Symbol are refcounted canonical objects), objects by
// pointer identity, numbers by numeric equality (NaN never equals itself, as
// in JS).
func (a Value) StrictEquals(b Value) bool {
	if a.kind != b.kind {
		// Int64/Float64 cross-kind equality is handled by the interpreter's
		// Eq opcode via Number(), not here: StrictEquals models `===`.
		return false
	}
	switch a.kind {
	case KindUndefined, KindNull:
		return true
	case KindBoolean:
		return a.num == b.num
	case KindInt64:
		return a.Int64() == b.Int64()
	case KindFloat64:
		af, bf := a.Float64(), b.Float64()
		return af == bf
	case KindString, KindSymbol, KindObject, KindFunctionDef, KindModuleDef,
		KindClosureVar, KindExportVar, KindPromiseResolve, KindPromiseReject:
		return a.ptr == b.ptr
	case KindCppFunction:
		return false // Go func values are not comparable
	case KindGeneratorNext:
		return true
	default:
		return false
	}
}
