// Package classdef implements the built-in class table:
// Object, Array, String, Promise, Generator/Async, Symbol and Function, each
// a ClassDef holding the class's constructor object, prototype object, and
// any interned keys the class's own methods need repeatedly. Table is built
// once, by runtime.Runtime at construction, and is read-only afterward
// ("Shared resources": "class-def table — populated at Runtime
// construction, read-only thereafter").
package classdef

import (
	"github.com/voskan/mjsvm/gcheap"
	"github.com/voskan/mjsvm/jsstring"
	"github.com/voskan/mjsvm/object"
	"github.com/voskan/mjsvm/shape"
	"github.com/voskan/mjsvm/value"
)

// objSize is the byte estimate passed to Heap.Allocate for the handful of
// long-lived class/prototype objects Table builds at bootstrap — nowhere
// near accounting for every property slot, but these never get scavenged
// (they are GC roots for the runtime's whole lifetime) so the estimate only
// matters for the heap's running statistics, not correctness.
const objSize = 64

// ClassDef names one built-in class: which ClassID it governs, its
// constructor function object (nil for classes with no `new` form, e.g.
// Generator), and its prototype object.
type ClassDef struct {
	ID object.ClassID
	Name string
	NameKey value.ConstIndex
	Constructor *object.Object
	Prototype *object.Object
}

// Table holds every built-in ClassDef, indexed by ClassID, plus the
// frequently-used interned property keys shared across classes (e.g.
// "length", "constructor").
type Table struct {
	defs [object.NumBuiltinClasses]*ClassDef

	Object *ClassDef
	Array *ClassDef
	String *ClassDef
	Function *ClassDef
	Promise *ClassDef
	Generator *ClassDef
	AsyncGen *ClassDef
	Symbol *ClassDef
	Error *ClassDef

	Keys keyTable
}

// Get returns id's ClassDef, or nil if id has no built-in class (e.g. a
// ClassModule object, or an embedder-registered id past NumBuiltinClasses).
func (t *Table) Get(id object.ClassID) *ClassDef {
	if int(id) < 0 || int(id) >= len(t.defs) {
		return nil
	}
	return t.defs[id]
}

// PrototypeFor implements the default half of the Environment.PrototypeFor
// contract every runtime.Context delegates to: the prototype a freshly
// allocated object of id gets when no constructor supplies its own.
func (t *Table) PrototypeFor(id object.ClassID) *object.Object {
	if d := t.Get(id); d != nil {
		return d.Prototype
	}
	return nil
}

// Global is the subset of *constpool.Global classdef needs at bootstrap.
// Named as its own interface (rather than importing constpool's concrete
// type directly into boot's field) purely so test code can substitute a
// lighter double; runtime.Runtime always passes its real *constpool.Global.
type Global interface {
	InternString(s string, makeValue func() value.Value) value.ConstIndex
}

// boot is the bootstrap-time allocator: classdef.Table is built before any
// vm.Environment exists (the Table itself becomes the implementation behind
// PrototypeFor), so it cannot go through Environment.NewObject — that would
// be circular. It allocates directly against the heap and empty shape
// runtime.Runtime already owns at this point.
type boot struct {
	heap *gcheap.Heap
	shape *shape.Shape
	global Global
}

func (b *boot) newObject(classID object.ClassID, proto *object.Object) *object.Object {
	o := object.New(classID, proto, b.shape)
	b.heap.Allocate(o, objSize)
	return o
}

func (b *boot) key(s string) value.ConstIndex {
	return b.global.InternString(s, func() value.Value { return jsstringValue(s) })
}

// jsstringValue wraps a Go string as a fresh interpreter String Value; every
// class file shares it instead of spelling out jsstring.ToValue(jsstring.New(s))
// at each call site.
func jsstringValue(s string) value.Value {
	return jsstring.ToValue(jsstring.New(s))
}

func (b *boot) nativeFunc(fn value.CppFunction) value.Value {
	obj := b.newObject(object.ClassFunction, nil)
	obj.Func = &object.FunctionData{Native: fn}
	return object.ToValue(obj)
}

// defineMethod installs a non-enumerable native method, matching how real
// engines expose Array.prototype.push etc. (an enumerable own property on a
// prototype would otherwise leak into a for-in loop over every instance).
func (b *boot) defineMethod(proto *object.Object, name string, fn value.CppFunction) {
	key := b.key(name)
	proto.SetProperty(key, b.nativeFunc(fn))
	if slot, ok := proto.Shape.Find(key); ok && slot < len(proto.Properties) {
		proto.Properties[slot].Set(object.FlagEnumerable, false)
	}
}

func (b *boot) defineAccessor(obj *object.Object, name string, get, set value.CppFunction) {
	getVal, setVal := value.Undefined, value.Undefined
	if get != nil {
		getVal = b.nativeFunc(get)
	}
	if set != nil {
		setVal = b.nativeFunc(set)
	}
	obj.DefineAccessorProperty(b.key(name), getVal, setVal, false, true)
}

// keyTable is the handful of ConstIndex values multiple class files share.
type keyTable struct {
	Length value.ConstIndex
	Constructor value.ConstIndex
	Name value.ConstIndex
	Message value.ConstIndex
	Prototype value.ConstIndex
}

// NewTable builds every built-in ClassDef and wires each prototype's
// __proto__ chain ("Object: prototype is the root, its own
// __proto__ is null"; every other built-in prototype chains to
// Object.prototype). heap and rootShape come from the owning Runtime;
// global is the process-wide constant pool new classes intern their method
// names into.
func NewTable(heap *gcheap.Heap, rootShape *shape.Shape, global Global) *Table {
	b := &boot{heap: heap, shape: rootShape, global: global}

	t := &Table{}
	t.Keys = keyTable{
		Length: b.key("length"),
		Constructor: b.key("constructor"),
		Name: b.key("name"),
		Message: b.key("message"),
		Prototype: b.key("prototype"),
	}

	objectProto := b.newObject(object.ClassPlainObject, nil)
	t.Object = &ClassDef{ID: object.ClassPlainObject, Name: "Object", NameKey: b.key("Object"), Prototype: objectProto}
	t.defs[object.ClassPlainObject] = t.Object

	buildArray(b, t, objectProto)
	buildString(b, t, objectProto)
	buildFunction(b, t, objectProto)
	buildPromise(b, t, objectProto)
	buildGenerator(b, t, objectProto)
	buildSymbol(b, t, objectProto)
	buildError(b, t, objectProto)

	installObjectStatics(b, t)

	return t
}
