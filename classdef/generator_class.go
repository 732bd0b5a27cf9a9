package classdef

import (
	"github.com/voskan/mjsvm/object"
	"github.com/voskan/mjsvm/value"
)

// buildGenerator installs the Generator/Async prototypes: each
// holds a `next` bound to the KindGeneratorNext sentinel (vm.Interpreter.Call
// special-cases that Value kind directly, dispatching to whatever
// generator.Hook is wired onto the calling Interpreter — see
// vm/interpreter.go's Call and generator/hook.go's CallNext). Neither class
// has a `new`-constructible form: generator/async objects are only ever
// produced by calling a `function*`/`async function` value.
func buildGenerator(b *boot, t *Table, objectProto *object.Object) {
	genProto := b.newObject(object.ClassPlainObject, objectProto)
	genProto.SetProperty(b.key("next"), value.GeneratorNext())
	t.Generator = &ClassDef{ID: object.ClassGenerator, Name: "Generator", NameKey: b.key("Generator"), Prototype: genProto}
	t.defs[object.ClassGenerator] = t.Generator

	asyncProto := b.newObject(object.ClassPlainObject, objectProto)
	t.AsyncGen = &ClassDef{ID: object.ClassAsyncGenerator, Name: "AsyncGenerator", NameKey: b.key("AsyncGenerator"), Prototype: asyncProto}
	t.defs[object.ClassAsyncGenerator] = t.AsyncGen
}
