package classdef

import (
	"sync"

	"github.com/voskan/mjsvm/object"
	"github.com/voskan/mjsvm/symbol"
	"github.com/voskan/mjsvm/value"
	"github.com/voskan/mjsvm/vm"
)

// registry backs Symbol.for's interning table 
// interns into the context's symbol table"). Kept at the Runtime-wide Table
// level rather than per-Context: runtime.Context isn't built in this layer
// of the system and threading a registry through it would mean classdef
// reaching back into runtime, which would cycle. A single process-wide table
// still gives Symbol.for(name) === Symbol.for(name) everywhere it is
// observable; two unrelated Contexts wanting isolated registries is the one
// case this does not model.
type registry struct {
	mu sync.Mutex
	byID map[string]*symbol.Symbol
}

func newRegistry() *registry {
	return &registry{byID: make(map[string]*symbol.Symbol)}
}

func (r *registry) forName(name string) *symbol.Symbol {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.byID[name]; ok {
		return s
	}
	s := symbol.New(name)
	r.byID[name] = s
	return s
}

// buildSymbol installs the Symbol class: `Symbol(description)` as
// a plain callable (never constructible with `new`, matching real JS),
// `Symbol.for(name)` backed by registry, and the well-known `Symbol.iterator`.
func buildSymbol(b *boot, t *Table, objectProto *object.Object) {
	proto := b.newObject(object.ClassPlainObject, objectProto)
	t.Symbol = &ClassDef{ID: object.ClassSymbol, Name: "Symbol", NameKey: b.key("Symbol"), Prototype: proto}
	t.defs[object.ClassSymbol] = t.Symbol

	reg := newRegistry()
	ctorFn := b.nativeFunc(symbolConstructor)
	ctor := object.FromValue(ctorFn)
	b.defineMethod(ctor, "for", func(ctx any, argc uint32, frame any) value.Value {
		hc := frame.(*vm.HostCall)
		name := argString(hc, 0)
		return symbol.ToValue(reg.forName(name))
	})
	ctor.SetProperty(b.key("iterator"), symbol.ToValue(symbol.New("Symbol.iterator")))
	t.Symbol.Constructor = ctor
}

func symbolConstructor(ctx any, argc uint32, frame any) value.Value {
	hc := frame.(*vm.HostCall)
	if hc.IsNew {
		return hc.Env.ThrowTypeError("Symbol is not a constructor")
	}
	desc := ""
	if !hc.Arg(0).IsUndefined() {
		desc = argString(hc, 0)
	}
	return symbol.ToValue(symbol.New(desc))
}
