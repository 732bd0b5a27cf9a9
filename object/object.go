package object

import (
	"github.com/voskan/mjsvm/shape"
	"github.com/voskan/mjsvm/value"
)

// AccessorPair holds the getter/setter functions for an accessor property.
// Either half may be value.Undefined. Kept as a separate field on Slot
// rather than shoehorned into Slot.Value, since the Value variant list
// has no "accessor" kind of its own.
type AccessorPair struct {
	Get value.Value
	Set value.Value
}

// ObjectSlot extends Slot with the optional accessor pair.
type ObjectSlot struct {
	Slot
	Accessor *AccessorPair
}

// Object is the base heap object every JS object, array, function, etc. is
// built from.
type Object struct {
	Header Header

	ClassID ClassID
	IsExtensible bool
	IsFrozenFlag bool
	IsSealedFlag bool
	ProtoWasSet bool // true once the user explicitly assigned __proto__
	Proto *Object

	Shape *shape.Shape
	Properties []ObjectSlot

	// ArrayLength backs the synthetic `length` property classdef's Array
	// prototype installs as an accessor; only meaningful for ClassArray
	// objects, which store their elements as ordinary own properties keyed
	// by stringified index.
	ArrayLength int

	// Func is non-nil only for ClassFunction (and ClassGenerator/
	// ClassAsyncGenerator, which are functions that additionally carry
	// generator state elsewhere) objects; see function.go.
	Func *FunctionData

	// Promise is non-nil only for ClassPromise objects; see promise.go.
	Promise *PromiseData

	// Ext is an opaque back-reference to a higher-level package's per-
	// instance state that this package cannot name directly without an
	// import cycle — e.g. package generator's *Generator for a
	// ClassGenerator/ClassAsyncGenerator object (generator imports vm,
	// which imports object). Whatever sets Ext is responsible for also
	// setting ExtraRoots if that state holds Values GC must trace.
	Ext any

	// ExtraRoots, when non-nil, is invoked by GCTraverse to visit Values a
	// higher-level package's Ext data keeps alive that Object has no
	// concrete field for (same reason as Ext above). Mirrors the
	// WriteBarrier/Finalizer hook-function pattern already used here to
	// let lower packages call into higher ones without an import.
	ExtraRoots func(visit func(*value.Value))

	// WriteBarrier, when non-nil, is invoked after every store into one of
	// this object's property slots. gcheap installs it once an object is
	// promoted to old space, recording the object itself into its remembered
	// set so a future Scavenge rescans it for old-to-young references
	// ("Write barrier"); object deliberately has no gcheap
	// import, so the barrier is wired in from outside.
	WriteBarrier func()

	// Finalizer, when non-nil, runs exactly once, the first time a GC cycle
	// determines this object is unreachable.
	Finalizer func()
}

// New constructs an Object of the given class rooted at the empty shape,
// extensible, with the given default prototype (typically ClassDef.Prototype
// looked up by the caller, who owns the classdef.Table).
func New(classID ClassID, proto *Object, emptyShape *shape.Shape) *Object {
	o := &Object{
		ClassID: classID,
		IsExtensible: true,
		Proto: proto,
		Shape: emptyShape,
	}
	emptyShape.Retain()
	return o
}

// LookupKind discriminates the outcome of a property resolution.
type LookupKind uint8

const (
	LookupNotFound LookupKind = iota
	LookupData
	LookupAccessor
)

// PropertyLookup is the result of walking the prototype chain for a read.
// Calling a getter requires the interpreter, so GetProperty stops short of
// invoking it and leaves that to the caller (see vm package).
type PropertyLookup struct {
	Kind LookupKind
	Value value.Value
	Getter value.Value
	Setter value.Value
	Owner *Object
}

// ownSlot finds key in o's own shape/properties only.
func (o *Object) ownSlot(key value.ConstIndex) (*ObjectSlot, bool) {
	idx, ok := o.Shape.Find(key)
	if !ok || idx >= len(o.Properties) {
		return nil, false
	}
	return &o.Properties[idx], true
}

// GetProperty implements the read algorithm: own shape lookup,
// then walk the prototype chain.
func (o *Object) GetProperty(key value.ConstIndex) PropertyLookup {
	cur := o
	for cur != nil {
		if slot, ok := cur.ownSlot(key); ok {
			if slot.Has(FlagIsGetter) || slot.Has(FlagIsSetter) {
				getter, setter := value.Undefined, value.Undefined
				if slot.Accessor != nil {
					getter, setter = slot.Accessor.Get, slot.Accessor.Set
				}
				return PropertyLookup{Kind: LookupAccessor, Getter: getter, Setter: setter, Owner: cur}
			}
			return PropertyLookup{Kind: LookupData, Value: slot.Value, Owner: cur}
		}
		cur = cur.Proto
	}
	return PropertyLookup{Kind: LookupNotFound}
}

// SetKind discriminates how SetProperty handled a write.
type SetKind uint8

const (
	SetDone SetKind = iota
	SetCallSetter
	SetIgnored
)

// SetOutcome is the result of attempting a write; SetCallSetter defers to
// the interpreter to actually invoke Setter.
type SetOutcome struct {
	Kind SetKind
	Setter value.Value
}

// SetProperty implements the write algorithm including the shape
// transition for brand-new own properties.
func (o *Object) SetProperty(key value.ConstIndex, v value.Value) SetOutcome {
	if slot, ok := o.ownSlot(key); ok {
		if slot.Has(FlagIsSetter) || slot.Has(FlagIsGetter) {
			if slot.Accessor != nil && !slot.Accessor.Set.IsUndefined() {
				return SetOutcome{Kind: SetCallSetter, Setter: slot.Accessor.Set}
			}
			return SetOutcome{Kind: SetIgnored}
		}
		if !slot.Has(FlagWritable) {
			return SetOutcome{Kind: SetIgnored}
		}
		slot.Value = v
		o.fireWriteBarrier()
		return SetOutcome{Kind: SetDone}
	}

	// Walk the chain only far enough to discover an inherited setter; plain
	// inherited data properties never block creating an own property.
	for proto := o.Proto; proto != nil; proto = proto.Proto {
		if slot, ok := proto.ownSlot(key); ok && (slot.Has(FlagIsSetter) || slot.Has(FlagIsGetter)) {
			if slot.Accessor != nil && !slot.Accessor.Set.IsUndefined() {
				return SetOutcome{Kind: SetCallSetter, Setter: slot.Accessor.Set}
			}
			return SetOutcome{Kind: SetIgnored}
		}
	}

	if !o.IsExtensible {
		return SetOutcome{Kind: SetIgnored}
	}

	o.defineOwnDataProperty(key, v, DefaultDataFlags)
	return SetOutcome{Kind: SetDone}
}

// defineOwnDataProperty appends a new property slot and transitions the
// object's shape ("Write", case "Slot doesn't exist, object is
// extensible").
func (o *Object) defineOwnDataProperty(key value.ConstIndex, v value.Value, flags SlotFlags) {
	o.Shape.Release()
	o.Shape = o.Shape.Transition(key)
	o.Shape.Retain()
	o.Properties = append(o.Properties, ObjectSlot{Slot: Slot{Value: v, Flags: flags}})
	o.fireWriteBarrier()
}

func (o *Object) fireWriteBarrier() {
	if o.WriteBarrier != nil {
		o.WriteBarrier()
	}
}

// DefineAccessorProperty defines (or redefines) key as an accessor with the
// given getter/setter pair, used by Object.defineProperty and class
// installation.
func (o *Object) DefineAccessorProperty(key value.ConstIndex, get, set value.Value, enumerable, configurable bool) {
	flags := SlotFlags(0)
	if get.Kind() != value.KindUndefined {
		flags |= FlagIsGetter
	}
	if set.Kind() != value.KindUndefined {
		flags |= FlagIsSetter
	}
	if enumerable {
		flags |= FlagEnumerable
	}
	if configurable {
		flags |= FlagConfigurable
	}
	if slot, ok := o.ownSlot(key); ok {
		slot.Flags = flags
		slot.Accessor = &AccessorPair{Get: get, Set: set}
		o.fireWriteBarrier()
		return
	}
	o.Shape.Release()
	o.Shape = o.Shape.Transition(key)
	o.Shape.Retain()
	o.Properties = append(o.Properties, ObjectSlot{
		Slot: Slot{Flags: flags},
		Accessor: &AccessorPair{Get: get, Set: set},
	})
	o.fireWriteBarrier()
}

// DeleteOwnProperty removes key if it is configurable. It does not rewrite
// the shape tree; property removal is handled by leaving a hole, since
// shrink-on-delete would require a distinct transition kind and real engines
// generally avoid it too.
func (o *Object) DeleteOwnProperty(key value.ConstIndex) bool {
	slot, ok := o.ownSlot(key)
	if !ok {
		return true
	}
	if !slot.Has(FlagConfigurable) {
		return false
	}
	slot.Value = value.Undefined
	slot.Accessor = nil
	slot.Flags = 0
	return true
}

// PreventExtensions implements Object.preventExtensions.
func (o *Object) PreventExtensions() { o.IsExtensible = false }

// Seal implements Object.seal: preventExtensions plus configurable=false on
// every own property.
func (o *Object) Seal() {
	o.IsExtensible = false
	o.IsSealedFlag = true
	for i := range o.Properties {
		o.Properties[i].Set(FlagConfigurable, false)
	}
}

// Freeze implements Object.freeze: seal plus writable=false on every own
// data property.
func (o *Object) Freeze() {
	o.Seal()
	o.IsFrozenFlag = true
	for i := range o.Properties {
		if !o.Properties[i].Has(FlagIsGetter) && !o.Properties[i].Has(FlagIsSetter) {
			o.Properties[i].Set(FlagWritable, false)
		}
	}
}

func (o *Object) IsSealed() bool { return o.IsSealedFlag }
func (o *Object) IsFrozen() bool { return o.IsFrozenFlag }

// SetProto implements the __proto__ assignment path (the set_proto flag):
// once set explicitly, GCTraverse must still visit Proto, but class-id-default
// resolution no longer applies if Proto is nil'd out.
func (o *Object) SetProto(proto *Object) {
	o.Proto = proto
	o.ProtoWasSet = true
}

// GCTraverse visits every Value/Object reference reachable directly from o.
// The collector (package gcheap) uses it, together with Proto, to find every
// object reachable from a given object.
func (o *Object) GCTraverse(visit func(*value.Value)) {
	for i := range o.Properties {
		visit(&o.Properties[i].Value)
		if o.Properties[i].Accessor != nil {
			visit(&o.Properties[i].Accessor.Get)
			visit(&o.Properties[i].Accessor.Set)
		}
	}
	if o.Func != nil {
		for _, cv := range o.Func.ClosureVars {
			visit(&cv.Boxed)
		}
		if o.Func.HasLexicalThis {
			visit(&o.Func.LexicalThis)
		}
	}
	if o.Promise != nil {
		visit(&o.Promise.Result)
		for i := range o.Promise.OnFulfill {
			visit(&o.Promise.OnFulfill[i])
		}
		for i := range o.Promise.OnReject {
			visit(&o.Promise.OnReject[i])
		}
	}
	if o.ExtraRoots != nil {
		o.ExtraRoots(visit)
	}
}
