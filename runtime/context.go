package runtime

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/voskan/mjsvm/constpool"
	"github.com/voskan/mjsvm/gcheap"
	"github.com/voskan/mjsvm/generator"
	"github.com/voskan/mjsvm/jserror"
	"github.com/voskan/mjsvm/jsstring"
	"github.com/voskan/mjsvm/object"
	"github.com/voskan/mjsvm/promise"
	"github.com/voskan/mjsvm/shape"
	"github.com/voskan/mjsvm/value"
	"github.com/voskan/mjsvm/vm"
)

// Context implements vm.Environment and module.ModuleContext: one isolated
// execution realm sharing its parent Runtime's global constant pool, class
// table, global `this` and module manager, but owning its own heap, local
// constant pool, operand stack, promise job queue and identity.
type Context struct {
	ID uuid.UUID

	rt *Runtime
	heap *gcheap.Heap
	local *constpool.Local
	stack *vm.Stack
	queue *promise.JobQueue
	interp *vm.Interpreter
	logger *zap.Logger
}

func newContext(rt *Runtime, cfg *contextConfig) *Context {
	ctx := &Context{
		ID: uuid.New(),
		rt: rt,
		local: constpool.NewLocal(),
		stack: vm.NewStack(256),
		queue: promise.NewJobQueue(),
		logger: rt.logger,
	}
	ctx.heap = gcheap.NewHeap(cfg.semiSpaceBytes,
		gcheap.WithLogger(rt.logger),
		gcheap.WithMetrics(rt.metricsSink),
		gcheap.WithGCThreshold(cfg.gcThresholdPct),
	)
	ctx.heap.AddRootSource(ctx.stack)
	ctx.heap.AddRootSource(ctx.queue)

	ctx.interp = vm.NewInterpreter(ctx)
	genHook := &generator.Hook{Env: ctx, Queue: ctx.queue}
	ctx.interp.Generators = genHook
	ctx.interp.Promises = &promise.Hook{Env: ctx, Queue: ctx.queue}
	return ctx
}

// Interp returns this Context's Interpreter, for module.Manager's
// instantiation path and any embedder that drives calls directly.
func (c *Context) Interp() *vm.Interpreter { return c.interp }

// Stack returns this Context's single operand/locals stack.
func (c *Context) Stack() *vm.Stack { return c.stack }

// PromiseQueue returns this Context's microtask queue.
func (c *Context) PromiseQueue() *promise.JobQueue { return c.queue }

// Logger returns the structured logger this Context and its Runtime share.
func (c *Context) Logger() *zap.Logger { return c.logger }

// DrainMicrotasks runs every queued promise reaction to completion, matching
// the embedder-driven event-loop tick: mjsvm does not own an event loop
// itself.
func (c *Context) DrainMicrotasks() {
	before := c.queue.Len()
	c.queue.Drain(c.interp, c.stack)
	c.rt.metricsSink.IncMicrotasksDrained(before)
}

// vm.Environment implementation. Heap/allocation/class-resolution delegate
// to the owning Context's heap and the Runtime-wide classdef.Table; global
// constants, the class table and the global `this` object are shared with
// every other Context of the same Runtime.

func (c *Context) Heap() *gcheap.Heap { return c.heap }
func (c *Context) GlobalConsts() *constpool.Global { return c.rt.globals }
func (c *Context) LocalConsts() *constpool.Local { return c.local }
func (c *Context) EmptyShape() *shape.Shape { return c.rt.shapes.EmptyShape }
func (c *Context) GlobalThis() value.Value { return object.ToValue(c.rt.globalThis) }

func (c *Context) PrototypeFor(classID object.ClassID) *object.Object {
	return c.rt.classes.PrototypeFor(classID)
}

func (c *Context) NewObject(classID object.ClassID) *object.Object {
	obj := object.New(classID, c.PrototypeFor(classID), c.EmptyShape())
	c.heap.Allocate(obj, objectAllocSize)
	return obj
}

func (c *Context) GetModule(pathConst value.ConstIndex) value.Value {
	path := c.constString(pathConst)
	return c.rt.modules.GetModule(c, path)
}

func (c *Context) GetModuleAsync(pathConst value.ConstIndex) value.Value {
	path := c.constString(pathConst)
	return c.rt.modules.GetModuleAsync(c, path)
}

func (c *Context) ThrowTypeError(format string, args ...any) value.Value {
	return jserror.New(c, c.stack.Frames(), jserror.TypeError, format, args ...)
}

func (c *Context) ThrowRangeError(format string, args ...any) value.Value {
	return jserror.New(c, c.stack.Frames(), jserror.RangeError, format, args ...)
}

func (c *Context) ThrowReferenceError(format string, args ...any) value.Value {
	return jserror.New(c, c.stack.Frames(), jserror.ReferenceError, format, args ...)
}

// constString resolves a global constant index expected to hold a module
// specifier string. GetModule/GetModuleAsync are only ever reached from the
// Module opcode family, which always loads its operand from the global
// pool (module specifiers are literals, never locals).
func (c *Context) constString(idx value.ConstIndex) string {
	v, ok := c.rt.globals.Get(idx)
	if !ok {
		return ""
	}
	s := jsstring.FromValue(v)
	if s == nil {
		return ""
	}
	return s.Data
}

// objectAllocSize is the flat per-object byte charge NewObject reports to
// the heap's occupancy accounting; mjsvm does not size objects individually
//,
// matching vm's own fakeEnv test double.
const objectAllocSize = 64
