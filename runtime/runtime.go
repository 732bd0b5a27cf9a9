// Package runtime wires every other package into the two top-level types an
// embedder actually constructs: Runtime (process/VM-instance-wide shared
// state) and Context (one isolated execution realm).
package runtime

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/voskan/mjsvm/classdef"
	"github.com/voskan/mjsvm/constpool"
	"github.com/voskan/mjsvm/gcheap"
	"github.com/voskan/mjsvm/internal/metrics"
	"github.com/voskan/mjsvm/jserror"
	"github.com/voskan/mjsvm/jsstring"
	"github.com/voskan/mjsvm/module"
	"github.com/voskan/mjsvm/object"
	"github.com/voskan/mjsvm/shape"
	"github.com/voskan/mjsvm/value"
)

// bootHeapBytes sizes the small heap backing the class table's own
// constructor/prototype objects. These are permanent GC roots (every
// Context's PrototypeFor resolves into this heap's objects for its whole
// lifetime) so the heap never needs to grow past its bootstrap set.
const bootHeapBytes = 1 << 16

// Runtime owns every piece of process-wide shared state: the global
// constant pool, the class-def table,
// the module manager, the process-wide shape transition tree, and the
// global `this` object. One default Context is created alongside it; an
// embedder wanting isolated realms constructs additional ones with
// NewContext.
type Runtime struct {
	logger *zap.Logger
	registry *prometheus.Registry
	metricsSink metrics.Sink

	globals *constpool.Global
	shapes *shape.Manager
	classes *classdef.Table
	globalThis *object.Object
	modules *module.Manager
	diskCache *module.DiskCache
	bootHeap *gcheap.Heap

	Default *Context
}

// New constructs a Runtime and its default Context.
func New(opts ...RuntimeOption) (*Runtime, error) {
	cfg, err := applyRuntimeOptions(opts)
	if err != nil {
		return nil, err
	}

	sink := metrics.Noop
	if cfg.registry != nil {
		sink = metrics.NewPromSink(cfg.registry)
	}

	rt := &Runtime{
		logger: cfg.logger,
		registry: cfg.registry,
		metricsSink: sink,
		globals: constpool.NewGlobal(),
		shapes: shape.NewManager(),
	}
	rt.bootHeap = gcheap.NewHeap(bootHeapBytes, gcheap.WithLogger(rt.logger), gcheap.WithMetrics(sink))
	rt.classes = classdef.NewTable(rt.bootHeap, rt.shapes.EmptyShape, rt.globals)

	rt.globalThis = object.New(object.ClassPlainObject, rt.classes.PrototypeFor(object.ClassPlainObject), rt.shapes.EmptyShape)
	rt.bootHeap.Allocate(rt.globalThis, bootObjSize)

	var diskCache *module.DiskCache
	if cfg.moduleCacheDir != "" {
		diskCache, err = module.OpenDiskCache(cfg.moduleCacheDir, cfg.logger)
		if err != nil {
			return nil, err
		}
	}
	rt.diskCache = diskCache
	rt.modules = module.NewManager(cfg.source, cfg.builder, diskCache, cfg.logger, sink)

	rt.bindGlobals()

	rt.Default = rt.NewContext()
	return rt, nil
}

// NewContext constructs an additional isolated execution realm sharing this
// Runtime's global constant pool, class table, module manager and global
// `this`, with its own heap, locals, stack and promise queue.
func (rt *Runtime) NewContext(opts ...ContextOption) *Context {
	cfg := applyContextOptions(opts)
	return newContext(rt, cfg)
}

// Classes returns the shared, read-only-after-construction class-def table.
func (rt *Runtime) Classes() *classdef.Table { return rt.classes }

// Modules returns the shared module manager.
func (rt *Runtime) Modules() *module.Manager { return rt.modules }

// Logger returns the Runtime's structured logger.
func (rt *Runtime) Logger() *zap.Logger { return rt.logger }

// Registry returns the Prometheus registry passed to WithMetrics, or nil if
// the embedder never enabled metrics. internal/diagnostics.NewMux treats a
// nil gatherer as "omit /metrics", so metrics stay fully optional.
func (rt *Runtime) Registry() *prometheus.Registry { return rt.registry }

// Close releases the optional module disk cache; safe to call even if one
// was never opened.
func (rt *Runtime) Close() error {
	if rt.diskCache == nil {
		return nil
	}
	return rt.diskCache.Close()
}

// bindGlobals installs every built-in constructor the class table produced
// onto globalThis, plus the four additional Error subclasses that share
// ClassError's single prototype/ClassID and are distinguished only by the
// `name` jserror.New stamps onto each instance.
func (rt *Runtime) bindGlobals() {
	bind := func(name string, ctor *object.Object) {
		if ctor == nil {
			return
		}
		key := rt.globals.InternString(name, func() value.Value {
			return jsstring.ToValue(jsstring.New(name))
		})
		rt.globalThis.SetProperty(key, object.ToValue(ctor))
	}

	bind("Object", rt.classes.Object.Constructor)
	bind("Array", rt.classes.Array.Constructor)
	bind("Promise", rt.classes.Promise.Constructor)
	bind("Symbol", rt.classes.Symbol.Constructor)
	bind("Error", rt.classes.Error.Constructor)

	for _, kind := range []jserror.Kind{jserror.TypeError, jserror.RangeError, jserror.ReferenceError, jserror.SyntaxError} {
		ctor := object.New(object.ClassFunction, rt.classes.PrototypeFor(object.ClassFunction), rt.shapes.EmptyShape)
		rt.bootHeap.Allocate(ctor, bootObjSize)
		ctor.Func = &object.FunctionData{Native: classdef.ErrorCtor(kind)}
		bind(string(kind), ctor)
	}
}

// bootObjSize mirrors classdef's own bootstrap allocation estimate for the
// handful of permanent objects Runtime itself (rather than Table) creates.
const bootObjSize = 64
