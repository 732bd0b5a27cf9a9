package module

import (
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/voskan/mjsvm/funcdef"
	"github.com/voskan/mjsvm/internal/metrics"
	"github.com/voskan/mjsvm/object"
	"github.com/voskan/mjsvm/promise"
	"github.com/voskan/mjsvm/value"
	"github.com/voskan/mjsvm/vm"
)

// ModuleContext is the slice of runtime.Context the Manager needs to
// instantiate a compiled module: enough to allocate the namespace object and
// run the module's top-level frame, without module importing runtime (which
// in turn imports module, so the dependency must run the other way).
type ModuleContext interface {
	vm.Environment
	Interp() *vm.Interpreter
	Stack() *vm.Stack
	PromiseQueue() *promise.JobQueue
}

// Manager implements the section 6 "Module interface" contract: GetModule,
// GetModuleAsync, AddCppModule, ClearModuleCache. Compiled ModuleDefs (the
// expensive, resolve+load+build artifact) are cached at Manager scope and
// shared by every Context; each Context additionally gets its own
// instantiated namespace object the first time it imports a given path,
// since namespace objects are heap-resident and Contexts do not share a
// heap.
type Manager struct {
	mu sync.RWMutex
	moduleDefs map[string]*funcdef.ModuleDef
	instances map[ModuleContext]map[string]value.Value
	cppModules map[string]value.Value

	source Source
	builder Builder
	disk *DiskCache
	sf singleflight.Group

	logger *zap.Logger
	metrics metrics.Sink
}

// NewManager constructs a Manager. disk may be nil to run L1-only. logger
// and sink may be nil, substituted with no-op defaults the same way
// gcheap.Heap does.
func NewManager(source Source, builder Builder, disk *DiskCache, logger *zap.Logger, sink metrics.Sink) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sink == nil {
		sink = metrics.Noop
	}
	return &Manager{
		moduleDefs: make(map[string]*funcdef.ModuleDef),
		instances: make(map[ModuleContext]map[string]value.Value),
		cppModules: make(map[string]value.Value),
		source: source,
		builder: builder,
		disk: disk,
		logger: logger,
		metrics: sink,
	}
}

// AddCppModule registers a native module: path is matched before
// Source.Resolve ever runs, a generated-value fast path that never invokes
// a loader.
func (m *Manager) AddCppModule(path string, obj *object.Object) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cppModules[path] = object.ToValue(obj)
}

// ClearModuleCache drops every compiled ModuleDef and per-Context instance,
// forcing the next GetModule to re-resolve, re-load and re-run. Native
// modules registered via AddCppModule survive a clear, the same way a
// host-embedded capability would not be expected to vanish.
func (m *Manager) ClearModuleCache() {
	m.mu.Lock()
	m.moduleDefs = make(map[string]*funcdef.ModuleDef)
	m.instances = make(map[ModuleContext]map[string]value.Value)
	disk := m.disk
	m.mu.Unlock()
	if disk != nil {
		if err := disk.Clear(); err != nil {
			m.logger.Warn("failed to clear module disk cache", zap.Error(err))
		}
	}
}

// GetModule implements the synchronous half of the Module opcode family
// : resolve, compile-cache hit or load+build, instantiate
// once per Context, return the cached namespace value.Value on every
// subsequent call.
func (m *Manager) GetModule(ctx ModuleContext, path string) value.Value {
	if v, ok := m.lookupCpp(path); ok {
		return v
	}

	resolved, err := m.source.Resolve(path)
	if err != nil {
		return ctx.ThrowReferenceError("cannot resolve module %q: %v", path, err)
	}

	if v, ok := m.lookupInstance(ctx, resolved); ok {
		return v
	}

	def, err := m.compile(resolved)
	if err != nil {
		return ctx.ThrowReferenceError("cannot load module %q: %v", path, err)
	}

	ns := m.instantiate(ctx, def)
	if !ns.IsException() {
		m.storeInstance(ctx, resolved, ns)
	}
	return ns
}

// GetModuleAsync implements the Promise-returning half of the Module opcode
// family. The underlying work (resolve/load/build/run) is itself
// synchronous — mjsvm's module I/O has no real async backend in scope — so
// the returned Promise settles immediately; the opcode-level distinction
// from GetModule only matters to callers that `await` it.
func (m *Manager) GetModuleAsync(ctx ModuleContext, path string) value.Value {
	p := promise.New(ctx)
	result := m.GetModule(ctx, path)
	if result.IsException() {
		promise.Reject(ctx, ctx.PromiseQueue(), p, result.ClearException())
	} else {
		promise.Resolve(ctx, ctx.PromiseQueue(), p, result)
	}
	return object.ToValue(p)
}

func (m *Manager) lookupCpp(path string) (value.Value, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.cppModules[path]
	return v, ok
}

func (m *Manager) lookupInstance(ctx ModuleContext, resolved string) (value.Value, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	perCtx, ok := m.instances[ctx]
	if !ok {
		return value.Undefined, false
	}
	v, ok := perCtx[resolved]
	return v, ok
}

func (m *Manager) storeInstance(ctx ModuleContext, resolved string, v value.Value) {
	m.mu.Lock()
	defer m.mu.Unlock()
	perCtx, ok := m.instances[ctx]
	if !ok {
		perCtx = make(map[string]value.Value)
		m.instances[ctx] = perCtx
	}
	perCtx[resolved] = v
}

// compile returns the cached ModuleDef for resolved, or loads+builds it
// exactly once even if many goroutines request it concurrently
// (golang.org/x/sync/singleflight).
func (m *Manager) compile(resolved string) (*funcdef.ModuleDef, error) {
	m.mu.RLock()
	if def, ok := m.moduleDefs[resolved]; ok {
		m.mu.RUnlock()
		m.metrics.IncModuleCacheHit()
		return def, nil
	}
	m.mu.RUnlock()

	v, err, _ := m.sf.Do(resolved, func() (any, error) {
		if m.disk != nil {
			if def, ok := m.disk.Load(resolved); ok {
				m.mu.Lock()
				m.moduleDefs[resolved] = def
				m.mu.Unlock()
				m.metrics.IncModuleCacheHit()
				return def, nil
			}
		}
		m.metrics.IncModuleCacheMiss()
		m.logger.Debug("module cache miss, loading and compiling", zap.String("path", resolved))
		src, err := m.source.Load(resolved)
		if err != nil {
			return nil, err
		}
		def, err := m.builder.Build(resolved, src)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.moduleDefs[resolved] = def
		m.mu.Unlock()
		if m.disk != nil {
			_ = m.disk.Store(resolved, def)
		}
		return def, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*funcdef.ModuleDef), nil
}

// instantiate runs def's top-level code exactly once against ctx's
// interpreter/stack and collects its exports into a fresh ClassModule namespace object.
func (m *Manager) instantiate(ctx ModuleContext, def *funcdef.ModuleDef) value.Value {
	ns := ctx.NewObject(object.ClassModule)

	fnObj := ctx.NewObject(object.ClassFunction)
	fnObj.Func = &object.FunctionData{Def: def.FunctionDef}
	fnVal := object.ToValue(fnObj)

	it := ctx.Interp()
	stack := ctx.Stack()

	frame, saved, comp := it.StartSuspendedFrame(stack, fnVal, object.ToValue(ns), nil)
	if comp.Kind == vm.CompletionException {
		return comp.Value
	}
	stack.PushSuspendedFrame(frame, saved)
	comp = it.Resume(stack, frame)

	// Exports must be read from the frame's locals before it is torn down:
	// PopFrame truncates the stack region Frame.Local addresses.
	if comp.Kind != vm.CompletionException {
		for _, ev := range def.ExportVarDefTable {
			ns.SetProperty(ev.NameConst, frame.Local(stack, ev.Slot))
		}
	}
	exc := comp.Value
	stack.PopFrame(frame)
	vm.FinishSuspendedFrame(frame)

	if comp.Kind == vm.CompletionException {
		return exc
	}
	return object.ToValue(ns)
}
