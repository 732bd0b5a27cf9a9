// Package metrics is a thin abstraction over Prometheus so a Runtime works
// with or without a registered metrics sink: a noop/Prometheus sink split
// where the hot path never pays for metric updates when disabled.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Sink is the internal interface every GC/VM/module call site depends on;
// Runtime and Context only ever see this, never the concrete backend.
type Sink interface {
	IncGCCycle(kind string)
	SetHeapBytes(generation string, bytes int64)
	IncShapeTransition()
	SetMicrotaskQueueDepth(depth int)
	IncMicrotasksDrained(n int)
	IncStubCacheEviction()
	SetStubCacheBytes(bytes int64)
	IncModuleCacheHit()
	IncModuleCacheMiss()
}

// noopSink is used when the embedder does not register a Prometheus
// registry; every method is a no-op so the interpreter's hot path never pays
// for the indirection beyond one interface call.
type noopSink struct{}

func (noopSink) IncGCCycle(string)          {}
func (noopSink) SetHeapBytes(string, int64) {}
func (noopSink) IncShapeTransition()        {}
func (noopSink) SetMicrotaskQueueDepth(int) {}
func (noopSink) IncMicrotasksDrained(int)   {}
func (noopSink) IncStubCacheEviction()      {}
func (noopSink) SetStubCacheBytes(int64)    {}
func (noopSink) IncModuleCacheHit()         {}
func (noopSink) IncModuleCacheMiss()        {}

// Noop is the shared no-op sink instance.
var Noop Sink = noopSink{}

// promSink implements Sink against a caller-supplied *prometheus.Registry.
type promSink struct {
	gcCycles            *prometheus.CounterVec
	heapBytes           *prometheus.GaugeVec
	shapeTransitions    prometheus.Counter
	microtaskQueueDepth prometheus.Gauge
	microtasksDrained   prometheus.Counter
	stubCacheEvictions  prometheus.Counter
	stubCacheBytes      prometheus.Gauge
	moduleCacheHits     prometheus.Counter
	moduleCacheMisses   prometheus.Counter
}

// NewPromSink constructs a Sink registered against reg. Panics on a
// duplicate registration, via prometheus.MustRegister.
func NewPromSink(reg *prometheus.Registry) Sink {
	s := &promSink{
		gcCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mjsvm",
			Name:      "gc_cycles_total",
			Help:      "Number of garbage collection cycles run.",
		}, []string{"kind"}),
		heapBytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "mjsvm",
			Name:      "heap_bytes",
			Help:      "Live bytes tracked per generation.",
		}, []string{"generation"}),
		shapeTransitions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mjsvm",
			Name:      "shape_transitions_total",
			Help:      "Number of shape transition-tree nodes created.",
		}),
		microtaskQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mjsvm",
			Name:      "microtask_queue_depth",
			Help:      "Current number of queued microtasks.",
		}),
		microtasksDrained: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mjsvm",
			Name:      "microtasks_drained_total",
			Help:      "Number of microtasks run to completion by JobQueue.Drain.",
		}),
		stubCacheEvictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mjsvm",
			Name:      "jit_stub_cache_evictions_total",
			Help:      "Number of compiled stub blobs evicted for capacity.",
		}),
		stubCacheBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mjsvm",
			Name:      "jit_stub_cache_bytes",
			Help:      "Current size of the compiled-stub cache in bytes.",
		}),
		moduleCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mjsvm",
			Name:      "module_cache_hits_total",
			Help:      "Number of GetModule/GetModuleAsync calls served from the compile cache.",
		}),
		moduleCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mjsvm",
			Name:      "module_cache_misses_total",
			Help:      "Number of GetModule/GetModuleAsync calls that invoked Source.Load/Builder.Build.",
		}),
	}
	reg.MustRegister(s.gcCycles, s.heapBytes, s.shapeTransitions, s.microtaskQueueDepth,
		s.microtasksDrained, s.stubCacheEvictions, s.stubCacheBytes, s.moduleCacheHits, s.moduleCacheMisses)
	return s
}

func (s *promSink) IncGCCycle(kind string) { s.gcCycles.WithLabelValues(kind).Inc() }
func (s *promSink) SetHeapBytes(generation string, bytes int64) {
	s.heapBytes.WithLabelValues(generation).Set(float64(bytes))
}
func (s *promSink) IncShapeTransition()          { s.shapeTransitions.Inc() }
func (s *promSink) SetMicrotaskQueueDepth(d int) { s.microtaskQueueDepth.Set(float64(d)) }
func (s *promSink) IncMicrotasksDrained(n int)   { s.microtasksDrained.Add(float64(n)) }
func (s *promSink) IncStubCacheEviction()        { s.stubCacheEvictions.Inc() }
func (s *promSink) SetStubCacheBytes(b int64)    { s.stubCacheBytes.Set(float64(b)) }
func (s *promSink) IncModuleCacheHit()           { s.moduleCacheHits.Inc() }
func (s *promSink) IncModuleCacheMiss()          { s.moduleCacheMisses.Inc() }
